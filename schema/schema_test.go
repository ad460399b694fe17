package schema

import (
	"encoding/json"
	"io/fs"
	"slices"
	"testing"
)

type document struct {
	Schema     string                     `json:"$schema"`
	Type       string                     `json:"type"`
	Required   []string                   `json:"required"`
	Properties map[string]json.RawMessage `json:"properties"`
}

func readDocument(t *testing.T, name string) document {
	t.Helper()
	data, err := FS.ReadFile(name)
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("%s is not valid JSON: %v", name, err)
	}
	return doc
}

func TestEmbeddedSchemas(t *testing.T) {
	t.Parallel()

	names, err := fs.Glob(FS, "*.schema.json")
	if err != nil {
		t.Fatal(err)
	}
	slices.Sort(names)
	want := []string{"component.schema.json", "config.schema.json"}
	if !slices.Equal(names, want) {
		t.Fatalf("embedded schemas = %v, want %v", names, want)
	}

	for _, name := range names {
		doc := readDocument(t, name)
		if doc.Schema == "" || doc.Type != "object" {
			t.Errorf("%s: $schema=%q type=%q", name, doc.Schema, doc.Type)
		}
	}
}

func TestComponentSchemaFields(t *testing.T) {
	t.Parallel()

	doc := readDocument(t, "component.schema.json")
	if !slices.Equal(doc.Required, []string{"component"}) {
		t.Errorf("required = %v, want [component]", doc.Required)
	}
	for _, field := range []string{"component", "description", "dependencies", "files", "subcomponents"} {
		if _, ok := doc.Properties[field]; !ok {
			t.Errorf("component schema has no %q property", field)
		}
	}
}

func TestConfigSchemaFrameworks(t *testing.T) {
	t.Parallel()

	doc := readDocument(t, "config.schema.json")
	var framework struct {
		Enum []string `json:"enum"`
	}
	if err := json.Unmarshal(doc.Properties["framework"], &framework); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"vitest", "jest", "pytest"} {
		if !slices.Contains(framework.Enum, name) {
			t.Errorf("framework enum %v lacks %q", framework.Enum, name)
		}
	}
}
