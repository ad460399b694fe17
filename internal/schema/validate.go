// Package schema provides JSON schema validation for testrig documents.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	schemafs "github.com/AndreyAkinshin/testrig/schema"
)

var (
	configSchema    *jsonschema.Schema
	componentSchema *jsonschema.Schema
	compileOnce     sync.Once
	compileErr      error
)

// compileSchemas compiles all embedded schemas once.
func compileSchemas() error {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()

		for _, name := range []string{"config.schema.json", "component.schema.json"} {
			data, err := schemafs.FS.ReadFile(name)
			if err != nil {
				compileErr = fmt.Errorf("read %s: %w", name, err)
				return
			}
			doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
			if err != nil {
				compileErr = fmt.Errorf("unmarshal %s: %w", name, err)
				return
			}
			if err := compiler.AddResource(name, doc); err != nil {
				compileErr = fmt.Errorf("add %s resource: %w", name, err)
				return
			}
		}

		var err error
		configSchema, err = compiler.Compile("config.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("compile config schema: %w", err)
			return
		}

		componentSchema, err = compiler.Compile("component.schema.json")
		if err != nil {
			compileErr = fmt.Errorf("compile component schema: %w", err)
			return
		}
	})

	return compileErr
}

// ValidateComponentSpec validates a YAML component spec document.
func ValidateComponentSpec(data []byte) error {
	if err := compileSchemas(); err != nil {
		return err
	}

	v, err := yamlToJSONValue(data)
	if err != nil {
		return err
	}

	if err := componentSchema.Validate(v); err != nil {
		return fmt.Errorf("component spec validation failed: %w", err)
	}

	return nil
}

// ValidateConfig validates a YAML project config document.
func ValidateConfig(data []byte) error {
	if err := compileSchemas(); err != nil {
		return err
	}

	v, err := yamlToJSONValue(data)
	if err != nil {
		return err
	}

	if err := configSchema.Validate(v); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// yamlToJSONValue decodes YAML and re-encodes it through JSON so the
// validator sees the same value types it would for a JSON document.
func yamlToJSONValue(data []byte) (any, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("document is not representable as JSON: %w", err)
	}

	return jsonschema.UnmarshalJSON(bytes.NewReader(raw))
}
