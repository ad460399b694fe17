// Package spec loads and writes per-component spec documents.
//
// A spec document is a YAML file named <component>.spec.yaml that declares
// a component, the components it depends on and the test files that
// exercise it:
//
//	component: auth
//	dependencies: [user, database]
//	files:
//	  - tests/unit/auth/login.spec.ts
package spec

// DefaultDir is the specs directory relative to the project root.
const DefaultDir = "tests/specs"

// FileSuffix is appended to the component name to form the document name.
const FileSuffix = ".spec.yaml"

// filePattern matches spec documents inside a specs directory.
const filePattern = "*.spec.{yaml,yml}"

// Subcomponent is one source unit of a component discovered by `generate`.
type Subcomponent struct {
	Name     string `yaml:"name" json:"name"`
	File     string `yaml:"file,omitempty" json:"file,omitempty"`
	Type     string `yaml:"type,omitempty" json:"type,omitempty"`
	TestFile string `yaml:"test_file,omitempty" json:"test_file,omitempty"`
}

// ComponentSpec is one declared unit of testable work.
//
// Dependencies may name components that are not loaded; such references are
// ignored by scheduling. A ComponentSpec is not modified after Load.
type ComponentSpec struct {
	Component     string         `yaml:"component" json:"component"`
	Description   string         `yaml:"description,omitempty" json:"description,omitempty"`
	Dependencies  []string       `yaml:"dependencies" json:"dependencies"`
	Files         []string       `yaml:"files" json:"files"`
	Subcomponents []Subcomponent `yaml:"subcomponents,omitempty" json:"subcomponents,omitempty"`

	// Path is the document the spec was loaded from. Empty for specs built
	// in memory.
	Path string `yaml:"-" json:"-"`
}

// FileName returns the document name for a component.
func FileName(component string) string {
	return component + FileSuffix
}

// Names returns the component names of specs in order.
func Names(specs []ComponentSpec) []string {
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.Component
	}
	return names
}
