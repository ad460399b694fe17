package testparser

import "strings"

// Registry maps framework identifiers to their report parsers.
type Registry struct {
	parsers map[string]Parser
}

// NewRegistry creates a new parser registry with all built-in parsers.
func NewRegistry() *Registry {
	r := &Registry{
		parsers: make(map[string]Parser),
	}

	vitestParser := &VitestParser{}
	pytestParser := &PytestParser{}

	// jest's --json output is the format vitest's json reporter mimics
	r.parsers["vitest"] = vitestParser
	r.parsers["jest"] = vitestParser
	r.parsers["pytest"] = pytestParser
	r.parsers["python"] = pytestParser
	r.parsers["py"] = pytestParser

	return r
}

// GetParser returns a parser for the given framework identifier.
// Returns nil if no parser is found.
func (r *Registry) GetParser(framework string) Parser {
	return r.parsers[strings.ToLower(framework)]
}

// RegisterParser adds a custom parser for a framework.
func (r *Registry) RegisterParser(framework string, parser Parser) {
	r.parsers[strings.ToLower(framework)] = parser
}
