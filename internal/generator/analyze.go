// Package generator analyzes component sources and scaffolds specs and
// test files for them.
package generator

import (
	"fmt"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	testrigerrors "github.com/AndreyAkinshin/testrig/internal/errors"
	"github.com/AndreyAkinshin/testrig/internal/spec"
)

// Subcomponent types inferred from file names.
const (
	TypeDataAccess    = "data-access"
	TypeBusinessLogic = "business-logic"
	TypeAPI           = "api"
	TypeValidation    = "validation"
	TypeOther         = "other"
)

// componentNamePattern keeps component names free of glob syntax and path
// separators.
var componentNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// Analysis is the source layout of one component.
type Analysis struct {
	Component string
	// Files are source paths relative to the project root, slash-separated.
	Files         []string
	Subcomponents []spec.Subcomponent
}

// sourcePatterns locate a component's sources under src/.
func sourcePatterns(component string) []string {
	return []string{
		"src/**/" + component + "/**/*.{ts,js,py}",
		"src/" + component + ".{ts,js,py}",
		"src/**/" + component + ".{ts,js,py}",
	}
}

// Analyze finds the source files of component under root and derives one
// subcomponent per file.
func Analyze(root, component string) (*Analysis, error) {
	if !componentNamePattern.MatchString(component) {
		return nil, testrigerrors.Configf("invalid component name %q", component)
	}

	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var files []string
	for _, pattern := range sourcePatterns(component) {
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		for _, m := range matches {
			if isExcluded(m) || seen[m] {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, testrigerrors.NotFound("component", component)
	}
	sort.Strings(files)

	subs := make([]spec.Subcomponent, 0, len(files))
	for _, f := range files {
		name := strings.TrimSuffix(path.Base(f), path.Ext(f))
		subs = append(subs, spec.Subcomponent{
			Name: name,
			File: f,
			Type: InferType(name),
		})
	}

	return &Analysis{Component: component, Files: files, Subcomponents: subs}, nil
}

// isExcluded skips test files and type declarations that live next to
// sources.
func isExcluded(file string) bool {
	base := path.Base(file)
	for _, marker := range []string{".spec.", ".test.", ".d.ts"} {
		if strings.Contains(base, marker) {
			return true
		}
	}
	return strings.HasPrefix(base, "test_") || strings.HasPrefix(base, "__init__")
}

// InferType guesses a subcomponent's role from its name.
func InferType(name string) string {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "repository"), strings.Contains(n, "repo"):
		return TypeDataAccess
	case strings.Contains(n, "service"):
		return TypeBusinessLogic
	case strings.Contains(n, "controller"):
		return TypeAPI
	case strings.Contains(n, "validator"):
		return TypeValidation
	default:
		return TypeOther
	}
}
