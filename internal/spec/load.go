package spec

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	testrigerrors "github.com/AndreyAkinshin/testrig/internal/errors"
	"github.com/AndreyAkinshin/testrig/internal/schema"
)

// Load reads every spec document in dir (not recursive) and returns the
// specs sorted by file name. Any unreadable, malformed or schema-invalid
// document aborts the load with a *errors.SpecLoadError; dependency
// references are not checked here.
func Load(dir string) ([]ComponentSpec, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &testrigerrors.SpecLoadError{Path: dir, Cause: err}
	}
	if !info.IsDir() {
		return nil, &testrigerrors.SpecLoadError{Path: dir, Cause: fmt.Errorf("not a directory")}
	}

	matches, err := doublestar.Glob(os.DirFS(dir), filePattern)
	if err != nil {
		return nil, &testrigerrors.SpecLoadError{Path: dir, Cause: err}
	}
	sort.Strings(matches)

	specs := make([]ComponentSpec, 0, len(matches))
	for _, name := range matches {
		s, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		specs = append(specs, *s)
	}

	return specs, nil
}

// LoadFile reads and validates a single spec document.
func LoadFile(path string) (*ComponentSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &testrigerrors.SpecLoadError{Path: path, Cause: err}
	}

	if err := schema.ValidateComponentSpec(data); err != nil {
		return nil, &testrigerrors.SpecLoadError{Path: path, Cause: err}
	}

	var s ComponentSpec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, &testrigerrors.SpecLoadError{Path: path, Cause: err}
	}
	s.Path = path

	return &s, nil
}
