package spec

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	specDirPerm  = 0o755
	specFilePerm = 0o644
)

// Write stores s as <dir>/<component>.spec.yaml, creating dir if needed, and
// returns the written path. The document uses the same layout Load reads.
func Write(dir string, s ComponentSpec) (string, error) {
	if s.Component == "" {
		return "", fmt.Errorf("component name is required")
	}
	if s.Dependencies == nil {
		s.Dependencies = []string{}
	}
	if s.Files == nil {
		s.Files = []string{}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return "", fmt.Errorf("encode spec %q: %w", s.Component, err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode spec %q: %w", s.Component, err)
	}

	if err := os.MkdirAll(dir, specDirPerm); err != nil {
		return "", fmt.Errorf("create specs directory: %w", err)
	}

	path := filepath.Join(dir, FileName(s.Component))
	if err := os.WriteFile(path, buf.Bytes(), specFilePerm); err != nil {
		return "", fmt.Errorf("write spec %q: %w", s.Component, err)
	}

	return path, nil
}
