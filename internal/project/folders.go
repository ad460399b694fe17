package project

import (
	"fmt"
	"os"
	"path/filepath"
)

// Folders is the test tree created by setup, relative to the project root.
var Folders = []string{
	"tests/specs",
	"tests/unit",
	"tests/integration",
	"tests/e2e",
	"tests/factories",
	"tests/fixtures",
	"tests/mocks",
	"tests/utils",
	"tests/seeds",
}

// CreateFolders creates the test tree under root. Existing folders are kept.
func CreateFolders(root string) error {
	for _, folder := range Folders {
		if err := os.MkdirAll(filepath.Join(root, folder), 0o755); err != nil {
			return fmt.Errorf("create %s: %w", folder, err)
		}
	}
	return nil
}
