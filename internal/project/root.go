// Package project provides project discovery, scaffolding and health checks.
package project

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/AndreyAkinshin/testrig/internal/config"
)

// ErrNoProjectRoot is returned when no test-rig.config.yaml is found.
var ErrNoProjectRoot = errors.New(config.FileName + " not found: not a testrig project (or any parent up to the root)")

// FindRoot walks up from the current working directory until it finds
// test-rig.config.yaml.
func FindRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return FindRootFrom(cwd)
}

// FindRootFrom walks up from the given directory until it finds
// test-rig.config.yaml.
func FindRootFrom(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoProjectRoot
		}
		dir = parent
	}
}

// ResolveRoot returns the project root above startDir, or startDir itself
// when the project has not been set up yet.
func ResolveRoot(startDir string) (string, error) {
	root, err := FindRootFrom(startDir)
	if errors.Is(err, ErrNoProjectRoot) {
		return filepath.Abs(startDir)
	}
	return root, err
}
