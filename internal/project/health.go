package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AndreyAkinshin/testrig/internal/config"
	"github.com/AndreyAkinshin/testrig/internal/spec"
)

// Check is one health check line.
type Check struct {
	Name    string
	Passed  bool
	Message string
}

// Health is the result of `testrig doctor`.
type Health struct {
	Checks []Check
	// Warnings are non-fatal findings such as dependencies on components
	// that have no spec.
	Warnings []string
}

// Healthy reports whether every check passed.
func (h *Health) Healthy() bool {
	for _, c := range h.Checks {
		if !c.Passed {
			return false
		}
	}
	return true
}

// CheckHealth inspects the project at root. specsDir is where component
// specs live.
func CheckHealth(root, specsDir string) *Health {
	h := &Health{}

	hasConfig := config.Exists(root)
	h.add("Configuration file", hasConfig, `Run "testrig setup" to create config`)

	info, err := os.Stat(filepath.Join(root, "tests"))
	hasTests := err == nil && info.IsDir()
	h.add("Tests folder", hasTests, "Tests folder not found")

	h.checkSpecs(specsDir)
	return h
}

func (h *Health) add(name string, passed bool, hint string) {
	c := Check{Name: name, Passed: passed}
	if !passed {
		c.Message = hint
	}
	h.Checks = append(h.Checks, c)
}

// checkSpecs loads the specs and verifies they form an acyclic graph.
// A missing specs directory is not a failure; it only means nothing has
// been generated yet.
func (h *Health) checkSpecs(specsDir string) {
	if _, err := os.Stat(specsDir); os.IsNotExist(err) {
		h.Warnings = append(h.Warnings, fmt.Sprintf("no specs directory at %s", specsDir))
		return
	}

	specs, err := spec.Load(specsDir)
	if err != nil {
		h.add("Component specs", false, err.Error())
		return
	}
	h.add(fmt.Sprintf("Component specs (%d)", len(specs)), true, "")

	g := spec.Graph(specs)
	_, sortErr := g.Sort()
	h.add("Dependency graph", sortErr == nil, errMessage(sortErr))

	for _, dup := range g.Duplicates() {
		h.Warnings = append(h.Warnings, fmt.Sprintf("component %q is declared more than once; the first spec wins", dup))
	}

	dangling := g.Dangling()
	names := make([]string, 0, len(dangling))
	for name := range dangling {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		h.Warnings = append(h.Warnings, fmt.Sprintf("component %q depends on unknown %s", name, strings.Join(dangling[name], ", ")))
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
