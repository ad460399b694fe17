package project

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/AndreyAkinshin/testrig/internal/containers"
	"github.com/AndreyAkinshin/testrig/internal/framework"
)

// Kind is the deployment shape of a project.
type Kind string

const (
	KindMonolith      Kind = "monolith"
	KindMicroservices Kind = "microservices"
)

// microservicesThreshold is the compose service count above which a project
// is treated as microservices.
const microservicesThreshold = 3

// ErrUnknownProjectType is returned when no Node or Python markers exist.
var ErrUnknownProjectType = errors.New("unable to detect project type: no package.json, requirements.txt or pyproject.toml")

var (
	nodeMarkers   = []string{"package.json"}
	pythonMarkers = []string{"requirements.txt", "pyproject.toml", "setup.py"}
)

// Info describes a detected project.
type Info struct {
	Name            string
	Tech            framework.Tech
	Kind            Kind
	ComposeServices int
	// InstalledFramework is the JS test framework package.json already
	// depends on, if any.
	InstalledFramework string
}

// DefaultFramework returns the framework setup picks for the stack.
func (i Info) DefaultFramework() string {
	if i.Tech == framework.TechPython {
		return "pytest"
	}
	if i.InstalledFramework != "" {
		return i.InstalledFramework
	}
	return "vitest"
}

// Detect inspects marker files in dir.
func Detect(dir string) (Info, error) {
	node := anyExists(dir, nodeMarkers)
	python := anyExists(dir, pythonMarkers)

	info := Info{Name: filepath.Base(dir), Kind: KindMonolith}
	switch {
	case node && python:
		info.Tech = framework.TechMixed
	case node:
		info.Tech = framework.TechNode
	case python:
		info.Tech = framework.TechPython
	default:
		return Info{}, ErrUnknownProjectType
	}

	if node {
		if pkg := readPackageJSON(dir); pkg != nil {
			if pkg.Name != "" {
				info.Name = pkg.Name
			}
			info.InstalledFramework = pkg.installedJSFramework()
		}
	}

	info.ComposeServices = containers.ServiceCount(dir)
	if info.ComposeServices > microservicesThreshold {
		info.Kind = KindMicroservices
	}
	return info, nil
}

func anyExists(dir string, names []string) bool {
	for _, name := range names {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		}
	}
	return false
}
