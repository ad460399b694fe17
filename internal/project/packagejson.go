package project

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// packageJSON holds the parts of package.json detection reads.
type packageJSON struct {
	Name            string            `json:"name"`
	Scripts         map[string]string `json:"scripts"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

// readPackageJSON loads package.json from dir. It returns nil when the file
// is missing or malformed; npm reports those itself when it runs.
func readPackageJSON(dir string) *packageJSON {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return nil
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil
	}
	return &pkg
}

func (p *packageJSON) hasDependency(name string) bool {
	if p == nil {
		return false
	}
	_, dev := p.DevDependencies[name]
	_, prod := p.Dependencies[name]
	return dev || prod
}

// installedJSFramework returns the JS test framework the project already
// depends on. vitest wins when both are present.
func (p *packageJSON) installedJSFramework() string {
	switch {
	case p.hasDependency("vitest"):
		return "vitest"
	case p.hasDependency("jest"):
		return "jest"
	default:
		return ""
	}
}
