package project

import (
	"github.com/AndreyAkinshin/testrig/internal/config"
)

// Project is a loaded testrig project.
type Project struct {
	Root   string
	Config *config.Config
	// ConfigFound is false when Config holds only defaults.
	ConfigFound bool
}

// Load resolves the project root from startDir and loads its config.
// configPath overrides the config location when non-empty.
func Load(startDir, configPath string) (*Project, error) {
	root, err := ResolveRoot(startDir)
	if err != nil {
		return nil, err
	}

	cfg, found, err := config.LoadConfig(root, configPath)
	if err != nil {
		return nil, err
	}

	return &Project{Root: root, Config: cfg, ConfigFound: found}, nil
}

// SpecsDir returns the absolute specs directory.
func (p *Project) SpecsDir() string {
	return p.Config.SpecsPath(p.Root)
}
