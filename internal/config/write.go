package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GenerateOptions are the answers collected by `testrig setup`.
type GenerateOptions struct {
	Framework      string
	ParallelAgents int
	Containers     []string
}

// Generate builds a config from setup answers. Known containers get their
// default port appended.
func Generate(opts GenerateOptions) *Config {
	agents := opts.ParallelAgents
	if agents <= 0 {
		agents = DefaultParallelAgents
	}

	containers := make([]string, 0, len(opts.Containers))
	for _, c := range opts.Containers {
		if port, ok := ContainerPorts[c]; ok {
			containers = append(containers, fmt.Sprintf("%s:%d", c, port))
		} else {
			containers = append(containers, c)
		}
	}

	return &Config{
		Framework:      opts.Framework,
		ParallelAgents: agents,
		Containers:     containers,
		CoverageThreshold: CoverageThreshold{
			Unit:        DefaultUnitCoverageThreshold,
			Integration: DefaultIntegrationCoverageLimit,
		},
	}
}

// Write stores cfg as test-rig.config.yaml in projectDir and returns the
// file path.
func Write(projectDir string, cfg *Config) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}

	path := Path(projectDir)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}
