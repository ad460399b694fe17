package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Sentinel validation errors.
var (
	// ErrUnknownFramework indicates an unsupported framework selector.
	ErrUnknownFramework = errors.New("framework must be one of vitest, jest, pytest")
	// ErrInvalidParallelAgents indicates the agent count is out of range.
	ErrInvalidParallelAgents = errors.New("parallel_agents must be between 1 and 256")
	// ErrInvalidThreshold indicates a coverage threshold outside 0..100.
	ErrInvalidThreshold = errors.New("coverage_threshold values must be between 0 and 100")
	// ErrEmptySpecsDir indicates specs_dir was set to an empty string.
	ErrEmptySpecsDir = errors.New("specs_dir must not be empty")
	// ErrInvalidPort indicates the server port is out of range.
	ErrInvalidPort = errors.New("server.port must be between 1 and 65535")
	// ErrInvalidContainer indicates a malformed containers entry.
	ErrInvalidContainer = errors.New("containers entries must be name or name:port")
)

const maxParallelAgents = 256

// Frameworks lists the accepted framework selectors.
var Frameworks = []string{"vitest", "jest", "pytest"}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if !isFramework(c.Framework) {
		return fmt.Errorf("%w: got %q", ErrUnknownFramework, c.Framework)
	}

	if c.ParallelAgents < 1 || c.ParallelAgents > maxParallelAgents {
		return fmt.Errorf("%w: got %d", ErrInvalidParallelAgents, c.ParallelAgents)
	}

	for _, v := range []float64{c.CoverageThreshold.Unit, c.CoverageThreshold.Integration} {
		if v < 0 || v > 100 {
			return fmt.Errorf("%w: got %g", ErrInvalidThreshold, v)
		}
	}

	if strings.TrimSpace(c.SpecsDir) == "" {
		return ErrEmptySpecsDir
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: got %d", ErrInvalidPort, c.Server.Port)
	}

	if _, err := c.ParsedContainers(); err != nil {
		return err
	}

	return nil
}

// ParsedContainers splits containers entries into names and ports. Entries
// without a port get the well-known default, or 0 for unknown containers.
func (c *Config) ParsedContainers() ([]Container, error) {
	out := make([]Container, 0, len(c.Containers))
	for _, entry := range c.Containers {
		name, portStr, hasPort := strings.Cut(entry, ":")
		if name == "" {
			return nil, fmt.Errorf("%w: got %q", ErrInvalidContainer, entry)
		}
		port := ContainerPorts[name]
		if hasPort {
			p, err := strconv.Atoi(portStr)
			if err != nil || p < 1 || p > 65535 {
				return nil, fmt.Errorf("%w: got %q", ErrInvalidContainer, entry)
			}
			port = p
		}
		out = append(out, Container{Name: name, Port: port})
	}
	return out, nil
}

func isFramework(name string) bool {
	for _, f := range Frameworks {
		if f == name {
			return true
		}
	}
	return false
}
