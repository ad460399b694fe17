// Package config loads and writes test-rig.config.yaml.
package config

// Config is the project configuration.
// Field tags use mapstructure for viper unmarshalling and yaml for writing.
type Config struct {
	Framework         string            `mapstructure:"framework" yaml:"framework"`
	ParallelAgents    int               `mapstructure:"parallel_agents" yaml:"parallel_agents"`
	Containers        []string          `mapstructure:"containers" yaml:"containers"`
	CoverageThreshold CoverageThreshold `mapstructure:"coverage_threshold" yaml:"coverage_threshold"`
	SpecsDir          string            `mapstructure:"specs_dir" yaml:"specs_dir,omitempty"`
	Server            ServerConfig      `mapstructure:"server" yaml:"server,omitempty"`
}

// CoverageThreshold holds minimum line coverage percentages per test kind.
type CoverageThreshold struct {
	Unit        float64 `mapstructure:"unit" yaml:"unit"`
	Integration float64 `mapstructure:"integration" yaml:"integration"`
}

// ServerConfig configures `testrig serve`.
type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host,omitempty"`
	Port int    `mapstructure:"port" yaml:"port,omitempty"`
}

// Container is one parsed containers entry ("postgres:5432").
type Container struct {
	Name string
	Port int
}
