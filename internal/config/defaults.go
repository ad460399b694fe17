package config

import "github.com/spf13/viper"

// Default configuration values.
const (
	FileName = "test-rig.config.yaml"

	DefaultFramework                = "vitest"
	DefaultParallelAgents           = 4
	DefaultSpecsDir                 = "tests/specs"
	DefaultUnitCoverageThreshold    = 80.0
	DefaultIntegrationCoverageLimit = 60.0
	DefaultServerHost               = "localhost"
	DefaultServerPort               = 3000
)

// ContainerPorts maps supported testcontainers to their default ports.
var ContainerPorts = map[string]int{
	"postgres": 5432,
	"redis":    6379,
	"arangodb": 8529,
	"mongodb":  27017,
	"mysql":    3306,
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("framework", DefaultFramework)
	viperCfg.SetDefault("parallel_agents", DefaultParallelAgents)
	viperCfg.SetDefault("containers", []string{})
	viperCfg.SetDefault("specs_dir", DefaultSpecsDir)

	viperCfg.SetDefault("coverage_threshold.unit", DefaultUnitCoverageThreshold)
	viperCfg.SetDefault("coverage_threshold.integration", DefaultIntegrationCoverageLimit)

	viperCfg.SetDefault("server.host", DefaultServerHost)
	viperCfg.SetDefault("server.port", DefaultServerPort)
}

// Default returns a config holding only default values.
func Default() *Config {
	return &Config{
		Framework:      DefaultFramework,
		ParallelAgents: DefaultParallelAgents,
		Containers:     []string{},
		CoverageThreshold: CoverageThreshold{
			Unit:        DefaultUnitCoverageThreshold,
			Integration: DefaultIntegrationCoverageLimit,
		},
		SpecsDir: DefaultSpecsDir,
		Server:   ServerConfig{Host: DefaultServerHost, Port: DefaultServerPort},
	}
}
