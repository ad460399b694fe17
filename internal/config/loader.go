package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	testrigerrors "github.com/AndreyAkinshin/testrig/internal/errors"
	"github.com/AndreyAkinshin/testrig/internal/schema"
)

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for testrig settings.
const envPrefix = "TESTRIG"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// LoadConfig loads configuration from file, env vars, and defaults.
// If configPath is non-empty it must exist. Otherwise test-rig.config.yaml
// is looked up in projectDir, and a missing file yields the defaults with
// found == false.
func LoadConfig(projectDir, configPath string) (cfg *Config, found bool, err error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	path := configPath
	if path == "" {
		path = filepath.Join(projectDir, FileName)
	}

	data, readErr := os.ReadFile(path)
	switch {
	case readErr == nil:
		if err := schema.ValidateConfig(data); err != nil {
			return nil, true, testrigerrors.Configf("%s: %v", path, err)
		}
		viperCfg.SetConfigFile(path)
		if err := viperCfg.ReadInConfig(); err != nil {
			return nil, true, testrigerrors.Configf("read config: %v", err)
		}
		found = true
	case errors.Is(readErr, os.ErrNotExist) && configPath == "":
	default:
		return nil, false, testrigerrors.Configf("read config: %v", readErr)
	}

	cfg = &Config{}
	if err := viperCfg.Unmarshal(cfg); err != nil {
		return nil, found, testrigerrors.Configf("unmarshal config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, found, testrigerrors.Configf("validate config: %v", err)
	}

	return cfg, found, nil
}

// Path returns the config file location for a project.
func Path(projectDir string) string {
	return filepath.Join(projectDir, FileName)
}

// Exists reports whether the project has a config file.
func Exists(projectDir string) bool {
	_, err := os.Stat(Path(projectDir))
	return err == nil
}

// SpecsPath resolves the configured specs directory against projectDir.
func (c *Config) SpecsPath(projectDir string) string {
	if filepath.IsAbs(c.SpecsDir) {
		return c.SpecsDir
	}
	return filepath.Join(projectDir, c.SpecsDir)
}

// Addr returns the server listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
