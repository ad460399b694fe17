// Package containers describes the backing services integration tests run
// against and writes them out as a compose file.
package containers

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/AndreyAkinshin/testrig/internal/config"
)

// ComposeFileName is the compose file setup writes for integration tests.
const ComposeFileName = "docker-compose.test.yml"

// composeMarkers are the compose files looked for in a project, in order.
var composeMarkers = []string{"docker-compose.yml", "docker-compose.yaml", "compose.yml", "compose.yaml"}

// ComposeConfig represents a compose file.
type ComposeConfig struct {
	Services map[string]ComposeService `yaml:"services"`
}

// ComposeService represents a service in a compose file.
type ComposeService struct {
	Image       string            `yaml:"image,omitempty"`
	Ports       []string          `yaml:"ports,omitempty"`
	Environment map[string]string `yaml:"environment,omitempty"`
	Healthcheck *Healthcheck      `yaml:"healthcheck,omitempty"`
}

// Healthcheck is a compose service healthcheck.
type Healthcheck struct {
	Test     []string `yaml:"test"`
	Interval string   `yaml:"interval,omitempty"`
	Retries  int      `yaml:"retries,omitempty"`
}

// service is the static description of a supported container.
type service struct {
	image       string
	environment map[string]string
	healthcheck []string
}

var services = map[string]service{
	"postgres": {
		image:       "postgres:16-alpine",
		environment: map[string]string{"POSTGRES_USER": "test", "POSTGRES_PASSWORD": "test", "POSTGRES_DB": "test"},
		healthcheck: []string{"CMD-SHELL", "pg_isready -U test"},
	},
	"redis": {
		image:       "redis:7-alpine",
		healthcheck: []string{"CMD", "redis-cli", "ping"},
	},
	"arangodb": {
		image:       "arangodb:3.11",
		environment: map[string]string{"ARANGO_NO_AUTH": "1"},
	},
	"mongodb": {
		image:       "mongo:7",
		healthcheck: []string{"CMD", "mongosh", "--quiet", "--eval", "db.adminCommand('ping')"},
	},
	"mysql": {
		image:       "mysql:8",
		environment: map[string]string{"MYSQL_ROOT_PASSWORD": "test", "MYSQL_DATABASE": "test"},
		healthcheck: []string{"CMD", "mysqladmin", "ping", "-h", "localhost"},
	},
}

// Image returns the image started for a container name, or "" when the
// container is not supported.
func Image(name string) string {
	return services[name].image
}

// Supported lists the supported container names.
func Supported() []string {
	names := make([]string, 0, len(services))
	for name := range services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compose builds a compose document for the given containers. Each port is
// published on the same host port.
func Compose(list []config.Container) (*ComposeConfig, error) {
	compose := &ComposeConfig{Services: make(map[string]ComposeService, len(list))}
	for _, c := range list {
		svc, ok := services[c.Name]
		if !ok {
			return nil, fmt.Errorf("unsupported container %q", c.Name)
		}
		port := strconv.Itoa(c.Port)
		cs := ComposeService{
			Image:       svc.image,
			Ports:       []string{port + ":" + strconv.Itoa(config.ContainerPorts[c.Name])},
			Environment: svc.environment,
		}
		if svc.healthcheck != nil {
			cs.Healthcheck = &Healthcheck{Test: svc.healthcheck, Interval: "5s", Retries: 10}
		}
		compose.Services[c.Name] = cs
	}
	return compose, nil
}

// GenerateComposeFile renders the compose document for the given containers.
func GenerateComposeFile(list []config.Container) (string, error) {
	compose, err := Compose(list)
	if err != nil {
		return "", err
	}
	data, err := yaml.Marshal(compose)
	if err != nil {
		return "", fmt.Errorf("failed to generate compose file: %w", err)
	}
	return string(data), nil
}

// WriteComposeFile writes ComposeFileName under projectRoot unless it
// already exists, and reports whether it was written. An empty list writes
// nothing.
func WriteComposeFile(projectRoot string, list []config.Container) (bool, error) {
	if len(list) == 0 {
		return false, nil
	}
	outputPath := filepath.Join(projectRoot, ComposeFileName)
	if _, err := os.Stat(outputPath); err == nil {
		return false, nil
	}

	content, err := GenerateComposeFile(list)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(outputPath, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", ComposeFileName, err)
	}
	return true, nil
}

// ParseComposeFile parses a compose file.
func ParseComposeFile(path string) (*ComposeConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read compose file: %w", err)
	}

	var compose ComposeConfig
	if err := yaml.Unmarshal(data, &compose); err != nil {
		return nil, fmt.Errorf("invalid compose file format: %w", err)
	}

	return &compose, nil
}

// FindComposeFile returns the first project compose file in dir, or "".
func FindComposeFile(dir string) string {
	for _, name := range composeMarkers {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

// ServiceCount returns the number of services in the project compose file
// in dir. A missing or unreadable file counts as zero.
func ServiceCount(dir string) int {
	p := FindComposeFile(dir)
	if p == "" {
		return 0
	}
	compose, err := ParseComposeFile(p)
	if err != nil {
		return 0
	}
	return len(compose.Services)
}
