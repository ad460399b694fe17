package containers

import (
	"context"
	"os/exec"
	"time"
)

// dockerProbeTimeout bounds `docker info`, which hangs when the daemon socket
// exists but the daemon is unresponsive.
const dockerProbeTimeout = 10 * time.Second

// Probe runs a command and reports whether it succeeded.
type Probe func(ctx context.Context, name string, args ...string) error

func execProbe(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// DockerUnavailableError indicates Docker is not available.
type DockerUnavailableError struct{}

func (e *DockerUnavailableError) Error() string {
	return "docker is not available or not running"
}

// ExitCode returns 3 for Docker unavailable errors.
func (e *DockerUnavailableError) ExitCode() int {
	return 3
}

// CheckDocker returns a *DockerUnavailableError when `docker info` fails. A
// nil probe runs the real docker binary.
func CheckDocker(ctx context.Context, probe Probe) error {
	if probe == nil {
		probe = execProbe
	}
	ctx, cancel := context.WithTimeout(ctx, dockerProbeTimeout)
	defer cancel()
	if err := probe(ctx, "docker", "info"); err != nil {
		return &DockerUnavailableError{}
	}
	return nil
}

// IsDockerAvailable reports whether the Docker daemon answers.
func IsDockerAvailable(ctx context.Context) bool {
	return CheckDocker(ctx, nil) == nil
}
