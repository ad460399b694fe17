// Package testrig provides public constants for tools that drive the testrig
// CLI, such as CI scripts checking its exit status.
package testrig

// Exit codes returned by the testrig CLI.
const (
	// ExitSuccess indicates the command completed and every test passed.
	ExitSuccess = 0

	// ExitFailure indicates failing tests or a runtime failure.
	ExitFailure = 1

	// ExitConfigError indicates an invalid config, spec document or
	// dependency cycle.
	ExitConfigError = 2

	// ExitEnvError indicates a missing framework binary or Docker daemon.
	ExitEnvError = 3
)
