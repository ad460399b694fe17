package testrig_test

import (
	"testing"

	"github.com/AndreyAkinshin/testrig/internal/errors"
	"github.com/AndreyAkinshin/testrig/pkg/testrig"
)

func TestExitCodeValues(t *testing.T) {
	tests := []struct {
		name     string
		constant int
		expected int
	}{
		{"ExitSuccess", testrig.ExitSuccess, 0},
		{"ExitFailure", testrig.ExitFailure, 1},
		{"ExitConfigError", testrig.ExitConfigError, 2},
		{"ExitEnvError", testrig.ExitEnvError, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.expected {
				t.Errorf("testrig.%s = %d, want %d", tt.name, tt.constant, tt.expected)
			}
		})
	}
}

// TestErrorKindsMapToPublicCodes checks the codes errors actually produce,
// not just the constants.
func TestErrorKindsMapToPublicCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, testrig.ExitSuccess},
		{"runtime", errors.New("boom"), testrig.ExitFailure},
		{"not found", errors.NotFound("component", "auth"), testrig.ExitFailure},
		{"config", errors.Config("bad framework"), testrig.ExitConfigError},
		{"cycle", &errors.CircularDependencyError{Component: "a", Cycle: []string{"a", "b", "a"}}, testrig.ExitConfigError},
		{"environment", errors.Environment("pytest not found"), testrig.ExitEnvError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.GetExitCode(tt.err); got != tt.want {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
