package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestTestrigError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *TestrigError
		expected string
	}{
		{
			name:     "message only",
			err:      &TestrigError{Message: "something failed"},
			expected: "something failed",
		},
		{
			name:     "with component",
			err:      &TestrigError{Component: "auth", Message: "run failed"},
			expected: "[auth] run failed",
		},
		{
			name:     "with component and command",
			err:      &TestrigError{Component: "auth", Command: "vitest", Message: "spawn failed"},
			expected: "[auth] vitest: spawn failed",
		},
		{
			name:     "command without component not included",
			err:      &TestrigError{Command: "vitest", Message: "something failed"},
			expected: "something failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestTestrigError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &TestrigError{Message: "wrapper", Cause: cause}

	if got := err.Unwrap(); got != cause {
		t.Errorf("Unwrap() = %v, want %v", got, cause)
	}

	errNoCause := &TestrigError{Message: "no cause"}
	if got := errNoCause.Unwrap(); got != nil {
		t.Errorf("Unwrap() = %v, want nil", got)
	}
}

func TestTestrigError_ExitCode(t *testing.T) {
	tests := []struct {
		name     string
		kind     ErrorKind
		expected int
	}{
		{"runtime", KindRuntime, ExitRuntimeError},
		{"config", KindConfig, ExitConfigError},
		{"validation", KindValidation, ExitConfigError},
		{"not found", KindNotFound, ExitRuntimeError},
		{"environment", KindEnvironment, ExitEnvironmentError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &TestrigError{Kind: tt.kind}
			if got := err.ExitCode(); got != tt.expected {
				t.Errorf("ExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestConstructors(t *testing.T) {
	if err := Newf("error %d: %s", 42, "details"); err.Kind != KindRuntime || err.Message != "error 42: details" {
		t.Errorf("Newf() = %+v", err)
	}
	if err := Configf("field %q: %s", "framework", "is required"); err.Kind != KindConfig || err.Message != `field "framework": is required` {
		t.Errorf("Configf() = %+v", err)
	}
	if err := Environmentf("%s not found", "npx"); err.ExitCode() != ExitEnvironmentError {
		t.Errorf("Environmentf().ExitCode() = %d, want %d", err.ExitCode(), ExitEnvironmentError)
	}

	cause := errors.New("original error")
	wrapped := Wrap(cause, "wrapped message")
	if wrapped.Unwrap() != cause {
		t.Error("Wrap().Unwrap() should return original cause")
	}
	if wrapped.Error() != "wrapped message: original error" {
		t.Errorf("Wrap().Error() = %q", wrapped.Error())
	}
	if !IsEnvironment(fmt.Errorf("ctx: %w", Environment("npx missing"))) {
		t.Error("IsEnvironment() should see through wrapping")
	}
	if IsEnvironment(wrapped) {
		t.Error("IsEnvironment() on runtime error = true")
	}

	nf := NotFound("component", "billing")
	if nf.Message != "component not found: billing" {
		t.Errorf("NotFound().Message = %q", nf.Message)
	}

	ce := ComponentError("auth", "pytest", "report missing")
	if ce.Error() != "[auth] pytest: report missing" {
		t.Errorf("ComponentError().Error() = %q", ce.Error())
	}
}

func TestSpecLoadError(t *testing.T) {
	cause := errors.New("yaml: line 2: mapping values are not allowed")
	err := &SpecLoadError{Path: "tests/specs/user.spec.yaml", Cause: cause}

	want := "spec load failed: tests/specs/user.spec.yaml: yaml: line 2: mapping values are not allowed"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if !errors.Is(err, cause) {
		t.Error("SpecLoadError should unwrap to its cause")
	}

	wrapped := fmt.Errorf("run: %w", err)
	if !IsSpecLoad(wrapped) {
		t.Error("IsSpecLoad() should see through wrapping")
	}
	if IsCycle(wrapped) {
		t.Error("IsCycle() = true for a spec load error")
	}
	if GetExitCode(wrapped) != ExitConfigError {
		t.Errorf("GetExitCode() = %d, want %d", GetExitCode(wrapped), ExitConfigError)
	}
}

func TestCircularDependencyError(t *testing.T) {
	err := &CircularDependencyError{Component: "a"}
	if err.Error() != `circular dependency detected involving "a"` {
		t.Errorf("Error() = %q", err.Error())
	}

	withPath := &CircularDependencyError{Component: "a", Cycle: []string{"a", "b", "a"}}
	if withPath.Error() != `circular dependency detected involving "a" (a -> b -> a)` {
		t.Errorf("Error() = %q", withPath.Error())
	}

	if !IsCycle(fmt.Errorf("sort: %w", withPath)) {
		t.Error("IsCycle() should see through wrapping")
	}
	if GetExitCode(withPath) != ExitConfigError {
		t.Errorf("GetExitCode() = %d, want %d", GetExitCode(withPath), ExitConfigError)
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, ExitSuccess},
		{"TestrigError runtime", New("runtime"), ExitRuntimeError},
		{"TestrigError config", Config("config"), ExitConfigError},
		{"TestrigError validation", &TestrigError{Kind: KindValidation}, ExitConfigError},
		{"wrapped environment", fmt.Errorf("x: %w", Environment("no npx")), ExitEnvironmentError},
		{"generic error", errors.New("generic"), ExitRuntimeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetExitCode(tt.err); got != tt.expected {
				t.Errorf("GetExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestExitCodeConstants(t *testing.T) {
	if ExitSuccess != 0 || ExitRuntimeError != 1 || ExitConfigError != 2 || ExitEnvironmentError != 3 {
		t.Errorf("exit codes = %d/%d/%d/%d, want 0/1/2/3",
			ExitSuccess, ExitRuntimeError, ExitConfigError, ExitEnvironmentError)
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(fmt.Errorf("lookup: %w", NotFound("component", "auth"))) {
		t.Error("IsNotFound(wrapped NotFound) = false, want true")
	}
	if IsNotFound(Config("bad")) {
		t.Error("IsNotFound(Config) = true, want false")
	}
}
