// Package errors provides structured error types and exit codes for testrig.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/AndreyAkinshin/testrig/pkg/testrig"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess          = testrig.ExitSuccess     // Success
	ExitRuntimeError     = testrig.ExitFailure     // Runtime error or failing tests
	ExitConfigError      = testrig.ExitConfigError // Configuration, spec or dependency-graph error
	ExitEnvironmentError = testrig.ExitEnvError    // Environment error (framework binary missing, etc.)
)

// ErrorKind represents the type of error.
type ErrorKind int

const (
	KindRuntime ErrorKind = iota
	KindConfig
	KindNotFound
	KindValidation
	KindEnvironment
)

// TestrigError is the base error type for testrig.
type TestrigError struct {
	Kind      ErrorKind
	Message   string
	Component string // Component name if applicable
	Command   string // Command name if applicable
	Cause     error  // Underlying error
}

func (e *TestrigError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Component != "" && e.Command != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Component, e.Command, msg)
	}
	if e.Component != "" {
		return fmt.Sprintf("[%s] %s", e.Component, msg)
	}
	return msg
}

func (e *TestrigError) Unwrap() error {
	return e.Cause
}

// ExitCode returns the appropriate exit code for this error.
func (e *TestrigError) ExitCode() int {
	switch e.Kind {
	case KindConfig, KindValidation:
		return ExitConfigError
	case KindEnvironment:
		return ExitEnvironmentError
	default:
		return ExitRuntimeError
	}
}

// SpecLoadError reports a component spec document that could not be read,
// parsed or validated. It aborts a run before any work is scheduled.
type SpecLoadError struct {
	Path  string
	Cause error
}

func (e *SpecLoadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("spec load failed: %v", e.Cause)
	}
	return fmt.Sprintf("spec load failed: %s: %v", e.Path, e.Cause)
}

func (e *SpecLoadError) Unwrap() error {
	return e.Cause
}

// ExitCode returns ExitConfigError.
func (e *SpecLoadError) ExitCode() int {
	return ExitConfigError
}

// CircularDependencyError reports a dependency cycle among component specs.
// Component is the node where the cycle was closed; Cycle holds the path
// from that node back to itself when it is known.
type CircularDependencyError struct {
	Component string
	Cycle     []string
}

func (e *CircularDependencyError) Error() string {
	if len(e.Cycle) > 1 {
		return fmt.Sprintf("circular dependency detected involving %q (%s)", e.Component, strings.Join(e.Cycle, " -> "))
	}
	return fmt.Sprintf("circular dependency detected involving %q", e.Component)
}

// ExitCode returns ExitConfigError.
func (e *CircularDependencyError) ExitCode() int {
	return ExitConfigError
}

// New creates a new runtime error.
func New(message string) *TestrigError {
	return &TestrigError{
		Kind:    KindRuntime,
		Message: message,
	}
}

// Newf creates a new runtime error with formatting.
func Newf(format string, args ...interface{}) *TestrigError {
	return New(fmt.Sprintf(format, args...))
}

// Config creates a new configuration error.
func Config(message string) *TestrigError {
	return &TestrigError{
		Kind:    KindConfig,
		Message: message,
	}
}

// Configf creates a new configuration error with formatting.
func Configf(format string, args ...interface{}) *TestrigError {
	return Config(fmt.Sprintf(format, args...))
}

// Environment creates a new environment error.
func Environment(message string) *TestrigError {
	return &TestrigError{
		Kind:    KindEnvironment,
		Message: message,
	}
}

// Environmentf creates a new environment error with formatting.
func Environmentf(format string, args ...interface{}) *TestrigError {
	return Environment(fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) *TestrigError {
	return &TestrigError{
		Kind:    KindRuntime,
		Message: message,
		Cause:   err,
	}
}

// ComponentError creates an error for a specific component.
func ComponentError(component, command, message string) *TestrigError {
	return &TestrigError{
		Kind:      KindRuntime,
		Component: component,
		Command:   command,
		Message:   message,
	}
}

// NotFound creates a not found error.
func NotFound(what, name string) *TestrigError {
	return &TestrigError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found: %s", what, name),
	}
}

// IsSpecLoad reports whether err is or wraps a SpecLoadError.
func IsSpecLoad(err error) bool {
	var target *SpecLoadError
	return stderrors.As(err, &target)
}

// IsCycle reports whether err is or wraps a CircularDependencyError.
func IsCycle(err error) bool {
	var target *CircularDependencyError
	return stderrors.As(err, &target)
}

// IsEnvironment reports whether err is or wraps an environment error.
func IsEnvironment(err error) bool {
	var target *TestrigError
	return stderrors.As(err, &target) && target.Kind == KindEnvironment
}

// IsNotFound reports whether err is or wraps a not found error.
func IsNotFound(err error) bool {
	var target *TestrigError
	return stderrors.As(err, &target) && target.Kind == KindNotFound
}

type exitCoder interface {
	ExitCode() int
}

// GetExitCode returns the exit code for an error.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ec exitCoder
	if stderrors.As(err, &ec) {
		return ec.ExitCode()
	}
	return ExitRuntimeError
}
