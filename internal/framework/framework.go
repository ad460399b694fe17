// Package framework runs external test frameworks out of process and
// normalizes their reports.
package framework

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"

	testrigerrors "github.com/AndreyAkinshin/testrig/internal/errors"
	"github.com/AndreyAkinshin/testrig/internal/testparser"
)

// Invocation describes one collaborator call.
type Invocation struct {
	// Component names the work item; used for report file names and errors.
	Component string
	// Files are the test files to run. Empty runs the framework's default
	// discovery over the whole project.
	Files []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
}

// Collaborator executes tests with one framework and returns a normalized
// result. A nonzero exit caused by failing tests is not an error as long as
// a report was produced.
type Collaborator interface {
	Name() string
	Run(ctx context.Context, inv Invocation) (testparser.Result, error)
}

// Exec runs a command in dir and returns its standard output. Stdout is
// returned even when the command exits with a nonzero status.
type Exec func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// maxStderrInError bounds the stderr excerpt attached to command errors.
const maxStderrInError = 2000

// DefaultExec runs the command with os/exec, capturing stdout and stderr.
func DefaultExec(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.Env = os.Environ()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	if errors.Is(err, exec.ErrNotFound) {
		return nil, testrigerrors.Environmentf("%s not found in PATH", name)
	}

	msg := strings.TrimSpace(stderr.String())
	if len(msg) > maxStderrInError {
		msg = msg[len(msg)-maxStderrInError:]
	}
	if msg != "" {
		return stdout.Bytes(), fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, msg)
	}
	return stdout.Bytes(), fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
}

// constructor builds a collaborator around an Exec.
type constructor func(exec Exec) Collaborator

var builtins = map[string]constructor{
	"vitest": func(e Exec) Collaborator { return NewVitest(e) },
	"jest":   func(e Exec) Collaborator { return NewJest(e) },
	"pytest": func(e Exec) Collaborator { return NewPytest(e) },
}

// New returns the collaborator for a framework selector. A nil exec uses
// DefaultExec. Unknown selectors are configuration errors.
func New(name string, exec Exec) (Collaborator, error) {
	if exec == nil {
		exec = DefaultExec
	}
	ctor, ok := builtins[strings.ToLower(name)]
	if !ok {
		return nil, testrigerrors.Configf("unsupported framework %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
	return ctor(exec), nil
}

// Names lists the supported framework selectors.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// parsers is shared by all collaborators; parsers are stateless.
var parsers = testparser.NewRegistry()
