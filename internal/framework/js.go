package framework

import (
	"context"
	"fmt"

	"github.com/AndreyAkinshin/testrig/internal/testparser"
)

// JSRunner runs a JavaScript test framework through npx and parses the JSON
// report it prints on stdout.
type JSRunner struct {
	name   string
	args   []string
	exec   Exec
	parser testparser.Parser
}

// NewVitest returns a collaborator for `npx vitest run --reporter=json`.
func NewVitest(exec Exec) *JSRunner {
	return &JSRunner{
		name:   "vitest",
		args:   []string{"vitest", "run", "--reporter=json"},
		exec:   exec,
		parser: parsers.GetParser("vitest"),
	}
}

// NewJest returns a collaborator for `npx jest --json`.
func NewJest(exec Exec) *JSRunner {
	return &JSRunner{
		name:   "jest",
		args:   []string{"jest", "--json"},
		exec:   exec,
		parser: parsers.GetParser("jest"),
	}
}

// Name returns the framework name.
func (r *JSRunner) Name() string {
	return r.name
}

// Run executes the framework on inv.Files. When the process fails but its
// stdout still holds a parseable report (failing tests), the report wins and
// no error is returned.
func (r *JSRunner) Run(ctx context.Context, inv Invocation) (testparser.Result, error) {
	args := append(append([]string(nil), r.args...), inv.Files...)

	stdout, runErr := r.exec(ctx, inv.Dir, "npx", args...)
	if len(stdout) == 0 {
		if runErr != nil {
			return testparser.Result{}, runErr
		}
		return testparser.Result{}, fmt.Errorf("%s produced no report", r.name)
	}

	result, parseErr := r.parser.Parse(stdout)
	if parseErr != nil {
		if runErr != nil {
			return testparser.Result{}, runErr
		}
		return testparser.Result{}, parseErr
	}

	return result, nil
}
