package framework

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/AndreyAkinshin/testrig/internal/testparser"
)

// PytestRunner runs pytest with the pytest-json-report plugin and reads the
// report file it writes.
type PytestRunner struct {
	exec   Exec
	parser testparser.Parser
	// reportDir holds report files; empty uses os.TempDir.
	reportDir string
}

// NewPytest returns a pytest collaborator.
func NewPytest(exec Exec) *PytestRunner {
	return &PytestRunner{
		exec:   exec,
		parser: parsers.GetParser("pytest"),
	}
}

// Name returns the framework name.
func (r *PytestRunner) Name() string {
	return "pytest"
}

// Run executes pytest on inv.Files. Each call writes its own report file, so
// concurrent runs never read each other's reports. A nonzero exit with a
// readable report is a normal result.
func (r *PytestRunner) Run(ctx context.Context, inv Invocation) (testparser.Result, error) {
	reportPath, err := r.reportFile(inv.Component)
	if err != nil {
		return testparser.Result{}, err
	}
	defer func() { _ = os.Remove(reportPath) }()

	args := []string{"--json-report", "--json-report-file=" + reportPath}
	args = append(args, inv.Files...)

	_, runErr := r.exec(ctx, inv.Dir, "pytest", args...)

	data, readErr := os.ReadFile(reportPath)
	if readErr != nil || len(data) == 0 {
		if runErr != nil {
			return testparser.Result{}, runErr
		}
		if readErr == nil {
			readErr = fmt.Errorf("report %s is empty", reportPath)
		}
		return testparser.Result{}, fmt.Errorf("pytest report: %w", readErr)
	}

	return r.parser.Parse(data)
}

// reportFile reserves a unique report path for a component.
func (r *PytestRunner) reportFile(component string) (string, error) {
	prefix := "pytest-report-"
	if component != "" {
		prefix = "pytest-" + sanitize(component) + "-report-"
	}
	f, err := os.CreateTemp(r.reportDir, prefix+"*.json")
	if err != nil {
		return "", fmt.Errorf("create pytest report file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return f.Name(), nil
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
