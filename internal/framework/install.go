package framework

import (
	"context"
	"log/slog"

	testrigerrors "github.com/AndreyAkinshin/testrig/internal/errors"
)

// Tech identifies a project's language stack.
type Tech string

// Supported project stacks.
const (
	TechNode   Tech = "node"
	TechPython Tech = "python"
	TechMixed  Tech = "mixed"
)

// InstallCommand returns the package-manager command that installs a
// framework and its companion libraries for a stack. ok is false when the
// combination has nothing to install.
func InstallCommand(framework string, tech Tech) (name string, args []string, ok bool) {
	node := tech == TechNode || tech == TechMixed
	python := tech == TechPython || tech == TechMixed

	switch {
	case framework == "vitest" && node:
		return "npm", []string{"install", "-D", "vitest", "@vitest/ui", "@vitest/coverage-v8", "@faker-js/faker", "testcontainers"}, true
	case framework == "jest" && node:
		return "npm", []string{"install", "-D", "jest", "@types/jest", "@faker-js/faker", "testcontainers"}, true
	case framework == "pytest" && python:
		return "pip", []string{"install", "pytest", "pytest-cov", "pytest-asyncio", "pytest-json-report", "faker", "testcontainers"}, true
	}
	return "", nil, false
}

// Install installs framework dependencies into dir. A missing package
// manager is an environment error.
func Install(ctx context.Context, exec Exec, dir, framework string, tech Tech) error {
	name, args, ok := InstallCommand(framework, tech)
	if !ok {
		slog.Debug("nothing to install", "framework", framework, "tech", string(tech))
		return nil
	}
	if exec == nil {
		exec = DefaultExec
	}

	slog.Info("installing test framework", "framework", framework, "command", name)
	if _, err := exec(ctx, dir, name, args...); err != nil {
		if testrigerrors.IsEnvironment(err) {
			return err
		}
		return testrigerrors.Wrap(err, "install "+framework)
	}
	return nil
}
