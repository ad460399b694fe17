package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/AndreyAkinshin/testrig/internal/containers"
	testrigerrors "github.com/AndreyAkinshin/testrig/internal/errors"
	"github.com/AndreyAkinshin/testrig/internal/project"
)

// frameworkBinaries is the executable each framework is launched through.
var frameworkBinaries = map[string]string{
	"vitest": "npx",
	"jest":   "npx",
	"pytest": "pytest",
}

func (a *app) doctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the project's test setup",
		Long: `Check for the config file, the tests folder, loadable component specs and
an acyclic dependency graph. Duplicate components and dependencies on
components without a spec are reported as warnings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runDoctor(cmd.Context())
		},
	}
}

func (a *app) runDoctor(ctx context.Context) error {
	p, err := a.loadProject()
	if err != nil {
		return err
	}

	a.out.Title("testrig doctor")
	health := project.CheckHealth(p.Root, p.SpecsDir())
	for _, c := range health.Checks {
		a.out.Check(c.Name, c.Passed, c.Message)
	}
	for _, w := range health.Warnings {
		a.out.CheckWarning("Warning", w)
	}

	if bin, ok := frameworkBinaries[p.Config.Framework]; ok {
		if _, err := a.lookPath(bin); err != nil {
			a.out.CheckWarning(bin+" on PATH", "required to run "+p.Config.Framework)
		} else {
			a.out.Check(bin+" on PATH", true, "")
		}
	}

	if len(p.Config.Containers) > 0 {
		if err := containers.CheckDocker(ctx, a.probe); err != nil {
			a.out.CheckWarning("Docker", "integration tests need a running Docker daemon")
		} else {
			a.out.Check("Docker", true, "")
		}
	}

	if !health.Healthy() {
		a.out.FinalFailure("Project has problems")
		return &exitCodeError{code: testrigerrors.ExitConfigError}
	}
	a.out.FinalSuccess("Project is healthy")
	return nil
}
