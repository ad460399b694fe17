package cli

import (
	"github.com/spf13/cobra"

	"github.com/AndreyAkinshin/testrig/internal/generator"
	"github.com/AndreyAkinshin/testrig/internal/spec"
)

type generateOptions struct {
	testType string
	specOnly bool
}

func (a *app) generateCommand() *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate <component>",
		Short: "Scaffold tests and a spec document for a component",
		Long: `Find the component's source files under src/, write its spec document and
render unit and integration test scaffolds plus a data factory for each
subcomponent. Existing test files are never overwritten.`,
		Example: `  testrig generate auth
  testrig generate payments -t integration
  testrig generate users --spec-only`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return a.runGenerate(args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.testType, "type", "t", generator.KindAll, "test kind: unit, integration or all")
	cmd.Flags().BoolVar(&opts.specOnly, "spec-only", false, "write the spec document without test files")
	return cmd
}

func (a *app) runGenerate(component string, opts generateOptions) error {
	p, err := a.loadProject()
	if err != nil {
		return err
	}

	if opts.specOnly {
		analysis, err := generator.Analyze(p.Root, component)
		if err != nil {
			return err
		}
		s, err := generator.BuildSpec(p.SpecsDir(), analysis, nil)
		if err != nil {
			return err
		}
		path, err := spec.Write(p.SpecsDir(), s)
		if err != nil {
			return err
		}
		a.out.Done("Wrote %s (%d subcomponents)", relPath(p.Root, path), len(s.Subcomponents))
		return nil
	}

	list, err := p.Config.ParsedContainers()
	if err != nil {
		return err
	}

	a.out.Action("Generating %s tests for %s...", opts.testType, component)
	res, err := generator.Generate(p.Root, component, generator.Options{
		Framework:  p.Config.Framework,
		Type:       opts.testType,
		Containers: list,
		SpecsDir:   p.SpecsDir(),
	})
	if err != nil {
		return err
	}

	for _, f := range res.Created {
		a.out.Done("Created %s", f)
	}
	for _, f := range res.Skipped {
		a.out.Info("  kept existing %s", f)
	}
	a.out.Done("Wrote %s", relPath(p.Root, res.SpecPath))
	a.out.Hint("Run the new tests with: testrig run -c %s", component)
	return nil
}
