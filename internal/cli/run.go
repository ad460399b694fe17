package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	testrigerrors "github.com/AndreyAkinshin/testrig/internal/errors"
	"github.com/AndreyAkinshin/testrig/internal/framework"
	"github.com/AndreyAkinshin/testrig/internal/logging"
	"github.com/AndreyAkinshin/testrig/internal/output"
	"github.com/AndreyAkinshin/testrig/internal/project"
	"github.com/AndreyAkinshin/testrig/internal/runner"
	"github.com/AndreyAkinshin/testrig/internal/testparser"
	"github.com/AndreyAkinshin/testrig/internal/watch"
)

type runOptions struct {
	testType  string
	parallel  bool
	agents    int
	component string
	watch     bool
	json      bool
}

// jsonRunResult is printed by `run --json`.
type jsonRunResult struct {
	Success  bool              `json:"success"`
	Data     testparser.Result `json:"data"`
	Duration int64             `json:"duration"`
}

func (a *app) runCommand() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run [unit|integration|e2e|all]",
		Short: "Run tests sequentially or across parallel agents",
		Long: `Run the test suite. Without --parallel or --component the framework runs
the whole suite (optionally restricted to one test type) in one process.
With --parallel, component specs are run in dependency order on a pool of
agents and their results are merged into one summary.

The agent count is taken from --agents, then TESTRIG_AGENTS, then
parallel_agents in test-rig.config.yaml.`,
		Example: `  testrig run
  testrig run unit
  testrig run -p -a 8
  testrig run -c auth --json
  testrig run -p --watch`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"unit", "integration", "e2e", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.testType = args[0]
			}
			return a.runTests(cmd.Context(), opts)
		},
	}
	cmd.Flags().BoolVarP(&opts.parallel, "parallel", "p", false, "run component specs on parallel agents")
	cmd.Flags().IntVarP(&opts.agents, "agents", "a", 0, "number of parallel agents")
	cmd.Flags().StringVarP(&opts.component, "component", "c", "", "run a single component")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-run when specs, tests or sources change")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the result as JSON")
	return cmd
}

func (a *app) runTests(ctx context.Context, opts runOptions) error {
	if opts.agents < 0 {
		return testrigerrors.Configf("invalid agent count %d", opts.agents)
	}
	if _, err := runner.TypePaths(opts.testType); err != nil {
		return err
	}

	p, err := a.loadProject()
	if err != nil {
		return err
	}
	c, err := a.newCollaborator(p.Config.Framework)
	if err != nil {
		return err
	}

	if !opts.watch {
		return a.runOnce(ctx, p, c, opts)
	}

	if err := a.runOnce(ctx, p, c, opts); err != nil && !isTestFailure(err) {
		return err
	}
	paths := []string{p.SpecsDir(), filepath.Join(p.Root, "tests"), filepath.Join(p.Root, "src")}
	a.out.Hint("Watching for changes. Press Ctrl+C to stop.")
	err = watch.Watch(ctx, watch.Options{Paths: paths}, func(ctx context.Context, changed []string) {
		a.out.Println("")
		a.out.Action("%d file(s) changed, re-running...", len(changed))
		if err := a.runOnce(ctx, p, c, opts); err != nil && !isTestFailure(err) {
			a.out.ErrorPrefix("%v", err)
		}
	})
	if errors.Is(err, watch.ErrNothingToWatch) {
		return testrigerrors.Configf("nothing to watch under %s", p.Root)
	}
	return err
}

// runOnce performs one run and prints it. Failing tests yield errTestsFailed.
func (a *app) runOnce(ctx context.Context, p *project.Project, c framework.Collaborator, opts runOptions) error {
	start := time.Now()
	var (
		summary testparser.Result
		rows    []output.ComponentRow
	)

	if !opts.parallel && opts.component == "" {
		paths, _ := runner.TypePaths(opts.testType)
		if !opts.json {
			a.out.Action("Running %s tests with %s...", typeLabel(opts.testType), c.Name())
		}
		res, err := runner.RunSequential(ctx, c, p.Root, paths...)
		if err != nil {
			return err
		}
		summary = res
	} else {
		if opts.testType != "" && opts.testType != "all" {
			a.out.Warning("test type %q applies to whole-suite runs only; running component specs", opts.testType)
		}
		workers := 1
		if opts.parallel {
			workers = a.resolveAgents(opts.agents, p.Config.ParallelAgents)
		}
		runOpts := runner.Options{Workers: workers, Dir: p.Root}
		if opts.component != "" {
			runOpts.Components = []string{opts.component}
		}
		if !opts.json {
			runOpts.Observer = &consoleObserver{out: a.out}
		}

		report, err := runner.New(c).RunDir(ctx, p.SpecsDir(), runOpts)
		if err != nil {
			return err
		}
		summary = report.Summary
		for _, name := range report.Order {
			rows = append(rows, output.ComponentRow{Component: name, Result: report.Components[name]})
		}
	}
	elapsed := time.Since(start)

	if opts.json {
		enc := json.NewEncoder(a.out.Out())
		enc.SetIndent("", "  ")
		if err := enc.Encode(jsonRunResult{Success: summary.Succeeded(), Data: summary, Duration: elapsed.Milliseconds()}); err != nil {
			return err
		}
	} else {
		a.out.Results(summary, rows, elapsed)
	}

	if summary.Failed > 0 {
		return errTestsFailed
	}
	return nil
}

// resolveAgents applies the agent precedence: flag, TESTRIG_AGENTS, config.
func (a *app) resolveAgents(flag, configured int) int {
	if flag > 0 {
		return runner.ResolveWorkers(flag)
	}
	if os.Getenv(runner.WorkersEnv) != "" {
		return runner.ResolveWorkers(0)
	}
	if configured > 0 {
		return runner.ResolveWorkers(configured)
	}
	return runner.ResolveWorkers(0)
}

func typeLabel(testType string) string {
	if testType == "" {
		return "all"
	}
	return testType
}

func isTestFailure(err error) bool {
	var code *exitCodeError
	return errors.As(err, &code) && code == errTestsFailed
}

// consoleObserver prints one line per finished component.
type consoleObserver struct {
	runner.NopObserver
	out *output.Writer
	mu  sync.Mutex
}

func (o *consoleObserver) RunStarted(components []string, workers int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.out.Action("Running %d component(s) on %d agent(s)...", len(components), workers)
}

func (o *consoleObserver) ComponentFinished(outcome runner.Outcome, recorded testparser.Result) {
	o.mu.Lock()
	defer o.mu.Unlock()
	logging.For("cli").Debug("component finished", "component", outcome.Component, "failed", recorded.Failed)

	elapsed := output.FormatDuration(outcome.Elapsed)
	switch {
	case outcome.Err != nil:
		o.out.Check(outcome.Component+" "+elapsed, false, outcome.Err.Error())
	case recorded.Failed > 0:
		o.out.Check(outcome.Component+" "+elapsed, false, fmt.Sprintf("%d of %d failed", recorded.Failed, recorded.Total))
	default:
		o.out.Check(outcome.Component+" "+elapsed, true, "")
	}
}
