// Package runner schedules component test runs in dependency order across a
// pool of workers and reduces their results.
package runner

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	testrigerrors "github.com/AndreyAkinshin/testrig/internal/errors"
	"github.com/AndreyAkinshin/testrig/internal/framework"
	"github.com/AndreyAkinshin/testrig/internal/spec"
	"github.com/AndreyAkinshin/testrig/internal/testparser"
)

// parallelDepsWarningOnce limits the ordering warning to once per process.
var parallelDepsWarningOnce sync.Once

// Runner runs component specs through one framework collaborator.
type Runner struct {
	collaborator framework.Collaborator
}

// Options configures a run.
type Options struct {
	// Workers is the pool size; zero or less resolves via ResolveWorkers.
	Workers int
	// Dir is the project directory the collaborator runs in.
	Dir string
	// Components restricts the run to the named components. Empty runs all.
	Components []string
	Observer   Observer
}

// Report is the outcome of a run.
type Report struct {
	Summary    testparser.Result
	Components map[string]testparser.Result
	// Order is the dependency order the components were queued in.
	Order    []string
	Workers  int
	Duration time.Duration
}

// New creates a Runner for a collaborator.
func New(c framework.Collaborator) *Runner {
	return &Runner{collaborator: c}
}

// Run sorts specs by dependency, queues them and drains the queue on a
// worker pool. Ordering is advisory: a component may start before its
// dependencies finish. Only a dependency cycle or an unknown component in
// opts.Components is returned as an error; per-component failures are
// recorded in the report.
func (r *Runner) Run(ctx context.Context, specs []spec.ComponentSpec, opts Options) (*Report, error) {
	sorted, err := spec.Sort(specs)
	if err != nil {
		return nil, err
	}
	if len(opts.Components) > 0 {
		sorted, err = filterComponents(sorted, opts.Components)
		if err != nil {
			return nil, err
		}
	}

	workers := ResolveWorkers(opts.Workers)
	if workers > 1 && hasDependencies(sorted) {
		parallelDepsWarningOnce.Do(func() {
			slog.Warn("parallel mode does not wait for dependencies; components may run before their dependencies complete")
		})
	}

	obs := opts.Observer
	if obs == nil {
		obs = NopObserver{}
	}

	order := spec.Names(sorted)
	slog.Info("running components", "count", len(order), "workers", workers, "framework", r.collaborator.Name())
	obs.RunStarted(order, workers)

	start := time.Now()
	pool := &Pool{
		Workers:      workers,
		Collaborator: r.collaborator,
		Dir:          opts.Dir,
		Observer:     obs,
	}
	results := pool.Run(ctx, NewQueue(sorted))

	report := &Report{
		Summary:    AggregateOrdered(results, order),
		Components: results,
		Order:      order,
		Workers:    workers,
		Duration:   time.Since(start),
	}
	obs.RunFinished(report.Summary)

	if err := ctx.Err(); err != nil {
		return report, testrigerrors.Wrap(err, "run interrupted")
	}
	return report, nil
}

// RunDir loads specs from specsDir and runs them.
func (r *Runner) RunDir(ctx context.Context, specsDir string, opts Options) (*Report, error) {
	specs, err := spec.Load(specsDir)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, specs, opts)
}

// RunParallel loads the specs in specsDir, runs them with the named
// framework on the given number of workers from the current directory and
// returns the aggregate result. Spec loading, cycle and unknown framework
// errors abort before any test runs.
func RunParallel(ctx context.Context, specsDir string, workers int, frameworkName string) (testparser.Result, error) {
	c, err := framework.New(frameworkName, nil)
	if err != nil {
		return testparser.Result{}, err
	}
	report, err := New(c).RunDir(ctx, specsDir, Options{Workers: workers})
	if report == nil {
		return testparser.Result{}, err
	}
	return report.Summary, err
}

// RunSequential runs the whole suite in a single collaborator invocation,
// letting the framework discover tests itself. Non-empty paths restrict
// discovery to those files or directories.
func RunSequential(ctx context.Context, c framework.Collaborator, dir string, paths ...string) (testparser.Result, error) {
	res, err := c.Run(ctx, framework.Invocation{Dir: dir, Files: paths})
	if err != nil {
		if testrigerrors.IsEnvironment(err) {
			return testparser.Result{}, err
		}
		return testparser.Result{}, testrigerrors.Wrap(err, c.Name()+" run failed")
	}
	if res.Failures == nil {
		res.Failures = []testparser.Failure{}
	}
	return res, nil
}

// TypePaths maps a test type to the directories a whole-suite run is
// restricted to. Empty and "all" mean no restriction.
func TypePaths(testType string) ([]string, error) {
	switch strings.ToLower(testType) {
	case "", "all":
		return nil, nil
	case "unit", "integration", "e2e":
		return []string{"tests/" + strings.ToLower(testType)}, nil
	default:
		return nil, testrigerrors.Configf("invalid test type %q (want unit, integration, e2e or all)", testType)
	}
}

// hasDependencies reports whether any spec declares a dependency.
func hasDependencies(specs []spec.ComponentSpec) bool {
	for _, s := range specs {
		if len(s.Dependencies) > 0 {
			return true
		}
	}
	return false
}

// filterComponents keeps the named components, preserving sorted order.
func filterComponents(sorted []spec.ComponentSpec, names []string) ([]spec.ComponentSpec, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	var filtered []spec.ComponentSpec
	for _, s := range sorted {
		if want[s.Component] {
			filtered = append(filtered, s)
			delete(want, s.Component)
		}
	}
	for _, n := range names {
		if want[n] {
			return nil, testrigerrors.NotFound("component", n)
		}
	}
	return filtered, nil
}
