package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/AndreyAkinshin/testrig/internal/framework"
	"github.com/AndreyAkinshin/testrig/internal/testparser"
)

const (
	// minParallelWorkers keeps at least one worker even when
	// runtime.NumCPU() reports 0 in restricted containers.
	minParallelWorkers = 1

	// maxParallelWorkers caps the pool. Workers spend their time waiting on
	// child processes, so more than this only adds process contention.
	maxParallelWorkers = 256

	// WorkersEnv overrides the default worker count.
	WorkersEnv = "TESTRIG_AGENTS"

	// executionFailedMessage is used when a failed invocation carries no
	// message of its own.
	executionFailedMessage = "Test execution failed"
)

// Outcome is the result of one work item: either a parsed Result or the
// error that prevented one. It never crosses the worker loop as a panic.
type Outcome struct {
	Component string
	Result    testparser.Result
	Err       error
	Elapsed   time.Duration
}

// Normalized returns the result to record for this outcome. A failed
// invocation becomes a single synthesized failure named after the component.
func (o Outcome) Normalized() testparser.Result {
	if o.Err == nil {
		res := o.Result
		if res.Failures == nil {
			res.Failures = []testparser.Failure{}
		}
		return res
	}
	msg := o.Err.Error()
	if msg == "" {
		msg = executionFailedMessage
	}
	return testparser.Result{
		Failed:   1,
		Failures: []testparser.Failure{{Name: o.Component, Message: msg}},
	}
}

// Pool runs queued work items on a fixed number of workers.
type Pool struct {
	Workers      int
	Collaborator framework.Collaborator
	// Dir is the working directory passed to the collaborator.
	Dir      string
	Observer Observer
}

// Run drains q and returns the recorded result per component. Workers stop
// when the queue is empty or ctx is canceled; items never taken are absent
// from the map. One item's failure never stops the others.
func (p *Pool) Run(ctx context.Context, q *Queue) map[string]testparser.Result {
	obs := p.Observer
	if obs == nil {
		obs = NopObserver{}
	}
	workers := max(minParallelWorkers, min(p.Workers, maxParallelWorkers))

	var mu sync.Mutex
	var wg sync.WaitGroup
	results := make(map[string]testparser.Result, q.Len())

	for id := range workers {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for ctx.Err() == nil {
				item, ok := q.Next()
				if !ok {
					return
				}

				obs.ComponentStarted(item.Component, id)
				outcome := p.execute(ctx, item)
				res := outcome.Normalized()

				mu.Lock()
				results[item.Component] = res
				mu.Unlock()

				logOutcome(id, outcome, res)
				obs.ComponentFinished(outcome, res)
			}
		}(id)
	}

	wg.Wait()
	return results
}

// execute invokes the collaborator for one item, converting panics to errors.
func (p *Pool) execute(ctx context.Context, item WorkItem) (outcome Outcome) {
	outcome.Component = item.Component
	start := time.Now()
	defer func() {
		outcome.Elapsed = time.Since(start)
		if r := recover(); r != nil {
			outcome.Result = testparser.Result{}
			outcome.Err = fmt.Errorf("collaborator panicked: %v", r)
		}
	}()

	if len(item.Files) == 0 {
		slog.Warn("component has no test files; skipping", "component", item.Component)
		outcome.Result = testparser.Empty()
		return outcome
	}

	outcome.Result, outcome.Err = p.Collaborator.Run(ctx, framework.Invocation{
		Component: item.Component,
		Files:     item.Files,
		Dir:       p.Dir,
	})
	return outcome
}

func logOutcome(worker int, o Outcome, res testparser.Result) {
	if o.Err != nil {
		slog.Error("component run failed",
			"component", o.Component, "worker", worker, "elapsed", o.Elapsed, "error", o.Err)
		return
	}
	slog.Debug("component finished",
		"component", o.Component, "worker", worker, "elapsed", o.Elapsed,
		"passed", res.Passed, "failed", res.Failed, "skipped", res.Skipped)
}

// defaultWorkerCount returns the CPU count, at least minParallelWorkers.
func defaultWorkerCount() int {
	return max(minParallelWorkers, runtime.NumCPU())
}

// ResolveWorkers picks the worker count for a run. A positive request wins
// (capped at the maximum); otherwise TESTRIG_AGENTS is consulted, and
// invalid values fall back to the CPU count with a warning.
func ResolveWorkers(requested int) int {
	if requested > 0 {
		if requested > maxParallelWorkers {
			slog.Warn("worker count out of range, capping",
				"requested", requested, "max", maxParallelWorkers)
			return maxParallelWorkers
		}
		return requested
	}

	env := os.Getenv(WorkersEnv)
	if env == "" {
		return defaultWorkerCount()
	}

	n, err := strconv.Atoi(env)
	if err != nil {
		slog.Warn("invalid worker count (not a number), using default", "env", WorkersEnv, "value", env)
		return defaultWorkerCount()
	}
	if n < minParallelWorkers || n > maxParallelWorkers {
		slog.Warn("worker count out of range, using default",
			"env", WorkersEnv, "value", n, "min", minParallelWorkers, "max", maxParallelWorkers)
		return defaultWorkerCount()
	}
	return n
}
