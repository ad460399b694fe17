package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	testrigerrors "github.com/AndreyAkinshin/testrig/internal/errors"
	"github.com/AndreyAkinshin/testrig/internal/framework"
	"github.com/AndreyAkinshin/testrig/internal/spec"
	"github.com/AndreyAkinshin/testrig/internal/testing/mocks"
	"github.com/AndreyAkinshin/testrig/internal/testparser"
)

func TestResolveWorkers_Default(t *testing.T) {
	t.Setenv(WorkersEnv, "")

	workers := ResolveWorkers(0)
	if workers < 1 {
		t.Errorf("ResolveWorkers(0) = %d, want >= 1", workers)
	}
}

func TestResolveWorkers_FromEnv(t *testing.T) {
	t.Setenv(WorkersEnv, "4")

	if workers := ResolveWorkers(0); workers != 4 {
		t.Errorf("ResolveWorkers(0) = %d, want 4", workers)
	}
}

func TestResolveWorkers_RequestBeatsEnv(t *testing.T) {
	t.Setenv(WorkersEnv, "4")

	if workers := ResolveWorkers(2); workers != 2 {
		t.Errorf("ResolveWorkers(2) = %d, want 2", workers)
	}
	if workers := ResolveWorkers(1000); workers != maxParallelWorkers {
		t.Errorf("ResolveWorkers(1000) = %d, want %d", workers, maxParallelWorkers)
	}
}

func TestResolveWorkers_InvalidEnv(t *testing.T) {
	for _, val := range []string{"invalid", "0", "-1", "257"} {
		t.Run(val, func(t *testing.T) {
			t.Setenv(WorkersEnv, val)

			if workers := ResolveWorkers(0); workers != defaultWorkerCount() {
				t.Errorf("ResolveWorkers(0) = %d, want default %d", workers, defaultWorkerCount())
			}
		})
	}
}

func TestResolveWorkers_Boundaries(t *testing.T) {
	for _, tc := range []struct {
		env  string
		want int
	}{{"1", 1}, {"256", 256}} {
		t.Run(tc.env, func(t *testing.T) {
			t.Setenv(WorkersEnv, tc.env)
			if workers := ResolveWorkers(0); workers != tc.want {
				t.Errorf("ResolveWorkers(0) = %d, want %d", workers, tc.want)
			}
		})
	}
}

func componentSpecs(names ...string) []spec.ComponentSpec {
	specs := make([]spec.ComponentSpec, 0, len(names))
	for _, n := range names {
		specs = append(specs, spec.ComponentSpec{Component: n, Files: []string{n + ".spec.ts"}})
	}
	return specs
}

func TestQueue_NextDrainsInOrder(t *testing.T) {
	t.Parallel()
	q := NewQueue(componentSpecs("a", "b", "c"))

	if q.Len() != 3 || q.Remaining() != 3 {
		t.Fatalf("Len/Remaining = %d/%d, want 3/3", q.Len(), q.Remaining())
	}
	for _, want := range []string{"a", "b", "c"} {
		item, ok := q.Next()
		if !ok || item.Component != want {
			t.Errorf("Next() = %q, %v; want %q, true", item.Component, ok, want)
		}
	}
	for range 3 {
		if _, ok := q.Next(); ok {
			t.Error("Next() on drained queue returned an item")
		}
	}
	if q.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", q.Remaining())
	}
}

func TestQueue_ConcurrentNextHandsOutEachItemOnce(t *testing.T) {
	t.Parallel()
	names := make([]string, 500)
	for i := range names {
		names[i] = fmt.Sprintf("c%03d", i)
	}
	q := NewQueue(componentSpecs(names...))

	var mu sync.Mutex
	seen := map[string]int{}
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				item, ok := q.Next()
				if !ok {
					return
				}
				mu.Lock()
				seen[item.Component]++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != len(names) {
		t.Errorf("saw %d distinct items, want %d", len(seen), len(names))
	}
	for name, n := range seen {
		if n != 1 {
			t.Errorf("item %q handed out %d times", name, n)
		}
	}
}

func TestQueue_CopiesSpecSlices(t *testing.T) {
	t.Parallel()
	specs := componentSpecs("a")
	q := NewQueue(specs)
	specs[0].Files[0] = "mutated"

	item, _ := q.Next()
	if item.Files[0] != "a.spec.ts" {
		t.Errorf("Files[0] = %q, want a.spec.ts", item.Files[0])
	}
}

func TestPool_TwoWorkersFiveItemsEachRunOnce(t *testing.T) {
	t.Parallel()
	collab := mocks.NewCollaborator("vitest")
	pool := &Pool{Workers: 2, Collaborator: collab}

	results := pool.Run(context.Background(), NewQueue(componentSpecs("a", "b", "c", "d", "e")))

	if collab.RunCount() != 5 {
		t.Errorf("RunCount() = %d, want 5", collab.RunCount())
	}
	if len(results) != 5 {
		t.Errorf("len(results) = %d, want 5", len(results))
	}
	counts := map[string]int{}
	for _, c := range collab.RunOrder() {
		counts[c]++
	}
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		if counts[name] != 1 {
			t.Errorf("component %q ran %d times, want 1", name, counts[name])
		}
	}
}

func TestPool_ErrorIsIsolated(t *testing.T) {
	t.Parallel()
	collab := mocks.NewCollaborator("vitest").
		WithResult("a", testparser.Result{Total: 3, Passed: 3, Duration: 40}).
		WithError("b", errors.New("spawn npx ENOENT")).
		WithResult("c", testparser.Result{Total: 1, Passed: 1, Duration: 10})
	pool := &Pool{Workers: 2, Collaborator: collab}

	results := pool.Run(context.Background(), NewQueue(componentSpecs("a", "b", "c")))

	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	b := results["b"]
	if b.Total != 0 || b.Passed != 0 || b.Failed != 1 || b.Skipped != 0 || b.Duration != 0 {
		t.Errorf("results[b] = %+v, want a single synthesized failure", b)
	}
	if len(b.Failures) != 1 || b.Failures[0].Name != "b" || b.Failures[0].Message != "spawn npx ENOENT" {
		t.Errorf("results[b].Failures = %+v", b.Failures)
	}
	if results["a"].Passed != 3 || results["c"].Passed != 1 {
		t.Errorf("healthy components were affected: a=%+v c=%+v", results["a"], results["c"])
	}
}

func TestPool_PanicIsIsolated(t *testing.T) {
	t.Parallel()
	collab := mocks.NewCollaborator("vitest").WithRunFunc(
		func(_ context.Context, inv framework.Invocation) (testparser.Result, error) {
			if inv.Component == "bad" {
				panic("parser exploded")
			}
			return testparser.Result{Total: 1, Passed: 1}, nil
		})
	pool := &Pool{Workers: 1, Collaborator: collab}

	results := pool.Run(context.Background(), NewQueue(componentSpecs("bad", "good")))

	if results["bad"].Failed != 1 {
		t.Errorf("results[bad] = %+v, want synthesized failure", results["bad"])
	}
	if results["good"].Passed != 1 {
		t.Errorf("results[good] = %+v, worker stopped after panic", results["good"])
	}
}

func TestPool_ComponentWithoutFilesIsNotInvoked(t *testing.T) {
	t.Parallel()
	collab := mocks.NewCollaborator("vitest")
	pool := &Pool{Workers: 1, Collaborator: collab}

	results := pool.Run(context.Background(), NewQueue([]spec.ComponentSpec{{Component: "empty"}}))

	if collab.RunCount() != 0 {
		t.Errorf("RunCount() = %d, want 0", collab.RunCount())
	}
	if res, ok := results["empty"]; !ok || res.Total != 0 || res.Failed != 0 {
		t.Errorf("results[empty] = %+v, %v; want recorded zero result", res, ok)
	}
}

func TestPool_StopsOnCanceledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	collab := mocks.NewCollaborator("vitest").WithRunFunc(
		func(context.Context, framework.Invocation) (testparser.Result, error) {
			cancel()
			return testparser.Empty(), nil
		})
	pool := &Pool{Workers: 1, Collaborator: collab}

	results := pool.Run(ctx, NewQueue(componentSpecs("a", "b", "c")))

	if collab.RunCount() != 1 || len(results) != 1 {
		t.Errorf("RunCount()=%d len(results)=%d, want 1/1", collab.RunCount(), len(results))
	}
}

func TestPool_PassesFilesAndDir(t *testing.T) {
	t.Parallel()
	collab := mocks.NewCollaborator("pytest")
	pool := &Pool{Workers: 1, Collaborator: collab, Dir: "/project"}

	pool.Run(context.Background(), NewQueue([]spec.ComponentSpec{
		{Component: "auth", Files: []string{"tests/test_a.py", "tests/test_b.py"}},
	}))

	invs := collab.Invocations()
	if len(invs) != 1 {
		t.Fatalf("len(Invocations()) = %d, want 1", len(invs))
	}
	if invs[0].Dir != "/project" || len(invs[0].Files) != 2 || invs[0].Component != "auth" {
		t.Errorf("invocation = %+v", invs[0])
	}
}

func TestOutcome_NormalizedEmptyMessage(t *testing.T) {
	t.Parallel()
	res := Outcome{Component: "x", Err: errors.New("")}.Normalized()
	if len(res.Failures) != 1 || res.Failures[0].Message != executionFailedMessage {
		t.Errorf("Normalized() = %+v", res)
	}
}

func TestAggregate(t *testing.T) {
	t.Parallel()
	results := map[string]testparser.Result{
		"x": {Total: 5, Passed: 4, Failed: 1, Duration: 100, Failures: []testparser.Failure{{Name: "x1", Message: "m"}}},
		"y": {Total: 5, Passed: 4, Failed: 1, Duration: 250, Failures: []testparser.Failure{{Name: "y1", Message: "m"}}},
	}

	agg := Aggregate(results)
	if agg.Total != 10 || agg.Passed != 8 || agg.Failed != 2 || agg.Skipped != 0 {
		t.Errorf("Aggregate() counters = %+v", agg)
	}
	if agg.Duration != 250 {
		t.Errorf("Aggregate().Duration = %d, want 250", agg.Duration)
	}
	if len(agg.Failures) != 2 || agg.Failures[0].Name != "x1" || agg.Failures[1].Name != "y1" {
		t.Errorf("Aggregate().Failures = %+v", agg.Failures)
	}
}

func TestAggregate_Empty(t *testing.T) {
	t.Parallel()
	agg := Aggregate(map[string]testparser.Result{})
	if agg.Total != 0 || agg.Passed != 0 || agg.Failed != 0 || agg.Skipped != 0 || agg.Duration != 0 {
		t.Errorf("Aggregate(empty) = %+v, want zero", agg)
	}
	if agg.Failures == nil || len(agg.Failures) != 0 {
		t.Errorf("Aggregate(empty).Failures = %#v, want empty non-nil", agg.Failures)
	}
}

func TestAggregateOrdered_FollowsOrder(t *testing.T) {
	t.Parallel()
	results := map[string]testparser.Result{
		"a": {Failed: 1, Failures: []testparser.Failure{{Name: "a"}}},
		"b": {Failed: 1, Failures: []testparser.Failure{{Name: "b"}}},
	}
	agg := AggregateOrdered(results, []string{"b", "a", "missing"})
	if agg.Failures[0].Name != "b" || agg.Failures[1].Name != "a" {
		t.Errorf("Failures = %+v, want b then a", agg.Failures)
	}
}

type recordingObserver struct {
	NopObserver
	mu       sync.Mutex
	started  []string
	finished []string
	order    []string
	summary  *testparser.Result
}

func (o *recordingObserver) RunStarted(components []string, _ int) {
	o.order = components
}

func (o *recordingObserver) ComponentStarted(c string, _ int) {
	o.mu.Lock()
	o.started = append(o.started, c)
	o.mu.Unlock()
}

func (o *recordingObserver) ComponentFinished(out Outcome, _ testparser.Result) {
	o.mu.Lock()
	o.finished = append(o.finished, out.Component)
	o.mu.Unlock()
}

func (o *recordingObserver) RunFinished(summary testparser.Result) {
	o.summary = &summary
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()
	specs := []spec.ComponentSpec{
		{Component: "auth", Dependencies: []string{"user", "database"}, Files: []string{"auth.spec.ts"}},
		{Component: "database", Files: []string{"db.spec.ts"}},
		{Component: "user", Dependencies: []string{"database"}, Files: []string{"user.spec.ts"}},
	}
	collab := mocks.NewCollaborator("vitest").
		WithResult("auth", testparser.Result{Total: 2, Passed: 2, Duration: 30}).
		WithResult("database", testparser.Result{Total: 1, Passed: 1, Duration: 10}).
		WithError("user", errors.New("boom"))
	obs := &recordingObserver{}

	report, err := New(collab).Run(context.Background(), specs, Options{Workers: 1, Observer: obs})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	wantOrder := []string{"database", "user", "auth"}
	for i, name := range wantOrder {
		if report.Order[i] != name || obs.order[i] != name {
			t.Errorf("Order[%d] = %q (observer %q), want %q", i, report.Order[i], obs.order[i], name)
		}
	}
	// A single worker takes items strictly in queue order.
	for i, name := range collab.RunOrder() {
		if name != wantOrder[i] {
			t.Errorf("RunOrder()[%d] = %q, want %q", i, name, wantOrder[i])
		}
	}
	if report.Summary.Total != 3 || report.Summary.Passed != 3 || report.Summary.Failed != 1 {
		t.Errorf("Summary = %+v", report.Summary)
	}
	if report.Summary.Duration != 30 {
		t.Errorf("Summary.Duration = %d, want 30", report.Summary.Duration)
	}
	if report.Workers != 1 || len(report.Components) != 3 {
		t.Errorf("Workers=%d Components=%d", report.Workers, len(report.Components))
	}
	if len(obs.started) != 3 || len(obs.finished) != 3 || obs.summary == nil {
		t.Errorf("observer saw started=%v finished=%v summary=%v", obs.started, obs.finished, obs.summary)
	}
}

func TestRunner_Run_CycleRunsNothing(t *testing.T) {
	t.Parallel()
	specs := []spec.ComponentSpec{
		{Component: "a", Dependencies: []string{"b"}, Files: []string{"a.spec.ts"}},
		{Component: "b", Dependencies: []string{"a"}, Files: []string{"b.spec.ts"}},
	}
	collab := mocks.NewCollaborator("vitest")

	report, err := New(collab).Run(context.Background(), specs, Options{Workers: 2})
	if report != nil {
		t.Errorf("Run() report = %+v, want nil", report)
	}
	if !testrigerrors.IsCycle(err) {
		t.Errorf("Run() error = %v, want circular dependency", err)
	}
	if collab.RunCount() != 0 {
		t.Errorf("RunCount() = %d, want 0", collab.RunCount())
	}
}

func TestRunner_Run_ComponentFilter(t *testing.T) {
	t.Parallel()
	collab := mocks.NewCollaborator("vitest")
	r := New(collab)

	report, err := r.Run(context.Background(), componentSpecs("a", "b", "c"), Options{Workers: 2, Components: []string{"b"}})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Order) != 1 || report.Order[0] != "b" || collab.RunCount() != 1 {
		t.Errorf("Order = %v RunCount = %d, want only b", report.Order, collab.RunCount())
	}

	_, err = r.Run(context.Background(), componentSpecs("a"), Options{Components: []string{"ghost"}})
	if err == nil {
		t.Error("Run() with unknown component should fail")
	}
}

func TestRunner_Run_Canceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := New(mocks.NewCollaborator("vitest")).Run(ctx, componentSpecs("a"), Options{Workers: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if report == nil || len(report.Components) != 0 {
		t.Errorf("report = %+v, want empty partial report", report)
	}
}

func writeSpec(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRunner_RunDir(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeSpec(t, dir, "api.spec.yaml", "component: api\ndependencies: [db]\nfiles: [api.spec.ts]\n")
	writeSpec(t, dir, "db.spec.yaml", "component: db\nfiles: [db.spec.ts]\n")
	collab := mocks.NewCollaborator("vitest").
		WithResult("api", testparser.Result{Total: 1, Passed: 1}).
		WithResult("db", testparser.Result{Total: 2, Passed: 2})

	report, err := New(collab).RunDir(context.Background(), dir, Options{Workers: 1})
	if err != nil {
		t.Fatalf("RunDir() error = %v", err)
	}
	if report.Order[0] != "db" || report.Order[1] != "api" {
		t.Errorf("Order = %v, want [db api]", report.Order)
	}
	if report.Summary.Passed != 3 {
		t.Errorf("Summary.Passed = %d, want 3", report.Summary.Passed)
	}
}

func TestRunParallel_Errors(t *testing.T) {
	t.Parallel()

	_, err := RunParallel(context.Background(), t.TempDir(), 2, "mocha")
	if testrigerrors.GetExitCode(err) != testrigerrors.ExitConfigError {
		t.Errorf("unknown framework exit code = %d, want %d", testrigerrors.GetExitCode(err), testrigerrors.ExitConfigError)
	}

	_, err = RunParallel(context.Background(), filepath.Join(t.TempDir(), "missing"), 2, "vitest")
	if !testrigerrors.IsSpecLoad(err) {
		t.Errorf("missing dir error = %v, want spec load error", err)
	}

	dir := t.TempDir()
	writeSpec(t, dir, "a.spec.yaml", "component: a\ndependencies: [a]\n")
	_, err = RunParallel(context.Background(), dir, 2, "vitest")
	if !testrigerrors.IsCycle(err) {
		t.Errorf("self-dependency error = %v, want circular dependency", err)
	}
}

func TestRunParallel_EmptySpecDir(t *testing.T) {
	t.Parallel()
	res, err := RunParallel(context.Background(), t.TempDir(), 2, "vitest")
	if err != nil {
		t.Fatalf("RunParallel() error = %v", err)
	}
	if res.Total != 0 || res.Failures == nil {
		t.Errorf("RunParallel(empty) = %+v, want zero result", res)
	}
}

func TestRunSequential(t *testing.T) {
	t.Parallel()
	collab := mocks.NewCollaborator("pytest").WithResult("", testparser.Result{Total: 4, Passed: 4})

	res, err := RunSequential(context.Background(), collab, "/p")
	if err != nil || res.Passed != 4 {
		t.Errorf("RunSequential() = %+v, %v", res, err)
	}
	if inv := collab.Invocations()[0]; inv.Dir != "/p" || len(inv.Files) != 0 {
		t.Errorf("invocation = %+v, want whole-suite run in /p", inv)
	}

	failing := mocks.NewCollaborator("pytest").WithError("", errors.New("exit status 4"))
	_, err = RunSequential(context.Background(), failing, "/p")
	if testrigerrors.GetExitCode(err) != testrigerrors.ExitRuntimeError {
		t.Errorf("RunSequential() error exit code = %d", testrigerrors.GetExitCode(err))
	}
}

func TestRunSequential_Paths(t *testing.T) {
	t.Parallel()
	collab := mocks.NewCollaborator("vitest")

	if _, err := RunSequential(context.Background(), collab, "/p", "tests/unit"); err != nil {
		t.Fatalf("RunSequential() error = %v", err)
	}
	if inv := collab.Invocations()[0]; len(inv.Files) != 1 || inv.Files[0] != "tests/unit" {
		t.Errorf("invocation files = %v, want [tests/unit]", inv.Files)
	}
}

func TestTypePaths(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"all", ""},
		{"unit", "tests/unit"},
		{"Integration", "tests/integration"},
		{"e2e", "tests/e2e"},
	}
	for _, tt := range tests {
		got, err := TypePaths(tt.in)
		if err != nil {
			t.Errorf("TypePaths(%q) error = %v", tt.in, err)
			continue
		}
		if strings.Join(got, ",") != tt.want {
			t.Errorf("TypePaths(%q) = %v, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := TypePaths("smoke"); testrigerrors.GetExitCode(err) != testrigerrors.ExitConfigError {
		t.Errorf("TypePaths(smoke) error = %v, want config error", err)
	}
}
