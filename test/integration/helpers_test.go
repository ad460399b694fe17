// Package integration exercises testrig end to end: spec documents on disk,
// framework collaborators driven through a scripted command runner, and the
// scheduler that ties them together.
package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// fakeRun is the scripted outcome for one test file.
type fakeRun struct {
	passed, failed int
	failure        string
}

// scriptedExec stands in for npx and pytest. It answers from per-file
// scripts and records every command line it receives.
type scriptedExec struct {
	mu    sync.Mutex
	runs  map[string]fakeRun
	calls [][]string
	// err, when set, is returned for every call instead of a report.
	err error
}

func newScriptedExec(runs map[string]fakeRun) *scriptedExec {
	return &scriptedExec{runs: runs}
}

func (s *scriptedExec) exec(_ context.Context, _, name string, args ...string) ([]byte, error) {
	s.mu.Lock()
	s.calls = append(s.calls, append([]string{name}, args...))
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}

	var files []string
	reportFile := ""
	for _, a := range args {
		switch {
		case strings.HasPrefix(a, "--json-report-file="):
			reportFile = strings.TrimPrefix(a, "--json-report-file=")
		case strings.HasPrefix(a, "-"), a == "vitest", a == "run", a == "jest":
		default:
			files = append(files, a)
		}
	}

	if name == "pytest" {
		return nil, os.WriteFile(reportFile, s.pytestReport(files), 0o644)
	}
	return s.vitestReport(files), nil
}

func (s *scriptedExec) vitestReport(files []string) []byte {
	type assertion struct {
		Title           string   `json:"title"`
		FullName        string   `json:"fullName"`
		Status          string   `json:"status"`
		FailureMessages []string `json:"failureMessages"`
	}
	type fileResult struct {
		Name             string      `json:"name"`
		StartTime        float64     `json:"startTime"`
		EndTime          float64     `json:"endTime"`
		AssertionResults []assertion `json:"assertionResults"`
	}
	report := struct {
		NumTotalTests   int          `json:"numTotalTests"`
		NumPassedTests  int          `json:"numPassedTests"`
		NumFailedTests  int          `json:"numFailedTests"`
		NumPendingTests int          `json:"numPendingTests"`
		TestResults     []fileResult `json:"testResults"`
	}{}
	for _, f := range files {
		run := s.runs[f]
		report.NumPassedTests += run.passed
		report.NumFailedTests += run.failed
		report.NumTotalTests += run.passed + run.failed
		fr := fileResult{Name: f, StartTime: 1000, EndTime: 1250}
		for i := 0; i < run.failed; i++ {
			fr.AssertionResults = append(fr.AssertionResults, assertion{
				Title: fmt.Sprintf("case %d", i), FullName: fmt.Sprintf("%s case %d", f, i),
				Status: "failed", FailureMessages: []string{run.failure},
			})
		}
		report.TestResults = append(report.TestResults, fr)
	}
	data, _ := json.Marshal(report)
	return data
}

func (s *scriptedExec) pytestReport(files []string) []byte {
	type test struct {
		NodeID  string `json:"nodeid"`
		Outcome string `json:"outcome"`
		Call    struct {
			Longrepr string `json:"longrepr"`
		} `json:"call"`
	}
	report := struct {
		Duration float64 `json:"duration"`
		Summary  struct {
			Total  int `json:"total"`
			Passed int `json:"passed"`
			Failed int `json:"failed"`
		} `json:"summary"`
		Tests []test `json:"tests"`
	}{Duration: 0.5}
	for _, f := range files {
		run := s.runs[f]
		report.Summary.Passed += run.passed
		report.Summary.Failed += run.failed
		report.Summary.Total += run.passed + run.failed
		for i := 0; i < run.failed; i++ {
			tc := test{NodeID: fmt.Sprintf("%s::test_%d", f, i), Outcome: "failed"}
			tc.Call.Longrepr = run.failure
			report.Tests = append(report.Tests, tc)
		}
	}
	data, _ := json.Marshal(report)
	return data
}

func (s *scriptedExec) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

// writeProject lays out files under a fresh temporary project root.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
	return root
}
