package testparser

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// pytestReport is the subset of pytest-json-report output we read.
type pytestReport struct {
	Duration float64 `json:"duration"`
	Summary  struct {
		Total   int `json:"total"`
		Passed  int `json:"passed"`
		Failed  int `json:"failed"`
		Skipped int `json:"skipped"`
	} `json:"summary"`
	Tests []struct {
		NodeID  string `json:"nodeid"`
		Outcome string `json:"outcome"`
		Call    *struct {
			Longrepr string `json:"longrepr"`
		} `json:"call"`
	} `json:"tests"`
}

// PytestParser parses reports written by the pytest-json-report plugin.
type PytestParser struct{}

// Name returns the parser name.
func (p *PytestParser) Name() string {
	return "pytest"
}

// Parse extracts counts and failures from a pytest-json-report document.
// The report's duration is in seconds and is converted to milliseconds.
func (p *PytestParser) Parse(data []byte) (Result, error) {
	var report pytestReport
	if err := json.Unmarshal(data, &report); err != nil {
		return Result{}, fmt.Errorf("invalid pytest report: %w", err)
	}

	result := Empty()
	result.Total = report.Summary.Total
	result.Passed = report.Summary.Passed
	result.Failed = report.Summary.Failed
	result.Skipped = report.Summary.Skipped
	result.Duration = int64(math.Round(report.Duration * 1000))

	for _, test := range report.Tests {
		if test.Outcome != "failed" {
			continue
		}
		message := defaultFailureMessage
		if test.Call != nil && test.Call.Longrepr != "" {
			message = test.Call.Longrepr
		}
		file, _, _ := strings.Cut(test.NodeID, "::")
		result.Failures = append(result.Failures, Failure{
			Name:    test.NodeID,
			Message: message,
			Stack:   stackOf(message),
			File:    file,
		})
	}

	return result, nil
}
