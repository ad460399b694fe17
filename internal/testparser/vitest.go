package testparser

import (
	"encoding/json"
	"fmt"
	"strings"
)

// defaultFailureMessage is used when a report marks a test failed without
// saying why.
const defaultFailureMessage = "Test failed"

// vitestReport is the subset of the vitest/jest JSON reporter output we read.
type vitestReport struct {
	NumTotalTests   int `json:"numTotalTests"`
	NumPassedTests  int `json:"numPassedTests"`
	NumFailedTests  int `json:"numFailedTests"`
	NumPendingTests int `json:"numPendingTests"`
	TestResults     []struct {
		Name             string  `json:"name"`
		StartTime        float64 `json:"startTime"`
		EndTime          float64 `json:"endTime"`
		AssertionResults []struct {
			Title           string   `json:"title"`
			FullName        string   `json:"fullName"`
			Status          string   `json:"status"`
			FailureMessages []string `json:"failureMessages"`
		} `json:"assertionResults"`
	} `json:"testResults"`
}

// VitestParser parses the JSON reporter output of vitest (and jest, which
// shares the format).
type VitestParser struct{}

// Name returns the parser name.
func (p *VitestParser) Name() string {
	return "vitest"
}

// Parse extracts counts and failures from `vitest run --reporter=json` output.
// Duration spans from the first file's start to the last file's end.
func (p *VitestParser) Parse(data []byte) (Result, error) {
	var report vitestReport
	if err := json.Unmarshal(data, &report); err != nil {
		return Result{}, fmt.Errorf("invalid vitest report: %w", err)
	}

	result := Empty()
	result.Total = report.NumTotalTests
	result.Passed = report.NumPassedTests
	result.Failed = report.NumFailedTests
	result.Skipped = report.NumPendingTests

	for _, file := range report.TestResults {
		for _, assertion := range file.AssertionResults {
			if assertion.Status != "failed" {
				continue
			}
			message := strings.Join(assertion.FailureMessages, "\n")
			if message == "" {
				message = defaultFailureMessage
			}
			name := assertion.FullName
			if name == "" {
				name = assertion.Title
			}
			result.Failures = append(result.Failures, Failure{
				Name:    name,
				Message: message,
				Stack:   stackOf(message),
				File:    file.Name,
			})
		}
	}

	if n := len(report.TestResults); n > 0 {
		first, last := report.TestResults[0].StartTime, report.TestResults[n-1].EndTime
		if first > 0 && last >= first {
			result.Duration = int64(last - first)
		}
	}

	return result, nil
}

// stackOf returns message when it spans several lines, which is how both
// frameworks embed stack traces.
func stackOf(message string) string {
	if strings.Contains(message, "\n") {
		return message
	}
	return ""
}
