package testparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPytestParser(t *testing.T) {
	t.Parallel()
	parser := &PytestParser{}

	tests := []struct {
		name     string
		report   string
		expected Result
	}{
		{
			name:     "all passed",
			report:   `{"duration": 0.12, "summary": {"total": 47, "passed": 47}, "tests": []}`,
			expected: Result{Total: 47, Passed: 47, Duration: 120, Failures: []Failure{}},
		},
		{
			name:     "with skipped",
			report:   `{"duration": 1.5, "summary": {"total": 33, "passed": 30, "skipped": 3}}`,
			expected: Result{Total: 33, Passed: 30, Skipped: 3, Duration: 1500, Failures: []Failure{}},
		},
		{
			name:     "missing summary",
			report:   `{}`,
			expected: Empty(),
		},
		{
			name: "failure with longrepr",
			report: `{"duration": 0.2, "summary": {"total": 2, "passed": 1, "failed": 1},
				"tests": [
					{"nodeid": "tests/unit/test_user.py::test_ok", "outcome": "passed"},
					{"nodeid": "tests/unit/test_user.py::test_dup", "outcome": "failed", "call": {"longrepr": "assert 1 == 2"}}
				]}`,
			expected: Result{Total: 2, Passed: 1, Failed: 1, Duration: 200, Failures: []Failure{{
				Name:    "tests/unit/test_user.py::test_dup",
				Message: "assert 1 == 2",
				File:    "tests/unit/test_user.py",
			}}},
		},
		{
			name: "failure without call section",
			report: `{"summary": {"total": 1, "failed": 1},
				"tests": [{"nodeid": "tests/test_setup.py::test_fixture", "outcome": "failed"}]}`,
			expected: Result{Total: 1, Failed: 1, Failures: []Failure{{
				Name:    "tests/test_setup.py::test_fixture",
				Message: "Test failed",
				File:    "tests/test_setup.py",
			}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			result, err := parser.Parse([]byte(tt.report))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestPytestParser_MultilineLongreprIsStack(t *testing.T) {
	t.Parallel()
	report := `{"summary": {"total": 1, "failed": 1}, "tests": [{"nodeid": "t.py::test_x", "outcome": "failed",
		"call": {"longrepr": "def test_x():\n>   assert False\nE   AssertionError"}}]}`

	result, err := (&PytestParser{}).Parse([]byte(report))
	require.NoError(t, err)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, result.Failures[0].Message, result.Failures[0].Stack)
}

func TestPytestParser_InvalidJSON(t *testing.T) {
	t.Parallel()
	_, err := (&PytestParser{}).Parse([]byte("===== 1 passed in 0.01s ====="))
	require.Error(t, err)
}
