package testparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vitestReportWithFailure = `{
  "numTotalTests": 4,
  "numPassedTests": 2,
  "numFailedTests": 1,
  "numPendingTests": 1,
  "testResults": [
    {
      "name": "/repo/tests/unit/user/user-service.spec.ts",
      "startTime": 1700000000000,
      "endTime": 1700000000120,
      "assertionResults": [
        {"title": "creates a user", "fullName": "UserService creates a user", "status": "passed", "failureMessages": []},
        {"title": "rejects duplicates", "fullName": "UserService rejects duplicates", "status": "failed",
         "failureMessages": ["AssertionError: expected 1 to be 2\n    at user-service.spec.ts:42:7"]}
      ]
    },
    {
      "name": "/repo/tests/unit/user/user-repo.spec.ts",
      "startTime": 1700000000050,
      "endTime": 1700000000300,
      "assertionResults": [
        {"title": "finds by id", "status": "passed"},
        {"title": "todo", "status": "pending"}
      ]
    }
  ]
}`

func TestVitestParser_Parse(t *testing.T) {
	t.Parallel()
	parser := &VitestParser{}

	result, err := parser.Parse([]byte(vitestReportWithFailure))
	require.NoError(t, err)

	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 2, result.Passed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, int64(300), result.Duration)

	require.Len(t, result.Failures, 1)
	f := result.Failures[0]
	assert.Equal(t, "UserService rejects duplicates", f.Name)
	assert.Equal(t, "/repo/tests/unit/user/user-service.spec.ts", f.File)
	assert.Contains(t, f.Message, "expected 1 to be 2")
	assert.Equal(t, f.Message, f.Stack, "multi-line messages are kept as the stack")
}

func TestVitestParser_FallbackNameAndMessage(t *testing.T) {
	t.Parallel()
	report := `{"numTotalTests":1,"numFailedTests":1,"testResults":[{"name":"a.spec.ts",
		"assertionResults":[{"title":"bare failure","status":"failed"}]}]}`

	result, err := (&VitestParser{}).Parse([]byte(report))
	require.NoError(t, err)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "bare failure", result.Failures[0].Name)
	assert.Equal(t, "Test failed", result.Failures[0].Message)
	assert.Empty(t, result.Failures[0].Stack)
	assert.Zero(t, result.Duration, "missing timestamps leave duration at zero")
}

func TestVitestParser_EmptyReport(t *testing.T) {
	t.Parallel()
	result, err := (&VitestParser{}).Parse([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, Empty(), result)
}

func TestVitestParser_InvalidJSON(t *testing.T) {
	t.Parallel()
	_, err := (&VitestParser{}).Parse([]byte("RUN  v1.6.0 /repo\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid vitest report")
}
