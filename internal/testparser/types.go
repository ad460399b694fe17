// Package testparser normalizes test framework reports into a common result shape.
package testparser

// Failure holds information about a single failed test.
type Failure struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
	File    string `json:"file,omitempty"`
}

// Result holds normalized test counts for one component or for a whole run.
//
// Duration is in milliseconds. For a single component it is that component's
// run time; for an aggregate it is the longest component duration, which
// approximates wall-clock time when components run concurrently.
type Result struct {
	Total    int       `json:"total"`
	Passed   int       `json:"passed"`
	Failed   int       `json:"failed"`
	Skipped  int       `json:"skipped"`
	Duration int64     `json:"duration"`
	Failures []Failure `json:"failures"`
}

// Add merges other into r. Counters are summed, Duration keeps the maximum
// and failures are appended in call order. Total is summed as reported and
// is not recomputed from the other counters.
func (r *Result) Add(other *Result) {
	if other == nil {
		return
	}
	r.Total += other.Total
	r.Passed += other.Passed
	r.Failed += other.Failed
	r.Skipped += other.Skipped
	r.Duration = max(r.Duration, other.Duration)
	r.Failures = append(r.Failures, other.Failures...)
}

// Succeeded reports whether no test failed.
func (r *Result) Succeeded() bool {
	return r.Failed == 0
}

// Empty returns a zero result with a non-nil failures slice, so it encodes
// as [] rather than null.
func Empty() Result {
	return Result{Failures: []Failure{}}
}

// Parser converts a raw framework report into a Result.
type Parser interface {
	// Parse decodes the report payload.
	Parse(data []byte) (Result, error)
	// Name returns the name of the parser.
	Name() string
}
