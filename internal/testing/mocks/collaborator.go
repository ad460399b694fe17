// Package mocks provides shared test doubles for testrig packages.
package mocks

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/AndreyAkinshin/testrig/internal/framework"
	"github.com/AndreyAkinshin/testrig/internal/testparser"
)

// Collaborator implements framework.Collaborator for testing.
// Use NewCollaborator() to create instances with a fluent builder API.
type Collaborator struct {
	name    string
	results map[string]testparser.Result
	errs    map[string]error

	// RunFunc is called by Run when set; it overrides canned results.
	RunFunc func(ctx context.Context, inv framework.Invocation) (testparser.Result, error)

	// Execution tracking (thread-safe)
	runCount int32
	mu       sync.Mutex
	runOrder []string
	invs     []framework.Invocation
}

// NewCollaborator creates a mock collaborator with the given framework name.
func NewCollaborator(name string) *Collaborator {
	return &Collaborator{
		name:    name,
		results: make(map[string]testparser.Result),
		errs:    make(map[string]error),
	}
}

// WithResult sets the result returned for a component.
func (m *Collaborator) WithResult(component string, res testparser.Result) *Collaborator {
	m.results[component] = res
	return m
}

// WithError makes Run fail for a component.
func (m *Collaborator) WithError(component string, err error) *Collaborator {
	m.errs[component] = err
	return m
}

// WithRunFunc sets the function called by Run.
func (m *Collaborator) WithRunFunc(fn func(ctx context.Context, inv framework.Invocation) (testparser.Result, error)) *Collaborator {
	m.RunFunc = fn
	return m
}

func (m *Collaborator) Name() string { return m.name }

// Run records the invocation and answers from RunFunc or the canned
// results. Components without a canned answer get an empty result.
func (m *Collaborator) Run(ctx context.Context, inv framework.Invocation) (testparser.Result, error) {
	atomic.AddInt32(&m.runCount, 1)
	m.mu.Lock()
	m.runOrder = append(m.runOrder, inv.Component)
	m.invs = append(m.invs, inv)
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx, inv)
	}
	if err, ok := m.errs[inv.Component]; ok {
		return testparser.Result{}, err
	}
	if res, ok := m.results[inv.Component]; ok {
		return res, nil
	}
	return testparser.Empty(), nil
}

// Test inspection methods

// RunCount returns the number of times Run was called.
func (m *Collaborator) RunCount() int32 {
	return atomic.LoadInt32(&m.runCount)
}

// RunOrder returns the components in the order Run was called.
func (m *Collaborator) RunOrder() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.runOrder))
	copy(result, m.runOrder)
	return result
}

// Invocations returns every invocation Run received.
func (m *Collaborator) Invocations() []framework.Invocation {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]framework.Invocation, len(m.invs))
	copy(result, m.invs)
	return result
}

// Reset clears execution tracking state.
func (m *Collaborator) Reset() {
	atomic.StoreInt32(&m.runCount, 0)
	m.mu.Lock()
	m.runOrder = nil
	m.invs = nil
	m.mu.Unlock()
}
