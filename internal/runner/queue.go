package runner

import (
	"sync"

	"github.com/AndreyAkinshin/testrig/internal/spec"
)

// WorkItem is one component's pending test execution.
type WorkItem struct {
	Component    string
	Files        []string
	Dependencies []string
}

// Queue is the shared work list for a run. It is built once and never
// replenished; each item is handed out to exactly one caller.
type Queue struct {
	mu    sync.Mutex
	items []WorkItem
	next  int
}

// NewQueue builds a queue with one item per spec, preserving order.
func NewQueue(specs []spec.ComponentSpec) *Queue {
	items := make([]WorkItem, 0, len(specs))
	for _, s := range specs {
		items = append(items, WorkItem{
			Component:    s.Component,
			Files:        append([]string(nil), s.Files...),
			Dependencies: append([]string(nil), s.Dependencies...),
		})
	}
	return &Queue{items: items}
}

// Next takes the next item. It never blocks; ok is false once the queue is
// drained, and stays false.
func (q *Queue) Next() (item WorkItem, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.next >= len(q.items) {
		return WorkItem{}, false
	}
	item = q.items[q.next]
	q.next++
	return item, true
}

// Remaining returns the number of items not yet taken.
func (q *Queue) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.next
}

// Len returns the total number of items the queue was built with.
func (q *Queue) Len() int {
	return len(q.items)
}
