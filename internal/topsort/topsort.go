// Package topsort provides topological sorting with cycle detection.
package topsort

import (
	testrigerrors "github.com/AndreyAkinshin/testrig/internal/errors"
)

// Graph is a directed graph whose edges point from a node to its
// dependencies. Nodes keep their insertion order, which fixes the visit
// order of Sort.
type Graph struct {
	order      []string
	deps       map[string][]string
	duplicates []string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{deps: make(map[string][]string)}
}

// Add inserts a node with its dependencies. Adding a name that already
// exists keeps the first definition and records the name in Duplicates.
func (g *Graph) Add(name string, deps ...string) {
	if _, exists := g.deps[name]; exists {
		g.duplicates = append(g.duplicates, name)
		return
	}
	g.order = append(g.order, name)
	g.deps[name] = append([]string(nil), deps...)
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// Duplicates returns names that were added more than once.
func (g *Graph) Duplicates() []string {
	return g.duplicates
}

// mark is the DFS state of a node.
type mark uint8

const (
	unvisited mark = iota
	inProgress
	done
)

// Sort returns every node in dependency order: for each edge, the
// dependency appears before the dependent.
//
// Nodes are visited in insertion order and dependencies in declared order.
// Dependencies that are not nodes of the graph are skipped. A node reached
// again while it is still on the DFS stack closes a cycle, and Sort fails
// with a *errors.CircularDependencyError naming that node; no partial order
// is returned.
func (g *Graph) Sort() ([]string, error) {
	result := make([]string, 0, len(g.order))
	marks := make(map[string]mark, len(g.order))
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		switch marks[name] {
		case done:
			return nil
		case inProgress:
			return &testrigerrors.CircularDependencyError{
				Component: name,
				Cycle:     cyclePath(stack, name),
			}
		}

		marks[name] = inProgress
		stack = append(stack, name)

		for _, dep := range g.deps[name] {
			if _, known := g.deps[dep]; !known {
				continue
			}
			if err := visit(dep); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		marks[name] = done
		result = append(result, name)

		return nil
	}

	for _, name := range g.order {
		if err := visit(name); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// Dangling returns, per node, the dependencies that are not nodes of the
// graph. Nodes without dangling references are omitted.
func (g *Graph) Dangling() map[string][]string {
	dangling := make(map[string][]string)
	for _, name := range g.order {
		for _, dep := range g.deps[name] {
			if _, ok := g.deps[dep]; !ok {
				dangling[name] = append(dangling[name], dep)
			}
		}
	}
	return dangling
}

// cyclePath returns the portion of the DFS stack that forms the cycle,
// closed with name.
func cyclePath(stack []string, name string) []string {
	for i, n := range stack {
		if n == name {
			path := append([]string(nil), stack[i:]...)
			return append(path, name)
		}
	}
	return []string{name}
}
