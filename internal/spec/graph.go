package spec

import (
	"github.com/AndreyAkinshin/testrig/internal/topsort"
)

// Graph builds the dependency graph of specs in their given order.
func Graph(specs []ComponentSpec) *topsort.Graph {
	g := topsort.New()
	for _, s := range specs {
		g.Add(s.Component, s.Dependencies...)
	}
	return g
}

// Sort returns specs in dependency order (dependencies first). It does not
// modify its input. When two specs share a component name the first one
// wins and the other is dropped. A cycle yields a
// *errors.CircularDependencyError and no specs.
func Sort(specs []ComponentSpec) ([]ComponentSpec, error) {
	order, err := Graph(specs).Sort()
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*ComponentSpec, len(specs))
	for i := range specs {
		if _, seen := byName[specs[i].Component]; !seen {
			byName[specs[i].Component] = &specs[i]
		}
	}

	sorted := make([]ComponentSpec, 0, len(order))
	for _, name := range order {
		sorted = append(sorted, *byName[name])
	}
	return sorted, nil
}
