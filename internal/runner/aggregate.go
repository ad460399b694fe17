package runner

import (
	"sort"

	"github.com/AndreyAkinshin/testrig/internal/testparser"
)

// Aggregate reduces per-component results into one. Counters are summed,
// duration is the maximum and failures are concatenated in component name
// order. An empty map yields a zero result.
func Aggregate(results map[string]testparser.Result) testparser.Result {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	return AggregateOrdered(results, names)
}

// AggregateOrdered is Aggregate with failures concatenated in the given
// order. Names missing from results are ignored.
func AggregateOrdered(results map[string]testparser.Result, order []string) testparser.Result {
	total := testparser.Empty()
	for _, name := range order {
		res, ok := results[name]
		if !ok {
			continue
		}
		total.Add(&res)
	}
	return total
}
