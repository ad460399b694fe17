package runner

import "github.com/AndreyAkinshin/testrig/internal/testparser"

// Observer receives run progress. Methods are called from worker
// goroutines and must be safe for concurrent use.
type Observer interface {
	RunStarted(components []string, workers int)
	ComponentStarted(component string, worker int)
	ComponentFinished(outcome Outcome, recorded testparser.Result)
	RunFinished(summary testparser.Result)
}

// NopObserver ignores all events. Embed it to implement a subset.
type NopObserver struct{}

func (NopObserver) RunStarted([]string, int) {}
func (NopObserver) ComponentStarted(string, int) {}
func (NopObserver) ComponentFinished(Outcome, testparser.Result) {}
func (NopObserver) RunFinished(testparser.Result) {}

// Observers fans events out to several observers in order.
type Observers []Observer

func (obs Observers) RunStarted(components []string, workers int) {
	for _, o := range obs {
		o.RunStarted(components, workers)
	}
}

func (obs Observers) ComponentStarted(component string, worker int) {
	for _, o := range obs {
		o.ComponentStarted(component, worker)
	}
}

func (obs Observers) ComponentFinished(outcome Outcome, recorded testparser.Result) {
	for _, o := range obs {
		o.ComponentFinished(outcome, recorded)
	}
}

func (obs Observers) RunFinished(summary testparser.Result) {
	for _, o := range obs {
		o.RunFinished(summary)
	}
}
