package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AndreyAkinshin/testrig/internal/runner"
	"github.com/AndreyAkinshin/testrig/internal/testparser"
)

// Component outcome labels.
const (
	outcomePassed = "passed"
	outcomeFailed = "failed"
	outcomeError  = "error"
)

// Metrics holds the Prometheus collectors for test runs. Each Metrics owns
// its registry so several servers never share collectors.
type Metrics struct {
	registry   *prometheus.Registry
	runs       *prometheus.CounterVec
	components *prometheus.CounterVec
	tests      *prometheus.CounterVec
	duration   prometheus.Histogram
	active     prometheus.Gauge
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "testrig",
			Name:      "runs_total",
			Help:      "Test runs by result.",
		}, []string{"result"}),
		components: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "testrig",
			Name:      "component_runs_total",
			Help:      "Component runs by outcome.",
		}, []string{"outcome"}),
		tests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "testrig",
			Name:      "tests_total",
			Help:      "Individual tests by status.",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "testrig",
			Name:      "component_duration_seconds",
			Help:      "Wall time of one component run.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "testrig",
			Name:      "active_components",
			Help:      "Components currently running.",
		}),
	}
	m.registry.MustRegister(m.runs, m.components, m.tests, m.duration, m.active)
	return m
}

// Handler serves the /metrics scrape endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RunCompleted records a finished run. A run error counts as "error"
// regardless of the summary.
func (m *Metrics) RunCompleted(summary testparser.Result, err error) {
	switch {
	case err != nil:
		m.runs.WithLabelValues(outcomeError).Inc()
	case summary.Failed > 0:
		m.runs.WithLabelValues(outcomeFailed).Inc()
	default:
		m.runs.WithLabelValues(outcomePassed).Inc()
	}
}

// Observer returns a runner observer feeding the component collectors.
func (m *Metrics) Observer() runner.Observer {
	return metricsObserver{m: m}
}

type metricsObserver struct {
	runner.NopObserver
	m *Metrics
}

func (o metricsObserver) ComponentStarted(string, int) {
	o.m.active.Inc()
}

func (o metricsObserver) ComponentFinished(outcome runner.Outcome, recorded testparser.Result) {
	o.m.active.Dec()
	o.m.duration.Observe(outcome.Elapsed.Seconds())

	switch {
	case outcome.Err != nil:
		o.m.components.WithLabelValues(outcomeError).Inc()
	case recorded.Failed > 0:
		o.m.components.WithLabelValues(outcomeFailed).Inc()
	default:
		o.m.components.WithLabelValues(outcomePassed).Inc()
	}

	o.m.tests.WithLabelValues("passed").Add(float64(recorded.Passed))
	o.m.tests.WithLabelValues("failed").Add(float64(recorded.Failed))
	o.m.tests.WithLabelValues("skipped").Add(float64(recorded.Skipped))
}
