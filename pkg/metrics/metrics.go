// Package metrics exports workflow activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-formflow/pkg/workflow"
)

// Collector holds the workflow metrics and implements workflow.Observer.
type Collector struct {
	registry prometheus.Gatherer

	// Workflow requests by event and outcome
	Transitions *prometheus.CounterVec

	// Validation failures by step
	ValidationFailures *prometheus.CounterVec
	InvalidFields      *prometheus.HistogramVec

	// Submission metrics
	Submissions        *prometheus.CounterVec
	SubmissionDuration prometheus.Histogram

	// Workflows currently between start and submission
	ActiveSessions prometheus.Gauge
}

// New registers the collector's metrics on reg. A nil reg uses a fresh
// registry.
func New(reg *prometheus.Registry) *Collector {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		Transitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "formflow",
				Name:      "workflow_requests_total",
				Help:      "Workflow requests by event and outcome",
			},
			[]string{"event", "outcome"},
		),
		ValidationFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "formflow",
				Name:      "validation_failures_total",
				Help:      "Step validations that blocked navigation",
			},
			[]string{"step"},
		),
		InvalidFields: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "formflow",
				Name:      "invalid_fields",
				Help:      "Number of invalid fields per failed step validation",
				Buckets:   []float64{1, 2, 3, 5, 8, 13},
			},
			[]string{"step"},
		),
		Submissions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "formflow",
				Name:      "submissions_total",
				Help:      "Confirmed submissions by result",
			},
			[]string{"result"},
		),
		SubmissionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "formflow",
				Name:      "submission_duration_seconds",
				Help:      "Time spent in the submitter",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "formflow",
				Name:      "active_sessions",
				Help:      "Workflows started and not yet submitted",
			},
		),
	}
}

// Observe implements workflow.Observer.
func (c *Collector) Observe(o workflow.Observation) {
	c.Transitions.WithLabelValues(string(o.Event), string(o.Outcome)).Inc()

	switch o.Outcome {
	case workflow.OutcomeInvalid:
		step := stepLabel(o.FromStep)
		c.ValidationFailures.WithLabelValues(step).Inc()
		c.InvalidFields.WithLabelValues(step).Observe(float64(o.Errors))
	case workflow.OutcomeOK:
		if o.Event == workflow.EventConfirm {
			c.Submissions.WithLabelValues("success").Inc()
			c.SubmissionDuration.Observe(o.Duration.Seconds())
			c.ActiveSessions.Dec()
		}
	case workflow.OutcomeFailed:
		c.Submissions.WithLabelValues("failure").Inc()
		c.SubmissionDuration.Observe(o.Duration.Seconds())
	}
}

// SessionStarted counts a new workflow as active.
func (c *Collector) SessionStarted() {
	c.ActiveSessions.Inc()
}

// SessionAbandoned removes a workflow that was dropped before submission.
func (c *Collector) SessionAbandoned() {
	c.ActiveSessions.Dec()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func stepLabel(index int) string {
	return strconv.Itoa(index)
}
