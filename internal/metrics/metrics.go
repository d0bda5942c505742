// Package metrics holds Prometheus collectors for controller actions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for ActionsTotal.
const (
	OutcomeOK        = "ok"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
	labelAction      = "action"
	labelOutcome     = "outcome"
	metricsNamespace = "tally"
)

// Metrics groups the collectors recorded for each user action.
type Metrics struct {
	Registry *prometheus.Registry

	ActionsTotal   *prometheus.CounterVec
	ActionDuration *prometheus.HistogramVec
	Items          prometheus.Gauge
}

// New creates collectors registered on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "actions_total",
			Help:      "User actions handled, by action and outcome.",
		}, []string{labelAction, labelOutcome}),
		ActionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "action_duration_seconds",
			Help:      "Time spent handling a user action.",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{labelAction}),
		Items: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "items",
			Help:      "Line items shown after the last refresh.",
		}),
	}
	m.Registry.MustRegister(m.ActionsTotal, m.ActionDuration, m.Items)
	return m
}

// Observe records one finished action.
func (m *Metrics) Observe(action, outcome string, elapsed time.Duration) {
	m.ActionsTotal.WithLabelValues(action, outcome).Inc()
	m.ActionDuration.WithLabelValues(action).Observe(elapsed.Seconds())
}

// Snapshot is a point-in-time read of every collector.
type Snapshot struct {
	// Counts maps "action/outcome" to the number of finished actions.
	Counts map[string]float64

	// Seconds maps an action to the total time spent in it.
	Seconds map[string]float64

	// Items is the row count after the last refresh.
	Items float64
}

// Snapshot gathers the registry into a Snapshot.
func (m *Metrics) Snapshot() (Snapshot, error) {
	families, err := m.Registry.Gather()
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		Counts:  make(map[string]float64),
		Seconds: make(map[string]float64),
	}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			labels := make(map[string]string, len(metric.GetLabel()))
			for _, lp := range metric.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}

			switch mf.GetName() {
			case metricsNamespace + "_actions_total":
				snap.Counts[labels[labelAction]+"/"+labels[labelOutcome]] = metric.GetCounter().GetValue()
			case metricsNamespace + "_action_duration_seconds":
				snap.Seconds[labels[labelAction]] = metric.GetHistogram().GetSampleSum()
			case metricsNamespace + "_items":
				snap.Items = metric.GetGauge().GetValue()
			}
		}
	}
	return snap, nil
}
