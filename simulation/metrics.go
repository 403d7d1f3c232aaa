package simulation

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects run statistics for a prometheus registry.
type Metrics struct {
	runs           *prometheus.CounterVec
	rounds         *prometheus.CounterVec
	connections    *prometheus.CounterVec
	lookupMessages *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
}

// NewMetrics creates the run collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kadtopo",
			Name:      "runs_total",
			Help:      "Simulation runs by strategy and outcome.",
		}, []string{"strategy", "status"}),
		rounds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kadtopo",
			Name:      "rounds_total",
			Help:      "Negotiation rounds executed.",
		}, []string{"strategy"}),
		connections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kadtopo",
			Name:      "connections_total",
			Help:      "Connections established by negotiation.",
		}, []string{"strategy"}),
		lookupMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kadtopo",
			Name:      "lookup_messages_total",
			Help:      "Substrate messages delivered while looking up targets.",
		}, []string{"strategy"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "kadtopo",
			Name:      "run_duration_seconds",
			Help:      "Wall time of a simulation run.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
		}, []string{"strategy"}),
	}

	for _, c := range []prometheus.Collector{m.runs, m.rounds, m.connections, m.lookupMessages, m.runDuration} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register run metrics: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) observeRound(kind string, connections int) {
	if m == nil {
		return
	}
	m.rounds.WithLabelValues(kind).Inc()
	m.connections.WithLabelValues(kind).Add(float64(connections))
}

func (m *Metrics) observeLookups(kind string, delivered int) {
	if m == nil {
		return
	}
	m.lookupMessages.WithLabelValues(kind).Add(float64(delivered))
}

func (m *Metrics) observeRun(kind string, status StepStatus, seconds float64) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(kind, status.String()).Inc()
	m.runDuration.WithLabelValues(kind).Observe(seconds)
}
