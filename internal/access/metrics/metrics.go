package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the access module.
type Metrics struct {
	// Decisions by requirement kind, outcome, and whether the cache served it
	Decisions *prometheus.CounterVec

	// Invalidation events processed by the dispatcher
	InvalidationEvents *prometheus.CounterVec

	// Full check latency including store queries on cache miss
	CheckLatency prometheus.Histogram
}

// New creates a Metrics instance with all access module metrics registered.
func New() *Metrics {
	return &Metrics{
		Decisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "commune_access_decisions_total",
			Help: "Total access decisions by requirement, outcome, and source",
		}, []string{"requirement", "outcome", "source"}), // source: "cache", "store"

		InvalidationEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "commune_access_invalidation_events_total",
			Help: "Revocation events processed by the cache invalidation dispatcher",
		}, []string{"type", "result"}), // result: "evicted", "skipped", "error"

		CheckLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "commune_access_check_duration_seconds",
			Help:    "Duration of access checks including store queries on cache miss",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}),
	}
}

// IncrementDecision records one decision outcome.
func (m *Metrics) IncrementDecision(requirement, outcome, source string) {
	if m != nil {
		m.Decisions.WithLabelValues(requirement, outcome, source).Inc()
	}
}

// IncrementInvalidation records one processed revocation event.
func (m *Metrics) IncrementInvalidation(eventType, result string) {
	if m != nil {
		m.InvalidationEvents.WithLabelValues(eventType, result).Inc()
	}
}

// ObserveCheckLatency records the duration of a full access check.
func (m *Metrics) ObserveCheckLatency(d time.Duration) {
	if m != nil {
		m.CheckLatency.Observe(d.Seconds())
	}
}
