package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Snapshot outcomes recorded by ObserveSnapshot.
const (
	OutcomeCommitted = "committed"
	OutcomeStale     = "stale"
	OutcomeFailed    = "failed"
)

// AggregationMetrics records facet fetch latency and snapshot outcomes.
type AggregationMetrics struct {
	facetDuration *prometheus.HistogramVec
	facetFailure  *prometheus.CounterVec
	snapshots     *prometheus.CounterVec
}

// NewAggregationMetrics registers the aggregation metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewAggregationMetrics(reg prometheus.Registerer) *AggregationMetrics {
	if reg == nil {
		return &AggregationMetrics{}
	}
	facetDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "facet_fetch_duration_seconds",
		Help:    "Duration of dashboard facet fetch and reduction in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"facet"})
	facetFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "facet_fetch_failure",
		Help: "Failed dashboard facet fetches.",
	}, []string{"facet"})
	snapshots := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "snapshot_outcome",
		Help: "Dashboard snapshot computations by role and outcome.",
	}, []string{"role", "outcome"})
	reg.MustRegister(facetDuration, facetFailure, snapshots)
	return &AggregationMetrics{
		facetDuration: facetDuration,
		facetFailure:  facetFailure,
		snapshots:     snapshots,
	}
}

// ObserveFacet records the duration of one facet and counts it as failed when err is set.
func (m *AggregationMetrics) ObserveFacet(facet string, duration time.Duration, err error) {
	if m == nil || m.facetDuration == nil {
		return
	}
	label := normalizeLabel(facet)
	m.facetDuration.WithLabelValues(label).Observe(duration.Seconds())
	if err != nil {
		m.facetFailure.WithLabelValues(label).Inc()
	}
}

// ObserveSnapshot counts a settled snapshot computation.
func (m *AggregationMetrics) ObserveSnapshot(role, outcome string) {
	if m == nil || m.snapshots == nil {
		return
	}
	m.snapshots.WithLabelValues(normalizeLabel(role), normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
