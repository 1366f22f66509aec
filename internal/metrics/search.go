package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Search Prometheus metrics.
var (
	TierProbeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tier_probe_duration_seconds",
			Help:      "Tier probe latency in seconds, including failed probes",
			Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.4, 0.5, 1},
		},
		[]string{"tier"},
	)

	TierOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tier_outcomes_total",
			Help:      "Tier probe outcomes by error kind",
		},
		[]string{"tier", "kind"}, // kind: ok / unavailable / timeout / no_results
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "End-to-end search latency in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"cache"}, // "hit" / "miss"
	)

	CacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_total",
			Help:      "Response cache lookups",
		},
		[]string{"result"},
	)

	CascadeFinalTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cascade_final_total",
			Help:      "Cascade runs by final state and satisfying tier",
		},
		[]string{"state", "tier"},
	)

	TelemetryDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "telemetry_dropped_total",
			Help:      "Telemetry records that could not be delivered",
		},
		[]string{"sink"},
	)
)

var searchOnce sync.Once

// RegisterSearchMetrics registers the search metrics with the default registry.
// Safe to call more than once.
func RegisterSearchMetrics() {
	searchOnce.Do(func() {
		prometheus.MustRegister(
			TierProbeDuration,
			TierOutcomesTotal,
			SearchDuration,
			CacheTotal,
			CascadeFinalTotal,
			TelemetryDroppedTotal,
		)
	})
}
