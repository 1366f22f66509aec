package telemetry

import (
	"context"

	"github.com/kailas-cloud/regsearch/internal/metrics"
)

// MetricsSink mirrors records into the Prometheus search metrics.
// metrics.RegisterSearchMetrics must be called before scraping.
type MetricsSink struct{}

// Emit implements Sink.
func (MetricsSink) Emit(_ context.Context, rec Record) {
	if rec.FinalState == StateInvalid {
		metrics.CascadeFinalTotal.WithLabelValues(StateInvalid, "").Inc()
		return
	}
	cache := "miss"
	if rec.CacheHit {
		cache = "hit"
	}
	metrics.CacheTotal.WithLabelValues(cache).Inc()
	metrics.SearchDuration.WithLabelValues(cache).Observe(float64(rec.TookMs) / 1000)

	if rec.CacheHit || rec.Coalesced {
		return
	}
	metrics.CascadeFinalTotal.WithLabelValues(rec.FinalState, string(rec.SatisfiedBy)).Inc()
	for _, t := range rec.Tiers {
		kind := t.ErrorKind
		if t.Succeeded {
			kind = "ok"
		}
		metrics.TierOutcomesTotal.WithLabelValues(string(t.Tier), kind).Inc()
		metrics.TierProbeDuration.WithLabelValues(string(t.Tier)).Observe(float64(t.LatencyMs) / 1000)
	}
}
