// Package telemetry emits one structured record per search call.
package telemetry

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kailas-cloud/regsearch/internal/domain/search/mode"
	"github.com/kailas-cloud/regsearch/internal/domain/search/tier"
)

// TierRecord summarizes one tier probe.
type TierRecord struct {
	Tier        tier.ID `json:"tier"`
	LatencyMs   int64   `json:"latency_ms"`
	Succeeded   bool    `json:"succeeded"`
	ErrorKind   string  `json:"error_kind,omitempty"`
	ResultCount int     `json:"result_count"`
}

// StateInvalid is the final state of a call rejected before any tier ran.
const StateInvalid = "invalid"

// Record describes one Search call. Cache hits, coalesced callers and
// invalid queries carry no tier records.
type Record struct {
	RequestID string    `json:"request_id"`
	QueryHash string    `json:"query_hash,omitempty"`
	Mode      mode.Mode `json:"mode,omitempty"`
	CacheHit  bool      `json:"cache_hit"`
	Shared    bool      `json:"shared,omitempty"`
	// Coalesced marks a caller that waited on another caller's cascade.
	Coalesced   bool         `json:"coalesced,omitempty"`
	SatisfiedBy tier.ID      `json:"satisfied_by,omitempty"`
	FinalState  string       `json:"final_state,omitempty"`
	Tiers       []TierRecord `json:"tiers,omitempty"`
	ResultCount int          `json:"result_count"`
	Total       int          `json:"total"`
	TookMs      int64        `json:"took_ms"`
	Timestamp   time.Time    `json:"timestamp"`
}

// NewRequestID returns a random request id.
func NewRequestID() string {
	return uuid.NewString()
}

// Sink receives telemetry records. Emit must not block the search path
// for long and never fails the caller.
type Sink interface {
	Emit(ctx context.Context, rec Record)
}

// Nop discards records.
type Nop struct{}

// Emit implements Sink.
func (Nop) Emit(context.Context, Record) {}

// Multi fans a record out to several sinks in order.
type Multi []Sink

// Emit implements Sink.
func (m Multi) Emit(ctx context.Context, rec Record) {
	for _, s := range m {
		s.Emit(ctx, rec)
	}
}
