// Package outcome records what a single tier probe produced.
package outcome

import (
	"errors"
	"slices"
	"time"

	"github.com/kailas-cloud/regsearch/internal/domain"
	"github.com/kailas-cloud/regsearch/internal/domain/search/result"
	"github.com/kailas-cloud/regsearch/internal/domain/search/tier"
)

// ErrorKind classifies a failed probe.
type ErrorKind string

// Error kinds. KindNone marks a successful probe.
const (
	KindNone        ErrorKind = ""
	KindUnavailable ErrorKind = "unavailable"
	KindTimeout     ErrorKind = "timeout"
	KindNoResults   ErrorKind = "no_results"
)

// KindOf maps a probe error onto an ErrorKind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, domain.ErrTierTimeout):
		return KindTimeout
	case errors.Is(err, domain.ErrNoResults):
		return KindNoResults
	default:
		return KindUnavailable
	}
}

// Outcome is the result of probing one tier.
type Outcome struct {
	tier    tier.ID
	results []result.Raw
	latency time.Duration
	kind    ErrorKind
	err     error
}

// New creates an Outcome. Results are dropped when err is non-nil.
func New(id tier.ID, results []result.Raw, latency time.Duration, err error) Outcome {
	o := Outcome{tier: id, latency: latency, kind: KindOf(err), err: err}
	if err == nil {
		o.results = slices.Clone(results)
	}
	return o
}

// Tier returns the probed tier.
func (o Outcome) Tier() tier.ID { return o.tier }

// Results returns a copy of the hits.
func (o Outcome) Results() []result.Raw { return slices.Clone(o.results) }

// Len returns the number of hits.
func (o Outcome) Len() int { return len(o.results) }

// Latency returns how long the probe took.
func (o Outcome) Latency() time.Duration { return o.latency }

// LatencyMs returns the probe latency in whole milliseconds.
func (o Outcome) LatencyMs() int64 { return o.latency.Milliseconds() }

// Succeeded reports whether the tier answered within its budget.
func (o Outcome) Succeeded() bool { return o.kind == KindNone }

// ErrorKind returns the failure class, KindNone on success.
func (o Outcome) ErrorKind() ErrorKind { return o.kind }

// Err returns the underlying probe error.
func (o Outcome) Err() error { return o.err }
