package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery signals a query rejected before any tier is probed.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrTierUnavailable signals a backend that failed or refused the probe.
	ErrTierUnavailable = errors.New("tier unavailable")
	// ErrTierTimeout signals a probe that exceeded its latency budget.
	ErrTierTimeout = errors.New("tier timeout")
	// ErrNoResults signals a probe that completed without hits.
	ErrNoResults = errors.New("no results")
	// ErrCacheCorruption signals a cache entry that could not be decoded.
	ErrCacheCorruption = errors.New("cache corruption")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// InvalidQueryError carries the reason a query was rejected.
type InvalidQueryError struct {
	Reason string
}

func (e *InvalidQueryError) Error() string {
	return ErrInvalidQuery.Error() + ": " + e.Reason
}

func (e *InvalidQueryError) Unwrap() error { return ErrInvalidQuery }

// NewInvalidQuery creates an invalid query error with a client-safe reason.
func NewInvalidQuery(format string, args ...any) error {
	return &InvalidQueryError{Reason: fmt.Sprintf(format, args...)}
}

// TierError maps a backend failure onto the tier error taxonomy.
// Deadline errors become ErrTierTimeout, everything else ErrTierUnavailable.
func TierError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrTierTimeout),
		errors.Is(err, ErrTierUnavailable),
		errors.Is(err, ErrNoResults):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrTierTimeout, err)
	default:
		return fmt.Errorf("%w: %w", ErrTierUnavailable, err)
	}
}
