// Package query holds the normalized, immutable form of a search request.
package query

import (
	"slices"
	"strings"
)

// Query limits.
const (
	// MaxQueryLength is the maximum raw query length in bytes.
	MaxQueryLength = 4096
	DefaultLimit   = 10
	MaxLimit       = 100
	MaxOffset      = 100
	// MaxFetch caps how many results a tier is asked for (limit + offset).
	MaxFetch = 100
)

// SearchQuery is a normalized query. It is never mutated after construction;
// With* methods return modified copies.
type SearchQuery struct {
	raw        string
	normalized string
	terms      []string
	phrases    []string
	expanded   []string
	filters    Filters
	limit      int
	offset     int
}

// New assembles a SearchQuery from already normalized parts.
// Limit and offset are expected to be validated by the caller.
func New(raw string, terms, phrases []string, filters Filters, limit, offset int) SearchQuery {
	q := SearchQuery{
		raw:     raw,
		terms:   slices.Clone(terms),
		phrases: slices.Clone(phrases),
		filters: filters,
		limit:   limit,
		offset:  offset,
	}
	parts := make([]string, 0, len(terms)+len(phrases))
	parts = append(parts, terms...)
	parts = append(parts, phrases...)
	q.normalized = strings.Join(parts, " ")
	return q
}

// WithExpandedTerms returns a copy carrying the given expansion.
func (q SearchQuery) WithExpandedTerms(terms []string) SearchQuery {
	q.expanded = slices.Clone(terms)
	return q
}

// Raw returns the text as submitted.
func (q SearchQuery) Raw() string { return q.raw }

// Normalized returns the normalized text: unquoted terms followed by phrases.
func (q SearchQuery) Normalized() string { return q.normalized }

// Terms returns the unquoted tokens in query order.
func (q SearchQuery) Terms() []string { return slices.Clone(q.terms) }

// Phrases returns the quoted phrases, which are matched verbatim and never expanded.
func (q SearchQuery) Phrases() []string { return slices.Clone(q.phrases) }

// ExpandedTerms returns the terms after synonym expansion.
// Falls back to terms plus phrases when no expansion was applied.
func (q SearchQuery) ExpandedTerms() []string {
	if q.expanded != nil {
		return slices.Clone(q.expanded)
	}
	out := make([]string, 0, len(q.terms)+len(q.phrases))
	out = append(out, q.terms...)
	return append(out, q.phrases...)
}

// ExactTerms returns the terms the user typed that carry meaning:
// unquoted tokens minus stopwords, plus every phrase.
func (q SearchQuery) ExactTerms() []string {
	out := make([]string, 0, len(q.terms)+len(q.phrases))
	for _, t := range q.terms {
		if !IsStopword(t) && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	for _, p := range q.phrases {
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// Filters returns the query filters.
func (q SearchQuery) Filters() Filters { return q.filters }

// Limit returns the page size.
func (q SearchQuery) Limit() int { return q.limit }

// Offset returns the page offset.
func (q SearchQuery) Offset() int { return q.offset }

// FetchSize is how many results each tier is asked for.
func (q SearchQuery) FetchSize() int {
	return min(q.limit+q.offset, MaxFetch)
}
