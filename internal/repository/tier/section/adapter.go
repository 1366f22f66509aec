// Package section probes the Redis sections index with BM25 and collapses
// sections to their parent documents.
package section

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/regsearch/internal/db"
	"github.com/kailas-cloud/regsearch/internal/domain"
	"github.com/kailas-cloud/regsearch/internal/domain/search/query"
	"github.com/kailas-cloud/regsearch/internal/domain/search/result"
	"github.com/kailas-cloud/regsearch/internal/domain/search/tier"
	"github.com/kailas-cloud/regsearch/internal/repository/tier/docfields"
)

// FieldSection holds the section citation, e.g. "s. 12(1)".
const FieldSection = "section"

// overfetch widens the BM25 window so collapsing still fills the limit.
const overfetch = 3

type store interface {
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

var returnFields = []string{
	db.FieldDocumentID, db.FieldTitle, db.FieldContent, db.FieldCitation, FieldSection,
	db.FieldJurisdiction, db.FieldDocType, db.FieldEffectiveDate,
}

// Adapter implements the section tier.
type Adapter struct {
	store store
	index string
}

// New creates a section adapter over the given FT index.
func New(s store, index string) *Adapter {
	return &Adapter{store: s, index: index}
}

// Tier returns tier.Section.
func (a *Adapter) Tier() tier.ID { return tier.Section }

// Probe searches sections and keeps the best-scoring section per document.
func (a *Adapter) Probe(ctx context.Context, q query.SearchQuery, limit int) ([]result.Raw, error) {
	terms := q.ExpandedTerms()
	sr, err := a.store.SearchBM25(ctx, &db.TextQuery{
		IndexName:    a.index,
		Terms:        terms,
		Filters:      docfields.Expression(q.Filters()),
		TopK:         min(limit*overfetch, query.MaxFetch*overfetch),
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, domain.TierError(fmt.Errorf("search sections: %w", err))
	}

	out := collapse(sr.Entries, terms, limit)
	if len(out) == 0 {
		return nil, domain.ErrNoResults
	}
	return out, nil
}

// collapse keeps the first (highest-ranked) section of each document.
func collapse(entries []db.SearchEntry, terms []string, limit int) []result.Raw {
	seen := make(map[string]int, len(entries))
	var out []result.Raw
	for _, e := range entries {
		r := docfields.ToRaw(tier.Section, e, terms)
		if sec := e.Fields[FieldSection]; sec != "" {
			r.Snippet = sec + ": " + r.Snippet
			r.Metadata = map[string]string{FieldSection: sec}
		}
		if i, ok := seen[r.DocumentID]; ok {
			if r.NativeScore > out[i].NativeScore {
				out[i] = r
			}
			continue
		}
		seen[r.DocumentID] = len(out)
		out = append(out, r)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
