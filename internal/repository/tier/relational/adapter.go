// Package relational probes PostgreSQL full-text search with a trigram
// title fallback.
package relational

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/regsearch/internal/db"
	"github.com/kailas-cloud/regsearch/internal/domain"
	"github.com/kailas-cloud/regsearch/internal/domain/search/query"
	"github.com/kailas-cloud/regsearch/internal/domain/search/result"
	"github.com/kailas-cloud/regsearch/internal/domain/search/tier"
	"github.com/kailas-cloud/regsearch/internal/repository/tier/docfields"
)

type store interface {
	SearchText(ctx context.Context, q *db.FullTextQuery) (*db.SearchResult, error)
}

// ts_headline marks matches with <b></b> by default.
var headlineTags = strings.NewReplacer("<b>", "", "</b>", "")

// Adapter implements the relational tier.
type Adapter struct {
	store store
}

// New creates a relational adapter.
func New(s store) *Adapter {
	return &Adapter{store: s}
}

// Tier returns tier.Relational.
func (a *Adapter) Tier() tier.ID { return tier.Relational }

// Probe runs websearch_to_tsquery ranking; native score is GREATEST(rank, similarity).
func (a *Adapter) Probe(ctx context.Context, q query.SearchQuery, limit int) ([]result.Raw, error) {
	sr, err := a.store.SearchText(ctx, &db.FullTextQuery{
		Text:    q.Normalized(),
		Terms:   q.ExpandedTerms(),
		Filters: docfields.Expression(q.Filters()),
		Limit:   limit,
	})
	if err != nil {
		return nil, domain.TierError(fmt.Errorf("relational search: %w", err))
	}
	if len(sr.Entries) == 0 {
		return nil, domain.ErrNoResults
	}

	out := make([]result.Raw, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		r := docfields.ToRaw(tier.Relational, e, nil)
		r.Snippet = headlineTags.Replace(r.Snippet)
		out = append(out, r)
	}
	return out, nil
}
