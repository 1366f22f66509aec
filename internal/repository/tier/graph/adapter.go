// Package graph probes the Neo4j citation graph. Documents cited or amended
// by many others rank higher.
package graph

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/kailas-cloud/regsearch/internal/db"
	"github.com/kailas-cloud/regsearch/internal/domain"
	"github.com/kailas-cloud/regsearch/internal/domain/search/query"
	"github.com/kailas-cloud/regsearch/internal/domain/search/result"
	"github.com/kailas-cloud/regsearch/internal/domain/search/tier"
	"github.com/kailas-cloud/regsearch/internal/repository/tier/docfields"
)

// Defaults for Config.
const (
	DefaultRelationshipBoost = 0.1
	DefaultHighlightBoost    = 1.2
)

type store interface {
	SearchText(ctx context.Context, q *db.FullTextQuery) (*db.SearchResult, error)
}

// Config tunes graph scoring.
type Config struct {
	// RelationshipBoost scales ln(1+refs) where refs counts inbound CITES/AMENDS edges.
	RelationshipBoost float64
	// HighlightBoost multiplies the score of results whose snippet highlights an exact query term.
	HighlightBoost float64
}

// Adapter implements the graph tier.
type Adapter struct {
	store store
	cfg   Config
}

// New creates a graph adapter. Non-positive config values take defaults.
func New(s store, cfg Config) *Adapter {
	if cfg.RelationshipBoost <= 0 {
		cfg.RelationshipBoost = DefaultRelationshipBoost
	}
	if cfg.HighlightBoost < 1 {
		cfg.HighlightBoost = DefaultHighlightBoost
	}
	return &Adapter{store: s, cfg: cfg}
}

// Tier returns tier.Graph.
func (a *Adapter) Tier() tier.ID { return tier.Graph }

// Probe runs the full-text query and applies reference and highlight boosts.
func (a *Adapter) Probe(ctx context.Context, q query.SearchQuery, limit int) ([]result.Raw, error) {
	sr, err := a.store.SearchText(ctx, &db.FullTextQuery{
		Text:    q.Normalized(),
		Terms:   q.ExpandedTerms(),
		Filters: docfields.Expression(q.Filters()),
		Limit:   limit,
	})
	if err != nil {
		return nil, domain.TierError(fmt.Errorf("graph fulltext: %w", err))
	}
	if len(sr.Entries) == 0 {
		return nil, domain.ErrNoResults
	}

	exact := q.ExactTerms()
	out := make([]result.Raw, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		r := docfields.ToRaw(tier.Graph, e, exact)
		refs, _ := strconv.Atoi(e.Fields[db.FieldReferences])
		r.NativeScore = e.Score * (1 + a.cfg.RelationshipBoost*math.Log1p(float64(max(refs, 0))))
		r.Highlights = highlight(r.Snippet, exact)
		if len(r.Highlights) > 0 {
			r.NativeScore *= a.cfg.HighlightBoost
		}
		r.Metadata = map[string]string{db.FieldReferences: strconv.Itoa(refs)}
		out = append(out, r)
	}
	return out, nil
}
