// Package hybrid probes the Redis hybrid index: KNN over query embeddings
// fused with BM25 over the expanded terms.
package hybrid

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/regsearch/internal/db"
	"github.com/kailas-cloud/regsearch/internal/domain"
	"github.com/kailas-cloud/regsearch/internal/domain/search/query"
	"github.com/kailas-cloud/regsearch/internal/domain/search/result"
	"github.com/kailas-cloud/regsearch/internal/domain/search/tier"
	"github.com/kailas-cloud/regsearch/internal/repository/tier/docfields"
)

// store is the consumer interface for hybrid search (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

var returnFields = []string{
	db.FieldDocumentID, db.FieldTitle, db.FieldContent, db.FieldCitation,
	db.FieldJurisdiction, db.FieldDocType, db.FieldEffectiveDate,
}

// Adapter implements the hybrid tier.
type Adapter struct {
	store  store
	embed  domain.Embedder
	index  string
	logger *zap.Logger
}

// New creates a hybrid adapter. A nil embedder makes the tier lexical-only.
func New(s store, embed domain.Embedder, index string, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{store: s, embed: embed, index: index, logger: logger.Named("hybrid")}
}

// Tier returns tier.Hybrid.
func (a *Adapter) Tier() tier.ID { return tier.Hybrid }

// Probe runs KNN and BM25 concurrently and fuses them with RRF.
// Embedding or KNN failures degrade to lexical-only; a BM25 failure fails the probe.
func (a *Adapter) Probe(ctx context.Context, q query.SearchQuery, limit int) ([]result.Raw, error) {
	filters := docfields.Expression(q.Filters())
	terms := q.ExpandedTerms()

	var vector []float32
	if a.embed != nil {
		emb, err := a.embed.Embed(ctx, q.Normalized())
		if err != nil {
			a.logger.Warn("Embedding failed, falling back to lexical search", zap.Error(err))
		} else {
			vector = emb.Embedding
		}
	}

	var knn, bm25 []result.Raw
	g, gctx := errgroup.WithContext(ctx)

	if len(vector) > 0 {
		g.Go(func() error {
			sr, err := a.store.SearchKNN(gctx, &db.KNNQuery{
				IndexName:    a.index,
				Filters:      filters,
				Vector:       vector,
				K:            limit,
				ReturnFields: returnFields,
			})
			if err != nil {
				a.logger.Warn("KNN search failed, using BM25 only", zap.Error(err))
				return nil
			}
			knn = toRaw(sr, terms)
			return nil
		})
	}

	g.Go(func() error {
		sr, err := a.store.SearchBM25(gctx, &db.TextQuery{
			IndexName:    a.index,
			Terms:        terms,
			Filters:      filters,
			TopK:         limit,
			ReturnFields: returnFields,
		})
		if err != nil {
			return fmt.Errorf("search bm25: %w", err)
		}
		bm25 = toRaw(sr, terms)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, domain.TierError(err)
	}

	fused := fuseRRF(knn, bm25, limit)
	if len(fused) == 0 {
		return nil, domain.ErrNoResults
	}
	return fused, nil
}

func toRaw(sr *db.SearchResult, terms []string) []result.Raw {
	if sr == nil {
		return nil
	}
	out := make([]result.Raw, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		out = append(out, docfields.ToRaw(tier.Hybrid, e, terms))
	}
	return out
}
