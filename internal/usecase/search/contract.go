package search

import (
	"context"

	"github.com/kailas-cloud/regsearch/internal/domain/search/outcome"
	"github.com/kailas-cloud/regsearch/internal/domain/search/query"
	"github.com/kailas-cloud/regsearch/internal/domain/search/result"
	"github.com/kailas-cloud/regsearch/internal/repository/respcache"
	"github.com/kailas-cloud/regsearch/internal/usecase/cascade"
)

// Executor runs the tier cascade.
type Executor interface {
	Run(ctx context.Context, q query.SearchQuery) cascade.Trace
}

// Fuser merges the selected outcomes into one ranking.
type Fuser interface {
	Fuse(q query.SearchQuery, outcomes []outcome.Outcome) []result.Fused
}

// Cache stores fused pages by query key.
type Cache interface {
	Get(ctx context.Context, key string) (respcache.Entry, bool)
	Add(ctx context.Context, key string, e respcache.Entry) respcache.Entry
}

// Expander adds synonym terms to a normalized query.
type Expander interface {
	Expand(q query.SearchQuery) query.SearchQuery
}
