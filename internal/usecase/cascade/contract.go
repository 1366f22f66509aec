package cascade

import (
	"context"

	"github.com/kailas-cloud/regsearch/internal/domain/search/query"
	"github.com/kailas-cloud/regsearch/internal/domain/search/result"
	"github.com/kailas-cloud/regsearch/internal/domain/search/tier"
)

// Adapter probes one retrieval tier.
// Probe must honour ctx cancellation and return errors classified with
// domain.ErrTierUnavailable, domain.ErrTierTimeout or domain.ErrNoResults.
type Adapter interface {
	Tier() tier.ID
	Probe(ctx context.Context, q query.SearchQuery, limit int) ([]result.Raw, error)
}
