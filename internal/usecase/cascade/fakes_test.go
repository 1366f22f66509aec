package cascade

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/kailas-cloud/regsearch/internal/domain"
	"github.com/kailas-cloud/regsearch/internal/domain/search/query"
	"github.com/kailas-cloud/regsearch/internal/domain/search/result"
	"github.com/kailas-cloud/regsearch/internal/domain/search/tier"
)

// fakeAdapter implements Adapter with canned results and call counting.
type fakeAdapter struct {
	id        tier.ID
	results   []result.Raw
	err       error
	delay     time.Duration
	ignoreCtx bool
	calls     atomic.Int32
	gotLimit  atomic.Int32
}

func (f *fakeAdapter) Tier() tier.ID { return f.id }

func (f *fakeAdapter) Probe(ctx context.Context, _ query.SearchQuery, limit int) ([]result.Raw, error) {
	f.calls.Add(1)
	f.gotLimit.Store(int32(limit))
	if f.delay > 0 {
		if f.ignoreCtx {
			time.Sleep(f.delay)
		} else {
			select {
			case <-time.After(f.delay):
			case <-ctx.Done():
				return nil, domain.TierError(ctx.Err())
			}
		}
	}
	return f.results, f.err
}

func hits(id tier.ID, n int) []result.Raw {
	out := make([]result.Raw, n)
	for i := range out {
		out[i] = result.Raw{
			DocumentID:  fmt.Sprintf("%s-%d", id, i),
			Title:       fmt.Sprintf("%s result %d", id, i),
			NativeScore: float64(n - i),
			SourceTier:  id,
		}
	}
	return out
}

// fiveTiers returns one fake adapter per tier, all empty.
func fiveTiers() map[tier.ID]*fakeAdapter {
	out := make(map[tier.ID]*fakeAdapter)
	for _, id := range tier.All() {
		out[id] = &fakeAdapter{id: id}
	}
	return out
}

func adapters(m map[tier.ID]*fakeAdapter) []Adapter {
	out := make([]Adapter, 0, len(m))
	for _, a := range m {
		out = append(out, a)
	}
	return out
}

func testQuery(limit int) query.SearchQuery {
	return query.New("employment insurance", []string{"employment", "insurance"}, nil, query.Filters{}, limit, 0)
}
