package search

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/regsearch/internal/domain"
	"github.com/kailas-cloud/regsearch/internal/domain/search/query"
	"github.com/kailas-cloud/regsearch/internal/domain/search/result"
	"github.com/kailas-cloud/regsearch/internal/domain/search/tier"
	"github.com/kailas-cloud/regsearch/internal/repository/respcache"
	"github.com/kailas-cloud/regsearch/internal/telemetry"
	"github.com/kailas-cloud/regsearch/internal/usecase/cascade"
	"github.com/kailas-cloud/regsearch/internal/usecase/fusion"
	qnorm "github.com/kailas-cloud/regsearch/internal/usecase/query"
)

// mockAdapter implements cascade.Adapter with canned results and call counting.
type mockAdapter struct {
	id       tier.ID
	results  []result.Raw
	err      error
	delay    time.Duration
	calls    atomic.Int32
	gotLimit atomic.Int32
}

func (m *mockAdapter) Tier() tier.ID { return m.id }

func (m *mockAdapter) Probe(ctx context.Context, _ query.SearchQuery, limit int) ([]result.Raw, error) {
	m.calls.Add(1)
	m.gotLimit.Store(int32(limit))
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, domain.TierError(ctx.Err())
		}
	}
	return m.results, m.err
}

type recordingSink struct {
	mu   sync.Mutex
	recs []telemetry.Record
}

func (s *recordingSink) Emit(_ context.Context, rec telemetry.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
}

func (s *recordingSink) records() []telemetry.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]telemetry.Record(nil), s.recs...)
}

func hits(id tier.ID, n int) []result.Raw {
	out := make([]result.Raw, n)
	for i := range out {
		out[i] = result.Raw{
			DocumentID:  fmt.Sprintf("%s-%d", id, i),
			Title:       fmt.Sprintf("%s result %d", id, i),
			Snippet:     "benefits under the act",
			NativeScore: float64(n - i),
			SourceTier:  id,
		}
	}
	return out
}

// tiers returns one empty mock adapter per tier.
func tiers() map[tier.ID]*mockAdapter {
	out := make(map[tier.ID]*mockAdapter)
	for _, id := range tier.All() {
		out[id] = &mockAdapter{id: id}
	}
	return out
}

func totalCalls(m map[tier.ID]*mockAdapter) int {
	n := 0
	for _, a := range m {
		n += int(a.calls.Load())
	}
	return n
}

type fixture struct {
	svc  *Service
	sink *recordingSink
}

func newFixture(t *testing.T, adapters []cascade.Adapter, cfg cascade.Config) fixture {
	t.Helper()
	sink := &recordingSink{}
	svc := New(
		cascade.New(adapters, cfg, zap.NewNop()),
		fusion.New(fusion.DefaultConfig()),
		respcache.New(respcache.Config{}),
		qnorm.NewExpander(qnorm.DefaultSynonyms()),
		sink,
		zap.NewNop(),
	)
	return fixture{svc: svc, sink: sink}
}

func asAdapters(m map[tier.ID]*mockAdapter) []cascade.Adapter {
	out := make([]cascade.Adapter, 0, len(m))
	for _, a := range m {
		out = append(out, a)
	}
	return out
}
