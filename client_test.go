package regsearch

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type mockAdapter struct {
	tier  Tier
	hits  []Hit
	err   error
	calls atomic.Int32
}

func (m *mockAdapter) Tier() Tier { return m.tier }

func (m *mockAdapter) Probe(_ context.Context, _ Query, limit int) ([]Hit, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.hits[:min(limit, len(m.hits))], nil
}

func hits(source Tier, ids ...string) []Hit {
	out := make([]Hit, len(ids))
	for i, id := range ids {
		out[i] = Hit{
			DocumentID:  id,
			Title:       "Title " + id,
			Snippet:     "about employment insurance benefits",
			NativeScore: float64(len(ids) - i),
			SourceTier:  source,
			Citation:    "s. " + id,
		}
	}
	return out
}

func TestNewWithAdapters_NoAdapters(t *testing.T) {
	if _, err := NewWithAdapters(Config{}, nil); err == nil {
		t.Fatal("expected error without adapters")
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(context.Background(), Config{})
	if err == nil {
		t.Fatal("expected error without redis addrs")
	}
	if !strings.Contains(err.Error(), "redis.addrs") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestClient_Search(t *testing.T) {
	hybrid := &mockAdapter{tier: TierHybrid, hits: hits(TierHybrid, "a", "b", "c", "d")}
	section := &mockAdapter{tier: TierSection, hits: hits(TierSection, "x")}

	c, err := NewWithAdapters(Config{}, []Adapter{section, hybrid})
	if err != nil {
		t.Fatalf("NewWithAdapters: %v", err)
	}
	defer func() { _ = c.Close() }()

	resp, err := c.Search(context.Background(), SearchRequest{Query: "employment insurance", Limit: 3})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 3 {
		t.Fatalf("results = %d, want 3", len(resp.Results))
	}
	if resp.Total != 3 {
		t.Errorf("total = %d, want 3", resp.Total)
	}
	if resp.Results[0].DocumentID != "a" {
		t.Errorf("top result = %s, want a", resp.Results[0].DocumentID)
	}
	if len(resp.Results[0].ContributingTiers) != 1 || resp.Results[0].ContributingTiers[0] != TierHybrid {
		t.Errorf("contributing tiers = %v", resp.Results[0].ContributingTiers)
	}
	if section.calls.Load() != 0 {
		t.Error("section tier should not be probed when hybrid is sufficient")
	}
}

func TestClient_Search_InvalidQuery(t *testing.T) {
	c, err := NewWithAdapters(Config{}, []Adapter{&mockAdapter{tier: TierHybrid}})
	if err != nil {
		t.Fatalf("NewWithAdapters: %v", err)
	}

	_, err = c.Search(context.Background(), SearchRequest{Query: "   "})
	if !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("err = %v, want ErrInvalidQuery", err)
	}
}

func TestClient_Search_BackendFailureDegrades(t *testing.T) {
	broken := &mockAdapter{tier: TierHybrid, err: errors.New("connection refused")}
	section := &mockAdapter{tier: TierSection, hits: hits(TierSection, "s1", "s2", "s3")}

	c, err := NewWithAdapters(Config{}, []Adapter{broken, section})
	if err != nil {
		t.Fatalf("NewWithAdapters: %v", err)
	}

	resp, err := c.Search(context.Background(), SearchRequest{Query: "benefits"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(resp.Results) != 3 || resp.Results[0].DocumentID != "s1" {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestClient_RetrieveContext(t *testing.T) {
	hybrid := &mockAdapter{tier: TierHybrid, hits: hits(TierHybrid, "a", "b", "c")}
	c, err := NewWithAdapters(Config{}, []Adapter{hybrid})
	if err != nil {
		t.Fatalf("NewWithAdapters: %v", err)
	}

	rc, err := c.RetrieveContext(context.Background(), "who receives benefits?", Filters{})
	if err != nil {
		t.Fatalf("RetrieveContext: %v", err)
	}
	if len(rc.Passages) != 3 || len(rc.Sources) != 3 {
		t.Fatalf("passages = %d, sources = %d", len(rc.Passages), len(rc.Sources))
	}
	if rc.Sources[0].N != 1 || rc.Sources[0].DocumentID != "a" {
		t.Errorf("first source = %+v", rc.Sources[0])
	}
	if !strings.HasPrefix(rc.Text, "[1] s. a") {
		t.Errorf("text = %q", rc.Text)
	}
}

func TestClient_Health_WithoutBackends(t *testing.T) {
	c, err := NewWithAdapters(Config{}, []Adapter{&mockAdapter{tier: TierHybrid}})
	if err != nil {
		t.Fatalf("NewWithAdapters: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if r := c.Health(ctx); !r.Healthy {
		t.Errorf("expected healthy report, got %+v", r)
	}
}
