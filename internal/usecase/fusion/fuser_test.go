package fusion

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/regsearch/internal/domain"
	"github.com/kailas-cloud/regsearch/internal/domain/search/outcome"
	"github.com/kailas-cloud/regsearch/internal/domain/search/query"
	"github.com/kailas-cloud/regsearch/internal/domain/search/result"
	"github.com/kailas-cloud/regsearch/internal/domain/search/tier"
)

func raw(id string, score float64, t tier.ID) result.Raw {
	return result.Raw{DocumentID: id, Title: "title " + id, Snippet: "snippet " + id, NativeScore: score, SourceTier: t}
}

func ok(t tier.ID, raws ...result.Raw) outcome.Outcome {
	return outcome.New(t, raws, time.Millisecond, nil)
}

func testQuery(terms ...string) query.SearchQuery {
	return query.New("q", terms, nil, query.Filters{}, 10, 0)
}

func ids(fused []result.Fused) []string {
	out := make([]string, len(fused))
	for i, f := range fused {
		out[i] = f.DocumentID
	}
	return out
}

func TestFuse_SingleTierKeepsNativeOrder(t *testing.T) {
	f := New(DefaultConfig())
	got := f.Fuse(testQuery("zzz"), []outcome.Outcome{ok(tier.Hybrid,
		raw("a", 0.9, tier.Hybrid),
		raw("b", 0.5, tier.Hybrid),
		raw("c", 0.7, tier.Hybrid),
	)})

	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "c", "b"}, ids(got))
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
	assert.InDelta(t, 0.0, got[2].Score, 1e-9)
	for _, r := range got {
		assert.Equal(t, []tier.ID{tier.Hybrid}, r.ContributingTiers)
	}
}

func TestFuse_DeduplicatesKeepingHigherPriorityRecord(t *testing.T) {
	f := New(DefaultConfig())
	fromGraph := raw("doc", 10, tier.Graph)
	fromGraph.Title = "graph title"
	fromSection := raw("doc", 3, tier.Section)
	fromSection.Title = "section title"

	got := f.Fuse(testQuery("zzz"), []outcome.Outcome{
		ok(tier.Graph, fromGraph, raw("other", 1, tier.Graph)),
		ok(tier.Section, fromSection),
	})

	require.Len(t, got, 2)
	var doc result.Fused
	for _, r := range got {
		if r.DocumentID == "doc" {
			doc = r
		}
	}
	assert.Equal(t, "section title", doc.Title)
	assert.Equal(t, []tier.ID{tier.Section, tier.Graph}, doc.ContributingTiers)
}

func TestFuse_UniqueDocumentIDs(t *testing.T) {
	f := New(DefaultConfig())
	got := f.Fuse(testQuery("zzz"), []outcome.Outcome{
		ok(tier.Hybrid, raw("a", 1, tier.Hybrid), raw("b", 0.5, tier.Hybrid)),
		ok(tier.Section, raw("b", 4, tier.Section), raw("c", 2, tier.Section)),
		ok(tier.Metadata, raw("a", 0, tier.Metadata), raw("c", 0, tier.Metadata)),
	})

	seen := map[string]bool{}
	for _, r := range got {
		assert.False(t, seen[r.DocumentID], "duplicate %s", r.DocumentID)
		seen[r.DocumentID] = true
		assert.GreaterOrEqual(t, r.Score, 0.0)
		assert.LessOrEqual(t, r.Score, 1.0)
	}
	assert.Len(t, got, 3)
}

func TestFuse_IgnoresFailedOutcomes(t *testing.T) {
	f := New(DefaultConfig())
	got := f.Fuse(testQuery("zzz"), []outcome.Outcome{
		outcome.New(tier.Hybrid, nil, time.Millisecond, domain.ErrTierUnavailable),
		ok(tier.Relational, raw("x", 0.2, tier.Relational)),
	})

	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].DocumentID)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
}

func TestFuse_EmptyInput(t *testing.T) {
	f := New(DefaultConfig())
	assert.Empty(t, f.Fuse(testQuery("zzz"), nil))
}

func TestFuse_ZeroScoresStayZero(t *testing.T) {
	f := New(DefaultConfig())
	got := f.Fuse(testQuery("zzz"), []outcome.Outcome{ok(tier.Metadata,
		raw("b", 0, tier.Metadata),
		raw("a", 0, tier.Metadata),
	)})

	require.Len(t, got, 2)
	assert.Equal(t, []string{"a", "b"}, ids(got), "ties break on document id")
	assert.Zero(t, got[0].Score)
}

func TestFuse_ExactTermBoost(t *testing.T) {
	f := New(DefaultConfig())
	plain := raw("plain", 1, tier.Section)
	plain.Snippet = "general provisions"
	exact := raw("exact", 0.5, tier.Section)
	exact.Snippet = "Benefits under the EI program"
	partial := raw("partial", 0.5, tier.Section)
	partial.Snippet = "gei is not a match"

	got := f.Fuse(testQuery("ei"), []outcome.Outcome{ok(tier.Section, plain, exact, partial, raw("floor", 0, tier.Section))})

	scores := map[string]float64{}
	for _, r := range got {
		scores[r.DocumentID] = r.Score
	}
	assert.InDelta(t, 0.6, scores["exact"], 1e-9)
	assert.InDelta(t, 0.5, scores["partial"], 1e-9)
	assert.InDelta(t, 1.0, scores["plain"], 1e-9)
}

func TestFuse_BoostClampsToOne(t *testing.T) {
	f := New(DefaultConfig())
	r := raw("a", 5, tier.Hybrid)
	r.Snippet = "ei rates"
	got := f.Fuse(testQuery("ei"), []outcome.Outcome{ok(tier.Hybrid, r)})
	require.Len(t, got, 1)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
}

func TestFuse_TieBreakOrder(t *testing.T) {
	f := New(DefaultConfig())
	older := raw("older", 1, tier.Section)
	older.EffectiveDate = time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := raw("newer", 1, tier.Section)
	newer.EffectiveDate = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	got := f.Fuse(testQuery("zzz"), []outcome.Outcome{
		ok(tier.Section, older, newer),
		ok(tier.Relational, raw("rel", 1, tier.Relational)),
	})

	// Section and relational scores differ by weight; equal-score section hits order by date.
	require.Len(t, got, 3)
	assert.Equal(t, []string{"newer", "older", "rel"}, ids(got))
}

func TestFuse_DeterministicAcrossOutcomeOrder(t *testing.T) {
	f := New(DefaultConfig())
	outcomes := []outcome.Outcome{
		ok(tier.Graph, raw("a", 3, tier.Graph), raw("b", 2, tier.Graph), raw("c", 1, tier.Graph)),
		ok(tier.Relational, raw("c", 0.9, tier.Relational), raw("d", 0.3, tier.Relational)),
		ok(tier.Metadata, raw("d", 0, tier.Metadata), raw("e", 0, tier.Metadata)),
	}
	want := f.Fuse(testQuery("zzz"), outcomes)

	reversed := slices.Clone(outcomes)
	slices.Reverse(reversed)
	for range 10 {
		assert.Equal(t, want, f.Fuse(testQuery("zzz"), reversed))
		assert.Equal(t, want, f.Fuse(testQuery("zzz"), outcomes))
	}
}

func TestNew_CustomWeights(t *testing.T) {
	f := New(Config{Weights: map[tier.ID]float64{tier.Metadata: 2}, Boost: 0})
	got := f.Fuse(testQuery("zzz"), []outcome.Outcome{
		ok(tier.Hybrid, raw("h", 1, tier.Hybrid), raw("h0", 0, tier.Hybrid)),
		ok(tier.Metadata, raw("m", 1, tier.Metadata)),
	})
	require.NotEmpty(t, got)
	assert.Equal(t, "m", got[0].DocumentID)
}

func TestNew_ZeroWeightExcludesTier(t *testing.T) {
	f := New(Config{Weights: map[tier.ID]float64{tier.Metadata: 0}})
	assert.Equal(t, 0.0, f.weight(tier.Metadata))

	got := f.Fuse(testQuery("zzz"), []outcome.Outcome{
		ok(tier.Hybrid, raw("h", 1, tier.Hybrid)),
		ok(tier.Metadata, raw("m", 1, tier.Metadata)),
	})
	require.Len(t, got, 2)
	assert.Equal(t, "h", got[0].DocumentID)
	assert.InDelta(t, 1.0, got[0].Score, 1e-9)
	assert.InDelta(t, 0.0, got[1].Score, 1e-9)
}

func TestNew_NegativeWeightKeepsDefault(t *testing.T) {
	f := New(Config{Weights: map[tier.ID]float64{tier.Metadata: -1}})
	assert.Equal(t, DefaultConfig().Weights[tier.Metadata], f.weight(tier.Metadata))
}

func TestMinMax(t *testing.T) {
	assert.Equal(t, []float64{1, 0, 0.5}, minMax([]result.Raw{{NativeScore: 4}, {NativeScore: 2}, {NativeScore: 3}}))
	assert.Equal(t, []float64{1, 1}, minMax([]result.Raw{{NativeScore: 0.3}, {NativeScore: 0.3}}))
	assert.Equal(t, []float64{0}, minMax([]result.Raw{{NativeScore: 0}}))
	assert.Empty(t, minMax(nil))
}

func TestContainsExactTerm(t *testing.T) {
	tests := []struct {
		snippet string
		terms   []string
		want    bool
	}{
		{"EI benefits", []string{"ei"}, true},
		{"the eid holiday", []string{"ei"}, false},
		{"see s.7 of the act", []string{"s.7"}, true},
		{"insurable earnings ceiling", []string{"insurable earnings"}, true},
		{"uninsurable earnings", []string{"insurable earnings"}, false},
		{"", []string{"ei"}, false},
		{"ei", nil, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, containsExactTerm(tt.snippet, tt.terms), "%q %v", tt.snippet, tt.terms)
	}
}
