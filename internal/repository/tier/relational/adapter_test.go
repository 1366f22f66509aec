package relational

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/regsearch/internal/db"
	"github.com/kailas-cloud/regsearch/internal/domain"
	"github.com/kailas-cloud/regsearch/internal/domain/search/query"
	"github.com/kailas-cloud/regsearch/internal/domain/search/tier"
)

type mockStore struct {
	searchTextFn func(ctx context.Context, q *db.FullTextQuery) (*db.SearchResult, error)
}

func (m *mockStore) SearchText(ctx context.Context, q *db.FullTextQuery) (*db.SearchResult, error) {
	if m.searchTextFn != nil {
		return m.searchTextFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func TestProbe(t *testing.T) {
	from := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	q := query.New("ei", []string{"ei"}, nil, query.NewFilters("ca", "", &from, nil), 5, 0).
		WithExpandedTerms([]string{"ei", "employment insurance"})

	ms := &mockStore{searchTextFn: func(_ context.Context, fq *db.FullTextQuery) (*db.SearchResult, error) {
		assert.Equal(t, "ei", fq.Text)
		assert.Equal(t, []string{"ei", "employment insurance"}, fq.Terms)
		assert.Len(t, fq.Filters.Must(), 2)
		assert.Equal(t, 5, fq.Limit)
		return &db.SearchResult{Entries: []db.SearchEntry{{
			Key:   "ei-act",
			Score: 0.31,
			Fields: map[string]string{
				db.FieldDocumentID:    "ei-act",
				db.FieldTitle:         "Employment Insurance Act",
				db.FieldSnippet:       "the <b>employment</b> <b>insurance</b> account",
				db.FieldEffectiveDate: "1614556800",
			},
		}}}, nil
	}}

	res, err := New(ms).Probe(context.Background(), q, 5)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, tier.Relational, res[0].SourceTier)
	assert.Equal(t, "the employment insurance account", res[0].Snippet)
	assert.InDelta(t, 0.31, res[0].NativeScore, 1e-9)
	assert.Equal(t, 2021, res[0].EffectiveDate.Year())
}

func TestProbe_Errors(t *testing.T) {
	q := query.New("x", []string{"x"}, nil, query.Filters{}, 5, 0)

	_, err := New(&mockStore{}).Probe(context.Background(), q, 5)
	assert.ErrorIs(t, err, domain.ErrNoResults)

	ms := &mockStore{searchTextFn: func(_ context.Context, _ *db.FullTextQuery) (*db.SearchResult, error) {
		return nil, errors.New("too many connections")
	}}
	_, err = New(ms).Probe(context.Background(), q, 5)
	assert.ErrorIs(t, err, domain.ErrTierUnavailable)
}
