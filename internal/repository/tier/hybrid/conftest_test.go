package hybrid

import (
	"context"
	"sync/atomic"

	"github.com/kailas-cloud/regsearch/internal/db"
	"github.com/kailas-cloud/regsearch/internal/domain"
	"github.com/kailas-cloud/regsearch/internal/domain/search/query"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	searchKNNFn  func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	searchBM25Fn func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	knnCalls     atomic.Int32
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	m.knnCalls.Add(1)
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if m.searchBM25Fn != nil {
		return m.searchBM25Fn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

type mockEmbedder struct {
	vec      []float32
	err      error
	lastText string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.lastText = text
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec, TotalTokens: 3}, nil
}

func entry(id string, score float64) db.SearchEntry {
	return db.SearchEntry{
		Key:   "doc:" + id,
		Score: score,
		Fields: map[string]string{
			db.FieldDocumentID: id,
			db.FieldTitle:      "Title " + id,
			db.FieldContent:    "employment insurance text for " + id,
		},
	}
}

func searchResult(entries ...db.SearchEntry) *db.SearchResult {
	return &db.SearchResult{Total: len(entries), Entries: entries}
}

func eiQuery() query.SearchQuery {
	return query.New("employment insurance", []string{"employment", "insurance"}, nil, query.Filters{}, 10, 0).
		WithExpandedTerms([]string{"employment insurance", "ei", "employment", "insurance"})
}
