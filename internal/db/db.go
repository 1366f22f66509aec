package db

import (
	"context"
	"time"
)

// Store is the Redis facade used by the hybrid and section tiers and the caches.
type Store interface {
	Pinger
	KVStore
	Searcher
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Searcher provides search operations over FT indexes.
type Searcher interface {
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)
	SearchBM25(ctx context.Context, q *TextQuery) (*SearchResult, error)
}

// FullTextSearcher is implemented by the PostgreSQL and Neo4j stores.
type FullTextSearcher interface {
	Pinger
	SearchText(ctx context.Context, q *FullTextQuery) (*SearchResult, error)
}
