// Package postgres implements full-text search over a PostgreSQL documents table.
package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kailas-cloud/regsearch/internal/db"
)

var _ db.FullTextSearcher = (*Store)(nil)

// Pool is the subset of pgxpool.Pool used by the store.
type Pool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// Config holds connection parameters.
type Config struct {
	DSN      string
	Table    string
	MaxConns int32
	MinConns int32
}

// Store runs websearch_to_tsquery / pg_trgm queries against one table.
type Store struct {
	pool  Pool
	query string
}

// NewStore opens a pool and verifies connectivity.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	pgxCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse config: %w", err)
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	if cfg.MaxConns > 0 {
		pgxCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pgxCfg.MinConns = cfg.MinConns
	}
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return NewWithPool(pool, cfg.Table), nil
}

// NewWithPool wraps an existing pool. table defaults to "documents".
func NewWithPool(pool Pool, table string) *Store {
	if table == "" {
		table = "documents"
	}
	return &Store{pool: pool, query: buildSearchSQL(pgx.Identifier{table}.Sanitize())}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	return nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

// SearchText ranks rows by GREATEST(ts_rank_cd, title trigram similarity).
// Terms beyond Text are OR-ed into the tsquery.
func (s *Store) SearchText(ctx context.Context, q *db.FullTextQuery) (*db.SearchResult, error) {
	if q.Text == "" {
		return nil, fmt.Errorf("query text is required")
	}
	if q.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive")
	}

	f, err := sqlFilters(q.Filters)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, s.query,
		websearchText(q.Text, q.Terms), q.Text,
		f.jurisdiction, f.docType, f.from, f.to,
		q.Limit,
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpTextQuery, Err: err}
	}
	defer rows.Close()

	var entries []db.SearchEntry
	for rows.Next() {
		var (
			id, title, snippet, citation, jurisdiction, docType string
			effective                                           *time.Time
			score                                               float64
		)
		if err := rows.Scan(&id, &title, &snippet, &citation, &jurisdiction, &docType, &effective, &score); err != nil {
			return nil, &db.Error{Op: db.OpTextQuery, Err: fmt.Errorf("scan: %w", err)}
		}
		fields := map[string]string{
			db.FieldDocumentID:   id,
			db.FieldTitle:        title,
			db.FieldSnippet:      snippet,
			db.FieldCitation:     citation,
			db.FieldJurisdiction: jurisdiction,
			db.FieldDocType:      docType,
		}
		if effective != nil {
			fields[db.FieldEffectiveDate] = strconv.FormatInt(effective.Unix(), 10)
		}
		entries = append(entries, db.SearchEntry{Key: id, Score: score, Fields: fields})
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpTextQuery, Err: err}
	}
	return &db.SearchResult{Total: len(entries), Entries: entries}, nil
}
