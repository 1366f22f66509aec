// Package badger persists the metadata catalog in an embedded Badger database.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/kailas-cloud/regsearch/internal/db"
	"github.com/kailas-cloud/regsearch/internal/domain/catalog"
)

const catalogPrefix = "catalog:"

// CatalogStore reads and writes catalog entries keyed by document id.
type CatalogStore struct {
	db *badger.DB
}

type zapAdapter struct {
	s *zap.SugaredLogger
}

var _ badger.Logger = (*zapAdapter)(nil)

func (a *zapAdapter) Errorf(msg string, items ...any)   { a.s.Errorf(msg, items...) }
func (a *zapAdapter) Warningf(msg string, items ...any) { a.s.Warnf(msg, items...) }
func (a *zapAdapter) Infof(msg string, items ...any)    { a.s.Debugf(msg, items...) }
func (a *zapAdapter) Debugf(msg string, items ...any)   { a.s.Debugf(msg, items...) }

// Open opens the catalog at path, creating the directory if needed.
// An empty path opens an in-memory store.
func Open(path string, logger *zap.Logger) (*CatalogStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("create catalog dir: %w", err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = &zapAdapter{s: logger.Named("badger").Sugar()}

	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, &db.Error{Op: db.OpCatalog, Err: err}
	}
	return &CatalogStore{db: bdb}, nil
}

// Close closes the database.
func (s *CatalogStore) Close() error {
	return s.db.Close()
}

// Put upserts entries in one transaction.
func (s *CatalogStore) Put(_ context.Context, entries ...catalog.Entry) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, e := range entries {
			if err := e.Validate(); err != nil {
				return err
			}
			data, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("marshal %s: %w", e.DocumentID, err)
			}
			if err := txn.Set([]byte(catalogPrefix+e.DocumentID), data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return &db.Error{Op: db.OpCatalog, Err: err}
	}
	return nil
}

// Get returns one entry or db.ErrKeyNotFound.
func (s *CatalogStore) Get(_ context.Context, documentID string) (catalog.Entry, error) {
	var e catalog.Entry
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(catalogPrefix + documentID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return catalog.Entry{}, db.ErrKeyNotFound
	}
	if err != nil {
		return catalog.Entry{}, &db.Error{Op: db.OpCatalog, Err: err}
	}
	return e, nil
}

// All returns every entry in key order.
func (s *CatalogStore) All(ctx context.Context) ([]catalog.Entry, error) {
	var out []catalog.Entry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(catalogPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			var e catalog.Entry
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", item.Key(), err)
			}
			out = append(out, e)
		}
		return nil
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpCatalog, Err: err}
	}
	return out, nil
}
