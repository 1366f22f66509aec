package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/regsearch/internal/db"
	"github.com/kailas-cloud/regsearch/internal/domain/catalog"
)

func newMemoryStore(t *testing.T) *CatalogStore {
	t.Helper()
	s, err := Open("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCatalogStore_PutAll(t *testing.T) {
	s := newMemoryStore(t)
	ctx := context.Background()

	eff := time.Date(1996, 6, 30, 0, 0, 0, 0, time.UTC)
	require.NoError(t, s.Put(ctx,
		catalog.Entry{DocumentID: "b", Title: "Canada Pension Plan", Tags: []string{"cpp"}},
		catalog.Entry{DocumentID: "a", Title: "Employment Insurance Act", EffectiveDate: eff},
	))

	all, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a", all[0].DocumentID)
	assert.True(t, all[0].EffectiveDate.Equal(eff))
	assert.Equal(t, []string{"cpp"}, all[1].Tags)
}

func TestCatalogStore_PutOverwrites(t *testing.T) {
	s := newMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, catalog.Entry{DocumentID: "a", Title: "old"}))
	require.NoError(t, s.Put(ctx, catalog.Entry{DocumentID: "a", Title: "new"}))

	e, err := s.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "new", e.Title)
}

func TestCatalogStore_GetMissing(t *testing.T) {
	s := newMemoryStore(t)
	_, err := s.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, db.ErrKeyNotFound))
}

func TestCatalogStore_PutInvalid(t *testing.T) {
	s := newMemoryStore(t)
	err := s.Put(context.Background(), catalog.Entry{Title: "no id"})
	require.Error(t, err)

	all, err := s.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestOpen_OnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, nil)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), catalog.Entry{DocumentID: "x", Title: "X"}))
	require.NoError(t, s.Close())

	s, err = Open(dir, nil)
	require.NoError(t, err)
	defer s.Close()
	all, err := s.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
