// Package respcache caches fused search responses in a striped in-process
// LRU with TTL, optionally backed by a shared Redis level.
package respcache

import (
	"container/list"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/regsearch/internal/db"
	"github.com/kailas-cloud/regsearch/internal/domain"
	"github.com/kailas-cloud/regsearch/internal/domain/search/result"
)

// Defaults for Config.
const (
	DefaultTTL      = 30 * time.Minute
	DefaultCapacity = 10000
	stripeCount     = 16
	sharedPrefix    = "regsearch:resp:"
)

// Entry is one cached response page.
type Entry struct {
	Results []result.Fused `json:"results"`
	Total   int            `json:"total"`
}

func (e Entry) clone() Entry {
	return Entry{Results: result.CloneAll(e.Results), Total: e.Total}
}

// Shared is the optional second level (Redis).
type Shared interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config sizes the cache.
type Config struct {
	TTL      time.Duration
	Capacity int
}

// Option configures a Cache.
type Option func(*Cache)

// WithShared enables the shared second level.
func WithShared(s Shared) Option {
	return func(c *Cache) { c.shared = s }
}

// WithLogger sets the logger used for shared-level failures.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// WithClock overrides time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

type item struct {
	key     string
	entry   Entry
	expires time.Time
}

type stripe struct {
	mu    sync.Mutex
	ll    *list.List
	items map[string]*list.Element
}

// Cache is safe for concurrent use.
type Cache struct {
	stripes  [stripeCount]stripe
	ttl      time.Duration
	perShard int
	shared   Shared
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a Cache. Non-positive config values take defaults.
func New(cfg Config, opts ...Option) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	c := &Cache{
		ttl:      cfg.TTL,
		perShard: max(1, (cfg.Capacity+stripeCount-1)/stripeCount),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	for i := range c.stripes {
		c.stripes[i].ll = list.New()
		c.stripes[i].items = make(map[string]*list.Element)
	}
	return c
}

func (c *Cache) stripe(key string) *stripe {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &c.stripes[h.Sum32()%stripeCount]
}

// Get returns a copy of the cached entry. A local miss consults the shared
// level; corrupt shared entries are logged and treated as misses.
func (c *Cache) Get(ctx context.Context, key string) (Entry, bool) {
	if e, ok := c.getLocal(key); ok {
		return e, true
	}
	if c.shared == nil {
		return Entry{}, false
	}
	e, err := c.getShared(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Shared cache read failed", zap.String("key", key), zap.Error(err))
		}
		return Entry{}, false
	}
	stored, _ := c.addLocal(key, e)
	return stored, true
}

// Add stores e unless a live entry already exists, and returns whichever
// entry is stored. New entries are written through to the shared level.
func (c *Cache) Add(ctx context.Context, key string, e Entry) Entry {
	stored, inserted := c.addLocal(key, e)
	if inserted && c.shared != nil {
		if err := c.putShared(ctx, key, stored); err != nil {
			c.logger.Warn("Shared cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return stored
}

// Len returns the number of live local entries.
func (c *Cache) Len() int {
	now := c.now()
	n := 0
	for i := range c.stripes {
		s := &c.stripes[i]
		s.mu.Lock()
		for el := s.ll.Front(); el != nil; el = el.Next() {
			if now.Before(el.Value.(*item).expires) {
				n++
			}
		}
		s.mu.Unlock()
	}
	return n
}

func (c *Cache) getLocal(key string) (Entry, bool) {
	s := c.stripe(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.items[key]
	if !ok {
		return Entry{}, false
	}
	it := el.Value.(*item)
	if !c.now().Before(it.expires) {
		s.remove(el)
		return Entry{}, false
	}
	s.ll.MoveToFront(el)
	return it.entry.clone(), true
}

func (c *Cache) addLocal(key string, e Entry) (Entry, bool) {
	s := c.stripe(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	now := c.now()
	if el, ok := s.items[key]; ok {
		it := el.Value.(*item)
		if now.Before(it.expires) {
			s.ll.MoveToFront(el)
			return it.entry.clone(), false
		}
		s.remove(el)
	}

	if s.ll.Len() >= c.perShard {
		s.evict(now, c.perShard)
	}

	stored := e.clone()
	s.items[key] = s.ll.PushFront(&item{key: key, entry: stored, expires: now.Add(c.ttl)})
	return stored.clone(), true
}

// evict drops expired items, then least recently used ones, until there is room.
func (s *stripe) evict(now time.Time, capacity int) {
	for el := s.ll.Back(); el != nil; {
		prev := el.Prev()
		if !now.Before(el.Value.(*item).expires) {
			s.remove(el)
		}
		el = prev
	}
	for s.ll.Len() >= capacity {
		s.remove(s.ll.Back())
	}
}

func (s *stripe) remove(el *list.Element) {
	s.ll.Remove(el)
	delete(s.items, el.Value.(*item).key)
}

type sharedPayload struct {
	Key string `json:"key"`
	Entry
}

func (c *Cache) getShared(ctx context.Context, key string) (Entry, error) {
	data, err := c.shared.Get(ctx, sharedPrefix+key)
	if err != nil {
		return Entry{}, err
	}
	var p sharedPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return Entry{}, fmt.Errorf("%w: decode %s: %w", domain.ErrCacheCorruption, key, err)
	}
	if p.Key != key {
		return Entry{}, fmt.Errorf("%w: key mismatch for %s", domain.ErrCacheCorruption, key)
	}
	return p.Entry, nil
}

func (c *Cache) putShared(ctx context.Context, key string, e Entry) error {
	data, err := json.Marshal(sharedPayload{Key: key, Entry: e})
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return c.shared.SetWithTTL(ctx, sharedPrefix+key, data, c.ttl)
}
