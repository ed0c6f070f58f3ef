package fdsn

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quake-profile-service/internal/domain"
	"github.com/couchcryptid/quake-profile-service/internal/observability"
)

// Store is a byte-oriented key/value cache shared by CachedSource backends.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// CachedSource wraps a Source with a Store for network and station listings.
// Events are always fetched from the upstream.
type CachedSource struct {
	inner   domain.Source
	store   Store
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a catalog source.
func NewCachedSource(inner domain.Source, store Store, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{
		inner:   inner,
		store:   store,
		metrics: metrics,
	}
}

func (c *CachedSource) Networks(ctx context.Context) ([]domain.Network, error) {
	const key = "networks"
	var networks []domain.Network
	if c.lookup(ctx, "networks", key, &networks) {
		return networks, nil
	}
	networks, err := c.inner.Networks(ctx)
	if err != nil {
		return nil, err
	}
	// Only cache non-empty results so an empty upstream answer can be retried.
	if len(networks) > 0 {
		c.save(ctx, key, networks)
	}
	return networks, nil
}

func (c *CachedSource) Stations(ctx context.Context, networks []string) ([]domain.RawStation, error) {
	key := stationsKey(networks)
	var stations []domain.RawStation
	if c.lookup(ctx, "stations", key, &stations) {
		return stations, nil
	}
	stations, err := c.inner.Stations(ctx, networks)
	if err != nil {
		return nil, err
	}
	if len(stations) > 0 {
		c.save(ctx, key, stations)
	}
	return stations, nil
}

func (c *CachedSource) Events(ctx context.Context, r domain.DateRange) ([]domain.RawEvent, error) {
	return c.inner.Events(ctx, r)
}

// stationsKey is independent of selection order.
func stationsKey(networks []string) string {
	codes := append([]string(nil), networks...)
	sort.Strings(codes)
	return "stations:" + strings.Join(codes, ",")
}

func (c *CachedSource) lookup(ctx context.Context, kind, key string, dst any) bool {
	data, ok, err := c.store.Get(ctx, key)
	switch {
	case err != nil:
		c.metrics.CacheLookups.WithLabelValues(kind, "error").Inc()
		return false
	case !ok:
		c.metrics.CacheLookups.WithLabelValues(kind, "miss").Inc()
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		c.metrics.CacheLookups.WithLabelValues(kind, "error").Inc()
		return false
	}
	c.metrics.CacheLookups.WithLabelValues(kind, "hit").Inc()
	return true
}

func (c *CachedSource) save(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = c.store.Set(ctx, key, data)
}

// MemoryStore is a thread-safe LRU Store whose entries expire after a TTL.
type MemoryStore struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock

	mu      sync.Mutex
	entries map[string]*entry
	head    *entry // most recently used
	tail    *entry // least recently used
}

type entry struct {
	key     string
	value   []byte
	expires time.Time
	prev    *entry
	next    *entry
}

// NewMemoryStore creates an LRU store. A zero ttl keeps entries until evicted.
func NewMemoryStore(maxEntries int, ttl time.Duration, clock clockwork.Clock) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStore{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		entries:    make(map[string]*entry),
	}
}

func (c *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !c.clock.Now().Before(e.expires) {
		delete(c.entries, key)
		c.remove(e)
		return nil, false, nil
	}
	c.moveToFront(e)
	return e.value, true, nil
}

func (c *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expires time.Time
	if c.ttl > 0 {
		expires = c.clock.Now().Add(c.ttl)
	}

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.expires = expires
		c.moveToFront(e)
		return nil
	}

	e := &entry{key: key, value: value, expires: expires}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
	return nil
}

// Len reports the number of stored entries, expired ones included.
func (c *MemoryStore) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryStore) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *MemoryStore) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *MemoryStore) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *MemoryStore) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
