package fdsn

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/quake-profile-service/internal/domain"
	"github.com/couchcryptid/quake-profile-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingSource struct {
	networkCalls int
	stationCalls int
	eventCalls   int
	networks     []domain.Network
	stations     []domain.RawStation
	err          error
}

func (m *countingSource) Networks(_ context.Context) ([]domain.Network, error) {
	m.networkCalls++
	return m.networks, m.err
}

func (m *countingSource) Stations(_ context.Context, _ []string) ([]domain.RawStation, error) {
	m.stationCalls++
	return m.stations, m.err
}

func (m *countingSource) Events(_ context.Context, _ domain.DateRange) ([]domain.RawEvent, error) {
	m.eventCalls++
	return nil, m.err
}

type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("store down")
}

func (failingStore) Set(context.Context, string, []byte) error {
	return errors.New("store down")
}

// --- CachedSource tests ---

func TestCachedSource_NetworksCacheHit(t *testing.T) {
	inner := &countingSource{networks: []domain.Network{{Code: "XX", Description: "Test"}}}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedSource(inner, NewMemoryStore(10, 0, nil), metrics)

	n1, err := cached.Networks(context.Background())
	require.NoError(t, err)
	n2, err := cached.Networks(context.Background())
	require.NoError(t, err)

	assert.Equal(t, n1, n2)
	assert.Equal(t, "XX", n2[0].Code)
	assert.Equal(t, 1, inner.networkCalls, "should only call inner once")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("networks", "hit")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("networks", "miss")), 0)
}

func TestCachedSource_StationsKeyIgnoresOrder(t *testing.T) {
	inner := &countingSource{stations: []domain.RawStation{{Network: "XX", Code: "ST01", Lat: 70, Lon: 125}}}
	cached := NewCachedSource(inner, NewMemoryStore(10, 0, nil), observability.NewMetricsForTesting())

	_, err := cached.Stations(context.Background(), []string{"XX", "YY"})
	require.NoError(t, err)
	s, err := cached.Stations(context.Background(), []string{"YY", "XX"})
	require.NoError(t, err)

	assert.Equal(t, 1, inner.stationCalls)
	assert.Equal(t, "ST01", s[0].Code)
}

func TestCachedSource_DifferentSelectionsMiss(t *testing.T) {
	inner := &countingSource{stations: []domain.RawStation{{Code: "ST01"}}}
	cached := NewCachedSource(inner, NewMemoryStore(10, 0, nil), observability.NewMetricsForTesting())

	_, _ = cached.Stations(context.Background(), []string{"XX"})
	_, _ = cached.Stations(context.Background(), []string{"YY"})

	assert.Equal(t, 2, inner.stationCalls)
}

func TestCachedSource_EmptyResultNotCached(t *testing.T) {
	inner := &countingSource{}
	cached := NewCachedSource(inner, NewMemoryStore(10, 0, nil), observability.NewMetricsForTesting())

	_, _ = cached.Networks(context.Background())
	_, _ = cached.Networks(context.Background())

	assert.Equal(t, 2, inner.networkCalls)
}

func TestCachedSource_ErrorPassesThrough(t *testing.T) {
	inner := &countingSource{err: domain.ErrNoData}
	cached := NewCachedSource(inner, NewMemoryStore(10, 0, nil), observability.NewMetricsForTesting())

	_, err := cached.Stations(context.Background(), []string{"XX"})
	require.ErrorIs(t, err, domain.ErrNoData)
}

func TestCachedSource_EventsNeverCached(t *testing.T) {
	inner := &countingSource{}
	cached := NewCachedSource(inner, NewMemoryStore(10, 0, nil), observability.NewMetricsForTesting())

	_, _ = cached.Events(context.Background(), domain.DateRange{})
	_, _ = cached.Events(context.Background(), domain.DateRange{})

	assert.Equal(t, 2, inner.eventCalls)
}

func TestCachedSource_StoreFailureFallsThrough(t *testing.T) {
	inner := &countingSource{networks: []domain.Network{{Code: "XX"}}}
	metrics := observability.NewMetricsForTesting()
	cached := NewCachedSource(inner, failingStore{}, metrics)

	n, err := cached.Networks(context.Background())
	require.NoError(t, err)
	assert.Len(t, n, 1)
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("networks", "error")), 0)
}

// --- MemoryStore unit tests ---

func TestMemoryStore_BasicGetSet(t *testing.T) {
	c := NewMemoryStore(3, 0, nil)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("A")))
	require.NoError(t, c.Set(ctx, "b", []byte("B")))

	v, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("A"), v)

	_, ok, err = c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_Eviction(t *testing.T) {
	c := NewMemoryStore(2, 0, nil)
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("A"))
	_ = c.Set(ctx, "b", []byte("B"))
	_ = c.Set(ctx, "c", []byte("C")) // evicts "a"

	_, ok, _ := c.Get(ctx, "a")
	assert.False(t, ok, "a should have been evicted")

	v, ok, _ := c.Get(ctx, "b")
	assert.True(t, ok)
	assert.Equal(t, []byte("B"), v)
	assert.Equal(t, 2, c.Len())
}

func TestMemoryStore_AccessPromotesEntry(t *testing.T) {
	c := NewMemoryStore(2, 0, nil)
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("A"))
	_ = c.Set(ctx, "b", []byte("B"))
	_, _, _ = c.Get(ctx, "a")
	_ = c.Set(ctx, "c", []byte("C"))

	_, ok, _ := c.Get(ctx, "a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")

	_, ok, _ = c.Get(ctx, "b")
	assert.False(t, ok, "b should have been evicted")
}

func TestMemoryStore_UpdateExisting(t *testing.T) {
	c := NewMemoryStore(2, 0, nil)
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("A1"))
	_ = c.Set(ctx, "a", []byte("A2"))

	v, ok, _ := c.Get(ctx, "a")
	assert.True(t, ok)
	assert.Equal(t, []byte("A2"), v)
	assert.Equal(t, 1, c.Len())
}

func TestMemoryStore_Expiry(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := NewMemoryStore(2, time.Minute, clock)
	ctx := context.Background()

	_ = c.Set(ctx, "a", []byte("A"))
	clock.Advance(59 * time.Second)
	_, ok, _ := c.Get(ctx, "a")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok, _ = c.Get(ctx, "a")
	assert.False(t, ok, "entry should expire after ttl")
	assert.Equal(t, 0, c.Len())
}
