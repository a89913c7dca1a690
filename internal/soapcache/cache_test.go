package soapcache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu         sync.Mutex
	rows       map[string]Entry
	statsErr   error
	statsCalls int
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]Entry)}
}

func (s *memStore) Get(_ context.Context, signature string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.rows[signature]
	if !ok {
		return nil, ErrMiss
	}
	return &e, nil
}

func (s *memStore) Put(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[e.Signature] = e
	return nil
}

func (s *memStore) ExpiryTimes(_ context.Context) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statsCalls++
	if s.statsErr != nil {
		return nil, s.statsErr
	}
	expiries := make([]time.Time, 0, len(s.rows))
	for _, e := range s.rows {
		expiries = append(expiries, e.ExpiresAt)
	}
	return expiries, nil
}

func (s *memStore) DeleteExpired(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for sig, e := range s.rows {
		if !e.ExpiresAt.After(cutoff) {
			delete(s.rows, sig)
			deleted++
		}
	}
	return deleted, nil
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestCache() (*Cache, *memStore, *fakeClock) {
	store := newMemStore()
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	cache := New(logrus.New(), store, WithClock(clock.Now))
	return cache, store, clock
}

func TestGet_MissReturnsErrMiss(t *testing.T) {
	cache, _, _ := newTestCache()

	_, _, err := cache.Get(context.Background(), "resource/steel")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestPutGet_FreshWithinTTL(t *testing.T) {
	cache, _, clock := newTestCache()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "resource/steel", "<payload/>", time.Hour))

	payload, fresh, err := cache.Get(ctx, "resource/steel")
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, "<payload/>", payload)

	clock.Advance(2 * time.Hour)

	payload, fresh, err = cache.Get(ctx, "resource/steel")
	require.NoError(t, err)
	assert.False(t, fresh, "entry past its TTL must be reported stale")
	assert.Equal(t, "<payload/>", payload, "stale payload is still returned")
}

func TestPut_OverwritesWholeEntry(t *testing.T) {
	cache, _, clock := newTestCache()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "resource/steel", "old", time.Hour))
	clock.Advance(2 * time.Hour)
	require.NoError(t, cache.Put(ctx, "resource/steel", "new", time.Hour))

	payload, fresh, err := cache.Get(ctx, "resource/steel")
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, "new", payload)
}

func TestStats_CountsSumAgainstOneSnapshot(t *testing.T) {
	cache, _, clock := newTestCache()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "a", "x", time.Hour))
	require.NoError(t, cache.Put(ctx, "b", "x", 3*time.Hour))
	clock.Advance(2 * time.Hour)
	require.NoError(t, cache.Put(ctx, "c", "x", time.Hour))

	stats, err := cache.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Expired)
	assert.Equal(t, 2, stats.Fresh)
	assert.Equal(t, stats.Total, stats.Expired+stats.Fresh)
}

func TestCleanupExpired_DeletesOnlyElapsed(t *testing.T) {
	cache, _, clock := newTestCache()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "old", "x", time.Hour))
	require.NoError(t, cache.Put(ctx, "live", "x", 3*time.Hour))
	clock.Advance(2 * time.Hour)

	deleted, err := cache.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	_, _, err = cache.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrMiss)

	_, fresh, err := cache.Get(ctx, "live")
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestCleanupExpired_Idempotent(t *testing.T) {
	cache, _, clock := newTestCache()
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "a", "x", time.Hour))
	clock.Advance(2 * time.Hour)

	first, err := cache.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := cache.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second)
}

func TestStats_PropagatesStoreError(t *testing.T) {
	cache, store, _ := newTestCache()
	store.statsErr = errors.New("connection reset")

	_, err := cache.Stats(context.Background())
	assert.Error(t, err)
}
