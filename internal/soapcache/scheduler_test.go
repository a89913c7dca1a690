package soapcache

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedExpired(t *testing.T, cache *Cache, clock *fakeClock, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		require.NoError(t, cache.Put(ctx, fmt.Sprintf("expired-%d", i), "x", time.Minute))
	}
	clock.Advance(2 * time.Minute)
}

func TestRunOnce_SkipsBelowThreshold(t *testing.T) {
	cache, _, clock := newTestCache()
	scheduler := NewScheduler(logrus.New(), cache, time.Hour, 10)

	seedExpired(t, cache, clock, 9)

	report, err := scheduler.RunOnce(context.Background())
	require.NoError(t, err)

	assert.True(t, report.Skipped)
	assert.Equal(t, 0, report.Deleted)
	assert.Equal(t, 9, report.Before.Expired)
	assert.Equal(t, report.Before, report.After)

	stats, err := cache.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 9, stats.Expired, "skip must not delete anything")
}

func TestRunOnce_SweepsAtThreshold(t *testing.T) {
	cache, _, clock := newTestCache()
	scheduler := NewScheduler(logrus.New(), cache, time.Hour, 10)

	seedExpired(t, cache, clock, 10)

	report, err := scheduler.RunOnce(context.Background())
	require.NoError(t, err)

	assert.False(t, report.Skipped)
	assert.Equal(t, 10, report.Deleted)
	assert.Equal(t, 10, report.Before.Expired)
	assert.Equal(t, 0, report.After.Total)
}

func TestRunOnce_LeavesFreshEntries(t *testing.T) {
	cache, _, clock := newTestCache()
	scheduler := NewScheduler(logrus.New(), cache, time.Hour, 10)

	require.NoError(t, cache.Put(context.Background(), "live", "x", 24*time.Hour))
	seedExpired(t, cache, clock, 10)

	report, err := scheduler.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, report.Deleted)
	assert.Equal(t, 1, report.After.Total)
	assert.Equal(t, 1, report.After.Fresh)
}

func TestStart_FailedTickDoesNotStopTimer(t *testing.T) {
	cache, store, _ := newTestCache()
	store.statsErr = errors.New("connection reset")
	scheduler := NewScheduler(logrus.New(), cache, 5*time.Millisecond, 10)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		scheduler.Start(ctx)
		close(done)
	}()

	// Let several failing ticks elapse, then repair the store and confirm
	// the timer is still firing.
	time.Sleep(25 * time.Millisecond)
	store.mu.Lock()
	store.statsErr = nil
	calls := store.statsCalls
	store.mu.Unlock()
	require.Positive(t, calls, "failing ticks should still have queried stats")

	time.Sleep(25 * time.Millisecond)
	store.mu.Lock()
	later := store.statsCalls
	store.mu.Unlock()
	assert.Greater(t, later, calls, "timer must keep firing after failed ticks")

	cancel()
	<-done
}
