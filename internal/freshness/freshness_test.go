package freshness

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	rows map[string]string
}

func newMemStore() *memStore {
	return &memStore{rows: make(map[string]string)}
}

func (s *memStore) Get(_ context.Context, key string) (string, error) {
	v, ok := s.rows[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *memStore) Upsert(_ context.Context, key, value string) error {
	s.rows[key] = value
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	delete(s.rows, key)
	return nil
}

func newTestTracker() (*Tracker, *memStore, time.Time) {
	store := newMemStore()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tracker := NewTracker(logrus.New(), store, WithClock(func() time.Time { return now }))
	return tracker, store, now
}

func TestCheck_NoTimestampNeedsUpdate(t *testing.T) {
	tracker, _, _ := newTestTracker()

	status, err := tracker.Check(context.Background(), "resource_catalog", 6*time.Hour)
	require.NoError(t, err)

	assert.False(t, status.Fresh)
	assert.True(t, status.NeedsUpdate)
	assert.True(t, math.IsInf(status.AgeHours, 1))
	assert.Nil(t, status.LastUpdate)
}

func TestCheck_FreshImmediatelyAfterUpdate(t *testing.T) {
	tracker, _, now := newTestTracker()
	ctx := context.Background()

	require.NoError(t, tracker.Update(ctx, "resource_catalog"))

	status, err := tracker.Check(ctx, "resource_catalog", 6*time.Hour)
	require.NoError(t, err)

	assert.True(t, status.Fresh)
	assert.False(t, status.NeedsUpdate)
	assert.InDelta(t, 0, status.AgeHours, 0.001)
	require.NotNil(t, status.LastUpdate)
	assert.True(t, status.LastUpdate.Equal(now))
}

func TestCheck_StaleBeyondThreshold(t *testing.T) {
	tracker, _, now := newTestTracker()
	ctx := context.Background()

	require.NoError(t, tracker.UpdateAt(ctx, "schematic_catalog", now.Add(-25*time.Hour)))

	status, err := tracker.Check(ctx, "schematic_catalog", 24*time.Hour)
	require.NoError(t, err)

	assert.False(t, status.Fresh)
	assert.True(t, status.NeedsUpdate)
	assert.InDelta(t, 25, status.AgeHours, 0.001)
}

func TestCheck_ThresholdIsCallerSupplied(t *testing.T) {
	tracker, _, now := newTestTracker()
	ctx := context.Background()

	require.NoError(t, tracker.UpdateAt(ctx, "catalog", now.Add(-10*time.Hour)))

	wide, err := tracker.Check(ctx, "catalog", 24*time.Hour)
	require.NoError(t, err)
	assert.True(t, wide.Fresh)

	narrow, err := tracker.Check(ctx, "catalog", 6*time.Hour)
	require.NoError(t, err)
	assert.False(t, narrow.Fresh)
	assert.True(t, narrow.NeedsUpdate)
}

func TestCheck_UnparseableValueForcesRefresh(t *testing.T) {
	tracker, store, _ := newTestTracker()
	store.rows["catalog"] = "not-a-timestamp"

	status, err := tracker.Check(context.Background(), "catalog", 6*time.Hour)
	require.NoError(t, err)

	assert.True(t, status.NeedsUpdate)
	assert.True(t, math.IsInf(status.AgeHours, 1))
}

func TestUpdate_LastWriteWins(t *testing.T) {
	tracker, _, now := newTestTracker()
	ctx := context.Background()

	require.NoError(t, tracker.UpdateAt(ctx, "catalog", now.Add(-48*time.Hour)))
	require.NoError(t, tracker.UpdateAt(ctx, "catalog", now.Add(-time.Hour)))

	status, err := tracker.Check(ctx, "catalog", 6*time.Hour)
	require.NoError(t, err)
	assert.True(t, status.Fresh)
	assert.InDelta(t, 1, status.AgeHours, 0.001)
}

func TestDelete_Idempotent(t *testing.T) {
	tracker, _, _ := newTestTracker()
	ctx := context.Background()

	require.NoError(t, tracker.Update(ctx, "catalog"))
	require.NoError(t, tracker.Delete(ctx, "catalog"))
	require.NoError(t, tracker.Delete(ctx, "catalog"))

	status, err := tracker.Check(ctx, "catalog", 6*time.Hour)
	require.NoError(t, err)
	assert.True(t, status.NeedsUpdate)
}
