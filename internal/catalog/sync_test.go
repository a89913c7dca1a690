package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/galaxytools/craft-tracker/internal/freshness"
	"github.com/galaxytools/craft-tracker/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memTimestamps struct {
	rows map[string]string
}

func (s *memTimestamps) Get(_ context.Context, key string) (string, error) {
	v, ok := s.rows[key]
	if !ok {
		return "", freshness.ErrNotFound
	}
	return v, nil
}

func (s *memTimestamps) Upsert(_ context.Context, key, value string) error {
	s.rows[key] = value
	return nil
}

func (s *memTimestamps) Delete(_ context.Context, key string) error {
	delete(s.rows, key)
	return nil
}

type fakeSource struct {
	resourceCalls  int
	schematicCalls int
}

func (f *fakeSource) FetchResources(context.Context) ([]models.Resource, error) {
	f.resourceCalls++
	return nil, nil
}

func (f *fakeSource) FetchSchematics(context.Context) ([]models.Schematic, error) {
	f.schematicCalls++
	return nil, nil
}

// A fresh domain must short-circuit before the source or database are
// touched; the db handle is nil here on purpose.
func TestSyncResources_FreshDomainIsNoOp(t *testing.T) {
	logger := logrus.New()
	store := &memTimestamps{rows: map[string]string{
		ResourceDomain: time.Now().UTC().Format(time.RFC3339Nano),
	}}
	tracker := freshness.NewTracker(logger, store)
	source := &fakeSource{}
	syncer := NewSyncer(logger, nil, tracker, source, 6*time.Hour, 24*time.Hour)

	result, err := syncer.SyncResources(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Refreshed)
	assert.Equal(t, ResourceDomain, result.Domain)
	assert.Zero(t, source.resourceCalls)
}

func TestSyncSchematics_FreshDomainIsNoOp(t *testing.T) {
	logger := logrus.New()
	store := &memTimestamps{rows: map[string]string{
		SchematicDomain: time.Now().Add(-time.Hour).UTC().Format(time.RFC3339Nano),
	}}
	tracker := freshness.NewTracker(logger, store)
	source := &fakeSource{}
	syncer := NewSyncer(logger, nil, tracker, source, 6*time.Hour, 24*time.Hour)

	result, err := syncer.SyncSchematics(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Refreshed)
	assert.InDelta(t, 1, result.AgeHours, 0.01)
	assert.Zero(t, source.schematicCalls)
}

func TestDomains_UseIndependentThresholds(t *testing.T) {
	logger := logrus.New()
	tenHoursAgo := time.Now().Add(-10 * time.Hour).UTC().Format(time.RFC3339Nano)
	store := &memTimestamps{rows: map[string]string{
		ResourceDomain:  tenHoursAgo,
		SchematicDomain: tenHoursAgo,
	}}
	tracker := freshness.NewTracker(logger, store)

	// Schematics (24h window) are still fresh at 10h; resources (6h) are not.
	syncer := NewSyncer(logger, nil, tracker, &fakeSource{}, 6*time.Hour, 24*time.Hour)

	schem, err := syncer.SyncSchematics(context.Background())
	require.NoError(t, err)
	assert.False(t, schem.Refreshed)

	status, err := tracker.Check(context.Background(), ResourceDomain, 6*time.Hour)
	require.NoError(t, err)
	assert.True(t, status.NeedsUpdate)
}
