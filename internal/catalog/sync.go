// Package catalog keeps the persisted resource and schematic catalogs in
// step with the upstream provider, refreshing each domain only when its
// freshness window has elapsed.
package catalog

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/galaxytools/craft-tracker/internal/freshness"
	"github.com/galaxytools/craft-tracker/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	ResourceDomain  = "resource_catalog"
	SchematicDomain = "schematic_catalog"
)

// Source supplies full catalog listings. The upstream SOAP client
// implements it; tests substitute fakes.
type Source interface {
	FetchResources(ctx context.Context) ([]models.Resource, error)
	FetchSchematics(ctx context.Context) ([]models.Schematic, error)
}

type Syncer struct {
	db              *gorm.DB
	tracker         *freshness.Tracker
	source          Source
	resourceMaxAge  time.Duration
	schematicMaxAge time.Duration
	log             *logrus.Entry
}

// SyncResult reports what one domain sync did. AgeHours is the domain age
// at check time, -1 when the domain had never been synced; Count is rows
// upserted when a refresh ran.
type SyncResult struct {
	Domain    string  `json:"domain"`
	Refreshed bool    `json:"refreshed"`
	AgeHours  float64 `json:"age_hours"`
	Count     int     `json:"count"`
}

func ageHours(v float64) float64 {
	if math.IsInf(v, 1) {
		return -1
	}
	return v
}

func NewSyncer(logger *logrus.Logger, db *gorm.DB, tracker *freshness.Tracker, source Source, resourceMaxAge, schematicMaxAge time.Duration) *Syncer {
	return &Syncer{
		db:              db,
		tracker:         tracker,
		source:          source,
		resourceMaxAge:  resourceMaxAge,
		schematicMaxAge: schematicMaxAge,
		log:             logger.WithField("component", "catalog_syncer"),
	}
}

// SyncResources refreshes the resource catalog when it is stale, otherwise
// reports a no-op.
func (s *Syncer) SyncResources(ctx context.Context) (SyncResult, error) {
	status, err := s.tracker.Check(ctx, ResourceDomain, s.resourceMaxAge)
	if err != nil {
		return SyncResult{}, err
	}
	if !status.NeedsUpdate {
		return SyncResult{Domain: ResourceDomain, AgeHours: ageHours(status.AgeHours)}, nil
	}

	resources, err := s.source.FetchResources(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("resource catalog fetch: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range resources {
			resources[i].UpdatedAt = time.Now()
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "name"}},
				DoUpdates: clause.AssignmentColumns([]string{"class_id", "planet", "stats", "spawned_at", "updated_at"}),
			}).Create(&resources[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SyncResult{}, fmt.Errorf("resource catalog upsert: %w", err)
	}

	if err := s.tracker.Update(ctx, ResourceDomain); err != nil {
		return SyncResult{}, err
	}

	s.log.WithField("count", len(resources)).Info("Resource catalog refreshed")
	return SyncResult{Domain: ResourceDomain, Refreshed: true, AgeHours: ageHours(status.AgeHours), Count: len(resources)}, nil
}

// SyncSchematics refreshes the schematic catalog when it is stale.
func (s *Syncer) SyncSchematics(ctx context.Context) (SyncResult, error) {
	status, err := s.tracker.Check(ctx, SchematicDomain, s.schematicMaxAge)
	if err != nil {
		return SyncResult{}, err
	}
	if !status.NeedsUpdate {
		return SyncResult{Domain: SchematicDomain, AgeHours: ageHours(status.AgeHours)}, nil
	}

	schematics, err := s.source.FetchSchematics(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("schematic catalog fetch: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range schematics {
			schematics[i].UpdatedAt = time.Now()
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "external_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "category", "complexity", "updated_at"}),
			}).Create(&schematics[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SyncResult{}, fmt.Errorf("schematic catalog upsert: %w", err)
	}

	if err := s.tracker.Update(ctx, SchematicDomain); err != nil {
		return SyncResult{}, err
	}

	s.log.WithField("count", len(schematics)).Info("Schematic catalog refreshed")
	return SyncResult{Domain: SchematicDomain, Refreshed: true, AgeHours: ageHours(status.AgeHours), Count: len(schematics)}, nil
}
