package soapcache

import (
	"context"
	"errors"
	"time"

	"github.com/galaxytools/craft-tracker/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore persists entries in the soap_cache table.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Get(ctx context.Context, signature string) (*Entry, error) {
	var row models.SoapCacheEntry
	err := s.db.WithContext(ctx).Where("signature = ?", signature).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, err
	}
	return &Entry{
		Signature: row.Signature,
		Payload:   row.Payload,
		StoredAt:  row.StoredAt,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

func (s *GormStore) Put(ctx context.Context, e Entry) error {
	row := models.SoapCacheEntry{
		Signature: e.Signature,
		Payload:   e.Payload,
		StoredAt:  e.StoredAt,
		ExpiresAt: e.ExpiresAt,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "signature"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "stored_at", "expires_at"}),
		}).
		Create(&row).Error
}

func (s *GormStore) ExpiryTimes(ctx context.Context) ([]time.Time, error) {
	var expiries []time.Time
	err := s.db.WithContext(ctx).
		Model(&models.SoapCacheEntry{}).
		Pluck("expires_at", &expiries).Error
	if err != nil {
		return nil, err
	}
	return expiries, nil
}

func (s *GormStore) DeleteExpired(ctx context.Context, cutoff time.Time) (int, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", cutoff).
		Delete(&models.SoapCacheEntry{})
	if result.Error != nil {
		return 0, result.Error
	}
	return int(result.RowsAffected), nil
}
