package models

import (
	"time"
)

type AccessLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Timestamp time.Time `gorm:"index;not null"`
	Method    string    `gorm:"type:varchar(10);not null"`
	Path      string    `gorm:"type:text;not null;index:,length:256"`
	Status    int       `gorm:"not null;index"`
	Duration  time.Duration
	ClientIP  string `gorm:"type:varchar(45);not null"`
	UserAgent string `gorm:"type:text"`
	BytesSent int    `gorm:"not null;default:0"`
}

// CacheTimestamp holds one row per logical cache domain (resource catalog,
// schematics catalog). Value is the last refresh time as an RFC 3339 string.
type CacheTimestamp struct {
	Key       string    `gorm:"primaryKey;type:varchar(64);not null"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"index;not null"`
}

type SoapCacheEntry struct {
	Signature string    `gorm:"primaryKey;type:varchar(512);not null"`
	Payload   string    `gorm:"type:text;not null"`
	StoredAt  time.Time `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
}

type ResourceClass struct {
	ID       string `gorm:"primaryKey;type:varchar(64);not null"`
	ParentID string `gorm:"type:varchar(64);index"`
	Depth    int    `gorm:"not null;index"`
	Name     string `gorm:"type:varchar(255);not null;index"`
}

type Resource struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	ClassID   string    `gorm:"type:varchar(64);not null;index"`
	Planet    string    `gorm:"type:varchar(64);index"`
	Stats     string    `gorm:"type:text"`
	SpawnedAt time.Time `gorm:"index"`
	UpdatedAt time.Time `gorm:"index;not null"`
}

type Schematic struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	ExternalID string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name       string    `gorm:"type:varchar(255);not null;index"`
	Category   string    `gorm:"type:varchar(128);not null;index"`
	Complexity int       `gorm:"not null;default:0"`
	UpdatedAt  time.Time `gorm:"index;not null"`
}

type InventoryItem struct {
	ID              uint      `gorm:"primaryKey;autoIncrement"`
	ItemName        string    `gorm:"type:varchar(255);not null;index"`
	ResourceClassID string    `gorm:"type:varchar(64);index"`
	Count           int       `gorm:"not null;default:0"`
	Notes           string    `gorm:"type:text"`
	CreatedAt       time.Time `gorm:"index;not null"`
	UpdatedAt       time.Time `gorm:"index;not null"`
}

type SaleRecord struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	MailID   string    `gorm:"type:varchar(128);not null;uniqueIndex"`
	ItemName string    `gorm:"type:varchar(255);not null;index"`
	Buyer    string    `gorm:"type:varchar(128);not null;index"`
	Credits  int64     `gorm:"not null"`
	SoldAt   time.Time `gorm:"index;not null"`
}

func (AccessLog) TableName() string {
	return "access_logs"
}

func (CacheTimestamp) TableName() string {
	return "cache_timestamps"
}

func (SoapCacheEntry) TableName() string {
	return "soap_cache"
}

func (ResourceClass) TableName() string {
	return "resource_classes"
}

func (Resource) TableName() string {
	return "resources"
}

func (Schematic) TableName() string {
	return "schematics"
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}

func (SaleRecord) TableName() string {
	return "sale_records"
}
