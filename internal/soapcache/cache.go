// Package soapcache is the durable per-query response cache for the
// upstream SOAP provider, plus the background scheduler that reclaims
// expired entries off the request path.
package soapcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrMiss is returned by Cache.Get when no entry exists for a signature.
var ErrMiss = errors.New("soapcache: no entry for signature")

// Entry is one cached upstream response. Entries are only ever replaced
// whole; a refresh writes a brand-new row over the old one.
type Entry struct {
	Signature string
	Payload   string
	StoredAt  time.Time
	ExpiresAt time.Time
}

type Stats struct {
	Total   int `json:"total"`
	Expired int `json:"expired"`
	Fresh   int `json:"fresh"`
}

// Store is the persistence backend. ExpiryTimes must come from a single
// snapshot query so Stats counts cannot straddle concurrent writes, and
// DeleteExpired must only remove rows at or past the given cutoff.
type Store interface {
	Get(ctx context.Context, signature string) (*Entry, error)
	Put(ctx context.Context, e Entry) error
	ExpiryTimes(ctx context.Context) ([]time.Time, error)
	DeleteExpired(ctx context.Context, cutoff time.Time) (int, error)
}

type Cache struct {
	store Store
	now   func() time.Time
	log   *logrus.Entry
}

type Option func(*Cache)

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

func New(logger *logrus.Logger, store Store, opts ...Option) *Cache {
	c := &Cache{
		store: store,
		now:   time.Now,
		log:   logger.WithField("component", "soap_cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached payload for signature. fresh reports whether the
// entry is still within its TTL; stale payloads are returned so callers
// denied by the rate limiter can choose to serve them anyway.
func (c *Cache) Get(ctx context.Context, signature string) (payload string, fresh bool, err error) {
	entry, err := c.store.Get(ctx, signature)
	if errors.Is(err, ErrMiss) {
		return "", false, ErrMiss
	}
	if err != nil {
		return "", false, fmt.Errorf("soap cache lookup: %w", err)
	}
	return entry.Payload, c.now().Before(entry.ExpiresAt), nil
}

// Put overwrites the entry for signature with a new payload and expiry.
func (c *Cache) Put(ctx context.Context, signature, payload string, ttl time.Duration) error {
	now := c.now()
	err := c.store.Put(ctx, Entry{
		Signature: signature,
		Payload:   payload,
		StoredAt:  now,
		ExpiresAt: now.Add(ttl),
	})
	if err != nil {
		return fmt.Errorf("soap cache store: %w", err)
	}
	return nil
}

// Stats counts fresh and expired entries against one snapshot of the store
// and a single now, so the totals always sum.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	expiries, err := c.store.ExpiryTimes(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("soap cache stats: %w", err)
	}

	now := c.now()
	stats := Stats{Total: len(expiries)}
	for _, exp := range expiries {
		if exp.After(now) {
			stats.Fresh++
		} else {
			stats.Expired++
		}
	}
	return stats, nil
}

// CleanupExpired deletes every entry whose expiry has passed and returns
// the count removed. Idempotent: a second call with no new writes deletes
// nothing.
func (c *Cache) CleanupExpired(ctx context.Context) (int, error) {
	deleted, err := c.store.DeleteExpired(ctx, c.now())
	if err != nil {
		return 0, fmt.Errorf("soap cache cleanup: %w", err)
	}
	if deleted > 0 {
		c.log.WithField("deleted", deleted).Info("Removed expired SOAP cache entries")
	}
	return deleted, nil
}
