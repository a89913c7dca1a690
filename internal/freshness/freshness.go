// Package freshness decides whether a named cache domain is due for a bulk
// refresh. It only tracks timestamps; what is actually cached for the
// domain lives elsewhere.
package freshness

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned by Store.Get when no timestamp exists for a key.
var ErrNotFound = errors.New("freshness: no timestamp for key")

// Store persists one timestamp per cache domain. The value is an RFC 3339
// string so the row stays readable in the generic key/value cache table.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Upsert(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Status reports the staleness decision for one domain. AgeHours is
// +Inf when no timestamp has ever been recorded.
type Status struct {
	Fresh       bool       `json:"is_fresh"`
	AgeHours    float64    `json:"hours_old"`
	NeedsUpdate bool       `json:"needs_update"`
	LastUpdate  *time.Time `json:"last_update,omitempty"`
}

type Tracker struct {
	store Store
	now   func() time.Time
	log   *logrus.Entry
}

type Option func(*Tracker)

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func NewTracker(logger *logrus.Logger, store Store, opts ...Option) *Tracker {
	t := &Tracker{
		store: store,
		now:   time.Now,
		log:   logger.WithField("component", "freshness_tracker"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Check reports whether the domain identified by key is still fresh given
// the caller-supplied maximum age. Thresholds are never stored here; each
// domain passes its own.
func (t *Tracker) Check(ctx context.Context, key string, maxAge time.Duration) (Status, error) {
	value, err := t.store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return Status{Fresh: false, AgeHours: math.Inf(1), NeedsUpdate: true}, nil
	}
	if err != nil {
		return Status{}, fmt.Errorf("freshness lookup for %q: %w", key, err)
	}

	last, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		// Unparseable rows behave like missing ones so a refresh repairs them.
		t.log.WithFields(logrus.Fields{
			"key":   key,
			"value": value,
		}).Warn("Unparseable cache timestamp, forcing refresh")
		return Status{Fresh: false, AgeHours: math.Inf(1), NeedsUpdate: true}, nil
	}

	ageHours := t.now().Sub(last).Hours()
	fresh := ageHours < maxAge.Hours()
	return Status{
		Fresh:       fresh,
		AgeHours:    ageHours,
		NeedsUpdate: !fresh,
		LastUpdate:  &last,
	}, nil
}

// Update records now as the domain's last refresh time.
func (t *Tracker) Update(ctx context.Context, key string) error {
	return t.UpdateAt(ctx, key, t.now())
}

// UpdateAt upserts the domain timestamp, last write wins.
func (t *Tracker) UpdateAt(ctx context.Context, key string, ts time.Time) error {
	if err := t.store.Upsert(ctx, key, ts.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("freshness update for %q: %w", key, err)
	}
	return nil
}

// Delete removes the domain timestamp. Deleting an absent key is not an
// error.
func (t *Tracker) Delete(ctx context.Context, key string) error {
	if err := t.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("freshness delete for %q: %w", key, err)
	}
	return nil
}
