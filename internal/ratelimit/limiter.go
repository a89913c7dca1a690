// Package ratelimit implements fixed-window admission control for the
// rate-limited upstream SOAP provider.
//
// Accounting is per fixed window, not sliding: a burst at the tail of one
// window followed by a burst at the head of the next can admit up to twice
// the configured maximum across the boundary. The upstream provider's own
// quota is generous enough that this is an accepted trade for the simpler
// bookkeeping.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type entry struct {
	count   int
	resetAt time.Time
}

// Limiter tracks request counts per caller key. Construct one per guarded
// upstream and pass it to whatever performs the calls; there is no package
// level instance.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	max     int
	window  time.Duration
	now     func() time.Time
	log     *logrus.Entry
}

type Result struct {
	Allowed   bool
	Remaining int
	ResetTime time.Time
}

type Stats struct {
	TotalKeys   int           `json:"total_keys"`
	MaxRequests int           `json:"max_requests"`
	Window      time.Duration `json:"window"`
}

type Option func(*Limiter)

// WithClock substitutes the wall clock, used by tests to step through
// window transitions without sleeping.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func New(logger *logrus.Logger, max int, window time.Duration, opts ...Option) *Limiter {
	l := &Limiter{
		entries: make(map[string]*entry),
		max:     max,
		window:  window,
		now:     time.Now,
		log:     logger.WithField("component", "rate_limiter"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check admits or denies one request for key. The check-then-increment runs
// under the limiter mutex so concurrent callers on the same key cannot
// overshoot the window maximum.
func (l *Limiter) Check(key string) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok || !now.Before(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(l.window)}
		l.entries[key] = e
		return Result{Allowed: true, Remaining: l.max - 1, ResetTime: e.resetAt}
	}

	if e.count >= l.max {
		return Result{Allowed: false, Remaining: 0, ResetTime: e.resetAt}
	}

	e.count++
	return Result{Allowed: true, Remaining: l.max - e.count, ResetTime: e.resetAt}
}

// Cleanup deletes entries whose window has elapsed and returns how many
// were removed. Purely a memory bound; Check recreates a fresh window for
// an expired key whether or not it was swept.
func (l *Limiter) Cleanup() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	removed := 0
	for key, e := range l.entries {
		if !now.Before(e.resetAt) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{
		TotalKeys:   len(l.entries),
		MaxRequests: l.max,
		Window:      l.window,
	}
}

// StartSweeper runs Cleanup on a recurring interval until ctx is cancelled.
func (l *Limiter) StartSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.log.WithField("interval", interval).Info("Starting rate limit sweeper")

	for {
		select {
		case <-ticker.C:
			if removed := l.Cleanup(); removed > 0 {
				l.log.WithField("removed", removed).Debug("Swept expired rate limit entries")
			}
		case <-ctx.Done():
			l.log.Info("Stopping rate limit sweeper")
			return
		}
	}
}
