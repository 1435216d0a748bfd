// Package counter implements the fixed-window request counter behind the
// rate limiter. Fixed window, not sliding: the count resets at a fixed
// instant rather than rolling, which keeps the state one integer per key.
package counter

import (
	"context"
	"sync"
	"time"

	"linkdeck/internal/ratelimit/models"
)

// Clock abstracts time.Now for tests.
type Clock func() time.Time

// MemoryStore keeps one window record per identifier in process memory.
// State is per-instance: a multi-instance deployment should use RedisStore
// so callers cannot multiply their budget by the instance count.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*record
	clock   Clock
}

type record struct {
	count         int
	windowResetAt time.Time
}

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) Option {
	return func(s *MemoryStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewMemoryStore creates an empty in-memory counter store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		records: make(map[string]*record),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Allow applies the fixed-window check for identifier. A missing or expired
// record is replaced with a fresh window of count 1; a full window rejects
// without mutating, so rejected requests never extend the caller's window.
func (s *MemoryStore) Allow(ctx context.Context, identifier string, cfg models.Config) (*models.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	rec := s.records[identifier]

	if rec == nil || now.After(rec.windowResetAt) {
		rec = &record{count: 1, windowResetAt: now.Add(cfg.Window)}
		s.records[identifier] = rec
		return result(true, rec, cfg, now), nil
	}

	if rec.count >= cfg.MaxRequests {
		return result(false, rec, cfg, now), nil
	}

	rec.count++
	return result(true, rec, cfg, now), nil
}

// Clear deletes the record for identifier unconditionally.
func (s *MemoryStore) Clear(ctx context.Context, identifier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, identifier)
	return nil
}

func result(allowed bool, rec *record, cfg models.Config, now time.Time) *models.Result {
	remaining := cfg.MaxRequests - rec.count
	if remaining < 0 {
		remaining = 0
	}
	retryAfter := 0
	if !allowed {
		retryAfter = int(rec.windowResetAt.Sub(now).Seconds()) + 1
	}
	return &models.Result{
		Allowed:    allowed,
		Remaining:  remaining,
		Limit:      cfg.MaxRequests,
		ResetAt:    rec.windowResetAt,
		RetryAfter: retryAfter,
	}
}
