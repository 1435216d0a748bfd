package geo

import (
	"context"
	"sync"
	"time"
)

// Clock abstracts time.Now for tests.
type Clock func() time.Time

// CacheStore is the IP-to-country cache. A found entry with an empty country
// is a cached negative: the lookup failed before, and retrying for every
// click would hammer the upstream for the same unreliable IP.
type CacheStore interface {
	Get(ctx context.Context, ip string) (country string, found bool, err error)
	Set(ctx context.Context, ip, country string, ttl time.Duration) error
}

// MemoryStore is a mutex-guarded TTL cache. Per-instance only; multi-instance
// deployments should use RedisStore so instances share lookup results.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	clock   Clock
}

type entry struct {
	country   string
	expiresAt time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) MemoryOption {
	return func(s *MemoryStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewMemoryStore creates an empty in-memory geo cache.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]entry),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) Get(ctx context.Context, ip string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[ip]
	if !ok {
		return "", false, nil
	}
	if s.clock().After(e.expiresAt) {
		delete(s.entries, ip)
		return "", false, nil
	}
	return e.country, true, nil
}

func (s *MemoryStore) Set(ctx context.Context, ip, country string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[ip] = entry{country: country, expiresAt: s.clock().Add(ttl)}
	return nil
}
