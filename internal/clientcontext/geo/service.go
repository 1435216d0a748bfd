package geo

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"linkdeck/internal/clientcontext/metrics"
	"linkdeck/pkg/platform/circuit"
)

// DefaultTTL is how long a lookup result, positive or negative, stays cached.
const DefaultTTL = 24 * time.Hour

// Service is the cached IP-to-country resolver. It fails open: Country never
// returns an error, only an empty string when the country cannot be known.
type Service struct {
	client  Client
	cache   CacheStore
	ttl     time.Duration
	timeout time.Duration
	group   singleflight.Group
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(client Client, cache CacheStore, opts ...Option) *Service {
	s := &Service{
		client:  client,
		cache:   cache,
		ttl:     DefaultTTL,
		timeout: 2 * time.Second,
		breaker: circuit.New("geo-lookup", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Country resolves ip to a 2-letter country code, or empty when unknown.
// A cache hit, including a cached negative, short-circuits the network call.
// Concurrent misses for the same IP collapse into a single upstream call.
func (s *Service) Country(ctx context.Context, ip string) string {
	if ip == "" {
		return ""
	}

	country, found, err := s.cache.Get(ctx, ip)
	if err != nil {
		s.logger.Warn("geo cache read failed", "error", err)
	} else if found {
		if s.metrics != nil {
			s.metrics.IncrementGeoCacheHits()
		}
		return country
	}
	if s.metrics != nil {
		s.metrics.IncrementGeoCacheMisses()
	}

	if s.breaker.IsOpen() {
		// Upstream is misbehaving; skip the call without caching so the
		// IP gets retried once the breaker closes.
		return ""
	}

	result, _, _ := s.group.Do(ip, func() (any, error) {
		return s.lookupAndCache(ctx, ip), nil
	})
	code, _ := result.(string)
	return code
}

// lookupAndCache performs the external call and caches the outcome either
// way. Failed and invalid results are cached as negatives so unreliable IPs
// do not trigger a lookup per click for a day.
func (s *Service) lookupAndCache(ctx context.Context, ip string) string {
	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if s.metrics != nil {
		s.metrics.IncrementGeoLookups()
	}

	code, err := s.client.Country(lookupCtx, ip)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncrementGeoLookupErrors()
		}
		if _, change := s.breaker.RecordFailure(); change.Opened {
			s.logger.Warn("geo lookup circuit opened")
		}
		s.logger.Warn("geo lookup failed", "error", err)
		code = ""
	} else {
		if _, change := s.breaker.RecordSuccess(); change.Closed {
			s.logger.Info("geo lookup circuit closed")
		}
	}

	if cacheErr := s.cache.Set(ctx, ip, code, s.ttl); cacheErr != nil {
		s.logger.Warn("geo cache write failed", "error", cacheErr)
	}
	return code
}
