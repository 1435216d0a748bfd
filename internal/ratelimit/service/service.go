package service

import (
	"context"
	"errors"
	"log/slog"

	"linkdeck/internal/ratelimit/metrics"
	"linkdeck/internal/ratelimit/models"
)

// CounterStore is the fixed-window counter the service checks against.
type CounterStore interface {
	Allow(ctx context.Context, identifier string, cfg models.Config) (*models.Result, error)
	Clear(ctx context.Context, identifier string) error
}

// Service applies per-identifier fixed-window limits. It owns no policy of
// its own; each guarded route passes its window and budget.
type Service struct {
	store   CounterStore
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Service)

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

func New(store CounterStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("counter store is required")
	}
	svc := &Service{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Check records one request against the identifier's window and reports
// whether it is allowed.
func (s *Service) Check(ctx context.Context, identifier string, cfg models.Config) (*models.Result, error) {
	res, err := s.store.Allow(ctx, identifier, cfg)
	if err != nil {
		if s.metrics != nil {
			s.metrics.IncrementFailures()
		}
		return nil, err
	}
	if s.metrics != nil {
		if res.Allowed {
			s.metrics.IncrementAllowed()
		} else {
			s.metrics.IncrementRejected()
		}
	}
	return res, nil
}

// Clear deletes the identifier's window unconditionally. Used by tests and
// admin resets.
func (s *Service) Clear(ctx context.Context, identifier string) error {
	return s.store.Clear(ctx, identifier)
}
