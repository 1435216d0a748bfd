package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"linkdeck/internal/ratelimit/models"
	"linkdeck/pkg/platform/httputil"
	metadata "linkdeck/pkg/platform/middleware/metadata"
)

// Limiter is the rate limit service surface the middleware needs.
type Limiter interface {
	Check(ctx context.Context, identifier string, cfg models.Config) (*models.Result, error)
}

type Middleware struct {
	limiter  Limiter
	logger   *slog.Logger
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for testing/demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func New(limiter Limiter, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		limiter: limiter,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit guards a route with the given fixed-window config, keyed by
// client IP. Store errors fail open: a broken limiter must never take the
// product down with it.
func (m *Middleware) RateLimit(cfg models.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := metadata.GetClientIP(ctx)

			result, err := m.limiter.Check(ctx, ip, cfg)
			if err != nil {
				m.logger.Error("failed to check rate limit", "error", err, "path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			// Add headers regardless of outcome
			addRateLimitHeaders(w, result)

			if !result.Allowed {
				writeRateLimitExceeded(w, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.Result) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]any{
		"error":       "rate_limit_exceeded",
		"message":     "Too many requests from this IP address. Please try again later.",
		"retry_after": result.RetryAfter,
	})
}
