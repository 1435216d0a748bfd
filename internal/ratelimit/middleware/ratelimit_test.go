package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkdeck/internal/ratelimit/models"
	"linkdeck/internal/ratelimit/service"
	"linkdeck/internal/ratelimit/store/counter"
	metadata "linkdeck/pkg/platform/middleware/metadata"
)

func newTestMiddleware(t *testing.T) *Middleware {
	t.Helper()
	svc, err := service.New(counter.NewMemoryStore())
	require.NoError(t, err)
	return New(svc, slog.New(slog.DiscardHandler))
}

func doRequest(handler http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/links", nil)
	req = req.WithContext(metadata.WithClientMetadata(req.Context(), ip, "test-agent"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestRateLimitRejectsOverBudget(t *testing.T) {
	m := newTestMiddleware(t)
	cfg := models.Config{Window: time.Minute, MaxRequests: 2}

	handler := m.RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	assert.Equal(t, http.StatusOK, doRequest(handler, "203.0.113.9").Code)
	assert.Equal(t, http.StatusOK, doRequest(handler, "203.0.113.9").Code)

	rr := doRequest(handler, "203.0.113.9")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
	assert.Equal(t, "0", rr.Header().Get("X-RateLimit-Remaining"))

	// Other callers are unaffected.
	assert.Equal(t, http.StatusOK, doRequest(handler, "203.0.113.10").Code)
}

func TestRateLimitSetsHeadersOnSuccess(t *testing.T) {
	m := newTestMiddleware(t)
	cfg := models.Config{Window: time.Minute, MaxRequests: 5}

	handler := m.RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := doRequest(handler, "203.0.113.9")
	assert.Equal(t, "5", rr.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", rr.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rr.Header().Get("X-RateLimit-Reset"))
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	svc, err := service.New(counter.NewMemoryStore())
	require.NoError(t, err)
	m := New(svc, slog.New(slog.DiscardHandler), WithDisabled(true))
	cfg := models.Config{Window: time.Minute, MaxRequests: 1}

	handler := m.RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, doRequest(handler, "203.0.113.9").Code)
	}
}
