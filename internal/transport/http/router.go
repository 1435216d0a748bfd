// Package httptransport assembles the HTTP surface: platform middleware,
// operational endpoints, the owner API, and the redirect catch-all.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	analyticshandler "linkdeck/internal/analytics/handler"
	"linkdeck/internal/platform/middleware"
	ratelimitmw "linkdeck/internal/ratelimit/middleware"
	"linkdeck/internal/ratelimit/models"
	linkhandler "linkdeck/internal/shortlink/handler"
	"linkdeck/pkg/platform/middleware/metadata"
)

// Deps carries the wired handlers and cross-cutting pieces the router needs.
type Deps struct {
	Links     *linkhandler.Handler
	Analytics *analyticshandler.Handler
	RateLimit *ratelimitmw.Middleware
	RateCfg   models.Config
	Validator middleware.JWTValidator
	Logger    *slog.Logger
}

// NewRouter wires all routes. The redirect catch-all is mounted last so the
// declared API and operational routes always win.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logger(deps.Logger))
	r.Use(metadata.ClientMetadata)

	r.Get("/healthz", handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	limit := deps.RateLimit.RateLimit(deps.RateCfg)

	// Public write surface: tracking posts share the redirect path's
	// per-IP budget.
	r.Group(func(r chi.Router) {
		r.Use(limit)
		deps.Analytics.RegisterTracking(r)
	})

	// Owner API requires a bearer token; no per-IP limit applies here.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireOwner(deps.Validator, deps.Logger))
		deps.Links.RegisterAPI(r)
		deps.Analytics.RegisterRead(r)
	})

	// Redirect hot path, last.
	r.Group(func(r chi.Router) {
		r.Use(limit)
		deps.Links.RegisterRedirect(r)
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
