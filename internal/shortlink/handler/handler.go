package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"linkdeck/internal/analytics/models"
	"linkdeck/internal/clientcontext"
	"linkdeck/internal/platform/middleware"
	"linkdeck/internal/shortlink/metrics"
	linkmodels "linkdeck/internal/shortlink/models"
	dErrors "linkdeck/pkg/domain-errors"
	"linkdeck/pkg/platform/httputil"
	"linkdeck/pkg/platform/sentinel"
)

// Service is the short-link surface the handler needs.
type Service interface {
	Resolve(ctx context.Context, code string) (*linkmodels.Resolution, error)
	IsCodeAvailable(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, profileID uuid.UUID, slug, targetURL string) (*linkmodels.ShortLink, error)
}

// ContextResolver derives the visitor context for a request.
type ContextResolver interface {
	Resolve(ctx context.Context, req *http.Request) clientcontext.Context
}

// Recorder persists click events behind its own failure boundary.
type Recorder interface {
	Record(ctx context.Context, parent models.ParentRef, visitor clientcontext.Context) <-chan error
}

// Handler serves the redirect hot path and link management endpoints.
type Handler struct {
	links       Service
	visitors    ContextResolver
	recorder    Recorder
	notFoundURL string
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

func New(
	links Service,
	visitors ContextResolver,
	recorder Recorder,
	notFoundURL string,
	logger *slog.Logger,
	metrics *metrics.Metrics) *Handler {
	return &Handler{
		links:       links,
		visitors:    visitors,
		recorder:    recorder,
		notFoundURL: notFoundURL,
		logger:      logger,
		metrics:     metrics,
	}
}

// RegisterRedirect mounts the catch-all redirect route. Must be mounted
// last so declared API routes win.
func (h *Handler) RegisterRedirect(r chi.Router) {
	r.Get("/{code}", h.handleRedirect)
}

// RegisterAPI mounts the link management routes.
func (h *Handler) RegisterAPI(r chi.Router) {
	r.Post("/api/links", h.handleCreate)
	r.Get("/api/links/availability", h.handleAvailability)
}

// handleRedirect resolves the slug and issues the redirect. Analytics
// recording happens behind the recorder's failure boundary: its outcome is
// never awaited and cannot delay, alter, or cancel the redirect.
func (h *Handler) handleRedirect(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	code := chi.URLParam(r, "code")

	resolution, err := h.links.Resolve(r.Context(), code)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			h.logger.ErrorContext(r.Context(), "resolve failed",
				"request_id", middleware.GetRequestID(r.Context()),
				"error", err.Error(),
			)
		}
		// Unknown, disabled, and deleted slugs all land on the same page;
		// the response must not reveal whether the slug ever existed.
		if h.metrics != nil {
			h.metrics.IncrementNotFound()
		}
		http.Redirect(w, r, h.notFoundURL, http.StatusFound)
		return
	}

	visitor := h.visitors.Resolve(r.Context(), r)
	if !visitor.Private {
		h.recorder.Record(r.Context(), models.ClickParent(resolution.LinkID), visitor)
	}

	if h.metrics != nil {
		h.metrics.IncrementServed()
		h.metrics.ObserveRedirectMs(float64(time.Since(start).Microseconds()) / 1000.0)
	}
	http.Redirect(w, r, resolution.TargetURL, http.StatusFound)
}

type createRequest struct {
	Slug      string `json:"slug"`
	TargetURL string `json:"target_url"`
}

type createResponse struct {
	ID        string `json:"id"`
	Slug      string `json:"slug"`
	TargetURL string `json:"target_url"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	profileID := middleware.GetProfileID(r.Context())
	ownerID, err := uuid.Parse(profileID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing owner identity"))
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	link, err := h.links.Create(r.Context(), ownerID, req.Slug, req.TargetURL)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeBadRequest) {
			httputil.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(r.Context(), "create link failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to create link"))
		return
	}

	if h.metrics != nil {
		h.metrics.IncrementCreated()
	}
	httputil.WriteJSON(w, http.StatusCreated, createResponse{
		ID:        link.ID.String(),
		Slug:      link.Slug,
		TargetURL: link.TargetURL,
	})
}

func (h *Handler) handleAvailability(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "code is required"))
		return
	}

	available, err := h.links.IsCodeAvailable(r.Context(), code)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "availability check failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "availability check failed"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"code": code, "available": available})
}
