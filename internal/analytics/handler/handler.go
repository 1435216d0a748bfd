package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"linkdeck/internal/analytics/metrics"
	"linkdeck/internal/analytics/models"
	"linkdeck/internal/analytics/store"
	"linkdeck/internal/clientcontext"
	"linkdeck/internal/platform/middleware"
	"linkdeck/internal/retention"
	dErrors "linkdeck/pkg/domain-errors"
	"linkdeck/pkg/platform/httputil"
)

// ContextResolver derives the visitor context for a request.
type ContextResolver interface {
	Resolve(ctx context.Context, req *http.Request) clientcontext.Context
}

// Recorder persists events behind its own failure boundary.
type Recorder interface {
	Record(ctx context.Context, parent models.ParentRef, visitor clientcontext.Context) <-chan error
}

// Reader answers analytics queries. Implemented by the analytics store.
type Reader interface {
	Query(ctx context.Context, filters store.Filters, dateRange store.DateRange) ([]*models.Event, error)
}

// Handler serves the tracking write endpoints and the owner-facing read
// endpoint.
type Handler struct {
	visitors ContextResolver
	recorder Recorder
	reader   Reader
	logger   *slog.Logger
	metrics  *metrics.Metrics
	clock    func() time.Time
}

type Option func(*Handler)

// WithClock sets the clock used for retention cutoffs, for tests.
func WithClock(clock func() time.Time) Option {
	return func(h *Handler) {
		if clock != nil {
			h.clock = clock
		}
	}
}

func New(
	visitors ContextResolver,
	recorder Recorder,
	reader Reader,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	opts ...Option) *Handler {
	h := &Handler{
		visitors: visitors,
		recorder: recorder,
		reader:   reader,
		logger:   logger,
		metrics:  metrics,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RegisterTracking mounts the public tracking endpoints.
func (h *Handler) RegisterTracking(r chi.Router) {
	r.Post("/api/track/click", h.track(models.KindClick))
	r.Post("/api/track/pageview", h.track(models.KindPageView))
	r.Post("/api/track/buttonclick", h.track(models.KindButtonClick))
	r.Post("/api/track/profileview", h.track(models.KindProfileView))
}

// RegisterRead mounts the owner analytics endpoint; callers wrap it with
// RequireOwner.
func (h *Handler) RegisterRead(r chi.Router) {
	r.Get("/api/analytics/events", h.handleQuery)
}

type trackRequest struct {
	LinkID    string `json:"link_id,omitempty"`
	PageID    string `json:"page_id,omitempty"`
	ButtonID  string `json:"button_id,omitempty"`
	ProfileID string `json:"profile_id,omitempty"`
}

// parentRef validates that the body names exactly the one parent field its
// kind expects, and no other.
func (req *trackRequest) parentRef(kind models.EventKind) (models.ParentRef, error) {
	set := map[models.EventKind]string{
		models.KindClick:       req.LinkID,
		models.KindPageView:    req.PageID,
		models.KindButtonClick: req.ButtonID,
		models.KindProfileView: req.ProfileID,
	}

	var populated int
	for _, v := range set {
		if v != "" {
			populated++
		}
	}
	if populated != 1 || set[kind] == "" {
		return models.ParentRef{}, dErrors.New(dErrors.CodeBadRequest, "exactly one parent reference matching the event kind is required")
	}

	id, err := uuid.Parse(set[kind])
	if err != nil {
		return models.ParentRef{}, dErrors.New(dErrors.CodeBadRequest, "parent reference must be a valid id")
	}

	switch kind {
	case models.KindClick:
		return models.ClickParent(id), nil
	case models.KindPageView:
		return models.PageParent(id), nil
	case models.KindButtonClick:
		return models.ButtonParent(id), nil
	default:
		return models.ProfileParent(id), nil
	}
}

// track handles one tracking POST. Request-shape failures are the only
// errors a caller can see; everything past validation responds success,
// including the privacy no-op and persistence failures.
func (h *Handler) track(kind models.EventKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req trackRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}

		parent, err := req.parentRef(kind)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}

		if clientcontext.PrivacyOptOut(r.Header) {
			// Never invoke the recorder for opted-out visitors. The caller
			// still gets success; opting out is not an error.
			if h.metrics != nil {
				h.metrics.IncrementSkipped()
			}
			httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}

		visitor := h.visitors.Resolve(r.Context(), r)
		<-h.recorder.Record(r.Context(), parent, visitor)

		httputil.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

type eventResponse struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	ParentID  string    `json:"parent_id"`
	Country   string    `json:"country,omitempty"`
	Device    string    `json:"device"`
	Platform  string    `json:"platform,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// handleQuery serves owner analytics reads. The requested start date is
// always clamped through the tier's retention cutoff; the window is a hard
// ceiling, not a default.
func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	tier := retention.ParseTier(middleware.GetTier(r.Context()))
	now := h.clock()

	q := r.URL.Query()

	start := now.AddDate(0, 0, -30)
	if raw := q.Get("start"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "start must be RFC3339"))
			return
		}
		start = parsed
	}
	end := now
	if raw := q.Get("end"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "end must be RFC3339"))
			return
		}
		end = parsed
	}

	filters := store.Filters{}
	if raw := q.Get("kind"); raw != "" {
		kind, ok := models.ParseKind(raw)
		if !ok {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unknown event kind"))
			return
		}
		filters.Kind = kind
	}
	if raw := q.Get("parent_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "parent_id must be a valid id"))
			return
		}
		filters.ParentID = id
	}

	effectiveStart := retention.EffectiveStart(start, retention.Cutoff(tier, now))

	events, err := h.reader.Query(r.Context(), filters, store.DateRange{Start: effectiveStart, End: end})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "analytics query failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "query failed"))
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, eventResponse{
			ID:        e.ID.String(),
			Kind:      string(e.Kind),
			ParentID:  e.ParentID.String(),
			Country:   e.Country,
			Device:    string(e.Device),
			Platform:  e.Platform,
			Timestamp: e.Timestamp,
		})
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"events":          out,
		"effective_start": effectiveStart,
	})
}
