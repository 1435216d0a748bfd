package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkdeck/internal/analytics/models"
	"linkdeck/internal/analytics/store"
	"linkdeck/internal/clientcontext"
	"linkdeck/pkg/testutil"
)

type stubResolver struct {
	visitor clientcontext.Context
	calls   int
}

func (s *stubResolver) Resolve(ctx context.Context, req *http.Request) clientcontext.Context {
	s.calls++
	return s.visitor
}

type stubRecorder struct {
	parents []models.ParentRef
	err     error
}

func (s *stubRecorder) Record(ctx context.Context, parent models.ParentRef, visitor clientcontext.Context) <-chan error {
	s.parents = append(s.parents, parent)
	done := make(chan error, 1)
	done <- s.err
	return done
}

type stubReader struct {
	gotFilters store.Filters
	gotRange   store.DateRange
	events     []*models.Event
	err        error
}

func (s *stubReader) Query(ctx context.Context, filters store.Filters, dateRange store.DateRange) ([]*models.Event, error) {
	s.gotFilters = filters
	s.gotRange = dateRange
	return s.events, s.err
}

func newTestHandler(resolver *stubResolver, recorder *stubRecorder, reader *stubReader, now time.Time) (*Handler, chi.Router) {
	h := New(resolver, recorder, reader,
		slog.New(slog.DiscardHandler),
		nil,
		WithClock(func() time.Time { return now }),
	)
	r := chi.NewRouter()
	h.RegisterTracking(r)
	h.RegisterRead(r)
	return h, r
}

func postTrack(t *testing.T, r chi.Router, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, path, body))
}

func TestTracking(t *testing.T) {
	now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	t.Run("records a click", func(t *testing.T) {
		resolver := &stubResolver{}
		recorder := &stubRecorder{}
		_, r := newTestHandler(resolver, recorder, &stubReader{}, now)

		linkID := uuid.New()
		rec := postTrack(t, r, "/api/track/click", map[string]string{"link_id": linkID.String()})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true}`, rec.Body.String())
		require.Len(t, recorder.parents, 1)
		assert.Equal(t, models.KindClick, recorder.parents[0].Kind())
		assert.Equal(t, linkID, recorder.parents[0].ID())
	})

	t.Run("each kind requires its own parent field", func(t *testing.T) {
		cases := []struct {
			path  string
			field string
			kind  models.EventKind
		}{
			{"/api/track/click", "link_id", models.KindClick},
			{"/api/track/pageview", "page_id", models.KindPageView},
			{"/api/track/buttonclick", "button_id", models.KindButtonClick},
			{"/api/track/profileview", "profile_id", models.KindProfileView},
		}
		for _, tc := range cases {
			t.Run(string(tc.kind), func(t *testing.T) {
				recorder := &stubRecorder{}
				_, r := newTestHandler(&stubResolver{}, recorder, &stubReader{}, now)

				rec := postTrack(t, r, tc.path, map[string]string{tc.field: uuid.NewString()})
				assert.Equal(t, http.StatusOK, rec.Code)
				require.Len(t, recorder.parents, 1)
				assert.Equal(t, tc.kind, recorder.parents[0].Kind())
			})
		}
	})

	t.Run("rejects malformed bodies", func(t *testing.T) {
		recorder := &stubRecorder{}
		_, r := newTestHandler(&stubResolver{}, recorder, &stubReader{}, now)

		for name, body := range map[string]any{
			"wrong parent field": map[string]string{"page_id": uuid.NewString()},
			"no parent":          map[string]string{},
			"two parents":        map[string]string{"link_id": uuid.NewString(), "page_id": uuid.NewString()},
			"not a uuid":         map[string]string{"link_id": "abc"},
		} {
			rec := postTrack(t, r, "/api/track/click", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, name)
		}
		assert.Empty(t, recorder.parents)
	})

	t.Run("privacy opt-out reports success without recording", func(t *testing.T) {
		resolver := &stubResolver{}
		recorder := &stubRecorder{}
		_, r := newTestHandler(resolver, recorder, &stubReader{}, now)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/track/click", map[string]string{"link_id": uuid.NewString()})
		req.Header.Set("DNT", "1")
		rec := testutil.DoRequest(r, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true}`, rec.Body.String())
		assert.Empty(t, recorder.parents)
		assert.Zero(t, resolver.calls)
	})

	t.Run("persistence failure still reports success", func(t *testing.T) {
		recorder := &stubRecorder{err: fmt.Errorf("db down")}
		_, r := newTestHandler(&stubResolver{}, recorder, &stubReader{}, now)

		rec := postTrack(t, r, "/api/track/click", map[string]string{"link_id": uuid.NewString()})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	})
}

func queryAs(t *testing.T, r chi.Router, tier, rawQuery string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewRequest(t, http.MethodGet, "/api/analytics/events?"+rawQuery)
	req = testutil.WithOwner(req, uuid.NewString(), tier)
	return testutil.DoRequest(r, req)
}

func TestQuery(t *testing.T) {
	now := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)

	t.Run("free tier start is clamped to seven days", func(t *testing.T) {
		reader := &stubReader{}
		_, r := newTestHandler(&stubResolver{}, &stubRecorder{}, reader, now)

		requested := now.AddDate(0, 0, -90).Format(time.RFC3339)
		rec := queryAs(t, r, "FREE", "start="+requested)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, now.AddDate(0, 0, -7), reader.gotRange.Start)
	})

	t.Run("pro tier keeps an in-window start", func(t *testing.T) {
		reader := &stubReader{}
		_, r := newTestHandler(&stubResolver{}, &stubRecorder{}, reader, now)

		requested := now.AddDate(0, 0, -90)
		rec := queryAs(t, r, "PRO", "start="+requested.Format(time.RFC3339))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, requested, reader.gotRange.Start.UTC())
	})

	t.Run("pro tier start beyond a year is clamped", func(t *testing.T) {
		reader := &stubReader{}
		_, r := newTestHandler(&stubResolver{}, &stubRecorder{}, reader, now)

		rec := queryAs(t, r, "PRO", "start="+now.AddDate(0, 0, -400).Format(time.RFC3339))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, now.AddDate(0, 0, -365), reader.gotRange.Start)
	})

	t.Run("unknown tier falls back to the free window", func(t *testing.T) {
		reader := &stubReader{}
		_, r := newTestHandler(&stubResolver{}, &stubRecorder{}, reader, now)

		rec := queryAs(t, r, "enterprise", "start="+now.AddDate(0, 0, -90).Format(time.RFC3339))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, now.AddDate(0, 0, -7), reader.gotRange.Start)
	})

	t.Run("passes kind and parent filters through", func(t *testing.T) {
		reader := &stubReader{}
		_, r := newTestHandler(&stubResolver{}, &stubRecorder{}, reader, now)

		parentID := uuid.New()
		rec := queryAs(t, r, "PRO", "kind=click&parent_id="+parentID.String())

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, models.KindClick, reader.gotFilters.Kind)
		assert.Equal(t, parentID, reader.gotFilters.ParentID)
	})

	t.Run("rejects bad query parameters", func(t *testing.T) {
		_, r := newTestHandler(&stubResolver{}, &stubRecorder{}, &stubReader{}, now)

		for name, raw := range map[string]string{
			"bad kind":   "kind=swipe",
			"bad parent": "parent_id=nope",
			"bad start":  "start=yesterday",
			"bad end":    "end=tomorrow",
		} {
			rec := queryAs(t, r, "PRO", raw)
			assert.Equal(t, http.StatusBadRequest, rec.Code, name)
		}
	})

	t.Run("returns events with the effective start", func(t *testing.T) {
		event := models.NewEvent(models.ClickParent(uuid.New()), clientcontext.Context{
			Country: "US",
			Device:  clientcontext.DeviceMobile,
		}, now.Add(-time.Hour))
		reader := &stubReader{events: []*models.Event{event}}
		_, r := newTestHandler(&stubResolver{}, &stubRecorder{}, reader, now)

		rec := queryAs(t, r, "FREE", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Events         []map[string]any `json:"events"`
			EffectiveStart time.Time        `json:"effective_start"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Events, 1)
		assert.Equal(t, "click", resp.Events[0]["kind"])
		assert.Equal(t, "US", resp.Events[0]["country"])
		assert.Equal(t, now.AddDate(0, 0, -7), resp.EffectiveStart)
	})
}
