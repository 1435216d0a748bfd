// Package recorder persists analytics events without ever letting a
// failure reach the request that produced them. Fire-and-isolate, not
// fire-and-forget: callers get a completion handle they may await, but no
// error propagates through it into the response path.
package recorder

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"linkdeck/internal/analytics/metrics"
	"linkdeck/internal/analytics/models"
	"linkdeck/internal/analytics/store"
	"linkdeck/internal/clientcontext"
)

// ErrInvalidParent is returned through the completion handle when the
// parent ref was not built by a constructor. It never reaches an HTTP
// response.
var ErrInvalidParent = errors.New("analytics event requires exactly one valid parent ref")

// Publisher mirrors events onto an external stream, best-effort.
type Publisher interface {
	Publish(ctx context.Context, event *models.Event)
}

// Recorder writes events to the store with a detached, time-bounded
// context: a client hanging up mid-redirect must not cancel a write that
// is already in flight.
type Recorder struct {
	store     store.Store
	publisher Publisher
	timeout   time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics
	clock     func() time.Time
}

type Option func(*Recorder)

func WithPublisher(p Publisher) Option {
	return func(r *Recorder) {
		r.publisher = p
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(r *Recorder) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Recorder) {
		r.metrics = m
	}
}

func WithClock(clock func() time.Time) Option {
	return func(r *Recorder) {
		if clock != nil {
			r.clock = clock
		}
	}
}

func New(store store.Store, opts ...Option) *Recorder {
	r := &Recorder{
		store:   store,
		timeout: 5 * time.Second,
		logger:  slog.Default(),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record builds and persists one event. The returned channel delivers the
// outcome exactly once and is only for callers that choose to wait (tests,
// tracking endpoints); the redirect path ignores it. Persistence errors are
// logged and counted here, never surfaced.
//
// Callers must check the privacy gate before calling; an opted-out visitor
// means Record is never invoked, not invoked-and-skipped.
func (r *Recorder) Record(ctx context.Context, parent models.ParentRef, visitor clientcontext.Context) <-chan error {
	done := make(chan error, 1)

	if !parent.Valid() {
		r.logger.Error("dropping analytics event with invalid parent ref")
		if r.metrics != nil {
			r.metrics.IncrementDropped()
		}
		done <- ErrInvalidParent
		return done
	}

	event := models.NewEvent(parent, visitor, r.clock())

	// Detach from the request context so a client disconnect cannot cancel
	// the write, but keep it bounded.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)

	go func() {
		defer cancel()

		err := r.store.Insert(writeCtx, event)
		if err != nil {
			r.logger.Error("failed to persist analytics event",
				"kind", string(event.Kind),
				"error", err,
			)
			if r.metrics != nil {
				r.metrics.IncrementDropped()
			}
			done <- err
			return
		}

		if r.metrics != nil {
			r.metrics.IncrementRecorded()
		}
		if r.publisher != nil {
			r.publisher.Publish(writeCtx, event)
		}
		done <- nil
	}()

	return done
}
