package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"linkdeck/internal/analytics/models"
)

// Filters narrows an analytics query. Zero values mean "any".
type Filters struct {
	Kind     models.EventKind
	ParentID uuid.UUID
}

// DateRange bounds a query. Start is inclusive, End exclusive. Callers are
// expected to have clamped Start through the retention policy already.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Store is the analytics persistence contract.
type Store interface {
	Insert(ctx context.Context, event *models.Event) error
	Query(ctx context.Context, filters Filters, dateRange DateRange) ([]*models.Event, error)
}
