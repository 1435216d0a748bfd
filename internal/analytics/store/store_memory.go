package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"linkdeck/internal/analytics/models"
)

// MemoryStore is the in-memory Store used in tests and single-instance runs.
type MemoryStore struct {
	mu     sync.RWMutex
	events []*models.Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Insert(ctx context.Context, event *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *event
	s.events = append(s.events, &cp)
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, filters Filters, dateRange DateRange) ([]*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Event
	for _, e := range s.events {
		if filters.Kind != "" && e.Kind != filters.Kind {
			continue
		}
		if filters.ParentID != uuid.Nil && e.ParentID != filters.ParentID {
			continue
		}
		if e.Timestamp.Before(dateRange.Start) || !e.Timestamp.Before(dateRange.End) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

// Len reports the number of stored events. Used by tests.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}
