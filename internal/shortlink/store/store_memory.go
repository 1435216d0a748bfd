package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"linkdeck/internal/shortlink/models"
	"linkdeck/pkg/platform/sentinel"
)

// MemoryStore is the in-memory Store used in tests and single-instance runs.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[uuid.UUID]*models.ShortLink
	bySlug map[string]uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:   make(map[uuid.UUID]*models.ShortLink),
		bySlug: make(map[string]uuid.UUID),
	}
}

func (s *MemoryStore) FindBySlug(ctx context.Context, slug string) (*models.ShortLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.bySlug[slug]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	link := s.byID[id]
	if link == nil || !link.Resolvable() {
		return nil, sentinel.ErrNotFound
	}
	cp := *link
	return &cp, nil
}

func (s *MemoryStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.bySlug[slug]
	if !ok {
		return false, nil
	}
	link := s.byID[id]
	return link != nil && link.Resolvable(), nil
}

func (s *MemoryStore) Create(ctx context.Context, link *models.ShortLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.bySlug[link.Slug]; ok {
		if existing := s.byID[id]; existing != nil && existing.Resolvable() {
			return sentinel.ErrConflict
		}
	}
	cp := *link
	s.byID[cp.ID] = &cp
	s.bySlug[cp.Slug] = cp.ID
	return nil
}

func (s *MemoryStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	link.IsActive = false
	return nil
}

func (s *MemoryStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.byID[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	now := time.Now()
	link.DeletedAt = &now
	return nil
}
