// Package profile exposes the username/profile-slug namespace to the rest
// of the system. Profile CRUD itself lives elsewhere; short-code
// availability checks and profile-view events only need lookups.
package profile

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"linkdeck/pkg/platform/sentinel"
)

// Profile is the slice of a profile the core needs.
type Profile struct {
	ID       uuid.UUID
	Username string
}

// Store is the read surface over the profile namespace.
type Store interface {
	// UsernameExists reports whether a username claims the given slug.
	// Comparison is case-insensitive: usernames are a case-insensitive
	// namespace even though short-link slugs are not.
	UsernameExists(ctx context.Context, username string) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
}

// MemoryStore is the in-memory Store used in tests and single-instance runs.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*Profile
	byLower map[string]uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[uuid.UUID]*Profile),
		byLower: make(map[string]uuid.UUID),
	}
}

// Add registers a profile. Used by tests and seeding.
func (s *MemoryStore) Add(p *Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[p.ID] = p
	s.byLower[strings.ToLower(p.Username)] = p.ID
}

func (s *MemoryStore) UsernameExists(ctx context.Context, username string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byLower[strings.ToLower(username)]
	return ok, nil
}

func (s *MemoryStore) FindByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.byID[id]; ok {
		return p, nil
	}
	return nil, sentinel.ErrNotFound
}
