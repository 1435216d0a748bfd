// Package store persists short links. FindBySlug only ever returns links a
// redirect may use; disabled and soft-deleted rows are filtered at the
// store boundary so no caller can forget to.
package store

import (
	"context"

	"github.com/google/uuid"

	"linkdeck/internal/shortlink/models"
)

// Store is the short-link persistence contract.
type Store interface {
	// FindBySlug returns the active, non-deleted link with the exact
	// (case-sensitive) slug, or sentinel.ErrNotFound.
	FindBySlug(ctx context.Context, slug string) (*models.ShortLink, error)

	// SlugExists reports whether any active, non-deleted link claims the
	// exact slug.
	SlugExists(ctx context.Context, slug string) (bool, error)

	// Create inserts a new link; sentinel.ErrConflict when the slug is
	// already claimed.
	Create(ctx context.Context, link *models.ShortLink) error

	// Deactivate flips IsActive off; sentinel.ErrNotFound for unknown IDs.
	Deactivate(ctx context.Context, id uuid.UUID) error

	// SoftDelete stamps DeletedAt; sentinel.ErrNotFound for unknown IDs.
	SoftDelete(ctx context.Context, id uuid.UUID) error
}
