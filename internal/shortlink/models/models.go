package models

import (
	"time"

	"github.com/google/uuid"
)

// ShortLink maps a slug to a target URL. Slugs are case-sensitive and
// unique among non-deleted links.
type ShortLink struct {
	ID        uuid.UUID
	Slug      string
	TargetURL string
	ProfileID uuid.UUID
	IsActive  bool
	CreatedAt time.Time
	// DeletedAt is the soft-delete marker; a deleted link never resolves
	// but its row survives for analytics history.
	DeletedAt *time.Time
}

// Resolvable reports whether a redirect may use this link.
func (l *ShortLink) Resolvable() bool {
	return l.IsActive && l.DeletedAt == nil
}

// Resolution is what the redirect path needs from a resolved slug.
type Resolution struct {
	LinkID    uuid.UUID
	TargetURL string
}
