package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkdeck/internal/shortlink/models"
	"linkdeck/pkg/platform/sentinel"
)

func newLink(slug string) *models.ShortLink {
	return &models.ShortLink{
		ID:        uuid.New(),
		Slug:      slug,
		TargetURL: "https://example.com/" + slug,
		ProfileID: uuid.New(),
		IsActive:  true,
		CreatedAt: time.Now(),
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("find returns only resolvable links", func(t *testing.T) {
		s := NewMemoryStore()
		link := newLink("promo")
		require.NoError(t, s.Create(ctx, link))

		got, err := s.FindBySlug(ctx, "promo")
		require.NoError(t, err)
		assert.Equal(t, link.ID, got.ID)

		_, err = s.FindBySlug(ctx, "other")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("deactivated link is hidden", func(t *testing.T) {
		s := NewMemoryStore()
		link := newLink("promo")
		require.NoError(t, s.Create(ctx, link))
		require.NoError(t, s.Deactivate(ctx, link.ID))

		_, err := s.FindBySlug(ctx, "promo")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)

		exists, err := s.SlugExists(ctx, "promo")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("soft-deleted link is hidden", func(t *testing.T) {
		s := NewMemoryStore()
		link := newLink("promo")
		require.NoError(t, s.Create(ctx, link))
		require.NoError(t, s.SoftDelete(ctx, link.ID))

		_, err := s.FindBySlug(ctx, "promo")
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("duplicate active slug conflicts", func(t *testing.T) {
		s := NewMemoryStore()
		require.NoError(t, s.Create(ctx, newLink("promo")))

		err := s.Create(ctx, newLink("promo"))
		assert.ErrorIs(t, err, sentinel.ErrConflict)
	})

	t.Run("slug freed by deactivation can be reclaimed", func(t *testing.T) {
		s := NewMemoryStore()
		first := newLink("promo")
		require.NoError(t, s.Create(ctx, first))
		require.NoError(t, s.Deactivate(ctx, first.ID))

		second := newLink("promo")
		require.NoError(t, s.Create(ctx, second))

		got, err := s.FindBySlug(ctx, "promo")
		require.NoError(t, err)
		assert.Equal(t, second.ID, got.ID)
	})

	t.Run("mutating an unknown id is not found", func(t *testing.T) {
		s := NewMemoryStore()
		assert.ErrorIs(t, s.Deactivate(ctx, uuid.New()), sentinel.ErrNotFound)
		assert.ErrorIs(t, s.SoftDelete(ctx, uuid.New()), sentinel.ErrNotFound)
	})
}
