package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"linkdeck/internal/shortlink/models"
	"linkdeck/pkg/platform/sentinel"
)

// PostgresStore persists short links in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed short-link store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindBySlug(ctx context.Context, slug string) (*models.ShortLink, error) {
	query := `
		SELECT id, slug, target_url, profile_id, is_active, created_at, deleted_at
		FROM short_links
		WHERE slug = $1 AND is_active AND deleted_at IS NULL
	`
	var link models.ShortLink
	err := s.db.QueryRowContext(ctx, query, slug).Scan(
		&link.ID, &link.Slug, &link.TargetURL, &link.ProfileID,
		&link.IsActive, &link.CreatedAt, &link.DeletedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find link by slug: %w", err)
	}
	return &link, nil
}

func (s *PostgresStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM short_links
			WHERE slug = $1 AND is_active AND deleted_at IS NULL
		)
	`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, slug).Scan(&exists); err != nil {
		return false, fmt.Errorf("check slug exists: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Create(ctx context.Context, link *models.ShortLink) error {
	query := `
		INSERT INTO short_links (id, slug, target_url, profile_id, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query,
		link.ID, link.Slug, link.TargetURL, link.ProfileID, link.IsActive, link.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create link: %w", err)
	}
	return nil
}

func (s *PostgresStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.update(ctx, id, `UPDATE short_links SET is_active = FALSE WHERE id = $1`)
}

func (s *PostgresStore) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return s.update(ctx, id, `UPDATE short_links SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`)
}

func (s *PostgresStore) update(ctx context.Context, id uuid.UUID, query string) error {
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("update link: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update link: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
