package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"linkdeck/internal/analytics/models"
)

// PostgresStore persists click events in PostgreSQL. Events are append-only;
// there is no update path.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed analytics store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO click_events (
			id, kind, parent_id, country, device, referrer, platform,
			user_agent, utm_source, utm_medium, utm_campaign, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(ctx, query,
		event.ID, string(event.Kind), event.ParentID,
		nullable(event.Country), string(event.Device),
		event.Referrer, event.Platform, event.UserAgent,
		event.UTMSource, event.UTMMedium, event.UTMName,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

func (s *PostgresStore) Query(ctx context.Context, filters Filters, dateRange DateRange) ([]*models.Event, error) {
	query := `
		SELECT id, kind, parent_id, COALESCE(country, ''), device, referrer,
			platform, user_agent, utm_source, utm_medium, utm_campaign, occurred_at
		FROM click_events
		WHERE occurred_at >= $1 AND occurred_at < $2
			AND ($3 = '' OR kind = $3)
			AND ($4 = '00000000-0000-0000-0000-000000000000'::uuid OR parent_id = $4)
		ORDER BY occurred_at
	`
	rows, err := s.db.QueryContext(ctx, query,
		dateRange.Start, dateRange.End, string(filters.Kind), filters.ParentID,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []*models.Event
	for rows.Next() {
		var e models.Event
		var kind, device string
		if err := rows.Scan(
			&e.ID, &kind, &e.ParentID, &e.Country, &device, &e.Referrer,
			&e.Platform, &e.UserAgent, &e.UTMSource, &e.UTMMedium, &e.UTMName,
			&e.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Kind = models.EventKind(kind)
		e.Device = deviceType(device)
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return out, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
