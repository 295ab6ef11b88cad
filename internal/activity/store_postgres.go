package activity

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresStore persists activity events in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, ev Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_events (id, event_type, identity_key, display_name, role, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		ev.ID, string(ev.Type), ev.IdentityKey, ev.DisplayName, ev.Role, ev.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("append activity event: %w", err)
	}
	return nil
}

// ListSince returns events at or after the cutoff, oldest first.
func (s *PostgresStore) ListSince(ctx context.Context, since time.Time) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_type, identity_key, display_name, role, occurred_at
		FROM activity_events
		WHERE occurred_at >= $1
		ORDER BY occurred_at`, since)
	if err != nil {
		return nil, fmt.Errorf("list activity events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			ev        Event
			eventType string
		)
		if err := rows.Scan(&ev.ID, &eventType, &ev.IdentityKey, &ev.DisplayName, &ev.Role, &ev.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan activity event: %w", err)
		}
		ev.Type = EventType(eventType)
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list activity events: %w", err)
	}
	return out, nil
}
