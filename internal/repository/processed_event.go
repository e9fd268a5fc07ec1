package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ProcessedEventRepository struct {
	db *sql.DB
}

func NewProcessedEventRepository(db *sql.DB) *ProcessedEventRepository {
	return &ProcessedEventRepository{db: db}
}

// MarkProcessed is an atomic insert-if-absent on event_id. It returns false if
// the event was already recorded. Run inside the projection transaction, the
// mark and the event's effects commit or roll back together, which closes the
// race between two concurrent deliveries of the same event.
func (r *ProcessedEventRepository) MarkProcessed(ctx context.Context, tx *sql.Tx, eventID uuid.UUID, eventType string) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO processed_events (event_id, event_type, processed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id) DO NOTHING`,
		eventID, eventType, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("MarkProcessed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("MarkProcessed: rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *ProcessedEventRepository) IsProcessed(ctx context.Context, eventID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM processed_events WHERE event_id = $1)`, eventID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("IsProcessed: %w", err)
	}
	return exists, nil
}
