package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProcessedEvent records an inbound event id that has already been applied.
// Rows are inserted once and never updated; the insert-if-absent on event_id is
// what turns at-least-once delivery into effectively-once application.
type ProcessedEvent struct {
	EventID     uuid.UUID
	EventType   string
	ProcessedAt time.Time
}
