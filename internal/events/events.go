package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Customer lifecycle event types published by the customer registry service.
const (
	CustomerCreated       = "customer.created"
	CustomerUpdated       = "customer.updated"
	CustomerStatusChanged = "customer.status_changed"
)

// Event types published by this service.
const (
	TransactionCompleted = "transaction.completed"
	AccountStatusChanged = "account.status_changed"
)

// Envelope wraps every event on the wire. EventID is the deduplication key;
// delivery is at-least-once, so consumers must treat replays as no-ops.
type Envelope struct {
	EventID   uuid.UUID       `json:"eventId"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

type CustomerCreatedEvent struct {
	CustomerID     uuid.UUID `json:"customerId"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	InitialBalance int64     `json:"initialBalance"`
}

type CustomerUpdatedEvent struct {
	CustomerID uuid.UUID `json:"customerId"`
	Name       *string   `json:"name,omitempty"`
	Email      *string   `json:"email,omitempty"`
}

type CustomerStatusChangedEvent struct {
	CustomerID uuid.UUID `json:"customerId"`
	NewStatus  string    `json:"newStatus"`
}

type TransactionCompletedEvent struct {
	TransactionID uuid.UUID `json:"transactionId"`
	AccountID     uuid.UUID `json:"accountId"`
	Type          string    `json:"type"`
	Amount        int64     `json:"amount"`
}
