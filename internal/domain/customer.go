package domain

import (
	"time"

	"github.com/google/uuid"
)

type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "active"
	CustomerStatusInactive CustomerStatus = "inactive"
)

func (s CustomerStatus) IsValid() bool {
	return s == CustomerStatusActive || s == CustomerStatusInactive
}

// CustomerShadow is the local, event-derived view of a customer owned by the
// customer registry service. It is written only by the event projector and is
// never authoritative.
type CustomerShadow struct {
	CustomerID uuid.UUID
	Name       string
	Email      string
	Status     CustomerStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
