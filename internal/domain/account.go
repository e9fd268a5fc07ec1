package domain

import (
	"time"

	"github.com/google/uuid"
)

type AccountType string

const (
	AccountTypeSavings  AccountType = "savings"
	AccountTypeChecking AccountType = "checking"
)

func (t AccountType) IsValid() bool {
	return t == AccountTypeSavings || t == AccountTypeChecking
}

type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"
)

// Account balances are stored in minor units (cents). Version is bumped on
// every balance or status write and guards the conditional update in the
// repository layer.
type Account struct {
	ID            uuid.UUID
	CustomerID    uuid.UUID
	AccountNumber string
	Type          AccountType
	Balance       int64
	Version       int64
	Status        AccountStatus
	CreatedAt     time.Time
}
