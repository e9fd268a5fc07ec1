package domain

import (
	"time"

	"github.com/google/uuid"
)

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeTransfer   TransactionType = "transfer"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeTransfer:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusRejected  TransactionStatus = "rejected"
)

// Transaction is the customer-facing operation. A transfer produces two
// movements (debit on AccountID, credit on DestAccountID) sharing this
// transaction's id.
type Transaction struct {
	ID              uuid.UUID
	AccountID       uuid.UUID
	DestAccountID   *uuid.UUID
	Type            TransactionType
	Amount          int64
	Description     string
	Status          TransactionStatus
	RejectionReason *string
	CreatedAt       time.Time
}
