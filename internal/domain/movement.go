package domain

import (
	"time"

	"github.com/google/uuid"
)

type MovementType string

const (
	MovementTypeDeposit     MovementType = "deposit"
	MovementTypeWithdrawal  MovementType = "withdrawal"
	MovementTypeTransferIn  MovementType = "transfer_in"
	MovementTypeTransferOut MovementType = "transfer_out"
)

func (t MovementType) IsCredit() bool {
	return t == MovementTypeDeposit || t == MovementTypeTransferIn
}

// Movement is one immutable ledger entry. Seq is assigned by the database on
// insert and breaks ties between movements sharing a timestamp.
type Movement struct {
	ID            uuid.UUID
	Seq           int64
	AccountID     uuid.UUID
	TransactionID uuid.UUID
	Type          MovementType
	Amount        int64
	BalanceAfter  int64
	Description   string
	CreatedAt     time.Time
}
