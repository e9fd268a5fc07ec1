package transaction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/corebank/account-service/internal/domain"
	"github.com/corebank/account-service/internal/events"
	"github.com/corebank/account-service/internal/logging"
)

type ExecuteRequest struct {
	AccountID     uuid.UUID
	DestAccountID *uuid.UUID
	Type          domain.TransactionType
	Amount        int64
	Description   string
}

// Execute validates and applies one transaction. Deposits and withdrawals are
// a single optimistic application; transfers run as two causally ordered local
// applications sharing one transaction id.
func (s *Service) Execute(ctx context.Context, req ExecuteRequest) (*domain.Transaction, error) {
	if err := validate(req); err != nil {
		return nil, fmt.Errorf("Execute: %w", err)
	}

	txn := &domain.Transaction{
		ID:            uuid.New(),
		AccountID:     req.AccountID,
		DestAccountID: req.DestAccountID,
		Type:          req.Type,
		Amount:        req.Amount,
		Description:   req.Description,
		Status:        domain.TransactionStatusCompleted,
		CreatedAt:     time.Now().UTC(),
	}

	var err error
	switch req.Type {
	case domain.TransactionTypeDeposit:
		_, err = s.applyMovement(ctx, req.AccountID, txn, domain.MovementTypeDeposit, true)
	case domain.TransactionTypeWithdrawal:
		_, err = s.applyMovement(ctx, req.AccountID, txn, domain.MovementTypeWithdrawal, true)
	case domain.TransactionTypeTransfer:
		err = s.executeTransfer(ctx, txn)
	}
	if err != nil {
		if reason, rejected := rejectionReason(err); rejected {
			s.recordRejection(ctx, txn, reason)
		}
		return nil, fmt.Errorf("Execute: %w", err)
	}

	s.publishCompleted(ctx, txn)

	logging.FromContext(ctx).Info("transaction completed",
		"transaction_id", txn.ID,
		"account_id", txn.AccountID,
		"type", txn.Type,
		"amount", txn.Amount,
	)

	return txn, nil
}

func validate(req ExecuteRequest) error {
	if !req.Type.IsValid() {
		return domain.ErrInvalidTransactionType
	}
	if req.Amount <= 0 {
		return domain.ErrInvalidAmount
	}
	if req.Type == domain.TransactionTypeTransfer {
		if req.DestAccountID == nil {
			return fmt.Errorf("transfer requires destination account: %w", domain.ErrInvalidRequest)
		}
		if *req.DestAccountID == req.AccountID {
			return domain.ErrSelfTransfer
		}
	}
	return nil
}

// applyMovement runs the read-compute-write cycle under optimistic concurrency,
// retrying on version conflicts up to the configured bound. The retry loop is
// invisible to the caller; only an exhausted loop surfaces ErrVersionConflict.
func (s *Service) applyMovement(ctx context.Context, accountID uuid.UUID, txn *domain.Transaction, mType domain.MovementType, withTxnRow bool) (*domain.Movement, error) {
	var lastErr error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		m, err := s.tryApply(ctx, accountID, txn, mType, withTxnRow)
		if err == nil {
			return m, nil
		}
		if errors.Is(err, domain.ErrVersionConflict) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("applyMovement: retries exhausted: %w", lastErr)
}

func (s *Service) tryApply(ctx context.Context, accountID uuid.UUID, txn *domain.Transaction, mType domain.MovementType, withTxnRow bool) (*domain.Movement, error) {
	acct, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("tryApply: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("tryApply: %w", err)
	}

	if acct.Status != domain.AccountStatusActive {
		return nil, fmt.Errorf("tryApply: %w", domain.ErrAccountInactive)
	}

	var newBalance int64
	if mType.IsCredit() {
		newBalance = acct.Balance + txn.Amount
	} else {
		if acct.Balance < txn.Amount {
			return nil, fmt.Errorf("tryApply: %w", domain.ErrInsufficientFunds)
		}
		newBalance = acct.Balance - txn.Amount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("tryApply: begin tx: %w", err)
	}
	defer tx.Rollback()

	if withTxnRow {
		if err := s.transactions.Create(ctx, tx, txn); err != nil {
			return nil, fmt.Errorf("tryApply: create transaction: %w", err)
		}
	}

	m := &domain.Movement{
		ID:            uuid.New(),
		AccountID:     accountID,
		TransactionID: txn.ID,
		Type:          mType,
		Amount:        txn.Amount,
		BalanceAfter:  newBalance,
		Description:   txn.Description,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.movements.Create(ctx, tx, m); err != nil {
		return nil, fmt.Errorf("tryApply: create movement: %w", err)
	}

	if err := s.accounts.UpdateBalance(ctx, tx, accountID, newBalance, acct.Version+1); err != nil {
		return nil, fmt.Errorf("tryApply: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("tryApply: commit: %w", err)
	}

	return m, nil
}

func rejectionReason(err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient funds", true
	case errors.Is(err, domain.ErrAccountInactive):
		return "account inactive", true
	}
	return "", false
}

// recordRejection persists a REJECTED transaction row so the rejection is
// visible through GetTransaction and ListTransactions. Best-effort: a failure
// here must not mask the original rejection.
func (s *Service) recordRejection(ctx context.Context, txn *domain.Transaction, reason string) {
	txn.Status = domain.TransactionStatusRejected
	txn.RejectionReason = &reason
	if err := s.transactions.CreateStandalone(ctx, txn); err != nil {
		logging.FromContext(ctx).Error("failed to record rejected transaction",
			"transaction_id", txn.ID,
			"error", err,
		)
	}
}

func (s *Service) publishCompleted(ctx context.Context, txn *domain.Transaction) {
	if s.publisher == nil {
		return
	}
	err := s.publisher.Publish(ctx, events.TransactionCompleted, events.TransactionCompletedEvent{
		TransactionID: txn.ID,
		AccountID:     txn.AccountID,
		Type:          string(txn.Type),
		Amount:        txn.Amount,
	})
	if err != nil {
		logging.FromContext(ctx).Warn("failed to publish transaction event",
			"transaction_id", txn.ID,
			"error", err,
		)
	}
}
