package transaction

import (
	"context"
	"fmt"

	"github.com/corebank/account-service/internal/domain"
	"github.com/corebank/account-service/internal/logging"
)

// executeTransfer applies the debit and credit legs as two independent
// optimistic operations. No lock spans both accounts: if the credit leg fails
// after the debit committed, a compensating credit is applied to the source
// and the partial application is surfaced as ErrTransferCompensated, never
// hidden as success.
func (s *Service) executeTransfer(ctx context.Context, txn *domain.Transaction) error {
	debit, err := s.applyMovement(ctx, txn.AccountID, txn, domain.MovementTypeTransferOut, true)
	if err != nil {
		return fmt.Errorf("executeTransfer: debit: %w", err)
	}

	_, err = s.applyMovement(ctx, *txn.DestAccountID, txn, domain.MovementTypeTransferIn, false)
	if err == nil {
		return nil
	}

	log := logging.FromContext(ctx)
	log.Warn("transfer credit leg failed, compensating debit",
		"transaction_id", txn.ID,
		"source_account", txn.AccountID,
		"dest_account", *txn.DestAccountID,
		"error", err,
	)

	compensation, compErr := s.applyMovement(ctx, txn.AccountID, txn, domain.MovementTypeTransferIn, false)
	if compErr != nil {
		// The ledger now holds an unmatched debit. Emit everything needed for
		// manual repair and still report the inconsistency to the caller.
		log.Error("transfer compensation failed, ledger requires repair",
			"transaction_id", txn.ID,
			"debit_movement_id", debit.ID,
			"source_account", txn.AccountID,
			"amount", txn.Amount,
			"error", compErr,
		)
	} else {
		log.Info("transfer debit compensated",
			"transaction_id", txn.ID,
			"debit_movement_id", debit.ID,
			"compensation_movement_id", compensation.ID,
		)
	}

	reason := "destination credit failed"
	if updErr := s.transactions.UpdateStatus(ctx, txn.ID, domain.TransactionStatusRejected, &reason); updErr != nil {
		log.Error("failed to mark transfer rejected", "transaction_id", txn.ID, "error", updErr)
	}
	txn.Status = domain.TransactionStatusRejected
	txn.RejectionReason = &reason

	return fmt.Errorf("executeTransfer: credit: %v: %w", err, domain.ErrTransferCompensated)
}
