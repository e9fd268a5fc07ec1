package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/corebank/account-service/internal/domain"
	"github.com/corebank/account-service/internal/events"
)

type projectorAccountRepo interface {
	Create(ctx context.Context, tx *sql.Tx, account *domain.Account) error
	UpdateStatusForCustomer(ctx context.Context, tx *sql.Tx, customerID uuid.UUID, status domain.AccountStatus) (int64, error)
}

type shadowRepo interface {
	Upsert(ctx context.Context, tx *sql.Tx, c *domain.CustomerShadow) error
	UpdateFields(ctx context.Context, tx *sql.Tx, customerID uuid.UUID, name, email *string) error
	UpdateStatus(ctx context.Context, tx *sql.Tx, customerID uuid.UUID, status domain.CustomerStatus) error
}

type processedEventRepo interface {
	MarkProcessed(ctx context.Context, tx *sql.Tx, eventID uuid.UUID, eventType string) (bool, error)
}

// Projector applies customer lifecycle events to local state. Every handler
// runs inside one DB transaction together with the dedup mark, so an event's
// effects are applied exactly once even though delivery is at-least-once.
type Projector struct {
	accounts     projectorAccountRepo
	shadows      shadowRepo
	processed    processedEventRepo
	movements    movementWriter
	transactions transactionWriter
	db           *sql.DB
	logger       *slog.Logger
}

func NewProjector(
	accounts projectorAccountRepo,
	shadows shadowRepo,
	processed processedEventRepo,
	movements movementWriter,
	transactions transactionWriter,
	db *sql.DB,
	logger *slog.Logger,
) *Projector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Projector{
		accounts:     accounts,
		shadows:      shadows,
		processed:    processed,
		movements:    movements,
		transactions: transactions,
		db:           db,
		logger:       logger,
	}
}

// HandleEvent is the subscriber handler. A nil return acks the message;
// returned errors leave it unacked for redelivery. Referential gaps and
// malformed payloads are logged and dropped so one bad event cannot stall the
// pipeline.
func (p *Projector) HandleEvent(ctx context.Context, envelope events.Envelope) error {
	switch envelope.Type {
	case events.CustomerCreated:
		return p.handleCustomerCreated(ctx, envelope)
	case events.CustomerUpdated:
		return p.handleCustomerUpdated(ctx, envelope)
	case events.CustomerStatusChanged:
		return p.handleCustomerStatusChanged(ctx, envelope)
	default:
		p.logger.Warn("unknown event type, dropping",
			"event_id", envelope.EventID,
			"event_type", envelope.Type,
		)
		return nil
	}
}

func (p *Projector) handleCustomerCreated(ctx context.Context, envelope events.Envelope) error {
	var ev events.CustomerCreatedEvent
	if err := json.Unmarshal(envelope.Data, &ev); err != nil {
		p.logger.Warn("malformed customer.created payload, dropping",
			"event_id", envelope.EventID, "error", err,
		)
		return nil
	}

	accountNumber, err := GenerateAccountNumber()
	if err != nil {
		return fmt.Errorf("handleCustomerCreated: %w", err)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("handleCustomerCreated: begin tx: %w", err)
	}
	defer tx.Rollback()

	applied, err := p.processed.MarkProcessed(ctx, tx, envelope.EventID, envelope.Type)
	if err != nil {
		return fmt.Errorf("handleCustomerCreated: %w", err)
	}
	if !applied {
		p.logger.Debug("duplicate event, skipping", "event_id", envelope.EventID)
		return nil
	}

	now := time.Now().UTC()
	shadow := &domain.CustomerShadow{
		CustomerID: ev.CustomerID,
		Name:       ev.Name,
		Email:      ev.Email,
		Status:     domain.CustomerStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := p.shadows.Upsert(ctx, tx, shadow); err != nil {
		return fmt.Errorf("handleCustomerCreated: %w", err)
	}

	account := &domain.Account{
		ID:            uuid.New(),
		CustomerID:    ev.CustomerID,
		AccountNumber: accountNumber,
		Type:          domain.AccountTypeChecking,
		Balance:       ev.InitialBalance,
		Version:       1,
		Status:        domain.AccountStatusActive,
		CreatedAt:     now,
	}
	if err := p.accounts.Create(ctx, tx, account); err != nil {
		return fmt.Errorf("handleCustomerCreated: %w", err)
	}

	if ev.InitialBalance > 0 {
		if err := p.writeInitialDeposit(ctx, tx, account, now); err != nil {
			return fmt.Errorf("handleCustomerCreated: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("handleCustomerCreated: commit: %w", err)
	}

	p.logger.Info("customer projected",
		"event_id", envelope.EventID,
		"customer_id", ev.CustomerID,
		"account_id", account.ID,
	)
	return nil
}

func (p *Projector) handleCustomerUpdated(ctx context.Context, envelope events.Envelope) error {
	var ev events.CustomerUpdatedEvent
	if err := json.Unmarshal(envelope.Data, &ev); err != nil {
		p.logger.Warn("malformed customer.updated payload, dropping",
			"event_id", envelope.EventID, "error", err,
		)
		return nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("handleCustomerUpdated: begin tx: %w", err)
	}
	defer tx.Rollback()

	applied, err := p.processed.MarkProcessed(ctx, tx, envelope.EventID, envelope.Type)
	if err != nil {
		return fmt.Errorf("handleCustomerUpdated: %w", err)
	}
	if !applied {
		p.logger.Debug("duplicate event, skipping", "event_id", envelope.EventID)
		return nil
	}

	if err := p.shadows.UpdateFields(ctx, tx, ev.CustomerID, ev.Name, ev.Email); err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			p.logger.Warn("customer.updated for unknown customer, dropping",
				"event_id", envelope.EventID,
				"customer_id", ev.CustomerID,
			)
			return tx.Commit()
		}
		return fmt.Errorf("handleCustomerUpdated: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("handleCustomerUpdated: commit: %w", err)
	}
	return nil
}

func (p *Projector) handleCustomerStatusChanged(ctx context.Context, envelope events.Envelope) error {
	var ev events.CustomerStatusChangedEvent
	if err := json.Unmarshal(envelope.Data, &ev); err != nil {
		p.logger.Warn("malformed customer.status_changed payload, dropping",
			"event_id", envelope.EventID, "error", err,
		)
		return nil
	}

	newStatus := domain.CustomerStatus(ev.NewStatus)
	if !newStatus.IsValid() {
		p.logger.Warn("customer.status_changed with unknown status, dropping",
			"event_id", envelope.EventID,
			"new_status", ev.NewStatus,
		)
		return nil
	}

	accountStatus := domain.AccountStatusActive
	if newStatus == domain.CustomerStatusInactive {
		accountStatus = domain.AccountStatusInactive
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("handleCustomerStatusChanged: begin tx: %w", err)
	}
	defer tx.Rollback()

	applied, err := p.processed.MarkProcessed(ctx, tx, envelope.EventID, envelope.Type)
	if err != nil {
		return fmt.Errorf("handleCustomerStatusChanged: %w", err)
	}
	if !applied {
		p.logger.Debug("duplicate event, skipping", "event_id", envelope.EventID)
		return nil
	}

	if err := p.shadows.UpdateStatus(ctx, tx, ev.CustomerID, newStatus); err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			p.logger.Warn("customer.status_changed for unknown customer, dropping",
				"event_id", envelope.EventID,
				"customer_id", ev.CustomerID,
			)
			return tx.Commit()
		}
		return fmt.Errorf("handleCustomerStatusChanged: %w", err)
	}

	// The cascade over all of the customer's accounts is a single statement
	// inside this transaction: all accounts flip or none do.
	updated, err := p.accounts.UpdateStatusForCustomer(ctx, tx, ev.CustomerID, accountStatus)
	if err != nil {
		return fmt.Errorf("handleCustomerStatusChanged: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("handleCustomerStatusChanged: commit: %w", err)
	}

	p.logger.Info("customer status cascade applied",
		"event_id", envelope.EventID,
		"customer_id", ev.CustomerID,
		"new_status", newStatus,
		"accounts_updated", updated,
	)
	return nil
}

func (p *Projector) writeInitialDeposit(ctx context.Context, tx *sql.Tx, account *domain.Account, now time.Time) error {
	txn := &domain.Transaction{
		ID:          uuid.New(),
		AccountID:   account.ID,
		Type:        domain.TransactionTypeDeposit,
		Amount:      account.Balance,
		Description: "initial deposit",
		Status:      domain.TransactionStatusCompleted,
		CreatedAt:   now,
	}
	if err := p.transactions.Create(ctx, tx, txn); err != nil {
		return fmt.Errorf("writeInitialDeposit: %w", err)
	}

	m := &domain.Movement{
		ID:            uuid.New(),
		AccountID:     account.ID,
		TransactionID: txn.ID,
		Type:          domain.MovementTypeDeposit,
		Amount:        account.Balance,
		BalanceAfter:  account.Balance,
		Description:   "initial deposit",
		CreatedAt:     now,
	}
	if err := p.movements.Create(ctx, tx, m); err != nil {
		return fmt.Errorf("writeInitialDeposit: %w", err)
	}
	return nil
}
