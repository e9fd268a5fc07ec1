package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/corebank/account-service/internal/domain"
	"github.com/corebank/account-service/internal/events"
	"github.com/corebank/account-service/internal/logging"
)

type accountRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByCustomerID(ctx context.Context, customerID uuid.UUID) ([]domain.Account, error)
	Create(ctx context.Context, tx *sql.Tx, account *domain.Account) error
	UpdateStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID, status domain.AccountStatus) error
}

type movementWriter interface {
	Create(ctx context.Context, tx *sql.Tx, m *domain.Movement) error
}

type transactionWriter interface {
	Create(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error
}

type statusEventPublisher interface {
	Publish(ctx context.Context, eventType string, data any) error
}

type AccountService struct {
	accounts     accountRepo
	movements    movementWriter
	transactions transactionWriter
	publisher    statusEventPublisher
	db           *sql.DB
}

func NewAccountService(
	accounts accountRepo,
	movements movementWriter,
	transactions transactionWriter,
	publisher statusEventPublisher,
	db *sql.DB,
) *AccountService {
	return &AccountService{
		accounts:     accounts,
		movements:    movements,
		transactions: transactions,
		publisher:    publisher,
		db:           db,
	}
}

type CreateAccountRequest struct {
	CustomerID     uuid.UUID
	AccountNumber  string
	Type           domain.AccountType
	InitialBalance int64
}

// CreateAccount opens an account through the API path. A nonzero initial
// balance is recorded as an initial deposit movement in the same transaction,
// so the balance always equals the sum of movement deltas from birth.
func (s *AccountService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	if !req.Type.IsValid() {
		return nil, fmt.Errorf("CreateAccount: %w", domain.ErrInvalidRequest)
	}
	if req.InitialBalance < 0 {
		return nil, fmt.Errorf("CreateAccount: %w", domain.ErrInvalidAmount)
	}

	accountNumber := req.AccountNumber
	if accountNumber == "" {
		var err error
		accountNumber, err = GenerateAccountNumber()
		if err != nil {
			return nil, fmt.Errorf("CreateAccount: %w", err)
		}
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:            uuid.New(),
		CustomerID:    req.CustomerID,
		AccountNumber: accountNumber,
		Type:          req.Type,
		Balance:       req.InitialBalance,
		Version:       1,
		Status:        domain.AccountStatusActive,
		CreatedAt:     now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("CreateAccount: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.accounts.Create(ctx, tx, account); err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}

	if req.InitialBalance > 0 {
		if err := s.writeInitialDeposit(ctx, tx, account, now); err != nil {
			return nil, fmt.Errorf("CreateAccount: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("CreateAccount: commit: %w", err)
	}

	log.Info("account created",
		"account_id", account.ID,
		"customer_id", account.CustomerID,
		"account_number", account.AccountNumber,
		"type", account.Type,
	)

	return account, nil
}

func (s *AccountService) writeInitialDeposit(ctx context.Context, tx *sql.Tx, account *domain.Account, now time.Time) error {
	txn := &domain.Transaction{
		ID:          uuid.New(),
		AccountID:   account.ID,
		Type:        domain.TransactionTypeDeposit,
		Amount:      account.Balance,
		Description: "initial deposit",
		Status:      domain.TransactionStatusCompleted,
		CreatedAt:   now,
	}
	if err := s.transactions.Create(ctx, tx, txn); err != nil {
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
	if err := s.movements.Create(ctx, tx, m); err != nil {
		return fmt.Errorf("writeInitialDeposit: %w", err)
	}
	return nil
}

func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetAccount: %w", err)
	}
	return account, nil
}

func (s *AccountService) ListCustomerAccounts(ctx context.Context, customerID uuid.UUID) ([]domain.Account, error) {
	accounts, err := s.accounts.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("ListCustomerAccounts: %w", err)
	}
	return accounts, nil
}

func (s *AccountService) ActivateAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return s.setStatus(ctx, id, domain.AccountStatusActive)
}

func (s *AccountService) DeactivateAccount(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return s.setStatus(ctx, id, domain.AccountStatusInactive)
}

func (s *AccountService) setStatus(ctx context.Context, id uuid.UUID, status domain.AccountStatus) (*domain.Account, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("setStatus: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.accounts.UpdateStatus(ctx, tx, id, status); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("setStatus: %w", domain.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("setStatus: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("setStatus: commit: %w", err)
	}

	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("setStatus: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.AccountStatusChanged, map[string]any{
			"accountId": account.ID,
			"status":    account.Status,
		}); err != nil {
			logging.FromContext(ctx).Warn("failed to publish account status event",
				"account_id", account.ID,
				"error", err,
			)
		}
	}

	logging.FromContext(ctx).Info("account status changed",
		"account_id", account.ID,
		"status", account.Status,
	)

	return account, nil
}

func GenerateAccountNumber() (string, error) {
	digits := make([]byte, 10)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("GenerateAccountNumber: %w", err)
		}
		digits[i] = '0' + byte(n.Int64())
	}
	return string(digits), nil
}
