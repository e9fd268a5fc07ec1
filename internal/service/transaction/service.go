package transaction

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/corebank/account-service/internal/domain"
)

type accountRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, id uuid.UUID, newBalance, newVersion int64) error
}

type movementRepo interface {
	Create(ctx context.Context, tx *sql.Tx, m *domain.Movement) error
	GetByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]domain.Movement, error)
}

type transactionRepo interface {
	Create(ctx context.Context, tx *sql.Tx, t *domain.Transaction) error
	CreateStandalone(ctx context.Context, t *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	ListByAccountID(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.Transaction, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus, rejectionReason *string) error
}

type eventPublisher interface {
	Publish(ctx context.Context, eventType string, data any) error
}

type Service struct {
	accounts     accountRepo
	movements    movementRepo
	transactions transactionRepo
	publisher    eventPublisher
	db           *sql.DB
	maxAttempts  int
}

// NewService builds the transaction processor. publisher may be nil, in which
// case no outbound events are emitted.
func NewService(
	accounts accountRepo,
	movements movementRepo,
	transactions transactionRepo,
	publisher eventPublisher,
	db *sql.DB,
	maxAttempts int,
) *Service {
	if maxAttempts <= 0 {
		maxAttempts = 4
	}
	return &Service{
		accounts:     accounts,
		movements:    movements,
		transactions: transactions,
		publisher:    publisher,
		db:           db,
		maxAttempts:  maxAttempts,
	}
}

func (s *Service) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	t, err := s.transactions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetTransaction: %w", err)
	}
	return t, nil
}

func (s *Service) ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]domain.Transaction, int, error) {
	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		return nil, 0, fmt.Errorf("ListTransactions: %w", err)
	}

	transactions, total, err := s.transactions.ListByAccountID(ctx, accountID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("ListTransactions: %w", err)
	}
	return transactions, total, nil
}

func (s *Service) GetMovements(ctx context.Context, transactionID uuid.UUID) ([]domain.Movement, error) {
	movements, err := s.movements.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return nil, fmt.Errorf("GetMovements: %w", err)
	}
	return movements, nil
}
