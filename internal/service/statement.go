package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/corebank/account-service/internal/domain"
)

type statementAccountRepo interface {
	GetByCustomerID(ctx context.Context, customerID uuid.UUID) ([]domain.Account, error)
}

type statementMovementRepo interface {
	ListByAccountAndRange(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]domain.Movement, error)
	LastBefore(ctx context.Context, accountID uuid.UUID, t time.Time) (*domain.Movement, error)
}

type shadowReader interface {
	GetByID(ctx context.Context, customerID uuid.UUID) (*domain.CustomerShadow, error)
}

type StatementService struct {
	accounts  statementAccountRepo
	movements statementMovementRepo
	shadows   shadowReader
}

func NewStatementService(accounts statementAccountRepo, movements statementMovementRepo, shadows shadowReader) *StatementService {
	return &StatementService{accounts: accounts, movements: movements, shadows: shadows}
}

type AccountStatement struct {
	Account        domain.Account
	OpeningBalance int64
	ClosingBalance int64
	Movements      []domain.Movement
}

type Statement struct {
	Customer  domain.CustomerShadow
	StartDate time.Time
	EndDate   time.Time
	Accounts  []AccountStatement
}

// Generate reconciles each of the customer's accounts over [start, end].
// Opening balance is the balance implied by the last movement strictly before
// start (zero if the account has no earlier movement); closing balance is the
// balance after the last movement at or before end. Pure read path.
func (s *StatementService) Generate(ctx context.Context, customerID uuid.UUID, start, end time.Time) (*Statement, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("Generate: end before start: %w", domain.ErrInvalidRequest)
	}

	customer, err := s.shadows.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("Generate: %w", domain.ErrCustomerNotFound)
		}
		return nil, fmt.Errorf("Generate: %w", err)
	}

	accounts, err := s.accounts.GetByCustomerID(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("Generate: %w", err)
	}

	statement := &Statement{
		Customer:  *customer,
		StartDate: start,
		EndDate:   end,
		Accounts:  make([]AccountStatement, 0, len(accounts)),
	}

	for i := range accounts {
		acct, err := s.buildAccountStatement(ctx, &accounts[i], start, end)
		if err != nil {
			return nil, fmt.Errorf("Generate: account %s: %w", accounts[i].ID, err)
		}
		statement.Accounts = append(statement.Accounts, *acct)
	}

	return statement, nil
}

func (s *StatementService) buildAccountStatement(ctx context.Context, account *domain.Account, start, end time.Time) (*AccountStatement, error) {
	opening := int64(0)
	last, err := s.movements.LastBefore(ctx, account.ID, start)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("buildAccountStatement: %w", err)
	}
	if last != nil {
		opening = last.BalanceAfter
	}

	movements, err := s.movements.ListByAccountAndRange(ctx, account.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("buildAccountStatement: %w", err)
	}

	closing := opening
	if len(movements) > 0 {
		closing = movements[len(movements)-1].BalanceAfter
	}

	return &AccountStatement{
		Account:        *account,
		OpeningBalance: opening,
		ClosingBalance: closing,
		Movements:      movements,
	}, nil
}
