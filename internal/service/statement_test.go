package service_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank/account-service/internal/domain"
	"github.com/corebank/account-service/internal/repository"
	"github.com/corebank/account-service/internal/service"
	"github.com/corebank/account-service/internal/service/transaction"
	"github.com/corebank/account-service/internal/testutil"
)

func setupStatementService(t *testing.T, db *sql.DB) *service.StatementService {
	t.Helper()
	return service.NewStatementService(
		repository.NewAccountRepository(db),
		repository.NewMovementRepository(db),
		repository.NewCustomerShadowRepository(db),
	)
}

func TestStatement_OpeningAndClosingBalances(t *testing.T) {
	db := testutil.SetupTestDB(t)
	statements := setupStatementService(t, db)
	txnSvc := transaction.NewService(
		repository.NewAccountRepository(db),
		repository.NewMovementRepository(db),
		repository.NewTransactionRepository(db),
		nil,
		db,
		4,
	)
	ctx := context.Background()

	customerID := uuid.New()
	testutil.SeedCustomerShadow(t, db, customerID, "Ada", "ada@example.com")
	acct := testutil.SeedAccount(t, db, customerID, 0)

	// One movement before the statement window, two inside it.
	_, err := txnSvc.Execute(ctx, transaction.ExecuteRequest{
		AccountID: acct.ID,
		Type:      domain.TransactionTypeDeposit,
		Amount:    100_000,
	})
	require.NoError(t, err)

	windowStart := time.Now().UTC()

	_, err = txnSvc.Execute(ctx, transaction.ExecuteRequest{
		AccountID: acct.ID,
		Type:      domain.TransactionTypeDeposit,
		Amount:    50_000,
	})
	require.NoError(t, err)
	_, err = txnSvc.Execute(ctx, transaction.ExecuteRequest{
		AccountID: acct.ID,
		Type:      domain.TransactionTypeWithdrawal,
		Amount:    30_000,
	})
	require.NoError(t, err)

	windowEnd := time.Now().UTC()

	stmt, err := statements.Generate(ctx, customerID, windowStart, windowEnd)
	require.NoError(t, err)
	require.Len(t, stmt.Accounts, 1)

	acctStmt := stmt.Accounts[0]
	assert.Equal(t, int64(100_000), acctStmt.OpeningBalance)
	assert.Equal(t, int64(120_000), acctStmt.ClosingBalance)
	require.Len(t, acctStmt.Movements, 2)
	assert.Equal(t, domain.MovementTypeDeposit, acctStmt.Movements[0].Type)
	assert.Equal(t, domain.MovementTypeWithdrawal, acctStmt.Movements[1].Type)
	assert.Equal(t, "Ada", stmt.Customer.Name)
}

func TestStatement_EmptyWindow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	statements := setupStatementService(t, db)
	ctx := context.Background()

	customerID := uuid.New()
	testutil.SeedCustomerShadow(t, db, customerID, "Ada", "ada@example.com")
	testutil.SeedAccount(t, db, customerID, 0)

	start := time.Now().UTC().Add(-time.Hour)
	end := time.Now().UTC()

	stmt, err := statements.Generate(ctx, customerID, start, end)
	require.NoError(t, err)
	require.Len(t, stmt.Accounts, 1)

	acctStmt := stmt.Accounts[0]
	assert.Equal(t, int64(0), acctStmt.OpeningBalance)
	assert.Equal(t, int64(0), acctStmt.ClosingBalance)
	assert.NotNil(t, acctStmt.Movements)
	assert.Empty(t, acctStmt.Movements)
}

func TestStatement_InvalidRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	statements := setupStatementService(t, db)

	customerID := uuid.New()
	testutil.SeedCustomerShadow(t, db, customerID, "Ada", "ada@example.com")

	now := time.Now().UTC()
	_, err := statements.Generate(context.Background(), customerID, now, now.Add(-time.Hour))
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestStatement_UnknownCustomer(t *testing.T) {
	db := testutil.SetupTestDB(t)
	statements := setupStatementService(t, db)

	now := time.Now().UTC()
	_, err := statements.Generate(context.Background(), uuid.New(), now.Add(-time.Hour), now)
	require.ErrorIs(t, err, domain.ErrCustomerNotFound)
}
