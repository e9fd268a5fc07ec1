package service_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank/account-service/internal/domain"
	"github.com/corebank/account-service/internal/repository"
	"github.com/corebank/account-service/internal/service"
	"github.com/corebank/account-service/internal/testutil"
)

func setupAccountService(t *testing.T, db *sql.DB) *service.AccountService {
	t.Helper()
	return service.NewAccountService(
		repository.NewAccountRepository(db),
		repository.NewMovementRepository(db),
		repository.NewTransactionRepository(db),
		nil,
		db,
	)
}

func TestCreateAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupAccountService(t, db)
	ctx := context.Background()

	customerID := uuid.New()
	account, err := svc.CreateAccount(ctx, service.CreateAccountRequest{
		CustomerID:     customerID,
		Type:           domain.AccountTypeSavings,
		InitialBalance: 25_000,
	})
	require.NoError(t, err)

	assert.Equal(t, customerID, account.CustomerID)
	assert.Equal(t, domain.AccountTypeSavings, account.Type)
	assert.Equal(t, domain.AccountStatusActive, account.Status)
	assert.Equal(t, int64(1), account.Version)
	assert.Len(t, account.AccountNumber, 10)

	assert.Equal(t, int64(25_000), testutil.GetAccountBalance(t, db, account.ID))
	assert.Equal(t, 1, testutil.CountMovements(t, db, account.ID),
		"opening balance is backed by an initial deposit movement")
}

func TestCreateAccount_DuplicateNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupAccountService(t, db)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, service.CreateAccountRequest{
		CustomerID:    uuid.New(),
		AccountNumber: "1234567890",
		Type:          domain.AccountTypeChecking,
	})
	require.NoError(t, err)

	_, err = svc.CreateAccount(ctx, service.CreateAccountRequest{
		CustomerID:    uuid.New(),
		AccountNumber: "1234567890",
		Type:          domain.AccountTypeChecking,
	})
	require.ErrorIs(t, err, domain.ErrAccountNumberTaken)
}

func TestCreateAccount_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupAccountService(t, db)
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, service.CreateAccountRequest{
		CustomerID: uuid.New(),
		Type:       "money-market",
	})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = svc.CreateAccount(ctx, service.CreateAccountRequest{
		CustomerID:     uuid.New(),
		Type:           domain.AccountTypeChecking,
		InitialBalance: -1,
	})
	require.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestAccountStatusTransitions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupAccountService(t, db)
	ctx := context.Background()

	acct := testutil.SeedAccount(t, db, uuid.New(), 10_000)

	updated, err := svc.DeactivateAccount(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusInactive, updated.Status)
	assert.Greater(t, updated.Version, acct.Version)

	updated, err = svc.ActivateAccount(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountStatusActive, updated.Status)

	_, err = svc.DeactivateAccount(ctx, uuid.New())
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
}

func TestListCustomerAccounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := setupAccountService(t, db)
	ctx := context.Background()

	customerID := uuid.New()
	testutil.SeedAccount(t, db, customerID, 0)
	testutil.SeedAccount(t, db, customerID, 0)
	testutil.SeedAccount(t, db, uuid.New(), 0)

	accounts, err := svc.ListCustomerAccounts(ctx, customerID)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)

	none, err := svc.ListCustomerAccounts(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestGenerateAccountNumber(t *testing.T) {
	seen := map[string]bool{}
	for range 50 {
		n, err := service.GenerateAccountNumber()
		require.NoError(t, err)
		assert.Len(t, n, 10)
		for _, c := range n {
			assert.True(t, c >= '0' && c <= '9')
		}
		seen[n] = true
	}
	assert.Greater(t, len(seen), 1)
}
