package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/corebank/account-service/internal/domain"
)

// SeedAccount inserts an account row directly, bypassing the service layer.
func SeedAccount(t *testing.T, db *sql.DB, customerID uuid.UUID, balance int64) *domain.Account {
	t.Helper()

	account := &domain.Account{
		ID:            uuid.New(),
		CustomerID:    customerID,
		AccountNumber: uuid.New().String()[:10],
		Type:          domain.AccountTypeChecking,
		Balance:       balance,
		Version:       1,
		Status:        domain.AccountStatusActive,
		CreatedAt:     time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO accounts (id, customer_id, account_number, account_type, balance, version, status, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		account.ID, account.CustomerID, account.AccountNumber, account.Type,
		account.Balance, account.Version, account.Status, account.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}

	return account
}

func SeedCustomerShadow(t *testing.T, db *sql.DB, customerID uuid.UUID, name, email string) {
	t.Helper()

	now := time.Now().UTC()
	_, err := db.Exec(
		`INSERT INTO customer_shadows (customer_id, name, email, status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		customerID, name, email, domain.CustomerStatusActive, now, now,
	)
	if err != nil {
		t.Fatalf("seed customer shadow: %v", err)
	}
}

func GetAccountBalance(t *testing.T, db *sql.DB, accountID uuid.UUID) int64 {
	t.Helper()

	var balance int64
	if err := db.QueryRow(`SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&balance); err != nil {
		t.Fatalf("get account balance: %v", err)
	}
	return balance
}

func GetAccountVersion(t *testing.T, db *sql.DB, accountID uuid.UUID) int64 {
	t.Helper()

	var version int64
	if err := db.QueryRow(`SELECT version FROM accounts WHERE id = $1`, accountID).Scan(&version); err != nil {
		t.Fatalf("get account version: %v", err)
	}
	return version
}

func GetAccountStatus(t *testing.T, db *sql.DB, accountID uuid.UUID) domain.AccountStatus {
	t.Helper()

	var status domain.AccountStatus
	if err := db.QueryRow(`SELECT status FROM accounts WHERE id = $1`, accountID).Scan(&status); err != nil {
		t.Fatalf("get account status: %v", err)
	}
	return status
}

func CountMovements(t *testing.T, db *sql.DB, accountID uuid.UUID) int {
	t.Helper()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM movements WHERE account_id = $1`, accountID).Scan(&count); err != nil {
		t.Fatalf("count movements: %v", err)
	}
	return count
}

func CountAccounts(t *testing.T, db *sql.DB, customerID uuid.UUID) int {
	t.Helper()

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM accounts WHERE customer_id = $1`, customerID).Scan(&count); err != nil {
		t.Fatalf("count accounts: %v", err)
	}
	return count
}
