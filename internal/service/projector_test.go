package service_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank/account-service/internal/domain"
	"github.com/corebank/account-service/internal/events"
	"github.com/corebank/account-service/internal/repository"
	"github.com/corebank/account-service/internal/service"
	"github.com/corebank/account-service/internal/testutil"
)

func setupProjector(t *testing.T, db *sql.DB) *service.Projector {
	t.Helper()
	return service.NewProjector(
		repository.NewAccountRepository(db),
		repository.NewCustomerShadowRepository(db),
		repository.NewProcessedEventRepository(db),
		repository.NewMovementRepository(db),
		repository.NewTransactionRepository(db),
		db,
		nil,
	)
}

func envelope(t *testing.T, eventType string, payload any) events.Envelope {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return events.Envelope{
		EventID:   uuid.New(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
}

func TestProjector_CustomerCreated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	p := setupProjector(t, db)
	ctx := context.Background()

	customerID := uuid.New()
	ev := envelope(t, events.CustomerCreated, events.CustomerCreatedEvent{
		CustomerID:     customerID,
		Name:           "Ada Lovelace",
		Email:          "ada@example.com",
		InitialBalance: 50_000,
	})

	require.NoError(t, p.HandleEvent(ctx, ev))

	require.Equal(t, 1, testutil.CountAccounts(t, db, customerID))

	var accountID uuid.UUID
	var balance int64
	require.NoError(t, db.QueryRow(
		`SELECT id, balance FROM accounts WHERE customer_id = $1`, customerID,
	).Scan(&accountID, &balance))
	assert.Equal(t, int64(50_000), balance)

	// The opening balance is backed by an initial deposit movement.
	assert.Equal(t, 1, testutil.CountMovements(t, db, accountID))

	var name string
	require.NoError(t, db.QueryRow(
		`SELECT name FROM customer_shadows WHERE customer_id = $1`, customerID,
	).Scan(&name))
	assert.Equal(t, "Ada Lovelace", name)
}

func TestProjector_CustomerCreated_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	p := setupProjector(t, db)
	ctx := context.Background()

	customerID := uuid.New()
	ev := envelope(t, events.CustomerCreated, events.CustomerCreatedEvent{
		CustomerID:     customerID,
		Name:           "Ada Lovelace",
		Email:          "ada@example.com",
		InitialBalance: 50_000,
	})

	// At-least-once delivery: the same envelope arrives three times.
	require.NoError(t, p.HandleEvent(ctx, ev))
	require.NoError(t, p.HandleEvent(ctx, ev))
	require.NoError(t, p.HandleEvent(ctx, ev))

	assert.Equal(t, 1, testutil.CountAccounts(t, db, customerID))

	var balance int64
	require.NoError(t, db.QueryRow(
		`SELECT balance FROM accounts WHERE customer_id = $1`, customerID,
	).Scan(&balance))
	assert.Equal(t, int64(50_000), balance)
}

func TestProjector_CustomerCreated_ZeroInitialBalance(t *testing.T) {
	db := testutil.SetupTestDB(t)
	p := setupProjector(t, db)
	ctx := context.Background()

	customerID := uuid.New()
	ev := envelope(t, events.CustomerCreated, events.CustomerCreatedEvent{
		CustomerID: customerID,
		Name:       "Grace Hopper",
		Email:      "grace@example.com",
	})

	require.NoError(t, p.HandleEvent(ctx, ev))

	var accountID uuid.UUID
	require.NoError(t, db.QueryRow(
		`SELECT id FROM accounts WHERE customer_id = $1`, customerID,
	).Scan(&accountID))
	assert.Equal(t, int64(0), testutil.GetAccountBalance(t, db, accountID))
	assert.Equal(t, 0, testutil.CountMovements(t, db, accountID))
}

func TestProjector_CustomerUpdated(t *testing.T) {
	db := testutil.SetupTestDB(t)
	p := setupProjector(t, db)
	ctx := context.Background()

	customerID := uuid.New()
	testutil.SeedCustomerShadow(t, db, customerID, "Old Name", "old@example.com")

	newName := "New Name"
	ev := envelope(t, events.CustomerUpdated, events.CustomerUpdatedEvent{
		CustomerID: customerID,
		Name:       &newName,
	})
	require.NoError(t, p.HandleEvent(ctx, ev))

	var name, email string
	require.NoError(t, db.QueryRow(
		`SELECT name, email FROM customer_shadows WHERE customer_id = $1`, customerID,
	).Scan(&name, &email))
	assert.Equal(t, "New Name", name)
	assert.Equal(t, "old@example.com", email, "absent fields stay unchanged")
}

func TestProjector_CustomerUpdated_UnknownCustomerDropped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	p := setupProjector(t, db)
	ctx := context.Background()

	newName := "Nobody"
	ev := envelope(t, events.CustomerUpdated, events.CustomerUpdatedEvent{
		CustomerID: uuid.New(),
		Name:       &newName,
	})

	// Unknown customer is logged and dropped, and the dedup mark still
	// commits so a redelivery will not reprocess it.
	require.NoError(t, p.HandleEvent(ctx, ev))

	var count int
	require.NoError(t, db.QueryRow(
		`SELECT COUNT(*) FROM processed_events WHERE event_id = $1`, ev.EventID,
	).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestProjector_StatusCascade(t *testing.T) {
	db := testutil.SetupTestDB(t)
	p := setupProjector(t, db)
	ctx := context.Background()

	customerID := uuid.New()
	testutil.SeedCustomerShadow(t, db, customerID, "Ada", "ada@example.com")
	first := testutil.SeedAccount(t, db, customerID, 10_000)
	second := testutil.SeedAccount(t, db, customerID, 20_000)
	other := testutil.SeedAccount(t, db, uuid.New(), 5_000)

	ev := envelope(t, events.CustomerStatusChanged, events.CustomerStatusChangedEvent{
		CustomerID: customerID,
		NewStatus:  "inactive",
	})
	require.NoError(t, p.HandleEvent(ctx, ev))

	assert.Equal(t, domain.AccountStatusInactive, testutil.GetAccountStatus(t, db, first.ID))
	assert.Equal(t, domain.AccountStatusInactive, testutil.GetAccountStatus(t, db, second.ID))
	assert.Equal(t, domain.AccountStatusActive, testutil.GetAccountStatus(t, db, other.ID),
		"other customers' accounts are untouched")

	var status domain.CustomerStatus
	require.NoError(t, db.QueryRow(
		`SELECT status FROM customer_shadows WHERE customer_id = $1`, customerID,
	).Scan(&status))
	assert.Equal(t, domain.CustomerStatusInactive, status)

	// Reactivation flips them back.
	reactivate := envelope(t, events.CustomerStatusChanged, events.CustomerStatusChangedEvent{
		CustomerID: customerID,
		NewStatus:  "active",
	})
	require.NoError(t, p.HandleEvent(ctx, reactivate))
	assert.Equal(t, domain.AccountStatusActive, testutil.GetAccountStatus(t, db, first.ID))
	assert.Equal(t, domain.AccountStatusActive, testutil.GetAccountStatus(t, db, second.ID))
}

func TestProjector_StatusCascade_BumpsAccountVersions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	p := setupProjector(t, db)
	ctx := context.Background()

	customerID := uuid.New()
	testutil.SeedCustomerShadow(t, db, customerID, "Ada", "ada@example.com")
	acct := testutil.SeedAccount(t, db, customerID, 10_000)
	before := testutil.GetAccountVersion(t, db, acct.ID)

	ev := envelope(t, events.CustomerStatusChanged, events.CustomerStatusChangedEvent{
		CustomerID: customerID,
		NewStatus:  "inactive",
	})
	require.NoError(t, p.HandleEvent(ctx, ev))

	assert.Equal(t, before+1, testutil.GetAccountVersion(t, db, acct.ID),
		"status flip participates in optimistic concurrency")
}

func TestProjector_MalformedAndUnknownEventsDropped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	p := setupProjector(t, db)
	ctx := context.Background()

	malformed := events.Envelope{
		EventID:   uuid.New(),
		Type:      events.CustomerCreated,
		Timestamp: time.Now().UTC(),
		Data:      json.RawMessage(`{"customerId": 42}`),
	}
	require.NoError(t, p.HandleEvent(ctx, malformed))

	unknown := envelope(t, "customer.deleted", map[string]string{"customerId": uuid.NewString()})
	require.NoError(t, p.HandleEvent(ctx, unknown))

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM processed_events`).Scan(&count))
	assert.Equal(t, 0, count, "dropped events are not marked processed")
}
