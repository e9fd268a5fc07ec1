package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/corebank/account-service/internal/domain"
)

const movementColumns = `id, seq, account_id, transaction_id, movement_type,
	amount, balance_after, description, created_at`

type MovementRepository struct {
	db *sql.DB
}

func NewMovementRepository(db *sql.DB) *MovementRepository {
	return &MovementRepository{db: db}
}

// Create appends a movement inside the caller's transaction so it commits
// atomically with the account balance update. Seq is filled in from the
// database sequence.
func (r *MovementRepository) Create(ctx context.Context, tx *sql.Tx, m *domain.Movement) error {
	err := tx.QueryRowContext(ctx,
		`INSERT INTO movements (
			id, account_id, transaction_id, movement_type,
			amount, balance_after, description, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq`,
		m.ID, m.AccountID, m.TransactionID, m.Type,
		m.Amount, m.BalanceAfter, m.Description, m.CreatedAt,
	).Scan(&m.Seq)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *MovementRepository) ListByAccountAndRange(ctx context.Context, accountID uuid.UUID, from, to time.Time) ([]domain.Movement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+movementColumns+` FROM movements
		WHERE account_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at, seq`,
		accountID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByAccountAndRange: %w", err)
	}
	defer rows.Close()

	movements := []domain.Movement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByAccountAndRange: scan: %w", err)
		}
		movements = append(movements, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByAccountAndRange: rows: %w", err)
	}
	return movements, nil
}

// LastBefore returns the newest movement strictly before t, or ErrNotFound.
func (r *MovementRepository) LastBefore(ctx context.Context, accountID uuid.UUID, t time.Time) (*domain.Movement, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+movementColumns+` FROM movements
		WHERE account_id = $1 AND created_at < $2
		ORDER BY created_at DESC, seq DESC LIMIT 1`,
		accountID, t,
	)
	m, err := scanMovement(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("LastBefore: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("LastBefore: %w", err)
	}
	return m, nil
}

func (r *MovementRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) ([]domain.Movement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+movementColumns+` FROM movements
		WHERE transaction_id = $1 ORDER BY created_at, seq`, transactionID,
	)
	if err != nil {
		return nil, fmt.Errorf("GetByTransactionID: %w", err)
	}
	defer rows.Close()

	var movements []domain.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("GetByTransactionID: scan: %w", err)
		}
		movements = append(movements, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GetByTransactionID: rows: %w", err)
	}
	return movements, nil
}

func scanMovement(s scanner) (*domain.Movement, error) {
	var m domain.Movement
	err := s.Scan(
		&m.ID, &m.Seq, &m.AccountID, &m.TransactionID, &m.Type,
		&m.Amount, &m.BalanceAfter, &m.Description, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
