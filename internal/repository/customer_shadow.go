package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/corebank/account-service/internal/domain"
)

const customerShadowColumns = `customer_id, name, email, status, created_at, updated_at`

type CustomerShadowRepository struct {
	db *sql.DB
}

func NewCustomerShadowRepository(db *sql.DB) *CustomerShadowRepository {
	return &CustomerShadowRepository{db: db}
}

func (r *CustomerShadowRepository) GetByID(ctx context.Context, customerID uuid.UUID) (*domain.CustomerShadow, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+customerShadowColumns+` FROM customer_shadows WHERE customer_id = $1`,
		customerID,
	)
	c, err := scanCustomerShadow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return c, nil
}

// Upsert makes shadow creation replay-safe independent of the dedup layer: a
// redelivered create event converges on the same row.
func (r *CustomerShadowRepository) Upsert(ctx context.Context, tx *sql.Tx, c *domain.CustomerShadow) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO customer_shadows (customer_id, name, email, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (customer_id) DO UPDATE
		SET name = EXCLUDED.name, email = EXCLUDED.email, updated_at = EXCLUDED.updated_at`,
		c.CustomerID, c.Name, c.Email, c.Status, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}

func (r *CustomerShadowRepository) UpdateFields(ctx context.Context, tx *sql.Tx, customerID uuid.UUID, name, email *string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE customer_shadows
		SET name = COALESCE($1, name), email = COALESCE($2, email), updated_at = now()
		WHERE customer_id = $3`,
		name, email, customerID,
	)
	if err != nil {
		return fmt.Errorf("UpdateFields: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateFields: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateFields: %w", domain.ErrCustomerNotFound)
	}
	return nil
}

func (r *CustomerShadowRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, customerID uuid.UUID, status domain.CustomerStatus) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE customer_shadows SET status = $1, updated_at = now() WHERE customer_id = $2`,
		status, customerID,
	)
	if err != nil {
		return fmt.Errorf("UpdateStatus: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateStatus: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateStatus: %w", domain.ErrCustomerNotFound)
	}
	return nil
}

func scanCustomerShadow(s scanner) (*domain.CustomerShadow, error) {
	var c domain.CustomerShadow
	err := s.Scan(
		&c.CustomerID, &c.Name, &c.Email, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
