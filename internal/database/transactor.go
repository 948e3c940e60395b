package database

import (
	"context"
	"database/sql"
	"fmt"

	"bank-reconciliation-service/internal/logging"
)

// Transactor runs a unit of work inside one SQL transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type sqlTransactor struct {
	db *sql.DB
}

func NewTransactor(db *sql.DB) Transactor {
	return &sqlTransactor{db: db}
}

// WithinTx commits when fn returns nil and rolls back otherwise. The error
// from fn is returned unchanged so callers can classify it.
func (t *sqlTransactor) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logging.FromContext(ctx).Error("Rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
