package repositories

import (
	"context"
	"database/sql"

	"bank-reconciliation-service/internal/models"
)

type AuditRepository interface {
	// Create writes an audit row. tx may be nil for events recorded after a rollback.
	Create(ctx context.Context, tx *sql.Tx, audit *models.ReconciliationAudit) error
	ListByTransaction(ctx context.Context, transactionID int64) ([]*models.ReconciliationAudit, error)
}

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, tx *sql.Tx, audit *models.ReconciliationAudit) error {
	query := `
		INSERT INTO reconciliation_audit (
			bank_transaction_id, import_batch_id, action, details, user_id
		) VALUES (?, ?, ?, ?, ?)
	`
	// Sent as a string: MySQL refuses JSON built from a binary-charset value.
	var details any
	if len(audit.Details) > 0 {
		details = string(audit.Details)
	}
	result, err := querier(r.db, tx).ExecContext(ctx, query,
		audit.BankTransactionID,
		audit.ImportBatchID,
		audit.Action,
		details,
		audit.UserID,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	audit.ID = id
	return nil
}

func (r *auditRepository) ListByTransaction(ctx context.Context, transactionID int64) ([]*models.ReconciliationAudit, error) {
	query := `
		SELECT a.id, a.bank_transaction_id, a.import_batch_id, a.action,
		       a.details, a.user_id, a.created_at
		FROM reconciliation_audit a
		WHERE a.bank_transaction_id = ?
		   OR a.import_batch_id = (
		       SELECT bt.import_batch_id FROM bank_transactions bt WHERE bt.id = ?
		   )
		ORDER BY a.created_at, a.id
	`
	rows, err := r.db.QueryContext(ctx, query, transactionID, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.ReconciliationAudit
	for rows.Next() {
		a := &models.ReconciliationAudit{}
		var details []byte
		err := rows.Scan(
			&a.ID,
			&a.BankTransactionID,
			&a.ImportBatchID,
			&a.Action,
			&details,
			&a.UserID,
			&a.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if len(details) > 0 {
			a.Details = details
		}
		entries = append(entries, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
