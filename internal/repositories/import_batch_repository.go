package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bank-reconciliation-service/internal/apperrors"
	"bank-reconciliation-service/internal/models"
)

type ImportBatchRepository interface {
	// Create inserts and commits a processing batch outside any import transaction.
	Create(ctx context.Context, b *models.ImportBatch) error
	// Complete stores the final counters inside the import transaction.
	Complete(ctx context.Context, tx *sql.Tx, batchID int64, counts models.StatusCounts, completedAt time.Time) error
	Fail(ctx context.Context, batchID int64, reason string, failedAt time.Time) error
	GetByID(ctx context.Context, id int64) (*models.ImportBatch, error)
	ListByAccount(ctx context.Context, accountID int64, limit int) ([]*models.ImportBatch, error)
}

type importBatchRepository struct {
	db *sql.DB
}

func NewImportBatchRepository(db *sql.DB) ImportBatchRepository {
	return &importBatchRepository{db: db}
}

const importBatchColumns = `
	id, company_id, bank_account_id, file_name, file_type, total_records,
	pending_records, matched_records, status, failure_reason, created_by,
	created_at, completed_at`

func scanImportBatch(s rowScanner) (*models.ImportBatch, error) {
	b := &models.ImportBatch{}
	err := s.Scan(
		&b.ID,
		&b.CompanyID,
		&b.BankAccountID,
		&b.FileName,
		&b.FileType,
		&b.TotalRecords,
		&b.PendingRecords,
		&b.MatchedRecords,
		&b.Status,
		&b.FailureReason,
		&b.CreatedBy,
		&b.CreatedAt,
		&b.CompletedAt,
	)
	return b, err
}

func (r *importBatchRepository) Create(ctx context.Context, b *models.ImportBatch) error {
	query := `
		INSERT INTO import_batches (
			company_id, bank_account_id, file_name, file_type, total_records,
			pending_records, matched_records, status, created_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		b.CompanyID,
		b.BankAccountID,
		b.FileName,
		b.FileType,
		b.TotalRecords,
		b.PendingRecords,
		b.MatchedRecords,
		b.Status,
		b.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert import batch: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = id
	return nil
}

func (r *importBatchRepository) Complete(ctx context.Context, tx *sql.Tx, batchID int64, counts models.StatusCounts, completedAt time.Time) error {
	query := `
		UPDATE import_batches
		SET status = ?,
			pending_records = ?,
			matched_records = ?,
			completed_at = ?
		WHERE id = ? AND status = ?
	`
	result, err := querier(r.db, tx).ExecContext(ctx, query,
		models.BatchCompleted,
		counts.Pending,
		counts.Reconciled(),
		completedAt,
		batchID,
		models.BatchProcessing,
	)
	if err != nil {
		return fmt.Errorf("complete import batch: %w", err)
	}
	return expectOneRow(result, "complete import batch", batchID)
}

func (r *importBatchRepository) Fail(ctx context.Context, batchID int64, reason string, failedAt time.Time) error {
	query := `
		UPDATE import_batches
		SET status = ?,
			failure_reason = ?,
			completed_at = ?
		WHERE id = ? AND status = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		models.BatchFailed,
		reason,
		failedAt,
		batchID,
		models.BatchProcessing,
	)
	if err != nil {
		return fmt.Errorf("fail import batch: %w", err)
	}
	return expectOneRow(result, "fail import batch", batchID)
}

// expectOneRow turns an update that matched nothing into a precondition error:
// the batch is missing or no longer processing.
func expectOneRow(result sql.Result, op string, batchID int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &apperrors.Error{
			Kind:    apperrors.ErrPrecondition,
			Op:      op,
			BatchID: batchID,
			Err:     errors.New("batch is not processing"),
		}
	}
	return nil
}

func (r *importBatchRepository) GetByID(ctx context.Context, id int64) (*models.ImportBatch, error) {
	query := `SELECT` + importBatchColumns + `
		FROM import_batches
		WHERE id = ?
	`
	b, err := scanImportBatch(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &apperrors.Error{Kind: apperrors.ErrNotFound, Op: "get import batch", BatchID: id}
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *importBatchRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]*models.ImportBatch, error) {
	query := `SELECT` + importBatchColumns + `
		FROM import_batches
		WHERE bank_account_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []*models.ImportBatch
	for rows.Next() {
		b, err := scanImportBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, b)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return batches, nil
}
