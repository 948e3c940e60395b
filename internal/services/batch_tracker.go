package services

import (
	"context"
	"database/sql"
	"time"

	"bank-reconciliation-service/internal/apperrors"
	"bank-reconciliation-service/internal/logging"
	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/repositories"
)

// BatchTracker owns the lifecycle of import batches: processing, then
// completed or failed.
type BatchTracker struct {
	batches  repositories.ImportBatchRepository
	txns     repositories.BankTransactionRepository
	accounts repositories.BankAccountRepository
	now      func() time.Time
}

func NewBatchTracker(
	batches repositories.ImportBatchRepository,
	txns repositories.BankTransactionRepository,
	accounts repositories.BankAccountRepository,
) *BatchTracker {
	return &BatchTracker{
		batches:  batches,
		txns:     txns,
		accounts: accounts,
		now:      time.Now,
	}
}

// BatchSummary pairs a batch with counts recomputed from its transactions.
// The batch's own counters are the snapshot taken at import time.
type BatchSummary struct {
	Batch  *models.ImportBatch
	Counts models.StatusCounts
}

// CreateBatch records a new processing batch and commits it at once, so a
// failed import still leaves a trace.
func (t *BatchTracker) CreateBatch(ctx context.Context, account *models.BankAccount, fileName, fileType string, totalRecords int, userID string) (*models.ImportBatch, error) {
	if totalRecords <= 0 {
		return nil, apperrors.Validationf("an import batch needs at least one record")
	}

	batch := &models.ImportBatch{
		CompanyID:      account.CompanyID,
		BankAccountID:  account.ID,
		FileName:       fileName,
		FileType:       fileType,
		TotalRecords:   totalRecords,
		PendingRecords: totalRecords,
		MatchedRecords: 0,
		Status:         models.BatchProcessing,
		CreatedBy:      userID,
		CreatedAt:      t.now().UTC(),
	}
	if err := t.batches.Create(ctx, batch); err != nil {
		return nil, &apperrors.Error{Kind: apperrors.ErrPersistence, Op: "create import batch", AccountID: account.ID, Err: err}
	}
	return batch, nil
}

// CompleteBatch marks the batch completed inside tx, with counters counted
// from the rows tx has just written.
func (t *BatchTracker) CompleteBatch(ctx context.Context, tx *sql.Tx, batchID int64) (models.StatusCounts, time.Time, error) {
	counts, err := t.txns.CountByStatus(ctx, tx, batchID)
	if err != nil {
		return counts, time.Time{}, err
	}
	completedAt := t.now().UTC()
	if err := t.batches.Complete(ctx, tx, batchID, counts, completedAt); err != nil {
		return counts, time.Time{}, err
	}
	return counts, completedAt, nil
}

// FailBatch marks the batch failed. It runs outside the rolled-back import
// transaction and ignores cancellation of ctx.
func (t *BatchTracker) FailBatch(ctx context.Context, batchID int64, reason string) error {
	ctx = context.WithoutCancel(ctx)
	if err := t.batches.Fail(ctx, batchID, reason, t.now().UTC()); err != nil {
		logging.FromContext(ctx).Error("Failed to mark import batch as failed", "batch_id", batchID, "error", err)
		return err
	}
	return nil
}

func (t *BatchTracker) GetBatch(ctx context.Context, caller models.Caller, batchID int64) (*models.ImportBatch, error) {
	batch, err := t.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(batch.CompanyID) {
		return nil, &apperrors.Error{Kind: apperrors.ErrNotFound, Op: "get import batch", BatchID: batchID}
	}
	return batch, nil
}

func (t *BatchTracker) ListBatches(ctx context.Context, caller models.Caller, accountID int64, limit int) ([]*models.ImportBatch, error) {
	if _, err := accountFor(ctx, t.accounts, caller, accountID); err != nil {
		return nil, err
	}
	return t.batches.ListByAccount(ctx, accountID, limit)
}

// Summary returns the batch with live per-status counts.
func (t *BatchTracker) Summary(ctx context.Context, caller models.Caller, batchID int64) (*BatchSummary, error) {
	batch, err := t.GetBatch(ctx, caller, batchID)
	if err != nil {
		return nil, err
	}
	counts, err := t.txns.CountByStatus(ctx, nil, batchID)
	if err != nil {
		return nil, err
	}
	return &BatchSummary{Batch: batch, Counts: counts}, nil
}
