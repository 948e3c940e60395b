package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"bank-reconciliation-service/internal/apperrors"
	"bank-reconciliation-service/internal/database"
	"bank-reconciliation-service/internal/logging"
	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/repositories"
	"bank-reconciliation-service/internal/statement"
)

// ImportService turns an uploaded statement into a batch of pending transactions.
type ImportService struct {
	transactor  database.Transactor
	accounts    repositories.BankAccountRepository
	txns        repositories.BankTransactionRepository
	audit       repositories.AuditRepository
	tracker     *BatchTracker
	parser      *statement.Parser
	dateLayouts []string
}

func NewImportService(
	transactor database.Transactor,
	accounts repositories.BankAccountRepository,
	txns repositories.BankTransactionRepository,
	audit repositories.AuditRepository,
	tracker *BatchTracker,
	parser *statement.Parser,
	dateLayouts []string,
) *ImportService {
	return &ImportService{
		transactor:  transactor,
		accounts:    accounts,
		txns:        txns,
		audit:       audit,
		tracker:     tracker,
		parser:      parser,
		dateLayouts: dateLayouts,
	}
}

type ImportRequest struct {
	AccountID int64
	FileName  string
	Content   io.Reader
}

type ImportResult struct {
	Batch     *models.ImportBatch
	Imported  int
	TotalRows int
	Skipped   []statement.SkippedRow
}

// fileTypeOf accepts the extensions a delimited export is saved with.
func fileTypeOf(name string) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case "", ".csv", ".txt", ".tsv":
		return "csv", nil
	default:
		return "", apperrors.Validationf("unsupported statement file type %q", ext)
	}
}

// ImportStatement parses the statement, then stores every transaction in one
// SQL transaction together with the batch completion. Nothing is persisted
// when the file cannot be parsed. When storage fails the batch is kept and
// marked failed.
func (s *ImportService) ImportStatement(ctx context.Context, caller models.Caller, req ImportRequest) (*ImportResult, error) {
	const op = "import statement"
	logger := logging.FromContext(ctx).With("account_id", req.AccountID, "file_name", req.FileName)

	account, err := accountFor(ctx, s.accounts, caller, req.AccountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive {
		return nil, apperrors.Validationf("bank account %d is inactive", account.ID)
	}
	fileType, err := fileTypeOf(req.FileName)
	if err != nil {
		return nil, err
	}

	parsed, err := s.parser.ParseCSV(req.Content)
	if err != nil {
		return nil, &apperrors.Error{Kind: apperrors.ErrParse, Op: op, AccountID: account.ID, Err: err}
	}

	rows := make([]*models.BankTransaction, 0, len(parsed.Transactions))
	for _, t := range parsed.Transactions {
		date, err := statement.ParseDate(t.Date, s.dateLayouts)
		if err != nil {
			return nil, &apperrors.Error{
				Kind:      apperrors.ErrParse,
				Op:        op,
				AccountID: account.ID,
				Err:       fmt.Errorf("line %d: %w", t.Line, err),
			}
		}
		rows = append(rows, &models.BankTransaction{
			CompanyID:       account.CompanyID,
			BankAccountID:   account.ID,
			TransactionDate: date,
			Description:     t.Description,
			Amount:          t.SignedAmount(),
			TransactionType: t.Type,
			Reference:       sql.NullString{String: t.Reference, Valid: t.Reference != ""},
			Status:          models.StatusPending,
		})
	}

	batch, err := s.tracker.CreateBatch(ctx, account, req.FileName, fileType, len(rows), caller.Actor())
	if err != nil {
		return nil, err
	}
	for _, bt := range rows {
		bt.ImportBatchID = batch.ID
	}

	var (
		counts      models.StatusCounts
		completedAt time.Time
	)
	err = s.transactor.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.txns.InsertBatch(ctx, tx, rows); err != nil {
			return err
		}
		var err error
		counts, completedAt, err = s.tracker.CompleteBatch(ctx, tx, batch.ID)
		if err != nil {
			return err
		}
		return s.audit.Create(ctx, tx, &models.ReconciliationAudit{
			ImportBatchID: sql.NullInt64{Int64: batch.ID, Valid: true},
			Action:        models.AuditActionImported,
			Details: auditDetails(map[string]any{
				"file_name":     req.FileName,
				"total_records": counts.Total(),
				"skipped_rows":  len(parsed.Skipped),
			}),
			UserID: caller.Actor(),
		})
	})
	if err != nil {
		s.recordFailure(ctx, caller, batch, err)
		logger.Error("Statement import failed", "batch_id", batch.ID, "error", err)
		return nil, &apperrors.Error{Kind: apperrors.ErrPersistence, Op: op, AccountID: account.ID, BatchID: batch.ID, Err: err}
	}

	batch.Status = models.BatchCompleted
	batch.TotalRecords = counts.Total()
	batch.PendingRecords = counts.Pending
	batch.MatchedRecords = counts.Reconciled()
	batch.CompletedAt = sql.NullTime{Time: completedAt, Valid: true}

	logger.Info("Statement imported",
		"batch_id", batch.ID,
		"imported", len(rows),
		"skipped", len(parsed.Skipped),
	)
	return &ImportResult{
		Batch:     batch,
		Imported:  len(rows),
		TotalRows: parsed.TotalRows,
		Skipped:   parsed.Skipped,
	}, nil
}

func (s *ImportService) recordFailure(ctx context.Context, caller models.Caller, batch *models.ImportBatch, cause error) {
	ctx = context.WithoutCancel(ctx)
	if err := s.tracker.FailBatch(ctx, batch.ID, cause.Error()); err == nil {
		batch.Status = models.BatchFailed
		batch.FailureReason = sql.NullString{String: cause.Error(), Valid: true}
	}
	err := s.audit.Create(ctx, nil, &models.ReconciliationAudit{
		ImportBatchID: sql.NullInt64{Int64: batch.ID, Valid: true},
		Action:        models.AuditActionImportFailed,
		Details:       auditDetails(map[string]any{"error": cause.Error()}),
		UserID:        caller.Actor(),
	})
	if err != nil {
		logging.FromContext(ctx).Error("Failed to audit import failure", "batch_id", batch.ID, "error", err)
	}
}

func auditDetails(v map[string]any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
