package services

import (
	"context"
	"database/sql"
	"time"

	"bank-reconciliation-service/internal/apperrors"
	"bank-reconciliation-service/internal/database"
	"bank-reconciliation-service/internal/logging"
	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/repositories"
)

// ResolutionService applies manual decisions to pending bank transactions.
type ResolutionService struct {
	transactor database.Transactor
	txns       repositories.BankTransactionRepository
	journal    repositories.JournalEntryRepository
	audit      repositories.AuditRepository
	now        func() time.Time
}

func NewResolutionService(
	transactor database.Transactor,
	txns repositories.BankTransactionRepository,
	journal repositories.JournalEntryRepository,
	audit repositories.AuditRepository,
) *ResolutionService {
	return &ResolutionService{
		transactor: transactor,
		txns:       txns,
		journal:    journal,
		audit:      audit,
		now:        time.Now,
	}
}

// ManualMatch links a pending transaction to a journal entry chosen by a user.
// Repeating the same link on a manually matched transaction is a no-op.
func (s *ResolutionService) ManualMatch(ctx context.Context, caller models.Caller, transactionID, journalEntryID int64) (*models.BankTransaction, error) {
	const op = "manual match"

	bt, err := transactionFor(ctx, s.txns, caller, transactionID)
	if err != nil {
		return nil, err
	}
	if bt.Status == models.StatusManual && bt.MatchedJournalEntryID.Valid && bt.MatchedJournalEntryID.Int64 == journalEntryID {
		return bt, nil
	}
	if err := bt.Status.TransitionTo(models.StatusManual); err != nil {
		return nil, &apperrors.Error{Kind: apperrors.ErrPrecondition, Op: op, TransactionID: transactionID, Err: err}
	}

	entry, err := s.journal.GetByID(ctx, journalEntryID)
	if isNotFound(err) {
		return nil, apperrors.Validationf("journal entry %d does not exist", journalEntryID)
	}
	if err != nil {
		return nil, err
	}
	if entry.CompanyID != bt.CompanyID {
		return nil, apperrors.Validationf("journal entry %d belongs to another company", journalEntryID)
	}

	details := auditDetails(map[string]any{
		"journal_entry_id": entry.ID,
		"entry_number":     entry.EntryNumber,
	})
	link := sql.NullInt64{Int64: entry.ID, Valid: true}
	if err := s.resolve(ctx, caller, bt, models.StatusManual, link, models.AuditActionManualMatched, details); err != nil {
		return nil, err
	}
	return bt, nil
}

// Ignore excludes a pending transaction from reconciliation.
func (s *ResolutionService) Ignore(ctx context.Context, caller models.Caller, transactionID int64) (*models.BankTransaction, error) {
	bt, err := transactionFor(ctx, s.txns, caller, transactionID)
	if err != nil {
		return nil, err
	}
	if bt.Status == models.StatusIgnored {
		return bt, nil
	}
	if err := bt.Status.TransitionTo(models.StatusIgnored); err != nil {
		return nil, &apperrors.Error{Kind: apperrors.ErrPrecondition, Op: "ignore", TransactionID: transactionID, Err: err}
	}

	if err := s.resolve(ctx, caller, bt, models.StatusIgnored, sql.NullInt64{}, models.AuditActionIgnored, nil); err != nil {
		return nil, err
	}
	return bt, nil
}

func (s *ResolutionService) resolve(ctx context.Context, caller models.Caller, bt *models.BankTransaction, to models.TransactionStatus, link sql.NullInt64, action string, details []byte) error {
	at := s.now().UTC()
	err := s.transactor.WithinTx(ctx, func(tx *sql.Tx) error {
		if err := s.txns.TransitionStatus(ctx, tx, bt.ID, to, link, caller.Actor(), at); err != nil {
			return err
		}
		return s.audit.Create(ctx, tx, &models.ReconciliationAudit{
			BankTransactionID: sql.NullInt64{Int64: bt.ID, Valid: true},
			ImportBatchID:     sql.NullInt64{Int64: bt.ImportBatchID, Valid: bt.ImportBatchID != 0},
			Action:            action,
			Details:           details,
			UserID:            caller.Actor(),
		})
	})
	if err != nil {
		return err
	}

	bt.Status = to
	bt.MatchedJournalEntryID = link
	bt.ResolvedBy = sql.NullString{String: caller.Actor(), Valid: true}
	bt.ResolvedAt = sql.NullTime{Time: at, Valid: true}

	logging.FromContext(ctx).Info("Bank transaction resolved",
		"transaction_id", bt.ID, "status", to, "journal_entry_id", link.Int64)
	return nil
}
