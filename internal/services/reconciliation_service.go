package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"bank-reconciliation-service/internal/apperrors"
	"bank-reconciliation-service/internal/database"
	"bank-reconciliation-service/internal/logging"
	"bank-reconciliation-service/internal/matching"
	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/repositories"
)

// ReconciliationService runs automatic matching of pending bank transactions
// against journal entries.
type ReconciliationService struct {
	transactor database.Transactor
	accounts   repositories.BankAccountRepository
	txns       repositories.BankTransactionRepository
	journal    repositories.JournalEntryRepository
	audit      repositories.AuditRepository
	engine     *matching.MatchEngine
	now        func() time.Time

	processingMutex sync.Mutex
	activeAccounts  map[int64]bool
}

func NewReconciliationService(
	transactor database.Transactor,
	accounts repositories.BankAccountRepository,
	txns repositories.BankTransactionRepository,
	journal repositories.JournalEntryRepository,
	audit repositories.AuditRepository,
	engine *matching.MatchEngine,
) *ReconciliationService {
	return &ReconciliationService{
		transactor:     transactor,
		accounts:       accounts,
		txns:           txns,
		journal:        journal,
		audit:          audit,
		engine:         engine,
		now:            time.Now,
		activeAccounts: make(map[int64]bool),
	}
}

type MatchedPair struct {
	TransactionID    int64           `json:"transaction_id"`
	JournalEntryID   int64           `json:"journal_entry_id"`
	AmountDifference decimal.Decimal `json:"amount_difference"`
	DayDifference    int             `json:"day_difference"`
}

type MatchFailure struct {
	TransactionID  int64  `json:"transaction_id"`
	JournalEntryID int64  `json:"journal_entry_id"`
	Error          string `json:"error"`
}

type AutoMatchResult struct {
	AccountID int64          `json:"account_id"`
	Attempted int            `json:"attempted"`
	Matched   int            `json:"matched"`
	Matches   []MatchedPair  `json:"matches"`
	Failures  []MatchFailure `json:"failures"`
}

// AutoMatch pairs each pending transaction of the account with the first
// journal entry inside the tolerance window and marks it matched. A failed
// write is recorded and the run continues with the next transaction.
func (s *ReconciliationService) AutoMatch(ctx context.Context, caller models.Caller, accountID int64) (*AutoMatchResult, error) {
	account, err := accountFor(ctx, s.accounts, caller, accountID)
	if err != nil {
		return nil, err
	}

	if !s.acquire(accountID) {
		return nil, &apperrors.Error{Kind: apperrors.ErrConflict, Op: "auto-match", AccountID: accountID}
	}
	defer s.release(accountID)

	logger := logging.FromContext(ctx).With("account_id", accountID)

	pending, err := s.txns.ListPending(ctx, accountID)
	if err != nil {
		return nil, err
	}
	result := &AutoMatchResult{
		AccountID: accountID,
		Matches:   []MatchedPair{},
		Failures:  []MatchFailure{},
	}
	if len(pending) == 0 {
		return result, nil
	}

	poolSize := s.engine.Policy().CandidatePoolSize
	if poolSize <= 0 {
		poolSize = matching.DefaultCandidatePoolSize
	}
	entries, err := s.journal.ListRecent(ctx, account.CompanyID, poolSize)
	if err != nil {
		return nil, err
	}
	pool := s.engine.NewPool(entries)

	for _, bt := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Attempted++

		candidate := s.engine.FindCandidate(bt, pool.Available())
		if candidate == nil {
			continue
		}

		if err := s.commitMatch(ctx, caller, candidate); err != nil {
			wrapped := &apperrors.Error{Kind: apperrors.ErrMatchUpdate, Op: "auto-match", AccountID: accountID, TransactionID: bt.ID, Err: err}
			logger.Warn("Match update failed", "transaction_id", bt.ID, "journal_entry_id", candidate.Entry.ID, "error", err)
			result.Failures = append(result.Failures, MatchFailure{
				TransactionID:  bt.ID,
				JournalEntryID: candidate.Entry.ID,
				Error:          wrapped.Error(),
			})
			continue
		}

		pool.Claim(candidate.Entry.ID)
		result.Matched++
		result.Matches = append(result.Matches, MatchedPair{
			TransactionID:    bt.ID,
			JournalEntryID:   candidate.Entry.ID,
			AmountDifference: candidate.AmountDifference,
			DayDifference:    candidate.DayDifference,
		})
	}

	logger.Info("Auto-match completed",
		"attempted", result.Attempted,
		"matched", result.Matched,
		"failed", len(result.Failures),
	)
	return result, nil
}

func (s *ReconciliationService) commitMatch(ctx context.Context, caller models.Caller, c *matching.MatchCandidate) error {
	return s.transactor.WithinTx(ctx, func(tx *sql.Tx) error {
		err := s.txns.TransitionStatus(ctx, tx,
			c.Transaction.ID,
			models.StatusMatched,
			sql.NullInt64{Int64: c.Entry.ID, Valid: true},
			caller.Actor(),
			s.now().UTC(),
		)
		if err != nil {
			return err
		}
		return s.audit.Create(ctx, tx, &models.ReconciliationAudit{
			BankTransactionID: sql.NullInt64{Int64: c.Transaction.ID, Valid: true},
			ImportBatchID:     sql.NullInt64{Int64: c.Transaction.ImportBatchID, Valid: c.Transaction.ImportBatchID != 0},
			Action:            models.AuditActionAutoMatched,
			Details: auditDetails(map[string]any{
				"journal_entry_id":  c.Entry.ID,
				"amount_difference": c.AmountDifference.String(),
				"day_difference":    c.DayDifference,
			}),
			UserID: caller.Actor(),
		})
	})
}

func (s *ReconciliationService) acquire(accountID int64) bool {
	s.processingMutex.Lock()
	defer s.processingMutex.Unlock()
	if s.activeAccounts[accountID] {
		return false
	}
	s.activeAccounts[accountID] = true
	return true
}

func (s *ReconciliationService) release(accountID int64) {
	s.processingMutex.Lock()
	delete(s.activeAccounts, accountID)
	s.processingMutex.Unlock()
}
