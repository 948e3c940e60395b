package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bank-reconciliation-service/internal/apperrors"
	"bank-reconciliation-service/internal/models"
)

// insertChunkSize bounds the number of rows per multi-row INSERT so the
// placeholder count stays well under MySQL's 65535 limit.
const insertChunkSize = 500

// TransactionFilter narrows a transaction listing. Zero values mean "any".
type TransactionFilter struct {
	AccountID int64
	BatchID   int64
	Status    models.TransactionStatus
	Limit     int
	Offset    int
}

type BankTransactionRepository interface {
	// InsertBatch stores freshly imported transactions. IDs are not assigned back.
	InsertBatch(ctx context.Context, tx *sql.Tx, txns []*models.BankTransaction) error
	GetByID(ctx context.Context, id int64) (*models.BankTransaction, error)
	List(ctx context.Context, f TransactionFilter) ([]*models.BankTransaction, error)
	ListPending(ctx context.Context, accountID int64) ([]*models.BankTransaction, error)
	// TransitionStatus resolves a pending transaction. It fails with
	// ErrPrecondition when the row is no longer pending.
	TransitionStatus(ctx context.Context, tx *sql.Tx, id int64, to models.TransactionStatus, journalEntryID sql.NullInt64, userID string, at time.Time) error
	// CountByStatus tallies a batch. tx may be nil to read outside a transaction.
	CountByStatus(ctx context.Context, tx *sql.Tx, batchID int64) (models.StatusCounts, error)
}

type bankTransactionRepository struct {
	db *sql.DB
}

func NewBankTransactionRepository(db *sql.DB) BankTransactionRepository {
	return &bankTransactionRepository{db: db}
}

const bankTransactionColumns = `
	id, company_id, bank_account_id, import_batch_id, transaction_date,
	description, amount, transaction_type, reference, status,
	matched_journal_entry_id, resolved_by, resolved_at, created_at, updated_at`

func scanBankTransaction(s rowScanner) (*models.BankTransaction, error) {
	bt := &models.BankTransaction{}
	err := s.Scan(
		&bt.ID,
		&bt.CompanyID,
		&bt.BankAccountID,
		&bt.ImportBatchID,
		&bt.TransactionDate,
		&bt.Description,
		&bt.Amount,
		&bt.TransactionType,
		&bt.Reference,
		&bt.Status,
		&bt.MatchedJournalEntryID,
		&bt.ResolvedBy,
		&bt.ResolvedAt,
		&bt.CreatedAt,
		&bt.UpdatedAt,
	)
	return bt, err
}

func (r *bankTransactionRepository) InsertBatch(ctx context.Context, tx *sql.Tx, txns []*models.BankTransaction) error {
	for _, bt := range txns {
		if bt.Status != "" && bt.Status != models.StatusPending {
			return apperrors.Validationf("imported transaction must be pending, got %s", bt.Status)
		}
	}

	for start := 0; start < len(txns); start += insertChunkSize {
		end := min(start+insertChunkSize, len(txns))
		if err := r.insertChunk(ctx, tx, txns[start:end]); err != nil {
			return fmt.Errorf("insert bank transactions %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

func (r *bankTransactionRepository) insertChunk(ctx context.Context, tx *sql.Tx, chunk []*models.BankTransaction) error {
	var b strings.Builder
	b.WriteString(`
		INSERT INTO bank_transactions (
			company_id, bank_account_id, import_batch_id, transaction_date,
			description, amount, transaction_type, reference, status
		) VALUES `)

	args := make([]any, 0, len(chunk)*9)
	for i, bt := range chunk {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			bt.CompanyID,
			bt.BankAccountID,
			bt.ImportBatchID,
			bt.TransactionDate,
			bt.Description,
			bt.Amount,
			bt.TransactionType,
			bt.Reference,
			models.StatusPending,
		)
	}

	_, err := querier(r.db, tx).ExecContext(ctx, b.String(), args...)
	return err
}

func (r *bankTransactionRepository) GetByID(ctx context.Context, id int64) (*models.BankTransaction, error) {
	query := `SELECT` + bankTransactionColumns + `
		FROM bank_transactions
		WHERE id = ?
	`
	bt, err := scanBankTransaction(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &apperrors.Error{Kind: apperrors.ErrNotFound, Op: "get bank transaction", TransactionID: id}
	}
	if err != nil {
		return nil, err
	}
	return bt, nil
}

func (r *bankTransactionRepository) List(ctx context.Context, f TransactionFilter) ([]*models.BankTransaction, error) {
	var (
		where []string
		args  []any
	)
	if f.AccountID != 0 {
		where = append(where, "bank_account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.BatchID != 0 {
		where = append(where, "import_batch_id = ?")
		args = append(args, f.BatchID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}

	query := `SELECT` + bankTransactionColumns + `
		FROM bank_transactions`
	if len(where) > 0 {
		query += `
		WHERE ` + strings.Join(where, " AND ")
	}
	query += `
		ORDER BY transaction_date DESC, id DESC`
	if f.Limit > 0 {
		query += `
		LIMIT ? OFFSET ?`
		args = append(args, f.Limit, max(f.Offset, 0))
	}

	return r.query(ctx, query, args...)
}

func (r *bankTransactionRepository) ListPending(ctx context.Context, accountID int64) ([]*models.BankTransaction, error) {
	query := `SELECT` + bankTransactionColumns + `
		FROM bank_transactions
		WHERE bank_account_id = ? AND status = ?
		ORDER BY transaction_date, id
	`
	return r.query(ctx, query, accountID, models.StatusPending)
}

func (r *bankTransactionRepository) query(ctx context.Context, query string, args ...any) ([]*models.BankTransaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*models.BankTransaction
	for rows.Next() {
		bt, err := scanBankTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, bt)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return transactions, nil
}

func (r *bankTransactionRepository) TransitionStatus(ctx context.Context, tx *sql.Tx, id int64, to models.TransactionStatus, journalEntryID sql.NullInt64, userID string, at time.Time) error {
	if err := models.StatusPending.TransitionTo(to); err != nil {
		return &apperrors.Error{Kind: apperrors.ErrValidation, Op: "transition bank transaction", TransactionID: id, Err: err}
	}

	query := `
		UPDATE bank_transactions
		SET status = ?,
			matched_journal_entry_id = ?,
			resolved_by = ?,
			resolved_at = ?
		WHERE id = ? AND status = ?
	`
	result, err := querier(r.db, tx).ExecContext(ctx, query,
		to,
		journalEntryID,
		userID,
		at,
		id,
		models.StatusPending,
	)
	if err != nil {
		return fmt.Errorf("update bank transaction status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return &apperrors.Error{
			Kind:          apperrors.ErrPrecondition,
			Op:            "transition bank transaction",
			TransactionID: id,
			Err:           errors.New("transaction is not pending"),
		}
	}
	return nil
}

func (r *bankTransactionRepository) CountByStatus(ctx context.Context, tx *sql.Tx, batchID int64) (models.StatusCounts, error) {
	var counts models.StatusCounts
	query := `
		SELECT status, COUNT(*)
		FROM bank_transactions
		WHERE import_batch_id = ?
		GROUP BY status
	`
	rows, err := querier(r.db, tx).QueryContext(ctx, query, batchID)
	if err != nil {
		return counts, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			status models.TransactionStatus
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return counts, err
		}
		counts.Add(status, n)
	}
	return counts, rows.Err()
}
