package repositories

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank-reconciliation-service/internal/apperrors"
	"bank-reconciliation-service/internal/models"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

var transactionRowColumns = []string{
	"id", "company_id", "bank_account_id", "import_batch_id", "transaction_date",
	"description", "amount", "transaction_type", "reference", "status",
	"matched_journal_entry_id", "resolved_by", "resolved_at", "created_at", "updated_at",
}

func pendingTransactionRow(rows *sqlmock.Rows, id int64, amount string) *sqlmock.Rows {
	now := time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
	return rows.AddRow(
		id, "c-1", int64(7), int64(42), time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
		"Supplier", amount, "debit", nil, "pending",
		nil, nil, nil, now, now,
	)
}

func importedTransactions(n int) []*models.BankTransaction {
	out := make([]*models.BankTransaction, n)
	for i := range out {
		out[i] = &models.BankTransaction{
			CompanyID:       "c-1",
			BankAccountID:   7,
			ImportBatchID:   42,
			TransactionDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
			Amount:          decimal.NewFromInt(int64(i + 1)),
			TransactionType: models.TypeCredit,
		}
	}
	return out
}

func TestBankTransactionRepository_InsertBatchChunks(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBankTransactionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bank_transactions")).
		WillReturnResult(sqlmock.NewResult(1, insertChunkSize))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bank_transactions")).
		WillReturnResult(sqlmock.NewResult(501, 1))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.InsertBatch(context.Background(), tx, importedTransactions(insertChunkSize+1)))
	require.NoError(t, tx.Commit())
}

func TestBankTransactionRepository_InsertBatchForcesPending(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBankTransactionRepository(db)

	txns := importedTransactions(1)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bank_transactions")).
		WithArgs("c-1", int64(7), int64(42), sqlmock.AnyArg(), "", sqlmock.AnyArg(), "credit", sqlmock.AnyArg(), "pending").
		WillReturnResult(sqlmock.NewResult(1, 1))

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.InsertBatch(context.Background(), tx, txns))

	mock.ExpectRollback()
	require.NoError(t, tx.Rollback())
}

func TestBankTransactionRepository_InsertBatchRejectsResolved(t *testing.T) {
	db, _ := newMock(t)
	repo := NewBankTransactionRepository(db)

	txns := importedTransactions(2)
	txns[1].Status = models.StatusMatched

	err := repo.InsertBatch(context.Background(), nil, txns)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestBankTransactionRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBankTransactionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bank_transactions")).
		WithArgs(int64(11)).
		WillReturnRows(pendingTransactionRow(sqlmock.NewRows(transactionRowColumns), 11, "-200.00"))

	bt, err := repo.GetByID(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, int64(11), bt.ID)
	assert.Equal(t, models.StatusPending, bt.Status)
	assert.Equal(t, models.TypeDebit, bt.TransactionType)
	assert.True(t, bt.Amount.Equal(decimal.RequireFromString("-200")))
	assert.False(t, bt.MatchedJournalEntryID.Valid)
}

func TestBankTransactionRepository_GetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBankTransactionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bank_transactions")).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows(transactionRowColumns))

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), "transaction_id=99")
}

func TestBankTransactionRepository_ListFilters(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBankTransactionRepository(db)

	rows := sqlmock.NewRows(transactionRowColumns)
	pendingTransactionRow(rows, 2, "50.00")
	pendingTransactionRow(rows, 1, "-20.00")

	mock.ExpectQuery(`WHERE bank_account_id = \? AND status = \?\s+ORDER BY transaction_date DESC, id DESC\s+LIMIT \? OFFSET \?`).
		WithArgs(int64(7), "pending", 50, 10).
		WillReturnRows(rows)

	txns, err := repo.List(context.Background(), TransactionFilter{
		AccountID: 7,
		Status:    models.StatusPending,
		Limit:     50,
		Offset:    10,
	})
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, int64(2), txns[0].ID)
}

func TestBankTransactionRepository_ListPending(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBankTransactionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE bank_account_id = ? AND status = ?")).
		WithArgs(int64(7), "pending").
		WillReturnRows(pendingTransactionRow(sqlmock.NewRows(transactionRowColumns), 3, "10.00"))

	txns, err := repo.ListPending(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, txns, 1)
}

func TestBankTransactionRepository_TransitionStatus(t *testing.T) {
	at := time.Date(2024, 1, 9, 10, 0, 0, 0, time.UTC)

	t.Run("pending row is updated", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewBankTransactionRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("WHERE id = ? AND status = ?")).
			WithArgs("manual", sql.NullInt64{Int64: 5, Valid: true}, "u-1", at, int64(11), "pending").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.TransitionStatus(context.Background(), nil, 11, models.StatusManual, sql.NullInt64{Int64: 5, Valid: true}, "u-1", at)
		assert.NoError(t, err)
	})

	t.Run("already resolved row is a precondition failure", func(t *testing.T) {
		db, mock := newMock(t)
		repo := NewBankTransactionRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE bank_transactions")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.TransitionStatus(context.Background(), nil, 11, models.StatusIgnored, sql.NullInt64{}, "u-1", at)
		assert.ErrorIs(t, err, apperrors.ErrPrecondition)
	})

	t.Run("back to pending never reaches the database", func(t *testing.T) {
		db, _ := newMock(t)
		repo := NewBankTransactionRepository(db)

		err := repo.TransitionStatus(context.Background(), nil, 11, models.StatusPending, sql.NullInt64{}, "u-1", at)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})
}

func TestBankTransactionRepository_CountByStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBankTransactionRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY status")).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("pending", 3).
			AddRow("matched", 2).
			AddRow("ignored", 1))

	counts, err := repo.CountByStatus(context.Background(), nil, 42)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCounts{Pending: 3, Matched: 2, Ignored: 1}, counts)
	assert.Equal(t, 6, counts.Total())
}
