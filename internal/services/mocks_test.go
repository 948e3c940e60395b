package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/stretchr/testify/mock"

	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/repositories"
)

// --- Transactor ---

type fakeTransactor struct {
	calls     int
	commitErr error
}

func (f *fakeTransactor) WithinTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	f.calls++
	if err := fn(nil); err != nil {
		return err
	}
	return f.commitErr
}

// --- BankAccountRepository ---

type MockBankAccountRepository struct {
	mock.Mock
}

func (m *MockBankAccountRepository) Create(ctx context.Context, account *models.BankAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockBankAccountRepository) GetByID(ctx context.Context, id int64) (*models.BankAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BankAccount), args.Error(1)
}

func (m *MockBankAccountRepository) ListByCompany(ctx context.Context, companyID string) ([]*models.BankAccount, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BankAccount), args.Error(1)
}

// --- ImportBatchRepository ---

type MockImportBatchRepository struct {
	mock.Mock
}

func (m *MockImportBatchRepository) Create(ctx context.Context, b *models.ImportBatch) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockImportBatchRepository) Complete(ctx context.Context, tx *sql.Tx, batchID int64, counts models.StatusCounts, completedAt time.Time) error {
	args := m.Called(ctx, tx, batchID, counts, completedAt)
	return args.Error(0)
}

func (m *MockImportBatchRepository) Fail(ctx context.Context, batchID int64, reason string, failedAt time.Time) error {
	args := m.Called(ctx, batchID, reason, failedAt)
	return args.Error(0)
}

func (m *MockImportBatchRepository) GetByID(ctx context.Context, id int64) (*models.ImportBatch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ImportBatch), args.Error(1)
}

func (m *MockImportBatchRepository) ListByAccount(ctx context.Context, accountID int64, limit int) ([]*models.ImportBatch, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ImportBatch), args.Error(1)
}

// --- BankTransactionRepository ---

type MockBankTransactionRepository struct {
	mock.Mock
}

func (m *MockBankTransactionRepository) InsertBatch(ctx context.Context, tx *sql.Tx, txns []*models.BankTransaction) error {
	args := m.Called(ctx, tx, txns)
	return args.Error(0)
}

func (m *MockBankTransactionRepository) GetByID(ctx context.Context, id int64) (*models.BankTransaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BankTransaction), args.Error(1)
}

func (m *MockBankTransactionRepository) List(ctx context.Context, f repositories.TransactionFilter) ([]*models.BankTransaction, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BankTransaction), args.Error(1)
}

func (m *MockBankTransactionRepository) ListPending(ctx context.Context, accountID int64) ([]*models.BankTransaction, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BankTransaction), args.Error(1)
}

func (m *MockBankTransactionRepository) TransitionStatus(ctx context.Context, tx *sql.Tx, id int64, to models.TransactionStatus, journalEntryID sql.NullInt64, userID string, at time.Time) error {
	args := m.Called(ctx, tx, id, to, journalEntryID, userID, at)
	return args.Error(0)
}

func (m *MockBankTransactionRepository) CountByStatus(ctx context.Context, tx *sql.Tx, batchID int64) (models.StatusCounts, error) {
	args := m.Called(ctx, tx, batchID)
	return args.Get(0).(models.StatusCounts), args.Error(1)
}

// --- JournalEntryRepository ---

type MockJournalEntryRepository struct {
	mock.Mock
}

func (m *MockJournalEntryRepository) GetByID(ctx context.Context, id int64) (*models.JournalEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JournalEntry), args.Error(1)
}

func (m *MockJournalEntryRepository) ListRecent(ctx context.Context, companyID string, limit int) ([]*models.JournalEntry, error) {
	args := m.Called(ctx, companyID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.JournalEntry), args.Error(1)
}

// --- AuditRepository ---

type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Create(ctx context.Context, tx *sql.Tx, audit *models.ReconciliationAudit) error {
	args := m.Called(ctx, tx, audit)
	return args.Error(0)
}

func (m *MockAuditRepository) ListByTransaction(ctx context.Context, transactionID int64) ([]*models.ReconciliationAudit, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ReconciliationAudit), args.Error(1)
}

// --- fixtures ---

var fixedNow = time.Date(2024, time.January, 8, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

const companyID = "3b8f9a52-5d0e-4f7c-9d43-1f2a6c0e7b11"

func activeAccount() *models.BankAccount {
	return &models.BankAccount{
		ID:        7,
		CompanyID: companyID,
		BankName:  "Al Rajhi",
		Currency:  "SAR",
		IsActive:  true,
	}
}

func companyCaller() models.Caller {
	return models.Caller{UserID: "u-1", CompanyID: companyID}
}

func auditWithAction(action string) any {
	return mock.MatchedBy(func(a *models.ReconciliationAudit) bool { return a.Action == action })
}
