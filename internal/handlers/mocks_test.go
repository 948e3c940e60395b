package handlers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/services"
)

type MockBankAccountService struct {
	mock.Mock
}

func (m *MockBankAccountService) Create(ctx context.Context, caller models.Caller, in services.CreateBankAccountInput) (*models.BankAccount, error) {
	args := m.Called(ctx, caller, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BankAccount), args.Error(1)
}

func (m *MockBankAccountService) Get(ctx context.Context, caller models.Caller, id int64) (*models.BankAccount, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BankAccount), args.Error(1)
}

func (m *MockBankAccountService) List(ctx context.Context, caller models.Caller) ([]*models.BankAccount, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BankAccount), args.Error(1)
}

type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) ImportStatement(ctx context.Context, caller models.Caller, req services.ImportRequest) (*services.ImportResult, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ImportResult), args.Error(1)
}

type MockBatchService struct {
	mock.Mock
}

func (m *MockBatchService) ListBatches(ctx context.Context, caller models.Caller, accountID int64, limit int) ([]*models.ImportBatch, error) {
	args := m.Called(ctx, caller, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ImportBatch), args.Error(1)
}

func (m *MockBatchService) Summary(ctx context.Context, caller models.Caller, batchID int64) (*services.BatchSummary, error) {
	args := m.Called(ctx, caller, batchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.BatchSummary), args.Error(1)
}

type MockTransactionService struct {
	mock.Mock
}

// ClampLimit is not mocked: it mirrors the service default of 100.
func (m *MockTransactionService) ClampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}

func (m *MockTransactionService) List(ctx context.Context, caller models.Caller, accountID int64, q services.TransactionQuery) ([]*models.BankTransaction, error) {
	args := m.Called(ctx, caller, accountID, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BankTransaction), args.Error(1)
}

func (m *MockTransactionService) Get(ctx context.Context, caller models.Caller, id int64) (*services.TransactionDetail, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TransactionDetail), args.Error(1)
}

type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) AutoMatch(ctx context.Context, caller models.Caller, accountID int64) (*services.AutoMatchResult, error) {
	args := m.Called(ctx, caller, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AutoMatchResult), args.Error(1)
}

type MockResolutionService struct {
	mock.Mock
}

func (m *MockResolutionService) ManualMatch(ctx context.Context, caller models.Caller, transactionID, journalEntryID int64) (*models.BankTransaction, error) {
	args := m.Called(ctx, caller, transactionID, journalEntryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BankTransaction), args.Error(1)
}

func (m *MockResolutionService) Ignore(ctx context.Context, caller models.Caller, transactionID int64) (*models.BankTransaction, error) {
	args := m.Called(ctx, caller, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BankTransaction), args.Error(1)
}
