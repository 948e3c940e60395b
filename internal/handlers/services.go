package handlers

import (
	"context"

	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/services"
)

// The interfaces below are the parts of the service layer the HTTP handlers use.

type BankAccountService interface {
	Create(ctx context.Context, caller models.Caller, in services.CreateBankAccountInput) (*models.BankAccount, error)
	Get(ctx context.Context, caller models.Caller, id int64) (*models.BankAccount, error)
	List(ctx context.Context, caller models.Caller) ([]*models.BankAccount, error)
}

type ImportService interface {
	ImportStatement(ctx context.Context, caller models.Caller, req services.ImportRequest) (*services.ImportResult, error)
}

type BatchService interface {
	ListBatches(ctx context.Context, caller models.Caller, accountID int64, limit int) ([]*models.ImportBatch, error)
	Summary(ctx context.Context, caller models.Caller, batchID int64) (*services.BatchSummary, error)
}

type TransactionService interface {
	ClampLimit(limit int) int
	List(ctx context.Context, caller models.Caller, accountID int64, q services.TransactionQuery) ([]*models.BankTransaction, error)
	Get(ctx context.Context, caller models.Caller, id int64) (*services.TransactionDetail, error)
}

type ReconciliationService interface {
	AutoMatch(ctx context.Context, caller models.Caller, accountID int64) (*services.AutoMatchResult, error)
}

type ResolutionService interface {
	ManualMatch(ctx context.Context, caller models.Caller, transactionID, journalEntryID int64) (*models.BankTransaction, error)
	Ignore(ctx context.Context, caller models.Caller, transactionID int64) (*models.BankTransaction, error)
}

// Services groups the service dependencies of the router.
type Services struct {
	Accounts       BankAccountService
	Imports        ImportService
	Batches        BatchService
	Transactions   TransactionService
	Reconciliation ReconciliationService
	Resolution     ResolutionService
}

// ServicesFrom exposes a wired container to the router.
func ServicesFrom(c *services.Container) Services {
	return Services{
		Accounts:       c.Accounts,
		Imports:        c.Imports,
		Batches:        c.Batches,
		Transactions:   c.Transactions,
		Reconciliation: c.Reconciliation,
		Resolution:     c.Resolution,
	}
}
