package services

import (
	"database/sql"

	"bank-reconciliation-service/internal/config"
	"bank-reconciliation-service/internal/database"
	"bank-reconciliation-service/internal/matching"
	"bank-reconciliation-service/internal/repositories"
	"bank-reconciliation-service/internal/statement"
)

// Container holds all the services and manages their dependencies
type Container struct {
	Accounts       *BankAccountService
	Batches        *BatchTracker
	Imports        *ImportService
	Transactions   *TransactionService
	Reconciliation *ReconciliationService
	Resolution     *ResolutionService
}

// NewContainer wires repositories over db into the services, using cfg for
// matching and listing policy.
func NewContainer(db *sql.DB, cfg *config.Config) *Container {
	transactor := database.NewTransactor(db)

	accountRepo := repositories.NewBankAccountRepository(db)
	batchRepo := repositories.NewImportBatchRepository(db)
	txnRepo := repositories.NewBankTransactionRepository(db)
	journalRepo := repositories.NewJournalEntryRepository(db)
	auditRepo := repositories.NewAuditRepository(db)

	tracker := NewBatchTracker(batchRepo, txnRepo, accountRepo)

	return &Container{
		Accounts: NewBankAccountService(accountRepo),
		Batches:  tracker,
		Imports: NewImportService(
			transactor,
			accountRepo,
			txnRepo,
			auditRepo,
			tracker,
			statement.NewParser(statement.DefaultAliases),
			cfg.Import.DateLayouts,
		),
		Transactions: NewTransactionService(
			accountRepo,
			txnRepo,
			auditRepo,
			cfg.List.DefaultLimit,
			cfg.List.MaxLimit,
		),
		Reconciliation: NewReconciliationService(
			transactor,
			accountRepo,
			txnRepo,
			journalRepo,
			auditRepo,
			matching.NewMatchEngine(cfg.MatchingPolicy()),
		),
		Resolution: NewResolutionService(transactor, txnRepo, journalRepo, auditRepo),
	}
}
