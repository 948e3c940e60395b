package services

import (
	"context"

	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/repositories"
)

// TransactionService serves read access to imported bank transactions.
type TransactionService struct {
	accounts     repositories.BankAccountRepository
	txns         repositories.BankTransactionRepository
	audit        repositories.AuditRepository
	defaultLimit int
	maxLimit     int
}

func NewTransactionService(
	accounts repositories.BankAccountRepository,
	txns repositories.BankTransactionRepository,
	audit repositories.AuditRepository,
	defaultLimit, maxLimit int,
) *TransactionService {
	return &TransactionService{
		accounts:     accounts,
		txns:         txns,
		audit:        audit,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

type TransactionQuery struct {
	Status  models.TransactionStatus
	BatchID int64
	Limit   int
	Offset  int
}

type TransactionDetail struct {
	Transaction *models.BankTransaction
	AuditTrail  []*models.ReconciliationAudit
}

// ClampLimit applies the default page size and the configured maximum.
func (s *TransactionService) ClampLimit(limit int) int {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if s.maxLimit > 0 && limit > s.maxLimit {
		limit = s.maxLimit
	}
	return limit
}

// List returns the account's transactions, newest first.
func (s *TransactionService) List(ctx context.Context, caller models.Caller, accountID int64, q TransactionQuery) ([]*models.BankTransaction, error) {
	if _, err := accountFor(ctx, s.accounts, caller, accountID); err != nil {
		return nil, err
	}
	return s.txns.List(ctx, repositories.TransactionFilter{
		AccountID: accountID,
		BatchID:   q.BatchID,
		Status:    q.Status,
		Limit:     s.ClampLimit(q.Limit),
		Offset:    max(q.Offset, 0),
	})
}

// Get returns a transaction with its audit trail, including the import that created it.
func (s *TransactionService) Get(ctx context.Context, caller models.Caller, id int64) (*TransactionDetail, error) {
	bt, err := transactionFor(ctx, s.txns, caller, id)
	if err != nil {
		return nil, err
	}
	trail, err := s.audit.ListByTransaction(ctx, id)
	if err != nil {
		return nil, err
	}
	return &TransactionDetail{Transaction: bt, AuditTrail: trail}, nil
}
