package services

import (
	"context"
	"errors"

	"bank-reconciliation-service/internal/apperrors"
	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/repositories"
)

// accountFor loads an account the caller may see. Accounts of other companies
// are reported as not found so their existence is not disclosed.
func accountFor(ctx context.Context, repo repositories.BankAccountRepository, caller models.Caller, accountID int64) (*models.BankAccount, error) {
	account, err := repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(account.CompanyID) {
		return nil, &apperrors.Error{Kind: apperrors.ErrNotFound, Op: "get bank account", AccountID: accountID}
	}
	return account, nil
}

// transactionFor is accountFor for bank transactions.
func transactionFor(ctx context.Context, repo repositories.BankTransactionRepository, caller models.Caller, id int64) (*models.BankTransaction, error) {
	bt, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(bt.CompanyID) {
		return nil, &apperrors.Error{Kind: apperrors.ErrNotFound, Op: "get bank transaction", TransactionID: id}
	}
	return bt, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}
