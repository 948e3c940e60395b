package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"

	"bank-reconciliation-service/internal/apperrors"
	"bank-reconciliation-service/internal/logging"
	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/repositories"
)

type CreateBankAccountInput struct {
	BankName       string
	AccountNumber  string
	IBAN           string
	AccountType    string
	Currency       string
	OpeningBalance decimal.Decimal
}

type BankAccountService struct {
	accounts repositories.BankAccountRepository
}

func NewBankAccountService(accounts repositories.BankAccountRepository) *BankAccountService {
	return &BankAccountService{accounts: accounts}
}

// Create registers an account for the caller's company. The current balance
// starts at the opening balance.
func (s *BankAccountService) Create(ctx context.Context, caller models.Caller, in CreateBankAccountInput) (*models.BankAccount, error) {
	if caller.CompanyID == "" {
		return nil, apperrors.Validationf("a company is required to create a bank account")
	}
	if strings.TrimSpace(in.BankName) == "" || strings.TrimSpace(in.AccountNumber) == "" {
		return nil, apperrors.Validationf("bank name and account number are required")
	}
	if len(in.Currency) != 3 {
		return nil, apperrors.Validationf("currency must be a 3-letter code, got %q", in.Currency)
	}
	accountType := in.AccountType
	if accountType == "" {
		accountType = "current"
	}

	account := &models.BankAccount{
		CompanyID:      caller.CompanyID,
		BankName:       strings.TrimSpace(in.BankName),
		AccountNumber:  strings.TrimSpace(in.AccountNumber),
		IBAN:           sql.NullString{String: in.IBAN, Valid: in.IBAN != ""},
		AccountType:    accountType,
		Currency:       strings.ToUpper(in.Currency),
		OpeningBalance: in.OpeningBalance,
		CurrentBalance: in.OpeningBalance,
		IsActive:       true,
		CreatedBy:      caller.Actor(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info("Bank account created", "account_id", account.ID, "company_id", account.CompanyID)
	return account, nil
}

func (s *BankAccountService) Get(ctx context.Context, caller models.Caller, id int64) (*models.BankAccount, error) {
	return accountFor(ctx, s.accounts, caller, id)
}

func (s *BankAccountService) List(ctx context.Context, caller models.Caller) ([]*models.BankAccount, error) {
	return s.accounts.ListByCompany(ctx, caller.CompanyID)
}
