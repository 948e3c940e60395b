package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bank-reconciliation-service/internal/apperrors"
	"bank-reconciliation-service/internal/models"
)

type BankAccountRepository interface {
	Create(ctx context.Context, account *models.BankAccount) error
	GetByID(ctx context.Context, id int64) (*models.BankAccount, error)
	// ListByCompany returns every account when companyID is empty.
	ListByCompany(ctx context.Context, companyID string) ([]*models.BankAccount, error)
}

type bankAccountRepository struct {
	db *sql.DB
}

func NewBankAccountRepository(db *sql.DB) BankAccountRepository {
	return &bankAccountRepository{db: db}
}

const bankAccountColumns = `
	id, company_id, bank_name, account_number, iban, account_type, currency,
	opening_balance, current_balance, is_active, created_by, created_at, updated_at`

func scanBankAccount(s rowScanner) (*models.BankAccount, error) {
	a := &models.BankAccount{}
	err := s.Scan(
		&a.ID,
		&a.CompanyID,
		&a.BankName,
		&a.AccountNumber,
		&a.IBAN,
		&a.AccountType,
		&a.Currency,
		&a.OpeningBalance,
		&a.CurrentBalance,
		&a.IsActive,
		&a.CreatedBy,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

func (r *bankAccountRepository) Create(ctx context.Context, a *models.BankAccount) error {
	query := `
		INSERT INTO bank_accounts (
			company_id, bank_name, account_number, iban, account_type, currency,
			opening_balance, current_balance, is_active, created_by
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		a.CompanyID,
		a.BankName,
		a.AccountNumber,
		a.IBAN,
		a.AccountType,
		a.Currency,
		a.OpeningBalance,
		a.CurrentBalance,
		a.IsActive,
		a.CreatedBy,
	)
	if isDuplicateKey(err) {
		return apperrors.Validationf("account number %s is already registered", a.AccountNumber)
	}
	if err != nil {
		return fmt.Errorf("insert bank account: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = id
	return nil
}

func (r *bankAccountRepository) GetByID(ctx context.Context, id int64) (*models.BankAccount, error) {
	query := `SELECT` + bankAccountColumns + `
		FROM bank_accounts
		WHERE id = ?
	`
	a, err := scanBankAccount(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &apperrors.Error{Kind: apperrors.ErrNotFound, Op: "get bank account", AccountID: id}
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *bankAccountRepository) ListByCompany(ctx context.Context, companyID string) ([]*models.BankAccount, error) {
	query := `SELECT` + bankAccountColumns + `
		FROM bank_accounts
		WHERE (? = '' OR company_id = ?)
		ORDER BY id
	`
	rows, err := r.db.QueryContext(ctx, query, companyID, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*models.BankAccount
	for rows.Next() {
		a, err := scanBankAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return accounts, nil
}
