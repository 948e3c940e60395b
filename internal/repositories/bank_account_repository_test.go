package repositories

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank-reconciliation-service/internal/apperrors"
	"bank-reconciliation-service/internal/models"
)

var accountRowColumns = []string{
	"id", "company_id", "bank_name", "account_number", "iban", "account_type", "currency",
	"opening_balance", "current_balance", "is_active", "created_by", "created_at", "updated_at",
}

func TestBankAccountRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBankAccountRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bank_accounts")).
		WithArgs("c-1", "Al Rajhi", "0001", sql.NullString{String: "SA03", Valid: true}, "current", "SAR", "1500", "1500", true, "u-1").
		WillReturnResult(sqlmock.NewResult(7, 1))

	a := &models.BankAccount{
		CompanyID:      "c-1",
		BankName:       "Al Rajhi",
		AccountNumber:  "0001",
		IBAN:           sql.NullString{String: "SA03", Valid: true},
		AccountType:    "current",
		Currency:       "SAR",
		OpeningBalance: decimal.RequireFromString("1500"),
		CurrentBalance: decimal.RequireFromString("1500"),
		IsActive:       true,
		CreatedBy:      "u-1",
	}
	require.NoError(t, repo.Create(context.Background(), a))
	assert.Equal(t, int64(7), a.ID)
}

func TestBankAccountRepository_CreateDuplicateNumber(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBankAccountRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO bank_accounts")).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'c-1-0001'"})

	err := repo.Create(context.Background(), &models.BankAccount{CompanyID: "c-1", AccountNumber: "0001"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "0001")
}

func TestBankAccountRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBankAccountRepository(db)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM bank_accounts")).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(accountRowColumns).AddRow(
			int64(7), "c-1", "Al Rajhi", "0001", nil, "current", "SAR", "1500.00", "1500.00", true, "u-1", now, now,
		))

	a, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "SAR", a.Currency)
	assert.False(t, a.IBAN.Valid)
	assert.True(t, a.OpeningBalance.Equal(decimal.RequireFromString("1500")))

	mock.ExpectQuery(regexp.QuoteMeta("FROM bank_accounts")).
		WithArgs(int64(8)).
		WillReturnRows(sqlmock.NewRows(accountRowColumns))

	_, err = repo.GetByID(context.Background(), 8)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestBankAccountRepository_ListByCompany(t *testing.T) {
	db, mock := newMock(t)
	repo := NewBankAccountRepository(db)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE (? = '' OR company_id = ?)")).
		WithArgs("c-1", "c-1").
		WillReturnRows(sqlmock.NewRows(accountRowColumns).AddRow(
			int64(7), "c-1", "Al Rajhi", "0001", "SA03", "current", "SAR", "0", "0", true, "u-1", now, now,
		))

	accounts, err := repo.ListByCompany(context.Background(), "c-1")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "SA03", accounts[0].IBAN.String)
}
