package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// BankAccount is a company bank account that statements are imported into.
type BankAccount struct {
	ID             int64           `db:"id" json:"id"`
	CompanyID      string          `db:"company_id" json:"company_id"`
	BankName       string          `db:"bank_name" json:"bank_name"`
	AccountNumber  string          `db:"account_number" json:"account_number"`
	IBAN           sql.NullString  `db:"iban" json:"-"`
	AccountType    string          `db:"account_type" json:"account_type"`
	Currency       string          `db:"currency" json:"currency"`
	OpeningBalance decimal.Decimal `db:"opening_balance" json:"opening_balance"`
	CurrentBalance decimal.Decimal `db:"current_balance" json:"current_balance"`
	IsActive       bool            `db:"is_active" json:"is_active"`
	CreatedBy      string          `db:"created_by" json:"created_by"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"-"`
}

// ImportBatch records one statement upload. It is the traceability unit for
// every transaction parsed from that file.
type ImportBatch struct {
	ID             int64          `db:"id" json:"id"`
	CompanyID      string         `db:"company_id" json:"company_id"`
	BankAccountID  int64          `db:"bank_account_id" json:"bank_account_id"`
	FileName       string         `db:"file_name" json:"file_name"`
	FileType       string         `db:"file_type" json:"file_type"`
	TotalRecords   int            `db:"total_records" json:"total_records"`
	PendingRecords int            `db:"pending_records" json:"pending_records"`
	MatchedRecords int            `db:"matched_records" json:"matched_records"`
	Status         BatchStatus    `db:"status" json:"status"`
	FailureReason  sql.NullString `db:"failure_reason" json:"-"`
	CreatedBy      string         `db:"created_by" json:"created_by"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	CompletedAt    sql.NullTime   `db:"completed_at" json:"-"`
}

// BankTransaction is one normalized statement line. Amount is signed:
// credits are positive, debits negative.
type BankTransaction struct {
	ID                    int64             `db:"id" json:"id"`
	CompanyID             string            `db:"company_id" json:"company_id"`
	BankAccountID         int64             `db:"bank_account_id" json:"bank_account_id"`
	ImportBatchID         int64             `db:"import_batch_id" json:"import_batch_id"`
	TransactionDate       time.Time         `db:"transaction_date" json:"transaction_date"`
	Description           string            `db:"description" json:"description"`
	Amount                decimal.Decimal   `db:"amount" json:"amount"`
	TransactionType       TransactionType   `db:"transaction_type" json:"transaction_type"`
	Reference             sql.NullString    `db:"reference" json:"-"`
	Status                TransactionStatus `db:"status" json:"status"`
	MatchedJournalEntryID sql.NullInt64     `db:"matched_journal_entry_id" json:"-"`
	ResolvedBy            sql.NullString    `db:"resolved_by" json:"-"`
	ResolvedAt            sql.NullTime      `db:"resolved_at" json:"-"`
	CreatedAt             time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time         `db:"updated_at" json:"-"`
}

// AbsAmount returns the unsigned transaction amount.
func (bt *BankTransaction) AbsAmount() decimal.Decimal {
	return bt.Amount.Abs()
}

// JournalEntry is an accounting record owned by the ledger. This service only reads it.
type JournalEntry struct {
	ID          int64           `db:"id" json:"id"`
	CompanyID   string          `db:"company_id" json:"company_id"`
	EntryNumber string          `db:"entry_number" json:"entry_number"`
	EntryDate   time.Time       `db:"entry_date" json:"entry_date"`
	Description string          `db:"description" json:"description"`
	TotalDebit  decimal.Decimal `db:"total_debit" json:"total_debit"`
	TotalCredit decimal.Decimal `db:"total_credit" json:"total_credit"`
}

// ComparableAmount is the amount a bank transaction is matched against.
func (je *JournalEntry) ComparableAmount() decimal.Decimal {
	return decimal.Max(je.TotalDebit, je.TotalCredit)
}

// ReconciliationAudit is an audit trail entry for imports and resolutions.
type ReconciliationAudit struct {
	ID                int64           `db:"id" json:"id"`
	BankTransactionID sql.NullInt64   `db:"bank_transaction_id" json:"-"`
	ImportBatchID     sql.NullInt64   `db:"import_batch_id" json:"-"`
	Action            string          `db:"action" json:"action"`
	Details           json.RawMessage `db:"details" json:"details"`
	UserID            string          `db:"user_id" json:"user_id"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
}

// Caller identifies who is performing an operation. An empty CompanyID means
// an unscoped system caller such as the operator CLI.
type Caller struct {
	UserID    string
	CompanyID string
}

// CanAccess reports whether the caller may operate on data owned by companyID.
func (c Caller) CanAccess(companyID string) bool {
	return c.CompanyID == "" || c.CompanyID == companyID
}

// SystemUserID is recorded in audit fields when no user is attached to a call.
const SystemUserID = "system"

// Actor returns the user id to record in audit fields.
func (c Caller) Actor() string {
	if c.UserID == "" {
		return SystemUserID
	}
	return c.UserID
}

// AuditAction constants
const (
	AuditActionImported      = "imported"
	AuditActionImportFailed  = "import_failed"
	AuditActionAutoMatched   = "auto_matched"
	AuditActionManualMatched = "manual_matched"
	AuditActionIgnored       = "ignored"
)
