package handlers

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"bank-reconciliation-service/internal/models"
	"bank-reconciliation-service/internal/services"
)

type CreateBankAccountRequest struct {
	BankName       string          `json:"bank_name" validate:"required,max=255"`
	AccountNumber  string          `json:"account_number" validate:"required,max=64"`
	IBAN           string          `json:"iban" validate:"omitempty,max=34"`
	AccountType    string          `json:"account_type" validate:"omitempty,oneof=current savings credit"`
	Currency       string          `json:"currency" validate:"required,iso4217"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

type ManualMatchRequest struct {
	JournalEntryID int64 `json:"journal_entry_id" validate:"required,gt=0"`
}

type BankAccountResponse struct {
	ID             int64           `json:"id"`
	CompanyID      string          `json:"company_id"`
	BankName       string          `json:"bank_name"`
	AccountNumber  string          `json:"account_number"`
	IBAN           string          `json:"iban,omitempty"`
	AccountType    string          `json:"account_type"`
	Currency       string          `json:"currency"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	IsActive       bool            `json:"is_active"`
	CreatedBy      string          `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

type ImportBatchResponse struct {
	ID             int64              `json:"id"`
	BankAccountID  int64              `json:"bank_account_id"`
	FileName       string             `json:"file_name"`
	FileType       string             `json:"file_type"`
	TotalRecords   int                `json:"total_records"`
	PendingRecords int                `json:"pending_records"`
	MatchedRecords int                `json:"matched_records"`
	Status         models.BatchStatus `json:"status"`
	FailureReason  string             `json:"failure_reason,omitempty"`
	CreatedBy      string             `json:"created_by"`
	CreatedAt      time.Time          `json:"created_at"`
	CompletedAt    *time.Time         `json:"completed_at,omitempty"`
}

type BankTransactionResponse struct {
	ID                    int64                    `json:"id"`
	BankAccountID         int64                    `json:"bank_account_id"`
	ImportBatchID         int64                    `json:"import_batch_id"`
	TransactionDate       string                   `json:"transaction_date"`
	Description           string                   `json:"description"`
	Amount                decimal.Decimal          `json:"amount"`
	TransactionType       models.TransactionType   `json:"transaction_type"`
	Reference             string                   `json:"reference,omitempty"`
	Status                models.TransactionStatus `json:"status"`
	MatchedJournalEntryID *int64                   `json:"matched_journal_entry_id,omitempty"`
	ResolvedBy            string                   `json:"resolved_by,omitempty"`
	ResolvedAt            *time.Time               `json:"resolved_at,omitempty"`
	CreatedAt             time.Time                `json:"created_at"`
}

type AuditResponse struct {
	ID                int64           `json:"id"`
	Action            string          `json:"action"`
	BankTransactionID *int64          `json:"bank_transaction_id,omitempty"`
	ImportBatchID     *int64          `json:"import_batch_id,omitempty"`
	Details           json.RawMessage `json:"details,omitempty"`
	UserID            string          `json:"user_id"`
	CreatedAt         time.Time       `json:"created_at"`
}

type SkippedRowResponse struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type ImportResponse struct {
	Batch     ImportBatchResponse  `json:"batch"`
	Imported  int                  `json:"imported"`
	TotalRows int                  `json:"total_rows"`
	Skipped   []SkippedRowResponse `json:"skipped"`
}

type BatchSummaryResponse struct {
	Batch  ImportBatchResponse `json:"batch"`
	Counts models.StatusCounts `json:"counts"`
}

type TransactionDetailResponse struct {
	Transaction BankTransactionResponse `json:"transaction"`
	AuditTrail  []AuditResponse         `json:"audit_trail"`
}

func nullInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	return &v.Time
}

func toBankAccountResponse(a *models.BankAccount) BankAccountResponse {
	return BankAccountResponse{
		ID:             a.ID,
		CompanyID:      a.CompanyID,
		BankName:       a.BankName,
		AccountNumber:  a.AccountNumber,
		IBAN:           a.IBAN.String,
		AccountType:    a.AccountType,
		Currency:       a.Currency,
		OpeningBalance: a.OpeningBalance,
		CurrentBalance: a.CurrentBalance,
		IsActive:       a.IsActive,
		CreatedBy:      a.CreatedBy,
		CreatedAt:      a.CreatedAt,
	}
}

func toImportBatchResponse(b *models.ImportBatch) ImportBatchResponse {
	return ImportBatchResponse{
		ID:             b.ID,
		BankAccountID:  b.BankAccountID,
		FileName:       b.FileName,
		FileType:       b.FileType,
		TotalRecords:   b.TotalRecords,
		PendingRecords: b.PendingRecords,
		MatchedRecords: b.MatchedRecords,
		Status:         b.Status,
		FailureReason:  b.FailureReason.String,
		CreatedBy:      b.CreatedBy,
		CreatedAt:      b.CreatedAt,
		CompletedAt:    nullTime(b.CompletedAt),
	}
}

func toBankTransactionResponse(bt *models.BankTransaction) BankTransactionResponse {
	return BankTransactionResponse{
		ID:                    bt.ID,
		BankAccountID:         bt.BankAccountID,
		ImportBatchID:         bt.ImportBatchID,
		TransactionDate:       bt.TransactionDate.Format(time.DateOnly),
		Description:           bt.Description,
		Amount:                bt.Amount,
		TransactionType:       bt.TransactionType,
		Reference:             bt.Reference.String,
		Status:                bt.Status,
		MatchedJournalEntryID: nullInt(bt.MatchedJournalEntryID),
		ResolvedBy:            bt.ResolvedBy.String,
		ResolvedAt:            nullTime(bt.ResolvedAt),
		CreatedAt:             bt.CreatedAt,
	}
}

func toBankTransactionResponses(list []*models.BankTransaction) []BankTransactionResponse {
	out := make([]BankTransactionResponse, 0, len(list))
	for _, bt := range list {
		out = append(out, toBankTransactionResponse(bt))
	}
	return out
}

func toAuditResponse(a *models.ReconciliationAudit) AuditResponse {
	return AuditResponse{
		ID:                a.ID,
		Action:            a.Action,
		BankTransactionID: nullInt(a.BankTransactionID),
		ImportBatchID:     nullInt(a.ImportBatchID),
		Details:           a.Details,
		UserID:            a.UserID,
		CreatedAt:         a.CreatedAt,
	}
}

func toImportResponse(res *services.ImportResult) ImportResponse {
	skipped := make([]SkippedRowResponse, 0, len(res.Skipped))
	for _, s := range res.Skipped {
		skipped = append(skipped, SkippedRowResponse{Line: s.Line, Reason: s.Reason})
	}
	return ImportResponse{
		Batch:     toImportBatchResponse(res.Batch),
		Imported:  res.Imported,
		TotalRows: res.TotalRows,
		Skipped:   skipped,
	}
}

func toTransactionDetailResponse(d *services.TransactionDetail) TransactionDetailResponse {
	trail := make([]AuditResponse, 0, len(d.AuditTrail))
	for _, a := range d.AuditTrail {
		trail = append(trail, toAuditResponse(a))
	}
	return TransactionDetailResponse{
		Transaction: toBankTransactionResponse(d.Transaction),
		AuditTrail:  trail,
	}
}
