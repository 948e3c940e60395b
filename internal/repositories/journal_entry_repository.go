package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bank-reconciliation-service/internal/apperrors"
	"bank-reconciliation-service/internal/models"
)

// JournalEntryRepository reads ledger entries. The ledger owns the table, so
// there are no write methods.
type JournalEntryRepository interface {
	GetByID(ctx context.Context, id int64) (*models.JournalEntry, error)
	// ListRecent returns up to limit entries of a company, most recent first.
	ListRecent(ctx context.Context, companyID string, limit int) ([]*models.JournalEntry, error)
}

type journalEntryRepository struct {
	db *sql.DB
}

func NewJournalEntryRepository(db *sql.DB) JournalEntryRepository {
	return &journalEntryRepository{db: db}
}

func scanJournalEntry(s rowScanner) (*models.JournalEntry, error) {
	je := &models.JournalEntry{}
	var description sql.NullString
	err := s.Scan(
		&je.ID,
		&je.CompanyID,
		&je.EntryNumber,
		&je.EntryDate,
		&description,
		&je.TotalDebit,
		&je.TotalCredit,
	)
	je.Description = description.String
	return je, err
}

func (r *journalEntryRepository) GetByID(ctx context.Context, id int64) (*models.JournalEntry, error) {
	query := `
		SELECT id, company_id, entry_number, entry_date, description,
		       total_debit, total_credit
		FROM journal_entries
		WHERE id = ?
	`
	je, err := scanJournalEntry(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("journal entry %d: %w", id, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return je, nil
}

func (r *journalEntryRepository) ListRecent(ctx context.Context, companyID string, limit int) ([]*models.JournalEntry, error) {
	query := `
		SELECT id, company_id, entry_number, entry_date, description,
		       total_debit, total_credit
		FROM journal_entries
		WHERE company_id = ?
		ORDER BY entry_date DESC, id DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, companyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.JournalEntry
	for rows.Next() {
		je, err := scanJournalEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, je)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
