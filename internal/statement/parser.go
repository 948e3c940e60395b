package statement

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"bank-reconciliation-service/internal/apperrors"
	"bank-reconciliation-service/internal/models"
)

// ErrNoTransactions is returned when a statement has no transactional rows.
var ErrNoTransactions = fmt.Errorf("%w: no transactions found", apperrors.ErrParse)

// Row is one data line of a statement, keyed by header label.
type Row struct {
	Line   int
	Values map[string]string
}

// Transaction is a normalized statement line. Amount is never negative; the
// direction lives in Type. Date is kept as exported by the bank.
type Transaction struct {
	Line        int
	Date        string
	Description string
	Amount      decimal.Decimal
	Type        models.TransactionType
	Reference   string
}

// SignedAmount returns the amount with the credit-positive sign convention applied.
func (t Transaction) SignedAmount() decimal.Decimal {
	if t.Type == models.TypeDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// SkippedRow explains why a row produced no transaction.
type SkippedRow struct {
	Line   int
	Reason string
}

// Result is the outcome of parsing one statement.
type Result struct {
	Transactions []Transaction
	Skipped      []SkippedRow
	TotalRows    int
}

const (
	skipNoAmount = "no positive credit, debit or amount"
	skipNoDate   = "no transaction date"
)

// Parser normalizes statement rows using an alias table.
type Parser struct {
	aliases AliasTable
}

// NewParser creates a parser. A nil table falls back to DefaultAliases.
func NewParser(aliases AliasTable) *Parser {
	if aliases == nil {
		aliases = DefaultAliases
	}
	return &Parser{aliases: aliases}
}

// NormalizeRow resolves one row. ok is false when the row carries no
// transaction.
func (p *Parser) NormalizeRow(row Row) (txn Transaction, ok bool) {
	amount, typ, ok := p.resolveAmount(row.Values)
	if !ok {
		return Transaction{}, false
	}

	date, _ := p.aliases.Lookup(row.Values, FieldDate)
	desc, _ := p.aliases.Lookup(row.Values, FieldDescription)
	ref, _ := p.aliases.Lookup(row.Values, FieldReference)

	return Transaction{
		Line:        row.Line,
		Date:        date,
		Description: desc,
		Amount:      amount,
		Type:        typ,
		Reference:   ref,
	}, true
}

// resolveAmount applies the sign rules: a positive credit column wins, then a
// positive debit column, then a non-zero signed amount column.
func (p *Parser) resolveAmount(values map[string]string) (decimal.Decimal, models.TransactionType, bool) {
	if raw, ok := p.aliases.Lookup(values, FieldCredit); ok {
		if v := amountOrZero(raw); v.IsPositive() {
			return v, models.TypeCredit, true
		}
	}
	if raw, ok := p.aliases.Lookup(values, FieldDebit); ok {
		if v := amountOrZero(raw); v.IsPositive() {
			return v, models.TypeDebit, true
		}
	}
	if raw, ok := p.aliases.Lookup(values, FieldAmount); ok {
		v := amountOrZero(raw)
		switch {
		case v.IsPositive():
			return v, models.TypeCredit, true
		case v.IsNegative():
			return v.Abs(), models.TypeDebit, true
		}
	}
	return decimal.Zero, "", false
}

// NormalizeRows resolves every row and fails with ErrNoTransactions if none
// yields a transaction.
func (p *Parser) NormalizeRows(rows []Row) (*Result, error) {
	res := &Result{TotalRows: len(rows)}
	for _, row := range rows {
		txn, ok := p.NormalizeRow(row)
		if !ok {
			res.Skipped = append(res.Skipped, SkippedRow{Line: row.Line, Reason: skipNoAmount})
			continue
		}
		if txn.Date == "" {
			res.Skipped = append(res.Skipped, SkippedRow{Line: row.Line, Reason: skipNoDate})
			continue
		}
		res.Transactions = append(res.Transactions, txn)
	}

	if len(res.Transactions) == 0 {
		return res, ErrNoTransactions
	}
	return res, nil
}

// ParseCSV reads a header-labelled CSV statement and normalizes it.
func (p *Parser) ParseCSV(r io.Reader) (*Result, error) {
	rows, err := ReadCSV(r)
	if err != nil {
		return nil, err
	}
	return p.NormalizeRows(rows)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV turns a CSV file into rows keyed by header label. The delimiter is
// detected from the header line; blank lines are skipped.
func ReadCSV(r io.Reader) ([]Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading statement: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNoTransactions
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = detectDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", apperrors.ErrParse, err)
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrParse, err)
		}
		if isBlank(rec) {
			continue
		}
		line, _ := cr.FieldPos(0)

		values := make(map[string]string, len(header))
		for i, h := range header {
			if h == "" || i >= len(rec) {
				continue
			}
			// Duplicate labels keep the first column.
			if _, dup := values[h]; !dup {
				values[h] = rec[i]
			}
		}
		rows = append(rows, Row{Line: line, Values: values})
	}
	return rows, nil
}

func detectDelimiter(data []byte) rune {
	first := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		first = data[:i]
	}
	best, bestCount := ',', bytes.Count(first, []byte{','})
	for _, d := range []rune{';', '\t'} {
		if n := bytes.Count(first, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
