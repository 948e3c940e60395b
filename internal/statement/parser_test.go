package statement

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bank-reconciliation-service/internal/apperrors"
	"bank-reconciliation-service/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNormalizeRow_SignConvention(t *testing.T) {
	p := NewParser(nil)

	tests := []struct {
		name     string
		values   map[string]string
		wantAmt  string
		wantType models.TransactionType
	}{
		{"debit column", map[string]string{"date": "2024-01-05", "debit": "120.00"}, "120", models.TypeDebit},
		{"negative amount", map[string]string{"date": "2024-01-05", "amount": "-45.5"}, "45.5", models.TypeDebit},
		{"positive amount", map[string]string{"date": "2024-01-05", "amount": "45.5"}, "45.5", models.TypeCredit},
		{"credit beats debit", map[string]string{"date": "2024-01-05", "credit": "10", "debit": "20"}, "10", models.TypeCredit},
		{"zero credit falls to debit", map[string]string{"date": "2024-01-05", "credit": "0.00", "debit": "20"}, "20", models.TypeDebit},
		{"columns beat amount", map[string]string{"date": "2024-01-05", "debit": "5", "amount": "99"}, "5", models.TypeDebit},
		{"accounting negative amount", map[string]string{"date": "2024-01-05", "amount": "(45.50)"}, "45.50", models.TypeDebit},
		{"trailing minus amount", map[string]string{"date": "2024-01-05", "amount": "200.00-"}, "200.00", models.TypeDebit},
		{"zero columns fall to amount", map[string]string{"date": "2024-01-05", "credit": "0", "debit": "0", "amount": "-7"}, "7", models.TypeDebit},
		{"currency symbols stripped", map[string]string{"date": "2024-01-05", "Credit": "SAR 1,234.50"}, "1234.50", models.TypeCredit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn, ok := p.NormalizeRow(Row{Line: 2, Values: tt.values})
			require.True(t, ok)
			assert.True(t, txn.Amount.Equal(dec(tt.wantAmt)), "amount %s", txn.Amount)
			assert.Equal(t, tt.wantType, txn.Type)
		})
	}
}

func TestNormalizeRow_ZeroRowsDropped(t *testing.T) {
	p := NewParser(nil)

	for _, values := range []map[string]string{
		{"date": "2024-01-07", "amount": "0"},
		{"date": "2024-01-07", "credit": "0", "debit": "0.00"},
		{"date": "2024-01-07", "description": "Opening balance"},
		{"date": "2024-01-07", "debit": "-12"},
		{"date": "2024-01-07", "amount": "n/a"},
	} {
		_, ok := p.NormalizeRow(Row{Values: values})
		assert.False(t, ok, "%v", values)
	}
}

func TestNormalizeRow_ColumnOrderIndependent(t *testing.T) {
	header := []string{"date", "description", "debit", "credit", "reference"}
	record := map[string]string{
		"date": "2024-03-01", "description": "Rent", "debit": "1500", "credit": "", "reference": "R-1",
	}

	var want *Transaction
	for _, perm := range permutations(header) {
		var b strings.Builder
		b.WriteString(strings.Join(perm, ","))
		b.WriteString("\n")
		cells := make([]string, len(perm))
		for i, h := range perm {
			cells[i] = record[h]
		}
		b.WriteString(strings.Join(cells, ","))
		b.WriteString("\n")

		res, err := NewParser(nil).ParseCSV(strings.NewReader(b.String()))
		require.NoError(t, err, "order %v", perm)
		require.Len(t, res.Transactions, 1)
		got := res.Transactions[0]
		if want == nil {
			want = &got
			continue
		}
		assert.Equal(t, want.Date, got.Date)
		assert.True(t, want.Amount.Equal(got.Amount))
		assert.Equal(t, want.Type, got.Type)
		assert.Equal(t, want.Reference, got.Reference)
	}
	require.NotNil(t, want)
	assert.Equal(t, models.TypeDebit, want.Type)
}

func permutations(in []string) [][]string {
	if len(in) <= 1 {
		return [][]string{append([]string(nil), in...)}
	}
	var out [][]string
	for i := range in {
		rest := make([]string, 0, len(in)-1)
		rest = append(rest, in[:i]...)
		rest = append(rest, in[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]string{in[i]}, p...))
		}
	}
	return out
}

func TestParseCSV_EndToEndScenario(t *testing.T) {
	csv := "date,description,debit,credit,amount\n" +
		"2024-01-05,Supplier,200,,\n" +
		"2024-01-06,Customer,,500,\n" +
		"2024-01-07,Subtotal,,,0\n"

	res, err := NewParser(nil).ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, 3, res.TotalRows)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 4, res.Skipped[0].Line)

	assert.Equal(t, "2024-01-05", res.Transactions[0].Date)
	assert.True(t, res.Transactions[0].Amount.Equal(dec("200")))
	assert.Equal(t, models.TypeDebit, res.Transactions[0].Type)
	assert.True(t, res.Transactions[0].SignedAmount().Equal(dec("-200")))

	assert.Equal(t, "2024-01-06", res.Transactions[1].Date)
	assert.True(t, res.Transactions[1].Amount.Equal(dec("500")))
	assert.Equal(t, models.TypeCredit, res.Transactions[1].Type)
	assert.Equal(t, 3, res.Transactions[1].Line)
}

func TestParseCSV_NoTransactions(t *testing.T) {
	p := NewParser(nil)

	for name, input := range map[string]string{
		"empty":        "",
		"header only":  "date,amount\n",
		"all zero":     "date,amount\n2024-01-01,0\n2024-01-02,0.00\n",
		"unknown cols": "Foo,Bar\n2024-01-01,100\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := p.ParseCSV(strings.NewReader(input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrNoTransactions)
			assert.ErrorIs(t, err, apperrors.ErrParse)
		})
	}
}

func TestParseCSV_BilingualSemicolonExport(t *testing.T) {
	csv := "\ufeffالتاريخ;البيان;مدين;دائن;المرجع\n" +
		"05/01/2024;تحويل;٢٠٠٫٥٠;;REF-9\n" +
		";الإجمالي;200.50;;\n"

	res, err := NewParser(nil).ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)

	txn := res.Transactions[0]
	assert.Equal(t, "05/01/2024", txn.Date)
	assert.Equal(t, "تحويل", txn.Description)
	assert.Equal(t, "REF-9", txn.Reference)
	assert.True(t, txn.Amount.Equal(dec("200.50")))
	assert.Equal(t, models.TypeDebit, txn.Type)

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, skipNoDate, res.Skipped[0].Reason)
}

func TestParseCSV_HeaderAliasesAreCaseSensitive(t *testing.T) {
	csv := "DATE,AMOUNT\n2024-01-01,100\n"

	_, err := NewParser(nil).ParseCSV(strings.NewReader(csv))
	assert.ErrorIs(t, err, ErrNoTransactions)

	custom := DefaultAliases.Merge(AliasTable{FieldDate: {"DATE"}, FieldAmount: {"AMOUNT"}})
	res, err := NewParser(custom).ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Len(t, res.Transactions, 1)
}

func TestParseCSV_RaggedAndBlankRows(t *testing.T) {
	csv := "Value Date,Narrative,Amount,Ref\n" +
		"2024-02-01,Card payment,-12.30,A1\n" +
		",,,\n" +
		"2024-02-02,Refund,4.00\n" +
		"Closing balance\n"

	res, err := NewParser(nil).ParseCSV(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, res.Transactions, 2)
	assert.Equal(t, "Card payment", res.Transactions[0].Description)
	assert.Equal(t, "A1", res.Transactions[0].Reference)
	assert.Equal(t, "", res.Transactions[1].Reference)
	assert.Equal(t, models.TypeCredit, res.Transactions[1].Type)
}
