package statement

import "strings"

// Field is a logical statement column.
type Field string

const (
	FieldDate        Field = "date"
	FieldDescription Field = "description"
	FieldReference   Field = "reference"
	FieldCredit      Field = "credit"
	FieldDebit       Field = "debit"
	FieldAmount      Field = "amount"
)

// AliasTable maps each logical field to the header labels that may carry it,
// in priority order. Labels are matched exactly and case-sensitively.
type AliasTable map[Field][]string

// DefaultAliases covers the English and Arabic export layouts seen so far.
var DefaultAliases = AliasTable{
	FieldDate: {
		"date", "transaction_date", "Value Date", "Date", "Transaction Date", "Posting Date",
		"التاريخ", "تاريخ العملية", "تاريخ القيمة",
	},
	FieldDescription: {
		"description", "Narrative", "Details", "Description", "Memo",
		"الوصف", "البيان", "التفاصيل",
	},
	FieldReference: {
		"reference", "Reference", "Ref", "Reference Number",
		"المرجع", "رقم المرجع",
	},
	FieldCredit: {
		"credit", "Credit", "Credit Amount", "Deposit",
		"دائن", "إيداع",
	},
	FieldDebit: {
		"debit", "Debit", "Debit Amount", "Withdrawal",
		"مدين", "سحب",
	},
	FieldAmount: {
		"amount", "Amount", "Transaction Amount",
		"المبلغ",
	},
}

// Lookup returns the first non-empty value among the field's aliases.
func (t AliasTable) Lookup(values map[string]string, field Field) (string, bool) {
	for _, alias := range t[field] {
		v, ok := values[alias]
		if !ok {
			continue
		}
		if v = strings.TrimSpace(v); v != "" {
			return v, true
		}
	}
	return "", false
}

// Merge returns a copy of t with extra aliases appended after the existing ones.
func (t AliasTable) Merge(extra AliasTable) AliasTable {
	out := make(AliasTable, len(t))
	for f, aliases := range t {
		out[f] = append([]string(nil), aliases...)
	}
	for f, aliases := range extra {
		out[f] = append(out[f], aliases...)
	}
	return out
}
