package statement

import (
	"strings"

	"github.com/shopspring/decimal"
)

var arabicDigits = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
	"٫", ".", "٬", ",",
)

// normalizeDigits maps Arabic-Indic digits and separators to ASCII.
func normalizeDigits(s string) string {
	return arabicDigits.Replace(s)
}

// ParseAmount converts a raw statement cell such as "SAR 1,234.50" or "-45.5"
// into a decimal. Everything except digits, sign and decimal point is dropped.
// Accounting negatives "(45.50)" and trailing-minus debits "200.00-" are read
// as negative. Blank cells are zero.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := normalizeDigits(raw)
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '-', r == '+', r == '.', r == '(', r == ')':
			return r
		}
		return -1
	}, s)

	negate := false
	if len(cleaned) > 2 && cleaned[0] == '(' && cleaned[len(cleaned)-1] == ')' {
		negate = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}
	cleaned = strings.NewReplacer("(", "", ")", "").Replace(cleaned)
	if n := len(cleaned); n > 1 && cleaned[n-1] == '-' && !strings.ContainsAny(cleaned[:n-1], "+-") {
		cleaned = "-" + cleaned[:n-1]
	}

	if cleaned == "" || cleaned == "-" || cleaned == "+" || cleaned == "." {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, err
	}
	if negate {
		d = d.Neg()
	}
	return d, nil
}

// amountOrZero treats cells that cannot be parsed as absent.
func amountOrZero(raw string) decimal.Decimal {
	d, err := ParseAmount(raw)
	if err != nil {
		return decimal.Zero
	}
	return d
}
