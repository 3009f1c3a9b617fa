package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of minor-unit digits kept for every amount.
const MoneyScale = 2

// FormatMoney renders an amount as currency-prefixed, comma-grouped text,
// e.g. 1234.5 -> "$1,234.50".
func FormatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}

	whole, frac, _ := strings.Cut(d.StringFixed(MoneyScale), ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	return sign + "$" + b.String() + "." + frac
}

// ParseMoney parses FormatMoney output, PostgreSQL money text or a plain
// decimal string back into an exact value.
func ParseMoney(s string) (decimal.Decimal, error) {
	text := strings.TrimSpace(s)

	negative := strings.HasPrefix(text, "-")
	if negative {
		text = text[1:]
	}

	text = strings.TrimPrefix(text, "$")
	text = strings.ReplaceAll(text, ",", "")

	if text == "" || strings.HasPrefix(text, "-") || strings.HasPrefix(text, "+") {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidMoney, s)
	}

	if negative {
		d = d.Neg()
	}

	return d, nil
}
