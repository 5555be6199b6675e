package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney renders an amount with two decimals and thousands separators, e.g. "Rs. 1,234.00".
func FormatMoney(symbol string, amount decimal.Decimal) string {
	fixed := amount.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	text := b.String() + "." + frac
	if amount.Round(2).IsNegative() {
		text = "-" + text
	}
	if symbol == "" {
		return text
	}
	return symbol + " " + text
}
