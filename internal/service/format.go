package service

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatKES renders an amount as a whole-shilling currency string with
// thousands separators, e.g. "KES 12,345". Used for KPI tiles.
func FormatKES(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	digits := rounded.Abs().String()

	var b strings.Builder
	b.WriteString("KES ")
	if rounded.IsNegative() {
		b.WriteString("-")
	}
	for i, ch := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteString(",")
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// formatAmount renders a monetary value with two decimal places for
// tabular listings and exports.
func formatAmount(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(2)
}
