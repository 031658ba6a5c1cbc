// Package money centralises monetary rounding and display formatting so every
// computed figure in the system rounds the same way.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var gbPrinter = message.NewPrinter(language.BritishEnglish)

// Round2 rounds to 2 decimal places, half up. Applied to every computed
// monetary field before it is stored or compared.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatGBP renders an amount for display, e.g. "£12,170.00".
func FormatGBP(d decimal.Decimal) string {
	f, _ := Round2(d).Float64()
	return gbPrinter.Sprintf("£%.2f", f)
}
