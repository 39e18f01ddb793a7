package document

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.MustParse("en-IN"))

// Rupees formats an amount with Indian digit grouping and two decimals.
func Rupees(d decimal.Decimal) string {
	return "₹" + printer.Sprintf("%.2f", d.Round(2).InexactFloat64())
}

// Percent trims trailing zeros: 9 not 9.00, 2.5 not 2.50.
func Percent(d decimal.Decimal) string {
	return d.String() + "%"
}
