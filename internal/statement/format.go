package statement

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// formatAmount renders a decimal with thousands separators and two decimal
// places for document output. Exact values stay in the decimal type; this is
// presentation only.
func formatAmount(d decimal.Decimal) string {
	f, _ := d.Float64()
	return printer.Sprintf("%.2f", f)
}
