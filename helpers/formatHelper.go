package helpers

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var dutch = message.NewPrinter(language.Dutch)

// FormatEuro renders an amount the way nl-NL shows currency, e.g. "€ 1.234,50".
func FormatEuro(amount decimal.Decimal) string {
	return "€ " + dutch.Sprint(number.Decimal(amount.Round(2).InexactFloat64(), number.Scale(2)))
}

// FormatDeliveryDuration turns minutes into the window shown to shoppers.
func FormatDeliveryDuration(minutes int) string {
	if minutes <= 0 {
		return "Afhalen"
	}
	if minutes <= 30 {
		return fmt.Sprintf("%d min", minutes)
	}
	low := minutes - 15
	if low < 15 {
		low = 15
	}
	return fmt.Sprintf("%d-%d min", low, minutes+15)
}
