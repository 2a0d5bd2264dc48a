package view

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amountPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatAmount formats a nullable amount stored as cents, e.g. 150000 ->
// "1,500.00 USD".
func FormatAmount(cents *int64, currency string) string {
	if cents == nil {
		return "—"
	}

	return amountPrinter.Sprintf("%.2f %s", float64(*cents)/100.0, currency)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}
