// Package format renders money and dates the way the Brazilian front end displays them.
package format

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// BRL formats an amount as Brazilian reais, e.g. "R$ 1.234,50"
func BRL(v float64) string {
	return BRLDecimal(decimal.NewFromFloat(v))
}

// BRLDecimal formats a decimal amount rounded to cents
func BRLDecimal(d decimal.Decimal) string {
	rounded, _ := d.Round(2).Float64()
	if rounded < 0 {
		return "-R$ " + printer.Sprint(number.Decimal(-rounded, number.Scale(2)))
	}
	return "R$ " + printer.Sprint(number.Decimal(rounded, number.Scale(2)))
}

// Date formats a date as dd/mm/yyyy; nil yields ""
func Date(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02/01/2006")
}

// ISODate formats a date as yyyy-mm-dd; nil yields nil
func ISODate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}

// Timestamp formats an instant as RFC 3339 in UTC
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
