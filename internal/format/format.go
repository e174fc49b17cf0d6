package format

import (
	"miru/internal/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DateLayout is the day-first layout used in messages and documents.
const DateLayout = "02/01/2006"

var printer = message.NewPrinter(language.AmericanEnglish)

// Number formats n with en-US thousands separators, e.g. 300,000.
func Number(n int) string {
	return printer.Sprintf("%d", n)
}

// RWF formats an amount as "RWF 300,000".
func RWF(n int) string {
	return "RWF " + Number(n)
}

// Date formats d as dd/mm/yyyy.
func Date(d models.Date) string {
	return d.Format(DateLayout)
}
