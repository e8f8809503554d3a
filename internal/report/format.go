// Package report renders the allocated bill as a human-readable aligned
// table for the summary email body.
package report

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/insightdelivered/phone-bill-splitter/internal/models"
)

const (
	middleDots = 10
	valueWidth = 6
)

// usd formats amounts with thousands separators, e.g. $1,234.56.
var usd = message.NewPrinter(language.English)

// FormatSummary renders the per-member table with dotted leaders and a
// grand-total footer:
//
//	----------------------------
//	Member...............Amount
//	----------------------------
//	Alice................$42.10
//	Bob..................$38.55
//	----------------------------
//	Total bill...........$80.65
//	----------------------------
func FormatSummary(rows []models.AllocatedRow) string {
	keyWidth := len("Member")
	for _, r := range rows {
		if n := utf8.RuneCountInString(r.Member); n > keyWidth {
			keyWidth = n
		}
	}
	totalWidth := keyWidth + valueWidth + middleDots + 7
	rule := strings.Repeat("-", totalWidth)

	var b strings.Builder
	writeRow := func(key, value string) {
		b.WriteString(padDots(key, keyWidth))
		b.WriteString(strings.Repeat(".", middleDots))
		b.WriteString(value)
		b.WriteString("\n")
	}

	b.WriteString(rule + "\n")
	writeRow("Member", "Amount")
	b.WriteString(rule + "\n")
	for _, r := range rows {
		writeRow(r.Member, usd.Sprintf("$%.2f", r.Total))
	}
	b.WriteString(rule + "\n")
	writeRow("Total bill", usd.Sprintf("$%.2f", models.SumTotals(rows)))
	b.WriteString(rule)

	return b.String()
}

// EmailBody wraps the formatted table in the summary email text.
func EmailBody(rows []models.AllocatedRow, billingPeriod string) string {
	if billingPeriod == "" {
		billingPeriod = "last month"
	}
	return "Here is how much each member of the family owes for the " +
		billingPeriod + " phone bill:\n\n" +
		FormatSummary(rows) +
		"\n\nHave a good day!\n"
}

// padDots pads by rune count so accented member names stay aligned.
func padDots(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(".", width-n)
}
