package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/insightdelivered/phone-bill-splitter/internal/models"
)

// Row shapes recognized in the bill summary table:
//
//	Account row: "Account $280.00 - $0.00 - $280.00"
//	Member row:  "(999) 637-3009 Voice Included - - $0.53 $0.53"
//
// Anything else is page furniture (headers, footnotes) and is dropped.
var (
	memberRowPattern = regexp.MustCompile(`^\((\d+)\)\s*(\d+)-(\d+)\s+Voice\s+(.+)$`)
	phoneTokenOpen   = regexp.MustCompile(`^\(\d+\)$`)
	phoneTokenRest   = regexp.MustCompile(`^\d+-\d+$`)
	phoneIdentifier  = regexp.MustCompile(`^\(\d+\) \d+-\d+$`)
)

// ParseRow classifies one raw line from the table window and decomposes it
// into a fixed-shape SummaryRow. The second return value is false when the
// line matches neither recognized shape.
func ParseRow(line string) (models.SummaryRow, bool) {
	// pypdf renders the phone number with a non-breaking space
	line = strings.ReplaceAll(line, " ", " ")

	if strings.HasPrefix(line, "Account") {
		parts := strings.Fields(line)
		if len(parts) < 6 {
			return models.SummaryRow{}, false
		}
		return models.SummaryRow{
			Identifier:     "Account",
			Plans:          parts[1],
			Equipment:      parts[2],
			Services:       parts[3],
			OneTimeCharges: parts[4],
			Total:          parts[5],
		}, true
	}

	if m := memberRowPattern.FindStringSubmatch(line); m != nil {
		tokens := strings.Fields(m[4])
		if len(tokens) < 5 {
			return models.SummaryRow{}, false
		}
		return models.SummaryRow{
			Identifier:     fmt.Sprintf("(%s) %s-%s", m[1], m[2], m[3]),
			LineType:       "Voice",
			Plans:          tokens[0],
			Equipment:      tokens[1],
			Services:       tokens[2],
			OneTimeCharges: tokens[3],
			Total:          tokens[4],
		}, true
	}

	return models.SummaryRow{}, false
}

// parseTokenRow builds a SummaryRow from one reshaped token-grid row.
// Grid rows carry the identifier as their first token (the phone number is
// merged back into a single token before reshaping) and may omit the "Voice"
// line-type token that the header-delimited layout renders.
func parseTokenRow(tokens []string) (models.SummaryRow, bool) {
	if len(tokens) < 2 {
		return models.SummaryRow{}, false
	}

	identifier := strings.ReplaceAll(tokens[0], " ", " ")
	rest := tokens[1:]

	lineType := ""
	if phoneIdentifier.MatchString(identifier) {
		lineType = "Voice"
	} else if identifier != "Account" {
		return models.SummaryRow{}, false
	}
	if len(rest) > 0 && rest[0] == "Voice" {
		rest = rest[1:]
	}

	values := padValues(rest)
	if values == nil {
		return models.SummaryRow{}, false
	}

	return models.SummaryRow{
		Identifier:     identifier,
		LineType:       lineType,
		Plans:          values[0],
		Equipment:      values[1],
		Services:       values[2],
		OneTimeCharges: values[3],
		Total:          values[4],
	}, true
}

// padValues normalizes the currency columns of a grid row to exactly five
// fields (plans, equipment, services, one-time charges, total). Narrower
// grids get "-" placeholders inserted second-to-last so the row total stays
// in the final position.
func padValues(tokens []string) []string {
	if len(tokens) < 2 || len(tokens) > 5 {
		return nil
	}
	values := append([]string(nil), tokens...)
	for len(values) < 5 {
		values = append(values, values[len(values)-1])
		values[len(values)-2] = "-"
	}
	return values
}
