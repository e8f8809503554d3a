package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/insightdelivered/phone-bill-splitter/internal/models"
)

// Anchor phrases delimiting the billing summary table.
const (
	summaryAnchor  = "THIS BILL SUMMARY"
	detailedAnchor = "DETAILED CHARGES"
	accountToken   = "Account"
)

// ErrTableNotFound means neither anchor strategy could locate the billing
// summary table in the page text.
var ErrTableNotFound = errors.New("billing summary table not found")

// TableShapeError means the token-grid strategy located the table anchors
// but the token count does not reshape evenly into the expected rows.
type TableShapeError struct {
	Rows   int // expected row count (family members + Account row)
	Tokens int // observed token count between the anchors
}

func (e *TableShapeError) Error() string {
	return fmt.Sprintf("summary table tokens do not reshape: %d tokens across %d rows", e.Tokens, e.Rows)
}

// ExtractTable locates the billing summary table in the page lines and parses
// it into SummaryRows. Two layout strategies are tried in order:
//
//  1. Header-delimited: exact "THIS BILL SUMMARY" line, skip the column
//     header row, rows end at "DETAILED CHARGES".
//  2. Token-grid: flat token stream between the second "Account" token and
//     "DETAILED CHARGES", reshaped into familyCount+1 fixed-width rows.
//
// A row-count mismatch against the configured family size is logged as a
// warning, not a failure; parsing proceeds on whatever rows were found.
func ExtractTable(lines []string, familyCount int) ([]models.SummaryRow, error) {
	rows, headerErr := headerTable(lines)
	if headerErr != nil {
		var gridErr error
		rows, gridErr = tokenGridTable(lines, familyCount)
		if gridErr != nil {
			var shapeErr *TableShapeError
			if errors.As(gridErr, &shapeErr) {
				return nil, gridErr
			}
			return nil, headerErr
		}
	}

	expected := familyCount + 1
	if len(rows) != expected {
		slog.Warn("summary table row count mismatch, check family_count config",
			"expected", expected, "got", len(rows))
	}
	return rows, nil
}

// headerTable implements the header-delimited layout strategy.
func headerTable(lines []string) ([]models.SummaryRow, error) {
	start := indexOfLine(lines, summaryAnchor)
	end := indexOfLine(lines, detailedAnchor)
	if start < 0 || end < 0 || end <= start {
		return nil, fmt.Errorf("%w: missing %q or %q anchor", ErrTableNotFound, summaryAnchor, detailedAnchor)
	}

	// +2 skips the anchor line and the column header row
	var rows []models.SummaryRow
	for _, line := range lines[min(start+2, end):end] {
		if isTotalsArtifact(line) {
			slog.Debug("skipping totals artifact row", "line", line)
			continue
		}
		if row, ok := ParseRow(line); ok {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no parseable rows between anchors", ErrTableNotFound)
	}
	return rows, nil
}

// tokenGridTable implements the token-grid layout strategy, used when the
// extracted text arrives as a flat token stream without reliable line breaks.
func tokenGridTable(lines []string, familyCount int) ([]models.SummaryRow, error) {
	tokens := mergePhoneTokens(strings.Fields(strings.Join(lines, " ")))

	start := nthIndexOf(tokens, accountToken, 2)
	if start < 0 {
		// A single occurrence still marks the table when the page carries
		// no "Account number" furniture above it.
		start = nthIndexOf(tokens, accountToken, 1)
	}
	end := -1
	for i := start + 1; i < len(tokens)-1; i++ {
		if tokens[i] == "DETAILED" && tokens[i+1] == "CHARGES" {
			end = i
			break
		}
	}
	if start < 0 || end < 0 {
		return nil, fmt.Errorf("%w: token anchors missing", ErrTableNotFound)
	}

	window := dropTotalsTokens(tokens[start:end])

	rowCount := familyCount + 1
	if rowCount <= 0 || len(window)%rowCount != 0 {
		return nil, &TableShapeError{Rows: rowCount, Tokens: len(window)}
	}
	cols := len(window) / rowCount

	var rows []models.SummaryRow
	for i := 0; i < rowCount; i++ {
		if row, ok := parseTokenRow(window[i*cols : (i+1)*cols]); ok {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no parseable grid rows", ErrTableNotFound)
	}
	return rows, nil
}

// mergePhoneTokens rejoins phone numbers that the token stream split in two,
// e.g. "(999)" "637-3009" becomes "(999) 637-3009".
func mergePhoneTokens(tokens []string) []string {
	var merged []string
	for i := 0; i < len(tokens); i++ {
		if i+1 < len(tokens) && phoneTokenOpen.MatchString(tokens[i]) && phoneTokenRest.MatchString(tokens[i+1]) {
			merged = append(merged, tokens[i]+" "+tokens[i+1])
			i++
			continue
		}
		merged = append(merged, strings.ReplaceAll(tokens[i], " ", " "))
	}
	return merged
}

// dropTotalsTokens removes the "Totals" rendering artifact, which some
// layouts emit split as "T otals", together with the value tokens of its
// row. It is not a data row.
func dropTotalsTokens(tokens []string) []string {
	var out []string
	i := 0
	for i < len(tokens) {
		if tokens[i] == "Totals" {
			slog.Debug("skipping totals artifact row")
			i = skipTotalsValues(tokens, i+1)
			continue
		}
		if tokens[i] == "T" && i+1 < len(tokens) && tokens[i+1] == "otals" {
			slog.Debug("skipping totals artifact row")
			i = skipTotalsValues(tokens, i+2)
			continue
		}
		out = append(out, tokens[i])
		i++
	}
	return out
}

// skipTotalsValues consumes the value tokens following a "Totals" artifact,
// up to the next row head or the window end.
func skipTotalsValues(tokens []string, i int) int {
	for i < len(tokens) && !isRowHead(tokens[i]) {
		i++
	}
	return i
}

func isRowHead(token string) bool {
	return token == accountToken || phoneIdentifier.MatchString(token)
}

// isTotalsArtifact reports whether a line is the "Totals" rendering artifact
// that precedes the end anchor in some layouts. It is not a data row.
func isTotalsArtifact(line string) bool {
	return strings.HasPrefix(line, "Totals") || strings.HasPrefix(line, "T otals")
}

func indexOfLine(lines []string, target string) int {
	for i, line := range lines {
		if strings.TrimSpace(line) == target {
			return i
		}
	}
	return -1
}

// nthIndexOf returns the index of the nth occurrence (1-based) of target
// in tokens, or -1.
func nthIndexOf(tokens []string, target string, n int) int {
	count := 0
	for i, t := range tokens {
		if t == target {
			count++
			if count == n {
				return i
			}
		}
	}
	return -1
}
