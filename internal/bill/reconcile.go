package bill

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/insightdelivered/phone-bill-splitter/internal/allocate"
	"github.com/insightdelivered/phone-bill-splitter/internal/models"
)

// Tolerance for comparing the computed total against the bill's stated
// grand total. Anything larger indicates a parsing or allocation bug.
const reconcileTolerance = 1e-6

// The anchor preceding the bill's stated grand total on the first page.
const totalDueAnchor = "TOTAL DUE"

// ErrTotalDueNotFound means the stated grand total could not be located.
var ErrTotalDueNotFound = errors.New("TOTAL DUE not found in page text")

// MismatchError is the fatal integrity failure between the computed
// per-member totals and the bill's stated grand total.
type MismatchError struct {
	Computed float64
	Stated   float64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("total bill does not match: computed %.2f != stated %.2f", e.Computed, e.Stated)
}

// StatedTotal independently extracts the bill's stated grand total: the
// first "TOTAL DUE" line, with the next non-empty line holding the amount.
func StatedTotal(lines []string) (float64, error) {
	for i, line := range lines {
		if strings.TrimSpace(line) != totalDueAnchor {
			continue
		}
		for _, next := range lines[i+1:] {
			next = strings.TrimSpace(next)
			if next == "" {
				continue
			}
			v, err := allocate.ParseCurrency(next)
			if err != nil {
				return 0, fmt.Errorf("stated grand total unreadable: %w", err)
			}
			return v, nil
		}
		return 0, fmt.Errorf("%w: no amount follows the anchor", ErrTotalDueNotFound)
	}
	return 0, ErrTotalDueNotFound
}

// Reconcile asserts that the allocated totals sum to the stated grand total.
func Reconcile(rows []models.AllocatedRow, stated float64) error {
	computed := models.SumTotals(rows)
	if math.Abs(computed-stated) >= reconcileTolerance {
		return &MismatchError{Computed: computed, Stated: stated}
	}
	return nil
}
