package allocate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// CurrencyError reports a field that should hold a currency value but
// matched no numeric pattern.
type CurrencyError struct {
	Value string
}

func (e *CurrencyError) Error() string {
	return fmt.Sprintf("not a currency value: %q", e.Value)
}

var (
	// Matches USD-style amounts: optional sign, optional $, digit groups
	// with optional thousands separators, optional decimal part.
	currencyPattern = regexp.MustCompile(`[-+]?\$?\d{1,4}(?:,\d{3})*(?:\.\d+)?`)
	nonNumeric      = regexp.MustCompile(`[^\d.\-]`)
)

// ParseCurrency converts a raw currency string to a number.
//
//	"-$280.83"  → -280.83
//	"$1,234.56" → 1234.56
//	"-"         → 0.0
//
// The literal "Included" is a plan marker, not an amount; callers must
// branch on it before calling. A value that matches no numeric pattern
// fails with a CurrencyError rather than being passed through.
func ParseCurrency(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "-" {
		return 0, nil
	}
	m := currencyPattern.FindString(s)
	if m == "" {
		return 0, &CurrencyError{Value: s}
	}
	v, err := strconv.ParseFloat(nonNumeric.ReplaceAllString(m, ""), 64)
	if err != nil {
		return 0, &CurrencyError{Value: s}
	}
	return v, nil
}
