package allocate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"-$280.83", -280.83},
		{"$1,234.56", 1234.56},
		{"-", 0.0},
		{"$0.00", 0.0},
		{"$0.53", 0.53},
		{"280.00", 280.00},
		{"+$12.50", 12.50},
		{"$1,234,567.89", 1234567.89},
		{" $40.00 ", 40.00},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCurrency(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCurrencyMalformed(t *testing.T) {
	for _, input := range []string{"", "Included", "N/A", "--", "$"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseCurrency(input)
			var currErr *CurrencyError
			require.ErrorAs(t, err, &currErr)
			assert.Equal(t, input, currErr.Value)
		})
	}
}
