package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/phone-bill-splitter/internal/models"
)

func TestFormatSummary(t *testing.T) {
	rows := []models.AllocatedRow{
		{Member: "Alice", Total: 42.10},
		{Member: "Bob", Total: 38.55},
	}
	out := FormatSummary(rows)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 8)

	assert.Equal(t, "Member..........Amount", lines[1])
	assert.Equal(t, "Alice...........$42.10", lines[3])
	assert.Equal(t, "Bob.............$38.55", lines[4])
	assert.Equal(t, "Total bill..........$80.65", lines[6])

	// Rules frame the header, the body, and the footer
	rule := lines[0]
	assert.True(t, strings.HasPrefix(rule, "---"))
	assert.Equal(t, rule, lines[2])
	assert.Equal(t, rule, lines[5])
	assert.Equal(t, rule, lines[7])
}

func TestFormatSummaryNonASCIINames(t *testing.T) {
	rows := []models.AllocatedRow{
		{Member: "José", Total: 10},
		{Member: "Anna", Total: 20},
	}
	out := FormatSummary(rows)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 8)

	// "José" and "Anna" are both four characters, so their leaders match
	assert.Equal(t, "José............$10.00", lines[3])
	assert.Equal(t, "Anna............$20.00", lines[4])
}

func TestFormatSummaryThousands(t *testing.T) {
	rows := []models.AllocatedRow{
		{Member: "Family trust", Total: 1234.56},
	}
	out := FormatSummary(rows)
	assert.Contains(t, out, "$1,234.56")
}

func TestEmailBody(t *testing.T) {
	rows := []models.AllocatedRow{{Member: "Alice", Total: 10}}

	body := EmailBody(rows, "April 2024")
	assert.Contains(t, body, "April 2024 phone bill")
	assert.Contains(t, body, "Alice")

	// Missing billing period falls back to a default label
	body = EmailBody(rows, "")
	assert.Contains(t, body, "last month phone bill")
}
