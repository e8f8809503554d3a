package allocate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightdelivered/phone-bill-splitter/internal/models"
)

func summaryFixture() []models.SummaryRow {
	return []models.SummaryRow{
		{Identifier: "Account", Plans: "$280.00", Equipment: "-", Services: "$0.00", OneTimeCharges: "-", Total: "$280.00"},
		{Identifier: "(999) 637-3009", LineType: "Voice", Plans: "Included", Equipment: "-", Services: "-", OneTimeCharges: "$0.53", Total: "$0.53"},
		{Identifier: "(999) 637-3010", LineType: "Voice", Plans: "Included", Equipment: "$12.50", Services: "-", OneTimeCharges: "-", Total: "$12.50"},
		{Identifier: "(999) 637-3011", LineType: "Voice", Plans: "$40.00", Equipment: "$10.00", Services: "-", OneTimeCharges: "-", Total: "$50.00"},
	}
}

func TestAllocateSharedEqually(t *testing.T) {
	rows, err := Allocate(summaryFixture(), Options{PlanCostForAllMembers: true})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// (280.00 + 40.00) / 3 members, identical for everyone, including the
	// individually priced line
	perCapita := (280.00 + 40.00) / 3.0
	for _, r := range rows {
		assert.InDelta(t, perCapita, r.PlanPrice, 1e-9, "member %s", r.Member)
	}

	assert.InDelta(t, perCapita+0.53, rows[0].Total, 1e-9)
	assert.InDelta(t, perCapita+12.50, rows[1].Total, 1e-9)
	assert.InDelta(t, perCapita+10.00, rows[2].Total, 1e-9)

	// The policy redistributes but never changes the grand total
	assert.InDelta(t, 280.00+40.00+0.53+12.50+10.00, models.SumTotals(rows), 1e-9)
}

func TestAllocateMixed(t *testing.T) {
	rows, err := Allocate(summaryFixture(), Options{PlanCostForAllMembers: false})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Included members split the lump sum with an exact quotient
	perIncluded := 280.00 / 2.0
	assert.InDelta(t, perIncluded, rows[0].PlanPrice, 1e-9)
	assert.InDelta(t, perIncluded, rows[1].PlanPrice, 1e-9)
	// The individually priced member keeps the original plan charge
	assert.InDelta(t, 40.00, rows[2].PlanPrice, 1e-9)

	assert.InDelta(t, 280.00+40.00+0.53+12.50+10.00, models.SumTotals(rows), 1e-9)
}

func TestAllocateNameMapping(t *testing.T) {
	rows, err := Allocate(summaryFixture(), Options{
		MemberNames: map[string]string{
			"(999) 637-3009": "Alice",
			"(999) 637-3011": "Bob",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", rows[0].Member)
	// No mapping: identifier used verbatim
	assert.Equal(t, "(999) 637-3010", rows[1].Member)
	assert.Equal(t, "Bob", rows[2].Member)
}

func TestAllocateMissingAccountRow(t *testing.T) {
	rows := summaryFixture()[1:]
	_, err := Allocate(rows, Options{})
	require.ErrorIs(t, err, ErrMissingAccountRow)
}

func TestAllocateNoMemberRows(t *testing.T) {
	rows := summaryFixture()[:1]
	_, err := Allocate(rows, Options{})
	var structErr *StructureError
	require.ErrorAs(t, err, &structErr)
}

func TestAllocateUnreadableLumpSum(t *testing.T) {
	rows := summaryFixture()
	rows[0].Plans = "garbled"
	_, err := Allocate(rows, Options{})
	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	var currErr *CurrencyError
	assert.ErrorAs(t, err, &currErr)
}

func TestAllocateUnreadableMemberCharge(t *testing.T) {
	rows := summaryFixture()
	rows[2].Equipment = "??"
	_, err := Allocate(rows, Options{})
	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
}

func TestAllocateLumpSumWithoutIncludedMembers(t *testing.T) {
	rows := []models.SummaryRow{
		{Identifier: "Account", Plans: "$280.00", Equipment: "-", Services: "-", OneTimeCharges: "-", Total: "$280.00"},
		{Identifier: "(999) 637-3011", LineType: "Voice", Plans: "$40.00", Equipment: "-", Services: "-", OneTimeCharges: "-", Total: "$40.00"},
	}
	_, err := Allocate(rows, Options{PlanCostForAllMembers: false})
	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
}

func TestAllocateAllIndividualNoLumpSum(t *testing.T) {
	rows := []models.SummaryRow{
		{Identifier: "Account", Plans: "-", Equipment: "-", Services: "-", OneTimeCharges: "-", Total: "-"},
		{Identifier: "(999) 637-3011", LineType: "Voice", Plans: "$40.00", Equipment: "-", Services: "-", OneTimeCharges: "-", Total: "$40.00"},
		{Identifier: "(999) 637-3012", LineType: "Voice", Plans: "$35.00", Equipment: "-", Services: "-", OneTimeCharges: "$5.00", Total: "$40.00"},
	}
	out, err := Allocate(rows, Options{PlanCostForAllMembers: false})
	require.NoError(t, err)
	assert.InDelta(t, 40.00, out[0].PlanPrice, 1e-9)
	assert.InDelta(t, 35.00, out[1].PlanPrice, 1e-9)
	assert.InDelta(t, 80.00, models.SumTotals(out), 1e-9)
}

func TestAllocateNegativeCredit(t *testing.T) {
	rows := []models.SummaryRow{
		{Identifier: "Account", Plans: "$100.00", Equipment: "-", Services: "-", OneTimeCharges: "-", Total: "$100.00"},
		{Identifier: "(999) 637-3009", LineType: "Voice", Plans: "Included", Equipment: "-", Services: "-", OneTimeCharges: "-$280.83", Total: "-$230.83"},
		{Identifier: "(999) 637-3010", LineType: "Voice", Plans: "Included", Equipment: "-", Services: "-", OneTimeCharges: "-", Total: "$50.00"},
	}
	out, err := Allocate(rows, Options{PlanCostForAllMembers: false})
	require.NoError(t, err)
	assert.InDelta(t, 50.00-280.83, out[0].Total, 1e-9)
	assert.InDelta(t, 50.00, out[1].Total, 1e-9)
}
