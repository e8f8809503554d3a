package models

// SummaryRow is one parsed row of the bill summary table with every field
// kept as extracted text. Currency conversion happens later, in allocation.
type SummaryRow struct {
	Identifier     string `json:"identifier"` // "Account" or a phone number like "(999) 637-3009"
	LineType       string `json:"lineType"`   // "Voice" for member rows, empty for the Account row
	Plans          string `json:"plans"`      // currency string, "Included", or "-"
	Equipment      string `json:"equipment"`
	Services       string `json:"services"`
	OneTimeCharges string `json:"oneTimeCharges"`
	Total          string `json:"total"`
}

// IsAccount reports whether this is the aggregate Account row that carries
// the shared plan lump sum for all Included members.
func (r SummaryRow) IsAccount() bool {
	return r.Identifier == "Account"
}

// AllocatedRow is the final per-member share of the bill.
type AllocatedRow struct {
	Member         string  `json:"member"`
	Total          float64 `json:"total"`
	PlanPrice      float64 `json:"planPrice"`
	Equipment      float64 `json:"equipment"`
	Services       float64 `json:"services"`
	OneTimeCharges float64 `json:"oneTimeCharges"`
}

// SumTotals returns the sum of the per-member totals.
func SumTotals(rows []AllocatedRow) float64 {
	var sum float64
	for _, r := range rows {
		sum += r.Total
	}
	return sum
}
