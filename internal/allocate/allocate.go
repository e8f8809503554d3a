// Package allocate converts the raw billing summary table into per-member
// charges according to the configured plan cost-sharing policy.
package allocate

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/insightdelivered/phone-bill-splitter/internal/models"
)

// The "Included" plan marker: the member's plan charge is bundled into the
// Account row's lump sum rather than priced per line.
const includedMarker = "Included"

// ErrMissingAccountRow means the summary table has no aggregate Account row,
// so the shared plan lump sum cannot be determined.
var ErrMissingAccountRow = errors.New("summary table has no Account row")

// StructureError means the parsed table is missing a required row or value.
type StructureError struct {
	Reason string
}

func (e *StructureError) Error() string {
	return "invalid table structure: " + e.Reason
}

// FormatError means a table value that must be numeric could not be read,
// typically the Account row's plan lump sum.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	return "invalid table format: " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

// Options configures one allocation run.
type Options struct {
	// PlanCostForAllMembers selects the shared-equally policy: the total
	// plan cost (Account lump sum plus individually priced plans) is split
	// evenly across every member. When false, included members split the
	// lump sum and individually priced members keep their own plan charge.
	PlanCostForAllMembers bool

	// MemberNames maps phone identifiers to display names. Identifiers
	// without a mapping are used verbatim.
	MemberNames map[string]string
}

// Allocate turns parsed summary rows into per-member allocations. The
// Account row's lump sum is consumed by the policy and the row itself is
// dropped from the output.
func Allocate(rows []models.SummaryRow, opts Options) ([]models.AllocatedRow, error) {
	account, members, err := splitAccountRow(rows)
	if err != nil {
		return nil, err
	}

	lumpSum, err := ParseCurrency(account.Plans)
	if err != nil {
		return nil, &FormatError{Reason: "account plan lump sum unreadable", Err: err}
	}

	// Partition members by plan pricing
	includedCount := 0
	individualSum := 0.0
	individualPlans := make(map[int]float64, len(members))
	for i, m := range members {
		if m.Plans == includedMarker {
			includedCount++
			continue
		}
		v, err := ParseCurrency(m.Plans)
		if err != nil {
			return nil, &FormatError{Reason: fmt.Sprintf("plan charge for %s unreadable", m.Identifier), Err: err}
		}
		individualPlans[i] = v
		individualSum += v
	}

	planPrice, err := planPricer(opts.PlanCostForAllMembers, lumpSum, individualSum, includedCount, individualPlans)
	if err != nil {
		return nil, err
	}

	out := make([]models.AllocatedRow, 0, len(members))
	for i, m := range members {
		equipment, err := ParseCurrency(m.Equipment)
		if err != nil {
			return nil, &FormatError{Reason: fmt.Sprintf("equipment charge for %s unreadable", m.Identifier), Err: err}
		}
		services, err := ParseCurrency(m.Services)
		if err != nil {
			return nil, &FormatError{Reason: fmt.Sprintf("services charge for %s unreadable", m.Identifier), Err: err}
		}
		oneTime, err := ParseCurrency(m.OneTimeCharges)
		if err != nil {
			return nil, &FormatError{Reason: fmt.Sprintf("one-time charge for %s unreadable", m.Identifier), Err: err}
		}

		plan := planPrice(i)
		out = append(out, models.AllocatedRow{
			Member:         displayName(m.Identifier, opts.MemberNames),
			PlanPrice:      plan,
			Equipment:      equipment,
			Services:       services,
			OneTimeCharges: oneTime,
			Total:          plan + equipment + services + oneTime,
		})
	}

	slog.Info("bill allocated", "members", len(out), "total", models.SumTotals(out))
	return out, nil
}

// splitAccountRow separates the single aggregate Account row from the member
// rows. Exactly one Account row is required; extras are ignored with a
// warning, absence is fatal.
func splitAccountRow(rows []models.SummaryRow) (models.SummaryRow, []models.SummaryRow, error) {
	var account models.SummaryRow
	found := false
	var members []models.SummaryRow
	for _, r := range rows {
		if r.IsAccount() {
			if found {
				slog.Warn("multiple Account rows in summary table, using the first")
				continue
			}
			account = r
			found = true
			continue
		}
		members = append(members, r)
	}
	if !found {
		return models.SummaryRow{}, nil, ErrMissingAccountRow
	}
	if len(members) == 0 {
		return models.SummaryRow{}, nil, &StructureError{Reason: "no member rows"}
	}
	return account, members, nil
}

// planPricer resolves the cost-sharing policy into a per-member plan price
// function, keyed by member row index.
func planPricer(shareEqually bool, lumpSum, individualSum float64, includedCount int, individualPlans map[int]float64) (func(int) float64, error) {
	if shareEqually {
		memberCount := includedCount + len(individualPlans)
		perCapita := (lumpSum + individualSum) / float64(memberCount)
		return func(int) float64 { return perCapita }, nil
	}

	if includedCount == 0 {
		if lumpSum != 0 {
			return nil, &FormatError{Reason: "account lump sum present but no Included members to share it"}
		}
		return func(i int) float64 { return individualPlans[i] }, nil
	}

	// Exact quotient, computed once, not re-derived per member
	perIncluded := lumpSum / float64(includedCount)
	return func(i int) float64 {
		if v, ok := individualPlans[i]; ok {
			return v
		}
		return perIncluded
	}, nil
}

func displayName(identifier string, names map[string]string) string {
	if name, ok := names[identifier]; ok {
		return name
	}
	return identifier
}
