// Package bill runs the end-to-end analysis of one phone bill PDF:
// extract page text, locate and parse the summary table, allocate charges
// across family members, and reconcile against the stated grand total.
package bill

import (
	"fmt"
	"log/slog"

	"github.com/insightdelivered/phone-bill-splitter/internal/allocate"
	"github.com/insightdelivered/phone-bill-splitter/internal/extractor"
	"github.com/insightdelivered/phone-bill-splitter/internal/models"
	"github.com/insightdelivered/phone-bill-splitter/internal/parser"
)

// Request describes one bill analysis.
type Request struct {
	BillPath              string
	SummaryPage           int // zero-based page index of the summary table
	FamilyCount           int
	PlanCostForAllMembers bool
	MemberNames           map[string]string
	OCRFallback           bool
}

// Result is the outcome of one analysis, ready for the writer, the report
// formatter, or the HTTP API. Each analysis is an independent stateless
// unit of work.
type Result struct {
	BillingPeriod string
	Rows          []models.AllocatedRow
	StatedTotal   float64
	ComputedTotal float64
}

// Analyze runs the full pipeline on one PDF. The reconciliation check runs
// before the caller may treat the result as final: a mismatch aborts the
// pipeline rather than letting an incorrect summary through.
func Analyze(req Request) (*Result, error) {
	pages, err := extractor.ExtractPages(req.BillPath, req.OCRFallback)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", req.BillPath, err)
	}
	slog.Info("extracted bill text", "path", req.BillPath, "pages", len(pages))

	// Billing period lives on the first page; missing it is not fatal,
	// reporting falls back to a default label.
	period, err := extractor.BillingPeriod(pages)
	if err != nil {
		slog.Warn("billing period not extracted", "err", err)
	} else {
		slog.Info("billing period extracted", "period", period)
	}

	summaryLines, err := extractor.PageLines(pages, req.SummaryPage)
	if err != nil {
		return nil, fmt.Errorf("reading summary page: %w", err)
	}

	summaryRows, err := parser.ExtractTable(summaryLines, req.FamilyCount)
	if err != nil {
		return nil, fmt.Errorf("locating summary table: %w", err)
	}
	slog.Info("summary table parsed", "rows", len(summaryRows))

	allocated, err := allocate.Allocate(summaryRows, allocate.Options{
		PlanCostForAllMembers: req.PlanCostForAllMembers,
		MemberNames:           req.MemberNames,
	})
	if err != nil {
		return nil, fmt.Errorf("allocating charges: %w", err)
	}

	firstPageLines, err := extractor.PageLines(pages, 0)
	if err != nil {
		return nil, fmt.Errorf("reading first page: %w", err)
	}
	stated, err := StatedTotal(firstPageLines)
	if err != nil {
		return nil, fmt.Errorf("extracting stated total: %w", err)
	}

	if err := Reconcile(allocated, stated); err != nil {
		return nil, err
	}
	slog.Info("totals reconciled", "total", stated)

	return &Result{
		BillingPeriod: period,
		Rows:          allocated,
		StatedTotal:   stated,
		ComputedTotal: models.SumTotals(allocated),
	}, nil
}
