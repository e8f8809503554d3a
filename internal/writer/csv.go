package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/insightdelivered/phone-bill-splitter/internal/models"
)

// Column order of the summary artifact.
var header = []string{"member", "total", "plan_price", "equipment", "services", "one_time_charges"}

// SummaryWriter writes the per-member allocation to CSV. Monetary values are
// plain decimal numbers without a currency symbol, at full float precision so
// re-running an unchanged bill yields a byte-identical artifact.
type SummaryWriter struct{}

// WriteToFile writes the summary to a CSV file at the given path.
func (w *SummaryWriter) WriteToFile(path string, rows []models.AllocatedRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, rows)
}

// Write writes the summary in CSV format to the given writer.
func (w *SummaryWriter) Write(out io.Writer, rows []models.AllocatedRow) error {
	writer := csv.NewWriter(out)
	defer writer.Flush()

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			row.Member,
			formatAmount(row.Total),
			formatAmount(row.PlanPrice),
			formatAmount(row.Equipment),
			formatAmount(row.Services),
			formatAmount(row.OneTimeCharges),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return writer.Error()
}

// ReadFromFile reads a previously written summary artifact back, for the
// send command which formats an already-analyzed bill.
func ReadFromFile(path string) ([]models.AllocatedRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open summary file %q: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read summary file %q: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("summary file %q has no data rows", path)
	}

	var rows []models.AllocatedRow
	for _, rec := range records[1:] {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("summary row has %d fields, want %d", len(rec), len(header))
		}
		values := make([]float64, len(header)-1)
		for i := range values {
			v, err := strconv.ParseFloat(rec[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("summary value %q: %w", rec[i+1], err)
			}
			values[i] = v
		}
		rows = append(rows, models.AllocatedRow{
			Member:         rec[0],
			Total:          values[0],
			PlanPrice:      values[1],
			Equipment:      values[2],
			Services:       values[3],
			OneTimeCharges: values[4],
		})
	}
	return rows, nil
}

// WriteBillingPeriod persists the extracted billing period label to a plain
// text side file for later reporting use.
func WriteBillingPeriod(path, period string) error {
	if err := os.WriteFile(path, []byte(period), 0o644); err != nil {
		return fmt.Errorf("failed to write billing period file %q: %w", path, err)
	}
	return nil
}

// ReadBillingPeriod reads the billing period side file; the fallback is
// returned when the file is absent or empty.
func ReadBillingPeriod(path, fallback string) string {
	data, err := os.ReadFile(path)
	if err != nil || len(data) == 0 {
		return fallback
	}
	return string(data)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
