package excel

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/couchcryptid/homeless-data-etl/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Sheet names, in workbook order.
const (
	SheetSummary  = "Summary"
	SheetTotal    = "TotalByState"
	SheetVeterans = "VeteransByState"
	SheetRanking  = "StateRanking"
)

// Exporter writes a report workbook.
// It implements pipeline.Exporter.
type Exporter struct {
	path   string
	logger *slog.Logger
}

// NewExporter creates an exporter writing to path.
func NewExporter(path string, logger *slog.Logger) *Exporter {
	return &Exporter{path: path, logger: logger}
}

// Export writes the summary, both single-category rankings, and the merged
// ranking as separate sheets, and returns the workbook path.
func (e *Exporter) Export(ctx context.Context, r domain.Report) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return "", fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetTotal, SheetVeterans, SheetRanking} {
		if _, err := f.NewSheet(name); err != nil {
			return "", fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	if err := writeSummary(f, r); err != nil {
		return "", err
	}
	if err := writeSums(f, SheetTotal, "Total", r.TotalRanking); err != nil {
		return "", err
	}
	if err := writeSums(f, SheetVeterans, "Veterans", r.VeteransRanking); err != nil {
		return "", err
	}
	if err := writeRankings(f, r.Rankings); err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(e.path), 0o755); err != nil {
		return "", fmt.Errorf("create workbook dir: %w", err)
	}
	if err := f.SaveAs(e.path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}

	e.logger.Debug("workbook written", "path", e.path, "states", len(r.Rankings))
	return e.path, nil
}

func writeSummary(f *excelize.File, r domain.Report) error {
	header := []any{"Column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}
	if err := setRow(f, SheetSummary, 1, header); err != nil {
		return err
	}
	for i, s := range r.Summary {
		s = s.Round(3)
		row := []any{s.Column, s.Count, cell(s.Mean), cell(s.Std), cell(s.Min), cell(s.P25), cell(s.P50), cell(s.P75), cell(s.Max)}
		if err := setRow(f, SheetSummary, i+2, row); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetSummary, "A", "A", 28)
}

func writeSums(f *excelize.File, sheet, label string, sums []domain.StateSum) error {
	if err := setRow(f, sheet, 1, []any{"State", label}); err != nil {
		return err
	}
	for i, s := range sums {
		if err := setRow(f, sheet, i+2, []any{s.StateCode, s.Sum}); err != nil {
			return err
		}
	}
	return nil
}

func writeRankings(f *excelize.File, rows []domain.StateRanking) error {
	if err := setRow(f, SheetRanking, 1, []any{"State", "StateName", "Total", "Veterans", "Youth"}); err != nil {
		return err
	}
	for i, r := range rows {
		if err := setRow(f, SheetRanking, i+2, []any{r.StateCode, r.StateName, r.Total, r.Veterans, r.Youth}); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetRanking, "B", "B", 24)
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, start, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// cell leaves undefined statistics blank; spreadsheets have no NaN.
func cell(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return v
}
