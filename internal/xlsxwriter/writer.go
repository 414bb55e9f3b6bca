// =============================================================================
// Sheet Consolidator - XLSX Report Writer
// =============================================================================
//
// This module writes the consolidated report workbook.
//
// WORKBOOK STRUCTURE:
//   Sheet 1 "Cleaned Data"
//     | name  | department | amount | date       |
//     |-------|------------|--------|------------|
//     | Alice | Sales      | 100    | 2024-01-15 |
//     | Bob   | Unknown    | 0      |            |   <- invalid date: empty cell
//
//   Sheet 2 "Summary"
//     | department | total_amount |
//     |------------|--------------|
//     | Sales      | 150          |
//
// Dates are real date cells displayed as yyyy-mm-dd. The workbook is written
// to a temporary file and renamed into place, so a failed write never leaves
// a partial report behind.
//
// =============================================================================

package xlsxwriter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sheet-consolidator/internal/types"
)

// firstSerialDate is the earliest date an Excel serial number can hold.
var firstSerialDate = time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)

// Sheet names, in workbook order.
const (
	DataSheet    = "Cleaned Data"
	SummarySheet = "Summary"
)

// SummaryColumns is the header of the summary sheet.
var SummaryColumns = []string{"department", "total_amount"}

// DateNumFmt displays date cells as YYYY-MM-DD.
const DateNumFmt = "yyyy-mm-dd"

// Writer writes report workbooks. The zero value is ready to use.
type Writer struct{}

// New returns a Writer.
func New() *Writer {
	return &Writer{}
}

// Write creates the report at path, creating its directory if needed.
//
// PARAMETERS:
//   - path: Destination .xlsx file. An existing file is replaced.
//   - data: The canonical dataset, written in order.
//   - summary: The department totals, written in order.
//
// RETURNS:
//   - An error if the workbook cannot be built or saved.
func (w *Writer) Write(path string, data []types.CanonicalRecord, summary []types.SummaryRow) error {
	f, err := Build(data, summary)
	if err != nil {
		return err
	}
	defer f.Close()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".report-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to move workbook into place: %w", err)
	}

	return nil
}

// Build assembles the report workbook in memory. The caller closes it.
func Build(data []types.CanonicalRecord, summary []types.SummaryRow) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", DataSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name data sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to add summary sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeData(f, data, header); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSummary(f, summary, header); err != nil {
		f.Close()
		return nil, err
	}

	f.SetActiveSheet(0)
	return f, nil
}

// =============================================================================
// SHEET WRITERS
// =============================================================================

func writeData(f *excelize.File, data []types.CanonicalRecord, headerStyle int) error {
	if err := writeHeader(f, DataSheet, types.CanonicalColumns, headerStyle); err != nil {
		return err
	}

	for i, rec := range data {
		var date interface{}
		switch {
		case !rec.Date.Valid():
		case rec.Date.Time().Before(firstSerialDate):
			// Excel has no serial before 1900; keep the ISO text.
			date = rec.Date.String()
		default:
			date = rec.Date.Time()
		}

		row := []interface{}{rec.Name, rec.Department, rec.Amount.InexactFloat64(), date}
		if err := f.SetSheetRow(DataSheet, cellName(1, i+2), &row); err != nil {
			return fmt.Errorf("failed to write data row %d: %w", i+1, err)
		}
	}

	if len(data) == 0 {
		return nil
	}

	dateFmt := DateNumFmt
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}
	if err := f.SetCellStyle(DataSheet, cellName(4, 2), cellName(4, len(data)+1), dateStyle); err != nil {
		return fmt.Errorf("failed to style date column: %w", err)
	}

	return f.SetColWidth(DataSheet, "A", "D", 16)
}

func writeSummary(f *excelize.File, summary []types.SummaryRow, headerStyle int) error {
	if err := writeHeader(f, SummarySheet, SummaryColumns, headerStyle); err != nil {
		return err
	}

	for i, s := range summary {
		row := []interface{}{s.Department, s.TotalAmount.InexactFloat64()}
		if err := f.SetSheetRow(SummarySheet, cellName(1, i+2), &row); err != nil {
			return fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}

	return f.SetColWidth(SummarySheet, "A", "B", 16)
}

func writeHeader(f *excelize.File, sheet string, columns []string, style int) error {
	row := make([]interface{}, len(columns))
	for i, c := range columns {
		row[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	return f.SetCellStyle(sheet, "A1", cellName(len(columns), 1), style)
}

// cellName converts 1-based coordinates; inputs here are always in range.
func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
