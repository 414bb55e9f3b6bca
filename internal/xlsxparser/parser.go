// =============================================================================
// Sheet Consolidator - XLSX Parser Module
// =============================================================================
//
// This module reads the first worksheet of an .xlsx workbook into a RawTable.
// The first row is the header; every following row is data.
//
// CELL TYPES:
//   | Stored as                     | Becomes          |
//   |-------------------------------|------------------|
//   | shared / inline string        | StringValue      |
//   | number with a date format     | DateValue        |
//   | other number                  | NumberValue      |
//   | ISO date cell (t="d")         | DateValue        |
//   | boolean                       | "TRUE" / "FALSE" |
//   | empty                         | NullValue        |
//
// =============================================================================

package xlsxparser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sheet-consolidator/internal/types"
)

// ErrNoSheets is returned for a workbook without worksheets.
var ErrNoSheets = errors.New("workbook has no sheets")

// builtinDateFormats are the predefined number format IDs that render a date.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads the first sheet of an XLSX file.
//
// PARAMETERS:
//   - filePath: The path to the workbook.
//
// RETURNS:
//   - The sheet as a RawTable named after the file.
//   - An error if the file is not a readable workbook.
func Parse(filePath string) (*types.RawTable, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, ErrNoSheets
	}

	return ParseSheet(f, sheetName, filepath.Base(filePath))
}

// ParseSheet reads one sheet of an open workbook.
func ParseSheet(f *excelize.File, sheetName, source string) (*types.RawTable, error) {
	rows, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	if len(rows) == 0 {
		return types.NewRawTable(source, nil), nil
	}

	// Data may run wider than the header row.
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	r := &sheetReader{f: f, sheet: sheetName, dateStyles: make(map[int]bool)}
	table := types.NewRawTable(source, headerNames(rows[0], width))

	for i := 1; i < len(rows); i++ {
		row := rows[i]

		if len(row) == 0 || isRowEmpty(row) {
			continue
		}

		cells := make([]types.Value, width)
		for col, raw := range row {
			v, err := r.cellValue(i, col, raw)
			if err != nil {
				return nil, fmt.Errorf("error reading row %d: %w", i+1, err)
			}
			cells[col] = v
		}
		table.AppendRow(cells)
	}

	return table, nil
}

// headerNames pads the header to width and names blank cells "Column_N".
func headerNames(header []string, width int) []string {
	names := make([]string, width)
	for i := range names {
		if i < len(header) && strings.TrimSpace(header[i]) != "" {
			names[i] = header[i]
		} else {
			names[i] = fmt.Sprintf("Column_%d", i+1)
		}
	}
	return names
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// =============================================================================
// CELL TYPING
// =============================================================================

type sheetReader struct {
	f     *excelize.File
	sheet string

	// dateStyles caches whether a style ID formats numbers as dates.
	dateStyles map[int]bool
}

// cellValue types one raw cell. rowIndex and col are 0-based.
func (r *sheetReader) cellValue(rowIndex, col int, raw string) (types.Value, error) {
	if raw == "" {
		return types.NullValue(), nil
	}

	cell, err := excelize.CoordinatesToCellName(col+1, rowIndex+1)
	if err != nil {
		return types.NullValue(), err
	}

	cellType, err := r.f.GetCellType(r.sheet, cell)
	if err != nil {
		return types.NullValue(), err
	}

	switch cellType {
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula, excelize.CellTypeError:
		return types.StringValue(raw), nil

	case excelize.CellTypeBool:
		if raw == "1" || strings.EqualFold(raw, "true") {
			return types.StringValue("TRUE"), nil
		}
		return types.StringValue("FALSE"), nil

	case excelize.CellTypeDate:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return types.DateValue(types.DateOf(t)), nil
			}
		}
		return types.StringValue(raw), nil
	}

	num, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return types.StringValue(raw), nil
	}

	if r.isDateStyled(cell) {
		if t, err := excelize.ExcelDateToTime(num, false); err == nil {
			return types.DateValue(types.DateOf(t)), nil
		}
	}

	return types.NumberValue(num), nil
}

// isDateStyled reports whether the cell's number format displays a date.
func (r *sheetReader) isDateStyled(cell string) bool {
	styleID, err := r.f.GetCellStyle(r.sheet, cell)
	if err != nil || styleID == 0 {
		return false
	}

	if isDate, ok := r.dateStyles[styleID]; ok {
		return isDate
	}

	isDate := false
	if style, err := r.f.GetStyle(styleID); err == nil && style != nil {
		isDate = builtinDateFormats[style.NumFmt] ||
			(style.CustomNumFmt != nil && isDateFormatCode(*style.CustomNumFmt))
	}

	r.dateStyles[styleID] = isDate
	return isDate
}

// isDateFormatCode reports whether a custom number format shows a year or
// day. Quoted literals and bracketed sections (colors, locales, elapsed
// time) are ignored; "m" alone is ambiguous with minutes and does not count.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false

	for _, c := range strings.ToLower(code) {
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '[':
			inBracket = true
		case c == ']':
			inBracket = false
		case inBracket:
		default:
			b.WriteRune(c)
		}
	}

	plain := b.String()
	return strings.ContainsAny(plain, "yd")
}
