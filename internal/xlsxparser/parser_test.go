package xlsxparser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sheet-consolidator/internal/types"
)

func buildWorkbook(t *testing.T, name string, fill func(f *excelize.File, sheet string)) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	fill(f, "Sheet1")

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestParse(t *testing.T) {
	path := buildWorkbook(t, "hr.xlsx", func(f *excelize.File, sheet string) {
		require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{" NAME", "Department", "Amount", "Date"}))
		require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Alice", "HR", 30.5, "2024-01-15"}))
		require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{"Bob", nil, 12}))

		require.NoError(t, f.SetCellValue(sheet, "D4", 45306))
		style, err := f.NewStyle(&excelize.Style{NumFmt: 14})
		require.NoError(t, err)
		require.NoError(t, f.SetCellStyle(sheet, "D4", "D4", style))
	})

	table, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, "hr.xlsx", table.Source)
	assert.Equal(t, []string{" NAME", "Department", "Amount", "Date"}, table.Columns)
	require.Equal(t, 2, table.Len(), "blank row 3 is skipped")

	alice := table.Rows[0]
	assert.Equal(t, types.StringValue("Alice"), alice[0])
	assert.Equal(t, types.NumberValue(30.5), alice[2])
	assert.Equal(t, types.StringValue("2024-01-15"), alice[3])

	bob := table.Rows[1]
	assert.True(t, bob[1].IsNull())
	assert.Equal(t, types.NumberValue(12), bob[2])
	assert.Equal(t, types.DateValue(types.NewDate(2024, time.January, 15)), bob[3])
}

func TestParseWideRowsAndBooleans(t *testing.T) {
	path := buildWorkbook(t, "wide.xlsx", func(f *excelize.File, sheet string) {
		require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"name"}))
		require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"Alice", true}))
	})

	table, err := Parse(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "Column_2"}, table.Columns)
	assert.Equal(t, types.StringValue("TRUE"), table.Rows[0][1])
}

func TestParseEmptySheet(t *testing.T) {
	path := buildWorkbook(t, "empty.xlsx", func(*excelize.File, string) {})

	table, err := Parse(path)
	require.NoError(t, err)
	assert.Empty(t, table.Columns)
	assert.Equal(t, 0, table.Len())
}

func TestParseNotAWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("this is not a zip archive"), 0644))

	_, err := Parse(path)
	assert.ErrorContains(t, err, "failed to open workbook")
}

func TestIsDateFormatCode(t *testing.T) {
	tests := map[string]bool{
		"yyyy-mm-dd":           true,
		"d-mmm-yy":             true,
		"[$-409]mmmm d, yyyy":  true,
		"0.00":                 false,
		"#,##0":                false,
		"[h]:mm:ss":            false,
		`"day" 0`:              false,
		"[Red]#,##0;[Blue]0.0": false,
	}
	for code, want := range tests {
		assert.Equal(t, want, isDateFormatCode(code), code)
	}
}
