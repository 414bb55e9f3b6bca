package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sheet-consolidator/internal/config"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		path   string
		want   Format
		wantOK bool
	}{
		{"in/a.csv", FormatCSV, true},
		{"in/b.xlsx", FormatXLSX, true},
		{"in/c.xls", "", false},
		{"in/d.CSV", "", false},
		{"in/README", "", false},
	}
	for _, tt := range tests {
		got, ok := Detect(tt.path)
		assert.Equal(t, tt.want, got, tt.path)
		assert.Equal(t, tt.wantOK, ok, tt.path)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "a.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("name;amount\nAlice;10\n"), 0644))

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"name", "amount"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Bob", 20}))
	xlsxPath := filepath.Join(dir, "b.xlsx")
	require.NoError(t, f.SaveAs(xlsxPath))
	require.NoError(t, f.Close())

	txtPath := filepath.Join(dir, "c.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("ignored"), 0644))

	settings := config.Default().CSVSettings
	settings.Delimiter = ";"
	l := New(settings)

	files, err := l.Discover(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{csvPath, xlsxPath, txtPath}, files)

	csvTable, err := l.Load(csvPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "amount"}, csvTable.Columns)
	assert.Equal(t, 1, csvTable.Len())

	xlsxTable, err := l.Load(xlsxPath)
	require.NoError(t, err)
	assert.Equal(t, "b.xlsx", xlsxTable.Source)
	assert.Equal(t, 1, xlsxTable.Len())

	_, err = l.Load(txtPath)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.ErrorContains(t, err, "txt")
}
