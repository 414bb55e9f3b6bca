package parquetio

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	parquet "github.com/segmentio/parquet-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sheet-consolidator/internal/types"
)

type exportRow struct {
	Name       string  `parquet:"name"`
	Department string  `parquet:"department"`
	Amount     float64 `parquet:"amount"`
	Date       *string `parquet:"date,optional"`
}

func readRows(t *testing.T, path string) []exportRow {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r := parquet.NewGenericReader[exportRow](f)
	defer r.Close()

	rows := make([]exportRow, r.NumRows())
	n, err := r.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestExport(t *testing.T) {
	data := []types.CanonicalRecord{
		{Name: "Alice", Department: "Sales", Amount: decimal.RequireFromString("100.25"), Date: types.NewDate(2024, time.January, 15)},
		{Name: "Bob", Department: "Unknown", Amount: decimal.Zero, Date: types.InvalidDate},
	}

	path := filepath.Join(t.TempDir(), "out", "dataset.parquet")
	require.NoError(t, NewExporter().Export(path, data))

	count, err := RowCount(path)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	rows := readRows(t, path)
	require.Len(t, rows, 2)

	assert.Equal(t, "Alice", rows[0].Name)
	assert.Equal(t, "Sales", rows[0].Department)
	assert.InDelta(t, 100.25, rows[0].Amount, 1e-9)
	require.NotNil(t, rows[0].Date)
	assert.Equal(t, "2024-01-15", *rows[0].Date)

	assert.Equal(t, "Unknown", rows[1].Department)
	assert.Nil(t, rows[1].Date)
}

func TestExportEmptyDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, NewExporter().Export(path, nil))

	count, err := RowCount(path)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestExportLeavesNoTemporaryFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dataset.parquet")
	require.NoError(t, NewExporter().Export(path, []types.CanonicalRecord{{Name: "A", Department: "B"}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "dataset.parquet", entries[0].Name())
}

func TestRowCountMissingFile(t *testing.T) {
	_, err := RowCount(filepath.Join(t.TempDir(), "missing.parquet"))
	assert.Error(t, err)
}
