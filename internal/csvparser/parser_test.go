package csvparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/ginjaninja78/sheet-consolidator/internal/config"
	"github.com/ginjaninja78/sheet-consolidator/internal/types"
)

func defaults() config.CSVSettings {
	return config.Default().CSVSettings
}

func cellTexts(t *testing.T, table *types.RawTable) [][]string {
	t.Helper()
	out := make([][]string, len(table.Rows))
	for i, row := range table.Rows {
		for _, v := range row {
			if v.IsNull() {
				out[i] = append(out[i], "<null>")
			} else {
				out[i] = append(out[i], v.Text())
			}
		}
	}
	return out
}

func TestParse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	content := "\uFEFFName, Department ,amount,date\n" +
		"Alice,Sales,100,2024-01-15\n" +
		"\n" +
		" Bob ,N/A,\"1,200.50\",\n" +
		"Carol,HR\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	table, err := Parse(path, defaults())
	require.NoError(t, err)

	assert.Equal(t, "sales.csv", table.Source)
	assert.Equal(t, []string{"Name", " Department ", "amount", "date"}, table.Columns)
	assert.Equal(t, [][]string{
		{"Alice", "Sales", "100", "2024-01-15"},
		{" Bob ", "<null>", "1,200.50", "<null>"},
		{"Carol", "HR", "<null>", "<null>"},
	}, cellTexts(t, table))

	for _, row := range table.Rows {
		for _, v := range row {
			assert.NotEqual(t, types.KindNumber, v.Kind(), "csv cells stay text")
		}
	}
}

func TestParseReaderSettings(t *testing.T) {
	t.Run("pipe delimiter and custom nulls", func(t *testing.T) {
		settings := defaults()
		settings.Delimiter = "pipe"
		settings.NullValues = []string{"-"}

		table, err := ParseReader(strings.NewReader("name|amount\nAlice|-\nBob|NA\n"), "p.csv", settings)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"Alice", "<null>"}, {"Bob", "NA"}}, cellTexts(t, table))
	})

	t.Run("multi-line header", func(t *testing.T) {
		settings := defaults()
		settings.HeaderRows = 2
		settings.DataStartRow = 3

		table, err := ParseReader(strings.NewReader("Employee,,Posting\nName,Amount,Date\nAlice,5,2024-01-01\n"), "m.csv", settings)
		require.NoError(t, err)
		assert.Equal(t, []string{"Employee Name", "Amount", "Posting Date"}, table.Columns)
		assert.Equal(t, 1, table.Len())
	})

	t.Run("blank header cells are numbered", func(t *testing.T) {
		table, err := ParseReader(strings.NewReader("name,,amount\na,b,c\n"), "b.csv", defaults())
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "Column_2", "amount"}, table.Columns)
	})

	t.Run("header only", func(t *testing.T) {
		table, err := ParseReader(strings.NewReader("name,amount\n"), "h.csv", defaults())
		require.NoError(t, err)
		assert.Equal(t, 0, table.Len())
	})

	t.Run("windows-1252", func(t *testing.T) {
		encoded, err := charmap.Windows1252.NewEncoder().String("name\nRené\n")
		require.NoError(t, err)

		settings := defaults()
		settings.Encoding = "Windows-1252"
		table, err := ParseReader(strings.NewReader(encoded), "w.csv", settings)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"René"}}, cellTexts(t, table))
	})
}

func TestParseKeepsDelimiterOnlyRows(t *testing.T) {
	content := "name,department,amount,date\n" +
		",,,\n" +
		"   \n" +
		"Alice,Sales,1,2024-01-15\n" +
		" , ,,\n"

	table, err := ParseReader(strings.NewReader(content), "d.csv", defaults())
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"<null>", "<null>", "<null>", "<null>"},
		{"Alice", "Sales", "1", "2024-01-15"},
		{" ", " ", "<null>", "<null>"},
	}, cellTexts(t, table))
}

func TestParseErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Parse(filepath.Join(t.TempDir(), "nope.csv"), defaults())
		assert.ErrorContains(t, err, "failed to open file")
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseReader(strings.NewReader(""), "e.csv", defaults())
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("too many fields", func(t *testing.T) {
		_, err := ParseReader(strings.NewReader("name,amount\na,1,extra\n"), "x.csv", defaults())
		assert.ErrorIs(t, err, ErrMalformedRow)
	})

	t.Run("unknown encoding", func(t *testing.T) {
		settings := defaults()
		settings.Encoding = "EBCDIC"
		_, err := ParseReader(strings.NewReader("a\n"), "x.csv", settings)
		assert.ErrorContains(t, err, "unsupported encoding")
	})
}
