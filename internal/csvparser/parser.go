// =============================================================================
// Sheet Consolidator - CSV Parser Module
// =============================================================================
//
// This module reads comma-separated (or otherwise delimited) text files into
// a RawTable. It handles:
//   - Different delimiters (comma, pipe, tab, semicolon)
//   - Multi-line headers
//   - Custom data start rows
//   - Legacy encodings (Windows-1252, ISO-8859-1, UTF-16)
//   - Null tokens such as "", "NA", "N/A", "NULL"
//
// Cell text is kept exactly as written: no trimming, no case changes. Text
// cells are never turned into numbers here; that happens during cleaning.
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/ginjaninja78/sheet-consolidator/internal/config"
	"github.com/ginjaninja78/sheet-consolidator/internal/types"
)

var (
	// ErrEmptyFile is returned for a file with no header row at all.
	ErrEmptyFile = errors.New("CSV file is empty")

	// ErrMalformedRow is returned when a data row has more fields than the header.
	ErrMalformedRow = errors.New("row has more fields than the header")
)

// utf8BOM is stripped from the first header cell.
const utf8BOM = "\uFEFF"

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse reads a CSV file into a RawTable named after the file.
//
// PARAMETERS:
//   - filePath: The path to the CSV file.
//   - settings: Delimiter, header layout, encoding and null tokens.
//
// RETURNS:
//   - The parsed table. Short rows are padded with nulls.
//   - ErrEmptyFile, ErrMalformedRow or a read error.
func Parse(filePath string, settings config.CSVSettings) (*types.RawTable, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file, filepath.Base(filePath), settings)
}

// ParseReader is Parse over an already open stream.
func ParseReader(r io.Reader, source string, settings config.CSVSettings) (*types.RawTable, error) {
	decoded, err := decodeReader(r, settings.Encoding)
	if err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(bufio.NewReader(decoded))
	configureReader(csvReader, settings)

	allRows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(allRows) == 0 {
		return nil, ErrEmptyFile
	}
	allRows[0][0] = strings.TrimPrefix(allRows[0][0], utf8BOM)

	headers, err := extractHeaders(allRows, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to extract headers: %w", err)
	}

	table := types.NewRawTable(source, headers)
	if err := extractDataRows(table, allRows, settings); err != nil {
		return nil, err
	}

	return table, nil
}

// configureReader configures the CSV reader based on the settings.
func configureReader(reader *csv.Reader, settings config.CSVSettings) {
	switch settings.Delimiter {
	case "\\t", "\t", "tab", "TAB":
		reader.Comma = '\t'
	case "|", "pipe", "PIPE":
		reader.Comma = '|'
	case ";", "semicolon":
		reader.Comma = ';'
	default:
		if len(settings.Delimiter) > 0 {
			reader.Comma = rune(settings.Delimiter[0])
		} else {
			reader.Comma = ','
		}
	}

	// Width is checked against the header in extractDataRows instead.
	reader.FieldsPerRecord = -1

	reader.LazyQuotes = true
	reader.TrimLeadingSpace = false
}

// decodeReader wraps r so it yields UTF-8.
func decodeReader(r io.Reader, name string) (io.Reader, error) {
	var enc encoding.Encoding

	switch strings.ToUpper(strings.ReplaceAll(name, "_", "-")) {
	case "", "UTF-8", "UTF8":
		return r, nil
	case "WINDOWS-1252", "CP1252":
		enc = charmap.Windows1252
	case "ISO-8859-1", "LATIN1", "LATIN-1":
		enc = charmap.ISO8859_1
	case "ISO-8859-15":
		enc = charmap.ISO8859_15
	case "UTF-16", "UTF-16LE":
		enc = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case "UTF-16BE":
		enc = unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}

	return transform.NewReader(r, enc.NewDecoder()), nil
}

// extractHeaders extracts and merges headers from the CSV.
//
// MULTI-LINE HEADER HANDLING:
//   Non-empty cells of each header row are joined with a space, per column.
//
//   Row 1: "Employee", "",       "Posting"
//   Row 2: "Name",     "Amount", "Date"
//   Result: "Employee Name", "Amount", "Posting Date"
func extractHeaders(allRows [][]string, settings config.CSVSettings) ([]string, error) {
	headerRows := settings.HeaderRows
	if headerRows <= 0 {
		headerRows = 1
	}

	if len(allRows) < headerRows {
		return nil, fmt.Errorf("file has fewer rows than header_rows setting")
	}

	if headerRows == 1 {
		return cleanHeaders(allRows[0]), nil
	}

	maxCols := 0
	for i := 0; i < headerRows; i++ {
		if len(allRows[i]) > maxCols {
			maxCols = len(allRows[i])
		}
	}

	headers := make([]string, maxCols)
	for col := 0; col < maxCols; col++ {
		var parts []string
		for row := 0; row < headerRows; row++ {
			if col < len(allRows[row]) {
				if value := strings.TrimSpace(allRows[row][col]); value != "" {
					parts = append(parts, value)
				}
			}
		}
		headers[col] = strings.Join(parts, " ")
	}

	return cleanHeaders(headers), nil
}

// cleanHeaders names blank header cells "Column_N" (1-based) so every column
// stays addressable. Other header text is left for the reconciler.
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))

	for i, header := range headers {
		if strings.TrimSpace(header) == "" {
			header = fmt.Sprintf("Column_%d", i+1)
		}
		cleaned[i] = header
	}

	return cleaned
}

// extractDataRows appends every data row to table except blank lines.
func extractDataRows(table *types.RawTable, allRows [][]string, settings config.CSVSettings) error {
	headerRows := settings.HeaderRows
	if headerRows <= 0 {
		headerRows = 1
	}

	// DataStartRow is 1-indexed.
	startIndex := settings.DataStartRow - 1
	if startIndex < headerRows {
		startIndex = headerRows
	}

	nulls := nullSet(settings.NullValues)
	width := len(table.Columns)

	for rowIndex := startIndex; rowIndex < len(allRows); rowIndex++ {
		row := allRows[rowIndex]

		if isRowEmpty(row) {
			continue
		}

		if len(row) > width {
			return fmt.Errorf("row %d: %w (%d > %d)", rowIndex+1, ErrMalformedRow, len(row), width)
		}

		cells := make([]types.Value, width)
		for colIndex, raw := range row {
			if _, isNull := nulls[raw]; isNull {
				continue
			}
			cells[colIndex] = types.StringValue(raw)
		}

		table.AppendRow(cells)
	}

	return nil
}

func nullSet(tokens []string) map[string]struct{} {
	if tokens == nil {
		tokens = config.DefaultNullValues
	}
	set := make(map[string]struct{}, len(tokens)+1)
	set[""] = struct{}{}
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// isRowEmpty reports a blank line. A row of bare delimiters such as ",,,"
// is data: it becomes an all-null row.
func isRowEmpty(row []string) bool {
	return len(row) == 1 && strings.TrimSpace(row[0]) == ""
}
