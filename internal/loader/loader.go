// Package loader turns the files of an input directory into RawTables,
// dispatching on file extension.
package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ginjaninja78/sheet-consolidator/internal/config"
	"github.com/ginjaninja78/sheet-consolidator/internal/csvparser"
	"github.com/ginjaninja78/sheet-consolidator/internal/types"
	"github.com/ginjaninja78/sheet-consolidator/internal/xlsxparser"
	"github.com/ginjaninja78/sheet-consolidator/pkg/utils"
)

// ErrUnsupportedFormat is returned by Load for extensions it cannot read.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Format is a recognised input kind.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Detect classifies a path by extension. Matching is exact, as in ".csv"
// and ".xlsx"; ".CSV" is unsupported.
func Detect(path string) (Format, bool) {
	switch filepath.Ext(path) {
	case ".csv":
		return FormatCSV, true
	case ".xlsx":
		return FormatXLSX, true
	default:
		return "", false
	}
}

// DirectoryLoader reads .csv and .xlsx files.
type DirectoryLoader struct {
	csv config.CSVSettings
}

// New returns a loader that parses CSV files with the given settings.
func New(csv config.CSVSettings) *DirectoryLoader {
	return &DirectoryLoader{csv: csv}
}

// Discover lists the files directly inside dir, sorted by name.
func (l *DirectoryLoader) Discover(dir string) ([]string, error) {
	return utils.DiscoverFiles(dir)
}

// Load parses one file.
//
// RETURNS:
//   - The file as a RawTable.
//   - An error wrapping ErrUnsupportedFormat for unknown extensions, or the
//     parser's error for unreadable or malformed files.
func (l *DirectoryLoader) Load(path string) (*types.RawTable, error) {
	format, ok := Detect(path)
	if !ok {
		ext := strings.TrimPrefix(filepath.Ext(path), ".")
		if ext == "" {
			ext = "no extension"
		}
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	switch format {
	case FormatCSV:
		return csvparser.Parse(path, l.csv)
	default:
		return xlsxparser.Parse(path)
	}
}
