// Package parquetio exports the canonical dataset as a Parquet file.
package parquetio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	parquet "github.com/segmentio/parquet-go"
	local "github.com/xitongsys/parquet-go-source/local"
	pw "github.com/xitongsys/parquet-go/writer"

	"github.com/ginjaninja78/sheet-consolidator/internal/types"
)

// writerParallelism is the number of goroutines the JSON writer marshals with.
const writerParallelism = 4

// schemaJSON describes the four canonical columns. Amounts are doubles; dates
// are YYYY-MM-DD text and null when invalid.
func schemaJSON() string {
	type field struct {
		Tag string `json:"Tag"`
	}
	type schema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}

	sc := schema{
		Tag: "name=consolidated, repetitiontype=REQUIRED",
		Fields: []field{
			{Tag: "name=" + types.ColumnName + ", type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"},
			{Tag: "name=" + types.ColumnDepartment + ", type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=REQUIRED"},
			{Tag: "name=" + types.ColumnAmount + ", type=DOUBLE, repetitiontype=REQUIRED"},
			{Tag: "name=" + types.ColumnDate + ", type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"},
		},
	}

	b, _ := json.Marshal(sc)
	return string(b)
}

// Exporter writes datasets to Parquet files.
type Exporter struct{}

// NewExporter returns an Exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export writes data to path, replacing any existing file. The file is
// assembled next to path and renamed into place once complete.
func (e *Exporter) Export(path string, data []types.CanonicalRecord) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	tmp := filepath.Join(dir, "."+filepath.Base(path)+".tmp")
	defer os.Remove(tmp)

	if err := writeAll(tmp, data); err != nil {
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to move export into place: %w", err)
	}
	return nil
}

func writeAll(path string, data []types.CanonicalRecord) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("parquet file create: %w", err)
	}

	writer, err := pw.NewJSONWriter(schemaJSON(), fw, writerParallelism)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet writer init: %w", err)
	}

	for i, rec := range data {
		row, err := rowJSON(rec)
		if err != nil {
			_ = fw.Close()
			return fmt.Errorf("parquet encode row %d: %w", i+1, err)
		}
		if err := writer.Write(row); err != nil {
			_ = fw.Close()
			return fmt.Errorf("parquet write row %d: %w", i+1, err)
		}
	}

	if err := writer.WriteStop(); err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet finalize: %w", err)
	}
	return fw.Close()
}

func rowJSON(rec types.CanonicalRecord) (string, error) {
	row := map[string]any{
		types.ColumnName:       rec.Name,
		types.ColumnDepartment: rec.Department,
		types.ColumnAmount:     rec.Amount.InexactFloat64(),
	}
	if rec.Date.Valid() {
		row[types.ColumnDate] = rec.Date.String()
	}

	b, err := json.Marshal(row)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// RowCount returns the number of rows stored in a Parquet file.
func RowCount(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return 0, fmt.Errorf("parquet open: %w", err)
	}
	return pf.NumRows(), nil
}
