package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverInputFilesSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.xlsx", "A.csv", "a.csv", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nested", "c.csv"), []byte("x"), 0644))

	fm := NewFileManager(dir, "", "")
	files, err := fm.DiscoverInputFiles()
	require.NoError(t, err)

	var names []string
	for _, f := range files {
		assert.Equal(t, dir, filepath.Dir(f))
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{"A.csv", "a.csv", "b.xlsx", "notes.txt"}, names)
}

func TestDiscoverInputFilesMissingDir(t *testing.T) {
	fm := NewFileManager(filepath.Join(t.TempDir(), "missing"), "", "")
	assert.False(t, fm.InputDirExists())

	_, err := fm.DiscoverInputFiles()
	assert.ErrorContains(t, err, "failed to scan input directory")
}

func TestEnsureDirectories(t *testing.T) {
	root := t.TempDir()
	fm := NewFileManager(filepath.Join(root, "input"), filepath.Join(root, "output"), filepath.Join(root, "logs"))

	require.NoError(t, fm.EnsureDirectories())

	assert.DirExists(t, fm.OutputDir)
	assert.DirExists(t, fm.LogDir)
	assert.NoDirExists(t, fm.InputDir)
	assert.False(t, fm.InputDirExists())
}

func TestGenerateOutputFileName(t *testing.T) {
	now := time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC)

	assert.Equal(t, "master_report.xlsx", generateOutputFileName("master_report.xlsx", nil, now))
	assert.Equal(t,
		"report_20240115_143022_run-1.xlsx",
		generateOutputFileName("report_{timestamp}_{run_id}.xlsx", map[string]string{"run_id": "run-1"}, now))
	assert.Equal(t, "20240115-143022.parquet", generateOutputFileName("{date}-{time}.parquet", nil, now))

	name := generateOutputFileName("{uuid}.xlsx", nil, now)
	_, err := uuid.Parse(name[:len(name)-len(".xlsx")])
	assert.NoError(t, err)
}

func TestFileExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f")
	assert.False(t, FileExists(path))
	require.NoError(t, os.WriteFile(path, nil, 0644))
	assert.True(t, FileExists(path))
}
