// =============================================================================
// Sheet Consolidator - File Manager Utility
// =============================================================================
//
// This module provides the file system helpers around a run:
//   - Directory management (output and log directories)
//   - Input discovery in a fixed, lexicographic order
//   - Output file naming
//
// The input directory is never created here: a missing input directory is a
// condition the run reports, not one it repairs.
//
// =============================================================================

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for a consolidation run.
type FileManager struct {
	// InputDir is scanned for source files.
	InputDir string

	// OutputDir receives the report and exports.
	OutputDir string

	// LogDir holds the log file.
	LogDir string
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, logDir string) *FileManager {
	return &FileManager{
		InputDir:  inputDir,
		OutputDir: outputDir,
		LogDir:    logDir,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates the output and log directories if they don't exist.
//
// RETURNS:
//   - An error if any directory cannot be created.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.OutputDir, fm.LogDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// InputDirExists reports whether InputDir exists and is a directory.
func (fm *FileManager) InputDirExists() bool {
	info, err := os.Stat(fm.InputDir)
	return err == nil && info.IsDir()
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles lists the regular files directly inside InputDir.
//
// RETURNS:
//   - File paths sorted lexicographically by file name. Subdirectories are
//     not descended into. Every file is returned whatever its extension;
//     dispatch by type is the loader's job.
//   - An error if the directory cannot be read.
func (fm *FileManager) DiscoverInputFiles() ([]string, error) {
	return DiscoverFiles(fm.InputDir)
}

// DiscoverFiles is DiscoverInputFiles for an arbitrary directory.
func DiscoverFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}

	// ReadDir already sorts, but the order is a guarantee callers rely on.
	sort.Strings(names)

	result := make([]string, len(names))
	for i, name := range names {
		result[i] = filepath.Join(dir, name)
	}

	return result, nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName expands placeholders in a file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//   - params: Extra placeholder values, e.g. {"run_id": "..."}.
//
// RETURNS:
//   - The generated file name. The extension is whatever format carries.
//
// EXAMPLE:
//   format: "master_report_{date}_{run_id}.xlsx"
//   params: {"run_id": "a1b2c3d4"}
//   output: "master_report_20240115_a1b2c3d4.xlsx"
func GenerateOutputFileName(format string, params map[string]string) string {
	return generateOutputFileName(format, params, time.Now())
}

func generateOutputFileName(format string, params map[string]string, now time.Time) string {
	replacements := map[string]string{
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	if strings.Contains(format, "{uuid}") {
		replacements["{uuid}"] = uuid.New().String()
	}

	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	return result
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
