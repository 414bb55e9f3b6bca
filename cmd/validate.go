// =============================================================================
// Sheet Consolidator - Validate Command
// =============================================================================
//
// This file defines the 'validate' command. It resolves the configuration
// and shows what a run would read, without writing a report or a log file.
//
// COMMAND USAGE:
//   consolidator validate [--parse]
//
// OUTPUT:
//   Input directory: ./input
//     a.csv          csv
//     b.xlsx         xlsx    3 rows
//     notes.txt      skipped (unsupported extension)
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sheet-consolidator/internal/config"
	"github.com/ginjaninja78/sheet-consolidator/internal/loader"
	"github.com/ginjaninja78/sheet-consolidator/internal/parquetio"
	"github.com/ginjaninja78/sheet-consolidator/pkg/utils"
)

// parseInputs makes validate parse every candidate file.
var parseInputs bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and list the input files",
	Long: `The validate command loads the configuration (file, environment and
.env), then lists each file of the input directory with the loader it would
be dispatched to. With --parse every file is also parsed and its row count
or error is shown.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return validateInputs(cmd.OutOrStdout(), cfg, parseInputs)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&parseInputs, "parse", false, "Parse each input file and report rows or errors")
}

// validateInputs prints the configuration and the dispatch of every input.
//
// RETURNS:
//   - An error if the input directory is missing or no file is loadable.
func validateInputs(w io.Writer, cfg *config.MainConfig, parse bool) error {
	fmt.Fprintf(w, "Configuration OK\n")
	fmt.Fprintf(w, "Input directory:  %s\n", cfg.InputDir)
	fmt.Fprintf(w, "Report:           %s\n", filepath.Join(cfg.OutputDir, cfg.OutputFile))
	fmt.Fprintf(w, "Log file:         %s\n", cfg.LogFile)
	fmt.Fprintf(w, "Mail enabled:     %t\n", cfg.Notify.Enabled)

	if cfg.Export.ParquetFile != "" {
		export := filepath.Join(cfg.OutputDir, cfg.Export.ParquetFile)
		if rows, err := parquetio.RowCount(export); err == nil {
			fmt.Fprintf(w, "Last export:      %s (%d rows)\n", export, rows)
		}
	}

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, filepath.Dir(cfg.LogFile))
	if !fm.InputDirExists() {
		return fmt.Errorf("input directory does not exist: %s", cfg.InputDir)
	}

	files, err := fm.DiscoverInputFiles()
	if err != nil {
		return fmt.Errorf("failed to discover input files: %w", err)
	}

	tl := loader.New(cfg.CSVSettings)
	loadable := 0

	fmt.Fprintf(w, "\nFound %d file(s):\n", len(files))
	for _, file := range files {
		name := filepath.Base(file)

		format, ok := loader.Detect(file)
		if !ok {
			fmt.Fprintf(w, "  %-30s skipped (unsupported extension)\n", name)
			continue
		}

		if !parse {
			fmt.Fprintf(w, "  %-30s %s\n", name, format)
			loadable++
			continue
		}

		table, err := tl.Load(file)
		if err != nil {
			fmt.Fprintf(w, "  %-30s %-5s ✗ %v\n", name, format, err)
			continue
		}
		fmt.Fprintf(w, "  %-30s %-5s %d rows, %d columns\n", name, format, table.Len(), len(table.Columns))
		loadable++
	}

	if loadable == 0 {
		return errors.New("no loadable input files")
	}
	return nil
}
