// =============================================================================
// Sheet Consolidator - Run Command
// =============================================================================
//
// This file defines the 'run' command, which performs one consolidation of
// the input directory.
//
// COMMAND USAGE:
//   consolidator run [flags]
//
// FLAGS:
//   --input    : Override the input directory
//   --output   : Override the output directory
//   --notify   : Mail the report even if notify.enabled is false
//   --dry-run  : Load and summarize without writing anything
//
// PROCESSING PIPELINE:
//   1. Load configuration and set up logging
//   2. Prepare output and log directories
//   3. Resolve the report (and export) file names
//   4. Build the optional exporter and notifier
//   5. Run the pipeline
//   6. Print the run summary
//
// EXIT STATUS:
//   0 when the report was written (a failed mail or export does not change
//   this), 1 otherwise.
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sheet-consolidator/internal/config"
	"github.com/ginjaninja78/sheet-consolidator/internal/loader"
	"github.com/ginjaninja78/sheet-consolidator/internal/logging"
	"github.com/ginjaninja78/sheet-consolidator/internal/notify"
	"github.com/ginjaninja78/sheet-consolidator/internal/parquetio"
	"github.com/ginjaninja78/sheet-consolidator/internal/pipeline"
	"github.com/ginjaninja78/sheet-consolidator/internal/xlsxwriter"
	"github.com/ginjaninja78/sheet-consolidator/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	// inputDir overrides MainConfig.InputDir when set.
	inputDir string

	// outputDir overrides MainConfig.OutputDir when set.
	outputDir string

	// forceNotify mails the report regardless of notify.enabled.
	forceNotify bool

	// dryRun stops after the summary is computed.
	dryRun bool
)

// runCmd represents the 'run' command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Consolidate the input directory into one report",
	Long: `The run command loads every .csv and .xlsx file directly inside the input
directory, in file name order. Files with other extensions are skipped and
files that cannot be parsed are logged and skipped; the run fails only when
nothing could be loaded or the report cannot be written.

The report has two sheets:
  - "Cleaned Data": name, department, amount, date
  - "Summary":      department, total_amount (largest first)`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runConsolidate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&inputDir, "input", "", "Input directory (overrides config)")
	runCmd.Flags().StringVar(&outputDir, "output", "", "Output directory (overrides config)")
	runCmd.Flags().BoolVar(&forceNotify, "notify", false, "Mail the report after writing it")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Load and summarize without writing output files")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runConsolidate(cmd *cobra.Command) error {
	// =========================================================================
	// STEP 1: CONFIGURATION AND LOGGING
	// =========================================================================

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyRunFlags(cfg)

	logger, closeLog, err := setupLogger(cfg, cmd.ErrOrStderr(), !dryRun)
	if err != nil {
		return err
	}
	defer closeLog()

	// =========================================================================
	// STEP 2: DIRECTORIES
	// =========================================================================

	fm := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, filepath.Dir(cfg.LogFile))
	if !dryRun {
		if err := fm.EnsureDirectories(); err != nil {
			return err
		}
	}

	// =========================================================================
	// STEP 3: FILE NAMES
	// =========================================================================

	runID := uuid.NewString()
	names := map[string]string{"run_id": runID[:8]}

	opts := pipeline.Options{
		InputDir:   cfg.InputDir,
		ReportPath: filepath.Join(cfg.OutputDir, utils.GenerateOutputFileName(cfg.OutputFile, names)),
		DryRun:     dryRun,
		Workers:    cfg.LoadWorkers,
	}

	obs := logging.NewSlogObserver(logger).With("run_id", runID[:8])
	extra := []pipeline.Option{pipeline.WithRunID(runID)}

	// =========================================================================
	// STEP 4: OPTIONAL OUTPUTS
	// =========================================================================

	if cfg.Export.ParquetFile != "" {
		opts.ExportPath = filepath.Join(cfg.OutputDir, utils.GenerateOutputFileName(cfg.Export.ParquetFile, names))
		extra = append(extra, pipeline.WithExporter(parquetio.NewExporter()))
	}

	if cfg.Notify.Enabled || forceNotify {
		if n, err := buildNotifier(cfg.Notify); err != nil {
			obs.Error("Report will not be mailed", "error", err)
		} else {
			extra = append(extra, pipeline.WithNotifier(n))
		}
	}

	// =========================================================================
	// STEP 5: RUN
	// =========================================================================

	tl := loader.New(cfg.CSVSettings)
	result := pipeline.New(opts, tl, xlsxwriter.New(), obs, extra...).Run(cmd.Context())

	// =========================================================================
	// STEP 6: SUMMARY
	// =========================================================================

	printResult(cmd.OutOrStdout(), result)

	if !result.Success {
		return fmt.Errorf("run failed: %s", result.FailureReason)
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func applyRunFlags(cfg *config.MainConfig) {
	if inputDir != "" {
		cfg.InputDir = inputDir
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
}

func buildNotifier(settings config.NotifyConfig) (*notify.SMTPNotifier, error) {
	creds, err := notify.CredentialsFromEnv()
	if err != nil {
		return nil, err
	}
	return notify.NewSMTPNotifier(settings, creds)
}

// printResult writes the human-readable run summary.
func printResult(w io.Writer, result pipeline.Result) {
	fmt.Fprintln(w, "\n=== Consolidation Complete ===")
	fmt.Fprintf(w, "Run ID:          %s\n", result.RunID)
	fmt.Fprintf(w, "Final state:     %s\n", result.State)
	fmt.Fprintf(w, "Files found:     %d\n", result.Stats.FilesFound)
	fmt.Fprintf(w, "Files loaded:    %d\n", result.Stats.FilesLoaded)
	fmt.Fprintf(w, "Files skipped:   %d\n", len(result.Skipped))
	fmt.Fprintf(w, "Load errors:     %d\n", len(result.LoadErrors))
	fmt.Fprintf(w, "Raw rows:        %d\n", result.Stats.RawRows)
	fmt.Fprintf(w, "Clean rows:      %d\n", result.Stats.CleanRows)
	fmt.Fprintf(w, "Duplicates:      %d\n", result.Stats.DuplicatesRemoved)
	fmt.Fprintf(w, "Time elapsed:    %s\n", result.Stats.Duration.Round(time.Millisecond))

	for _, le := range result.LoadErrors {
		fmt.Fprintf(w, "  ✗ %s\n", le.Error())
	}

	if len(result.Summary) > 0 {
		fmt.Fprintln(w, "\nDepartment totals:")
		for _, s := range result.Summary {
			fmt.Fprintf(w, "  %-24s %s\n", s.Department, s.TotalAmount.StringFixed(2))
		}
	}

	switch {
	case !result.Success:
		fmt.Fprintf(w, "\nFailed: %s\n", result.FailureReason)
	case result.ReportPath != "":
		fmt.Fprintf(w, "\nReport: %s\n", result.ReportPath)
		if result.ExportPath != "" {
			fmt.Fprintf(w, "Export: %s\n", result.ExportPath)
		}
		if result.Notified {
			fmt.Fprintln(w, "Report mailed.")
		} else if result.NotifyError != nil {
			fmt.Fprintf(w, "Mail failed: %v\n", result.NotifyError)
		}
	default:
		fmt.Fprintln(w, "\nDry run: nothing written.")
	}
}
