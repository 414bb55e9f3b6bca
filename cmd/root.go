// =============================================================================
// Sheet Consolidator - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (consolidator)
//   ├── runCmd      (consolidator run)
//   ├── validateCmd (consolidator validate)
//   └── versionCmd  (consolidator version)
//
// CONFIGURATION:
//   Settings are resolved in this order, later sources winning:
//   1. Built-in defaults
//   2. The config file (--config, YAML or TOML by extension)
//   3. CONSOLIDATOR_* environment variables
//   4. Command flags
//   A .env file (--env-file) is loaded into the environment first, so
//   variables defined there behave like exported ones.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sheet-consolidator/internal/config"
	"github.com/ginjaninja78/sheet-consolidator/internal/logging"
	"github.com/ginjaninja78/sheet-consolidator/pkg/utils"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// envFile is loaded into the environment before configuration is read.
var envFile string

// verbose switches logging to debug level.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "consolidator",
	Short: "Sheet Consolidator - merge CSV and XLSX exports into one report",
	Long: `Sheet Consolidator merges every .csv and .xlsx file found in an input
directory into one clean dataset with the columns name, department, amount
and date, removes duplicate rows, totals the amount per department and writes
both to an Excel report. The report can optionally be mailed.

Example Usage:
  consolidator run                      # Consolidate ./input into ./output
  consolidator run --config ./my.yaml   # Use a custom configuration file
  consolidator run --dry-run            # Compute the summary, write nothing
  consolidator validate                 # Show what a run would read`,

	SilenceErrors: true,
	SilenceUsage:  true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. It is called by main.main(). An interrupt cancels the
// running command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file (YAML or TOML)",
	)

	rootCmd.PersistentFlags().StringVar(
		&envFile,
		"env-file",
		".env",
		"Optional dotenv file loaded before configuration",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// configPath returns the file to load, or "" for defaults only. The default
// config.yaml is optional; a path given with --config must exist.
func configPath(cmd *cobra.Command) string {
	if cmd.Flags().Changed("config") {
		return cfgFile
	}
	if !utils.FileExists(cfgFile) {
		return ""
	}
	return cfgFile
}

// loadConfig resolves the configuration for cmd.
func loadConfig(cmd *cobra.Command) (*config.MainConfig, error) {
	cfg, err := config.LoadMainConfig(configPath(cmd))
	if err != nil {
		return nil, fmt.Errorf("failed to load main config: %w", err)
	}
	return cfg, nil
}

// setupLogger builds the run logger from cfg. withFile controls whether the
// log file is written.
func setupLogger(cfg *config.MainConfig, console io.Writer, withFile bool) (*slog.Logger, func() error, error) {
	opts := logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Stdout: console,
	}
	if verbose {
		opts.Level = "debug"
	}
	if withFile {
		opts.File = cfg.LogFile
	}
	return logging.Setup(opts)
}
