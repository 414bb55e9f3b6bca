// =============================================================================
// Sheet Consolidator - Pipeline Module
// =============================================================================
//
// This module orchestrates one consolidation run, from the input directory to
// the written (and optionally mailed) report.
//
// RUN STATES:
//   Idle -> Loading -> Merged -> Reconciled -> Cleaned -> Deduplicated
//        -> Aggregated -> Written -> Notified
//   Any state may move to Failed.
//
// FAILURE POLICY:
//   | Condition                   | Outcome                     | Logged as |
//   |-----------------------------|-----------------------------|-----------|
//   | input directory missing     | run stops, no report        | error     |
//   | one file unreadable         | file skipped, run continues | error     |
//   | unsupported extension       | file skipped, run continues | warning   |
//   | no table loaded             | run stops, no report        | error     |
//   | report cannot be written    | run stops                   | critical  |
//   | export or mail fails        | report stays valid          | error     |
//
// Run never returns an error and never panics; the outcome is the Result.
//
// =============================================================================

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/sheet-consolidator/internal/loader"
	"github.com/ginjaninja78/sheet-consolidator/internal/logging"
	"github.com/ginjaninja78/sheet-consolidator/internal/types"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// TableLoader finds and parses input files.
type TableLoader interface {
	// Discover lists candidate files in dir, in ingestion order.
	Discover(dir string) ([]string, error)

	// Load parses one file. Errors wrapping loader.ErrUnsupportedFormat mark
	// files that are skipped rather than failed.
	Load(path string) (*types.RawTable, error)
}

// ReportWriter persists the cleaned dataset and its summary.
type ReportWriter interface {
	Write(path string, data []types.CanonicalRecord, summary []types.SummaryRow) error
}

// Notifier delivers a written report.
type Notifier interface {
	Notify(ctx context.Context, reportPath string) error
}

// DatasetExporter writes an additional copy of the cleaned dataset.
type DatasetExporter interface {
	Export(path string, data []types.CanonicalRecord) error
}

// =============================================================================
// STATES
// =============================================================================

// State is a step of the run.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateMerged
	StateReconciled
	StateCleaned
	StateDeduplicated
	StateAggregated
	StateWritten
	StateNotified
	StateFailed
)

var stateNames = [...]string{
	StateIdle:         "Idle",
	StateLoading:      "Loading",
	StateMerged:       "Merged",
	StateReconciled:   "Reconciled",
	StateCleaned:      "Cleaned",
	StateDeduplicated: "Deduplicated",
	StateAggregated:   "Aggregated",
	StateWritten:      "Written",
	StateNotified:     "Notified",
	StateFailed:       "Failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Failure reasons reported in Result.FailureReason.
const (
	ReasonNoInputDir   = "input directory does not exist"
	ReasonScanFailed   = "input directory could not be read"
	ReasonNoValidInput = "no valid input"
	ReasonWriteFailed  = "report could not be written"
	ReasonInternal     = "internal error"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// LoadError records a file that could not be loaded.
type LoadError struct {
	Path string
	Err  error
}

func (e LoadError) Error() string {
	return fmt.Sprintf("%s: %v", filepath.Base(e.Path), e.Err)
}

func (e LoadError) Unwrap() error {
	return e.Err
}

// Stats contains statistics about the run.
type Stats struct {
	// FilesFound is the number of files discovered in the input directory.
	FilesFound int

	// FilesLoaded is the number of files that became tables.
	FilesLoaded int

	// RawRows is the row count after merging, before deduplication.
	RawRows int

	// CleanRows is the row count of the canonical dataset.
	CleanRows int

	// DuplicatesRemoved is RawRows - CleanRows.
	DuplicatesRemoved int

	// Defaults counts cells that fell back to a default during cleaning.
	Defaults CleanStats

	// Duration is the wall time of the run.
	Duration time.Duration
}

// Result represents the outcome of a run.
type Result struct {
	// RunID identifies the run in logs and file names.
	RunID string

	// State is the last state reached: Aggregated for a dry run, Written or
	// Notified on success, Failed otherwise.
	State State

	// Transitions lists every state entered, in order, starting at Idle.
	Transitions []State

	// Success is true when the report was written (or, for a dry run, the
	// summary was computed).
	Success bool

	// FailureReason is one of the Reason* constants when State is Failed.
	FailureReason string

	// Error is the underlying cause when State is Failed.
	Error error

	// LoadErrors lists the files that failed to load.
	LoadErrors []LoadError

	// Skipped lists the files ignored for their extension.
	Skipped []string

	// Dataset is the canonical dataset.
	Dataset []types.CanonicalRecord

	// Summary is the per-department total.
	Summary []types.SummaryRow

	// ReportPath is the written report, empty if none was written.
	ReportPath string

	// ExportPath is the written dataset export, empty if none.
	ExportPath string

	// Notified is true when the notifier reported success.
	Notified bool

	// NotifyError is the notifier's failure, if any.
	NotifyError error

	// Stats contains run statistics.
	Stats Stats
}

// =============================================================================
// PIPELINE STRUCTURE
// =============================================================================

// Options are the per-run inputs.
type Options struct {
	// InputDir is scanned for source files.
	InputDir string

	// ReportPath is where the report is written.
	ReportPath string

	// ExportPath, when set together with an exporter, receives a dataset copy.
	ExportPath string

	// DryRun stops after aggregation without writing anything.
	DryRun bool

	// Workers bounds how many files are parsed concurrently. Values below
	// one mean one.
	Workers int
}

// Option configures optional collaborators.
type Option func(*Pipeline)

// WithNotifier mails the report after it is written.
func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

// WithExporter writes a dataset copy after the report.
func WithExporter(e DatasetExporter) Option {
	return func(p *Pipeline) { p.exporter = e }
}

// WithRunID overrides the generated run ID.
func WithRunID(id string) Option {
	return func(p *Pipeline) { p.runID = id }
}

// Pipeline runs one consolidation. It is not safe for concurrent use and
// should be constructed per run.
type Pipeline struct {
	opts     Options
	loader   TableLoader
	writer   ReportWriter
	notifier Notifier
	exporter DatasetExporter
	obs      logging.Observer
	runID    string

	state   State
	history []State
}

// New creates a Pipeline.
//
// PARAMETERS:
//   - opts: Input directory, report path and run mode.
//   - tl: Finds and parses input files.
//   - rw: Writes the report.
//   - obs: Receives every event of the run.
//   - options: Optional notifier, exporter and run ID.
func New(opts Options, tl TableLoader, rw ReportWriter, obs logging.Observer, options ...Option) *Pipeline {
	p := &Pipeline{
		opts:   opts,
		loader: tl,
		writer: rw,
		obs:    obs,
		runID:  uuid.NewString(),
	}
	for _, o := range options {
		o(p)
	}
	if p.obs == nil {
		p.obs = logging.NewSlogObserver(nil)
	}
	return p
}

// RunID returns the run's identifier.
func (p *Pipeline) RunID() string {
	return p.runID
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the pipeline once.
//
// PROCESSING STEPS:
//   1. Load every file of the input directory
//   2. Concatenate the loaded tables in load order
//   3. Reconcile the schema
//   4. Clean values
//   5. Remove duplicate records
//   6. Summarize by department
//   7. Write the report (then the optional export)
//   8. Notify
func (p *Pipeline) Run(ctx context.Context) (result Result) {
	startTime := time.Now()
	p.state, p.history = StateIdle, []State{StateIdle}
	result.RunID = p.runID

	defer func() {
		if r := recover(); r != nil {
			p.obs.Critical("Run aborted", "error", r)
			p.fail(&result, ReasonInternal, fmt.Errorf("panic: %v", r))
		}
		result.State = p.state
		result.Transitions = append([]State(nil), p.history...)
		result.Stats.Duration = time.Since(startTime)
	}()

	// =========================================================================
	// STEP 1: LOAD
	// =========================================================================

	p.enter(StateLoading)

	if info, err := os.Stat(p.opts.InputDir); err != nil || !info.IsDir() {
		p.obs.Error("Input directory does not exist", "dir", p.opts.InputDir)
		if err == nil {
			err = fmt.Errorf("%s is not a directory", p.opts.InputDir)
		}
		p.fail(&result, ReasonNoInputDir, err)
		return result
	}

	p.obs.Info("Scanning input directory", "dir", p.opts.InputDir)

	files, err := p.loader.Discover(p.opts.InputDir)
	if err != nil {
		p.obs.Error("Failed to scan input directory", "dir", p.opts.InputDir, "error", err)
		p.fail(&result, ReasonScanFailed, err)
		return result
	}
	result.Stats.FilesFound = len(files)

	tables := p.loadAll(ctx, files, &result)
	result.Stats.FilesLoaded = len(tables)

	if len(tables) == 0 {
		p.obs.Error("No valid data could be loaded", "files", len(files))
		p.fail(&result, ReasonNoValidInput, errors.New("no file could be loaded"))
		return result
	}

	// =========================================================================
	// STEP 2: MERGE
	// =========================================================================

	merged := types.Concat(sourceName(tables), tables)
	p.enter(StateMerged)
	result.Stats.RawRows = merged.Len()
	p.obs.Info("Raw rows", "rows", merged.Len(), "tables", len(tables))

	// =========================================================================
	// STEP 3: RECONCILE
	// =========================================================================

	reconciled := Reconcile(merged, p.obs)
	p.enter(StateReconciled)

	// =========================================================================
	// STEP 4: CLEAN
	// =========================================================================

	records, defaults := Clean(reconciled)
	p.enter(StateCleaned)
	result.Stats.Defaults = defaults
	if defaults != (CleanStats{}) {
		p.obs.Info("Applied defaults",
			"unknown_names", defaults.UnknownNames,
			"unknown_departments", defaults.UnknownDepartments,
			"zero_amounts", defaults.ZeroAmounts,
			"invalid_dates", defaults.InvalidDates,
		)
	}

	// =========================================================================
	// STEP 5: DEDUPLICATE
	// =========================================================================

	unique, removed := Deduplicate(records)
	p.enter(StateDeduplicated)
	result.Dataset = unique
	result.Stats.CleanRows = len(unique)
	result.Stats.DuplicatesRemoved = removed
	p.obs.Info("Removed duplicate rows", "removed", removed)
	p.obs.Info("Clean rows", "rows", len(unique))

	// =========================================================================
	// STEP 6: AGGREGATE
	// =========================================================================

	result.Summary = Summarize(unique)
	p.enter(StateAggregated)

	if p.opts.DryRun {
		p.obs.Info("Dry run, report not written", "departments", len(result.Summary))
		result.Success = true
		return result
	}

	// =========================================================================
	// STEP 7: WRITE
	// =========================================================================

	if err := p.writer.Write(p.opts.ReportPath, unique, result.Summary); err != nil {
		p.obs.Critical("Failed to write report", "path", p.opts.ReportPath, "error", err)
		p.fail(&result, ReasonWriteFailed, err)
		return result
	}
	p.enter(StateWritten)
	result.Success = true
	result.ReportPath = p.opts.ReportPath
	p.obs.Info("Report generated", "path", absPath(p.opts.ReportPath))

	if p.exporter != nil && p.opts.ExportPath != "" {
		if err := p.exporter.Export(p.opts.ExportPath, unique); err != nil {
			p.obs.Error("Failed to export dataset", "path", p.opts.ExportPath, "error", err)
		} else {
			result.ExportPath = p.opts.ExportPath
			p.obs.Info("Dataset exported", "path", absPath(p.opts.ExportPath))
		}
	}

	// =========================================================================
	// STEP 8: NOTIFY
	// =========================================================================

	if p.notifier == nil {
		return result
	}

	if err := p.notifier.Notify(ctx, p.opts.ReportPath); err != nil {
		p.obs.Error("Failed to send report", "error", err)
		result.NotifyError = err
		return result
	}
	p.enter(StateNotified)
	result.Notified = true
	p.obs.Info("Report sent")

	return result
}

// loadOutcome is the result of loading one file.
type loadOutcome struct {
	table *types.RawTable
	err   error
}

// loadAll parses files with up to Options.Workers at a time, then records
// failures and skips on result in file order. Tables come back in file order.
func (p *Pipeline) loadAll(ctx context.Context, files []string, result *Result) []*types.RawTable {
	outcomes := make([]loadOutcome, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.opts.Workers, 1))

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			outcomes[i] = p.loadOne(gctx, file)
			return nil
		})
	}
	_ = g.Wait()

	var tables []*types.RawTable
	for i, file := range files {
		name := filepath.Base(file)
		table, err := outcomes[i].table, outcomes[i].err

		switch {
		case errors.Is(err, loader.ErrUnsupportedFormat):
			p.obs.Warn("Skipping unsupported file", "file", name)
			result.Skipped = append(result.Skipped, file)

		case err != nil:
			p.obs.Error("Failed to load file", "file", name, "error", err)
			result.LoadErrors = append(result.LoadErrors, LoadError{Path: file, Err: err})

		default:
			p.obs.Info("Loaded file", "file", name, "rows", table.Len(), "columns", len(table.Columns))
			tables = append(tables, table)
		}
	}

	return tables
}

// loadOne never panics; a parser panic becomes that file's error.
func (p *Pipeline) loadOne(ctx context.Context, file string) (out loadOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = loadOutcome{err: fmt.Errorf("parser panic: %v", r)}
		}
	}()

	if err := ctx.Err(); err != nil {
		return loadOutcome{err: err}
	}

	table, err := p.loader.Load(file)
	return loadOutcome{table: table, err: err}
}

func (p *Pipeline) enter(s State) {
	p.state = s
	p.history = append(p.history, s)
}

func (p *Pipeline) fail(result *Result, reason string, err error) {
	p.enter(StateFailed)
	result.Success = false
	result.FailureReason = reason
	result.Error = err
}

func sourceName(tables []*types.RawTable) string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.Source
	}
	return strings.Join(names, ", ")
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
