// =============================================================================
// Sheet Consolidator - Configuration Module
// =============================================================================
//
// This module loads the application configuration. Values are layered:
//   1. Built-in defaults
//   2. The config file (config.yaml, or config.toml)
//   3. CONSOLIDATOR_* environment variables
//
// A missing config file is not an error when the caller did not ask for one
// explicitly; the defaults alone describe the standard input/ output/ logs/
// layout.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. CONSOLIDATOR_INPUT_DIR.
const EnvPrefix = "CONSOLIDATOR"

// DefaultNullValues are the CSV cell texts read as missing values.
var DefaultNullValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned (non-recursively) for .csv and .xlsx files.
	// Default: "./input"
	InputDir string `yaml:"input_dir" toml:"input_dir" envconfig:"INPUT_DIR" validate:"required"`

	// OutputDir receives the report. It is created if missing.
	// Default: "./output"
	OutputDir string `yaml:"output_dir" toml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`

	// OutputFile is the report file name inside OutputDir.
	// Placeholders:
	//   {run_id}    - The run's UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	// Default: "master_report.xlsx"
	OutputFile string `yaml:"output_file" toml:"output_file" envconfig:"OUTPUT_FILE" validate:"required"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is the path to the application log file.
	// Default: "./logs/automation.log"
	LogFile string `yaml:"log_file" toml:"log_file" envconfig:"LOG_FILE"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level" toml:"log_level" envconfig:"LOG_LEVEL" validate:"oneof=debug info warn warning error"`

	// LogFormat is "text" or "json".
	// Default: "text"
	LogFormat string `yaml:"log_format" toml:"log_format" envconfig:"LOG_FORMAT" validate:"oneof=text json"`

	// =========================================================================
	// INPUT PARSING
	// =========================================================================

	// CSVSettings applies to every .csv input.
	CSVSettings CSVSettings `yaml:"csv_settings" toml:"csv_settings" envconfig:"CSV"`

	// LoadWorkers is how many files are parsed at once. Tables are merged
	// in file order whatever this value is.
	// Default: 1 (sequential)
	LoadWorkers int `yaml:"load_workers" toml:"load_workers" envconfig:"LOAD_WORKERS" validate:"min=1,max=64"`

	// =========================================================================
	// OUTPUTS
	// =========================================================================

	// Export configures the optional columnar copy of the cleaned data.
	Export ExportConfig `yaml:"export" toml:"export" envconfig:"EXPORT"`

	// Notify configures mailing the report after it is written.
	Notify NotifyConfig `yaml:"notify" toml:"notify" envconfig:"NOTIFY"`
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing CSV files.
type CSVSettings struct {
	// Delimiter is the character used to separate fields in the CSV.
	// Common values: "," (comma), "|" (pipe), "\t" (tab), ";"
	// Default: ","
	Delimiter string `yaml:"delimiter" toml:"delimiter" envconfig:"DELIMITER"`

	// HeaderRows is the number of header rows. Multi-line headers are merged.
	// Default: 1
	HeaderRows int `yaml:"header_rows" toml:"header_rows" envconfig:"HEADER_ROWS" validate:"min=1"`

	// DataStartRow is the 1-indexed row where data begins.
	// Default: HeaderRows + 1
	DataStartRow int `yaml:"data_start_row" toml:"data_start_row" envconfig:"DATA_START_ROW" validate:"gtfield=HeaderRows"`

	// Encoding of the file: "UTF-8", "Windows-1252", "ISO-8859-1", "UTF-16".
	// Default: "UTF-8"
	Encoding string `yaml:"encoding" toml:"encoding" envconfig:"ENCODING"`

	// NullValues are cell texts treated as missing. An empty cell is always
	// missing.
	// Default: DefaultNullValues
	NullValues []string `yaml:"null_values" toml:"null_values" envconfig:"NULL_VALUES"`
}

// ExportConfig configures optional exports next to the report.
type ExportConfig struct {
	// ParquetFile, when set, is written inside OutputDir with the cleaned
	// dataset. Accepts the same placeholders as OutputFile.
	ParquetFile string `yaml:"parquet_file" toml:"parquet_file" envconfig:"PARQUET_FILE"`
}

// NotifyConfig configures the mail notification.
// Credentials are never read from the config file; see notify.CredentialsFromEnv.
type NotifyConfig struct {
	// Enabled turns the notification on. The --notify flag also sets it.
	Enabled bool `yaml:"enabled" toml:"enabled" envconfig:"ENABLED"`

	// SMTPHost is the mail server, reached over implicit TLS.
	// Default: "smtp.gmail.com"
	SMTPHost string `yaml:"smtp_host" toml:"smtp_host" envconfig:"SMTP_HOST" validate:"required"`

	// SMTPPort is the implicit-TLS port.
	// Default: 465
	SMTPPort int `yaml:"smtp_port" toml:"smtp_port" envconfig:"SMTP_PORT" validate:"min=1,max=65535"`

	// Subject of the message.
	Subject string `yaml:"subject" toml:"subject" envconfig:"SUBJECT"`

	// Body is the plain-text message body.
	Body string `yaml:"body" toml:"body" envconfig:"BODY"`

	// TimeoutSeconds bounds the whole SMTP session.
	// Default: 30
	TimeoutSeconds int `yaml:"timeout_seconds" toml:"timeout_seconds" envconfig:"TIMEOUT_SECONDS" validate:"min=1"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// LoadMainConfig loads the main configuration.
//
// PARAMETERS:
//   - configPath: Path to a .yaml/.yml or .toml file. Empty means defaults
//     plus environment only.
//
// RETURNS:
//   - A pointer to the validated MainConfig.
//   - An error if the file cannot be read or parsed, or a value is invalid.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	var config MainConfig

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := unmarshal(configPath, data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Environment wins over the file.
	if err := envconfig.Process(EnvPrefix, &config); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration used when no file and no environment
// overrides exist.
func Default() *MainConfig {
	var config MainConfig
	applyMainConfigDefaults(&config)
	return &config
}

func unmarshal(path string, data []byte, out *MainConfig) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(data, out)
	default:
		return yaml.Unmarshal(data, out)
	}
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.OutputFile == "" {
		config.OutputFile = "master_report.xlsx"
	}
	if config.LogFile == "" {
		config.LogFile = "./logs/automation.log"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}

	// CSV settings defaults.
	if config.LoadWorkers == 0 {
		config.LoadWorkers = 1
	}

	if config.CSVSettings.Delimiter == "" {
		config.CSVSettings.Delimiter = ","
	}
	if config.CSVSettings.HeaderRows == 0 {
		config.CSVSettings.HeaderRows = 1
	}
	if config.CSVSettings.DataStartRow == 0 {
		config.CSVSettings.DataStartRow = config.CSVSettings.HeaderRows + 1
	}
	if config.CSVSettings.Encoding == "" {
		config.CSVSettings.Encoding = "UTF-8"
	}
	if config.CSVSettings.NullValues == nil {
		config.CSVSettings.NullValues = append([]string(nil), DefaultNullValues...)
	}

	// Notification defaults.
	if config.Notify.SMTPHost == "" {
		config.Notify.SMTPHost = "smtp.gmail.com"
	}
	if config.Notify.SMTPPort == 0 {
		config.Notify.SMTPPort = 465
	}
	if config.Notify.Subject == "" {
		config.Notify.Subject = "Consolidated report"
	}
	if config.Notify.Body == "" {
		config.Notify.Body = "The consolidated report is attached."
	}
	if config.Notify.TimeoutSeconds == 0 {
		config.Notify.TimeoutSeconds = 30
	}
}

// validateMainConfig checks the struct tags of the merged configuration.
func validateMainConfig(config *MainConfig) error {
	return validator.New().Struct(config)
}
