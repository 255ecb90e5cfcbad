// =============================================================================
// Ledger Reconcile - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the application
// configuration. A single YAML file covers:
//   - Report settings (sheet names, output naming, zero-balance tolerance)
//   - Source ledger layouts (data start rows, required sheet names)
//   - Progress logging cadence
//
// All settings have defaults matching the production ledger layouts, so the
// tool runs without any configuration file present.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the full application configuration.
type Config struct {
	// Report contains settings for the target report workbook.
	Report ReportConfig `yaml:"report"`

	// Sources contains per-ledger parsing settings.
	Sources SourcesConfig `yaml:"sources"`

	// Progress contains progress-logging settings.
	Progress ProgressConfig `yaml:"progress"`
}

// ReportConfig holds settings for the target report workbook.
type ReportConfig struct {
	// Sheet is the name of the live report sheet.
	// Default: "Report"
	Sheet string `yaml:"sheet"`

	// ArchiveSheet is the name of the zero-balance archive sheet.
	// Default: "Zero Balance"
	ArchiveSheet string `yaml:"archive_sheet"`

	// DuplicateSheet is the name of the duplicate-review sheet. It is only
	// created when duplicate group blocks were found and removed.
	// Default: "Duplicate Review"
	DuplicateSheet string `yaml:"duplicate_sheet"`

	// DefaultOutputName is the file name used when no existing target
	// report is supplied. The file is created in the payment ledger's
	// directory.
	// Default: "reconciliation_report.xlsx"
	DefaultOutputName string `yaml:"default_output_name"`

	// ZeroBalanceTolerance is the absolute tolerance, in currency units,
	// under which a group's net balance counts as settled. Also used as the
	// epsilon for cell-level numeric comparisons during patching.
	// Default: 0.01
	ZeroBalanceTolerance float64 `yaml:"zero_balance_tolerance"`
}

// SourcesConfig holds per-ledger parsing settings.
type SourcesConfig struct {
	Payment   PaymentSource   `yaml:"payment"`
	Invoice   InvoiceSource   `yaml:"invoice"`
	DebitNote DebitNoteSource `yaml:"debit_note"`
	Charge    ChargeSource    `yaml:"charge"`
}

// PaymentSource describes the payment ledger layout. Payment data lives on
// sheets whose (trimmed) name is all digits, one sheet per month.
type PaymentSource struct {
	// DataStartRow is the first data row on each monthly sheet (1-based).
	// Default: 9
	DataStartRow int `yaml:"data_start_row"`
}

// InvoiceSource describes the purchase-invoice ledger layout.
type InvoiceSource struct {
	// Sheet is the name of the required invoice sheet. A ledger without
	// this sheet is a fatal error for the whole run.
	// Default: "NK"
	Sheet string `yaml:"sheet"`

	// DataStartRow is the first data row on the invoice sheet (1-based).
	// Default: 10
	DataStartRow int `yaml:"data_start_row"`
}

// DebitNoteSource describes the debit-note ledger layout.
type DebitNoteSource struct {
	// DataStartRow is the first data row on the first sheet (1-based).
	// Default: 2
	DataStartRow int `yaml:"data_start_row"`
}

// ChargeSource describes the purchase-charge ledger layout.
type ChargeSource struct {
	// DataStartRow is the first data row on the first sheet (1-based).
	// Default: 2
	DataStartRow int `yaml:"data_start_row"`
}

// ProgressConfig holds progress-logging settings.
type ProgressConfig struct {
	// IntervalSeconds is the minimum wall-clock spacing between periodic
	// progress messages during long scans. Progress is never emitted per
	// row.
	// Default: 5
	IntervalSeconds int `yaml:"interval_seconds"`
}

// Interval returns the progress cadence as a duration.
func (p ProgressConfig) Interval() time.Duration {
	return time.Duration(p.IntervalSeconds) * time.Second
}

// Tolerance returns the zero-balance tolerance as a decimal.
func (r ReportConfig) Tolerance() decimal.Decimal {
	return decimal.NewFromFloat(r.ZeroBalanceTolerance)
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns the built-in configuration.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load loads the configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the configuration file.
//
// RETURNS:
//   - A pointer to the Config struct with defaults applied.
//   - An error if the file cannot be read, parsed, or validated.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.Report.Sheet == "" {
		cfg.Report.Sheet = "Report"
	}
	if cfg.Report.ArchiveSheet == "" {
		cfg.Report.ArchiveSheet = "Zero Balance"
	}
	if cfg.Report.DuplicateSheet == "" {
		cfg.Report.DuplicateSheet = "Duplicate Review"
	}
	if cfg.Report.DefaultOutputName == "" {
		cfg.Report.DefaultOutputName = "reconciliation_report.xlsx"
	}
	if cfg.Report.ZeroBalanceTolerance == 0 {
		cfg.Report.ZeroBalanceTolerance = 0.01
	}
	if cfg.Sources.Payment.DataStartRow == 0 {
		cfg.Sources.Payment.DataStartRow = 9
	}
	if cfg.Sources.Invoice.Sheet == "" {
		cfg.Sources.Invoice.Sheet = "NK"
	}
	if cfg.Sources.Invoice.DataStartRow == 0 {
		cfg.Sources.Invoice.DataStartRow = 10
	}
	if cfg.Sources.DebitNote.DataStartRow == 0 {
		cfg.Sources.DebitNote.DataStartRow = 2
	}
	if cfg.Sources.Charge.DataStartRow == 0 {
		cfg.Sources.Charge.DataStartRow = 2
	}
	if cfg.Progress.IntervalSeconds == 0 {
		cfg.Progress.IntervalSeconds = 5
	}
}

// validate checks the configuration for inconsistencies.
func validate(cfg *Config) error {
	if cfg.Report.ZeroBalanceTolerance < 0 {
		return fmt.Errorf("zero_balance_tolerance must not be negative")
	}
	if cfg.Report.Sheet == cfg.Report.ArchiveSheet || cfg.Report.Sheet == cfg.Report.DuplicateSheet {
		return fmt.Errorf("report sheet name must differ from archive and duplicate sheet names")
	}
	rows := []struct {
		name  string
		value int
	}{
		{"sources.payment.data_start_row", cfg.Sources.Payment.DataStartRow},
		{"sources.invoice.data_start_row", cfg.Sources.Invoice.DataStartRow},
		{"sources.debit_note.data_start_row", cfg.Sources.DebitNote.DataStartRow},
		{"sources.charge.data_start_row", cfg.Sources.Charge.DataStartRow},
	}
	for _, r := range rows {
		if r.value < 1 {
			return fmt.Errorf("%s must be at least 1", r.name)
		}
	}
	if cfg.Progress.IntervalSeconds < 1 {
		return fmt.Errorf("progress.interval_seconds must be at least 1")
	}
	return nil
}
