// =============================================================================
// Ledger Reconcile - Run Command
// =============================================================================
//
// This file defines the 'run' command, which executes one reconciliation
// pass. It orchestrates the entire pipeline.
//
// COMMAND USAGE:
//   reconcile run [flags]
//
// FLAGS:
//   --payments     : Path to the payment ledger workbook (required)
//   --invoices     : Path to the purchase-invoice ledger workbook (required)
//   --debit-notes  : Path to the debit-note ledger workbook (required)
//   --charges      : Path to the purchase-charge ledger workbook (required)
//   --report       : Path to an existing target report (optional)
//   --out          : Explicit output path (optional)
//
// PROCESSING PIPELINE:
//   1. Load configuration
//   2. Parse the four source ledgers into keyed tables
//   3. Open the existing target report, or start a fresh one
//   4. Run the reconciliation phases (scan, dedupe, merge, mark,
//      partition, compact, rebuild totals)
//   5. Save to a uniquely-named output file and print a summary
//
// The run is a single-threaded, phase-ordered batch job. A fatal error in
// any source aborts before the target is rewritten; the supplied target
// report file itself is never overwritten.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerworks/reconcile/internal/config"
	"github.com/ledgerworks/reconcile/internal/grid"
	"github.com/ledgerworks/reconcile/internal/ledger"
	"github.com/ledgerworks/reconcile/internal/progress"
	"github.com/ledgerworks/reconcile/internal/report"
	"github.com/ledgerworks/reconcile/internal/types"
	"github.com/ledgerworks/reconcile/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// paymentsPath is the path to the payment ledger workbook.
var paymentsPath string

// invoicesPath is the path to the purchase-invoice ledger workbook.
var invoicesPath string

// debitNotesPath is the path to the debit-note ledger workbook.
var debitNotesPath string

// chargesPath is the path to the purchase-charge ledger workbook.
var chargesPath string

// reportPath is the path to an existing target report (optional).
var reportPath string

// outPath overrides the derived output path (optional).
var outPath string

// =============================================================================
// RUN COMMAND DEFINITION
// =============================================================================

// runCmd represents the 'run' command.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one reconciliation pass over the four source ledgers",
	Long: `The run command parses the payment, purchase-invoice, debit-note and
purchase-charge ledgers, then merges them into the target report.

When an existing report is supplied with --report, its group blocks are
patched in place and the result is written to a new, uniquely-named file
beside the original. Without --report, a fresh report is created and saved
under the default name in the payment ledger's directory.

The output workbook always contains the live "Report" sheet and the
"Zero Balance" archive sheet; a "Duplicate Review" sheet is added only when
duplicate group blocks were found and removed.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runReconcile()
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the run command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&paymentsPath, "payments", "", "Path to the payment ledger workbook")
	runCmd.Flags().StringVar(&invoicesPath, "invoices", "", "Path to the purchase-invoice ledger workbook")
	runCmd.Flags().StringVar(&debitNotesPath, "debit-notes", "", "Path to the debit-note ledger workbook")
	runCmd.Flags().StringVar(&chargesPath, "charges", "", "Path to the purchase-charge ledger workbook")
	runCmd.Flags().StringVar(&reportPath, "report", "", "Path to an existing target report (optional)")
	runCmd.Flags().StringVar(&outPath, "out", "", "Explicit output path (optional)")

	runCmd.MarkFlagRequired("payments")
	runCmd.MarkFlagRequired("invoices")
	runCmd.MarkFlagRequired("debit-notes")
	runCmd.MarkFlagRequired("charges")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runReconcile is the main function that orchestrates the reconciliation run.
func runReconcile() error {
	startTime := time.Now()

	fmt.Println("=== Ledger Reconcile ===")

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := progress.New(func(msg string) {
		fmt.Println(msg)
	}, cfg.Progress.Interval())
	log.Verbose = verbose

	// =========================================================================
	// STEP 2: PARSE SOURCE LEDGERS
	// =========================================================================
	// Any structural failure here (unopenable file, missing invoice sheet)
	// aborts the run before the target report is touched.

	log.Logf("Inputs: payments=%s invoices=%s debit-notes=%s charges=%s report=%s",
		filepath.Base(paymentsPath), filepath.Base(invoicesPath),
		filepath.Base(debitNotesPath), filepath.Base(chargesPath),
		reportDisplayName())

	payments, err := ledger.ParsePayments(paymentsPath, cfg.Sources.Payment, log)
	if err != nil {
		return fmt.Errorf("payment ledger: %w", err)
	}

	invoices, err := ledger.ParseInvoices(invoicesPath, cfg.Sources.Invoice, log)
	if err != nil {
		return fmt.Errorf("purchase-invoice ledger: %w", err)
	}

	debitNotes, err := ledger.ParseDebitNotes(debitNotesPath, cfg.Sources.DebitNote, log)
	if err != nil {
		return fmt.Errorf("debit-note ledger: %w", err)
	}

	charges, err := ledger.ParseCharges(chargesPath, cfg.Sources.Charge, log)
	if err != nil {
		return fmt.Errorf("purchase-charge ledger: %w", err)
	}

	tables := &types.SourceTables{
		Payments:   payments,
		Invoices:   invoices,
		DebitNotes: debitNotes,
		Charges:    charges,
	}

	// =========================================================================
	// STEP 3: OPEN OR CREATE THE TARGET REPORT
	// =========================================================================

	var wb *grid.ExcelWorkbook
	if reportPath != "" {
		log.Logf("Opening existing report: %s", filepath.Base(reportPath))
		wb, err = grid.OpenWorkbook(reportPath)
		if err != nil {
			return fmt.Errorf("target report: %w", err)
		}
	} else {
		log.Logf("Creating new report workbook")
		wb = grid.NewWorkbook()
	}
	defer wb.Close()

	// =========================================================================
	// STEP 4: RUN THE RECONCILIATION PHASES
	// =========================================================================

	rc := report.NewContext(cfg, tables, log)
	summary, err := rc.Run(wb)
	if err != nil {
		return fmt.Errorf("reconciliation: %w", err)
	}

	// =========================================================================
	// STEP 5: SAVE AND SUMMARIZE
	// =========================================================================

	output := deriveOutputPath(cfg)
	if err := wb.Save(output); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	elapsed := time.Since(startTime)
	fmt.Println("\n=== Reconciliation Complete ===")
	fmt.Printf("Groups added:        %d\n", summary.GroupsAdded)
	fmt.Printf("Groups updated:      %d\n", summary.GroupsUpdated)
	fmt.Printf("Rows inserted:       %d\n", summary.RowsInserted)
	fmt.Printf("Duplicates removed:  %d\n", summary.DuplicatesRemoved)
	fmt.Printf("Archived (settled):  %d\n", summary.ZeroBalanceMoved)
	fmt.Printf("Output:              %s\n", output)
	fmt.Printf("Time elapsed:        %s\n", elapsed.Round(time.Millisecond))

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// loadConfig loads the configuration file, falling back to built-in defaults
// when the default config file does not exist.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		return config.Default(), nil
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// deriveOutputPath determines where the result workbook is saved.
//
// RULES:
//   - An explicit --out wins (uniquified, never overwriting).
//   - With an existing --report, the result goes to a timestamped sibling
//     of the original; the supplied file is never overwritten.
//   - Otherwise the default report name in the payment ledger's directory.
func deriveOutputPath(cfg *config.Config) string {
	if outPath != "" {
		return utils.UniquePath(outPath)
	}
	if reportPath != "" {
		return utils.UniquePath(utils.TimestampedSibling(reportPath, "UPDATED"))
	}
	return utils.UniquePath(filepath.Join(filepath.Dir(paymentsPath), cfg.Report.DefaultOutputName))
}

// reportDisplayName returns the target report name for the input log line.
func reportDisplayName() string {
	if reportPath == "" {
		return "(new)"
	}
	return filepath.Base(reportPath)
}
