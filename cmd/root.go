// =============================================================================
// Ledger Reconcile - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (reconcile)
//   ├── runCmd (reconcile run)
//   └── versionCmd (reconcile version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Handing the configuration path to subcommands
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
// This can be overridden using the --config flag.
var cfgFile string

// verbose enables verbose logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "reconcile",

	Short: "Ledger Reconcile - Merge four financial ledgers into one grouped report",

	Long: `Ledger Reconcile is a batch CLI tool that reconciles four
independently-produced financial ledgers (payments, purchase invoices,
debit notes, and purchase charges) into one cumulative, human-reviewable
grouped report.

The engine can be re-run as new ledger extracts arrive: existing group
blocks in the report are patched in place, new groups are appended, settled
(zero-balance) groups are relocated to an archive sheet, and duplicate
blocks from earlier runs are moved to a review sheet. Manual annotations in
the target report survive re-runs.

Example Usage:
  reconcile run --payments pay.xlsx --invoices pi.xlsx \
      --debit-notes dn.xlsx --charges chg.xlsx
  reconcile run ... --report monitoring.xlsx   # patch an existing report`,

	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print the help message.
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	// --config flag: Allows the user to specify a custom configuration file.
	// When the default file does not exist, built-in defaults are used.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the configuration file (default is config.yaml)",
	)

	// --verbose flag: Enables verbose parser progress output.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for long parses",
	)
}
