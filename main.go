// =============================================================================
// Ledger Reconcile - Main Entry Point
// =============================================================================
//
// This is the main entry point for the ledger reconciliation CLI. It
// initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   reconcile run           - Run one reconciliation pass over four ledgers
//   reconcile version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Core reconciliation engine (not for external import)
//   - pkg/           : Shared utilities
//
// =============================================================================

package main

import (
	"github.com/ledgerworks/reconcile/cmd"
)

// main is the entry point of the application.
// It simply calls the Execute function from the cmd package, which
// initializes and runs the Cobra CLI.
func main() {
	cmd.Execute()
}
