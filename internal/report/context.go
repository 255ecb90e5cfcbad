// =============================================================================
// Ledger Reconcile - Reconciliation Context
// =============================================================================
//
// ReconciliationContext carries one run's state: configuration, the four
// parsed source tables, the run id, the set of rows touched this run and
// the running summary counters. A context is built fresh per run and
// discarded afterwards.
//
// Run executes the phases in a fixed order; each phase sees the sheet
// exactly as the previous phase left it:
//
//   1. Prepare layout, clear the previous run's changed markers
//   2. Scan existing blocks
//   3. Resolve duplicate blocks (re-scan when any were removed)
//   4. Merge source data (patch existing blocks, append new ones)
//   5. Apply attention and changed markers
//   6. Partition settled groups to the archive sheet
//   7. Compress blank-row runs
//   8. Rebuild total-row formulas from final positions
//   9. Trim trailing blank rows
//
// The total-row rebuild deliberately runs after the structural phases: it
// re-scans the sheet so every formula range reflects final row positions.
//
// =============================================================================

package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ledgerworks/reconcile/internal/config"
	"github.com/ledgerworks/reconcile/internal/grid"
	"github.com/ledgerworks/reconcile/internal/progress"
	"github.com/ledgerworks/reconcile/internal/types"
)

// Summary reports what one reconciliation run did.
type Summary struct {
	GroupsAdded       int
	GroupsUpdated     int
	RowsInserted      int
	DuplicatesRemoved int
	ZeroBalanceMoved  int
}

// ReconciliationContext is the run-scoped engine state.
type ReconciliationContext struct {
	cfg    *config.Config
	tables *types.SourceTables
	log    *progress.Logger

	// runID identifies this run in logs and duplicate-review marker lines.
	runID string

	// tolerance is both the zero-balance threshold and the epsilon for
	// cell-level numeric comparisons during patching.
	tolerance decimal.Decimal

	// changedRows collects the live-sheet rows created or overwritten this
	// run, for the changed-marker pass.
	changedRows map[int]bool

	summary Summary
}

// NewContext builds the engine state for one run.
func NewContext(cfg *config.Config, tables *types.SourceTables, log *progress.Logger) *ReconciliationContext {
	return &ReconciliationContext{
		cfg:         cfg,
		tables:      tables,
		log:         log,
		runID:       uuid.NewString(),
		tolerance:   cfg.Report.Tolerance(),
		changedRows: make(map[int]bool),
	}
}

// Run executes one reconciliation pass against the workbook.
func (rc *ReconciliationContext) Run(wb grid.Workbook) (*Summary, error) {
	start := time.Now()
	rc.log.Logf("Run id: %s", rc.runID)

	g := wb.EnsureSheet(rc.cfg.Report.Sheet)
	ensureLayout(g)
	rc.clearChangedMarkers(g)

	rc.log.Logf("Scanning existing report blocks...")
	scan := rc.scan(g)
	rc.log.Logf("  indexed %d block(s) across %d group(s)", len(scan.order), len(scan.occurrences))

	removed, err := rc.resolveDuplicates(g, wb, scan)
	if err != nil {
		return nil, err
	}
	if removed > 0 {
		rc.log.Logf("  removed %d duplicate block(s), re-scanning", removed)
		scan = rc.scan(g)
	}

	rc.log.Logf("Merging source data...")
	if err := rc.merge(g, scan); err != nil {
		return nil, err
	}

	rc.applyAttention(g, scan)
	rc.applyChanged(g)

	moved, err := rc.partitionZeroBalance(g, wb, scan)
	if err != nil {
		return nil, err
	}
	if moved > 0 {
		rc.log.Logf("  archived %d settled group(s)", moved)
	}

	if err := compressBlankRows(g); err != nil {
		return nil, err
	}

	// Formula ranges must reflect final row positions, so the rebuild works
	// from a fresh scan after every structural edit is done.
	final := rc.scan(g)
	rc.rebuildTotals(g, final)

	if err := trimTrailing(g); err != nil {
		return nil, err
	}

	rc.log.Logf("Reconciliation pass finished in %s", time.Since(start).Round(time.Millisecond))
	return &rc.summary, nil
}

// markChanged records a live-sheet row as touched this run.
func (rc *ReconciliationContext) markChanged(row int) {
	rc.changedRows[row] = true
}

// shiftAll rebases every indexed block and the changed-row set after a
// structural edit at the given row. Every recorded row at or below the
// edit point moves by delta.
func (rc *ReconciliationContext) shiftAll(scan *scanResult, at, delta int) {
	for _, idx := range scan.order {
		idx.ShiftFrom(at, delta)
	}
	shifted := make(map[int]bool, len(rc.changedRows))
	for row := range rc.changedRows {
		if row >= at {
			row += delta
		}
		shifted[row] = true
	}
	rc.changedRows = shifted
}

// withinTolerance reports whether two amounts are equal under the
// configured epsilon.
func (rc *ReconciliationContext) withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(rc.tolerance)
}
