// =============================================================================
// Ledger Reconcile - Attention and Change Markers
// =============================================================================
//
// Two fill markers carry review state on the report:
//
//   ATTENTION (persistent) - a job row whose PI cannot be reconciled
//   against the payment ledger: no extractable prefix, no payment under
//   the prefix, or an ambiguous prefix (several distinct jobs). Recomputed
//   every run; stale markers are cleared once the underlying data heals.
//
//   CHANGED (transient) - every row the current run created or
//   overwrote. Cleared at the start of the next run, so a reader always
//   sees exactly the latest run's delta.
//
// Attention wins where both would apply to the same cell.
//
// =============================================================================

package report

import (
	"github.com/ledgerworks/reconcile/internal/grid"
	"github.com/ledgerworks/reconcile/internal/ledger"
)

// clearChangedMarkers removes the previous run's changed fills from the
// live sheet.
func (rc *ReconciliationContext) clearChangedMarkers(g grid.Grid) {
	cleared := 0
	maxRow := g.MaxRow()
	for row := DataStartRow; row <= maxRow; row++ {
		for col := ColGroup; col <= ColBalanceQty; col++ {
			if g.GetFill(row, col) == grid.FillChanged {
				g.SetFill(row, col, grid.FillNone)
				cleared++
			}
		}
	}
	if cleared > 0 {
		rc.log.Debugf("  [marker] cleared %d changed cell(s) from the previous run", cleared)
	}
}

// applyAttention recomputes the attention marker on every indexed job row.
// The marker sits on the PI-number cell.
func (rc *ReconciliationContext) applyAttention(g grid.Grid, scan *scanResult) {
	pay := rc.tables.Payments
	marked := 0

	for _, idx := range scan.order {
		for _, row := range idx.JobRows {
			prefix, ok := ledger.ExtractPrefix(cellString(g, row, ColPINumber))
			needs := !ok || !pay.Has(prefix) || pay.Ambiguous[prefix]

			has := g.GetFill(row, ColPINumber) == grid.FillAttention
			switch {
			case needs && !has:
				g.SetFill(row, ColPINumber, grid.FillAttention)
				marked++
			case !needs && has:
				g.SetFill(row, ColPINumber, grid.FillNone)
			}
		}
	}
	if marked > 0 {
		rc.log.Logf("  flagged %d job row(s) for review", marked)
	}
}

// applyChanged paints the changed marker over every row this run touched,
// leaving attention cells alone.
func (rc *ReconciliationContext) applyChanged(g grid.Grid) {
	for row := range rc.changedRows {
		for col := ColGroup; col <= ColBalanceQty; col++ {
			if g.GetFill(row, col) != grid.FillAttention {
				g.SetFill(row, col, grid.FillChanged)
			}
		}
	}
}
