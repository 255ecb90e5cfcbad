// =============================================================================
// Ledger Reconcile - Layout Compactor
// =============================================================================
//
// Archiving settled blocks leaves multi-row gaps behind. The compactor
// restores the canonical layout: exactly one blank row between blocks, no
// blank padding after the last block. It scans bottom-up so pending row
// positions stay valid while it deletes, and it never reorders content.
//
// =============================================================================

package report

import "github.com/ledgerworks/reconcile/internal/grid"

// compressBlankRows collapses every run of two or more consecutive blank
// rows into a single blank row.
func compressBlankRows(g grid.Grid) error {
	row := lastDataRow(g)
	for row > DataStartRow {
		if rowHasData(g, row) {
			row--
			continue
		}

		start := row
		for start > DataStartRow && !rowHasData(g, start-1) {
			start--
		}
		if runLen := row - start + 1; runLen >= 2 {
			if err := g.DeleteRows(start, runLen-1); err != nil {
				return err
			}
		}
		row = start - 1
	}
	return nil
}

// trimTrailing deletes every blank row beyond one past the last data row.
func trimTrailing(g grid.Grid) error {
	last := lastDataRow(g)
	maxRow := g.MaxRow()
	if maxRow > last+1 {
		return g.DeleteRows(last+2, maxRow-last-1)
	}
	return nil
}
