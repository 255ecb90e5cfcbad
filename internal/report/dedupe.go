// =============================================================================
// Ledger Reconcile - Duplicate-Block Resolver
// =============================================================================
//
// The merge invariant is one block per group. Duplicates appear when a
// report was hand-edited or produced by interrupted runs; left alone they
// would double-count the group and receive conflicting patches.
//
// Resolution keeps the occurrence with the highest header row (the most
// recently appended one) and moves every other occurrence to the
// duplicate-review sheet, behind a marker line naming the group, the
// removed range, the kept header row and the run id. Nothing is discarded
// outright; the review sheet is the audit trail.
//
// After any removal the caller must re-scan: every index below a removed
// range is stale.
//
// =============================================================================

package report

import (
	"fmt"

	"github.com/ledgerworks/reconcile/internal/grid"
)

// resolveDuplicates archives and deletes every non-surviving duplicate
// block. Returns the number of blocks removed.
func (rc *ReconciliationContext) resolveDuplicates(g grid.Grid, wb grid.Workbook, scan *scanResult) (int, error) {
	type removal struct {
		group      string
		from, to   int
		keptHeader int
	}

	var removals []removal
	for _, idx := range scan.order {
		if len(scan.occurrences[idx.Group]) < 2 {
			continue
		}
		kept := scan.byGroup(idx.Group)
		if idx == kept {
			continue
		}
		removals = append(removals, removal{
			group:      idx.Group,
			from:       idx.Header,
			to:         idx.Total,
			keptHeader: kept.Header,
		})
	}
	if len(removals) == 0 {
		return 0, nil
	}

	review := wb.EnsureSheet(rc.cfg.Report.DuplicateSheet)
	destRow := lastDataRow(review) + 2
	if review.MaxRow() == 0 {
		copyColumnHeaders(review)
		destRow = ColumnHeaderRow + 2
	}

	for _, rm := range removals {
		rc.log.Logf("  [dedupe] group %q: duplicate block rows %d-%d moved to review (kept block at row %d)",
			rm.group, rm.from, rm.to, rm.keptHeader)

		review.SetCell(destRow, ColGroup, fmt.Sprintf(
			"DUPLICATE GROUP %s | removed rows %d-%d | kept header row %d | run %s",
			rm.group, rm.from, rm.to, rm.keptHeader, rc.runID))
		review.SetFont(destRow, ColGroup, grid.FontBold)
		destRow++

		for row := rm.from; row <= rm.to; row++ {
			copyRow(g, review, row, destRow)
			destRow++
		}
		destRow++
	}

	// Delete bottom-up so pending ranges keep their positions. The scan is
	// stale afterwards; the caller re-scans.
	for i := len(removals) - 1; i >= 0; i-- {
		rm := removals[i]
		if err := g.DeleteRows(rm.from, rm.to-rm.from+1); err != nil {
			return 0, err
		}
	}

	rc.summary.DuplicatesRemoved += len(removals)
	return len(removals), nil
}
