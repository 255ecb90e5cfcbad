// =============================================================================
// Ledger Reconcile - Aggregation Rebuilder
// =============================================================================
//
// Total-row formulas encode row positions, so any insertion or deletion
// above them leaves stale ranges behind. Rather than patch ranges edit by
// edit, the rebuilder regenerates every block's total row from the final
// scan, once all structural phases are done. The operation is idempotent:
// rebuilding an untouched sheet rewrites identical formulas.
//
// =============================================================================

package report

import (
	"fmt"

	"github.com/ledgerworks/reconcile/internal/grid"
)

// rebuildTotals regenerates the total-row formulas of every indexed block.
func (rc *ReconciliationContext) rebuildTotals(g grid.Grid, scan *scanResult) {
	for _, idx := range scan.order {
		rc.writeTotalRow(g, idx)
	}
	rc.log.Debugf("  [totals] rebuilt %d total row(s)", len(scan.order))
}

// writeTotalRow writes one block's total row: label, formulas, italics and
// display formats.
func (rc *ReconciliationContext) writeTotalRow(g grid.Grid, idx *GroupIndex) {
	total := idx.Total
	adjust := idx.AdjustOrFallback()
	firstJob, lastJob := idx.JobSpan()

	g.SetCell(total, ColJobNo, LabelTotal)

	g.SetFormula(total, ColPIQty, fmt.Sprintf("=F%d", idx.Header))
	g.SetFormula(total, ColCredit, fmt.Sprintf("=ROUND(SUM(G%d:G%d),2)", idx.Header, adjust))
	g.SetFormula(total, ColInvoiceQty, fmt.Sprintf("=SUM(H%d:H%d)", firstJob, lastJob))
	g.SetFormula(total, ColDebit, fmt.Sprintf("=ROUND(SUM(I%d:I%d),2)", idx.Header, adjust))
	g.SetFormula(total, ColBalanceAmt, fmt.Sprintf("=ROUND(G%d-I%d,2)", total, total))
	g.SetFormula(total, ColBalanceQty, fmt.Sprintf("=ROUND(F%d-H%d,2)", total, total))

	g.SetNumberFormat(total, ColPIQty, NumFmtQty)
	g.SetNumberFormat(total, ColCredit, NumFmtAmount)
	g.SetNumberFormat(total, ColInvoiceQty, NumFmtQty)
	g.SetNumberFormat(total, ColDebit, NumFmtAmount)
	g.SetNumberFormat(total, ColBalanceAmt, NumFmtAmount)
	g.SetNumberFormat(total, ColBalanceQty, NumFmtQty)

	for col := ColJobNo; col <= ColBalanceQty; col++ {
		g.SetFont(total, col, grid.FontItalic)
	}
}
