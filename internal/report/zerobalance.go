// =============================================================================
// Ledger Reconcile - Zero-Balance Partitioner
// =============================================================================
//
// A group whose net balance is settled (absolute value under the
// configured tolerance) no longer needs daily attention; its block moves
// off the live sheet to the archive sheet. The balance is computed from
// the stored credit and debit numbers, never from formula text, so stale
// totals cannot misclassify a group.
//
// The archive sheet is rebuilt from scratch every run: the engine's output
// is a new file each time, so prior archives live on in prior outputs.
//
// Formulas copied across carry row references from their live position;
// every row number inside the formula text is shifted by the block's
// displacement so the copy stays internally consistent.
//
// =============================================================================

package report

import (
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/ledgerworks/reconcile/internal/grid"
)

// partitionZeroBalance moves every settled block to the archive sheet and
// deletes it from the live sheet. Returns the number of groups moved.
func (rc *ReconciliationContext) partitionZeroBalance(g grid.Grid, wb grid.Workbook, scan *scanResult) (int, error) {
	archive := wb.EnsureSheet(rc.cfg.Report.ArchiveSheet)
	if maxRow := archive.MaxRow(); maxRow > 0 {
		if err := archive.DeleteRows(1, maxRow); err != nil {
			return 0, err
		}
	}
	copyColumnHeaders(archive)

	type span struct {
		group    string
		from, to int
	}
	var settled []span
	destRow := ColumnHeaderRow + 2

	for _, idx := range scan.order {
		balance := rc.blockBalance(g, idx)
		if balance.Abs().GreaterThanOrEqual(rc.tolerance) {
			continue
		}
		rc.log.Debugf("  [archive] group %q settled (balance %s), moving rows %d-%d",
			idx.Group, balance.StringFixed(2), idx.Header, idx.Total)

		for row := idx.Header; row <= idx.Total; row++ {
			copyRow(g, archive, row, destRow)
			destRow++
		}
		destRow++ // blank separator between archived blocks

		settled = append(settled, span{idx.Group, idx.Header, idx.Total})
	}

	// Delete bottom-up so earlier spans keep their positions.
	for i := len(settled) - 1; i >= 0; i-- {
		s := settled[i]
		if err := g.DeleteRows(s.from, s.to-s.from+1); err != nil {
			return 0, err
		}
		rc.shiftAll(scan, s.from, -(s.to - s.from + 1))
		rc.dropFromScan(scan, s.group)
	}

	rc.summary.ZeroBalanceMoved += len(settled)
	return len(settled), nil
}

// blockBalance sums credit minus debit over the block's value rows
// (header through adjustment), from stored numbers.
func (rc *ReconciliationContext) blockBalance(g grid.Grid, idx *GroupIndex) decimal.Decimal {
	balance := decimal.Zero
	for row := idx.Header; row <= idx.AdjustOrFallback(); row++ {
		balance = balance.Add(cellDecimal(g, row, ColCredit)).Sub(cellDecimal(g, row, ColDebit))
	}
	return balance
}

// dropFromScan removes a group's surviving block from the scan index after
// its rows were deleted.
func (rc *ReconciliationContext) dropFromScan(scan *scanResult, group string) {
	idx := scan.byGroup(group)
	delete(scan.occurrences, group)
	for i, x := range scan.order {
		if x == idx {
			scan.order = append(scan.order[:i], scan.order[i+1:]...)
			break
		}
	}
}

// =============================================================================
// ROW COPYING
// =============================================================================

// copyColumnHeaders writes the standard column-header row on a companion
// sheet.
func copyColumnHeaders(dst grid.Grid) {
	for i, label := range columnHeaders {
		col := ColGroup + i
		dst.SetCell(ColumnHeaderRow, col, label)
		dst.SetFill(ColumnHeaderRow, col, grid.FillHead)
		dst.SetFont(ColumnHeaderRow, col, grid.FontBold)
	}
	dst.HideColumn(ColKind)
}

// copyRow reproduces one live row on a companion sheet: formulas with row
// references shifted by the displacement, values with their display
// formats, fills and the kind tag.
func copyRow(src, dst grid.Grid, srcRow, dstRow int) {
	delta := dstRow - srcRow

	for col := ColGroup; col <= ColBalanceQty; col++ {
		if formula := src.GetFormula(srcRow, col); formula != "" {
			dst.SetFormula(dstRow, col, shiftFormulaRefs(formula, delta))
		} else if raw := src.GetCell(srcRow, col); raw != "" {
			if n, err := strconv.ParseFloat(raw, 64); err == nil {
				dst.SetCell(dstRow, col, n)
				if format := columnFormat(col); format != "" {
					dst.SetNumberFormat(dstRow, col, format)
				}
			} else {
				dst.SetCell(dstRow, col, raw)
			}
		}

		if fill := src.GetFill(srcRow, col); fill != grid.FillNone {
			dst.SetFill(dstRow, col, fill)
		}
	}

	if kind := src.GetCell(srcRow, ColKind); kind != "" {
		dst.SetCell(dstRow, ColKind, kind)
	}
}

// columnFormat returns the display format numeric values in a column use.
func columnFormat(col int) string {
	switch col {
	case ColInvoiceDate:
		return NumFmtDate
	case ColPIQty, ColInvoiceQty, ColBalanceQty:
		return NumFmtQty
	case ColCredit, ColDebit, ColBalanceAmt:
		return NumFmtAmount
	}
	return ""
}

// cellRefPattern matches one cell reference inside formula text.
var cellRefPattern = regexp.MustCompile(`(\$?[A-Z]{1,3}\$?)(\d+)`)

// shiftFormulaRefs moves every row number inside formula text by delta.
func shiftFormulaRefs(formula string, delta int) string {
	return cellRefPattern.ReplaceAllStringFunc(formula, func(ref string) string {
		m := cellRefPattern.FindStringSubmatch(ref)
		row, err := strconv.Atoi(m[2])
		if err != nil {
			return ref
		}
		return m[1] + strconv.Itoa(row+delta)
	})
}
