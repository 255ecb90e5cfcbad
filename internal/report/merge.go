// =============================================================================
// Ledger Reconcile - Group Merge Engine
// =============================================================================
//
// The merge engine folds the parsed source tables into the report sheet.
// Groups already on the sheet are patched in place; groups seen for the
// first time get a full block appended at the bottom.
//
// PATCHING RULES:
//   - Header cells are diffed under the configured epsilon and only
//     rewritten when they actually differ.
//   - Job rows are keyed by PI number. A known row is refreshed in place,
//     including its job-number cell when the payment's preferred job
//     changed; a PI with no row yet is inserted directly above the block's
//     footer, and every index at or below the insertion point is rebased.
//   - The debit row is inserted when note data newly exists, then the
//     debit and charge rows are overwritten from source; they count as
//     changed only when the values differ.
//
// A PI whose prefix has no payment match, or whose prefix is ambiguous,
// contributes exactly one job row carrying the PI's own quantity; the
// marker phase flags such rows for review.
//
// Manual annotations outside the engine-owned cells are never touched.
//
// =============================================================================

package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerworks/reconcile/internal/grid"
	"github.com/ledgerworks/reconcile/internal/ledger"
)

// jobRowData is the desired content of one job row. The payment-side
// fields (date, invoice qty, amount) stay zero on unmatched rows.
type jobRowData struct {
	piNumber string
	jobNo    string
	date     time.Time
	piQty    decimal.Decimal
	invQty   decimal.Decimal
	amount   decimal.Decimal
}

// merge reconciles every invoice-ledger group into the sheet: existing
// blocks first, in sheet order, then new blocks appended in source order.
func (rc *ReconciliationContext) merge(g grid.Grid, scan *scanResult) error {
	inv := rc.tables.Invoices

	patched := make(map[string]bool)
	existing := make([]*GroupIndex, len(scan.order))
	copy(existing, scan.order)

	for _, idx := range existing {
		if !inv.HasGroup(idx.Group) || patched[idx.Group] {
			continue
		}
		if scan.byGroup(idx.Group) != idx {
			continue
		}
		if err := rc.patchGroup(g, scan, idx); err != nil {
			return err
		}
		patched[idx.Group] = true
	}

	next := appendStart(g)
	for _, group := range inv.GroupOrder {
		if patched[group] {
			continue
		}
		var err error
		next, err = rc.appendGroup(g, scan, group, next)
		if err != nil {
			return err
		}
		rc.summary.GroupsAdded++
	}
	return nil
}

// appendStart returns the header row for the first appended block: two
// below the last data row, or the fixed first block row on a fresh sheet.
func appendStart(g grid.Grid) int {
	last := lastDataRow(g)
	if last < DataStartRow {
		return FirstBlockRow
	}
	return last + 2
}

// desiredJobRows expands a group's PI records into the job rows its block
// should contain. A matched prefix yields one row per distinct payment
// job; an unmatched or ambiguous prefix yields a single row with the PI's
// own quantity.
func (rc *ReconciliationContext) desiredJobRows(group string) []jobRowData {
	inv := rc.tables.Invoices
	pay := rc.tables.Payments

	var out []jobRowData
	for _, key := range inv.GroupKeys[group] {
		rec := inv.Records[key]
		if pay.Has(rec.Prefix) && !pay.Ambiguous[rec.Prefix] {
			for _, p := range pay.JobsFor(rec.Prefix) {
				out = append(out, jobRowData{
					piNumber: rec.PINumber,
					jobNo:    p.JobNo,
					date:     p.InvoiceDate,
					piQty:    rec.Qty,
					invQty:   p.InvoiceQty,
					amount:   p.Amount,
				})
			}
		} else {
			out = append(out, jobRowData{
				piNumber: rec.PINumber,
				jobNo:    rec.JobNo,
				piQty:    rec.Qty,
			})
		}
	}
	return out
}

// =============================================================================
// EXISTING BLOCKS
// =============================================================================

// patchGroup refreshes one existing block in place.
func (rc *ReconciliationContext) patchGroup(g grid.Grid, scan *scanResult, idx *GroupIndex) error {
	group := idx.Group
	inv := rc.tables.Invoices
	changed := false
	inserted := 0

	// Header refresh.
	headerChanged := rc.updateText(g, idx.Header, ColPIMonth, inv.GroupMonth(group))
	headerChanged = rc.updateAmount(g, idx.Header, ColPIQty, inv.GroupQty[group], NumFmtQty) || headerChanged
	headerChanged = rc.updateAmount(g, idx.Header, ColCredit, inv.GroupAmount[group], NumFmtAmount) || headerChanged
	if headerChanged {
		rc.markChanged(idx.Header)
		changed = true
	}

	// Job rows: refresh known ones, insert missing ones above the footer.
	// The lookup is by PI number alone, so a payment whose preferred job
	// number changed updates its row in place instead of growing the block.
	for _, want := range rc.desiredJobRows(group) {
		if row, ok := idx.JobRows[want.piNumber]; ok {
			rowChanged := rc.updateText(g, row, ColJobNo, want.jobNo)
			rowChanged = rc.updateDate(g, row, ColInvoiceDate, want.date) || rowChanged
			rowChanged = rc.updateAmount(g, row, ColPIQty, want.piQty, NumFmtQty) || rowChanged
			rowChanged = rc.updateAmount(g, row, ColInvoiceQty, want.invQty, NumFmtQty) || rowChanged
			rowChanged = rc.updateAmount(g, row, ColDebit, want.amount, NumFmtAmount) || rowChanged
			if rowChanged {
				rc.markChanged(row)
				changed = true
			}
			continue
		}

		at := idx.FooterRow()
		if at == 0 {
			at = idx.Total
		}
		if err := g.InsertRows(at, 1); err != nil {
			return err
		}
		rc.shiftAll(scan, at, 1)
		rc.writeJobRow(g, at, want)
		idx.JobRows[want.piNumber] = at
		if idx.FirstJob == 0 || at < idx.FirstJob {
			idx.FirstJob = at
		}
		if at > idx.LastJob {
			idx.LastJob = at
		}
		rc.markChanged(at)
		inserted++
		changed = true
	}

	// Debit row: create on first sight of note data, then overwrite.
	if note := rc.tables.DebitNotes[group]; note != nil {
		if idx.Debit == 0 {
			at := 0
			for _, r := range []int{idx.Charge, idx.Adjust, idx.Total} {
				if r > 0 {
					at = r
					break
				}
			}
			if err := g.InsertRows(at, 1); err != nil {
				return err
			}
			rc.shiftAll(scan, at, 1)
			idx.Debit = at
			writeKind(g, at, KindDebit)
			rc.markChanged(at)
			inserted++
			changed = true
		}

		row := idx.Debit
		rowChanged := rc.updateText(g, row, ColJobNo, note.NoteNumber)
		rowChanged = rc.updateText(g, row, ColPIMonth, note.Month) || rowChanged
		rowChanged = rc.writeSignedAmount(g, row, note.Amount) || rowChanged
		if rowChanged {
			rc.markChanged(row)
			changed = true
		}
	}

	// Charge row: overwrite from the charge ledger when both sides exist.
	if ch := rc.tables.Charges[ledger.NormalizeGroup(group)]; ch != nil && idx.Charge > 0 {
		row := idx.Charge
		rowChanged := rc.updateAmount(g, row, ColCredit, ch.Credit, NumFmtAmount)
		rowChanged = rc.updateAmount(g, row, ColDebit, ch.Debit, NumFmtAmount) || rowChanged
		if rowChanged {
			rc.markChanged(row)
			changed = true
		}
	}

	rc.summary.RowsInserted += inserted
	if changed {
		rc.summary.GroupsUpdated++
		rc.log.Debugf("  [merge] updated group %q (rows inserted: %d)", group, inserted)
	}
	return nil
}

// =============================================================================
// NEW BLOCKS
// =============================================================================

// appendGroup writes a full new block starting at row and registers it in
// the scan index. Returns the header row of the next block.
func (rc *ReconciliationContext) appendGroup(g grid.Grid, scan *scanResult, group string, row int) (int, error) {
	inv := rc.tables.Invoices
	idx := &GroupIndex{Group: group, JobRows: make(map[string]int)}

	// Header row.
	idx.Header = row
	g.SetCell(row, ColGroup, group)
	rc.updateText(g, row, ColPIMonth, inv.GroupMonth(group))
	rc.updateAmount(g, row, ColPIQty, inv.GroupQty[group], NumFmtQty)
	rc.updateAmount(g, row, ColCredit, inv.GroupAmount[group], NumFmtAmount)
	writeKind(g, row, KindHeader)
	rc.markChanged(row)
	row++

	// Job rows.
	for _, want := range rc.desiredJobRows(group) {
		rc.writeJobRow(g, row, want)
		idx.JobRows[want.piNumber] = row
		if idx.FirstJob == 0 {
			idx.FirstJob = row
		}
		idx.LastJob = row
		rc.markChanged(row)
		row++
	}

	// Debit row, always present in new blocks.
	idx.Debit = row
	if note := rc.tables.DebitNotes[group]; note != nil {
		rc.updateText(g, row, ColJobNo, note.NoteNumber)
		rc.updateText(g, row, ColPIMonth, note.Month)
		rc.writeSignedAmount(g, row, note.Amount)
	}
	writeKind(g, row, KindDebit)
	rc.markChanged(row)
	row++

	// Charge row.
	idx.Charge = row
	g.SetCell(row, ColJobNo, LabelCharge)
	if ch := rc.tables.Charges[ledger.NormalizeGroup(group)]; ch != nil {
		rc.updateAmount(g, row, ColCredit, ch.Credit, NumFmtAmount)
		rc.updateAmount(g, row, ColDebit, ch.Debit, NumFmtAmount)
	}
	writeKind(g, row, KindCharge)
	rc.markChanged(row)
	row++

	// Adjustment row, reserved for manual entries.
	idx.Adjust = row
	g.SetCell(row, ColJobNo, LabelAdjust)
	writeKind(g, row, KindAdjust)
	rc.markChanged(row)
	row++

	// Total row. Formulas are written by the aggregation rebuilder once all
	// structural edits of the run are final.
	idx.Total = row
	g.SetCell(row, ColJobNo, LabelTotal)
	writeKind(g, row, KindTotal)
	rc.markChanged(row)

	scan.occurrences[group] = append(scan.occurrences[group], idx)
	scan.order = append(scan.order, idx)

	rc.log.Debugf("  [merge] appended group %q at row %d (%d job row(s))",
		group, idx.Header, len(idx.JobRows))

	// One blank separator row after the block.
	return row + 2, nil
}

// =============================================================================
// CELL WRITERS
// =============================================================================

// writeJobRow fills one job row.
func (rc *ReconciliationContext) writeJobRow(g grid.Grid, row int, d jobRowData) {
	g.SetCell(row, ColJobNo, d.jobNo)
	g.SetCell(row, ColPINumber, d.piNumber)
	rc.updateDate(g, row, ColInvoiceDate, d.date)
	rc.updateAmount(g, row, ColPIQty, d.piQty, NumFmtQty)
	rc.updateAmount(g, row, ColInvoiceQty, d.invQty, NumFmtQty)
	rc.updateAmount(g, row, ColDebit, d.amount, NumFmtAmount)
	writeKind(g, row, KindJob)
}

// updateText writes a text cell when the desired value differs. An empty
// desired value never clears an existing cell.
func (rc *ReconciliationContext) updateText(g grid.Grid, row, col int, want string) bool {
	if want == "" || cellString(g, row, col) == want {
		return false
	}
	g.SetCell(row, col, want)
	return true
}

// updateAmount writes a numeric cell when the stored value differs under
// the epsilon. A zero desired value never populates an empty cell.
func (rc *ReconciliationContext) updateAmount(g grid.Grid, row, col int, want decimal.Decimal, format string) bool {
	raw := cellString(g, row, col)
	if raw == "" && want.IsZero() {
		return false
	}
	if raw != "" && rc.withinTolerance(cellDecimal(g, row, col), want) {
		return false
	}
	g.SetCell(row, col, want.InexactFloat64())
	g.SetNumberFormat(row, col, format)
	return true
}

// updateDate writes a date cell when the stored date is a different
// calendar day. A zero desired date is never written.
func (rc *ReconciliationContext) updateDate(g grid.Grid, row, col int, want time.Time) bool {
	if want.IsZero() {
		return false
	}
	if have, ok := cellDate(g, row, col); ok && ledger.SameDate(have, want) {
		return false
	}
	g.SetCell(row, col, want)
	g.SetNumberFormat(row, col, NumFmtDate)
	return true
}

// writeSignedAmount posts a debit-note amount: negative amounts go to the
// credit column as their absolute value, non-negative amounts to the debit
// column. The opposite column is cleared, so a note whose sign flipped
// between runs never leaves both sides populated.
func (rc *ReconciliationContext) writeSignedAmount(g grid.Grid, row int, amount decimal.Decimal) bool {
	post, opposite := ColDebit, ColCredit
	if amount.IsNegative() {
		post, opposite = ColCredit, ColDebit
		amount = amount.Abs()
	}
	changed := rc.updateAmount(g, row, post, amount, NumFmtAmount)
	if cellString(g, row, opposite) != "" {
		g.SetCell(row, opposite, "")
		changed = true
	}
	return changed
}
