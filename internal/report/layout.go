// =============================================================================
// Ledger Reconcile - Report Layout
// =============================================================================
//
// One place for the geometry of the report sheet: column positions, fixed
// rows, row-kind tags, block labels and display formats. Everything else in
// this package goes through these names.
//
// BLOCK SHAPE (top to bottom):
//   header row   - group id, PI month, PI qty, credit amount
//   job rows     - one per (PI number, job number)
//   debit row    - debit-note number and amount
//   charge row   - "CHARGE TO PURCHASE"
//   adjust row   - "EXCHANGE GAIN OR LOSS" (manual entries)
//   total row    - "Total", formulas only
//
// Blocks are separated by one blank row. Every engine-written row carries
// its kind in a hidden marker column so later runs can classify rows
// without heuristics; reports produced by other tools fall back to the
// scanner's heuristics.
//
// =============================================================================

package report

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerworks/reconcile/internal/grid"
	"github.com/ledgerworks/reconcile/internal/ledger"
)

// =============================================================================
// GEOMETRY
// =============================================================================

// Column positions on the report sheet (1-based).
const (
	ColGroup       = 1  // A: group id (header rows only)
	ColJobNo       = 2  // B: job number, or the row label
	ColPINumber    = 3  // C: PI number (job rows only)
	ColPIMonth     = 4  // D: PI month / debit-note month
	ColInvoiceDate = 5  // E: invoice date from the payment ledger
	ColPIQty       = 6  // F: PI quantity
	ColCredit      = 7  // G: credit amount
	ColInvoiceQty  = 8  // H: invoice quantity from the payment ledger
	ColDebit       = 9  // I: debit amount
	ColBalanceAmt  = 10 // J: amount balance (formula, total rows)
	ColBalanceQty  = 11 // K: quantity balance (formula, total rows)

	// ColKind is the hidden row-kind marker column.
	ColKind = 13 // M

	// DataMaxCol bounds content detection. The balance columns carry
	// formulas and must not make a row count as data.
	DataMaxCol = ColDebit
)

// Fixed rows.
const (
	ColumnHeaderRow = 4
	DataStartRow    = 5
	FirstBlockRow   = 6
)

// =============================================================================
// ROW KINDS AND LABELS
// =============================================================================

// RowKind tags a report row's role within its group block.
type RowKind string

const (
	KindNone   RowKind = ""
	KindHeader RowKind = "header"
	KindJob    RowKind = "job"
	KindDebit  RowKind = "debit"
	KindCharge RowKind = "charge"
	KindAdjust RowKind = "adjust"
	KindTotal  RowKind = "total"
)

// Row labels in the job-number column.
const (
	LabelCharge = "CHARGE TO PURCHASE"
	LabelAdjust = "EXCHANGE GAIN OR LOSS"
	LabelTotal  = "Total"
)

// Display formats.
const (
	NumFmtQty    = "#,##0"
	NumFmtAmount = "#,##0.00"
	NumFmtDate   = "d/m/yyyy"
)

// columnHeaders are the labels of the column-header row, in column order
// starting at ColGroup.
var columnHeaders = []string{
	"Group",
	"Job No.",
	"PI No.",
	"PI Month",
	"Invoice Date",
	"PI Qty",
	"Credit Amount",
	"Invoice Qty",
	"Debit Amount",
	"Balance (Amt)",
	"Balance (Qty)",
}

// =============================================================================
// GROUP INDEX
// =============================================================================

// GroupIndex records where one group's block sits on the report sheet.
// Rows are 1-based sheet rows; a zero value means the row is absent.
//
// Indexes are kept current across structural edits: every insertion or
// deletion above or inside a block must go through ShiftFrom so later
// lookups stay valid.
type GroupIndex struct {
	Group string

	Header   int
	FirstJob int
	LastJob  int
	Debit    int
	Charge   int
	Adjust   int
	Total    int

	// JobRows maps PI number -> sheet row. A PI number appears on at most
	// one job row per block; the merge engine rewrites the job-number cell
	// in place when a payment's preferred job changes.
	JobRows map[string]int
}

// ShiftFrom moves every recorded row at or below the given row by delta.
// Rows above the edit point are untouched, which matches how sheet
// insertions and deletions displace content.
func (x *GroupIndex) ShiftFrom(at, delta int) {
	shift := func(row *int) {
		if *row >= at {
			*row += delta
		}
	}
	shift(&x.Header)
	shift(&x.FirstJob)
	shift(&x.LastJob)
	shift(&x.Debit)
	shift(&x.Charge)
	shift(&x.Adjust)
	shift(&x.Total)
	for key, row := range x.JobRows {
		if row >= at {
			x.JobRows[key] = row + delta
		}
	}
}

// FooterRow returns the first footer row of the block: the first present
// row among debit, charge, adjust and total. New job rows are inserted
// immediately before it.
func (x *GroupIndex) FooterRow() int {
	for _, row := range []int{x.Debit, x.Charge, x.Adjust, x.Total} {
		if row > 0 {
			return row
		}
	}
	return 0
}

// AdjustOrFallback returns the adjustment row, falling back to the row
// directly above the total row when no adjustment row was identified.
func (x *GroupIndex) AdjustOrFallback() int {
	if x.Adjust > 0 {
		return x.Adjust
	}
	return x.Total - 1
}

// JobSpan returns the first and last job row of the block. A block with no
// job rows degenerates to the header row, whose H cell is empty and sums
// to zero.
func (x *GroupIndex) JobSpan() (first, last int) {
	if x.FirstJob == 0 {
		return x.Header, x.Header
	}
	return x.FirstJob, x.LastJob
}

// =============================================================================
// CELL HELPERS
// =============================================================================

// cellString reads a cell as a trimmed string.
func cellString(g grid.Grid, row, col int) string {
	return strings.TrimSpace(g.GetCell(row, col))
}

// cellDecimal reads a cell as a decimal amount, zero when empty or not a
// number.
func cellDecimal(g grid.Grid, row, col int) decimal.Decimal {
	return ledger.ParseAmount(g.GetCell(row, col))
}

// cellDate reads a cell as a date; raw reads deliver stored dates as serial
// numbers, which ParseDate handles.
func cellDate(g grid.Grid, row, col int) (time.Time, bool) {
	return ledger.ParseDate(g.GetCell(row, col))
}

// readKind reads a row's kind tag.
func readKind(g grid.Grid, row int) RowKind {
	return RowKind(cellString(g, row, ColKind))
}

// writeKind tags a row's kind.
func writeKind(g grid.Grid, row int, kind RowKind) {
	g.SetCell(row, ColKind, string(kind))
}

// rowHasData reports whether a row carries any content in the data columns.
func rowHasData(g grid.Grid, row int) bool {
	for col := ColGroup; col <= DataMaxCol; col++ {
		if cellString(g, row, col) != "" {
			return true
		}
	}
	return false
}

// lastDataRow returns the last row carrying data-column content, 0 for an
// empty sheet.
func lastDataRow(g grid.Grid) int {
	for row := g.MaxRow(); row >= 1; row-- {
		if rowHasData(g, row) {
			return row
		}
	}
	return 0
}

// ensureLayout prepares the report sheet's fixed furniture: the column
// header row (written once, shaded and bold) and the hidden kind column.
func ensureLayout(g grid.Grid) {
	if cellString(g, ColumnHeaderRow, ColGroup) == "" {
		for i, label := range columnHeaders {
			col := ColGroup + i
			g.SetCell(ColumnHeaderRow, col, label)
			g.SetFill(ColumnHeaderRow, col, grid.FillHead)
			g.SetFont(ColumnHeaderRow, col, grid.FontBold)
		}
		g.SetRowHeight(ColumnHeaderRow, 22)
	}
	g.HideColumn(ColKind)
}
