// =============================================================================
// Ledger Reconcile - Grid Document Contract
// =============================================================================
//
// The reconciliation engine never talks to a spreadsheet file format
// directly. It depends on the narrow grid contract in this file; the
// excelize-backed adapter lives next door in excel.go.
//
// Fills and fonts cross the boundary as opaque markers. The engine only
// knows the attention, changed and header-shade states and compares them
// by equality; real color values never reach the engine.
//
// Rows and columns are 1-based throughout, matching spreadsheet
// conventions.
//
// =============================================================================

package grid

import "strconv"

// =============================================================================
// STYLE MARKERS
// =============================================================================

// Fill is an opaque marker for a cell's background state.
type Fill string

const (
	// FillNone clears any engine-applied background.
	FillNone Fill = ""

	// FillAttention is the persistent marker for rows needing human review
	// (unmatched or ambiguous source data).
	FillAttention Fill = "attention"

	// FillChanged is the transient marker for rows created or patched in
	// the current run. It is cleared at the start of the next run.
	FillChanged Fill = "changed"

	// FillHead is the shading of column-header rows.
	FillHead Fill = "head"
)

// Font is an opaque marker for a font treatment.
type Font string

const (
	FontBold   Font = "bold"
	FontItalic Font = "italic"
)

// =============================================================================
// CONTRACT
// =============================================================================

// Grid is one worksheet viewed through the engine's contract.
//
// Cell accessors are best-effort and do not return errors: reading an
// out-of-range cell yields the empty string, and a failed style write is
// dropped. The structural operations (row insertion/deletion) surface
// errors, since the engine's index bookkeeping depends on them.
type Grid interface {
	// GetCell returns the raw stored value of a cell as a string: numbers
	// unformatted, dates as serial numbers, empty cells as "".
	GetCell(row, col int) string

	// SetCell stores a typed value.
	SetCell(row, col int, value any)

	// SetFormula stores formula text. A leading "=" is accepted and
	// normalized away.
	SetFormula(row, col int, formula string)

	// GetFormula returns the cell's formula text with a leading "=", or ""
	// for non-formula cells.
	GetFormula(row, col int) string

	// InsertRows inserts count blank rows before row at.
	InsertRows(at, count int) error

	// DeleteRows removes count rows starting at row at.
	DeleteRows(at, count int) error

	// MaxRow returns the last row carrying any content.
	MaxRow() int

	// MaxCol returns the widest column carrying any content.
	MaxCol() int

	// SetRowHeight sets a row's display height.
	SetRowHeight(row int, height float64)

	// HideColumn hides a column from display. Used for the row-kind marker
	// column, which is bookkeeping rather than report content.
	HideColumn(col int)

	// SetFill applies a fill marker; FillNone clears it.
	SetFill(row, col int, fill Fill)

	// GetFill returns the cell's current fill marker, FillNone when the
	// cell carries no engine-known fill.
	GetFill(row, col int) Fill

	// SetFont applies a font marker additively.
	SetFont(row, col int, font Font)

	// SetNumberFormat applies a display format to a cell.
	SetNumberFormat(row, col int, format string)
}

// Workbook owns named grids and persistence.
type Workbook interface {
	// Sheet returns the named grid, reporting whether it exists.
	Sheet(name string) (Grid, bool)

	// EnsureSheet returns the named grid, creating it when absent.
	EnsureSheet(name string) Grid

	// HasSheet reports whether the named sheet exists.
	HasSheet(name string) bool

	// Save writes the workbook to path.
	Save(path string) error
}

// =============================================================================
// REFERENCE HELPERS
// =============================================================================

// ColumnName converts a 1-based column number to its letter name
// (1 -> "A", 27 -> "AA").
func ColumnName(col int) string {
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+col%26)) + name
		col /= 26
	}
	return name
}

// CellRef builds an A1-style reference for a cell.
func CellRef(row, col int) string {
	return ColumnName(col) + strconv.Itoa(row)
}
