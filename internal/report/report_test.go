package report

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerworks/reconcile/internal/config"
	"github.com/ledgerworks/reconcile/internal/grid"
	"github.com/ledgerworks/reconcile/internal/ledger"
	"github.com/ledgerworks/reconcile/internal/progress"
	"github.com/ledgerworks/reconcile/internal/types"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testLogger() *progress.Logger {
	return progress.New(nil, time.Second)
}

// fixtureTables builds the standard two-group scenario:
//   - G1: one PI matched by one payment job, a negative debit note, a charge
//   - G2: one PI whose prefix has no payment at all
func fixtureTables() *types.SourceTables {
	pay := types.NewPaymentTable()
	pay.Add("BA100200", "J1", dec("1000"), dec("10"),
		time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC))
	pay.MarkAmbiguous()

	inv := types.NewPITable()
	inv.Add(&types.PIRecord{
		Group: "G1", PINumber: "BA100200MJ",
		Amount: dec("1000"), Month: "07", Qty: dec("10"),
		Prefix: "BA100200", JobNo: "J0",
	})
	inv.Add(&types.PIRecord{
		Group: "G2", PINumber: "ZZ900100X",
		Amount: dec("500"), Month: "07", Qty: dec("5"),
		Prefix: "ZZ900100", JobNo: "J7",
	})

	notes := make(types.DebitTable)
	notes.Add(&types.DebitNoteRecord{
		Group: "G1", NoteNumber: "DN0701", Month: "07", Amount: dec("-50"),
	})

	charges := make(types.ChargeTable)
	charges[ledger.NormalizeGroup("G1")] = &types.ChargeRecord{Credit: dec("5")}

	return &types.SourceTables{
		Payments:   pay,
		Invoices:   inv,
		DebitNotes: notes,
		Charges:    charges,
	}
}

func runEngine(t *testing.T, wb grid.Workbook, tables *types.SourceTables) *Summary {
	t.Helper()
	rc := NewContext(config.Default(), tables, testLogger())
	summary, err := rc.Run(wb)
	require.NoError(t, err)
	return summary
}

// groupRows returns the rows whose group column holds the given id.
func groupRows(g grid.Grid, group string) []int {
	var rows []int
	for row := 1; row <= g.MaxRow(); row++ {
		if cellString(g, row, ColGroup) == group {
			rows = append(rows, row)
		}
	}
	return rows
}

// =============================================================================
// FRESH RUN
// =============================================================================

func TestFreshRunBuildsBlocks(t *testing.T) {
	wb := grid.NewWorkbook()
	s := runEngine(t, wb, fixtureTables())

	assert.Equal(t, 2, s.GroupsAdded)
	assert.Equal(t, 0, s.GroupsUpdated)
	assert.Equal(t, 0, s.DuplicatesRemoved)
	assert.Equal(t, 0, s.ZeroBalanceMoved)

	g, ok := wb.Sheet("Report")
	require.True(t, ok)

	// Column-header row.
	assert.Equal(t, "Group", cellString(g, ColumnHeaderRow, ColGroup))
	assert.Equal(t, grid.FillHead, g.GetFill(ColumnHeaderRow, ColGroup))

	// G1 header row.
	assert.Equal(t, "G1", cellString(g, FirstBlockRow, ColGroup))
	assert.Equal(t, "07", cellString(g, FirstBlockRow, ColPIMonth))
	assert.True(t, cellDecimal(g, FirstBlockRow, ColPIQty).Equal(dec("10")))
	assert.True(t, cellDecimal(g, FirstBlockRow, ColCredit).Equal(dec("1000")))
	assert.Equal(t, KindHeader, readKind(g, FirstBlockRow))

	// G1 job row: payment-matched, carrying the PI quantity and the payment
	// amount on the debit side.
	job := FirstBlockRow + 1
	assert.Equal(t, "J1", cellString(g, job, ColJobNo))
	assert.Equal(t, "BA100200MJ", cellString(g, job, ColPINumber))
	assert.True(t, cellDecimal(g, job, ColPIQty).Equal(dec("10")))
	assert.True(t, cellDecimal(g, job, ColInvoiceQty).Equal(dec("10")))
	assert.True(t, cellDecimal(g, job, ColDebit).Equal(dec("1000")))
	assert.Equal(t, KindJob, readKind(g, job))
	date, ok := cellDate(g, job, ColInvoiceDate)
	require.True(t, ok)
	assert.True(t, ledger.SameDate(time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC), date))

	// G1 debit row: negative note amount posts to the credit column.
	debit := FirstBlockRow + 2
	assert.Equal(t, "DN0701", cellString(g, debit, ColJobNo))
	assert.Equal(t, "07", cellString(g, debit, ColPIMonth))
	assert.True(t, cellDecimal(g, debit, ColCredit).Equal(dec("50")))
	assert.Equal(t, "", cellString(g, debit, ColDebit))
	assert.Equal(t, KindDebit, readKind(g, debit))

	// G1 charge and adjustment rows.
	charge := FirstBlockRow + 3
	assert.Equal(t, LabelCharge, cellString(g, charge, ColJobNo))
	assert.True(t, cellDecimal(g, charge, ColCredit).Equal(dec("5")))
	assert.Equal(t, LabelAdjust, cellString(g, charge+1, ColJobNo))

	// G1 total row formulas.
	total := FirstBlockRow + 5
	assert.Equal(t, LabelTotal, cellString(g, total, ColJobNo))
	assert.Equal(t, "=F6", g.GetFormula(total, ColPIQty))
	assert.Equal(t, "=ROUND(SUM(G6:G10),2)", g.GetFormula(total, ColCredit))
	assert.Equal(t, "=SUM(H7:H7)", g.GetFormula(total, ColInvoiceQty))
	assert.Equal(t, "=ROUND(SUM(I6:I10),2)", g.GetFormula(total, ColDebit))
	assert.Equal(t, "=ROUND(G11-I11,2)", g.GetFormula(total, ColBalanceAmt))
	assert.Equal(t, "=ROUND(F11-H11,2)", g.GetFormula(total, ColBalanceQty))

	// One blank separator, then G2.
	assert.False(t, rowHasData(g, total+1))
	g2 := total + 2
	assert.Equal(t, "G2", cellString(g, g2, ColGroup))

	// Every appended row carries the changed marker; the unmatched G2 job
	// row carries attention on its PI cell, and attention wins there.
	assert.Equal(t, grid.FillChanged, g.GetFill(FirstBlockRow, ColGroup))
	g2job := g2 + 1
	assert.Equal(t, grid.FillAttention, g.GetFill(g2job, ColPINumber))
	assert.Equal(t, grid.FillChanged, g.GetFill(g2job, ColJobNo))

	// Companion sheets.
	assert.True(t, wb.HasSheet("Zero Balance"))
	assert.False(t, wb.HasSheet("Duplicate Review"))
}

// =============================================================================
// IDEMPOTENCE
// =============================================================================

func TestRerunOnOwnOutputChangesNothing(t *testing.T) {
	wb := grid.NewWorkbook()
	tables := fixtureTables()
	runEngine(t, wb, tables)

	s := runEngine(t, wb, tables)

	assert.Equal(t, 0, s.GroupsAdded)
	assert.Equal(t, 0, s.GroupsUpdated)
	assert.Equal(t, 0, s.RowsInserted)
	assert.Equal(t, 0, s.DuplicatesRemoved)
	assert.Equal(t, 0, s.ZeroBalanceMoved)

	// No changed markers survive: the re-run cleared the first run's and
	// produced none of its own.
	g, _ := wb.Sheet("Report")
	for row := DataStartRow; row <= g.MaxRow(); row++ {
		for col := ColGroup; col <= ColBalanceQty; col++ {
			assert.NotEqual(t, grid.FillChanged, g.GetFill(row, col),
				"unexpected changed marker at row %d col %d", row, col)
		}
	}
}

// =============================================================================
// INCREMENTAL PATCHING
// =============================================================================

func TestNewJobRowInsertionRebasesLaterBlocks(t *testing.T) {
	wb := grid.NewWorkbook()
	runEngine(t, wb, fixtureTables())

	// Next extract: G1 gains a second PI with its own payment.
	tables := fixtureTables()
	tables.Payments.Add("CC300400", "J9", dec("200"), dec("2"),
		time.Date(2025, 7, 8, 0, 0, 0, 0, time.UTC))
	tables.Invoices.Add(&types.PIRecord{
		Group: "G1", PINumber: "CC300400A",
		Amount: dec("200"), Month: "07", Qty: dec("2"),
		Prefix: "CC300400", JobNo: "J5",
	})

	s := runEngine(t, wb, tables)

	assert.Equal(t, 0, s.GroupsAdded)
	assert.Equal(t, 1, s.GroupsUpdated)
	assert.Equal(t, 1, s.RowsInserted)

	g, _ := wb.Sheet("Report")

	// The new job row sits above G1's footer, fully populated.
	inserted := FirstBlockRow + 2
	assert.Equal(t, "J9", cellString(g, inserted, ColJobNo))
	assert.Equal(t, "CC300400A", cellString(g, inserted, ColPINumber))
	assert.True(t, cellDecimal(g, inserted, ColPIQty).Equal(dec("2")))
	assert.True(t, cellDecimal(g, inserted, ColDebit).Equal(dec("200")))
	assert.Equal(t, KindJob, readKind(g, inserted))
	assert.Equal(t, grid.FillChanged, g.GetFill(inserted, ColJobNo))

	// G1 header aggregates were refreshed.
	assert.True(t, cellDecimal(g, FirstBlockRow, ColPIQty).Equal(dec("12")))
	assert.True(t, cellDecimal(g, FirstBlockRow, ColCredit).Equal(dec("1200")))

	// G1 totals cover the widened block.
	g1total := FirstBlockRow + 6
	assert.Equal(t, "=ROUND(SUM(G6:G11),2)", g.GetFormula(g1total, ColCredit))
	assert.Equal(t, "=SUM(H7:H8)", g.GetFormula(g1total, ColInvoiceQty))

	// G2 moved down by exactly one row and its totals follow.
	g2rows := groupRows(g, "G2")
	require.Len(t, g2rows, 1)
	assert.Equal(t, 14, g2rows[0])
	g2total := g2rows[0] + 5
	assert.Equal(t, LabelTotal, cellString(g, g2total, ColJobNo))
	assert.Equal(t, "=ROUND(SUM(G14:G18),2)", g.GetFormula(g2total, ColCredit))
}

func TestPreferredJobChangeRewritesRowInPlace(t *testing.T) {
	wb := grid.NewWorkbook()
	runEngine(t, wb, fixtureTables())

	// Same PI, but the payment now books under job J2.
	next := fixtureTables()
	pay := types.NewPaymentTable()
	pay.Add("BA100200", "J2", dec("1000"), dec("10"),
		time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC))
	pay.MarkAmbiguous()
	next.Payments = pay

	s := runEngine(t, wb, next)

	assert.Equal(t, 0, s.RowsInserted)
	assert.Equal(t, 1, s.GroupsUpdated)

	// The PI keeps a single row; its job-number cell was rewritten.
	g, _ := wb.Sheet("Report")
	var piRows []int
	for row := DataStartRow; row <= g.MaxRow(); row++ {
		if cellString(g, row, ColPINumber) == "BA100200MJ" {
			piRows = append(piRows, row)
		}
	}
	require.Len(t, piRows, 1)
	assert.Equal(t, "J2", cellString(g, piRows[0], ColJobNo))
	assert.Equal(t, grid.FillChanged, g.GetFill(piRows[0], ColJobNo))
}

func TestLateDebitNoteLandsOnReservedRow(t *testing.T) {
	// First extract carries no note for G1; the fresh block still reserves
	// a debit row, blank except for its kind tag.
	tables := fixtureTables()
	delete(tables.DebitNotes, "G1")
	wb := grid.NewWorkbook()
	runEngine(t, wb, tables)

	s := runEngine(t, wb, fixtureTables())

	assert.Equal(t, 0, s.RowsInserted)
	assert.Equal(t, 1, s.GroupsUpdated)

	// The note landed on the reserved row instead of growing the block.
	g, _ := wb.Sheet("Report")
	debit := FirstBlockRow + 2
	assert.Equal(t, "DN0701", cellString(g, debit, ColJobNo))
	assert.True(t, cellDecimal(g, debit, ColCredit).Equal(dec("50")))
	assert.Equal(t, LabelCharge, cellString(g, debit+1, ColJobNo))

	debitRows := 0
	for row := DataStartRow; row <= g.MaxRow(); row++ {
		if readKind(g, row) == KindDebit {
			debitRows++
		}
	}
	assert.Equal(t, 2, debitRows, "one debit row per block")
}

func TestDebitNoteSignFlipClearsOppositeColumn(t *testing.T) {
	wb := grid.NewWorkbook()
	runEngine(t, wb, fixtureTables())

	// The note turns positive: the amount moves to the debit column and
	// the stale credit entry goes away.
	next := fixtureTables()
	next.DebitNotes["G1"] = &types.DebitNoteRecord{
		Group: "G1", NoteNumber: "DN0701", Month: "07", Amount: dec("50"),
	}
	s := runEngine(t, wb, next)

	assert.Equal(t, 1, s.GroupsUpdated)

	g, _ := wb.Sheet("Report")
	debit := FirstBlockRow + 2
	assert.True(t, cellDecimal(g, debit, ColDebit).Equal(dec("50")))
	assert.Equal(t, "", cellString(g, debit, ColCredit))
}

// =============================================================================
// AMBIGUOUS PREFIX
// =============================================================================

func TestAmbiguousPrefixYieldsSingleAttentionRow(t *testing.T) {
	pay := types.NewPaymentTable()
	pay.Add("BA100200", "J1", dec("600"), dec("6"), time.Time{})
	pay.Add("BA100200", "J2", dec("400"), dec("4"), time.Time{})
	pay.MarkAmbiguous()

	inv := types.NewPITable()
	inv.Add(&types.PIRecord{
		Group: "G1", PINumber: "BA100200MJ",
		Amount: dec("1000"), Month: "07", Qty: dec("10"),
		Prefix: "BA100200", JobNo: "J0",
	})

	tables := &types.SourceTables{
		Payments:   pay,
		Invoices:   inv,
		DebitNotes: make(types.DebitTable),
		Charges:    make(types.ChargeTable),
	}

	wb := grid.NewWorkbook()
	runEngine(t, wb, tables)

	g, _ := wb.Sheet("Report")

	var jobRows []int
	for row := DataStartRow; row <= g.MaxRow(); row++ {
		if readKind(g, row) == KindJob {
			jobRows = append(jobRows, row)
		}
	}
	require.Len(t, jobRows, 1)

	// The single row carries the PI's own job number and quantity, no
	// payment-side values, flagged for review.
	row := jobRows[0]
	assert.Equal(t, "J0", cellString(g, row, ColJobNo))
	assert.True(t, cellDecimal(g, row, ColPIQty).Equal(dec("10")))
	assert.Equal(t, "", cellString(g, row, ColDebit))
	assert.Equal(t, grid.FillAttention, g.GetFill(row, ColPINumber))
}

// =============================================================================
// ZERO-BALANCE PARTITION
// =============================================================================

func TestSettledGroupMovesToArchive(t *testing.T) {
	// G1's payment covers the invoice up to a 0.005 residue, inside the
	// default 0.01 tolerance; G2 has no payment at all and stays open.
	pay := types.NewPaymentTable()
	pay.Add("BA100200", "J1", dec("999.995"), dec("10"),
		time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC))
	pay.MarkAmbiguous()

	inv := types.NewPITable()
	inv.Add(&types.PIRecord{
		Group: "G1", PINumber: "BA100200MJ",
		Amount: dec("1000"), Month: "07", Qty: dec("10"),
		Prefix: "BA100200", JobNo: "J0",
	})
	inv.Add(&types.PIRecord{
		Group: "G2", PINumber: "ZZ900100X",
		Amount: dec("500"), Month: "07", Qty: dec("5"),
		Prefix: "ZZ900100", JobNo: "J7",
	})

	tables := &types.SourceTables{
		Payments:   pay,
		Invoices:   inv,
		DebitNotes: make(types.DebitTable),
		Charges:    make(types.ChargeTable),
	}

	wb := grid.NewWorkbook()
	s := runEngine(t, wb, tables)

	assert.Equal(t, 1, s.ZeroBalanceMoved)

	g, _ := wb.Sheet("Report")
	assert.Empty(t, groupRows(g, "G1"), "settled group must leave the live sheet")

	// G2 compacted up to the first block position, totals rebuilt there.
	g2rows := groupRows(g, "G2")
	require.Len(t, g2rows, 1)
	assert.Equal(t, FirstBlockRow, g2rows[0])
	assert.Equal(t, "=ROUND(SUM(G6:G10),2)", g.GetFormula(FirstBlockRow+5, ColCredit))

	archive, ok := wb.Sheet("Zero Balance")
	require.True(t, ok)
	assert.NotEmpty(t, groupRows(archive, "G1"))
	assert.Empty(t, groupRows(archive, "G2"))
}

func TestMatchedPaymentSettlesGroup(t *testing.T) {
	// Without the note and charge, G1's payment exactly offsets its credit
	// and the group leaves the live sheet on the same run that wrote it.
	tables := fixtureTables()
	delete(tables.DebitNotes, "G1")
	delete(tables.Charges, ledger.NormalizeGroup("G1"))

	wb := grid.NewWorkbook()
	s := runEngine(t, wb, tables)

	assert.Equal(t, 1, s.ZeroBalanceMoved)
	g, _ := wb.Sheet("Report")
	assert.Empty(t, groupRows(g, "G1"))

	archive, ok := wb.Sheet("Zero Balance")
	require.True(t, ok)
	headers := groupRows(archive, "G1")
	require.Len(t, headers, 1)
	job := headers[0] + 1
	assert.True(t, cellDecimal(archive, job, ColPIQty).Equal(dec("10")))
	assert.True(t, cellDecimal(archive, job, ColDebit).Equal(dec("1000")))
}

func TestUnsettledGroupStaysLive(t *testing.T) {
	wb := grid.NewWorkbook()
	s := runEngine(t, wb, fixtureTables())

	assert.Equal(t, 0, s.ZeroBalanceMoved)
	g, _ := wb.Sheet("Report")
	assert.NotEmpty(t, groupRows(g, "G1"))
	assert.NotEmpty(t, groupRows(g, "G2"))
}

// =============================================================================
// DUPLICATES
// =============================================================================

// writeTaggedBlock writes a minimal tagged block, returning its total row.
func writeTaggedBlock(g grid.Grid, row int, group string) int {
	g.SetCell(row, ColGroup, group)
	g.SetCell(row, ColPIMonth, "07")
	g.SetCell(row, ColPIQty, 10.0)
	g.SetCell(row, ColCredit, 1000.0)
	writeKind(g, row, KindHeader)
	row++

	g.SetCell(row, ColJobNo, "J1")
	g.SetCell(row, ColPINumber, "BA100200MJ")
	g.SetCell(row, ColInvoiceQty, 10.0)
	writeKind(g, row, KindJob)
	row++

	g.SetCell(row, ColJobNo, LabelCharge)
	writeKind(g, row, KindCharge)
	row++

	g.SetCell(row, ColJobNo, LabelAdjust)
	writeKind(g, row, KindAdjust)
	row++

	g.SetCell(row, ColJobNo, LabelTotal)
	writeKind(g, row, KindTotal)
	return row
}

func TestDuplicateBlocksMoveToReviewSheet(t *testing.T) {
	wb := grid.NewWorkbook()
	g := wb.EnsureSheet("Report")
	total := writeTaggedBlock(g, FirstBlockRow, "G1")
	writeTaggedBlock(g, total+2, "G1")

	s := runEngine(t, wb, fixtureTables())

	assert.Equal(t, 1, s.DuplicatesRemoved)

	// Exactly one G1 block survives on the live sheet.
	require.Len(t, groupRows(g, "G1"), 1)

	review, ok := wb.Sheet("Duplicate Review")
	require.True(t, ok)
	marker := cellString(review, ColumnHeaderRow+2, ColGroup)
	assert.True(t, strings.Contains(marker, "DUPLICATE GROUP G1"), "marker line %q", marker)
	assert.True(t, strings.Contains(marker, "removed rows 6-10"), "marker line %q", marker)
	assert.NotEmpty(t, groupRows(review, "G1"))
}

// =============================================================================
// LEGACY (UNTAGGED) REPORTS
// =============================================================================

func TestScannerHeuristicsIndexUntaggedBlock(t *testing.T) {
	wb := grid.NewWorkbook()
	g := wb.EnsureSheet("Report")

	// A block the way the previous tooling laid it out: values only, no
	// kind tags.
	g.SetCell(6, ColGroup, "G1")
	g.SetCell(6, ColPIMonth, "07")
	g.SetCell(6, ColPIQty, 10.0)
	g.SetCell(6, ColCredit, 1000.0)

	g.SetCell(7, ColJobNo, "J1")
	g.SetCell(7, ColPINumber, "BA100200MJ")
	g.SetCell(7, ColInvoiceDate, time.Date(2025, 7, 5, 0, 0, 0, 0, time.UTC))
	g.SetCell(7, ColPIQty, 10.0)
	g.SetCell(7, ColInvoiceQty, 10.0)
	g.SetCell(7, ColDebit, 1000.0)

	g.SetCell(8, ColJobNo, "DN0701")
	g.SetCell(8, ColPIMonth, "07")
	g.SetCell(8, ColCredit, 50.0)

	g.SetCell(9, ColJobNo, LabelCharge)
	g.SetCell(9, ColCredit, 5.0)

	g.SetCell(10, ColJobNo, LabelAdjust)
	g.SetCell(11, ColJobNo, "Total")

	s := runEngine(t, wb, fixtureTables())

	// G1 was recognized and patched in place, not appended again; only G2
	// is new. Nothing in the legacy block differed from source.
	assert.Equal(t, 1, s.GroupsAdded)
	assert.Equal(t, 0, s.GroupsUpdated)
	require.Len(t, groupRows(g, "G1"), 1)

	// The untagged row above the charge row was treated as the debit row
	// and left alone.
	assert.Equal(t, "DN0701", cellString(g, 8, ColJobNo))
	assert.True(t, cellDecimal(g, 8, ColCredit).Equal(dec("50")))

	// Totals were rebuilt for the legacy block too.
	assert.Equal(t, "=ROUND(SUM(G6:G10),2)", g.GetFormula(11, ColCredit))
}

func TestRetiredUntaggedBlockIsSweptWhenSettled(t *testing.T) {
	wb := grid.NewWorkbook()
	g := wb.EnsureSheet("Report")

	// A settled legacy block for a group the current sources no longer
	// mention. It must still be indexed, swept to the archive, and the
	// surviving blocks compacted over it.
	g.SetCell(6, ColGroup, "OLD1")
	g.SetCell(6, ColPIMonth, "01")
	g.SetCell(6, ColPIQty, 5.0)
	g.SetCell(6, ColCredit, 100.0)
	g.SetCell(7, ColJobNo, "J3")
	g.SetCell(7, ColPINumber, "AA111222MJ")
	g.SetCell(7, ColPIQty, 5.0)
	g.SetCell(7, ColDebit, 100.0)
	g.SetCell(8, ColJobNo, LabelCharge)
	g.SetCell(9, ColJobNo, LabelAdjust)
	g.SetCell(10, ColJobNo, "Total")

	s := runEngine(t, wb, fixtureTables())

	assert.Equal(t, 1, s.ZeroBalanceMoved)
	assert.Empty(t, groupRows(g, "OLD1"))

	archive, ok := wb.Sheet("Zero Balance")
	require.True(t, ok)
	assert.NotEmpty(t, groupRows(archive, "OLD1"))

	// The live groups moved up and their totals follow the final layout.
	g1 := groupRows(g, "G1")
	require.Len(t, g1, 1)
	assert.Equal(t, FirstBlockRow, g1[0])
	assert.Equal(t, "=ROUND(SUM(G6:G10),2)", g.GetFormula(FirstBlockRow+5, ColCredit))
}

func TestBlockWithoutTotalFallsBackToAppend(t *testing.T) {
	wb := grid.NewWorkbook()
	g := wb.EnsureSheet("Report")

	// A truncated block: header and job row, never closed by a total.
	g.SetCell(6, ColGroup, "G2")
	g.SetCell(6, ColPIMonth, "07")
	g.SetCell(6, ColCredit, 500.0)
	g.SetCell(7, ColJobNo, "J7")
	g.SetCell(7, ColPINumber, "ZZ900100X")

	s := runEngine(t, wb, fixtureTables())

	// The malformed block is not indexed, so G2 is appended fresh; the
	// stale rows stay behind for manual cleanup.
	assert.Equal(t, 2, s.GroupsAdded)
	assert.Len(t, groupRows(g, "G2"), 2)
}

// =============================================================================
// UNITS
// =============================================================================

func TestShiftFormulaRefs(t *testing.T) {
	assert.Equal(t, "=ROUND(SUM(G4:G8),2)", shiftFormulaRefs("=ROUND(SUM(G6:G10),2)", -2))
	assert.Equal(t, "=F9", shiftFormulaRefs("=F6", 3))
	assert.Equal(t, "$A$8", shiftFormulaRefs("$A$5", 3))
	assert.Equal(t, "=ROUND(G14-I14,2)", shiftFormulaRefs("=ROUND(G11-I11,2)", 3))
}

func TestGroupIndexShiftFrom(t *testing.T) {
	idx := &GroupIndex{
		Group: "G1", Header: 6, FirstJob: 7, LastJob: 8,
		Debit: 9, Charge: 10, Adjust: 11, Total: 12,
		JobRows: map[string]int{"BA100200MJ": 7, "CC300400A": 8},
	}

	idx.ShiftFrom(9, 1)

	assert.Equal(t, 6, idx.Header)
	assert.Equal(t, 8, idx.LastJob)
	assert.Equal(t, 10, idx.Debit)
	assert.Equal(t, 13, idx.Total)
	assert.Equal(t, 7, idx.JobRows["BA100200MJ"])
}

func TestGroupIndexFooterAndSpan(t *testing.T) {
	idx := &GroupIndex{Header: 6, Charge: 9, Total: 11}
	assert.Equal(t, 9, idx.FooterRow())
	assert.Equal(t, 10, idx.AdjustOrFallback())

	first, last := idx.JobSpan()
	assert.Equal(t, 6, first)
	assert.Equal(t, 6, last)

	idx.FirstJob, idx.LastJob = 7, 8
	first, last = idx.JobSpan()
	assert.Equal(t, 7, first)
	assert.Equal(t, 8, last)
}

func TestCompactor(t *testing.T) {
	wb := grid.NewWorkbook()
	g := wb.EnsureSheet("Report")

	g.SetCell(6, 1, "x")
	g.SetCell(12, 1, "y")
	g.SetCell(20, 2, " ")

	require.NoError(t, compressBlankRows(g))
	assert.Equal(t, "x", cellString(g, 6, 1))
	assert.False(t, rowHasData(g, 7))
	assert.Equal(t, "y", cellString(g, 8, 1))

	require.NoError(t, trimTrailing(g))
	assert.LessOrEqual(t, g.MaxRow(), 9)
}
