package grid

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnName(t *testing.T) {
	assert.Equal(t, "A", ColumnName(1))
	assert.Equal(t, "Z", ColumnName(26))
	assert.Equal(t, "AA", ColumnName(27))
	assert.Equal(t, "M", ColumnName(13))
	assert.Equal(t, "E6", CellRef(6, 5))
}

func TestEnsureSheetDropsDefault(t *testing.T) {
	wb := NewWorkbook()
	wb.EnsureSheet("Report")

	assert.True(t, wb.HasSheet("Report"))
	assert.False(t, wb.HasSheet("Sheet1"))

	_, ok := wb.Sheet("Report")
	assert.True(t, ok)
	_, ok = wb.Sheet("Nope")
	assert.False(t, ok)
}

func TestCellValuesAreRaw(t *testing.T) {
	wb := NewWorkbook()
	g := wb.EnsureSheet("Report")

	g.SetCell(1, 1, 1234.5)
	g.SetNumberFormat(1, 1, "#,##0")
	g.SetCell(2, 1, "text")

	// Raw reads bypass the display format.
	assert.Equal(t, "1234.5", g.GetCell(1, 1))
	assert.Equal(t, "text", g.GetCell(2, 1))
	assert.Equal(t, "", g.GetCell(50, 50))
}

func TestFormulaRoundTrip(t *testing.T) {
	wb := NewWorkbook()
	g := wb.EnsureSheet("Report")

	g.SetFormula(1, 2, "=SUM(A1:A3)")
	assert.Equal(t, "=SUM(A1:A3)", g.GetFormula(1, 2))

	g.SetCell(2, 2, "plain")
	assert.Equal(t, "", g.GetFormula(2, 2))
}

func TestFillMarkers(t *testing.T) {
	wb := NewWorkbook()
	g := wb.EnsureSheet("Report")

	assert.Equal(t, FillNone, g.GetFill(1, 1))

	g.SetFill(1, 1, FillAttention)
	assert.Equal(t, FillAttention, g.GetFill(1, 1))

	g.SetFill(1, 1, FillChanged)
	assert.Equal(t, FillChanged, g.GetFill(1, 1))

	g.SetFill(1, 1, FillNone)
	assert.Equal(t, FillNone, g.GetFill(1, 1))
}

func TestFillSurvivesOtherStyleWrites(t *testing.T) {
	wb := NewWorkbook()
	g := wb.EnsureSheet("Report")

	g.SetFill(3, 2, FillAttention)
	g.SetFont(3, 2, FontBold)
	g.SetNumberFormat(3, 2, "#,##0.00")

	assert.Equal(t, FillAttention, g.GetFill(3, 2))
}

func TestInsertAndDeleteRows(t *testing.T) {
	wb := NewWorkbook()
	g := wb.EnsureSheet("Report")

	g.SetCell(1, 1, "a")
	g.SetCell(2, 1, "b")
	g.SetCell(3, 1, "c")
	g.SetCell(2, 4, "wide")
	require.Equal(t, 3, g.MaxRow())
	require.Equal(t, 4, g.MaxCol())

	require.NoError(t, g.InsertRows(2, 2))
	assert.Equal(t, "a", g.GetCell(1, 1))
	assert.Equal(t, "", g.GetCell(2, 1))
	assert.Equal(t, "b", g.GetCell(4, 1))
	assert.Equal(t, "c", g.GetCell(5, 1))

	require.NoError(t, g.DeleteRows(2, 3))
	assert.Equal(t, "a", g.GetCell(1, 1))
	assert.Equal(t, "c", g.GetCell(2, 1))
}

func TestSaveAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")

	wb := NewWorkbook()
	g := wb.EnsureSheet("Report")
	g.SetCell(1, 1, 42)
	g.SetFill(1, 1, FillChanged)
	g.SetFormula(2, 1, "=A1*2")
	require.NoError(t, wb.Save(path))
	require.NoError(t, wb.Close())

	re, err := OpenWorkbook(path)
	require.NoError(t, err)
	defer re.Close()

	rg, ok := re.Sheet("Report")
	require.True(t, ok)
	assert.Equal(t, "42", rg.GetCell(1, 1))
	assert.Equal(t, FillChanged, rg.GetFill(1, 1))
	assert.Equal(t, "=A1*2", rg.GetFormula(2, 1))
}
