package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ledgerworks/reconcile/internal/config"
)

func TestParseDebitNotesFirstOccurrenceWins(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	set := func(cell string, v any) {
		require.NoError(t, f.SetCellValue(sheet, cell, v))
	}

	set("A2", "G1")
	set("B2", "DN0701")
	set("C2", -50)

	set("A3", "G1")
	set("B3", "DN0999")
	set("C3", 123)

	set("A4", "G2")
	set("B4", "DN1210")
	set("C4", 75)

	path := saveWorkbook(t, f, "notes.xlsx")

	table, err := ParseDebitNotes(path, config.DebitNoteSource{DataStartRow: 2}, testLogger())
	require.NoError(t, err)
	require.Len(t, table, 2)

	note := table["G1"]
	require.NotNil(t, note)
	assert.Equal(t, "DN0701", note.NoteNumber)
	assert.Equal(t, "07", note.Month)
	assert.True(t, note.Amount.Equal(decimal.NewFromInt(-50)))

	assert.Equal(t, "12", table["G2"].Month)
}
