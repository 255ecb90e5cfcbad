package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ledgerworks/reconcile/internal/config"
	"github.com/ledgerworks/reconcile/internal/types"
)

func TestParseInvoicesKeysAndAggregates(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "NK"))
	set := func(cell string, v any) {
		require.NoError(t, f.SetCellValue("NK", cell, v))
	}

	set("B10", "J1")
	set("C10", "BA100200MJ")
	set("D10", "07")
	set("H10", 600)
	set("J10", "G1")
	set("L10", 10)

	// Duplicate (group, PI) key: first occurrence wins, aggregates only
	// count the survivor.
	set("B11", "J9")
	set("C11", "BA100200MJ")
	set("D11", "08")
	set("H11", 999)
	set("J11", "G1")
	set("L11", 99)

	set("B12", "J2")
	set("C12", "BA555000X")
	set("D12", "07")
	set("H12", 400)
	set("J12", "G1")
	set("L12", 5)

	// No extractable prefix: skipped.
	set("C13", "12345")
	set("J13", "G1")

	path := saveWorkbook(t, f, "invoices.xlsx")

	table, err := ParseInvoices(path, config.InvoiceSource{Sheet: "NK", DataStartRow: 10}, testLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{"G1"}, table.GroupOrder)
	assert.Len(t, table.GroupKeys["G1"], 2)

	rec := table.Records[types.PIKey("G1", "BA100200MJ")]
	require.NotNil(t, rec)
	assert.Equal(t, "J1", rec.JobNo)
	assert.Equal(t, "07", rec.Month)
	assert.Equal(t, "BA100200", rec.Prefix)
	assert.True(t, rec.Amount.Equal(decimal.NewFromInt(600)))

	assert.True(t, table.GroupAmount["G1"].Equal(decimal.NewFromInt(1000)))
	assert.True(t, table.GroupQty["G1"].Equal(decimal.NewFromInt(15)))
	assert.Equal(t, "07", table.GroupMonth("G1"))
}

func TestParseInvoicesMissingSheetIsFatal(t *testing.T) {
	f := excelize.NewFile()
	path := saveWorkbook(t, f, "invoices.xlsx")

	_, err := ParseInvoices(path, config.InvoiceSource{Sheet: "NK", DataStartRow: 10}, testLogger())
	assert.Error(t, err)
}
