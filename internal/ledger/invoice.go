// =============================================================================
// Ledger Reconcile - Purchase-Invoice Ledger Parser
// =============================================================================
//
// The purchase-invoice (PI) ledger must expose the invoice sheet (default
// "NK"); its absence is fatal for the whole run.
//
// COLUMN LAYOUT (1-based):
//   | B       | C         | D        | H         | J     | L      |
//   | Job No. | PI Number | PI Month | PI Amount | Group | PI Qty |
//
// Records are keyed by (group, PI number); the first occurrence wins.
// Group-level aggregates (total amount, total quantity, ordered PI keys)
// are accumulated as records are inserted.
//
// =============================================================================

package ledger

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ledgerworks/reconcile/internal/config"
	"github.com/ledgerworks/reconcile/internal/progress"
	"github.com/ledgerworks/reconcile/internal/types"
)

// Column indices on the invoice sheet (0-based).
const (
	piColJobNo    = 1  // B
	piColPINumber = 2  // C
	piColMonth    = 3  // D
	piColAmount   = 7  // H
	piColGroup    = 9  // J
	piColQty      = 11 // L
)

// ParseInvoices parses the purchase-invoice ledger into a keyed table.
func ParseInvoices(path string, src config.InvoiceSource, log *progress.Logger) (*types.PITable, error) {
	start := time.Now()
	log.Logf("Parsing purchase-invoice ledger: %s", filepath.Base(path))

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(src.Sheet)
	if err != nil {
		return nil, fmt.Errorf("invoice sheet %q not found: %w", src.Sheet, err)
	}

	table := types.NewPITable()
	tick := log.Ticker()
	rowsTotal, rowsUsed := 0, 0

	for r := src.DataStartRow - 1; r < len(rows); r++ {
		rowsTotal++
		row := rows[r]

		piNumber := cell(row, piColPINumber)
		if piNumber == "" {
			continue
		}
		prefix, ok := ExtractPrefix(piNumber)
		if !ok {
			continue
		}
		rowsUsed++

		table.Add(&types.PIRecord{
			Group:    cell(row, piColGroup),
			PINumber: piNumber,
			Amount:   ParseAmount(cell(row, piColAmount)),
			Month:    cell(row, piColMonth),
			Qty:      ParseAmount(cell(row, piColQty)),
			Prefix:   prefix,
			JobNo:    cell(row, piColJobNo),
		})

		tick.Tickf("  ... scanned %d invoice rows (matched %d), groups so far: %d, PI keys: %d",
			rowsTotal, rowsUsed, len(table.GroupOrder), len(table.Records))
	}

	log.Logf("  found %d groups in invoice data (PI keys: %d)",
		len(table.GroupOrder), len(table.Records))
	log.Logf("  invoice parse finished in %s (rows scanned: %d)",
		time.Since(start).Round(time.Millisecond), rowsTotal)
	return table, nil
}
