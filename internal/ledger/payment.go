// =============================================================================
// Ledger Reconcile - Payment Ledger Parser
// =============================================================================
//
// The payment ledger is a workbook with one sheet per month; the monthly
// sheets are the ones whose (trimmed) name is all digits, e.g. "1025" or
// "1025 ". Data starts at a fixed row on each sheet.
//
// COLUMN LAYOUT (1-based):
//   | B            | C       | D             | E    | X       |
//   | Invoice Date | Job No. | PI Reference  | Qty  | Amount  |
//
// The PI reference in column D carries the join prefix. Rows without an
// extractable prefix are skipped silently. Raw rows sharing (prefix, job)
// are summed into one record.
//
// =============================================================================

package ledger

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"

	"github.com/ledgerworks/reconcile/internal/config"
	"github.com/ledgerworks/reconcile/internal/progress"
	"github.com/ledgerworks/reconcile/internal/types"
)

// Column indices on the monthly payment sheets (0-based).
const (
	payColInvoiceDate = 1  // B
	payColJobNo       = 2  // C
	payColReference   = 3  // D
	payColQty         = 4  // E
	payColAmount      = 23 // X
)

// ParsePayments parses the payment ledger into a keyed table.
//
// A workbook without any monthly (numeric-named) sheet is a structural
// defect and fatal for the run.
func ParsePayments(path string, src config.PaymentSource, log *progress.Logger) (*types.PaymentTable, error) {
	start := time.Now()
	log.Logf("Parsing payment ledger: %s", filepath.Base(path))

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var monthly []string
	for _, name := range f.GetSheetList() {
		if isNumericName(name) {
			monthly = append(monthly, name)
		}
	}
	if len(monthly) == 0 {
		return nil, fmt.Errorf("no monthly (numeric-named) sheets found")
	}
	log.Debugf("  payment workbook sheets: %d (monthly: %d)", len(f.GetSheetList()), len(monthly))

	table := types.NewPaymentTable()
	tick := log.Ticker()
	rowsTotal, rowsUsed := 0, 0

	for i, sheet := range monthly {
		log.Debugf("  [payment] sheet %d/%d: %s", i+1, len(monthly), strings.TrimSpace(sheet))

		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}

		for r := src.DataStartRow - 1; r < len(rows); r++ {
			rowsTotal++
			row := rows[r]

			// Rows too short to reach the amount column are layout noise
			// (subtotal lines, stray annotations), not payments.
			if len(row) <= payColAmount {
				continue
			}

			ref := cell(row, payColReference)
			if ref == "" {
				continue
			}
			prefix, ok := ExtractPrefix(ref)
			if !ok {
				continue
			}
			rowsUsed++

			jobNo := cell(row, payColJobNo)
			amount := ParseAmount(cell(row, payColAmount))
			qty := ParseAmount(cell(row, payColQty))
			invoiceDate, _ := ParseDate(cell(row, payColInvoiceDate))

			table.Add(prefix, jobNo, amount, qty, invoiceDate)

			tick.Tickf("  ... scanned %d payment rows (matched %d), prefixes so far: %d",
				rowsTotal, rowsUsed, table.Prefixes())
		}
	}

	table.MarkAmbiguous()

	log.Logf("  found %d prefixes in payment data (ambiguous: %d)",
		table.Prefixes(), len(table.Ambiguous))
	log.Logf("  payment parse finished in %s (rows scanned: %d)",
		time.Since(start).Round(time.Millisecond), rowsTotal)
	return table, nil
}

// isNumericName reports whether a sheet name, once trimmed, is all digits.
// Some payment workbooks carry trailing whitespace in sheet names.
func isNumericName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	for _, r := range name {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
