// =============================================================================
// Ledger Reconcile - Purchase-Charge Ledger Parser
// =============================================================================
//
// The charge ledger is a flat list on the workbook's first sheet. Its group
// ids are spelled inconsistently (stray spaces, dashes, mixed case), so the
// table is keyed by the normalized group id.
//
// COLUMN LAYOUT (1-based):
//   | A              | B      | C     |
//   | Group spelling | Credit | Debit |
//
// A duplicated normalized key keeps the last occurrence.
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

// ParseCharges parses the purchase-charge ledger into a keyed table.
func ParseCharges(path string, src config.ChargeSource, log *progress.Logger) (types.ChargeTable, error) {
	start := time.Now()
	log.Logf("Parsing purchase-charge ledger: %s", filepath.Base(path))

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	table := make(types.ChargeTable)
	for r := src.DataStartRow - 1; r < len(rows); r++ {
		row := rows[r]

		spelling := cell(row, 0)
		if spelling == "" {
			continue
		}

		table[NormalizeGroup(spelling)] = &types.ChargeRecord{
			Credit: ParseAmount(cell(row, 1)),
			Debit:  ParseAmount(cell(row, 2)),
		}
	}

	log.Logf("  found %d charge entries", len(table))
	log.Logf("  charge parse finished in %s", time.Since(start).Round(time.Millisecond))
	return table, nil
}
