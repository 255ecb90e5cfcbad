// =============================================================================
// Ledger Reconcile - Debit-Note Ledger Parser
// =============================================================================
//
// The debit-note ledger is a flat list on the workbook's first sheet.
//
// COLUMN LAYOUT (1-based):
//   | A     | B           | C      |
//   | Group | Note Number | Amount |
//
// At most one note is kept per group; the first occurrence wins. The note
// month is the first two digits embedded in the note number.
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

// ParseDebitNotes parses the debit-note ledger into a keyed table.
func ParseDebitNotes(path string, src config.DebitNoteSource, log *progress.Logger) (types.DebitTable, error) {
	start := time.Now()
	log.Logf("Parsing debit-note ledger: %s", filepath.Base(path))

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

	table := make(types.DebitTable)
	for r := src.DataStartRow - 1; r < len(rows); r++ {
		row := rows[r]

		group := cell(row, 0)
		if group == "" {
			continue
		}
		noteNumber := cell(row, 1)

		table.Add(&types.DebitNoteRecord{
			Group:      group,
			NoteNumber: noteNumber,
			Month:      NoteMonth(noteNumber),
			Amount:     ParseAmount(cell(row, 2)),
		})
	}

	log.Logf("  found %d debit-note entries", len(table))
	log.Logf("  debit-note parse finished in %s", time.Since(start).Round(time.Millisecond))
	return table, nil
}
