// =============================================================================
// Ledger Reconcile - Existing-Block Scanner
// =============================================================================
//
// The scanner walks the live report sheet and indexes every group block it
// can identify. Classification is tag-first: rows written by this engine
// carry their kind in the hidden marker column and are trusted outright,
// even when the row carries no visible content (a reserved debit row for a
// group with no note yet is exactly that). Untagged rows (reports produced
// or edited elsewhere) fall back to heuristics:
//
//   header - group id in A, blank B and C, any of D/F/G populated
//   total  - "total" label in B (case-insensitive), closes the block
//   charge - "CHARGE TO PURCHASE" label in B
//   adjust - "EXCHANGE GAIN OR LOSS" label in B
//   debit  - the untagged row immediately above the charge row
//   job    - any other populated row inside an open block
//
// A block that never reaches a total row is malformed: it is logged and
// left out of the index, which makes the merge engine treat the group as
// new.
//
// =============================================================================

package report

import (
	"sort"
	"strings"

	"github.com/ledgerworks/reconcile/internal/grid"
)

// scanResult is one pass over the report sheet.
type scanResult struct {
	// occurrences lists every indexed block per group. More than one entry
	// means duplicate blocks; the duplicate resolver consumes these.
	occurrences map[string][]*GroupIndex

	// order lists all indexed blocks by ascending header row.
	order []*GroupIndex
}

// byGroup returns the group's surviving block: the one with the highest
// header row when duplicates exist.
func (s *scanResult) byGroup(group string) *GroupIndex {
	occ := s.occurrences[group]
	if len(occ) == 0 {
		return nil
	}
	best := occ[0]
	for _, x := range occ[1:] {
		if x.Header > best.Header {
			best = x
		}
	}
	return best
}

// blockBuilder accumulates one block while the scan walks its rows.
type blockBuilder struct {
	idx *GroupIndex

	// jobs records job rows in sheet order; finalization may reclassify
	// the last one as the debit row.
	jobs []jobEntry
}

type jobEntry struct {
	row    int
	pi     string
	tagged bool
}

// scan indexes the report sheet's group blocks.
func (rc *ReconciliationContext) scan(g grid.Grid) *scanResult {
	result := &scanResult{occurrences: make(map[string][]*GroupIndex)}
	last := lastDataRow(g)

	var cur *blockBuilder
	flush := func() {
		if cur == nil {
			return
		}
		idx := cur.finalize()
		if idx.Total == 0 {
			rc.log.Logf("  [scan] group %q: block at row %d has no total row, skipping (will be treated as new)",
				idx.Group, idx.Header)
		} else {
			result.occurrences[idx.Group] = append(result.occurrences[idx.Group], idx)
			result.order = append(result.order, idx)
		}
		cur = nil
	}

	for row := DataStartRow; row <= last; row++ {
		kind := readKind(g, row)
		tagged := kind != KindNone
		if !tagged {
			if !rowHasData(g, row) {
				continue
			}
			kind = rc.classify(g, row, cur != nil)
		}

		switch kind {
		case KindHeader:
			flush()
			cur = &blockBuilder{idx: &GroupIndex{
				Group:   cellString(g, row, ColGroup),
				Header:  row,
				JobRows: make(map[string]int),
			}}

		case KindTotal:
			if cur != nil {
				cur.idx.Total = row
				flush()
			}

		case KindDebit:
			if cur != nil {
				cur.idx.Debit = row
			}

		case KindCharge:
			if cur != nil {
				cur.idx.Charge = row
			}

		case KindAdjust:
			if cur != nil {
				cur.idx.Adjust = row
			}

		case KindJob:
			if cur != nil {
				cur.jobs = append(cur.jobs, jobEntry{
					row:    row,
					pi:     cellString(g, row, ColPINumber),
					tagged: tagged,
				})
			}
		}
	}
	flush()

	sort.Slice(result.order, func(i, j int) bool {
		return result.order[i].Header < result.order[j].Header
	})
	return result
}

// classify applies the untagged-row heuristics.
func (rc *ReconciliationContext) classify(g grid.Grid, row int, inBlock bool) RowKind {
	label := cellString(g, row, ColJobNo)

	switch strings.ToUpper(label) {
	case strings.ToUpper(LabelTotal):
		return KindTotal
	case LabelCharge:
		return KindCharge
	case LabelAdjust:
		return KindAdjust
	}

	group := cellString(g, row, ColGroup)
	if group != "" &&
		label == "" && cellString(g, row, ColPINumber) == "" &&
		(cellString(g, row, ColPIMonth) != "" ||
			cellString(g, row, ColPIQty) != "" ||
			cellString(g, row, ColCredit) != "") {
		return KindHeader
	}

	if inBlock {
		return KindJob
	}
	return KindNone
}

// finalize turns the accumulated rows into a GroupIndex. When the block's
// debit row was never tagged, the untagged row sitting directly above the
// charge row is it, not a job row.
func (b *blockBuilder) finalize() *GroupIndex {
	idx := b.idx
	jobs := b.jobs

	if idx.Debit == 0 && idx.Charge > 0 && len(jobs) > 0 {
		lastJob := jobs[len(jobs)-1]
		if !lastJob.tagged && lastJob.row == idx.Charge-1 {
			idx.Debit = lastJob.row
			jobs = jobs[:len(jobs)-1]
		}
	}

	for _, j := range jobs {
		if j.pi != "" {
			idx.JobRows[j.pi] = j.row
		}
		if idx.FirstJob == 0 || j.row < idx.FirstJob {
			idx.FirstJob = j.row
		}
		if j.row > idx.LastJob {
			idx.LastJob = j.row
		}
	}
	return idx
}
