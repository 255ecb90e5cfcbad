// =============================================================================
// Ledger Reconcile - Shared Types
// =============================================================================
//
// This package contains the keyed in-memory tables the four ledger parsers
// produce and the merge engine consumes. Types live here to avoid import
// cycles between:
//   - ledger (producers)
//   - report (consumer)
//
// All monetary amounts and quantities are shopspring decimals; they are
// converted to floats only at the grid boundary.
//
// =============================================================================

package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// PIKey builds the composite key joining a purchase invoice to its group.
func PIKey(group, piNumber string) string {
	return group + "|" + piNumber
}

// =============================================================================
// PAYMENT LEDGER
// =============================================================================

// PaymentRecord is one accumulated payment fact, keyed by (prefix, job
// number). Multiple raw ledger rows sharing the key are summed into one
// record: amount and quantity accumulate, the invoice date keeps the first
// value seen.
type PaymentRecord struct {
	Prefix      string
	JobNo       string
	Amount      decimal.Decimal
	InvoiceDate time.Time // zero when the ledger carried no parseable date
	InvoiceQty  decimal.Decimal
}

// PaymentTable is the keyed table of payment records, grouped by prefix.
//
// A prefix carrying more than one distinct job number cannot be matched to
// an invoice deterministically; such prefixes are recorded in Ambiguous and
// surfaced as attention items rather than merged silently.
type PaymentTable struct {
	// jobs maps prefix -> job number -> record.
	jobs map[string]map[string]*PaymentRecord

	// jobOrder preserves first-seen job order per prefix, so re-runs
	// produce identical output.
	jobOrder map[string][]string

	// Ambiguous is the set of prefixes with more than one distinct job.
	Ambiguous map[string]bool
}

// NewPaymentTable returns an empty payment table.
func NewPaymentTable() *PaymentTable {
	return &PaymentTable{
		jobs:      make(map[string]map[string]*PaymentRecord),
		jobOrder:  make(map[string][]string),
		Ambiguous: make(map[string]bool),
	}
}

// Add merges one raw ledger row into the table.
func (t *PaymentTable) Add(prefix, jobNo string, amount, qty decimal.Decimal, invoiceDate time.Time) {
	byJob, ok := t.jobs[prefix]
	if !ok {
		byJob = make(map[string]*PaymentRecord)
		t.jobs[prefix] = byJob
	}
	if rec, ok := byJob[jobNo]; ok {
		rec.Amount = rec.Amount.Add(amount)
		rec.InvoiceQty = rec.InvoiceQty.Add(qty)
		return
	}
	byJob[jobNo] = &PaymentRecord{
		Prefix:      prefix,
		JobNo:       jobNo,
		Amount:      amount,
		InvoiceDate: invoiceDate,
		InvoiceQty:  qty,
	}
	t.jobOrder[prefix] = append(t.jobOrder[prefix], jobNo)
}

// MarkAmbiguous records every prefix that accumulated more than one
// distinct job number. Called once after the parse completes.
func (t *PaymentTable) MarkAmbiguous() {
	for prefix, byJob := range t.jobs {
		if len(byJob) > 1 {
			t.Ambiguous[prefix] = true
		}
	}
}

// Has reports whether any payment record exists under the prefix.
func (t *PaymentTable) Has(prefix string) bool {
	return len(t.jobs[prefix]) > 0
}

// JobsFor returns the prefix's payment records in first-seen job order.
func (t *PaymentTable) JobsFor(prefix string) []*PaymentRecord {
	order := t.jobOrder[prefix]
	out := make([]*PaymentRecord, 0, len(order))
	for _, jobNo := range order {
		out = append(out, t.jobs[prefix][jobNo])
	}
	return out
}

// Lookup returns the record for an exact (prefix, job) pair, or nil.
func (t *PaymentTable) Lookup(prefix, jobNo string) *PaymentRecord {
	return t.jobs[prefix][jobNo]
}

// First returns the first-seen record under the prefix, or nil.
func (t *PaymentTable) First(prefix string) *PaymentRecord {
	order := t.jobOrder[prefix]
	if len(order) == 0 {
		return nil
	}
	return t.jobs[prefix][order[0]]
}

// Prefixes returns the number of distinct prefixes in the table.
func (t *PaymentTable) Prefixes() int {
	return len(t.jobs)
}

// =============================================================================
// PURCHASE-INVOICE LEDGER
// =============================================================================

// PIRecord is one purchase-invoice line, keyed by (group, PI number).
// The first occurrence of a key wins; later duplicates in the source are
// ignored.
type PIRecord struct {
	Group    string
	PINumber string
	Amount   decimal.Decimal
	Month    string
	Qty      decimal.Decimal

	// Prefix is the join key extracted from the PI number, used to match
	// payment records.
	Prefix string

	// JobNo is the invoice ledger's own job number, used for job rows that
	// have no payment match.
	JobNo string
}

// PITable is the keyed table of purchase-invoice records plus the
// group-level aggregates derived from them.
type PITable struct {
	// Records maps PIKey(group, piNumber) -> record.
	Records map[string]*PIRecord

	// GroupKeys maps group -> ordered PI keys (source order).
	GroupKeys map[string][]string

	// GroupOrder lists groups in first-seen source order.
	GroupOrder []string

	// GroupAmount and GroupQty are per-group sums over the group's PI
	// records.
	GroupAmount map[string]decimal.Decimal
	GroupQty    map[string]decimal.Decimal
}

// NewPITable returns an empty purchase-invoice table.
func NewPITable() *PITable {
	return &PITable{
		Records:     make(map[string]*PIRecord),
		GroupKeys:   make(map[string][]string),
		GroupAmount: make(map[string]decimal.Decimal),
		GroupQty:    make(map[string]decimal.Decimal),
	}
}

// Add inserts one invoice line. Duplicate keys are first-wins; aggregates
// only count the surviving record.
func (t *PITable) Add(rec *PIRecord) {
	key := PIKey(rec.Group, rec.PINumber)
	if _, ok := t.Records[key]; ok {
		return
	}
	t.Records[key] = rec

	if _, ok := t.GroupKeys[rec.Group]; !ok {
		t.GroupOrder = append(t.GroupOrder, rec.Group)
	}
	t.GroupKeys[rec.Group] = append(t.GroupKeys[rec.Group], key)
	t.GroupAmount[rec.Group] = t.GroupAmount[rec.Group].Add(rec.Amount)
	t.GroupQty[rec.Group] = t.GroupQty[rec.Group].Add(rec.Qty)
}

// GroupMonth returns the month carried by the group's first PI record.
func (t *PITable) GroupMonth(group string) string {
	keys := t.GroupKeys[group]
	if len(keys) == 0 {
		return ""
	}
	return t.Records[keys[0]].Month
}

// HasGroup reports whether the group appears in the invoice data.
func (t *PITable) HasGroup(group string) bool {
	return len(t.GroupKeys[group]) > 0
}

// =============================================================================
// DEBIT-NOTE LEDGER
// =============================================================================

// DebitNoteRecord is the single debit note recorded for a group.
type DebitNoteRecord struct {
	Group      string
	NoteNumber string

	// Month is the two-digit month extracted from the note number.
	Month string

	// Amount posts to the credit column when negative (absolute value) and
	// to the debit column otherwise.
	Amount decimal.Decimal
}

// DebitTable maps group -> debit note. At most one note per group; the
// first occurrence in the source wins.
type DebitTable map[string]*DebitNoteRecord

// Add inserts a note unless the group already has one.
func (t DebitTable) Add(rec *DebitNoteRecord) {
	if _, ok := t[rec.Group]; !ok {
		t[rec.Group] = rec
	}
}

// =============================================================================
// PURCHASE-CHARGE LEDGER
// =============================================================================

// ChargeRecord is the credit/debit pair charged to a group.
type ChargeRecord struct {
	Credit decimal.Decimal
	Debit  decimal.Decimal
}

// ChargeTable maps a normalized group id (see ledger.NormalizeGroup) to its
// charge record. The charge ledger spells group ids inconsistently, so the
// key is normalized before lookup; the last occurrence in the source wins.
type ChargeTable map[string]*ChargeRecord

// =============================================================================
// SOURCE TABLES
// =============================================================================

// SourceTables bundles the four parsed ledgers for one run. The tables are
// rebuilt from scratch every run and discarded afterwards; nothing here is
// persisted.
type SourceTables struct {
	Payments   *PaymentTable
	Invoices   *PITable
	DebitNotes DebitTable
	Charges    ChargeTable
}
