// =============================================================================
// Ledger Reconcile - Cell Value Parsing
// =============================================================================
//
// Source ledgers arrive with inconsistent cell formatting: amounts with
// thousands separators, dates as serial numbers or half a dozen text
// layouts, quantities as text. The helpers here turn raw cell strings into
// typed values, always degrading to a zero value instead of failing; a row
// with an unusable number is still a row.
//
// =============================================================================

package ledger

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ParseAmount converts a raw cell string to a decimal. Thousands separators
// and surrounding whitespace are tolerated; anything unparseable yields
// zero.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// dateLayouts are tried in order. Day-first layouts come first; the
// ledgers are day-first throughout.
var dateLayouts = []string{
	"2/1/2006",
	"2/1/06",
	"2006-01-02",
	"2-1-2006",
}

// ParseDate normalizes a raw cell string to a date. Handles Excel serial
// numbers, text dates with or without a trailing time component, and
// returns false for anything else.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	// Serial date number.
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return truncateToDay(t), true
	}

	// Strip a trailing time, e.g. "05/09/2025 00:00:00".
	if i := strings.IndexByte(s, ' '); i > 0 {
		s = s[:i]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateToDay(t), true
		}
	}
	return time.Time{}, false
}

// SameDate reports whether two dates fall on the same calendar day. Zero
// values only match each other.
func SameDate(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return a.IsZero() && b.IsZero()
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NoteMonth extracts the two-digit month embedded in a debit-note number
// (the first two digits encountered). Returns "" when fewer than two
// digits are present.
func NoteMonth(noteNumber string) string {
	var digits strings.Builder
	for _, r := range noteNumber {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
			if digits.Len() == 2 {
				return digits.String()
			}
		}
	}
	return ""
}

// cell safely reads one column from a bulk-read row, returning "" when the
// row is shorter than the requested column. Column index is 0-based.
func cell(row []string, col int) string {
	if col < len(row) {
		return strings.TrimSpace(row[col])
	}
	return ""
}
