// =============================================================================
// Ledger Reconcile - Key Normalizer
// =============================================================================
//
// The business keys joining records across the four ledgers:
//
//   Prefix: the leading alphabetic-then-numeric identifier of a payment or
//   invoice reference (e.g. "BA985283" out of "BA985283MJ"). Payments and
//   invoices join on it.
//
//   Normalized group: the group id upper-cased with spaces and dashes
//   stripped. Used only for joining against the charge ledger, whose group
//   spelling is the least reliable of the four sources.
//
// =============================================================================

package ledger

import (
	"regexp"
	"strings"
)

// prefixPattern matches a leading run of letters followed by digits.
var prefixPattern = regexp.MustCompile(`^[A-Za-z]+[0-9]+`)

// ExtractPrefix extracts the join prefix from a reference string. The
// second return value is false when the string carries no extractable
// prefix.
func ExtractPrefix(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	m := prefixPattern.FindString(s)
	if m == "" {
		return "", false
	}
	return m, true
}

// NormalizeGroup normalizes a group id for charge-ledger joining:
// upper-cased, spaces and dashes removed.
func NormalizeGroup(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "")
	return strings.ReplaceAll(s, "-", "")
}
