// =============================================================================
// Ledger Reconcile - Output Path Utilities
// =============================================================================
//
// Helpers for deriving the result workbook's path. The engine never
// overwrites a file it did not create this run:
//   - TimestampedSibling names the result after the supplied report with a
//     timestamp suffix.
//   - UniquePath steps aside with " (n)" when the target name is taken.
//
// =============================================================================

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EnsureDir creates a directory (and parents) if it does not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// TimestampedSibling derives an output path next to the original file:
// the original stem, a marker suffix, and a timestamp.
//
// EXAMPLE:
//
//	TimestampedSibling("reports/daily.xlsx", "UPDATED")
//	-> "reports/daily_UPDATED_20250115_143022.xlsx"
func TimestampedSibling(path, suffix string) string {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	stamp := time.Now().Format("20060102_150405")
	return filepath.Join(dir, fmt.Sprintf("%s_%s_%s%s", stem, suffix, stamp, ext))
}

// UniquePath returns path unchanged when it is free, otherwise the first
// "name (n)" variant that is.
func UniquePath(path string) string {
	if !FileExists(path) {
		return path
	}
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	for n := 1; ; n++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		if !FileExists(candidate) {
			return candidate
		}
	}
}
