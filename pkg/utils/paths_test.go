package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampedSibling(t *testing.T) {
	got := TimestampedSibling(filepath.Join("reports", "daily.xlsx"), "UPDATED")

	assert.Equal(t, "reports", filepath.Dir(got))
	assert.Equal(t, ".xlsx", filepath.Ext(got))
	assert.True(t, strings.HasPrefix(filepath.Base(got), "daily_UPDATED_"), "got %s", got)
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xlsx")

	// Free path comes back unchanged.
	assert.Equal(t, path, UniquePath(path))

	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
	assert.Equal(t, filepath.Join(dir, "out (1).xlsx"), UniquePath(path))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "out (1).xlsx"), []byte("x"), 0644))
	assert.Equal(t, filepath.Join(dir, "out (2).xlsx"), UniquePath(path))
}

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, EnsureDir(dir))

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
