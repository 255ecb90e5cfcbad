package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPrefix(t *testing.T) {
	tests := []struct {
		in     string
		prefix string
		ok     bool
	}{
		{"BA985283MJ", "BA985283", true},
		{"BA985283", "BA985283", true},
		{"  cc1002-x ", "cc1002", true},
		{"985283MJ", "", false},
		{"BAXX", "", false},
		{"", "", false},
		{"   ", "", false},
	}
	for _, tt := range tests {
		prefix, ok := ExtractPrefix(tt.in)
		assert.Equal(t, tt.ok, ok, "input %q", tt.in)
		assert.Equal(t, tt.prefix, prefix, "input %q", tt.in)
	}
}

func TestNormalizeGroup(t *testing.T) {
	assert.Equal(t, "G1A", NormalizeGroup(" g 1-a "))
	assert.Equal(t, "ABC", NormalizeGroup("A-B-C"))
	assert.Equal(t, "", NormalizeGroup("  "))
	assert.Equal(t, NormalizeGroup("VT-100 B"), NormalizeGroup("vt100b"))
}
