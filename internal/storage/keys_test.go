package storage

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFlatKey(t *testing.T) {
	k1 := flatKey("Quarterly Report.PDF")
	k2 := flatKey("Quarterly Report.PDF")

	assert.Regexp(t, `^project-documents/[0-9a-f-]{36}\.pdf$`, k1)
	assert.NotEqual(t, k1, k2)
	assert.NotContains(t, k1, "Quarterly")
}

func TestScopedKey(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	tests := []struct {
		name     string
		scope    Scope
		filename string
		pattern  string
	}{
		{
			name:     "full scope",
			scope:    Scope{CompanySlug: "acme", ProjectSlug: "bridge"},
			filename: "deck.pptx",
			pattern:  `^documents/acme/bridge/1700000000123-[0-9a-f]{12}\.pptx$`,
		},
		{
			name:     "no company",
			scope:    Scope{ProjectSlug: "bridge"},
			filename: "notes.txt",
			pattern:  `^documents/unassigned/bridge/1700000000123-[0-9a-f]{12}\.txt$`,
		},
		{
			name:     "no extension",
			scope:    Scope{CompanySlug: "acme", ProjectSlug: "bridge"},
			filename: "README",
			pattern:  `^documents/acme/bridge/1700000000123-[0-9a-f]{12}$`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Regexp(t, regexp.MustCompile(tt.pattern), scopedKey(tt.scope, tt.filename, now))
		})
	}
}

func TestRemovalString(t *testing.T) {
	assert.Equal(t, "removed", Removed.String())
	assert.Equal(t, "already_absent", AlreadyAbsent.String())
}
