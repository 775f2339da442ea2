package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/policyqa/internal/model"
)

func doc(name, url string) model.InsurerEntry {
	return model.InsurerEntry{Name: name, URL: url, SearchKind: model.SearchKindDocument}
}

func TestEntries_Valid(t *testing.T) {
	err := Entries([]model.InsurerEntry{
		doc("Capitec", "https://example.com/capitec.pdf"),
		doc("OldMutual", "https://example.com/docs/om.PDF?version=2"),
		{Name: "Sanlam", URL: "https://www.sanlam.co.za", SearchKind: model.SearchKindWebSearch},
		{Name: "Hollard", URL: "https://api.hollard.example", SearchKind: model.SearchKindAPI},
	})
	assert.NoError(t, err)
}

func TestEntries_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		entries []model.InsurerEntry
		insurer string
	}{
		{"no entries", nil, ""},
		{"document without pdf suffix", []model.InsurerEntry{doc("Acme", "https://example.com/page")}, "Acme"},
		{"empty url", []model.InsurerEntry{doc("Acme", "  ")}, "Acme"},
		{"empty name", []model.InsurerEntry{doc("", "https://example.com/a.pdf")}, ""},
		{"pdf only in query", []model.InsurerEntry{doc("Acme", "https://example.com/get?file=a.pdf")}, "Acme"},
		{"relative url", []model.InsurerEntry{doc("Acme", "docs/a.pdf")}, "Acme"},
		{"unknown kind", []model.InsurerEntry{{Name: "Acme", URL: "https://x", SearchKind: "ftp"}}, "Acme"},
		{"duplicate", []model.InsurerEntry{
			doc("Old Mutual", "https://example.com/a.pdf"),
			doc("oldmutual", "https://example.com/b.pdf"),
		}, "oldmutual"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Entries(tt.entries)
			var ce *model.ConfigError
			require.True(t, errors.As(err, &ce), "want ConfigError, got %v", err)
			assert.Equal(t, tt.insurer, ce.Insurer)
		})
	}
}

func TestEntries_FirstBadEntryFailsBatch(t *testing.T) {
	err := Entries([]model.InsurerEntry{
		doc("Capitec", "https://example.com/capitec.pdf"),
		doc("Broken", "https://example.com/page"),
		doc("AlsoBroken", ""),
	})
	var ce *model.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Broken", ce.Insurer)
	assert.Contains(t, err.Error(), "https://example.com/page")
}

func TestIsDocumentURL(t *testing.T) {
	assert.True(t, IsDocumentURL("https://example.com/capitec.pdf"))
	assert.True(t, IsDocumentURL("http://example.com/a/b/Policy.Pdf#page=2"))
	assert.False(t, IsDocumentURL("https://example.com/.pdf"))
	assert.False(t, IsDocumentURL("https://example.com/"))
	assert.False(t, IsDocumentURL("ftp://example.com/a.pdf"))
	assert.False(t, IsDocumentURL("://bad"))
}
