package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/policyqa/internal/model"
	"github.com/ppiankov/policyqa/internal/validate"
)

const jsonRegistry = `{
  "Sanlam": {"url": "https://www.sanlam.co.za", "search_type": "web_scrapper"},
  "Capitec": {"url": "https://example.com/capitec.pdf", "search_type": "document"},
  "OldMutual": {"url": "https://example.com/om.pdf", "search_type": "document"}
}`

func TestParse_JSONKeepsFileOrder(t *testing.T) {
	reg, err := Parse([]byte(jsonRegistry))
	require.NoError(t, err)
	require.Equal(t, 3, reg.Len())

	assert.Equal(t, "Sanlam", reg.Entries[0].Name)
	assert.Equal(t, model.SearchKindWebSearch, reg.Entries[0].SearchKind)
	assert.Equal(t, "Capitec", reg.Entries[1].Name)
	assert.Equal(t, "OldMutual", reg.Entries[2].Name)
	assert.Equal(t, model.SearchKindDocument, reg.Entries[2].SearchKind)
}

func TestParse_YAML(t *testing.T) {
	reg, err := Parse([]byte(`
Capitec:
  url: https://example.com/capitec.pdf
  boilerplate: "Page {page} of the policy."
Hollard:
  url: https://api.example.com
  search_type: api
`))
	require.NoError(t, err)
	require.Equal(t, 2, reg.Len())
	assert.Equal(t, model.SearchKindDocument, reg.Entries[0].SearchKind, "search type defaults to document")
	assert.Equal(t, "Page {page} of the policy.", reg.Entries[0].Boilerplate)
	assert.Equal(t, model.SearchKindAPI, reg.Entries[1].SearchKind)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":         ``,
		"list":          `["a", "b"]`,
		"no insurers":   `{}`,
		"bad kind":      `{"Acme": {"url": "https://x/a.pdf", "search_type": "ftp"}}`,
		"entry not map": `{"Acme": ["https://x/a.pdf"]}`,
		"syntax":        `{"Acme": `,
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestParse_BadKindNamesInsurer(t *testing.T) {
	_, err := Parse([]byte(`{"Acme": {"url": "https://x/a.pdf", "search_type": "ftp"}}`))
	var ce *model.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Acme", ce.Insurer)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "insurers.json")
	require.NoError(t, os.WriteFile(path, []byte(jsonRegistry), 0o600))

	reg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, reg.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestRegistry_Pick(t *testing.T) {
	reg, err := Parse([]byte(jsonRegistry))
	require.NoError(t, err)

	picked, err := reg.Pick([]string{"2", "3"})
	require.NoError(t, err)
	require.Len(t, picked, 2)
	assert.Equal(t, "Capitec", picked[0].Name)
	assert.Equal(t, "OldMutual", picked[1].Name)

	_, err = reg.Pick([]string{"4"})
	var ve *validate.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestRegistry_ByName(t *testing.T) {
	reg, err := Parse([]byte(jsonRegistry))
	require.NoError(t, err)

	picked, err := reg.ByName([]string{"old mutual", "CAPITEC"})
	require.NoError(t, err)
	assert.Equal(t, "OldMutual", picked[0].Name)
	assert.Equal(t, "Capitec", picked[1].Name)

	_, err = reg.ByName([]string{"Discovery"})
	var ce *model.ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Discovery", ce.Insurer)
}
