package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/policyqa/internal/model"
)

// fakeParser splits the body on form feeds
type fakeParser struct {
	err error
}

func (p fakeParser) Pages(data []byte) ([]string, error) {
	if p.err != nil {
		return nil, p.err
	}
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}
	return strings.Split(string(data), "\f"), nil
}

func serveBody(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestParseDocument_NumbersPagesInOrder(t *testing.T) {
	doc, err := ParseDocument(fakeParser{}, []byte("one\ftwo\fthree"), "https://x/p.pdf", nil)
	require.NoError(t, err)
	require.Equal(t, 3, doc.PageCount())
	for i, page := range doc.Pages {
		assert.Equal(t, i, page.PageNum)
		assert.Equal(t, "https://x/p.pdf", page.SourceURL)
	}
	assert.Equal(t, "onetwothree", doc.FullText)
}

func TestParseDocument_AppliesNormalizer(t *testing.T) {
	normalize := FooterNormalizer("|{page}|")
	doc, err := ParseDocument(fakeParser{}, []byte("|1|a\f|2|b"), "u", normalize)
	require.NoError(t, err)
	assert.Equal(t, "a|1|", doc.Pages[0].Text)
	assert.Equal(t, "b|2|", doc.Pages[1].Text)
	assert.Equal(t, "a|1|b|2|", doc.FullText)
}

func TestParseDocument_Empty(t *testing.T) {
	doc, err := ParseDocument(fakeParser{}, nil, "u", nil)
	require.NoError(t, err)
	assert.True(t, doc.IsEmpty())
	assert.Empty(t, doc.FullText)
}

func TestParseDocument_ParseError(t *testing.T) {
	_, err := ParseDocument(fakeParser{err: errors.New("bad xref")}, []byte("x"), "https://x/p.pdf", nil)

	var pe *model.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "https://x/p.pdf", pe.URL)
	assert.Contains(t, err.Error(), "bad xref")
}

func TestIngestor_Ingest(t *testing.T) {
	server := serveBody(t, "Cover starts at 18\fClaims within 6 months")
	ing := NewIngestor(NewFetcher(testHTTPConfig()), fakeParser{}, nil, nil)

	doc, err := ing.Ingest(context.Background(), model.InsurerEntry{
		Name: "Acme", URL: server.URL + "/acme.pdf", SearchKind: model.SearchKindDocument,
	})
	require.NoError(t, err)
	require.Equal(t, 2, doc.PageCount())
	assert.Equal(t, "Claims within 6 months", doc.Pages[1].Text)
	assert.Equal(t, server.URL+"/acme.pdf", doc.SourceURL)
}

func TestIngestor_UsesInsurerHook(t *testing.T) {
	server := serveBody(t, "body")
	hooks := NewNormalizers()
	hooks.Register("Acme", FooterNormalizer(" [Acme p{page}]"))
	ing := NewIngestor(NewFetcher(testHTTPConfig()), fakeParser{}, hooks, nil)

	doc, err := ing.Ingest(context.Background(), model.InsurerEntry{Name: "Acme", URL: server.URL + "/a.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "body [Acme p1]", doc.Pages[0].Text)
}

func TestIngestor_FetchError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	ing := NewIngestor(NewFetcher(testHTTPConfig()), fakeParser{}, nil, nil)
	_, err := ing.Ingest(context.Background(), model.InsurerEntry{Name: "Acme", URL: server.URL + "/a.pdf"})

	var fe *model.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusForbidden, fe.StatusCode)
}

func TestIngestor_RealPDF(t *testing.T) {
	server := serveBody(t, string(buildPDF(t, textPage("Entry age 18 to 65."))))
	ing := NewIngestor(NewFetcher(testHTTPConfig()), nil, nil, nil)

	doc, err := ing.Ingest(context.Background(), model.InsurerEntry{Name: "Acme", URL: server.URL + "/a.pdf"})
	require.NoError(t, err)
	require.Equal(t, 1, doc.PageCount())
	assert.Equal(t, "Entry age 18 to 65.", doc.Pages[0].Text)
}
