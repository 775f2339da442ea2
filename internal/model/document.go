package model

import "strings"

// PageRecord is the extracted text of one physical page.
type PageRecord struct {
	PageNum   int    `json:"page_num"`   // 0-based, matches physical page order
	Text      string `json:"text"`       // Normalized page text
	SourceURL string `json:"source_url"` // Document the page was read from
}

// Document is an ingested policy document: its pages in order plus the
// concatenated text of all pages.
type Document struct {
	SourceURL string       `json:"source_url"`
	Pages     []PageRecord `json:"pages"`
	FullText  string       `json:"full_text"`
}

// NewDocument builds a Document from pages already in physical order.
func NewDocument(sourceURL string, pages []PageRecord) *Document {
	var buf strings.Builder
	for _, p := range pages {
		buf.WriteString(p.Text)
	}
	return &Document{
		SourceURL: sourceURL,
		Pages:     pages,
		FullText:  buf.String(),
	}
}

// PageCount returns the number of pages in the document
func (d *Document) PageCount() int {
	if d == nil {
		return 0
	}
	return len(d.Pages)
}

// IsEmpty reports whether the document has no pages
func (d *Document) IsEmpty() bool {
	return d.PageCount() == 0
}
