package model

import (
	"fmt"
	"strings"
)

// SearchKind is the declared search backend of a registry entry
type SearchKind string

const (
	SearchKindDocument  SearchKind = "document"   // Fetch a policy document and run QA over its pages
	SearchKindWebSearch SearchKind = "web_search" // Ask an external search provider for candidate URLs
	SearchKindAPI       SearchKind = "api"        // Query an insurer API (not implemented)
)

// SearchKinds lists every supported search kind
var SearchKinds = []SearchKind{SearchKindDocument, SearchKindWebSearch, SearchKindAPI}

// ParseSearchKind parses a registry search type. "web_scrapper" is accepted
// as an alias of web_search for older registry files.
func ParseSearchKind(s string) (SearchKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "document", "pdf":
		return SearchKindDocument, nil
	case "web_search", "web_scrapper", "web":
		return SearchKindWebSearch, nil
	case "api":
		return SearchKindAPI, nil
	default:
		return "", fmt.Errorf("unknown search type %q (supported: document, web_search, api)", s)
	}
}

// InsurerEntry is one source in the insurer registry.
type InsurerEntry struct {
	Name       string     `json:"name" yaml:"name"`
	URL        string     `json:"url" yaml:"url"`
	SearchKind SearchKind `json:"search_type" yaml:"search_type"`

	// Boilerplate optionally attaches a page-footer normalization hook to
	// this insurer. "{page}" is replaced with the 1-based page number.
	Boilerplate string `json:"boilerplate,omitempty" yaml:"boilerplate,omitempty"`
}

// Key returns the identity used to look up per-insurer behavior
func (e InsurerEntry) Key() string {
	return InsurerKey(e.Name)
}

// InsurerKey normalizes an insurer name into a lookup key
func InsurerKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ""))
}
