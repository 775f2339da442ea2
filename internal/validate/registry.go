package validate

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/ppiankov/policyqa/internal/model"
)

// DocumentSuffix is the file extension a document entry's URL must end with
const DocumentSuffix = ".pdf"

// Entries checks a batch of registry entries before anything is fetched.
// The first bad entry fails the whole batch with a *model.ConfigError.
func Entries(entries []model.InsurerEntry) error {
	if len(entries) == 0 {
		return &model.ConfigError{Reason: "no insurers selected"}
	}

	seen := make(map[string]string, len(entries))
	for _, e := range entries {
		if err := Entry(e); err != nil {
			return err
		}
		if first, dup := seen[e.Key()]; dup {
			return &model.ConfigError{Insurer: e.Name, Reason: fmt.Sprintf("duplicate of %q", first)}
		}
		seen[e.Key()] = e.Name
	}
	return nil
}

// Entry checks a single registry entry
func Entry(e model.InsurerEntry) error {
	if strings.TrimSpace(e.Name) == "" {
		return &model.ConfigError{Reason: "insurer name is empty"}
	}
	if strings.TrimSpace(e.URL) == "" {
		return &model.ConfigError{Insurer: e.Name, Reason: "url is empty"}
	}

	switch e.SearchKind {
	case model.SearchKindDocument:
		if !IsDocumentURL(e.URL) {
			return &model.ConfigError{
				Insurer: e.Name,
				Reason:  fmt.Sprintf("url %s is not valid for document search: it must name a %s file", e.URL, DocumentSuffix),
			}
		}
	case model.SearchKindWebSearch, model.SearchKindAPI:
	default:
		return &model.ConfigError{Insurer: e.Name, Reason: fmt.Sprintf("unknown search type %q", e.SearchKind)}
	}
	return nil
}

// IsDocumentURL reports whether rawURL names a document resource: an
// absolute http(s) URL whose last path segment ends with ".pdf". Query
// strings and fragments are ignored.
func IsDocumentURL(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	last := path.Base(u.Path)
	return strings.HasSuffix(strings.ToLower(last), DocumentSuffix) && len(last) > len(DocumentSuffix)
}
