package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ppiankov/policyqa/internal/model"
)

// Ingestor turns a document URL into a paginated, normalized Document
type Ingestor struct {
	fetcher *Fetcher
	parser  PageParser
	hooks   *Normalizers
	logger  *slog.Logger
}

// NewIngestor creates an Ingestor. A nil parser reads PDFs; nil hooks
// leave every page untouched.
func NewIngestor(fetcher *Fetcher, parser PageParser, hooks *Normalizers, logger *slog.Logger) *Ingestor {
	if parser == nil {
		parser = NewPDFParser()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{fetcher: fetcher, parser: parser, hooks: hooks, logger: logger}
}

// Ingest fetches the entry's document and splits it into pages.
// Download failures are *model.FetchError, unreadable bytes *model.ParseError.
// An empty document is not an error: it yields a Document with no pages.
func (in *Ingestor) Ingest(ctx context.Context, entry model.InsurerEntry) (*model.Document, error) {
	res, err := in.fetcher.FetchWithRetry(ctx, entry.URL)
	if err != nil {
		return nil, err
	}
	in.logger.Debug("fetched document",
		"insurer", entry.Name, "url", entry.URL, "bytes", len(res.Body), "cached", res.FromCache)

	doc, err := ParseDocument(in.parser, res.Body, entry.URL, in.hooks.For(entry))
	if err != nil {
		return nil, err
	}
	in.logger.Info("ingested document", "insurer", entry.Name, "url", entry.URL, "pages", doc.PageCount())
	return doc, nil
}

// ParseDocument parses raw bytes into a Document, applying normalize to every
// page. Pages are numbered from 0 in physical order.
func ParseDocument(parser PageParser, data []byte, sourceURL string, normalize Normalizer) (*model.Document, error) {
	if normalize == nil {
		normalize = Identity
	}

	texts, err := parser.Pages(data)
	if errors.Is(err, ErrEmptyDocument) {
		return model.NewDocument(sourceURL, nil), nil
	}
	if err != nil {
		return nil, &model.ParseError{URL: sourceURL, Err: err}
	}

	pages := make([]model.PageRecord, 0, len(texts))
	for i, text := range texts {
		pages = append(pages, model.PageRecord{
			PageNum:   i,
			Text:      normalize(text, i),
			SourceURL: sourceURL,
		})
	}
	return model.NewDocument(sourceURL, pages), nil
}
