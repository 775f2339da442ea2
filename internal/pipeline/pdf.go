package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// pdfcpu otherwise creates a config directory under the user's home.
	api.DisableConfigDir()
}

// ErrEmptyDocument is returned by a PageParser for a zero-length body
var ErrEmptyDocument = errors.New("empty document")

// PageParser splits raw document bytes into the raw text of each page, in
// physical page order.
type PageParser interface {
	Pages(data []byte) ([]string, error)
}

// PDFParser validates PDF documents with pdfcpu and extracts page text with
// ledongthuc/pdf, which decodes font encodings and ToUnicode CMaps
type PDFParser struct{}

// NewPDFParser creates a PDF page parser
func NewPDFParser() *PDFParser {
	return &PDFParser{}
}

// Pages returns the text of every page in the PDF. The page count comes from
// pdfcpu; a page the text reader cannot locate is left blank.
func (p *PDFParser) Pages(data []byte) (pages []string, err error) {
	if len(data) == 0 {
		return nil, ErrEmptyDocument
	}

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("validate pdf: %w", err)
	}

	// The text reader panics on some malformed object graphs.
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("extract text: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf text: %w", err)
	}

	pages = make([]string, ctx.PageCount)
	for nr := 1; nr <= ctx.PageCount; nr++ {
		page := reader.Page(nr)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d text: %w", nr, err)
		}
		pages[nr-1] = cleanPageText(text)
	}
	return pages, nil
}

// cleanPageText trims every line and drops blank ones. Unmapped glyphs come
// back as U+FFFD and are treated as word breaks.
func cleanPageText(text string) string {
	text = strings.Map(func(r rune) rune {
		if r == unicode.ReplacementChar {
			return ' '
		}
		return r
	}, text)

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
