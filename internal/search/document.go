package search

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ppiankov/policyqa/internal/model"
)

// DefaultTopK is the number of candidates kept per source
const DefaultTopK = 1

// DocumentQA runs a QA engine over every page of an ingested document
type DocumentQA struct {
	engine Engine
	topK   int
	logger *slog.Logger
}

// NewDocumentQA creates the document strategy. topK below 1 means DefaultTopK.
func NewDocumentQA(engine Engine, topK int, logger *slog.Logger) *DocumentQA {
	if topK < 1 {
		topK = DefaultTopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentQA{engine: engine, topK: topK, logger: logger}
}

// Kind implements Strategy
func (d *DocumentQA) Kind() model.SearchKind {
	return model.SearchKindDocument
}

// TopK returns how many candidates Search keeps
func (d *DocumentQA) TopK() int {
	return d.topK
}

// Search asks the engine about each page and returns one candidate per page,
// sorted by confidence with ties kept in page order, truncated to top K.
// Blank pages yield an empty zero-confidence candidate without an engine call.
func (d *DocumentQA) Search(ctx context.Context, question model.Question, in Input) ([]model.AnswerCandidate, error) {
	if in.Document.IsEmpty() {
		return nil, nil
	}

	candidates := make([]model.AnswerCandidate, 0, in.Document.PageCount())
	for _, page := range in.Document.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cand := model.AnswerCandidate{PageNum: page.PageNum, SourceURL: page.SourceURL}
		if strings.TrimSpace(page.Text) != "" {
			ans, err := d.engine.Answer(ctx, question, page.Text)
			if err != nil {
				return nil, fmt.Errorf("page %d: %w", page.PageNum, err)
			}
			cand.Answer = ans.Text
			cand.Confidence = model.ClampConfidence(ans.Confidence)
		}
		d.logger.Debug("scored page",
			"insurer", in.Entry.Name, "page", page.PageNum, "confidence", cand.Confidence)
		candidates = append(candidates, cand)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Confidence > candidates[j].Confidence
	})
	if len(candidates) > d.topK {
		candidates = candidates[:d.topK]
	}
	return candidates, nil
}
