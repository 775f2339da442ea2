package search

import (
	"context"
	"fmt"

	"github.com/ppiankov/policyqa/internal/model"
)

// Strategy produces answer candidates for one registry entry, highest
// confidence first
type Strategy interface {
	Kind() model.SearchKind
	Search(ctx context.Context, question model.Question, in Input) ([]model.AnswerCandidate, error)
}

// Input is what a strategy searches. Document is set only for strategies
// that need an ingested document.
type Input struct {
	Entry    model.InsurerEntry
	Document *model.Document
}

// NeedsDocument reports whether entries of kind must be ingested before searching
func NeedsDocument(kind model.SearchKind) bool {
	return kind == model.SearchKindDocument
}

// Strategies holds one strategy per search kind
type Strategies struct {
	Document *DocumentQA
	Web      *WebSearch
	API      *APISearch
}

// For returns the strategy serving kind. Unknown kinds and missing
// strategies are configuration errors.
func (s Strategies) For(kind model.SearchKind) (Strategy, error) {
	var strategy Strategy
	switch kind {
	case model.SearchKindDocument:
		if s.Document != nil {
			strategy = s.Document
		}
	case model.SearchKindWebSearch:
		if s.Web != nil {
			strategy = s.Web
		}
	case model.SearchKindAPI:
		if s.API != nil {
			strategy = s.API
		}
	default:
		return nil, fmt.Errorf("unknown search kind %q", kind)
	}
	if strategy == nil {
		return nil, fmt.Errorf("no strategy configured for search kind %q", kind)
	}
	return strategy, nil
}
