package search

import (
	"context"
	"fmt"

	"github.com/ppiankov/policyqa/internal/model"
)

// APISearch is the contract for querying an insurer's own API. No insurer
// API is supported yet, so every search fails with model.ErrNotImplemented.
type APISearch struct{}

// NewAPISearch creates the API strategy stub
func NewAPISearch() *APISearch {
	return &APISearch{}
}

// Kind implements Strategy
func (a *APISearch) Kind() model.SearchKind {
	return model.SearchKindAPI
}

// Search implements Strategy
func (a *APISearch) Search(_ context.Context, _ model.Question, in Input) ([]model.AnswerCandidate, error) {
	return nil, fmt.Errorf("api search for %s: %w", in.Entry.Name, model.ErrNotImplemented)
}
