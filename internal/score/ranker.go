package score

import (
	"sort"

	"github.com/ppiankov/policyqa/internal/model"
)

// Ranker picks the best candidate of a source
type Ranker struct{}

// NewRanker creates a new ranker
func NewRanker() *Ranker {
	return &Ranker{}
}

// Rank orders candidates by confidence, highest first, breaking ties by the
// lower page number, and returns the first. An empty input gives
// model.NoAnswer(). A candidate with confidence 0 is still an answer.
func (r *Ranker) Rank(candidates []model.AnswerCandidate) model.RankedResult {
	if len(candidates) == 0 {
		return model.NoAnswer()
	}
	sorted := Sort(candidates)
	result := model.RankedResult{Candidate: sorted[0], Found: true}
	if len(sorted) > 1 {
		result.RunnersUp = sorted[1:]
	}
	return result
}

// Sort returns a copy of candidates in ranking order. The input is not modified.
func Sort(candidates []model.AnswerCandidate) []model.AnswerCandidate {
	sorted := make([]model.AnswerCandidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return a.PageNum < b.PageNum
	})
	return sorted
}
