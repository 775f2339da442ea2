package extract

import (
	"context"
	"math"

	"github.com/ppiankov/policyqa/internal/model"
)

const (
	bigramBonus  = 0.5
	numericBonus = 0.5
)

// Reader is the in-process extractive QA engine. It picks the sentence of
// the passage that best covers the question's content words and returns it
// with its byte offsets.
//
// Confidence is coverage × share: coverage is the weighted fraction of
// question terms present in the chosen sentence, share is its softmax
// probability against every other sentence of the passage plus a null
// option scoring 0. Both are deterministic functions of the input, so the
// same page and question always give the same answer. A Reader is stateless
// and safe for concurrent use.
type Reader struct{}

// NewReader creates the local QA engine
func NewReader() *Reader {
	return &Reader{}
}

// Name identifies the engine in reports
func (r *Reader) Name() string {
	return "local"
}

type sentenceScore struct {
	span    span
	matched float64
	score   float64
}

// Answer extracts the best answer span for question from passage
func (r *Reader) Answer(ctx context.Context, question model.Question, passage string) (model.Answer, error) {
	if err := ctx.Err(); err != nil {
		return model.Answer{}, err
	}
	none := model.Answer{Start: -1, End: -1}

	qTerms := uniqueTerms(terms(question.String()))
	if len(qTerms) == 0 {
		return none, nil
	}
	quantity := isQuantityQuestion(question.String())

	spans := splitSentences(passage)
	if len(spans) == 0 {
		return none, nil
	}

	sentTerms := make([][]string, len(spans))
	df := make(map[string]int)
	for i, sp := range spans {
		sentTerms[i] = terms(passage[sp.start:sp.end])
		for t := range toSet(sentTerms[i]) {
			df[t]++
		}
	}

	n := float64(len(spans))
	weight := func(t string) float64 {
		return 1 + math.Log((n+1)/float64(df[t]+1))
	}
	var total float64
	for _, t := range qTerms {
		total += weight(t)
	}

	scores := make([]sentenceScore, len(spans))
	best := -1
	for i, sp := range spans {
		s := sentenceScore{span: sp}
		present := toSet(sentTerms[i])
		for _, t := range qTerms {
			if present[t] {
				s.matched += weight(t)
			}
		}
		if s.matched > 0 {
			s.score = s.matched + bigramBonus*float64(sharedBigrams(qTerms, sentTerms[i]))
			if quantity && hasDigit(passage[sp.start:sp.end]) {
				s.score += numericBonus
			}
		}
		scores[i] = s
		// Strictly greater keeps the earliest sentence on ties.
		if s.score > 0 && (best < 0 || s.score > scores[best].score) {
			best = i
		}
	}
	if best < 0 {
		return none, nil
	}

	// Softmax with a null option at score 0, shifted by the maximum for
	// numerical stability.
	top := scores[best].score
	denom := math.Exp(-top)
	for _, s := range scores {
		denom += math.Exp(s.score - top)
	}
	share := 1 / denom
	coverage := scores[best].matched / total

	sp := scores[best].span
	return model.Answer{
		Text:       passage[sp.start:sp.end],
		Confidence: model.ClampConfidence(coverage * share),
		Start:      sp.start,
		End:        sp.end,
	}, nil
}

func uniqueTerms(ts []string) []string {
	seen := make(map[string]bool, len(ts))
	out := ts[:0:0]
	for _, t := range ts {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

func toSet(ts []string) map[string]bool {
	set := make(map[string]bool, len(ts))
	for _, t := range ts {
		set[t] = true
	}
	return set
}

// sharedBigrams counts adjacent question term pairs that also appear adjacent
// in the sentence
func sharedBigrams(question, sentence []string) int {
	if len(question) < 2 || len(sentence) < 2 {
		return 0
	}
	pairs := make(map[[2]string]bool, len(sentence)-1)
	for i := 0; i+1 < len(sentence); i++ {
		pairs[[2]string{sentence[i], sentence[i+1]}] = true
	}
	count := 0
	for i := 0; i+1 < len(question); i++ {
		if pairs[[2]string{question[i], question[i+1]}] {
			count++
		}
	}
	return count
}

func isQuantityQuestion(q string) bool {
	for _, w := range words(q) {
		if w == "many" || w == "much" || quantityCues[stem(w)] {
			return true
		}
	}
	return false
}
