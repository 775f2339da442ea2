package model

// SentinelConfidence is assigned to answers from generative backends that
// do not report a confidence of their own. It marks "answered, precision
// unknown" and is not a probability.
const SentinelConfidence = 0.5

// AnswerCandidate is a single proposed answer with its provenance
type AnswerCandidate struct {
	Answer     string  `json:"answer"`
	PageNum    int     `json:"page_num"`
	SourceURL  string  `json:"source_url"`
	Confidence float64 `json:"confidence"` // In [0,1]; meaning depends on the backend
}

// RankedResult is the best candidate chosen for one source. Found is false
// when the source produced no candidates at all.
type RankedResult struct {
	Candidate AnswerCandidate `json:"candidate"`
	Found     bool            `json:"found"`

	// RunnersUp holds the remaining candidates in ranking order when a
	// strategy keeps more than one
	RunnersUp []AnswerCandidate `json:"runners_up,omitempty"`
}

// NoAnswer is the explicit "no answer" result
func NoAnswer() RankedResult {
	return RankedResult{}
}

// ClampConfidence forces a backend score into [0,1]
func ClampConfidence(c float64) float64 {
	switch {
	case c != c: // NaN
		return 0
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}

// Answer is what a QA engine returns for one (question, context) pair.
// Start and End are byte offsets of Text within the context when the engine
// is extractive, and -1 otherwise.
type Answer struct {
	Text       string
	Confidence float64
	Start      int
	End        int
}
