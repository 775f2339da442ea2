package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/policyqa/internal/model"
)

const funeralPage = "Funeral Plan Overview\n\n" +
	"The minimum entry age is 18 years. The maximum entry age is 65 years. " +
	"Claims are paid within 48 hours."

func TestReader_PicksBestSentence(t *testing.T) {
	r := NewReader()
	ans, err := r.Answer(context.Background(), "What is the minimum age for funeral cover?", funeralPage)
	require.NoError(t, err)

	assert.Equal(t, "The minimum entry age is 18 years.", ans.Text)
	assert.Equal(t, ans.Text, funeralPage[ans.Start:ans.End])
	assert.Greater(t, ans.Confidence, 0.0)
	assert.LessOrEqual(t, ans.Confidence, 1.0)
}

func TestReader_NoOverlap(t *testing.T) {
	ans, err := NewReader().Answer(context.Background(), "Is dental treatment included?", funeralPage)
	require.NoError(t, err)

	assert.Empty(t, ans.Text)
	assert.Zero(t, ans.Confidence)
	assert.Equal(t, -1, ans.Start)
	assert.Equal(t, -1, ans.End)
}

func TestReader_OnlyStopwords(t *testing.T) {
	ans, err := NewReader().Answer(context.Background(), "What is it?", funeralPage)
	require.NoError(t, err)
	assert.Empty(t, ans.Text)
	assert.Zero(t, ans.Confidence)
}

func TestReader_EmptyPassage(t *testing.T) {
	ans, err := NewReader().Answer(context.Background(), "What is the waiting period?", "   \n ")
	require.NoError(t, err)
	assert.Empty(t, ans.Text)
	assert.Equal(t, -1, ans.Start)
}

func TestReader_Deterministic(t *testing.T) {
	r := NewReader()
	q := model.Question("How many years must I be to join?")
	first, err := r.Answer(context.Background(), q, funeralPage)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := r.Answer(context.Background(), q, funeralPage)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestReader_TiesPreferEarliestSentence(t *testing.T) {
	page := "Cover ends at death. Cover ends at death."
	ans, err := NewReader().Answer(context.Background(), "When does cover end?", page)
	require.NoError(t, err)
	assert.Equal(t, 0, ans.Start)
	assert.Equal(t, "Cover ends at death.", ans.Text)
}

func TestReader_FullCoverageScoresHigher(t *testing.T) {
	r := NewReader()
	q := model.Question("What is the waiting period for accidental death?")

	full, err := r.Answer(context.Background(), q, "The waiting period for accidental death is nil.")
	require.NoError(t, err)
	partial, err := r.Answer(context.Background(), q, "The waiting period is six months.")
	require.NoError(t, err)

	assert.Greater(t, full.Confidence, partial.Confidence)
}

func TestReader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewReader().Answer(ctx, "What is the minimum age?", funeralPage)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSplitSentences(t *testing.T) {
	text := "A b. C d!\n\nHeading\nline two? end"
	var got []string
	for _, sp := range splitSentences(text) {
		got = append(got, text[sp.start:sp.end])
	}
	assert.Equal(t, []string{"A b.", "C d!", "Heading\nline two?", "end"}, got)
}

func TestSplitSentences_KeepsDecimals(t *testing.T) {
	text := "Premium is R1.50 per day."
	spans := splitSentences(text)
	require.Len(t, spans, 1)
	assert.Equal(t, text, text[spans[0].start:spans[0].end])
}

func TestTerms(t *testing.T) {
	assert.Equal(t, []string{"minimum", "age", "funeral", "cover"},
		terms("What is the minimum age for funeral cover?"))
	assert.Equal(t, []string{"claim", "paid", "48", "hour"}, terms("Claims are paid in 48 hours"))
}

func TestStem(t *testing.T) {
	tests := map[string]string{
		"covered":  "cover",
		"covers":   "cover",
		"ages":     "age",
		"policies": "policy",
		"waiting":  "wait",
		"class":    "class",
		"age":      "age",
	}
	for in, want := range tests {
		assert.Equal(t, want, stem(in), in)
	}
}
