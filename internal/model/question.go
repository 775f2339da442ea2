package model

import (
	"fmt"
	"unicode/utf8"
)

const (
	MinQuestionLength = 5
	MaxQuestionLength = 300
)

// Question is the natural-language question asked once per run
type Question string

// NewQuestion validates the length bounds and returns the question
func NewQuestion(s string) (Question, error) {
	n := utf8.RuneCountInString(s)
	if n < MinQuestionLength || n > MaxQuestionLength {
		return "", fmt.Errorf("question must be between %d and %d characters, got %d",
			MinQuestionLength, MaxQuestionLength, n)
	}
	return Question(s), nil
}

func (q Question) String() string {
	return string(q)
}
