package validate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/policyqa/internal/model"
)

// ValidationError reports a rejected selection
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid choice %q: %s", e.Input, e.Reason)
}

// ParseChoice validates a user's pick from a list numbered 1..n and returns
// the chosen number
func ParseChoice(raw string, n int) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, &ValidationError{Input: raw, Reason: "empty"}
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, &ValidationError{Input: raw, Reason: fmt.Sprintf("enter a number from 1 to %d", n)}
		}
	}
	if len(s) > len(strconv.Itoa(n)) {
		return 0, &ValidationError{Input: raw, Reason: fmt.Sprintf("too many digits: choose a number from 1 to %d", n)}
	}
	choice, err := strconv.Atoi(s)
	if err != nil || choice < 1 || choice > n {
		return 0, &ValidationError{Input: raw, Reason: fmt.Sprintf("choose a number from 1 to %d", n)}
	}
	return choice, nil
}

// ParseChoices validates several picks from a list numbered 1..n. Every pick
// must be valid and distinct.
func ParseChoices(raws []string, n int) ([]int, error) {
	if len(raws) == 0 {
		return nil, &ValidationError{Reason: "no choices given"}
	}
	choices := make([]int, 0, len(raws))
	seen := make(map[int]bool, len(raws))
	for _, raw := range raws {
		choice, err := ParseChoice(raw, n)
		if err != nil {
			return nil, err
		}
		if seen[choice] {
			return nil, &ValidationError{Input: raw, Reason: "already chosen"}
		}
		seen[choice] = true
		choices = append(choices, choice)
	}
	return choices, nil
}

// Question trims raw and checks it against the question length bounds
func Question(raw string) (model.Question, error) {
	q, err := model.NewQuestion(strings.TrimSpace(raw))
	if err != nil {
		return "", &ValidationError{Input: raw, Reason: err.Error()}
	}
	return q, nil
}
