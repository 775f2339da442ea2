package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/policyqa/internal/model"
)

// renderText prints one block per insurer, in the order given
func renderText(w io.Writer, report *model.Report, order []string) {
	fmt.Fprintf(w, "Question: %s\n", report.Question)
	fmt.Fprintf(w, "Engine:   %s\n", report.Engine)

	for _, name := range order {
		res, ok := report.Results[name]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "\n%s\n%s\n", name, strings.Repeat("─", len([]rune(name))))
		if !res.Found {
			fmt.Fprintf(w, "  No answer: the document has no readable pages\n")
			continue
		}
		writeCandidate(w, res.Candidate)
		for i, c := range res.RunnersUp {
			fmt.Fprintf(w, "  #%d\n", i+2)
			writeCandidate(w, c)
		}
	}
}

func writeCandidate(w io.Writer, c model.AnswerCandidate) {
	answer := c.Answer
	if answer == "" {
		answer = "(not found on any page)"
	}
	fmt.Fprintf(w, "  Answer:     %s\n", answer)
	fmt.Fprintf(w, "  Page:       %d\n", c.PageNum+1)
	fmt.Fprintf(w, "  Confidence: %.2f\n", c.Confidence)
	fmt.Fprintf(w, "  Source:     %s\n", c.SourceURL)
}

func renderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

func insurerNames(entries []model.InsurerEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}
