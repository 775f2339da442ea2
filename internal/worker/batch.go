package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/policyqa/internal/model"
)

// Comparer answers one question against a set of registry entries
type Comparer interface {
	Compare(ctx context.Context, q model.Question, entries []model.InsurerEntry) (*model.Report, error)
}

// BatchResult is the outcome of one question in a batch
type BatchResult struct {
	Question string
	Report   *model.Report
	Error    error
}

// BatchProcessor runs many questions against the same entries, one run
// per question. A failed run is recorded and the batch moves on.
type BatchProcessor struct {
	comparer Comparer
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(comparer Comparer) *BatchProcessor {
	return &BatchProcessor{comparer: comparer}
}

// ProcessQuestions runs each question in order
func (b *BatchProcessor) ProcessQuestions(ctx context.Context, questions []string, entries []model.InsurerEntry) []*BatchResult {
	results := make([]*BatchResult, 0, len(questions))
	for _, raw := range questions {
		res := &BatchResult{Question: raw}
		results = append(results, res)

		if err := ctx.Err(); err != nil {
			res.Error = err
			continue
		}

		q, err := model.NewQuestion(raw)
		if err != nil {
			res.Error = err
			continue
		}
		res.Report, res.Error = b.comparer.Compare(ctx, q, entries)
	}
	return results
}

// ProcessFile reads questions from a file and runs them
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string, entries []model.InsurerEntry) ([]*BatchResult, error) {
	questions, err := ReadQuestionsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read questions: %w", err)
	}
	return b.ProcessQuestions(ctx, questions, entries), nil
}

// ReadQuestionsFromFile reads one question per line, skipping blank lines,
// '#' comments and duplicates
func ReadQuestionsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var questions []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			questions = append(questions, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return questions, nil
}
