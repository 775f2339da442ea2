package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/policyqa/internal/model"
	"github.com/ppiankov/policyqa/internal/worker"
)

var batchFlags runFlags

type batchView struct {
	Question string        `json:"question"`
	Report   *model.Report `json:"report,omitempty"`
	Error    string        `json:"error,omitempty"`
}

var batchCmd = &cobra.Command{
	Use:   "batch <questions-file>",
	Short: "Ask many questions, one per line, against the same insurers",
	Long: `Batch reads questions from a file (one per line; blank lines, '#'
comments and repeats are skipped) and runs a full comparison for each.
A failed comparison is reported and the batch moves on to the next
question.

Example:
  policyqa batch questions.txt --registry insurers.json --pick 1,2
  policyqa batch questions.txt --insurer Capitec --insurer OldMutual --json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchFlags.register(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	p, entries, err := preparePipeline(cmd, &batchFlags)
	if err != nil {
		return err
	}

	ctx, cancel := runContext(cmd.Context(), batchFlags.timeout)
	defer cancel()

	results, err := worker.NewBatchProcessor(p).ProcessFile(ctx, args[0], entries)
	if err != nil {
		return err
	}

	if batchFlags.jsonOut {
		views := make([]batchView, len(results))
		for i, res := range results {
			views[i] = batchView{Question: res.Question, Report: res.Report}
			if res.Error != nil {
				views[i].Error = res.Error.Error()
			}
		}
		if err := renderJSON(os.Stdout, views); err != nil {
			return err
		}
	}

	failures := 0
	order := insurerNames(entries)
	for i, res := range results {
		if res.Error != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", res.Question, res.Error)
			continue
		}
		if !batchFlags.jsonOut {
			if i > 0 {
				fmt.Println()
			}
			renderText(os.Stdout, res.Report, order)
		}
	}

	fmt.Fprintf(os.Stderr, "\nQuestions: %d  Answered: %d  Failed: %d\n",
		len(results), len(results)-failures, failures)
	if failures > 0 {
		return fmt.Errorf("%d of %d questions failed", failures, len(results))
	}
	return nil
}
