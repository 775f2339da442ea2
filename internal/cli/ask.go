package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/policyqa/internal/model"
	"github.com/ppiankov/policyqa/internal/pipeline"
	"github.com/ppiankov/policyqa/internal/validate"
)

var askFlags runFlags

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the selected insurers' policy documents a question",
	Long: `Ask fetches the policy document of every selected insurer, searches each
page for an answer and prints the best one per insurer.

A misconfigured or unreachable insurer fails the whole run: a comparison
is never shown with an insurer silently missing.

Example:
  policyqa ask "What is the minimum age for funeral cover?" --registry insurers.json
  policyqa ask "What is the waiting period?" --pick 1,2 --engine openai --model gpt-4o-mini
  policyqa ask "Is suicide covered?" --insurer Capitec --top-k 3 --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
	askFlags.register(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question, err := validate.Question(strings.Join(args, " "))
	if err != nil {
		return err
	}

	p, entries, err := preparePipeline(cmd, &askFlags)
	if err != nil {
		return err
	}

	ctx, cancel := runContext(cmd.Context(), askFlags.timeout)
	defer cancel()

	report, err := p.Compare(ctx, question, entries)
	if err != nil {
		return err
	}

	if askFlags.jsonOut {
		return renderJSON(os.Stdout, report)
	}
	renderText(os.Stdout, report, insurerNames(entries))
	return nil
}

// preparePipeline resolves configuration and insurer selection for a run
func preparePipeline(cmd *cobra.Command, flags *runFlags) (*pipeline.Pipeline, []model.InsurerEntry, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}
	flags.apply(cmd, cfg)
	if err := applyCredentials(cfg); err != nil {
		return nil, nil, err
	}

	entries, err := flags.entries()
	if err != nil {
		return nil, nil, err
	}

	p, err := pipeline.NewPipeline(cfg, pipeline.WithLogger(slog.Default()))
	if err != nil {
		return nil, nil, fmt.Errorf("configure pipeline: %w", err)
	}
	return p, entries, nil
}
