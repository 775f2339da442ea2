package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/policyqa/internal/model"
	"github.com/ppiankov/policyqa/internal/registry"
)

// runFlags are the flags shared by commands that run a comparison
type runFlags struct {
	registry string
	insurers []string
	picks    []string
	engine   string
	llmModel string
	topK     int
	workers  int
	timeout  time.Duration
	jsonOut  bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.registry, "registry", "insurers.json", "insurer registry file (JSON or YAML)")
	cmd.Flags().StringSliceVar(&f.insurers, "insurer", nil, "insurer to compare, by name (repeatable)")
	cmd.Flags().StringSliceVar(&f.picks, "pick", nil, "insurers to compare, by 1-based registry index (e.g. 1,3)")
	cmd.Flags().StringVar(&f.engine, "engine", "", "QA engine (local, openai, anthropic, ollama)")
	cmd.Flags().StringVar(&f.llmModel, "model", "", "model name for remote engines")
	cmd.Flags().IntVar(&f.topK, "top-k", 0, "candidates kept per insurer")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "insurers processed at once")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 10*time.Minute, "overall run timeout (0 for none)")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "print the report as JSON")
}

// apply overrides cfg with the flags the user set
func (f *runFlags) apply(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	if flags.Changed("engine") {
		cfg.Search.Engine = f.engine
	}
	if flags.Changed("model") {
		cfg.LLM.Model = f.llmModel
	}
	if flags.Changed("top-k") {
		cfg.Search.TopK = f.topK
	}
	if flags.Changed("workers") {
		cfg.Concurrency.Workers = f.workers
	}
}

// entries loads the registry and returns the selected insurers: by name,
// by index, or all of them when neither is given
func (f *runFlags) entries() ([]model.InsurerEntry, error) {
	if len(f.insurers) > 0 && len(f.picks) > 0 {
		return nil, fmt.Errorf("use either --insurer or --pick, not both")
	}
	reg, err := registry.Load(f.registry)
	if err != nil {
		return nil, err
	}
	switch {
	case len(f.insurers) > 0:
		return reg.ByName(f.insurers)
	case len(f.picks) > 0:
		return reg.Pick(f.picks)
	default:
		return reg.Entries, nil
	}
}

// runContext bounds a run by timeout. A timeout of zero or less means no
// overall deadline; per-request HTTP timeouts still apply.
func runContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
