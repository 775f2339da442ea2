package pipeline

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/ppiankov/policyqa/internal/extract"
	"github.com/ppiankov/policyqa/internal/llm"
	"github.com/ppiankov/policyqa/internal/model"
	"github.com/ppiankov/policyqa/internal/search"
	"github.com/ppiankov/policyqa/internal/worker"
)

// EngineNames lists the QA engines a run can be configured with
var EngineNames = []string{"local", "openai", "anthropic", "ollama"}

// NewEngine returns the QA engine named by cfg.Search.Engine. Nothing is
// built until the first page is scored; the engine is then shared by every
// page and insurer of the run. Remote engines draw on limiter.
func NewEngine(cfg *model.Config, limiter *worker.Limiter, logger *slog.Logger) (*search.LazyEngine, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Search.Engine))
	if name == "" {
		name = "local"
	}

	var factory search.EngineFactory
	switch name {
	case "local":
		factory = func() (search.Engine, error) {
			return extract.NewReader(), nil
		}
	case "openai", "anthropic", "claude", "ollama":
		llmCfg := llm.ConfigFromModel(cfg.LLM, cfg.HTTP)
		llmCfg.Provider = name
		factory = func() (search.Engine, error) {
			engine, err := llm.NewEngine(llmCfg, logger)
			if err != nil {
				return nil, fmt.Errorf("init %s engine: %w", name, err)
			}
			engine.SetLimiter(limiter)
			return engine, nil
		}
	default:
		return nil, &model.ConfigError{
			Reason: fmt.Sprintf("unknown QA engine %q (supported: %s)", cfg.Search.Engine, strings.Join(EngineNames, ", ")),
		}
	}
	return search.NewLazyEngine(name, factory), nil
}
