package llm

import (
	"fmt"
	"log/slog"
	"strings"
)

// NewProvider creates a remote provider based on configuration
func NewProvider(config Config) (Provider, error) {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}

	switch strings.ToLower(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	default:
		return nil, fmt.Errorf("unknown LLM provider: %q (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// NewEngine creates the provider named in config and wraps it in a QAEngine
func NewEngine(config Config, logger *slog.Logger) (*QAEngine, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return NewQAEngine(provider, config, logger), nil
}
