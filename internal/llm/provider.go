package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/policyqa/internal/model"
)

// NoAnswerReply is what the model is told to reply when a page does not
// answer the question
const NoAnswerReply = "NO_ANSWER"

const systemPrompt = "You answer questions about insurance policy documents. " +
	"Use only the page text you are given and never add outside knowledge."

// Provider defines the interface for remote generative backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one prompt and returns the model's reply
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest is a single prompt to a provider
type CompletionRequest struct {
	System      string
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// CompletionResponse is a provider's reply
type CompletionResponse struct {
	// Text is the generated answer
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int

	// Confidence is the backend's own estimate, valid only when HasConfidence is set
	Confidence    float64
	HasConfidence bool
}

// Config holds remote QA engine configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic. Passed in per run, never read from globals.
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout bounds each request
	Timeout time.Duration

	MaxTokens   int
	Temperature float32

	// MaxAttempts bounds retries of throttled requests; Backoff is the first delay
	MaxAttempts int
	Backoff     time.Duration

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Timeout:     30 * time.Second,
		MaxTokens:   150,
		Temperature: 0.5,
		MaxAttempts: 4,
		Backoff:     500 * time.Millisecond,
	}
}

// ConfigFromModel converts the run configuration into an engine Config
func ConfigFromModel(llmCfg model.LLMConfig, httpCfg model.HTTPConfig) Config {
	cfg := Config{
		Provider:    llmCfg.Provider,
		Model:       llmCfg.Model,
		APIKey:      llmCfg.APIKey,
		BaseURL:     llmCfg.BaseURL,
		Timeout:     llmCfg.Timeout,
		MaxTokens:   llmCfg.MaxTokens,
		Temperature: llmCfg.Temperature,
		MaxAttempts: llmCfg.MaxAttempts,
		Backoff:     llmCfg.Backoff,
		HTTPProxy:   httpCfg.HTTPProxy,
		HTTPSProxy:  httpCfg.HTTPSProxy,
		NoProxy:     httpCfg.NoProxy,
	}
	defaults := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = defaults.MaxTokens
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return cfg
}

// BuildPrompt asks for an answer to question from a single policy page
func BuildPrompt(question model.Question, page string) string {
	return fmt.Sprintf(`Answer the question using only the insurance policy page below.
Quote the policy wording where possible and keep the answer short.
If the page does not answer the question, reply with exactly %s.

Question: %s

Page:
%s`, NoAnswerReply, question, page)
}

// ParseReply trims a model reply. It returns false when the model said the
// page holds no answer.
func ParseReply(reply string) (string, bool) {
	text := strings.TrimSpace(reply)
	marker := strings.Trim(strings.ToUpper(text), " .\"'`")
	if text == "" || marker == NoAnswerReply {
		return "", false
	}
	return text, true
}
