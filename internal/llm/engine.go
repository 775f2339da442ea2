package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/ppiankov/policyqa/internal/model"
	"github.com/ppiankov/policyqa/internal/worker"
)

// maxRetryDelay caps a single backoff, including server-sent Retry-After values
const maxRetryDelay = 30 * time.Second

// QAEngine answers questions about a page with a remote generative model.
// Throttled requests are retried with exponential backoff up to MaxAttempts,
// a timed out request is retried once, and authentication failures are
// returned immediately.
type QAEngine struct {
	provider Provider
	config   Config
	limiter  *worker.Limiter
	logger   *slog.Logger
}

// NewQAEngine wraps provider with the prompt, reply parsing and retry policy
func NewQAEngine(provider Provider, config Config, logger *slog.Logger) *QAEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &QAEngine{provider: provider, config: config, logger: logger}
}

// SetLimiter throttles requests to the provider, attempts included.
// All engines sharing l and a provider share its budget.
func (e *QAEngine) SetLimiter(l *worker.Limiter) {
	e.limiter = l
}

// Name returns the provider name
func (e *QAEngine) Name() string {
	return e.provider.Name()
}

// Answer asks the model about one page. Backends without a native
// confidence get model.SentinelConfidence; a NO_ANSWER reply becomes an
// empty answer with confidence 0.
func (e *QAEngine) Answer(ctx context.Context, question model.Question, passage string) (model.Answer, error) {
	req := CompletionRequest{
		System:      systemPrompt,
		Prompt:      BuildPrompt(question, passage),
		Model:       e.config.Model,
		MaxTokens:   e.config.MaxTokens,
		Temperature: e.config.Temperature,
	}

	resp, err := e.complete(ctx, req)
	if err != nil {
		return model.Answer{}, err
	}

	none := model.Answer{Start: -1, End: -1}
	text, ok := ParseReply(resp.Text)
	if !ok {
		return none, nil
	}

	confidence := model.SentinelConfidence
	if resp.HasConfidence {
		confidence = resp.Confidence
	}
	return model.Answer{
		Text:       text,
		Confidence: model.ClampConfidence(confidence),
		Start:      -1,
		End:        -1,
	}, nil
}

func (e *QAEngine) complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	attempts := e.config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var resp *CompletionResponse
	timeouts := 0
	err := retry.Do(
		func() error {
			if err := e.limiter.Wait(ctx, "llm://"+e.provider.Name()); err != nil {
				return err
			}
			r, err := e.provider.Complete(ctx, req)
			if err != nil {
				return err
			}
			resp = r
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(e.config.Backoff),
		retry.MaxDelay(maxRetryDelay),
		retry.DelayType(retryAfterDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var to *model.TimeoutError
			if errors.As(err, &to) {
				timeouts++
				return timeouts <= 1
			}
			var rl *model.RateLimitError
			return errors.As(err, &rl)
		}),
		retry.OnRetry(func(n uint, err error) {
			e.logger.Warn("retrying remote QA request", "provider", e.provider.Name(), "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// retryAfterDelay honors a server-sent Retry-After and otherwise backs off
// exponentially
func retryAfterDelay(n uint, err error, config *retry.Config) time.Duration {
	var rl *model.RateLimitError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	return retry.BackOffDelay(n, err, config)
}
