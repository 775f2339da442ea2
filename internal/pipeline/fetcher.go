package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/ppiankov/policyqa/internal/cache"
	"github.com/ppiankov/policyqa/internal/model"
	"github.com/ppiankov/policyqa/internal/util"
	"github.com/ppiankov/policyqa/internal/worker"
)

// fetchRetryDelay is the base backoff between fetch attempts (injectable for tests)
var fetchRetryDelay = 500 * time.Millisecond

// Fetcher downloads documents over HTTP
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	attempts   int
	limiter    *worker.Limiter
	store      *cache.Store
	logger     *slog.Logger
}

// FetcherOption customizes a Fetcher
type FetcherOption func(*Fetcher)

// WithLimiter rate limits fetches per host
func WithLimiter(l *worker.Limiter) FetcherOption {
	return func(f *Fetcher) { f.limiter = l }
}

// WithCache serves repeated URLs from store
func WithCache(store *cache.Store) FetcherOption {
	return func(f *Fetcher) { f.store = store }
}

// WithFetchLogger sets the fetcher's logger
func WithFetchLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) { f.logger = logger }
}

// NewFetcher creates a Fetcher from the HTTP configuration
func NewFetcher(cfg model.HTTPConfig, opts ...FetcherOption) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 50 << 20
	}
	attempts := cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}

	f := &Fetcher{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: util.NewTransport(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 5 {
					return fmt.Errorf("stopped after 5 redirects")
				}
				return nil
			},
		},
		userAgent: cfg.UserAgent,
		maxBytes:  maxBytes,
		attempts:  attempts,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchResult is a downloaded document body
type FetchResult struct {
	Body        []byte
	ContentType string
	FinalURL    string
	FromCache   bool
}

// Fetch performs a single GET of rawURL. Failures are *model.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*FetchResult, error) {
	if body, ok := f.store.Get(rawURL); ok {
		return &FetchResult{Body: body, FinalURL: rawURL, FromCache: true}, nil
	}

	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return nil, &model.FetchError{URL: rawURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &model.FetchError{URL: rawURL, Err: fmt.Errorf("create request: %w", err)}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "application/pdf,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &model.FetchError{URL: rawURL, Err: &transportError{err: err}}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &model.FetchError{URL: rawURL, StatusCode: resp.StatusCode, Err: errors.New(resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, &model.FetchError{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > f.maxBytes {
		return nil, &model.FetchError{URL: rawURL, Err: fmt.Errorf("document exceeds %d bytes", f.maxBytes)}
	}

	f.store.Put(rawURL, body)

	return &FetchResult{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

// FetchWithRetry fetches rawURL, retrying server errors, throttling and
// transport failures with exponential backoff
func (f *Fetcher) FetchWithRetry(ctx context.Context, rawURL string) (*FetchResult, error) {
	var result *FetchResult
	err := retry.Do(
		func() error {
			res, err := f.Fetch(ctx, rawURL)
			if err != nil {
				return err
			}
			result = res
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(f.attempts)),
		retry.Delay(fetchRetryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(isRetryableFetchError),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			f.logger.Warn("retrying document fetch", "url", rawURL, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		var fe *model.FetchError
		if !errors.As(err, &fe) {
			err = &model.FetchError{URL: rawURL, Err: err}
		}
		return nil, err
	}
	return result, nil
}

// isRetryableFetchError reports whether another attempt could succeed:
// 5xx, 429 and failures without any response
func isRetryableFetchError(err error) bool {
	if err == nil {
		return false
	}
	var fe *model.FetchError
	if !errors.As(err, &fe) {
		return false
	}
	switch {
	case fe.StatusCode == http.StatusTooManyRequests:
		return true
	case fe.StatusCode >= 500:
		return true
	case fe.StatusCode != 0:
		return false
	}
	var te *transportError
	return errors.As(fe.Err, &te) && !errors.Is(te.err, context.Canceled)
}

// transportError marks a request that got no HTTP response at all
type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }

func (e *transportError) Unwrap() error { return e.err }
