package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotImplemented marks search paths that exist only as interface contracts
var ErrNotImplemented = errors.New("not implemented")

// ConfigError reports a bad or missing registry entry. It aborts the whole run.
type ConfigError struct {
	Insurer string
	Reason  string
}

func (e *ConfigError) Error() string {
	if e.Insurer == "" {
		return "config: " + e.Reason
	}
	return fmt.Sprintf("config: insurer %q: %s", e.Insurer, e.Reason)
}

// FetchError reports a failed document download (non-2xx, transport error or timeout)
type FetchError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError reports bytes that could not be read as a paginated document
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// AuthError reports a rejected remote-QA credential. Never retried.
type AuthError struct {
	Provider string
	Err      error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication failed: %v", e.Provider, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// RateLimitError reports remote-QA throttling. Retried with backoff.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited: %v", e.Provider, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// TimeoutError reports a remote-QA request that timed out. Retried once.
type TimeoutError struct {
	Provider string
	Err      error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: request timed out: %v", e.Provider, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// Retryable reports whether a remote-QA error may be retried
func Retryable(err error) bool {
	var rl *RateLimitError
	var to *TimeoutError
	return errors.As(err, &rl) || errors.As(err, &to)
}
