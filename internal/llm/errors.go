package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/ppiankov/policyqa/internal/model"
)

// statusError maps an HTTP error status onto the remote QA error taxonomy
func statusError(provider string, status int, header http.Header, msg string) error {
	cause := fmt.Errorf("API error (%d): %s", status, msg)
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &model.AuthError{Provider: provider, Err: cause}
	case http.StatusTooManyRequests, 529: // 529: Anthropic "overloaded"
		return &model.RateLimitError{Provider: provider, RetryAfter: retryAfter(header), Err: cause}
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return &model.TimeoutError{Provider: provider, Err: cause}
	default:
		return cause
	}
}

// transportFailure classifies an error from sending a request
func transportFailure(provider string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &model.TimeoutError{Provider: provider, Err: err}
	}
	return fmt.Errorf("execute request: %w", err)
}

// retryAfter reads a Retry-After header given in seconds
func retryAfter(header http.Header) time.Duration {
	if header == nil {
		return 0
	}
	secs, err := strconv.Atoi(header.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
