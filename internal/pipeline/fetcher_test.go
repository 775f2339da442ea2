package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/policyqa/internal/cache"
	"github.com/ppiankov/policyqa/internal/model"
)

func fastRetries(t *testing.T) {
	t.Helper()
	orig := fetchRetryDelay
	fetchRetryDelay = time.Millisecond
	t.Cleanup(func() { fetchRetryDelay = orig })
}

func testHTTPConfig() model.HTTPConfig {
	return model.HTTPConfig{
		Timeout:       5 * time.Second,
		UserAgent:     "test-agent",
		MaxBodyBytes:  1 << 20,
		RetryAttempts: 3,
	}
}

func TestFetchWithRetry_Success(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = fmt.Fprint(w, "%PDF-1.4 body")
	}))
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig())
	result, err := fetcher.FetchWithRetry(context.Background(), server.URL+"/policy.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(result.Body))
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, "test-agent", gotUA)
	assert.False(t, result.FromCache)
}

func TestFetchWithRetry_TransientThenSuccess(t *testing.T) {
	fastRetries(t)

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, "OK")
	}))
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig())
	result, err := fetcher.FetchWithRetry(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(result.Body))
	assert.Equal(t, int32(3), attempts.Load())
}

func TestFetchWithRetry_PermanentFailure(t *testing.T) {
	fastRetries(t)

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig())
	_, err := fetcher.FetchWithRetry(context.Background(), server.URL)
	require.Error(t, err)

	var fe *model.FetchError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, http.StatusNotFound, fe.StatusCode)
	assert.Equal(t, server.URL, fe.URL)
	assert.Equal(t, int32(1), attempts.Load(), "404 must not be retried")
}

func TestFetchWithRetry_AllAttemptsFail(t *testing.T) {
	fastRetries(t)

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig())
	_, err := fetcher.FetchWithRetry(context.Background(), server.URL)

	var fe *model.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, http.StatusBadGateway, fe.StatusCode)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestFetchWithRetry_RateLimited(t *testing.T) {
	fastRetries(t)

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = fmt.Fprint(w, "OK")
	}))
	defer server.Close()

	fetcher := NewFetcher(testHTTPConfig())
	_, err := fetcher.FetchWithRetry(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestFetch_BodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, strings.Repeat("x", 64))
	}))
	defer server.Close()

	cfg := testHTTPConfig()
	cfg.MaxBodyBytes = 16
	fetcher := NewFetcher(cfg)

	_, err := fetcher.Fetch(context.Background(), server.URL)
	var fe *model.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, err.Error(), "exceeds 16 bytes")
}

func TestFetch_ServesRepeatsFromCache(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		_, _ = fmt.Fprint(w, "doc")
	}))
	defer server.Close()

	store := cache.New(time.Minute)
	fetcher := NewFetcher(testHTTPConfig(), WithCache(store))

	first, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	second, err := fetcher.Fetch(context.Background(), server.URL)
	require.NoError(t, err)

	assert.False(t, first.FromCache)
	assert.True(t, second.FromCache)
	assert.Equal(t, "doc", string(second.Body))
	assert.Equal(t, int32(1), attempts.Load())
}

func TestFetch_ErrorsAreNotCached(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	store := cache.New(time.Minute)
	fetcher := NewFetcher(testHTTPConfig(), WithCache(store))

	_, err := fetcher.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	_, err = fetcher.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Equal(t, int32(2), attempts.Load())
	assert.Equal(t, 0, store.Len())
}

func TestFetchWithRetry_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, "OK")
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := NewFetcher(testHTTPConfig())
	_, err := fetcher.FetchWithRetry(ctx, server.URL)
	var fe *model.FetchError
	require.ErrorAs(t, err, &fe)
}

func TestIsRetryableFetchError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"500", &model.FetchError{StatusCode: 500}, true},
		{"503", &model.FetchError{StatusCode: 503}, true},
		{"429", &model.FetchError{StatusCode: 429}, true},
		{"404", &model.FetchError{StatusCode: 404}, false},
		{"403", &model.FetchError{StatusCode: 403}, false},
		{"transport", &model.FetchError{Err: &transportError{err: errors.New("connection reset")}}, true},
		{"cancelled", &model.FetchError{Err: &transportError{err: context.Canceled}}, false},
		{"oversized body", &model.FetchError{Err: errors.New("document exceeds 16 bytes")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isRetryableFetchError(tt.err))
		})
	}
}
