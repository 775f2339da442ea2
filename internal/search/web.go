package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/ppiankov/policyqa/internal/model"
	"github.com/ppiankov/policyqa/internal/util"
	"github.com/ppiankov/policyqa/internal/worker"
)

// DefaultWebResults is how many URLs a web search yields by default
const DefaultWebResults = 5

// maxResultPageBytes caps the search provider's result page
const maxResultPageBytes = 2 << 20

// Resolver turns the URLs of a web search into answer candidates. Resolving
// means fetching and scoring pages, which no built-in resolver does.
type Resolver interface {
	Resolve(ctx context.Context, question model.Question, urls *URLIterator) ([]model.AnswerCandidate, error)
}

// Unresolved is the default Resolver: it fails without touching the URLs
type Unresolved struct{}

// Resolve implements Resolver
func (Unresolved) Resolve(context.Context, model.Question, *URLIterator) ([]model.AnswerCandidate, error) {
	return nil, fmt.Errorf("resolve web results: %w", model.ErrNotImplemented)
}

// WebConfig configures a WebSearch
type WebConfig struct {
	Endpoint   string // HTML search endpoint taking a q parameter
	MaxResults int
	UserAgent  string
	Timeout    time.Duration
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// WebSearch asks an external search provider for candidate URLs
type WebSearch struct {
	endpoint   string
	maxResults int
	userAgent  string
	httpClient *http.Client
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	resolver   Resolver
	logger     *slog.Logger
}

// WebOption customizes a WebSearch
type WebOption func(*WebSearch)

// WithRobots drops result URLs their host's robots.txt disallows
func WithRobots(r *util.RobotsChecker) WebOption {
	return func(w *WebSearch) { w.robots = r }
}

// WithWebLimiter rate limits requests to the search provider
func WithWebLimiter(l *worker.Limiter) WebOption {
	return func(w *WebSearch) { w.limiter = l }
}

// WithResolver sets the collaborator that scores result URLs
func WithResolver(r Resolver) WebOption {
	return func(w *WebSearch) { w.resolver = r }
}

// WithWebLogger sets the logger
func WithWebLogger(l *slog.Logger) WebOption {
	return func(w *WebSearch) { w.logger = l }
}

// NewWebSearch creates the web strategy
func NewWebSearch(cfg WebConfig, opts ...WebOption) *WebSearch {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultWebResults
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	w := &WebSearch{
		endpoint:   cfg.Endpoint,
		maxResults: maxResults,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: util.NewTransport(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
		},
		resolver: Unresolved{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Kind implements Strategy
func (w *WebSearch) Kind() model.SearchKind {
	return model.SearchKindWebSearch
}

// Query shapes the provider query for an insurer
func Query(question model.Question, insurer string) string {
	if insurer == "" {
		return question.String()
	}
	return fmt.Sprintf("%s in %s", question, insurer)
}

// Search implements Strategy by handing the lazy URL sequence for the
// insurer-scoped query to the resolver
func (w *WebSearch) Search(ctx context.Context, question model.Question, in Input) ([]model.AnswerCandidate, error) {
	urls := w.URLs(Query(question, in.Entry.Name))
	return w.resolver.Resolve(ctx, question, urls)
}

// URLs returns the provider's ranked result URLs for query. Nothing is
// requested until the first call to Next.
func (w *WebSearch) URLs(query string) *URLIterator {
	return &URLIterator{search: w, query: query}
}

// URLIterator is a lazy, single-pass sequence of result URLs. Once Next has
// returned false it keeps returning false.
type URLIterator struct {
	search *WebSearch
	query  string

	fetched bool
	pending []string
	yielded int
	current string
	done    bool
	err     error
}

// Next advances to the next URL, requesting the result page on first use
func (it *URLIterator) Next(ctx context.Context) bool {
	if it.done {
		return false
	}
	if !it.fetched {
		it.fetched = true
		it.pending, it.err = it.search.results(ctx, it.query)
		if it.err != nil {
			it.finish()
			return false
		}
	}

	for len(it.pending) > 0 && it.yielded < it.search.maxResults {
		next := it.pending[0]
		it.pending = it.pending[1:]
		if it.search.robots != nil && !it.search.robots.Allowed(ctx, next) {
			it.search.logger.Debug("skipping result disallowed by robots.txt", "url", next)
			continue
		}
		it.current = next
		it.yielded++
		return true
	}
	it.finish()
	return false
}

func (it *URLIterator) finish() {
	it.done = true
	it.current = ""
	it.pending = nil
}

// URL returns the current URL
func (it *URLIterator) URL() string {
	return it.current
}

// Err returns the error that ended the sequence, if any
func (it *URLIterator) Err() error {
	return it.err
}

// Collect drains the iterator
func (it *URLIterator) Collect(ctx context.Context) ([]string, error) {
	var out []string
	for it.Next(ctx) {
		out = append(out, it.URL())
	}
	return out, it.Err()
}

func (w *WebSearch) results(ctx context.Context, query string) ([]string, error) {
	if w.endpoint == "" {
		return nil, fmt.Errorf("web search: no endpoint configured")
	}
	endpoint, err := url.Parse(w.endpoint)
	if err != nil {
		return nil, fmt.Errorf("web search: parse endpoint: %w", err)
	}
	params := endpoint.Query()
	params.Set("q", query)
	endpoint.RawQuery = params.Encode()

	if err := w.limiter.Wait(ctx, endpoint.String()); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if w.userAgent != "" {
		req.Header.Set("User-Agent", w.userAgent)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, &model.FetchError{URL: endpoint.String(), Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &model.FetchError{URL: endpoint.String(), StatusCode: resp.StatusCode, Err: errors.New(resp.Status)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResultPageBytes))
	if err != nil {
		return nil, &model.FetchError{URL: endpoint.String(), Err: fmt.Errorf("read body: %w", err)}
	}

	urls, err := ResultLinks(string(body), endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	w.logger.Debug("web search results", "query", query, "links", len(urls))
	return urls, nil
}

// ResultLinks extracts the outbound result URLs of a search result page in
// document order. Anchors marked as results (class "result__a") are used
// when present, otherwise every anchor leaving the provider's host.
// Redirect links carrying the target in a uddg parameter are unwrapped.
func ResultLinks(page string, base *url.URL) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, err
	}

	var marked, all []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			href, class := "", ""
			for _, attr := range n.Attr {
				switch attr.Key {
				case "href":
					href = strings.TrimSpace(attr.Val)
				case "class":
					class = attr.Val
				}
			}
			if target := resultTarget(base, href); target != "" {
				all = append(all, target)
				if hasClass(class, "result__a") {
					marked = append(marked, target)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(marked) > 0 {
		return dedupe(marked), nil
	}
	return dedupe(all), nil
}

// resultTarget resolves href against base and returns the external URL it
// points to, or "" for links that stay on the provider
func resultTarget(base *url.URL, href string) string {
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(parsed)

	if uddg := resolved.Query().Get("uddg"); uddg != "" {
		target, err := url.Parse(uddg)
		if err != nil {
			return ""
		}
		resolved = target
	}

	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	if resolved.Host == "" || resolved.Host == base.Host {
		return ""
	}
	return resolved.String()
}

func hasClass(classAttr, class string) bool {
	for _, c := range strings.Fields(classAttr) {
		if c == class {
			return true
		}
	}
	return false
}

func dedupe(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	var unique []string
	for _, u := range urls {
		if !seen[u] {
			seen[u] = true
			unique = append(unique, u)
		}
	}
	return unique
}
