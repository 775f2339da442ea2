package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ppiankov/policyqa/internal/cache"
	"github.com/ppiankov/policyqa/internal/model"
	"github.com/ppiankov/policyqa/internal/score"
	"github.com/ppiankov/policyqa/internal/search"
	"github.com/ppiankov/policyqa/internal/util"
	"github.com/ppiankov/policyqa/internal/validate"
	"github.com/ppiankov/policyqa/internal/worker"
)

// Pipeline answers one question against a set of registry entries
type Pipeline struct {
	ingestor   *Ingestor
	engine     search.Engine
	strategies search.Strategies
	ranker     *score.Ranker
	workers    int
	logger     *slog.Logger
}

type options struct {
	engine   search.Engine
	parser   PageParser
	hooks    *Normalizers
	resolver search.Resolver
	logger   *slog.Logger
}

// Option customizes a Pipeline
type Option func(*options)

// WithEngine replaces the configured QA engine
func WithEngine(e search.Engine) Option {
	return func(o *options) { o.engine = e }
}

// WithParser replaces the PDF parser
func WithParser(p PageParser) Option {
	return func(o *options) { o.parser = p }
}

// WithNormalizers replaces the built-in per-insurer page hooks
func WithNormalizers(n *Normalizers) Option {
	return func(o *options) { o.hooks = n }
}

// WithResolver sets the collaborator that scores web search results
func WithResolver(r search.Resolver) Option {
	return func(o *options) { o.resolver = r }
}

// WithLogger sets the logger of the pipeline and its components
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// NewPipeline wires a pipeline from cfg. Only an unknown engine name fails;
// the engine itself is built on first use.
func NewPipeline(cfg *model.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	o := options{hooks: DefaultNormalizers()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	limiter := worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	fetchOpts := []FetcherOption{WithLimiter(limiter), WithFetchLogger(o.logger)}
	if cfg.Cache.Enabled {
		fetchOpts = append(fetchOpts, WithCache(cache.New(cfg.Cache.TTL)))
	}
	fetcher := NewFetcher(cfg.HTTP, fetchOpts...)

	engine := o.engine
	if engine == nil {
		lazy, err := NewEngine(cfg, limiter, o.logger)
		if err != nil {
			return nil, err
		}
		engine = lazy
	}

	webOpts := []search.WebOption{search.WithWebLimiter(limiter), search.WithWebLogger(o.logger)}
	if cfg.Search.RespectRobots {
		webOpts = append(webOpts, search.WithRobots(util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)))
	}
	if o.resolver != nil {
		webOpts = append(webOpts, search.WithResolver(o.resolver))
	}
	web := search.NewWebSearch(search.WebConfig{
		Endpoint:   cfg.Search.WebEndpoint,
		MaxResults: cfg.Search.WebResults,
		UserAgent:  cfg.HTTP.UserAgent,
		Timeout:    cfg.HTTP.Timeout,
		HTTPProxy:  cfg.HTTP.HTTPProxy,
		HTTPSProxy: cfg.HTTP.HTTPSProxy,
		NoProxy:    cfg.HTTP.NoProxy,
	}, webOpts...)

	return &Pipeline{
		ingestor: NewIngestor(fetcher, o.parser, o.hooks, o.logger),
		engine:   engine,
		strategies: search.Strategies{
			Document: search.NewDocumentQA(engine, cfg.Search.TopK, o.logger),
			Web:      web,
			API:      search.NewAPISearch(),
		},
		ranker:  score.NewRanker(),
		workers: cfg.Concurrency.Workers,
		logger:  o.logger,
	}, nil
}

// EngineName returns the name of the QA engine in use
func (p *Pipeline) EngineName() string {
	return p.engine.Name()
}

// Compare answers q for every entry and returns one ranked result per
// insurer. Entries are validated before anything is fetched, and the first
// failing entry, in the order given, aborts the whole comparison: no
// partial report is returned.
func (p *Pipeline) Compare(ctx context.Context, q model.Question, entries []model.InsurerEntry) (*model.Report, error) {
	if err := validate.Entries(entries); err != nil {
		return nil, err
	}

	strategies := make([]search.Strategy, len(entries))
	for i, e := range entries {
		s, err := p.strategies.For(e.SearchKind)
		if err != nil {
			return nil, &model.ConfigError{Insurer: e.Name, Reason: err.Error()}
		}
		strategies[i] = s
	}

	p.logger.Info("comparing insurers", "question", q.String(), "insurers", len(entries), "engine", p.engine.Name())
	start := time.Now()

	results, err := worker.Run(ctx, p.workers, len(entries), func(ctx context.Context, i int) (model.RankedResult, error) {
		return p.answer(ctx, q, entries[i], strategies[i])
	})
	if err != nil {
		return nil, err
	}

	report := &model.Report{
		Question: q,
		AskedAt:  time.Now().UTC(),
		Engine:   p.engine.Name(),
		Results:  make(map[string]model.RankedResult, len(entries)),
	}
	for i, e := range entries {
		report.Results[e.Name] = results[i]
	}
	p.logger.Info("comparison complete", "insurers", len(entries), "duration", time.Since(start).Round(time.Millisecond))
	return report, nil
}

func (p *Pipeline) answer(ctx context.Context, q model.Question, entry model.InsurerEntry, strategy search.Strategy) (model.RankedResult, error) {
	in := search.Input{Entry: entry}
	if search.NeedsDocument(entry.SearchKind) {
		doc, err := p.ingestor.Ingest(ctx, entry)
		if err != nil {
			return model.RankedResult{}, fmt.Errorf("insurer %q (%s): %w", entry.Name, entry.URL, err)
		}
		in.Document = doc
	}

	candidates, err := strategy.Search(ctx, q, in)
	if err != nil {
		return model.RankedResult{}, fmt.Errorf("insurer %q (%s): %w", entry.Name, entry.URL, err)
	}

	result := p.ranker.Rank(candidates)
	if result.Found {
		p.logger.Info("answered",
			"insurer", entry.Name, "page", result.Candidate.PageNum, "confidence", result.Candidate.Confidence)
	} else {
		p.logger.Warn("no answer", "insurer", entry.Name, "url", entry.URL)
	}
	return result, nil
}
