package search

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ppiankov/policyqa/internal/model"
)

// Engine answers a question from a single passage of text. Implementations
// must be safe for concurrent use: one engine serves every page and every
// insurer of a run.
type Engine interface {
	Name() string
	Answer(ctx context.Context, question model.Question, passage string) (model.Answer, error)
}

// EngineFactory builds an Engine. It may be expensive (model load, client setup).
type EngineFactory func() (Engine, error)

// LazyEngine builds its engine on the first Answer call and reuses it for
// the rest of the process. A failed build is remembered and returned from
// every later call.
type LazyEngine struct {
	name    string
	factory EngineFactory

	once   sync.Once
	engine Engine
	err    error
	ready  atomic.Bool
}

// NewLazyEngine wraps factory so it runs at most once
func NewLazyEngine(name string, factory EngineFactory) *LazyEngine {
	return &LazyEngine{name: name, factory: factory}
}

// Name returns the configured engine name without building the engine
func (l *LazyEngine) Name() string {
	return l.name
}

// Answer builds the engine if needed and delegates to it
func (l *LazyEngine) Answer(ctx context.Context, question model.Question, passage string) (model.Answer, error) {
	engine, err := l.get()
	if err != nil {
		return model.Answer{}, err
	}
	return engine.Answer(ctx, question, passage)
}

// Initialized reports whether the factory has run
func (l *LazyEngine) Initialized() bool {
	return l.ready.Load()
}

func (l *LazyEngine) get() (Engine, error) {
	l.once.Do(func() {
		l.engine, l.err = l.factory()
		l.ready.Store(true)
	})
	return l.engine, l.err
}
