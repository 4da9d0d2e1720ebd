// Package engine runs the expand, clean and check passes over a parsed
// document.
package engine

import (
	"context"
	"time"

	"github.com/goliatone/go-mdexpand/internal/logging"
	"github.com/goliatone/go-mdexpand/internal/markdown"
	"github.com/goliatone/go-mdexpand/internal/marker"
	"github.com/goliatone/go-mdexpand/internal/rules"
	"github.com/goliatone/go-mdexpand/pkg/interfaces"
)

// Options configures a single pass.
type Options struct {
	// AddMetaComment prepends the generated warning comment on expand and
	// makes check require exactly one.
	AddMetaComment bool
	Syntax         marker.Syntax
	Rules          rules.Set
}

// Engine applies rule sets to documents. The zero value is not usable; call
// New. An Engine holds no per-document state and may be reused.
type Engine struct {
	logger  interfaces.Logger
	metrics interfaces.RuleMetrics
	parser  *markdown.Parser
	now     func() time.Time
}

// Option customises engine behaviour.
type Option func(*Engine)

// WithLogger attaches a logger used for structured diagnostics.
func WithLogger(logger interfaces.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithMetrics wires the recorder used for rule telemetry.
func WithMetrics(metrics interfaces.RuleMetrics) Option {
	return func(e *Engine) {
		if metrics != nil {
			e.metrics = metrics
		}
	}
}

// WithClock overrides the clock used for the meta comment date.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithParser selects the parser used by the string helpers.
func WithParser(parser *markdown.Parser) Option {
	return func(e *Engine) {
		if parser != nil {
			e.parser = parser
		}
	}
}

// New constructs an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		logger:  logging.NoOp(),
		metrics: NoOpMetrics(),
		parser:  markdown.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Now returns the engine clock reading.
func (e *Engine) Now() time.Time {
	return e.now()
}

func (e *Engine) baseLogger(ctx context.Context, doc *markdown.Document, operation string) interfaces.Logger {
	logger := e.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	path := ""
	if doc != nil {
		path = doc.Path
	}
	return logging.WithDocumentContext(logger, path, operation)
}

// resolve runs one rule and records its timing.
func (e *Engine) resolve(ctx context.Context, keyword string, rule rules.Normalized, params any, doc *markdown.Document, mode rules.Mode) (string, error) {
	start := e.now()
	out, err := rules.Resolve(ctx, rule, params, doc, mode)
	e.metrics.ObserveRuleDuration(keyword, e.now().Sub(start))
	if err != nil {
		e.metrics.IncrementRuleError(keyword)
	}
	return out, err
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
