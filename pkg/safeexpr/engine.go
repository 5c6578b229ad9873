package safeexpr

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/randalmurphal/safeexpr/pkg/safeexpr/builtins"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/cache"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/config"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/eval"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/observability"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/value"
)

// Engine compiles and evaluates expressions with a fixed configuration.
//
// An Engine is immutable after New and safe for concurrent use. Compiled
// programs are cached by expression text.
type Engine struct {
	evaluator *eval.Evaluator
	programs  *cache.Cache[string, *Program]
	timeout   time.Duration
	logger    *slog.Logger
	metrics   observability.MetricsRecorder
	spans     observability.SpanManager
}

// New creates an Engine.
//
// Example:
//
//	engine := safeexpr.New(
//	    safeexpr.WithMaxSteps(10_000),
//	    safeexpr.WithFunction("lookup", lookupFn),
//	)
//	v, err := engine.Evaluate(ctx, "lookup(user) in allowed", scope)
func New(opts ...Option) *Engine {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	globals := builtins.Globals()
	if len(cfg.globals) > 0 {
		globals = globals.With(cfg.globals)
	}

	e := &Engine{
		evaluator: eval.New(
			eval.WithGlobals(globals),
			eval.WithMaxDepth(cfg.maxDepth),
			eval.WithMaxSteps(cfg.maxSteps),
			eval.WithAttributeAccess(cfg.attributes),
		),
		timeout: cfg.timeout,
		logger:  cfg.logger,
		metrics: cfg.metrics,
		spans:   cfg.spans,
	}
	e.programs = cache.New(cfg.cacheSize,
		cache.WithEvictFunc(func(text string, _ *Program, size int) {
			observability.LogCacheEvict(e.logger, text, size)
		}),
	)
	return e
}

// NewFromConfig creates an Engine from file configuration. Options given
// after cfg override its settings.
//
// Example:
//
//	cfg, err := config.FromFile("safeexpr.yaml")
//	...
//	engine, err := safeexpr.NewFromConfig(cfg, safeexpr.WithLogger(logger))
func NewFromConfig(cfg config.Config, opts ...Option) (*Engine, error) {
	settings := cfg.Settings()
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("engine config: %w", err)
	}
	return New(append([]Option{WithSettings(settings)}, opts...)...), nil
}

// Compile parses and validates text. Expressions that can never evaluate
// (syntax errors, unsupported constructs) fail here rather than at Run.
//
// Syntax errors are returned as *SyntaxError; rejected constructs as
// *EvalError of kind UnsupportedNode.
func (e *Engine) Compile(text string) (*Program, error) {
	return e.compile(context.Background(), text)
}

// MustCompile is like Compile but panics on error.
// Use it for expressions fixed at build time.
func (e *Engine) MustCompile(text string) *Program {
	p, err := e.Compile(text)
	if err != nil {
		panic(fmt.Sprintf("safeexpr: Compile(%q): %v", text, err))
	}
	return p
}

// compile consults the program cache and records the lookup.
func (e *Engine) compile(ctx context.Context, text string) (*Program, error) {
	p, hit, err := e.programs.GetOrCreate(text, func() (*Program, error) {
		return e.build(ctx, text)
	})
	if e.programs.Capacity() > 0 {
		e.metrics.RecordCacheLookup(ctx, hit)
	}
	return p, err
}

// build parses and validates text under a compile span.
func (e *Engine) build(ctx context.Context, text string) (p *Program, err error) {
	ctx, span := e.spans.StartCompileSpan(ctx, text)
	defer func() {
		e.spans.EndSpanWithError(span, err)
	}()

	start := time.Now()
	p, err = newProgram(e, text)
	e.metrics.RecordCompile(ctx, time.Since(start), err)
	if err != nil {
		observability.LogCompileError(e.logger, text, err)
		return nil, err
	}
	observability.LogCompile(e.logger, p.ID(), text, float64(time.Since(start).Microseconds())/1000)
	return p, nil
}

// Evaluate compiles text (or reuses the cached program) and runs it with
// scope as local variables. scope may be nil and is never modified.
func (e *Engine) Evaluate(ctx context.Context, text string, scope map[string]any) (any, error) {
	p, err := e.compile(ctx, text)
	if err != nil {
		return nil, err
	}
	return p.Run(ctx, scope)
}

// EvaluateBool evaluates text and reports the truthiness of the result.
//
// Example:
//
//	ok, err := engine.EvaluateBool(ctx, "user.role in ('admin', 'owner')", scope)
func (e *Engine) EvaluateBool(ctx context.Context, text string, scope map[string]any) (bool, error) {
	v, err := e.Evaluate(ctx, text, scope)
	if err != nil {
		return false, err
	}
	return value.Truthy(v), nil
}

// Globals returns the sorted names every expression can see without locals.
func (e *Engine) Globals() []string {
	return e.evaluator.Globals().Names()
}

// CachedPrograms returns the number of compiled programs held.
func (e *Engine) CachedPrograms() int {
	return e.programs.Len()
}

// ClearCache drops every compiled program.
func (e *Engine) ClearCache() {
	e.programs.Clear()
}

var defaultEngine = sync.OnceValue(func() *Engine { return New() })

// Eval evaluates text with the default engine. scope may be nil.
//
// Example:
//
//	v, err := safeexpr.Eval("price * (1 - discount)", map[string]any{
//	    "price": 20, "discount": 0.25,
//	})
//	// v: 15.0
func Eval(text string, scope map[string]any) (any, error) {
	return defaultEngine().Evaluate(context.Background(), text, scope)
}
