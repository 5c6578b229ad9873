package safeexpr

import (
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/randalmurphal/safeexpr/pkg/safeexpr/config"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/eval"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/observability"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/value"
)

// engineConfig collects options before an Engine is built.
type engineConfig struct {
	maxDepth   int
	maxSteps   int64
	attributes bool
	globals    map[string]any
	cacheSize  int
	timeout    time.Duration
	logger     *slog.Logger
	metrics    observability.MetricsRecorder
	spans      observability.SpanManager
}

func defaultEngineConfig() engineConfig {
	return engineConfig{
		maxDepth:   eval.DefaultMaxDepth,
		attributes: true,
		globals:    make(map[string]any),
		cacheSize:  config.DefaultCacheSize,
		metrics:    observability.NoopMetrics{},
		spans:      observability.NoopSpanManager{},
	}
}

// Option configures an Engine.
type Option func(*engineConfig)

// WithMaxDepth bounds how deeply evaluation may recurse, counting nested
// lambda calls.
// Default: 200
//
// Expressions that nest deeper fail with an error of kind DepthExceeded.
// Values of zero or less are ignored.
func WithMaxDepth(n int) Option {
	return func(c *engineConfig) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// WithMaxSteps bounds the number of nodes a single evaluation may visit.
// Default: 0 (unlimited)
//
// Exceeding the budget fails with an error of kind BudgetExceeded. Lambdas
// passed to map, filter or sorted count against the same budget.
func WithMaxSteps(n int64) Option {
	return func(c *engineConfig) {
		if n >= 0 {
			c.maxSteps = n
		}
	}
}

// WithAttributeAccess enables or disables attribute access (x.upper()).
// Default: true
//
// When disabled, expressions containing attributes are rejected at compile
// time with an error of kind UnsupportedNode.
func WithAttributeAccess(enabled bool) Option {
	return func(c *engineConfig) {
		c.attributes = enabled
	}
}

// WithFunction exposes a Go function to expressions under name.
//
// fn may be a value.Callable or any Go func. Arguments are converted to the
// parameter types; a leading context.Context parameter receives the
// evaluation context; a trailing error result fails the call.
//
// WithFunction panics if fn is not a function.
//
// Example:
//
//	engine := safeexpr.New(safeexpr.WithFunction("now", time.Now().Unix))
func WithFunction(name string, fn any) Option {
	callable, ok := fn.(value.Callable)
	if !ok {
		gf, err := value.NewGoFunc(name, fn)
		if err != nil {
			panic(fmt.Sprintf("safeexpr: WithFunction: %v", err))
		}
		callable = gf
	}
	return func(c *engineConfig) {
		c.globals[name] = callable
	}
}

// WithGlobals adds constants visible to every expression. Later options
// override earlier ones; locals passed at evaluation shadow them.
func WithGlobals(vars map[string]any) Option {
	return func(c *engineConfig) {
		maps.Copy(c.globals, vars)
	}
}

// WithLogger sets the logger for compile and evaluation events.
// Default: nil (no logging)
func WithLogger(logger *slog.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithMetrics enables or disables OpenTelemetry metrics.
// Default: false
//
// Metrics use the global meter provider. Configure it first:
//
//	otel.SetMeterProvider(provider)
func WithMetrics(enabled bool) Option {
	return func(c *engineConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithMetricsRecorder sets a custom metrics recorder.
func WithMetricsRecorder(m observability.MetricsRecorder) Option {
	return func(c *engineConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables or disables OpenTelemetry tracing.
// Default: false
//
// Spans use the global tracer provider:
//
//	otel.SetTracerProvider(provider)
func WithTracing(enabled bool) Option {
	return func(c *engineConfig) {
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithSpanManager sets a custom span manager.
func WithSpanManager(s observability.SpanManager) Option {
	return func(c *engineConfig) {
		if s != nil {
			c.spans = s
		}
	}
}

// WithCacheSize sets how many compiled programs the engine keeps.
// Default: 256. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(c *engineConfig) {
		if n >= 0 {
			c.cacheSize = n
		}
	}
}

// WithTimeout bounds every evaluation with a deadline.
// Default: 0 (none)
//
// Evaluations that run past it fail with an error of kind Canceled.
func WithTimeout(d time.Duration) Option {
	return func(c *engineConfig) {
		if d >= 0 {
			c.timeout = d
		}
	}
}

// WithSettings applies settings read from a configuration file.
func WithSettings(s config.Settings) Option {
	return func(c *engineConfig) {
		WithMaxDepth(s.MaxDepth)(c)
		WithMaxSteps(int64(s.MaxSteps))(c)
		WithTimeout(s.Timeout)(c)
		WithAttributeAccess(s.AllowAttributes)(c)
		WithCacheSize(s.CacheSize)(c)
		WithMetrics(s.Metrics)(c)
		WithTracing(s.Tracing)(c)
		WithGlobals(s.Constants)(c)
	}
}
