package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/randalmurphal/safeexpr/pkg/safeexpr/eval"
)

// Setting keys recognised by Settings.
const (
	KeyMaxDepth        = "max_depth"
	KeyMaxSteps        = "max_steps"
	KeyTimeout         = "timeout"
	KeyAllowAttributes = "allow_attributes"
	KeyCacheSize       = "cache_size"
	KeyMetrics         = "metrics"
	KeyTracing         = "tracing"
	KeyConstants       = "constants"
)

// DefaultCacheSize is the number of compiled programs an engine keeps when
// no cache size is configured.
const DefaultCacheSize = 256

// ErrInvalidSetting is returned by Settings.Validate.
var ErrInvalidSetting = errors.New("invalid setting")

// Settings are the engine parameters that can be read from a file.
type Settings struct {
	// MaxDepth bounds evaluation recursion.
	MaxDepth int

	// MaxSteps bounds the number of evaluated nodes. Zero means unlimited.
	MaxSteps int

	// Timeout bounds each evaluation. Zero means no deadline.
	Timeout time.Duration

	AllowAttributes bool

	// CacheSize is the number of compiled programs kept. Zero disables caching.
	CacheSize int

	// Metrics and Tracing enable OpenTelemetry instrumentation.
	Metrics bool
	Tracing bool

	// Constants are extra global names visible to every expression.
	Constants map[string]any
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		MaxDepth:        eval.DefaultMaxDepth,
		AllowAttributes: true,
		CacheSize:       DefaultCacheSize,
	}
}

// Settings extracts engine settings, falling back to DefaultSettings for
// every missing key.
//
//	max_depth: 100
//	max_steps: 10000
//	timeout: 50ms
//	allow_attributes: false
//	cache_size: 512
//	metrics: true
//	tracing: true
//	constants:
//	  threshold: 10
func (c Config) Settings() Settings {
	d := DefaultSettings()
	return Settings{
		MaxDepth:        c.Int(KeyMaxDepth, d.MaxDepth),
		MaxSteps:        c.Int(KeyMaxSteps, d.MaxSteps),
		Timeout:         c.Duration(KeyTimeout, d.Timeout),
		AllowAttributes: c.Bool(KeyAllowAttributes, d.AllowAttributes),
		CacheSize:       c.Int(KeyCacheSize, d.CacheSize),
		Metrics:         c.Bool(KeyMetrics, d.Metrics),
		Tracing:         c.Bool(KeyTracing, d.Tracing),
		Constants:       c.Map(KeyConstants),
	}
}

// Validate rejects settings no engine can run with.
func (s Settings) Validate() error {
	switch {
	case s.MaxDepth <= 0:
		return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidSetting, KeyMaxDepth, s.MaxDepth)
	case s.MaxSteps < 0:
		return fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalidSetting, KeyMaxSteps, s.MaxSteps)
	case s.Timeout < 0:
		return fmt.Errorf("%w: %s must not be negative, got %s", ErrInvalidSetting, KeyTimeout, s.Timeout)
	case s.CacheSize < 0:
		return fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalidSetting, KeyCacheSize, s.CacheSize)
	}
	return nil
}
