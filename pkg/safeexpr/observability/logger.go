// Package observability provides structured logging, metrics and tracing
// for expression compilation and evaluation.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"context"
	"log/slog"
	"time"

	sxerrors "github.com/randalmurphal/safeexpr/pkg/safeexpr/errors"
)

// MaxLoggedExpressionLength bounds the expression text attached to log
// records and spans.
const MaxLoggedExpressionLength = 256

// Truncate shortens an expression for logging.
func Truncate(expression string) string {
	if len(expression) <= MaxLoggedExpressionLength {
		return expression
	}
	cut := MaxLoggedExpressionLength
	for cut > 0 && expression[cut]&0xC0 == 0x80 {
		cut--
	}
	return expression[:cut] + "..."
}

// EnrichLogger adds program context to a logger.
// Returns a new logger with program_id and expression fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, program.ID(), program.Source())
//	enriched.Info("evaluating") // includes program_id, expression
func EnrichLogger(logger *slog.Logger, programID, expression string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("program_id", programID),
		slog.String("expression", Truncate(expression)),
	)
}

// LogCompile logs a successful compilation.
func LogCompile(logger *slog.Logger, programID, expression string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("expression compiled",
		slog.String("program_id", programID),
		slog.String("expression", Truncate(expression)),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogCompileError logs a compilation failure.
func LogCompileError(logger *slog.Logger, expression string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("expression rejected",
		slog.String("expression", Truncate(expression)),
		slog.String("error_kind", sxerrors.KindOf(err).String()),
		slog.String("error", err.Error()),
	)
}

// LogEvalStart logs the start of an evaluation.
func LogEvalStart(logger *slog.Logger, programID string) {
	if logger == nil {
		return
	}
	logger.Debug("evaluation starting",
		slog.String("program_id", programID),
	)
}

// LogEvalComplete logs a successful evaluation.
func LogEvalComplete(logger *slog.Logger, programID string, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Debug("evaluation completed",
		slog.String("program_id", programID),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogEvalError logs an evaluation failure. Resource limit failures are
// logged at warn level, everything else at info.
func LogEvalError(logger *slog.Logger, programID string, err error, durationMs float64) {
	if logger == nil {
		return
	}
	level := slog.LevelInfo
	if sxerrors.IsLimit(err) {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, "evaluation failed",
		slog.String("program_id", programID),
		slog.String("error_kind", sxerrors.KindOf(err).String()),
		slog.String("error", err.Error()),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogCacheEvict logs the eviction of a compiled program from the cache.
func LogCacheEvict(logger *slog.Logger, expression string, size int) {
	if logger == nil {
		return
	}
	logger.Debug("program evicted from cache",
		slog.String("expression", Truncate(expression)),
		slog.Int("cache_size", size),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
//
// Example:
//
//	done := TimedOperation()
//	// ... do work ...
//	durationMs := done()
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Microseconds()) / 1000
	}
}
