package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	sxerrors "github.com/randalmurphal/safeexpr/pkg/safeexpr/errors"
)

// tracer uses the global OTel tracer provider.
var tracer = otel.Tracer("safeexpr")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartCompileSpan starts a span covering the parsing and validation of
	// an expression.
	StartCompileSpan(ctx context.Context, expression string) (context.Context, trace.Span)

	// StartEvaluateSpan starts a span for one evaluation of a compiled program.
	StartEvaluateSpan(ctx context.Context, programID, expression string) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartCompileSpan starts a compile span.
func (m *otelSpanManager) StartCompileSpan(ctx context.Context, expression string) (context.Context, trace.Span) {
	return StartCompileSpan(ctx, expression)
}

// StartEvaluateSpan starts an evaluation span.
func (m *otelSpanManager) StartEvaluateSpan(ctx context.Context, programID, expression string) (context.Context, trace.Span) {
	return StartEvaluateSpan(ctx, programID, expression)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	AddSpanEvent(ctx, name, attrs...)
}

// Convenience functions that operate on the global tracer.
// These are useful for simple cases where you don't need the interface.

// StartCompileSpan starts a span named safeexpr.compile.
// Uses the global OTel tracer.
func StartCompileSpan(ctx context.Context, expression string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "safeexpr.compile",
		trace.WithAttributes(
			attribute.String("expression", Truncate(expression)),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartEvaluateSpan starts a span named safeexpr.evaluate.
// Uses the global OTel tracer.
func StartEvaluateSpan(ctx context.Context, programID, expression string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "safeexpr.evaluate",
		trace.WithAttributes(
			attribute.String("program.id", programID),
			attribute.String("expression", Truncate(expression)),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error and its
// kind.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.kind", sxerrors.KindOf(err).String()))
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span in context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
