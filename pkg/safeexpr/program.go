package safeexpr

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/safeexpr/pkg/safeexpr/ast"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/observability"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/parser"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/value"
)

// Program is a parsed and validated expression bound to the Engine that
// compiled it. Programs are immutable and safe for concurrent use; each Run
// has its own evaluation state.
type Program struct {
	id     string
	source string
	root   ast.Node
	engine *Engine
}

func newProgram(e *Engine, text string) (*Program, error) {
	root, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}
	if err := e.evaluator.Validate(root); err != nil {
		return nil, err
	}
	return &Program{
		id:     uuid.NewString(),
		source: text,
		root:   root,
		engine: e,
	}, nil
}

// ID returns the program's unique identifier, used to correlate logs and spans.
func (p *Program) ID() string { return p.id }

// Source returns the expression text.
func (p *Program) Source() string { return p.source }

// Root returns the parsed syntax tree.
func (p *Program) Root() ast.Node { return p.root }

// String returns the expression text.
func (p *Program) String() string { return p.source }

// Run evaluates the program with scope as local variables. scope may be nil
// and is never modified.
//
// The result is a runtime value: nil, bool, int64, float64, string,
// value.List, value.Tuple, *value.Set, *value.Dict or a value.Callable.
// Use value.ToGo to convert containers to plain Go slices and maps.
func (p *Program) Run(ctx context.Context, scope map[string]any) (result any, err error) {
	e := p.engine
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	ctx, span := e.spans.StartEvaluateSpan(ctx, p.id, p.source)
	defer func() {
		e.spans.EndSpanWithError(span, err)
	}()

	observability.LogEvalStart(e.logger, p.id)
	start := time.Now()

	result, err = e.evaluator.Evaluate(ctx, p.root, scope)

	duration := time.Since(start)
	durationMs := float64(duration.Microseconds()) / 1000
	e.metrics.RecordEvaluation(ctx, duration, err)
	if err != nil {
		observability.LogEvalError(e.logger, p.id, err, durationMs)
		return nil, err
	}
	observability.LogEvalComplete(e.logger, p.id, durationMs)
	return result, nil
}

// RunBool runs the program and reports the truthiness of the result.
func (p *Program) RunBool(ctx context.Context, scope map[string]any) (bool, error) {
	v, err := p.Run(ctx, scope)
	if err != nil {
		return false, err
	}
	return value.Truthy(v), nil
}
