package eval

import (
	"context"
	"errors"
	"fmt"

	"github.com/randalmurphal/safeexpr/pkg/safeexpr/ast"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/builtins"
	sxerrors "github.com/randalmurphal/safeexpr/pkg/safeexpr/errors"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/operators"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/scope"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/value"
)

// DefaultMaxDepth bounds evaluation recursion when no limit is configured.
const DefaultMaxDepth = 200

// Evaluator evaluates syntax trees. It is immutable after New and safe for
// concurrent use; each call to Evaluate gets its own run state.
type Evaluator struct {
	globals    *scope.Globals
	maxDepth   int
	maxSteps   int64
	attributes bool
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithGlobals replaces the global table. The default is builtins.Globals().
func WithGlobals(g *scope.Globals) Option {
	return func(e *Evaluator) {
		if g != nil {
			e.globals = g
		}
	}
}

// WithMaxDepth sets the maximum evaluation depth. Nested closure calls count
// toward the same depth. Values below 1 keep the default.
func WithMaxDepth(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// WithMaxSteps limits the number of nodes visited per evaluation.
// Zero means unlimited.
func WithMaxSteps(n int64) Option {
	return func(e *Evaluator) {
		if n >= 0 {
			e.maxSteps = n
		}
	}
}

// WithAttributeAccess enables or disables attribute expressions. When
// disabled, Attribute nodes are rejected as unsupported.
func WithAttributeAccess(enabled bool) Option {
	return func(e *Evaluator) {
		e.attributes = enabled
	}
}

// New creates an Evaluator with the given options.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		globals:    builtins.Globals(),
		maxDepth:   DefaultMaxDepth,
		attributes: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Globals returns the global table.
func (e *Evaluator) Globals() *scope.Globals { return e.globals }

// MaxDepth returns the configured depth limit.
func (e *Evaluator) MaxDepth() int { return e.maxDepth }

// MaxSteps returns the configured step budget, zero if unlimited.
func (e *Evaluator) MaxSteps() int64 { return e.maxSteps }

// Evaluate computes the value of root with vars as the local scope. vars is
// never written and may be nil.
func (e *Evaluator) Evaluate(ctx context.Context, root ast.Node, vars map[string]any) (any, error) {
	if root == nil {
		return nil, sxerrors.New(sxerrors.KindUnsupportedNode, "empty expression")
	}
	r := e.newRun(ctx)
	return r.visit(root, scope.New(e.globals, vars))
}

type runKey struct{}

// run is the mutable state of one evaluation.
type run struct {
	ev    *Evaluator
	ctx   context.Context
	depth int
	steps int64
}

func (e *Evaluator) newRun(ctx context.Context) *run {
	if ctx == nil {
		ctx = context.Background()
	}
	r := &run{ev: e}
	r.ctx = context.WithValue(ctx, runKey{}, r)
	return r
}

// runFrom returns the run carried by ctx, if any. Closures invoked by a
// builtin during an evaluation continue that evaluation's run so that depth
// and step limits cover the whole call tree.
func runFrom(ctx context.Context) *run {
	if ctx == nil {
		return nil
	}
	r, _ := ctx.Value(runKey{}).(*run)
	return r
}

func (r *run) visit(n ast.Node, s *scope.Scope) (any, error) {
	r.depth++
	defer func() { r.depth-- }()

	if err := r.check(); err != nil {
		return nil, sxerrors.Locate(err, n.Kind().String(), n.Pos())
	}
	v, err := r.dispatch(n, s)
	if err != nil {
		return nil, sxerrors.Locate(err, n.Kind().String(), n.Pos())
	}
	return v, nil
}

// check enforces the run's resource limits before a node is visited.
func (r *run) check() error {
	if r.depth > r.ev.maxDepth {
		return sxerrors.Newf(sxerrors.KindDepthExceeded, "maximum evaluation depth of %d exceeded", r.ev.maxDepth)
	}
	r.steps++
	if r.ev.maxSteps > 0 && r.steps > r.ev.maxSteps {
		return sxerrors.Newf(sxerrors.KindBudgetExceeded, "evaluation step budget of %d exhausted", r.ev.maxSteps)
	}
	if err := r.ctx.Err(); err != nil {
		return sxerrors.Wrap(sxerrors.KindCanceled, err, "evaluation canceled: "+err.Error())
	}
	return nil
}

func (r *run) dispatch(node ast.Node, s *scope.Scope) (any, error) {
	switch n := node.(type) {
	case *ast.Literal:
		return n.Value, nil
	case *ast.Name:
		return s.Resolve(n.Ident)
	case *ast.BinaryOp:
		return r.binary(n, s)
	case *ast.UnaryOp:
		return r.unary(n, s)
	case *ast.BoolOp:
		return r.boolean(n, s)
	case *ast.Compare:
		return r.compare(n, s)
	case *ast.Call:
		return r.call(n, s)
	case *ast.Conditional:
		test, err := r.visit(n.Test, s)
		if err != nil {
			return nil, err
		}
		if value.Truthy(test) {
			return r.visit(n.Body, s)
		}
		return r.visit(n.OrElse, s)
	case *ast.ListLit:
		items, err := r.visitAll(n.Elts, s)
		if err != nil {
			return nil, err
		}
		return value.List(items), nil
	case *ast.TupleLit:
		items, err := r.visitAll(n.Elts, s)
		if err != nil {
			return nil, err
		}
		return value.Tuple(items), nil
	case *ast.SetLit:
		items, err := r.visitAll(n.Elts, s)
		if err != nil {
			return nil, err
		}
		return value.NewSet(items...)
	case *ast.DictLit:
		return r.dict(n, s)
	case *ast.Subscript:
		container, err := r.visit(n.Value, s)
		if err != nil {
			return nil, err
		}
		key, err := r.visit(n.Index, s)
		if err != nil {
			return nil, err
		}
		return value.GetItem(container, key)
	case *ast.Slice:
		return r.slice(n, s)
	case *ast.Attribute:
		if !r.ev.attributes {
			return nil, sxerrors.Unsupported(n.Kind().String(), n.Pos())
		}
		obj, err := r.visit(n.Value, s)
		if err != nil {
			return nil, err
		}
		return attribute(obj, n.Attr)
	case *ast.Lambda:
		return r.closure(n, s)
	case *ast.Comprehension, *ast.NamedExpr, *ast.Starred, *ast.FormattedString, *ast.Statement:
		return nil, sxerrors.Unsupported(n.Kind().String(), n.Pos())
	default:
		return nil, sxerrors.Unsupported(fmt.Sprintf("%T", node), node.Pos())
	}
}

func (r *run) visitAll(nodes []ast.Node, s *scope.Scope) ([]any, error) {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		v, err := r.visit(n, s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (r *run) binary(n *ast.BinaryOp, s *scope.Scope) (any, error) {
	fn, ok := operators.Binary(n.Op)
	if !ok {
		return nil, unknownOperator("binary", n.Op)
	}
	left, err := r.visit(n.Left, s)
	if err != nil {
		return nil, err
	}
	right, err := r.visit(n.Right, s)
	if err != nil {
		return nil, err
	}
	return fn(left, right)
}

func (r *run) unary(n *ast.UnaryOp, s *scope.Scope) (any, error) {
	fn, ok := operators.Unary(n.Op)
	if !ok {
		return nil, unknownOperator("unary", n.Op)
	}
	operand, err := r.visit(n.Operand, s)
	if err != nil {
		return nil, err
	}
	return fn(operand)
}

// boolean evaluates every operand before combining them. and/or do not
// short-circuit and always produce a bool.
func (r *run) boolean(n *ast.BoolOp, s *scope.Scope) (any, error) {
	fn, ok := operators.Boolean(n.Op)
	if !ok {
		return nil, unknownOperator("boolean", n.Op)
	}
	operands, err := r.visitAll(n.Values, s)
	if err != nil {
		return nil, err
	}
	return fn(operands), nil
}

// compare evaluates a comparison chain left to right, stopping at the first
// pair that does not hold. Later comparators are not evaluated.
func (r *run) compare(n *ast.Compare, s *scope.Scope) (any, error) {
	left, err := r.visit(n.Left, s)
	if err != nil {
		return nil, err
	}
	for i, op := range n.Ops {
		fn, ok := operators.Comparison(op)
		if !ok {
			return nil, unknownOperator("comparison", op)
		}
		right, err := r.visit(n.Comparators[i], s)
		if err != nil {
			return nil, err
		}
		holds, err := fn(left, right)
		if err != nil {
			return nil, err
		}
		if !holds {
			return false, nil
		}
		left = right
	}
	return true, nil
}

func (r *run) call(n *ast.Call, s *scope.Scope) (any, error) {
	callee, err := r.visit(n.Func, s)
	if err != nil {
		return nil, err
	}
	args, err := r.visitAll(n.Args, s)
	if err != nil {
		return nil, err
	}
	var kwargs map[string]any
	if len(n.Keywords) > 0 {
		kwargs = make(map[string]any, len(n.Keywords))
		for _, kw := range n.Keywords {
			v, err := r.visit(kw.Value, s)
			if err != nil {
				return nil, err
			}
			kwargs[kw.Name] = v
		}
	}

	fn, ok := value.FromGo(callee).(value.Callable)
	if !ok {
		return nil, sxerrors.Newf(sxerrors.KindNotCallable, "'%s' object is not callable", value.TypeName(value.FromGo(callee)))
	}
	result, err := fn.Call(r.ctx, args, kwargs)
	if err != nil {
		return nil, callError(fn, err)
	}
	return result, nil
}

// callError classifies an error returned by a callable. Errors from this
// module keep their kind; anything else came from host code.
func callError(fn value.Callable, err error) error {
	var evalErr *sxerrors.EvalError
	if errors.As(err, &evalErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return sxerrors.Wrap(sxerrors.KindCanceled, err, "evaluation canceled: "+err.Error())
	}
	return sxerrors.Wrap(sxerrors.KindCallFailed, err, fmt.Sprintf("%s() failed: %v", fn.Name(), err))
}

// dict builds a dict display. A repeated key keeps its first position and
// takes the last value.
func (r *run) dict(n *ast.DictLit, s *scope.Scope) (any, error) {
	d := value.NewDict()
	for i, keyNode := range n.Keys {
		if n.Values[i] == nil {
			// **mapping unpacking is stored as a Starred key with no value.
			return nil, sxerrors.Unsupported(keyNode.Kind().String(), keyNode.Pos())
		}
		k, err := r.visit(keyNode, s)
		if err != nil {
			return nil, err
		}
		v, err := r.visit(n.Values[i], s)
		if err != nil {
			return nil, err
		}
		if err := d.Set(k, v); err != nil {
			return nil, err
		}
	}
	return d, nil
}

const (
	hasLower = 1 << iota
	hasUpper
	hasStep
)

// slice builds a slice value. Each combination of present bounds is handled
// separately; absent bounds are None.
func (r *run) slice(n *ast.Slice, s *scope.Scope) (any, error) {
	shape := 0
	if n.Lower != nil {
		shape |= hasLower
	}
	if n.Upper != nil {
		shape |= hasUpper
	}
	if n.Step != nil {
		shape |= hasStep
	}

	switch shape {
	case 0:
		return value.NewSlice(nil, nil, nil)

	case hasLower:
		lower, err := r.visit(n.Lower, s)
		if err != nil {
			return nil, err
		}
		return value.NewSlice(lower, nil, nil)

	case hasUpper:
		upper, err := r.visit(n.Upper, s)
		if err != nil {
			return nil, err
		}
		return value.NewSlice(nil, upper, nil)

	case hasStep:
		step, err := r.visit(n.Step, s)
		if err != nil {
			return nil, err
		}
		return value.NewSlice(nil, nil, step)

	case hasLower | hasUpper:
		bounds, err := r.visitAll([]ast.Node{n.Lower, n.Upper}, s)
		if err != nil {
			return nil, err
		}
		return value.NewSlice(bounds[0], bounds[1], nil)

	case hasLower | hasStep:
		bounds, err := r.visitAll([]ast.Node{n.Lower, n.Step}, s)
		if err != nil {
			return nil, err
		}
		return value.NewSlice(bounds[0], nil, bounds[1])

	case hasUpper | hasStep:
		bounds, err := r.visitAll([]ast.Node{n.Upper, n.Step}, s)
		if err != nil {
			return nil, err
		}
		return value.NewSlice(nil, bounds[0], bounds[1])

	default:
		bounds, err := r.visitAll([]ast.Node{n.Lower, n.Upper, n.Step}, s)
		if err != nil {
			return nil, err
		}
		return value.NewSlice(bounds[0], bounds[1], bounds[2])
	}
}

func unknownOperator(class string, op fmt.Stringer) error {
	return sxerrors.Newf(sxerrors.KindUnsupportedNode, "unknown %s operator %s", class, op)
}
