package eval

import (
	"context"
	"slices"
	"sort"
	"strings"

	"github.com/randalmurphal/safeexpr/pkg/safeexpr/ast"
	sxerrors "github.com/randalmurphal/safeexpr/pkg/safeexpr/errors"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/scope"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/value"
)

// Closure is the value of a lambda expression. It holds the scope it was
// defined in and evaluates its body with the evaluator that created it.
//
// A Closure is immutable and may outlive the evaluation that created it.
type Closure struct {
	ev       *Evaluator
	params   []string
	defaults []any
	vararg   string
	body     ast.Node
	scope    *scope.Scope
}

// closure builds a Closure from a lambda. Defaults are evaluated now, in the
// defining scope.
func (r *run) closure(n *ast.Lambda, s *scope.Scope) (any, error) {
	defaults, err := r.visitAll(n.Defaults, s)
	if err != nil {
		return nil, err
	}
	return &Closure{
		ev:       r.ev,
		params:   slices.Clone(n.Params),
		defaults: defaults,
		vararg:   n.Vararg,
		body:     n.Body,
		scope:    s.Snapshot(),
	}, nil
}

// Name implements value.Callable.
func (c *Closure) Name() string { return "<lambda>" }

// Params returns the positional parameter names.
func (c *Closure) Params() []string { return slices.Clone(c.params) }

// Vararg returns the name bound to extra positional arguments, or "".
func (c *Closure) Vararg() string { return c.vararg }

// Body returns the lambda body.
func (c *Closure) Body() ast.Node { return c.body }

// Call binds the arguments and evaluates the body. When ctx belongs to a
// running evaluation the call continues it; otherwise a new run starts with
// the defining evaluator's limits.
func (c *Closure) Call(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
	frame, err := c.bind(args, kwargs)
	if err != nil {
		return nil, err
	}
	r := runFrom(ctx)
	if r == nil {
		r = c.ev.newRun(ctx)
	}
	return r.visit(c.body, c.scope.Child(frame))
}

func (c *Closure) bind(args []any, kwargs map[string]any) (map[string]any, error) {
	nparams := len(c.params)
	if len(args) > nparams && c.vararg == "" {
		return nil, sxerrors.Newf(sxerrors.KindArityMismatch,
			"%s() takes %d positional argument%s but %d %s given",
			c.Name(), nparams, plural(nparams), len(args), wereOrWas(len(args)))
	}

	frame := make(map[string]any, nparams+1)
	for i := 0; i < nparams && i < len(args); i++ {
		frame[c.params[i]] = args[i]
	}
	if c.vararg != "" {
		extra := value.Tuple{}
		if len(args) > nparams {
			extra = value.Tuple(slices.Clone(args[nparams:]))
		}
		frame[c.vararg] = extra
	}

	names := make([]string, 0, len(kwargs))
	for name := range kwargs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		i := slices.Index(c.params, name)
		if i < 0 {
			return nil, sxerrors.Newf(sxerrors.KindArityMismatch,
				"%s() got an unexpected keyword argument '%s'", c.Name(), name)
		}
		if i < len(args) {
			return nil, sxerrors.Newf(sxerrors.KindArityMismatch,
				"%s() got multiple values for argument '%s'", c.Name(), name)
		}
		frame[name] = kwargs[name]
	}

	firstDefault := nparams - len(c.defaults)
	var missing []string
	for i, p := range c.params {
		if _, ok := frame[p]; ok {
			continue
		}
		if i >= firstDefault {
			frame[p] = c.defaults[i-firstDefault]
			continue
		}
		missing = append(missing, "'"+p+"'")
	}
	if len(missing) > 0 {
		return nil, sxerrors.Newf(sxerrors.KindArityMismatch,
			"%s() missing %d required positional argument%s: %s",
			c.Name(), len(missing), plural(len(missing)), joinNames(missing))
	}
	return frame, nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

func wereOrWas(n int) string {
	if n == 1 {
		return "was"
	}
	return "were"
}

// joinNames formats 'a', 'a' and 'b', or 'a', 'b', and 'c'.
func joinNames(names []string) string {
	switch len(names) {
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}
