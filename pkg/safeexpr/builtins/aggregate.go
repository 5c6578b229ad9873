package builtins

import (
	"context"
	"math"

	"github.com/randalmurphal/safeexpr/pkg/safeexpr/ast"
	sxerrors "github.com/randalmurphal/safeexpr/pkg/safeexpr/errors"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/operators"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/value"
)

func lenFn(_ context.Context, args []any, kwargs map[string]any) (any, error) {
	if err := noKeywords("len", kwargs); err != nil {
		return nil, err
	}
	a, err := bindArgs("len", args, nil, 1, "obj")
	if err != nil {
		return nil, err
	}
	n, err := value.Length(a[0])
	if err != nil {
		return nil, err
	}
	return int64(n), nil
}

func sumFn(_ context.Context, args []any, kwargs map[string]any) (any, error) {
	a, err := bindArgs("sum", args, kwargs, 1, "iterable", "start")
	if err != nil {
		return nil, err
	}
	var acc any = int64(0)
	if a[1] != unset {
		acc = value.FromGo(a[1])
	}
	if _, ok := acc.(string); ok {
		return nil, sxerrors.New(sxerrors.KindTypeMismatch, "sum() can't sum strings [use ''.join(seq) instead]")
	}

	items, err := value.Iterate(a[0])
	if err != nil {
		return nil, err
	}
	add, _ := operators.Binary(ast.Add)
	for _, item := range items {
		if acc, err = add(acc, item); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

func minFn(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
	return extreme(ctx, "min", "<", args, kwargs)
}

func maxFn(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
	return extreme(ctx, "max", ">", args, kwargs)
}

// extreme implements min and max. op is the comparison a candidate must win
// to replace the current best, so the first of several equal items is kept.
func extreme(ctx context.Context, fn, op string, args []any, kwargs map[string]any) (any, error) {
	opts, err := bindArgs(fn, nil, kwargs, 0, "key", "default")
	if err != nil {
		return nil, err
	}

	var items []any
	switch len(args) {
	case 0:
		return nil, sxerrors.Newf(sxerrors.KindArityMismatch, "%s expected at least 1 argument, got 0", fn)
	case 1:
		if items, err = value.Iterate(args[0]); err != nil {
			return nil, err
		}
	default:
		if opts[1] != unset {
			return nil, sxerrors.Newf(sxerrors.KindTypeMismatch,
				"Cannot specify a default for %s() with multiple positional arguments", fn)
		}
		items = args
	}

	if len(items) == 0 {
		if opts[1] != unset {
			return opts[1], nil
		}
		return nil, sxerrors.Newf(sxerrors.KindInvalidArgument, "%s() arg is an empty sequence", fn)
	}

	keys, err := sortKeys(ctx, items, opts[0])
	if err != nil {
		return nil, err
	}
	best := 0
	for i := 1; i < len(items); i++ {
		wins, err := value.Order(op, keys[i], keys[best])
		if err != nil {
			return nil, err
		}
		if wins {
			best = i
		}
	}
	return value.FromGo(items[best]), nil
}

func allFn(_ context.Context, args []any, kwargs map[string]any) (any, error) {
	items, err := truthArg("all", args, kwargs)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if !value.Truthy(item) {
			return false, nil
		}
	}
	return true, nil
}

func anyFn(_ context.Context, args []any, kwargs map[string]any) (any, error) {
	items, err := truthArg("any", args, kwargs)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if value.Truthy(item) {
			return true, nil
		}
	}
	return false, nil
}

func truthArg(fn string, args []any, kwargs map[string]any) ([]any, error) {
	if err := noKeywords(fn, kwargs); err != nil {
		return nil, err
	}
	a, err := bindArgs(fn, args, nil, 1, "iterable")
	if err != nil {
		return nil, err
	}
	return value.Iterate(a[0])
}

func absFn(_ context.Context, args []any, kwargs map[string]any) (any, error) {
	if err := noKeywords("abs", kwargs); err != nil {
		return nil, err
	}
	a, err := bindArgs("abs", args, nil, 1, "x")
	if err != nil {
		return nil, err
	}
	x := value.FromGo(a[0])
	if n, ok := value.AsInt(x); ok {
		if n == math.MinInt64 {
			return nil, sxerrors.Newf(sxerrors.KindArithmetic, "integer overflow in abs(%d)", n)
		}
		if n < 0 {
			return -n, nil
		}
		return n, nil
	}
	if f, ok := x.(float64); ok {
		return math.Abs(f), nil
	}
	return nil, sxerrors.Newf(sxerrors.KindTypeMismatch, "bad operand type for abs(): '%s'", value.TypeName(x))
}
