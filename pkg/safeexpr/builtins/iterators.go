package builtins

import (
	"context"
	"sort"

	sxerrors "github.com/randalmurphal/safeexpr/pkg/safeexpr/errors"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/value"
)

// iterateAll iterates every argument.
func iterateAll(args []any) ([][]any, int, error) {
	seqs := make([][]any, len(args))
	shortest := -1
	for i, arg := range args {
		items, err := value.Iterate(arg)
		if err != nil {
			return nil, 0, err
		}
		seqs[i] = items
		if shortest < 0 || len(items) < shortest {
			shortest = len(items)
		}
	}
	if shortest < 0 {
		shortest = 0
	}
	return seqs, shortest, nil
}

func mapFn(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
	if err := noKeywords("map", kwargs); err != nil {
		return nil, err
	}
	if len(args) < 2 {
		return nil, sxerrors.New(sxerrors.KindArityMismatch, "map() must have at least two arguments")
	}
	fn, err := callable(args[0])
	if err != nil {
		return nil, err
	}
	seqs, n, err := iterateAll(args[1:])
	if err != nil {
		return nil, err
	}

	out := make(value.List, n)
	for i := 0; i < n; i++ {
		callArgs := make([]any, len(seqs))
		for j, seq := range seqs {
			callArgs[j] = seq[i]
		}
		if out[i], err = fn.Call(ctx, callArgs, nil); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func filterFn(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
	if err := noKeywords("filter", kwargs); err != nil {
		return nil, err
	}
	a, err := bindArgs("filter", args, nil, 2, "function", "iterable")
	if err != nil {
		return nil, err
	}
	items, err := value.Iterate(a[1])
	if err != nil {
		return nil, err
	}

	var fn value.Callable
	if a[0] != nil {
		if fn, err = callable(a[0]); err != nil {
			return nil, err
		}
	}

	out := value.List{}
	for _, item := range items {
		keep := item
		if fn != nil {
			if keep, err = call(ctx, fn, item); err != nil {
				return nil, err
			}
		}
		if value.Truthy(keep) {
			out = append(out, item)
		}
	}
	return out, nil
}

func zipFn(_ context.Context, args []any, kwargs map[string]any) (any, error) {
	if err := noKeywords("zip", kwargs); err != nil {
		return nil, err
	}
	seqs, n, err := iterateAll(args)
	if err != nil {
		return nil, err
	}
	out := make(value.List, n)
	for i := range out {
		row := make(value.Tuple, len(seqs))
		for j, seq := range seqs {
			row[j] = seq[i]
		}
		out[i] = row
	}
	return out, nil
}

func rangeFn(_ context.Context, args []any, kwargs map[string]any) (any, error) {
	if err := noKeywords("range", kwargs); err != nil {
		return nil, err
	}
	if len(args) < 1 || len(args) > 3 {
		return nil, sxerrors.Newf(sxerrors.KindArityMismatch,
			"range expected 1 to 3 arguments, got %d", len(args))
	}

	bounds := make([]int64, len(args))
	for i, arg := range args {
		n, err := intArg(arg)
		if err != nil {
			return nil, err
		}
		bounds[i] = n
	}

	var start, stop, step int64 = 0, 0, 1
	switch len(bounds) {
	case 1:
		stop = bounds[0]
	case 2:
		start, stop = bounds[0], bounds[1]
	case 3:
		start, stop, step = bounds[0], bounds[1], bounds[2]
	}
	if step == 0 {
		return nil, sxerrors.New(sxerrors.KindInvalidArgument, "range() arg 3 must not be zero")
	}

	var count uint64
	switch {
	case step > 0 && start < stop:
		count = (uint64(stop)-uint64(start)-1)/uint64(step) + 1
	case step < 0 && start > stop:
		count = (uint64(start)-uint64(stop)-1)/(-uint64(step)) + 1
	}
	if count > value.MaxSequenceLength {
		return nil, sxerrors.Newf(sxerrors.KindInvalidArgument,
			"range() result is longer than %d elements", value.MaxSequenceLength)
	}

	out := make(value.List, count)
	for i := range out {
		out[i] = start + int64(i)*step
	}
	return out, nil
}

func sortedFn(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
	if len(args) != 1 {
		return nil, sxerrors.Newf(sxerrors.KindArityMismatch,
			"sorted expected 1 argument, got %d", len(args))
	}
	opts, err := bindArgs("sorted", nil, kwargs, 0, "key", "reverse")
	if err != nil {
		return nil, err
	}
	items, err := value.Iterate(args[0])
	if err != nil {
		return nil, err
	}
	keys, err := sortKeys(ctx, items, opts[0])
	if err != nil {
		return nil, err
	}
	reverse := opts[1] != unset && value.Truthy(opts[1])

	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	var sortErr error
	sort.SliceStable(order, func(i, j int) bool {
		a, b := keys[order[i]], keys[order[j]]
		if reverse {
			a, b = b, a
		}
		lt, err := value.Order("<", a, b)
		if err != nil && sortErr == nil {
			sortErr = err
		}
		return lt
	})
	if sortErr != nil {
		return nil, sortErr
	}

	out := make(value.List, len(items))
	for i, j := range order {
		out[i] = items[j]
	}
	return out, nil
}

// sortKeys applies an optional key function to every item.
func sortKeys(ctx context.Context, items []any, key any) ([]any, error) {
	if key == unset || key == nil {
		return items, nil
	}
	fn, err := callable(key)
	if err != nil {
		return nil, err
	}
	keys := make([]any, len(items))
	for i, item := range items {
		if keys[i], err = call(ctx, fn, item); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func reversedFn(_ context.Context, args []any, kwargs map[string]any) (any, error) {
	if err := noKeywords("reversed", kwargs); err != nil {
		return nil, err
	}
	a, err := bindArgs("reversed", args, nil, 1, "sequence")
	if err != nil {
		return nil, err
	}
	seq := value.FromGo(a[0])
	if _, ok := seq.(*value.Set); ok {
		return nil, sxerrors.New(sxerrors.KindTypeMismatch, "'set' object is not reversible")
	}
	items, err := value.Iterate(seq)
	if err != nil {
		return nil, sxerrors.Newf(sxerrors.KindTypeMismatch, "'%s' object is not reversible", value.TypeName(seq))
	}
	out := make(value.List, len(items))
	for i, item := range items {
		out[len(items)-1-i] = item
	}
	return out, nil
}

func reduceFn(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
	if err := noKeywords("reduce", kwargs); err != nil {
		return nil, err
	}
	a, err := bindArgs("reduce", args, nil, 2, "function", "iterable", "initial")
	if err != nil {
		return nil, err
	}
	fn, err := callable(a[0])
	if err != nil {
		return nil, err
	}
	items, err := value.Iterate(a[1])
	if err != nil {
		return nil, err
	}

	acc := a[2]
	if acc == unset {
		if len(items) == 0 {
			return nil, sxerrors.New(sxerrors.KindInvalidArgument, "reduce() of empty iterable with no initial value")
		}
		acc, items = items[0], items[1:]
	}
	for _, item := range items {
		if acc, err = call(ctx, fn, acc, item); err != nil {
			return nil, err
		}
	}
	return acc, nil
}
