package builtins

import (
	"context"
	"slices"
	"sort"
	"strconv"

	sxerrors "github.com/randalmurphal/safeexpr/pkg/safeexpr/errors"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/value"
)

type unsetArg struct{}

// unset marks a parameter the caller did not supply.
var unset any = unsetArg{}

// bindArgs matches positional and keyword arguments against names. The first
// required names must be supplied; the rest default to unset.
func bindArgs(fn string, args []any, kwargs map[string]any, required int, names ...string) ([]any, error) {
	if len(args) > len(names) {
		if required == len(names) {
			return nil, sxerrors.Newf(sxerrors.KindArityMismatch,
				"%s() takes exactly %s (%d given)", fn, plural(len(names), "argument"), len(args))
		}
		return nil, sxerrors.Newf(sxerrors.KindArityMismatch,
			"%s() takes at most %s (%d given)", fn, plural(len(names), "argument"), len(args))
	}

	out := make([]any, len(names))
	for i := range out {
		out[i] = unset
	}
	copy(out, args)

	for _, name := range sortedKeys(kwargs) {
		i := slices.Index(names, name)
		if i < 0 {
			return nil, sxerrors.Newf(sxerrors.KindArityMismatch,
				"'%s' is an invalid keyword argument for %s()", name, fn)
		}
		if i < len(args) {
			return nil, sxerrors.Newf(sxerrors.KindArityMismatch,
				"argument for %s() given by name ('%s') and position (%d)", fn, name, i+1)
		}
		out[i] = kwargs[name]
	}

	for i := 0; i < required; i++ {
		if out[i] == unset {
			return nil, sxerrors.Newf(sxerrors.KindArityMismatch,
				"%s() missing required argument '%s' (pos %d)", fn, names[i], i+1)
		}
	}
	return out, nil
}

func noKeywords(fn string, kwargs map[string]any) error {
	if len(kwargs) > 0 {
		return sxerrors.Newf(sxerrors.KindArityMismatch, "%s() takes no keyword arguments", fn)
	}
	return nil
}

func plural(n int, word string) string {
	if n == 1 {
		return "one " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// callable asserts that fn can be called.
func callable(fn any) (value.Callable, error) {
	c, ok := value.FromGo(fn).(value.Callable)
	if !ok {
		return nil, sxerrors.Newf(sxerrors.KindNotCallable, "'%s' object is not callable", value.TypeName(fn))
	}
	return c, nil
}

func call(ctx context.Context, fn value.Callable, args ...any) (any, error) {
	return fn.Call(ctx, args, nil)
}

// intArg converts an argument that must be an integer.
func intArg(v any) (int64, error) {
	n, ok := value.AsInt(value.FromGo(v))
	if !ok {
		return 0, sxerrors.Newf(sxerrors.KindTypeMismatch,
			"'%s' object cannot be interpreted as an integer", value.TypeName(value.FromGo(v)))
	}
	return n, nil
}
