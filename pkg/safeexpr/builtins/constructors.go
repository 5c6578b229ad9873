package builtins

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	sxerrors "github.com/randalmurphal/safeexpr/pkg/safeexpr/errors"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/value"
)

func boolFn(_ context.Context, args []any, kwargs map[string]any) (any, error) {
	if err := noKeywords("bool", kwargs); err != nil {
		return nil, err
	}
	a, err := bindArgs("bool", args, nil, 0, "x")
	if err != nil {
		return nil, err
	}
	if a[0] == unset {
		return false, nil
	}
	return value.Truthy(a[0]), nil
}

func intFn(_ context.Context, args []any, kwargs map[string]any) (any, error) {
	a, err := bindArgs("int", args, kwargs, 0, "x", "base")
	if err != nil {
		return nil, err
	}
	if a[0] == unset {
		if a[1] != unset {
			return nil, sxerrors.New(sxerrors.KindTypeMismatch, "int() missing string argument")
		}
		return int64(0), nil
	}

	x := value.FromGo(a[0])
	if a[1] != unset {
		base, err := intArg(a[1])
		if err != nil {
			return nil, err
		}
		s, ok := x.(string)
		if !ok {
			return nil, sxerrors.New(sxerrors.KindTypeMismatch, "int() can't convert non-string with explicit base")
		}
		if base != 0 && (base < 2 || base > 36) {
			return nil, sxerrors.New(sxerrors.KindInvalidArgument, "int() base must be >= 2 and <= 36, or 0")
		}
		return parseInt(s, int(base))
	}

	switch v := x.(type) {
	case bool, int64:
		n, _ := value.AsInt(v)
		return n, nil
	case float64:
		n, ok := value.FloatToInt(v)
		if !ok {
			return nil, sxerrors.Newf(sxerrors.KindInvalidArgument, "cannot convert float %s to integer", value.FormatFloat(v))
		}
		return n, nil
	case string:
		return parseInt(v, 10)
	default:
		return nil, sxerrors.Newf(sxerrors.KindTypeMismatch,
			"int() argument must be a string or a number, not '%s'", value.TypeName(x))
	}
}

func parseInt(s string, base int) (any, error) {
	text := strings.TrimSpace(s)
	digits := text
	if strings.Contains(digits, "_") {
		if strings.HasPrefix(digits, "_") || strings.HasSuffix(digits, "_") || strings.Contains(digits, "__") {
			return nil, invalidInt(s, base)
		}
		digits = strings.ReplaceAll(digits, "_", "")
	}
	n, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return nil, sxerrors.Newf(sxerrors.KindArithmetic, "int() literal %s is too large", value.Repr(s))
		}
		return nil, invalidInt(s, base)
	}
	return n, nil
}

func invalidInt(s string, base int) error {
	return sxerrors.Newf(sxerrors.KindInvalidArgument,
		"invalid literal for int() with base %d: %s", base, value.Repr(s))
}

func floatFn(_ context.Context, args []any, kwargs map[string]any) (any, error) {
	if err := noKeywords("float", kwargs); err != nil {
		return nil, err
	}
	a, err := bindArgs("float", args, nil, 0, "x")
	if err != nil {
		return nil, err
	}
	if a[0] == unset {
		return 0.0, nil
	}

	x := value.FromGo(a[0])
	if f, ok := value.AsFloat(x); ok {
		return f, nil
	}
	s, ok := x.(string)
	if !ok {
		return nil, sxerrors.Newf(sxerrors.KindTypeMismatch,
			"float() argument must be a string or a real number, not '%s'", value.TypeName(x))
	}

	text := strings.TrimSpace(s)
	switch strings.ToLower(strings.TrimLeft(text, "+-")) {
	case "inf", "infinity":
		if strings.HasPrefix(text, "-") {
			return math.Inf(-1), nil
		}
		return math.Inf(1), nil
	case "nan":
		return math.NaN(), nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return f, nil
		}
		return nil, sxerrors.Newf(sxerrors.KindInvalidArgument, "could not convert string to float: %s", value.Repr(s))
	}
	return f, nil
}

func strFn(_ context.Context, args []any, kwargs map[string]any) (any, error) {
	if err := noKeywords("str", kwargs); err != nil {
		return nil, err
	}
	a, err := bindArgs("str", args, nil, 0, "object")
	if err != nil {
		return nil, err
	}
	if a[0] == unset {
		return "", nil
	}
	return value.Str(a[0]), nil
}

// iterableArg returns the items of an optional iterable argument.
func iterableArg(fn string, args []any, kwargs map[string]any) ([]any, error) {
	if err := noKeywords(fn, kwargs); err != nil {
		return nil, err
	}
	a, err := bindArgs(fn, args, nil, 0, "iterable")
	if err != nil {
		return nil, err
	}
	if a[0] == unset {
		return []any{}, nil
	}
	return value.Iterate(a[0])
}

func listFn(_ context.Context, args []any, kwargs map[string]any) (any, error) {
	items, err := iterableArg("list", args, kwargs)
	if err != nil {
		return nil, err
	}
	return value.List(items), nil
}

func tupleFn(_ context.Context, args []any, kwargs map[string]any) (any, error) {
	items, err := iterableArg("tuple", args, kwargs)
	if err != nil {
		return nil, err
	}
	return value.Tuple(items), nil
}

func setFn(_ context.Context, args []any, kwargs map[string]any) (any, error) {
	items, err := iterableArg("set", args, kwargs)
	if err != nil {
		return nil, err
	}
	return value.NewSet(items...)
}

func dictFn(_ context.Context, args []any, kwargs map[string]any) (any, error) {
	if len(args) > 1 {
		return nil, sxerrors.Newf(sxerrors.KindArityMismatch,
			"dict expected at most 1 argument, got %d", len(args))
	}

	d := value.NewDict()
	if len(args) == 1 {
		if err := update(d, args[0]); err != nil {
			return nil, err
		}
	}
	for _, k := range sortedKeys(kwargs) {
		if err := d.Set(k, kwargs[k]); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// update copies a mapping or a sequence of key/value pairs into d.
func update(d *value.Dict, src any) error {
	src = value.FromGo(src)
	if m, ok := src.(*value.Dict); ok {
		keys, values := m.Keys(), m.Values()
		for i, k := range keys {
			if err := d.Set(k, values[i]); err != nil {
				return err
			}
		}
		return nil
	}

	items, err := value.Iterate(src)
	if err != nil {
		return err
	}
	for i, item := range items {
		pair, err := value.Iterate(item)
		if err != nil {
			return sxerrors.Newf(sxerrors.KindTypeMismatch,
				"cannot convert dictionary update sequence element #%d to a sequence", i)
		}
		if len(pair) != 2 {
			return sxerrors.Newf(sxerrors.KindInvalidArgument,
				"dictionary update sequence element #%d has length %d; 2 is required", i, len(pair))
		}
		if err := d.Set(pair[0], pair[1]); err != nil {
			return err
		}
	}
	return nil
}
