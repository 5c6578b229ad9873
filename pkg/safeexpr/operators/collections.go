package operators

import (
	"strings"

	sxerrors "github.com/randalmurphal/safeexpr/pkg/safeexpr/errors"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/value"
)

func concat(l, r any) (any, error) {
	switch x := l.(type) {
	case string:
		if y, ok := r.(string); ok {
			if len(x)+len(y) > value.MaxSequenceLength {
				return nil, tooLong()
			}
			return x + y, nil
		}
	case value.List:
		if y, ok := r.(value.List); ok {
			if err := checkLength(len(x) + len(y)); err != nil {
				return nil, err
			}
			return value.List(joinSlices(x, y)), nil
		}
	case value.Tuple:
		if y, ok := r.(value.Tuple); ok {
			if err := checkLength(len(x) + len(y)); err != nil {
				return nil, err
			}
			return value.Tuple(joinSlices(x, y)), nil
		}
	}
	return nil, unsupported("+", l, r)
}

func joinSlices(a, b []any) []any {
	out := make([]any, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// repeat evaluates seq * n for strings, lists and tuples.
func repeat(seq any, n int64, l, r any) (any, error) {
	if n < 0 {
		n = 0
	}
	switch s := seq.(type) {
	case string:
		if n > 0 && int64(len(s)) > int64(value.MaxSequenceLength)/n {
			return nil, tooLong()
		}
		return strings.Repeat(s, int(n)), nil
	case value.List:
		out, err := repeatSlice(s, n)
		if err != nil {
			return nil, err
		}
		return value.List(out), nil
	case value.Tuple:
		out, err := repeatSlice(s, n)
		if err != nil {
			return nil, err
		}
		return value.Tuple(out), nil
	}
	return nil, unsupported("*", l, r)
}

func repeatSlice(s []any, n int64) ([]any, error) {
	if n > 0 && int64(len(s)) > int64(value.MaxSequenceLength)/n {
		return nil, tooLong()
	}
	out := make([]any, 0, len(s)*int(n))
	for i := int64(0); i < n; i++ {
		out = append(out, s...)
	}
	return out, nil
}

func checkLength(n int) error {
	if n > value.MaxSequenceLength {
		return tooLong()
	}
	return nil
}

func tooLong() error {
	return sxerrors.Newf(sxerrors.KindInvalidArgument,
		"resulting sequence is longer than %d elements", value.MaxSequenceLength)
}

func setUnion(x, y *value.Set) (any, error) {
	return value.NewSet(append(x.Items(), y.Items()...)...)
}

func setIntersection(x, y *value.Set) (any, error) {
	var items []any
	for _, item := range x.Items() {
		if y.Has(item) {
			items = append(items, item)
		}
	}
	return value.NewSet(items...)
}

func setDifference(x, y *value.Set) (any, error) {
	var items []any
	for _, item := range x.Items() {
		if !y.Has(item) {
			items = append(items, item)
		}
	}
	return value.NewSet(items...)
}

func setSymmetricDifference(x, y *value.Set) (any, error) {
	var items []any
	for _, item := range x.Items() {
		if !y.Has(item) {
			items = append(items, item)
		}
	}
	for _, item := range y.Items() {
		if !x.Has(item) {
			items = append(items, item)
		}
	}
	return value.NewSet(items...)
}

func dictMerge(x, y *value.Dict) (any, error) {
	out := x.Copy()
	keys, values := y.Keys(), y.Values()
	for i, k := range keys {
		if err := out.Set(k, values[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// matmul multiplies two matrices given as sequences of equal-length numeric
// rows.
func matmul(l, r any) (any, error) {
	l, r = value.FromGo(l), value.FromGo(r)
	a, aok := matrix(l)
	b, bok := matrix(r)
	if !aok || !bok {
		return nil, unsupported("@", l, r)
	}
	if len(a) == 0 || len(b) == 0 || len(a[0]) != len(b) {
		return nil, sxerrors.Newf(sxerrors.KindInvalidArgument,
			"matmul: shapes %s and %s not aligned", shape(a), shape(b))
	}

	cols := len(b[0])
	out := make(value.List, len(a))
	for i, row := range a {
		res := make(value.List, cols)
		for j := 0; j < cols; j++ {
			var sum any = int64(0)
			for k, x := range row {
				p, err := mul(x, b[k][j])
				if err != nil {
					return nil, err
				}
				if sum, err = add(sum, p); err != nil {
					return nil, err
				}
			}
			res[j] = sum
		}
		out[i] = res
	}
	return out, nil
}

func matrix(v any) ([][]any, bool) {
	rows, err := sequenceItems(v)
	if err != nil {
		return nil, false
	}
	out := make([][]any, len(rows))
	for i, row := range rows {
		items, err := sequenceItems(row)
		if err != nil || (i > 0 && len(items) != len(out[0])) {
			return nil, false
		}
		for _, item := range items {
			if !value.IsNumber(item) {
				return nil, false
			}
		}
		out[i] = items
	}
	return out, true
}

func sequenceItems(v any) ([]any, error) {
	switch v.(type) {
	case value.List, value.Tuple:
		return value.Iterate(v)
	default:
		return nil, sxerrors.New(sxerrors.KindTypeMismatch, "not a sequence")
	}
}

func shape(m [][]any) string {
	cols := 0
	if len(m) > 0 {
		cols = len(m[0])
	}
	return value.Repr(value.Tuple{int64(len(m)), int64(cols)})
}
