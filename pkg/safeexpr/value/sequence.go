package value

import (
	"math"
	"unicode/utf8"

	sxerrors "github.com/randalmurphal/safeexpr/pkg/safeexpr/errors"
)

// Slice is the value of a slice expression such as a[1:5:2].
// Absent bounds are nil; present bounds are int64.
type Slice struct {
	Lower any
	Upper any
	Step  any
}

// NewSlice validates the bounds of a slice. Each bound must be None or an int.
func NewSlice(lower, upper, step any) (*Slice, error) {
	bounds := [3]any{lower, upper, step}
	for i, b := range bounds {
		b = FromGo(b)
		if b == nil {
			bounds[i] = nil
			continue
		}
		n, ok := AsInt(b)
		if !ok {
			return nil, sxerrors.New(sxerrors.KindTypeMismatch, "slice indices must be integers or None")
		}
		bounds[i] = n
	}
	return &Slice{Lower: bounds[0], Upper: bounds[1], Step: bounds[2]}, nil
}

// Indices resolves the slice against a sequence of the given length and
// returns the selected positions in order.
func (s *Slice) Indices(length int) ([]int, error) {
	step := int64(1)
	if s.Step != nil {
		step = s.Step.(int64)
		if step == 0 {
			return nil, sxerrors.New(sxerrors.KindInvalidArgument, "slice step cannot be zero")
		}
		if step < -math.MaxInt64 {
			step = -math.MaxInt64
		}
	}

	n := int64(length)
	lowerBound, upperBound := int64(0), n
	if step < 0 {
		lowerBound, upperBound = -1, n-1
	}

	clamp := func(bound any, fallback int64) int64 {
		if bound == nil {
			return fallback
		}
		i := bound.(int64)
		if i < 0 {
			i += n
			if i < lowerBound {
				i = lowerBound
			}
		} else if i > upperBound {
			i = upperBound
		}
		return i
	}

	var start, stop int64
	if step > 0 {
		start = clamp(s.Lower, lowerBound)
		stop = clamp(s.Upper, upperBound)
	} else {
		start = clamp(s.Lower, upperBound)
		stop = clamp(s.Upper, lowerBound)
	}

	var count int64
	switch {
	case step > 0 && start < stop:
		count = (stop-start-1)/step + 1
	case step < 0 && start > stop:
		count = (start-stop-1)/(-step) + 1
	}

	out := make([]int, count)
	for k := range out {
		out[k] = int(start + int64(k)*step)
	}
	return out, nil
}

// Iterate returns the elements of an iterable value, converted.
// Strings iterate by code point and dicts by key.
func Iterate(v any) ([]any, error) {
	switch x := FromGo(v).(type) {
	case List:
		return convertAll(x), nil
	case Tuple:
		return convertAll(x), nil
	case string:
		out := make([]any, 0, len(x))
		for _, r := range x {
			out = append(out, string(r))
		}
		return out, nil
	case *Set:
		return x.Items(), nil
	case *Dict:
		return x.Keys(), nil
	default:
		return nil, sxerrors.Newf(sxerrors.KindTypeMismatch, "'%s' object is not iterable", TypeName(x))
	}
}

func convertAll(xs []any) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = FromGo(x)
	}
	return out
}

// Length returns len(v).
func Length(v any) (int, error) {
	switch x := FromGo(v).(type) {
	case List:
		return len(x), nil
	case Tuple:
		return len(x), nil
	case string:
		return utf8.RuneCountInString(x), nil
	case *Set:
		return x.Len(), nil
	case *Dict:
		return x.Len(), nil
	default:
		return 0, sxerrors.Newf(sxerrors.KindTypeMismatch, "object of type '%s' has no len()", TypeName(x))
	}
}

// GetItem evaluates container[key]. Sequences accept int indices (negative
// counts from the end) and slices; dicts accept any hashable key.
func GetItem(container, key any) (any, error) {
	container, key = FromGo(container), FromGo(key)
	switch c := container.(type) {
	case List:
		return sequenceItem(c, key, "list", func(xs []any) any { return List(xs) })
	case Tuple:
		return sequenceItem(c, key, "tuple", func(xs []any) any { return Tuple(xs) })
	case string:
		return stringItem(c, key)
	case *Dict:
		v, ok, err := c.Get(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, sxerrors.Newf(sxerrors.KindKeyNotFound, "key %s not found", Repr(key))
		}
		return v, nil
	default:
		return nil, sxerrors.Newf(sxerrors.KindTypeMismatch, "'%s' object is not subscriptable", TypeName(container))
	}
}

func sequenceItem(seq []any, key any, typeName string, wrap func([]any) any) (any, error) {
	if s, ok := key.(*Slice); ok {
		idx, err := s.Indices(len(seq))
		if err != nil {
			return nil, err
		}
		out := make([]any, len(idx))
		for i, j := range idx {
			out[i] = seq[j]
		}
		return wrap(out), nil
	}

	i, err := index(key, len(seq), typeName)
	if err != nil {
		return nil, err
	}
	return FromGo(seq[i]), nil
}

func stringItem(s string, key any) (any, error) {
	runes := []rune(s)
	if sl, ok := key.(*Slice); ok {
		idx, err := sl.Indices(len(runes))
		if err != nil {
			return nil, err
		}
		out := make([]rune, len(idx))
		for i, j := range idx {
			out[i] = runes[j]
		}
		return string(out), nil
	}

	i, err := index(key, len(runes), "string")
	if err != nil {
		return nil, err
	}
	return string(runes[i]), nil
}

func index(key any, length int, typeName string) (int, error) {
	n, ok := AsInt(key)
	if !ok {
		return 0, sxerrors.Newf(sxerrors.KindTypeMismatch,
			"%s indices must be integers or slices, not %s", typeName, TypeName(key))
	}
	if n < 0 {
		n += int64(length)
	}
	if n < 0 || n >= int64(length) {
		return 0, sxerrors.Newf(sxerrors.KindIndexOutOfRange, "%s index out of range", typeName)
	}
	return int(n), nil
}
