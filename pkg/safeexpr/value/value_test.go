package value

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sxerrors "github.com/randalmurphal/safeexpr/pkg/safeexpr/errors"
)

func TestFromGo_Scalars(t *testing.T) {
	type status string

	tests := []struct {
		name string
		in   any
		want any
	}{
		{"int", 5, int64(5)},
		{"int32", int32(-3), int64(-3)},
		{"uint8", uint8(200), int64(200)},
		{"huge uint64", uint64(math.MaxUint64), float64(math.MaxUint64)},
		{"float32", float32(0.5), 0.5},
		{"named string", status("active"), "active"},
		{"nil pointer", (*int)(nil), nil},
		{"string", "x", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromGo(tt.in))
		})
	}
}

func TestFromGo_SharesBackingArray(t *testing.T) {
	raw := []any{1, map[string]any{"a": 1}}
	list, ok := FromGo(raw).(List)
	require.True(t, ok)

	// Elements stay raw until read.
	assert.Equal(t, 1, list[0])

	items, err := Iterate(list)
	require.NoError(t, err)
	assert.Equal(t, int64(1), items[0])
	assert.IsType(t, &Dict{}, items[1])

	// The caller's slice is untouched.
	assert.Equal(t, 1, raw[0])
}

func TestFromGo_Maps(t *testing.T) {
	d, ok := FromGo(map[string]any{"b": 2, "a": 1}).(*Dict)
	require.True(t, ok)
	assert.Equal(t, []any{"a", "b"}, d.Keys())

	v, found, err := d.Get("b")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(2), v)

	typed, ok := FromGo(map[int]string{3: "c", 1: "a"}).(*Dict)
	require.True(t, ok)
	assert.Equal(t, []any{int64(1), int64(3)}, typed.Keys())
}

func TestToGo(t *testing.T) {
	d := NewDict()
	require.NoError(t, d.Set("xs", List{int64(1), Tuple{"a"}}))
	set, err := NewSet(int64(1), int64(2))
	require.NoError(t, err)
	require.NoError(t, d.Set("s", set))

	got := ToGo(d)
	assert.Equal(t, map[string]any{
		"xs": []any{int64(1), []any{"a"}},
		"s":  []any{int64(1), int64(2)},
	}, got)

	mixed := NewDict()
	require.NoError(t, mixed.Set(int64(1), "one"))
	assert.Equal(t, map[any]any{int64(1): "one"}, ToGo(mixed))
}

func TestTruthy(t *testing.T) {
	falsy := []any{nil, false, int64(0), 0.0, "", List{}, Tuple{}, NewDict(), 0, []any{}}
	for _, v := range falsy {
		assert.False(t, Truthy(v), "%#v", v)
	}
	truthy := []any{true, int64(-1), 0.1, "x", List{nil}, Tuple{int64(0)}, 7}
	for _, v := range truthy {
		assert.True(t, Truthy(v), "%#v", v)
	}
}

func TestHashKey_NumericCollisions(t *testing.T) {
	d := NewDict()
	require.NoError(t, d.Set(int64(1), "int"))
	require.NoError(t, d.Set(1.0, "float"))
	require.NoError(t, d.Set(true, "bool"))

	assert.Equal(t, 1, d.Len())
	v, _, err := d.Get(int64(1))
	require.NoError(t, err)
	assert.Equal(t, "bool", v)
	assert.Equal(t, []any{int64(1)}, d.Keys(), "first key is kept")
}

func TestHashKey_Unhashable(t *testing.T) {
	_, err := HashKey(List{int64(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unhashable type: 'list'")

	_, err = NewSet(Tuple{int64(1), List{}})
	assert.Equal(t, sxerrors.KindTypeMismatch, sxerrors.KindOf(err))

	key, err := HashKey(Tuple{int64(1), "a"})
	require.NoError(t, err)
	other, err := HashKey(Tuple{1.0, "a"})
	require.NoError(t, err)
	assert.Equal(t, key, other)
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b any
		want bool
	}{
		{int64(1), 1.0, true},
		{true, int64(1), true},
		{"a", "a", true},
		{"1", int64(1), false},
		{nil, nil, true},
		{nil, false, false},
		{List{int64(1), "x"}, []any{1, "x"}, true},
		{List{int64(1)}, Tuple{int64(1)}, false},
		{Tuple{int64(1), List{}}, Tuple{1.0, List{}}, true},
		{map[string]any{"a": 1}, map[string]any{"a": 1.0}, true},
		{map[string]any{"a": 1}, map[string]any{"a": 2}, false},
		{math.NaN(), math.NaN(), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Equal(tt.a, tt.b), "%s == %s", Repr(tt.a), Repr(tt.b))
	}

	s1, _ := NewSet(int64(1), int64(2))
	s2, _ := NewSet(int64(2), int64(1))
	assert.True(t, Equal(s1, s2))
}

func TestIdentical(t *testing.T) {
	xs := List{int64(1)}
	assert.True(t, Identical(xs, xs))
	assert.False(t, Identical(xs, List{int64(1)}))
	assert.True(t, Identical(nil, nil))
	assert.True(t, Identical(true, true))
	assert.False(t, Identical(int64(1), 1.0))

	d := NewDict()
	assert.True(t, Identical(d, d))
	assert.False(t, Identical(d, NewDict()))

	fn := NewBuiltin("f", nil)
	assert.True(t, Identical(fn, fn))
	assert.False(t, Identical(fn, NewBuiltin("f", nil)))
}

func TestOrder(t *testing.T) {
	tests := []struct {
		op   string
		a, b any
		want bool
	}{
		{"<", int64(1), int64(2), true},
		{"<", int64(2), 1.5, false},
		{"<=", int64(2), 2.0, true},
		{">", "b", "a", true},
		{">=", "a", "b", false},
		{"<", List{int64(1), int64(2)}, List{int64(1), int64(3)}, true},
		{"<", Tuple{int64(1)}, Tuple{int64(1), int64(0)}, true},
		{"<=", Tuple{int64(1)}, Tuple{int64(1)}, true},
		{"<", false, true, true},
		{"<", math.NaN(), 1.0, false},
	}
	for _, tt := range tests {
		got, err := Order(tt.op, tt.a, tt.b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %s %s", Repr(tt.a), tt.op, Repr(tt.b))
	}

	small, _ := NewSet(int64(1))
	big, _ := NewSet(int64(1), int64(2))
	lt, err := Order("<", small, big)
	require.NoError(t, err)
	assert.True(t, lt)
	lt, err = Order("<", big, big)
	require.NoError(t, err)
	assert.False(t, lt)

	_, err = Order("<", int64(1), "a")
	require.Error(t, err)
	assert.Equal(t, sxerrors.KindTypeMismatch, sxerrors.KindOf(err))
	assert.Contains(t, err.Error(), "'<' not supported between instances of 'int' and 'str'")
}

func TestContains(t *testing.T) {
	ok, err := Contains("hello", "ell")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Contains(Tuple{int64(1), int64(2), int64(5)}, int64(5))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Contains(map[string]any{"a": 1}, "a")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = Contains("hello", int64(1))
	assert.Equal(t, sxerrors.KindTypeMismatch, sxerrors.KindOf(err))

	_, err = Contains(int64(3), int64(1))
	assert.Contains(t, err.Error(), "argument of type 'int' is not iterable")
}

func TestSlice_Indices(t *testing.T) {
	six := List{int64(0), int64(1), int64(2), int64(3), int64(4), int64(5)}

	tests := []struct {
		name               string
		lower, upper, step any
		want               List
	}{
		{"all absent", nil, nil, nil, six},
		{"lower", int64(4), nil, nil, List{int64(4), int64(5)}},
		{"upper", nil, int64(4), nil, List{int64(0), int64(1), int64(2), int64(3)}},
		{"lower upper", int64(0), int64(3), nil, List{int64(0), int64(1), int64(2)}},
		{"step", nil, nil, int64(2), List{int64(0), int64(2), int64(4)}},
		{"lower step", int64(1), nil, int64(2), List{int64(1), int64(3), int64(5)}},
		{"upper step", nil, int64(4), int64(2), List{int64(0), int64(2)}},
		{"all present", int64(0), int64(4), int64(2), List{int64(0), int64(2)}},
		{"reverse", nil, nil, int64(-1), List{int64(5), int64(4), int64(3), int64(2), int64(1), int64(0)}},
		{"negative bounds", int64(-2), nil, nil, List{int64(4), int64(5)}},
		{"clamped", int64(-100), int64(100), nil, six},
		{"empty", int64(4), int64(2), nil, List{}},
		{"huge step", int64(1), nil, int64(math.MaxInt64), List{int64(1)}},
		{"huge negative step", nil, nil, int64(math.MinInt64), List{int64(5)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSlice(tt.lower, tt.upper, tt.step)
			require.NoError(t, err)
			got, err := GetItem(six, s)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("zero step", func(t *testing.T) {
		s, err := NewSlice(nil, nil, int64(0))
		require.NoError(t, err)
		_, err = GetItem(six, s)
		assert.Equal(t, sxerrors.KindInvalidArgument, sxerrors.KindOf(err))
	})

	t.Run("non-int bound", func(t *testing.T) {
		_, err := NewSlice("a", nil, nil)
		assert.Equal(t, sxerrors.KindTypeMismatch, sxerrors.KindOf(err))
	})
}

func TestGetItem(t *testing.T) {
	v, err := GetItem([]any{1, 2, 3}, int64(-1))
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	v, err = GetItem("héllo", int64(1))
	require.NoError(t, err)
	assert.Equal(t, "é", v)

	s, _ := NewSlice(nil, nil, int64(-1))
	v, err = GetItem("abc", s)
	require.NoError(t, err)
	assert.Equal(t, "cba", v)

	_, err = GetItem(List{}, int64(0))
	assert.Equal(t, sxerrors.KindIndexOutOfRange, sxerrors.KindOf(err))

	_, err = GetItem(List{}, "a")
	assert.Contains(t, err.Error(), "list indices must be integers or slices, not str")

	_, err = GetItem(map[string]any{"a": 1}, "b")
	assert.Equal(t, sxerrors.KindKeyNotFound, sxerrors.KindOf(err))
	assert.Contains(t, err.Error(), "key 'b' not found")

	_, err = GetItem(int64(1), int64(0))
	assert.Contains(t, err.Error(), "'int' object is not subscriptable")
}

func TestLength(t *testing.T) {
	n, err := Length("héllo")
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	n, err = Length(map[string]int{"a": 1, "b": 2})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = Length(int64(1))
	assert.Contains(t, err.Error(), "object of type 'int' has no len()")
}

func TestRepr(t *testing.T) {
	d := NewDict()
	require.NoError(t, d.Set("a", int64(1)))
	require.NoError(t, d.Set(Tuple{int64(1), int64(2)}, List{nil, true}))
	empty, _ := NewSet()
	s, _ := NewSet("x")

	tests := []struct {
		in   any
		want string
	}{
		{nil, "None"},
		{true, "True"},
		{int64(-7), "-7"},
		{1.0, "1.0"},
		{0.1, "0.1"},
		{1e16, "1e+16"},
		{1.5e-5, "1.5e-05"},
		{123456.789, "123456.789"},
		{math.Inf(-1), "-inf"},
		{"it's", `"it's"`},
		{"a\nb", `'a\nb'`},
		{`back\slash`, `'back\\slash'`},
		{"\x00", `'\x00'`},
		{List{int64(1), "a"}, "[1, 'a']"},
		{Tuple{int64(1)}, "(1,)"},
		{Tuple{}, "()"},
		{empty, "set()"},
		{s, "{'x'}"},
		{d, "{'a': 1, (1, 2): [None, True]}"},
		{NewBuiltin("len", nil), "<built-in function len>"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Repr(tt.in))
	}
	assert.Equal(t, "plain", Str("plain"))
	assert.Equal(t, "[1]", Str(List{int64(1)}))
}

func TestGoFunc(t *testing.T) {
	ctx := context.Background()

	t.Run("converts arguments and results", func(t *testing.T) {
		fn, err := NewGoFunc("add", func(a int, b float64) float64 { return float64(a) + b })
		require.NoError(t, err)
		got, err := fn.Call(ctx, []any{int64(2), int64(3)}, nil)
		require.NoError(t, err)
		assert.Equal(t, 5.0, got)
	})

	t.Run("variadic and slices", func(t *testing.T) {
		fn := FromGo(func(prefix string, xs ...int) []string {
			out := make([]string, len(xs))
			for i := range xs {
				out[i] = prefix
			}
			return out
		}).(Callable)
		got, err := fn.Call(ctx, []any{"p", int64(1), true}, nil)
		require.NoError(t, err)
		assert.Equal(t, List{"p", "p"}, got)
	})

	t.Run("context parameter", func(t *testing.T) {
		type key struct{}
		fn, err := NewGoFunc("lookup", func(ctx context.Context) any { return ctx.Value(key{}) })
		require.NoError(t, err)
		got, err := fn.Call(context.WithValue(ctx, key{}, "found"), nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "found", got)
	})

	t.Run("host error", func(t *testing.T) {
		boom := errors.New("boom")
		fn, err := NewGoFunc("fail", func() (int, error) { return 0, boom })
		require.NoError(t, err)
		_, err = fn.Call(ctx, nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, sxerrors.KindCallFailed, sxerrors.KindOf(err))
	})

	t.Run("panic", func(t *testing.T) {
		fn, err := NewGoFunc("explode", func() int { panic("bad") })
		require.NoError(t, err)
		_, err = fn.Call(ctx, nil, nil)
		assert.Equal(t, sxerrors.KindCallFailed, sxerrors.KindOf(err))
	})

	t.Run("arity and types", func(t *testing.T) {
		fn, err := NewGoFunc("one", func(s string) string { return s })
		require.NoError(t, err)

		_, err = fn.Call(ctx, nil, nil)
		assert.Equal(t, sxerrors.KindArityMismatch, sxerrors.KindOf(err))

		_, err = fn.Call(ctx, []any{int64(1)}, nil)
		assert.Equal(t, sxerrors.KindTypeMismatch, sxerrors.KindOf(err))

		_, err = fn.Call(ctx, []any{"a"}, map[string]any{"x": 1})
		assert.Equal(t, sxerrors.KindArityMismatch, sxerrors.KindOf(err))
	})

	t.Run("int overflow", func(t *testing.T) {
		fn, err := NewGoFunc("small", func(b int8) int8 { return b })
		require.NoError(t, err)
		_, err = fn.Call(ctx, []any{int64(1000)}, nil)
		assert.Equal(t, sxerrors.KindTypeMismatch, sxerrors.KindOf(err))
	})

	t.Run("not a function", func(t *testing.T) {
		_, err := NewGoFunc("x", 42)
		assert.Error(t, err)
	})
}
