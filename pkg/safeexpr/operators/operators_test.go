package operators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/safeexpr/pkg/safeexpr/ast"
	sxerrors "github.com/randalmurphal/safeexpr/pkg/safeexpr/errors"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/value"
)

func binaryOp(t *testing.T, op ast.BinaryOperator, l, r any) (any, error) {
	t.Helper()
	fn, ok := Binary(op)
	require.True(t, ok, "no implementation for %s", op)
	return fn(l, r)
}

func TestTablesAreComplete(t *testing.T) {
	for op := ast.Add; op <= ast.BitAnd; op++ {
		_, ok := Binary(op)
		assert.True(t, ok, "binary %s", op)
	}
	for op := ast.Invert; op <= ast.USub; op++ {
		_, ok := Unary(op)
		assert.True(t, ok, "unary %s", op)
	}
	for op := ast.And; op <= ast.Or; op++ {
		_, ok := Boolean(op)
		assert.True(t, ok, "boolean %s", op)
	}
	for op := ast.Eq; op <= ast.NotIn; op++ {
		_, ok := Comparison(op)
		assert.True(t, ok, "comparison %s", op)
	}

	_, ok := Binary(ast.BinaryOperator(99))
	assert.False(t, ok)
}

func TestBinary_Arithmetic(t *testing.T) {
	tests := []struct {
		op   ast.BinaryOperator
		l, r any
		want any
	}{
		{ast.Add, int64(1), int64(2), int64(3)},
		{ast.Add, int64(1), 0.5, 1.5},
		{ast.Add, true, true, int64(2)},
		{ast.Sub, int64(1), int64(3), int64(-2)},
		{ast.Mult, int64(6), int64(7), int64(42)},
		{ast.Div, int64(9), int64(2), 4.5},
		{ast.Div, int64(4), int64(2), 2.0},
		{ast.FloorDiv, int64(9), int64(2), int64(4)},
		{ast.FloorDiv, int64(-9), int64(2), int64(-5)},
		{ast.FloorDiv, 7.5, int64(2), 3.0},
		{ast.Mod, int64(-7), int64(3), int64(2)},
		{ast.Mod, int64(7), int64(-3), int64(-2)},
		{ast.Mod, -7.5, 2.0, 0.5},
		{ast.Pow, int64(2), int64(3), int64(8)},
		{ast.Pow, int64(2), int64(-1), 0.5},
		{ast.Pow, 4.0, 0.5, 2.0},
		{ast.Pow, int64(-2), int64(63), int64(math.MinInt64)},
		{ast.LShift, int64(1), int64(10), int64(1024)},
		{ast.RShift, int64(-16), int64(2), int64(-4)},
		{ast.RShift, int64(5), int64(100), int64(0)},
		{ast.BitOr, int64(5), int64(2), int64(7)},
		{ast.BitXor, int64(6), int64(3), int64(5)},
		{ast.BitAnd, int64(6), int64(3), int64(2)},
		{ast.BitOr, true, false, true},
		{ast.BitAnd, true, false, false},
	}

	for _, tt := range tests {
		t.Run(value.Repr(tt.l)+" "+tt.op.String()+" "+value.Repr(tt.r), func(t *testing.T) {
			got, err := binaryOp(t, tt.op, tt.l, tt.r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBinary_ArithmeticErrors(t *testing.T) {
	tests := []struct {
		op   ast.BinaryOperator
		l, r any
		kind sxerrors.Kind
	}{
		{ast.Add, int64(math.MaxInt64), int64(1), sxerrors.KindArithmetic},
		{ast.Sub, int64(math.MinInt64), int64(1), sxerrors.KindArithmetic},
		{ast.Mult, int64(math.MaxInt64), int64(2), sxerrors.KindArithmetic},
		{ast.Pow, int64(10), int64(19), sxerrors.KindArithmetic},
		{ast.Pow, int64(0), int64(-1), sxerrors.KindArithmetic},
		{ast.Pow, -8.0, 0.5, sxerrors.KindArithmetic},
		{ast.Pow, 10.0, 400.0, sxerrors.KindArithmetic},
		{ast.Div, int64(1), int64(0), sxerrors.KindArithmetic},
		{ast.FloorDiv, int64(1), int64(0), sxerrors.KindArithmetic},
		{ast.FloorDiv, int64(math.MinInt64), int64(-1), sxerrors.KindArithmetic},
		{ast.Mod, 1.0, 0.0, sxerrors.KindArithmetic},
		{ast.LShift, int64(1), int64(-1), sxerrors.KindArithmetic},
		{ast.LShift, int64(1), int64(63), sxerrors.KindArithmetic},
		{ast.Add, int64(1), "a", sxerrors.KindTypeMismatch},
		{ast.Sub, "a", "b", sxerrors.KindTypeMismatch},
		{ast.Div, "a", int64(1), sxerrors.KindTypeMismatch},
		{ast.Mult, "a", 2.0, sxerrors.KindTypeMismatch},
		{ast.LShift, 1.0, int64(1), sxerrors.KindTypeMismatch},
		{ast.BitOr, int64(1), 1.0, sxerrors.KindTypeMismatch},
		{ast.MatMult, int64(1), int64(2), sxerrors.KindTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(value.Repr(tt.l)+" "+tt.op.String()+" "+value.Repr(tt.r), func(t *testing.T) {
			_, err := binaryOp(t, tt.op, tt.l, tt.r)
			require.Error(t, err)
			assert.Equal(t, tt.kind, sxerrors.KindOf(err))
		})
	}

	_, err := binaryOp(t, ast.Add, map[string]any{}, int64(1))
	assert.Contains(t, err.Error(), "unsupported operand type(s) for +: 'dict' and 'int'")
}

func TestBinary_Sequences(t *testing.T) {
	got, err := binaryOp(t, ast.Add, "ab", "cd")
	require.NoError(t, err)
	assert.Equal(t, "abcd", got)

	got, err = binaryOp(t, ast.Add, value.List{int64(1)}, []any{2})
	require.NoError(t, err)
	assert.Equal(t, value.List{int64(1), 2}, got)

	got, err = binaryOp(t, ast.Mult, value.Tuple{int64(0)}, int64(3))
	require.NoError(t, err)
	assert.Equal(t, value.Tuple{int64(0), int64(0), int64(0)}, got)

	got, err = binaryOp(t, ast.Mult, int64(2), "ab")
	require.NoError(t, err)
	assert.Equal(t, "abab", got)

	got, err = binaryOp(t, ast.Mult, "ab", int64(-1))
	require.NoError(t, err)
	assert.Equal(t, "", got)

	_, err = binaryOp(t, ast.Add, value.List{}, value.Tuple{})
	assert.Equal(t, sxerrors.KindTypeMismatch, sxerrors.KindOf(err))

	_, err = binaryOp(t, ast.Mult, "x", int64(value.MaxSequenceLength+1))
	assert.Equal(t, sxerrors.KindInvalidArgument, sxerrors.KindOf(err))
}

func TestBinary_SetsAndDicts(t *testing.T) {
	a, _ := value.NewSet(int64(1), int64(2), int64(3))
	b, _ := value.NewSet(int64(2), int64(3), int64(4))

	tests := []struct {
		op   ast.BinaryOperator
		want []any
	}{
		{ast.BitOr, []any{int64(1), int64(2), int64(3), int64(4)}},
		{ast.BitAnd, []any{int64(2), int64(3)}},
		{ast.Sub, []any{int64(1)}},
		{ast.BitXor, []any{int64(1), int64(4)}},
	}
	for _, tt := range tests {
		got, err := binaryOp(t, tt.op, a, b)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.(*value.Set).Items(), tt.op.String())
	}

	merged, err := binaryOp(t, ast.BitOr,
		map[string]any{"a": 1, "b": 2},
		map[string]any{"b": 3, "c": 4})
	require.NoError(t, err)
	assert.Equal(t, "{'a': 1, 'b': 3, 'c': 4}", value.Repr(merged))
}

func TestBinary_MatMult(t *testing.T) {
	a := value.List{value.List{int64(1), int64(2)}, value.List{int64(3), int64(4)}}
	b := []any{[]any{5, 6}, []any{7, 8}}

	got, err := binaryOp(t, ast.MatMult, a, b)
	require.NoError(t, err)
	assert.Equal(t, "[[19, 22], [43, 50]]", value.Repr(got))

	_, err = binaryOp(t, ast.MatMult, a, value.List{value.List{int64(1)}})
	assert.Equal(t, sxerrors.KindInvalidArgument, sxerrors.KindOf(err))
}

func TestUnary(t *testing.T) {
	tests := []struct {
		op   ast.UnaryOperator
		in   any
		want any
	}{
		{ast.USub, int64(1), int64(-1)},
		{ast.USub, 1.5, -1.5},
		{ast.USub, true, int64(-1)},
		{ast.UAdd, false, int64(0)},
		{ast.Invert, int64(5), int64(-6)},
		{ast.Invert, true, int64(-2)},
		{ast.Not, true, false},
		{ast.Not, "", true},
		{ast.Not, value.List{}, true},
	}

	for _, tt := range tests {
		fn, ok := Unary(tt.op)
		require.True(t, ok)
		got, err := fn(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %s", tt.op, value.Repr(tt.in))
	}

	neg, _ := Unary(ast.USub)
	_, err := neg(int64(math.MinInt64))
	assert.Equal(t, sxerrors.KindArithmetic, sxerrors.KindOf(err))
	_, err = neg("a")
	assert.Contains(t, err.Error(), "bad operand type for unary -: 'str'")
}

func TestBoolean_EvaluatesEveryOperand(t *testing.T) {
	and, _ := Boolean(ast.And)
	or, _ := Boolean(ast.Or)

	assert.False(t, and([]any{true, false}))
	assert.True(t, and([]any{true, int64(1), "x"}))
	assert.True(t, and(nil))
	assert.True(t, or([]any{true, false}))
	assert.False(t, or([]any{int64(0), "", nil}))
	assert.False(t, or(nil))
}

func TestComparison(t *testing.T) {
	tests := []struct {
		op   ast.CmpOperator
		l, r any
		want bool
	}{
		{ast.Eq, int64(1), 1.0, true},
		{ast.NotEq, "a", "b", true},
		{ast.Lt, int64(1), int64(2), true},
		{ast.GtE, int64(2), int64(2), true},
		{ast.Gt, 1.5, int64(2), false},
		{ast.In, int64(5), value.Tuple{int64(1), int64(2), int64(5)}, true},
		{ast.NotIn, int64(5), value.Tuple{int64(1), int64(2), int64(4)}, true},
		{ast.In, "b", map[string]any{"b": 1}, true},
		{ast.Is, true, true, true},
		{ast.Is, nil, nil, true},
		{ast.IsNot, int64(1), nil, true},
	}

	for _, tt := range tests {
		fn, ok := Comparison(tt.op)
		require.True(t, ok)
		got, err := fn(tt.l, tt.r)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %s %s", value.Repr(tt.l), tt.op, value.Repr(tt.r))
	}

	lt, _ := Comparison(ast.Lt)
	_, err := lt(int64(1), "a")
	assert.Equal(t, sxerrors.KindTypeMismatch, sxerrors.KindOf(err))

	in, _ := Comparison(ast.In)
	_, err = in(int64(1), int64(2))
	assert.Equal(t, sxerrors.KindTypeMismatch, sxerrors.KindOf(err))
}
