package safeexpr_test

import (
	"errors"
	"maps"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/safeexpr/pkg/safeexpr"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/value"
)

func list(xs ...any) value.List { return value.List(xs) }

func mustEval(t *testing.T, text string, scope map[string]any) any {
	t.Helper()
	v, err := safeexpr.Eval(text, scope)
	require.NoError(t, err, text)
	return v
}

func TestAcceptance_Arithmetic(t *testing.T) {
	tests := []struct {
		expr string
		want any
	}{
		{"1 + 2", int64(3)},
		{"1 + 2 * 3", int64(7)},
		{"9 // 2", int64(4)},
		{"2 ** 3", int64(8)},
		{"-1", int64(-1)},
		{"not True", false},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, mustEval(t, tt.expr, nil))
		})
	}
}

func TestAcceptance_Comparisons(t *testing.T) {
	tests := []struct {
		expr string
		want bool
	}{
		{"1 < 2 < 3", true},
		{"3 < 2 < 1", false},
		{"5 in (1, 2, 5)", true},
		{"5 not in (1, 2, 4)", true},
		{"True is True", true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, mustEval(t, tt.expr, nil))
		})
	}
}

func TestAcceptance_ChainStopsAtFirstFalsePair(t *testing.T) {
	calls := 0
	track := func(x int) int {
		calls++
		return x
	}
	v, err := safeexpr.New(safeexpr.WithFunction("track", track)).
		Evaluate(t.Context(), "3 < 2 < track(1)", nil)
	require.NoError(t, err)
	assert.Equal(t, false, v)
	assert.Zero(t, calls)
}

func TestAcceptance_CallerValuesAreIdenticalToThemselves(t *testing.T) {
	scope := map[string]any{
		"m":  map[string]any{"a": 1},
		"xs": []int{1, 2},
		"ys": []any{1, 2},
		"f":  func() int { return 1 },
		"p":  &struct{ N int }{1},
	}
	tests := []struct {
		expr string
		want bool
	}{
		{"m is m", true},
		{"xs is xs", true},
		{"ys is ys", true},
		{"f is f", true},
		{"p is p", true},
		{"m is not m", false},
		{"(lambda: m)() is m", true},
		{"(lambda g: g is m)(m)", true},
		{"[m, m][0] is [m, m][1]", true},
		{"xs is [1, 2]", false},
		{"m is {'a': 1}", false},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, mustEval(t, tt.expr, scope))
		})
	}

	other := map[string]any{"m": scope["m"], "n": map[string]any{"a": 1}}
	assert.Equal(t, false, mustEval(t, "m is n", other), "equal maps are still distinct")
	assert.Equal(t, true, mustEval(t, "m == n", other))
}

func TestAcceptance_NameResolution(t *testing.T) {
	assert.Equal(t, int64(1), mustEval(t, "a", map[string]any{"a": 1}))

	_, err := safeexpr.Eval("a", map[string]any{})
	assert.ErrorIs(t, err, safeexpr.ErrUndefinedName)
	var evalErr *safeexpr.EvalError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "a", evalErr.Name)

	for _, falsy := range []any{0, false, "", nil} {
		got, err := safeexpr.Eval("x", map[string]any{"x": falsy})
		require.NoError(t, err)
		assert.Equal(t, value.FromGo(falsy), got)
	}

	// Falsy locals shadow globals too.
	assert.Equal(t, int64(0), mustEval(t, "len", map[string]any{"len": 0}))
	assert.Nil(t, mustEval(t, "sum", map[string]any{"sum": nil}))
}

func TestAcceptance_BoolOpsEvaluateEveryOperand(t *testing.T) {
	assert.Equal(t, false, mustEval(t, "True and False", nil))
	assert.Equal(t, true, mustEval(t, "True or False", nil))

	calls := 0
	touch := func() bool {
		calls++
		return true
	}
	engine := safeexpr.New(safeexpr.WithFunction("touch", touch))
	v, err := engine.Evaluate(t.Context(), "False and touch()", nil)
	require.NoError(t, err)
	assert.Equal(t, false, v)
	assert.Equal(t, 1, calls)

	_, err = safeexpr.Eval("True or missing", nil)
	assert.ErrorIs(t, err, safeexpr.ErrUndefinedName)
}

func TestAcceptance_Collections(t *testing.T) {
	assert.Equal(t, list(int64(1), int64(2), int64(3)), mustEval(t, "[1, 2, 3]", nil))
	assert.Equal(t, int64(1), mustEval(t, "{'a': 1, 'b': 2}['a']", nil))
}

func TestAcceptance_Slicing(t *testing.T) {
	scope := map[string]any{"xs": []any{0, 1, 2, 3, 4, 5}}
	tests := []struct {
		expr string
		want string
	}{
		{"xs[0:3]", "[0, 1, 2]"},
		{"xs[0:4:2]", "[0, 2]"},
		{"xs[:4]", "[0, 1, 2, 3]"},
		{"xs[4:]", "[4, 5]"},
		{"xs[-1]", "5"},
		{"xs[:]", "[0, 1, 2, 3, 4, 5]"},
		{"xs[::2]", "[0, 2, 4]"},
		{"xs[1::2]", "[1, 3, 5]"},
		{"xs[:4:3]", "[0, 3]"},
		{"xs[::-1]", "[5, 4, 3, 2, 1, 0]"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, value.Repr(mustEval(t, tt.expr, scope)))
		})
	}
}

func TestAcceptance_Lambdas(t *testing.T) {
	scope := map[string]any{"a": 10}
	tests := []struct {
		expr string
		want string
	}{
		{"(lambda x: x)(1)", "1"},
		{"(lambda x: x * a)(1)", "10"},
		{"list(map(lambda x: x * a, [1, 2, 3]))", "[10, 20, 30]"},
		{"list(filter(lambda x: x > a, [5, 15, 25]))", "[15, 25]"},
		{"sorted([3, 1, 2], key=lambda x: -x)", "[3, 2, 1]"},
		{"sorted(['bb', 'a', 'ccc'], key=lambda s: len(s) * a)", "['a', 'bb', 'ccc']"},
		{"(lambda *args: sum(args))(1, 2, 3)", "6"},
		{"(lambda x, y=a: x + y)(1)", "11"},
		{"(lambda f: f(2))(lambda n: n ** a)", "1024"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			assert.Equal(t, tt.want, value.Repr(mustEval(t, tt.expr, scope)))
		})
	}

	_, err := safeexpr.Eval("(lambda x: x)(1, 2)", nil)
	assert.ErrorIs(t, err, safeexpr.ErrArityMismatch)
}

func TestAcceptance_NestedEventAccess(t *testing.T) {
	event := map[string]any{
		"type": "user_added",
		"payload": map[string]any{
			"age":   16,
			"roles": []any{"member", "beta"},
		},
	}
	scope := map[string]any{"event": event}

	assert.Equal(t, true, mustEval(t,
		"event['type'] == 'user_added' and event['payload']['age'] < 18", scope))
	assert.Equal(t, int64(16), mustEval(t, "event['payload']['age']", scope))
	assert.Equal(t, "beta", mustEval(t, "event['payload']['roles'][-1]", scope))

	event["type"] = "user_removed"
	assert.Equal(t, false, mustEval(t,
		"event['type'] == 'user_added' and event['payload']['age'] < 18", scope))
}

func TestAcceptance_IdempotentAndNonMutating(t *testing.T) {
	items := []any{3, 1, 2}
	inner := map[string]any{"k": "v"}
	scope := map[string]any{"items": items, "inner": inner, "n": 2}
	before := maps.Clone(scope)

	const ok = "(sorted(items), list(reversed(items)), inner.get('k'), items[::-1], n)"
	first := mustEval(t, ok, scope)
	second := mustEval(t, ok, scope)
	assert.Equal(t, first, second)
	assert.Equal(t, "([1, 2, 3], [2, 1, 3], 'v', [2, 1, 3], 2)", value.Repr(first))

	assert.Equal(t, before, scope)
	assert.Equal(t, []any{3, 1, 2}, items)
	assert.Equal(t, map[string]any{"k": "v"}, inner)
}

func TestAcceptance_ErrorTaxonomy(t *testing.T) {
	t.Run("syntax errors propagate unchanged", func(t *testing.T) {
		_, err := safeexpr.Eval("1 +", nil)
		var synErr *safeexpr.SyntaxError
		require.ErrorAs(t, err, &synErr)
		assert.ErrorIs(t, err, safeexpr.ErrSyntax)
		assert.Equal(t, 1, synErr.Line)
	})

	tests := []struct {
		expr  string
		scope map[string]any
		want  error
	}{
		{"[x for x in y]", nil, safeexpr.ErrUnsupportedNode},
		{"(y := 1)", nil, safeexpr.ErrUnsupportedNode},
		{"x = 1", nil, safeexpr.ErrUnsupportedNode},
		{"import os", nil, safeexpr.ErrUnsupportedNode},
		{"f'{x}'", nil, safeexpr.ErrUnsupportedNode},
		{"missing + 1", nil, safeexpr.ErrUndefinedName},
		{"x()", map[string]any{"x": 1}, safeexpr.ErrNotCallable},
		{"{'a': 1} + 1", nil, safeexpr.ErrTypeMismatch},
		{"{}['k']", nil, safeexpr.ErrKeyNotFound},
		{"[1][5]", nil, safeexpr.ErrIndexOutOfRange},
		{"1 / 0", nil, safeexpr.ErrArithmetic},
		{"'abc'.__class__", nil, safeexpr.ErrUndefinedAttribute},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := safeexpr.Eval(tt.expr, tt.scope)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestAcceptance_ErrorsCarryNodeContext(t *testing.T) {
	_, err := safeexpr.Eval("1 + (2 * missing)", nil)
	var evalErr *safeexpr.EvalError
	require.ErrorAs(t, err, &evalErr)
	assert.Equal(t, "Name", evalErr.Node)
	assert.Equal(t, 9, evalErr.Pos)
	assert.Equal(t, safeexpr.KindOf(err), evalErr.Kind)
	assert.False(t, safeexpr.IsStatic(err))
}
