package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/safeexpr/pkg/safeexpr/ast"
	sxerrors "github.com/randalmurphal/safeexpr/pkg/safeexpr/errors"
)

func TestParse_Precedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"2 ** 3 ** 2", "(2 ** (3 ** 2))"},
		{"-2 ** 2", "(-(2 ** 2))"},
		{"2 ** -1", "(2 ** (-1))"},
		{"a | b ^ c & d", "(a | (b ^ (c & d)))"},
		{"1 << 2 + 3", "(1 << (2 + 3))"},
		{"a // b % c @ d", "(((a // b) % c) @ d)"},
		{"~a.b", "(~a.b)"},
		{"not a == b", "(not (a == b))"},
		{"a and not b or c", "((a and (not b)) or c)"},
		{"a or b and c", "(a or (b and c))"},
		{"a and b and c", "(a and b and c)"},
		{"1 < 2 < 3", "(1 < 2 < 3)"},
		{"x not in y", "(x not in y)"},
		{"x is not None", "(x is not None)"},
		{"a if b else c if d else e", "(a if b else (c if d else e))"},
		{"a + b if c else d", "((a + b) if c else d)"},
		{"lambda x: x + 1", "(lambda x: (x + 1))"},
		{"f(x)(y)[0].z", "f(x)(y)[0].z"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, node.String())
		})
	}
}

func TestParse_Literals(t *testing.T) {
	tests := []struct {
		input string
		want  any
	}{
		{"42", int64(42)},
		{"1_000", int64(1000)},
		{"0x1F", int64(31)},
		{"0o17", int64(15)},
		{"0b101", int64(5)},
		{"0", int64(0)},
		{"00", int64(0)},
		{"1.5", 1.5},
		{".5", 0.5},
		{"5.", 5.0},
		{"1e3", 1000.0},
		{"2.5E-1", 0.25},
		{"'single'", "single"},
		{`"double"`, "double"},
		{`'it\'s'`, "it's"},
		{`"tab\there"`, "tab\there"},
		{`"\x41é\101"`, "Aé" + "A"},
		{`r"\d+"`, `\d+`},
		{`'''multi
line'''`, "multi\nline"},
		{`"a" 'b' "c"`, "abc"},
		{`"unknown \q"`, `unknown \q`},
		{"True", true},
		{"False", false},
		{"None", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node, err := Parse(tt.input)
			require.NoError(t, err)
			lit, ok := node.(*ast.Literal)
			require.True(t, ok, "expected literal, got %T", node)
			assert.Equal(t, tt.want, lit.Value)
		})
	}
}

func TestParse_Collections(t *testing.T) {
	tests := []struct {
		input string
		kind  ast.Kind
		want  string
	}{
		{"[]", ast.KindList, "[]"},
		{"[1, 2, 3,]", ast.KindList, "[1, 2, 3]"},
		{"()", ast.KindTuple, "()"},
		{"(1,)", ast.KindTuple, "(1,)"},
		{"1, 2", ast.KindTuple, "(1, 2)"},
		{"(1, 2, 5)", ast.KindTuple, "(1, 2, 5)"},
		{"{}", ast.KindDict, "{}"},
		{"{'a': 1, 'b': 2}", ast.KindDict, `{"a": 1, "b": 2}`},
		{"{1, 2}", ast.KindSet, "{1, 2}"},
		{"{**base, 'x': 1}", ast.KindDict, `{**base, "x": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, node.Kind())
			assert.Equal(t, tt.want, node.String())
		})
	}
}

func TestParse_Slices(t *testing.T) {
	tests := []struct {
		input string
		want  string
		lower bool
		upper bool
		step  bool
	}{
		{"a[:]", "a[:]", false, false, false},
		{"a[1:]", "a[1:]", true, false, false},
		{"a[:2]", "a[:2]", false, true, false},
		{"a[1:2]", "a[1:2]", true, true, false},
		{"a[::3]", "a[::3]", false, false, true},
		{"a[1::3]", "a[1::3]", true, false, true},
		{"a[:2:3]", "a[:2:3]", false, true, true},
		{"a[1:2:3]", "a[1:2:3]", true, true, true},
		{"a[::]", "a[:]", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, node.String())

			sub := node.(*ast.Subscript)
			slice, ok := sub.Index.(*ast.Slice)
			require.True(t, ok)
			assert.Equal(t, tt.lower, slice.Lower != nil)
			assert.Equal(t, tt.upper, slice.Upper != nil)
			assert.Equal(t, tt.step, slice.Step != nil)
		})
	}

	t.Run("tuple index", func(t *testing.T) {
		node, err := Parse("m[1, 2:]")
		require.NoError(t, err)
		sub := node.(*ast.Subscript)
		tup, ok := sub.Index.(*ast.TupleLit)
		require.True(t, ok)
		assert.Len(t, tup.Elts, 2)
	})
}

func TestParse_Calls(t *testing.T) {
	node, err := Parse("sorted(xs, key=lambda x: -x, reverse=True)")
	require.NoError(t, err)

	call, ok := node.(*ast.Call)
	require.True(t, ok)
	assert.Len(t, call.Args, 1)
	require.Len(t, call.Keywords, 2)
	assert.Equal(t, "key", call.Keywords[0].Name)
	assert.Equal(t, "reverse", call.Keywords[1].Name)
	assert.Equal(t, "sorted(xs, key=(lambda x: (-x)), reverse=True)", call.String())
}

func TestParse_Lambda(t *testing.T) {
	node, err := Parse("lambda a, b=2, *rest: a")
	require.NoError(t, err)

	lambda := node.(*ast.Lambda)
	assert.Equal(t, []string{"a", "b"}, lambda.Params)
	assert.Len(t, lambda.Defaults, 1)
	assert.Equal(t, "rest", lambda.Vararg)

	node, err = Parse("lambda: 0")
	require.NoError(t, err)
	assert.Empty(t, node.(*ast.Lambda).Params)
}

func TestParse_RejectedForms(t *testing.T) {
	tests := []struct {
		input string
		kind  ast.Kind
	}{
		{"[x for x in y]", ast.KindComprehension},
		{"{k: v for k, v in items if v}", ast.KindComprehension},
		{"{x for x in y}", ast.KindComprehension},
		{"(x for x in y)", ast.KindComprehension},
		{"(n := 10)", ast.KindNamedExpr},
		{"f'{x}'", ast.KindFormattedString},
		{"x = 1", ast.KindStatement},
		{"x += 1", ast.KindStatement},
		{"import os", ast.KindStatement},
		{"del x", ast.KindStatement},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			node, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, node.Kind())
		})
	}

	t.Run("generator argument", func(t *testing.T) {
		node, err := Parse("sum(x for x in y)")
		require.NoError(t, err)
		call := node.(*ast.Call)
		assert.Equal(t, ast.KindComprehension, call.Args[0].Kind())
	})

	t.Run("starred argument", func(t *testing.T) {
		node, err := Parse("f(*args, **kw)")
		require.NoError(t, err)
		call := node.(*ast.Call)
		require.Len(t, call.Args, 2)
		assert.False(t, call.Args[0].(*ast.Starred).Double)
		assert.True(t, call.Args[1].(*ast.Starred).Double)
	})
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
	}{
		{"", "empty expression"},
		{"1 +", "unexpected end of input"},
		{"(1, 2", "expected ','"},
		{"1 2", "unexpected '2'"},
		{"a + not b", "unexpected keyword 'not'"},
		{"x if y", "expected 'else'"},
		{"f(a=1, 2)", "positional argument follows keyword argument"},
		{"f(a=1, a=2)", "keyword argument repeated"},
		{"lambda a=1, b: 0", "non-default argument follows default argument"},
		{"lambda a, a: 0", "duplicate argument"},
		{"lambda *a, b: 0", "keyword-only lambda parameters"},
		{"lambda **kw: 0", "keyword argument collection"},
		{"x[]", "expected subscript"},
		{"a.if", "expected attribute name"},
		{"1 +\n2", "unexpected newline"},
		{"99999999999999999999", "too large"},
		{"012", "leading zeros"},
		{"1j", "complex literals"},
		{"b'x'", "bytes literals"},
		{"'open", "unterminated string literal"},
		{"'''open", "unterminated triple-quoted"},
		{"a $ b", "invalid character"},
		{"a)", "unmatched ')'"},
		{"f(x for x in y, 1)", "generator expression must be parenthesized"},
		{"(*a)", "cannot use starred expression here"},
		{`"\N{DASH}"`, "named Unicode escapes"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)

			var synErr *sxerrors.SyntaxError
			require.True(t, errors.As(err, &synErr), "expected SyntaxError, got %T: %v", err, err)
			assert.Contains(t, synErr.Msg, tt.message)
			assert.Equal(t, sxerrors.KindSyntax, sxerrors.KindOf(err))
		})
	}
}

func TestParse_ErrorPosition(t *testing.T) {
	_, err := Parse("a and (\n  b or )")
	var synErr *sxerrors.SyntaxError
	require.True(t, errors.As(err, &synErr))
	assert.Equal(t, 2, synErr.Line)
	assert.Equal(t, 8, synErr.Column)
}

func TestParse_Whitespace(t *testing.T) {
	tests := []string{
		"  1 + 2  ",
		"1 + 2 # trailing comment",
		"(1 +\n 2)",
		"1 + \\\n 2",
		"\n1 + 2\n",
	}
	for _, input := range tests {
		node, err := Parse(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, "(1 + 2)", node.String())
	}
}

func TestParse_MaxNesting(t *testing.T) {
	deep := strings.Repeat("(", 300) + "1" + strings.Repeat(")", 300)

	_, err := Parse(deep)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nested too deeply")

	_, err = Parse(deep, WithMaxNesting(5000))
	require.NoError(t, err)
}

func TestParse_Positions(t *testing.T) {
	node, err := Parse("a + b[1]")
	require.NoError(t, err)

	bin := node.(*ast.BinaryOp)
	assert.Equal(t, 2, bin.Pos())
	assert.Equal(t, 0, bin.Left.Pos())
	assert.Equal(t, 5, bin.Right.Pos())
}
