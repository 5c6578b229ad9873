package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindString(t *testing.T) {
	for _, k := range Kinds() {
		assert.NotEqual(t, "Unknown", k.String(), "kind %d has no name", k)
	}
	assert.Equal(t, "Unknown", Kind(-1).String())
	assert.Equal(t, "Unknown", Kind(len(Kinds())).String())
}

func TestKindEvaluable(t *testing.T) {
	assert.True(t, KindLiteral.Evaluable())
	assert.True(t, KindLambda.Evaluable())
	assert.False(t, KindComprehension.Evaluable())
	assert.False(t, KindStatement.Evaluable())
}

func TestNodeString(t *testing.T) {
	one := &Literal{Value: int64(1)}
	x := &Name{Ident: "x"}

	tests := []struct {
		name string
		node Node
		want string
	}{
		{"none", &Literal{}, "None"},
		{"float", &Literal{Value: 2.0}, "2.0"},
		{"string", &Literal{Value: "a\"b"}, `"a\"b"`},
		{"binary", &BinaryOp{Op: Pow, Left: x, Right: one}, "(x ** 1)"},
		{"not", &UnaryOp{Op: Not, Operand: x}, "(not x)"},
		{"negate", &UnaryOp{Op: USub, Operand: one}, "(-1)"},
		{"chain", &Compare{Left: one, Ops: []CmpOperator{Lt, NotIn}, Comparators: []Node{x, x}}, "(1 < x not in x)"},
		{"single tuple", &TupleLit{Elts: []Node{one}}, "(1,)"},
		{"call", &Call{Func: x, Args: []Node{one}, Keywords: []Keyword{{Name: "k", Value: x}}}, "x(1, k=x)"},
		{"step slice", &Subscript{Value: x, Index: &Slice{Step: one}}, "x[::1]"},
		{"open slice", &Subscript{Value: x, Index: &Slice{Lower: one}}, "x[1:]"},
		{"lambda", &Lambda{Params: []string{"a", "b"}, Defaults: []Node{one}, Vararg: "rest", Body: x}, "(lambda a, b=1, *rest: x)"},
		{"dict unpack", &DictLit{Keys: []Node{&Starred{Value: x, Double: true}}, Values: []Node{nil}}, "{**x}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.node.String())
		})
	}
}

func TestInspect(t *testing.T) {
	// f(a, k=b[1:2])
	root := &Call{
		Func: &Name{Ident: "f"},
		Args: []Node{&Name{Ident: "a"}},
		Keywords: []Keyword{{Name: "k", Value: &Subscript{
			Value: &Name{Ident: "b"},
			Index: &Slice{Lower: &Literal{Value: int64(1)}, Upper: &Literal{Value: int64(2)}},
		}}},
	}

	var kinds []Kind
	Inspect(root, func(n Node) bool {
		kinds = append(kinds, n.Kind())
		return true
	})
	assert.Equal(t, []Kind{KindCall, KindName, KindName, KindSubscript, KindName, KindSlice, KindLiteral, KindLiteral}, kinds)

	var names int
	Inspect(root, func(n Node) bool {
		if n.Kind() == KindName {
			names++
		}
		return n.Kind() != KindSubscript
	})
	assert.Equal(t, 2, names)

	assert.Equal(t, 4, Depth(root))
}
