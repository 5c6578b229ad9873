// Package operators holds the dispatch tables that map operator tags to
// their implementations.
//
// The tables are built once at package initialisation and are only reachable
// through the lookup functions, so they can be shared by concurrent
// evaluations without locking.
package operators

import (
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/ast"
	sxerrors "github.com/randalmurphal/safeexpr/pkg/safeexpr/errors"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/value"
)

// BinaryFunc implements a binary operator.
type BinaryFunc func(left, right any) (any, error)

// UnaryFunc implements a unary operator.
type UnaryFunc func(operand any) (any, error)

// BooleanFunc combines already evaluated operands.
type BooleanFunc func(operands []any) bool

// ComparisonFunc implements one link of a comparison chain.
type ComparisonFunc func(left, right any) (bool, error)

var binary = map[ast.BinaryOperator]BinaryFunc{
	ast.Add:      add,
	ast.Sub:      sub,
	ast.Mult:     mul,
	ast.MatMult:  matmul,
	ast.Div:      div,
	ast.FloorDiv: floorDiv,
	ast.Mod:      mod,
	ast.Pow:      pow,
	ast.LShift:   lshift,
	ast.RShift:   rshift,
	ast.BitOr:    bitOr,
	ast.BitXor:   bitXor,
	ast.BitAnd:   bitAnd,
}

var unary = map[ast.UnaryOperator]UnaryFunc{
	ast.Invert: invert,
	ast.Not:    not,
	ast.UAdd:   positive,
	ast.USub:   negative,
}

var boolean = map[ast.BoolOperator]BooleanFunc{
	ast.And: all,
	ast.Or:  anyOf,
}

var comparison = map[ast.CmpOperator]ComparisonFunc{
	ast.Eq:    eq,
	ast.NotEq: notEq,
	ast.Lt:    ordered("<"),
	ast.LtE:   ordered("<="),
	ast.Gt:    ordered(">"),
	ast.GtE:   ordered(">="),
	ast.Is:    is,
	ast.IsNot: isNot,
	ast.In:    in,
	ast.NotIn: notIn,
}

// Binary returns the implementation of a binary operator.
func Binary(op ast.BinaryOperator) (BinaryFunc, bool) {
	fn, ok := binary[op]
	return fn, ok
}

// Unary returns the implementation of a unary operator.
func Unary(op ast.UnaryOperator) (UnaryFunc, bool) {
	fn, ok := unary[op]
	return fn, ok
}

// Boolean returns the combinator for and/or.
func Boolean(op ast.BoolOperator) (BooleanFunc, bool) {
	fn, ok := boolean[op]
	return fn, ok
}

// Comparison returns the implementation of a comparison operator.
func Comparison(op ast.CmpOperator) (ComparisonFunc, bool) {
	fn, ok := comparison[op]
	return fn, ok
}

func all(operands []any) bool {
	for _, v := range operands {
		if !value.Truthy(v) {
			return false
		}
	}
	return true
}

func anyOf(operands []any) bool {
	for _, v := range operands {
		if value.Truthy(v) {
			return true
		}
	}
	return false
}

func eq(l, r any) (bool, error)    { return value.Equal(l, r), nil }
func notEq(l, r any) (bool, error) { return !value.Equal(l, r), nil }
func is(l, r any) (bool, error)    { return value.Identical(l, r), nil }
func isNot(l, r any) (bool, error) { return !value.Identical(l, r), nil }

func in(l, r any) (bool, error) {
	return value.Contains(r, l)
}

func notIn(l, r any) (bool, error) {
	found, err := value.Contains(r, l)
	return !found, err
}

func ordered(op string) ComparisonFunc {
	return func(l, r any) (bool, error) {
		return value.Order(op, l, r)
	}
}

func unsupported(op string, l, r any) error {
	return sxerrors.Newf(sxerrors.KindTypeMismatch,
		"unsupported operand type(s) for %s: '%s' and '%s'", op, value.TypeName(l), value.TypeName(r))
}

func badOperand(op string, v any) error {
	return sxerrors.Newf(sxerrors.KindTypeMismatch, "bad operand type for unary %s: '%s'", op, value.TypeName(v))
}

func arithmetic(format string, args ...any) error {
	return sxerrors.Newf(sxerrors.KindArithmetic, format, args...)
}
