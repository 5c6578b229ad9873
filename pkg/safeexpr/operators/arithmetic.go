package operators

import (
	"math"

	"github.com/randalmurphal/safeexpr/pkg/safeexpr/value"
)

// numeric applies intOp when both operands are ints (or bools) and floatOp
// otherwise. ok is false when either operand is not a number.
func numeric(l, r any, intOp func(a, b int64) (any, error), floatOp func(a, b float64) (any, error)) (any, bool, error) {
	if !value.IsNumber(l) || !value.IsNumber(r) {
		return nil, false, nil
	}
	if a, ok := value.AsInt(l); ok {
		if b, ok := value.AsInt(r); ok {
			res, err := intOp(a, b)
			return res, true, err
		}
	}
	a, _ := value.AsFloat(l)
	b, _ := value.AsFloat(r)
	res, err := floatOp(a, b)
	return res, true, err
}

func add(l, r any) (any, error) {
	l, r = value.FromGo(l), value.FromGo(r)
	res, ok, err := numeric(l, r, addInt, func(a, b float64) (any, error) { return a + b, nil })
	if ok {
		return res, err
	}
	return concat(l, r)
}

func addInt(a, b int64) (any, error) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return nil, arithmetic("integer overflow in %d + %d", a, b)
	}
	return a + b, nil
}

func sub(l, r any) (any, error) {
	l, r = value.FromGo(l), value.FromGo(r)
	res, ok, err := numeric(l, r, subInt, func(a, b float64) (any, error) { return a - b, nil })
	if ok {
		return res, err
	}
	if x, ok := l.(*value.Set); ok {
		if y, ok := r.(*value.Set); ok {
			return setDifference(x, y)
		}
	}
	return nil, unsupported("-", l, r)
}

func subInt(a, b int64) (any, error) {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return nil, arithmetic("integer overflow in %d - %d", a, b)
	}
	return a - b, nil
}

func mul(l, r any) (any, error) {
	l, r = value.FromGo(l), value.FromGo(r)
	res, ok, err := numeric(l, r, mulInt, func(a, b float64) (any, error) { return a * b, nil })
	if ok {
		return res, err
	}
	if n, ok := value.AsInt(r); ok {
		return repeat(l, n, l, r)
	}
	if n, ok := value.AsInt(l); ok {
		return repeat(r, n, l, r)
	}
	return nil, unsupported("*", l, r)
}

func mulInt(a, b int64) (any, error) {
	if a == 0 || b == 0 {
		return int64(0), nil
	}
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return nil, arithmetic("integer overflow in %d * %d", a, b)
	}
	return c, nil
}

func div(l, r any) (any, error) {
	l, r = value.FromGo(l), value.FromGo(r)
	a, aok := value.AsFloat(l)
	b, bok := value.AsFloat(r)
	if !aok || !bok {
		return nil, unsupported("/", l, r)
	}
	if b == 0 {
		return nil, arithmetic("division by zero")
	}
	return a / b, nil
}

func floorDiv(l, r any) (any, error) {
	l, r = value.FromGo(l), value.FromGo(r)
	res, ok, err := numeric(l, r, floorDivInt, func(a, b float64) (any, error) {
		if b == 0 {
			return nil, arithmetic("float floor division by zero")
		}
		return math.Floor(a / b), nil
	})
	if !ok {
		return nil, unsupported("//", l, r)
	}
	return res, err
}

func floorDivInt(a, b int64) (any, error) {
	if b == 0 {
		return nil, arithmetic("integer division or modulo by zero")
	}
	if a == math.MinInt64 && b == -1 {
		return nil, arithmetic("integer overflow in %d // %d", a, b)
	}
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q, nil
}

func mod(l, r any) (any, error) {
	l, r = value.FromGo(l), value.FromGo(r)
	res, ok, err := numeric(l, r, modInt, func(a, b float64) (any, error) {
		if b == 0 {
			return nil, arithmetic("float modulo by zero")
		}
		m := math.Mod(a, b)
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return m, nil
	})
	if !ok {
		return nil, unsupported("%", l, r)
	}
	return res, err
}

func modInt(a, b int64) (any, error) {
	if b == 0 {
		return nil, arithmetic("integer division or modulo by zero")
	}
	m := a % b
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m, nil
}

func pow(l, r any) (any, error) {
	l, r = value.FromGo(l), value.FromGo(r)
	res, ok, err := numeric(l, r, powInt, powFloat)
	if !ok {
		return nil, unsupported("** or pow()", l, r)
	}
	return res, err
}

func powInt(base, exp int64) (any, error) {
	if exp < 0 {
		return powFloat(float64(base), float64(exp))
	}
	result := int64(1)
	b := base
	for e := exp; e > 0; e >>= 1 {
		if e&1 == 1 {
			next, err := mulInt(result, b)
			if err != nil {
				return nil, arithmetic("integer overflow in %d ** %d", base, exp)
			}
			result = next.(int64)
		}
		if e > 1 {
			next, err := mulInt(b, b)
			if err != nil {
				return nil, arithmetic("integer overflow in %d ** %d", base, exp)
			}
			b = next.(int64)
		}
	}
	return result, nil
}

func powFloat(base, exp float64) (any, error) {
	if base == 0 && exp < 0 {
		return nil, arithmetic("0.0 cannot be raised to a negative power")
	}
	if base < 0 && exp != math.Trunc(exp) {
		return nil, arithmetic("negative number cannot be raised to a fractional power")
	}
	res := math.Pow(base, exp)
	if math.IsInf(res, 0) && !math.IsInf(base, 0) && !math.IsInf(exp, 0) {
		return nil, arithmetic("numerical result out of range")
	}
	return res, nil
}

func shiftOperands(op string, l, r any) (int64, int64, error) {
	a, aok := value.AsInt(l)
	b, bok := value.AsInt(r)
	if !aok || !bok {
		return 0, 0, unsupported(op, l, r)
	}
	if b < 0 {
		return 0, 0, arithmetic("negative shift count")
	}
	return a, b, nil
}

func lshift(l, r any) (any, error) {
	l, r = value.FromGo(l), value.FromGo(r)
	a, b, err := shiftOperands("<<", l, r)
	if err != nil {
		return nil, err
	}
	if a == 0 {
		return int64(0), nil
	}
	if b >= 63 || (a<<b)>>b != a {
		return nil, arithmetic("integer overflow in %d << %d", a, b)
	}
	return a << b, nil
}

func rshift(l, r any) (any, error) {
	l, r = value.FromGo(l), value.FromGo(r)
	a, b, err := shiftOperands(">>", l, r)
	if err != nil {
		return nil, err
	}
	if b >= 63 {
		b = 63
	}
	return a >> b, nil
}

// bitwise applies op to two ints, keeping the result a bool when both
// operands are bools.
func bitwise(l, r any, op func(a, b int64) int64) (any, bool) {
	a, aok := value.AsInt(l)
	b, bok := value.AsInt(r)
	if !aok || !bok {
		return nil, false
	}
	res := op(a, b)
	_, lb := l.(bool)
	_, rb := r.(bool)
	if lb && rb {
		return res != 0, true
	}
	return res, true
}

func bitOr(l, r any) (any, error) {
	l, r = value.FromGo(l), value.FromGo(r)
	if res, ok := bitwise(l, r, func(a, b int64) int64 { return a | b }); ok {
		return res, nil
	}
	switch x := l.(type) {
	case *value.Set:
		if y, ok := r.(*value.Set); ok {
			return setUnion(x, y)
		}
	case *value.Dict:
		if y, ok := r.(*value.Dict); ok {
			return dictMerge(x, y)
		}
	}
	return nil, unsupported("|", l, r)
}

func bitXor(l, r any) (any, error) {
	l, r = value.FromGo(l), value.FromGo(r)
	if res, ok := bitwise(l, r, func(a, b int64) int64 { return a ^ b }); ok {
		return res, nil
	}
	if x, ok := l.(*value.Set); ok {
		if y, ok := r.(*value.Set); ok {
			return setSymmetricDifference(x, y)
		}
	}
	return nil, unsupported("^", l, r)
}

func bitAnd(l, r any) (any, error) {
	l, r = value.FromGo(l), value.FromGo(r)
	if res, ok := bitwise(l, r, func(a, b int64) int64 { return a & b }); ok {
		return res, nil
	}
	if x, ok := l.(*value.Set); ok {
		if y, ok := r.(*value.Set); ok {
			return setIntersection(x, y)
		}
	}
	return nil, unsupported("&", l, r)
}

func invert(v any) (any, error) {
	v = value.FromGo(v)
	n, ok := value.AsInt(v)
	if !ok {
		return nil, badOperand("~", v)
	}
	return ^n, nil
}

func not(v any) (any, error) {
	return !value.Truthy(v), nil
}

func positive(v any) (any, error) {
	v = value.FromGo(v)
	if n, ok := value.AsInt(v); ok {
		return n, nil
	}
	if f, ok := v.(float64); ok {
		return f, nil
	}
	return nil, badOperand("+", v)
}

func negative(v any) (any, error) {
	v = value.FromGo(v)
	if n, ok := value.AsInt(v); ok {
		if n == math.MinInt64 {
			return nil, arithmetic("integer overflow in -(%d)", n)
		}
		return -n, nil
	}
	if f, ok := v.(float64); ok {
		return -f, nil
	}
	return nil, badOperand("-", v)
}
