// Package value defines the runtime values expressions compute with.
//
// Values are plain Go values held in an any:
//
//	nil        None
//	bool       bool
//	int64      int
//	float64    float
//	string     str
//	List       list
//	Tuple      tuple
//	*Set       set
//	*Dict      dict
//	Callable   function
//	*Slice     slice (only meaningful as a subscript index)
//
// Values supplied by the host are converted lazily with FromGo: containers
// are wrapped without copying their elements, and each element is converted
// when it is read. Caller data is never written.
package value

import (
	"context"
	"fmt"
	"math"
)

// MaxSequenceLength caps the length of sequences built by repetition and range.
const MaxSequenceLength = 1 << 24

// List is a mutable-in-Python, read-only-here sequence.
// Elements may be raw host values; read them through Iterate or GetItem.
type List []any

// Tuple is an immutable sequence.
// Elements may be raw host values; read them through Iterate or GetItem.
type Tuple []any

// Callable is a value that can be invoked from an expression.
type Callable interface {
	// Name is used in error messages and repr output.
	Name() string

	// Call invokes the function. kwargs may be nil.
	Call(ctx context.Context, args []any, kwargs map[string]any) (any, error)
}

// Func is the signature of native functions.
type Func func(ctx context.Context, args []any, kwargs map[string]any) (any, error)

// Builtin is a native Callable.
type Builtin struct {
	name string
	fn   Func
}

// NewBuiltin wraps fn as a Callable.
func NewBuiltin(name string, fn Func) *Builtin {
	return &Builtin{name: name, fn: fn}
}

// Name returns the function name.
func (b *Builtin) Name() string { return b.name }

// Call invokes the function.
func (b *Builtin) Call(ctx context.Context, args []any, kwargs map[string]any) (any, error) {
	return b.fn(ctx, args, kwargs)
}

// TypeName returns the Python type name of v.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "NoneType"
	case bool:
		return "bool"
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "str"
	case List:
		return "list"
	case Tuple:
		return "tuple"
	case *Set:
		return "set"
	case *Dict:
		return "dict"
	case *Slice:
		return "slice"
	case *Builtin:
		return "builtin_function_or_method"
	case Callable:
		return "function"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Truthy reports the truth value of v.
func Truthy(v any) bool {
	switch x := FromGo(v).(type) {
	case nil:
		return false
	case bool:
		return x
	case int64:
		return x != 0
	case float64:
		return x != 0
	case string:
		return x != ""
	case List:
		return len(x) > 0
	case Tuple:
		return len(x) > 0
	case *Set:
		return x.Len() > 0
	case *Dict:
		return x.Len() > 0
	default:
		return true
	}
}

// AsInt returns v as an int64 if it is an int or a bool.
func AsInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// AsFloat returns v as a float64 if it is numeric.
func AsFloat(v any) (float64, bool) {
	if f, ok := v.(float64); ok {
		return f, true
	}
	if i, ok := AsInt(v); ok {
		return float64(i), true
	}
	return 0, false
}

// IsNumber reports whether v is a bool, an int or a float.
func IsNumber(v any) bool {
	switch v.(type) {
	case bool, int64, float64:
		return true
	default:
		return false
	}
}

// FloatToInt truncates f toward zero. It fails for NaN, infinities and
// values outside the int64 range.
func FloatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	t := math.Trunc(f)
	if t < math.MinInt64 || t >= math.MaxInt64 {
		return 0, false
	}
	return int64(t), true
}
