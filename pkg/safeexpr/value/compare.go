package value

import (
	"fmt"
	"reflect"
	"strings"

	sxerrors "github.com/randalmurphal/safeexpr/pkg/safeexpr/errors"
)

// Equal reports whether a == b. It never fails: values of unrelated types
// are unequal. Bools, ints and floats compare numerically.
func Equal(a, b any) bool {
	a, b = FromGo(a), FromGo(b)
	switch x := a.(type) {
	case nil:
		return b == nil
	case bool, int64, float64:
		return numericEqual(x, b)
	case string:
		y, ok := b.(string)
		return ok && x == y
	case List:
		y, ok := b.(List)
		return ok && sequenceEqual(x, y)
	case Tuple:
		y, ok := b.(Tuple)
		return ok && sequenceEqual(x, y)
	case *Set:
		y, ok := b.(*Set)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for _, item := range x.items {
			if !y.Has(item) {
				return false
			}
		}
		return true
	case *Dict:
		y, ok := b.(*Dict)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for i, k := range x.keys {
			v, found, err := y.Get(k)
			if err != nil || !found || !Equal(x.values[i], v) {
				return false
			}
		}
		return true
	case Callable:
		y, ok := b.(Callable)
		return ok && identity(x) == identity(y)
	default:
		return opaqueEqual(a, b)
	}
}

func numericEqual(a, b any) bool {
	if ai, ok := AsInt(a); ok {
		if bi, ok := AsInt(b); ok {
			return ai == bi
		}
	}
	af, _ := AsFloat(a)
	bf, ok := AsFloat(b)
	return ok && af == bf
}

func sequenceEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func opaqueEqual(a, b any) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if !reflect.ValueOf(a).Comparable() {
		return false
	}
	return a == b
}

// Identical reports whether a is b: the same None or bool, the same scalar
// of the same type, or the same container or function instance.
func Identical(a, b any) bool {
	a, b = FromGo(a), FromGo(b)
	switch x := a.(type) {
	case nil:
		return b == nil
	case bool:
		y, ok := b.(bool)
		return ok && x == y
	case int64:
		y, ok := b.(int64)
		return ok && x == y
	case float64:
		y, ok := b.(float64)
		return ok && x == y
	case string:
		y, ok := b.(string)
		return ok && x == y
	case List:
		y, ok := b.(List)
		return ok && sameBacking(x, y)
	case Tuple:
		y, ok := b.(Tuple)
		return ok && sameBacking(x, y)
	case *Set:
		y, ok := b.(*Set)
		return ok && x == y
	case *Dict:
		y, ok := b.(*Dict)
		return ok && x == y
	case *Slice:
		y, ok := b.(*Slice)
		return ok && x == y
	case Callable:
		y, ok := b.(Callable)
		return ok && identity(x) == identity(y)
	default:
		return opaqueEqual(a, b)
	}
}

func sameBacking(a, b []any) bool {
	return len(a) == len(b) && reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

func identity(c Callable) string {
	rv := reflect.ValueOf(c)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.UnsafePointer:
		return fmt.Sprintf("%T@%x", c, rv.Pointer())
	default:
		return fmt.Sprintf("%T:%v", c, c)
	}
}

// Order evaluates the ordering comparison op ("<", "<=", ">" or ">=").
// Numbers order with numbers, strings with strings, lists with lists and
// tuples with tuples (lexicographically). Sets order by inclusion.
func Order(op string, a, b any) (bool, error) {
	a, b = FromGo(a), FromGo(b)
	var (
		result bool
		ok     bool
	)
	switch op {
	case "<":
		result, ok = less(a, b, false)
	case "<=":
		result, ok = less(a, b, true)
	case ">":
		result, ok = less(b, a, false)
	case ">=":
		result, ok = less(b, a, true)
	default:
		return false, sxerrors.Newf(sxerrors.KindUnsupportedNode, "unknown comparison operator %q", op)
	}
	if !ok {
		return false, sxerrors.Newf(sxerrors.KindTypeMismatch,
			"'%s' not supported between instances of '%s' and '%s'", op, TypeName(a), TypeName(b))
	}
	return result, nil
}

// Less reports whether a < b, and whether the two values are orderable.
func Less(a, b any) (bool, bool) {
	return less(FromGo(a), FromGo(b), false)
}

func less(a, b any, orEqual bool) (bool, bool) {
	if IsNumber(a) && IsNumber(b) {
		if ai, ok := AsInt(a); ok {
			if bi, ok := AsInt(b); ok {
				if orEqual {
					return ai <= bi, true
				}
				return ai < bi, true
			}
		}
		af, _ := AsFloat(a)
		bf, _ := AsFloat(b)
		if orEqual {
			return af <= bf, true
		}
		return af < bf, true
	}

	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return false, false
		}
		c := strings.Compare(x, y)
		return c < 0 || (orEqual && c == 0), true
	case List:
		y, ok := b.(List)
		if !ok {
			return false, false
		}
		return sequenceLess(x, y, orEqual)
	case Tuple:
		y, ok := b.(Tuple)
		if !ok {
			return false, false
		}
		return sequenceLess(x, y, orEqual)
	case *Set:
		y, ok := b.(*Set)
		if !ok {
			return false, false
		}
		if !isSubset(x, y) {
			return false, true
		}
		return orEqual || x.Len() < y.Len(), true
	default:
		return false, false
	}
}

func sequenceLess(a, b []any, orEqual bool) (bool, bool) {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		x, y := FromGo(a[i]), FromGo(b[i])
		if !Equal(x, y) {
			return less(x, y, orEqual)
		}
	}
	if orEqual {
		return len(a) <= len(b), true
	}
	return len(a) < len(b), true
}

func isSubset(a, b *Set) bool {
	for _, item := range a.items {
		if !b.Has(item) {
			return false
		}
	}
	return true
}

// Contains evaluates item in container.
func Contains(container, item any) (bool, error) {
	container, item = FromGo(container), FromGo(item)
	switch c := container.(type) {
	case string:
		s, ok := item.(string)
		if !ok {
			return false, sxerrors.Newf(sxerrors.KindTypeMismatch,
				"'in <string>' requires string as left operand, not %s", TypeName(item))
		}
		return strings.Contains(c, s), nil
	case List:
		return sequenceContains(c, item), nil
	case Tuple:
		return sequenceContains(c, item), nil
	case *Set:
		if _, err := HashKey(item); err != nil {
			return false, err
		}
		return c.Has(item), nil
	case *Dict:
		if _, err := HashKey(item); err != nil {
			return false, err
		}
		return c.Has(item), nil
	default:
		return false, sxerrors.Newf(sxerrors.KindTypeMismatch,
			"argument of type '%s' is not iterable", TypeName(container))
	}
}

func sequenceContains(seq []any, item any) bool {
	for _, elt := range seq {
		if Equal(elt, item) {
			return true
		}
	}
	return false
}
