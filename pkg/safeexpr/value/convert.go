package value

import (
	"context"
	"errors"
	"fmt"
	"math"
	"reflect"
	"runtime"
	"sort"
	"strings"

	sxerrors "github.com/randalmurphal/safeexpr/pkg/safeexpr/errors"
)

// FromGo converts a host value to its runtime representation.
//
// Conversion is shallow: slices and maps are wrapped and their elements are
// converted when read. Values that already are runtime values are returned
// unchanged. Go values with no runtime counterpart (structs, pointers) are
// returned as opaque values that can be compared and passed around but not
// inspected.
func FromGo(v any) any {
	switch x := v.(type) {
	case nil, bool, int64, float64, string, List, Tuple, *Set, *Dict, *Slice, Callable:
		return v
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint:
		return fromUint(uint64(x))
	case uint64:
		return fromUint(x)
	case float32:
		return float64(x)
	case []any:
		return List(x)
	case []string:
		out := make(List, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	case map[string]any:
		return dictFromStringMap(x)
	}
	return fromReflect(reflect.ValueOf(v))
}

func fromUint(u uint64) any {
	if u > math.MaxInt64 {
		return float64(u)
	}
	return int64(u)
}

func dictFromStringMap(m map[string]any) *Dict {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	d := &Dict{
		keys:   make([]any, len(keys)),
		values: make([]any, len(keys)),
		index:  make(map[string]int, len(keys)),
	}
	for i, k := range keys {
		d.keys[i] = k
		d.values[i] = m[k]
		d.index["s"+k] = i
	}
	return d
}

func fromReflect(rv reflect.Value) any {
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return fromUint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.String:
		return rv.String()
	case reflect.Slice:
		if rv.IsNil() {
			return List{}
		}
		return listFromReflect(rv)
	case reflect.Array:
		return listFromReflect(rv)
	case reflect.Map:
		return dictFromReflect(rv)
	case reflect.Func:
		if rv.IsNil() {
			return nil
		}
		return newGoFunc(rv)
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
	}
	return rv.Interface()
}

func listFromReflect(rv reflect.Value) List {
	out := make(List, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func dictFromReflect(rv reflect.Value) any {
	type entry struct {
		key   any
		repr  string
		value any
	}
	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		k := FromGo(iter.Key().Interface())
		entries = append(entries, entry{key: k, repr: Repr(k), value: iter.Value().Interface()})
	}
	sort.Slice(entries, func(i, j int) bool {
		if less, ok := Less(entries[i].key, entries[j].key); ok {
			return less
		}
		return entries[i].repr < entries[j].repr
	})

	d := NewDict()
	for _, e := range entries {
		if err := d.Set(e.key, e.value); err != nil {
			// Keys with no hashable runtime form leave the map opaque.
			return rv.Interface()
		}
	}
	return d
}

// ToGo converts a runtime value to plain Go values: lists, tuples and sets
// become []any, dicts with string keys become map[string]any and other dicts
// become map[any]any. Numbers stay int64 and float64.
func ToGo(v any) any {
	switch x := v.(type) {
	case List:
		return sliceToGo(x)
	case Tuple:
		return sliceToGo(x)
	case *Set:
		return sliceToGo(x.items)
	case *Dict:
		return dictToGo(x)
	default:
		return v
	}
}

func sliceToGo(xs []any) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = ToGo(x)
	}
	return out
}

func dictToGo(d *Dict) any {
	allStrings := true
	for _, k := range d.keys {
		if _, ok := k.(string); !ok {
			allStrings = false
			break
		}
	}
	if allStrings {
		out := make(map[string]any, len(d.keys))
		for i, k := range d.keys {
			out[k.(string)] = ToGo(d.values[i])
		}
		return out
	}
	out := make(map[any]any, len(d.keys))
	for i, k := range d.keys {
		if _, ok := k.(Tuple); ok {
			k = Repr(k)
		}
		out[k] = ToGo(d.values[i])
	}
	return out
}

var (
	contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType   = reflect.TypeOf((*error)(nil)).Elem()
)

// GoFunc adapts an arbitrary Go function to Callable.
//
// Arguments are converted to the parameter types with ToGo and numeric
// conversion. A leading context.Context parameter receives the evaluation
// context. The function may return nothing, a value, an error, or a value
// and an error. Errors and panics surface as call failures.
type GoFunc struct {
	name string
	fn   reflect.Value
}

// NewGoFunc wraps fn, which must be a func.
func NewGoFunc(name string, fn any) (*GoFunc, error) {
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, fmt.Errorf("%s: expected a function, got %T", name, fn)
	}
	g := newGoFunc(rv)
	if name != "" {
		g.name = name
	}
	return g, nil
}

func newGoFunc(rv reflect.Value) *GoFunc {
	name := "func"
	if f := runtime.FuncForPC(rv.Pointer()); f != nil {
		name = f.Name()
		if i := strings.LastIndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
	}
	return &GoFunc{name: name, fn: rv}
}

// Name returns the function name.
func (g *GoFunc) Name() string { return g.name }

// Call converts args, invokes the function and converts its results.
func (g *GoFunc) Call(ctx context.Context, args []any, kwargs map[string]any) (result any, err error) {
	if len(kwargs) > 0 {
		return nil, sxerrors.Newf(sxerrors.KindArityMismatch, "%s() takes no keyword arguments", g.name)
	}
	in, err := g.convertArgs(ctx, args)
	if err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = sxerrors.Newf(sxerrors.KindCallFailed, "%s() panicked: %v", g.name, r)
		}
	}()
	return g.convertResults(g.fn.Call(in))
}

func (g *GoFunc) convertArgs(ctx context.Context, args []any) ([]reflect.Value, error) {
	t := g.fn.Type()
	var in []reflect.Value
	first := 0
	if t.NumIn() > 0 && t.In(0) == contextType {
		if ctx == nil {
			ctx = context.Background()
		}
		in = append(in, reflect.ValueOf(ctx))
		first = 1
	}

	fixed := t.NumIn() - first
	if t.IsVariadic() {
		fixed--
		if len(args) < fixed {
			return nil, sxerrors.Newf(sxerrors.KindArityMismatch,
				"%s() takes at least %d arguments (%d given)", g.name, fixed, len(args))
		}
	} else if len(args) != fixed {
		return nil, sxerrors.Newf(sxerrors.KindArityMismatch,
			"%s() takes %d arguments (%d given)", g.name, fixed, len(args))
	}

	for i, arg := range args {
		var pt reflect.Type
		if i < fixed {
			pt = t.In(first + i)
		} else {
			pt = t.In(t.NumIn() - 1).Elem()
		}
		rv, err := convertArg(arg, pt)
		if err != nil {
			return nil, sxerrors.Newf(sxerrors.KindTypeMismatch, "%s() argument %d: %s", g.name, i+1, err.Error())
		}
		in = append(in, rv)
	}
	return in, nil
}

func (g *GoFunc) convertResults(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if out[0].Type() == errorType {
			return nil, g.callError(out[0])
		}
		return FromGo(out[0].Interface()), nil
	default:
		last := out[len(out)-1]
		if last.Type() == errorType {
			if err := g.callError(last); err != nil {
				return nil, err
			}
			out = out[:len(out)-1]
		}
		if len(out) == 1 {
			return FromGo(out[0].Interface()), nil
		}
		results := make(Tuple, len(out))
		for i, o := range out {
			results[i] = FromGo(o.Interface())
		}
		return results, nil
	}
}

func (g *GoFunc) callError(rv reflect.Value) error {
	if rv.IsNil() {
		return nil
	}
	err := rv.Interface().(error)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return sxerrors.Wrap(sxerrors.KindCanceled, err, "evaluation canceled: "+err.Error())
	}
	return sxerrors.Wrap(sxerrors.KindCallFailed, err, fmt.Sprintf("%s() failed: %v", g.name, err))
}

// convertArg converts a runtime value to a parameter of type t.
func convertArg(v any, t reflect.Type) (reflect.Value, error) {
	g := ToGo(v)
	if g == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot use None as %s", t)
	}

	rv := reflect.ValueOf(g)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}

	switch {
	case isIntKind(t.Kind()):
		if f, ok := g.(float64); ok {
			i, ok := FloatToInt(f)
			if !ok || float64(i) != f {
				return reflect.Value{}, fmt.Errorf("cannot use non-integral float as %s", t)
			}
			return intTo(i, t)
		}
		if i, ok := AsInt(g); ok {
			return intTo(i, t)
		}
	case t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64:
		if f, ok := AsFloat(g); ok {
			return reflect.ValueOf(f).Convert(t), nil
		}
	case t.Kind() == reflect.String && rv.Kind() == reflect.String:
		return rv.Convert(t), nil
	case t.Kind() == reflect.Slice && rv.Kind() == reflect.Slice:
		out := reflect.MakeSlice(t, rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem, err := convertArg(rv.Index(i).Interface(), t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(elem)
		}
		return out, nil
	case t.Kind() == reflect.Map && rv.Kind() == reflect.Map:
		out := reflect.MakeMapWithSize(t, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k, err := convertArg(iter.Key().Interface(), t.Key())
			if err != nil {
				return reflect.Value{}, err
			}
			val, err := convertArg(iter.Value().Interface(), t.Elem())
			if err != nil {
				return reflect.Value{}, err
			}
			out.SetMapIndex(k, val)
		}
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", TypeName(FromGo(v)), t)
}

func intTo(i int64, t reflect.Type) (reflect.Value, error) {
	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if i < 0 || out.OverflowUint(uint64(i)) {
			return reflect.Value{}, fmt.Errorf("%d overflows %s", i, t)
		}
		out.SetUint(uint64(i))
	default:
		if out.OverflowInt(i) {
			return reflect.Value{}, fmt.Errorf("%d overflows %s", i, t)
		}
		out.SetInt(i)
	}
	return out, nil
}

func isIntKind(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	default:
		return false
	}
}
