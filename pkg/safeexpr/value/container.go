package value

import (
	"math"
	"strconv"
	"strings"

	sxerrors "github.com/randalmurphal/safeexpr/pkg/safeexpr/errors"
)

// Set is an insertion-ordered set of hashable values.
// A Set must not be modified once it has been handed to an expression.
type Set struct {
	items []any
	index map[string]int
}

// NewSet returns a set holding items, dropping duplicates.
func NewSet(items ...any) (*Set, error) {
	s := &Set{index: make(map[string]int, len(items))}
	for _, item := range items {
		if err := s.Add(item); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add inserts v unless an equal value is already present.
func (s *Set) Add(v any) error {
	v = FromGo(v)
	key, err := HashKey(v)
	if err != nil {
		return err
	}
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if _, ok := s.index[key]; ok {
		return nil
	}
	s.index[key] = len(s.items)
	s.items = append(s.items, v)
	return nil
}

// Has reports whether v is a member. Unhashable values are never members.
func (s *Set) Has(v any) bool {
	key, err := HashKey(FromGo(v))
	if err != nil {
		return false
	}
	_, ok := s.index[key]
	return ok
}

// Len returns the number of members.
func (s *Set) Len() int { return len(s.items) }

// Items returns the members in insertion order. The slice is a copy.
func (s *Set) Items() []any {
	out := make([]any, len(s.items))
	copy(out, s.items)
	return out
}

// Dict is an insertion-ordered mapping with hashable keys.
// Values may be raw host values and are converted by Get, Values and Items.
// A Dict must not be modified once it has been handed to an expression.
type Dict struct {
	keys   []any
	values []any
	index  map[string]int
}

// NewDict returns an empty dict.
func NewDict() *Dict {
	return &Dict{index: make(map[string]int)}
}

// Set stores v under k. Overwriting keeps the original key position.
func (d *Dict) Set(k, v any) error {
	k = FromGo(k)
	key, err := HashKey(k)
	if err != nil {
		return err
	}
	if d.index == nil {
		d.index = make(map[string]int)
	}
	if i, ok := d.index[key]; ok {
		d.values[i] = v
		return nil
	}
	d.index[key] = len(d.keys)
	d.keys = append(d.keys, k)
	d.values = append(d.values, v)
	return nil
}

// Get returns the value stored under k.
func (d *Dict) Get(k any) (any, bool, error) {
	key, err := HashKey(FromGo(k))
	if err != nil {
		return nil, false, err
	}
	i, ok := d.index[key]
	if !ok {
		return nil, false, nil
	}
	return FromGo(d.values[i]), true, nil
}

// Has reports whether k is a key. Unhashable values are never keys.
func (d *Dict) Has(k any) bool {
	_, ok, err := d.Get(k)
	return ok && err == nil
}

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.keys) }

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []any {
	out := make([]any, len(d.keys))
	copy(out, d.keys)
	return out
}

// Values returns the values in key order.
func (d *Dict) Values() []any {
	out := make([]any, len(d.values))
	for i, v := range d.values {
		out[i] = FromGo(v)
	}
	return out
}

// Items returns (key, value) tuples in key order.
func (d *Dict) Items() []any {
	out := make([]any, len(d.keys))
	for i, k := range d.keys {
		out[i] = Tuple{k, FromGo(d.values[i])}
	}
	return out
}

// Copy returns a shallow copy.
func (d *Dict) Copy() *Dict {
	out := &Dict{
		keys:   append([]any(nil), d.keys...),
		values: append([]any(nil), d.values...),
		index:  make(map[string]int, len(d.index)),
	}
	for k, i := range d.index {
		out.index[k] = i
	}
	return out
}

// HashKey returns the key under which v is stored in sets and dicts.
// Values that compare equal share a key, so 1, 1.0 and True collide.
func HashKey(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "N", nil
	case bool:
		if x {
			return "i1", nil
		}
		return "i0", nil
	case int64:
		return "i" + strconv.FormatInt(x, 10), nil
	case float64:
		if i, ok := FloatToInt(x); ok && float64(i) == x {
			return "i" + strconv.FormatInt(i, 10), nil
		}
		if math.IsNaN(x) {
			return "fnan", nil
		}
		return "f" + strconv.FormatFloat(x, 'g', -1, 64), nil
	case string:
		return "s" + x, nil
	case Tuple:
		var b strings.Builder
		b.WriteString("t(")
		for _, elt := range x {
			k, err := HashKey(FromGo(elt))
			if err != nil {
				return "", err
			}
			b.WriteString(strconv.Itoa(len(k)))
			b.WriteByte(':')
			b.WriteString(k)
		}
		b.WriteByte(')')
		return b.String(), nil
	case Callable:
		return "c" + identity(x), nil
	default:
		return "", sxerrors.Newf(sxerrors.KindTypeMismatch, "unhashable type: '%s'", TypeName(v))
	}
}
