// Package scope implements two-tier name resolution: local frames over an
// immutable global table.
//
// Lookup is presence-based at every tier. A name bound to None, False, 0 or
// "" in a local frame shadows the global table exactly like any other value.
package scope

import (
	"maps"
	"reflect"
	"sort"
	"sync"

	sxerrors "github.com/randalmurphal/safeexpr/pkg/safeexpr/errors"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/value"
)

// Globals is the global tier. It is never modified after construction and
// may be shared by any number of concurrent evaluations.
type Globals struct {
	vars map[string]any
}

// NewGlobals returns a global table holding a converted copy of vars.
func NewGlobals(vars map[string]any) *Globals {
	return (*Globals)(nil).With(vars)
}

// Lookup returns the value bound to name.
func (g *Globals) Lookup(name string) (any, bool) {
	if g == nil {
		return nil, false
	}
	v, ok := g.vars[name]
	return v, ok
}

// With returns a new table holding g's bindings overridden by extra.
func (g *Globals) With(extra map[string]any) *Globals {
	vars := make(map[string]any, g.Len()+len(extra))
	if g != nil {
		maps.Copy(vars, g.vars)
	}
	for name, v := range extra {
		vars[name] = value.FromGo(v)
	}
	return &Globals{vars: vars}
}

// Names returns the bound names in sorted order.
func (g *Globals) Names() []string {
	if g == nil {
		return nil
	}
	names := make([]string, 0, len(g.vars))
	for name := range g.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of bindings.
func (g *Globals) Len() int {
	if g == nil {
		return 0
	}
	return len(g.vars)
}

// Scope is a chain of local frames ending at a global table. The innermost
// frame is consulted first.
//
// Frames are never written. The root frame is usually the caller's map,
// which is borrowed for the duration of an evaluation; Snapshot detaches a
// scope from it.
type Scope struct {
	vars    map[string]any
	parent  *Scope
	globals *Globals

	// owned frames were created by this package and cannot change.
	owned  bool
	frozen *Scope

	// converted holds the runtime form of caller bindings already read, so
	// a name resolves to the same Dict, List or callable on every lookup.
	// A snapshot shares it with the frame it was taken from.
	converted *bindings
}

type bindings struct {
	mu   sync.Mutex
	vals map[string]binding
}

type binding struct {
	raw, val any
}

// get returns the runtime form of raw, reusing the one made for name when
// it was converted from the same Go value.
func (b *bindings) get(name string, raw any) any {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.vals[name]; ok && sameSource(e.raw, raw) {
		return e.val
	}
	v := value.FromGo(raw)
	if b.vals == nil {
		b.vals = make(map[string]binding)
	}
	b.vals[name] = binding{raw: raw, val: v}
	return v
}

// sameSource reports whether a and b are the same Go value: the same map,
// func or slice header, or equal comparable values.
func sameSource(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Map, reflect.Func, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	}
	if !ra.Comparable() {
		return false
	}
	return a == b
}

// New returns a scope whose only local frame is locals. locals may be nil.
func New(globals *Globals, locals map[string]any) *Scope {
	s := &Scope{vars: locals, globals: globals}
	if len(locals) > 0 {
		s.converted = &bindings{}
	}
	return s
}

// Child returns a scope with vars as a new innermost frame.
func (s *Scope) Child(vars map[string]any) *Scope {
	return &Scope{vars: vars, parent: s, globals: s.globals, owned: true}
}

// Globals returns the global table.
func (s *Scope) Globals() *Globals {
	return s.globals
}

// Lookup returns the value bound to name in the innermost frame that binds
// it, falling back to the global table.
func (s *Scope) Lookup(name string) (any, bool) {
	for frame := s; frame != nil; frame = frame.parent {
		if v, ok := frame.vars[name]; ok {
			if frame.converted != nil {
				return frame.converted.get(name, v), true
			}
			return value.FromGo(v), true
		}
	}
	return s.globals.Lookup(name)
}

// Resolve is Lookup that fails with an UndefinedName error.
func (s *Scope) Resolve(name string) (any, error) {
	if v, ok := s.Lookup(name); ok {
		return v, nil
	}
	return nil, sxerrors.UndefinedName(name)
}

// Snapshot returns a scope with the same bindings that no longer refers to
// any caller-owned map. Later changes to the caller's map are not visible
// through the snapshot.
func (s *Scope) Snapshot() *Scope {
	if s == nil {
		return nil
	}
	if s.owned {
		parent := s.parent.Snapshot()
		if parent == s.parent {
			return s
		}
		return &Scope{vars: s.vars, parent: parent, globals: s.globals, owned: true, converted: s.converted}
	}
	if s.frozen == nil {
		s.frozen = &Scope{
			vars:      maps.Clone(s.vars),
			parent:    s.parent.Snapshot(),
			globals:   s.globals,
			owned:     true,
			converted: s.converted,
		}
	}
	return s.frozen
}
