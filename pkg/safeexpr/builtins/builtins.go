// Package builtins provides the global name table every expression sees:
// the constants True, False and None plus a small set of side-effect-free
// functions.
package builtins

import (
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/scope"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/value"
)

var defaultGlobals = scope.NewGlobals(table())

// Globals returns the default global table. It is built once and shared.
func Globals() *scope.Globals {
	return defaultGlobals
}

func table() map[string]any {
	funcs := map[string]value.Func{
		"bool":     boolFn,
		"int":      intFn,
		"float":    floatFn,
		"str":      strFn,
		"list":     listFn,
		"tuple":    tupleFn,
		"set":      setFn,
		"dict":     dictFn,
		"len":      lenFn,
		"map":      mapFn,
		"filter":   filterFn,
		"zip":      zipFn,
		"range":    rangeFn,
		"sorted":   sortedFn,
		"reversed": reversedFn,
		"sum":      sumFn,
		"min":      minFn,
		"max":      maxFn,
		"all":      allFn,
		"any":      anyFn,
		"reduce":   reduceFn,
		"abs":      absFn,
	}

	t := map[string]any{
		"True":  true,
		"False": false,
		"None":  nil,
	}
	for name, fn := range funcs {
		t[name] = value.NewBuiltin(name, fn)
	}
	return t
}
