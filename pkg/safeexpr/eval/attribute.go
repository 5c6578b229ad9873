package eval

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	sxerrors "github.com/randalmurphal/safeexpr/pkg/safeexpr/errors"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/value"
)

// method implements an allowlisted method of a receiver type.
type method func(recv any, args []any, kwargs map[string]any) (any, error)

// The allowlists. Only methods that never modify the receiver are exposed.
var (
	strMethods = map[string]method{
		"upper":      strUpper,
		"lower":      strLower,
		"strip":      strStrip("strip", strings.Trim, strings.TrimSpace),
		"lstrip":     strStrip("lstrip", strings.TrimLeft, func(s string) string { return strings.TrimLeftFunc(s, unicode.IsSpace) }),
		"rstrip":     strStrip("rstrip", strings.TrimRight, func(s string) string { return strings.TrimRightFunc(s, unicode.IsSpace) }),
		"startswith": strAffix("startswith", strings.HasPrefix),
		"endswith":   strAffix("endswith", strings.HasSuffix),
		"split":      strSplit,
		"join":       strJoin,
		"replace":    strReplace,
		"find":       strFind,
		"count":      strCount,
		"title":      strTitle,
		"capitalize": strCapitalize,
		"isdigit":    strIs("isdigit", unicode.IsDigit),
		"isalpha":    strIs("isalpha", unicode.IsLetter),
	}

	dictMethods = map[string]method{
		"keys":   dictKeys,
		"values": dictValues,
		"items":  dictItems,
		"get":    dictGet,
	}

	sequenceMethods = map[string]method{
		"count": seqCount,
		"index": seqIndex,
	}

	setMethods = map[string]method{
		"union":        setCombine("union", (*value.Set).Has, true),
		"intersection": setCombine("intersection", (*value.Set).Has, false),
		"difference":   setDifference,
		"issubset":     setSubset("issubset", false),
		"issuperset":   setSubset("issuperset", true),
	}
)

// AttributeNames returns the allowlisted method names for a value, in no
// particular order. It is empty for values with no accessible attributes.
func AttributeNames(v any) []string {
	table := methodsFor(value.FromGo(v))
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	return names
}

func methodsFor(v any) map[string]method {
	switch v.(type) {
	case string:
		return strMethods
	case *value.Dict:
		return dictMethods
	case value.List, value.Tuple:
		return sequenceMethods
	case *value.Set:
		return setMethods
	default:
		return nil
	}
}

// attribute resolves obj.name to a bound method.
func attribute(obj any, name string) (any, error) {
	obj = value.FromGo(obj)
	m, ok := methodsFor(obj)[name]
	if !ok {
		err := sxerrors.Newf(sxerrors.KindUndefinedAttribute,
			"'%s' object has no attribute '%s'", value.TypeName(obj), name)
		err.Name = name
		return nil, err
	}
	return value.NewBuiltin(name, func(_ context.Context, args []any, kwargs map[string]any) (any, error) {
		return m(obj, args, kwargs)
	}), nil
}

// methodArgs checks a method call's argument count. Methods take no keyword
// arguments unless they bind them themselves.
func methodArgs(name string, args []any, kwargs map[string]any, lo, hi int) error {
	if len(kwargs) > 0 {
		return sxerrors.Newf(sxerrors.KindArityMismatch, "%s() takes no keyword arguments", name)
	}
	if len(args) < lo || len(args) > hi {
		if lo == hi {
			return sxerrors.Newf(sxerrors.KindArityMismatch,
				"%s() takes exactly %d argument%s (%d given)", name, lo, plural(lo), len(args))
		}
		return sxerrors.Newf(sxerrors.KindArityMismatch,
			"%s() takes from %d to %d arguments (%d given)", name, lo, hi, len(args))
	}
	return nil
}

func strArg(fn string, v any) (string, error) {
	s, ok := value.FromGo(v).(string)
	if !ok {
		return "", sxerrors.Newf(sxerrors.KindTypeMismatch,
			"%s() argument must be str, not %s", fn, value.TypeName(value.FromGo(v)))
	}
	return s, nil
}

func intArg(fn string, v any) (int64, error) {
	n, ok := value.AsInt(value.FromGo(v))
	if !ok {
		return 0, sxerrors.Newf(sxerrors.KindTypeMismatch,
			"%s() argument must be int, not %s", fn, value.TypeName(value.FromGo(v)))
	}
	return n, nil
}

func strUpper(recv any, args []any, kwargs map[string]any) (any, error) {
	if err := methodArgs("upper", args, kwargs, 0, 0); err != nil {
		return nil, err
	}
	return strings.ToUpper(recv.(string)), nil
}

func strLower(recv any, args []any, kwargs map[string]any) (any, error) {
	if err := methodArgs("lower", args, kwargs, 0, 0); err != nil {
		return nil, err
	}
	return strings.ToLower(recv.(string)), nil
}

// strStrip builds strip, lstrip and rstrip. Without an argument (or with
// None) whitespace is removed.
func strStrip(name string, trim func(string, string) string, space func(string) string) method {
	return func(recv any, args []any, kwargs map[string]any) (any, error) {
		if err := methodArgs(name, args, kwargs, 0, 1); err != nil {
			return nil, err
		}
		s := recv.(string)
		if len(args) == 0 || value.FromGo(args[0]) == nil {
			return space(s), nil
		}
		chars, err := strArg(name, args[0])
		if err != nil {
			return nil, err
		}
		return trim(s, chars), nil
	}
}

// strAffix builds startswith and endswith. The argument may be a tuple of
// candidates.
func strAffix(name string, has func(string, string) bool) method {
	return func(recv any, args []any, kwargs map[string]any) (any, error) {
		if err := methodArgs(name, args, kwargs, 1, 1); err != nil {
			return nil, err
		}
		s := recv.(string)
		switch x := value.FromGo(args[0]).(type) {
		case string:
			return has(s, x), nil
		case value.Tuple:
			for _, item := range x {
				candidate, err := strArg(name, item)
				if err != nil {
					return nil, err
				}
				if has(s, candidate) {
					return true, nil
				}
			}
			return false, nil
		default:
			return nil, sxerrors.Newf(sxerrors.KindTypeMismatch,
				"%s first arg must be str or a tuple of str, not %s", name, value.TypeName(x))
		}
	}
}

func strSplit(recv any, args []any, kwargs map[string]any) (any, error) {
	if len(args) > 2 {
		return nil, sxerrors.Newf(sxerrors.KindArityMismatch, "split() takes at most 2 arguments (%d given)", len(args))
	}
	var sep any
	maxsplit := int64(-1)
	if len(args) > 0 {
		sep = value.FromGo(args[0])
	}
	if len(args) > 1 {
		n, err := intArg("split", args[1])
		if err != nil {
			return nil, err
		}
		maxsplit = n
	}
	for name, v := range kwargs {
		switch {
		case name == "sep" && len(args) < 1:
			sep = value.FromGo(v)
		case name == "maxsplit" && len(args) < 2:
			n, err := intArg("split", v)
			if err != nil {
				return nil, err
			}
			maxsplit = n
		default:
			return nil, sxerrors.Newf(sxerrors.KindArityMismatch,
				"split() got an unexpected keyword argument '%s'", name)
		}
	}

	s := recv.(string)
	var parts []string
	if sep == nil {
		parts = splitSpace(s, maxsplit)
	} else {
		sepStr, err := strArg("split", sep)
		if err != nil {
			return nil, err
		}
		if sepStr == "" {
			return nil, sxerrors.New(sxerrors.KindInvalidArgument, "empty separator")
		}
		n := -1
		if maxsplit >= 0 {
			n = int(min(maxsplit, int64(len(s)))) + 1
		}
		parts = strings.SplitN(s, sepStr, n)
	}

	out := make(value.List, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out, nil
}

// splitSpace splits on runs of whitespace, ignoring leading and trailing
// whitespace, with at most maxsplit splits when maxsplit is not negative.
func splitSpace(s string, maxsplit int64) []string {
	if maxsplit < 0 {
		return strings.Fields(s)
	}
	var parts []string
	rest := strings.TrimLeftFunc(s, unicode.IsSpace)
	for rest != "" {
		if int64(len(parts)) == maxsplit {
			parts = append(parts, rest)
			break
		}
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			parts = append(parts, rest)
			break
		}
		parts = append(parts, rest[:end])
		rest = strings.TrimLeftFunc(rest[end:], unicode.IsSpace)
	}
	return parts
}

func strJoin(recv any, args []any, kwargs map[string]any) (any, error) {
	if err := methodArgs("join", args, kwargs, 1, 1); err != nil {
		return nil, err
	}
	items, err := value.Iterate(args[0])
	if err != nil {
		return nil, err
	}
	parts := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, sxerrors.Newf(sxerrors.KindTypeMismatch,
				"sequence item %d: expected str instance, %s found", i, value.TypeName(item))
		}
		parts[i] = s
	}
	return strings.Join(parts, recv.(string)), nil
}

func strReplace(recv any, args []any, kwargs map[string]any) (any, error) {
	if err := methodArgs("replace", args, kwargs, 2, 3); err != nil {
		return nil, err
	}
	old, err := strArg("replace", args[0])
	if err != nil {
		return nil, err
	}
	repl, err := strArg("replace", args[1])
	if err != nil {
		return nil, err
	}
	count := int64(-1)
	if len(args) == 3 {
		if count, err = intArg("replace", args[2]); err != nil {
			return nil, err
		}
	}
	if count < 0 {
		return strings.ReplaceAll(recv.(string), old, repl), nil
	}
	return strings.Replace(recv.(string), old, repl, int(count)), nil
}

// strFind returns the code point offset of the first occurrence, or -1.
func strFind(recv any, args []any, kwargs map[string]any) (any, error) {
	if err := methodArgs("find", args, kwargs, 1, 1); err != nil {
		return nil, err
	}
	sub, err := strArg("find", args[0])
	if err != nil {
		return nil, err
	}
	s := recv.(string)
	i := strings.Index(s, sub)
	if i < 0 {
		return int64(-1), nil
	}
	return int64(utf8.RuneCountInString(s[:i])), nil
}

func strCount(recv any, args []any, kwargs map[string]any) (any, error) {
	if err := methodArgs("count", args, kwargs, 1, 1); err != nil {
		return nil, err
	}
	sub, err := strArg("count", args[0])
	if err != nil {
		return nil, err
	}
	return int64(strings.Count(recv.(string), sub)), nil
}

// strTitle upper-cases the first letter of every run of letters and
// lower-cases the rest.
func strTitle(recv any, args []any, kwargs map[string]any) (any, error) {
	if err := methodArgs("title", args, kwargs, 0, 0); err != nil {
		return nil, err
	}
	var b strings.Builder
	inWord := false
	for _, r := range recv.(string) {
		if unicode.IsLetter(r) {
			if inWord {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			inWord = true
			continue
		}
		b.WriteRune(r)
		inWord = false
	}
	return b.String(), nil
}

func strCapitalize(recv any, args []any, kwargs map[string]any) (any, error) {
	if err := methodArgs("capitalize", args, kwargs, 0, 0); err != nil {
		return nil, err
	}
	s := recv.(string)
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return "", nil
	}
	return string(unicode.ToTitle(r)) + strings.ToLower(s[size:]), nil
}

func strIs(name string, class func(rune) bool) method {
	return func(recv any, args []any, kwargs map[string]any) (any, error) {
		if err := methodArgs(name, args, kwargs, 0, 0); err != nil {
			return nil, err
		}
		s := recv.(string)
		if s == "" {
			return false, nil
		}
		for _, r := range s {
			if !class(r) {
				return false, nil
			}
		}
		return true, nil
	}
}

func dictKeys(recv any, args []any, kwargs map[string]any) (any, error) {
	if err := methodArgs("keys", args, kwargs, 0, 0); err != nil {
		return nil, err
	}
	return value.List(recv.(*value.Dict).Keys()), nil
}

func dictValues(recv any, args []any, kwargs map[string]any) (any, error) {
	if err := methodArgs("values", args, kwargs, 0, 0); err != nil {
		return nil, err
	}
	return value.List(recv.(*value.Dict).Values()), nil
}

func dictItems(recv any, args []any, kwargs map[string]any) (any, error) {
	if err := methodArgs("items", args, kwargs, 0, 0); err != nil {
		return nil, err
	}
	return value.List(recv.(*value.Dict).Items()), nil
}

func dictGet(recv any, args []any, kwargs map[string]any) (any, error) {
	if err := methodArgs("get", args, kwargs, 1, 2); err != nil {
		return nil, err
	}
	v, ok, err := recv.(*value.Dict).Get(args[0])
	if err != nil {
		return nil, err
	}
	if ok {
		return v, nil
	}
	if len(args) == 2 {
		return args[1], nil
	}
	return nil, nil
}

func seqItems(recv any) []any {
	if t, ok := recv.(value.Tuple); ok {
		return t
	}
	return recv.(value.List)
}

func seqCount(recv any, args []any, kwargs map[string]any) (any, error) {
	if err := methodArgs("count", args, kwargs, 1, 1); err != nil {
		return nil, err
	}
	var n int64
	for _, item := range seqItems(recv) {
		if value.Equal(item, args[0]) {
			n++
		}
	}
	return n, nil
}

func seqIndex(recv any, args []any, kwargs map[string]any) (any, error) {
	if err := methodArgs("index", args, kwargs, 1, 1); err != nil {
		return nil, err
	}
	for i, item := range seqItems(recv) {
		if value.Equal(item, args[0]) {
			return int64(i), nil
		}
	}
	return nil, sxerrors.Newf(sxerrors.KindInvalidArgument,
		"%s is not in %s", value.Repr(args[0]), value.TypeName(recv))
}

// iterSet collects an iterable argument into a set.
func iterSet(v any) (*value.Set, error) {
	if s, ok := value.FromGo(v).(*value.Set); ok {
		return s, nil
	}
	items, err := value.Iterate(v)
	if err != nil {
		return nil, err
	}
	return value.NewSet(items...)
}

// setCombine builds union and intersection over any number of iterables.
// For union every item of every operand is kept; for intersection only items
// of the receiver present in every operand are kept.
func setCombine(name string, has func(*value.Set, any) bool, union bool) method {
	return func(recv any, args []any, kwargs map[string]any) (any, error) {
		if len(kwargs) > 0 {
			return nil, sxerrors.Newf(sxerrors.KindArityMismatch, "%s() takes no keyword arguments", name)
		}
		base := recv.(*value.Set)
		others := make([]*value.Set, len(args))
		for i, arg := range args {
			s, err := iterSet(arg)
			if err != nil {
				return nil, err
			}
			others[i] = s
		}

		out, _ := value.NewSet()
		if union {
			for _, s := range append([]*value.Set{base}, others...) {
				for _, item := range s.Items() {
					if err := out.Add(item); err != nil {
						return nil, err
					}
				}
			}
			return out, nil
		}
	next:
		for _, item := range base.Items() {
			for _, s := range others {
				if !has(s, item) {
					continue next
				}
			}
			if err := out.Add(item); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
}

func setDifference(recv any, args []any, kwargs map[string]any) (any, error) {
	if len(kwargs) > 0 {
		return nil, sxerrors.New(sxerrors.KindArityMismatch, "difference() takes no keyword arguments")
	}
	others := make([]*value.Set, len(args))
	for i, arg := range args {
		s, err := iterSet(arg)
		if err != nil {
			return nil, err
		}
		others[i] = s
	}
	out, _ := value.NewSet()
next:
	for _, item := range recv.(*value.Set).Items() {
		for _, s := range others {
			if s.Has(item) {
				continue next
			}
		}
		if err := out.Add(item); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// setSubset builds issubset and issuperset.
func setSubset(name string, superset bool) method {
	return func(recv any, args []any, kwargs map[string]any) (any, error) {
		if err := methodArgs(name, args, kwargs, 1, 1); err != nil {
			return nil, err
		}
		other, err := iterSet(args[0])
		if err != nil {
			return nil, err
		}
		inner, outer := recv.(*value.Set), other
		if superset {
			inner, outer = outer, inner
		}
		for _, item := range inner.Items() {
			if !outer.Has(item) {
				return false, nil
			}
		}
		return true, nil
	}
}
