package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Repr returns the Python repr of v.
func Repr(v any) string {
	var b strings.Builder
	writeRepr(&b, FromGo(v))
	return b.String()
}

// Str returns the Python str of v: strings are returned as is, everything
// else as its repr.
func Str(v any) string {
	if s, ok := FromGo(v).(string); ok {
		return s
	}
	return Repr(v)
}

func writeRepr(b *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		b.WriteString("None")
	case bool:
		if x {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case int64:
		b.WriteString(strconv.FormatInt(x, 10))
	case float64:
		b.WriteString(FormatFloat(x))
	case string:
		writeQuoted(b, x)
	case List:
		b.WriteByte('[')
		writeElements(b, x)
		b.WriteByte(']')
	case Tuple:
		b.WriteByte('(')
		writeElements(b, x)
		if len(x) == 1 {
			b.WriteByte(',')
		}
		b.WriteByte(')')
	case *Set:
		if x.Len() == 0 {
			b.WriteString("set()")
			return
		}
		b.WriteByte('{')
		writeElements(b, x.items)
		b.WriteByte('}')
	case *Dict:
		b.WriteByte('{')
		for i, k := range x.keys {
			if i > 0 {
				b.WriteString(", ")
			}
			writeRepr(b, k)
			b.WriteString(": ")
			writeRepr(b, FromGo(x.values[i]))
		}
		b.WriteByte('}')
	case *Slice:
		b.WriteString("slice(")
		writeElements(b, []any{x.Lower, x.Upper, x.Step})
		b.WriteByte(')')
	case *Builtin:
		fmt.Fprintf(b, "<built-in function %s>", x.Name())
	case Callable:
		fmt.Fprintf(b, "<function %s>", x.Name())
	default:
		fmt.Fprintf(b, "%v", x)
	}
}

func writeElements(b *strings.Builder, xs []any) {
	for i, x := range xs {
		if i > 0 {
			b.WriteString(", ")
		}
		writeRepr(b, FromGo(x))
	}
}

// FormatFloat formats f the way Python's repr does: the shortest digits that
// round-trip, always with a decimal point or exponent.
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}

	if abs := math.Abs(f); abs >= 1e16 || abs < 1e-4 {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func writeQuoted(b *strings.Builder, s string) {
	quote := '\''
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	b.WriteRune(quote)
	for _, r := range s {
		switch {
		case r == quote || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(b, `\x%02x`, r)
		case unicode.IsPrint(r):
			b.WriteRune(r)
		case r <= 0xff:
			fmt.Fprintf(b, `\x%02x`, r)
		case r <= 0xffff:
			fmt.Fprintf(b, `\u%04x`, r)
		default:
			fmt.Fprintf(b, `\U%08x`, r)
		}
	}
	b.WriteRune(quote)
}
