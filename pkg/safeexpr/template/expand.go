package template

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sxerrors "github.com/randalmurphal/safeexpr/pkg/safeexpr/errors"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/value"
)

// Evaluator evaluates one expression against a scope.
// *safeexpr.Engine satisfies it.
type Evaluator interface {
	Evaluate(ctx context.Context, text string, scope map[string]any) (any, error)
}

// ErrUnterminated is returned for a placeholder without its closing brace.
var ErrUnterminated = errors.New("unterminated placeholder")

// ErrEmptyPlaceholder is returned for "${}".
var ErrEmptyPlaceholder = errors.New("empty placeholder")

// PlaceholderError reports a placeholder that could not be expanded.
type PlaceholderError struct {
	// Expr is the text between the braces.
	Expr string

	// Offset is the byte offset of the "${" in the template.
	Offset int

	Err error
}

// Error implements the error interface.
func (e *PlaceholderError) Error() string {
	return fmt.Sprintf("placeholder ${%s} at offset %d: %v", e.Expr, e.Offset, e.Err)
}

// Unwrap returns the underlying cause.
func (e *PlaceholderError) Unwrap() error {
	return e.Err
}

// Expander replaces ${ expression } placeholders with the str() of the
// evaluated expression. "$${" produces a literal "${".
//
// Expander is safe for concurrent use after construction.
type Expander struct {
	eval          Evaluator
	missingAction MissingAction
}

// NewExpander creates an Expander that evaluates placeholders with ev.
//
// Default configuration:
//   - MissingAction: MissingKeep (keep placeholders as-is)
func NewExpander(ev Evaluator, opts ...Option) *Expander {
	e := &Expander{
		eval:          ev,
		missingAction: MissingKeep,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand expands every placeholder in s using vars as the local scope.
//
// A placeholder whose evaluation fails because a name or key is missing is
// handled by the MissingAction. Every other failure is returned as a
// *PlaceholderError.
//
// Example:
//
//	exp := template.NewExpander(engine)
//	out, err := exp.Expand(ctx, "total: ${price * qty}", map[string]any{"price": 3, "qty": 4})
//	// out: "total: 12"
func (e *Expander) Expand(ctx context.Context, s string, vars map[string]any) (string, error) {
	if !strings.Contains(s, "$") {
		return s, nil
	}

	var b strings.Builder
	b.Grow(len(s))
	i := 0
	for i < len(s) {
		j := strings.IndexByte(s[i:], '$')
		if j < 0 {
			b.WriteString(s[i:])
			break
		}
		start := i + j
		b.WriteString(s[i:start])

		switch {
		case strings.HasPrefix(s[start:], "$${"):
			b.WriteString("${")
			i = start + 3
			continue
		case !strings.HasPrefix(s[start:], "${"):
			b.WriteByte('$')
			i = start + 1
			continue
		}

		end, err := closingBrace(s, start+2)
		if err != nil {
			return "", &PlaceholderError{Expr: s[start+2:], Offset: start, Err: err}
		}
		expr := s[start+2 : end]
		out, err := e.expandOne(ctx, expr, start, vars)
		if err != nil {
			return "", err
		}
		if out == nil {
			b.WriteString(s[start : end+1])
		} else {
			b.WriteString(*out)
		}
		i = end + 1
	}
	return b.String(), nil
}

// expandOne evaluates a single placeholder. A nil result means the
// placeholder text is kept.
func (e *Expander) expandOne(ctx context.Context, expr string, offset int, vars map[string]any) (*string, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return nil, &PlaceholderError{Expr: expr, Offset: offset, Err: ErrEmptyPlaceholder}
	}

	v, err := e.eval.Evaluate(ctx, trimmed, vars)
	if err == nil {
		s := value.Str(v)
		return &s, nil
	}

	if isMissing(err) {
		switch e.missingAction {
		case MissingEmpty:
			empty := ""
			return &empty, nil
		case MissingKeep:
			return nil, nil
		}
	}
	return nil, &PlaceholderError{Expr: expr, Offset: offset, Err: err}
}

func isMissing(err error) bool {
	switch sxerrors.KindOf(err) {
	case sxerrors.KindUndefinedName, sxerrors.KindKeyNotFound:
		return true
	default:
		return false
	}
}

// closingBrace finds the "}" ending the placeholder whose expression starts
// at from. Brackets nest and string literals are skipped, so "${ {'a': 1}['a'] }"
// and "${ '}' }" are single placeholders.
func closingBrace(s string, from int) (int, error) {
	depth := 0
	for i := from; i < len(s); i++ {
		switch c := s[i]; c {
		case '\'', '"':
			end := skipString(s, i)
			if end < 0 {
				return -1, ErrUnterminated
			}
			i = end
		case '(', '[', '{':
			depth++
		case ')', ']':
			depth--
		case '}':
			if depth == 0 {
				return i, nil
			}
			depth--
		}
	}
	return -1, ErrUnterminated
}

// skipString returns the index of the quote closing the literal opened at
// start, or -1. Triple-quoted literals are handled.
func skipString(s string, start int) int {
	q := s[start]
	delim := string(q)
	i := start + 1
	if strings.HasPrefix(s[start:], strings.Repeat(delim, 3)) {
		delim = strings.Repeat(delim, 3)
		i = start + 3
	}
	for i < len(s) {
		if s[i] == '\\' {
			i += 2
			continue
		}
		if strings.HasPrefix(s[i:], delim) {
			return i + len(delim) - 1
		}
		i++
	}
	return -1
}

// ExpandAll expands every string in ss. On error it returns nil and the
// first error.
func (e *Expander) ExpandAll(ctx context.Context, ss []string, vars map[string]any) ([]string, error) {
	if ss == nil {
		return nil, nil
	}

	results := make([]string, len(ss))
	for i, s := range ss {
		expanded, err := e.Expand(ctx, s, vars)
		if err != nil {
			return nil, err
		}
		results[i] = expanded
	}
	return results, nil
}

// ExpandMap expands all string values of m, recursing into nested maps and
// lists. Other values are copied as-is. On error it returns nil and the
// first error.
func (e *Expander) ExpandMap(ctx context.Context, m map[string]any, vars map[string]any) (map[string]any, error) {
	if m == nil {
		return nil, nil
	}

	result := make(map[string]any, len(m))
	for k, v := range m {
		expanded, err := e.expandValue(ctx, v, vars)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		result[k] = expanded
	}
	return result, nil
}

func (e *Expander) expandValue(ctx context.Context, v any, vars map[string]any) (any, error) {
	switch val := v.(type) {
	case string:
		return e.Expand(ctx, val, vars)
	case map[string]any:
		return e.ExpandMap(ctx, val, vars)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			expanded, err := e.expandValue(ctx, item, vars)
			if err != nil {
				return nil, err
			}
			out[i] = expanded
		}
		return out, nil
	default:
		return v, nil
	}
}
