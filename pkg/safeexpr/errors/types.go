package errors

import (
	"errors"
	"fmt"
)

// SyntaxError reports malformed expression text.
type SyntaxError struct {
	// Pos is the byte offset of the offending token.
	Pos int

	// Line and Column are 1-based and derived from Pos.
	Line   int
	Column int

	Msg string
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Column, e.Msg)
}

// Is matches ErrSyntax.
func (e *SyntaxError) Is(target error) bool {
	return target == ErrSyntax
}

// NewSyntax creates a syntax error at byte offset pos of src.
func NewSyntax(src string, pos int, format string, args ...any) *SyntaxError {
	line, col := LineColumn(src, pos)
	return &SyntaxError{
		Pos:    pos,
		Line:   line,
		Column: col,
		Msg:    fmt.Sprintf(format, args...),
	}
}

// LineColumn converts a byte offset into 1-based line and column numbers.
func LineColumn(src string, pos int) (int, int) {
	if pos > len(src) {
		pos = len(src)
	}
	line, col := 1, 1
	for _, r := range src[:max(pos, 0)] {
		if r == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

// EvalError reports a failure while evaluating a parsed expression.
type EvalError struct {
	Kind Kind

	// Node is the kind of AST node being evaluated when the failure occurred.
	Node string

	// Pos is the byte offset of that node in the expression text.
	Pos int

	// Name is the identifier involved, if any.
	Name string

	Msg string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Node != "" {
		return fmt.Sprintf("%s: %s (%s at offset %d)", e.Kind, msg, e.Node, e.Pos)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

// Unwrap returns the underlying cause.
func (e *EvalError) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *EvalError) Is(target error) bool {
	s := e.Kind.Sentinel()
	return s != nil && target == s
}

// New creates an evaluation error of the given kind.
func New(kind Kind, msg string) *EvalError {
	return &EvalError{Kind: kind, Msg: msg}
}

// Newf creates an evaluation error with a formatted message.
func Newf(kind Kind, format string, args ...any) *EvalError {
	return &EvalError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap creates an evaluation error of the given kind around err.
func Wrap(kind Kind, err error, msg string) *EvalError {
	return &EvalError{Kind: kind, Msg: msg, Err: err}
}

// UndefinedName reports a name bound in no scope.
func UndefinedName(name string) *EvalError {
	return &EvalError{
		Kind: KindUndefinedName,
		Name: name,
		Msg:  fmt.Sprintf("name '%s' is not defined", name),
	}
}

// Unsupported reports a node kind the evaluator does not execute.
func Unsupported(node string, pos int) *EvalError {
	return &EvalError{
		Kind: KindUnsupportedNode,
		Node: node,
		Pos:  pos,
		Msg:  fmt.Sprintf("%s expressions are not supported", node),
	}
}

// Locate records the node being evaluated on err if none is recorded yet.
// The innermost node therefore wins. Errors of other types pass through.
func Locate(err error, node string, pos int) error {
	var evalErr *EvalError
	if errors.As(err, &evalErr) && evalErr.Node == "" {
		evalErr.Node = node
		evalErr.Pos = pos
	}
	return err
}
