// Package errors defines the failure taxonomy shared by the parser, the
// evaluator and the builtin functions.
//
// Every failure carries a Kind:
//   - Static kinds (syntax, unsupported node) depend only on the expression text
//     and can be detected when an expression is compiled.
//   - Runtime kinds depend on the data the expression is evaluated against.
//
// Evaluation is fail-fast: the first error aborts evaluation and is returned
// unchanged to the caller. Retrying with the same inputs yields the same error.
package errors

import (
	"context"
	"errors"
)

// Kind classifies an evaluation failure.
type Kind int

const (
	// KindUnknown is reported for errors that did not originate here.
	KindUnknown Kind = iota

	// KindSyntax indicates malformed expression text.
	KindSyntax

	// KindUnsupportedNode indicates a construct outside the evaluable subset.
	// Examples: comprehensions, assignment expressions, statements.
	KindUnsupportedNode

	// KindUndefinedName indicates a name bound in neither local nor global scope.
	KindUndefinedName

	// KindNotCallable indicates a call whose target is not a function.
	KindNotCallable

	// KindArityMismatch indicates a call with the wrong number or names of arguments.
	KindArityMismatch

	// KindTypeMismatch indicates an operation applied to incompatible value kinds.
	KindTypeMismatch

	// KindDepthExceeded indicates the expression nests deeper than allowed.
	KindDepthExceeded

	// KindUndefinedAttribute indicates access to an attribute outside the allowlist.
	KindUndefinedAttribute

	// KindKeyNotFound indicates a mapping lookup for an absent key.
	KindKeyNotFound

	// KindIndexOutOfRange indicates a sequence index past either end.
	KindIndexOutOfRange

	// KindArithmetic indicates division by zero or integer overflow.
	KindArithmetic

	// KindInvalidArgument indicates a well-typed but unacceptable argument value.
	KindInvalidArgument

	// KindBudgetExceeded indicates the evaluation step budget ran out.
	KindBudgetExceeded

	// KindCanceled indicates the evaluation context was canceled or timed out.
	KindCanceled

	// KindCallFailed indicates a host-provided function returned an error.
	KindCallFailed
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindSyntax:
		return "syntax_error"
	case KindUnsupportedNode:
		return "unsupported_node"
	case KindUndefinedName:
		return "undefined_name"
	case KindNotCallable:
		return "not_callable"
	case KindArityMismatch:
		return "arity_mismatch"
	case KindTypeMismatch:
		return "type_mismatch"
	case KindDepthExceeded:
		return "depth_exceeded"
	case KindUndefinedAttribute:
		return "undefined_attribute"
	case KindKeyNotFound:
		return "key_not_found"
	case KindIndexOutOfRange:
		return "index_out_of_range"
	case KindArithmetic:
		return "arithmetic_error"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindBudgetExceeded:
		return "budget_exceeded"
	case KindCanceled:
		return "canceled"
	case KindCallFailed:
		return "call_failed"
	default:
		return "unknown"
	}
}

// Sentinel errors, one per kind, for use with errors.Is.
var (
	ErrSyntax             = errors.New("syntax error")
	ErrUnsupportedNode    = errors.New("unsupported node")
	ErrUndefinedName      = errors.New("undefined name")
	ErrNotCallable        = errors.New("not callable")
	ErrArityMismatch      = errors.New("arity mismatch")
	ErrTypeMismatch       = errors.New("type mismatch")
	ErrDepthExceeded      = errors.New("maximum depth exceeded")
	ErrUndefinedAttribute = errors.New("undefined attribute")
	ErrKeyNotFound        = errors.New("key not found")
	ErrIndexOutOfRange    = errors.New("index out of range")
	ErrArithmetic         = errors.New("arithmetic error")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrBudgetExceeded     = errors.New("step budget exceeded")
	ErrCanceled           = errors.New("evaluation canceled")
	ErrCallFailed         = errors.New("call failed")
)

var sentinels = map[Kind]error{
	KindSyntax:             ErrSyntax,
	KindUnsupportedNode:    ErrUnsupportedNode,
	KindUndefinedName:      ErrUndefinedName,
	KindNotCallable:        ErrNotCallable,
	KindArityMismatch:      ErrArityMismatch,
	KindTypeMismatch:       ErrTypeMismatch,
	KindDepthExceeded:      ErrDepthExceeded,
	KindUndefinedAttribute: ErrUndefinedAttribute,
	KindKeyNotFound:        ErrKeyNotFound,
	KindIndexOutOfRange:    ErrIndexOutOfRange,
	KindArithmetic:         ErrArithmetic,
	KindInvalidArgument:    ErrInvalidArgument,
	KindBudgetExceeded:     ErrBudgetExceeded,
	KindCanceled:           ErrCanceled,
	KindCallFailed:         ErrCallFailed,
}

// Sentinel returns the sentinel error for a kind, or nil for KindUnknown.
func (k Kind) Sentinel() error {
	return sentinels[k]
}

// KindOf determines the kind of an error.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var synErr *SyntaxError
	if errors.As(err, &synErr) {
		return KindSyntax
	}

	var evalErr *EvalError
	if errors.As(err, &evalErr) {
		return evalErr.Kind
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}

	for kind, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return KindUnknown
}

// IsStatic reports whether the error depends only on the expression text.
// Static errors are detected at compile time; all others depend on data.
func IsStatic(err error) bool {
	switch KindOf(err) {
	case KindSyntax, KindUnsupportedNode:
		return true
	default:
		return false
	}
}

// IsLimit reports whether the error came from a resource limit rather than
// from the expression's semantics.
func IsLimit(err error) bool {
	switch KindOf(err) {
	case KindDepthExceeded, KindBudgetExceeded, KindCanceled:
		return true
	default:
		return false
	}
}
