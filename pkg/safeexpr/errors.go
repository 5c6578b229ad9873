package safeexpr

import (
	sxerrors "github.com/randalmurphal/safeexpr/pkg/safeexpr/errors"
)

// Error types returned by compilation and evaluation.
type (
	// SyntaxError reports malformed expression text.
	SyntaxError = sxerrors.SyntaxError

	// EvalError reports a failure while validating or evaluating an expression.
	EvalError = sxerrors.EvalError

	// ErrorKind classifies failures.
	ErrorKind = sxerrors.Kind
)

// Sentinel errors for use with errors.Is.
var (
	ErrSyntax             = sxerrors.ErrSyntax
	ErrUnsupportedNode    = sxerrors.ErrUnsupportedNode
	ErrUndefinedName      = sxerrors.ErrUndefinedName
	ErrNotCallable        = sxerrors.ErrNotCallable
	ErrArityMismatch      = sxerrors.ErrArityMismatch
	ErrTypeMismatch       = sxerrors.ErrTypeMismatch
	ErrDepthExceeded      = sxerrors.ErrDepthExceeded
	ErrUndefinedAttribute = sxerrors.ErrUndefinedAttribute
	ErrKeyNotFound        = sxerrors.ErrKeyNotFound
	ErrIndexOutOfRange    = sxerrors.ErrIndexOutOfRange
	ErrArithmetic         = sxerrors.ErrArithmetic
	ErrInvalidArgument    = sxerrors.ErrInvalidArgument
	ErrBudgetExceeded     = sxerrors.ErrBudgetExceeded
	ErrCanceled           = sxerrors.ErrCanceled
	ErrCallFailed         = sxerrors.ErrCallFailed
)

// KindOf classifies err. Errors from outside this module are KindUnknown.
func KindOf(err error) ErrorKind {
	return sxerrors.KindOf(err)
}

// IsStatic reports whether err depends only on the expression text and
// would therefore be reported by Compile.
func IsStatic(err error) bool {
	return sxerrors.IsStatic(err)
}
