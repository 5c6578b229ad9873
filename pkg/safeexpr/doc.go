/*
Package safeexpr evaluates Python-style expressions inside a sandbox.

# Overview

safeexpr is for conditions, filters and computed fields supplied by
configuration or end users. Expressions use Python syntax and semantics but
run on a restricted evaluator: there are no statements, no imports, no
comprehensions and no access to anything the caller did not pass in. Every
evaluation is bounded in recursion depth, and optionally in steps and time.

# Basic Usage

	v, err := safeexpr.Eval("price * qty if qty > 0 else 0", map[string]any{
	    "price": 2.5, "qty": 4,
	})
	// v: 10.0

Build an Engine to configure limits, functions and observability, and to
reuse parsed expressions:

	engine := safeexpr.New(
	    safeexpr.WithMaxSteps(10_000),
	    safeexpr.WithTimeout(50*time.Millisecond),
	    safeexpr.WithFunction("geo", geoLookup),
	)

	prog, err := engine.Compile("geo(ip) in allowed_regions")
	if err != nil {
	    // syntax error or unsupported construct
	}
	ok, err := prog.RunBool(ctx, map[string]any{"ip": ip, "allowed_regions": regions})

# Language

Supported: literals (int, float, str, True, False, None), list, tuple, set
and dict displays, arithmetic, bitwise, comparison (chained), boolean and
membership operators, conditional expressions, subscripts and slices,
calls with keyword arguments, lambdas with defaults and *args, and a fixed
set of builtins (len, range, sorted, map, filter, zip, min, max, sum, any,
all, reduce, abs and the type constructors). Strings, dicts, lists and sets
expose their non-mutating methods, such as s.upper() or d.get(k, default).

Comprehensions, assignment expressions, f-strings, starred arguments and
statements parse but are rejected by Compile with an error of kind
UnsupportedNode.

# Values

Caller values are converted on access: Go integers become int64, floats
float64, slices lists and maps dicts. Go funcs are callable. The caller's
data is never modified. Results are runtime values from the value package;
value.ToGo converts them back to plain Go types.

# Errors

Compile returns *SyntaxError for malformed text and *EvalError of kind
UnsupportedNode for rejected constructs. Run returns *EvalError with a Kind
(UndefinedName, TypeMismatch, DepthExceeded, ...) and the kind and offset
of the innermost node being evaluated. Evaluation stops at the first error.

	if errors.Is(err, safeexpr.ErrUndefinedName) { ... }
	switch safeexpr.KindOf(err) { ... }

# Observability

WithLogger enables structured logging via log/slog. WithMetrics and
WithTracing enable OpenTelemetry metrics and spans using the global
providers. See the observability package.

# Thread Safety

Engines and Programs are safe for concurrent use.
*/
package safeexpr
