/*
Package eval executes syntax trees produced by the parser.

# Evaluation

An Evaluator walks the tree once, depth first. Every node kind has a fixed
meaning; recognised-but-rejected kinds (comprehensions, assignment
expressions, starred arguments, f-strings and statements) fail with an
UnsupportedNode error before any of their children run.

	ev := eval.New(eval.WithMaxDepth(100))
	root, _ := parser.Parse("price * qty if qty > 0 else 0")
	v, err := ev.Evaluate(ctx, root, map[string]any{"price": 2.5, "qty": 4})

Name lookup goes through the caller's variables first and then the global
table (builtins.Globals unless WithGlobals replaces it). Presence decides: a
variable bound to None or 0 hides a global of the same name.

# Lambdas

A lambda evaluates to a *Closure capturing a snapshot of its defining scope.
Calling it re-enters the same evaluator with a new frame holding the
arguments. Closures may be returned to Go and called later.

# Limits

Three limits apply to a single evaluation, including every closure call made
during it:

  - MaxDepth bounds recursion (DepthExceeded).
  - MaxSteps bounds the number of nodes visited (BudgetExceeded).
  - The context passed to Evaluate is checked at every node (Canceled).

# Attributes

Attribute access is limited to an allowlist of non-mutating methods on str,
dict, list, tuple and set values. Everything else, including any attribute of
a host Go value, fails with UndefinedAttribute.
*/
package eval
