/*
Package template expands ${ expression } placeholders in strings.

# Overview

Each placeholder holds a full sandboxed expression, evaluated against the
variables passed to Expand and rendered the way Python's str() would:

	exp := template.NewExpander(engine)
	out, _ := exp.Expand(ctx, "Hello ${name.title()}, you owe ${price * qty}", map[string]any{
	    "name": "ada", "price": 2.5, "qty": 4,
	})
	// out: "Hello Ada, you owe 10.0"

Braces, brackets and string literals inside a placeholder are matched, so
dict literals and strings containing "}" work. Write "$${" for a literal
"${". A lone "$" is copied unchanged.

# Missing Variables

By default a placeholder that names an unknown variable or dict key is kept
as-is:

	out, _ := exp.Expand(ctx, "Hello ${missing}", nil)
	// out: "Hello ${missing}"

Configure behavior with options:

	exp = template.NewExpander(engine, template.WithMissingAction(template.MissingEmpty))
	exp = template.NewExpander(engine, template.WithMissingAction(template.MissingError))

Other evaluation failures, such as type errors or division by zero, always
fail the expansion.

# Batch Expansion

ExpandAll expands a slice of strings and ExpandMap expands every string value
of a map, recursing into nested maps and lists.

# Thread Safety

Expander is safe for concurrent use when its Evaluator is.
*/
package template
