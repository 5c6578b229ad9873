// Package ast defines the syntax tree produced by the parser.
//
// The node set is closed: Node has an unexported method, so only the types in
// this package implement it. Evaluators switch over the concrete types and
// reject anything they do not handle.
package ast

// Kind identifies the variant of a Node.
type Kind int

const (
	KindLiteral Kind = iota
	KindName
	KindBinaryOp
	KindUnaryOp
	KindBoolOp
	KindCompare
	KindCall
	KindConditional
	KindList
	KindTuple
	KindSet
	KindDict
	KindSubscript
	KindSlice
	KindAttribute
	KindLambda

	// The kinds below are recognised by the parser so that valid-looking input
	// fails with a precise error instead of a syntax error. No evaluator
	// executes them.
	KindComprehension
	KindNamedExpr
	KindStarred
	KindFormattedString
	KindStatement
)

var kindNames = [...]string{
	KindLiteral:         "Literal",
	KindName:            "Name",
	KindBinaryOp:        "BinaryOp",
	KindUnaryOp:         "UnaryOp",
	KindBoolOp:          "BoolOp",
	KindCompare:         "Compare",
	KindCall:            "Call",
	KindConditional:     "Conditional",
	KindList:            "ListLit",
	KindTuple:           "TupleLit",
	KindSet:             "SetLit",
	KindDict:            "DictLit",
	KindSubscript:       "Subscript",
	KindSlice:           "Slice",
	KindAttribute:       "Attribute",
	KindLambda:          "Lambda",
	KindComprehension:   "Comprehension",
	KindNamedExpr:       "NamedExpr",
	KindStarred:         "Starred",
	KindFormattedString: "FormattedString",
	KindStatement:       "Statement",
}

// String returns the node kind name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// Evaluable reports whether nodes of this kind have evaluation semantics.
func (k Kind) Evaluable() bool {
	return k >= KindLiteral && k <= KindLambda
}

// Kinds returns every node kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, len(kindNames))
	for i := range kindNames {
		kinds[i] = Kind(i)
	}
	return kinds
}

// Node is an immutable syntax tree node.
type Node interface {
	// Kind returns the node variant.
	Kind() Kind

	// Pos returns the byte offset of the node in the source text.
	Pos() int

	// String renders the node back to fully parenthesised source form.
	String() string

	node()
}
