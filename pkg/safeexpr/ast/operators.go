package ast

// BinaryOperator tags a BinaryOp node.
type BinaryOperator int

const (
	Add BinaryOperator = iota
	Sub
	Mult
	MatMult
	Div
	FloorDiv
	Mod
	Pow
	LShift
	RShift
	BitOr
	BitXor
	BitAnd
)

var binarySymbols = [...]string{
	Add:      "+",
	Sub:      "-",
	Mult:     "*",
	MatMult:  "@",
	Div:      "/",
	FloorDiv: "//",
	Mod:      "%",
	Pow:      "**",
	LShift:   "<<",
	RShift:   ">>",
	BitOr:    "|",
	BitXor:   "^",
	BitAnd:   "&",
}

// String returns the operator symbol.
func (op BinaryOperator) String() string {
	if op < 0 || int(op) >= len(binarySymbols) {
		return "?"
	}
	return binarySymbols[op]
}

// UnaryOperator tags a UnaryOp node.
type UnaryOperator int

const (
	Invert UnaryOperator = iota
	Not
	UAdd
	USub
)

// String returns the operator symbol.
func (op UnaryOperator) String() string {
	switch op {
	case Invert:
		return "~"
	case Not:
		return "not"
	case UAdd:
		return "+"
	case USub:
		return "-"
	default:
		return "?"
	}
}

// BoolOperator tags a BoolOp node.
type BoolOperator int

const (
	And BoolOperator = iota
	Or
)

// String returns the operator keyword.
func (op BoolOperator) String() string {
	switch op {
	case And:
		return "and"
	case Or:
		return "or"
	default:
		return "?"
	}
}

// CmpOperator tags one link of a Compare chain.
type CmpOperator int

const (
	Eq CmpOperator = iota
	NotEq
	Lt
	LtE
	Gt
	GtE
	Is
	IsNot
	In
	NotIn
)

var cmpSymbols = [...]string{
	Eq:    "==",
	NotEq: "!=",
	Lt:    "<",
	LtE:   "<=",
	Gt:    ">",
	GtE:   ">=",
	Is:    "is",
	IsNot: "is not",
	In:    "in",
	NotIn: "not in",
}

// String returns the operator symbol.
func (op CmpOperator) String() string {
	if op < 0 || int(op) >= len(cmpSymbols) {
		return "?"
	}
	return cmpSymbols[op]
}
