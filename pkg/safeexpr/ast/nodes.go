package ast

import (
	"math"
	"strconv"
	"strings"
)

// Literal is a constant: None, a bool, an int64, a float64 or a string.
type Literal struct {
	Offset int
	Value  any
}

// Name is a variable reference.
type Name struct {
	Offset int
	Ident  string
}

// BinaryOp applies an arithmetic or bitwise operator to two operands.
type BinaryOp struct {
	Offset      int
	Op          BinaryOperator
	Left, Right Node
}

// UnaryOp applies a prefix operator.
type UnaryOp struct {
	Offset  int
	Op      UnaryOperator
	Operand Node
}

// BoolOp combines two or more operands with and/or.
type BoolOp struct {
	Offset int
	Op     BoolOperator
	Values []Node
}

// Compare is a comparison chain: Left Ops[0] Comparators[0] Ops[1] ...
type Compare struct {
	Offset      int
	Left        Node
	Ops         []CmpOperator
	Comparators []Node
}

// Keyword is a named call argument.
type Keyword struct {
	Name  string
	Value Node
}

// Call invokes Func with positional and keyword arguments.
type Call struct {
	Offset   int
	Func     Node
	Args     []Node
	Keywords []Keyword
}

// Conditional is `Body if Test else OrElse`.
type Conditional struct {
	Offset             int
	Test, Body, OrElse Node
}

// ListLit is a list display.
type ListLit struct {
	Offset int
	Elts   []Node
}

// TupleLit is a tuple display, parenthesised or bare.
type TupleLit struct {
	Offset int
	Elts   []Node
}

// SetLit is a non-empty set display.
type SetLit struct {
	Offset int
	Elts   []Node
}

// DictLit is a dict display. Keys and Values are parallel.
type DictLit struct {
	Offset int
	Keys   []Node
	Values []Node
}

// Subscript is Value[Index]. Index may be a Slice or a TupleLit of items.
type Subscript struct {
	Offset int
	Value  Node
	Index  Node
}

// Slice is lower:upper:step inside a subscript. Absent parts are nil.
type Slice struct {
	Offset             int
	Lower, Upper, Step Node
}

// Attribute is Value.Attr.
type Attribute struct {
	Offset int
	Value  Node
	Attr   string
}

// Lambda is an anonymous function. Defaults apply to the last len(Defaults)
// parameters. Vararg names the tuple collecting extra positional arguments.
type Lambda struct {
	Offset   int
	Params   []string
	Defaults []Node
	Vararg   string
	Body     Node
}

// ComprehensionForm distinguishes the four comprehension displays.
type ComprehensionForm int

const (
	ListComp ComprehensionForm = iota
	SetComp
	DictComp
	GeneratorExp
)

// ComprehensionClause is one `for Target in Iter if ...` clause.
type ComprehensionClause struct {
	Target Node
	Iter   Node
	Ifs    []Node
}

// Comprehension is a list, set, dict or generator comprehension.
// Value is set only for dict comprehensions, where Elt is the key.
type Comprehension struct {
	Offset  int
	Form    ComprehensionForm
	Elt     Node
	Value   Node
	Clauses []ComprehensionClause
}

// NamedExpr is `Target := Value`.
type NamedExpr struct {
	Offset int
	Target string
	Value  Node
}

// Starred is *Value, or **Value when Double is set.
type Starred struct {
	Offset int
	Value  Node
	Double bool
}

// FormattedString is an f-string. Its contents are kept verbatim.
type FormattedString struct {
	Offset int
	Raw    string
}

// Statement stands for statement-level input such as an assignment or an
// import. Keyword names the statement form.
type Statement struct {
	Offset  int
	Keyword string
}

func (*Literal) node()         {}
func (*Name) node()            {}
func (*BinaryOp) node()        {}
func (*UnaryOp) node()         {}
func (*BoolOp) node()          {}
func (*Compare) node()         {}
func (*Call) node()            {}
func (*Conditional) node()     {}
func (*ListLit) node()         {}
func (*TupleLit) node()        {}
func (*SetLit) node()          {}
func (*DictLit) node()         {}
func (*Subscript) node()       {}
func (*Slice) node()           {}
func (*Attribute) node()       {}
func (*Lambda) node()          {}
func (*Comprehension) node()   {}
func (*NamedExpr) node()       {}
func (*Starred) node()         {}
func (*FormattedString) node() {}
func (*Statement) node()       {}

func (*Literal) Kind() Kind         { return KindLiteral }
func (*Name) Kind() Kind            { return KindName }
func (*BinaryOp) Kind() Kind        { return KindBinaryOp }
func (*UnaryOp) Kind() Kind         { return KindUnaryOp }
func (*BoolOp) Kind() Kind          { return KindBoolOp }
func (*Compare) Kind() Kind         { return KindCompare }
func (*Call) Kind() Kind            { return KindCall }
func (*Conditional) Kind() Kind     { return KindConditional }
func (*ListLit) Kind() Kind         { return KindList }
func (*TupleLit) Kind() Kind        { return KindTuple }
func (*SetLit) Kind() Kind          { return KindSet }
func (*DictLit) Kind() Kind         { return KindDict }
func (*Subscript) Kind() Kind       { return KindSubscript }
func (*Slice) Kind() Kind           { return KindSlice }
func (*Attribute) Kind() Kind       { return KindAttribute }
func (*Lambda) Kind() Kind          { return KindLambda }
func (*Comprehension) Kind() Kind   { return KindComprehension }
func (*NamedExpr) Kind() Kind       { return KindNamedExpr }
func (*Starred) Kind() Kind         { return KindStarred }
func (*FormattedString) Kind() Kind { return KindFormattedString }
func (*Statement) Kind() Kind       { return KindStatement }

func (n *Literal) Pos() int         { return n.Offset }
func (n *Name) Pos() int            { return n.Offset }
func (n *BinaryOp) Pos() int        { return n.Offset }
func (n *UnaryOp) Pos() int         { return n.Offset }
func (n *BoolOp) Pos() int          { return n.Offset }
func (n *Compare) Pos() int         { return n.Offset }
func (n *Call) Pos() int            { return n.Offset }
func (n *Conditional) Pos() int     { return n.Offset }
func (n *ListLit) Pos() int         { return n.Offset }
func (n *TupleLit) Pos() int        { return n.Offset }
func (n *SetLit) Pos() int          { return n.Offset }
func (n *DictLit) Pos() int         { return n.Offset }
func (n *Subscript) Pos() int       { return n.Offset }
func (n *Slice) Pos() int           { return n.Offset }
func (n *Attribute) Pos() int       { return n.Offset }
func (n *Lambda) Pos() int          { return n.Offset }
func (n *Comprehension) Pos() int   { return n.Offset }
func (n *NamedExpr) Pos() int       { return n.Offset }
func (n *Starred) Pos() int         { return n.Offset }
func (n *FormattedString) Pos() int { return n.Offset }
func (n *Statement) Pos() int       { return n.Offset }

func (n *Literal) String() string {
	switch v := n.Value.(type) {
	case nil:
		return "None"
	case bool:
		if v {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return strconv.FormatFloat(v, 'g', -1, 64)
		}
		s := strconv.FormatFloat(v, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}
		return s
	case string:
		return strconv.Quote(v)
	default:
		return "?"
	}
}

func (n *Name) String() string { return n.Ident }

func (n *BinaryOp) String() string {
	return "(" + n.Left.String() + " " + n.Op.String() + " " + n.Right.String() + ")"
}

func (n *UnaryOp) String() string {
	if n.Op == Not {
		return "(not " + n.Operand.String() + ")"
	}
	return "(" + n.Op.String() + n.Operand.String() + ")"
}

func (n *BoolOp) String() string {
	return "(" + join(n.Values, " "+n.Op.String()+" ") + ")"
}

func (n *Compare) String() string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(n.Left.String())
	for i, op := range n.Ops {
		b.WriteString(" " + op.String() + " ")
		b.WriteString(n.Comparators[i].String())
	}
	b.WriteString(")")
	return b.String()
}

func (n *Call) String() string {
	args := make([]string, 0, len(n.Args)+len(n.Keywords))
	for _, a := range n.Args {
		args = append(args, a.String())
	}
	for _, kw := range n.Keywords {
		args = append(args, kw.Name+"="+kw.Value.String())
	}
	return n.Func.String() + "(" + strings.Join(args, ", ") + ")"
}

func (n *Conditional) String() string {
	return "(" + n.Body.String() + " if " + n.Test.String() + " else " + n.OrElse.String() + ")"
}

func (n *ListLit) String() string { return "[" + join(n.Elts, ", ") + "]" }

func (n *TupleLit) String() string {
	if len(n.Elts) == 1 {
		return "(" + n.Elts[0].String() + ",)"
	}
	return "(" + join(n.Elts, ", ") + ")"
}

func (n *SetLit) String() string { return "{" + join(n.Elts, ", ") + "}" }

func (n *DictLit) String() string {
	parts := make([]string, len(n.Keys))
	for i, k := range n.Keys {
		if s, ok := k.(*Starred); ok && n.Values[i] == nil {
			parts[i] = s.String()
			continue
		}
		parts[i] = k.String() + ": " + n.Values[i].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (n *Subscript) String() string {
	idx := n.Index.String()
	if t, ok := n.Index.(*TupleLit); ok && len(t.Elts) > 0 {
		idx = join(t.Elts, ", ")
	}
	return n.Value.String() + "[" + idx + "]"
}

func (n *Slice) String() string {
	s := optional(n.Lower) + ":" + optional(n.Upper)
	if n.Step != nil {
		s += ":" + n.Step.String()
	}
	return s
}

func (n *Attribute) String() string { return n.Value.String() + "." + n.Attr }

func (n *Lambda) String() string {
	params := make([]string, 0, len(n.Params)+1)
	firstDefault := len(n.Params) - len(n.Defaults)
	for i, p := range n.Params {
		if i >= firstDefault {
			p += "=" + n.Defaults[i-firstDefault].String()
		}
		params = append(params, p)
	}
	if n.Vararg != "" {
		params = append(params, "*"+n.Vararg)
	}
	if len(params) == 0 {
		return "(lambda: " + n.Body.String() + ")"
	}
	return "(lambda " + strings.Join(params, ", ") + ": " + n.Body.String() + ")"
}

func (n *Comprehension) String() string {
	var b strings.Builder
	b.WriteString(n.Elt.String())
	if n.Form == DictComp {
		b.WriteString(": " + n.Value.String())
	}
	for _, c := range n.Clauses {
		b.WriteString(" for " + c.Target.String() + " in " + c.Iter.String())
		for _, cond := range c.Ifs {
			b.WriteString(" if " + cond.String())
		}
	}
	switch n.Form {
	case ListComp:
		return "[" + b.String() + "]"
	case GeneratorExp:
		return "(" + b.String() + ")"
	default:
		return "{" + b.String() + "}"
	}
}

func (n *NamedExpr) String() string { return "(" + n.Target + " := " + n.Value.String() + ")" }

func (n *Starred) String() string {
	if n.Double {
		return "**" + n.Value.String()
	}
	return "*" + n.Value.String()
}

func (n *FormattedString) String() string { return n.Raw }

func (n *Statement) String() string { return "<" + n.Keyword + " statement>" }

func join(nodes []Node, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, sep)
}

func optional(n Node) string {
	if n == nil {
		return ""
	}
	return n.String()
}
