// Package parser turns expression text into an ast.Node.
//
// The accepted grammar is the expression subset of Python: literals, names,
// arithmetic, bitwise, boolean and comparison operators with Python
// precedence, conditional expressions, displays, subscripts and slices,
// attribute access, calls and lambdas. Comprehensions, assignment
// expressions, starred items, f-strings and statements are parsed into
// dedicated node kinds so that evaluators can reject them precisely.
//
// Malformed input fails with *errors.SyntaxError.
package parser

import (
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/ast"
	sxerrors "github.com/randalmurphal/safeexpr/pkg/safeexpr/errors"
)

// DefaultMaxNesting bounds parser recursion.
const DefaultMaxNesting = 500

// Binding powers, lowest first.
const (
	precLowest = iota
	precOr
	precAnd
	precNot
	precCompare
	precBitOr
	precBitXor
	precBitAnd
	precShift
	precSum
	precProduct
	precUnary
	precPower
)

var binaryPrecedence = map[string]int{
	"|":  precBitOr,
	"^":  precBitXor,
	"&":  precBitAnd,
	"<<": precShift,
	">>": precShift,
	"+":  precSum,
	"-":  precSum,
	"*":  precProduct,
	"@":  precProduct,
	"/":  precProduct,
	"//": precProduct,
	"%":  precProduct,
	"**": precPower,
	"<":  precCompare,
	">":  precCompare,
	"<=": precCompare,
	">=": precCompare,
	"==": precCompare,
	"!=": precCompare,
}

var binaryOperators = map[string]ast.BinaryOperator{
	"+":  ast.Add,
	"-":  ast.Sub,
	"*":  ast.Mult,
	"@":  ast.MatMult,
	"/":  ast.Div,
	"//": ast.FloorDiv,
	"%":  ast.Mod,
	"**": ast.Pow,
	"<<": ast.LShift,
	">>": ast.RShift,
	"|":  ast.BitOr,
	"^":  ast.BitXor,
	"&":  ast.BitAnd,
}

var comparisonOperators = map[string]ast.CmpOperator{
	"==": ast.Eq,
	"!=": ast.NotEq,
	"<":  ast.Lt,
	"<=": ast.LtE,
	">":  ast.Gt,
	">=": ast.GtE,
}

var unaryOperators = map[string]ast.UnaryOperator{
	"-": ast.USub,
	"+": ast.UAdd,
	"~": ast.Invert,
}

// Option configures parsing.
type Option func(*Parser)

// WithMaxNesting sets the maximum nesting depth of the expression.
func WithMaxNesting(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxNesting = n
		}
	}
}

// Parser is a Pratt parser over a token slice. A Parser is single-use.
type Parser struct {
	src        string
	tokens     []Token
	pos        int
	nesting    int
	maxNesting int
}

// Parse parses src as a single expression.
func Parse(src string, opts ...Option) (ast.Node, error) {
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	p := &Parser{src: src, tokens: tokens, maxNesting: DefaultMaxNesting}
	for _, opt := range opts {
		opt(p)
	}
	return p.parseTop()
}

func (p *Parser) cur() Token { return p.tokens[p.pos] }

func (p *Parser) peek() Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) isOp(sym string) bool {
	tok := p.cur()
	return tok.Type == OP && tok.Text == sym
}

func (p *Parser) isKeyword(kw string) bool {
	tok := p.cur()
	return tok.Type == KEYWORD && tok.Text == kw
}

func (p *Parser) expectOp(sym string) error {
	if !p.isOp(sym) {
		return p.errorf(p.cur(), "expected '%s', found %s", sym, p.cur())
	}
	p.advance()
	return nil
}

func (p *Parser) expectKeyword(kw string) error {
	if !p.isKeyword(kw) {
		return p.errorf(p.cur(), "expected '%s', found %s", kw, p.cur())
	}
	p.advance()
	return nil
}

func (p *Parser) errorf(tok Token, format string, args ...any) error {
	return sxerrors.NewSyntax(p.src, tok.Pos, format, args...)
}

func (p *Parser) unexpected() error {
	tok := p.cur()
	if tok.Type == EOF {
		return p.errorf(tok, "unexpected end of input")
	}
	return p.errorf(tok, "unexpected %s", tok)
}

// enter guards recursion depth. Callers must defer p.leave().
func (p *Parser) enter() error {
	p.nesting++
	if p.nesting > p.maxNesting {
		return p.errorf(p.cur(), "expression is nested too deeply (limit %d)", p.maxNesting)
	}
	return nil
}

func (p *Parser) leave() { p.nesting-- }

// startsExpression reports whether tok can begin an expression.
func startsExpression(tok Token) bool {
	switch tok.Type {
	case NAME, INT, FLOAT, STRING, FSTRING:
		return true
	case KEYWORD:
		switch tok.Text {
		case "not", "lambda", "True", "False", "None":
			return true
		}
	case OP:
		switch tok.Text {
		case "(", "[", "{", "-", "+", "~", "*":
			return true
		}
	}
	return false
}

func (p *Parser) parseTop() (ast.Node, error) {
	for p.cur().Type == NEWLINE {
		p.advance()
	}
	tok := p.cur()
	if tok.Type == EOF {
		return nil, p.errorf(tok, "empty expression")
	}
	if tok.Type == KEYWORD && statementKeywords[tok.Text] {
		return &ast.Statement{Offset: tok.Pos, Keyword: tok.Text}, nil
	}

	node, err := p.parseExprList()
	if err != nil {
		return nil, err
	}

	switch {
	case p.isOp("="):
		if err := p.skipAssignment(); err != nil {
			return nil, err
		}
		return &ast.Statement{Offset: node.Pos(), Keyword: "assignment"}, nil
	case p.cur().Type == OP && augmentedAssign[p.cur().Text]:
		p.advance()
		if _, err := p.parseExprList(); err != nil {
			return nil, err
		}
		if err := p.expectEnd(); err != nil {
			return nil, err
		}
		return &ast.Statement{Offset: node.Pos(), Keyword: "augmented assignment"}, nil
	}

	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return node, nil
}

// skipAssignment validates the right-hand sides of `a = b = c`.
func (p *Parser) skipAssignment() error {
	for p.isOp("=") {
		p.advance()
		if _, err := p.parseExprList(); err != nil {
			return err
		}
	}
	return p.expectEnd()
}

func (p *Parser) expectEnd() error {
	for p.cur().Type == NEWLINE {
		p.advance()
	}
	if p.cur().Type != EOF {
		return p.unexpected()
	}
	return nil
}

// parseExprList parses one or more comma separated items. More than one item,
// or a trailing comma, yields a tuple.
func (p *Parser) parseExprList() (ast.Node, error) {
	first, err := p.parseStarOrNamed()
	if err != nil {
		return nil, err
	}
	if !p.isOp(",") {
		return first, nil
	}
	elts := []ast.Node{first}
	for p.isOp(",") {
		p.advance()
		if !startsExpression(p.cur()) {
			break
		}
		elt, err := p.parseStarOrNamed()
		if err != nil {
			return nil, err
		}
		elts = append(elts, elt)
	}
	return &ast.TupleLit{Offset: first.Pos(), Elts: elts}, nil
}

func (p *Parser) parseStarOrNamed() (ast.Node, error) {
	if p.isOp("*") {
		tok := p.advance()
		value, err := p.parseBinary(precCompare)
		if err != nil {
			return nil, err
		}
		return &ast.Starred{Offset: tok.Pos, Value: value}, nil
	}
	return p.parseNamedTest()
}

func (p *Parser) parseNamedTest() (ast.Node, error) {
	if p.cur().Type == NAME && p.peek().Type == OP && p.peek().Text == ":=" {
		target := p.advance()
		p.advance()
		value, err := p.parseTest()
		if err != nil {
			return nil, err
		}
		return &ast.NamedExpr{Offset: target.Pos, Target: target.Text, Value: value}, nil
	}
	return p.parseTest()
}

// parseTest parses a full expression: a lambda, a conditional or an or-test.
func (p *Parser) parseTest() (ast.Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if p.isKeyword("lambda") {
		return p.parseLambda()
	}
	body, err := p.parseBinary(precLowest)
	if err != nil {
		return nil, err
	}
	if !p.isKeyword("if") {
		return body, nil
	}
	p.advance()
	test, err := p.parseBinary(precLowest)
	if err != nil {
		return nil, err
	}
	if err := p.expectKeyword("else"); err != nil {
		return nil, err
	}
	orElse, err := p.parseTest()
	if err != nil {
		return nil, err
	}
	return &ast.Conditional{Offset: body.Pos(), Test: test, Body: body, OrElse: orElse}, nil
}

// infixPrecedence returns the binding power of the current token as an
// infix operator, or precLowest if it is not one.
func (p *Parser) infixPrecedence() int {
	tok := p.cur()
	switch tok.Type {
	case OP:
		return binaryPrecedence[tok.Text]
	case KEYWORD:
		switch tok.Text {
		case "or":
			return precOr
		case "and":
			return precAnd
		case "in", "is":
			return precCompare
		case "not":
			if next := p.peek(); next.Type == KEYWORD && next.Text == "in" {
				return precCompare
			}
		}
	}
	return precLowest
}

// parseBinary parses operators binding tighter than minPrec.
func (p *Parser) parseBinary(minPrec int) (ast.Node, error) {
	left, err := p.parseUnary(minPrec)
	if err != nil {
		return nil, err
	}

	for {
		prec := p.infixPrecedence()
		if prec <= minPrec {
			return left, nil
		}

		switch {
		case prec == precCompare:
			left, err = p.parseComparison(left)
		case prec == precOr || prec == precAnd:
			left, err = p.parseBoolOp(left, prec)
		case prec == precPower:
			tok := p.advance()
			var right ast.Node
			// Right associative, and the exponent may carry a unary sign.
			right, err = p.parseBinary(precUnary)
			if err == nil {
				left = &ast.BinaryOp{Offset: tok.Pos, Op: ast.Pow, Left: left, Right: right}
			}
		default:
			tok := p.advance()
			var right ast.Node
			right, err = p.parseBinary(prec)
			if err == nil {
				left = &ast.BinaryOp{Offset: tok.Pos, Op: binaryOperators[tok.Text], Left: left, Right: right}
			}
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseBoolOp(left ast.Node, prec int) (ast.Node, error) {
	kw := p.cur().Text
	op := ast.And
	if kw == "or" {
		op = ast.Or
	}
	values := []ast.Node{left}
	for p.isKeyword(kw) {
		p.advance()
		right, err := p.parseBinary(prec)
		if err != nil {
			return nil, err
		}
		values = append(values, right)
	}
	return &ast.BoolOp{Offset: left.Pos(), Op: op, Values: values}, nil
}

func (p *Parser) parseComparison(left ast.Node) (ast.Node, error) {
	cmp := &ast.Compare{Offset: left.Pos(), Left: left}
	for p.infixPrecedence() == precCompare {
		tok := p.advance()
		var op ast.CmpOperator
		switch {
		case tok.Type == OP:
			op = comparisonOperators[tok.Text]
		case tok.Text == "in":
			op = ast.In
		case tok.Text == "not":
			p.advance() // in
			op = ast.NotIn
		case tok.Text == "is":
			op = ast.Is
			if p.isKeyword("not") {
				p.advance()
				op = ast.IsNot
			}
		}
		right, err := p.parseBinary(precCompare)
		if err != nil {
			return nil, err
		}
		cmp.Ops = append(cmp.Ops, op)
		cmp.Comparators = append(cmp.Comparators, right)
	}
	return cmp, nil
}

// parseUnary parses a prefix operator application or a postfix expression.
// minPrec is the binding power of the context, which decides whether `not`
// is allowed here.
func (p *Parser) parseUnary(minPrec int) (ast.Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	tok := p.cur()
	if tok.Type == OP {
		if op, ok := unaryOperators[tok.Text]; ok {
			p.advance()
			operand, err := p.parseBinary(precUnary)
			if err != nil {
				return nil, err
			}
			return &ast.UnaryOp{Offset: tok.Pos, Op: op, Operand: operand}, nil
		}
	}
	if tok.Type == KEYWORD && tok.Text == "not" {
		if minPrec >= precNot {
			return nil, p.unexpected()
		}
		p.advance()
		operand, err := p.parseBinary(precNot)
		if err != nil {
			return nil, err
		}
		return &ast.UnaryOp{Offset: tok.Pos, Op: ast.Not, Operand: operand}, nil
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() (ast.Node, error) {
	node, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isOp("("):
			node, err = p.parseCall(node)
		case p.isOp("["):
			node, err = p.parseSubscript(node)
		case p.isOp("."):
			tok := p.advance()
			name := p.cur()
			if name.Type != NAME {
				return nil, p.errorf(name, "expected attribute name, found %s", name)
			}
			p.advance()
			node = &ast.Attribute{Offset: tok.Pos, Value: node, Attr: name.Text}
		default:
			return node, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseAtom() (ast.Node, error) {
	tok := p.cur()
	switch tok.Type {
	case NAME:
		p.advance()
		return &ast.Name{Offset: tok.Pos, Ident: tok.Text}, nil
	case INT, FLOAT:
		p.advance()
		return &ast.Literal{Offset: tok.Pos, Value: tok.Value}, nil
	case STRING, FSTRING:
		return p.parseStrings(), nil
	case KEYWORD:
		switch tok.Text {
		case "True":
			p.advance()
			return &ast.Literal{Offset: tok.Pos, Value: true}, nil
		case "False":
			p.advance()
			return &ast.Literal{Offset: tok.Pos, Value: false}, nil
		case "None":
			p.advance()
			return &ast.Literal{Offset: tok.Pos, Value: nil}, nil
		}
	case OP:
		switch tok.Text {
		case "(":
			return p.parseParen()
		case "[":
			return p.parseList()
		case "{":
			return p.parseBrace()
		}
	}
	return nil, p.unexpected()
}

// parseStrings joins adjacent string literals. Any f-string in the run makes
// the whole run a FormattedString.
func (p *Parser) parseStrings() ast.Node {
	start := p.cur()
	var value, raw string
	formatted := false
	for p.cur().Type == STRING || p.cur().Type == FSTRING {
		tok := p.advance()
		raw += tok.Text
		if tok.Type == FSTRING {
			formatted = true
			continue
		}
		value += tok.Value.(string)
	}
	if formatted {
		return &ast.FormattedString{Offset: start.Pos, Raw: raw}
	}
	return &ast.Literal{Offset: start.Pos, Value: value}
}

func (p *Parser) parseParen() (ast.Node, error) {
	open := p.advance()
	if p.isOp(")") {
		p.advance()
		return &ast.TupleLit{Offset: open.Pos}, nil
	}

	first, err := p.parseStarOrNamed()
	if err != nil {
		return nil, err
	}
	if p.isKeyword("for") {
		comp, err := p.parseComprehension(ast.GeneratorExp, open.Pos, first, nil)
		if err != nil {
			return nil, err
		}
		return comp, p.expectOp(")")
	}
	if p.isOp(")") {
		p.advance()
		if first.Kind() == ast.KindStarred {
			return nil, p.errorf(open, "cannot use starred expression here")
		}
		return first, nil
	}

	elts, err := p.parseSequenceTail(first, ")")
	if err != nil {
		return nil, err
	}
	return &ast.TupleLit{Offset: open.Pos, Elts: elts}, nil
}

func (p *Parser) parseList() (ast.Node, error) {
	open := p.advance()
	if p.isOp("]") {
		p.advance()
		return &ast.ListLit{Offset: open.Pos}, nil
	}

	first, err := p.parseStarOrNamed()
	if err != nil {
		return nil, err
	}
	if p.isKeyword("for") {
		comp, err := p.parseComprehension(ast.ListComp, open.Pos, first, nil)
		if err != nil {
			return nil, err
		}
		return comp, p.expectOp("]")
	}

	elts, err := p.parseSequenceTail(first, "]")
	if err != nil {
		return nil, err
	}
	return &ast.ListLit{Offset: open.Pos, Elts: elts}, nil
}

// parseSequenceTail parses `, item, item ... close` after the first item.
func (p *Parser) parseSequenceTail(first ast.Node, closer string) ([]ast.Node, error) {
	elts := []ast.Node{first}
	for !p.isOp(closer) {
		if err := p.expectOp(","); err != nil {
			return nil, err
		}
		if p.isOp(closer) {
			break
		}
		elt, err := p.parseStarOrNamed()
		if err != nil {
			return nil, err
		}
		elts = append(elts, elt)
	}
	p.advance()
	return elts, nil
}

func (p *Parser) parseBrace() (ast.Node, error) {
	open := p.advance()
	if p.isOp("}") {
		p.advance()
		return &ast.DictLit{Offset: open.Pos}, nil
	}

	if p.isOp("**") {
		return p.parseDictTail(open.Pos, nil, nil)
	}

	first, err := p.parseStarOrNamed()
	if err != nil {
		return nil, err
	}

	if p.isOp(":") {
		p.advance()
		value, err := p.parseTest()
		if err != nil {
			return nil, err
		}
		if p.isKeyword("for") {
			comp, err := p.parseComprehension(ast.DictComp, open.Pos, first, value)
			if err != nil {
				return nil, err
			}
			return comp, p.expectOp("}")
		}
		return p.parseDictTail(open.Pos, []ast.Node{first}, []ast.Node{value})
	}

	if p.isKeyword("for") {
		comp, err := p.parseComprehension(ast.SetComp, open.Pos, first, nil)
		if err != nil {
			return nil, err
		}
		return comp, p.expectOp("}")
	}

	elts, err := p.parseSequenceTail(first, "}")
	if err != nil {
		return nil, err
	}
	return &ast.SetLit{Offset: open.Pos, Elts: elts}, nil
}

// parseDictTail parses the remaining dict entries up to the closing brace.
// A `**mapping` entry is recorded as a double Starred key with a nil value.
func (p *Parser) parseDictTail(offset int, keys, values []ast.Node) (*ast.DictLit, error) {
	first := len(keys) == 0
	for !p.isOp("}") {
		if !first {
			if err := p.expectOp(","); err != nil {
				return nil, err
			}
			if p.isOp("}") {
				break
			}
		}
		first = false

		if p.isOp("**") {
			tok := p.advance()
			value, err := p.parseBinary(precCompare)
			if err != nil {
				return nil, err
			}
			keys = append(keys, &ast.Starred{Offset: tok.Pos, Value: value, Double: true})
			values = append(values, nil)
			continue
		}

		key, err := p.parseTest()
		if err != nil {
			return nil, err
		}
		if err := p.expectOp(":"); err != nil {
			return nil, err
		}
		value, err := p.parseTest()
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
		values = append(values, value)
	}
	p.advance()
	return &ast.DictLit{Offset: offset, Keys: keys, Values: values}, nil
}

func (p *Parser) parseComprehension(form ast.ComprehensionForm, offset int, elt, value ast.Node) (ast.Node, error) {
	comp := &ast.Comprehension{Offset: offset, Form: form, Elt: elt, Value: value}
	for p.isKeyword("for") {
		p.advance()
		target, err := p.parseTargetList()
		if err != nil {
			return nil, err
		}
		if err := p.expectKeyword("in"); err != nil {
			return nil, err
		}
		iter, err := p.parseBinary(precLowest)
		if err != nil {
			return nil, err
		}
		clause := ast.ComprehensionClause{Target: target, Iter: iter}
		for p.isKeyword("if") {
			p.advance()
			cond, err := p.parseBinary(precLowest)
			if err != nil {
				return nil, err
			}
			clause.Ifs = append(clause.Ifs, cond)
		}
		comp.Clauses = append(comp.Clauses, clause)
	}
	return comp, nil
}

// parseTargetList parses the loop target of a comprehension clause, which
// stops before the `in` keyword.
func (p *Parser) parseTargetList() (ast.Node, error) {
	first, err := p.parseStarTarget()
	if err != nil {
		return nil, err
	}
	if !p.isOp(",") {
		return first, nil
	}
	elts := []ast.Node{first}
	for p.isOp(",") {
		p.advance()
		if p.isKeyword("in") {
			break
		}
		elt, err := p.parseStarTarget()
		if err != nil {
			return nil, err
		}
		elts = append(elts, elt)
	}
	return &ast.TupleLit{Offset: first.Pos(), Elts: elts}, nil
}

func (p *Parser) parseStarTarget() (ast.Node, error) {
	if p.isOp("*") {
		tok := p.advance()
		value, err := p.parseBinary(precCompare)
		if err != nil {
			return nil, err
		}
		return &ast.Starred{Offset: tok.Pos, Value: value}, nil
	}
	return p.parseBinary(precCompare)
}

func (p *Parser) parseCall(fn ast.Node) (ast.Node, error) {
	open := p.advance()
	call := &ast.Call{Offset: open.Pos, Func: fn}
	seen := make(map[string]bool)

	for !p.isOp(")") {
		switch {
		case p.isOp("*") || p.isOp("**"):
			tok := p.advance()
			value, err := p.parseTest()
			if err != nil {
				return nil, err
			}
			call.Args = append(call.Args, &ast.Starred{Offset: tok.Pos, Value: value, Double: tok.Text == "**"})

		case p.cur().Type == NAME && p.peek().Type == OP && p.peek().Text == "=":
			name := p.advance()
			p.advance()
			if seen[name.Text] {
				return nil, p.errorf(name, "keyword argument repeated: %s", name.Text)
			}
			seen[name.Text] = true
			value, err := p.parseTest()
			if err != nil {
				return nil, err
			}
			call.Keywords = append(call.Keywords, ast.Keyword{Name: name.Text, Value: value})

		default:
			if len(call.Keywords) > 0 {
				return nil, p.errorf(p.cur(), "positional argument follows keyword argument")
			}
			arg, err := p.parseNamedTest()
			if err != nil {
				return nil, err
			}
			if p.isKeyword("for") {
				if len(call.Args) > 0 {
					return nil, p.errorf(p.cur(), "generator expression must be parenthesized")
				}
				arg, err = p.parseComprehension(ast.GeneratorExp, arg.Pos(), arg, nil)
				if err != nil {
					return nil, err
				}
				if !p.isOp(")") {
					return nil, p.errorf(p.cur(), "generator expression must be parenthesized")
				}
			}
			call.Args = append(call.Args, arg)
		}

		if !p.isOp(",") {
			break
		}
		p.advance()
	}

	if err := p.expectOp(")"); err != nil {
		return nil, err
	}
	return call, nil
}

func (p *Parser) parseSubscript(value ast.Node) (ast.Node, error) {
	open := p.advance()
	if p.isOp("]") {
		return nil, p.errorf(p.cur(), "expected subscript, found ']'")
	}

	var items []ast.Node
	trailingComma := false
	for {
		item, err := p.parseSubscriptItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		trailingComma = false
		if !p.isOp(",") {
			break
		}
		p.advance()
		trailingComma = true
		if p.isOp("]") {
			break
		}
	}
	if err := p.expectOp("]"); err != nil {
		return nil, err
	}

	index := items[0]
	if len(items) > 1 || trailingComma {
		index = &ast.TupleLit{Offset: items[0].Pos(), Elts: items}
	}
	return &ast.Subscript{Offset: open.Pos, Value: value, Index: index}, nil
}

func (p *Parser) parseSubscriptItem() (ast.Node, error) {
	start := p.cur()
	var lower ast.Node
	if !p.isOp(":") {
		var err error
		lower, err = p.parseNamedTest()
		if err != nil {
			return nil, err
		}
		if !p.isOp(":") {
			return lower, nil
		}
	}
	p.advance()

	slice := &ast.Slice{Offset: start.Pos, Lower: lower}
	if !p.isOp(":") && !p.isOp("]") && !p.isOp(",") {
		upper, err := p.parseTest()
		if err != nil {
			return nil, err
		}
		slice.Upper = upper
	}
	if p.isOp(":") {
		p.advance()
		if !p.isOp("]") && !p.isOp(",") {
			step, err := p.parseTest()
			if err != nil {
				return nil, err
			}
			slice.Step = step
		}
	}
	return slice, nil
}

func (p *Parser) parseLambda() (ast.Node, error) {
	kw := p.advance()
	lambda := &ast.Lambda{Offset: kw.Pos}
	seen := make(map[string]bool)

	for !p.isOp(":") {
		tok := p.cur()
		switch {
		case p.isOp("**"):
			return nil, p.errorf(tok, "keyword argument collection is not supported in lambda")
		case p.isOp("*"):
			p.advance()
			name := p.cur()
			if name.Type != NAME {
				return nil, p.errorf(name, "expected parameter name after '*'")
			}
			if seen[name.Text] {
				return nil, p.errorf(name, "duplicate argument '%s' in lambda", name.Text)
			}
			p.advance()
			lambda.Vararg = name.Text
			if p.isOp(",") {
				p.advance()
			}
			if !p.isOp(":") {
				return nil, p.errorf(p.cur(), "keyword-only lambda parameters are not supported")
			}
			continue
		case tok.Type == NAME:
			p.advance()
			if seen[tok.Text] {
				return nil, p.errorf(tok, "duplicate argument '%s' in lambda", tok.Text)
			}
			seen[tok.Text] = true
			lambda.Params = append(lambda.Params, tok.Text)
			if p.isOp("=") {
				p.advance()
				def, err := p.parseTest()
				if err != nil {
					return nil, err
				}
				lambda.Defaults = append(lambda.Defaults, def)
			} else if len(lambda.Defaults) > 0 {
				return nil, p.errorf(tok, "non-default argument follows default argument")
			}
		default:
			return nil, p.unexpected()
		}

		if !p.isOp(",") {
			break
		}
		p.advance()
	}

	if err := p.expectOp(":"); err != nil {
		return nil, err
	}
	body, err := p.parseTest()
	if err != nil {
		return nil, err
	}
	lambda.Body = body
	return lambda, nil
}
