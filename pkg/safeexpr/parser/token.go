package parser

import "fmt"

// TokenType classifies a lexical token.
type TokenType int

const (
	EOF TokenType = iota
	NEWLINE
	NAME
	KEYWORD
	INT
	FLOAT
	STRING
	FSTRING
	OP
)

var tokenTypeNames = map[TokenType]string{
	EOF:     "EOF",
	NEWLINE: "NEWLINE",
	NAME:    "NAME",
	KEYWORD: "KEYWORD",
	INT:     "INT",
	FLOAT:   "FLOAT",
	STRING:  "STRING",
	FSTRING: "FSTRING",
	OP:      "OP",
}

func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is a lexical token. Text is the source spelling for names, keywords
// and operators. Value holds the decoded literal for INT, FLOAT and STRING.
type Token struct {
	Type  TokenType
	Text  string
	Value any
	Pos   int
}

func (t Token) String() string {
	switch t.Type {
	case EOF:
		return "end of input"
	case NEWLINE:
		return "newline"
	case KEYWORD:
		return fmt.Sprintf("keyword '%s'", t.Text)
	default:
		return fmt.Sprintf("'%s'", t.Text)
	}
}

// keywords are reserved and can never be used as names.
var keywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// statementKeywords begin statements rather than expressions.
var statementKeywords = map[string]bool{
	"assert": true, "async": true, "break": true, "class": true, "continue": true,
	"def": true, "del": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "nonlocal": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// operators ordered longest first so the lexer takes the longest match.
var operators = []string{
	"**=", "//=", ">>=", "<<=", "...",
	"**", "//", "<<", ">>", "<=", ">=", "==", "!=", ":=", "->",
	"+=", "-=", "*=", "/=", "%=", "@=", "&=", "|=", "^=",
	"+", "-", "*", "/", "%", "@", "&", "|", "^", "~", "<", ">",
	"(", ")", "[", "]", "{", "}", ",", ":", ".", ";", "=",
}

var augmentedAssign = map[string]bool{
	"+=": true, "-=": true, "*=": true, "/=": true, "//=": true, "%=": true,
	"**=": true, "@=": true, "&=": true, "|=": true, "^=": true, ">>=": true, "<<=": true,
}
