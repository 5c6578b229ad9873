package parser

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	sxerrors "github.com/randalmurphal/safeexpr/pkg/safeexpr/errors"
)

// Lexer splits expression text into tokens.
type Lexer struct {
	src    string
	pos    int
	nest   int
	tokens []Token
}

// Tokenize returns every token of src, ending with EOF.
func Tokenize(src string) ([]Token, error) {
	l := &Lexer{src: src}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.tokens, nil
}

func (l *Lexer) run() error {
	for {
		l.skipBlank()
		if l.pos >= len(l.src) {
			l.emit(Token{Type: EOF, Pos: l.pos})
			return nil
		}

		ch := l.src[l.pos]
		switch {
		case ch == '\n' || ch == '\r':
			l.pos++
			if l.nest == 0 && !l.lastIs(NEWLINE) {
				l.emit(Token{Type: NEWLINE, Text: "\n", Pos: l.pos - 1})
			}
		case isDigit(ch) || (ch == '.' && isDigit(l.peekByte(1))):
			if err := l.readNumber(); err != nil {
				return err
			}
		case ch == '\'' || ch == '"':
			if err := l.readString(l.pos, ""); err != nil {
				return err
			}
		default:
			r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
			if isIdentStart(r) {
				if err := l.readIdentifier(); err != nil {
					return err
				}
				continue
			}
			if err := l.readOperator(); err != nil {
				return err
			}
		}
	}
}

func (l *Lexer) emit(tok Token) {
	l.tokens = append(l.tokens, tok)
}

func (l *Lexer) lastIs(t TokenType) bool {
	return len(l.tokens) > 0 && l.tokens[len(l.tokens)-1].Type == t
}

func (l *Lexer) peekByte(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *Lexer) errorf(pos int, format string, args ...any) error {
	return sxerrors.NewSyntax(l.src, pos, format, args...)
}

// skipBlank skips spaces, comments and backslash line continuations.
func (l *Lexer) skipBlank() {
	for l.pos < len(l.src) {
		switch ch := l.src[l.pos]; {
		case ch == ' ' || ch == '\t' || ch == '\f':
			l.pos++
		case ch == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case ch == '\\' && (l.peekByte(1) == '\n' || l.peekByte(1) == '\r'):
			l.pos += 2
			if l.src[l.pos-1] == '\r' && l.peekByte(0) == '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *Lexer) readIdentifier() error {
	start := l.pos
	for l.pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.pos:])
		if !isIdentPart(r) {
			break
		}
		l.pos += size
	}
	word := l.src[start:l.pos]

	if l.pos < len(l.src) && (l.src[l.pos] == '\'' || l.src[l.pos] == '"') && isStringPrefix(word) {
		return l.readString(start, strings.ToLower(word))
	}
	if keywords[word] {
		l.emit(Token{Type: KEYWORD, Text: word, Pos: start})
		return nil
	}
	l.emit(Token{Type: NAME, Text: word, Pos: start})
	return nil
}

func (l *Lexer) readOperator() error {
	rest := l.src[l.pos:]
	for _, op := range operators {
		if !strings.HasPrefix(rest, op) {
			continue
		}
		switch op {
		case "(", "[", "{":
			l.nest++
		case ")", "]", "}":
			if l.nest == 0 {
				return l.errorf(l.pos, "unmatched '%s'", op)
			}
			l.nest--
		}
		l.emit(Token{Type: OP, Text: op, Pos: l.pos})
		l.pos += len(op)
		return nil
	}
	r, _ := utf8.DecodeRuneInString(rest)
	return l.errorf(l.pos, "invalid character %q", r)
}

func (l *Lexer) readNumber() error {
	start := l.pos
	if l.src[l.pos] == '0' && strings.ContainsRune("xXoObB", rune(l.peekByte(1))) {
		l.pos += 2
		for l.pos < len(l.src) && (isHexDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
			l.pos++
		}
		text := l.src[start:l.pos]
		if err := l.checkNumberEnd(start); err != nil {
			return err
		}
		n, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return l.intError(start, text, err)
		}
		l.emit(Token{Type: INT, Text: text, Value: n, Pos: start})
		return nil
	}

	isFloat := false
	l.readDigits()
	if l.peekByte(0) == '.' {
		isFloat = true
		l.pos++
		l.readDigits()
	}
	if c := l.peekByte(0); c == 'e' || c == 'E' {
		next := l.peekByte(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(l.peekByte(2))) {
			isFloat = true
			l.pos += 2
			l.readDigits()
		}
	}
	text := l.src[start:l.pos]
	if err := l.checkNumberEnd(start); err != nil {
		return err
	}
	if strings.Contains(text, "__") || strings.HasSuffix(text, "_") || strings.Contains(text, "_.") || strings.Contains(text, "._") {
		return l.errorf(start, "invalid decimal literal")
	}
	digits := strings.ReplaceAll(text, "_", "")

	if isFloat {
		f, err := strconv.ParseFloat(digits, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return l.errorf(start, "invalid float literal '%s'", text)
		}
		l.emit(Token{Type: FLOAT, Text: text, Value: f, Pos: start})
		return nil
	}

	if len(digits) > 1 && digits[0] == '0' && strings.Trim(digits, "0") != "" {
		return l.errorf(start, "leading zeros in decimal integer literals are not permitted")
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return l.intError(start, text, err)
	}
	l.emit(Token{Type: INT, Text: text, Value: n, Pos: start})
	return nil
}

func (l *Lexer) readDigits() {
	for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '_') {
		l.pos++
	}
}

func (l *Lexer) checkNumberEnd(start int) error {
	if l.pos >= len(l.src) {
		return nil
	}
	if c := l.src[l.pos]; c == 'j' || c == 'J' {
		return l.errorf(start, "complex literals are not supported")
	}
	r, _ := utf8.DecodeRuneInString(l.src[l.pos:])
	if isIdentPart(r) {
		return l.errorf(start, "invalid decimal literal")
	}
	return nil
}

func (l *Lexer) intError(pos int, text string, err error) error {
	if errors.Is(err, strconv.ErrRange) {
		return l.errorf(pos, "integer literal '%s' is too large", text)
	}
	return l.errorf(pos, "invalid integer literal '%s'", text)
}

// readString reads a string literal whose quote starts at l.pos. start is the
// offset of the prefix, if any.
func (l *Lexer) readString(start int, prefix string) error {
	raw := strings.Contains(prefix, "r")
	if strings.Contains(prefix, "b") {
		return l.errorf(start, "bytes literals are not supported")
	}
	formatted := strings.Contains(prefix, "f")

	quote := l.src[l.pos]
	triple := l.peekByte(1) == quote && l.peekByte(2) == quote
	delim := string(quote)
	if triple {
		delim = strings.Repeat(delim, 3)
	}
	l.pos += len(delim)

	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			if triple {
				return l.errorf(start, "unterminated triple-quoted string literal")
			}
			return l.errorf(start, "unterminated string literal")
		}
		if strings.HasPrefix(l.src[l.pos:], delim) {
			l.pos += len(delim)
			break
		}

		ch := l.src[l.pos]
		if (ch == '\n' || ch == '\r') && !triple {
			return l.errorf(start, "unterminated string literal")
		}
		if ch != '\\' {
			b.WriteByte(ch)
			l.pos++
			continue
		}
		if raw || formatted {
			b.WriteByte(ch)
			if l.pos+1 < len(l.src) {
				b.WriteByte(l.src[l.pos+1])
			}
			l.pos += 2
			continue
		}
		if err := l.readEscape(&b); err != nil {
			return err
		}
	}

	text := l.src[start:l.pos]
	if formatted {
		l.emit(Token{Type: FSTRING, Text: text, Pos: start})
		return nil
	}
	l.emit(Token{Type: STRING, Text: text, Value: b.String(), Pos: start})
	return nil
}

var simpleEscapes = map[byte]byte{
	'\\': '\\', '\'': '\'', '"': '"', 'a': '\a', 'b': '\b',
	'f': '\f', 'n': '\n', 'r': '\r', 't': '\t', 'v': '\v',
}

func (l *Lexer) readEscape(b *strings.Builder) error {
	at := l.pos
	l.pos++ // backslash
	if l.pos >= len(l.src) {
		return l.errorf(at, "unterminated string literal")
	}
	ch := l.src[l.pos]
	if r, ok := simpleEscapes[ch]; ok {
		b.WriteByte(r)
		l.pos++
		return nil
	}

	switch {
	case ch == '\n':
		l.pos++
	case ch == '\r':
		l.pos++
		if l.peekByte(0) == '\n' {
			l.pos++
		}
	case ch >= '0' && ch <= '7':
		end := l.pos
		for end < len(l.src) && end < l.pos+3 && l.src[end] >= '0' && l.src[end] <= '7' {
			end++
		}
		n, _ := strconv.ParseUint(l.src[l.pos:end], 8, 32)
		b.WriteRune(rune(n))
		l.pos = end
	case ch == 'x' || ch == 'u' || ch == 'U':
		width := map[byte]int{'x': 2, 'u': 4, 'U': 8}[ch]
		digits := l.src[l.pos+1 : min(l.pos+1+width, len(l.src))]
		n, err := strconv.ParseUint(digits, 16, 32)
		if len(digits) != width || err != nil {
			return l.errorf(at, "truncated \\%c escape", ch)
		}
		if n > unicode.MaxRune {
			return l.errorf(at, "illegal Unicode character in \\U escape")
		}
		b.WriteRune(rune(n))
		l.pos += 1 + width
	case ch == 'N':
		return l.errorf(at, "named Unicode escapes are not supported")
	default:
		b.WriteByte('\\')
	}
	return nil
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentPart(r rune) bool { return isIdentStart(r) || unicode.IsDigit(r) }

func isStringPrefix(word string) bool {
	switch strings.ToLower(word) {
	case "r", "u", "b", "f", "rb", "br", "fr", "rf":
		return true
	default:
		return false
	}
}
