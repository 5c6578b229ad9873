package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tokens, err := Tokenize("event['age'] >= 18 and not x.y")
	require.NoError(t, err)

	want := []struct {
		typ  TokenType
		text string
	}{
		{NAME, "event"},
		{OP, "["},
		{STRING, "'age'"},
		{OP, "]"},
		{OP, ">="},
		{INT, "18"},
		{KEYWORD, "and"},
		{KEYWORD, "not"},
		{NAME, "x"},
		{OP, "."},
		{NAME, "y"},
		{EOF, ""},
	}
	require.Len(t, tokens, len(want))
	for i, w := range want {
		assert.Equal(t, w.typ, tokens[i].Type, "token %d", i)
		assert.Equal(t, w.text, tokens[i].Text, "token %d", i)
	}
	assert.Equal(t, "age", tokens[2].Value)
	assert.Equal(t, int64(18), tokens[5].Value)
}

func TestTokenize_LongestOperator(t *testing.T) {
	tokens, err := Tokenize("a**=b//c<<=d!=e")
	require.NoError(t, err)

	var ops []string
	for _, tok := range tokens {
		if tok.Type == OP {
			ops = append(ops, tok.Text)
		}
	}
	assert.Equal(t, []string{"**=", "//", "<<=", "!="}, ops)
}

func TestTokenize_Newlines(t *testing.T) {
	t.Run("inside brackets are ignored", func(t *testing.T) {
		tokens, err := Tokenize("[1,\n 2]")
		require.NoError(t, err)
		for _, tok := range tokens {
			assert.NotEqual(t, NEWLINE, tok.Type)
		}
	})

	t.Run("top level newlines collapse", func(t *testing.T) {
		tokens, err := Tokenize("a\n\n\r\nb")
		require.NoError(t, err)
		require.Len(t, tokens, 4)
		assert.Equal(t, NEWLINE, tokens[1].Type)
	})
}

func TestTokenize_Unicode(t *testing.T) {
	tokens, err := Tokenize("größe + 'ü'")
	require.NoError(t, err)
	assert.Equal(t, NAME, tokens[0].Type)
	assert.Equal(t, "größe", tokens[0].Text)
	assert.Equal(t, "ü", tokens[2].Value)
	assert.Equal(t, 10, tokens[2].Pos)
}

func TestTokenTypeString(t *testing.T) {
	assert.Equal(t, "KEYWORD", KEYWORD.String())
	assert.Equal(t, "TokenType(99)", TokenType(99).String())
	assert.Equal(t, "end of input", Token{Type: EOF}.String())
	assert.Equal(t, "keyword 'in'", Token{Type: KEYWORD, Text: "in"}.String())
}
