package template_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/safeexpr/pkg/safeexpr"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/template"
)

func newExpander(opts ...template.Option) *template.Expander {
	return template.NewExpander(safeexpr.New(), opts...)
}

func TestExpand(t *testing.T) {
	vars := map[string]any{
		"name":  "ada",
		"price": 2.5,
		"qty":   4,
		"user":  map[string]any{"tags": []any{"admin", "ops"}},
		"flag":  false,
		"none":  nil,
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no placeholders", "plain text", "plain text"},
		{"simple variable", "Hello ${name}", "Hello ada"},
		{"expression", "total: ${price * qty}", "total: 10.0"},
		{"method call", "${name.title()}!", "Ada!"},
		{"adjacent placeholders", "${qty}${qty}", "44"},
		{"whitespace inside braces", "${  qty + 1  }", "5"},
		{"nested subscript", "${user['tags'][0]}", "admin"},
		{"dict literal inside", "${ {'a': 1}['a'] }", "1"},
		{"string containing brace", "${ '}' + name }", "}ada"},
		{"falsy values render", "${flag}/${none}/${0}", "False/None/0"},
		{"list renders like str()", "${user['tags']}", "['admin', 'ops']"},
		{"escaped placeholder", "$${name} is ${name}", "${name} is ada"},
		{"lone dollar", "costs $5 or $name", "costs $5 or $name"},
		{"conditional", "${'many' if qty > 1 else 'one'}", "many"},
	}

	exp := newExpander()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := exp.Expand(context.Background(), tt.input, vars)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExpand_MissingAction(t *testing.T) {
	ctx := context.Background()
	vars := map[string]any{"cfg": map[string]any{"host": "db"}}

	tests := []struct {
		action   template.MissingAction
		input    string
		expected string
		wantErr  bool
	}{
		{template.MissingKeep, "x=${missing} h=${cfg['host']}", "x=${missing} h=db", false},
		{template.MissingKeep, "port=${cfg['port']}", "port=${cfg['port']}", false},
		{template.MissingEmpty, "x=${missing}.", "x=.", false},
		{template.MissingEmpty, "port=${cfg['port']}", "port=", false},
		{template.MissingError, "x=${missing}", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.action.String()+"/"+tt.input, func(t *testing.T) {
			exp := newExpander(template.WithMissingAction(tt.action))
			got, err := exp.Expand(ctx, tt.input, vars)
			if tt.wantErr {
				var phErr *template.PlaceholderError
				require.ErrorAs(t, err, &phErr)
				assert.Equal(t, "missing", phErr.Expr)
				assert.Equal(t, 2, phErr.Offset)
				assert.ErrorIs(t, err, safeexpr.ErrUndefinedName)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExpand_Errors(t *testing.T) {
	exp := newExpander(template.WithMissingAction(template.MissingEmpty))
	ctx := context.Background()

	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"unterminated", "Hello ${name", template.ErrUnterminated},
		{"unterminated string", "${ 'abc }", template.ErrUnterminated},
		{"empty", "x ${ } y", template.ErrEmptyPlaceholder},
		{"type error propagates", "${1 + 'a'}", safeexpr.ErrTypeMismatch},
		{"syntax error propagates", "${1 +}", safeexpr.ErrSyntax},
		{"unsupported propagates", "${[x for x in y]}", safeexpr.ErrUnsupportedNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := exp.Expand(ctx, tt.input, nil)
			var phErr *template.PlaceholderError
			require.ErrorAs(t, err, &phErr)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExpandAll(t *testing.T) {
	exp := newExpander()
	ctx := context.Background()
	vars := map[string]any{"env": "prod"}

	got, err := exp.ExpandAll(ctx, []string{"https://${env}.api", "${env.upper()}"}, vars)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://prod.api", "PROD"}, got)

	got, err = exp.ExpandAll(ctx, nil, vars)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = exp.ExpandAll(ctx, []string{"ok", "${1/0}"}, vars)
	assert.ErrorIs(t, err, safeexpr.ErrArithmetic)
}

func TestExpandMap(t *testing.T) {
	exp := newExpander()
	ctx := context.Background()
	vars := map[string]any{"env": "prod", "replicas": 3}

	input := map[string]any{
		"url":  "https://${env}.api.com",
		"port": 8080,
		"nested": map[string]any{
			"endpoint": "/api/${env}/v1",
			"scale":    "${replicas * 2}",
		},
		"hosts": []any{"${env}-a", "${env}-b", 7},
	}

	got, err := exp.ExpandMap(ctx, input, vars)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"url":  "https://prod.api.com",
		"port": 8080,
		"nested": map[string]any{
			"endpoint": "/api/prod/v1",
			"scale":    "6",
		},
		"hosts": []any{"prod-a", "prod-b", 7},
	}, got)
	assert.Equal(t, "https://${env}.api.com", input["url"], "input is not modified")

	got, err = exp.ExpandMap(ctx, nil, vars)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = exp.ExpandMap(ctx, map[string]any{"bad": "${1 + None}"}, vars)
	assert.ErrorContains(t, err, "bad:")
}
