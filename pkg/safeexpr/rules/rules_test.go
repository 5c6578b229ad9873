package rules_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/safeexpr/pkg/safeexpr"
	"github.com/randalmurphal/safeexpr/pkg/safeexpr/rules"
)

const orderRules = `
rules:
  - name: large-order
    when: order['total'] > 1000
    description: Orders that need a second approval
    tags: [approval]
  - name: vip
    when: order['customer'].get('tier') in ('gold', 'platinum')
    tags: [priority, approval]
  - name: international
    when: order.get('country', 'US') != 'US'
`

func compileRules(t *testing.T, src string) *rules.Compiled {
	t.Helper()
	rs, err := rules.LoadYAML([]byte(src))
	require.NoError(t, err)
	compiled, err := rs.Compile(safeexpr.New())
	require.NoError(t, err)
	return compiled
}

func order(total int, tier, country string) map[string]any {
	o := map[string]any{
		"total":    total,
		"customer": map[string]any{"tier": tier},
	}
	if country != "" {
		o["country"] = country
	}
	return map[string]any{"order": o}
}

func TestLoadYAML(t *testing.T) {
	rs, err := rules.LoadYAML([]byte(orderRules))
	require.NoError(t, err)
	assert.Equal(t, []string{"large-order", "vip", "international"}, rs.Names())
	assert.Equal(t, "Orders that need a second approval", rs.Rules[0].Description)
	assert.Equal(t, []string{"priority", "approval"}, rs.Rules[1].Tags)

	empty, err := rules.LoadYAML(nil)
	require.NoError(t, err)
	assert.Empty(t, empty.Rules)
}

func TestLoadYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want error
	}{
		{"duplicate", "rules:\n  - {name: a, when: 'True'}\n  - {name: a, when: 'False'}", rules.ErrDuplicateRule},
		{"empty condition", "rules:\n  - {name: a, when: '  '}", rules.ErrEmptyCondition},
		{"empty name", "rules:\n  - {when: 'True'}", rules.ErrEmptyName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rules.LoadYAML([]byte(tt.src))
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("unknown field", func(t *testing.T) {
		_, err := rules.LoadYAML([]byte("rules:\n  - {name: a, when: 'True', priority: 3}"))
		assert.ErrorContains(t, err, "parse rules")
	})
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(orderRules), 0o600))

	rs, err := rules.LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, rs.Rules, 3)

	_, err = rules.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCompile_ReportsRule(t *testing.T) {
	rs := &rules.RuleSet{Rules: []rules.Rule{
		{Name: "ok", When: "x > 1"},
		{Name: "broken", When: "[y for y in x]"},
	}}

	_, err := rs.Compile(safeexpr.New())
	var ruleErr *rules.RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, "broken", ruleErr.Rule)
	assert.ErrorIs(t, err, safeexpr.ErrUnsupportedNode)
}

func TestMatch(t *testing.T) {
	compiled := compileRules(t, orderRules)
	ctx := context.Background()

	tests := []struct {
		name string
		vars map[string]any
		want []string
	}{
		{"none", order(10, "silver", ""), nil},
		{"large", order(5000, "silver", "US"), []string{"large-order"}},
		{"all", order(5000, "gold", "FR"), []string{"large-order", "vip", "international"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compiled.Match(ctx, tt.vars)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchTagged(t *testing.T) {
	compiled := compileRules(t, orderRules)

	got, err := compiled.MatchTagged(context.Background(), "priority", order(5000, "gold", "FR"))
	require.NoError(t, err)
	assert.Equal(t, []string{"vip"}, got)
}

func TestFirst(t *testing.T) {
	compiled := compileRules(t, orderRules)
	ctx := context.Background()

	name, ok, err := compiled.First(ctx, order(10, "gold", "FR"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "vip", name)

	_, ok, err = compiled.First(ctx, order(10, "bronze", ""))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEvaluate(t *testing.T) {
	compiled := compileRules(t, orderRules)
	ctx := context.Background()

	ok, err := compiled.Evaluate(ctx, "international", order(1, "", "DE"))
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = compiled.Evaluate(ctx, "nope", nil)
	assert.ErrorIs(t, err, rules.ErrRuleNotFound)
}

func TestEvaluate_RuntimeErrorNamesRule(t *testing.T) {
	compiled := compileRules(t, orderRules)

	_, err := compiled.Match(context.Background(), map[string]any{"order": map[string]any{}})
	var ruleErr *rules.RuleError
	require.ErrorAs(t, err, &ruleErr)
	assert.Equal(t, "large-order", ruleErr.Rule)
	assert.ErrorIs(t, err, safeexpr.ErrKeyNotFound)
}

func TestFilter(t *testing.T) {
	compiled := compileRules(t, `
rules:
  - name: bulk
    when: item['qty'] >= threshold
`)
	items := []any{
		map[string]any{"sku": "a", "qty": 1},
		map[string]any{"sku": "b", "qty": 12},
		map[string]any{"sku": "c", "qty": 40},
	}
	vars := map[string]any{"threshold": 10}

	kept, err := compiled.Filter(context.Background(), "bulk", items, vars)
	require.NoError(t, err)
	assert.Equal(t, items[1:], kept)
	assert.NotContains(t, vars, rules.ItemName, "caller vars are not modified")

	_, err = compiled.Filter(context.Background(), "missing", items, vars)
	assert.ErrorIs(t, err, rules.ErrRuleNotFound)
}

func TestRules_ReturnsDefinitions(t *testing.T) {
	compiled := compileRules(t, orderRules)
	defs := compiled.Rules()
	require.Len(t, defs, 3)
	assert.Equal(t, "order['total'] > 1000", defs[0].When)
}
