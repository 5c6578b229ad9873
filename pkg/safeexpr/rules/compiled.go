package rules

import (
	"context"
	"maps"
	"slices"

	"github.com/randalmurphal/safeexpr/pkg/safeexpr"
)

// Compiler turns expression text into a program. *safeexpr.Engine
// satisfies it.
type Compiler interface {
	Compile(text string) (*safeexpr.Program, error)
}

// ItemName is the variable Filter binds each item to.
const ItemName = "item"

type compiledRule struct {
	Rule
	program *safeexpr.Program
}

// Compiled is a rule set whose conditions have been compiled.
// It is immutable and safe for concurrent use.
type Compiled struct {
	rules []compiledRule
	index map[string]int
}

// Compile validates the rule set and compiles every condition, failing on
// the first rule whose condition does not compile.
func (rs *RuleSet) Compile(c Compiler) (*Compiled, error) {
	if err := rs.Validate(); err != nil {
		return nil, err
	}

	out := &Compiled{
		rules: make([]compiledRule, 0, len(rs.Rules)),
		index: make(map[string]int, len(rs.Rules)),
	}
	for _, r := range rs.Rules {
		prog, err := c.Compile(r.When)
		if err != nil {
			return nil, &RuleError{Rule: r.Name, Err: err}
		}
		r.Tags = slices.Clone(r.Tags)
		out.index[r.Name] = len(out.rules)
		out.rules = append(out.rules, compiledRule{Rule: r, program: prog})
	}
	return out, nil
}

// Rules returns the rule definitions in order.
func (c *Compiled) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.Rule
	}
	return out
}

// Evaluate reports whether the named rule holds for vars.
func (c *Compiled) Evaluate(ctx context.Context, name string, vars map[string]any) (bool, error) {
	i, ok := c.index[name]
	if !ok {
		return false, &RuleError{Rule: name, Err: ErrRuleNotFound}
	}
	return c.rules[i].eval(ctx, vars)
}

// Match returns the names of every rule that holds for vars, in definition
// order. Evaluation stops at the first failing rule.
func (c *Compiled) Match(ctx context.Context, vars map[string]any) ([]string, error) {
	var matched []string
	for _, r := range c.rules {
		ok, err := r.eval(ctx, vars)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, r.Name)
		}
	}
	return matched, nil
}

// MatchTagged is Match restricted to rules carrying tag.
func (c *Compiled) MatchTagged(ctx context.Context, tag string, vars map[string]any) ([]string, error) {
	var matched []string
	for _, r := range c.rules {
		if !slices.Contains(r.Tags, tag) {
			continue
		}
		ok, err := r.eval(ctx, vars)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, r.Name)
		}
	}
	return matched, nil
}

// First returns the name of the first rule that holds for vars.
// Later rules are not evaluated.
func (c *Compiled) First(ctx context.Context, vars map[string]any) (string, bool, error) {
	for _, r := range c.rules {
		ok, err := r.eval(ctx, vars)
		if err != nil {
			return "", false, err
		}
		if ok {
			return r.Name, true, nil
		}
	}
	return "", false, nil
}

// Filter returns the items for which the named rule holds. Each item is
// bound to the variable "item" on top of vars.
//
// Example:
//
//	// when: item['qty'] > threshold
//	big, err := compiled.Filter(ctx, "bulk", orders, map[string]any{"threshold": 10})
func (c *Compiled) Filter(ctx context.Context, name string, items []any, vars map[string]any) ([]any, error) {
	i, ok := c.index[name]
	if !ok {
		return nil, &RuleError{Rule: name, Err: ErrRuleNotFound}
	}
	r := c.rules[i]

	scope := make(map[string]any, len(vars)+1)
	maps.Copy(scope, vars)

	var kept []any
	for _, item := range items {
		scope[ItemName] = item
		ok, err := r.eval(ctx, scope)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, item)
		}
	}
	return kept, nil
}

func (r compiledRule) eval(ctx context.Context, vars map[string]any) (bool, error) {
	ok, err := r.program.RunBool(ctx, vars)
	if err != nil {
		return false, &RuleError{Rule: r.Name, Err: err}
	}
	return ok, nil
}
