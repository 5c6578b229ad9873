package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sentinel errors for rule definitions.
var (
	// ErrEmptyName indicates a rule without a name.
	ErrEmptyName = errors.New("rule name is empty")

	// ErrDuplicateRule indicates two rules share a name.
	ErrDuplicateRule = errors.New("duplicate rule name")

	// ErrEmptyCondition indicates a rule without a when expression.
	ErrEmptyCondition = errors.New("rule condition is empty")

	// ErrRuleNotFound indicates a lookup for a rule that is not defined.
	ErrRuleNotFound = errors.New("rule not found")
)

// Rule is a named condition.
type Rule struct {
	Name        string   `yaml:"name" json:"name"`
	When        string   `yaml:"when" json:"when"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Tags        []string `yaml:"tags,omitempty" json:"tags,omitempty"`
}

// RuleSet is an ordered list of rules, usually loaded from YAML:
//
//	rules:
//	  - name: large-order
//	    when: order['total'] > 1000
//	  - name: vip
//	    when: customer['tier'] in ('gold', 'platinum')
//	    tags: [priority]
type RuleSet struct {
	Rules []Rule `yaml:"rules" json:"rules"`
}

// RuleError reports a failure tied to one rule.
type RuleError struct {
	Rule string
	Err  error
}

// Error implements the error interface.
func (e *RuleError) Error() string {
	return fmt.Sprintf("rule %q: %v", e.Rule, e.Err)
}

// Unwrap returns the underlying cause.
func (e *RuleError) Unwrap() error {
	return e.Err
}

// LoadYAML parses a rule set. Unknown fields are rejected.
func LoadYAML(data []byte) (*RuleSet, error) {
	var rs RuleSet
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rs); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// LoadFile reads and parses a YAML rule set.
func LoadFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return LoadYAML(data)
}

// Validate checks that every rule has a unique name and a condition.
// It does not compile the conditions; see Compile.
func (rs *RuleSet) Validate() error {
	seen := make(map[string]bool, len(rs.Rules))
	for i, r := range rs.Rules {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("rule %d: %w", i, ErrEmptyName)
		}
		if seen[r.Name] {
			return &RuleError{Rule: r.Name, Err: ErrDuplicateRule}
		}
		seen[r.Name] = true
		if strings.TrimSpace(r.When) == "" {
			return &RuleError{Rule: r.Name, Err: ErrEmptyCondition}
		}
	}
	return nil
}

// Names returns the rule names in definition order.
func (rs *RuleSet) Names() []string {
	names := make([]string, len(rs.Rules))
	for i, r := range rs.Rules {
		names[i] = r.Name
	}
	return names
}
