// Package rules evaluates named conditions defined in YAML.
//
// A rule set is loaded, compiled once against an engine, and then matched
// against any number of inputs:
//
//	rs, err := rules.LoadFile("routing.yaml")
//	if err != nil {
//	    return err
//	}
//	compiled, err := rs.Compile(safeexpr.New())
//	if err != nil {
//	    return err // names the rule whose condition does not compile
//	}
//	names, err := compiled.Match(ctx, map[string]any{"order": order})
//
// Conditions are judged by truthiness. Errors raised while evaluating a
// condition are returned as *RuleError naming the rule.
package rules
