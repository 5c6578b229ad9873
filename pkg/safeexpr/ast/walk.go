package ast

// Children returns the direct child nodes of n in source order.
// Absent optional children are omitted.
func Children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, c := range nodes {
			if c != nil {
				out = append(out, c)
			}
		}
	}

	switch n := n.(type) {
	case *BinaryOp:
		add(n.Left, n.Right)
	case *UnaryOp:
		add(n.Operand)
	case *BoolOp:
		add(n.Values...)
	case *Compare:
		add(n.Left)
		add(n.Comparators...)
	case *Call:
		add(n.Func)
		add(n.Args...)
		for _, kw := range n.Keywords {
			add(kw.Value)
		}
	case *Conditional:
		add(n.Test, n.Body, n.OrElse)
	case *ListLit:
		add(n.Elts...)
	case *TupleLit:
		add(n.Elts...)
	case *SetLit:
		add(n.Elts...)
	case *DictLit:
		for i := range n.Keys {
			add(n.Keys[i], n.Values[i])
		}
	case *Subscript:
		add(n.Value, n.Index)
	case *Slice:
		add(n.Lower, n.Upper, n.Step)
	case *Attribute:
		add(n.Value)
	case *Lambda:
		add(n.Defaults...)
		add(n.Body)
	case *Comprehension:
		add(n.Elt, n.Value)
		for _, c := range n.Clauses {
			add(c.Target, c.Iter)
			add(c.Ifs...)
		}
	case *NamedExpr:
		add(n.Value)
	case *Starred:
		add(n.Value)
	}
	return out
}

// Inspect traverses the tree rooted at n depth-first. If fn returns false the
// children of that node are skipped.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, fn)
	}
}

// Depth returns the height of the tree rooted at n.
func Depth(n Node) int {
	if n == nil {
		return 0
	}
	deepest := 0
	for _, c := range Children(n) {
		deepest = max(deepest, Depth(c))
	}
	return deepest + 1
}
