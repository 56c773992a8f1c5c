package ast

// Walk calls visit on n and then recursively on every child, in
// left-to-right source order. Returning false from visit stops the
// walk from descending into that node's children (the walk of its
// siblings continues).
func Walk(n Node, visit func(Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range n.Children() {
		Walk(c, visit)
	}
}

// Count returns the number of nodes in the subtree rooted at n,
// including n itself. Used by tests to assert shape equality between
// two parses of the same token source.
func Count(n Node) int {
	count := 0
	Walk(n, func(Node) bool { count++; return true })
	return count
}

// Shape returns a Kind slice in pre-order, a cheap isomorphism check
// for "same kind/shape" round-trip tests.
func Shape(n Node) []Kind {
	var out []Kind
	Walk(n, func(n Node) bool { out = append(out, n.Kind()); return true })
	return out
}
