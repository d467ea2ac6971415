package doctree

import (
	"maps"
	"slices"
)

// Clone returns a deep copy of the node. Attribute values that are slices
// or maps produced by JSON decoding are copied as well.
func (n Node) Clone() Node {
	cloned := n
	if n.Content != nil {
		cloned.Content = make([]Node, len(n.Content))
		for i := range n.Content {
			cloned.Content[i] = n.Content[i].Clone()
		}
	}
	if n.Attrs != nil {
		cloned.Attrs = make(map[string]any, len(n.Attrs))
		for key, value := range n.Attrs {
			cloned.Attrs[key] = cloneValue(value)
		}
	}
	return cloned
}

func cloneValue(v any) any {
	switch typed := v.(type) {
	case []string:
		return slices.Clone(typed)
	case []any:
		out := make([]any, len(typed))
		for i := range typed {
			out[i] = cloneValue(typed[i])
		}
		return out
	case map[string]any:
		out := maps.Clone(typed)
		for key, value := range out {
			out[key] = cloneValue(value)
		}
		return out
	default:
		return v
	}
}

// Walk calls fn for the node and every descendant in document order.
// Returning false from fn skips the node's children.
func (n *Node) Walk(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for i := range n.Content {
		n.Content[i].Walk(fn)
	}
}

// Count returns the number of nodes of the given type in the subtree.
func (n Node) Count(typ string) int {
	count := 0
	n.Walk(func(node *Node) bool {
		if node.Type == typ {
			count++
		}
		return true
	})
	return count
}

// Contains reports whether the subtree holds a node of the given type.
func (n Node) Contains(typ string) bool {
	return n.Count(typ) > 0
}

// Rewrite replaces, depth first, every descendant for which fn returns
// (replacement, true) with the replacement nodes spliced at its index.
// Replacements are not visited again. Nodes for which fn returns false
// are descended into.
func (n *Node) Rewrite(fn func(Node) ([]Node, bool)) {
	for i := 0; i < len(n.Content); {
		replacement, ok := fn(n.Content[i])
		if !ok {
			n.Content[i].Rewrite(fn)
			i++
			continue
		}
		n.Content = Splice(n.Content, i, replacement)
		i += len(replacement)
	}
}

// Splice replaces content[i] with nodes and returns the resulting slice.
func Splice(content []Node, i int, nodes []Node) []Node {
	return slices.Replace(content, i, i+1, nodes...)
}
