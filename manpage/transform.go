package manpage

import (
	"maps"

	"github.com/rgonek/manpage-builder/doctree"
)

// FlattenNestedInline rewrites nested inline markup, which groff font
// requests cannot express, into a sequence of siblings:
//
//	<strong>foo=<emphasis>1</emphasis>&bar</strong>
//
// becomes
//
//	<strong>foo=</strong><emphasis>1</emphasis><strong>&bar</strong>
func FlattenNestedInline(tree *doctree.Node) {
	tree.Content = flattenContent(tree.Content)
}

func flattenContent(content []doctree.Node) []doctree.Node {
	if len(content) == 0 {
		return content
	}
	out := make([]doctree.Node, 0, len(content))
	for _, child := range content {
		if child.IsInlineMarkup() {
			out = append(out, flattenMarkup(child)...)
			continue
		}
		child.Content = flattenContent(child.Content)
		out = append(out, child)
	}
	return out
}

func flattenMarkup(node doctree.Node) []doctree.Node {
	if !hasMarkupChild(node) {
		node.Content = flattenContent(node.Content)
		return []doctree.Node{node}
	}

	var (
		out []doctree.Node
		run []doctree.Node
	)
	flush := func() {
		if len(run) == 0 {
			return
		}
		out = append(out, doctree.Node{
			Type:    node.Type,
			Attrs:   maps.Clone(node.Attrs),
			Content: flattenContent(run),
		})
		run = nil
	}

	for _, child := range node.Content {
		if child.IsInlineMarkup() {
			flush()
			out = append(out, flattenMarkup(child)...)
			continue
		}
		run = append(run, child)
	}
	flush()
	return out
}

func hasMarkupChild(node doctree.Node) bool {
	for _, child := range node.Content {
		if child.IsInlineMarkup() {
			return true
		}
	}
	return false
}
