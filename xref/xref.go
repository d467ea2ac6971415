// Package xref resolves pending cross references in a flattened tree and
// removes the ones that cannot be resolved.
package xref

import (
	"fmt"

	"github.com/rgonek/manpage-builder/doctree"
)

// Resolver resolves a pending reference written in fromDoc. On success it
// returns the node replacing the placeholder.
type Resolver interface {
	Resolve(fromDoc string, pending doctree.Node) (doctree.Node, bool)
}

// Options configures ResolveAndClean.
type Options struct {
	// Nitpicky records a warning for every reference left unresolved.
	Nitpicky bool
}

// ResolveAndClean resolves every pending reference in tree against
// resolver, then replaces each remaining placeholder with its children.
// After it returns the tree holds no pending reference nodes.
func ResolveAndClean(tree *doctree.Node, fromDoc string, resolver Resolver, options Options) []doctree.Warning {
	if resolver != nil {
		Resolve(tree, fromDoc, resolver)
	}

	var warnings []doctree.Warning
	unresolved := Clean(tree)
	if options.Nitpicky {
		for _, pending := range unresolved {
			warnings = append(warnings, doctree.Warning{
				Type:     doctree.WarningUnresolvedReference,
				Docname:  pending.GetStringAttr("refdoc", fromDoc),
				NodeType: pending.GetStringAttr("reftype", ""),
				Message:  describe(pending),
			})
		}
	}
	return warnings
}

// Resolve replaces the pending references resolver knows about.
func Resolve(tree *doctree.Node, fromDoc string, resolver Resolver) {
	tree.Rewrite(func(n doctree.Node) ([]doctree.Node, bool) {
		if n.Type != doctree.TypePendingRef {
			return nil, false
		}
		resolved, ok := resolver.Resolve(fromDoc, n)
		if !ok {
			return nil, false
		}
		return []doctree.Node{resolved}, true
	})
}

// Clean promotes the children of every pending reference into its place
// and returns the removed placeholders, outermost first.
func Clean(tree *doctree.Node) []doctree.Node {
	var removed []doctree.Node
	var clean func(content []doctree.Node) []doctree.Node
	clean = func(content []doctree.Node) []doctree.Node {
		for i := 0; i < len(content); {
			if content[i].Type != doctree.TypePendingRef {
				content[i].Content = clean(content[i].Content)
				i++
				continue
			}
			pending := content[i]
			removed = append(removed, doctree.Node{Type: pending.Type, Attrs: pending.Attrs})
			children := clean(pending.Content)
			content = doctree.Splice(content, i, children)
			i += len(children)
		}
		return content
	}
	tree.Content = clean(tree.Content)
	return removed
}

func describe(pending doctree.Node) string {
	target := pending.GetStringAttr("reftarget", "")
	switch pending.GetStringAttr("reftype", "") {
	case "doc":
		return fmt.Sprintf("unknown document: %q", target)
	case "ref":
		return fmt.Sprintf("undefined label: %q", target)
	default:
		return fmt.Sprintf("reference target not found: %q", target)
	}
}
