package doctree

import (
	"encoding/json"
	"fmt"
)

// Decode parses a serialized document tree.
func Decode(data []byte) (Node, error) {
	var doc Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return Node{}, fmt.Errorf("failed to parse document JSON: %w", err)
	}
	if doc.Type != "" && doc.Type != TypeDocument {
		return Node{}, fmt.Errorf("unexpected root node type %q", doc.Type)
	}
	return doc.Root(), nil
}

// Title returns the text of the first section title in the tree.
func Title(root Node) string {
	var title string
	root.Walk(func(n *Node) bool {
		if title != "" {
			return false
		}
		if n.Type == TypeSection {
			for _, child := range n.Content {
				if child.Type == TypeTitle {
					title = child.AsText()
					return false
				}
			}
		}
		return true
	})
	return title
}
