// Package doctree defines the document tree shared by the readers, the
// build steps and the manual page translator.
package doctree

// Node types understood by the builder and the translator.
const (
	TypeDocument     = "document"
	TypeSection      = "section"
	TypeTitle        = "title"
	TypeParagraph    = "paragraph"
	TypeText         = "text"
	TypeEmphasis     = "emphasis"
	TypeStrong       = "strong"
	TypeLiteral      = "literal"
	TypeReference    = "reference"
	TypePendingRef   = "pendingRef"
	TypeToctree      = "toctree"
	TypeStartOfFile  = "startOfFile"
	TypeCompound     = "compound"
	TypeBulletList   = "bulletList"
	TypeOrderedList  = "orderedList"
	TypeListItem     = "listItem"
	TypeLiteralBlock = "literalBlock"
	TypeBlockquote   = "blockquote"
	TypeRule         = "rule"
	TypeHardBreak    = "hardBreak"
)

// Doc is the serialized form of a document tree.
type Doc struct {
	Version int    `json:"version"`
	Type    string `json:"type"`
	Content []Node `json:"content,omitempty"`
}

// Node represents any node in the tree (section, paragraph, text, etc.).
// Children are owned by their parent; structural edits splice Content.
type Node struct {
	Type    string         `json:"type"`
	Text    string         `json:"text,omitempty"`
	Content []Node         `json:"content,omitempty"`
	Attrs   map[string]any `json:"attrs,omitempty"`
}

// NewText returns a text node.
func NewText(s string) Node {
	return Node{Type: TypeText, Text: s}
}

// New returns a node of the given type holding children.
func New(typ string, children ...Node) Node {
	return Node{Type: typ, Content: children}
}

// Root converts the serialized document into its root node.
func (d Doc) Root() Node {
	typ := d.Type
	if typ == "" {
		typ = TypeDocument
	}
	return Node{Type: typ, Content: d.Content}
}

// IsInlineMarkup reports whether the node is a font-changing inline node.
func (n Node) IsInlineMarkup() bool {
	switch n.Type {
	case TypeEmphasis, TypeStrong, TypeLiteral:
		return true
	default:
		return false
	}
}

// SetAttr sets an attribute, allocating the map when needed.
func (n *Node) SetAttr(key string, value any) {
	if n.Attrs == nil {
		n.Attrs = make(map[string]any)
	}
	n.Attrs[key] = value
}

// HasAttr reports whether key is set.
func (n Node) HasAttr(key string) bool {
	_, ok := n.Attrs[key]
	return ok
}

// GetStringAttr returns a string attribute or def.
func (n Node) GetStringAttr(key, def string) string {
	if v, ok := n.Attrs[key].(string); ok {
		return v
	}
	return def
}

// GetIntAttr returns an integer attribute or def. Numbers decoded from JSON
// arrive as float64.
func (n Node) GetIntAttr(key string, def int) int {
	switch v := n.Attrs[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// GetBoolAttr returns a boolean attribute or def.
func (n Node) GetBoolAttr(key string, def bool) bool {
	if v, ok := n.Attrs[key].(bool); ok {
		return v
	}
	return def
}

// GetStringsAttr returns a list attribute. Both []string and the []any
// produced by JSON decoding are accepted; non-string items are ignored.
func (n Node) GetStringsAttr(key string) []string {
	switch v := n.Attrs[key].(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{v}
	default:
		return nil
	}
}

// AsText returns the concatenated text of the node and its descendants.
func (n Node) AsText() string {
	if n.Type == TypeText {
		return n.Text
	}
	var out []byte
	for _, child := range n.Content {
		out = append(out, child.AsText()...)
	}
	return string(out)
}
