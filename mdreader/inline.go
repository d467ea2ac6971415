package mdreader

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"

	"github.com/rgonek/manpage-builder/doctree"
)

func (s *state) convertInlineChildren(parent ast.Node) []doctree.Node {
	var content []doctree.Node
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		for _, node := range s.convertInline(child) {
			content = appendInlineNode(content, node)
		}
	}
	return content
}

func (s *state) convertInline(node ast.Node) []doctree.Node {
	switch typed := node.(type) {
	case *ast.Text:
		var content []doctree.Node
		if textValue := string(typed.Segment.Value(s.source)); textValue != "" {
			content = append(content, doctree.NewText(textValue))
		}
		if typed.HardLineBreak() {
			content = append(content, doctree.Node{Type: doctree.TypeHardBreak})
		} else if typed.SoftLineBreak() {
			content = append(content, doctree.NewText(" "))
		}
		return content

	case *ast.String:
		return []doctree.Node{doctree.NewText(string(typed.Value))}

	case *ast.Emphasis:
		markup := doctree.TypeEmphasis
		if typed.Level >= 2 {
			markup = doctree.TypeStrong
		}
		return []doctree.Node{doctree.New(markup, s.convertInlineChildren(typed)...)}

	case *ast.CodeSpan:
		return []doctree.Node{doctree.New(doctree.TypeLiteral, s.convertInlineChildren(typed)...)}

	case *extast.Strikethrough:
		return s.convertInlineChildren(typed)

	case *extast.TaskCheckBox:
		if typed.IsChecked {
			return []doctree.Node{doctree.NewText("[x] ")}
		}
		return []doctree.Node{doctree.NewText("[ ] ")}

	case *ast.Link:
		return []doctree.Node{s.convertLink(strings.TrimSpace(string(typed.Destination)), s.convertInlineChildren(typed))}

	case *ast.AutoLink:
		url := string(typed.URL(s.source))
		label := string(typed.Label(s.source))
		return []doctree.Node{{
			Type:    doctree.TypeReference,
			Attrs:   map[string]any{"refuri": url},
			Content: []doctree.Node{doctree.NewText(label)},
		}}

	case *ast.Image:
		alt := strings.TrimSpace(string(typed.Text(s.source)))
		if alt == "" {
			return nil
		}
		return []doctree.Node{doctree.NewText(alt)}

	case *ast.RawHTML:
		return s.convertRawHTML(typed)

	default:
		if node.HasChildren() {
			return s.convertInlineChildren(node)
		}
		textValue := strings.TrimSpace(string(node.Text(s.source)))
		if textValue == "" {
			return nil
		}
		s.warnUnknown(node.Kind().String())
		return []doctree.Node{doctree.NewText(textValue)}
	}
}

// convertLink classifies a link destination. Absolute URLs become
// references, "#label" becomes a label reference and anything else is a
// reference to another document of the project.
func (s *state) convertLink(href string, content []doctree.Node) doctree.Node {
	if href == "" {
		return doctree.New(doctree.TypeCompound, content...)
	}
	if isExternal(href) {
		return doctree.Node{
			Type:    doctree.TypeReference,
			Attrs:   map[string]any{"refuri": href},
			Content: content,
		}
	}

	pending := doctree.Node{
		Type: doctree.TypePendingRef,
		Attrs: map[string]any{
			"refdoc":      s.docname,
			"refexplicit": len(content) > 0,
		},
		Content: content,
	}

	if label, ok := strings.CutPrefix(href, "#"); ok {
		pending.Attrs["reftype"] = "ref"
		pending.Attrs["reftarget"] = label
		return pending
	}

	target, anchor, _ := strings.Cut(href, "#")
	pending.Attrs["reftype"] = "doc"
	pending.Attrs["reftarget"] = doctree.TrimSourceSuffix(target)
	if anchor != "" {
		pending.Attrs["anchor"] = anchor
	}
	return pending
}

func isExternal(href string) bool {
	if strings.HasPrefix(href, "mailto:") {
		return true
	}
	scheme, _, ok := strings.Cut(href, "://")
	return ok && scheme != "" && !strings.ContainsAny(scheme, "/#?")
}

func appendInlineNode(content []doctree.Node, next doctree.Node) []doctree.Node {
	if next.Type == doctree.TypeText && next.Text == "" {
		return content
	}
	if next.Type == doctree.TypeCompound {
		for _, child := range next.Content {
			content = appendInlineNode(content, child)
		}
		return content
	}
	if len(content) == 0 {
		return append(content, next)
	}

	last := &content[len(content)-1]
	if last.Type == doctree.TypeText && next.Type == doctree.TypeText {
		last.Text += next.Text
		return content
	}
	return append(content, next)
}
