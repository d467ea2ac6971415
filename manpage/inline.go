package manpage

import (
	"strings"

	"github.com/rgonek/manpage-builder/doctree"
)

// Font change requests for inline markup.
const (
	fontItalic   = "\\fI"
	fontBold     = "\\fB"
	fontPrevious = "\\fP"
)

func (s *state) convertInlineContent(content []doctree.Node) (string, error) {
	var sb strings.Builder
	for _, node := range content {
		res, err := s.convertInline(node)
		if err != nil {
			return "", err
		}
		sb.WriteString(res)
	}
	return sb.String(), nil
}

func (s *state) convertInline(node doctree.Node) (string, error) {
	switch node.Type {
	case doctree.TypeText:
		return escapeText(node.Text), nil

	case doctree.TypeEmphasis:
		return s.wrapInline(node, fontItalic)

	case doctree.TypeStrong, doctree.TypeLiteral:
		return s.wrapInline(node, fontBold)

	case doctree.TypeReference:
		return s.convertReference(node), nil

	case doctree.TypeHardBreak:
		return "\n.br\n", nil

	case doctree.TypeToctree:
		return s.convertUnknown(node)

	default:
		// Containers such as compound or an unresolved reference keep
		// their text.
		return s.convertInlineContent(node.Content)
	}
}

func (s *state) wrapInline(node doctree.Node, font string) (string, error) {
	content, err := s.convertInlineContent(node.Content)
	if err != nil {
		return "", err
	}
	if content == "" {
		return "", nil
	}
	return font + content + fontPrevious, nil
}

// convertReference renders the reference text in italics. External URLs
// follow in angle brackets when ShowURLs is set and differ from the text.
func (s *state) convertReference(node doctree.Node) string {
	text := node.AsText()
	uri := node.GetStringAttr("refuri", "")

	var sb strings.Builder
	sb.WriteString(fontItalic)
	sb.WriteString(escapeText(text))
	sb.WriteString(fontPrevious)

	if !s.config.ShowURLs || !isExternalURI(uri) {
		return sb.String()
	}
	if shown := strings.TrimPrefix(uri, "mailto:"); shown != text {
		sb.WriteString(" <")
		sb.WriteString(fontBold)
		sb.WriteString(escapeText(shown))
		sb.WriteString(fontPrevious)
		sb.WriteString(">")
	}
	return sb.String()
}

func isExternalURI(uri string) bool {
	for _, prefix := range []string{"mailto:", "http:", "https:", "ftp:"} {
		if strings.HasPrefix(uri, prefix) {
			return true
		}
	}
	return false
}
