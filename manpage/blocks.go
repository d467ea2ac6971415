package manpage

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/rgonek/manpage-builder/doctree"
)

func (s *state) convertSection(node doctree.Node) (string, error) {
	s.sectionLevel++
	defer func() { s.sectionLevel-- }()
	return s.convertChildren(node.Content)
}

// convertTitle skips the document title, which the header already
// carries; first level sections become .SH and deeper ones .SS.
func (s *state) convertTitle(node doctree.Node) (string, error) {
	switch {
	case s.sectionLevel <= 1:
		return "", nil
	case s.sectionLevel == 2:
		title := strings.TrimSpace(collapseSpace(node.AsText()))
		return ".SH " + escapeText(strings.ToUpper(title)) + "\n", nil
	default:
		content, err := s.convertInlineContent(trimLeadingSpace(node.Content))
		if err != nil {
			return "", err
		}
		return ".SS " + strings.TrimSpace(collapseSpace(content)) + "\n", nil
	}
}

// convertParagraph renders a paragraph. The vertical space is omitted
// for the first paragraph of a list item, which follows its .IP request.
func (s *state) convertParagraph(node doctree.Node, spaced bool) (string, error) {
	content, err := s.convertInlineContent(trimLeadingSpace(node.Content))
	if err != nil {
		return "", err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", nil
	}
	if spaced {
		return ".sp\n" + content + "\n", nil
	}
	return content + "\n", nil
}

// trimLeadingSpace drops the whitespace that opens an inline sequence
// before it is escaped, so that text such as " .SH" still gets its line
// start protected. Leading text nodes that are only whitespace are dropped.
func trimLeadingSpace(nodes []doctree.Node) []doctree.Node {
	for i, n := range nodes {
		if n.Type != doctree.TypeText {
			return nodes[i:]
		}
		trimmed := strings.TrimLeftFunc(n.Text, unicode.IsSpace)
		if trimmed == "" {
			continue
		}
		out := slices.Clone(nodes[i:])
		out[0].Text = trimmed
		return out
	}
	return nil
}

func (s *state) convertList(node doctree.Node) (string, error) {
	var sb strings.Builder

	nested := s.listDepth > 0
	if nested {
		sb.WriteString(".RS 2\n")
	}
	s.listDepth++
	defer func() { s.listDepth-- }()

	number := node.GetIntAttr("start", 1)
	for _, item := range node.Content {
		if item.Type != doctree.TypeListItem {
			res, err := s.convertNode(item)
			if err != nil {
				return "", err
			}
			sb.WriteString(res)
			continue
		}

		if node.Type == doctree.TypeOrderedList {
			marker := fmt.Sprintf("%d.", number)
			fmt.Fprintf(&sb, ".IP %s %d\n", marker, len(marker)+1)
			number++
		} else {
			sb.WriteString(".IP \\(bu 2\n")
		}

		res, err := s.convertListItem(item)
		if err != nil {
			return "", err
		}
		sb.WriteString(res)
	}

	if nested {
		sb.WriteString(".RE\n")
	}
	return sb.String(), nil
}

func (s *state) convertListItem(node doctree.Node) (string, error) {
	var sb strings.Builder
	for i, child := range node.Content {
		var (
			res string
			err error
		)
		if i == 0 && child.Type == doctree.TypeParagraph {
			res, err = s.convertParagraph(child, false)
		} else {
			res, err = s.convertNode(child)
		}
		if err != nil {
			return "", err
		}
		sb.WriteString(res)
	}
	return sb.String(), nil
}

func (s *state) convertLiteralBlock(node doctree.Node) (string, error) {
	content := strings.TrimRight(node.AsText(), "\n")
	if strings.TrimSpace(content) == "" {
		return "", nil
	}

	var sb strings.Builder
	sb.WriteString(".sp\n.nf\n.ft C\n")
	sb.WriteString(escapeText(content))
	sb.WriteString("\n.ft P\n.fi\n")
	return sb.String(), nil
}

func (s *state) convertBlockquote(node doctree.Node) (string, error) {
	if len(node.Content) == 0 {
		return "", nil
	}
	content, err := s.convertChildren(node.Content)
	if err != nil {
		return "", err
	}
	if content == "" {
		return "", nil
	}
	return ".RS 4\n" + content + ".RE\n", nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
