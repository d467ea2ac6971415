package mdreader

import (
	"strings"

	"github.com/yuin/goldmark/ast"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/rgonek/manpage-builder/doctree"
)

// item is either a heading opening a section or an ordinary block.
type item struct {
	heading bool
	level   int
	title   doctree.Node
	ids     []string
	names   []string
	block   doctree.Node
}

func (s *state) convertDocument(root ast.Node) doctree.Node {
	var items []item
	for child := root.FirstChild(); child != nil; child = child.NextSibling() {
		if heading, ok := child.(*ast.Heading); ok {
			items = append(items, s.convertHeading(heading))
			continue
		}
		if label, ok := s.labelTarget(child); ok {
			s.pendingLabels = append(s.pendingLabels, label)
			continue
		}
		if block, ok := s.convertBlock(child); ok {
			items = append(items, item{block: block})
		}
	}

	content, _ := nest(items, 0, 0)
	return doctree.Node{Type: doctree.TypeDocument, Content: content}
}

// nest groups the flat list of headings and blocks into sections. Blocks
// following a heading belong to its section until a heading of the same
// or a higher level.
func nest(items []item, i, level int) ([]doctree.Node, int) {
	var out []doctree.Node
	for i < len(items) {
		it := items[i]
		if !it.heading {
			out = append(out, it.block)
			i++
			continue
		}
		if it.level <= level {
			return out, i
		}

		section := doctree.Node{
			Type:    doctree.TypeSection,
			Content: []doctree.Node{it.title},
		}
		if len(it.ids) > 0 {
			section.SetAttr("ids", it.ids)
		}
		if len(it.names) > 0 {
			section.SetAttr("names", it.names)
		}

		var children []doctree.Node
		children, i = nest(items, i+1, it.level)
		section.Content = append(section.Content, children...)
		out = append(out, section)
	}
	return out, i
}

func (s *state) convertHeading(node *ast.Heading) item {
	it := item{
		heading: true,
		level:   node.Level,
		title:   doctree.New(doctree.TypeTitle, s.convertInlineChildren(node)...),
		names:   s.pendingLabels,
	}
	s.pendingLabels = nil

	if value, ok := node.AttributeString("id"); ok {
		if id, ok := value.([]byte); ok && len(id) > 0 {
			it.ids = []string{string(id)}
		}
	}
	return it
}

func (s *state) convertBlock(node ast.Node) (doctree.Node, bool) {
	switch typed := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		content := s.convertInlineChildren(typed)
		if len(content) == 0 {
			return doctree.Node{}, false
		}
		return doctree.New(doctree.TypeParagraph, content...), true

	case *ast.Heading:
		// Only top level headings open sections.
		return doctree.New(doctree.TypeParagraph, doctree.New(doctree.TypeStrong, s.convertInlineChildren(typed)...)), true

	case *ast.Blockquote:
		return doctree.New(doctree.TypeBlockquote, s.convertBlockChildren(typed)...), true

	case *ast.ThematicBreak:
		return doctree.Node{Type: doctree.TypeRule}, true

	case *ast.FencedCodeBlock:
		if string(typed.Language(s.source)) == toctreeDirective {
			return s.convertToctree(typed), true
		}
		block := doctree.New(doctree.TypeLiteralBlock, doctree.NewText(s.linesText(typed.Lines())))
		if lang := string(typed.Language(s.source)); lang != "" {
			block.SetAttr("language", lang)
		}
		return block, true

	case *ast.CodeBlock:
		return doctree.New(doctree.TypeLiteralBlock, doctree.NewText(s.linesText(typed.Lines()))), true

	case *ast.List:
		return s.convertList(typed), true

	case *ast.HTMLBlock:
		return s.convertHTMLBlock(typed)

	case *extast.Table:
		return s.convertTable(typed), true

	default:
		kind := node.Kind().String()
		textValue := strings.TrimSpace(string(node.Text(s.source)))
		if textValue == "" {
			return doctree.Node{}, false
		}
		s.warnUnknown(kind)
		return doctree.New(doctree.TypeParagraph, doctree.NewText(textValue)), true
	}
}

func (s *state) convertBlockChildren(parent ast.Node) []doctree.Node {
	var content []doctree.Node
	for child := parent.FirstChild(); child != nil; child = child.NextSibling() {
		if block, ok := s.convertBlock(child); ok {
			content = append(content, block)
		}
	}
	return content
}

func (s *state) convertList(node *ast.List) doctree.Node {
	list := doctree.Node{Type: doctree.TypeBulletList}
	if node.IsOrdered() {
		list.Type = doctree.TypeOrderedList
		list.SetAttr("start", node.Start)
	}
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		list.Content = append(list.Content, doctree.New(doctree.TypeListItem, s.convertBlockChildren(child)...))
	}
	return list
}

// convertTable renders each row as a paragraph with cells separated by a
// vertical bar.
func (s *state) convertTable(node *extast.Table) doctree.Node {
	var rows []doctree.Node
	for row := node.FirstChild(); row != nil; row = row.NextSibling() {
		var content []doctree.Node
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			if len(content) > 0 {
				content = append(content, doctree.NewText(" | "))
			}
			content = append(content, s.convertInlineChildren(cell)...)
		}
		if len(content) > 0 {
			rows = append(rows, doctree.New(doctree.TypeParagraph, content...))
		}
	}
	return doctree.New(doctree.TypeCompound, rows...)
}

func (s *state) linesText(lines *text.Segments) string {
	var sb strings.Builder
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		sb.Write(segment.Value(s.source))
	}
	return strings.TrimRight(sb.String(), "\n")
}
