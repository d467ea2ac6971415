package mdreader

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark/ast"
	xhtml "golang.org/x/net/html"

	"github.com/rgonek/manpage-builder/doctree"
)

// convertHTMLBlock keeps the text of a raw HTML block. Comments and markup
// are dropped; a block without text produces nothing.
func (s *state) convertHTMLBlock(node *ast.HTMLBlock) (doctree.Node, bool) {
	var raw bytes.Buffer
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		raw.Write(segment.Value(s.source))
	}
	if node.HasClosure() {
		raw.Write(node.ClosureLine.Value(s.source))
	}

	content := htmlInline(raw.Bytes())
	if strings.TrimSpace(doctree.New(doctree.TypeParagraph, content...).AsText()) == "" {
		return doctree.Node{}, false
	}
	return doctree.New(doctree.TypeParagraph, content...), true
}

func (s *state) convertRawHTML(node *ast.RawHTML) []doctree.Node {
	var raw bytes.Buffer
	for i := 0; i < node.Segments.Len(); i++ {
		segment := node.Segments.At(i)
		raw.Write(segment.Value(s.source))
	}
	return htmlInline(raw.Bytes())
}

// htmlInline tokenizes an HTML fragment into text and line breaks.
func htmlInline(raw []byte) []doctree.Node {
	var content []doctree.Node
	tokenizer := xhtml.NewTokenizer(bytes.NewReader(raw))
	for {
		switch tokenizer.Next() {
		case xhtml.ErrorToken:
			// io.EOF or malformed input; keep what was collected.
			return content
		case xhtml.TextToken:
			content = appendInlineNode(content, doctree.NewText(string(tokenizer.Text())))
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			if string(name) == "br" {
				content = append(content, doctree.Node{Type: doctree.TypeHardBreak})
			}
		}
	}
}
