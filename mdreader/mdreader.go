// Package mdreader parses Markdown sources into document trees.
//
// Besides CommonMark and GFM it understands a few MyST constructs used to
// describe a documentation project:
//
//   - fenced blocks with the {toctree} info string list child documents,
//     one per line, optionally as "Title <docname>", with :glob: and
//     :maxdepth: N option lines;
//   - a paragraph consisting of "(label)=" names the following section;
//   - links to relative paths are document references, links to "#label"
//     are label references; both are resolved later against the project.
package mdreader

import (
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/rgonek/manpage-builder/doctree"
)

// Result holds the output of reading one source.
type Result struct {
	Tree     doctree.Node
	Title    string
	Warnings []doctree.Warning
}

// Reader converts Markdown into document trees.
type Reader struct {
	parser goldmark.Markdown
}

type state struct {
	docname       string
	source        []byte
	pendingLabels []string
	warnings      []doctree.Warning
}

// New creates a Reader.
func New() *Reader {
	return &Reader{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
}

// Read parses source, the content of document docname.
func (r *Reader) Read(source []byte, docname string) Result {
	s := &state{
		docname: docname,
		source:  source,
	}

	root := r.parser.Parser().Parse(text.NewReader(source))
	tree := s.convertDocument(root)

	return Result{
		Tree:     tree,
		Title:    doctree.Title(tree),
		Warnings: s.warnings,
	}
}

func (s *state) addWarning(warnType doctree.WarningType, nodeType, message string) {
	s.warnings = append(s.warnings, doctree.Warning{
		Type:     warnType,
		Docname:  s.docname,
		NodeType: nodeType,
		Message:  message,
	})
}

func (s *state) warnUnknown(kind string) {
	s.addWarning(doctree.WarningUnknownNode, kind, fmt.Sprintf("unsupported markdown node: %s", kind))
}
