package mdreader

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"

	"github.com/rgonek/manpage-builder/doctree"
)

const toctreeDirective = "{toctree}"

var (
	labelTargetPattern = regexp.MustCompile(`^\(([^()\s]+)\)=$`)
	optionPattern      = regexp.MustCompile(`^:([a-z_-]+):\s*(.*)$`)
)

// labelTarget recognises a "(label)=" paragraph.
func (s *state) labelTarget(node ast.Node) (string, bool) {
	paragraph, ok := node.(*ast.Paragraph)
	if !ok || paragraph.Lines().Len() != 1 {
		return "", false
	}
	segment := paragraph.Lines().At(0)
	line := strings.TrimSpace(string(segment.Value(s.source)))
	match := labelTargetPattern.FindStringSubmatch(line)
	if len(match) != 2 {
		return "", false
	}
	return match[1], true
}

// convertToctree builds a toctree node from the body of a {toctree} block.
// Entries are kept as written; they are resolved against the document when
// the tree is inlined.
func (s *state) convertToctree(node *ast.FencedCodeBlock) doctree.Node {
	toctree := doctree.Node{
		Type:  doctree.TypeToctree,
		Attrs: map[string]any{"docname": s.docname},
	}

	var entries []string
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		line := strings.TrimSpace(string(segment.Value(s.source)))
		if line == "" {
			continue
		}
		if match := optionPattern.FindStringSubmatch(line); len(match) == 3 {
			s.applyToctreeOption(&toctree, match[1], strings.TrimSpace(match[2]))
			continue
		}
		entries = append(entries, line)
	}

	toctree.SetAttr("entries", entries)
	return toctree
}

func (s *state) applyToctreeOption(toctree *doctree.Node, name, value string) {
	switch name {
	case "glob", "hidden", "titlesonly", "numbered", "reversed":
		toctree.SetAttr(name, true)
	case "maxdepth":
		depth, err := strconv.Atoi(value)
		if err != nil {
			s.addWarning(doctree.WarningUnknownNode, doctree.TypeToctree, "invalid toctree maxdepth "+strconv.Quote(value))
			return
		}
		toctree.SetAttr("maxdepth", depth)
	case "caption", "name":
		toctree.SetAttr(name, value)
	default:
		s.addWarning(doctree.WarningUnknownNode, doctree.TypeToctree, "unknown toctree option "+strconv.Quote(name))
	}
}
