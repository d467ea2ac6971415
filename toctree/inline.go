// Package toctree inlines the documents referenced by table-of-contents
// nodes, producing a single tree suitable for single-file output.
package toctree

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/rgonek/manpage-builder/doctree"
)

// Store provides read access to the parsed documents of a project.
type Store interface {
	Doctree(docname string) (doctree.Node, bool)
	Docnames() []string
}

// MissingPolicy controls diagnostics for toctree entries naming documents
// that do not exist.
type MissingPolicy string

const (
	MissingWarn   MissingPolicy = "warn"
	MissingSilent MissingPolicy = "silent"
)

// Options configures an Inliner.
type Options struct {
	Missing MissingPolicy
	// Progress is called for every document included, with its nesting depth.
	Progress func(docname string, depth int)
}

// Result holds the flattened tree.
type Result struct {
	Tree     doctree.Node
	Included []string
	Warnings []doctree.Warning
}

// Inliner replaces toctree nodes with the content of the documents they list.
type Inliner struct {
	store   Store
	options Options
}

type state struct {
	ctx      context.Context
	store    Store
	options  Options
	visited  *Visited
	included []string
	warnings []doctree.Warning
}

// New creates an Inliner reading documents from store.
func New(store Store, options Options) *Inliner {
	if options.Missing == "" {
		options.Missing = MissingWarn
	}
	return &Inliner{store: store, options: options}
}

// Inline returns a copy of root in which every toctree node is replaced by
// the documents it references, recursively and in declared order. Documents
// already in visited are not included again; visited is updated with every
// document included. root itself is not modified.
func (in *Inliner) Inline(ctx context.Context, root doctree.Node, rootDoc string, visited *Visited) (Result, error) {
	if visited == nil {
		visited = NewVisited(rootDoc)
	}
	visited.Add(rootDoc)

	s := &state{
		ctx:     ctx,
		store:   in.store,
		options: in.options,
		visited: visited,
	}

	tree, err := s.inline(root, rootDoc, 0)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Tree:     tree,
		Included: s.included,
		Warnings: s.warnings,
	}, nil
}

func (s *state) inline(tree doctree.Node, docname string, depth int) (doctree.Node, error) {
	tree = tree.Clone()
	content, err := s.expand(tree.Content, docname, depth)
	if err != nil {
		return doctree.Node{}, err
	}
	tree.Content = content
	return tree, nil
}

func (s *state) expand(content []doctree.Node, docname string, depth int) ([]doctree.Node, error) {
	for i := 0; i < len(content); {
		if content[i].Type != doctree.TypeToctree {
			children, err := s.expand(content[i].Content, docname, depth)
			if err != nil {
				return nil, err
			}
			content[i].Content = children
			i++
			continue
		}

		replacement, err := s.include(content[i], docname, depth+1)
		if err != nil {
			return nil, err
		}
		content = doctree.Splice(content, i, replacement)
		i += len(replacement)
	}
	return content, nil
}

// include builds the start-of-file nodes replacing a single toctree.
func (s *state) include(toctree doctree.Node, docname string, depth int) ([]doctree.Node, error) {
	var nodes []doctree.Node

	for _, entry := range s.entries(toctree, docname) {
		if !s.visited.Add(entry) {
			continue
		}
		if err := s.ctx.Err(); err != nil {
			return nil, err
		}

		subtree, ok := s.store.Doctree(entry)
		if !ok {
			if s.options.Missing == MissingWarn {
				s.warnings = append(s.warnings, doctree.Warning{
					Type:    doctree.WarningMissingDocument,
					Docname: docname,
					Message: fmt.Sprintf("toctree contains reference to nonexisting document %q", entry),
				})
			}
			continue
		}
		if s.options.Progress != nil {
			s.options.Progress(entry, depth)
		}

		flattened, err := s.inline(subtree, entry, depth)
		if err != nil {
			return nil, err
		}
		s.included = append(s.included, entry)

		sof := doctree.Node{
			Type:    doctree.TypeStartOfFile,
			Attrs:   map[string]any{"docname": entry},
			Content: flattened.Content,
		}
		sof.Walk(func(n *doctree.Node) bool {
			if n.Type == doctree.TypeSection && !n.HasAttr("docname") {
				n.SetAttr("docname", entry)
			}
			return true
		})
		nodes = append(nodes, sof)
	}

	return nodes, nil
}

// entries lists the documents of a toctree, resolved against docname and
// with glob patterns expanded.
func (s *state) entries(toctree doctree.Node, docname string) []string {
	glob := toctree.GetBoolAttr("glob", false)

	var out []string
	for _, raw := range toctree.GetStringsAttr("entries") {
		_, target := ParseEntry(raw)
		if target == "" || target == "self" || strings.Contains(target, "://") {
			continue
		}
		if glob && hasGlobMeta(target) {
			out = append(out, s.expandGlob(doctree.JoinDocname(docname, target), docname)...)
			continue
		}
		out = append(out, doctree.JoinDocname(docname, target))
	}
	return out
}

func (s *state) expandGlob(pattern, docname string) []string {
	var matches []string
	for _, candidate := range s.store.Docnames() {
		if candidate == docname {
			continue
		}
		if ok, err := path.Match(pattern, candidate); err == nil && ok {
			matches = append(matches, candidate)
		}
	}
	return matches
}

func hasGlobMeta(s string) bool {
	return strings.ContainsAny(s, "*?[")
}

// ParseEntry splits a toctree entry of the form "Title <docname>" into its
// explicit title and target. Entries without angle brackets have no title.
func ParseEntry(entry string) (title, target string) {
	entry = strings.TrimSpace(entry)
	if strings.HasSuffix(entry, ">") {
		if open := strings.LastIndex(entry, "<"); open > 0 {
			return strings.TrimSpace(entry[:open]), strings.TrimSpace(entry[open+1 : len(entry)-1])
		}
	}
	return "", entry
}
