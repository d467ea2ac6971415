package project

import (
	"fmt"
	"strings"

	"github.com/rgonek/manpage-builder/doctree"
)

// Target is a resolved reference destination.
type Target struct {
	Docname string
	Anchor  string
	Title   string
}

// LinkGraph indexes the labels and section anchors of every document and
// resolves pending references against them.
type LinkGraph struct {
	store   *Store
	labels  map[string]Target
	anchors map[string]Target
}

// NewLinkGraph builds the index for all documents of store. Labels are
// project wide and case-insensitive; the first definition wins.
func NewLinkGraph(store *Store) (*LinkGraph, []doctree.Warning) {
	g := &LinkGraph{
		store:   store,
		labels:  make(map[string]Target),
		anchors: make(map[string]Target),
	}

	var warnings []doctree.Warning
	for _, docname := range store.Docnames() {
		tree, _ := store.Doctree(docname)
		tree.Walk(func(n *doctree.Node) bool {
			if n.Type != doctree.TypeSection {
				return true
			}
			target := Target{Docname: docname, Title: sectionTitle(*n)}
			ids := n.GetStringsAttr("ids")
			if len(ids) > 0 {
				target.Anchor = ids[0]
			}
			for _, id := range ids {
				key := docname + "#" + id
				if _, exists := g.anchors[key]; !exists {
					g.anchors[key] = target
				}
			}
			for _, name := range n.GetStringsAttr("names") {
				key := strings.ToLower(name)
				if prev, exists := g.labels[key]; exists {
					warnings = append(warnings, doctree.Warning{
						Type:    doctree.WarningDuplicateLabel,
						Docname: docname,
						Message: fmt.Sprintf("duplicate label %s, other instance in %s", name, prev.Docname),
					})
					continue
				}
				g.labels[key] = target
			}
			return true
		})
	}

	return g, warnings
}

// Lookup finds the destination of a pending reference written in refdoc.
func (g *LinkGraph) Lookup(refdoc, reftype, target, anchor string) (Target, bool) {
	switch reftype {
	case "doc":
		docname := doctree.JoinDocname(refdoc, target)
		if target == "" {
			docname = refdoc
		}
		doc, err := g.store.Document(docname)
		if err != nil {
			return Target{}, false
		}
		if anchor != "" {
			if t, ok := g.anchors[docname+"#"+anchor]; ok {
				return t, true
			}
		}
		return Target{Docname: docname, Anchor: anchor, Title: doc.Title}, true

	case "ref":
		if t, ok := g.labels[strings.ToLower(target)]; ok {
			return t, true
		}
		if t, ok := g.anchors[refdoc+"#"+target]; ok {
			return t, true
		}
		if docname, id, ok := strings.Cut(target, "#"); ok {
			if t, ok := g.anchors[doctree.JoinDocname(refdoc, docname)+"#"+id]; ok {
				return t, true
			}
		}
	}
	return Target{}, false
}

// Resolve implements the resolver used by xref. The pending reference's
// own document (refdoc) takes precedence over fromDoc for relative names.
func (g *LinkGraph) Resolve(fromDoc string, pending doctree.Node) (doctree.Node, bool) {
	refdoc := pending.GetStringAttr("refdoc", fromDoc)
	target, ok := g.Lookup(
		refdoc,
		pending.GetStringAttr("reftype", ""),
		pending.GetStringAttr("reftarget", ""),
		pending.GetStringAttr("anchor", ""),
	)
	if !ok {
		return doctree.Node{}, false
	}

	var content []doctree.Node
	if pending.GetBoolAttr("refexplicit", false) && len(pending.Content) > 0 {
		content = pending.Clone().Content
	} else {
		title := target.Title
		if title == "" {
			title = target.Docname
		}
		content = []doctree.Node{doctree.NewText(title)}
	}

	reference := doctree.Node{
		Type: doctree.TypeReference,
		Attrs: map[string]any{
			"internal": true,
			"refdoc":   target.Docname,
		},
		Content: content,
	}
	if target.Anchor != "" {
		reference.SetAttr("refid", target.Anchor)
	}
	return reference, true
}

func sectionTitle(section doctree.Node) string {
	for _, child := range section.Content {
		if child.Type == doctree.TypeTitle {
			return child.AsText()
		}
	}
	return ""
}
