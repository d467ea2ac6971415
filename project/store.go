// Package project holds the parsed documents of a documentation project
// and the link graph used to resolve references between them.
package project

import (
	"errors"
	"fmt"
	"slices"
	"sort"

	"github.com/maruel/natural"

	"github.com/rgonek/manpage-builder/doctree"
)

// ErrNotFound is returned when a document is not part of the project.
var ErrNotFound = errors.New("document not found")

// Document is one parsed source file.
type Document struct {
	Name  string
	Path  string
	Title string
	Tree  doctree.Node
}

// Store is the project wide document store keyed by document name.
// It is filled while loading and only read afterwards.
type Store struct {
	docs  map[string]Document
	names []string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{docs: make(map[string]Document)}
}

// Add inserts or replaces a document.
func (s *Store) Add(doc Document) {
	if doc.Title == "" {
		doc.Title = doctree.Title(doc.Tree)
	}
	if _, exists := s.docs[doc.Name]; !exists {
		i := sort.Search(len(s.names), func(i int) bool {
			return !natural.Less(s.names[i], doc.Name)
		})
		s.names = slices.Insert(s.names, i, doc.Name)
	}
	s.docs[doc.Name] = doc
}

// Document returns the named document.
func (s *Store) Document(docname string) (Document, error) {
	doc, ok := s.docs[docname]
	if !ok {
		return Document{}, fmt.Errorf("%q: %w", docname, ErrNotFound)
	}
	return doc, nil
}

// Doctree returns the tree of the named document. The tree is shared and
// must not be modified; callers needing to edit it work on a Clone.
func (s *Store) Doctree(docname string) (doctree.Node, bool) {
	doc, ok := s.docs[docname]
	if !ok {
		return doctree.Node{}, false
	}
	return doc.Tree, true
}

// Has reports whether the project knows docname.
func (s *Store) Has(docname string) bool {
	_, ok := s.docs[docname]
	return ok
}

// Docnames lists all documents in natural order.
func (s *Store) Docnames() []string {
	return append([]string(nil), s.names...)
}

// Len returns the number of documents.
func (s *Store) Len() int {
	return len(s.docs)
}
