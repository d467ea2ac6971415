package toctree

// Visited records the documents already traversed while inlining one root
// document. It is created per root and discarded afterwards.
type Visited struct {
	seen  map[string]struct{}
	order []string
}

// NewVisited returns a set initialized with docnames.
func NewVisited(docnames ...string) *Visited {
	v := &Visited{seen: make(map[string]struct{}, len(docnames))}
	for _, docname := range docnames {
		v.Add(docname)
	}
	return v
}

// Add inserts docname and reports whether it was not yet present.
func (v *Visited) Add(docname string) bool {
	if _, ok := v.seen[docname]; ok {
		return false
	}
	v.seen[docname] = struct{}{}
	v.order = append(v.order, docname)
	return true
}

// Docnames returns visited documents in insertion order.
func (v *Visited) Docnames() []string {
	return append([]string(nil), v.order...)
}
