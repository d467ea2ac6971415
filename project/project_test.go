package project

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"testing"

	"github.com/maruel/natural"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgonek/manpage-builder/doctree"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		fpath := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(fpath), 0755))
		require.NoError(t, os.WriteFile(fpath, []byte(content), 0644))
	}
	return dir
}

func TestLoad(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"index.md":          "# Home\n\nWelcome.\n",
		"guide/setup.md":    "# Setup\n\nSteps.\n",
		"api.json":          `{"version":1,"type":"document","content":[{"type":"section","content":[{"type":"title","content":[{"type":"text","text":"API"}]}]}]}`,
		"notes.txt":         "ignored",
		"_build/out.md":     "# Build output\n",
		".hidden/secret.md": "# Secret\n",
		"drafts/wip.md":     "# WIP\n",
	})

	store, warnings, err := Load(context.Background(), dir, LoadOptions{Exclude: []string{"drafts/*"}})
	require.NoError(t, err)
	assert.Empty(t, warnings)

	assert.Equal(t, []string{"api", "guide/setup", "index"}, store.Docnames())
	assert.Equal(t, 3, store.Len())

	doc, err := store.Document("api")
	require.NoError(t, err)
	assert.Equal(t, "API", doc.Title)

	doc, err = store.Document("guide/setup")
	require.NoError(t, err)
	assert.Equal(t, "Setup", doc.Title)
	assert.Equal(t, filepath.Join(dir, "guide", "setup.md"), doc.Path)
}

func TestLoadErrors(t *testing.T) {
	_, _, err := Load(context.Background(), filepath.Join(t.TempDir(), "missing"), LoadOptions{})
	require.Error(t, err)

	dir := writeFiles(t, map[string]string{"broken.json": `{"type":`})
	_, _, err = Load(context.Background(), dir, LoadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.json")
}

func TestLoadDuplicateDocument(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"page.json": `{"version": 1, "type": "document", "content": [{"type": "paragraph", "content": [{"type": "text", "text": "from json"}]}]}`,
		"page.md":   "from markdown\n",
	})

	store, warnings, err := Load(context.Background(), dir, LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	require.Len(t, warnings, 1)
	assert.Equal(t, doctree.WarningDuplicateDocument, warnings[0].Type)
	assert.Equal(t, "page", warnings[0].Docname)
	assert.Contains(t, warnings[0].Message, "page.md")

	doc, err := store.Document("page")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "page.json"), doc.Path)
	assert.Equal(t, "from json", doc.Tree.AsText())
}

func TestStoreNaturalOrder(t *testing.T) {
	names := []string{"z", "ch10", "ch2", "a/b", "ch1", "a", "ch20", "b"}
	store := NewStore()
	for _, name := range names {
		store.Add(Document{Name: name})
	}

	want := slices.Clone(names)
	sort.Sort(natural.StringSlice(want))
	assert.Equal(t, want, store.Docnames())
	assert.Equal(t, []string{"a", "a/b", "b", "ch1", "ch2", "ch10", "ch20", "z"}, store.Docnames())
}

func TestStore(t *testing.T) {
	store := NewStore()
	store.Add(Document{Name: "page10"})
	store.Add(Document{Name: "page2"})
	store.Add(Document{Name: "page1"})
	store.Add(Document{Name: "page2", Title: "Second"})

	assert.Equal(t, []string{"page1", "page2", "page10"}, store.Docnames())
	assert.True(t, store.Has("page2"))
	assert.False(t, store.Has("page3"))

	doc, err := store.Document("page2")
	require.NoError(t, err)
	assert.Equal(t, "Second", doc.Title)

	_, err = store.Document("page3")
	require.ErrorIs(t, err, ErrNotFound)

	_, ok := store.Doctree("page3")
	assert.False(t, ok)
}

func section(id, name, title string) doctree.Node {
	n := doctree.New(doctree.TypeSection, doctree.New(doctree.TypeTitle, doctree.NewText(title)))
	n.SetAttr("ids", []string{id})
	if name != "" {
		n.SetAttr("names", []string{name})
	}
	return n
}

func testGraph(t *testing.T) (*LinkGraph, []doctree.Warning) {
	t.Helper()

	store := NewStore()
	store.Add(Document{Name: "index", Tree: doctree.New(doctree.TypeDocument,
		section("home", "", "Home"),
	)})
	store.Add(Document{Name: "guide/setup", Tree: doctree.New(doctree.TypeDocument,
		section("setup", "", "Setup"),
		section("install", "Installing", "Installing things"),
	)})
	store.Add(Document{Name: "other", Tree: doctree.New(doctree.TypeDocument,
		section("dup", "installing", "Duplicate"),
	)})
	return NewLinkGraph(store)
}

func TestLinkGraphDuplicateLabel(t *testing.T) {
	_, warnings := testGraph(t)
	require.Len(t, warnings, 1)
	assert.Equal(t, doctree.WarningDuplicateLabel, warnings[0].Type)
	assert.Equal(t, "other", warnings[0].Docname)
}

func TestLinkGraphLookup(t *testing.T) {
	graph, _ := testGraph(t)

	tests := []struct {
		name    string
		refdoc  string
		reftype string
		target  string
		anchor  string
		want    Target
		found   bool
	}{
		{"doc relative", "guide/index", "doc", "setup", "", Target{Docname: "guide/setup", Title: "Setup"}, true},
		{"doc with anchor", "index", "doc", "guide/setup", "install", Target{Docname: "guide/setup", Anchor: "install", Title: "Installing things"}, true},
		{"doc missing", "index", "doc", "nope", "", Target{}, false},
		{"label case insensitive", "index", "ref", "INSTALLING", "", Target{Docname: "guide/setup", Anchor: "install", Title: "Installing things"}, true},
		{"local anchor", "index", "ref", "home", "", Target{Docname: "index", Anchor: "home", Title: "Home"}, true},
		{"doc and anchor", "index", "ref", "guide/setup#setup", "", Target{Docname: "guide/setup", Anchor: "setup", Title: "Setup"}, true},
		{"unknown label", "index", "ref", "nothing", "", Target{}, false},
		{"unknown type", "index", "term", "x", "", Target{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := graph.Lookup(tt.refdoc, tt.reftype, tt.target, tt.anchor)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLinkGraphResolve(t *testing.T) {
	graph, _ := testGraph(t)

	pending := doctree.Node{
		Type: doctree.TypePendingRef,
		Attrs: map[string]any{
			"reftype":   "doc",
			"reftarget": "setup",
			"refdoc":    "guide/index",
		},
		Content: []doctree.Node{doctree.NewText("ignored")},
	}

	ref, ok := graph.Resolve("index", pending)
	require.True(t, ok)
	assert.Equal(t, doctree.TypeReference, ref.Type)
	assert.Equal(t, "Setup", ref.AsText())
	assert.Equal(t, "guide/setup", ref.GetStringAttr("refdoc", ""))
	assert.False(t, ref.HasAttr("refid"))
	assert.True(t, ref.GetBoolAttr("internal", false))

	pending.SetAttr("refexplicit", true)
	ref, ok = graph.Resolve("index", pending)
	require.True(t, ok)
	assert.Equal(t, "ignored", ref.AsText())

	pending.SetAttr("reftarget", "missing")
	_, ok = graph.Resolve("index", pending)
	assert.False(t, ok)
}
