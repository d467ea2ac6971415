package builder

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/rgonek/manpage-builder/config"
	"github.com/rgonek/manpage-builder/doctree"
	"github.com/rgonek/manpage-builder/mdreader"
	"github.com/rgonek/manpage-builder/project"
)

var buildTime = time.Date(2026, time.March, 7, 12, 0, 0, 0, time.UTC)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg, err := config.LoadConfiguration("")
	require.NoError(t, err)
	cfg.Project.Name = "Widget"
	cfg.Project.Release = "2.1"
	cfg.Project.Version = "2.1"
	cfg.Project.Author = "Jane Doe"
	return cfg
}

func testStore(t *testing.T, docs map[string]string) *project.Store {
	t.Helper()

	reader := mdreader.New()
	store := project.NewStore()
	for name, source := range docs {
		res := reader.Read([]byte(source), name)
		require.Empty(t, res.Warnings, name)
		store.Add(project.Document{Name: name, Title: res.Title, Tree: res.Tree})
	}
	return store
}

func build(t *testing.T, cfg *config.Config, store *project.Store) (Report, string, error) {
	t.Helper()
	t.Setenv("SOURCE_DATE_EPOCH", "")
	os.Unsetenv("SOURCE_DATE_EPOCH")

	graph, _ := project.NewLinkGraph(store)
	outdir := filepath.Join(t.TempDir(), "man")
	b := New(cfg, store, graph, zaptest.NewLogger(t), Options{
		OutputDir: outdir,
		Now:       func() time.Time { return buildTime },
	})
	report, err := b.Build(context.Background())
	return report, outdir, err
}

func readPage(t *testing.T, outdir, target string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(outdir, filepath.FromSlash(target)))
	require.NoError(t, err)
	return string(data)
}

func TestTargetName(t *testing.T) {
	page := ManPage{Docname: "doc", Name: "myprog", Description: "desc", Authors: config.Authors{"A"}, Section: 1}

	assert.Equal(t, "myprog.1", TargetName(page, false))
	assert.Equal(t, "man1/myprog.1", TargetName(page, true))

	page.Section = 8
	assert.Equal(t, "man8/myprog.8", TargetName(page, true))
}

var widgetDocs = map[string]string{
	"index": "# Widget\n\nWidget does things, see [usage](usage.md) and [options](#opts).\n\n" +
		"```{toctree}\nusage\noptions\nmissing\nindex\n```\n",
	"usage": "# Usage\n\nRun **widget --fast *now***.\n\n```{toctree}\nindex\n```\n",
	"options": "(opts)=\n\n# Options\n\nSee [nowhere](nowhere.md) and [site](https://example.org).\n",
}

func TestBuildDefaultEntry(t *testing.T) {
	cfg := testConfig(t)
	store := testStore(t, widgetDocs)

	report, outdir, err := build(t, cfg, store)
	require.NoError(t, err)
	assert.Equal(t, []string{"widget.1"}, report.Written)

	require.Len(t, report.Warnings, 1)
	assert.Equal(t, doctree.WarningMissingDocument, report.Warnings[0].Type)

	text := readPage(t, outdir, "widget.1")
	assert.True(t, strings.HasPrefix(text, `.\" Man page generated from a documentation project.`))
	assert.Contains(t, text, `.TH "WIDGET" "1" "Mar 07, 2026" "2.1" "Widget"`)
	assert.Contains(t, text, ".SH NAME\nwidget \\- Widget 2.1\n")
	assert.Contains(t, text, ".SH USAGE\n")
	assert.Contains(t, text, ".SH OPTIONS\n")
	assert.Contains(t, text, ".SH AUTHOR\nJane Doe\n")

	// each document appears exactly once and in toctree order
	assert.Equal(t, 1, strings.Count(text, "Widget does things"))
	assert.Equal(t, 1, strings.Count(text, ".SH USAGE"))
	assert.Less(t, strings.Index(text, ".SH USAGE"), strings.Index(text, ".SH OPTIONS"))

	// resolved references keep their text, unresolved ones degrade to text
	assert.Contains(t, text, `see \fIusage\fP and \fIoptions\fP.`)
	assert.Contains(t, text, "See nowhere and \\fIsite\\fP.")

	// nested inline markup is split
	assert.Contains(t, text, `Run \fBwidget \-\-fast \fP\fInow\fP.`)
}

func TestBuildLogsInlinedDocuments(t *testing.T) {
	t.Setenv("SOURCE_DATE_EPOCH", "0")

	cfg := testConfig(t)
	store := testStore(t, widgetDocs)
	graph, _ := project.NewLinkGraph(store)

	core, logs := observer.New(zap.DebugLevel)
	b := New(cfg, store, graph, zap.New(core), Options{OutputDir: t.TempDir()})
	_, err := b.Build(context.Background())
	require.NoError(t, err)

	entries := logs.FilterMessage("Toctrees inlined").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "index", fields["docname"])
	assert.Equal(t, []any{"usage", "options"}, fields["included"])
	assert.Equal(t, []any{"index", "usage", "options", "missing"}, fields["visited"])
}

func TestBuildConfiguredEntries(t *testing.T) {
	cfg := testConfig(t)
	cfg.Man.MakeSectionDirectory = true
	cfg.Man.ShowURLs = true
	cfg.Diagnostics.Nitpicky = true
	cfg.Diagnostics.MissingDocuments = "silent"
	cfg.Project.Today = "today"
	cfg.Man.Pages = []ManPage{
		{Docname: "absent", Name: "ghost", Description: "missing", Section: 1},
		{Docname: "options", Name: "widget-options", Description: "options", Authors: config.Authors{"A", "B"}, Section: 5},
		{Docname: "index", Name: "widget", Description: "the tool", Section: 1},
	}
	store := testStore(t, widgetDocs)

	report, outdir, err := build(t, cfg, store)
	require.NoError(t, err)
	assert.Equal(t, []string{"man5/widget-options.5", "man1/widget.1"}, report.Written)

	_, err = os.Stat(filepath.Join(outdir, "man1", "ghost.1"))
	assert.True(t, os.IsNotExist(err))

	var types []doctree.WarningType
	for _, w := range report.Warnings {
		types = append(types, w.Type)
	}
	assert.Equal(t, doctree.WarningUnknownDocument, types[0])
	assert.Contains(t, types, doctree.WarningUnresolvedReference)
	assert.NotContains(t, types, doctree.WarningMissingDocument)

	options := readPage(t, outdir, "man5/widget-options.5")
	assert.Contains(t, options, `.TH "WIDGET\-OPTIONS" "5" "today" "2.1" "Widget"`)
	assert.Contains(t, options, `\fIsite\fP <\fBhttps://example.org\fP>`)
	assert.Contains(t, options, ".SH AUTHOR\nA, B\n")
	// the document title is carried by the header
	assert.NotContains(t, options, ".SH OPTIONS")

	widget := readPage(t, outdir, "man1/widget.1")
	assert.NotContains(t, widget, ".SH AUTHOR")
}

func TestBuildNoEntries(t *testing.T) {
	cfg := testConfig(t)
	cfg.Man.Pages = []ManPage{}

	report, outdir, err := build(t, cfg, testStore(t, widgetDocs))
	require.NoError(t, err)
	assert.Empty(t, report.Written)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, doctree.WarningNoEntries, report.Warnings[0].Type)

	entries, err := os.ReadDir(outdir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestBuildNoOutputDir(t *testing.T) {
	b := New(testConfig(t), project.NewStore(), nil, nil, Options{})
	_, err := b.Build(context.Background())
	require.ErrorIs(t, err, ErrNoOutputDir)
}

func TestBuildWriteFailureContinues(t *testing.T) {
	cfg := testConfig(t)
	cfg.Man.Pages = []ManPage{
		{Docname: "usage", Name: "blocked", Section: 1},
		{Docname: "options", Name: "widget-options", Section: 1},
	}
	store := testStore(t, widgetDocs)

	outdir := t.TempDir()
	// a directory in place of the target file makes the write fail
	require.NoError(t, os.Mkdir(filepath.Join(outdir, "blocked.1"), 0755))

	graph, _ := project.NewLinkGraph(store)
	b := New(cfg, store, graph, zaptest.NewLogger(t), Options{OutputDir: outdir})
	report, err := b.Build(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")
	assert.Equal(t, []string{"widget-options.1"}, report.Written)
}

func TestBuildUnknownNodeError(t *testing.T) {
	cfg := testConfig(t)
	cfg.Diagnostics.UnknownNodes = "error"
	cfg.Man.Pages = []ManPage{{Docname: "odd", Name: "odd", Section: 1}}

	store := project.NewStore()
	store.Add(project.Document{Name: "odd", Tree: doctree.New(doctree.TypeDocument, doctree.Node{Type: "table"})})

	report, _, err := build(t, cfg, store)
	require.Error(t, err)
	assert.Empty(t, report.Written)
}

func TestBuildCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := New(testConfig(t), testStore(t, widgetDocs), nil, nil, Options{OutputDir: t.TempDir()})
	report, err := b.Build(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Written)
}

func TestBuildDate(t *testing.T) {
	cfg := testConfig(t)
	b := New(cfg, project.NewStore(), nil, nil, Options{Now: func() time.Time { return buildTime }})

	t.Setenv("SOURCE_DATE_EPOCH", "0")
	assert.Equal(t, "Jan 01, 1970", b.date())

	t.Setenv("SOURCE_DATE_EPOCH", "garbage")
	assert.Equal(t, "Mar 07, 2026", b.date())

	cfg.Project.Today = "someday"
	assert.Equal(t, "someday", b.date())
}
