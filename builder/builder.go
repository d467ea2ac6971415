// Package builder writes one groff manual page per configured entry. Each
// page is produced from a single tree made by inlining every document
// reachable from the entry's toctrees, resolving cross references and
// dropping the ones that cannot be resolved.
package builder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/rgonek/manpage-builder/config"
	"github.com/rgonek/manpage-builder/doctree"
	"github.com/rgonek/manpage-builder/manpage"
	"github.com/rgonek/manpage-builder/toctree"
	"github.com/rgonek/manpage-builder/xref"
)

// ErrNoOutputDir is returned by Build when no output directory is set.
var ErrNoOutputDir = errors.New("output directory is not set")

type (
	// ManPage is a manual page entry.
	ManPage = config.ManPage
	// Warning is a non-fatal issue reported by Build.
	Warning = doctree.Warning
)

// Options configures a ManualPageBuilder.
type Options struct {
	OutputDir string
	// Now returns the build time used for the page date. Defaults to
	// time.Now.
	Now func() time.Time
}

// Report describes the outcome of a build.
type Report struct {
	// Written holds the produced files relative to the output directory.
	Written  []string
	Warnings []Warning
}

// ManualPageBuilder renders manual pages from a project.
type ManualPageBuilder struct {
	cfg      *config.Config
	store    toctree.Store
	resolver xref.Resolver
	log      *zap.Logger
	options  Options
}

// New creates a builder. resolver may be nil, in which case every pending
// reference is reduced to its text.
func New(cfg *config.Config, store toctree.Store, resolver xref.Resolver, log *zap.Logger, options Options) *ManualPageBuilder {
	if log == nil {
		log = zap.NewNop()
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	return &ManualPageBuilder{
		cfg:      cfg,
		store:    store,
		resolver: resolver,
		log:      log,
		options:  options,
	}
}

// TargetName returns the output path of page relative to the output
// directory, using forward slashes.
func TargetName(page ManPage, sectionDirs bool) string {
	name := page.Name + "." + strconv.Itoa(page.Section)
	if sectionDirs {
		return "man" + strconv.Itoa(page.Section) + "/" + name
	}
	return name
}

// Build writes every configured manual page. Entries naming unknown
// documents are skipped with a warning. Failures to write one entry do not
// stop the others and are returned together.
func (b *ManualPageBuilder) Build(ctx context.Context) (Report, error) {
	var report Report

	if b.options.OutputDir == "" {
		return report, ErrNoOutputDir
	}
	if err := os.MkdirAll(b.options.OutputDir, 0755); err != nil {
		return report, fmt.Errorf("unable to create output directory: %w", err)
	}

	pages := b.cfg.ManPages()
	if len(pages) == 0 {
		b.warn(&report, Warning{
			Type:    doctree.WarningNoEntries,
			Message: "no manual page entries configured, no manual pages will be written",
		})
		return report, nil
	}

	date := b.date()

	var errs error
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return report, multierr.Append(errs, err)
		}

		target, err := b.writePage(ctx, page, date, &report)
		if err != nil {
			if ctx.Err() != nil {
				return report, multierr.Append(errs, err)
			}
			b.log.Error("Unable to write manual page", zap.String("docname", page.Docname), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("manual page %q: %w", page.Name, err))
			continue
		}
		if target != "" {
			report.Written = append(report.Written, target)
		}
	}
	return report, errs
}

// writePage processes a single entry. An empty target means the entry was
// skipped.
func (b *ManualPageBuilder) writePage(ctx context.Context, page ManPage, date string, report *Report) (string, error) {
	authors, err := config.NormalizeAuthors(page.Authors)
	if err != nil {
		return "", err
	}
	page.Authors = authors

	root, ok := b.store.Doctree(page.Docname)
	if !ok {
		b.warn(report, Warning{
			Type:    doctree.WarningUnknownDocument,
			Docname: page.Docname,
			Message: fmt.Sprintf("man pages config value references unknown document %q", page.Docname),
		})
		return "", nil
	}

	target := TargetName(page, b.cfg.Man.MakeSectionDirectory)
	b.log.Info("Writing manual page", zap.String("target", target), zap.String("docname", page.Docname))

	tree, err := b.assemble(ctx, root, page.Docname, report)
	if err != nil {
		return "", err
	}

	translator, err := manpage.New(manpage.Config{
		Name:         page.Name,
		Description:  page.Description,
		Section:      page.Section,
		Authors:      page.Authors,
		Date:         date,
		Version:      b.cfg.Project.Version,
		ManualGroup:  b.cfg.Project.Name,
		Copyright:    b.cfg.Project.Copyright,
		ShowURLs:     b.cfg.Man.ShowURLs,
		UnknownNodes: manpage.UnknownPolicy(b.cfg.Diagnostics.UnknownNodes),
	})
	if err != nil {
		return "", err
	}
	result, err := translator.Translate(tree)
	if err != nil {
		return "", err
	}
	b.warn(report, result.Warnings...)

	fname := filepath.Join(b.options.OutputDir, filepath.FromSlash(target))
	if err := os.MkdirAll(filepath.Dir(fname), 0755); err != nil {
		return "", fmt.Errorf("unable to create directory: %w", err)
	}
	if err := os.WriteFile(fname, []byte(result.Text), 0644); err != nil {
		return "", fmt.Errorf("unable to write file: %w", err)
	}
	return target, nil
}

// assemble produces the flattened tree for docname: toctrees inlined,
// references resolved or reduced to text, nested inline markup split.
func (b *ManualPageBuilder) assemble(ctx context.Context, root doctree.Node, docname string, report *Report) (doctree.Node, error) {
	inliner := toctree.New(b.store, toctree.Options{
		Missing: toctree.MissingPolicy(b.cfg.Diagnostics.MissingDocuments),
		Progress: func(name string, depth int) {
			b.log.Debug("Inlining document", zap.String("docname", name), zap.Int("depth", depth))
		},
	})

	// Every entry starts with its own visited set.
	visited := toctree.NewVisited(docname)
	inlined, err := inliner.Inline(ctx, root, docname, visited)
	if err != nil {
		return doctree.Node{}, err
	}
	b.warn(report, inlined.Warnings...)
	b.log.Debug("Toctrees inlined",
		zap.String("docname", docname),
		zap.Strings("included", inlined.Included),
		zap.Strings("visited", visited.Docnames()))

	tree := inlined.Tree
	b.warn(report, xref.ResolveAndClean(&tree, docname, b.resolver, xref.Options{Nitpicky: b.cfg.Diagnostics.Nitpicky})...)
	manpage.FlattenNestedInline(&tree)
	return tree, nil
}

// date returns the page date: the configured fixed date, or the build time
// formatted with today_fmt. SOURCE_DATE_EPOCH overrides the build time.
func (b *ManualPageBuilder) date() string {
	if b.cfg.Project.Today != "" {
		return b.cfg.Project.Today
	}
	now := b.options.Now()
	if epoch, ok := os.LookupEnv("SOURCE_DATE_EPOCH"); ok {
		if secs, err := strconv.ParseInt(epoch, 10, 64); err == nil {
			now = time.Unix(secs, 0).UTC()
		} else {
			b.log.Warn("Ignoring invalid SOURCE_DATE_EPOCH", zap.String("value", epoch))
		}
	}
	return now.Format(b.cfg.Project.TodayFmt)
}

func (b *ManualPageBuilder) warn(report *Report, warnings ...Warning) {
	for _, w := range warnings {
		b.log.Warn(w.Message,
			zap.String("type", string(w.Type)),
			zap.String("docname", w.Docname),
			zap.String("node", w.NodeType))
		report.Warnings = append(report.Warnings, w)
	}
}
