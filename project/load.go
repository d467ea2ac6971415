package project

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rgonek/manpage-builder/doctree"
	"github.com/rgonek/manpage-builder/mdreader"
)

// LoadOptions controls which files of the source directory are read.
type LoadOptions struct {
	// Suffixes of source files; ".md" and ".json" are understood.
	Suffixes []string
	// Exclude holds path.Match patterns applied to document names.
	Exclude []string
}

// Load reads every source file below dir into a new store. Directories
// whose name starts with "." or "_" are skipped. When several files map to
// the same document name only the first one is read.
func Load(ctx context.Context, dir string, options LoadOptions) (*Store, []doctree.Warning, error) {
	if len(options.Suffixes) == 0 {
		options.Suffixes = []string{".md", ".json"}
	}

	info, err := os.Stat(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to access source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("source %q is not a directory", dir)
	}

	store := NewStore()
	reader := mdreader.New()
	var warnings []doctree.Warning

	err = filepath.WalkDir(dir, func(fpath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			if fpath != dir && (strings.HasPrefix(d.Name(), ".") || strings.HasPrefix(d.Name(), "_")) {
				return filepath.SkipDir
			}
			return nil
		}

		suffix := filepath.Ext(fpath)
		if !slices.Contains(options.Suffixes, suffix) {
			return nil
		}
		rel, err := filepath.Rel(dir, fpath)
		if err != nil {
			return err
		}
		docname := strings.TrimSuffix(filepath.ToSlash(rel), suffix)
		if excluded(docname, options.Exclude) {
			return nil
		}
		if store.Has(docname) {
			// first file in walk order wins
			warnings = append(warnings, doctree.Warning{
				Type:    doctree.WarningDuplicateDocument,
				Docname: docname,
				Message: fmt.Sprintf("multiple files found for document %q, ignoring %s", docname, fpath),
			})
			return nil
		}

		doc, docWarnings, err := readDocument(reader, fpath, docname, suffix)
		if err != nil {
			return err
		}
		warnings = append(warnings, docWarnings...)
		store.Add(doc)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("unable to load project: %w", err)
	}

	return store, warnings, nil
}

func readDocument(reader *mdreader.Reader, fpath, docname, suffix string) (Document, []doctree.Warning, error) {
	data, err := os.ReadFile(fpath)
	if err != nil {
		return Document{}, nil, fmt.Errorf("unable to read %q: %w", fpath, err)
	}

	switch suffix {
	case ".json":
		tree, err := doctree.Decode(data)
		if err != nil {
			return Document{}, nil, fmt.Errorf("%s: %w", fpath, err)
		}
		return Document{Name: docname, Path: fpath, Title: doctree.Title(tree), Tree: tree}, nil, nil
	default:
		res := reader.Read(data, docname)
		return Document{Name: docname, Path: fpath, Title: res.Title, Tree: res.Tree}, res.Warnings, nil
	}
}

func excluded(docname string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := path.Match(pattern, docname); err == nil && ok {
			return true
		}
	}
	return false
}
