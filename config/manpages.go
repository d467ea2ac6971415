package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gosimple/slug"
	yaml "gopkg.in/yaml.v3"
)

// ManPage is one manual page to produce.
type ManPage struct {
	Docname     string  `yaml:"docname"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Authors     Authors `yaml:"authors"`
	Section     int     `yaml:"section"`
}

// UnmarshalYAML accepts a mapping or a 5-element sequence
// [docname, name, description, authors, section].
func (p *ManPage) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		if len(value.Content) != 5 {
			return fmt.Errorf("line %d: man page entry needs 5 elements, got %d", value.Line, len(value.Content))
		}
		var page ManPage
		targets := []any{&page.Docname, &page.Name, &page.Description, &page.Authors, &page.Section}
		for i, target := range targets {
			if err := value.Content[i].Decode(target); err != nil {
				return fmt.Errorf("line %d: man page entry element %d: %w", value.Line, i, err)
			}
		}
		*p = page
		return nil

	case yaml.MappingNode:
		type plain ManPage
		var page plain
		if err := value.Decode(&page); err != nil {
			return err
		}
		*p = ManPage(page)
		return nil

	default:
		return fmt.Errorf("line %d: man page entry must be a list or a mapping", value.Line)
	}
}

// Validate checks a single entry.
func (p ManPage) Validate() error {
	if strings.TrimSpace(p.Docname) == "" {
		return fmt.Errorf("docname must not be empty")
	}
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name must not be empty")
	}
	if strings.ContainsAny(p.Name, `/\`) {
		return fmt.Errorf("name %q must not contain path separators", p.Name)
	}
	if p.Section < 1 || p.Section > 9 {
		return fmt.Errorf("section must be between 1 and 9, got %d", p.Section)
	}
	return nil
}

// Authors is a list of author names. In configuration it may be written as
// a single string.
type Authors []string

// UnmarshalYAML applies NormalizeAuthors to the decoded value.
func (a *Authors) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	authors, err := NormalizeAuthors(raw)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*a = authors
	return nil
}

// NormalizeAuthors turns a string into a one-element list, or an empty list
// when the string is empty. Lists are returned unchanged.
func NormalizeAuthors(v any) ([]string, error) {
	switch typed := v.(type) {
	case nil:
		return []string{}, nil
	case string:
		if typed == "" {
			return []string{}, nil
		}
		return []string{typed}, nil
	case []string:
		return typed, nil
	case Authors:
		return []string(typed), nil
	case []any:
		authors := make([]string, 0, len(typed))
		for _, item := range typed {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("author must be a string, got %T", item)
			}
			authors = append(authors, s)
		}
		return authors, nil
	default:
		return nil, fmt.Errorf("authors must be a string or a list of strings, got %T", v)
	}
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// MakeFilename derives a file name from the project name: a trailing
// " Documentation" is dropped, the name is optionally transliterated,
// characters outside [A-Za-z0-9_-] are removed and the result lower-cased.
func MakeFilename(project string, transliterate bool) string {
	name := strings.TrimSuffix(project, " Documentation")
	if transliterate {
		name = slug.Make(name)
	}
	name = strings.ToLower(unsafeFilenameChars.ReplaceAllString(name, ""))
	if name == "" {
		return "manual"
	}
	return name
}

// DefaultManPages derives the single entry used when none is configured.
func DefaultManPages(project ProjectConfig, transliterate bool) []ManPage {
	authors, _ := NormalizeAuthors(project.Author)
	return []ManPage{{
		Docname:     project.RootDoc,
		Name:        MakeFilename(project.Name, transliterate),
		Description: fmt.Sprintf("%s %s", project.Name, project.Release),
		Authors:     authors,
		Section:     1,
	}}
}
