package manpage

import (
	"fmt"
	"strings"
)

// UnknownPolicy controls behavior for node types the translator does not
// know.
type UnknownPolicy string

const (
	UnknownError       UnknownPolicy = "error"
	UnknownSkip        UnknownPolicy = "skip"
	UnknownPlaceholder UnknownPolicy = "placeholder"
)

// Config holds the document information and rendering options of one
// manual page.
type Config struct {
	// Name is the page name, upper-cased in the .TH line.
	Name string `json:"name"`
	// Description follows the name in the NAME section.
	Description string   `json:"description,omitempty"`
	Section     int      `json:"section"`
	Authors     []string `json:"authors,omitempty"`
	Date        string   `json:"date,omitempty"`
	Version     string   `json:"version,omitempty"`
	// ManualGroup is the manual title printed in the page header.
	ManualGroup  string        `json:"manualGroup,omitempty"`
	Copyright    string        `json:"copyright,omitempty"`
	ShowURLs     bool          `json:"showUrls,omitempty"`
	UnknownNodes UnknownPolicy `json:"unknownNodes,omitempty"`
}

func (c Config) applyDefaults() Config {
	if c.Section == 0 {
		c.Section = 1
	}
	if c.UnknownNodes == "" {
		c.UnknownNodes = UnknownSkip
	}
	return c
}

// clone returns a copy of Config not sharing the authors slice.
func (c Config) clone() Config {
	cloned := c
	cloned.Authors = append([]string(nil), c.Authors...)
	return cloned
}

// Validate checks that config values are valid.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("manual page name must not be empty")
	}
	if c.Section < 1 || c.Section > 9 {
		return fmt.Errorf("section must be between 1 and 9, got %d", c.Section)
	}
	if c.UnknownNodes != UnknownError && c.UnknownNodes != UnknownSkip && c.UnknownNodes != UnknownPlaceholder {
		return fmt.Errorf("invalid unknownNodes policy %q", c.UnknownNodes)
	}
	return nil
}
