package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultConfig []byte

type (
	ProjectConfig struct {
		Name      string `yaml:"name"`
		Release   string `yaml:"release"`
		Version   string `yaml:"version"`
		Author    string `yaml:"author"`
		Copyright string `yaml:"copyright"`
		RootDoc   string `yaml:"root_doc"`
		Today     string `yaml:"today"`
		TodayFmt  string `yaml:"today_fmt"`
	}

	SourceConfig struct {
		Suffixes []string `yaml:"suffixes"`
		Exclude  []string `yaml:"exclude"`
	}

	ManConfig struct {
		// Pages is nil when not configured, in which case DefaultManPages
		// applies. An explicit empty list disables output.
		Pages                  []ManPage `yaml:"pages,omitempty"`
		ShowURLs               bool      `yaml:"show_urls"`
		MakeSectionDirectory   bool      `yaml:"make_section_directory"`
		TransliterateFilenames bool      `yaml:"transliterate_filenames"`
	}

	DiagnosticsConfig struct {
		MissingDocuments string `yaml:"missing_documents"`
		Nitpicky         bool   `yaml:"nitpicky"`
		UnknownNodes     string `yaml:"unknown_nodes"`
	}

	Config struct {
		Version     int               `yaml:"version"`
		Project     ProjectConfig     `yaml:"project"`
		Source      SourceConfig      `yaml:"source"`
		Man         ManConfig         `yaml:"man"`
		Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
		Logging     LoggingConfig     `yaml:"logging"`
	}
)

// MarshalYAML keeps an explicit empty page list, which omitempty would
// drop and turn back into the derived default page on the next load.
func (m ManConfig) MarshalYAML() (any, error) {
	type plain ManConfig

	var node yaml.Node
	if err := node.Encode(plain(m)); err != nil {
		return nil, err
	}
	if m.Pages != nil && len(m.Pages) == 0 {
		node.Content = append([]*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: "pages"},
			{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle},
		}, node.Content...)
	}
	return &node, nil
}

func unmarshalConfig(data []byte, cfg *Config) (*Config, error) {
	// Only fields defined above are accepted.
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path
// on top of the embedded defaults and validates the result. An empty path
// yields the defaults.
func LoadConfiguration(path string) (*Config, error) {
	cfg, err := unmarshalConfig(defaultConfig, &Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to process default configuration: %w", err)
	}

	if len(path) > 0 {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if cfg, err = unmarshalConfig(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to process configuration file: %w", err)
		}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Prepare returns the embedded default configuration.
func Prepare() []byte {
	return slices.Clone(defaultConfig)
}

// Dump serializes cfg as YAML.
func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}

func (c *Config) applyDefaults() {
	if c.Project.RootDoc == "" {
		c.Project.RootDoc = "index"
	}
	if c.Project.TodayFmt == "" {
		c.Project.TodayFmt = "Jan 02, 2006"
	}
	if c.Project.Version == "" {
		c.Project.Version = c.Project.Release
	}
	if len(c.Source.Suffixes) == 0 {
		c.Source.Suffixes = []string{".md", ".json"}
	}
	if c.Diagnostics.MissingDocuments == "" {
		c.Diagnostics.MissingDocuments = "warn"
	}
	if c.Diagnostics.UnknownNodes == "" {
		c.Diagnostics.UnknownNodes = "skip"
	}
	if c.Logging.ConsoleLogger.Level == "" {
		c.Logging.ConsoleLogger.Level = "normal"
	}
	if c.Logging.FileLogger.Level == "" {
		c.Logging.FileLogger.Level = "none"
	}
}

// Validate checks that config values are valid.
func (c *Config) Validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported configuration version %d", c.Version)
	}
	if strings.TrimSpace(c.Project.RootDoc) == "" {
		return fmt.Errorf("project.root_doc must not be empty")
	}
	for _, suffix := range c.Source.Suffixes {
		if suffix != ".md" && suffix != ".markdown" && suffix != ".json" {
			return fmt.Errorf("unsupported source suffix %q", suffix)
		}
	}
	if c.Diagnostics.MissingDocuments != "warn" && c.Diagnostics.MissingDocuments != "silent" {
		return fmt.Errorf("invalid diagnostics.missing_documents %q", c.Diagnostics.MissingDocuments)
	}
	switch c.Diagnostics.UnknownNodes {
	case "error", "skip", "placeholder":
	default:
		return fmt.Errorf("invalid diagnostics.unknown_nodes %q", c.Diagnostics.UnknownNodes)
	}
	for i, page := range c.Man.Pages {
		if err := page.Validate(); err != nil {
			return fmt.Errorf("man.pages[%d]: %w", i, err)
		}
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	return nil
}

// ManPages returns the configured entries or, when none are configured,
// the entry derived from the project.
func (c *Config) ManPages() []ManPage {
	if c.Man.Pages == nil {
		return DefaultManPages(c.Project, c.Man.TransliterateFilenames)
	}
	return c.Man.Pages
}
