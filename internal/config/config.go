// Package config loads the site configuration: one immutable value built before a
// build starts and passed explicitly to every pipeline component.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// DefaultConfigFile is the configuration file name used by the CLI.
const DefaultConfigFile = "sitebuilder.yaml"

// Config represents the site configuration.
type Config struct {
	Site       SiteConfig       `yaml:"site"`
	Content    ContentConfig    `yaml:"content"`
	Templates  TemplatesConfig  `yaml:"templates"`
	Collection CollectionConfig `yaml:"collection"`
	TOC        TOCConfig        `yaml:"toc"`
	Navigation NavigationConfig `yaml:"navigation"`
	Output     OutputConfig     `yaml:"output"`
	Build      BuildConfig      `yaml:"build"`
	History    HistoryConfig    `yaml:"history"`
	Events     EventsConfig     `yaml:"events"`
	Serve      ServeConfig      `yaml:"serve"`
}

// SiteConfig identifies the site and where it lives on the web.
type SiteConfig struct {
	Name           string `yaml:"name"`
	Language       string `yaml:"language"`
	DomainSiteName string `yaml:"domain_site_name"`
	Domain         string `yaml:"domain"`    // protocol + host, ends in /
	BasePath       string `yaml:"base_path"` // path from domain to the site root, ends in / unless empty
}

// ContentConfig describes the input tree.
type ContentConfig struct {
	Root       string   `yaml:"root"`
	Extension  string   `yaml:"extension"`
	Format     string   `yaml:"format"`
	Options    []string `yaml:"options,omitempty"`
	MaxDepth   int      `yaml:"max_depth"`
	TriggerKey string   `yaml:"trigger_key"`
}

// TemplatesConfig names the shared head/pre/post fragments, relative to Dir.
type TemplatesConfig struct {
	Dir            string `yaml:"dir"`
	Head           string `yaml:"head"`
	CollectionPre  string `yaml:"collection_pre"`
	CollectionPost string `yaml:"collection_post"`
	StandalonePre  string `yaml:"standalone_pre"`
	StandalonePost string `yaml:"standalone_post"`
}

// SortKey selects the collection ordering.
type SortKey string

const (
	SortTitle SortKey = "title"
	SortDate  SortKey = "date"
	SortNone  SortKey = "none"
)

// CollectionConfig controls collection ordering.
type CollectionConfig struct {
	SortKey      SortKey `yaml:"sort_key"`
	SortReversed bool    `yaml:"sort_reversed"`
}

// TOCConfig controls the table of contents.
type TOCConfig struct {
	Title            string `yaml:"title"`
	Subtitle         string `yaml:"subtitle,omitempty"`
	YearHeadings     bool   `yaml:"year_headings"`
	Blurbs           bool   `yaml:"blurbs"`
	Class            string `yaml:"class"`
	NoBlurbClass     string `yaml:"noblurb_class"`
	HasSubtitleClass string `yaml:"has_subtitle_class"`
	JumpToID         string `yaml:"jump_to_id,omitempty"` // '' or '#anchor'
}

// NavigationConfig holds the prev/home/next anchor labels.
type NavigationConfig struct {
	PrevText string `yaml:"prev_text"`
	HomeText string `yaml:"home_text"`
	NextText string `yaml:"next_text"`
}

// OutputConfig represents output configuration.
type OutputConfig struct {
	// Directory mirrors the content tree somewhere else; empty writes next to the sources.
	Directory string `yaml:"directory,omitempty"`
}

// ConvertErrorPolicy decides what a body conversion failure does to the build.
type ConvertErrorPolicy string

const (
	ConvertErrorAbort ConvertErrorPolicy = "abort"
	ConvertErrorSkip  ConvertErrorPolicy = "skip"
)

// BuildConfig tunes pipeline execution.
type BuildConfig struct {
	Concurrency    int                `yaml:"concurrency"`
	OnConvertError ConvertErrorPolicy `yaml:"on_convert_error"`
}

// HistoryConfig enables the SQLite build history.
type HistoryConfig struct {
	Path string `yaml:"path,omitempty"`
}

// EventsConfig enables NATS build event publishing.
type EventsConfig struct {
	NATSURL string      `yaml:"nats_url,omitempty"`
	Subject string      `yaml:"subject"`
	Retry   RetryConfig `yaml:"retry"`
}

// RetryConfig tunes publish retries. Mode is fixed, linear or exponential.
type RetryConfig struct {
	Mode       string        `yaml:"mode"`
	Initial    time.Duration `yaml:"initial"`
	Max        time.Duration `yaml:"max"`
	MaxRetries int           `yaml:"max_retries"`
}

// ServeConfig configures the local preview server.
type ServeConfig struct {
	Port            int           `yaml:"port"`
	RebuildInterval time.Duration `yaml:"rebuild_interval,omitempty"`
	Debounce        time.Duration `yaml:"debounce"`
}

// BaseURL is the web address of the site root: domain plus base path.
func (c *Config) BaseURL() string {
	return c.Site.Domain + c.Site.BasePath
}

// TemplatePath resolves a fragment file name against the content root.
func (c *Config) TemplatePath(name string) string {
	return filepath.Join(c.Content.Root, c.Templates.Dir, name)
}

// OutputRoot is the directory generated pages are written under.
func (c *Config) OutputRoot() string {
	if c.Output.Directory == "" {
		return c.Content.Root
	}
	return c.Output.Directory
}

// Load loads configuration from the specified file. Relative paths inside the file
// resolve against the file's directory.
func Load(configPath string) (*Config, error) {
	if err := loadEnvFile(filepath.Dir(configPath)); err != nil {
		fmt.Fprintf(os.Stderr, "Note: .env file not found or couldn't be loaded: %v\n", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ferrors.ConfigError("configuration file not found").WithContext("path", configPath).Build()
		}
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read config file").Fatal().WithContext("path", configPath).Build()
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		return nil, err
	}
	cfg.resolvePaths(filepath.Dir(configPath))
	return cfg, nil
}

// Parse decodes YAML over the defaults, normalizes and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to unmarshal config").Fatal().Build()
	}
	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolvePaths makes relative paths absolute against base, the config file's directory.
func (c *Config) resolvePaths(base string) {
	if a, err := filepath.Abs(base); err == nil {
		base = a
	}
	abs := func(p string) string {
		if p == "" || p == sqliteMemoryPath || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.Content.Root = abs(c.Content.Root)
	c.Output.Directory = abs(c.Output.Directory)
	c.History.Path = abs(c.History.Path)
}

// sqliteMemoryPath selects an in-memory history store and is not a file path.
const sqliteMemoryPath = ":memory:"

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).Build()
	}

	example := Default()
	example.Site = SiteConfig{
		Name:           "Field Notes",
		Language:       "en",
		DomainSiteName: "Example Person",
		Domain:         "https://example.com/",
		BasePath:       "notes/",
	}
	example.TOC.Title = "All Field Notes"
	example.History.Path = ".sitebuilder/history.db"

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write config file").Fatal().
			WithContext("path", configPath).Build()
	}
	return nil
}

func trimExtension(ext string) string {
	return strings.TrimPrefix(strings.TrimSpace(ext), ".")
}
