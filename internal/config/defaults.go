package config

import (
	"strings"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/normalization"
)

var (
	sortKeys = normalization.NewNormalizer(map[string]SortKey{
		"title": SortTitle,
		"date":  SortDate,
		"none":  SortNone,
	}, SortNone)
	convertPolicies = normalization.NewNormalizer(map[string]ConvertErrorPolicy{
		"abort": ConvertErrorAbort,
		"skip":  ConvertErrorSkip,
	}, "")
)

// Default returns a configuration with every field at its documented default.
// Load decodes the YAML file on top of it, so omitted keys keep these values.
func Default() *Config {
	return &Config{
		Site: SiteConfig{
			Name:     "My Site",
			Language: "en",
		},
		Content: ContentConfig{
			Root:       ".",
			Extension:  "md",
			Format:     "markdown",
			MaxDepth:   3,
			TriggerKey: "publish",
		},
		Templates: TemplatesConfig{
			Dir:            "cmn",
			Head:           "head.html",
			CollectionPre:  "cpre.html",
			CollectionPost: "cpost.html",
			StandalonePre:  "npre.html",
			StandalonePost: "npost.html",
		},
		Collection: CollectionConfig{
			SortKey:      SortDate,
			SortReversed: true,
		},
		TOC: TOCConfig{
			Title:            "Contents",
			Blurbs:           true,
			Class:            "toc",
			NoBlurbClass:     "noblurb",
			HasSubtitleClass: "has-subtitle",
		},
		Navigation: NavigationConfig{
			PrevText: "prev",
			HomeText: "TOC",
			NextText: "next",
		},
		Build: BuildConfig{
			Concurrency:    1,
			OnConvertError: ConvertErrorAbort,
		},
		Events: EventsConfig{
			Subject: "sitebuilder.builds",
			Retry: RetryConfig{
				Mode:       "linear",
				Initial:    250 * time.Millisecond,
				Max:        5 * time.Second,
				MaxRetries: 2,
			},
		},
		Serve: ServeConfig{
			Port:     1316,
			Debounce: 300 * time.Millisecond,
		},
	}
}

// DefaultApplier normalizes one configuration domain after decoding.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// ContentDefaultApplier handles content configuration normalization.
type ContentDefaultApplier struct{}

func (ContentDefaultApplier) Domain() string { return "content" }

func (ContentDefaultApplier) ApplyDefaults(cfg *Config) error {
	cfg.Content.Extension = trimExtension(cfg.Content.Extension)
	cfg.Content.Format = strings.ToLower(strings.TrimSpace(cfg.Content.Format))
	if cfg.Content.Root == "" {
		cfg.Content.Root = "."
	}
	if cfg.Content.TriggerKey == "" {
		cfg.Content.TriggerKey = "publish"
	}
	return nil
}

// CollectionDefaultApplier lowercases the sort key; unknown keys mean discovery order.
type CollectionDefaultApplier struct{}

func (CollectionDefaultApplier) Domain() string { return "collection" }

func (CollectionDefaultApplier) ApplyDefaults(cfg *Config) error {
	cfg.Collection.SortKey = sortKeys.Normalize(string(cfg.Collection.SortKey))
	return nil
}

// BuildDefaultApplier handles build configuration defaults.
type BuildDefaultApplier struct{}

func (BuildDefaultApplier) Domain() string { return "build" }

func (BuildDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Build.Concurrency <= 0 {
		cfg.Build.Concurrency = 1
	}
	if cfg.Build.OnConvertError == "" {
		cfg.Build.OnConvertError = ConvertErrorAbort
	}
	// Unknown policies are left as written so validation can name them.
	if policy, err := convertPolicies.Lookup(string(cfg.Build.OnConvertError)); err == nil {
		cfg.Build.OnConvertError = policy
	}
	return nil
}

// ServeDefaultApplier handles preview server defaults.
type ServeDefaultApplier struct{}

func (ServeDefaultApplier) Domain() string { return "serve" }

func (ServeDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Serve.Port <= 0 {
		cfg.Serve.Port = 1316
	}
	if cfg.Serve.Debounce <= 0 {
		cfg.Serve.Debounce = 300 * time.Millisecond
	}
	if cfg.Events.Subject == "" {
		cfg.Events.Subject = "sitebuilder.builds"
	}
	return nil
}

var defaultAppliers = []DefaultApplier{
	ContentDefaultApplier{},
	CollectionDefaultApplier{},
	BuildDefaultApplier{},
	ServeDefaultApplier{},
}

func applyDefaults(cfg *Config) error {
	for _, applier := range defaultAppliers {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}
