package config

import (
	"strings"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// Validate reports the first configuration violation as a classified config error.
func (c *Config) Validate() error {
	checks := []struct {
		ok      bool
		field   string
		message string
	}{
		{c.Site.Domain != "", "site.domain", "domain is required"},
		{strings.HasSuffix(c.Site.Domain, "/"), "site.domain", "domain must include the protocol and end in /"},
		{c.Site.BasePath == "" || strings.HasSuffix(c.Site.BasePath, "/"), "site.base_path", "base path must end in / when set"},
		{!strings.HasPrefix(c.Site.BasePath, "/"), "site.base_path", "base path is relative to the domain and must not start with /"},
		{c.Site.Language != "", "site.language", "language code is required"},
		{c.Content.Extension != "", "content.extension", "input extension is required"},
		{c.Content.Extension != "html", "content.extension", "input extension must differ from the html output extension"},
		{c.Content.MaxDepth >= 1, "content.max_depth", "max depth must be at least 1 (root only)"},
		{c.Content.Format != "", "content.format", "conversion format is required"},
		{c.TOC.JumpToID == "" || strings.HasPrefix(c.TOC.JumpToID, "#"), "toc.jump_to_id", "jump target must be empty or start with #"},
		{c.Build.OnConvertError == ConvertErrorAbort || c.Build.OnConvertError == ConvertErrorSkip, "build.on_convert_error", "must be abort or skip"},
		{c.Events.Retry.MaxRetries >= 0, "events.retry.max_retries", "max retries cannot be negative"},
		{validRetryMode(c.Events.Retry.Mode), "events.retry.mode", "must be fixed, linear or exponential"},
		{c.Templates.Head != "" && c.Templates.CollectionPre != "" && c.Templates.CollectionPost != "" &&
			c.Templates.StandalonePre != "" && c.Templates.StandalonePost != "", "templates", "all fragment names are required"},
	}
	for _, check := range checks {
		if !check.ok {
			return ferrors.ConfigError(check.message).WithContext("field", check.field).Build()
		}
	}
	return nil
}

func validRetryMode(mode string) bool {
	switch mode {
	case "", "fixed", "linear", "exponential":
		return true
	}
	return false
}
