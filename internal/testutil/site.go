package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

// Minimal fragments exercising every placeholder family.
const (
	Head           = `<head><title>TITLE_TEXT_PH</title><link rel="canonical" href="SELF_URL_PH"></head>`
	CollectionPre  = `<nav>PREV_LINK_PH|HOME_LINK_PH|NEXT_LINK_PH</nav><p>DATE_TEXT_PH</p>`
	CollectionPost = `<footer><a href="HOME_URL_PH">SITENAME_TEXT_PH</a> YEAR_TEXT_PH</footer>`
	StandalonePre  = `<header>SITENAME_TEXT_PH</header>`
	StandalonePost = `<footer><a href="DOMAIN_URL_PH">NAME_DOMAIN_TEXT_PH</a></footer>`
)

// SiteBuilder provides a fluent interface for laying out a content tree.
type SiteBuilder struct {
	t     *testing.T
	cfg   *config.Config
	files map[string]string
}

// NewSite starts a site rooted in a fresh temp dir with the default fragments.
func NewSite(t *testing.T) *SiteBuilder {
	t.Helper()
	cfg := config.Default()
	cfg.Site.Name = "Notes"
	cfg.Site.DomainSiteName = "Example Person"
	cfg.Site.Domain = "https://example.com/"
	cfg.Content.Root = t.TempDir()

	sb := &SiteBuilder{t: t, cfg: cfg, files: map[string]string{}}
	frag := cfg.Templates
	sb.files[filepath.Join(frag.Dir, frag.Head)] = Head
	sb.files[filepath.Join(frag.Dir, frag.CollectionPre)] = CollectionPre
	sb.files[filepath.Join(frag.Dir, frag.CollectionPost)] = CollectionPost
	sb.files[filepath.Join(frag.Dir, frag.StandalonePre)] = StandalonePre
	sb.files[filepath.Join(frag.Dir, frag.StandalonePost)] = StandalonePost
	return sb
}

// WithFile adds a file at a slash separated path under the content root.
func (sb *SiteBuilder) WithFile(rel, body string) *SiteBuilder {
	sb.files[filepath.FromSlash(rel)] = body
	return sb
}

// WithPost adds a dated collection page.
func (sb *SiteBuilder) WithPost(rel, title, date string) *SiteBuilder {
	return sb.WithFile(rel, "---\n"+sb.cfg.Content.TriggerKey+": collection\ntitle: "+title+"\ndate: "+date+"\n---\n"+title+" body.\n")
}

// WithPage adds a standalone page.
func (sb *SiteBuilder) WithPage(rel, title string) *SiteBuilder {
	return sb.WithFile(rel, "---\n"+sb.cfg.Content.TriggerKey+": page\ntitle: "+title+"\n---\n"+title+" body.\n")
}

// WithoutFile drops a file added earlier, such as a default fragment.
func (sb *SiteBuilder) WithoutFile(rel string) *SiteBuilder {
	delete(sb.files, filepath.FromSlash(rel))
	return sb
}

// WithOutputDir writes pages under a separate temp dir.
func (sb *SiteBuilder) WithOutputDir() *SiteBuilder {
	sb.cfg.Output.Directory = sb.t.TempDir()
	return sb
}

// Configure applies fn to the configuration before the tree is written.
func (sb *SiteBuilder) Configure(fn func(*config.Config)) *SiteBuilder {
	fn(sb.cfg)
	return sb
}

// Build writes every file and returns the configuration.
func (sb *SiteBuilder) Build() *config.Config {
	sb.t.Helper()
	for rel, body := range sb.files {
		p := filepath.Join(sb.cfg.Content.Root, rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			sb.t.Fatalf("create %s: %v", filepath.Dir(p), err)
		}
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			sb.t.Fatalf("write %s: %v", p, err)
		}
	}
	return sb.cfg
}
