package page

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

func testResolver(t *testing.T) (*Resolver, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "field-notes")
	cfg := config.Default()
	cfg.Site.Domain = "https://example.com/"
	cfg.Site.BasePath = "notes/"
	cfg.Content.Root = root
	return NewResolver(cfg), root
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		tags map[string]any
		want Kind
	}{
		{"absent", map[string]any{"title": "x"}, KindIgnored},
		{"collection", map[string]any{"publish": "collection"}, KindCollection},
		{"other string", map[string]any{"publish": "page"}, KindStandalone},
		{"empty value", map[string]any{"publish": nil}, KindStandalone},
		{"empty string", map[string]any{"publish": ""}, KindStandalone},
		{"boolean", map[string]any{"publish": true}, KindStandalone},
		{"case sensitive", map[string]any{"publish": "Collection"}, KindStandalone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Classify(tt.tags, "publish"))
		})
	}
}

func TestDefaults(t *testing.T) {
	r, _ := testResolver(t)

	tests := []struct {
		rel   string
		title string
		url   string
	}{
		{"my-first-post.md", "My First Post", "https://example.com/notes/my-first-post.html"},
		{"blog/deep-dive.md", "Deep Dive", "https://example.com/notes/blog/deep-dive.html"},
		{"blog/index.md", "Blog", "https://example.com/notes/blog/"},
		{"index.md", "Field Notes", "https://example.com/notes/"},
		{"md-tricks.md", "Md Tricks", "https://example.com/notes/md-tricks.html"},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			m := r.Defaults(tt.rel)
			require.Equal(t, tt.title, m.Title)
			require.Equal(t, tt.url, m.URL)
			require.Equal(t, SentinelDate, m.Date)
			require.Empty(t, m.Blurb)
			require.False(t, m.Dated())
		})
	}
}

func TestDefaults_RelativeRootIndexTitle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "garden-log")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	t.Chdir(dir)

	cfg := config.Default()
	cfg.Site.Domain = "https://example.com/"
	cfg.Content.Root = "."
	require.Equal(t, "Garden Log", NewResolver(cfg).Defaults("index.md").Title)
}

func TestDefaults_IndexURLEndsWithSlash(t *testing.T) {
	r, _ := testResolver(t)
	require.True(t, strings.HasSuffix(r.Defaults("a/b/index.md").URL, "/"))
	require.True(t, strings.HasSuffix(r.Defaults("a/b/page.md").URL, ".html"))
}

func TestResolve_TruthyMerge(t *testing.T) {
	r, _ := testResolver(t)

	m, warnings := r.Resolve("post.md", map[string]any{
		"title": "Custom",
		"blurb": "Short summary",
		"date":  "2020-01-01",
		"url":   "https://elsewhere.example/",
		"extra": "ignored",
	})
	require.Empty(t, warnings)
	require.Equal(t, "Custom", m.Title)
	require.Equal(t, "Short summary", m.Blurb)
	require.Equal(t, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), m.Date)
	require.Equal(t, "https://example.com/notes/post.html", m.URL)
	require.Equal(t, "2020", m.YearText())
	require.Equal(t, "2020-01-01", m.DateText())

	m, _ = r.Resolve("post.md", map[string]any{"title": "", "blurb": 0, "date": false})
	require.Equal(t, "Post", m.Title)
	require.Empty(t, m.Blurb)
	require.Equal(t, SentinelDate, m.Date)
	require.Equal(t, "1", m.YearText())
	require.Equal(t, "0001-01-01", m.DateText())
}

func TestResolve_Dates(t *testing.T) {
	r, _ := testResolver(t)

	m, _ := r.Resolve("p.md", map[string]any{"date": time.Date(2019, 6, 1, 13, 30, 0, 0, time.UTC)})
	require.Equal(t, "2019-06-01", m.DateText())

	m, _ = r.Resolve("p.md", map[string]any{"date": "2021-03-01T08:00:00Z"})
	require.Equal(t, "2021-03-01", m.DateText())

	m, warnings := r.Resolve("p.md", map[string]any{"date": "last tuesday"})
	require.Len(t, warnings, 1)
	require.Equal(t, SentinelDate, m.Date)
}

func TestResolver_New(t *testing.T) {
	r, root := testResolver(t)

	p, err := r.New(filepath.Join(root, "blog", "post.md"), map[string]any{"publish": "collection"})
	require.NoError(t, err)
	require.Equal(t, "blog/post.md", p.RelPath)
	require.Equal(t, filepath.Join(root, "blog", "post.html"), p.OutputPath)
	require.Equal(t, KindCollection, p.Kind)
	require.False(t, p.IsRootIndex())

	idx, err := r.New(filepath.Join(root, "index.md"), map[string]any{"publish": "page"})
	require.NoError(t, err)
	require.True(t, idx.IsRootIndex())
	require.Equal(t, filepath.Join(root, "index.html"), idx.OutputPath)

	_, err = r.New(filepath.Join(filepath.Dir(root), "outside.md"), nil)
	require.Error(t, err)
}

func TestResolver_OutputDirectory(t *testing.T) {
	out := t.TempDir()
	cfg := config.Default()
	cfg.Site.Domain = "https://example.com/"
	cfg.Content.Root = t.TempDir()
	cfg.Output.Directory = out

	p, err := NewResolver(cfg).New(filepath.Join(cfg.Content.Root, "a", "b.md"), nil)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(out, "a", "b.html"), p.OutputPath)
	require.Equal(t, KindIgnored, p.Kind)
}
