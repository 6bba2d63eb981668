package content

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
)

func writeTree(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(f), 0o600))
	}
}

func relPaths(files []SourceFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.RelPath
	}
	return out
}

func newDiscovery(root string, depth int) *Discovery {
	cfg := config.Default()
	cfg.Content.Root = root
	cfg.Content.MaxDepth = depth
	return NewDiscovery(cfg)
}

func TestDiscover_OrderAndFilter(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root,
		"index.md",
		"b.md",
		"a.md",
		"notes.txt",
		".hidden.md",
		".git/config.md",
		"blog/post.md",
		"blog/2021/deep.md",
		"about/index.md",
	)

	files, err := newDiscovery(root, 3).Discover(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{
		"a.md", "b.md", "index.md",
		"about/index.md",
		"blog/post.md",
		"blog/2021/deep.md",
	}, relPaths(files))
	for i, f := range files {
		require.Equal(t, i, f.Order)
		require.True(t, filepath.IsAbs(f.Path))
	}
}

func TestDiscover_DepthLimit(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "top.md", "one/mid.md", "one/two/deep.md")

	files, err := newDiscovery(root, 1).Discover(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"top.md"}, relPaths(files))

	files, err = newDiscovery(root, 2).Discover(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"top.md", "one/mid.md"}, relPaths(files))
}

func TestDiscover_MissingRoot(t *testing.T) {
	_, err := newDiscovery(filepath.Join(t.TempDir(), "nope"), 3).Discover(context.Background())
	require.ErrorIs(t, err, ErrRootNotFound)
}

func TestLoadContent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.md")

	f := SourceFile{Path: filepath.Join(root, "a.md")}
	require.NoError(t, f.LoadContent())
	require.Equal(t, "a.md", string(f.Content))

	missing := SourceFile{Path: filepath.Join(root, "gone.md")}
	require.ErrorIs(t, missing.LoadContent(), ErrFileReadFailed)
}

func TestDiscover_LogsCarryBuildContext(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.md")

	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := observability.WithStage(observability.WithBuildID(context.Background(), "b-42"), "discover")
	_, err := newDiscovery(root, 1).Discover(ctx)
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "Discovered file")
	require.Contains(t, out, "b-42")
	require.Contains(t, out, "stage=discover")
	require.NotContains(t, out, "Source files discovered")
}

func TestDiscover_Canceled(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, "a.md")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newDiscovery(root, 1).Discover(ctx)
	require.ErrorIs(t, err, context.Canceled)
}
