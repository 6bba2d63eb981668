package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

func TestParseLogLevel(t *testing.T) {
	t.Setenv(LogLevelEnv, "")
	require.Equal(t, slog.LevelInfo, parseLogLevel(false))
	require.Equal(t, slog.LevelDebug, parseLogLevel(true))

	t.Setenv(LogLevelEnv, "WARN")
	require.Equal(t, slog.LevelWarn, parseLogLevel(false))
	require.Equal(t, slog.LevelDebug, parseLogLevel(true))
}

func TestCLIParsesCommands(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Bind(&Global{}), kong.Vars{"version": "test"}, kong.Exit(func(int) {}))
	require.NoError(t, err)

	ctx, err := parser.Parse([]string{"-c", "site.yaml", "build", "--report", "out", "-j", "4"})
	require.NoError(t, err)
	require.Equal(t, "build", ctx.Command())
	require.Equal(t, 4, cli.Build.Concurrency)
	require.True(t, filepath.IsAbs(cli.Config))
	require.Equal(t, "site.yaml", filepath.Base(cli.Config))

	ctx, err = parser.Parse([]string{"serve", "--rebuild-interval", "10m", "-p", "8080"})
	require.NoError(t, err)
	require.Equal(t, "serve", ctx.Command())
	require.Equal(t, 10*time.Minute, cli.Serve.RebuildInterval)
	require.Equal(t, 8080, cli.Serve.Port)

	ctx, err = parser.Parse([]string{"history"})
	require.NoError(t, err)
	require.Equal(t, 10, cli.History.Limit)
}

func TestInitDiscoverBuildHistory(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, config.DefaultConfigFile)
	today := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

	var out bytes.Buffer
	require.NoError(t, RunInit(&out, configPath, false, today))
	require.Contains(t, out.String(), "initialized successfully")
	require.FileExists(t, configPath)
	require.FileExists(t, filepath.Join(dir, "cmn", "head.html"))
	require.FileExists(t, filepath.Join(dir, StarterPage))

	err := RunInit(&out, configPath, false, today)
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))

	cfg, err := config.Load(configPath)
	require.NoError(t, err)

	out.Reset()
	require.NoError(t, RunDiscover(context.Background(), &out, cfg, false, true))
	var rows []PlannedPage
	require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
	require.Len(t, rows, 1)
	require.Equal(t, StarterPage, rows[0].Source)
	require.Equal(t, "collection", rows[0].Kind)
	require.Equal(t, "2024-05-06", rows[0].Date)
	require.Equal(t, "https://example.com/notes/hello.html", rows[0].URL)

	metricsFile := filepath.Join(dir, "metrics.prom")
	res, err := RunBuild(t.Context(), cfg, build.BuildRequest{ReportDir: filepath.Join(dir, "report")}, metricsFile)
	require.NoError(t, err)
	require.Equal(t, build.BuildStatusSuccess, res.Status)
	require.FileExists(t, filepath.Join(dir, "hello.html"))
	require.FileExists(t, filepath.Join(dir, "index.html"))
	require.FileExists(t, filepath.Join(dir, "report", "build-report.json"))
	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	require.Contains(t, string(prom), "sitebuilder_build_outcomes_total")

	home, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	require.Contains(t, string(home), "All Field Notes")

	out.Reset()
	require.NoError(t, RunHistory(t.Context(), &out, cfg, 5, false))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[1], res.BuildID)
	require.Contains(t, lines[1], "success")
}

func TestRunHistory_Disabled(t *testing.T) {
	cfg := config.Default()
	err := RunHistory(t.Context(), &bytes.Buffer{}, cfg, 5, false)
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}
