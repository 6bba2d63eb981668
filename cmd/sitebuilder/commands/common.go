// Package commands implements the sitebuilder command line.
package commands

import (
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/eventstore"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/notify"
)

// LogLevelEnv overrides the log level unless -v is given.
const LogLevelEnv = "SITEBUILDER_LOG_LEVEL"

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"sitebuilder.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Render every page, sequence the collection and write the site"`
	Discover DiscoverCmd `cmd:"" help:"List sources and how they would be published, without writing"`
	Init     InitCmd     `cmd:"" help:"Write a starter configuration, fragments and first page"`
	Serve    ServeCmd    `cmd:"" help:"Serve the site locally and rebuild on change"`
	History  HistoryCmd  `cmd:"" help:"Show recent builds from the history database"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply(g *Global) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)
	g.Logger = logger
	return nil
}

func parseLogLevel(verbose bool) slog.Level {
	if verbose {
		return slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(LogLevelEnv))) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildEnv is the wiring shared by build and serve.
type buildEnv struct {
	service   *build.DefaultBuildService
	registry  *prom.Registry
	history   *eventstore.SQLiteStore
	publisher notify.Publisher
}

func newBuildEnv(cfg *config.Config) (*buildEnv, error) {
	env := &buildEnv{registry: prom.NewRegistry()}
	env.registry.MustRegister(promcollect.NewGoCollector(), promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}))
	env.service = build.NewBuildService().WithRecorder(metrics.NewPrometheusRecorder(env.registry))

	if cfg.History.Path != "" {
		store, err := eventstore.NewSQLiteStore(cfg.History.Path)
		if err != nil {
			return nil, err
		}
		env.history = store
		env.service.WithHistory(store)
	}

	pub, err := notify.New(&cfg.Events)
	if err != nil {
		env.Close()
		return nil, err
	}
	env.publisher = pub
	env.service.WithPublisher(pub)
	return env, nil
}

func (e *buildEnv) Close() {
	if e.publisher != nil {
		e.publisher.Close()
	}
	if e.history != nil {
		if err := e.history.Close(); err != nil {
			slog.Warn("Failed to close history database", slog.String("error", err.Error()))
		}
	}
}
