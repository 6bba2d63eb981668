package commands

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/preview"
)

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	Port            int           `short:"p" help:"Port to listen on (overrides serve.port)"`
	RebuildInterval time.Duration `name:"rebuild-interval" help:"Also rebuild on this interval, e.g. 10m (overrides serve.rebuild_interval)"`
	NoMetrics       bool          `name:"no-metrics" help:"Do not expose /metrics"`
}

func (s *ServeCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if s.Port > 0 {
		cfg.Serve.Port = s.Port
	}
	if s.RebuildInterval > 0 {
		cfg.Serve.RebuildInterval = s.RebuildInterval
	}

	env, err := newBuildEnv(cfg)
	if err != nil {
		return err
	}
	defer env.Close()

	opts := preview.Options{ConfigPath: root.Config}
	if !s.NoMetrics {
		opts.Registry = env.registry
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return preview.New(cfg, env.service, opts).Run(ctx)
}
