package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output      string `short:"o" help:"Write pages under this directory instead of next to the sources" type:"path"`
	Concurrency int    `short:"j" help:"Pages rendered in parallel (overrides build.concurrency)"`
	Report      string `name:"report" help:"Directory to write build-report.json and build-report.txt into" type:"path"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics in text format to this file after the build" type:"path"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	if b.Concurrency > 0 {
		cfg.Build.Concurrency = b.Concurrency
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	res, err := RunBuild(ctx, cfg, build.BuildRequest{ConfigPath: root.Config, ReportDir: b.Report}, b.MetricsFile)
	if res != nil && res.Report != nil {
		fmt.Println(res.Report.Summary())
	}
	return err
}

// RunBuild executes one build with history, events and metrics wired from cfg.
func RunBuild(ctx context.Context, cfg *config.Config, req build.BuildRequest, metricsFile string) (*build.BuildResult, error) {
	env, err := newBuildEnv(cfg)
	if err != nil {
		return nil, err
	}
	defer env.Close()

	req.Config = cfg
	req.Trigger = build.TriggerCLI
	res, runErr := env.service.Run(ctx, req)

	if metricsFile != "" {
		if err := prom.WriteToTextfile(metricsFile, env.registry); err != nil {
			wrapped := ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write metrics file").
				WithContext("path", metricsFile).Build()
			if runErr == nil {
				return res, wrapped
			}
		}
	}
	return res, runErr
}
