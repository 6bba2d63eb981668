package site

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
	"git.home.luguber.info/inful/sitebuilder/internal/page"
)

// Generator runs the page pipeline for one site configuration.
type Generator struct {
	cfg      *config.Config
	recorder metrics.Recorder
	stages   []StageDef
}

// NewGenerator creates a generator running the default pipeline.
func NewGenerator(cfg *config.Config) *Generator {
	return &Generator{cfg: cfg, recorder: metrics.NoopRecorder{}, stages: DefaultPipeline()}
}

// WithRecorder sets the metrics recorder.
func (g *Generator) WithRecorder(r metrics.Recorder) *Generator {
	if r != nil {
		g.recorder = r
	}
	return g
}

// Generate builds the whole site. The returned report is always non-nil once
// the build state could be wired, and is finished before return.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	report := NewReport(observability.GetContext(ctx).BuildID)
	bs, err := NewBuildState(g.cfg, g.recorder, report)
	if err != nil {
		report.AddIssue(IssueGenericStageError, "", SeverityError, err.Error(), err)
		report.Finish()
		return report, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid conversion settings").
			WithContext("format", g.cfg.Content.Format).Build()
	}

	observability.InfoContext(ctx, "Build started",
		logfields.Path(g.cfg.Content.Root), logfields.Output(g.cfg.OutputRoot()))

	err = RunStages(ctx, bs, g.stages)
	report.Finish()
	if err != nil {
		return report, err
	}
	observability.InfoContext(ctx, "Build finished",
		logfields.Pages(report.Written), logfields.Elapsed(report.Duration()), slog.String("outcome", string(report.Outcome)))
	return report, nil
}

// Plan discovers and classifies every source without converting or writing
// anything. Ignored sources are included.
func Plan(ctx context.Context, cfg *config.Config) ([]*page.Page, error) {
	files, err := content.NewDiscovery(cfg).Discover(ctx)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "content discovery failed").Build()
	}
	resolver := page.NewResolver(cfg)
	pages := make([]*page.Page, 0, len(files))
	for i := range files {
		c, err := classify(resolver, &files[i])
		if err != nil {
			return nil, err
		}
		pages = append(pages, c.page)
	}
	return pages, nil
}
