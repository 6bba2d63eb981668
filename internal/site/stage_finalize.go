package site

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sitebuilder/internal/collection"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
	"git.home.luguber.info/inful/sitebuilder/internal/placeholder"
	"git.home.luguber.info/inful/sitebuilder/internal/templates"
)

// stageBarrier closes phase one. Every page has been written or ignored, so
// the collection membership is final from here on.
func stageBarrier(ctx context.Context, bs *BuildState) error {
	bs.Entries = bs.Accumulator.Freeze()
	observability.DebugContext(ctx, "Collection frozen", logfields.Count(len(bs.Entries)))
	return nil
}

func stageSequenceCollection(ctx context.Context, bs *BuildState) error {
	cfg := bs.Config.Collection
	bs.Sequence = collection.Sequence(bs.Entries, cfg.SortKey, cfg.SortReversed)
	bs.Recorder.SetCollectionSize(len(bs.Sequence))
	observability.InfoContext(ctx, "Collection sequenced",
		logfields.Count(len(bs.Sequence)), slog.String("sort_key", string(cfg.SortKey)))
	return nil
}

// stageRewriteNavigation fills the navigation tokens of every written
// collection page. Each rewrite touches only its own file.
func stageRewriteNavigation(ctx context.Context, bs *BuildState) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bs.Config.Build.Concurrency)
	for i := range bs.Sequence {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			e := bs.Sequence[i]
			return rewriteFile(e.OutputPath, func(text string) string {
				return placeholder.ApplyNav(text, bs.Navigator.For(bs.Sequence, i))
			})
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return NewCanceledStageError(StageRewriteNavigation, err)
		}
		return NewFatalStageError(StageRewriteNavigation, err)
	}
	return nil
}

func stageBuildTOC(_ context.Context, bs *BuildState) error {
	html, err := bs.TOC.Build(bs.Sequence)
	if err != nil {
		return NewFatalStageError(StageBuildTOC,
			ferrors.WrapError(err, ferrors.CategoryConvert, "failed to build table of contents").Fatal().Build())
	}
	bs.TOCHTML = html
	return nil
}

// insertedTOC is the TOC as placed on the home page; an empty collection
// contributes nothing.
func (bs *BuildState) insertedTOC() string {
	if len(bs.Sequence) == 0 {
		return ""
	}
	return bs.TOCHTML
}

func stageResolveHome(ctx context.Context, bs *BuildState) error {
	if bs.RootIndex != nil {
		if err := rewriteFile(bs.RootIndex.OutputPath, func(text string) string {
			return placeholder.InsertTOC(text, bs.insertedTOC())
		}); err != nil {
			return NewFatalStageError(StageResolveHome, err)
		}
		observability.InfoContext(ctx, "Home page updated", logfields.Output(bs.RootIndex.OutputPath))
		return nil
	}

	out := bs.HomeOutputPath()
	if err := writeFile(out, []byte(bs.SynthesizeHome())); err != nil {
		return NewFatalStageError(StageResolveHome,
			ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write home page").
				WithContext("path", out).Build())
	}
	bs.Report.HomeSynthesized = true
	bs.Report.Written++
	observability.InfoContext(ctx, "Home page synthesized", logfields.Output(out), logfields.Count(len(bs.Sequence)))
	return nil
}

// SynthesizeHome renders a home page from the collection template: the TOC as
// body and navigation wrapping around the collection.
func (bs *BuildState) SynthesizeHome() string {
	base := bs.Config.BaseURL()
	b := placeholder.Bindings{
		Title:          bs.Config.TOC.Title,
		SiteName:       bs.Config.Site.Name,
		DomainSiteName: bs.Config.Site.DomainSiteName,
		HomeURL:        base,
		DomainURL:      bs.Config.Site.Domain,
		SelfURL:        base,
	}
	text := placeholder.Substitute(bs.Templates.Collection(), b)
	text = placeholder.ApplyNav(text, bs.Navigator.Home(bs.Sequence))
	return templates.Fill(text, []byte(bs.insertedTOC()))
}

func rewriteFile(path string, edit func(string) string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read written page").
			WithContext("path", path).Build()
	}
	if err := os.WriteFile(path, []byte(edit(string(data))), 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to rewrite page").
			WithContext("path", path).Build()
	}
	return nil
}
