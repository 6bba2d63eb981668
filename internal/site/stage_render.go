package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/sitebuilder/internal/collection"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatter"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatterops"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
	"git.home.luguber.info/inful/sitebuilder/internal/page"
	"git.home.luguber.info/inful/sitebuilder/internal/placeholder"
	"git.home.luguber.info/inful/sitebuilder/internal/templates"
)

func stageLoadTemplates(_ context.Context, bs *BuildState) error {
	set, err := templates.Load(bs.Config)
	if err != nil {
		return NewFatalStageError(StageLoadTemplates,
			ferrors.WrapError(err, ferrors.CategoryTemplate, "failed to load template fragments").Fatal().Build())
	}
	bs.Templates = set
	return nil
}

func stageDiscover(ctx context.Context, bs *BuildState) error {
	files, err := content.NewDiscovery(bs.Config).Discover(ctx)
	if err != nil {
		return NewFatalStageError(StageDiscover,
			ferrors.WrapError(err, ferrors.CategoryFileSystem, "content discovery failed").Fatal().
				WithContext("root", bs.Config.Content.Root).Build())
	}
	bs.Sources = files
	bs.Report.Files = len(files)
	observability.InfoContext(ctx, "Discovered source files", logfields.Count(len(files)))
	return nil
}

// classified is a source file after frontmatter parsing and metadata resolution.
type classified struct {
	page *page.Page
	tags map[string]any
	body []byte
}

func classify(resolver *page.Resolver, src *content.SourceFile) (*classified, error) {
	if err := src.LoadContent(); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to read source").
			WithContext("path", src.RelPath).Build()
	}
	tags, body, err := frontmatter.Parse(src.Content)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFrontmatter, "failed to parse frontmatter").
			WithContext("path", src.RelPath).Build()
	}
	p, err := resolver.New(src.Path, tags)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryContent, "failed to resolve page").
			WithContext("path", src.RelPath).Build()
	}
	return &classified{page: p, tags: tags, body: body}, nil
}

// rendered is the per-source outcome of phase one.
type rendered struct {
	page    *page.Page
	skipped error // conversion failure tolerated by the skip policy
}

func stageRenderPages(ctx context.Context, bs *BuildState) error {
	results := make([]rendered, len(bs.Sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bs.Config.Build.Concurrency)
	for i := range bs.Sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := bs.renderPage(gctx, &bs.Sources[i])
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return NewCanceledStageError(StageRenderPages, err)
		}
		return NewFatalStageError(StageRenderPages, err)
	}

	var warned bool
	for i, r := range results {
		switch {
		case r.skipped != nil:
			bs.Report.Skipped++
			bs.Report.AddIssue(IssueConvertSkipped, StageRenderPages, SeverityWarning, r.skipped.Error(), r.skipped)
			warned = true
			continue
		case r.page == nil || r.page.Kind == page.KindIgnored:
			bs.Report.Ignored++
			continue
		}

		p := r.page
		for _, w := range p.Warnings {
			err := fmt.Errorf("%s: %s", bs.Sources[i].RelPath, w)
			bs.Report.AddIssue(IssueInvalidMetadata, StageRenderPages, SeverityWarning, err.Error(), err)
			warned = true
		}
		bs.Pages = append(bs.Pages, p)
		bs.Report.Written++
		bs.Report.Pages = append(bs.Report.Pages, PageRecord{
			Source:      p.RelPath,
			Output:      p.OutputPath,
			URL:         p.URL,
			Kind:        p.Kind.String(),
			Title:       p.Title,
			Fingerprint: p.Fingerprint,
		})
		if p.Kind == page.KindCollection {
			bs.Report.Collection++
		} else {
			bs.Report.Standalone++
		}
		if p.IsRootIndex() {
			bs.RootIndex = p
		}
	}

	bs.Recorder.AddPages(page.KindCollection.String(), bs.Report.Collection)
	bs.Recorder.AddPages(page.KindStandalone.String(), bs.Report.Standalone)
	bs.Recorder.AddPages(page.KindIgnored.String(), bs.Report.Ignored)
	observability.InfoContext(ctx, "Pages rendered",
		logfields.Pages(bs.Report.Written), slog.Int("ignored", bs.Report.Ignored), slog.Int("skipped", bs.Report.Skipped))

	if warned {
		return NewWarnStageError(StageRenderPages, errors.New("pages rendered with warnings"))
	}
	return nil
}

// renderPage takes one source from Discovered to Written. Ignored sources stop
// before conversion.
func (bs *BuildState) renderPage(ctx context.Context, src *content.SourceFile) (rendered, error) {
	c, err := classify(bs.Resolver, src)
	if err != nil {
		return rendered{}, err
	}
	p := c.page
	if p.Kind == page.KindIgnored {
		observability.DebugContext(ctx, "Ignoring source without trigger tag", logfields.Path(src.RelPath))
		return rendered{page: p}, nil
	}

	html, err := bs.Converter.Convert(c.body)
	if err != nil {
		bs.Recorder.IncConvertFailure()
		cerr := ferrors.WrapError(err, ferrors.CategoryConvert, "body conversion failed").
			WithContext("path", src.RelPath).
			WithContext("format", bs.Converter.Format()).Build()
		if bs.Config.Build.OnConvertError == config.ConvertErrorSkip {
			observability.WarnContext(ctx, "Skipping page after conversion failure", logfields.Path(src.RelPath), logfields.Error(err))
			return rendered{skipped: cerr}, nil
		}
		return rendered{}, cerr
	}
	p.BodyHTML = html

	if fp, err := frontmatterops.Fingerprint(c.tags, c.body); err == nil {
		p.Fingerprint = fp
	} else {
		observability.DebugContext(ctx, "Fingerprint unavailable", logfields.Path(src.RelPath), logfields.Error(err))
	}

	tmpl, _ := bs.Templates.For(p.Kind)
	out := placeholder.Substitute(templates.Fill(tmpl, p.BodyHTML), bs.Bindings(p.Metadata))
	if err := writeFile(p.OutputPath, []byte(out)); err != nil {
		return rendered{}, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write page").
			WithContext("path", p.OutputPath).Build()
	}

	if p.Kind == page.KindCollection {
		if err := bs.Accumulator.Add(collection.EntryFor(p, src.Order)); err != nil {
			return rendered{}, ferrors.WrapError(err, ferrors.CategoryInternal, "collection append after barrier").Build()
		}
	}
	observability.DebugContext(ctx, "Page written",
		logfields.Path(src.RelPath), logfields.Output(p.OutputPath), logfields.URL(p.URL), logfields.Kind(p.Kind.String()))
	return rendered{page: p}, nil
}
