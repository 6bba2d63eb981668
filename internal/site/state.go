package site

import (
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/sitebuilder/internal/collection"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/content"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/page"
	"git.home.luguber.info/inful/sitebuilder/internal/placeholder"
	"git.home.luguber.info/inful/sitebuilder/internal/templates"
	"git.home.luguber.info/inful/sitebuilder/internal/toc"
)

// BodyConverter turns a page body into HTML.
type BodyConverter interface {
	Convert(src []byte) ([]byte, error)
	Format() string
}

// BuildState carries everything one build shares between stages. Configuration
// and collaborators are read-only; the remaining fields are filled in stage order.
type BuildState struct {
	Config    *config.Config
	Resolver  *page.Resolver
	Converter BodyConverter
	TOC       *toc.Builder
	Navigator collection.Navigator
	Recorder  metrics.Recorder
	Report    *Report

	Templates   *templates.Set
	Sources     []content.SourceFile
	Pages       []*page.Page // generated pages in discovery order
	RootIndex   *page.Page   // generated root index page, nil when the home page is synthesized
	Accumulator *collection.Accumulator
	Entries     []collection.Entry // frozen collection in discovery order
	Sequence    []collection.Entry // sorted collection
	TOCHTML     string
}

// NewBuildState wires the collaborators for cfg.
func NewBuildState(cfg *config.Config, recorder metrics.Recorder, report *Report) (*BuildState, error) {
	conv, err := markdown.NewConverter(cfg.Content.Format, cfg.Content.Options)
	if err != nil {
		return nil, err
	}
	tb, err := toc.NewBuilder(cfg)
	if err != nil {
		return nil, err
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &BuildState{
		Config:      cfg,
		Resolver:    page.NewResolver(cfg),
		Converter:   conv,
		TOC:         tb,
		Navigator:   collection.NewNavigator(cfg),
		Recorder:    recorder,
		Report:      report,
		Accumulator: collection.NewAccumulator(),
	}, nil
}

// Bindings returns the placeholder values of a page.
func (bs *BuildState) Bindings(m page.Metadata) placeholder.Bindings {
	return placeholder.Bindings{
		Title:          m.Title,
		SiteName:       bs.Config.Site.Name,
		DomainSiteName: bs.Config.Site.DomainSiteName,
		HomeURL:        bs.Config.BaseURL(),
		DomainURL:      bs.Config.Site.Domain,
		Year:           m.YearText(),
		Date:           m.DateText(),
		SelfURL:        m.URL,
	}
}

// HomeOutputPath is where the site's index page is written.
func (bs *BuildState) HomeOutputPath() string {
	return filepath.Join(bs.Config.OutputRoot(), "index."+page.OutputExtension)
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
