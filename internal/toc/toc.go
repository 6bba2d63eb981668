// Package toc renders the sequenced collection as a table of contents.
package toc

import (
	"fmt"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/collection"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/markdown"
)

// Format is the markup dialect the intermediate TOC document is written in.
const Format = "markdown+smart"

// noYear differs from the sentinel date's year so undated entries still get a
// heading when year headings are on.
const noYear = 2

// Builder renders TOC fragments. It is safe for concurrent use.
type Builder struct {
	cfg       config.TOCConfig
	converter *markdown.Converter
}

// NewBuilder builds a TOC renderer for the site configuration.
func NewBuilder(cfg *config.Config) (*Builder, error) {
	conv, err := markdown.NewConverter(Format, nil)
	if err != nil {
		return nil, err
	}
	return &Builder{cfg: cfg.TOC, converter: conv}, nil
}

// Markup returns the intermediate markdown document for the ordered entries.
func (b *Builder) Markup(seq []collection.Entry) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", b.cfg.Title)
	if b.cfg.Subtitle != "" {
		fmt.Fprintf(&sb, "%s\n\n", b.cfg.Subtitle)
	}

	year := noYear
	for _, e := range seq {
		if b.cfg.YearHeadings && e.Date.Year() != year {
			year = e.Date.Year()
			sb.WriteString("\n" + strconv.Itoa(year) + "\n\n")
		}
		fmt.Fprintf(&sb, "- [%s](%s)", e.Title, e.URL)
		if b.cfg.Blurbs {
			fmt.Fprintf(&sb, " &mdash; %s\n", e.Blurb)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Classes returns the CSS classes of the TOC section.
func (b *Builder) Classes() string {
	classes := []string{b.cfg.Class}
	if !b.cfg.Blurbs {
		classes = append(classes, b.cfg.NoBlurbClass)
	}
	if b.cfg.Subtitle != "" {
		classes = append(classes, b.cfg.HasSubtitleClass)
	}
	return strings.Join(classes, " ")
}

// Build converts the markup and wraps it in the TOC section. The caller decides
// whether an empty collection's TOC is inserted at all.
func (b *Builder) Build(seq []collection.Entry) (string, error) {
	html, err := b.converter.Convert([]byte(b.Markup(seq)))
	if err != nil {
		return "", fmt.Errorf("convert toc: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(`<section class="` + b.Classes() + `"`)
	if id := strings.TrimPrefix(b.cfg.JumpToID, "#"); id != "" {
		sb.WriteString(` id="` + id + `"`)
	}
	sb.WriteString(">\n")
	sb.Write(html)
	sb.WriteString("</section>")
	return sb.String(), nil
}
