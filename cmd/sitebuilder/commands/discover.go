package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/page"
	"git.home.luguber.info/inful/sitebuilder/internal/site"
)

// DiscoverCmd implements the 'discover' command.
type DiscoverCmd struct {
	JSON bool `name:"json" help:"Print the plan as JSON"`
	All  bool `short:"a" name:"all" help:"Include ignored sources"`
}

// PlannedPage is one row of the discover output.
type PlannedPage struct {
	Source string `json:"source"`
	Kind   string `json:"kind"`
	Output string `json:"output,omitempty"`
	URL    string `json:"url,omitempty"`
	Title  string `json:"title,omitempty"`
	Date   string `json:"date,omitempty"`
}

func (d *DiscoverCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	return RunDiscover(context.Background(), os.Stdout, cfg, d.All, d.JSON)
}

// RunDiscover prints how each source would be published.
func RunDiscover(ctx context.Context, w io.Writer, cfg *config.Config, all, asJSON bool) error {
	pages, err := site.Plan(ctx, cfg)
	if err != nil {
		return err
	}

	rows := make([]PlannedPage, 0, len(pages))
	for _, p := range pages {
		if p.Kind == page.KindIgnored && !all {
			continue
		}
		row := PlannedPage{Source: p.RelPath, Kind: p.Kind.String()}
		if p.Kind != page.KindIgnored {
			row.Output = p.OutputPath
			row.URL = p.URL
			row.Title = p.Title
			if p.Dated() {
				row.Date = p.DateText()
			}
		}
		rows = append(rows, row)
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "KIND\tSOURCE\tDATE\tTITLE\tURL")
	for _, r := range rows {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Kind, r.Source, r.Date, r.Title, r.URL)
	}
	return tw.Flush()
}
