package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/eventstore"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit int  `short:"n" default:"10" help:"Number of builds to show"`
	JSON  bool `name:"json" help:"Print builds as JSON"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	return RunHistory(context.Background(), os.Stdout, cfg, h.Limit, h.JSON)
}

// RunHistory prints the newest builds recorded in history.path.
func RunHistory(ctx context.Context, w io.Writer, cfg *config.Config, limit int, asJSON bool) error {
	if cfg.History.Path == "" {
		return ferrors.ConfigError("build history is disabled (set history.path)").Build()
	}
	if _, err := os.Stat(cfg.History.Path); err != nil {
		return ferrors.ConfigError("no build history recorded yet").
			WithContext("path", cfg.History.Path).Build()
	}
	store, err := eventstore.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	projection := eventstore.NewBuildHistoryProjection(store, limit)
	if err := projection.Rebuild(ctx); err != nil {
		return err
	}
	builds := projection.History(limit)

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(builds)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tBUILD\tTRIGGER\tSTATUS\tPAGES\tDURATION\tERROR")
	for _, b := range builds {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			b.StartedAt.Local().Format(time.DateTime), b.BuildID, b.Trigger, b.Status,
			b.Counts.Written, b.Duration.Truncate(time.Millisecond), b.ErrorMessage)
	}
	return tw.Flush()
}
