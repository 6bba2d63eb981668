package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/frontmatterops"
	"git.home.luguber.info/inful/sitebuilder/internal/templates"
)

// StarterPage is the first collection page written by init.
const StarterPage = "hello.md"

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite existing configuration, fragments and starter page"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	return RunInit(os.Stdout, root.Config, i.Force, time.Now())
}

// RunInit writes the configuration file, the shared fragments and one
// collection page dated today.
func RunInit(w io.Writer, configPath string, force bool, today time.Time) error {
	_, _ = fmt.Fprintf(w, "Writing configuration to %s\n", configPath)
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create config directory").Build()
	}
	if err := config.Init(configPath, force); err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	written, err := templates.WriteStarter(cfg, force)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write starter fragments").Build()
	}
	for _, p := range written {
		_, _ = fmt.Fprintf(w, "Wrote fragment %s\n", p)
	}

	pagePath := filepath.Join(cfg.Content.Root, StarterPage)
	if _, err := os.Stat(pagePath); err == nil && !force {
		_, _ = fmt.Fprintln(w, "initialized successfully")
		return nil
	}
	doc, err := frontmatterops.Document(map[string]any{
		cfg.Content.TriggerKey: "collection",
		"title":                "Hello",
		"date":                 today.Format(time.DateOnly),
		"blurb":                "The first page of the collection.",
	}, []byte("Write your first page here.\n"))
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "failed to serialize starter page").Build()
	}
	if err := os.WriteFile(pagePath, doc, 0o644); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write starter page").
			WithContext("path", pagePath).Build()
	}
	_, _ = fmt.Fprintf(w, "Wrote page %s\n", pagePath)
	_, _ = fmt.Fprintln(w, "initialized successfully")
	return nil
}
