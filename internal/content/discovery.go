// Package content discovers the source files of a site.
package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
)

// SourceFile is a discovered input file.
type SourceFile struct {
	Path    string // Absolute path to the file
	RelPath string // Slash separated path relative to the content root
	Order   int    // Position in discovery order
	Content []byte // File content (loaded on demand)
}

// Discovery finds source files with the configured extension.
type Discovery struct {
	root      string
	extension string
	maxDepth  int
}

// NewDiscovery creates a discovery for the site's content tree.
func NewDiscovery(cfg *config.Config) *Discovery {
	return &Discovery{
		root:      cfg.Content.Root,
		extension: "." + cfg.Content.Extension,
		maxDepth:  cfg.Content.MaxDepth,
	}
}

// Discover walks the content root down to the depth limit (1 = root only).
// Each folder contributes its files before its subfolders, both in name order.
// Hidden files and folders are skipped. Cancellation is checked per folder.
func (d *Discovery) Discover(ctx context.Context) ([]SourceFile, error) {
	if info, err := os.Stat(d.root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, d.root)
	}

	var files []SourceFile
	if err := d.walk(ctx, d.root, d.maxDepth, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (d *Discovery) walk(ctx context.Context, dir string, depth int, files *[]SourceFile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDirWalkFailed, dir, err)
	}

	var subdirs []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		full := filepath.Join(dir, name)
		if entry.IsDir() {
			subdirs = append(subdirs, full)
			continue
		}
		if filepath.Ext(name) != d.extension {
			continue
		}
		rel, err := filepath.Rel(d.root, full)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDirWalkFailed, err)
		}
		*files = append(*files, SourceFile{Path: full, RelPath: filepath.ToSlash(rel), Order: len(*files)})
		observability.DebugContext(ctx, "Discovered file", logfields.Path(filepath.ToSlash(rel)))
	}

	if depth <= 1 {
		return nil
	}
	for _, sub := range subdirs {
		if err := d.walk(ctx, sub, depth-1, files); err != nil {
			return err
		}
	}
	return nil
}

// LoadContent loads the content of a source file.
func (f *SourceFile) LoadContent() error {
	if f.Content != nil {
		return nil
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFileReadFailed, f.Path, err)
	}
	f.Content = data
	return nil
}
