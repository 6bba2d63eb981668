package preview

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// changeFilter decides which filesystem events can change the generated site.
type changeFilter struct {
	extension    string
	templatesDir string
	outputDir    string // set only when output lives apart from the sources
}

func newChangeFilter(cfg *config.Config) changeFilter {
	f := changeFilter{
		extension:    "." + cfg.Content.Extension,
		templatesDir: filepath.Clean(filepath.Join(cfg.Content.Root, cfg.Templates.Dir)),
	}
	if out := cfg.OutputRoot(); filepath.Clean(out) != filepath.Clean(cfg.Content.Root) {
		f.outputDir = filepath.Clean(out)
	}
	return f
}

func (f changeFilter) relevant(path string) bool {
	if shouldIgnoreEvent(path) {
		return false
	}
	clean := filepath.Clean(path)
	if f.outputDir != "" && within(f.outputDir, clean) {
		return false
	}
	if within(f.templatesDir, clean) {
		return true
	}
	// A removed or renamed directory may have held sources.
	if filepath.Ext(clean) == "" {
		return true
	}
	return filepath.Ext(clean) == f.extension
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// shouldIgnoreEvent returns true for editor scratch files and hidden files.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}
	return base == "Thumbs.db"
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func hiddenPath(urlPath string) bool {
	for seg := range strings.SplitSeq(urlPath, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

func newWatcher(root string, skip func(string) bool) (*fsnotify.Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := addDirsRecursive(w, root, skip); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

func addDirsRecursive(w *fsnotify.Watcher, root string, skip func(string) bool) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != root && (strings.HasPrefix(d.Name(), ".") || skip(path)) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// debouncer coalesces bursts of triggers into one fire after a quiet window.
type debouncer struct {
	mu     sync.Mutex
	timer  *time.Timer
	window time.Duration
	fire   func()
}

func newDebouncer(window time.Duration, fire func()) *debouncer {
	return &debouncer{window: window, fire: fire}
}

func (d *debouncer) trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}
