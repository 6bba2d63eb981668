package page

import (
	"fmt"
	"path"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
)

// OutputExtension is the extension of every generated page.
const OutputExtension = "html"

// Resolver computes page identity and metadata. It holds only immutable
// configuration and is safe for concurrent use.
type Resolver struct {
	root       string
	rootName   string
	outputRoot string
	baseURL    string
	extension  string
	triggerKey string
	lang       language.Tag
}

// NewResolver builds a resolver for the given site configuration.
func NewResolver(cfg *config.Config) *Resolver {
	rootName := filepath.Base(cfg.Content.Root)
	if abs, err := filepath.Abs(cfg.Content.Root); err == nil {
		rootName = filepath.Base(abs)
	}
	return &Resolver{
		root:       cfg.Content.Root,
		rootName:   rootName,
		outputRoot: cfg.OutputRoot(),
		baseURL:    cfg.BaseURL(),
		extension:  cfg.Content.Extension,
		triggerKey: cfg.Content.TriggerKey,
		lang:       language.Make(cfg.Site.Language),
	}
}

// New classifies a source file and resolves its path-derived identity and
// metadata. The body is left for the caller to convert.
func (r *Resolver) New(sourcePath string, tags map[string]any) (*Page, error) {
	rel, err := r.relative(sourcePath)
	if err != nil {
		return nil, err
	}
	p := &Page{
		SourcePath: sourcePath,
		RelPath:    rel,
		OutputPath: r.OutputPath(rel),
		Kind:       Classify(tags, r.triggerKey),
	}
	p.Metadata, p.Warnings = r.Resolve(rel, tags)
	return p, nil
}

// OutputPath maps a relative source path to its generated file.
func (r *Resolver) OutputPath(rel string) string {
	out := strings.TrimSuffix(rel, path.Ext(rel)) + "." + OutputExtension
	return filepath.Join(r.outputRoot, filepath.FromSlash(out))
}

// Resolve returns the defaults for rel merged with the frontmatter tags. Only
// title, date and blurb are overridable, and only by truthy values. Problems
// that leave the default in place are returned as warnings.
func (r *Resolver) Resolve(rel string, tags map[string]any) (Metadata, []string) {
	m := r.Defaults(rel)
	var warnings []string

	if v, ok := tags["title"]; ok && truthy(v) {
		m.Title = scalarText(v)
	}
	if v, ok := tags["blurb"]; ok && truthy(v) {
		m.Blurb = scalarText(v)
	}
	if v, ok := tags["date"]; ok && truthy(v) {
		d, err := parseDate(v)
		if err != nil {
			warnings = append(warnings, err.Error())
		} else {
			m.Date = d
		}
	}
	return m, warnings
}

// Defaults computes the fallback metadata for a relative source path.
func (r *Resolver) Defaults(rel string) Metadata {
	rel = path.Clean(filepath.ToSlash(rel))
	isIndex := stem(rel) == "index"

	// An index file stands for its folder.
	named := rel
	if isIndex {
		named = path.Dir(rel)
	}

	var url string
	switch {
	case isIndex && named == ".":
		url = r.baseURL
	case isIndex:
		url = r.baseURL + named + "/"
	default:
		url = r.baseURL + strings.TrimSuffix(rel, path.Ext(rel)) + "." + OutputExtension
	}

	name := stem(named)
	if named == "." {
		name = r.rootName
	}

	return Metadata{
		Title: cases.Title(r.lang).String(strings.ReplaceAll(name, "-", " ")),
		Date:  SentinelDate,
		URL:   url,
	}
}

func (r *Resolver) relative(sourcePath string) (string, error) {
	rel, err := filepath.Rel(r.root, sourcePath)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the content root %s", sourcePath, r.root)
	}
	return filepath.ToSlash(rel), nil
}

func stem(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

// truthy follows the usual scripting notion: nil, false, zero numbers and empty
// strings or collections are falsy.
func truthy(v any) bool {
	if v == nil {
		return false
	}
	switch vv := v.(type) {
	case string:
		return vv != ""
	case bool:
		return vv
	case time.Time:
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() != 0
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() != 0
	}
	return true
}

func scalarText(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.DateTime,
	"2006-01-02T15:04:05",
}

func parseDate(v any) (time.Time, error) {
	switch vv := v.(type) {
	case time.Time:
		return dateOnly(vv), nil
	case string:
		s := strings.TrimSpace(vv)
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return dateOnly(t), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized date %q, keeping default", vv)
	default:
		return time.Time{}, fmt.Errorf("unsupported date value %v (%T), keeping default", vv, vv)
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
