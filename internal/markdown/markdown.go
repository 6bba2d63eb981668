// Package markdown converts page bodies to HTML with goldmark.
//
// A format is a base name optionally followed by extension toggles, for example
// "markdown+smart" or "gfm-linkify". Pre-rendered HTML formats pass through
// unchanged.
package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	// ErrUnknownFormat is returned for a base format with no converter.
	ErrUnknownFormat = errors.New("unknown source format")
	// ErrUnknownExtension is returned for an extension name outside the registry.
	ErrUnknownExtension = errors.New("unknown format extension")
)

// rawHTML is a pseudo extension controlling whether inline HTML is emitted.
const rawHTML = "raw_html"

var extensionRegistry = map[string]goldmark.Extender{
	"smart":            extension.Typographer,
	"gfm":              extension.GFM,
	"table":            extension.Table,
	"tables":           extension.Table,
	"strikethrough":    extension.Strikethrough,
	"linkify":          extension.Linkify,
	"autolink":         extension.Linkify,
	"tasklist":         extension.TaskList,
	"definition":       extension.DefinitionList,
	"definition_lists": extension.DefinitionList,
	"footnote":         extension.Footnote,
	"footnotes":        extension.Footnote,
}

// baseExtensions lists what each base format enables before toggles apply.
var baseExtensions = map[string][]string{
	"markdown":        {"table", "strikethrough", "definition", "footnote", rawHTML},
	"commonmark":      {rawHTML},
	"markdown_strict": {rawHTML},
	"gfm":             {"gfm", rawHTML},
}

// IsPreRendered reports whether format names HTML that needs no conversion.
func IsPreRendered(format string) bool {
	switch baseName(format) {
	case "html", "html4", "html5":
		return true
	}
	return false
}

// Converter renders one configured format. It is safe for concurrent use.
type Converter struct {
	format      string
	passthrough bool
	engine      goldmark.Markdown
}

// NewConverter builds a converter for format plus the extra extension names.
func NewConverter(format string, extra []string) (*Converter, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	c := &Converter{format: format}
	if IsPreRendered(format) {
		c.passthrough = true
		return c, nil
	}

	base := baseName(format)
	enabled, ok := baseExtensions[base]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, base)
	}
	enabled = slices.Clone(enabled)

	toggles := format[len(base):]
	for toggles != "" {
		on := toggles[0] == '+'
		if toggles[0] != '+' && toggles[0] != '-' {
			return nil, fmt.Errorf("%w: malformed toggle in %q", ErrUnknownFormat, format)
		}
		toggles = toggles[1:]
		end := strings.IndexAny(toggles, "+-")
		if end < 0 {
			end = len(toggles)
		}
		name := toggles[:end]
		toggles = toggles[end:]
		if err := checkExtension(name); err != nil {
			return nil, err
		}
		enabled = slices.DeleteFunc(enabled, func(n string) bool { return n == name })
		if on {
			enabled = append(enabled, name)
		}
	}
	for _, name := range extra {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if err := checkExtension(name); err != nil {
			return nil, err
		}
		enabled = append(enabled, name)
	}

	c.engine = newEngine(enabled)
	return c, nil
}

func checkExtension(name string) error {
	if name == rawHTML {
		return nil
	}
	if _, ok := extensionRegistry[name]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownExtension, name)
	}
	return nil
}

func newEngine(enabled []string) goldmark.Markdown {
	var exts []goldmark.Extender
	seen := map[string]struct{}{}
	unsafe := false
	for _, name := range enabled {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if name == rawHTML {
			unsafe = true
			continue
		}
		exts = append(exts, extensionRegistry[name])
	}

	rendererOptions := []renderer.Option{}
	if unsafe {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}
	return goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOptions...),
	)
}

// Format returns the format string the converter was built from.
func (c *Converter) Format() string { return c.format }

// Convert renders src to HTML.
func (c *Converter) Convert(src []byte) ([]byte, error) {
	if c.passthrough {
		return src, nil
	}
	var buf bytes.Buffer
	if err := c.engine.Convert(src, &buf); err != nil {
		return nil, fmt.Errorf("markdown convert: %w", err)
	}
	return buf.Bytes(), nil
}

// Convert is the one-shot form of NewConverter followed by Converter.Convert.
func Convert(src []byte, format string, extra []string) ([]byte, error) {
	c, err := NewConverter(format, extra)
	if err != nil {
		return nil, err
	}
	return c.Convert(src)
}

func baseName(format string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if i := strings.IndexAny(format, "+-"); i >= 0 {
		return format[:i]
	}
	return format
}
