// Package templates composes the static HTML shell each generated page is
// poured into: doctype, head, pre, main content, post.
package templates

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/page"
)

// BodyMarker is the single content placeholder of a composed template.
const BodyMarker = "<!--BODY-->"

// ErrFragmentUnreadable reports a head/pre/post fragment that could not be read.
var ErrFragmentUnreadable = errors.New("template fragment unreadable")

// Compose joins the three fragments into a complete page shell.
func Compose(lang, head, pre, post string) string {
	var b strings.Builder
	b.Grow(len(head) + len(pre) + len(post) + 128)
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString(`<html lang="` + lang + "\">\n")
	b.WriteString(head)
	b.WriteString("\n\n<body>\n\n")
	b.WriteString(pre)
	b.WriteString("\n<main>\n")
	b.WriteString(BodyMarker)
	b.WriteString("</main>\n\n")
	b.WriteString(post)
	b.WriteString("\n\n</body>\n\n")
	b.WriteString("</html>")
	return b.String()
}

// Fill pours body into a composed template.
func Fill(template string, body []byte) string {
	return strings.ReplaceAll(template, BodyMarker, string(body))
}

// Set holds one composed template per generating page kind. Templates are
// immutable once loaded.
type Set struct {
	collection string
	standalone string
}

// NewSet wraps already composed templates.
func NewSet(collection, standalone string) *Set {
	return &Set{collection: collection, standalone: standalone}
}

// For returns the template for a page kind. Ignored pages have none.
func (s *Set) For(kind page.Kind) (string, bool) {
	switch kind {
	case page.KindCollection:
		return s.collection, true
	case page.KindStandalone:
		return s.standalone, true
	default:
		return "", false
	}
}

// Collection returns the collection template, also used for a synthesized home page.
func (s *Set) Collection() string { return s.collection }

// Load reads the shared fragments and composes both templates. The head
// fragment is read once and shared. Any unreadable fragment fails the load.
func Load(cfg *config.Config) (*Set, error) {
	cache := map[string]string{}
	read := func(name string) (string, error) {
		p := cfg.TemplatePath(name)
		if s, ok := cache[p]; ok {
			return s, nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %w", ErrFragmentUnreadable, p, err)
		}
		cache[p] = string(data)
		return cache[p], nil
	}

	t := cfg.Templates
	names := []string{t.Head, t.CollectionPre, t.CollectionPost, t.StandalonePre, t.StandalonePost}
	frags := make([]string, len(names))
	for i, name := range names {
		s, err := read(name)
		if err != nil {
			return nil, err
		}
		frags[i] = s
	}

	lang := cfg.Site.Language
	return NewSet(
		Compose(lang, frags[0], frags[1], frags[2]),
		Compose(lang, frags[0], frags[3], frags[4]),
	), nil
}
