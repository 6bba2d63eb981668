package collection

import (
	"slices"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/placeholder"
)

// Sequence orders entries by the configured key. The sort is stable in both
// directions: equal keys keep discovery order even when reversed. Any key other
// than title or date leaves the input order untouched.
func Sequence(entries []Entry, key config.SortKey, reversed bool) []Entry {
	out := slices.Clone(entries)

	var cmp func(a, b Entry) int
	switch key {
	case config.SortTitle:
		cmp = func(a, b Entry) int { return strings.Compare(a.Title, b.Title) }
	case config.SortDate:
		cmp = func(a, b Entry) int { return a.Date.Compare(b.Date) }
	default:
		return out
	}
	if reversed {
		asc := cmp
		cmp = func(a, b Entry) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, cmp)
	return out
}

// Navigator renders prev/home/next values for sequenced pages.
type Navigator struct {
	baseURL  string
	jumpTo   string
	prevText string
	homeText string
	nextText string
}

// NewNavigator builds a navigator from the site configuration.
func NewNavigator(cfg *config.Config) Navigator {
	return Navigator{
		baseURL:  cfg.BaseURL(),
		jumpTo:   cfg.TOC.JumpToID,
		prevText: cfg.Navigation.PrevText,
		homeText: cfg.Navigation.HomeText,
		nextText: cfg.Navigation.NextText,
	}
}

// For returns the navigation of entry i within the ordered sequence. The ends
// get plain labels; a page that is the home page gets a plain home label.
func (n Navigator) For(seq []Entry, i int) placeholder.Nav {
	nav := placeholder.Nav{Prev: n.prevText, Home: n.homeAnchor(), Next: n.nextText}
	if i > 0 {
		nav.Prev = placeholder.Anchor(seq[i-1].URL, n.prevText)
	}
	if i < len(seq)-1 {
		nav.Next = placeholder.Anchor(seq[i+1].URL, n.nextText)
	}
	if seq[i].URL == n.baseURL {
		nav.Home = n.homeText
	}
	return nav
}

// Home returns the navigation of a synthesized home page: prev wraps to the
// last entry and next to the first. An empty sequence yields plain labels.
func (n Navigator) Home(seq []Entry) placeholder.Nav {
	nav := placeholder.Nav{Prev: n.prevText, Home: n.homeText, Next: n.nextText}
	if len(seq) > 0 {
		nav.Prev = placeholder.Anchor(seq[len(seq)-1].URL, n.prevText)
		nav.Next = placeholder.Anchor(seq[0].URL, n.nextText)
	}
	return nav
}

func (n Navigator) homeAnchor() string {
	return placeholder.Anchor(n.baseURL+n.jumpTo, n.homeText)
}
