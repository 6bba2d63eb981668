// Package placeholder substitutes the literal marker tokens of composed pages.
//
// Tokens ending in _TEXT_PH take plain text, _URL_PH a bare absolute URL and
// _LINK_PH a complete anchor element. Substitution is literal string
// replacement; tokens with no binding in a page's scope stay verbatim.
package placeholder

import "strings"

// Tokens available to every generated page.
const (
	Title          = "TITLE_TEXT_PH"
	SiteName       = "SITENAME_TEXT_PH"
	DomainSiteName = "NAME_DOMAIN_TEXT_PH"
	HomeURL        = "HOME_URL_PH"
	DomainURL      = "DOMAIN_URL_PH"
	Year           = "YEAR_TEXT_PH"
	Date           = "DATE_TEXT_PH"
	// SelfURL is the canonical reference. It is always substituted last.
	SelfURL = "SELF_URL_PH"
)

// Navigation tokens, resolved only on collection pages and the home page.
const (
	PrevLink = "PREV_LINK_PH"
	HomeLink = "HOME_LINK_PH"
	NextLink = "NEXT_LINK_PH"
)

// TOCBlock is the root index marker as it appears after body conversion.
const TOCBlock = "<p>TOC_BLOCK_PH</p>"

// Bindings are the per-page values of the ordinary and canonical tokens.
type Bindings struct {
	Title          string
	SiteName       string
	DomainSiteName string
	HomeURL        string
	DomainURL      string
	Year           string
	Date           string
	SelfURL        string
}

type rule struct {
	token string
	value func(Bindings) string
}

// ordinary is applied in order; a value introduced by an earlier rule can be
// matched by a later one.
var ordinary = []rule{
	{Title, func(b Bindings) string { return b.Title }},
	{DomainSiteName, func(b Bindings) string { return b.DomainSiteName }},
	{SiteName, func(b Bindings) string { return b.SiteName }},
	{HomeURL, func(b Bindings) string { return b.HomeURL }},
	{DomainURL, func(b Bindings) string { return b.DomainURL }},
	{Year, func(b Bindings) string { return b.Year }},
	{Date, func(b Bindings) string { return b.Date }},
}

// Substitute resolves the ordinary tokens, strips anchors pointing at the
// page's own URL, then fills the canonical token.
func Substitute(text string, b Bindings) string {
	for _, r := range ordinary {
		text = strings.ReplaceAll(text, r.token, r.value(b))
	}
	text = SuppressSelfLinks(text, b.SelfURL)
	return strings.ReplaceAll(text, SelfURL, b.SelfURL)
}

// SuppressSelfLinks rewrites every `<a href="url">text</a>` with exactly this
// href to its inner text. The inner text ends at the first closing tag and may
// not span lines. Other anchors, including prefix matches, are untouched.
func SuppressSelfLinks(text, url string) string {
	if url == "" {
		return text
	}
	open := `<a href="` + url + `">`
	if !strings.Contains(text, open) {
		return text
	}

	const closing = "</a>"
	var b strings.Builder
	b.Grow(len(text))
	for {
		i := strings.Index(text, open)
		if i < 0 {
			break
		}
		rest := text[i+len(open):]
		j := strings.Index(rest, closing)
		if j < 0 || strings.Contains(rest[:j], "\n") {
			b.WriteString(text[:i+len(open)])
			text = rest
			continue
		}
		b.WriteString(text[:i])
		b.WriteString(rest[:j])
		text = rest[j+len(closing):]
	}
	b.WriteString(text)
	return b.String()
}

// Nav holds the rendered navigation values of one page.
type Nav struct {
	Prev string
	Home string
	Next string
}

// ApplyNav fills the three navigation tokens.
func ApplyNav(text string, n Nav) string {
	text = strings.ReplaceAll(text, PrevLink, n.Prev)
	text = strings.ReplaceAll(text, HomeLink, n.Home)
	return strings.ReplaceAll(text, NextLink, n.Next)
}

// InsertTOC replaces the TOC block marker with the rendered TOC.
func InsertTOC(text, toc string) string {
	return strings.ReplaceAll(text, TOCBlock, toc)
}

// Anchor renders a navigation anchor element.
func Anchor(url, label string) string {
	return `<a href="` + url + `">` + label + `</a>`
}
