package placeholder

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/templates"
)

var postBindings = Bindings{
	Title:          "Deep Dive",
	SiteName:       "Field Notes",
	DomainSiteName: "Example Person",
	HomeURL:        "https://example.com/notes/",
	DomainURL:      "https://example.com/",
	Year:           "2021",
	Date:           "2021-03-01",
	SelfURL:        "https://example.com/notes/deep-dive.html",
}

func TestSubstitute_ComposedRoundTrip(t *testing.T) {
	head := `<head><title>TITLE_TEXT_PH | SITENAME_TEXT_PH</title><link rel="canonical" href="SELF_URL_PH"></head>`
	pre := `<header><a href="HOME_URL_PH">SITENAME_TEXT_PH</a> <a href="SELF_URL_PH">permalink</a></header>`
	post := `<footer>&copy; YEAR_TEXT_PH <a href="DOMAIN_URL_PH">NAME_DOMAIN_TEXT_PH</a> DATE_TEXT_PH PREV_LINK_PH</footer>`
	body := "<p>See <a href=\"https://example.com/notes/deep-dive.html\">this page</a>.</p>\n"

	got := Substitute(templates.Fill(templates.Compose("en", head, pre, post), []byte(body)), postBindings)

	want := "<!DOCTYPE html>\n" +
		"<html lang=\"en\">\n" +
		`<head><title>Deep Dive | Field Notes</title><link rel="canonical" href="https://example.com/notes/deep-dive.html"></head>` +
		"\n\n<body>\n\n" +
		`<header><a href="https://example.com/notes/">Field Notes</a> <a href="https://example.com/notes/deep-dive.html">permalink</a></header>` +
		"\n<main>\n" +
		"<p>See this page.</p>\n" +
		"</main>\n\n" +
		`<footer>&copy; 2021 <a href="https://example.com/">Example Person</a> 2021-03-01 PREV_LINK_PH</footer>` +
		"\n\n</body>\n\n" +
		"</html>"
	require.Equal(t, want, got)
}

func TestSubstitute_LeavesUnknownTokens(t *testing.T) {
	in := "TOC_BLOCK_PH HOME_LINK_PH CUSTOM_TEXT_PH"
	require.Equal(t, in, Substitute(in, postBindings))
}

func TestSuppressSelfLinks(t *testing.T) {
	self := "https://example.com/notes/a.html"

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "self link stripped",
			in:   `x <a href="https://example.com/notes/a.html">me</a> y`,
			want: "x me y",
		},
		{
			name: "other link untouched",
			in:   `<a href="https://example.com/notes/b.html">b</a>`,
			want: `<a href="https://example.com/notes/b.html">b</a>`,
		},
		{
			name: "prefix match untouched",
			in:   `<a href="https://example.com/notes/a.html#frag">frag</a>`,
			want: `<a href="https://example.com/notes/a.html#frag">frag</a>`,
		},
		{
			name: "regex metacharacters are literal",
			in:   `<a href="https://exampleXcom/notes/a.html">no</a>`,
			want: `<a href="https://exampleXcom/notes/a.html">no</a>`,
		},
		{
			name: "multiple occurrences",
			in:   `<a href="https://example.com/notes/a.html">one</a>, <a href="https://example.com/notes/a.html"><em>two</em></a>`,
			want: "one, <em>two</em>",
		},
		{
			name: "inner text spanning lines is kept",
			in:   "<a href=\"https://example.com/notes/a.html\">one\ntwo</a>",
			want: "<a href=\"https://example.com/notes/a.html\">one\ntwo</a>",
		},
		{
			name: "unterminated anchor kept",
			in:   `<a href="https://example.com/notes/a.html">open`,
			want: `<a href="https://example.com/notes/a.html">open`,
		},
		{
			name: "no matches is a no-op",
			in:   "plain text",
			want: "plain text",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, SuppressSelfLinks(tt.in, self))
		})
	}
}

func TestSubstitute_CanonicalSurvivesSuppression(t *testing.T) {
	in := `<link rel="canonical" href="SELF_URL_PH"><a href="SELF_URL_PH">self</a>`
	got := Substitute(in, postBindings)
	require.Equal(t, `<link rel="canonical" href="https://example.com/notes/deep-dive.html"><a href="https://example.com/notes/deep-dive.html">self</a>`, got)
}

func TestApplyNav(t *testing.T) {
	in := "PREV_LINK_PH|HOME_LINK_PH|NEXT_LINK_PH|PREV_LINK_PH"
	got := ApplyNav(in, Nav{Prev: "prev", Home: Anchor("https://example.com/#toc", "TOC"), Next: Anchor("n.html", "next")})
	require.Equal(t, `prev|<a href="https://example.com/#toc">TOC</a>|<a href="n.html">next</a>|prev`, got)
}

func TestInsertTOC(t *testing.T) {
	require.Equal(t, "<h1>Home</h1>\n<section>toc</section>\n", InsertTOC("<h1>Home</h1>\n<p>TOC_BLOCK_PH</p>\n", "<section>toc</section>"))
	require.Equal(t, "a  b", InsertTOC("a <p>TOC_BLOCK_PH</p> b", ""))
	require.Equal(t, "TOC_BLOCK_PH", InsertTOC("TOC_BLOCK_PH", "x"))
}
