package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvert_Markdown(t *testing.T) {
	out, err := Convert([]byte("# Hello\n\nSome *text*.\n"), "markdown", nil)
	require.NoError(t, err)
	require.Contains(t, string(out), `<h1 id="hello">Hello</h1>`)
	require.Contains(t, string(out), "<p>Some <em>text</em>.</p>")
}

func TestConvert_RawHTMLPassesThrough(t *testing.T) {
	out, err := Convert([]byte("See <a href=\"HOME_URL_PH\">home</a>.\n"), "markdown", nil)
	require.NoError(t, err)
	require.Contains(t, string(out), `<a href="HOME_URL_PH">home</a>`)

	out, err = Convert([]byte("See <b>bold</b>.\n"), "markdown-raw_html", nil)
	require.NoError(t, err)
	require.NotContains(t, string(out), "<b>")
}

func TestConvert_SmartTypography(t *testing.T) {
	plain, err := Convert([]byte("wait -- \"quoted\"\n"), "markdown", nil)
	require.NoError(t, err)
	require.Contains(t, string(plain), "--")

	smart, err := Convert([]byte("wait -- \"quoted\"\n"), "markdown+smart", nil)
	require.NoError(t, err)
	require.NotContains(t, string(smart), "--")
	require.Contains(t, string(smart), "&ldquo;quoted&rdquo;")
}

func TestConvert_BarePlaceholderLineBecomesParagraph(t *testing.T) {
	out, err := Convert([]byte("Intro\n\nTOC_BLOCK_PH\n"), "markdown+smart", nil)
	require.NoError(t, err)
	require.Contains(t, string(out), "<p>TOC_BLOCK_PH</p>")
}

func TestConvert_PreRenderedPassthrough(t *testing.T) {
	for _, format := range []string{"html", "html4", "HTML5"} {
		src := []byte("<p>already *html*</p>")
		out, err := Convert(src, format, nil)
		require.NoError(t, err)
		require.Equal(t, src, out)
		require.True(t, IsPreRendered(format))
	}
	require.False(t, IsPreRendered("markdown"))
}

func TestConvert_ExtraExtensions(t *testing.T) {
	src := []byte("| a | b |\n|---|---|\n| 1 | 2 |\n")
	out, err := Convert(src, "commonmark", nil)
	require.NoError(t, err)
	require.NotContains(t, string(out), "<table>")

	out, err = Convert(src, "commonmark", []string{"table"})
	require.NoError(t, err)
	require.Contains(t, string(out), "<table>")
}

func TestNewConverter_Errors(t *testing.T) {
	_, err := NewConverter("rst", nil)
	require.ErrorIs(t, err, ErrUnknownFormat)

	_, err = NewConverter("markdown+wat", nil)
	require.ErrorIs(t, err, ErrUnknownExtension)

	_, err = NewConverter("markdown", []string{"nope"})
	require.ErrorIs(t, err, ErrUnknownExtension)
}
