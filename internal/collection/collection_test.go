package collection

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/page"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func urls(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.URL
	}
	return out
}

func TestAccumulator_ConcurrentAddFreezesInDiscoveryOrder(t *testing.T) {
	acc := NewAccumulator()
	var wg sync.WaitGroup
	for i := 20; i > 0; i-- {
		wg.Add(1)
		go func(order int) {
			defer wg.Done()
			assert.NoError(t, acc.Add(Entry{URL: fmt.Sprintf("p%02d.html", order), Order: order}))
		}(i)
	}
	wg.Wait()
	require.Equal(t, 20, acc.Len())

	entries := acc.Freeze()
	require.Len(t, entries, 20)
	for i, e := range entries {
		require.Equal(t, i+1, e.Order)
	}

	require.ErrorIs(t, acc.Add(Entry{}), ErrFrozen)
}

func TestEntryFor(t *testing.T) {
	p := &page.Page{OutputPath: "/out/a.html", Metadata: page.Metadata{Title: "A", URL: "u", Blurb: "b", Date: day("2020-01-01")}}
	e := EntryFor(p, 3)
	require.Equal(t, Entry{Title: "A", Date: day("2020-01-01"), Blurb: "b", URL: "u", OutputPath: "/out/a.html", Order: 3}, e)
}

func TestSequence_DateDescending(t *testing.T) {
	entries := []Entry{
		{URL: "a", Date: day("2020-01-01")},
		{URL: "b", Date: day("2019-06-01")},
		{URL: "c", Date: day("2021-03-01")},
	}
	got := Sequence(entries, config.SortDate, true)
	require.Equal(t, []string{"c", "a", "b"}, urls(got))
	require.Equal(t, []string{"a", "b", "c"}, urls(entries), "input must not be reordered")

	got = Sequence(entries, config.SortDate, false)
	require.Equal(t, []string{"b", "a", "c"}, urls(got))
}

func TestSequence_StableTies(t *testing.T) {
	entries := []Entry{
		{URL: "first", Title: "Same"},
		{URL: "other", Title: "Apple"},
		{URL: "second", Title: "Same"},
	}
	require.Equal(t, []string{"other", "first", "second"}, urls(Sequence(entries, config.SortTitle, false)))
	require.Equal(t, []string{"first", "second", "other"}, urls(Sequence(entries, config.SortTitle, true)))
}

func TestSequence_OtherKeyKeepsDiscoveryOrder(t *testing.T) {
	entries := []Entry{{URL: "z", Title: "Z"}, {URL: "a", Title: "A"}}
	require.Equal(t, []string{"z", "a"}, urls(Sequence(entries, config.SortNone, true)))
}

func testNavigator() Navigator {
	cfg := config.Default()
	cfg.Site.Domain = "https://example.com/"
	cfg.TOC.JumpToID = "#contents"
	return NewNavigator(cfg)
}

func TestNavigator_For(t *testing.T) {
	nav := testNavigator()
	seq := []Entry{{URL: "https://example.com/a.html"}, {URL: "https://example.com/b.html"}, {URL: "https://example.com/c.html"}}

	first := nav.For(seq, 0)
	require.Equal(t, "prev", first.Prev)
	require.Equal(t, `<a href="https://example.com/b.html">next</a>`, first.Next)
	require.Equal(t, `<a href="https://example.com/#contents">TOC</a>`, first.Home)

	mid := nav.For(seq, 1)
	require.Equal(t, `<a href="https://example.com/a.html">prev</a>`, mid.Prev)
	require.Equal(t, `<a href="https://example.com/c.html">next</a>`, mid.Next)

	last := nav.For(seq, 2)
	require.Equal(t, `<a href="https://example.com/b.html">prev</a>`, last.Prev)
	require.Equal(t, "next", last.Next)
}

func TestNavigator_SingleEntry(t *testing.T) {
	nav := testNavigator().For([]Entry{{URL: "https://example.com/only.html"}}, 0)
	require.Equal(t, "prev", nav.Prev)
	require.Equal(t, "next", nav.Next)
}

func TestNavigator_HomePageGetsPlainHomeLabel(t *testing.T) {
	nav := testNavigator().For([]Entry{{URL: "https://example.com/"}, {URL: "https://example.com/b.html"}}, 0)
	require.Equal(t, "TOC", nav.Home)
}

func TestNavigator_Home(t *testing.T) {
	nav := testNavigator()

	empty := nav.Home(nil)
	require.Equal(t, "prev", empty.Prev)
	require.Equal(t, "TOC", empty.Home)
	require.Equal(t, "next", empty.Next)

	seq := []Entry{{URL: "first.html"}, {URL: "middle.html"}, {URL: "last.html"}}
	circular := nav.Home(seq)
	require.Equal(t, `<a href="last.html">prev</a>`, circular.Prev)
	require.Equal(t, "TOC", circular.Home)
	require.Equal(t, `<a href="first.html">next</a>`, circular.Next)
}
