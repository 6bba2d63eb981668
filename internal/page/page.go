// Package page models one input file's resolved identity and content and
// computes its metadata from its path and frontmatter.
package page

import (
	"strconv"
	"strings"
	"time"
)

// Kind classifies a page by its trigger tag.
type Kind int

const (
	// KindIgnored pages carry no trigger tag and produce no output.
	KindIgnored Kind = iota
	// KindStandalone pages are generated without collection navigation.
	KindStandalone
	// KindCollection pages are sequenced, navigable and listed in the TOC.
	KindCollection
)

// CollectionTag is the trigger value that places a page in the collection.
const CollectionTag = "collection"

func (k Kind) String() string {
	switch k {
	case KindStandalone:
		return "standalone"
	case KindCollection:
		return "collection"
	default:
		return "ignored"
	}
}

// Classify derives the kind from the frontmatter tags: absent trigger key means
// ignored, the literal collection token means collection, anything else
// (empty included) means standalone.
func Classify(tags map[string]any, triggerKey string) Kind {
	v, ok := tags[triggerKey]
	if !ok {
		return KindIgnored
	}
	if s, isString := v.(string); isString && s == CollectionTag {
		return KindCollection
	}
	return KindStandalone
}

// SentinelDate marks "no date supplied". It sorts before any real date.
var SentinelDate = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

// Metadata is the resolved, substitution-ready description of a page.
type Metadata struct {
	Title string
	Date  time.Time
	Blurb string
	URL   string
}

// Dated reports whether the date came from frontmatter.
func (m Metadata) Dated() bool { return !m.Date.Equal(SentinelDate) }

// YearText is the year without padding, "1" for the sentinel date.
func (m Metadata) YearText() string { return strconv.Itoa(m.Date.Year()) }

// DateText is the ISO calendar date, "0001-01-01" for the sentinel date.
func (m Metadata) DateText() string { return m.Date.Format(time.DateOnly) }

// Page is one input file after classification and metadata resolution.
type Page struct {
	SourcePath string
	// RelPath is SourcePath relative to the content root, slash separated.
	RelPath    string
	OutputPath string
	Kind       Kind
	Metadata

	BodyHTML    []byte
	Fingerprint string
	// Warnings collects non-fatal resolution problems, such as an unparseable date.
	Warnings []string
}

// IsRootIndex reports whether the page is the site's own index file.
func (p *Page) IsRootIndex() bool {
	return !strings.Contains(p.RelPath, "/") && stem(p.RelPath) == "index"
}
