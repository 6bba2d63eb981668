// Package collection accumulates collection pages during phase one and
// sequences them, with navigation, once the membership is final.
package collection

import (
	"errors"
	"slices"
	"sync"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/page"
)

// ErrFrozen is returned when adding to a collection after discovery completed.
var ErrFrozen = errors.New("collection is frozen")

// Entry is the record a collection page contributes to sequencing and the TOC.
type Entry struct {
	Title      string
	Date       time.Time
	Blurb      string
	URL        string
	OutputPath string
	// Order is the page's position in discovery order.
	Order int
}

// EntryFor builds the record of a resolved collection page.
func EntryFor(p *page.Page, order int) Entry {
	return Entry{
		Title:      p.Title,
		Date:       p.Date,
		Blurb:      p.Blurb,
		URL:        p.URL,
		OutputPath: p.OutputPath,
		Order:      order,
	}
}

// Accumulator collects entries from concurrent page workers.
type Accumulator struct {
	mu      sync.Mutex
	entries []Entry
	frozen  bool
}

// NewAccumulator returns an empty, open accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Add appends an entry. It fails once the accumulator is frozen.
func (a *Accumulator) Add(e Entry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.frozen {
		return ErrFrozen
	}
	a.entries = append(a.entries, e)
	return nil
}

// Len returns the number of entries collected so far.
func (a *Accumulator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// Freeze closes the membership and returns the entries in discovery order,
// independent of the order workers finished in.
func (a *Accumulator) Freeze() []Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.frozen = true
	out := slices.Clone(a.entries)
	slices.SortStableFunc(out, func(x, y Entry) int { return x.Order - y.Order })
	return out
}
