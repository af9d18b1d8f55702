// Package dirty tracks which character ranges of a document changed since
// they were last rendered, so a view can re-render only those parts.
//
// Regions are kept sorted and coalesced: overlapping or adjacent regions
// merge into one. Edits shift the regions they do not touch, so regions
// always refer to offsets in the current text.
package dirty

import (
	"slices"

	"github.com/dshills/scribe/internal/engine/selection"
)

// Region is a changed range [Start, End). A region with Start == End marks
// the point where text was removed.
type Region struct {
	Start int
	End   int
}

// Len returns the number of characters the region covers.
func (r Region) Len() int {
	return r.End - r.Start
}

// Tracker records dirty regions. It is not safe for concurrent use; the
// document guards it with its own lock.
type Tracker struct {
	regions []Region
}

// NewTracker creates a tracker with nothing dirty.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Mark records [start, end) as dirty. Reversed bounds are swapped.
func (t *Tracker) Mark(start, end int) {
	if end < start {
		start, end = end, start
	}
	t.regions = append(t.regions, Region{Start: start, End: end})
	t.coalesce()
}

// Insert shifts the regions across n characters inserted at pos and marks
// the inserted range.
func (t *Tracker) Insert(pos, n int) {
	if n <= 0 {
		return
	}
	for i, r := range t.regions {
		t.regions[i] = Region{
			Start: selection.AdjustForInsertion(r.Start, pos, n),
			End:   selection.AdjustForInsertion(r.End, pos, n),
		}
	}
	t.Mark(pos, pos+n)
}

// Delete shifts the regions across the removal of [start, end) and marks
// the point where the text was. Regions inside the removed range collapse
// onto that point.
func (t *Tracker) Delete(start, end int) {
	if end <= start {
		return
	}
	for i, r := range t.regions {
		t.regions[i] = Region{
			Start: selection.AdjustForDeletion(r.Start, start, end),
			End:   selection.AdjustForDeletion(r.End, start, end),
		}
	}
	t.Mark(start, start)
}

// IsDirty reports whether any region is marked.
func (t *Tracker) IsDirty() bool {
	return len(t.regions) > 0
}

// Regions returns a copy of the dirty regions in document order.
func (t *Tracker) Regions() []Region {
	return slices.Clone(t.regions)
}

// Count returns the number of dirty regions.
func (t *Tracker) Count() int {
	return len(t.regions)
}

// Clear forgets every region.
func (t *Tracker) Clear() {
	t.regions = t.regions[:0]
}

// coalesce sorts the regions and merges those that overlap or touch.
func (t *Tracker) coalesce() {
	if len(t.regions) < 2 {
		return
	}
	slices.SortFunc(t.regions, func(a, b Region) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return a.End - b.End
	})
	merged := t.regions[:1]
	for _, r := range t.regions[1:] {
		last := &merged[len(merged)-1]
		if r.Start <= last.End {
			last.End = max(last.End, r.End)
			continue
		}
		merged = append(merged, r)
	}
	t.regions = merged
}
