package format

import (
	"fmt"
	"slices"
	"sort"
)

// Table holds the format runs of a document, one sorted list per Kind.
// The zero value is an empty table.
type Table struct {
	runs [kindCount][]Run
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{}
}

// FromRuns builds a table from runs in any order. Overlapping or touching
// runs of one kind are resolved in order, later runs winning, exactly as
// successive Apply calls would.
func FromRuns(runs []Run) *Table {
	t := NewTable()
	for _, r := range runs {
		t.Apply(r.Format, r.Start, r.End)
	}
	return t
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := &Table{}
	for k := range t.runs {
		c.runs[k] = slices.Clone(t.runs[k])
	}
	return c
}

// Count returns the total number of runs.
func (t *Table) Count() int {
	n := 0
	for k := range t.runs {
		n += len(t.runs[k])
	}
	return n
}

// RunsOf returns a copy of the runs of one kind, ordered by Start.
func (t *Table) RunsOf(kind Kind) []Run {
	if !kind.Valid() {
		return nil
	}
	return slices.Clone(t.runs[kind])
}

// Runs returns every run ordered by Start, then Kind.
func (t *Table) Runs() []Run {
	out := make([]Run, 0, t.Count())
	for k := range t.runs {
		out = append(out, t.runs[k]...)
	}
	slices.SortStableFunc(out, func(a, b Run) int {
		if a.Start != b.Start {
			return a.Start - b.Start
		}
		return int(a.Format.Kind) - int(b.Format.Kind)
	})
	return out
}

// Equal reports whether both tables hold identical runs.
func (t *Table) Equal(other *Table) bool {
	for k := range t.runs {
		if !equalRuns(t.runs[k], other.runs[k]) {
			return false
		}
	}
	return true
}

// At returns the formats whose runs cover pos. A run [s, e) covers pos
// iff s <= pos < e, so nothing is reported one past a run's end.
func (t *Table) At(pos int) Set {
	var s Set
	for k := range t.runs {
		runs := t.runs[k]
		i := sort.Search(len(runs), func(i int) bool { return runs[i].End > pos })
		if i < len(runs) && runs[i].Start <= pos {
			s.Add(runs[i].Format)
		}
	}
	return s
}

// Covers reports whether every character in [start, end) carries f with
// the same value. An empty range is never covered.
func (t *Table) Covers(f Format, start, end int) bool {
	if start >= end || !f.Kind.Valid() {
		return false
	}
	runs := t.runs[f.Kind]
	i := sort.Search(len(runs), func(i int) bool { return runs[i].End > start })
	if i == len(runs) {
		return false
	}
	r := runs[i]
	return r.Start <= start && r.End >= end && r.Format.Value == f.Value
}

// Slice returns the runs overlapping [start, end), clipped to the range and
// rebased so that start becomes 0.
func (t *Table) Slice(start, end int) []Run {
	var out []Run
	for k := range t.runs {
		runs := t.runs[k]
		i := sort.Search(len(runs), func(i int) bool { return runs[i].End > start })
		for ; i < len(runs) && runs[i].Start < end; i++ {
			r := runs[i]
			r.Start = max(r.Start, start) - start
			r.End = min(r.End, end) - start
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b Run) int { return a.Start - b.Start })
	return out
}

// touching returns the window [lo, hi) of runs that overlap or abut
// [start, end].
func touching(runs []Run, start, end int) (int, int) {
	lo := sort.Search(len(runs), func(i int) bool { return runs[i].End >= start })
	hi := lo
	for hi < len(runs) && runs[hi].Start <= end {
		hi++
	}
	return lo, hi
}

// Apply activates f across [start, end). Runs of the same kind that overlap
// or abut the range are merged when their value matches and trimmed when it
// differs. Other kinds are untouched.
func (t *Table) Apply(f Format, start, end int) Patch {
	if start >= end || !f.Kind.Valid() {
		return Patch{}
	}
	runs := t.runs[f.Kind]
	lo, hi := touching(runs, start, end)
	window := runs[lo:hi]

	added := make([]Run, 0, len(window)+1)
	for _, r := range window {
		if r.Start < start {
			r.End = min(r.End, start)
			added = append(added, r)
		}
	}
	added = append(added, Run{Start: start, End: end, Format: f})
	for _, r := range window {
		if r.End > end {
			r.Start = max(r.Start, end)
			added = append(added, r)
		}
	}
	return t.record(f.Kind, lo, window, mergeAdjacent(added), 0)
}

// Remove clears kind across [start, end). Portions of runs outside the
// range keep the format.
func (t *Table) Remove(kind Kind, start, end int) Patch {
	if start >= end || !kind.Valid() {
		return Patch{}
	}
	runs := t.runs[kind]
	lo := sort.Search(len(runs), func(i int) bool { return runs[i].End > start })
	hi := lo
	for hi < len(runs) && runs[hi].Start < end {
		hi++
	}
	if lo == hi {
		return Patch{}
	}
	window := runs[lo:hi]

	var added []Run
	for _, r := range window {
		if r.Start < start {
			left := r
			left.End = start
			added = append(added, left)
		}
		if r.End > end {
			right := r
			right.Start = end
			added = append(added, right)
		}
	}
	return t.record(kind, lo, window, added, 0)
}

// Clear removes every format across [start, end).
func (t *Table) Clear(start, end int) Patch {
	var p Patch
	for k := Kind(0); k < kindCount; k++ {
		p = p.Then(t.Remove(k, start, end))
	}
	return p
}

// InsertText adjusts runs for n characters inserted at pos. Runs at or
// after pos shift right; a run ending exactly at pos, or containing it,
// grows to cover the new text.
func (t *Table) InsertText(pos, n int) Patch {
	if n <= 0 {
		return Patch{}
	}
	var p Patch
	for k := Kind(0); k < kindCount; k++ {
		runs := t.runs[k]
		lo := sort.Search(len(runs), func(i int) bool { return runs[i].End >= pos })
		if lo == len(runs) {
			continue
		}
		hi := lo
		var added []Run
		if runs[lo].Start < pos {
			r := runs[lo]
			r.End += n
			added = []Run{r}
			hi = lo + 1
		}
		p = p.Then(t.record(k, lo, runs[lo:hi], added, n))
	}
	return p
}

// DeleteText adjusts runs for the removal of [start, end). Boundaries
// inside the range collapse to start, boundaries after it shift left,
// emptied runs disappear and newly touching equal runs merge.
func (t *Table) DeleteText(start, end int) Patch {
	if start >= end {
		return Patch{}
	}
	d := end - start
	remap := func(x int) int {
		switch {
		case x <= start:
			return x
		case x >= end:
			return x - d
		default:
			return start
		}
	}

	var p Patch
	for k := Kind(0); k < kindCount; k++ {
		runs := t.runs[k]
		lo, hi := touching(runs, start, end)
		if lo == len(runs) {
			continue
		}
		window := runs[lo:hi]
		added := make([]Run, 0, len(window))
		for _, r := range window {
			r.Start, r.End = remap(r.Start), remap(r.End)
			if r.Start < r.End {
				added = append(added, r)
			}
		}
		p = p.Then(t.record(k, lo, window, mergeAdjacent(added), -d))
	}
	return p
}

// Validate checks the table invariants against a text of the given length:
// every run is non-empty and inside [0, length], runs of one kind are
// sorted and disjoint, and touching runs never share a value.
func (t *Table) Validate(length int) error {
	for k := range t.runs {
		runs := t.runs[k]
		for i, r := range runs {
			if r.Format.Kind != Kind(k) {
				return fmt.Errorf("run %s filed under %s", r, Kind(k))
			}
			if r.Start < 0 || r.Start >= r.End || r.End > length {
				return fmt.Errorf("run %s out of bounds for length %d", r, length)
			}
			if i == 0 {
				continue
			}
			prev := runs[i-1]
			if r.Start < prev.End {
				return fmt.Errorf("runs %s and %s overlap", prev, r)
			}
			if r.Start == prev.End && r.Format.Value == prev.Format.Value {
				return fmt.Errorf("runs %s and %s are not merged", prev, r)
			}
		}
	}
	return nil
}
