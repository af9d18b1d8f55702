package format

import (
	"slices"
	"sort"
)

// Segment is a maximal span of text with one constant set of formats.
type Segment struct {
	Start   int
	End     int
	Formats Set
}

// Segments partitions [start, end) into spans with constant formatting.
// Spans without any format are included, so the result always covers the
// whole range when start < end.
func (t *Table) Segments(start, end int) []Segment {
	if start >= end {
		return nil
	}
	cuts := []int{start, end}
	for k := range t.runs {
		runs := t.runs[k]
		i := sort.Search(len(runs), func(i int) bool { return runs[i].End > start })
		for ; i < len(runs) && runs[i].Start < end; i++ {
			if runs[i].Start > start {
				cuts = append(cuts, runs[i].Start)
			}
			if runs[i].End < end {
				cuts = append(cuts, runs[i].End)
			}
		}
	}
	slices.Sort(cuts)
	cuts = slices.Compact(cuts)

	segs := make([]Segment, 0, len(cuts)-1)
	for i := 0; i+1 < len(cuts); i++ {
		set := t.At(cuts[i])
		if n := len(segs); n > 0 && segs[n-1].Formats == set {
			segs[n-1].End = cuts[i+1]
			continue
		}
		segs = append(segs, Segment{Start: cuts[i], End: cuts[i+1], Formats: set})
	}
	return segs
}
