package format

import "fmt"

// Run is a half-open character range [Start, End) carrying one format.
type Run struct {
	Start  int
	End    int
	Format Format
}

// Len returns the number of characters the run covers.
func (r Run) Len() int {
	return r.End - r.Start
}

// IsEmpty reports whether the run covers nothing.
func (r Run) IsEmpty() bool {
	return r.Start >= r.End
}

// Contains reports whether pos lies inside the run. A run never covers its
// own end position.
func (r Run) Contains(pos int) bool {
	return pos >= r.Start && pos < r.End
}

// String returns a debug representation.
func (r Run) String() string {
	return fmt.Sprintf("%s[%d:%d)", r.Format, r.Start, r.End)
}

// shifted returns the run moved by delta.
func (r Run) shifted(delta int) Run {
	r.Start += delta
	r.End += delta
	return r
}

// mergeAdjacent folds touching or overlapping neighbours that share a
// value. runs must be sorted by Start and share one kind.
func mergeAdjacent(runs []Run) []Run {
	if len(runs) < 2 {
		return runs
	}
	out := runs[:1]
	for _, r := range runs[1:] {
		last := &out[len(out)-1]
		if r.Start <= last.End && r.Format.Value == last.Format.Value {
			if r.End > last.End {
				last.End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

func equalRuns(a, b []Run) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
