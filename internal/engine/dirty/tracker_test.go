package dirty

import (
	"slices"
	"testing"
)

func TestNewTracker(t *testing.T) {
	tracker := NewTracker()
	if tracker.IsDirty() {
		t.Error("New tracker should not be dirty")
	}
	if tracker.Count() != 0 {
		t.Errorf("Count() = %d, want 0", tracker.Count())
	}
}

func TestTrackerMark(t *testing.T) {
	tests := []struct {
		name  string
		marks []Region
		want  []Region
	}{
		{"single", []Region{{2, 5}}, []Region{{2, 5}}},
		{"reversed bounds", []Region{{5, 2}}, []Region{{2, 5}}},
		{"overlapping merge", []Region{{0, 5}, {3, 8}}, []Region{{0, 8}}},
		{"adjacent merge", []Region{{0, 5}, {5, 7}}, []Region{{0, 7}}},
		{"contained", []Region{{0, 10}, {3, 4}}, []Region{{0, 10}}},
		{"disjoint sorted", []Region{{10, 12}, {0, 2}}, []Region{{0, 2}, {10, 12}}},
		{"bridge", []Region{{0, 2}, {6, 8}, {2, 6}}, []Region{{0, 8}}},
		{"point at edge", []Region{{4, 6}, {6, 6}}, []Region{{4, 6}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewTracker()
			for _, r := range tt.marks {
				tracker.Mark(r.Start, r.End)
			}
			if got := tracker.Regions(); !slices.Equal(got, tt.want) {
				t.Errorf("Regions() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrackerInsert(t *testing.T) {
	tests := []struct {
		name   string
		marked []Region
		pos, n int
		want   []Region
	}{
		{"empty tracker", nil, 3, 2, []Region{{3, 5}}},
		{"before region", []Region{{10, 12}}, 0, 3, []Region{{0, 3}, {13, 15}}},
		{"after region", []Region{{0, 2}}, 5, 1, []Region{{0, 2}, {5, 6}}},
		{"inside region", []Region{{2, 6}}, 4, 2, []Region{{2, 8}}},
		{"at region end", []Region{{2, 6}}, 6, 3, []Region{{2, 9}}},
		{"at region start", []Region{{2, 6}}, 2, 3, []Region{{2, 9}}},
		{"zero length", []Region{{2, 6}}, 4, 0, []Region{{2, 6}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewTracker()
			for _, r := range tt.marked {
				tracker.Mark(r.Start, r.End)
			}
			tracker.Insert(tt.pos, tt.n)
			if got := tracker.Regions(); !slices.Equal(got, tt.want) {
				t.Errorf("Regions() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrackerDelete(t *testing.T) {
	tests := []struct {
		name       string
		marked     []Region
		start, end int
		want       []Region
	}{
		{"empty tracker", nil, 3, 5, []Region{{3, 3}}},
		{"before region", []Region{{10, 12}}, 0, 3, []Region{{0, 0}, {7, 9}}},
		{"after region", []Region{{0, 2}}, 5, 7, []Region{{0, 2}, {5, 5}}},
		{"covers region", []Region{{4, 6}}, 2, 8, []Region{{2, 2}}},
		{"inside region", []Region{{0, 10}}, 2, 4, []Region{{0, 8}}},
		{"region ends inside", []Region{{0, 5}}, 3, 8, []Region{{0, 3}}},
		{"region starts inside", []Region{{5, 10}}, 3, 7, []Region{{3, 6}}},
		{"empty range", []Region{{0, 2}}, 4, 4, []Region{{0, 2}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewTracker()
			for _, r := range tt.marked {
				tracker.Mark(r.Start, r.End)
			}
			tracker.Delete(tt.start, tt.end)
			if got := tracker.Regions(); !slices.Equal(got, tt.want) {
				t.Errorf("Regions() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrackerClear(t *testing.T) {
	tracker := NewTracker()
	tracker.Mark(0, 4)
	tracker.Mark(8, 9)

	tracker.Clear()

	if tracker.IsDirty() {
		t.Error("Tracker should not be dirty after Clear")
	}
	if got := tracker.Regions(); len(got) != 0 {
		t.Errorf("Regions() = %v, want none", got)
	}
}

func TestTrackerRegionsCopy(t *testing.T) {
	tracker := NewTracker()
	tracker.Mark(0, 4)

	got := tracker.Regions()
	got[0].End = 100

	if want := []Region{{0, 4}}; !slices.Equal(tracker.Regions(), want) {
		t.Errorf("Regions() = %v after caller modified copy, want %v", tracker.Regions(), want)
	}
}
