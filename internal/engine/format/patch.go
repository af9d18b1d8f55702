package format

import (
	"errors"
	"fmt"
	"slices"
)

// ErrPatchMismatch is returned when a patch is applied to a table whose
// state differs from the one the patch was recorded against.
var ErrPatchMismatch = errors.New("format patch does not match table state")

// edit replaces removed with added at index in one kind's run list and
// shifts every run after the window by delta.
type edit struct {
	kind    Kind
	index   int
	removed []Run
	added   []Run
	delta   int
}

func (e edit) invert() edit {
	return edit{kind: e.kind, index: e.index, removed: e.added, added: e.removed, delta: -e.delta}
}

// Patch is an exactly invertible change to a Table.
type Patch struct {
	edits []edit
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return len(p.edits) == 0
}

// Invert returns the patch that undoes p.
func (p Patch) Invert() Patch {
	inv := make([]edit, len(p.edits))
	for i, e := range p.edits {
		inv[len(p.edits)-1-i] = e.invert()
	}
	return Patch{edits: inv}
}

// Then returns a patch that applies p followed by next.
func (p Patch) Then(next Patch) Patch {
	if next.IsEmpty() {
		return p
	}
	if p.IsEmpty() {
		return next
	}
	edits := make([]edit, 0, len(p.edits)+len(next.edits))
	edits = append(edits, p.edits...)
	edits = append(edits, next.edits...)
	return Patch{edits: edits}
}

// Kinds returns the kinds the patch touches, without duplicates.
func (p Patch) Kinds() []Kind {
	var seen uint16
	var kinds []Kind
	for _, e := range p.edits {
		if seen&(1<<e.kind) == 0 {
			seen |= 1 << e.kind
			kinds = append(kinds, e.kind)
		}
	}
	return kinds
}

// Span returns the range whose formats the patch changes. Edits that only
// carry runs across inserted or deleted text are left out; ok is false when
// no other edit remains.
func (p Patch) Span() (start, end int, ok bool) {
	for _, e := range p.edits {
		if e.delta != 0 {
			continue
		}
		removed, added := e.removed, e.added
		for len(removed) > 0 && len(added) > 0 && removed[0] == added[0] {
			removed, added = removed[1:], added[1:]
		}
		for len(removed) > 0 && len(added) > 0 && removed[len(removed)-1] == added[len(added)-1] {
			removed, added = removed[:len(removed)-1], added[:len(added)-1]
		}
		for _, r := range slices.Concat(removed, added) {
			if !ok {
				start, end, ok = r.Start, r.End, true
				continue
			}
			start, end = min(start, r.Start), max(end, r.End)
		}
	}
	return start, end, ok
}

// ApplyPatch replays p against t. The table must be in the state p was
// recorded from; otherwise ErrPatchMismatch is returned and t is left
// unchanged.
func (t *Table) ApplyPatch(p Patch) error {
	for i, e := range p.edits {
		if err := t.check(e); err != nil {
			for j := i - 1; j >= 0; j-- {
				t.apply(p.edits[j].invert())
			}
			return err
		}
		t.apply(e)
	}
	return nil
}

func (t *Table) check(e edit) error {
	if !e.kind.Valid() {
		return fmt.Errorf("kind %d: %w", e.kind, ErrPatchMismatch)
	}
	runs := t.runs[e.kind]
	end := e.index + len(e.removed)
	if e.index < 0 || end > len(runs) {
		return fmt.Errorf("%s window [%d:%d) of %d runs: %w", e.kind, e.index, end, len(runs), ErrPatchMismatch)
	}
	if !equalRuns(runs[e.index:end], e.removed) {
		return fmt.Errorf("%s runs at %d: %w", e.kind, e.index, ErrPatchMismatch)
	}
	return nil
}

func (t *Table) apply(e edit) {
	runs := slices.Replace(t.runs[e.kind], e.index, e.index+len(e.removed), e.added...)
	if e.delta != 0 {
		for i := e.index + len(e.added); i < len(runs); i++ {
			runs[i] = runs[i].shifted(e.delta)
		}
	}
	t.runs[e.kind] = runs
}

// record applies a window replacement and returns it as a patch. window
// aliases the table and is copied before the table changes.
func (t *Table) record(kind Kind, index int, window, added []Run, delta int) Patch {
	tailEmpty := index+len(window) == len(t.runs[kind])
	if equalRuns(window, added) && (delta == 0 || tailEmpty) {
		return Patch{}
	}
	e := edit{
		kind:    kind,
		index:   index,
		removed: slices.Clone(window),
		added:   slices.Clone(added),
		delta:   delta,
	}
	t.apply(e)
	return Patch{edits: []edit{e}}
}
