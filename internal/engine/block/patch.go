package block

import (
	"fmt"
	"slices"
)

// Patch is an exactly invertible change to a Table: the blocks at Index
// are replaced and every later block is shifted by delta.
type Patch struct {
	set     bool
	index   int
	removed []Block
	added   []Block
	delta   int
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return !p.set
}

// Invert returns the patch that undoes p.
func (p Patch) Invert() Patch {
	if !p.set {
		return p
	}
	return Patch{set: true, index: p.index, removed: p.added, added: p.removed, delta: -p.delta}
}

// Span returns the range whose block types the patch changes. A patch that
// carries blocks across inserted or deleted text reports ok false.
func (p Patch) Span() (start, end int, ok bool) {
	if !p.set || p.delta != 0 {
		return 0, 0, false
	}
	removed, added := p.removed, p.added
	for len(removed) > 0 && len(added) > 0 && removed[0] == added[0] {
		removed, added = removed[1:], added[1:]
	}
	for len(removed) > 0 && len(added) > 0 && removed[len(removed)-1] == added[len(added)-1] {
		removed, added = removed[:len(removed)-1], added[:len(added)-1]
	}
	for _, b := range slices.Concat(removed, added) {
		if !ok {
			start, end, ok = b.Start, b.End, true
			continue
		}
		start, end = min(start, b.Start), max(end, b.End)
	}
	return start, end, ok
}

// ApplyPatch replays p against t. The table must be in the state p was
// recorded from; otherwise ErrPatchMismatch is returned and t is unchanged.
func (t *Table) ApplyPatch(p Patch) error {
	if !p.set {
		return nil
	}
	end := p.index + len(p.removed)
	if p.index < 0 || end > len(t.blocks) {
		return fmt.Errorf("window [%d:%d) of %d blocks: %w", p.index, end, len(t.blocks), ErrPatchMismatch)
	}
	if !slices.Equal(t.blocks[p.index:end], p.removed) {
		return fmt.Errorf("blocks at %d: %w", p.index, ErrPatchMismatch)
	}
	t.apply(p)
	return nil
}

func (t *Table) apply(p Patch) {
	blocks := slices.Replace(t.blocks, p.index, p.index+len(p.removed), p.added...)
	if p.delta != 0 {
		for i := p.index + len(p.added); i < len(blocks); i++ {
			blocks[i].Start += p.delta
			blocks[i].End += p.delta
		}
	}
	t.blocks = blocks
}

func (t *Table) record(index int, window, added []Block, delta int) Patch {
	tailEmpty := index+len(window) == len(t.blocks)
	if slices.Equal(window, added) && (delta == 0 || tailEmpty) {
		return Patch{}
	}
	p := Patch{
		set:     true,
		index:   index,
		removed: slices.Clone(window),
		added:   slices.Clone(added),
		delta:   delta,
	}
	t.apply(p)
	return p
}
