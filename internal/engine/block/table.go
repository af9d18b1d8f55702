package block

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

// Errors returned by table operations.
var (
	ErrInvalidPartition = errors.New("blocks do not partition the text")
	ErrPatchMismatch    = errors.New("block patch does not match table state")
)

// Block is a half-open character range [Start, End) with one type.
type Block struct {
	Start int
	End   int
	Type  Type
}

// Len returns the number of characters in the block.
func (b Block) Len() int {
	return b.End - b.Start
}

// String returns a debug representation.
func (b Block) String() string {
	return fmt.Sprintf("%s[%d:%d)", b.Type, b.Start, b.End)
}

// Table partitions a text into blocks.
type Table struct {
	blocks []Block
}

// NewTable creates a table covering length characters with one paragraph.
func NewTable(length int) *Table {
	return &Table{blocks: []Block{{Start: 0, End: length, Type: Paragraph}}}
}

// FromBlocks builds a table from blocks in any order. The blocks must
// partition [0, length]; an empty list yields a single paragraph.
func FromBlocks(blocks []Block, length int) (*Table, error) {
	if len(blocks) == 0 {
		return NewTable(length), nil
	}
	t := &Table{blocks: slices.Clone(blocks)}
	slices.SortFunc(t.blocks, func(a, b Block) int { return a.Start - b.Start })
	if err := t.Validate(length); err != nil {
		return nil, err
	}
	return t, nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	return &Table{blocks: slices.Clone(t.blocks)}
}

// Count returns the number of blocks.
func (t *Table) Count() int {
	return len(t.blocks)
}

// Blocks returns a copy of the blocks in document order.
func (t *Table) Blocks() []Block {
	return slices.Clone(t.blocks)
}

// Block returns the block at index i.
func (t *Table) Block(i int) Block {
	return t.blocks[i]
}

// Equal reports whether both tables hold identical blocks.
func (t *Table) Equal(other *Table) bool {
	return slices.Equal(t.blocks, other.blocks)
}

// IndexAt returns the index of the block covering pos. A position equal to
// the text length resolves to the last block.
func (t *Table) IndexAt(pos int) int {
	i := sort.Search(len(t.blocks), func(i int) bool { return t.blocks[i].End > pos })
	if i == len(t.blocks) {
		return len(t.blocks) - 1
	}
	return i
}

// TypeAt returns the type of the block covering pos.
func (t *Table) TypeAt(pos int) Type {
	return t.blocks[t.IndexAt(pos)].Type
}

// Slice returns the blocks overlapping [start, end), clipped to the range
// and rebased so that start becomes 0. A collapsed range yields the single
// containing block with zero length.
func (t *Table) Slice(start, end int) []Block {
	if start >= end {
		b := t.blocks[t.IndexAt(start)]
		return []Block{{Type: b.Type}}
	}
	var out []Block
	for i := t.IndexAt(start); i < len(t.blocks) && t.blocks[i].Start < end; i++ {
		b := t.blocks[i]
		b.Start = max(b.Start, start) - start
		b.End = min(b.End, end) - start
		if b.Start < b.End {
			out = append(out, b)
		}
	}
	return out
}

// InsertText grows the block covering pos by n characters and shifts the
// blocks after it.
func (t *Table) InsertText(pos, n int) Patch {
	if n <= 0 {
		return Patch{}
	}
	i := t.IndexAt(pos)
	b := t.blocks[i]
	b.End += n
	return t.record(i, t.blocks[i:i+1], []Block{b}, n)
}

// DeleteText adjusts blocks for the removal of [start, end). Boundaries
// inside the range collapse to start, boundaries after it shift left, and
// blocks left empty are dropped. Surviving blocks keep their types.
// Deleting everything leaves a single empty paragraph.
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

	lo := sort.Search(len(t.blocks), func(i int) bool { return t.blocks[i].End >= start })
	hi := lo
	for hi < len(t.blocks) && t.blocks[hi].Start <= end {
		hi++
	}
	window := t.blocks[lo:hi]

	added := make([]Block, 0, len(window))
	for _, b := range window {
		nb := Block{Start: remap(b.Start), End: remap(b.End), Type: b.Type}
		if nb.Start < nb.End {
			added = append(added, nb)
		}
	}

	if len(added) == 0 && lo == 0 && hi == len(t.blocks) {
		added = []Block{{Start: 0, End: 0, Type: Paragraph}}
	}
	return t.record(lo, window, added, -d)
}

// SetType assigns typ to every block intersecting [start, end). Boundary
// blocks are split so their untouched parts keep the old type, and adjacent
// blocks of type typ are merged. A collapsed range retypes only the block
// containing start.
func (t *Table) SetType(typ Type, start, end int) Patch {
	if !typ.Valid() {
		return Patch{}
	}
	if start >= end {
		i := t.IndexAt(start)
		start, end = t.blocks[i].Start, t.blocks[i].End
		if start == end {
			return t.record(i, t.blocks[i:i+1], []Block{{Start: start, End: end, Type: typ}}, 0)
		}
	}

	first := t.IndexAt(start)
	last := first
	for last+1 < len(t.blocks) && t.blocks[last+1].Start < end {
		last++
	}
	lo, hi := first, last+1
	if lo > 0 {
		lo--
	}
	if hi < len(t.blocks) {
		hi++
	}
	window := t.blocks[lo:hi]

	added := make([]Block, 0, len(window)+2)
	for i := lo; i < first; i++ {
		added = append(added, t.blocks[i])
	}
	if b := t.blocks[first]; b.Start < start {
		added = append(added, Block{Start: b.Start, End: start, Type: b.Type})
	}
	added = append(added, Block{Start: start, End: end, Type: typ})
	if b := t.blocks[last]; b.End > end {
		added = append(added, Block{Start: end, End: b.End, Type: b.Type})
	}
	for i := last + 1; i < hi; i++ {
		added = append(added, t.blocks[i])
	}

	merged := added[:1]
	for _, b := range added[1:] {
		prev := &merged[len(merged)-1]
		if prev.Type == typ && b.Type == typ && prev.End == b.Start {
			prev.End = b.End
			continue
		}
		merged = append(merged, b)
	}
	return t.record(lo, window, merged, 0)
}

// Validate checks the partition invariant against a text of the given
// length.
func (t *Table) Validate(length int) error {
	if len(t.blocks) == 0 {
		return fmt.Errorf("no blocks: %w", ErrInvalidPartition)
	}
	if length == 0 && len(t.blocks) == 1 && t.blocks[0].Start == 0 && t.blocks[0].End == 0 {
		return nil
	}
	pos := 0
	for _, b := range t.blocks {
		if !b.Type.Valid() {
			return fmt.Errorf("block %s: %w", b, ErrUnknownType)
		}
		if b.Start != pos || b.End <= b.Start {
			return fmt.Errorf("block %s at %d: %w", b, pos, ErrInvalidPartition)
		}
		pos = b.End
	}
	if pos != length {
		return fmt.Errorf("blocks end at %d, text length %d: %w", pos, length, ErrInvalidPartition)
	}
	return nil
}
