package content

import (
	"strings"
	"unicode/utf8"

	"github.com/dshills/scribe/internal/engine/block"
	"github.com/dshills/scribe/internal/engine/format"
)

// Builder assembles content block by block. Each block after the first is
// separated from the previous one by a newline that belongs to the
// previous block.
type Builder struct {
	sb     strings.Builder
	n      int
	runs   []format.Run
	blocks []block.Block

	open  bool
	start int
	typ   block.Type
}

// Len returns the number of characters written so far.
func (b *Builder) Len() int {
	return b.n
}

// StartBlock closes the current block, if any, and opens a new one.
func (b *Builder) StartBlock(t block.Type) {
	if b.open {
		b.writeRaw("\n")
		b.closeBlock()
	}
	b.open = true
	b.start = b.n
	b.typ = t
}

// Retype changes the type of the open block.
func (b *Builder) Retype(t block.Type) {
	b.typ = t
}

// CurrentType returns the type of the open block.
func (b *Builder) CurrentType() block.Type {
	return b.typ
}

// BlockIsEmpty reports whether the open block has no characters yet.
func (b *Builder) BlockIsEmpty() bool {
	return !b.open || b.n == b.start
}

// WriteText appends s carrying every format in set. Text written before
// any StartBlock goes into a paragraph.
func (b *Builder) WriteText(s string, set format.Set) {
	if s == "" {
		return
	}
	if !b.open {
		b.StartBlock(block.Paragraph)
	}
	start := b.n
	b.writeRaw(s)
	for _, f := range set.Formats() {
		b.runs = append(b.runs, format.Run{Start: start, End: b.n, Format: f})
	}
}

// WriteLineBreak appends a newline inside the open block.
func (b *Builder) WriteLineBreak() {
	if !b.open {
		b.StartBlock(block.Paragraph)
	}
	b.writeRaw("\n")
}

func (b *Builder) writeRaw(s string) {
	b.sb.WriteString(s)
	b.n += utf8.RuneCountInString(s)
}

func (b *Builder) closeBlock() {
	b.blocks = append(b.blocks, block.Block{Start: b.start, End: b.n, Type: b.typ})
	b.open = false
}

// Build finishes the content. Trailing empty blocks are dropped together
// with the newlines that separated them.
func (b *Builder) Build() Content {
	if b.open {
		b.closeBlock()
	}
	txt := b.sb.String()
	blocks := b.blocks

	for len(blocks) > 1 && blocks[len(blocks)-1].Start == blocks[len(blocks)-1].End {
		blocks = blocks[:len(blocks)-1]
		blocks[len(blocks)-1].End--
		txt = strings.TrimSuffix(txt, "\n")
	}
	n := utf8.RuneCountInString(txt)
	if len(blocks) == 0 {
		blocks = []block.Block{{Start: 0, End: n, Type: block.Paragraph}}
	}

	runs := make([]format.Run, 0, len(b.runs))
	for _, r := range b.runs {
		r.End = min(r.End, n)
		if r.Start < r.End {
			runs = append(runs, r)
		}
	}
	return Content{
		Text:   txt,
		Runs:   format.FromRuns(runs).Runs(),
		Blocks: blocks,
	}
}
