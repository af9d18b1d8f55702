package codec

import (
	"github.com/dshills/scribe/internal/engine/block"
	"github.com/dshills/scribe/internal/engine/content"
	"github.com/dshills/scribe/internal/engine/format"
)

// line is one output element: a line of a block, without its newline.
type line struct {
	start int
	end   int
	typ   block.Type
}

// layout holds content prepared for the line based exporters.
type layout struct {
	runes   []rune
	formats *format.Table
	lines   []line
}

// newLayout splits every block into lines. The newline ending a block that
// is followed by another block separates the two and produces no line.
func newLayout(c content.Content) *layout {
	l := &layout{runes: []rune(c.Text), formats: c.Formats()}
	blocks := c.Blocks
	if len(blocks) == 0 {
		blocks = []block.Block{{Start: 0, End: len(l.runes), Type: block.Paragraph}}
	}
	for i, b := range blocks {
		end := b.End
		if i < len(blocks)-1 && end > b.Start && l.runes[end-1] == '\n' {
			end--
		}
		start := b.Start
		for p := b.Start; p < end; p++ {
			if l.runes[p] == '\n' {
				l.lines = append(l.lines, line{start: start, end: p, typ: b.Type})
				start = p + 1
			}
		}
		l.lines = append(l.lines, line{start: start, end: end, typ: b.Type})
	}
	return l
}

func (l *layout) text(start, end int) string {
	return string(l.runes[start:end])
}

// segments returns the formatting spans of a line.
func (l *layout) segments(ln line) []format.Segment {
	return l.formats.Segments(ln.start, ln.end)
}

// groupStart reports whether lines[i] opens a list or code group.
func (l *layout) groupStart(i int) bool {
	return i == 0 || l.lines[i-1].typ != l.lines[i].typ
}

// groupEnd reports whether lines[i] closes a list or code group.
func (l *layout) groupEnd(i int) bool {
	return i == len(l.lines)-1 || l.lines[i+1].typ != l.lines[i].typ
}
