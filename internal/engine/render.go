package engine

import (
	"github.com/dshills/scribe/internal/codec"
	"github.com/dshills/scribe/internal/engine/dirty"
	"github.com/dshills/scribe/internal/engine/selection"
)

// DirtyRange is a range changed since the dirty flags were last cleared.
// A range with Start == End marks where text was removed.
type DirtyRange = dirty.Region

// DirtyHTML is the HTML of the lines covering one or more dirty ranges.
type DirtyHTML struct {
	Start int
	End   int
	HTML  string
}

// ToHTMLRange renders the lines that intersect [start, end) as HTML. A
// collapsed range renders the line holding start.
func (d *Document) ToHTMLRange(start, end int) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.destroyed {
		return "", ErrDestroyed
	}
	if err := checkRange(start, end, d.m.text.Len()); err != nil {
		return "", err
	}
	lo, hi := lineSpan([]rune(d.m.text.String()), start, end)
	return codec.EncodeHTML(sliceContent(d.m, lo, hi)), nil
}

// HasDirtyRegions reports whether anything changed since the last
// ClearDirtyFlags.
func (d *Document) HasDirtyRegions() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.m.dirty.IsDirty()
}

// DirtyRegions returns the changed ranges in document order. Edits, undo
// and redo all mark the ranges they touch.
func (d *Document) DirtyRegions() []DirtyRange {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.m.dirty.Regions()
}

// ClearDirtyFlags forgets every dirty range, typically after the caller
// has re-rendered them.
func (d *Document) ClearDirtyFlags() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.m.dirty.Clear()
}

// DirtyHTMLRegions renders the lines covering each dirty range. Ranges
// that share a line are rendered once.
func (d *Document) DirtyHTMLRegions() ([]DirtyHTML, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.destroyed {
		return nil, ErrDestroyed
	}
	text := []rune(d.m.text.String())
	var out []DirtyHTML
	for _, r := range d.m.dirty.Regions() {
		lo, hi := lineSpan(text, min(r.Start, len(text)), min(r.End, len(text)))
		if n := len(out); n > 0 && lo <= out[n-1].End {
			out[n-1].End = max(out[n-1].End, hi)
			continue
		}
		out = append(out, DirtyHTML{Start: lo, End: hi})
	}
	for i := range out {
		out[i].HTML = codec.EncodeHTML(sliceContent(d.m, out[i].Start, out[i].End))
	}
	return out, nil
}

// lineSpan widens [start, end) to the lines it intersects.
func lineSpan(text []rune, start, end int) (int, int) {
	last := start
	if end > start {
		last = end - 1
	}
	return selection.LineStart(text, start), selection.LineEnd(text, last)
}
