package engine

import (
	"github.com/dshills/scribe/internal/engine/selection"
)

// Cursor movements start from the selection's focus. Without extend the
// selection collapses to a caret at the new position; with extend the
// anchor stays and only the focus moves. Movements are not recorded in
// history.

// MoveCursorLeft moves one grapheme cluster back.
func (d *Document) MoveCursorLeft(extend bool) error {
	return d.moveFocus(extend, selection.PrevGrapheme)
}

// MoveCursorRight moves one grapheme cluster forward.
func (d *Document) MoveCursorRight(extend bool) error {
	return d.moveFocus(extend, selection.NextGrapheme)
}

// MoveCursorUp moves to the same column on the previous line, or to the
// start of the document from the first line.
func (d *Document) MoveCursorUp(extend bool) error {
	return d.moveFocus(extend, selection.LineAbove)
}

// MoveCursorDown moves to the same column on the next line, or to the end
// of the document from the last line.
func (d *Document) MoveCursorDown(extend bool) error {
	return d.moveFocus(extend, selection.LineBelow)
}

// MoveToLineStart moves to the start of the current line.
func (d *Document) MoveToLineStart(extend bool) error {
	return d.moveFocus(extend, selection.LineStart)
}

// MoveToLineEnd moves to the end of the current line, before its newline.
func (d *Document) MoveToLineEnd(extend bool) error {
	return d.moveFocus(extend, selection.LineEnd)
}

// MoveToDocumentStart moves to offset 0.
func (d *Document) MoveToDocumentStart(extend bool) error {
	return d.moveFocus(extend, func([]rune, int) int { return 0 })
}

// MoveToDocumentEnd moves past the last character.
func (d *Document) MoveToDocumentEnd(extend bool) error {
	return d.moveFocus(extend, func(text []rune, _ int) int { return len(text) })
}

// MoveByWord moves to the start of the next word, or with forward false to
// the start of the previous one.
func (d *Document) MoveByWord(forward, extend bool) error {
	if forward {
		return d.moveFocus(extend, selection.NextWord)
	}
	return d.moveFocus(extend, selection.PrevWord)
}

func (d *Document) moveFocus(extend bool, motion func(text []rune, pos int) int) error {
	return d.selectWith(func(cur selection.Selection, _ int) (selection.Selection, error) {
		pos := motion([]rune(d.m.text.String()), cur.Focus)
		if extend {
			return cur.Extend(pos), nil
		}
		return selection.Caret(pos), nil
	})
}
