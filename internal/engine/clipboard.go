package engine

import (
	"fmt"

	"github.com/dshills/scribe/internal/codec"
	"github.com/dshills/scribe/internal/engine/block"
	"github.com/dshills/scribe/internal/engine/content"
	"github.com/dshills/scribe/internal/engine/selection"
)

// ClipboardData is the plain-text and HTML form of a range.
type ClipboardData struct {
	Text string
	HTML string
}

// sliceContent returns [start, end) of m rebased to start at 0.
func sliceContent(m *model, start, end int) content.Content {
	s, _ := m.text.Slice(start, end)
	return content.Content{
		Text:   s,
		Runs:   m.formats.Slice(start, end),
		Blocks: m.blocks.Slice(start, end),
	}
}

func clipboardOf(m *model, start, end int) ClipboardData {
	if start >= end {
		return ClipboardData{}
	}
	c := sliceContent(m, start, end)
	return ClipboardData{Text: codec.EncodeText(c), HTML: codec.EncodeHTML(c)}
}

// Copy returns the selected range as plain text and HTML.
func (d *Document) Copy() (ClipboardData, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.destroyed {
		return ClipboardData{}, ErrDestroyed
	}
	return clipboardOf(d.m, d.m.sel.Start(), d.m.sel.End()), nil
}

// Cut returns the selected range like Copy and deletes it as one undoable
// edit.
func (d *Document) Cut() (ClipboardData, error) {
	var data ClipboardData
	err := d.mutate("cut", func(e *edit) error {
		start, end := e.m.sel.Start(), e.m.sel.End()
		data = clipboardOf(e.m, start, end)
		return e.delete(start, end)
	})
	return data, err
}

// PasteHTML replaces the selection with the parsed fragment as one undoable
// edit and leaves a caret after it. Formats come from the fragment only;
// its block types are applied when it has more than one block or a block
// other than a paragraph.
func (d *Document) PasteHTML(s string) error {
	c, err := codec.DecodeHTML(s)
	if err != nil {
		return serializationError(codec.FormatHTML, err)
	}
	retype := len(c.Blocks) > 1 || (len(c.Blocks) == 1 && c.Blocks[0].Type != block.Paragraph)
	return d.paste(c, retype)
}

// PastePlainText replaces the selection with unformatted text as one
// undoable edit. Line endings are normalised to "\n".
func (d *Document) PastePlainText(s string) error {
	c, err := codec.DecodeText(s)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidText, err)
	}
	return d.paste(content.Content{Text: c.Text}, false)
}

func (d *Document) paste(c content.Content, retype bool) error {
	return d.mutate("paste", func(e *edit) error {
		start, end := e.m.sel.Start(), e.m.sel.End()
		if err := e.delete(start, end); err != nil {
			return err
		}
		if err := e.splice(start, c, retype); err != nil {
			return err
		}
		e.m.sel = selection.Caret(start + c.Len())
		return nil
	})
}
