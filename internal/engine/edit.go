package engine

import (
	"errors"
	"fmt"

	"github.com/dshills/scribe/internal/engine/block"
	"github.com/dshills/scribe/internal/engine/content"
	"github.com/dshills/scribe/internal/engine/format"
	"github.com/dshills/scribe/internal/engine/history"
	"github.com/dshills/scribe/internal/engine/selection"
	"github.com/dshills/scribe/internal/engine/text"
)

// edit accumulates the steps of one mutation while applying them.
type edit struct {
	m         *model
	maxLength int
	steps     history.Steps
}

func (e *edit) insert(pos int, s string) error {
	if s == "" {
		return nil
	}
	n := text.Count(s)
	if length := e.m.text.Len(); length+n > e.maxLength {
		return fmt.Errorf("insert %d characters into %d, limit %d: %w", n, length, e.maxLength, ErrMaxLengthExceeded)
	}
	if _, err := e.m.text.Insert(pos, s); err != nil {
		return err
	}
	e.record(
		history.InsertStep(pos, s),
		history.FormatStep(e.m.formats.InsertText(pos, n)),
		history.BlockStep(e.m.blocks.InsertText(pos, n)),
	)
	e.m.sel = selection.TransformInsert(e.m.sel, pos, n)
	if c := e.m.comp; c != nil {
		c.rng = selection.TransformInsert(c.rng, pos, n)
	}
	return nil
}

func (e *edit) delete(start, end int) error {
	if start >= end {
		return nil
	}
	removed, err := e.m.text.Delete(start, end)
	if err != nil {
		return err
	}
	e.record(
		history.DeleteStep(start, removed),
		history.FormatStep(e.m.formats.DeleteText(start, end)),
		history.BlockStep(e.m.blocks.DeleteText(start, end)),
	)
	e.m.sel = selection.TransformDelete(e.m.sel, start, end)
	if c := e.m.comp; c != nil {
		c.rng = selection.TransformDelete(c.rng, start, end)
	}
	return nil
}

func (e *edit) format(p format.Patch) {
	e.record(history.FormatStep(p))
}

func (e *edit) block(p block.Patch) {
	e.record(history.BlockStep(p))
}

// record keeps steps that were already applied to the model.
func (e *edit) record(steps ...history.Step) {
	for _, s := range steps {
		e.m.StepApplied(s)
	}
	e.steps = append(e.steps, steps...)
}

// splice inserts c at pos. The inserted range carries exactly c's formats,
// not those it would inherit from a run ending at pos. With retype, c's
// block types are applied to the inserted lines.
func (e *edit) splice(pos int, c content.Content, retype bool) error {
	if err := e.insert(pos, c.Text); err != nil {
		return err
	}
	n := c.Len()
	if n == 0 {
		return nil
	}
	e.format(e.m.formats.Clear(pos, pos+n))
	for _, r := range c.Runs {
		e.format(e.m.formats.Apply(r.Format, pos+r.Start, pos+r.End))
	}
	if retype {
		for _, b := range c.Blocks {
			if b.Start < b.End {
				e.block(e.m.blocks.SetType(b.Type, pos+b.Start, pos+b.End))
			}
		}
	}
	return nil
}

// mutate runs fn as one undoable command. If fn fails, everything it
// applied is reverted and the document is left unchanged. Observers are
// notified after the lock is released.
func (d *Document) mutate(name string, fn func(e *edit) error) error {
	d.mu.Lock()
	if d.destroyed {
		d.mu.Unlock()
		return ErrDestroyed
	}
	before := d.m.sel
	composing := d.m.comp.current()
	e := &edit{m: d.m, maxLength: d.maxLength}
	if err := fn(e); err != nil {
		if rerr := e.steps.Invert().Apply(d.m); rerr != nil {
			d.log.Error("%s: rollback failed: %v", name, rerr)
			err = errors.Join(err, &HistoryError{Op: "rollback", Command: name, Err: rerr})
		}
		d.m.sel = before
		d.m.comp.reset(composing)
		d.mu.Unlock()
		return err
	}

	cmd := history.NewEditCommand(name, e.steps, before, d.m.sel)
	changed := !cmd.IsEmpty()
	if changed {
		d.history.Push(cmd)
	}
	events := d.noteLocked(changed, d.m.sel != before)
	d.mu.Unlock()
	d.emit(events)
	return nil
}

// ============================================================================
// Text
// ============================================================================

// InsertText inserts s at pos. Inserting at the end of a format run extends
// the run; the text joins the block covering pos.
func (d *Document) InsertText(pos int, s string) error {
	return d.mutate("insert", func(e *edit) error {
		if err := text.Validate(s); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidText, err)
		}
		if err := checkPosition(pos, e.m.text.Len()); err != nil {
			return err
		}
		return e.insert(pos, s)
	})
}

// DeleteRange removes [start, end). Runs and blocks that become empty are
// dropped; a collapsed range is a no-op.
func (d *Document) DeleteRange(start, end int) error {
	return d.mutate("delete", func(e *edit) error {
		if err := checkRange(start, end, e.m.text.Len()); err != nil {
			return err
		}
		return e.delete(start, end)
	})
}

// ReplaceRange replaces [start, end) with s as one undoable edit.
func (d *Document) ReplaceRange(start, end int, s string) error {
	return d.mutate("replace", func(e *edit) error {
		if err := text.Validate(s); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidText, err)
		}
		if err := checkRange(start, end, e.m.text.Len()); err != nil {
			return err
		}
		if err := e.delete(start, end); err != nil {
			return err
		}
		return e.insert(start, s)
	})
}

// ============================================================================
// Formats
// ============================================================================

// ParseFormat builds a format from its name and value, for example
// ("bold", "") or ("link", "https://example.com").
func ParseFormat(name, value string) (format.Format, error) {
	f, err := format.Parse(name, value)
	if err != nil {
		return format.Format{}, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	return f, nil
}

// ParseFormatKind parses a format name.
func ParseFormatKind(name string) (format.Kind, error) {
	k, err := format.ParseKind(name)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	return k, nil
}

// ParseBlockType parses a block type name such as "heading1".
func ParseBlockType(name string) (block.Type, error) {
	t, err := block.ParseType(name)
	if err != nil {
		return block.Paragraph, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	return t, nil
}

func validFormat(f format.Format) (format.Format, error) {
	nf, err := format.New(f.Kind, f.Value)
	if err != nil {
		return format.Format{}, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	return nf, nil
}

// ApplyFormat activates f across [start, end). A value format replaces
// differing values inside the range only.
func (d *Document) ApplyFormat(f format.Format, start, end int) error {
	return d.mutate("format "+f.Kind.String(), func(e *edit) error {
		f, err := validFormat(f)
		if err != nil {
			return err
		}
		if err := checkRange(start, end, e.m.text.Len()); err != nil {
			return err
		}
		e.format(e.m.formats.Apply(f, start, end))
		return nil
	})
}

// RemoveFormat clears kind across [start, end). Parts of runs outside the
// range keep the format.
func (d *Document) RemoveFormat(kind format.Kind, start, end int) error {
	return d.mutate("unformat "+kind.String(), func(e *edit) error {
		if !kind.Valid() {
			return fmt.Errorf("%w: %w", ErrInvalidFormat, format.ErrUnknownFormat)
		}
		if err := checkRange(start, end, e.m.text.Len()); err != nil {
			return err
		}
		e.format(e.m.formats.Remove(kind, start, end))
		return nil
	})
}

// ToggleFormat removes f from [start, end) when every character there
// already carries it with the same value, and applies it otherwise.
func (d *Document) ToggleFormat(f format.Format, start, end int) error {
	return d.mutate("toggle "+f.Kind.String(), func(e *edit) error {
		f, err := validFormat(f)
		if err != nil {
			return err
		}
		if err := checkRange(start, end, e.m.text.Len()); err != nil {
			return err
		}
		if e.m.formats.Covers(f, start, end) {
			e.format(e.m.formats.Remove(f.Kind, start, end))
		} else {
			e.format(e.m.formats.Apply(f, start, end))
		}
		return nil
	})
}

// ClearFormats removes every format from [start, end).
func (d *Document) ClearFormats(start, end int) error {
	return d.mutate("clear formats", func(e *edit) error {
		if err := checkRange(start, end, e.m.text.Len()); err != nil {
			return err
		}
		e.format(e.m.formats.Clear(start, end))
		return nil
	})
}

// ============================================================================
// Blocks
// ============================================================================

// SetBlockType assigns t to every block intersecting [start, end),
// splitting boundary blocks. A collapsed range retypes only the block
// containing start.
func (d *Document) SetBlockType(t block.Type, start, end int) error {
	return d.mutate("block "+t.String(), func(e *edit) error {
		if !t.Valid() {
			return fmt.Errorf("%w: %w", ErrInvalidFormat, block.ErrUnknownType)
		}
		if err := checkRange(start, end, e.m.text.Len()); err != nil {
			return err
		}
		e.block(e.m.blocks.SetType(t, start, end))
		return nil
	})
}

// ============================================================================
// Batches
// ============================================================================

type batchState struct {
	scope     *history.GroupScope
	revision  uint64
	selection selection.Selection
	content   bool
	selected  bool
}

// Batch runs fn and records every edit it makes as one undo entry.
// Observers are notified once when fn returns. If fn returns an error, its
// edits are reverted and the error is returned. Nested calls run fn
// inside the outer batch. The document stays unlocked while fn runs, so
// callers that need the batch to hold only their own edits must not edit
// the document from other goroutines until Batch returns.
func (d *Document) Batch(name string, fn func() error) error {
	d.mu.Lock()
	if d.destroyed {
		d.mu.Unlock()
		return ErrDestroyed
	}
	if d.batch != nil {
		d.mu.Unlock()
		return fn()
	}
	if d.m.comp != nil {
		d.mu.Unlock()
		return fmt.Errorf("batch %s: %w", name, ErrCompositionActive)
	}
	b := &batchState{
		scope:     d.history.GroupScope(name),
		revision:  d.revision,
		selection: d.m.sel,
	}
	d.batch = b
	d.mu.Unlock()

	err := fn()

	d.mu.Lock()
	d.batch = nil
	if err != nil {
		cmds := b.scope.Cancel()
		for i := len(cmds) - 1; i >= 0; i-- {
			if uerr := cmds[i].Undo(d.m); uerr != nil {
				d.log.Error("batch %s: rollback failed: %v", name, uerr)
				err = errors.Join(err, &HistoryError{Op: "rollback", Command: cmds[i].Description(), Err: uerr})
				break
			}
		}
		d.m.sel = b.selection
		d.revision = b.revision
		d.mu.Unlock()
		return err
	}
	b.scope.End()

	var events []Event
	if b.content {
		events = append(events, d.eventLocked(EventContentChanged))
	}
	if b.selected && d.m.sel != b.selection {
		events = append(events, d.eventLocked(EventSelectionChanged))
	}
	d.mu.Unlock()
	d.emit(events)
	return nil
}
