package engine

import (
	"fmt"

	"github.com/dshills/scribe/internal/engine/history"
	"github.com/dshills/scribe/internal/engine/selection"
	"github.com/dshills/scribe/internal/engine/text"
)

// composition is an input method composition in progress. rng covers the
// text composed so far; edits elsewhere shift it like the selection.
type composition struct {
	scope  *history.GroupScope
	before selection.Selection
	rng    selection.Selection
}

func (c *composition) current() selection.Selection {
	if c == nil {
		return selection.Selection{}
	}
	return c.rng
}

func (c *composition) reset(rng selection.Selection) {
	if c != nil {
		c.rng = rng
	}
}

// StartComposition begins an input method composition at the selection.
// The first UpdateComposition replaces the selected text. Every update
// until EndComposition is recorded as one undo entry; undo, redo and
// Batch fail with ErrCompositionActive until then.
func (d *Document) StartComposition() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrDestroyed
	}
	if d.batch != nil {
		return fmt.Errorf("start composition: %w", ErrBatchActive)
	}
	if d.m.comp != nil {
		return fmt.Errorf("start composition: %w", ErrCompositionActive)
	}
	d.m.comp = &composition{
		scope:  d.history.GroupScope("compose"),
		before: d.m.sel,
		rng:    selection.New(d.m.sel.Start(), d.m.sel.End()),
	}
	d.log.Debug("composition started at %d", d.m.sel.Start())
	return nil
}

// UpdateComposition replaces the composed text with s and leaves a caret
// after it.
func (d *Document) UpdateComposition(s string) error {
	return d.mutate("compose", func(e *edit) error {
		c := e.m.comp
		if c == nil {
			return ErrNoComposition
		}
		if err := text.Validate(s); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidText, err)
		}
		start, end := c.rng.Start(), c.rng.End()
		if err := e.delete(start, end); err != nil {
			return err
		}
		if err := e.insert(start, s); err != nil {
			return err
		}
		c.rng = selection.New(start, start+text.Count(s))
		e.m.sel = selection.Caret(c.rng.End())
		return nil
	})
}

// EndComposition commits the composed text. The composition's edits
// become a single undo entry.
func (d *Document) EndComposition() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrDestroyed
	}
	c := d.m.comp
	if c == nil {
		return ErrNoComposition
	}
	d.m.comp = nil
	c.scope.End()
	return nil
}

// CancelComposition reverts every edit made since StartComposition and
// restores the selection it started from. Nothing is recorded in history.
func (d *Document) CancelComposition() error {
	d.mu.Lock()
	if d.destroyed {
		d.mu.Unlock()
		return ErrDestroyed
	}
	c := d.m.comp
	if c == nil {
		d.mu.Unlock()
		return ErrNoComposition
	}
	d.m.comp = nil
	sel := d.m.sel

	var err error
	cmds := c.scope.Cancel()
	for i := len(cmds) - 1; i >= 0; i-- {
		if uerr := cmds[i].Undo(d.m); uerr != nil {
			d.log.Error("composition: rollback failed: %v", uerr)
			err = &HistoryError{Op: "rollback", Command: cmds[i].Description(), Err: uerr}
			break
		}
	}
	d.m.sel = c.before
	events := d.noteLocked(len(cmds) > 0, d.m.sel != sel)
	d.mu.Unlock()
	d.emit(events)
	return err
}

// IsComposing reports whether a composition is in progress.
func (d *Document) IsComposing() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.m.comp != nil
}

// CompositionRange returns the range of the text composed so far. ok is
// false when no composition is in progress.
func (d *Document) CompositionRange() (start, end int, ok bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.m.comp == nil {
		return 0, 0, false
	}
	return d.m.comp.rng.Start(), d.m.comp.rng.End(), true
}
