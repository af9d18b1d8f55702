package engine

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dshills/scribe/internal/codec"
	"github.com/dshills/scribe/internal/engine/block"
	"github.com/dshills/scribe/internal/engine/content"
	"github.com/dshills/scribe/internal/engine/dirty"
	"github.com/dshills/scribe/internal/engine/format"
	"github.com/dshills/scribe/internal/engine/history"
	"github.com/dshills/scribe/internal/engine/selection"
	"github.com/dshills/scribe/internal/engine/text"
	"github.com/dshills/scribe/internal/logging"
)

// Re-export commonly used types for convenience.
type (
	// Format is a single inline style.
	Format = format.Format

	// FormatKind identifies a format dimension.
	FormatKind = format.Kind

	// FormatSet is the collection of formats active at one position.
	FormatSet = format.Set

	// Run is a range carrying one format.
	Run = format.Run

	// BlockType classifies a block.
	BlockType = block.Type

	// Block is a range classified as one structural element.
	Block = block.Block

	// Selection is an anchor/focus pair.
	Selection = selection.Selection

	// Content is a complete document state.
	Content = content.Content

	// OperationInfo describes a history entry.
	OperationInfo = history.OperationInfo
)

// model is the mutable state history commands replay against.
type model struct {
	text    *text.Storage
	formats *format.Table
	blocks  *block.Table
	sel     selection.Selection
	dirty   *dirty.Tracker
	comp    *composition
}

func (m *model) Text() *text.Storage                  { return m.text }
func (m *model) Formats() *format.Table               { return m.formats }
func (m *model) Blocks() *block.Table                 { return m.blocks }
func (m *model) SetSelection(sel selection.Selection) { m.sel = sel.Clamp(m.text.Len()) }

// StepApplied marks the range a step changed as dirty.
func (m *model) StepApplied(s history.Step) {
	start, end, ok := s.Span()
	if !ok {
		return
	}
	switch delta := s.CharsDelta(); {
	case delta > 0:
		m.dirty.Insert(start, delta)
	case delta < 0:
		m.dirty.Delete(start, end)
	default:
		m.dirty.Mark(start, end)
	}
}

func (m *model) content() content.Content {
	return content.Content{
		Text:   m.text.String(),
		Runs:   m.formats.Runs(),
		Blocks: m.blocks.Blocks(),
	}
}

// Document is a rich-text document: text, format runs, blocks, a selection
// and an undo history. Each method call is safe for concurrent use. Batch
// does not lock the document while its callback runs: edits made by other
// goroutines during a batch join its undo entry and its single event.
type Document struct {
	mu sync.RWMutex

	id      string
	m       *model
	history *history.History

	log          *logging.Logger
	maxLength    int
	historyLimit int
	fallback     codec.Fallback
	initial      *content.Content

	revision  uint64
	destroyed bool
	batch     *batchState

	obsMu     sync.RWMutex
	observers map[EventKind][]observer
}

// New creates a document. Without WithContent the document is empty: one
// paragraph block spanning [0, 0].
func New(opts ...Option) (*Document, error) {
	d := &Document{
		id:           uuid.NewString(),
		log:          logging.NullLogger,
		maxLength:    DefaultMaxLength,
		historyLimit: DefaultHistoryLimit,
		fallback:     codec.FallbackDrop,
		observers:    make(map[EventKind][]observer),
	}
	for _, opt := range opts {
		opt(d)
	}

	c := content.Empty()
	if d.initial != nil {
		c = *d.initial
		d.initial = nil
	}
	m, err := newModel(c, d.maxLength)
	if err != nil {
		return nil, err
	}
	d.m = m
	d.history = history.NewHistory(d.historyLimit)
	d.log = d.log.WithComponent("document").WithField("id", d.id)

	registry.add()
	d.log.Debug("created with %d characters and %d blocks", m.text.Len(), m.blocks.Count())
	return d, nil
}

func newModel(c content.Content, maxLength int) (*model, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	if n := c.Len(); n > maxLength {
		return nil, fmt.Errorf("%d characters, limit %d: %w", n, maxLength, ErrMaxLengthExceeded)
	}
	blocks, err := c.BlockTable()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	return &model{
		text:    text.FromString(c.Text),
		formats: c.Formats(),
		blocks:  blocks,
		dirty:   dirty.NewTracker(),
	}, nil
}

// FromContent creates a document holding c.
func FromContent(c content.Content, opts ...Option) (*Document, error) {
	return New(append(opts, WithContent(c))...)
}

// FromJSON creates a document from its JSON form.
func FromJSON(data []byte, opts ...Option) (*Document, error) {
	c, err := codec.DecodeJSON(data)
	if err != nil {
		return nil, serializationError(codec.FormatJSON, err)
	}
	d, err := FromContent(c, opts...)
	if err != nil {
		return nil, serializationError(codec.FormatJSON, err)
	}
	return d, nil
}

// FromHTML creates a document from an HTML fragment.
func FromHTML(s string, opts ...Option) (*Document, error) {
	c, err := codec.DecodeHTML(s)
	if err != nil {
		return nil, serializationError(codec.FormatHTML, err)
	}
	d, err := FromContent(c, opts...)
	if err != nil {
		return nil, serializationError(codec.FormatHTML, err)
	}
	return d, nil
}

// FromMarkdown creates a document from CommonMark text.
func FromMarkdown(s string, opts ...Option) (*Document, error) {
	c, err := codec.DecodeMarkdown(s)
	if err != nil {
		return nil, serializationError(codec.FormatMarkdown, err)
	}
	d, err := FromContent(c, opts...)
	if err != nil {
		return nil, serializationError(codec.FormatMarkdown, err)
	}
	return d, nil
}

// FromText creates a document from plain text, one paragraph per line.
func FromText(s string, opts ...Option) (*Document, error) {
	c, err := codec.DecodeText(s)
	if err != nil {
		return nil, serializationError(codec.FormatText, err)
	}
	d, err := FromContent(c, opts...)
	if err != nil {
		return nil, serializationError(codec.FormatText, err)
	}
	return d, nil
}

// ID returns the document's unique identifier.
func (d *Document) ID() string {
	return d.id
}

// Destroy releases the document. Every later call that can fail returns
// ErrDestroyed, including a second Destroy.
func (d *Document) Destroy() error {
	d.mu.Lock()
	if d.destroyed {
		d.mu.Unlock()
		return ErrDestroyed
	}
	d.destroyed = true
	d.history.Clear()
	d.m = &model{text: text.New(), formats: format.NewTable(), blocks: block.NewTable(0), dirty: dirty.NewTracker()}
	d.mu.Unlock()

	d.obsMu.Lock()
	d.observers = make(map[EventKind][]observer)
	d.obsMu.Unlock()

	registry.remove()
	d.log.Debug("destroyed")
	return nil
}

// IsDestroyed reports whether Destroy has been called.
func (d *Document) IsDestroyed() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.destroyed
}

// ============================================================================
// Queries
// ============================================================================

// Text returns the document text.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.m.text.String()
}

// Snapshot returns the complete document state.
func (d *Document) Snapshot() content.Content {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.m.content()
}

// Runs returns every format run ordered by start.
func (d *Document) Runs() []format.Run {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.m.formats.Runs()
}

// Blocks returns the block partition in order.
func (d *Document) Blocks() []block.Block {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.m.blocks.Blocks()
}

// Len returns the number of characters.
func (d *Document) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.m.text.Len()
}

// IsEmpty reports whether the document has no text.
func (d *Document) IsEmpty() bool {
	return d.Len() == 0
}

// Slice returns the text in [start, end).
func (d *Document) Slice(start, end int) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.destroyed {
		return "", ErrDestroyed
	}
	if err := checkRange(start, end, d.m.text.Len()); err != nil {
		return "", err
	}
	return d.m.text.Slice(start, end)
}

// FormatsAt returns the formats whose runs cover pos. Nothing is reported
// one past the end of a run.
func (d *Document) FormatsAt(pos int) (format.Set, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.destroyed {
		return format.Set{}, ErrDestroyed
	}
	if err := checkPosition(pos, d.m.text.Len()); err != nil {
		return format.Set{}, err
	}
	return d.m.formats.At(pos), nil
}

// BlockTypeAt returns the type of the block covering pos. The document
// length resolves to the last block.
func (d *Document) BlockTypeAt(pos int) (block.Type, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.destroyed {
		return block.Paragraph, ErrDestroyed
	}
	if err := checkPosition(pos, d.m.text.Len()); err != nil {
		return block.Paragraph, err
	}
	return d.m.blocks.TypeAt(pos), nil
}

// Revision returns a counter incremented by every content change.
func (d *Document) Revision() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.revision
}

// ============================================================================
// Selection
// ============================================================================

// Selection returns the current selection.
func (d *Document) Selection() selection.Selection {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.m.sel
}

// SelectedText returns the text covered by the selection.
func (d *Document) SelectedText() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, _ := d.m.text.Slice(d.m.sel.Start(), d.m.sel.End())
	return s
}

// SetSelection sets the anchor and focus. Selection changes are not
// recorded in history.
func (d *Document) SetSelection(anchor, focus int) error {
	return d.selectWith(func(_ selection.Selection, length int) (selection.Selection, error) {
		sel := selection.New(anchor, focus)
		if !sel.Valid(length) {
			return sel, fmt.Errorf("%s for length %d: %w", sel, length, ErrInvalidSelection)
		}
		return sel, nil
	})
}

// SelectAll selects the whole document.
func (d *Document) SelectAll() error {
	return d.selectWith(func(_ selection.Selection, length int) (selection.Selection, error) {
		return selection.New(0, length), nil
	})
}

// CollapseToStart collapses the selection to its start.
func (d *Document) CollapseToStart() error {
	return d.selectWith(func(s selection.Selection, _ int) (selection.Selection, error) {
		return s.CollapseToStart(), nil
	})
}

// CollapseToEnd collapses the selection to its end.
func (d *Document) CollapseToEnd() error {
	return d.selectWith(func(s selection.Selection, _ int) (selection.Selection, error) {
		return s.CollapseToEnd(), nil
	})
}

func (d *Document) selectWith(fn func(cur selection.Selection, length int) (selection.Selection, error)) error {
	d.mu.Lock()
	if d.destroyed {
		d.mu.Unlock()
		return ErrDestroyed
	}
	before := d.m.sel
	sel, err := fn(before, d.m.text.Len())
	if err != nil {
		d.mu.Unlock()
		return err
	}
	d.m.sel = sel
	var events []Event
	if sel != before {
		events = d.noteLocked(false, true)
	}
	d.mu.Unlock()
	d.emit(events)
	return nil
}

// ============================================================================
// History
// ============================================================================

// Undo reverts the most recent edit and restores the selection it was
// made with. It does nothing when there is nothing to undo. A command that
// no longer matches the document yields a *HistoryError.
func (d *Document) Undo() error {
	return d.replay("undo", d.history.CanUndo, d.history.Undo)
}

// Redo re-applies the most recently undone edit.
func (d *Document) Redo() error {
	return d.replay("redo", d.history.CanRedo, d.history.Redo)
}

func (d *Document) replay(op string, can func() bool, run func(history.State) error) error {
	d.mu.Lock()
	if d.destroyed {
		d.mu.Unlock()
		return ErrDestroyed
	}
	if d.batch != nil {
		d.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrBatchActive)
	}
	if d.m.comp != nil {
		d.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrCompositionActive)
	}
	if !can() {
		d.mu.Unlock()
		return nil
	}
	before := d.m.sel
	if err := run(d.m); err != nil {
		d.mu.Unlock()
		d.log.Error("%s failed: %v", op, err)
		return err
	}
	events := d.noteLocked(true, d.m.sel != before)
	d.mu.Unlock()
	d.emit(events)
	return nil
}

// CanUndo reports whether there is an edit to undo.
func (d *Document) CanUndo() bool {
	return d.history.CanUndo()
}

// CanRedo reports whether there is an edit to redo.
func (d *Document) CanRedo() bool {
	return d.history.CanRedo()
}

// UndoCount returns the number of undoable edits.
func (d *Document) UndoCount() int {
	return d.history.UndoCount()
}

// RedoCount returns the number of redoable edits.
func (d *Document) RedoCount() int {
	return d.history.RedoCount()
}

// UndoHistory describes the undo stack, oldest first.
func (d *Document) UndoHistory() []OperationInfo {
	return d.history.UndoInfo()
}

// RedoHistory describes the redo stack, oldest first. The last entry is
// the one Redo applies next.
func (d *Document) RedoHistory() []OperationInfo {
	return d.history.RedoInfo()
}

// NextUndo describes the edit Undo would revert.
func (d *Document) NextUndo() (OperationInfo, bool) {
	return d.history.PeekUndo()
}

// NextRedo describes the edit Redo would apply.
func (d *Document) NextRedo() (OperationInfo, bool) {
	return d.history.PeekRedo()
}

// HistoryLimit returns the maximum number of undo entries.
func (d *Document) HistoryLimit() int {
	return d.history.MaxEntries()
}

// SetHistoryLimit changes the maximum number of undo entries, evicting
// the oldest entries beyond it. Zero disables history.
func (d *Document) SetHistoryLimit(n int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrDestroyed
	}
	d.history.SetMaxEntries(n)
	return nil
}

// ClearHistory empties both history stacks. It fails while a composition
// is in progress.
func (d *Document) ClearHistory() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.destroyed {
		return ErrDestroyed
	}
	if d.m.comp != nil {
		return fmt.Errorf("clear history: %w", ErrCompositionActive)
	}
	d.history.Clear()
	return nil
}
