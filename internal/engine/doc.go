// Package engine provides the rich-text document engine for scribe.
//
// The engine package serves as the main facade. A Document combines text
// storage, format runs, block structure, a selection and undo/redo history
// into a single API that validates every call before touching state.
//
// # Architecture
//
// The engine is built on several sub-packages:
//
//   - rope: B+ tree rope addressed by character offsets
//   - text: Text Storage over the rope with content validation
//   - format: format kinds, per-kind run tables and invertible patches
//   - block: block types and the partition-preserving block table
//   - selection: anchor/focus selections, their transformation and cursor motions
//   - dirty: changed ranges kept for incremental rendering
//   - history: reversible commands and the bounded undo/redo stacks
//   - content: the plain value exchanged with importers and exporters
//
// # Basic Usage
//
//	d, _ := engine.New()
//	d.InsertText(0, "Hello World")
//	d.ApplyFormat(format.FormatBold, 0, 5)
//
//	html, _ := d.ToHTML() // "<p><strong>Hello</strong> World</p>\n"
//
//	d.Undo() // removes the bold run
//	d.Undo() // removes the text
//
// Offsets are character (Unicode scalar) offsets. Ranges are half open.
//
// # Undo Groups
//
// Batch records several edits as one undo entry and notifies observers
// once:
//
//	d.Batch("title", func() error {
//	    if err := d.InsertText(0, "Title\n"); err != nil {
//	        return err
//	    }
//	    return d.SetBlockType(block.Heading1, 0, 5)
//	})
//
// # Events
//
// On registers a handler for content or selection changes. Handlers run
// synchronously at the end of the call that made the change, once per call.
//
// # Input Methods
//
// StartComposition, UpdateComposition and EndComposition drive an input
// method composition. The composed text is visible to observers as it
// changes and becomes one undo entry when committed; CancelComposition
// reverts it.
//
// # Import and Export
//
// FromJSON, FromHTML, FromMarkdown and FromText build new documents and
// reject malformed input with a *SerializationError. ToJSON is lossless;
// the HTML and Markdown forms are best effort. ToHTMLRange and
// DirtyHTMLRegions render only the lines a range or a recent edit touched.
//
// # Error Handling
//
// The package defines several error kinds, matched with errors.Is:
//
//   - ErrInvalidPosition: offset outside [0, length]
//   - ErrInvalidRange: reversed or out-of-bounds range
//   - ErrInvalidSelection: selection endpoint outside the text
//   - ErrInvalidFormat: unknown format or block type, or a bad value
//   - ErrInvalidText: text with NUL or control characters
//   - ErrMaxLengthExceeded: edit past the configured maximum length
//   - ErrSerialization: malformed import input
//   - ErrHistory: a history command no longer matches the document
//   - ErrDestroyed: call on a destroyed document
//   - ErrBatchActive, ErrCompositionActive: call not allowed inside a batch
//     or a composition
//   - ErrNoComposition: composition call with none in progress
//
// A rejected call leaves the document unchanged.
package engine
