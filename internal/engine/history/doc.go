// Package history provides undo/redo for documents.
//
// The history system uses the Command pattern. A Command knows how to
// re-apply and reverse itself against a State (the text, format runs,
// blocks and selection of one document).
//
// # Steps
//
// The document records every primitive change it makes as a Step: a text
// insertion, a text deletion, a format table patch or a block table patch.
// An EditCommand is an ordered list of steps plus the selection before and
// after. Undo replays the inverse steps in reverse order; redo replays the
// steps forward. Each step verifies the state it is applied to, so a
// corrupted history surfaces as an error instead of silently diverging.
//
// # History Stack
//
// The History type manages the undo/redo stacks:
//
//	h := NewHistory(100) // keep at most 100 undo entries
//
//	h.Push(cmd)   // record an already applied command, clears redo
//	h.Undo(state)
//	h.Redo(state)
//
// When the undo stack grows past its limit the oldest entries are dropped.
//
// # Command Grouping
//
// Multiple commands can be grouped as a single undo unit:
//
//	h.BeginGroup("Batch")
//	// ... multiple edits ...
//	h.EndGroup()
//
// CancelGroup discards the group and hands its commands back so the caller
// can revert them.
package history
