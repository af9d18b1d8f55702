// Package selection provides the anchor/focus selection of a document and
// the rules for moving it across edits.
//
// A Selection is an immutable value. Anchor is where the selection started
// and Focus is where it currently ends; Focus may precede Anchor for a
// backward selection. When both are equal the selection is collapsed to a
// caret.
package selection
