// Package text implements the character storage of a document.
//
// Storage wraps an immutable rope and addresses text by character (rune)
// offsets. A document of length n has n+1 valid positions, 0 through n,
// each lying between two characters. Every mutation bumps the storage
// revision, which callers use to detect stale derived data.
//
// Storage does no format or block bookkeeping; the document owns that and
// funnels every change through Insert and Delete.
package text
