// Package block implements the block structure of a document.
//
// The Table partitions the whole text into contiguous blocks, each with a
// Type such as paragraph or heading. Blocks never overlap and leave no
// gaps; an empty document has a single empty paragraph. A block may span
// several lines, all of which share its type.
//
// As with format runs, every mutating method returns an invertible Patch.
package block
