// Package rope provides an immutable rope data structure for document text.
//
// A rope is a balanced tree where leaf nodes contain text chunks and internal
// nodes store aggregated metrics (byte, character, UTF-16 and line counts).
// This implementation uses a B+ tree variant for cache locality and
// predictable worst-case performance.
//
// All positions are character offsets: the number of Unicode scalar values
// before the position. A rope of n characters has n+1 valid positions.
//
// Key features:
//   - O(log n) insertion, deletion, and access operations
//   - Immutable operations return new ropes; originals are never modified
//   - Copy-on-write semantics enable cheap snapshots for undo
//
// Basic usage:
//
//	r := rope.FromString("héllo world")
//	r = r.Insert(5, ",")           // "héllo, world"
//	r = r.Delete(0, 7)             // "world"
//	text := r.String()             // "world"
package rope
