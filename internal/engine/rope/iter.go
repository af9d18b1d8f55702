package rope

// ChunkIterator iterates over the chunks of a rope in order.
type ChunkIterator struct {
	stack  []iterFrame
	chunk  Chunk
	offset int
	next   int
}

type iterFrame struct {
	node  *Node
	index int
}

// Chunks returns an iterator over the rope's chunks.
func (r Rope) Chunks() *ChunkIterator {
	it := &ChunkIterator{}
	if r.root != nil {
		it.stack = []iterFrame{{node: r.root}}
	}
	return it
}

// Next advances to the next chunk. Returns false when exhausted.
func (it *ChunkIterator) Next() bool {
	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		if top.node.IsLeaf() {
			if top.index < len(top.node.chunks) {
				it.chunk = top.node.chunks[top.index]
				top.index++
				it.offset = it.next
				it.next += it.chunk.Len()
				return true
			}
		} else if top.index < len(top.node.children) {
			child := top.node.children[top.index]
			top.index++
			it.stack = append(it.stack, iterFrame{node: child})
			continue
		}
		it.stack = it.stack[:len(it.stack)-1]
	}
	return false
}

// Chunk returns the current chunk.
func (it *ChunkIterator) Chunk() Chunk {
	return it.chunk
}

// Offset returns the character offset of the current chunk's start.
func (it *ChunkIterator) Offset() int {
	return it.offset
}

// Each calls fn for every character with its offset, stopping early
// when fn returns false.
func (r Rope) Each(fn func(offset int, ch rune) bool) {
	it := r.Chunks()
	for it.Next() {
		offset := it.Offset()
		for _, ch := range it.Chunk().String() {
			if !fn(offset, ch) {
				return
			}
			offset++
		}
	}
}
