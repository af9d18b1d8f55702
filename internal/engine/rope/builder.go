package rope

import "strings"

// Builder provides efficient incremental construction of a rope.
// It buffers writes and builds the rope structure when Build() is called.
type Builder struct {
	chunks []Chunk
	buffer strings.Builder
}

// WriteString appends a string to the builder.
func (b *Builder) WriteString(s string) {
	if len(s) == 0 {
		return
	}
	b.buffer.WriteString(s)
	if b.buffer.Len() >= MaxChunkSize*2 {
		b.flushBuffer()
	}
}

// WriteRune appends a single character.
func (b *Builder) WriteRune(r rune) {
	b.buffer.WriteRune(r)
	if b.buffer.Len() >= MaxChunkSize*2 {
		b.flushBuffer()
	}
}

func (b *Builder) flushBuffer() {
	if b.buffer.Len() == 0 {
		return
	}
	s := b.buffer.String()
	b.buffer.Reset()
	b.chunks = append(b.chunks, splitIntoChunks(s)...)
}

// Reset clears the builder for reuse.
func (b *Builder) Reset() {
	b.chunks = nil
	b.buffer.Reset()
}

// Build creates the rope from accumulated data and resets the builder.
func (b *Builder) Build() Rope {
	b.flushBuffer()
	chunks := b.chunks
	b.Reset()
	return buildFromChunks(chunks)
}
