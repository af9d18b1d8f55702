package engine

import (
	"unicode"

	"github.com/rivo/uniseg"
)

// Approximate per-entry sizes used by MemoryStats.
const (
	runOverhead     = 40
	blockOverhead   = 24
	historyOverhead = 96
)

// MemoryStats summarises the size of a document.
type MemoryStats struct {
	DocumentID      string
	TextLength      int
	TextBytes       int
	RunCount        int
	BlockCount      int
	UndoDepth       int
	RedoDepth       int
	EstimatedBytes  int
	ActiveDocuments int64
}

// MemoryStats returns size information for the document.
func (d *Document) MemoryStats() MemoryStats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	st := MemoryStats{
		DocumentID:      d.id,
		TextLength:      d.m.text.Len(),
		TextBytes:       d.m.text.ByteLen(),
		RunCount:        d.m.formats.Count(),
		BlockCount:      d.m.blocks.Count(),
		UndoDepth:       d.history.UndoCount(),
		RedoDepth:       d.history.RedoCount(),
		ActiveDocuments: ActiveDocuments(),
	}
	st.EstimatedBytes = st.TextBytes +
		st.RunCount*runOverhead +
		st.BlockCount*blockOverhead +
		(st.UndoDepth+st.RedoDepth)*historyOverhead
	return st
}

// WordCount returns the number of Unicode words containing a letter or
// digit.
func (d *Document) WordCount() int {
	return countWords(d.Text())
}

func countWords(s string) int {
	n := 0
	state := -1
	var word string
	for s != "" {
		word, s, state = uniseg.FirstWordInString(s, state)
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				n++
				break
			}
		}
	}
	return n
}

// LineCount returns the number of lines: one more than the number of
// newlines.
func (d *Document) LineCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.m.text.LineCount()
}
