package selection

import (
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Motions map an offset in text to the offset a cursor movement reaches.
// Offsets outside [0, len(text)] are clamped first.

// LineStart returns the offset of the first character of the line holding
// pos.
func LineStart(text []rune, pos int) int {
	pos = clampOffset(pos, len(text))
	for pos > 0 && text[pos-1] != '\n' {
		pos--
	}
	return pos
}

// LineEnd returns the offset of the newline ending the line holding pos,
// or len(text) on the last line.
func LineEnd(text []rune, pos int) int {
	pos = clampOffset(pos, len(text))
	for pos < len(text) && text[pos] != '\n' {
		pos++
	}
	return pos
}

// PrevGrapheme returns the start of the grapheme cluster before pos. A
// newline is its own step.
func PrevGrapheme(text []rune, pos int) int {
	pos = clampOffset(pos, len(text))
	if pos == 0 {
		return 0
	}
	if text[pos-1] == '\n' {
		return pos - 1
	}
	off := LineStart(text, pos)
	prev := off
	s, state := string(text[off:pos]), -1
	for s != "" {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		prev = off
		off += utf8.RuneCountInString(cluster)
	}
	return prev
}

// NextGrapheme returns the end of the grapheme cluster at pos.
func NextGrapheme(text []rune, pos int) int {
	pos = clampOffset(pos, len(text))
	if pos == len(text) {
		return pos
	}
	if text[pos] == '\n' {
		return pos + 1
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(string(text[pos:LineEnd(text, pos)]), -1)
	return pos + utf8.RuneCountInString(cluster)
}

// LineAbove returns the offset in the previous line at the same column as
// pos, or the end of that line when it is shorter. On the first line it
// returns 0.
func LineAbove(text []rune, pos int) int {
	start := LineStart(text, pos)
	if start == 0 {
		return 0
	}
	col := clampOffset(pos, len(text)) - start
	prevStart := LineStart(text, start-1)
	return prevStart + min(col, start-1-prevStart)
}

// LineBelow returns the offset in the next line at the same column as pos,
// or the end of that line when it is shorter. On the last line it returns
// len(text).
func LineBelow(text []rune, pos int) int {
	end := LineEnd(text, pos)
	if end >= len(text) {
		return len(text)
	}
	col := clampOffset(pos, len(text)) - LineStart(text, pos)
	nextStart := end + 1
	return nextStart + min(col, LineEnd(text, nextStart)-nextStart)
}

// NextWord skips the rest of the word at pos and the separators after
// it, stopping at the start of the next word.
func NextWord(text []rune, pos int) int {
	i := clampOffset(pos, len(text))
	for i < len(text) && isWordChar(text[i]) {
		i++
	}
	for i < len(text) && !isWordChar(text[i]) {
		i++
	}
	return i
}

// PrevWord skips whitespace before pos and stops at the start of the word
// before it.
func PrevWord(text []rune, pos int) int {
	pos = clampOffset(pos, len(text))
	if pos == 0 {
		return 0
	}
	i := pos - 1
	for i > 0 && unicode.IsSpace(text[i]) {
		i--
	}
	for i > 0 && isWordChar(text[i-1]) {
		i--
	}
	return i
}

// isWordChar reports whether r belongs to a word.
func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func clampOffset(pos, length int) int {
	return max(0, min(pos, length))
}
