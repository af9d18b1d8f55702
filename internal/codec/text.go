package codec

import (
	"strings"

	"github.com/dshills/scribe/internal/engine/block"
	"github.com/dshills/scribe/internal/engine/content"
	"github.com/dshills/scribe/internal/engine/text"
)

// EncodeText returns the text of c with a newline between adjacent blocks
// unless the earlier block already ends with one.
func EncodeText(c content.Content) string {
	if len(c.Blocks) <= 1 {
		return c.Text
	}
	runes := []rune(c.Text)
	var sb strings.Builder
	sb.Grow(len(c.Text) + len(c.Blocks))
	for i, b := range c.Blocks {
		sb.WriteString(string(runes[b.Start:b.End]))
		if i < len(c.Blocks)-1 && b.End > b.Start && runes[b.End-1] != '\n' {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// DecodeText returns unformatted content with one paragraph per line.
// Each paragraph keeps its terminating newline. Windows and old Mac line
// endings become newlines.
func DecodeText(s string) (content.Content, error) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if err := text.Validate(s); err != nil {
		return content.Content{}, malformed(FormatText, "invalid text", err)
	}
	var blocks []block.Block
	start, pos := 0, 0
	for _, r := range s {
		pos++
		if r == '\n' {
			blocks = append(blocks, block.Block{Start: start, End: pos, Type: block.Paragraph})
			start = pos
		}
	}
	if start < pos || len(blocks) == 0 {
		blocks = append(blocks, block.Block{Start: start, End: pos, Type: block.Paragraph})
	}
	return content.Content{Text: s, Blocks: blocks}, nil
}
