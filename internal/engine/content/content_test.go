package content

import (
	"errors"
	"slices"
	"testing"

	"github.com/dshills/scribe/internal/engine/block"
	"github.com/dshills/scribe/internal/engine/format"
)

func TestBuilderBlocks(t *testing.T) {
	var b Builder
	b.StartBlock(block.Heading1)
	b.WriteText("Title", format.Set{})
	b.StartBlock(block.Paragraph)
	b.WriteText("Hello ", format.Set{})
	b.WriteText("bold", format.NewSet(format.FormatBold))
	c := b.Build()

	if c.Text != "Title\nHello bold" {
		t.Errorf("Text = %q", c.Text)
	}
	wantBlocks := []block.Block{{Start: 0, End: 6, Type: block.Heading1}, {Start: 6, End: 16, Type: block.Paragraph}}
	if !slices.Equal(c.Blocks, wantBlocks) {
		t.Errorf("Blocks = %v, want %v", c.Blocks, wantBlocks)
	}
	wantRuns := []format.Run{{Start: 12, End: 16, Format: format.FormatBold}}
	if !slices.Equal(c.Runs, wantRuns) {
		t.Errorf("Runs = %v, want %v", c.Runs, wantRuns)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestBuilderDropsTrailingEmptyBlocks(t *testing.T) {
	var b Builder
	b.StartBlock(block.Paragraph)
	b.WriteText("A", format.Set{})
	b.StartBlock(block.Paragraph)
	b.StartBlock(block.Paragraph)
	c := b.Build()

	if c.Text != "A" {
		t.Errorf("Text = %q", c.Text)
	}
	if !slices.Equal(c.Blocks, []block.Block{{Start: 0, End: 1, Type: block.Paragraph}}) {
		t.Errorf("Blocks = %v", c.Blocks)
	}
}

func TestBuilderKeepsInnerEmptyBlocks(t *testing.T) {
	var b Builder
	b.StartBlock(block.Paragraph)
	b.WriteText("A", format.Set{})
	b.StartBlock(block.Paragraph)
	b.StartBlock(block.Paragraph)
	b.WriteText("B", format.Set{})
	c := b.Build()

	if c.Text != "A\n\nB" {
		t.Errorf("Text = %q", c.Text)
	}
	if len(c.Blocks) != 3 {
		t.Errorf("Blocks = %v", c.Blocks)
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestBuilderEmpty(t *testing.T) {
	var b Builder
	c := b.Build()
	if c.Text != "" || len(c.Blocks) != 1 || c.Blocks[0] != (block.Block{Type: block.Paragraph}) {
		t.Errorf("empty build = %+v", c)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		c    Content
		ok   bool
	}{
		{"empty", Empty(), true},
		{"plain", Plain("hello"), true},
		{"run past end", Content{Text: "hi", Runs: []format.Run{{Start: 0, End: 3, Format: format.FormatBold}}, Blocks: Plain("hi").Blocks}, false},
		{"bad color", Content{Text: "hi", Runs: []format.Run{{Start: 0, End: 2, Format: format.Format{Kind: format.TextColor, Value: "nope"}}}, Blocks: Plain("hi").Blocks}, false},
		{"gap in blocks", Content{Text: "hi", Blocks: []block.Block{{Start: 0, End: 1}}}, false},
		{"control char", Plain("a\x01"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.c.Validate()
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, want ok=%v", err, tt.ok)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("error should wrap ErrInvalid: %v", err)
			}
		})
	}
}
