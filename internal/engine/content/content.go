// Package content defines the plain value exchanged between a document and
// its importers and exporters: text, format runs and blocks.
package content

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dshills/scribe/internal/engine/block"
	"github.com/dshills/scribe/internal/engine/format"
	"github.com/dshills/scribe/internal/engine/text"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid content")

// Content is a complete document state.
type Content struct {
	Text   string
	Runs   []format.Run
	Blocks []block.Block
}

// Empty returns the content of an empty document.
func Empty() Content {
	return Content{Blocks: []block.Block{{Type: block.Paragraph}}}
}

// Plain returns unformatted content with one paragraph.
func Plain(s string) Content {
	n := utf8.RuneCountInString(s)
	return Content{Text: s, Blocks: []block.Block{{Start: 0, End: n, Type: block.Paragraph}}}
}

// Len returns the number of characters.
func (c Content) Len() int {
	return utf8.RuneCountInString(c.Text)
}

// Formats builds a format table from the runs.
func (c Content) Formats() *format.Table {
	return format.FromRuns(c.Runs)
}

// BlockTable builds a block table, substituting a single paragraph when no
// blocks are given.
func (c Content) BlockTable() (*block.Table, error) {
	return block.FromBlocks(c.Blocks, c.Len())
}

// Validate checks that the text is storable, every run lies inside the
// text with a valid format, and the blocks partition the text.
func (c Content) Validate() error {
	if err := text.Validate(c.Text); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	n := c.Len()
	for _, r := range c.Runs {
		if r.Start < 0 || r.Start >= r.End || r.End > n {
			return fmt.Errorf("%w: run %s outside text of length %d", ErrInvalid, r, n)
		}
		if _, err := format.New(r.Format.Kind, r.Format.Value); err != nil {
			return fmt.Errorf("%w: run %s: %w", ErrInvalid, r, err)
		}
	}
	if _, err := c.BlockTable(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Normalize returns c with runs merged and ordered the way a format table
// holds them and blocks ordered by position.
func (c Content) Normalize() (Content, error) {
	bt, err := c.BlockTable()
	if err != nil {
		return Content{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return Content{Text: c.Text, Runs: c.Formats().Runs(), Blocks: bt.Blocks()}, nil
}
