package engine

import (
	"github.com/dshills/scribe/internal/codec"
	"github.com/dshills/scribe/internal/engine/content"
	"github.com/dshills/scribe/internal/engine/history"
	"github.com/dshills/scribe/internal/logging"
)

// Default configuration values.
const (
	DefaultHistoryLimit = history.DefaultMaxEntries
	DefaultMaxLength    = 10_000_000
)

// Option configures a Document during creation.
type Option func(*Document)

// WithContent sets the initial content of the document.
func WithContent(c content.Content) Option {
	return func(d *Document) {
		d.initial = &c
	}
}

// WithHistoryLimit sets the maximum number of undo entries. Zero disables
// history; a negative value selects the default.
func WithHistoryLimit(n int) Option {
	return func(d *Document) {
		if n < 0 {
			n = DefaultHistoryLimit
		}
		d.historyLimit = n
	}
}

// WithMaxLength caps the document length in characters.
func WithMaxLength(n int) Option {
	return func(d *Document) {
		if n > 0 {
			d.maxLength = n
		}
	}
}

// WithLogger sets the logger. Documents log nothing by default.
func WithLogger(l *logging.Logger) Option {
	return func(d *Document) {
		if l != nil {
			d.log = l
		}
	}
}

// WithMarkdownFallback selects how ToMarkdown renders underline and colors.
func WithMarkdownFallback(f codec.Fallback) Option {
	return func(d *Document) {
		d.fallback = f
	}
}
