package engine

import (
	"github.com/dshills/scribe/internal/codec"
	"github.com/dshills/scribe/internal/engine/content"
)

func (d *Document) exportable() (content.Content, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.destroyed {
		return content.Content{}, ErrDestroyed
	}
	return d.m.content(), nil
}

// ToJSON returns the lossless JSON form of the document.
func (d *Document) ToJSON() ([]byte, error) {
	c, err := d.exportable()
	if err != nil {
		return nil, err
	}
	return codec.EncodeJSON(c)
}

// ToJSONPretty returns indented JSON.
func (d *Document) ToJSONPretty() ([]byte, error) {
	c, err := d.exportable()
	if err != nil {
		return nil, err
	}
	return codec.EncodeJSONPretty(c)
}

// ToHTML renders the document as HTML.
func (d *Document) ToHTML() (string, error) {
	c, err := d.exportable()
	if err != nil {
		return "", err
	}
	return codec.EncodeHTML(c), nil
}

// ToMarkdown renders the document as Markdown using the configured
// fallback for underline and colors.
func (d *Document) ToMarkdown() (string, error) {
	c, err := d.exportable()
	if err != nil {
		return "", err
	}
	return codec.EncodeMarkdown(c, d.fallback), nil
}

// ToPlainText returns the text with a newline between blocks.
func (d *Document) ToPlainText() (string, error) {
	c, err := d.exportable()
	if err != nil {
		return "", err
	}
	return codec.EncodeText(c), nil
}
