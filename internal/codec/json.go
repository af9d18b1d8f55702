package codec

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/scribe/internal/engine/block"
	"github.com/dshills/scribe/internal/engine/content"
	"github.com/dshills/scribe/internal/engine/format"
)

// JSONVersion is the version written to and required from JSON documents.
const JSONVersion = "1.0"

type jsonDocument struct {
	Version    string      `json:"version"`
	Text       string      `json:"text"`
	FormatRuns []jsonRun   `json:"formatRuns"`
	Blocks     []jsonBlock `json:"blocks"`
}

type jsonRun struct {
	Start  int    `json:"start"`
	End    int    `json:"end"`
	Format string `json:"format"`
	Value  string `json:"value,omitempty"`
}

type jsonBlock struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Type  string `json:"type"`
}

var prettyOptions = &pretty.Options{Width: 80, Indent: "  "}

// EncodeJSON returns the lossless JSON form of c.
func EncodeJSON(c content.Content) ([]byte, error) {
	doc := jsonDocument{
		Version:    JSONVersion,
		Text:       c.Text,
		FormatRuns: make([]jsonRun, 0, len(c.Runs)),
		Blocks:     make([]jsonBlock, 0, len(c.Blocks)),
	}
	for _, r := range c.Runs {
		doc.FormatRuns = append(doc.FormatRuns, jsonRun{
			Start:  r.Start,
			End:    r.End,
			Format: r.Format.Kind.String(),
			Value:  r.Format.Value,
		})
	}
	for _, b := range c.Blocks {
		doc.Blocks = append(doc.Blocks, jsonBlock{Start: b.Start, End: b.End, Type: b.Type.String()})
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, &Error{Format: FormatJSON, Reason: "encode", Err: err}
	}
	return data, nil
}

// EncodeJSONPretty returns EncodeJSON output indented for reading.
func EncodeJSONPretty(c content.Content) ([]byte, error) {
	data, err := EncodeJSON(c)
	if err != nil {
		return nil, err
	}
	return pretty.PrettyOptions(data, prettyOptions), nil
}

// DecodeJSON parses a JSON document. Documents that store the text under
// "content" or omit block ends are migrated before decoding.
func DecodeJSON(data []byte) (content.Content, error) {
	if !gjson.ValidBytes(data) {
		return content.Content{}, malformed(FormatJSON, "invalid JSON", nil)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return content.Content{}, malformed(FormatJSON, "document is not an object", nil)
	}

	version := root.Get("version")
	if !version.Exists() {
		return content.Content{}, malformed(FormatJSON, "missing version", nil)
	}
	if version.Type != gjson.String || version.Str != JSONVersion {
		return content.Content{}, &Error{
			Format: FormatJSON,
			Reason: fmt.Sprintf("version %s", version.Raw),
			Err:    ErrUnsupportedVersion,
		}
	}

	data, err := migrate(data, root)
	if err != nil {
		return content.Content{}, malformed(FormatJSON, "migrate", err)
	}

	var doc jsonDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return content.Content{}, malformed(FormatJSON, "decode", err)
	}

	c := content.Content{Text: doc.Text}
	for i, r := range doc.FormatRuns {
		f, err := format.Parse(r.Format, r.Value)
		if err != nil {
			return content.Content{}, malformed(FormatJSON, fmt.Sprintf("formatRuns[%d]", i), err)
		}
		c.Runs = append(c.Runs, format.Run{Start: r.Start, End: r.End, Format: f})
	}
	for i, b := range doc.Blocks {
		typ, err := block.ParseType(b.Type)
		if err != nil {
			return content.Content{}, malformed(FormatJSON, fmt.Sprintf("blocks[%d]", i), err)
		}
		c.Blocks = append(c.Blocks, block.Block{Start: b.Start, End: b.End, Type: typ})
	}
	if len(c.Blocks) == 0 {
		c.Blocks = content.Plain(c.Text).Blocks
	}

	if err := c.Validate(); err != nil {
		return content.Content{}, malformed(FormatJSON, "content", err)
	}
	out, err := c.Normalize()
	if err != nil {
		return content.Content{}, malformed(FormatJSON, "content", err)
	}
	return out, nil
}

// migrate rewrites older document shapes into the current one.
func migrate(data []byte, root gjson.Result) ([]byte, error) {
	var err error
	if !root.Get("text").Exists() {
		legacy := root.Get("content")
		if !legacy.Exists() {
			return nil, fmt.Errorf("missing text")
		}
		if data, err = sjson.SetRawBytes(data, "text", []byte(legacy.Raw)); err != nil {
			return nil, err
		}
		if data, err = sjson.DeleteBytes(data, "content"); err != nil {
			return nil, err
		}
	}

	text := gjson.GetBytes(data, "text")
	if text.Type != gjson.String {
		return nil, fmt.Errorf("text is not a string")
	}
	length := utf8.RuneCountInString(text.Str)

	blocks := root.Get("blocks").Array()
	for i, b := range blocks {
		if b.Get("end").Exists() {
			continue
		}
		end := length
		if i+1 < len(blocks) {
			end = int(blocks[i+1].Get("start").Int())
		}
		if data, err = sjson.SetBytes(data, fmt.Sprintf("blocks.%d.end", i), end); err != nil {
			return nil, err
		}
	}
	return data, nil
}
