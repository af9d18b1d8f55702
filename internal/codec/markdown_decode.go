package codec

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	gtext "github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"golang.org/x/net/html"

	"github.com/dshills/scribe/internal/engine/block"
	"github.com/dshills/scribe/internal/engine/content"
	"github.com/dshills/scribe/internal/engine/format"
	"github.com/dshills/scribe/internal/engine/text"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.Strikethrough))

// DecodeMarkdown parses CommonMark with GFM strikethrough. Inline <u> and
// <span style> HTML is understood so that EncodeMarkdown output with the
// HTML fallback reads back; other raw HTML is ignored.
func DecodeMarkdown(s string) (content.Content, error) {
	if !utf8.ValidString(s) {
		return content.Content{}, malformed(FormatMarkdown, "invalid UTF-8", nil)
	}
	source := []byte(s)
	doc := markdown.Parser().Parse(gtext.NewReader(source))

	w := &markdownWalker{source: source}
	if err := ast.Walk(doc, w.walk); err != nil {
		return content.Content{}, malformed(FormatMarkdown, "walk", err)
	}
	c := w.b.Build()
	if err := text.Validate(c.Text); err != nil {
		return content.Content{}, malformed(FormatMarkdown, "invalid text", err)
	}
	return c, nil
}

// markdownWalker turns a goldmark AST into content.
type markdownWalker struct {
	source []byte
	b      content.Builder
	inline inlineStack

	lists []block.Type
	quote int
	// itemOpen is set when a list item has started a block that its first
	// paragraph should fill.
	itemOpen bool
	// raw holds inline HTML tags opened with a format push.
	raw []string
}

func (w *markdownWalker) contextType() block.Type {
	switch {
	case len(w.lists) > 0:
		return w.lists[len(w.lists)-1]
	case w.quote > 0:
		return block.BlockQuote
	}
	return block.Paragraph
}

func (w *markdownWalker) walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		if entering {
			if w.itemOpen {
				w.itemOpen = false
			} else {
				w.b.StartBlock(w.contextType())
			}
		}

	case *ast.Heading:
		if entering {
			typ, ok := block.Heading(n.Level)
			if !ok {
				typ = block.Paragraph
			}
			w.b.StartBlock(typ)
			w.itemOpen = false
		}

	case *ast.Blockquote:
		if entering {
			w.quote++
		} else {
			w.quote--
		}

	case *ast.List:
		if entering {
			typ := block.BulletList
			if n.IsOrdered() {
				typ = block.NumberedList
			}
			w.lists = append(w.lists, typ)
		} else {
			w.lists = w.lists[:len(w.lists)-1]
		}

	case *ast.ListItem:
		if entering {
			w.b.StartBlock(w.contextType())
			w.itemOpen = true
		} else {
			w.itemOpen = false
		}

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			w.codeBlock(n)
		}
		return ast.WalkSkipChildren, nil

	case *ast.HTMLBlock, *ast.ThematicBreak:
		return ast.WalkSkipChildren, nil

	case *ast.Text:
		if entering {
			value := n.Segment.Value(w.source)
			if n.IsRaw() {
				w.b.WriteText(string(value), w.inline.current())
			} else {
				w.b.WriteText(inlineText(value), w.inline.current())
			}
			if n.SoftLineBreak() || n.HardLineBreak() {
				w.b.WriteLineBreak()
			}
		}

	case *ast.String:
		if entering {
			w.b.WriteText(string(n.Value), w.inline.current())
		}

	case *ast.CodeSpan:
		if entering {
			w.inline.push(format.FormatCode)
			w.b.WriteText(codeSpanText(n, w.source), w.inline.current())
			w.inline.pop()
		}
		return ast.WalkSkipChildren, nil

	case *ast.Emphasis:
		w.toggle(entering, emphasisFormat(n.Level))

	case *east.Strikethrough:
		w.toggle(entering, format.FormatStrikethrough)

	case *ast.Link:
		var fs []format.Format
		if f, err := format.New(format.Link, string(n.Destination)); err == nil {
			fs = append(fs, f)
		}
		w.toggle(entering, fs...)

	case *ast.AutoLink:
		if entering {
			url := string(n.URL(w.source))
			var fs []format.Format
			if f, err := format.New(format.Link, url); err == nil {
				fs = append(fs, f)
			}
			w.inline.push(fs...)
			w.b.WriteText(string(n.Label(w.source)), w.inline.current())
			w.inline.pop()
		}
		return ast.WalkSkipChildren, nil

	case *ast.RawHTML:
		if entering {
			w.rawHTML(string(n.Segments.Value(w.source)))
		}
		return ast.WalkSkipChildren, nil
	}
	return ast.WalkContinue, nil
}

func (w *markdownWalker) toggle(entering bool, fs ...format.Format) {
	if entering {
		w.inline.push(fs...)
	} else {
		w.inline.pop()
	}
}

func emphasisFormat(level int) format.Format {
	if level >= 2 {
		return format.FormatBold
	}
	return format.FormatItalic
}

func (w *markdownWalker) codeBlock(n ast.Node) {
	var sb strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(w.source))
	}
	code := strings.TrimSuffix(sb.String(), "\n")
	w.b.StartBlock(block.CodeBlock)
	w.itemOpen = false
	w.b.WriteText(code, emptySet)
}

// rawHTML handles inline <u> and <span style> tags and their closing tags.
func (w *markdownWalker) rawHTML(raw string) {
	z := html.NewTokenizer(strings.NewReader(raw))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return
		case html.StartTagToken:
			tok := z.Token()
			switch tok.Data {
			case "u", "ins":
				w.inline.push(format.FormatUnderline)
				w.raw = append(w.raw, tok.Data)
			case "span":
				var fs []format.Format
				for _, a := range tok.Attr {
					if a.Key == "style" {
						fs = styleFormats(a.Val)
					}
				}
				w.inline.push(fs...)
				w.raw = append(w.raw, tok.Data)
			case "br":
				w.b.WriteLineBreak()
			}
		case html.SelfClosingTagToken:
			if z.Token().Data == "br" {
				w.b.WriteLineBreak()
			}
		case html.EndTagToken:
			tok := z.Token()
			if n := len(w.raw); n > 0 && w.raw[n-1] == tok.Data {
				w.raw = w.raw[:n-1]
				w.inline.pop()
			}
		}
	}
}

// inlineText resolves backslash escapes and character references in one
// pass, so an escaped "&" never starts a reference. Code spans keep their
// text raw and do not come through here.
func inlineText(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch {
		case c == '\\' && i+1 < len(b) && util.IsPunct(b[i+1]):
			sb.WriteByte(b[i+1])
			i++
		case c == '&':
			if j := bytes.IndexByte(b[i:], ';'); j > 1 && j <= maxReferenceLen {
				ref := b[i : i+j+1]
				if r := util.ResolveEntityNames(util.ResolveNumericReferences(ref)); !bytes.Equal(r, ref) {
					sb.Write(r)
					i += j
					continue
				}
			}
			sb.WriteByte(c)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// maxReferenceLen bounds the "&...;" scan to the longest entity name.
const maxReferenceLen = 40

func codeSpanText(n *ast.CodeSpan, source []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
		case *ast.String:
			sb.Write(t.Value)
		}
	}
	return sb.String()
}
