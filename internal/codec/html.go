package codec

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/dshills/scribe/internal/engine/block"
	"github.com/dshills/scribe/internal/engine/content"
	"github.com/dshills/scribe/internal/engine/format"
	"github.com/dshills/scribe/internal/engine/text"
)

// EncodeHTML renders c as HTML. Every line of a block becomes one element;
// list lines are grouped into one list and consecutive code lines into one
// pre element. Inline formats nest in a fixed order, outermost first:
// color span, link, strong, em, u, s, code.
func EncodeHTML(c content.Content) string {
	l := newLayout(c)
	var sb strings.Builder
	for i, ln := range l.lines {
		switch {
		case ln.typ == block.CodeBlock:
			if l.groupStart(i) {
				sb.WriteString("<pre><code>")
			}
			sb.WriteString(html.EscapeString(l.text(ln.start, ln.end)))
			if l.groupEnd(i) {
				sb.WriteString("</code></pre>\n")
			} else {
				sb.WriteByte('\n')
			}
			continue
		case ln.typ.IsList():
			if l.groupStart(i) {
				sb.WriteString("<" + listTag(ln.typ) + ">\n")
			}
		}

		tag := blockTag(ln.typ)
		sb.WriteString("<" + tag + ">")
		for _, seg := range l.segments(ln) {
			writeHTMLSegment(&sb, l.text(seg.Start, seg.End), seg.Formats)
		}
		sb.WriteString("</" + tag + ">\n")

		if ln.typ.IsList() && l.groupEnd(i) {
			sb.WriteString("</" + listTag(ln.typ) + ">\n")
		}
	}
	return sb.String()
}

func blockTag(t block.Type) string {
	if level := t.HeadingLevel(); level > 0 {
		return fmt.Sprintf("h%d", level)
	}
	switch t {
	case block.BulletList, block.NumberedList:
		return "li"
	case block.BlockQuote:
		return "blockquote"
	}
	return "p"
}

func listTag(t block.Type) string {
	if t == block.NumberedList {
		return "ol"
	}
	return "ul"
}

func writeHTMLSegment(sb *strings.Builder, s string, set format.Set) {
	type wrap struct{ open, close string }
	var wraps []wrap
	if style := styleAttr(set); style != "" {
		wraps = append(wraps, wrap{`<span style="` + html.EscapeString(style) + `">`, "</span>"})
	}
	if f, ok := set.Get(format.Link); ok && format.IsSafeURL(f.Value) {
		wraps = append(wraps, wrap{`<a href="` + html.EscapeString(f.Value) + `">`, "</a>"})
	}
	for _, t := range []struct {
		kind format.Kind
		tag  string
	}{
		{format.Bold, "strong"},
		{format.Italic, "em"},
		{format.Underline, "u"},
		{format.Strikethrough, "s"},
		{format.Code, "code"},
	} {
		if set.Has(t.kind) {
			wraps = append(wraps, wrap{"<" + t.tag + ">", "</" + t.tag + ">"})
		}
	}

	for _, w := range wraps {
		sb.WriteString(w.open)
	}
	sb.WriteString(html.EscapeString(s))
	for i := len(wraps) - 1; i >= 0; i-- {
		sb.WriteString(wraps[i].close)
	}
}

// DecodeHTML parses an HTML fragment. Only structural and inline tags with
// an editor meaning are kept; scripts, styles and embedded objects are
// dropped with their contents, links must use a safe scheme and inline
// styles contribute only valid colors.
func DecodeHTML(s string) (content.Content, error) {
	if !utf8.ValidString(s) {
		return content.Content{}, malformed(FormatHTML, "invalid UTF-8", nil)
	}
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(s), ctx)
	if err != nil {
		return content.Content{}, malformed(FormatHTML, "parse", err)
	}

	d := &htmlDecoder{}
	for _, n := range nodes {
		d.node(n)
	}
	c := d.b.Build()
	if err := text.Validate(c.Text); err != nil {
		return content.Content{}, malformed(FormatHTML, "invalid text", err)
	}
	return c, nil
}

type htmlDecoder struct {
	b      content.Builder
	inline inlineStack

	inBlock bool
	pre     int
	quote   int
	item    int
	lists   []block.Type

	pendingSpace bool
	spaceSet     format.Set
}

// contextType is the block type for text outside any explicit block
// element at the current nesting.
func (d *htmlDecoder) contextType() block.Type {
	switch {
	case d.pre > 0:
		return block.CodeBlock
	case d.item > 0 && len(d.lists) > 0:
		return d.lists[len(d.lists)-1]
	case d.item > 0:
		return block.BulletList
	case d.quote > 0:
		return block.BlockQuote
	}
	return block.Paragraph
}

func (d *htmlDecoder) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.node(c)
	}
}

func (d *htmlDecoder) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		d.text(n.Data)
		return
	case html.ElementNode:
	default:
		d.children(n)
		return
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Head, atom.Title, atom.Iframe, atom.Object,
		atom.Embed, atom.Noscript, atom.Template, atom.Svg, atom.Math, atom.Img:
		return

	case atom.P, atom.Div, atom.Section, atom.Article, atom.Header, atom.Footer, atom.Main:
		d.block(d.contextType(), n)
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		typ, _ := block.Heading(int(n.Data[1] - '0'))
		d.block(typ, n)
	case atom.Ul, atom.Ol:
		typ := block.BulletList
		if n.DataAtom == atom.Ol {
			typ = block.NumberedList
		}
		d.lists = append(d.lists, typ)
		d.closeBlock()
		d.children(n)
		d.closeBlock()
		d.lists = d.lists[:len(d.lists)-1]
	case atom.Li:
		d.item++
		d.block(d.contextType(), n)
		d.item--
	case atom.Blockquote:
		d.quote++
		d.closeBlock()
		d.children(n)
		d.closeBlock()
		d.quote--
	case atom.Pre:
		d.pre++
		d.block(block.CodeBlock, n)
		d.pre--
	case atom.Br:
		d.openBlock()
		d.pendingSpace = false
		d.b.WriteLineBreak()

	case atom.Strong, atom.B:
		d.inlineNode(n, format.FormatBold)
	case atom.Em, atom.I:
		d.inlineNode(n, format.FormatItalic)
	case atom.U, atom.Ins:
		d.inlineNode(n, format.FormatUnderline)
	case atom.S, atom.Del, atom.Strike:
		d.inlineNode(n, format.FormatStrikethrough)
	case atom.Code, atom.Kbd, atom.Samp, atom.Tt:
		if d.pre > 0 {
			d.children(n)
			return
		}
		d.inlineNode(n, format.FormatCode)
	case atom.A:
		var fs []format.Format
		if href, ok := attr(n, "href"); ok {
			if f, err := format.New(format.Link, strings.TrimSpace(href)); err == nil {
				fs = append(fs, f)
			}
		}
		d.inlineNode(n, fs...)
	case atom.Span, atom.Font, atom.Mark:
		var fs []format.Format
		if style, ok := attr(n, "style"); ok {
			fs = styleFormats(style)
		}
		if color, ok := attr(n, "color"); ok && n.DataAtom == atom.Font {
			if f, err := format.New(format.TextColor, color); err == nil {
				fs = append(fs, f)
			}
		}
		d.inlineNode(n, fs...)
	default:
		d.children(n)
	}
}

func (d *htmlDecoder) inlineNode(n *html.Node, fs ...format.Format) {
	d.inline.push(fs...)
	d.children(n)
	d.inline.pop()
}

// block emits the children of n into a block of type typ. An enclosing
// block that is still empty takes the new type instead of leaving an empty
// line.
func (d *htmlDecoder) block(typ block.Type, n *html.Node) {
	if d.inBlock && d.b.BlockIsEmpty() {
		d.b.Retype(typ)
	} else {
		d.b.StartBlock(typ)
	}
	d.inBlock = true
	d.pendingSpace = false
	d.children(n)
	d.closeBlock()
}

func (d *htmlDecoder) openBlock() {
	if !d.inBlock {
		d.b.StartBlock(d.contextType())
		d.inBlock = true
		d.pendingSpace = false
	}
}

func (d *htmlDecoder) closeBlock() {
	d.inBlock = false
	d.pendingSpace = false
}

func (d *htmlDecoder) text(s string) {
	if d.pre > 0 {
		s = strings.ReplaceAll(s, "\r\n", "\n")
		if s == "" {
			return
		}
		d.openBlock()
		d.b.WriteText(s, d.inline.current())
		return
	}

	collapsed := strings.Join(strings.Fields(s), " ")
	leading := collapsed != "" && len(s) > 0 && isSpace(s[0])
	trailing := len(s) > 0 && isSpace(s[len(s)-1])
	if collapsed == "" {
		if trailing && d.inBlock && !d.b.BlockIsEmpty() {
			d.pendingSpace = true
			d.spaceSet = d.inline.current()
		}
		return
	}

	d.openBlock()
	if (leading || d.pendingSpace) && !d.b.BlockIsEmpty() {
		set := d.inline.current()
		if d.pendingSpace {
			set = d.spaceSet
		}
		d.b.WriteText(" ", set)
	}
	d.b.WriteText(collapsed, d.inline.current())
	d.pendingSpace = trailing
	d.spaceSet = d.inline.current()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}
