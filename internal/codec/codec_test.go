package codec

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/dshills/scribe/internal/engine/block"
	"github.com/dshills/scribe/internal/engine/content"
	"github.com/dshills/scribe/internal/engine/format"
)

func run(start, end int, f format.Format) format.Run {
	return format.Run{Start: start, End: end, Format: f}
}

func blk(start, end int, typ block.Type) block.Block {
	return block.Block{Start: start, End: end, Type: typ}
}

func link(url string) format.Format {
	return format.MustParse("link", url)
}

func color(kind, value string) format.Format {
	return format.MustParse(kind, value)
}

func assertContent(t *testing.T, got, want content.Content) {
	t.Helper()
	if got.Text != want.Text {
		t.Errorf("Text = %q, want %q", got.Text, want.Text)
	}
	if !slices.Equal(got.Runs, want.Runs) {
		t.Errorf("Runs = %v, want %v", got.Runs, want.Runs)
	}
	if !slices.Equal(got.Blocks, want.Blocks) {
		t.Errorf("Blocks = %v, want %v", got.Blocks, want.Blocks)
	}
}

// sample has a heading, a paragraph with bold and link runs and a list.
func sample() content.Content {
	return content.Content{
		Text: "Title\nHello World\nitem",
		Runs: []format.Run{
			run(6, 11, format.FormatBold),
			run(12, 17, link("https://example.com")),
		},
		Blocks: []block.Block{
			blk(0, 6, block.Heading1),
			blk(6, 18, block.Paragraph),
			blk(18, 22, block.BulletList),
		},
	}
}

func TestEncodeHTML(t *testing.T) {
	tests := []struct {
		name string
		in   content.Content
		want string
	}{
		{
			name: "empty",
			in:   content.Empty(),
			want: "<p></p>\n",
		},
		{
			name: "bold",
			in: content.Content{
				Text:   "Hello World",
				Runs:   []format.Run{run(0, 5, format.FormatBold)},
				Blocks: []block.Block{blk(0, 11, block.Paragraph)},
			},
			want: "<p><strong>Hello</strong> World</p>\n",
		},
		{
			name: "escaping",
			in:   content.Plain("a<b & c"),
			want: "<p>a&lt;b &amp; c</p>\n",
		},
		{
			name: "colors",
			in: content.Content{
				Text: "Colored",
				Runs: []format.Run{
					run(0, 7, color("textColor", "#FF0000")),
					run(0, 7, color("backgroundColor", "#FFFF00")),
				},
				Blocks: []block.Block{blk(0, 7, block.Paragraph)},
			},
			want: "<p><span style=\"color: #ff0000; background-color: #ffff00;\">Colored</span></p>\n",
		},
		{
			name: "nesting order",
			in: content.Content{
				Text: "x",
				Runs: []format.Run{
					run(0, 1, format.FormatCode),
					run(0, 1, format.FormatBold),
					run(0, 1, link("https://a.example")),
					run(0, 1, format.FormatItalic),
				},
				Blocks: []block.Block{blk(0, 1, block.Paragraph)},
			},
			want: "<p><a href=\"https://a.example\"><strong><em><code>x</code></em></strong></a></p>\n",
		},
		{
			name: "heading and paragraph",
			in: content.Content{
				Text:   "Title\nBody",
				Blocks: []block.Block{blk(0, 6, block.Heading1), blk(6, 10, block.Paragraph)},
			},
			want: "<h1>Title</h1>\n<p>Body</p>\n",
		},
		{
			name: "list",
			in: content.Content{
				Text:   "a\nb",
				Blocks: []block.Block{blk(0, 2, block.BulletList), blk(2, 3, block.BulletList)},
			},
			want: "<ul>\n<li>a</li>\n<li>b</li>\n</ul>\n",
		},
		{
			name: "code block",
			in: content.Content{
				Text:   "x<1\ny",
				Runs:   []format.Run{run(0, 1, format.FormatBold)},
				Blocks: []block.Block{blk(0, 5, block.CodeBlock)},
			},
			want: "<pre><code>x&lt;1\ny</code></pre>\n",
		},
		{
			name: "quote lines",
			in: content.Content{
				Text:   "a\nb",
				Blocks: []block.Block{blk(0, 3, block.BlockQuote)},
			},
			want: "<blockquote>a</blockquote>\n<blockquote>b</blockquote>\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeHTML(tt.in); got != tt.want {
				t.Errorf("EncodeHTML() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestDecodeHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want content.Content
	}{
		{
			name: "empty",
			in:   "",
			want: content.Empty(),
		},
		{
			name: "paragraphs",
			in:   "<p>Hello <strong>World</strong></p><p>Second</p>",
			want: content.Content{
				Text:   "Hello World\nSecond",
				Runs:   []format.Run{run(6, 11, format.FormatBold)},
				Blocks: []block.Block{blk(0, 12, block.Paragraph), blk(12, 18, block.Paragraph)},
			},
		},
		{
			name: "script dropped",
			in:   "<script>alert(1)</script><p>ok</p>",
			want: content.Plain("ok"),
		},
		{
			name: "unsafe link dropped",
			in:   `<a href="javascript:alert(1)">x</a>`,
			want: content.Plain("x"),
		},
		{
			name: "style colors only",
			in:   `<span style="color: red; font-size: 40px">r</span>`,
			want: content.Content{
				Text:   "r",
				Runs:   []format.Run{run(0, 1, color("textColor", "red"))},
				Blocks: []block.Block{blk(0, 1, block.Paragraph)},
			},
		},
		{
			name: "lists",
			in:   "<ul><li>a</li><li>b</li></ul><ol><li>c</li></ol>",
			want: content.Content{
				Text: "a\nb\nc",
				Blocks: []block.Block{
					blk(0, 2, block.BulletList),
					blk(2, 4, block.BulletList),
					blk(4, 5, block.NumberedList),
				},
			},
		},
		{
			name: "pre keeps whitespace",
			in:   "<pre><code>x &lt; y\n  z</code></pre>",
			want: content.Content{
				Text:   "x < y\n  z",
				Blocks: []block.Block{blk(0, 9, block.CodeBlock)},
			},
		},
		{
			name: "whitespace collapsed",
			in:   "<p>\n  Hello\n  world\n</p>",
			want: content.Plain("Hello world"),
		},
		{
			name: "heading inside div",
			in:   "<div><h2>T</h2></div>",
			want: content.Content{
				Text:   "T",
				Blocks: []block.Block{blk(0, 1, block.Heading2)},
			},
		},
		{
			name: "paragraph inside list item",
			in:   "<ul><li><p>a</p></li></ul>",
			want: content.Content{
				Text:   "a",
				Blocks: []block.Block{blk(0, 1, block.BulletList)},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeHTML(tt.in)
			if err != nil {
				t.Fatalf("DecodeHTML: %v", err)
			}
			assertContent(t, got, tt.want)
		})
	}
}

func TestDecodeHTMLRejectsInvalidUTF8(t *testing.T) {
	_, err := DecodeHTML("<p>\xff</p>")
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Format != FormatHTML {
		t.Errorf("err = %#v, want *Error for html", err)
	}
}

func TestHTMLRoundTrip(t *testing.T) {
	in := sample()
	got, err := DecodeHTML(EncodeHTML(in))
	if err != nil {
		t.Fatalf("DecodeHTML: %v", err)
	}
	assertContent(t, got, in)
}

func TestEncodeMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		in       content.Content
		fallback Fallback
		want     string
	}{
		{
			name: "empty",
			in:   content.Empty(),
			want: "",
		},
		{
			name: "bold",
			in: content.Content{
				Text:   "Hello World",
				Runs:   []format.Run{run(0, 5, format.FormatBold)},
				Blocks: []block.Block{blk(0, 11, block.Paragraph)},
			},
			want: "**Hello** World",
		},
		{
			name: "spaces stay outside emphasis",
			in: content.Content{
				Text:   "Hello World",
				Runs:   []format.Run{run(0, 6, format.FormatItalic)},
				Blocks: []block.Block{blk(0, 11, block.Paragraph)},
			},
			want: "*Hello* World",
		},
		{
			name: "escaping",
			in:   content.Plain("a*b_c"),
			want: `a\*b\_c`,
		},
		{
			name: "escaping ampersand",
			in:   content.Plain("Tom &amp; Jerry"),
			want: `Tom \&amp; Jerry`,
		},
		{
			name: "ordered marker at line start",
			in:   content.Plain("1. foo"),
			want: `1\. foo`,
		},
		{
			name: "plus at line start",
			in:   content.Plain("+ x"),
			want: `\+ x`,
		},
		{
			name: "link and code",
			in: content.Content{
				Text: "see a`b",
				Runs: []format.Run{
					run(0, 3, link("https://example.com")),
					run(4, 7, format.FormatCode),
				},
				Blocks: []block.Block{blk(0, 7, block.Paragraph)},
			},
			want: "[see](https://example.com) ``a`b``",
		},
		{
			name: "blocks",
			in: content.Content{
				Text: "T\na\nb\nx",
				Blocks: []block.Block{
					blk(0, 2, block.Heading2),
					blk(2, 4, block.NumberedList),
					blk(4, 6, block.NumberedList),
					blk(6, 7, block.CodeBlock),
				},
			},
			want: "## T\n\n1. a\n2. b\n\n```\nx\n```",
		},
		{
			name: "underline dropped",
			in: content.Content{
				Text:   "u",
				Runs:   []format.Run{run(0, 1, format.FormatUnderline)},
				Blocks: []block.Block{blk(0, 1, block.Paragraph)},
			},
			fallback: FallbackDrop,
			want:     "u",
		},
		{
			name: "underline as html",
			in: content.Content{
				Text:   "u",
				Runs:   []format.Run{run(0, 1, format.FormatUnderline)},
				Blocks: []block.Block{blk(0, 1, block.Paragraph)},
			},
			fallback: FallbackHTML,
			want:     "<u>u</u>",
		},
		{
			name: "color as html",
			in: content.Content{
				Text:   "r",
				Runs:   []format.Run{run(0, 1, color("textColor", "red"))},
				Blocks: []block.Block{blk(0, 1, block.Paragraph)},
			},
			fallback: FallbackHTML,
			want:     `<span style="color: red;">r</span>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeMarkdown(tt.in, tt.fallback); got != tt.want {
				t.Errorf("EncodeMarkdown() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestDecodeMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want content.Content
	}{
		{
			name: "empty",
			in:   "",
			want: content.Empty(),
		},
		{
			name: "heading and inline",
			in:   "# Heading\n\nThis is **bold** and *italic* text.",
			want: content.Content{
				Text: "Heading\nThis is bold and italic text.",
				Runs: []format.Run{
					run(16, 20, format.FormatBold),
					run(25, 31, format.FormatItalic),
				},
				Blocks: []block.Block{blk(0, 8, block.Heading1), blk(8, 37, block.Paragraph)},
			},
		},
		{
			name: "lists",
			in:   "- a\n- b\n\n1. c",
			want: content.Content{
				Text: "a\nb\nc",
				Blocks: []block.Block{
					blk(0, 2, block.BulletList),
					blk(2, 4, block.BulletList),
					blk(4, 5, block.NumberedList),
				},
			},
		},
		{
			name: "fenced code",
			in:   "```\nx\ny\n```",
			want: content.Content{
				Text:   "x\ny",
				Blocks: []block.Block{blk(0, 3, block.CodeBlock)},
			},
		},
		{
			name: "quote",
			in:   "> q",
			want: content.Content{
				Text:   "q",
				Blocks: []block.Block{blk(0, 1, block.BlockQuote)},
			},
		},
		{
			name: "strikethrough and link",
			in:   "~~s~~ [t](https://e.example)",
			want: content.Content{
				Text: "s t",
				Runs: []format.Run{
					run(0, 1, format.FormatStrikethrough),
					run(2, 3, link("https://e.example")),
				},
				Blocks: []block.Block{blk(0, 3, block.Paragraph)},
			},
		},
		{
			name: "unsafe link dropped",
			in:   "[t](javascript:alert)",
			want: content.Plain("t"),
		},
		{
			name: "inline underline html",
			in:   "a <u>b</u>",
			want: content.Content{
				Text:   "a b",
				Runs:   []format.Run{run(2, 3, format.FormatUnderline)},
				Blocks: []block.Block{blk(0, 3, block.Paragraph)},
			},
		},
		{
			name: "entities",
			in:   "Tom &amp; Jerry &#169; &copy; &nosuch; AT&T",
			want: content.Plain("Tom & Jerry © © &nosuch; AT&T"),
		},
		{
			name: "backslash escapes",
			in:   `2\*3 \[x\] \&amp; \\`,
			want: content.Plain(`2*3 [x] &amp; \`),
		},
		{
			name: "code span keeps escapes",
			in:   "`a\\*b &amp;`",
			want: content.Content{
				Text:   `a\*b &amp;`,
				Runs:   []format.Run{run(0, 10, format.FormatCode)},
				Blocks: []block.Block{blk(0, 10, block.Paragraph)},
			},
		},
		{
			name: "code span",
			in:   "`x*y`",
			want: content.Content{
				Text:   "x*y",
				Runs:   []format.Run{run(0, 3, format.FormatCode)},
				Blocks: []block.Block{blk(0, 3, block.Paragraph)},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeMarkdown(tt.in)
			if err != nil {
				t.Fatalf("DecodeMarkdown: %v", err)
			}
			assertContent(t, got, tt.want)
		})
	}
}

func TestMarkdownRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   content.Content
	}{
		{"sample", sample()},
		{"punctuation", content.Plain("2*3 a_b [x] & <y> #1 (ok) ~z~ `q` > - \\")},
		{"price", content.Plain("price: 5*3 = 15 (approx) [ok]")},
		{"entity text", content.Plain("Tom &amp; Jerry &#169;")},
		{"ordered marker", content.Plain("1. not a list")},
		{"long ordered marker", content.Plain("2024. a year")},
		{"plus marker", content.Plain("+ not a list")},
		{"setext underline", content.Plain("a\n===")},
		{
			name: "formatted punctuation",
			in: content.Content{
				Text:   "a*b c_d",
				Runs:   []format.Run{run(0, 3, format.FormatBold)},
				Blocks: []block.Block{blk(0, 7, block.Paragraph)},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := EncodeMarkdown(tt.in, FallbackDrop)
			got, err := DecodeMarkdown(md)
			if err != nil {
				t.Fatalf("DecodeMarkdown(%q): %v", md, err)
			}
			assertContent(t, got, tt.in)
		})
	}
}

func TestParseFallback(t *testing.T) {
	for in, want := range map[string]Fallback{"": FallbackDrop, "drop": FallbackDrop, "HTML": FallbackHTML} {
		got, err := ParseFallback(in)
		if err != nil || got != want {
			t.Errorf("ParseFallback(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseFallback("span"); err == nil {
		t.Error("ParseFallback(span) should fail")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	in := sample()
	in.Runs = append(in.Runs, run(0, 5, color("backgroundColor", "#ABC")))
	in, err := in.Normalize()
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	data, err := EncodeJSON(in)
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}
	got, err := DecodeJSON(data)
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	assertContent(t, got, in)

	pretty, err := EncodeJSONPretty(in)
	if err != nil {
		t.Fatalf("EncodeJSONPretty: %v", err)
	}
	if !strings.Contains(string(pretty), "\n  \"version\": \"1.0\"") {
		t.Errorf("pretty output not indented:\n%s", pretty)
	}
	got, err = DecodeJSON(pretty)
	if err != nil {
		t.Fatalf("DecodeJSON(pretty): %v", err)
	}
	assertContent(t, got, in)
}

func TestEncodeJSONShape(t *testing.T) {
	in := content.Content{
		Text:   "ab",
		Runs:   []format.Run{run(0, 1, link("https://x.example"))},
		Blocks: []block.Block{blk(0, 2, block.Heading3)},
	}
	data, err := EncodeJSON(in)
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}
	want := `{"version":"1.0","text":"ab","formatRuns":[{"start":0,"end":1,"format":"link","value":"https://x.example"}],"blocks":[{"start":0,"end":2,"type":"heading3"}]}`
	if string(data) != want {
		t.Errorf("EncodeJSON() =\n%s\nwant\n%s", data, want)
	}
}

func TestDecodeJSONErrors(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"not json", `{"version":`, ErrMalformed},
		{"not object", `[1,2]`, ErrMalformed},
		{"missing version", `{"text":"a"}`, ErrMalformed},
		{"unknown version", `{"version":"2.0","text":"a"}`, ErrUnsupportedVersion},
		{"numeric version", `{"version":1,"text":"a"}`, ErrUnsupportedVersion},
		{"missing text", `{"version":"1.0"}`, ErrMalformed},
		{"unknown format", `{"version":"1.0","text":"a","formatRuns":[{"start":0,"end":1,"format":"blink"}]}`, ErrMalformed},
		{"bad color", `{"version":"1.0","text":"a","formatRuns":[{"start":0,"end":1,"format":"textColor","value":"url(x)"}]}`, ErrMalformed},
		{"run outside text", `{"version":"1.0","text":"a","formatRuns":[{"start":0,"end":5,"format":"bold"}]}`, ErrMalformed},
		{"blocks with gap", `{"version":"1.0","text":"abc","blocks":[{"start":0,"end":1,"type":"paragraph"},{"start":2,"end":3,"type":"paragraph"}]}`, ErrMalformed},
		{"unknown block type", `{"version":"1.0","text":"a","blocks":[{"start":0,"end":1,"type":"table"}]}`, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJSON([]byte(tt.in))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("DecodeJSON() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeJSONMigratesLegacyFields(t *testing.T) {
	in := `{"version":"1.0","content":"ab\ncd","blocks":[{"start":0,"type":"heading1"},{"start":3,"type":"paragraph"}]}`
	got, err := DecodeJSON([]byte(in))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	assertContent(t, got, content.Content{
		Text:   "ab\ncd",
		Blocks: []block.Block{blk(0, 3, block.Heading1), blk(3, 5, block.Paragraph)},
	})
}

func TestDecodeJSONWithoutBlocks(t *testing.T) {
	got, err := DecodeJSON([]byte(`{"version":"1.0","text":"hello"}`))
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	assertContent(t, got, content.Plain("hello"))
}

func TestEncodeText(t *testing.T) {
	tests := []struct {
		name string
		in   content.Content
		want string
	}{
		{"empty", content.Empty(), ""},
		{"single block", content.Plain("a\nb"), "a\nb"},
		{
			name: "separator present",
			in: content.Content{
				Text:   "ab\ncd",
				Blocks: []block.Block{blk(0, 3, block.Heading1), blk(3, 5, block.Paragraph)},
			},
			want: "ab\ncd",
		},
		{
			name: "mid-line boundary",
			in: content.Content{
				Text:   "Hello World",
				Blocks: []block.Block{blk(0, 5, block.Heading1), blk(5, 11, block.Paragraph)},
			},
			want: "Hello\n World",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EncodeText(tt.in); got != tt.want {
				t.Errorf("EncodeText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeText(t *testing.T) {
	got, err := DecodeText("one\r\ntwo\n")
	if err != nil {
		t.Fatalf("DecodeText: %v", err)
	}
	assertContent(t, got, content.Content{
		Text:   "one\ntwo\n",
		Blocks: []block.Block{blk(0, 4, block.Paragraph), blk(4, 8, block.Paragraph)},
	})

	got, err = DecodeText("")
	if err != nil {
		t.Fatalf("DecodeText(empty): %v", err)
	}
	assertContent(t, got, content.Empty())

	if _, err := DecodeText("bad\x00"); !errors.Is(err, ErrMalformed) {
		t.Errorf("DecodeText(NUL) error = %v, want ErrMalformed", err)
	}
}
