package codec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/scribe/internal/engine/block"
	"github.com/dshills/scribe/internal/engine/content"
	"github.com/dshills/scribe/internal/engine/format"
)

// Fallback selects how formats without Markdown syntax are exported.
type Fallback uint8

const (
	// FallbackDrop exports underlined and colored text as plain text.
	FallbackDrop Fallback = iota
	// FallbackHTML exports them as inline <u> and <span style> HTML.
	FallbackHTML
)

func (f Fallback) String() string {
	switch f {
	case FallbackDrop:
		return "drop"
	case FallbackHTML:
		return "html"
	}
	return "Fallback(" + strconv.Itoa(int(f)) + ")"
}

// ParseFallback parses "drop" or "html".
func ParseFallback(s string) (Fallback, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "drop":
		return FallbackDrop, nil
	case "html":
		return FallbackHTML, nil
	}
	return FallbackDrop, fmt.Errorf("unknown markdown fallback %q", s)
}

// EncodeMarkdown renders c as CommonMark with GFM strikethrough. Each
// line of a block is written with its block prefix. A blank line separates
// lines of different block types so lists and quotes do not absorb the
// text that follows them.
func EncodeMarkdown(c content.Content, fallback Fallback) string {
	l := newLayout(c)
	if len(c.Text) == 0 {
		return ""
	}
	var sb strings.Builder
	number := 0
	for i, ln := range l.lines {
		if i > 0 {
			sb.WriteByte('\n')
			if l.groupStart(i) {
				sb.WriteByte('\n')
			}
		}
		if l.groupStart(i) {
			number = 0
		}

		switch ln.typ {
		case block.CodeBlock:
			if l.groupStart(i) {
				sb.WriteString("```\n")
			}
			sb.WriteString(l.text(ln.start, ln.end))
			if l.groupEnd(i) {
				sb.WriteString("\n```")
			}
			continue
		case block.BulletList:
			sb.WriteString("- ")
		case block.NumberedList:
			number++
			sb.WriteString(strconv.Itoa(number) + ". ")
		case block.BlockQuote:
			sb.WriteString("> ")
		default:
			if level := ln.typ.HeadingLevel(); level > 0 {
				sb.WriteString(strings.Repeat("#", level) + " ")
			}
		}
		var body strings.Builder
		for _, seg := range l.segments(ln) {
			body.WriteString(markdownSegment(l.text(seg.Start, seg.End), seg.Formats, fallback))
		}
		sb.WriteString(escapeLineStart(body.String()))
	}
	return sb.String()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"(", `\(`,
	")", `\)`,
	"`", "\\`",
	"~", `\~`,
	"#", `\#`,
	">", `\>`,
	"-", `\-`,
	"<", `\<`,
	"&", `\&`,
)

// escapeLineStart escapes a leading "+" or "=" and an ordered list marker
// such as "1." so the line does not read back as a list or a setext
// underline.
func escapeLineStart(s string) string {
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "=") {
		return `\` + s
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > 0 && i <= 9 && i < len(s) && s[i] == '.' {
		return s[:i] + `\` + s[i:]
	}
	return s
}

func markdownSegment(s string, set format.Set, fallback Fallback) string {
	out := markdownEscaper.Replace(s)
	if set.Has(format.Code) {
		out = codeSpan(s)
	}
	if set.Has(format.Strikethrough) {
		out = delimit(out, "~~", "~~")
	}
	if fallback == FallbackHTML && set.Has(format.Underline) {
		out = delimit(out, "<u>", "</u>")
	}
	if set.Has(format.Italic) {
		out = delimit(out, "*", "*")
	}
	if set.Has(format.Bold) {
		out = delimit(out, "**", "**")
	}
	if f, ok := set.Get(format.Link); ok && format.IsSafeURL(f.Value) {
		out = "[" + out + "](" + linkDestination(f.Value) + ")"
	}
	if fallback == FallbackHTML {
		if style := styleAttr(set); style != "" {
			out = delimit(out, `<span style="`+style+`">`, "</span>")
		}
	}
	return out
}

// delimit wraps s, keeping surrounding spaces outside the delimiters so
// that emphasis stays left- and right-flanking.
func delimit(s, prefix, suffix string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	i := strings.Index(s, trimmed)
	return s[:i] + prefix + trimmed + suffix + s[i+len(trimmed):]
}

// codeSpan quotes s with a backtick fence longer than any run inside it.
func codeSpan(s string) string {
	longest, run := 0, 0
	for _, r := range s {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	fence := strings.Repeat("`", longest+1)
	if strings.HasPrefix(s, "`") || strings.HasSuffix(s, "`") {
		s = " " + s + " "
	}
	return fence + s + fence
}

func linkDestination(url string) string {
	if strings.ContainsAny(url, " ()<>") {
		return "<" + strings.NewReplacer("<", "%3C", ">", "%3E").Replace(url) + ">"
	}
	return url
}
