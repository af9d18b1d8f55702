package block

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownType is returned for an unrecognised block type name.
var ErrUnknownType = errors.New("unknown block type")

// Type classifies a block.
type Type uint8

const (
	Paragraph Type = iota
	Heading1
	Heading2
	Heading3
	Heading4
	Heading5
	Heading6
	BulletList
	NumberedList
	BlockQuote
	CodeBlock

	typeCount
)

var typeNames = [typeCount]string{
	Paragraph:    "paragraph",
	Heading1:     "heading1",
	Heading2:     "heading2",
	Heading3:     "heading3",
	Heading4:     "heading4",
	Heading5:     "heading5",
	Heading6:     "heading6",
	BulletList:   "bulletList",
	NumberedList: "numberedList",
	BlockQuote:   "blockQuote",
	CodeBlock:    "codeBlock",
}

// String returns the wire name of the type.
func (t Type) String() string {
	if t < typeCount {
		return typeNames[t]
	}
	return fmt.Sprintf("Type(%d)", uint8(t))
}

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	return t < typeCount
}

// HeadingLevel returns 1-6 for headings and 0 otherwise.
func (t Type) HeadingLevel() int {
	if t >= Heading1 && t <= Heading6 {
		return int(t-Heading1) + 1
	}
	return 0
}

// IsList reports whether t is a bullet or numbered list.
func (t Type) IsList() bool {
	return t == BulletList || t == NumberedList
}

// Heading returns the heading type for level 1-6.
func Heading(level int) (Type, bool) {
	if level < 1 || level > 6 {
		return Paragraph, false
	}
	return Heading1 + Type(level-1), true
}

// ParseType resolves a wire name such as "heading1" or "blockQuote".
// HTML tag names (p, h1, ul, ol, blockquote, pre) are accepted as aliases.
func ParseType(name string) (Type, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for t, s := range typeNames {
		if strings.ToLower(s) == n {
			return Type(t), nil
		}
	}
	switch n {
	case "p":
		return Paragraph, nil
	case "h1", "h2", "h3", "h4", "h5", "h6":
		t, _ := Heading(int(n[1] - '0'))
		return t, nil
	case "ul", "bullet":
		return BulletList, nil
	case "ol", "numbered":
		return NumberedList, nil
	case "quote":
		return BlockQuote, nil
	case "pre", "code":
		return CodeBlock, nil
	}
	return Paragraph, fmt.Errorf("%q: %w", name, ErrUnknownType)
}
