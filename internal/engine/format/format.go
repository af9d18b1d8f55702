package format

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Errors returned when building formats.
var (
	ErrUnknownFormat   = errors.New("unknown format")
	ErrMissingValue    = errors.New("format requires a value")
	ErrUnexpectedValue = errors.New("format takes no value")
	ErrInvalidValue    = errors.New("invalid format value")
)

// Kind identifies one independent formatting dimension.
type Kind uint8

const (
	Bold Kind = iota
	Italic
	Underline
	Strikethrough
	Code
	Link
	TextColor
	BackgroundColor

	kindCount
)

// NumKinds is the number of distinct format kinds.
const NumKinds = int(kindCount)

var kindNames = [kindCount]string{
	Bold:            "bold",
	Italic:          "italic",
	Underline:       "underline",
	Strikethrough:   "strikethrough",
	Code:            "code",
	Link:            "link",
	TextColor:       "textColor",
	BackgroundColor: "backgroundColor",
}

// Kinds returns every kind in canonical order.
func Kinds() []Kind {
	kinds := make([]Kind, kindCount)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k < kindCount
}

// HasValue reports whether formats of this kind carry a value.
func (k Kind) HasValue() bool {
	return k == Link || k == TextColor || k == BackgroundColor
}

// ParseKind resolves a wire name such as "bold" or "textColor".
// Matching ignores case and accepts a few common aliases.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bold", "strong":
		return Bold, nil
	case "italic", "em":
		return Italic, nil
	case "underline":
		return Underline, nil
	case "strikethrough", "strike":
		return Strikethrough, nil
	case "code":
		return Code, nil
	case "link":
		return Link, nil
	case "textcolor", "color":
		return TextColor, nil
	case "backgroundcolor", "background":
		return BackgroundColor, nil
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownFormat)
}

// Format is a single inline style. Value is empty for tag-only kinds.
type Format struct {
	Kind  Kind
	Value string
}

// Tag-only formats.
var (
	FormatBold          = Format{Kind: Bold}
	FormatItalic        = Format{Kind: Italic}
	FormatUnderline     = Format{Kind: Underline}
	FormatStrikethrough = Format{Kind: Strikethrough}
	FormatCode          = Format{Kind: Code}
)

// New builds a validated format. Link values must be safe URLs and color
// values must be CSS hex, rgb()/rgba() or a known color name. Hex colors
// are normalised to lowercase.
func New(kind Kind, value string) (Format, error) {
	if !kind.Valid() {
		return Format{}, fmt.Errorf("%s: %w", kind, ErrUnknownFormat)
	}
	value = strings.TrimSpace(value)
	if !kind.HasValue() {
		if value != "" {
			return Format{}, fmt.Errorf("%s: %w", kind, ErrUnexpectedValue)
		}
		return Format{Kind: kind}, nil
	}
	if value == "" {
		return Format{}, fmt.Errorf("%s: %w", kind, ErrMissingValue)
	}

	switch kind {
	case Link:
		if !IsSafeURL(value) {
			return Format{}, fmt.Errorf("link %q: %w", value, ErrInvalidValue)
		}
	case TextColor, BackgroundColor:
		normalized, err := NormalizeColor(value)
		if err != nil {
			return Format{}, fmt.Errorf("%s %q: %w", kind, value, err)
		}
		value = normalized
	}
	return Format{Kind: kind, Value: value}, nil
}

// Parse builds a format from its wire name and optional value.
func Parse(name, value string) (Format, error) {
	kind, err := ParseKind(name)
	if err != nil {
		return Format{}, err
	}
	return New(kind, value)
}

// MustParse is like Parse but panics on error. Intended for tests and
// static tables.
func MustParse(name, value string) Format {
	f, err := Parse(name, value)
	if err != nil {
		panic(err)
	}
	return f
}

// String returns "kind" or "kind(value)".
func (f Format) String() string {
	if f.Value == "" {
		return f.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", f.Kind, f.Value)
}

// IsSafeURL reports whether a link target may be emitted into HTML.
// http, https and mailto URLs are allowed, as are relative references.
func IsSafeURL(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "":
		// Relative reference, but reject things like " javascript:" that
		// url.Parse treats as opaque paths.
		return !strings.Contains(strings.ToLower(raw), "script:")
	case "http", "https", "mailto":
		return true
	}
	return false
}
