package codec

import (
	"strings"

	"github.com/dshills/scribe/internal/engine/format"
)

var emptySet format.Set

// styleFormats extracts color formats from a CSS declaration list. Every
// other property, and any value that is not a valid color, is dropped.
func styleFormats(style string) []format.Format {
	var out []format.Format
	for _, decl := range strings.Split(style, ";") {
		prop, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		var kind format.Kind
		switch strings.ToLower(strings.TrimSpace(prop)) {
		case "color":
			kind = format.TextColor
		case "background-color", "background":
			kind = format.BackgroundColor
		default:
			continue
		}
		if f, err := format.New(kind, strings.TrimSpace(value)); err == nil {
			out = append(out, f)
		}
	}
	return out
}

// styleAttr renders the color formats of set as a CSS declaration list.
func styleAttr(set format.Set) string {
	var sb strings.Builder
	if f, ok := set.Get(format.TextColor); ok {
		sb.WriteString("color: " + f.Value + ";")
	}
	if f, ok := set.Get(format.BackgroundColor); ok {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString("background-color: " + f.Value + ";")
	}
	return sb.String()
}

// inlineStack tracks the formats active while walking nested markup.
type inlineStack struct {
	sets []format.Set
}

func (s *inlineStack) current() format.Set {
	if len(s.sets) == 0 {
		return emptySet
	}
	return s.sets[len(s.sets)-1]
}

func (s *inlineStack) push(fs ...format.Format) {
	set := s.current()
	for _, f := range fs {
		set.Add(f)
	}
	s.sets = append(s.sets, set)
}

func (s *inlineStack) pop() {
	if len(s.sets) > 0 {
		s.sets = s.sets[:len(s.sets)-1]
	}
}

func (s *inlineStack) depth() int {
	return len(s.sets)
}
