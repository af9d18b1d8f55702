package selection

import "fmt"

// Selection is a pair of character offsets.
type Selection struct {
	Anchor int
	Focus  int
}

// New creates a selection from anchor to focus.
func New(anchor, focus int) Selection {
	return Selection{Anchor: anchor, Focus: focus}
}

// Caret creates a collapsed selection at pos.
func Caret(pos int) Selection {
	return Selection{Anchor: pos, Focus: pos}
}

// IsCollapsed reports whether anchor and focus coincide.
func (s Selection) IsCollapsed() bool {
	return s.Anchor == s.Focus
}

// Len returns the number of selected characters.
func (s Selection) Len() int {
	return s.End() - s.Start()
}

// Start returns the lower bound.
func (s Selection) Start() int {
	return min(s.Anchor, s.Focus)
}

// End returns the upper bound.
func (s Selection) End() int {
	return max(s.Anchor, s.Focus)
}

// IsBackward reports whether focus precedes anchor.
func (s Selection) IsBackward() bool {
	return s.Focus < s.Anchor
}

// Extend moves the focus, keeping the anchor.
func (s Selection) Extend(pos int) Selection {
	return Selection{Anchor: s.Anchor, Focus: pos}
}

// CollapseToStart collapses to the lower bound.
func (s Selection) CollapseToStart() Selection {
	return Caret(s.Start())
}

// CollapseToEnd collapses to the upper bound.
func (s Selection) CollapseToEnd() Selection {
	return Caret(s.End())
}

// Normalize returns a forward selection covering the same range.
func (s Selection) Normalize() Selection {
	return Selection{Anchor: s.Start(), Focus: s.End()}
}

// Contains reports whether pos lies in [Start, End). A collapsed selection
// contains nothing.
func (s Selection) Contains(pos int) bool {
	return pos >= s.Start() && pos < s.End()
}

// Valid reports whether both offsets lie in [0, length].
func (s Selection) Valid(length int) bool {
	return s.Anchor >= 0 && s.Anchor <= length && s.Focus >= 0 && s.Focus <= length
}

// Clamp limits both offsets to [0, length].
func (s Selection) Clamp(length int) Selection {
	clamp := func(x int) int { return max(0, min(x, length)) }
	return Selection{Anchor: clamp(s.Anchor), Focus: clamp(s.Focus)}
}

// String returns a debug representation.
func (s Selection) String() string {
	if s.IsCollapsed() {
		return fmt.Sprintf("Caret(%d)", s.Focus)
	}
	dir := "→"
	if s.IsBackward() {
		dir = "←"
	}
	return fmt.Sprintf("Selection(%d%s%d)", s.Anchor, dir, s.Focus)
}
