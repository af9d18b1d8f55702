package history

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/dshills/scribe/internal/engine/block"
	"github.com/dshills/scribe/internal/engine/format"
)

type stepKind uint8

const (
	stepInsert stepKind = iota
	stepDelete
	stepFormat
	stepBlock
)

// Step is one primitive, exactly invertible change to a document.
type Step struct {
	kind    stepKind
	pos     int
	text    string
	formats format.Patch
	blocks  block.Patch
}

// InsertStep records text inserted at pos.
func InsertStep(pos int, text string) Step {
	return Step{kind: stepInsert, pos: pos, text: text}
}

// DeleteStep records removed text that used to start at pos.
func DeleteStep(pos int, removed string) Step {
	return Step{kind: stepDelete, pos: pos, text: removed}
}

// FormatStep records a format table change.
func FormatStep(p format.Patch) Step {
	return Step{kind: stepFormat, formats: p}
}

// BlockStep records a block table change.
func BlockStep(p block.Patch) Step {
	return Step{kind: stepBlock, blocks: p}
}

// IsEmpty reports whether the step changes nothing.
func (s Step) IsEmpty() bool {
	switch s.kind {
	case stepInsert, stepDelete:
		return s.text == ""
	case stepFormat:
		return s.formats.IsEmpty()
	default:
		return s.blocks.IsEmpty()
	}
}

// Invert returns the step that undoes s.
func (s Step) Invert() Step {
	switch s.kind {
	case stepInsert:
		return DeleteStep(s.pos, s.text)
	case stepDelete:
		return InsertStep(s.pos, s.text)
	case stepFormat:
		return FormatStep(s.formats.Invert())
	default:
		return BlockStep(s.blocks.Invert())
	}
}

// CharsDelta returns the change in document length caused by the step.
func (s Step) CharsDelta() int {
	switch s.kind {
	case stepInsert:
		return utf8.RuneCountInString(s.text)
	case stepDelete:
		return -utf8.RuneCountInString(s.text)
	}
	return 0
}

// Span returns the range the step touched: the inserted text, the removed
// text at its old position, or the range whose formats or block types
// changed. ok is false for a step that only carries ranges across a text
// edit.
func (s Step) Span() (start, end int, ok bool) {
	switch s.kind {
	case stepInsert, stepDelete:
		if s.text == "" {
			return 0, 0, false
		}
		return s.pos, s.pos + utf8.RuneCountInString(s.text), true
	case stepFormat:
		return s.formats.Span()
	default:
		return s.blocks.Span()
	}
}

// Observer is implemented by states that want to see every step applied
// to them.
type Observer interface {
	StepApplied(s Step)
}

// Apply replays the step against st. Deletions verify that the text being
// removed is the text that was recorded. If st is an Observer it is told
// about the step once it has been applied.
func (s Step) Apply(st State) error {
	switch s.kind {
	case stepInsert:
		if _, err := st.Text().Insert(s.pos, s.text); err != nil {
			return fmt.Errorf("insert at %d: %w: %w", s.pos, ErrCorrupted, err)
		}
	case stepDelete:
		end := s.pos + utf8.RuneCountInString(s.text)
		got, err := st.Text().Slice(s.pos, end)
		if err != nil {
			return fmt.Errorf("delete [%d:%d): %w: %w", s.pos, end, ErrCorrupted, err)
		}
		if got != s.text {
			return fmt.Errorf("delete [%d:%d): found %q, recorded %q: %w", s.pos, end, got, s.text, ErrCorrupted)
		}
		if _, err := st.Text().Delete(s.pos, end); err != nil {
			return fmt.Errorf("delete [%d:%d): %w: %w", s.pos, end, ErrCorrupted, err)
		}
	case stepFormat:
		if err := st.Formats().ApplyPatch(s.formats); err != nil {
			return fmt.Errorf("%w: %w", ErrCorrupted, err)
		}
	case stepBlock:
		if err := st.Blocks().ApplyPatch(s.blocks); err != nil {
			return fmt.Errorf("%w: %w", ErrCorrupted, err)
		}
	}
	if o, ok := st.(Observer); ok {
		o.StepApplied(s)
	}
	return nil
}

// OperationInfo provides read-only info about a history entry.
// Used for displaying undo/redo history to users.
type OperationInfo struct {
	Description string    // Human-readable description
	Timestamp   time.Time // When the entry was recorded
	CharsDelta  int       // Positive for insertions, negative for deletions
}

// Steps is an ordered list of steps applied together.
type Steps []Step

// Invert returns the inverse steps in reverse order.
func (ss Steps) Invert() Steps {
	out := make(Steps, len(ss))
	for i, s := range ss {
		out[len(ss)-1-i] = s.Invert()
	}
	return out
}

// CharsDelta returns the total change in document length.
func (ss Steps) CharsDelta() int {
	total := 0
	for _, s := range ss {
		total += s.CharsDelta()
	}
	return total
}

// Apply replays all steps in order. If one fails, the steps already applied
// are reverted before the error is returned.
func (ss Steps) Apply(st State) error {
	for i, s := range ss {
		if err := s.Apply(st); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = ss[j].Invert().Apply(st)
			}
			return err
		}
	}
	return nil
}
