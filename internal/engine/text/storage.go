package text

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unicode/utf8"

	"github.com/dshills/scribe/internal/engine/rope"
)

// Errors returned by storage operations.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
	ErrInvalidText      = errors.New("invalid text")
)

// RevisionID identifies one state of a Storage.
type RevisionID uint64

var revisionCounter uint64

// NewRevisionID generates a new process-unique revision ID.
func NewRevisionID() RevisionID {
	return RevisionID(atomic.AddUint64(&revisionCounter, 1))
}

// Storage holds the characters of a document.
// It is not safe for concurrent use; the owning document serialises access.
type Storage struct {
	rope     rope.Rope
	revision RevisionID
}

// New creates an empty storage.
func New() *Storage {
	return &Storage{rope: rope.New(), revision: NewRevisionID()}
}

// FromString creates a storage holding s.
// The caller is expected to have validated s.
func FromString(s string) *Storage {
	return &Storage{rope: rope.FromString(s), revision: NewRevisionID()}
}

// Len returns the number of characters.
func (s *Storage) Len() int {
	return s.rope.Len()
}

// ByteLen returns the UTF-8 size of the content.
func (s *Storage) ByteLen() int {
	return s.rope.ByteLen()
}

// IsEmpty reports whether the storage holds no characters.
func (s *Storage) IsEmpty() bool {
	return s.rope.IsEmpty()
}

// LineCount returns the number of newline-separated lines (at least 1).
func (s *Storage) LineCount() int {
	return s.rope.LineCount()
}

// Revision returns the current revision ID.
func (s *Storage) Revision() RevisionID {
	return s.revision
}

// String returns the full content.
func (s *Storage) String() string {
	return s.rope.String()
}

// Rope returns the backing rope. Ropes are immutable, so the result is a
// stable snapshot.
func (s *Storage) Rope() rope.Rope {
	return s.rope
}

// ValidPosition reports whether pos is in [0, Len()].
func (s *Storage) ValidPosition(pos int) bool {
	return pos >= 0 && pos <= s.rope.Len()
}

// ValidRange reports whether 0 <= start <= end <= Len().
func (s *Storage) ValidRange(start, end int) bool {
	return start >= 0 && start <= end && end <= s.rope.Len()
}

// Slice returns the characters in [start, end).
func (s *Storage) Slice(start, end int) (string, error) {
	if !s.ValidRange(start, end) {
		return "", fmt.Errorf("slice [%d:%d) of %d: %w", start, end, s.rope.Len(), ErrRangeInvalid)
	}
	return s.rope.Slice(start, end), nil
}

// RuneAt returns the character starting at pos.
func (s *Storage) RuneAt(pos int) (rune, bool) {
	return s.rope.RuneAt(pos)
}

// Insert splices text in at pos and returns the number of characters added.
func (s *Storage) Insert(pos int, text string) (int, error) {
	if !s.ValidPosition(pos) {
		return 0, fmt.Errorf("insert at %d of %d: %w", pos, s.rope.Len(), ErrOffsetOutOfRange)
	}
	if text == "" {
		return 0, nil
	}
	s.rope = s.rope.Insert(pos, text)
	s.revision = NewRevisionID()
	return utf8.RuneCountInString(text), nil
}

// Delete removes [start, end) and returns the removed characters.
func (s *Storage) Delete(start, end int) (string, error) {
	if !s.ValidRange(start, end) {
		return "", fmt.Errorf("delete [%d:%d) of %d: %w", start, end, s.rope.Len(), ErrRangeInvalid)
	}
	if start == end {
		return "", nil
	}
	removed := s.rope.Slice(start, end)
	s.rope = s.rope.Delete(start, end)
	s.revision = NewRevisionID()
	return removed, nil
}

// Reset replaces the whole content.
func (s *Storage) Reset(content string) {
	s.rope = rope.FromString(content)
	s.revision = NewRevisionID()
}
