package engine

import (
	"errors"
	"fmt"

	"github.com/dshills/scribe/internal/codec"
	"github.com/dshills/scribe/internal/engine/history"
)

// Errors returned by document operations.
var (
	// ErrInvalidPosition indicates an offset outside [0, length].
	ErrInvalidPosition = errors.New("invalid position")

	// ErrInvalidRange indicates start > end or a bound outside the text.
	ErrInvalidRange = errors.New("invalid range")

	// ErrInvalidSelection indicates a selection endpoint outside the text.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrInvalidFormat indicates an unknown format or block type, or a
	// value that fails validation.
	ErrInvalidFormat = errors.New("invalid format")

	// ErrInvalidText indicates text with NUL or control characters.
	ErrInvalidText = fmt.Errorf("%w: invalid text", ErrInvalidFormat)

	// ErrMaxLengthExceeded indicates an edit would grow the document past
	// its configured maximum length.
	ErrMaxLengthExceeded = errors.New("maximum document length exceeded")

	// ErrSerialization is matched by every SerializationError.
	ErrSerialization = errors.New("serialization error")

	// ErrHistory indicates a history command could not be replayed.
	ErrHistory = history.ErrCorrupted

	// ErrDestroyed indicates an operation on a destroyed document.
	ErrDestroyed = errors.New("document destroyed")

	// ErrInvalidQuery indicates an empty search query or a bad pattern.
	ErrInvalidQuery = errors.New("invalid search query")

	// ErrBatchActive indicates undo or redo was called inside Batch.
	ErrBatchActive = errors.New("operation not allowed inside a batch")

	// ErrCompositionActive indicates an operation that cannot run while an
	// input method composition is in progress.
	ErrCompositionActive = errors.New("operation not allowed during composition")

	// ErrNoComposition indicates a composition call with no composition in
	// progress.
	ErrNoComposition = errors.New("no composition in progress")
)

// HistoryError reports an undo or redo that failed to replay.
type HistoryError = history.HistoryError

// PositionError reports an offset outside the document.
type PositionError struct {
	Pos    int
	Length int
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("position %d outside [0, %d]", e.Pos, e.Length)
}

// Is allows errors.Is to match PositionError with ErrInvalidPosition.
func (e *PositionError) Is(target error) bool {
	return target == ErrInvalidPosition
}

// RangeError reports a range that is reversed or outside the document.
type RangeError struct {
	Start  int
	End    int
	Length int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range [%d, %d) invalid for length %d", e.Start, e.End, e.Length)
}

// Is allows errors.Is to match RangeError with ErrInvalidRange.
func (e *RangeError) Is(target error) bool {
	return target == ErrInvalidRange
}

// SerializationError reports malformed import input.
type SerializationError struct {
	Format string
	Reason string
	Err    error
}

func (e *SerializationError) Error() string {
	msg := "decode " + e.Format + ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is allows errors.Is to match SerializationError with ErrSerialization.
func (e *SerializationError) Is(target error) bool {
	return target == ErrSerialization
}

// Unwrap returns the underlying error.
func (e *SerializationError) Unwrap() error {
	return e.Err
}

// serializationError converts a decoder failure.
func serializationError(format string, err error) error {
	var ce *codec.Error
	if errors.As(err, &ce) {
		return &SerializationError{Format: ce.Format, Reason: ce.Reason, Err: ce.Err}
	}
	if errors.Is(err, ErrMaxLengthExceeded) {
		return err
	}
	return &SerializationError{Format: format, Reason: "invalid content", Err: err}
}

func checkPosition(pos, length int) error {
	if pos < 0 || pos > length {
		return &PositionError{Pos: pos, Length: length}
	}
	return nil
}

func checkRange(start, end, length int) error {
	if start < 0 || start > end || end > length {
		return &RangeError{Start: start, End: end, Length: length}
	}
	return nil
}
