package history

import (
	"errors"
	"fmt"
)

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")

	// ErrCorrupted is wrapped by HistoryError when a recorded step no
	// longer matches the document it is replayed against.
	ErrCorrupted = errors.New("history does not match document state")
)

// HistoryError reports a failure to replay a command. It signals an
// internal inconsistency, not a recoverable user error.
type HistoryError struct {
	Op      string // "undo" or "redo"
	Command string // description of the failing command
	Err     error
}

func (e *HistoryError) Error() string {
	return fmt.Sprintf("history %s %q: %v", e.Op, e.Command, e.Err)
}

func (e *HistoryError) Unwrap() error {
	return e.Err
}
