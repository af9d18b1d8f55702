package script

import (
	"errors"
	"fmt"
)

// Errors for script execution.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("script state is closed")

	// ErrTimeout is returned when a run exceeds its timeout.
	ErrTimeout = errors.New("script timeout")

	// ErrCallLimit is returned when a run exceeds its document call budget.
	ErrCallLimit = errors.New("script call limit exceeded")

	// ErrNoDocument is returned by doc functions when no document is bound.
	ErrNoDocument = errors.New("no document bound")
)

// Error reports a failed script run.
type Error struct {
	// Script is the chunk name passed to Run.
	Script string
	// Message is the Lua error message, with position when known.
	Message string
	// Err is the Go error behind the failure, if any.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("script %s: %s", e.Script, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}
