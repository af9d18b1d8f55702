package codec

import (
	"errors"
	"fmt"
)

// Format names used in errors.
const (
	FormatJSON     = "json"
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

var (
	// ErrMalformed indicates input that cannot be decoded.
	ErrMalformed = errors.New("malformed input")

	// ErrUnsupportedVersion indicates a JSON document with an unknown version.
	ErrUnsupportedVersion = errors.New("unsupported version")
)

// Error describes a failed encode or decode.
type Error struct {
	Format string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Format, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", e.Format, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func malformed(format, reason string, err error) *Error {
	if err == nil {
		err = ErrMalformed
	} else {
		err = fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return &Error{Format: format, Reason: reason, Err: err}
}
