package text

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Validate checks that s may be stored in a document: it must be valid
// UTF-8 and contain no NUL or control characters other than tab, newline
// and carriage return.
func Validate(s string) error {
	for i, r := range s {
		if r == utf8.RuneError {
			if _, size := utf8.DecodeRuneInString(s[i:]); size <= 1 {
				return fmt.Errorf("invalid UTF-8 at byte %d: %w", i, ErrInvalidText)
			}
		}
		if r == 0 {
			return fmt.Errorf("NUL character at byte %d: %w", i, ErrInvalidText)
		}
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return fmt.Errorf("control character %U at byte %d: %w", r, i, ErrInvalidText)
		}
	}
	return nil
}

// Count returns the number of characters in s.
func Count(s string) int {
	return utf8.RuneCountInString(s)
}
