package parsing

import (
	"errors"
	"fmt"
)

// ErrNoPostText is returned when a stored record matches none of the known layouts.
var ErrNoPostText = errors.New("no publishable post text found")

// Error describes a failure to extract post text from one record
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction failed: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
