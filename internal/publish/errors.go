// Package publish posts approved text to LinkedIn and manages the member
// access token used to do it.
package publish

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCredential means no access token is configured
	ErrNoCredential = errors.New("no LinkedIn access token configured")
	// ErrTokenExpired means the stored access token is past its expiry
	ErrTokenExpired = errors.New("LinkedIn access token expired")
)

// Error describes a failed call to the LinkedIn API.
// StatusCode is zero when no response was received.
type Error struct {
	StatusCode int
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Cause != nil {
		return fmt.Sprintf("publish: %s: %v", msg, e.Cause)
	}
	return "publish: " + msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}
