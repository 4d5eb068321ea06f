package catalog

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingCookies is returned by New when no session cookies are configured.
	ErrMissingCookies = errors.New("catalog session cookies are required")

	// ErrInvalidCookies is returned by New when the cookie string cannot be parsed.
	ErrInvalidCookies = errors.New("invalid catalog session cookies")
)

// Error describes a failed listing call. Listing failures are fatal to a
// collection run.
type Error struct {
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode == 0 && e.Err != nil {
		return fmt.Sprintf("catalog listing failed: %s: %v", e.Message, e.Err)
	}
	if e.Err != nil {
		return fmt.Sprintf("catalog listing failed (status %d): %s: %v", e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("catalog listing failed (status %d): %s", e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}
