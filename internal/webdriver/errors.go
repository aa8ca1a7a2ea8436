package webdriver

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse indicates a reply that is not a JSON {"value": ...} envelope.
var ErrMalformedResponse = errors.New("malformed webdriver response")

// Error is a protocol-level failure reported by the remote end.
type Error struct {
	Status  int    // HTTP status code
	Code    string // WebDriver error code, e.g. "session not created"
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("webdriver: %s (HTTP %d)", e.Code, e.Status)
	}
	return fmt.Sprintf("webdriver: %s (HTTP %d): %s", e.Code, e.Status, e.Message)
}
