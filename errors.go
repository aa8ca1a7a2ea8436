package file2pdf

import (
	"errors"
	"fmt"

	"github.com/alnah/go-file2pdf/internal/supervisor"
)

// Sentinel errors for conversion stages.
var (
	// Process supervision, shared with internal/supervisor.
	ErrSpawn    = supervisor.ErrExec
	ErrNotReady = supervisor.ErrNotReady
	ErrExited   = supervisor.ErrExited

	ErrConnect            = errors.New("failed to open browser session")
	ErrNavigate           = errors.New("failed to navigate to document")
	ErrPrint              = errors.New("print command failed")
	ErrUnexpectedResponse = errors.New("unexpected print response shape")
	ErrDecode             = errors.New("invalid base64 payload")
	ErrSink               = errors.New("failed to write output")

	// Input validation errors.
	ErrEmptySource    = errors.New("source path cannot be empty")
	ErrSourceNotFound = errors.New("source file not found")
)

// maxRawInError bounds how much of an unexpected value is kept in messages.
const maxRawInError = 200

// UnexpectedResponseError carries the print reply that was not a string.
type UnexpectedResponseError struct {
	Raw string // JSON text of the "value" member
}

func (e *UnexpectedResponseError) Error() string {
	raw := e.Raw
	if len(raw) > maxRawInError {
		raw = raw[:maxRawInError] + "..."
	}
	return fmt.Sprintf("%v: got %s", ErrUnexpectedResponse, raw)
}

// Is makes errors.Is(err, ErrUnexpectedResponse) match.
func (e *UnexpectedResponseError) Is(target error) bool {
	return target == ErrUnexpectedResponse
}
