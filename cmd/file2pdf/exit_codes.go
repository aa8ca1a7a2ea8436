package main

import (
	"errors"
	"os"

	file2pdf "github.com/alnah/go-file2pdf"
	"github.com/alnah/go-file2pdf/internal/config"
	"github.com/alnah/go-file2pdf/internal/logging"
)

// Exit codes for the file2pdf CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or environment
	ExitIO      = 3 // Source missing, output not writable
	ExitBrowser = 4 // geckodriver/Firefox errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
// Browser errors are checked first: a missing geckodriver also wraps
// fs.ErrNotExist but is not an I/O problem of the user's files.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, file2pdf.ErrSpawn) ||
		errors.Is(err, file2pdf.ErrNotReady) ||
		errors.Is(err, file2pdf.ErrExited) ||
		errors.Is(err, file2pdf.ErrConnect) ||
		errors.Is(err, file2pdf.ErrNavigate) ||
		errors.Is(err, file2pdf.ErrPrint) ||
		errors.Is(err, file2pdf.ErrUnexpectedResponse) ||
		errors.Is(err, file2pdf.ErrDecode) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, file2pdf.ErrSourceNotFound) ||
		errors.Is(err, file2pdf.ErrSink) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrNoSource) ||
		errors.Is(err, file2pdf.ErrEmptySource) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrUnsupportedFormat) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, logging.ErrInvalidLevel) {
		return ExitUsage
	}

	return ExitGeneral
}
