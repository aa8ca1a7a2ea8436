// Package logging builds the process-wide zerolog logger.
// It is configured once in main before any component runs; library code
// receives the resulting zerolog.Logger explicitly and never reads a global.
package logging

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultLevel applies when neither flags nor FILE2PDF_LOG choose a level.
const DefaultLevel = zerolog.InfoLevel

// ErrInvalidLevel indicates an unrecognized log level name.
var ErrInvalidLevel = errors.New("invalid log level")

// New returns a console logger writing to w at the given level.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	}
	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// ParseLevel maps a level name ("debug", "info", "warn", ...) to a zerolog level.
// An empty name yields DefaultLevel.
func ParseLevel(name string) (zerolog.Level, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return DefaultLevel, nil
	}
	if name == "warning" {
		name = "warn"
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || lvl == zerolog.NoLevel {
		return DefaultLevel, fmt.Errorf("%w: %q", ErrInvalidLevel, name)
	}
	return lvl, nil
}

// ResolveLevel picks the effective level.
// Priority: quiet > verbose > configured name.
func ResolveLevel(configured string, verbose, quiet bool) (zerolog.Level, error) {
	switch {
	case quiet:
		return zerolog.ErrorLevel, nil
	case verbose:
		return zerolog.DebugLevel, nil
	}
	return ParseLevel(configured)
}
