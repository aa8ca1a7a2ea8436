package supervisor

import (
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied by DefaultOptions.
const (
	DefaultPath         = "geckodriver"
	DefaultStartupDelay = 100 * time.Millisecond
	DefaultReadyTimeout = 10 * time.Second
	DefaultReadyPath    = "/status"
)

// Host is the name the protocol server is reached at.
const Host = "localhost"

// Options describes how to launch the protocol server.
type Options struct {
	// Path is the executable, looked up in PATH when it has no separator.
	Path string

	// Headless asks the browser to run without a window. The supervisor
	// itself does not use it; the session manager turns it into capabilities.
	Headless bool

	// StartupDelay is waited before the first readiness probe.
	StartupDelay time.Duration

	// ReadyTimeout bounds readiness polling. Zero disables polling and
	// trusts StartupDelay alone.
	ReadyTimeout time.Duration

	// ReadyPath is the HTTP path probed for readiness.
	ReadyPath string

	// Leakless runs the child under the leakless guard so it dies even if
	// this process is killed abruptly.
	Leakless bool

	// Logger receives the child's output and lifecycle events.
	Logger zerolog.Logger
}

// DefaultOptions returns options for a headless geckodriver found in PATH.
func DefaultOptions() Options {
	return Options{
		Path:         DefaultPath,
		Headless:     true,
		StartupDelay: DefaultStartupDelay,
		ReadyTimeout: DefaultReadyTimeout,
		ReadyPath:    DefaultReadyPath,
		Logger:       zerolog.Nop(),
	}
}
