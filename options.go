package file2pdf

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-file2pdf/internal/supervisor"
)

// SpawnOptions describes how the protocol server is launched.
type SpawnOptions = supervisor.Options

// DefaultSpawnOptions returns options for a headless geckodriver from PATH.
func DefaultSpawnOptions() SpawnOptions {
	return supervisor.DefaultOptions()
}

// Option configures a Converter.
type Option func(*Converter)

// WithSpawnOptions replaces all spawn options at once. The converter's
// logger still overrides opts.Logger.
func WithSpawnOptions(opts SpawnOptions) Option {
	return func(c *Converter) {
		c.spawn = opts
	}
}

// WithGeckodriver sets the protocol server executable.
func WithGeckodriver(path string) Option {
	return func(c *Converter) {
		if path != "" {
			c.spawn.Path = path
		}
	}
}

// WithHeadless toggles headless Firefox. Default is true.
func WithHeadless(headless bool) Option {
	return func(c *Converter) {
		c.spawn.Headless = headless
	}
}

// WithPort sets the port the protocol server listens on. Zero, the
// default, picks a free loopback port.
func WithPort(port int) Option {
	return func(c *Converter) {
		if port >= 0 {
			c.port = port
		}
	}
}

// WithStartupDelay sets the grace delay before readiness probing.
func WithStartupDelay(d time.Duration) Option {
	return func(c *Converter) {
		if d >= 0 {
			c.spawn.StartupDelay = d
		}
	}
}

// WithReadyTimeout bounds readiness polling. Zero disables polling.
func WithReadyTimeout(d time.Duration) Option {
	return func(c *Converter) {
		if d >= 0 {
			c.spawn.ReadyTimeout = d
		}
	}
}

// WithLeakless runs the protocol server under the leakless guard.
func WithLeakless(enabled bool) Option {
	return func(c *Converter) {
		c.spawn.Leakless = enabled
	}
}

// WithLogger sets the logger receiving lifecycle events and the protocol
// server's output. Default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Converter) {
		c.log = l
	}
}

// WithStdout sets the writer used for DestinationStdout. Default os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(c *Converter) {
		if w != nil {
			c.stdout = w
		}
	}
}
