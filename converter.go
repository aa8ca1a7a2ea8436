package file2pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/alnah/go-file2pdf/internal/fileutil"
	"github.com/alnah/go-file2pdf/internal/markup"
	"github.com/alnah/go-file2pdf/internal/supervisor"
	"github.com/alnah/go-file2pdf/internal/webdriver"
)

// Converter runs conversions. Each Convert call starts its own protocol
// server and browser and tears them down before returning; nothing is
// shared between calls.
type Converter struct {
	spawn    SpawnOptions
	port     int
	log      zerolog.Logger
	stdout   io.Writer
	renderer *markup.Renderer
}

// Request describes one conversion.
type Request struct {
	Source          string // local file to print
	OutFile         string // explicit destination, wins over UpdateExtension
	UpdateExtension bool   // write next to Source with a .pdf extension
}

// Result describes a successful conversion.
type Result struct {
	Destination Destination
	Written     int64 // decoded PDF bytes
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithGeckodriver, WithHeadless).
func NewConverter(opts ...Option) *Converter {
	c := &Converter{
		spawn:    DefaultSpawnOptions(),
		log:      zerolog.Nop(),
		stdout:   os.Stdout,
		renderer: markup.NewRenderer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert prints req.Source to its resolved destination.
// Recovers from internal panics to prevent crashes from propagating to callers;
// the protocol server is still torn down on that path.
func (c *Converter) Convert(ctx context.Context, req Request) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if err := validateRequest(req); err != nil {
		return nil, err
	}
	dest := ResolveDestination(req.Source, req.OutFile, req.UpdateExtension)

	target, cleanup, err := c.renderer.Prepare(ctx, req.Source)
	if err != nil {
		return nil, fmt.Errorf("preparing source: %w", err)
	}
	defer cleanup()

	sess, err := c.open(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := sess.Close(ctx); cerr != nil {
			c.log.Warn().Err(cerr).Msg("closing session")
		}
	}()

	c.log.Debug().
		Str("source", req.Source).
		Str("target", target).
		Str("session", sess.ID()).
		Str("browser", sess.Browser()).
		Int("port", sess.Port()).
		Msg("printing")
	payload, err := Render(ctx, sess, target)
	if err != nil {
		return nil, err
	}

	n, err := c.write(payload, dest)
	if err != nil {
		return nil, err
	}
	c.log.Debug().Str("destination", dest.String()).Int64("bytes", n).Msg("pdf written")
	return &Result{Destination: dest, Written: n}, nil
}

// open starts the protocol server and a session on it. The returned
// Session owns the process.
func (c *Converter) open(ctx context.Context) (*Session, error) {
	opts := c.spawn
	opts.Logger = c.log

	proc, err := supervisor.Spawn(ctx, opts, c.port)
	if err != nil {
		return nil, fmt.Errorf("spawning protocol server: %w", err)
	}
	c.logStatus(ctx, proc)

	sess, err := Connect(ctx, proc, opts.Headless)
	if err != nil {
		if cerr := proc.Close(); cerr != nil {
			c.log.Warn().Err(cerr).Msg("stopping protocol server")
		}
		return nil, fmt.Errorf("opening session: %w", err)
	}
	return sess, nil
}

// logStatus records what the protocol server reports about itself.
// A failing status query is not fatal; the handshake decides.
func (c *Converter) logStatus(ctx context.Context, proc *supervisor.Process) {
	client := webdriver.NewClient(proc.Endpoint(), nil)
	status, err := client.Status(ctx)
	if err != nil {
		c.log.Debug().Err(err).Str("endpoint", client.Endpoint()).Msg("status query failed")
		return
	}
	c.log.Debug().
		Int("pid", proc.PID()).
		Str("endpoint", client.Endpoint()).
		Bool("ready", status.Ready).
		Str("message", status.Message).
		Msg("protocol server status")
}

// write streams the payload into the destination. The file is only created
// here, after the payload shape was validated.
func (c *Converter) write(payload string, dest Destination) (int64, error) {
	w, err := dest.Open(c.stdout)
	if err != nil {
		return 0, fmt.Errorf("writing output: %w", err)
	}

	n, werr := WritePayload(payload, w)
	cerr := w.Close()
	if werr != nil {
		return n, fmt.Errorf("writing output: %w", werr)
	}
	if cerr != nil {
		return n, fmt.Errorf("writing output: %w: %w", ErrSink, cerr)
	}
	return n, nil
}

func validateRequest(req Request) error {
	if req.Source == "" {
		return ErrEmptySource
	}
	if !fileutil.FileExists(req.Source) {
		if _, err := os.Stat(req.Source); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s: %w", ErrSourceNotFound, req.Source, err)
		}
		return fmt.Errorf("%w: %s", ErrSourceNotFound, req.Source)
	}
	return nil
}
