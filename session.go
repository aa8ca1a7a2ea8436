package file2pdf

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alnah/go-file2pdf/internal/supervisor"
	"github.com/alnah/go-file2pdf/internal/webdriver"
)

// firefoxOptionsKey selects Firefox-specific capabilities.
const firefoxOptionsKey = "moz:firefoxOptions"

// deleteSessionTimeout bounds the DELETE issued on Close, which runs even
// after the caller's context is done.
const deleteSessionTimeout = 5 * time.Second

// Session is an open WebDriver session together with the protocol server
// process it talks to. Closing the Session closes the process.
type Session struct {
	wd   *webdriver.Session
	proc *supervisor.Process

	closeOnce sync.Once
	closeErr  error
}

// Capabilities returns the capability document for a Firefox session.
func Capabilities(headless bool) webdriver.Capabilities {
	opts := map[string]any{}
	if headless {
		opts["args"] = []string{"--headless"}
	}
	return webdriver.Capabilities{firefoxOptionsKey: opts}
}

// Connect opens a session against proc. On success the Session takes
// ownership of proc. On failure proc is left untouched and the caller
// still has to close it.
func Connect(ctx context.Context, proc *supervisor.Process, headless bool) (*Session, error) {
	client := webdriver.NewClient(proc.Endpoint(), nil)
	wd, err := client.NewSession(ctx, Capabilities(headless))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnect, err)
	}
	return &Session{wd: wd, proc: proc}, nil
}

// ID returns the WebDriver session id.
func (s *Session) ID() string { return s.wd.ID() }

// Port returns the port of the underlying protocol server.
func (s *Session) Port() int { return s.proc.Port() }

// Browser describes the browser the remote end granted, e.g. "firefox 128.0".
func (s *Session) Browser() string {
	caps := s.wd.Capabilities()
	name := caps.Get("browserName").String()
	if version := caps.Get("browserVersion").String(); version != "" {
		return name + " " + version
	}
	return name
}

// Close deletes the WebDriver session, then kills the protocol server.
// The delete is attempted even when ctx is already done. Close is idempotent;
// every call returns the first call's result.
func (s *Session) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deleteSessionTimeout)
		defer cancel()

		var errs []error
		if err := s.wd.Close(dctx); err != nil {
			errs = append(errs, fmt.Errorf("deleting session: %w", err))
		}
		if err := s.proc.Close(); err != nil {
			errs = append(errs, fmt.Errorf("stopping protocol server: %w", err))
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}
