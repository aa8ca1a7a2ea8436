package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	probeTimeout        = time.Second
	probeInitialBackoff = 25 * time.Millisecond
	probeMaxBackoff     = 500 * time.Millisecond
)

// awaitReady waits the startup delay, then polls the status endpoint until
// it answers 2xx, the child exits, or the ready timeout elapses.
func (p *Process) awaitReady(ctx context.Context, opts Options) error {
	if opts.StartupDelay > 0 {
		timer := time.NewTimer(opts.StartupDelay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	if opts.ReadyTimeout <= 0 {
		select {
		case <-p.done:
			return fmt.Errorf("%w: %v", ErrExited, p.exitError())
		default:
			return nil
		}
	}

	path := opts.ReadyPath
	if path == "" {
		path = DefaultReadyPath
	}
	url := p.Endpoint() + path

	rctx, cancel := context.WithTimeout(ctx, opts.ReadyTimeout)
	defer cancel()

	client := &http.Client{Timeout: probeTimeout}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = probeInitialBackoff
	b.MaxInterval = probeMaxBackoff
	b.MaxElapsedTime = 0

	attempts := 0
	op := func() error {
		select {
		case <-p.done:
			return backoff.Permanent(fmt.Errorf("%w: %v", ErrExited, p.exitError()))
		default:
		}
		attempts++
		return probe(rctx, client, url)
	}

	err := backoff.Retry(op, backoff.WithContext(b, rctx))
	switch {
	case err == nil:
		p.log.Debug().Int("pid", p.pid).Int("attempts", attempts).Msg("protocol server ready")
		return nil
	case errors.Is(err, ErrExited):
		return err
	case ctx.Err() != nil:
		return ctx.Err()
	default:
		return fmt.Errorf("%w: %s after %s (%d probes)", ErrNotReady, url, opts.ReadyTimeout, attempts)
	}
}

// probe issues one GET and succeeds on any 2xx status.
func probe(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status probe: HTTP %d", resp.StatusCode)
	}
	return nil
}
