package supervisor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/alnah/go-file2pdf/internal/process"
)

const (
	// killTimeout bounds the wait for the child to be reaped after SIGKILL.
	killTimeout = 5 * time.Second

	// maxLineSize is the longest output line logged as a single entry.
	// Longer lines end line logging for that stream; the rest is discarded.
	maxLineSize = 1 << 20
)

// Process is a running protocol server.
type Process struct {
	cmd    *exec.Cmd
	leader int // pid of the process we started (the guard under leakless)
	pid    int // pid of the protocol server itself
	port   int
	log    zerolog.Logger

	stdout *os.File // read ends owned by the drains
	stderr *os.File
	drains sync.WaitGroup

	done    chan struct{}
	waitErr error

	closeOnce sync.Once
	closeErr  error
}

// Spawn launches `<opts.Path> --port <port>` and waits until it is ready.
// A port of 0 picks a free loopback port.
//
// On success the caller owns the Process and must Close it. On failure
// nothing is left running.
func Spawn(ctx context.Context, opts Options, port int) (*Process, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Path == "" {
		opts.Path = DefaultPath
	}
	if port == 0 {
		p, err := FreePort()
		if err != nil {
			return nil, err
		}
		port = p
	}

	cmd, guard := command(opts, port)
	process.Isolate(cmd)

	outR, outW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("creating stdout pipe: %w", err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		closeAll(outR, outW)
		return nil, fmt.Errorf("creating stderr pipe: %w", err)
	}
	cmd.Stdout = outW
	cmd.Stderr = errW

	if err := cmd.Start(); err != nil {
		closeAll(outR, outW, errR, errW)
		return nil, fmt.Errorf("%w: %s: %w", ErrExec, opts.Path, err)
	}
	// The child holds its own copies of the write ends.
	closeAll(outW, errW)

	p := &Process{
		cmd:    cmd,
		leader: cmd.Process.Pid,
		pid:    cmd.Process.Pid,
		port:   port,
		log:    opts.Logger,
		stdout: outR,
		stderr: errR,
		done:   make(chan struct{}),
	}
	go p.wait()
	p.drains.Add(2)
	go p.drain(outR, "stdout", zerolog.DebugLevel)
	go p.drain(errR, "stderr", zerolog.WarnLevel)

	if guard != nil {
		pid, err := guardedPID(guard, p.done)
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("%w: %s: %w", ErrExec, opts.Path, err)
		}
		p.pid = pid
	}

	p.log.Debug().
		Str("path", opts.Path).
		Int("pid", p.pid).
		Int("port", p.port).
		Bool("leakless", guard != nil).
		Msg("protocol server started")

	if err := p.awaitReady(ctx, opts); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

// Port returns the TCP port the server was told to listen on.
func (p *Process) Port() int { return p.port }

// PID returns the operating system id of the protocol server.
func (p *Process) PID() int { return p.pid }

// Endpoint returns the base URL of the server. Readiness probes and
// sessions both dial it.
func (p *Process) Endpoint() string {
	return "http://" + net.JoinHostPort(Host, strconv.Itoa(p.port))
}

// Done is closed once the child has exited and been reaped.
func (p *Process) Done() <-chan struct{} { return p.done }

// Close kills the child and its process group, reaps it and stops the
// drains. It is idempotent and safe to call after the child already exited.
func (p *Process) Close() error {
	p.closeOnce.Do(func() { p.closeErr = p.shutdown() })
	return p.closeErr
}

func (p *Process) shutdown() error {
	// The group may outlive its leader (a browser started by the server),
	// so the group is killed even when the leader is gone.
	process.KillProcessGroup(p.leader)
	select {
	case <-p.done:
	default:
		_ = p.cmd.Process.Kill()
	}

	var err error
	select {
	case <-p.done:
	case <-time.After(killTimeout):
		err = fmt.Errorf("protocol server (pid %d) not reaped after %s", p.pid, killTimeout)
	}

	closeAll(p.stdout, p.stderr)
	p.drains.Wait()

	p.log.Debug().Int("pid", p.pid).Msg("protocol server stopped")
	return err
}

func (p *Process) wait() {
	p.waitErr = p.cmd.Wait()
	close(p.done)
}

// exitError describes how the child exited. Only valid after done is closed.
func (p *Process) exitError() error {
	if p.waitErr != nil {
		return p.waitErr
	}
	return fmt.Errorf("exit status %d", p.cmd.ProcessState.ExitCode())
}

// drain logs each line of r until EOF or until r is closed by shutdown.
func (p *Process) drain(r io.Reader, stream string, level zerolog.Level) {
	defer p.drains.Done()

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		p.log.WithLevel(level).
			Str("stream", stream).
			Int("pid", p.leader).
			Msg(sc.Text())
	}
	if err := sc.Err(); err != nil && !errors.Is(err, bufio.ErrTooLong) {
		return
	}
	// Keep the pipe empty so the child never blocks on a full buffer.
	_, _ = io.Copy(io.Discard, r)
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
