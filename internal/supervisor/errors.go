package supervisor

import "errors"

// Sentinel errors for process supervision failures.
var (
	ErrExec     = errors.New("cannot execute protocol server")
	ErrExited   = errors.New("protocol server exited during startup")
	ErrNotReady = errors.New("protocol server did not become ready")
)
