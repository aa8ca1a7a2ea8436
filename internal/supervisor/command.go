package supervisor

import (
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/ysmood/leakless"
)

// guardPIDTimeout bounds how long we wait for the leakless guard to report
// the PID of the process it launched.
const guardPIDTimeout = 5 * time.Second

// command builds the exec.Cmd for `<path> --port <port>`, wrapped in the
// leakless guard when requested and supported on this platform.
func command(opts Options, port int) (*exec.Cmd, *leakless.Launcher) {
	args := []string{"--port", strconv.Itoa(port)}
	if opts.Leakless && leakless.Support() {
		guard := leakless.New()
		return guard.Command(opts.Path, args...), guard
	}
	return exec.Command(opts.Path, args...), nil
}

// guardedPID waits for the guard to report the real child PID.
func guardedPID(guard *leakless.Launcher, exited <-chan struct{}) (int, error) {
	select {
	case pid := <-guard.Pid():
		if pid <= 0 || guard.Err() != "" {
			return 0, fmt.Errorf("leakless guard: %s", guard.Err())
		}
		return pid, nil
	case <-exited:
		return 0, fmt.Errorf("leakless guard exited: %s", guard.Err())
	case <-time.After(guardPIDTimeout):
		return 0, fmt.Errorf("leakless guard did not report a pid within %s", guardPIDTimeout)
	}
}
