package supervisor

import (
	"fmt"
	"net"
)

// FreePort asks the kernel for an unused loopback TCP port.
// The port is released before returning, so another process could grab it
// before the protocol server binds; Spawn reports that as a readiness failure.
func FreePort() (int, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("allocating port: %w", err)
	}
	defer ln.Close()

	addr, ok := ln.Addr().(*net.TCPAddr)
	if !ok {
		return 0, fmt.Errorf("allocating port: unexpected address %v", ln.Addr())
	}
	return addr.Port, nil
}
