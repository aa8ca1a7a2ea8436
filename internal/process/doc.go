// Package process holds the OS-specific pieces of child process supervision:
// process-group isolation, group kill and a liveness probe.
package process
