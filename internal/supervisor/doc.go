// Package supervisor spawns and owns the protocol server child process
// (geckodriver or anything honoring `<path> --port <N>`).
//
// A Process is alive from a successful Spawn until Close. Close kills the
// child's whole process group, reaps it and joins the two goroutines draining
// its stdout and stderr into the logger. Callers defer Close immediately
// after Spawn so that every exit path tears the child down.
//
// Readiness is a short grace delay followed by bounded polling of the
// server's HTTP status endpoint with exponential backoff. A ReadyTimeout of
// zero keeps only the grace delay.
package supervisor
