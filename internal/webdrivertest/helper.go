package webdrivertest

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

// Environment variables read by a test binary running as a fake geckodriver.
const (
	EnvHelper     = "GO_WANT_FAKE_DRIVER"
	EnvMode       = "GO_FAKE_DRIVER_MODE"
	EnvPrintValue = "GO_FAKE_DRIVER_PRINT"
	EnvFlood      = "GO_FAKE_DRIVER_FLOOD"
	EnvSession    = "GO_FAKE_DRIVER_SESSION_ERROR"
)

// Helper modes.
const (
	ModeServe  = "serve"  // serve the fake remote end on --port
	ModeExit   = "exit"   // exit with status 3 right away
	ModeSilent = "silent" // never listen, sleep until killed
)

// HelperOptions configures a helper child.
type HelperOptions struct {
	Mode       string // defaults to ModeServe
	PrintValue string // raw JSON print value, see Config.PrintValue
	Flood      int    // bytes written to both stdout and stderr before listening

	// SessionError makes the fake refuse new sessions with this error code.
	SessionError string
}

// Helper arranges for the current test binary to act as a fake protocol
// server when spawned, and returns its path. It uses t.Setenv, so the
// calling test must not be parallel.
func Helper(t testing.TB, opts HelperOptions) string {
	t.Helper()

	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("locating test binary: %v", err)
	}
	if opts.Mode == "" {
		opts.Mode = ModeServe
	}

	t.Setenv(EnvHelper, "1")
	t.Setenv(EnvMode, opts.Mode)
	t.Setenv(EnvPrintValue, opts.PrintValue)
	t.Setenv(EnvFlood, strconv.Itoa(opts.Flood))
	t.Setenv(EnvSession, opts.SessionError)
	return exe
}

// MaybeServe turns the process into a fake protocol server when EnvHelper is
// set, and never returns in that case. Call it first thing in TestMain.
func MaybeServe() {
	if os.Getenv(EnvHelper) != "1" {
		return
	}
	os.Exit(serveHelper(os.Args[1:]))
}

func serveHelper(args []string) int {
	port, err := portArg(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	switch os.Getenv(EnvMode) {
	case ModeExit:
		fmt.Fprintln(os.Stderr, "fake driver exiting on request")
		return 3
	case ModeSilent:
		for {
			time.Sleep(time.Hour)
		}
	}

	if n, _ := strconv.Atoi(os.Getenv(EnvFlood)); n > 0 {
		flood(os.Stdout, n)
		flood(os.Stderr, n)
	}

	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "fake driver: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stdout, "Listening on %s\n", ln.Addr())

	handler := NewHandler(Config{
		PrintValue:   os.Getenv(EnvPrintValue),
		SessionError: os.Getenv(EnvSession),
	})
	if err := http.Serve(ln, handler); err != nil {
		fmt.Fprintf(os.Stderr, "fake driver: %v\n", err)
		return 1
	}
	return 0
}

func portArg(args []string) (int, error) {
	for i, a := range args {
		if a == "--port" && i+1 < len(args) {
			return strconv.Atoi(args[i+1])
		}
		if v, ok := strings.CutPrefix(a, "--port="); ok {
			return strconv.Atoi(v)
		}
	}
	return 0, fmt.Errorf("fake driver: missing --port in %q", args)
}

// flood writes n bytes as 1 KiB lines.
func flood(f *os.File, n int) {
	line := strings.Repeat("x", 1023) + "\n"
	for written := 0; written < n; written += len(line) {
		_, _ = f.WriteString(line)
	}
}
