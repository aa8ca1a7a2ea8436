package main

// Notes:
// - runMain: we test dispatch and exit codes for the built-in commands here;
//   conversions through runMain live in convert_test.go.
// - TestMain lets the test binary double as a fake geckodriver
//   (webdrivertest.Helper) for the end-to-end conversion tests.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alnah/go-file2pdf/internal/webdrivertest"
)

func TestMain(m *testing.M) {
	webdrivertest.MaybeServe()
	os.Exit(m.Run())
}

// ---------------------------------------------------------------------------
// Test Infrastructure
// ---------------------------------------------------------------------------

// syncBuffer is a bytes.Buffer safe for the concurrent writes of the
// geckodriver output drains.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testEnv() (*Environment, *syncBuffer, *syncBuffer) {
	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	env := &Environment{
		Now:    func() time.Time { return time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC) },
		Stdout: stdout,
		Stderr: stderr,
	}
	return env, stdout, stderr
}

// clearFile2PDFEnv blanks the variables read by loadEnvConfig so the
// caller's shell cannot leak into a test.
func clearFile2PDFEnv(t *testing.T) {
	t.Helper()
	for name := range knownEnvVars {
		t.Setenv(name, "")
	}
}

// ---------------------------------------------------------------------------
// TestRunMain - Command dispatch
// ---------------------------------------------------------------------------

func TestRunMain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{"no arguments", []string{"file2pdf"}, ExitUsage, "", "Usage: file2pdf"},
		{"version", []string{"file2pdf", "version"}, ExitSuccess, "file2pdf dev", ""},
		{"version flag", []string{"file2pdf", "--version"}, ExitSuccess, "file2pdf dev", ""},
		{"help", []string{"file2pdf", "help"}, ExitSuccess, "Commands:", ""},
		{"help flag", []string{"file2pdf", "--help"}, ExitSuccess, "Commands:", ""},
		{"help convert", []string{"file2pdf", "help", "convert"}, ExitSuccess, "--geckodriver-path", ""},
		{"help unknown", []string{"file2pdf", "help", "bogus"}, ExitUsage, "", "Unknown command: bogus"},
		{"convert help", []string{"file2pdf", "convert", "--help"}, ExitSuccess, "--out-file", ""},
		{"unknown flag", []string{"file2pdf", "--bogus"}, ExitUsage, "", "invalid usage"},
		{"no source", []string{"file2pdf", "convert", "-q"}, ExitUsage, "", "no source file specified"},
		{"two sources", []string{"file2pdf", "a.html", "b.html"}, ExitUsage, "", "expected one source file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env, stdout, stderr := testEnv()
			code := runMain(context.Background(), tt.args, env)

			if code != tt.wantCode {
				t.Errorf("runMain() = %d, want %d (stderr: %s)", code, tt.wantCode, stderr.String())
			}
			if tt.wantStdout != "" && !strings.Contains(stdout.String(), tt.wantStdout) {
				t.Errorf("stdout = %q, want to contain %q", stdout.String(), tt.wantStdout)
			}
			if tt.wantStderr != "" && !strings.Contains(stderr.String(), tt.wantStderr) {
				t.Errorf("stderr = %q, want to contain %q", stderr.String(), tt.wantStderr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestHasVerboseFlag - GOMAXPROCS logging switch
// ---------------------------------------------------------------------------

func TestHasVerboseFlag(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want bool
	}{
		{"none", []string{"page.html"}, false},
		{"short", []string{"-v", "page.html"}, true},
		{"long", []string{"convert", "--verbose", "page.html"}, true},
		{"after terminator", []string{"--", "-v"}, false},
		{"other flag", []string{"--version"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := hasVerboseFlag(tt.args); got != tt.want {
				t.Errorf("hasVerboseFlag(%q) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestSetMaxProcs - Logging follows verbosity
// ---------------------------------------------------------------------------

func TestSetMaxProcs_QuietWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	setMaxProcs(&buf, false)
	if buf.Len() != 0 {
		t.Errorf("setMaxProcs(verbose=false) wrote %q", buf.String())
	}
}

func TestIsCommand(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"convert", "doctor", "version", "help"} {
		if !isCommand(name) {
			t.Errorf("isCommand(%q) = false, want true", name)
		}
	}
	for _, name := range []string{"page.html", "-v", "completion", ""} {
		if isCommand(name) {
			t.Errorf("isCommand(%q) = true, want false", name)
		}
	}
}
