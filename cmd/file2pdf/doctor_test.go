package main

// Notes:
// - Tests use black-box approach: testing through runDoctorCmd() observable outputs.
// - PATH and FILE2PDF_GECKODRIVER are replaced with t.Setenv, so these tests
//   cannot use t.Parallel(); fake executables live in doctor_unix_test.go.
// - Internal functions (isContainer, checkGeckodriver, checkSystem) are not
//   tested directly; behavior is verified through command output.

import (
	"bytes"
	"encoding/json"
	"runtime"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestRunDoctorCmd_JSONOutput - JSON output format and structure
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_JSONOutput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	env := &Environment{Stdout: &stdout, Stderr: &stderr}

	exitCode := runDoctorCmd([]string{"--json"}, env)

	var result doctorResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput was: %s", err, stdout.String())
	}

	if result.Env.OS != runtime.GOOS {
		t.Errorf("OS = %q, want %q", result.Env.OS, runtime.GOOS)
	}
	if result.Env.Arch != runtime.GOARCH {
		t.Errorf("Arch = %q, want %q", result.Env.Arch, runtime.GOARCH)
	}

	validStatuses := map[string]bool{"ready": true, "warnings": true, "errors": true}
	if !validStatuses[result.Status] {
		t.Errorf("Invalid status %q, expected ready/warnings/errors", result.Status)
	}

	if result.Status == "errors" && exitCode != ExitGeneral {
		t.Errorf("Expected exit code %d for errors status, got %d", ExitGeneral, exitCode)
	}
	if result.Status != "errors" && exitCode != ExitSuccess {
		t.Errorf("Expected exit code %d for non-error status, got %d", ExitSuccess, exitCode)
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd_MissingGeckodriver - Missing protocol server is an error
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_MissingGeckodriver(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	t.Setenv("FILE2PDF_GECKODRIVER", "")

	var stdout, stderr bytes.Buffer
	env := &Environment{Stdout: &stdout, Stderr: &stderr}

	exitCode := runDoctorCmd([]string{"--json"}, env)

	var result doctorResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput was: %s", err, stdout.String())
	}
	if exitCode != ExitGeneral {
		t.Errorf("exit code = %d, want %d", exitCode, ExitGeneral)
	}
	if result.Status != "errors" {
		t.Errorf("status = %q, want errors", result.Status)
	}
	if result.Geckodriver.Found {
		t.Error("geckodriver reported found with an empty PATH")
	}
	if result.Firefox.Found {
		t.Error("Firefox reported found with an empty PATH")
	}
	if !containsSubstring(result.Errors, "FILE2PDF_GECKODRIVER") {
		t.Errorf("errors = %q, want a FILE2PDF_GECKODRIVER suggestion", result.Errors)
	}
	if !containsSubstring(result.Warnings, "Firefox not found") {
		t.Errorf("warnings = %q, want a Firefox warning", result.Warnings)
	}
}

// ---------------------------------------------------------------------------
// TestRunDoctorCmd_HumanOutput - Text report sections
// ---------------------------------------------------------------------------

func TestRunDoctorCmd_HumanOutput(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	t.Setenv("FILE2PDF_GECKODRIVER", "")

	var stdout, stderr bytes.Buffer
	env := &Environment{Stdout: &stdout, Stderr: &stderr}

	runDoctorCmd(nil, env)

	out := stdout.String()
	for _, want := range []string{
		"file2pdf doctor",
		"geckodriver\n  [ERROR] Not found",
		"Firefox\n  [WARN] Not found",
		"Environment",
		"System",
		"Status: Not ready",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestRunDoctorCmd_Container(t *testing.T) {
	t.Setenv("FILE2PDF_CONTAINER", "1")

	var stdout bytes.Buffer
	env := &Environment{Stdout: &stdout, Stderr: &bytes.Buffer{}}

	runDoctorCmd([]string{"--json"}, env)

	var result doctorResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("Invalid JSON output: %v", err)
	}
	if !result.Env.Container || result.Env.ContainerHint != "FILE2PDF_CONTAINER=1" {
		t.Errorf("container = %v (%q), want detected via FILE2PDF_CONTAINER", result.Env.Container, result.Env.ContainerHint)
	}
}

func TestRunDoctorCmd_Arguments(t *testing.T) {
	t.Parallel()

	t.Run("help", func(t *testing.T) {
		t.Parallel()

		var stdout, stderr bytes.Buffer
		code := runDoctorCmd([]string{"--help"}, &Environment{Stdout: &stdout, Stderr: &stderr})

		if code != ExitSuccess {
			t.Errorf("exit code = %d, want 0", code)
		}
		if !strings.Contains(stdout.String(), "Usage: file2pdf doctor") {
			t.Errorf("stdout = %q, want doctor usage", stdout.String())
		}
	})

	t.Run("unknown argument", func(t *testing.T) {
		t.Parallel()

		var stdout, stderr bytes.Buffer
		code := runDoctorCmd([]string{"--yaml"}, &Environment{Stdout: &stdout, Stderr: &stderr})

		if code != ExitUsage {
			t.Errorf("exit code = %d, want %d", code, ExitUsage)
		}
		if !strings.Contains(stderr.String(), "--yaml") {
			t.Errorf("stderr = %q, want the rejected argument", stderr.String())
		}
	})
}

func containsSubstring(items []string, sub string) bool {
	for _, s := range items {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
