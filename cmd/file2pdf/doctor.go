package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/ysmood/leakless"

	"github.com/alnah/go-file2pdf/internal/hints"
	"github.com/alnah/go-file2pdf/internal/supervisor"
)

// versionTimeout bounds each "<binary> --version" probe.
const versionTimeout = 10 * time.Second

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status      string     `json:"status"` // "ready", "warnings", "errors"
	Geckodriver binaryInfo `json:"geckodriver"`
	Firefox     binaryInfo `json:"firefox"`
	Env         envInfo    `json:"environment"`
	System      systemInfo `json:"system"`
	Warnings    []string   `json:"warnings,omitempty"`
	Errors      []string   `json:"errors,omitempty"`
}

// binaryInfo holds executable detection results.
type binaryInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS              string `json:"os"`
	Arch            string `json:"arch"`
	Container       bool   `json:"container"`
	ContainerHint   string `json:"container_hint,omitempty"`
	CI              bool   `json:"ci"`
	Display         bool   `json:"display"`
	GeckodriverEnv  string `json:"file2pdf_geckodriver"`
	LeaklessSupport bool   `json:"leakless_supported"`
}

// systemInfo holds system check results.
type systemInfo struct {
	TempWritable  bool `json:"temp_writable"`
	LoopbackPorts bool `json:"loopback_ports"`
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := false
	for _, arg := range args {
		switch arg {
		case "--json":
			jsonOutput = true
		case "-h", "--help":
			printDoctorUsage(env.Stdout)
			return ExitSuccess
		default:
			fmt.Fprintf(env.Stderr, "error: %v: unknown doctor argument %q\n", ErrUsage, arg)
			return ExitUsage
		}
	}

	result := runDoctor()

	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == "errors" {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor() *doctorResult {
	result := &doctorResult{
		Status: "ready",
		Env: envInfo{
			OS:              runtime.GOOS,
			Arch:            runtime.GOARCH,
			GeckodriverEnv:  os.Getenv("FILE2PDF_GECKODRIVER"),
			LeaklessSupport: leakless.Support(),
		},
	}

	checkGeckodriver(result)
	checkFirefox(result)
	checkEnvironment(result)
	checkSystem(result)

	if len(result.Errors) > 0 {
		result.Status = "errors"
	} else if len(result.Warnings) > 0 {
		result.Status = "warnings"
	}

	return result
}

// checkGeckodriver locates the protocol server the way a conversion would.
func checkGeckodriver(result *doctorResult) {
	name := result.Env.GeckodriverEnv
	if name == "" {
		name = supervisor.DefaultPath
	}

	path, err := exec.LookPath(name)
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("geckodriver not found (%s). Install it or set FILE2PDF_GECKODRIVER", name))
		return
	}
	result.Geckodriver.Found = true
	result.Geckodriver.Path = path

	version, err := binaryVersion(path)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get geckodriver version: %v", err))
		return
	}
	result.Geckodriver.Version = version
}

// checkFirefox looks for Firefox on PATH. geckodriver also knows
// platform install locations, so a miss is only a warning.
func checkFirefox(result *doctorResult) {
	path, err := exec.LookPath("firefox")
	if err != nil {
		result.Warnings = append(result.Warnings,
			"Firefox not found on PATH; geckodriver may still locate it")
		return
	}
	result.Firefox.Found = true
	result.Firefox.Path = path

	version, err := binaryVersion(path)
	if err != nil {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Could not get Firefox version: %v", err))
		return
	}
	result.Firefox.Version = version
}

// binaryVersion returns the first line printed by "<path> --version".
func binaryVersion(path string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), versionTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, "--version").Output() // #nosec G204 -- path comes from LookPath
	if err != nil {
		return "", err
	}
	line, _, _ := bytes.Cut(out, []byte("\n"))
	return string(bytes.TrimSpace(line)), nil
}

// checkEnvironment detects container, CI and display availability.
func checkEnvironment(result *doctorResult) {
	result.Env.Container, result.Env.ContainerHint = hints.DetectContainer()
	result.Env.CI = hints.InCI()
	result.Env.Display = hints.HasDisplay()
	if !result.Env.Display {
		result.Warnings = append(result.Warnings,
			"No display detected; only headless conversions will work (do not use --headed)")
	}
}

// checkSystem verifies that temp files and loopback ports are usable.
// Markdown sources are rendered to a temp file; geckodriver needs a port.
func checkSystem(result *doctorResult) {
	tmpDir := os.TempDir()
	testFile := filepath.Join(tmpDir, "file2pdf-doctor-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Temp directory not writable: %s", tmpDir))
	} else {
		_ = os.Remove(testFile)
		result.System.TempWritable = true
	}

	if _, err := supervisor.FreePort(); err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Cannot listen on a loopback port: %v", err))
	} else {
		result.System.LoopbackPorts = true
	}
}

// Report line severities.
const (
	levelOK    = "OK"
	levelWarn  = "WARN"
	levelError = "ERROR"
)

type reportLine struct {
	level string
	text  string
}

type reportSection struct {
	title string
	lines []reportLine
}

// statusLines maps doctorResult.Status to the closing line.
var statusLines = map[string]string{
	"ready":    "Status: Ready to convert",
	"warnings": "Status: Ready with warnings",
	"errors":   "Status: Not ready (see errors above)",
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "file2pdf doctor")
	fmt.Fprintln(w)

	sections := []reportSection{
		binarySection("geckodriver", r.Geckodriver, levelError),
		binarySection("Firefox", r.Firefox, levelWarn),
		environmentSection(r.Env),
		{title: "System", lines: []reportLine{
			flagLine(r.System.TempWritable, levelError, "Temp directory: writable", "Temp directory: not writable"),
			flagLine(r.System.LoopbackPorts, levelError, "Loopback ports: available", "Loopback ports: unavailable"),
		}},
		listSection("Warnings:", levelWarn, r.Warnings),
		listSection("Errors:", levelError, r.Errors),
	}
	for _, sec := range sections {
		if len(sec.lines) == 0 {
			continue
		}
		fmt.Fprintln(w, sec.title)
		for _, l := range sec.lines {
			fmt.Fprintf(w, "  [%s] %s\n", l.level, l.text)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, statusLines[r.Status])
}

// binarySection reports one executable; missing uses the given severity.
func binarySection(title string, b binaryInfo, missing string) reportSection {
	if !b.Found {
		return reportSection{title: title, lines: []reportLine{{missing, "Not found"}}}
	}
	lines := []reportLine{{levelOK, "Found at " + b.Path}}
	if b.Version != "" {
		lines = append(lines, reportLine{levelOK, "Version: " + b.Version})
	}
	return reportSection{title: title, lines: lines}
}

func environmentSection(e envInfo) reportSection {
	lines := []reportLine{{levelOK, fmt.Sprintf("Platform: %s/%s", e.OS, e.Arch)}}
	if e.Container {
		lines = append(lines, reportLine{levelOK, fmt.Sprintf("Container: detected (%s)", e.ContainerHint)})
	}
	if e.CI {
		lines = append(lines, reportLine{levelOK, "CI: detected"})
	}
	if e.GeckodriverEnv != "" {
		lines = append(lines, reportLine{levelOK, "FILE2PDF_GECKODRIVER: " + e.GeckodriverEnv})
	}
	lines = append(lines,
		flagLine(e.Display, levelWarn, "Display: available", "Display: none (headless only)"),
		flagLine(e.LeaklessSupport, levelWarn, "Leakless: supported", "Leakless: unsupported on this platform"),
	)
	return reportSection{title: "Environment", lines: lines}
}

func listSection(title, level string, items []string) reportSection {
	sec := reportSection{title: title}
	for _, item := range items {
		sec.lines = append(sec.lines, reportLine{level, item})
	}
	return sec
}

// flagLine reports ok as OK, otherwise with the failure level.
func flagLine(ok bool, failLevel, okText, failText string) reportLine {
	if ok {
		return reportLine{levelOK, okText}
	}
	return reportLine{failLevel, failText}
}
