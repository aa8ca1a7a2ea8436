// Package hints provides actionable error hints for common failure scenarios.
// Hints are formatted consistently as "\n  hint: <text>" for appending to error messages.
package hints

import (
	"os"
	"runtime"
	"strings"

	"github.com/alnah/go-file2pdf/internal/fileutil"
)

// geckodriverReleases is where users can download geckodriver.
const geckodriverReleases = "https://github.com/mozilla/geckodriver/releases"

// ciVars are set by the common CI systems.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// IsInContainer reports whether DetectContainer finds a container.
// A variable so tests can pin the answer.
var IsInContainer = func() bool {
	in, _ := DetectContainer()
	return in
}

// DetectContainer reports whether the process runs in a container and
// which signal said so. FILE2PDF_CONTAINER=1 forces a positive answer.
func DetectContainer() (bool, string) {
	if os.Getenv("FILE2PDF_CONTAINER") == "1" {
		return true, "FILE2PDF_CONTAINER=1"
	}
	if fileutil.FileExists("/.dockerenv") {
		return true, "/.dockerenv"
	}
	if v := os.Getenv("container"); v != "" { // podman, systemd-nspawn
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// InCI reports whether a CI system's marker variable is set.
func InCI() bool {
	for _, name := range ciVars {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// HasDisplay reports whether a headed Firefox could open a window.
// Windows and macOS always have one.
func HasDisplay() bool {
	if !needsDisplay() {
		return true
	}
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// ForSpawn returns hints when the protocol server cannot be executed.
func ForSpawn(path string) string {
	if fileutil.IsFilePath(path) {
		return format("check that " + path + " exists and is executable")
	}
	return format("install geckodriver from " + geckodriverReleases +
		" and put it on PATH, or use --geckodriver-path / FILE2PDF_GECKODRIVER")
}

// ForNotReady returns hints when the protocol server never answered.
// explicitPort reports whether the user chose the port.
func ForNotReady(explicitPort bool) string {
	var hints []string
	if explicitPort {
		hints = append(hints, "the port may be in use; use --port 0 to pick a free one")
	}
	hints = append(hints, "raise --ready-timeout for slow machines")
	return formatHints(hints)
}

// ForBrowserConnect returns hints for session handshake errors.
// Detects CI/Docker environments and missing displays.
func ForBrowserConnect(headless bool) string {
	var hints []string

	if !headless && !HasDisplay() {
		hints = append(hints, "no display available; drop --headed")
	}
	if InCI() || IsInContainer() {
		hints = append(hints, "make sure Firefox is installed in the CI/Docker image")
	} else {
		hints = append(hints, "check that Firefox is installed and matches the geckodriver version")
	}

	return formatHints(hints)
}

// ForConfigNotFound returns hints for config file not found errors.
// Suggests --config flag and creating a config in the user config directory.
func ForConfigNotFound(searchedPaths []string) string {
	hint := "use --config /path/to/file.yaml"

	for _, p := range searchedPaths {
		if strings.Contains(p, "go-file2pdf") {
			hint += " or create " + p
			break
		}
	}

	return format(hint)
}

// ForOutputDirectory returns hints for output file creation errors.
func ForOutputDirectory() string {
	return format("check parent directory exists and is writable")
}

func needsDisplay() bool {
	return runtime.GOOS != "windows" && runtime.GOOS != "darwin"
}

// format creates a single hint string with consistent formatting.
func format(hint string) string {
	if hint == "" {
		return ""
	}
	return "\n  hint: " + hint
}

// formatHints joins multiple hints with consistent formatting.
func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return format(strings.Join(hints, "; "))
}
