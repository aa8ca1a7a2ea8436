package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alnah/go-file2pdf/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring config files.
type envConfig struct {
	ConfigPath  string // FILE2PDF_CONFIG: config name or path
	Geckodriver string // FILE2PDF_GECKODRIVER: protocol server executable
	Port        int    // FILE2PDF_PORT: listening port, 0 = free port
	PortSet     bool   // FILE2PDF_PORT held a valid number
	LogLevel    string // FILE2PDF_LOG: zerolog level name
}

// knownEnvVars lists valid FILE2PDF_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"FILE2PDF_CONFIG":      true,
	"FILE2PDF_GECKODRIVER": true,
	"FILE2PDF_PORT":        true,
	"FILE2PDF_LOG":         true,
	"FILE2PDF_CONTAINER":   true, // read by doctor and error hints
}

// loadEnvConfig reads configuration from environment variables.
// A FILE2PDF_PORT that is not an integer is ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath:  os.Getenv("FILE2PDF_CONFIG"),
		Geckodriver: os.Getenv("FILE2PDF_GECKODRIVER"),
		LogLevel:    os.Getenv("FILE2PDF_LOG"),
	}

	if port := strings.TrimSpace(os.Getenv("FILE2PDF_PORT")); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
			cfg.PortSet = true
		}
	}

	return cfg
}

// warnUnknownEnvVars logs warnings for unrecognized FILE2PDF_* variables.
// Helps catch typos like FILE2PDF_GECKO instead of FILE2PDF_GECKODRIVER.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "FILE2PDF_") {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig applies environment variable values to config.
// Environment values override the config file; CLI flags are applied
// later via mergeFlags and override both.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.Geckodriver != "" {
		cfg.Geckodriver.Path = env.Geckodriver
	}
	if env.PortSet {
		cfg.Geckodriver.Port = env.Port
	}
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
}
