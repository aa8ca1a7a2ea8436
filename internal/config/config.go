package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alnah/go-file2pdf/internal/fileutil"
	"github.com/alnah/go-file2pdf/internal/logging"
	"github.com/alnah/go-file2pdf/internal/supervisor"
)

// AppDir is the directory under os.UserConfigDir searched for named configs.
const AppDir = "go-file2pdf"

// Sentinel errors for config operations.
var (
	ErrConfigNotFound    = errors.New("config file not found")
	ErrEmptyConfigName   = errors.New("config name cannot be empty")
	ErrConfigParse       = errors.New("failed to parse config")
	ErrUnsupportedFormat = errors.New("unsupported config format")
	ErrFieldTooLong      = errors.New("field exceeds maximum length")
	ErrInvalidValue      = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxPathLength     = 4096 // PATH_MAX on Linux
	MaxDurationLength = 32   // "1m30s", "250ms"
	MaxReadyPath      = 256
	MaxLevelLength    = 16 // "debug", "warning"
)

// Config holds the defaults for a conversion run.
type Config struct {
	Geckodriver GeckodriverConfig `yaml:"geckodriver" toml:"geckodriver"`
	Output      OutputConfig      `yaml:"output" toml:"output"`
	Log         LogConfig         `yaml:"log" toml:"log"`
}

// GeckodriverConfig describes how the protocol server is launched.
type GeckodriverConfig struct {
	Path         string `yaml:"path" toml:"path"`
	Headless     bool   `yaml:"headless" toml:"headless"`
	Port         int    `yaml:"port" toml:"port"`                 // 0 = pick a free port
	StartupDelay string `yaml:"startupDelay" toml:"startupDelay"` // Go duration, e.g. "100ms"
	ReadyTimeout string `yaml:"readyTimeout" toml:"readyTimeout"` // "0" = fixed delay only
	ReadyPath    string `yaml:"readyPath" toml:"readyPath"`
	Leakless     bool   `yaml:"leakless" toml:"leakless"`
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	UpdateExtension bool `yaml:"updateExtension" toml:"updateExtension"` // write <source>.pdf when no out file is given
}

// LogConfig defines logging options.
type LogConfig struct {
	Level string `yaml:"level" toml:"level"` // zerolog level name
}

// DefaultConfig returns the built-in defaults: headless geckodriver from
// PATH on a free port, readiness polling enabled, output to stdout.
func DefaultConfig() *Config {
	opts := supervisor.DefaultOptions()
	return &Config{
		Geckodriver: GeckodriverConfig{
			Path:         opts.Path,
			Headless:     opts.Headless,
			Port:         0,
			StartupDelay: opts.StartupDelay.String(),
			ReadyTimeout: opts.ReadyTimeout.String(),
			ReadyPath:    opts.ReadyPath,
		},
		Output: OutputConfig{UpdateExtension: false},
		Log:    LogConfig{Level: logging.DefaultLevel.String()},
	}
}

// Validate checks field lengths, ranges and duration syntax.
// Called automatically by LoadConfig.
func (c *Config) Validate() error {
	g := c.Geckodriver
	if err := validateFieldLength("geckodriver.path", g.Path, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("geckodriver.startupDelay", g.StartupDelay, MaxDurationLength); err != nil {
		return err
	}
	if err := validateFieldLength("geckodriver.readyTimeout", g.ReadyTimeout, MaxDurationLength); err != nil {
		return err
	}
	if err := validateFieldLength("geckodriver.readyPath", g.ReadyPath, MaxReadyPath); err != nil {
		return err
	}
	if err := validateFieldLength("log.level", c.Log.Level, MaxLevelLength); err != nil {
		return err
	}

	if g.Port < 0 || g.Port > 65535 {
		return fmt.Errorf("%w: geckodriver.port must be between 0 and 65535, got %d", ErrInvalidValue, g.Port)
	}
	if _, err := parseDuration("geckodriver.startupDelay", g.StartupDelay); err != nil {
		return err
	}
	if _, err := parseDuration("geckodriver.readyTimeout", g.ReadyTimeout); err != nil {
		return err
	}
	if g.ReadyPath != "" && !strings.HasPrefix(g.ReadyPath, "/") {
		return fmt.Errorf("%w: geckodriver.readyPath must start with '/', got %q", ErrInvalidValue, g.ReadyPath)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidValue, err)
	}
	return nil
}

// SpawnOptions converts the geckodriver section into supervisor options.
// The logger is left as a no-op; callers set their own.
func (c *Config) SpawnOptions() (supervisor.Options, error) {
	opts := supervisor.DefaultOptions()
	g := c.Geckodriver

	delay, err := parseDuration("geckodriver.startupDelay", g.StartupDelay)
	if err != nil {
		return opts, err
	}
	timeout, err := parseDuration("geckodriver.readyTimeout", g.ReadyTimeout)
	if err != nil {
		return opts, err
	}

	if g.Path != "" {
		opts.Path = g.Path
	}
	if g.ReadyPath != "" {
		opts.ReadyPath = g.ReadyPath
	}
	opts.Headless = g.Headless
	opts.StartupDelay = delay
	opts.ReadyTimeout = timeout
	opts.Leakless = g.Leakless
	return opts, nil
}

// parseDuration accepts Go duration syntax, "0" and the empty string (zero).
func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidValue, field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s must not be negative, got %s", ErrInvalidValue, field, s)
	}
	return d, nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path and
// its extension selects the format. Otherwise it's treated as a config name
// and searched in standard locations.
// Keys absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	format, err := formatOf(configPath)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := decodeStrict(data, format, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigParse, configPath, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths lists the files LoadConfig tries for a config name, in order:
// ./<name>.{yaml,yml,toml}, then <UserConfigDir>/go-file2pdf/<name>.{yaml,yml,toml}.
func SearchPaths(name string) []string {
	paths := make([]string, 0, len(extensions)*2) // 2 locations
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppDir, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file from SearchPaths.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
