package main

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	file2pdf "github.com/alnah/go-file2pdf"
	"github.com/alnah/go-file2pdf/internal/config"
	"github.com/alnah/go-file2pdf/internal/hints"
	"github.com/alnah/go-file2pdf/internal/logging"
)

// runConvertCmd parses args, runs one conversion and reports the outcome.
func runConvertCmd(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseConvertFlags(args)
	if errors.Is(err, flag.ErrHelp) {
		printConvertUsage(env.Stdout)
		return ExitSuccess
	}
	if err != nil {
		return reportError(env, err)
	}
	return reportError(env, runConvert(ctx, flags, positional, env))
}

// reportError prints err to stderr and returns its exit code.
func reportError(env *Environment, err error) int {
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintf(env.Stderr, "error: %v\n", err)
	return exitCodeFor(err)
}

// runConvert resolves settings from defaults, config file, environment and
// flags (later wins), then converts the source.
func runConvert(ctx context.Context, flags *convertFlags, positional []string, env *Environment) error {
	source, err := resolveSource(flags.source, positional)
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(flags, env)
	if err != nil {
		return err
	}

	level, err := logging.ResolveLevel(cfg.Log.Level, flags.common.verbose, flags.common.quiet)
	if err != nil {
		return err
	}
	logger := logging.New(env.Stderr, level)

	opts, err := cfg.SpawnOptions()
	if err != nil {
		return err
	}

	conv := file2pdf.NewConverter(
		file2pdf.WithSpawnOptions(opts),
		file2pdf.WithPort(cfg.Geckodriver.Port),
		file2pdf.WithLogger(logger),
		file2pdf.WithStdout(env.Stdout),
	)

	start := env.Now()
	res, err := conv.Convert(ctx, file2pdf.Request{
		Source:          source,
		OutFile:         flags.outFile,
		UpdateExtension: cfg.Output.UpdateExtension,
	})
	if err != nil {
		return fmt.Errorf("converting %s: %w%s", source, err, hintFor(err, cfg))
	}

	logger.Debug().
		Str("destination", res.Destination.String()).
		Int64("bytes", res.Written).
		Dur("elapsed", env.Now().Sub(start)).
		Msg("converted")
	if res.Destination.Kind == file2pdf.DestinationFile && !flags.common.quiet {
		fmt.Fprintln(env.Stdout, res.Destination.Path)
	}
	return nil
}

// resolveSource picks the source from --source-file or the single positional.
func resolveSource(flagSource string, positional []string) (string, error) {
	switch {
	case len(positional) > 1:
		return "", fmt.Errorf("%w: expected one source file, got %d", ErrUsage, len(positional))
	case len(positional) == 1 && flagSource != "":
		return "", fmt.Errorf("%w: source given both as --source-file and as argument", ErrUsage)
	case len(positional) == 1:
		return positional[0], nil
	case flagSource != "":
		return flagSource, nil
	}
	return "", ErrNoSource
}

// resolveConfig layers defaults < config file < environment < flags.
// The config name comes from --config, then FILE2PDF_CONFIG; without
// either, no file is read.
func resolveConfig(flags *convertFlags, env *Environment) (*config.Config, error) {
	envCfg := loadEnvConfig()
	warnUnknownEnvVars(env.Stderr)

	name := envCfg.ConfigPath
	if flags.changed("config") {
		name = flags.common.config
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(config.SearchPaths(name)))
			}
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	applyEnvConfig(envCfg, cfg)
	mergeFlags(flags, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFlags merges explicitly set CLI flags into config.
func mergeFlags(flags *convertFlags, cfg *config.Config) {
	g := &cfg.Geckodriver
	s := flags.server

	if flags.changed("geckodriver-path") {
		g.Path = s.path
	}
	if flags.changed("port") {
		g.Port = s.port
	}
	if flags.changed("headed") {
		g.Headless = !s.headed
	}
	if flags.changed("startup-delay") {
		g.StartupDelay = s.startupDelay.String()
	}
	if flags.changed("ready-timeout") {
		g.ReadyTimeout = s.readyTimeout.String()
	}
	if flags.changed("leakless") {
		g.Leakless = s.leakless
	}
	if flags.changed("update-extension") {
		cfg.Output.UpdateExtension = flags.updateExtension
	}
}

// hintFor returns an actionable hint for conversion failures, or "".
func hintFor(err error, cfg *config.Config) string {
	switch {
	case errors.Is(err, file2pdf.ErrSpawn):
		return hints.ForSpawn(cfg.Geckodriver.Path)
	case errors.Is(err, file2pdf.ErrNotReady):
		return hints.ForNotReady(cfg.Geckodriver.Port != 0)
	case errors.Is(err, file2pdf.ErrConnect):
		return hints.ForBrowserConnect(cfg.Geckodriver.Headless)
	case errors.Is(err, file2pdf.ErrSink):
		return hints.ForOutputDirectory()
	}
	return ""
}
