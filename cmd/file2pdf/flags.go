package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-file2pdf/internal/config"
)

// Sentinel errors for command-line parsing.
var (
	ErrUsage    = errors.New("invalid usage")
	ErrNoSource = errors.New("no source file specified")
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// serverFlags holds protocol server flags.
type serverFlags struct {
	path         string
	port         int
	headed       bool
	startupDelay time.Duration
	readyTimeout time.Duration
	leakless     bool
}

// convertFlags holds all flags of the convert command.
type convertFlags struct {
	source          string
	outFile         string
	updateExtension bool
	server          serverFlags
	common          commonFlags

	set *flag.FlagSet // for Changed lookups
}

func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs, including geckodriver output")
}

func addServerFlags(fs *flag.FlagSet, f *serverFlags) {
	defaults := config.DefaultConfig().Geckodriver
	fs.StringVarP(&f.path, "geckodriver-path", "g", defaults.Path, "geckodriver executable")
	fs.IntVar(&f.port, "port", defaults.Port, "geckodriver port (0 = pick a free port)")
	fs.BoolVar(&f.headed, "headed", false, "show the Firefox window")
	fs.DurationVar(&f.startupDelay, "startup-delay", 0, "wait before the first readiness probe")
	fs.DurationVar(&f.readyTimeout, "ready-timeout", 0, "readiness polling budget (0 = fixed delay only)")
	fs.BoolVar(&f.leakless, "leakless", false, "guard geckodriver with leakless")
}

// newConvertFlagSet registers every convert flag on a fresh FlagSet.
func newConvertFlagSet(f *convertFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.SortFlags = false

	fs.StringVarP(&f.source, "source-file", "s", "", "file to print")
	fs.StringVarP(&f.outFile, "out-file", "o", "", "output PDF path")
	fs.BoolVarP(&f.updateExtension, "update-extension", "u", false, "write <source>.pdf next to the source")
	addServerFlags(fs, &f.server)
	addCommonFlags(fs, &f.common)

	f.set = fs
	return fs
}

// parseConvertFlags parses convert arguments and returns the positional rest.
// -h/--help yields flag.ErrHelp unwrapped.
func parseConvertFlags(args []string) (*convertFlags, []string, error) {
	f := &convertFlags{}
	fs := newConvertFlagSet(f)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return f, fs.Args(), nil
}

// changed reports whether the user set the named flag explicitly.
func (f *convertFlags) changed(name string) bool {
	return f.set != nil && f.set.Changed(name)
}
