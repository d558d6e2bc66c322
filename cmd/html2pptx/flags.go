package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// ErrUsage wraps flag parsing and argument errors.
var ErrUsage = errors.New("usage error")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// logFlags holds run-log flags.
type logFlags struct {
	format string
	file   string
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common     commonFlags
	log        logFlags
	output     string
	workers    int
	timeout    string
	index      string
	noMerge    bool
	keepTemp   bool
	engine     string
	minSuccess float64
	strict     bool

	// changed reports whether a flag was set on the command line, so that
	// zero values can override the configuration.
	changed func(name string) bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-slide progress")
}

// addLogFlags adds run-log flags to a FlagSet.
func addLogFlags(fs *flag.FlagSet, f *logFlags) {
	fs.StringVar(&f.format, "log-format", "", "run log format: text, json")
	fs.StringVar(&f.file, "log-file", "", "run log file (\"\" keeps the configured file)")
}

// registerConvertFlags registers every convert flag on fs.
func registerConvertFlags(fs *flag.FlagSet, f *convertFlags) {
	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel browsers (0 = auto, max 8)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "per-slide render timeout (e.g., 30s, 2m)")
	fs.StringVar(&f.index, "index", "", "index slide file name (placed first)")
	fs.BoolVar(&f.noMerge, "no-merge", false, "write one presentation per slide")
	fs.BoolVar(&f.keepTemp, "keep-temp", false, "keep intermediate PDFs and snapshots")
	fs.StringVar(&f.engine, "engine", "", "conversion engine: native, command")
	fs.Float64Var(&f.minSuccess, "min-success", 0, "minimum ratio of slides that must render (0.0-1.0)")
	fs.BoolVar(&f.strict, "strict", false, "exit with code 6 when any slide fails")

	addCommonFlags(fs, &f.common)
	addLogFlags(fs, &f.log)
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, usage io.Writer) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := &convertFlags{}
	registerConvertFlags(fs, f)

	fs.Usage = func() { printConvertUsage(usage) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.Usage()
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	f.changed = fs.Changed

	return f, fs.Args(), nil
}

// parseConfigFlags parses the flags of commands that only read the
// configuration (status).
func parseConfigFlags(name string, args []string) (*commonFlags, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := &commonFlags{}
	addCommonFlags(fs, f)

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return f, fs.Args(), nil
}
