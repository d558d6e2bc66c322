package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	html2pptx "github.com/alnah/go-html2pptx"
	"github.com/alnah/go-html2pptx/internal/assets"
	"github.com/alnah/go-html2pptx/internal/config"
	"github.com/alnah/go-html2pptx/internal/hints"
	"github.com/alnah/go-html2pptx/internal/logging"
)

// runConvert resolves the configuration, runs one job and reports it.
// Returns the process exit code.
func runConvert(ctx context.Context, args []string, env *Environment) int {
	flags, positional, err := parseConvertFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return reportError(env.Stderr, err, "")
	}
	if len(positional) > 1 {
		return reportError(env.Stderr, fmt.Errorf("%w: expected at most one input directory, got %d", ErrUsage, len(positional)), "")
	}

	cfg, err := loadConfig(flags.common.config, env)
	if err != nil {
		return reportError(env.Stderr, err, "")
	}
	if err := mergeFlags(flags, positional, cfg); err != nil {
		return reportError(env.Stderr, err, "")
	}
	if err := cfg.Validate(); err != nil {
		return reportError(env.Stderr, err, "")
	}

	opts, err := cfg.ToOptions()
	if err != nil {
		return reportError(env.Stderr, err, "")
	}
	engine, err := html2pptx.NewEngine(cfg.EngineConfig())
	if err != nil {
		return reportError(env.Stderr, err, "")
	}

	logCfg := cfg.LogConfig()
	logCfg.Output = env.Stderr
	log, err := logging.New(logCfg)
	if err != nil {
		return reportError(env.Stderr, fmt.Errorf("%w: %v", config.ErrConfiguration, err), "")
	}
	defer func() { _ = log.Close() }()

	job := env.NewPipeline(opts, html2pptx.WithLogger(log), html2pptx.WithEngine(engine))
	result, err := job.Run(ctx)
	if err != nil {
		return reportError(env.Stderr, err, engine.Name())
	}

	if !flags.common.quiet {
		printSummary(env.Stdout, result, flags.common.verbose)
	}
	return exitCodeForResult(result, flags.strict)
}

// loadConfig resolves the configuration file and applies environment
// overrides. On first run the default file is written and the run
// continues with it.
func loadConfig(path string, env *Environment) (*config.Config, error) {
	envCfg, err := loadEnvConfig(env.Getenv)
	if err != nil {
		return nil, err
	}
	warnUnknownEnvVars(env.Stderr, env.Environ())

	if path == "" {
		path = envCfg.ConfigPath
	}
	cfg, res, err := config.Resolve(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if res.Created {
		fmt.Fprintf(env.Stderr, "Created default configuration %s; review it before the next run.\n", res.Path)
	}

	applyEnvConfig(envCfg, cfg)
	return cfg, nil
}

// mergeFlags applies explicitly set CLI flags to the configuration.
// CLI flags take highest priority.
func mergeFlags(flags *convertFlags, positional []string, cfg *config.Config) error {
	changed := flags.changed
	if changed == nil {
		changed = func(string) bool { return false }
	}

	if len(positional) == 1 {
		cfg.Slides.InputDirectory = positional[0]
	}
	if flags.output != "" {
		cfg.Slides.OutputDirectory = flags.output
	}
	if changed("workers") {
		cfg.Browser.Workers = flags.workers
	}
	if flags.timeout != "" {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: --timeout %q (use a positive duration such as 45s)", ErrUsage, flags.timeout)
		}
		cfg.Browser.Timeout = int(d.Milliseconds())
	}
	if changed("index") {
		cfg.Slides.IndexFile = flags.index
	}
	if flags.noMerge {
		cfg.Output.MergePDFs = false
	}
	if flags.keepTemp {
		cfg.Output.CleanupTempFiles = false
	}
	if flags.engine != "" {
		cfg.Conversion.Engine = strings.ToLower(flags.engine)
	}
	if changed("min-success") {
		cfg.Pipeline.MinSuccessRatio = flags.minSuccess
	}

	if flags.log.format != "" {
		cfg.Logging.Format = strings.ToLower(flags.log.format)
	}
	if flags.log.file != "" {
		cfg.Logging.File = flags.log.file
	}
	switch {
	case flags.common.quiet:
		cfg.Logging.Level = "error"
	case flags.common.verbose:
		cfg.Logging.Level = "debug"
	}
	return nil
}

// reportError prints err with an actionable hint and returns its exit code.
func reportError(w io.Writer, err error, engine string) int {
	fmt.Fprintf(w, "error: %v%s\n", err, hintFor(err, engine))
	return exitCodeFor(err)
}

// hintFor picks the hint matching err, if any.
func hintFor(err error, engine string) string {
	switch {
	case errors.Is(err, html2pptx.ErrBrowserConnect):
		return hints.ForBrowserConnect()
	case errors.Is(err, html2pptx.ErrRenderTimeout):
		return hints.ForTimeout()
	case errors.Is(err, html2pptx.ErrConversionEngineUnavailable):
		return hints.ForEngineUnavailable(engine)
	case errors.Is(err, html2pptx.ErrBelowSuccessThreshold):
		return hints.ForBelowThreshold()
	case errors.Is(err, html2pptx.ErrNoSlidesFound):
		return hints.ForNoSlides()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(nil)
	case errors.Is(err, assets.ErrStyleNotFound):
		return hints.ForStyleNotFound(assets.EmbeddedStyles())
	case errors.Is(err, os.ErrPermission):
		return hints.ForOutputDirectory()
	}
	return ""
}

// printSummary reports the artifacts and any slide failures.
func printSummary(w io.Writer, res *html2pptx.Result, verbose bool) {
	total := len(res.Pages)
	succeeded := res.Succeeded()
	fmt.Fprintf(w, "Converted %d of %d slides in %s\n", len(succeeded), total, res.Duration.Round(time.Millisecond))

	for _, a := range res.Artifacts {
		fmt.Fprintf(w, "  %s (%d %s, %s engine)\n", a.Path, a.SlideCount, plural(a.SlideCount, "slide"), a.Engine)
	}
	if res.PDFPath != "" {
		fmt.Fprintf(w, "  %s\n", res.PDFPath)
	}

	if res.Partial() {
		failed := res.Failed()
		fmt.Fprintf(w, "Partial success: %d %s failed: %s\n", len(failed), plural(len(failed), "slide"), strings.Join(failed, ", "))
		if verbose {
			for _, p := range res.Pages {
				if !p.Succeeded() {
					fmt.Fprintf(w, "  %s: %v\n", p.Document.Name, p.Err)
				}
			}
		}
	}
	if res.Watermarked() {
		fmt.Fprintf(w, "Trial mode: slides are watermarked.%s\n", hints.ForTrialMode())
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
