package main

import (
	"fmt"
	"io"
	"strings"

	html2pptx "github.com/alnah/go-html2pptx"
	"github.com/alnah/go-html2pptx/internal/config"
)

// statusSlideLimit caps the slides listed by the status command.
const statusSlideLimit = 5

// runStatus prints the resolved configuration, engine readiness, license
// state and the slides that would be converted. Nothing is rendered.
func runStatus(args []string, env *Environment) int {
	flags, positional, err := parseConfigFlags("status", args)
	if err != nil {
		return reportError(env.Stderr, err, "")
	}

	cfg, err := loadConfig(flags.config, env)
	if err != nil {
		return reportError(env.Stderr, err, "")
	}
	if len(positional) == 1 {
		cfg.Slides.InputDirectory = positional[0]
	}
	if err := cfg.Validate(); err != nil {
		return reportError(env.Stderr, err, "")
	}
	opts, err := cfg.ToOptions()
	if err != nil {
		return reportError(env.Stderr, err, "")
	}

	printStatus(env.Stdout, cfg, opts)
	return ExitSuccess
}

// printStatus outputs the human-readable status report.
func printStatus(w io.Writer, cfg *config.Config, opts html2pptx.Options) {
	fmt.Fprintln(w, "html2pptx status")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Configuration")
	fmt.Fprintf(w, "  Input:       %s\n", opts.InputDir)
	fmt.Fprintf(w, "  Output:      %s\n", opts.OutputDir)
	px, py := opts.Render.PageSize.Pixels()
	fmt.Fprintf(w, "  Page:        %s (%dx%d px)\n", opts.Render.PageSize, px, py)
	fmt.Fprintf(w, "  Timeout:     %s per slide\n", opts.Render.Timeout)
	fmt.Fprintf(w, "  Workers:     %d\n", html2pptx.ResolvePoolSize(opts.Workers))
	fmt.Fprintf(w, "  Merge:       %s\n", yesNo(opts.Merge))
	fmt.Fprintf(w, "  Cleanup:     %s\n", yesNo(opts.Cleanup))
	fmt.Fprintf(w, "  Threshold:   %.0f%% of slides must render\n", opts.MinSuccessRatio*100)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Conversion")
	engineCfg := cfg.EngineConfig()
	engine, err := html2pptx.NewEngine(engineCfg)
	switch {
	case err != nil:
		fmt.Fprintf(w, "  [ERROR] Engine: %v\n", err)
	default:
		if err := engine.Available(); err != nil {
			fmt.Fprintf(w, "  [ERROR] Engine: %s (%v)\n", engine.Name(), err)
		} else {
			fmt.Fprintf(w, "  [OK] Engine: %s\n", engine.Name())
		}
	}
	if opts.License != "" {
		fmt.Fprintln(w, "  [OK] License: configured")
	} else {
		fmt.Fprintln(w, "  [WARN] License: not set (trial mode, output is watermarked)")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Slides")
	docs, err := html2pptx.Discover(opts.InputDir, opts.IndexFile)
	if err != nil {
		fmt.Fprintf(w, "  [ERROR] %v\n", err)
		return
	}
	fmt.Fprintf(w, "  Found %d %s\n", len(docs), plural(len(docs), "slide"))
	for i, d := range docs {
		if i == statusSlideLimit {
			fmt.Fprintf(w, "  ... and %d more\n", len(docs)-statusSlideLimit)
			break
		}
		var notes []string
		if d.IsIndex {
			notes = append(notes, "index")
		}
		if d.Kind == html2pptx.SourceMarkdown {
			notes = append(notes, "markdown")
		}
		line := fmt.Sprintf("  %2d. %s", d.Ordinal+1, d.Name)
		if len(notes) > 0 {
			line += " (" + strings.Join(notes, ", ") + ")"
		}
		fmt.Fprintln(w, line)
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
