package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2pptx <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  convert     Convert a directory of HTML slides to PowerPoint")
	fmt.Fprintln(w, "  status      Show configuration, engine, license and slides")
	fmt.Fprintln(w, "  doctor      Check the browser and conversion engine")
	fmt.Fprintln(w, "  init        Write the default configuration file")
	fmt.Fprintln(w, "  completion  Generate shell completion script")
	fmt.Fprintln(w, "  version     Show version information")
	fmt.Fprintln(w, "  help        Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'html2pptx help <command>' for details on a specific command.")
}

// printConvertUsage prints usage for the convert command.
func printConvertUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: html2pptx convert [input-dir] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render every slide to a fixed-size page, assemble them and write a .pptx.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  input-dir    Slides directory (default: slides.input_directory)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Input/Output:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory")
	fmt.Fprintln(w, "      --index <name>        Index slide placed first (\"\" disables)")
	fmt.Fprintln(w, "      --no-merge            One presentation per slide")
	fmt.Fprintln(w, "      --keep-temp           Keep intermediate pages")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Rendering:")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel browsers (0 = auto, max 8)")
	fmt.Fprintln(w, "  -t, --timeout <d>         Per-slide timeout (e.g., 30s, 2m)")
	fmt.Fprintln(w, "      --min-success <f>     Minimum ratio of rendered slides (0.0-1.0)")
	fmt.Fprintln(w, "      --strict              Exit 6 when any slide fails")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Conversion:")
	fmt.Fprintln(w, "      --engine <name>       native (built-in) or command (external converter)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Debug run log and failure details")
	fmt.Fprintln(w, "      --log-format <s>      Run log format: text, json")
	fmt.Fprintln(w, "      --log-file <path>     Run log file")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  HTML2PPTX_CONFIG, HTML2PPTX_LICENSE_KEY, HTML2PPTX_INPUT_DIR,")
	fmt.Fprintln(w, "  HTML2PPTX_OUTPUT_DIR, HTML2PPTX_TIMEOUT, HTML2PPTX_WORKERS,")
	fmt.Fprintln(w, "  HTML2PPTX_ENGINE, HTML2PPTX_ENGINE_COMMAND, HTML2PPTX_LOG_LEVEL,")
	fmt.Fprintln(w, "  HTML2PPTX_LOG_FORMAT. A .env file in the working directory is loaded first.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exit codes:")
	fmt.Fprintln(w, "  0 success, 1 error, 2 usage/config, 3 no slides, 4 browser,")
	fmt.Fprintln(w, "  5 conversion engine, 6 partial success with --strict")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	w := env.Stdout
	switch args[0] {
	case "convert":
		printConvertUsage(w)
	case "status":
		fmt.Fprintln(w, "Usage: html2pptx status [input-dir] [-c config]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show the resolved configuration, engine availability, license state")
		fmt.Fprintln(w, "and the first slides in conversion order.")
	case "doctor":
		fmt.Fprintln(w, "Usage: html2pptx doctor [--json] [-c config]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Check Chrome, the conversion engine, the license and the environment.")
	case "init":
		fmt.Fprintln(w, "Usage: html2pptx init [path]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Write the default configuration. An existing file is never overwritten.")
	case "completion":
		printCompletionUsage(w)
	case "version":
		fmt.Fprintln(w, "Usage: html2pptx version")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show version information.")
	case "help":
		fmt.Fprintln(w, "Usage: html2pptx help [command]")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
