package main

import (
	"errors"
	"fmt"

	"github.com/alnah/go-html2pptx/internal/config"
)

// runInit writes the default configuration file. An existing file is left
// untouched and reported, which is not an error.
func runInit(args []string, env *Environment) int {
	if len(args) > 1 {
		return reportError(env.Stderr, fmt.Errorf("%w: expected at most one path, got %d", ErrUsage, len(args)), "")
	}
	path := config.DefaultFileName
	if len(args) == 1 {
		path = args[0]
	}

	if err := config.WriteDefault(path); err != nil {
		if errors.Is(err, config.ErrConfigExists) {
			fmt.Fprintf(env.Stdout, "Configuration %s already exists, left unchanged.\n", path)
			return ExitSuccess
		}
		return reportError(env.Stderr, err, "")
	}
	fmt.Fprintf(env.Stdout, "Created %s. Set license.key and slides.input_directory, then run: html2pptx convert\n", path)
	return ExitSuccess
}
