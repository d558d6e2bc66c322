package main

import (
	"context"
	"io"
	"os"

	html2pptx "github.com/alnah/go-html2pptx"
)

// JobRunner runs one conversion job.
type JobRunner interface {
	Run(ctx context.Context) (*html2pptx.Result, error)
}

// Compile-time interface implementation check.
var _ JobRunner = (*html2pptx.Pipeline)(nil)

// Environment holds injectable dependencies for testability.
// Includes I/O, process environment and the job constructor.
type Environment struct {
	Stdout      io.Writer
	Stderr      io.Writer
	Getenv      func(string) string
	Environ     func() []string
	NewPipeline func(opts html2pptx.Options, options ...html2pptx.PipelineOption) JobRunner
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Getenv:  os.Getenv,
		Environ: os.Environ,
		NewPipeline: func(opts html2pptx.Options, options ...html2pptx.PipelineOption) JobRunner {
			return html2pptx.NewPipeline(opts, options...)
		},
	}
}
