package html2pptx

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for library operations.
var (
	ErrNoSlidesFound         = errors.New("no slides found")
	ErrEmptyAssembly         = errors.New("no rendered pages to assemble")
	ErrBelowSuccessThreshold = errors.New("too few slides rendered successfully")
	ErrPageSizeMismatch      = errors.New("page size does not match configured size")
	ErrAssembly              = errors.New("PDF assembly failed")

	// Rendering engine errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrRenderTimeout  = errors.New("page did not settle before timeout")
	ErrSourcePrepare  = errors.New("failed to prepare slide source")

	// Conversion engine errors.
	ErrConversionEngineUnavailable = errors.New("conversion engine unavailable")
	ErrConversion                  = errors.New("conversion failed")
	ErrUnknownEngine               = errors.New("unknown conversion engine")

	// Options validation errors.
	ErrInvalidPageSize     = errors.New("invalid page size")
	ErrInvalidMargin       = errors.New("invalid margin")
	ErrInvalidTimeout      = errors.New("invalid timeout")
	ErrInvalidSuccessRatio = errors.New("invalid minimum success ratio")
)

// RenderFailure records why a single slide could not be rendered.
// It is recoverable: the batch continues without the slide.
type RenderFailure struct {
	Document SourceDocument
	Reason   error
}

func (f *RenderFailure) Error() string {
	return fmt.Sprintf("rendering %s: %v", f.Document.Name, f.Reason)
}

func (f *RenderFailure) Unwrap() error {
	return f.Reason
}

// JobError is returned by Pipeline.Run when a job ends in the Failed state.
// Step is the step that failed; Stage is the last state the job reached
// before it.
type JobError struct {
	Step      Step
	Stage     JobState
	Err       error
	Succeeded []string
	Failed    []string
}

func (e *JobError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s step failed: %v", e.Step, e.Err)
	if len(e.Succeeded)+len(e.Failed) > 0 {
		fmt.Fprintf(&b, " (%d rendered, %d failed", len(e.Succeeded), len(e.Failed))
		if len(e.Failed) > 0 {
			fmt.Fprintf(&b, ": %s", strings.Join(e.Failed, ", "))
		}
		b.WriteString(")")
	}
	return b.String()
}

func (e *JobError) Unwrap() error {
	return e.Err
}
