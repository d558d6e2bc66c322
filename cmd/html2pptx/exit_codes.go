package main

import (
	"errors"
	"os"

	html2pptx "github.com/alnah/go-html2pptx"
	"github.com/alnah/go-html2pptx/internal/config"
)

// Exit codes for the html2pptx CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess  = 0 // Deck written
	ExitGeneral  = 1 // General/unexpected error
	ExitUsage    = 2 // Invalid flags, environment or configuration
	ExitNoSlides = 3 // Input directory missing or empty
	ExitBrowser  = 4 // Browser/Chrome errors, nothing rendered
	ExitEngine   = 5 // Conversion engine unavailable or failed
	ExitPartial  = 6 // Some slides failed and --strict was set
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Conversion engine errors (exit 5)
	if errors.Is(err, html2pptx.ErrConversionEngineUnavailable) ||
		errors.Is(err, html2pptx.ErrConversion) {
		return ExitEngine
	}

	// Browser errors (exit 4). An empty assembly is reported with the first
	// render failure, so a broken browser surfaces here too.
	if errors.Is(err, html2pptx.ErrBrowserConnect) ||
		errors.Is(err, html2pptx.ErrPageCreate) ||
		errors.Is(err, html2pptx.ErrPageLoad) ||
		errors.Is(err, html2pptx.ErrPDFGeneration) {
		return ExitBrowser
	}

	// Input errors (exit 3)
	if errors.Is(err, html2pptx.ErrNoSlidesFound) ||
		errors.Is(err, os.ErrNotExist) {
		return ExitNoSlides
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfiguration) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigExists) ||
		errors.Is(err, config.ErrInvalidLength) ||
		errors.Is(err, html2pptx.ErrInvalidPageSize) ||
		errors.Is(err, html2pptx.ErrInvalidMargin) ||
		errors.Is(err, html2pptx.ErrInvalidTimeout) ||
		errors.Is(err, html2pptx.ErrInvalidSuccessRatio) ||
		errors.Is(err, html2pptx.ErrUnknownEngine) ||
		errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidEnv) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	return ExitGeneral
}

// exitCodeForResult applies the --strict policy to a successful run.
func exitCodeForResult(res *html2pptx.Result, strict bool) int {
	if strict && res != nil && res.Partial() {
		return ExitPartial
	}
	return ExitSuccess
}
