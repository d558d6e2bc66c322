package html2pptx

import (
	"context"
	"fmt"
	"strings"
)

// Engine names.
const (
	EngineNative  = "native"
	EngineCommand = "command"
)

// Engine converts an assembled document into a presentation file.
type Engine interface {
	// Name identifies the engine in logs and artifacts.
	Name() string

	// Available reports whether the engine can run in this environment.
	// A non-nil error wraps ErrConversionEngineUnavailable.
	Available() error

	// Convert writes the presentation for doc to outPath. An empty license
	// runs the engine in trial mode and marks the artifact watermarked.
	Convert(ctx context.Context, doc *AssembledDocument, outPath, license string) (*PresentationArtifact, error)
}

// EngineConfig selects and configures a conversion engine.
type EngineConfig struct {
	Name string // EngineNative or EngineCommand, "" = native

	// Command engine settings. Args and LicenseArgs may contain the
	// placeholders {input}, {output} and {license}.
	Command                 string
	Args                    []string
	LicenseArgs             []string
	LicenseRejectedExitCode int // 0 disables the trial fallback

	Title string // native engine presentation title
}

// NewEngine builds the engine named in cfg.
func NewEngine(cfg EngineConfig) (Engine, error) {
	switch strings.ToLower(cfg.Name) {
	case "", EngineNative:
		return NewNativeEngine(cfg.Title), nil
	case EngineCommand:
		return NewCommandEngine(cfg.Command, cfg.Args, cfg.LicenseArgs, cfg.LicenseRejectedExitCode), nil
	default:
		return nil, fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownEngine, cfg.Name, EngineNative, EngineCommand)
	}
}
