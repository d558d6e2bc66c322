package html2pptx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/alnah/go-html2pptx/internal/process"
)

// CommandRunner abstracts process execution so engines can be tested
// without real subprocesses.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr string, err error)
}

// ExecRunner implements CommandRunner with os/exec. The child runs in its
// own process group, killed as a whole when ctx is cancelled.
type ExecRunner struct{}

// Run implements CommandRunner.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	cmd := exec.CommandContext(ctx, name, args...) // #nosec G204 -- configured converter
	process.StartInGroup(cmd)
	cmd.Cancel = func() error {
		process.KillProcessGroup(cmd.Process.Pid)
		return cmd.Process.Kill()
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// Compile-time interface check.
var _ Engine = (*CommandEngine)(nil)

// CommandEngine converts the assembled PDF by running an external converter.
type CommandEngine struct {
	Command                 string
	Args                    []string
	LicenseArgs             []string
	LicenseRejectedExitCode int

	Runner   CommandRunner
	LookPath func(string) (string, error)
}

// NewCommandEngine returns a command engine using a real runner.
func NewCommandEngine(command string, args, licenseArgs []string, rejectedExitCode int) *CommandEngine {
	return &CommandEngine{
		Command:                 command,
		Args:                    args,
		LicenseArgs:             licenseArgs,
		LicenseRejectedExitCode: rejectedExitCode,
		Runner:                  &ExecRunner{},
		LookPath:                exec.LookPath,
	}
}

// Name implements Engine.
func (e *CommandEngine) Name() string { return EngineCommand }

// Available implements Engine.
func (e *CommandEngine) Available() error {
	if e.Command == "" {
		return fmt.Errorf("%w: no converter command configured", ErrConversionEngineUnavailable)
	}
	if _, err := e.LookPath(e.Command); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrConversionEngineUnavailable, e.Command, err)
	}
	return nil
}

// Convert implements Engine. With a license the licensed arguments run
// first; a run rejected with LicenseRejectedExitCode is retried in trial mode.
func (e *CommandEngine) Convert(ctx context.Context, doc *AssembledDocument, outPath, license string) (*PresentationArtifact, error) {
	if doc == nil || doc.PDFPath == "" {
		return nil, fmt.Errorf("%w: no assembled PDF to convert", ErrConversion)
	}
	if err := e.Available(); err != nil {
		return nil, err
	}

	trial := license == ""
	if !trial {
		err := e.run(ctx, e.licensedArgs(), doc.PDFPath, outPath, license)
		if err != nil && !e.licenseRejected(err) {
			return nil, err
		}
		trial = err != nil
	}
	if trial {
		if err := e.run(ctx, e.Args, doc.PDFPath, outPath, ""); err != nil {
			return nil, err
		}
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return nil, fmt.Errorf("%w: converter produced no output: %v", ErrConversion, err)
	}
	if info.Size() == 0 {
		return nil, fmt.Errorf("%w: converter produced an empty file", ErrConversion)
	}

	return &PresentationArtifact{
		Path:        outPath,
		SlideCount:  doc.PageCount(),
		Watermarked: trial,
		Engine:      EngineCommand,
	}, nil
}

func (e *CommandEngine) licensedArgs() []string {
	return append(append([]string{}, e.Args...), e.LicenseArgs...)
}

func (e *CommandEngine) run(ctx context.Context, args []string, input, output, license string) error {
	expanded := make([]string, len(args))
	r := strings.NewReplacer("{input}", input, "{output}", output, "{license}", license)
	for i, a := range args {
		expanded[i] = r.Replace(a)
	}

	_, stderr, err := e.Runner.Run(ctx, e.Command, expanded...)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if msg := strings.TrimSpace(stderr); msg != "" {
		return &commandError{err: fmt.Errorf("%w: %s: %v: %s", ErrConversion, e.Command, err, msg), cause: err}
	}
	return &commandError{err: fmt.Errorf("%w: %s: %v", ErrConversion, e.Command, err), cause: err}
}

// licenseRejected reports whether err is the converter's exit status for an
// invalid license.
func (e *CommandEngine) licenseRejected(err error) bool {
	if e.LicenseRejectedExitCode == 0 {
		return false
	}
	var ce *commandError
	if !errors.As(err, &ce) {
		return false
	}
	var coder interface{ ExitCode() int }
	if !errors.As(ce.cause, &coder) {
		return false
	}
	return coder.ExitCode() == e.LicenseRejectedExitCode
}

// commandError keeps the runner error next to the wrapped conversion error.
type commandError struct {
	err   error
	cause error
}

func (e *commandError) Error() string { return e.err.Error() }
func (e *commandError) Unwrap() error { return e.err }
