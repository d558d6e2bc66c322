package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"

	html2pptx "github.com/alnah/go-html2pptx"
	"github.com/alnah/go-html2pptx/internal/config"
)

// Doctor statuses.
const (
	doctorReady    = "ready"
	doctorWarnings = "warnings"
	doctorErrors   = "errors"
)

// doctorResult is the full diagnostic report, also printed as JSON.
type doctorResult struct {
	Status     string         `json:"status"`
	Chrome     chromeInfo     `json:"chrome"`
	Conversion conversionInfo `json:"conversion"`
	Env        envInfo        `json:"environment"`
	System     systemInfo     `json:"system"`
	Warnings   []string       `json:"warnings,omitempty"`
	Errors     []string       `json:"errors,omitempty"`
}

type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

type conversionInfo struct {
	ConfigPath string `json:"config_path,omitempty"`
	Engine     string `json:"engine"`
	Available  bool   `json:"available"`
	Licensed   bool   `json:"licensed"`
}

type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
}

func (r *doctorResult) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *doctorResult) fail(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// runDoctorCmd runs every check and prints the report. Warnings still exit
// 0; any error exits 1.
func runDoctorCmd(args []string, env *Environment) int {
	jsonOutput := false
	configPath := ""
	for i := 0; i < len(args); i++ {
		switch a := args[i]; {
		case a == "--json":
			jsonOutput = true
		case (a == "--config" || a == "-c") && i+1 < len(args):
			i++
			configPath = args[i]
		case strings.HasPrefix(a, "--config="):
			configPath = strings.TrimPrefix(a, "--config=")
		}
	}

	result := runDoctor(env, configPath)
	if jsonOutput {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == doctorErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(env *Environment, configPath string) *doctorResult {
	r := &doctorResult{
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			NoSandbox:  env.Getenv("ROD_NO_SANDBOX"),
			BrowserBin: env.Getenv("ROD_BROWSER_BIN"),
		},
	}

	checkChrome(r)
	checkConversion(r, env, configPath)
	checkEnvironment(r, env.Getenv)
	checkSystem(r)

	switch {
	case len(r.Errors) > 0:
		r.Status = doctorErrors
	case len(r.Warnings) > 0:
		r.Status = doctorWarnings
	default:
		r.Status = doctorReady
	}
	return r
}

// checkChrome finds the browser the renderer would launch.
func checkChrome(r *doctorResult) {
	bin := r.Env.BrowserBin
	if bin == "" {
		var ok bool
		if bin, ok = launcher.LookPath(); !ok {
			r.fail("Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}
	if _, err := os.Stat(bin); err != nil {
		r.fail("Chrome not found at %s", bin)
		return
	}

	r.Chrome = chromeInfo{Found: true, Path: bin, Sandbox: r.Env.NoSandbox != "1"}
	out, err := exec.Command(bin, "--version").Output() // #nosec G204 -- browser path from launcher or ROD_BROWSER_BIN
	if err != nil {
		r.warn("Could not get Chrome version: %v", err)
		return
	}
	r.Chrome.Version = strings.TrimSpace(string(out))
}

// checkConversion loads the configuration, without creating it, and checks
// that the configured engine can run. No configuration means the defaults.
func checkConversion(r *doctorResult, env *Environment, configPath string) {
	if configPath == "" {
		configPath = env.Getenv("HTML2PPTX_CONFIG")
	}
	if configPath == "" {
		if found, err := config.Search(); err == nil {
			configPath = found
		}
	}

	cfg := config.DefaultConfig()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			r.fail("Configuration: %v", err)
			return
		}
		cfg = loaded
		r.Conversion.ConfigPath = configPath
		if data, err := os.ReadFile(configPath); err == nil { // #nosec G304 -- path already loaded above
			if err := config.Lint(data); err != nil {
				r.warn("Configuration: %v", err)
			}
		}
	}

	envCfg, err := loadEnvConfig(env.Getenv)
	if err != nil {
		r.fail("%v", err)
		return
	}
	applyEnvConfig(envCfg, cfg)

	r.Conversion.Engine = cfg.Conversion.Engine
	r.Conversion.Licensed = strings.TrimSpace(cfg.License.Key) != ""
	if !r.Conversion.Licensed {
		r.warn("No license key configured: presentations will be watermarked")
	}

	engine, err := html2pptx.NewEngine(cfg.EngineConfig())
	if err == nil {
		err = engine.Available()
	}
	if err != nil {
		r.fail("Conversion engine: %v", err)
		return
	}
	r.Conversion.Available = true
}

// ciVars are set by common CI services.
var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// checkEnvironment detects container and CI environments, where Chrome
// usually needs ROD_NO_SANDBOX=1.
func checkEnvironment(r *doctorResult, getenv func(string) string) {
	r.Env.Container, r.Env.ContainerHint = isContainer(getenv)
	for _, v := range ciVars {
		if getenv(v) != "" {
			r.Env.CI = true
			break
		}
	}
	if (r.Env.Container || r.Env.CI) && r.Env.NoSandbox != "1" {
		r.warn("Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer reports whether the process runs in a container and which
// signal gave it away.
func isContainer(getenv func(string) string) (bool, string) {
	if getenv("HTML2PPTX_CONTAINER") == "1" {
		return true, "HTML2PPTX_CONTAINER=1"
	}
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "/.dockerenv"
	}
	if v := getenv("container"); v != "" { // podman, systemd-nspawn
		return true, "container=" + v
	}
	if getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

// checkSystem verifies the temp directory that holds intermediate pages.
func checkSystem(r *doctorResult) {
	dir := os.TempDir()
	probe := filepath.Join(dir, "html2pptx-doctor-test")
	if err := os.WriteFile(probe, []byte("test"), 0o600); err != nil {
		r.fail("Temp directory not writable: %s", dir)
		return
	}
	_ = os.Remove(probe)
	r.System.TempWritable = true
}

// report writes one status line of the human-readable report.
func report(w io.Writer, level, format string, args ...any) {
	fmt.Fprintf(w, "  [%s] %s\n", level, fmt.Sprintf(format, args...))
}

// printDoctorResult outputs the human-readable report.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "html2pptx doctor")

	fmt.Fprintln(w, "\nChrome/Chromium")
	if r.Chrome.Found {
		report(w, "OK", "Found at %s", r.Chrome.Path)
		if r.Chrome.Version != "" {
			report(w, "OK", "Version: %s", r.Chrome.Version)
		}
		if r.Chrome.Sandbox {
			report(w, "OK", "Sandbox: enabled")
		} else {
			report(w, "OK", "Sandbox: disabled (ROD_NO_SANDBOX=1)")
		}
	} else {
		report(w, "ERROR", "Not found")
	}

	fmt.Fprintln(w, "\nConversion")
	if r.Conversion.ConfigPath != "" {
		report(w, "OK", "Config: %s", r.Conversion.ConfigPath)
	} else {
		report(w, "OK", "Config: defaults (no file yet)")
	}
	switch {
	case r.Conversion.Available:
		report(w, "OK", "Engine: %s", r.Conversion.Engine)
	case r.Conversion.Engine != "":
		report(w, "ERROR", "Engine: %s unavailable", r.Conversion.Engine)
	}
	if r.Conversion.Licensed {
		report(w, "OK", "License: configured")
	} else {
		report(w, "WARN", "License: trial mode")
	}

	fmt.Fprintln(w, "\nEnvironment")
	report(w, "OK", "Platform: %s/%s", r.Env.OS, r.Env.Arch)
	if r.Env.Container {
		report(w, "OK", "Container: detected (%s)", r.Env.ContainerHint)
	}
	if r.Env.CI {
		report(w, "OK", "CI: detected")
	}

	fmt.Fprintln(w, "\nSystem")
	if r.System.TempWritable {
		report(w, "OK", "Temp directory: writable")
	} else {
		report(w, "ERROR", "Temp directory: not writable")
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, msg := range r.Warnings {
			report(w, "WARN", "%s", msg)
		}
	}
	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		for _, msg := range r.Errors {
			report(w, "ERROR", "%s", msg)
		}
	}

	fmt.Fprintln(w)
	switch r.Status {
	case doctorReady:
		fmt.Fprintln(w, "Status: Ready to convert")
	case doctorWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case doctorErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
