package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-html2pptx/internal/config"
)

// ---------------------------------------------------------------------------
// TestRun - Command dispatch
// ---------------------------------------------------------------------------

func TestRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{name: "no command", args: nil, wantCode: ExitUsage, wantStderr: "Usage: html2pptx"},
		{name: "unknown command", args: []string{"publish"}, wantCode: ExitUsage, wantStderr: "Unknown command: publish"},
		{name: "version", args: []string{"version"}, wantCode: ExitSuccess, wantStdout: "html2pptx " + Version},
		{name: "help", args: []string{"help"}, wantCode: ExitSuccess, wantStdout: "Commands:"},
		{name: "help convert", args: []string{"help", "convert"}, wantCode: ExitSuccess, wantStdout: "--min-success"},
		{name: "help status", args: []string{"help", "status"}, wantCode: ExitSuccess, wantStdout: "html2pptx status"},
		{name: "help unknown", args: []string{"help", "publish"}, wantCode: ExitUsage, wantStderr: "Unknown command"},
		{name: "completion usage", args: []string{"completion"}, wantCode: ExitSuccess, wantStdout: "Supported shells"},
		{name: "completion unsupported", args: []string{"completion", "tcsh"}, wantCode: ExitUsage, wantStderr: "unsupported shell"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			te := newTestEnv(t, nil)

			code := run(context.Background(), tt.args, te.Environment)

			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", code, tt.wantCode)
			}
			if tt.wantStdout != "" && !strings.Contains(te.stdout.String(), tt.wantStdout) {
				t.Errorf("stdout missing %q:\n%s", tt.wantStdout, te.stdout)
			}
			if tt.wantStderr != "" && !strings.Contains(te.stderr.String(), tt.wantStderr) {
				t.Errorf("stderr missing %q:\n%s", tt.wantStderr, te.stderr)
			}
		})
	}
}

func TestHasVerbose(t *testing.T) {
	t.Parallel()
	if !hasVerbose([]string{"convert", "-v"}) || !hasVerbose([]string{"--verbose"}) {
		t.Error("hasVerbose() = false, want true")
	}
	if hasVerbose([]string{"convert", "--version"}) {
		t.Error("hasVerbose() = true for --version")
	}
}

// ---------------------------------------------------------------------------
// TestRunInit - Default configuration creation
// ---------------------------------------------------------------------------

func TestRunInit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "deck.yaml")

	te := newTestEnv(t, nil)
	if code := runInit([]string{path}, te.Environment); code != ExitSuccess {
		t.Fatalf("exit code = %d (stderr: %s)", code, te.stderr)
	}
	if !strings.Contains(te.stdout.String(), "Created "+path) {
		t.Errorf("stdout = %q", te.stdout)
	}
	if _, err := config.Load(path); err != nil {
		t.Fatalf("written config does not load: %v", err)
	}

	if err := os.WriteFile(path, []byte("# mine\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	te = newTestEnv(t, nil)
	if code := runInit([]string{path}, te.Environment); code != ExitSuccess {
		t.Errorf("second init exit code = %d", code)
	}
	if !strings.Contains(te.stdout.String(), "already exists") {
		t.Errorf("stdout = %q, want already exists notice", te.stdout)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "# mine\n" {
		t.Errorf("existing config overwritten:\n%s", data)
	}

	te = newTestEnv(t, nil)
	if code := runInit([]string{"a", "b"}, te.Environment); code != ExitUsage {
		t.Errorf("two paths exit code = %d, want %d", code, ExitUsage)
	}
}

// ---------------------------------------------------------------------------
// TestRunStatus - Configuration and slide summary
// ---------------------------------------------------------------------------

func TestRunStatus(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	slides := filepath.Join(dir, "slides")
	writeSlides(t, slides, "slide_10.html", "slide_2.html", "index.html", "notes.md",
		"slide_3.html", "slide_4.html", "slide_5.html")
	cfgPath := writeTestConfig(t, dir, "license:\n  key: K\n")

	te := newTestEnv(t, nil)
	code := runStatus([]string{"-c", cfgPath, slides}, te.Environment)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d (stderr: %s)", code, te.stderr)
	}

	out := te.stdout.String()
	for _, want := range []string{
		"Page:        338.67",
		"(1280x720 px)",
		"[OK] Engine: native",
		"[OK] License: configured",
		"Found 7 slides",
		" 1. index.html (index)",
		" 2. notes.md (markdown)",
		" 3. slide_2.html",
		"... and 2 more",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("status missing %q:\n%s", want, out)
		}
	}
}

func TestRunStatus_NoSlidesAndTrial(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir, "")

	te := newTestEnv(t, nil)
	code := runStatus([]string{"-c", cfgPath, filepath.Join(dir, "missing")}, te.Environment)
	if code != ExitSuccess {
		t.Fatalf("exit code = %d (stderr: %s)", code, te.stderr)
	}
	out := te.stdout.String()
	if !strings.Contains(out, "trial mode") {
		t.Errorf("status missing trial notice:\n%s", out)
	}
	if !strings.Contains(out, "[ERROR] no slides found") {
		t.Errorf("status missing discovery error:\n%s", out)
	}
}

func TestRunStatus_CommandEngineMissing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := writeTestConfig(t, dir, "conversion:\n  engine: command\n  command: no-such-converter-xyz\n")

	te := newTestEnv(t, nil)
	if code := runStatus([]string{"-c", cfgPath}, te.Environment); code != ExitSuccess {
		t.Fatalf("exit code = %d (stderr: %s)", code, te.stderr)
	}
	if !strings.Contains(te.stdout.String(), "[ERROR] Engine: command") {
		t.Errorf("status missing engine error:\n%s", te.stdout)
	}
}

// ---------------------------------------------------------------------------
// TestCompletion - Script generation
// ---------------------------------------------------------------------------

func TestGenerateCompletion(t *testing.T) {
	t.Parallel()

	for _, shell := range []Shell{ShellBash, ShellZsh, ShellFish} {
		t.Run(string(shell), func(t *testing.T) {
			t.Parallel()
			var b strings.Builder
			if err := GenerateCompletion(&b, shell); err != nil {
				t.Fatalf("GenerateCompletion(%s) error = %v", shell, err)
			}
			script := b.String()
			for _, want := range []string{"html2pptx", "convert", "status", "engine", "min-success", "native"} {
				if !strings.Contains(script, want) {
					t.Errorf("%s script missing %q", shell, want)
				}
			}
		})
	}
}

func TestGetCommands_ConvertFlagsMatchParser(t *testing.T) {
	t.Parallel()

	var convert *commandDef
	for _, c := range getCommands() {
		if c.Name == "convert" {
			c := c
			convert = &c
		}
	}
	if convert == nil {
		t.Fatal("convert command missing")
	}

	flags := map[string]flagDef{}
	for _, f := range convert.Flags {
		flags[f.Long] = f
	}
	for _, name := range []string{"config", "output", "workers", "timeout", "index", "no-merge", "keep-temp", "engine", "min-success", "strict", "quiet", "verbose", "log-format", "log-file"} {
		if _, ok := flags[name]; !ok {
			t.Errorf("completion missing --%s", name)
		}
	}
	if !flags["strict"].IsBool || flags["engine"].IsBool {
		t.Error("bool detection wrong")
	}
	if len(flags["engine"].Values) != 2 {
		t.Errorf("engine values = %v", flags["engine"].Values)
	}
}

// ---------------------------------------------------------------------------
// TestDoctor - Checks that do not need a browser
// ---------------------------------------------------------------------------

func TestIsContainer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		vars map[string]string
		hint string
	}{
		{"explicit override", map[string]string{"HTML2PPTX_CONTAINER": "1"}, "HTML2PPTX_CONTAINER=1"},
		{"podman", map[string]string{"container": "podman"}, "container=podman"},
		{"kubernetes", map[string]string{"KUBERNETES_SERVICE_HOST": "10.0.0.1"}, "KUBERNETES_SERVICE_HOST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ok, hint := isContainer(func(k string) string { return tt.vars[k] })
			if !ok {
				t.Fatal("isContainer() = false, want true")
			}
			// /.dockerenv takes precedence when the tests themselves run in Docker.
			if hint != tt.hint && hint != "/.dockerenv" {
				t.Errorf("hint = %q, want %q", hint, tt.hint)
			}
		})
	}
}

func TestCheckConversion(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name          string
		config        string
		vars          map[string]string
		wantAvailable bool
		wantLicensed  bool
		wantErr       string
		wantWarn      string
	}{
		{
			name:          "native without license",
			config:        "",
			wantAvailable: true,
			wantWarn:      "watermarked",
		},
		{
			name:          "license from env",
			config:        "",
			vars:          map[string]string{"HTML2PPTX_LICENSE_KEY": "K"},
			wantAvailable: true,
			wantLicensed:  true,
		},
		{
			name:    "missing command",
			config:  "conversion:\n  engine: command\n  command: no-such-converter-xyz\n",
			wantErr: "Conversion engine",
		},
		{
			name:    "invalid config",
			config:  "conversion:\n  engine: cloud\n",
			wantErr: "Configuration",
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sub := filepath.Join(dir, string(rune('a'+i)))
			if err := os.MkdirAll(sub, 0o750); err != nil {
				t.Fatal(err)
			}
			cfgPath := writeTestConfig(t, sub, tt.config)
			te := newTestEnv(t, tt.vars)

			result := &doctorResult{}
			checkConversion(result, te.Environment, cfgPath)

			if result.Conversion.Available != tt.wantAvailable {
				t.Errorf("Available = %v, want %v (errors: %v)", result.Conversion.Available, tt.wantAvailable, result.Errors)
			}
			if tt.wantAvailable && result.Conversion.Licensed != tt.wantLicensed {
				t.Errorf("Licensed = %v, want %v", result.Conversion.Licensed, tt.wantLicensed)
			}
			if tt.wantErr != "" && !strings.Contains(strings.Join(result.Errors, "\n"), tt.wantErr) {
				t.Errorf("Errors = %v, want %q", result.Errors, tt.wantErr)
			}
			if tt.wantWarn != "" && !strings.Contains(strings.Join(result.Warnings, "\n"), tt.wantWarn) {
				t.Errorf("Warnings = %v, want %q", result.Warnings, tt.wantWarn)
			}
			if result.Conversion.ConfigPath != "" && result.Conversion.ConfigPath != cfgPath {
				t.Errorf("ConfigPath = %q", result.Conversion.ConfigPath)
			}
		})
	}
}

func TestPrintDoctorResult(t *testing.T) {
	t.Parallel()

	r := &doctorResult{
		Status:     doctorErrors,
		Chrome:     chromeInfo{Found: true, Path: "/usr/bin/chromium", Sandbox: false},
		Conversion: conversionInfo{Engine: "command"},
		Env:        envInfo{OS: "linux", Arch: "amd64", CI: true},
		System:     systemInfo{TempWritable: true},
		Warnings:   []string{"No license key configured: presentations will be watermarked"},
		Errors:     []string{"Conversion engine: conversion engine unavailable"},
	}

	var b strings.Builder
	printDoctorResult(&b, r)
	out := b.String()
	for _, want := range []string{
		"[OK] Found at /usr/bin/chromium",
		"Sandbox: disabled",
		"[ERROR] Engine: command unavailable",
		"[WARN] License: trial mode",
		"[OK] CI: detected",
		"Status: Not ready",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("doctor output missing %q:\n%s", want, out)
		}
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"conversion":{"engine":"command","available":false,"licensed":false}`) {
		t.Errorf("json = %s", data)
	}
}
