package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-html2pptx/internal/config"
)

// envPrefix is the prefix of every recognized environment variable.
const envPrefix = "HTML2PPTX_"

// ErrInvalidEnv is returned for an environment variable that cannot be parsed.
var ErrInvalidEnv = errors.New("invalid environment variable")

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without editing the config file.
type envConfig struct {
	ConfigPath string        // HTML2PPTX_CONFIG: config file path
	LicenseKey string        // HTML2PPTX_LICENSE_KEY: conversion engine license
	InputDir   string        // HTML2PPTX_INPUT_DIR: slides directory
	OutputDir  string        // HTML2PPTX_OUTPUT_DIR: output directory
	Timeout    time.Duration // HTML2PPTX_TIMEOUT: per-slide render timeout
	Workers    int           // HTML2PPTX_WORKERS: parallel browsers
	Engine     string        // HTML2PPTX_ENGINE: native or command
	Command    string        // HTML2PPTX_ENGINE_COMMAND: external converter
	LogLevel   string        // HTML2PPTX_LOG_LEVEL: debug, info, warn, error
	LogFormat  string        // HTML2PPTX_LOG_FORMAT: text or json
}

// knownEnvVars lists valid HTML2PPTX_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"HTML2PPTX_CONFIG":         true,
	"HTML2PPTX_LICENSE_KEY":    true,
	"HTML2PPTX_INPUT_DIR":      true,
	"HTML2PPTX_OUTPUT_DIR":     true,
	"HTML2PPTX_TIMEOUT":        true,
	"HTML2PPTX_WORKERS":        true,
	"HTML2PPTX_ENGINE":         true,
	"HTML2PPTX_ENGINE_COMMAND": true,
	"HTML2PPTX_LOG_LEVEL":      true,
	"HTML2PPTX_LOG_FORMAT":     true,
	"HTML2PPTX_CONTAINER":      true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// A malformed timeout or worker count is an error rather than silently ignored.
func loadEnvConfig(getenv func(string) string) (*envConfig, error) {
	cfg := &envConfig{
		ConfigPath: getenv("HTML2PPTX_CONFIG"),
		LicenseKey: getenv("HTML2PPTX_LICENSE_KEY"),
		InputDir:   getenv("HTML2PPTX_INPUT_DIR"),
		OutputDir:  getenv("HTML2PPTX_OUTPUT_DIR"),
		Engine:     getenv("HTML2PPTX_ENGINE"),
		Command:    getenv("HTML2PPTX_ENGINE_COMMAND"),
		LogLevel:   getenv("HTML2PPTX_LOG_LEVEL"),
		LogFormat:  getenv("HTML2PPTX_LOG_FORMAT"),
	}

	if v := getenv("HTML2PPTX_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: HTML2PPTX_TIMEOUT=%q (use a positive duration such as 45s)", ErrInvalidEnv, v)
		}
		cfg.Timeout = d
	}

	if v := getenv("HTML2PPTX_WORKERS"); v != "" {
		w, err := strconv.Atoi(v)
		if err != nil || w < 0 {
			return nil, fmt.Errorf("%w: HTML2PPTX_WORKERS=%q (use a non-negative integer)", ErrInvalidEnv, v)
		}
		cfg.Workers = w
	}

	return cfg, nil
}

// warnUnknownEnvVars logs warnings for unrecognized HTML2PPTX_* variables.
// Helps catch typos like HTML2PPTX_LICENCE_KEY.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	var unknown []string
	for _, env := range environ {
		if strings.HasPrefix(env, envPrefix) {
			name := strings.SplitN(env, "=", 2)[0]
			if !knownEnvVars[name] {
				unknown = append(unknown, name)
			}
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
	}
}

// applyEnvConfig applies environment variable values to config.
// A set variable overrides the file, giving:
// CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags)
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.LicenseKey != "" {
		cfg.License.Key = env.LicenseKey
	}
	if env.InputDir != "" {
		cfg.Slides.InputDirectory = env.InputDir
	}
	if env.OutputDir != "" {
		cfg.Slides.OutputDirectory = env.OutputDir
	}
	if env.Timeout > 0 {
		cfg.Browser.Timeout = int(env.Timeout.Milliseconds())
	}
	if env.Workers > 0 {
		cfg.Browser.Workers = env.Workers
	}
	if env.Engine != "" {
		cfg.Conversion.Engine = strings.ToLower(env.Engine)
	}
	if env.Command != "" {
		cfg.Conversion.Command = env.Command
	}
	if env.LogLevel != "" {
		cfg.Logging.Level = strings.ToLower(env.LogLevel)
	}
	if env.LogFormat != "" {
		cfg.Logging.Format = strings.ToLower(env.LogFormat)
	}
}
