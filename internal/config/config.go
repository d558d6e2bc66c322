// Package config resolves the converter configuration file: lookup,
// first-run creation, decoding onto defaults and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/alnah/go-html2pptx/internal/fileutil"
	"github.com/alnah/go-html2pptx/internal/yamlutil"
)

// DefaultFileName is the configuration file created on first run.
const DefaultFileName = "converter_config.yaml"

// appDirName is the directory under the user config dir searched for a
// configuration file.
const appDirName = "go-html2pptx"

// Sentinel errors for config operations.
var (
	ErrConfiguration   = errors.New("invalid configuration")
	ErrConfigNotFound  = errors.New("config file not found")
	ErrConfigExists    = errors.New("config file already exists")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
)

// ConfigurationError names the offending field of a rejected configuration.
// Field is the YAML path (for example "page.width"), empty when the file
// could not be parsed at all.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", ErrConfiguration, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %s", ErrConfiguration, e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// Config holds the converter configuration.
type Config struct {
	License    LicenseConfig    `yaml:"license"`
	Page       PageConfig       `yaml:"page"`
	Browser    BrowserConfig    `yaml:"browser"`
	Output     OutputConfig     `yaml:"output"`
	Slides     SlidesConfig     `yaml:"slides"`
	Conversion ConversionConfig `yaml:"conversion"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Logging    LoggingConfig    `yaml:"logging"`

	// Sections of the JSON layout, folded into the fields above by Parse.
	LegacySDK     *legacySDK     `yaml:"apryse_sdk,omitempty"`
	LegacyPDF     *legacyPDF     `yaml:"pdf_options,omitempty"`
	LegacyBrowser *legacyBrowser `yaml:"browser_options,omitempty"`
}

// LicenseConfig holds the conversion engine credential.
type LicenseConfig struct {
	Key string `yaml:"key"` // empty = trial mode (watermarked output)
}

// PageConfig defines the fixed page every slide is printed on.
// Lengths accept mm, cm, in, pt and px units; a bare number is mm.
type PageConfig struct {
	Width           string       `yaml:"width" validate:"required"`
	Height          string       `yaml:"height" validate:"required"`
	PrintBackground bool         `yaml:"print_background"`
	Margin          MarginConfig `yaml:"margin"`
}

// MarginConfig holds the four page margins.
type MarginConfig struct {
	Top    string `yaml:"top"`
	Right  string `yaml:"right"`
	Bottom string `yaml:"bottom"`
	Left   string `yaml:"left"`
}

// BrowserConfig controls the rendering browser.
type BrowserConfig struct {
	Headless      bool    `yaml:"headless"`
	Timeout       int     `yaml:"timeout" validate:"gt=0"` // per slide, milliseconds
	WaitForImages bool    `yaml:"wait_for_images"`
	WaitForFonts  bool    `yaml:"wait_for_fonts"`
	ExtraWaitTime float64 `yaml:"extra_wait_time" validate:"gte=0"` // seconds
	Workers       int     `yaml:"workers" validate:"gte=0,lte=8"`   // 0 = auto
}

// OutputConfig controls the produced files.
type OutputConfig struct {
	MergePDFs        bool   `yaml:"merge_pdfs"`
	CleanupTempFiles bool   `yaml:"cleanup_temp_files"`
	KeepPDF          bool   `yaml:"keep_pdf"`
	DateSuffix       string `yaml:"date_suffix"`           // "", "auto", "auto:FORMAT"
	Name             string `yaml:"name"`                  // empty = input directory name
	PDFQuality       string `yaml:"pdf_quality,omitempty"` // JSON layout only, ignored
}

// SlidesConfig locates the slides.
type SlidesConfig struct {
	InputDirectory  string `yaml:"input_directory" validate:"required"`
	OutputDirectory string `yaml:"output_directory" validate:"required"`
	IndexFile       string `yaml:"index_file"`
	Style           string `yaml:"style"`       // stylesheet for markdown slides
	AssetsPath      string `yaml:"assets_path"` // custom styles directory
}

// ConversionConfig selects the conversion engine.
type ConversionConfig struct {
	Engine                  string   `yaml:"engine" validate:"oneof=native command"`
	Command                 string   `yaml:"command" validate:"required_if=Engine command"`
	Args                    []string `yaml:"args"`
	LicenseArgs             []string `yaml:"license_args"`
	LicenseRejectedExitCode int      `yaml:"license_rejected_exit_code" validate:"gte=0,lte=255"`
}

// PipelineConfig holds the failure policy.
type PipelineConfig struct {
	MinSuccessRatio float64 `yaml:"min_success_ratio" validate:"gte=0,lte=1"`
}

// LoggingConfig configures the run log.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=text json"`
	File   string `yaml:"file"` // empty disables the log file
}

// DefaultConfig returns the configuration written on first run: a 16:9
// widescreen page without margins, merged output and cleanup enabled.
func DefaultConfig() *Config {
	return &Config{
		Page: PageConfig{
			Width:           "338.67mm",
			Height:          "190.5mm",
			PrintBackground: true,
			Margin:          MarginConfig{Top: "0mm", Right: "0mm", Bottom: "0mm", Left: "0mm"},
		},
		Browser: BrowserConfig{
			Headless:      true,
			Timeout:       30000,
			WaitForImages: true,
			WaitForFonts:  true,
			ExtraWaitTime: 0.5,
		},
		Output: OutputConfig{
			MergePDFs:        true,
			CleanupTempFiles: true,
		},
		Slides: SlidesConfig{
			InputDirectory:  "slides",
			OutputDirectory: "output",
			IndexFile:       "index.html",
		},
		Conversion: ConversionConfig{
			Engine:                  "native",
			Args:                    []string{"{input}", "{output}"},
			LicenseArgs:             []string{"--license", "{license}"},
			LicenseRejectedExitCode: 0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "converter.log",
		},
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their YAML key.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the configuration. The first violation is returned as a
// *ConfigurationError.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return &ConfigurationError{Reason: err.Error()}
	}

	lengths := []struct {
		field string
		value string
	}{
		{"page.width", c.Page.Width},
		{"page.height", c.Page.Height},
		{"page.margin.top", c.Page.Margin.Top},
		{"page.margin.right", c.Page.Margin.Right},
		{"page.margin.bottom", c.Page.Margin.Bottom},
		{"page.margin.left", c.Page.Margin.Left},
	}
	for _, l := range lengths {
		if l.value == "" && strings.HasPrefix(l.field, "page.margin") {
			continue
		}
		if _, err := ParseLength(l.value); err != nil {
			return &ConfigurationError{Field: l.field, Reason: err.Error()}
		}
	}

	if _, err := c.ToOptions(); err != nil {
		return err
	}
	return nil
}

// fieldError converts a validator failure into a ConfigurationError.
func fieldError(fe validator.FieldError) *ConfigurationError {
	// Namespace is "Config.section.field"; drop the root type.
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	var reason string
	switch fe.Tag() {
	case "required":
		reason = "is required"
	case "required_if":
		reason = "is required when " + strings.ReplaceAll(fe.Param(), " ", " is ")
	case "oneof":
		reason = fmt.Sprintf("must be one of %s, got %q", strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "gt":
		reason = fmt.Sprintf("must be greater than %s, got %v", fe.Param(), fe.Value())
	case "gte":
		reason = fmt.Sprintf("must be at least %s, got %v", fe.Param(), fe.Value())
	case "lte":
		reason = fmt.Sprintf("must be at most %s, got %v", fe.Param(), fe.Value())
	default:
		reason = fmt.Sprintf("failed %q check", fe.Tag())
	}
	return &ConfigurationError{Field: field, Reason: reason}
}

// typeErrorField extracts the struct path from a decoder type error.
var typeErrorField = regexp.MustCompile(`field ([\w.]+) of type`)

// Parse decodes data onto DefaultConfig and validates the result. Unknown
// fields are ignored and missing fields keep their default. The sections of
// the earlier JSON layout (apryse_sdk, pdf_options, browser_options) are
// mapped onto license, page and browser.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if len(strings.TrimSpace(string(data))) == 0 {
		return cfg, nil
	}
	if err := yamlutil.Unmarshal(data, cfg); err != nil {
		ce := &ConfigurationError{Reason: yamlutil.Describe(errors.Unwrap(err))}
		if m := typeErrorField.FindStringSubmatch(err.Error()); m != nil {
			field := m[1]
			if i := strings.IndexByte(field, '.'); i >= 0 {
				field = field[i+1:]
			}
			ce.Field = field
		}
		return nil, ce
	}
	cfg.foldLegacy()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Lint decodes data strictly and reports the first key that Parse would
// silently ignore, such as a misspelled section name. Returns nil when every
// key is known.
func Lint(data []byte) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := yamlutil.UnmarshalStrict(data, DefaultConfig()); err != nil {
		return &ConfigurationError{Reason: yamlutil.Describe(errors.Unwrap(err))}
	}
	return nil
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Resolution describes where the configuration came from.
type Resolution struct {
	Path    string
	Created bool // true on first run: the default file was just written
}

// Resolve loads the configuration at path. An empty path searches the
// current directory and the user config directory for DefaultFileName,
// then for LegacyFileName.
// When no file exists, the default configuration is written (to path, or
// to DefaultFileName in the current directory) and returned with
// Created set, so the caller can ask the user to review it. An existing
// file is never overwritten.
func Resolve(path string) (*Config, Resolution, error) {
	if path == "" {
		found, err := Search()
		switch {
		case err == nil:
			path = found
		case errors.Is(err, ErrConfigNotFound):
			path = DefaultFileName
		default:
			return nil, Resolution{}, err
		}
	}

	if !fileutil.FileExists(path) {
		if err := WriteDefault(path); err != nil {
			return nil, Resolution{}, err
		}
		return DefaultConfig(), Resolution{Path: path, Created: true}, nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, Resolution{}, err
	}
	return cfg, Resolution{Path: path}, nil
}

// WriteDefault writes DefaultConfig to path. Returns ErrConfigExists if
// the file is already there.
func WriteDefault(path string) error {
	if fileutil.FileExists(path) {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	data, err := yamlutil.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	data = append([]byte(defaultHeader), data...)

	if dir := filepath.Dir(path); dir != "." {
		if err := fileutil.EnsureDir(dir); err != nil {
			return err
		}
	}
	// O_EXCL keeps a file created concurrently.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
		return fmt.Errorf("creating config file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing config file: %w", err)
	}
	return f.Close()
}

const defaultHeader = `# go-html2pptx configuration.
# Lengths accept mm, cm, in, pt and px. browser.timeout is in milliseconds,
# browser.extra_wait_time in seconds. Leave license.key empty for trial mode.
`

// Find searches for a configuration file by name. A name containing a path
// separator is used as is. Otherwise the current directory is tried, then
// the go-html2pptx directory under the user config dir ($XDG_CONFIG_HOME).
// Names without extension are tried with .yaml, .yml and .json.
func Find(name string) (string, error) {
	if name == "" {
		return "", ErrEmptyConfigName
	}
	if fileutil.IsFilePath(name) {
		if fileutil.FileExists(name) {
			return name, nil
		}
		return "", fmt.Errorf("%w: %s", ErrConfigNotFound, name)
	}

	candidates := []string{name}
	if filepath.Ext(name) == "" {
		candidates = []string{name + ".yaml", name + ".yml", name + ".json"}
	}

	dirs := []string{"."}
	if userDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(userDir, appDirName))
	}

	tried := make([]string, 0, len(dirs)*len(candidates))
	for _, dir := range dirs {
		for _, c := range candidates {
			p := filepath.Join(dir, c)
			if fileutil.FileExists(p) {
				return p, nil
			}
			tried = append(tried, p)
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
