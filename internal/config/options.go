package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	html2pptx "github.com/alnah/go-html2pptx"
	"github.com/alnah/go-html2pptx/internal/assets"
	"github.com/alnah/go-html2pptx/internal/dateutil"
	"github.com/alnah/go-html2pptx/internal/logging"
)

// ErrInvalidLength is returned by ParseLength.
var ErrInvalidLength = errors.New("invalid length")

// Millimeters per unit accepted by ParseLength.
var unitMM = map[string]float64{
	"mm": 1,
	"cm": 10,
	"in": 25.4,
	"pt": 25.4 / 72,
	"px": 25.4 / 96,
}

// ParseLength converts a length such as "338.67mm", "13.333in" or "1280px"
// to millimeters. A bare number is taken as millimeters.
func ParseLength(s string) (float64, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return 0, fmt.Errorf("%w: empty value", ErrInvalidLength)
	}

	factor := 1.0
	for unit, mm := range unitMM {
		if strings.HasSuffix(v, unit) {
			factor = mm
			v = strings.TrimSpace(strings.TrimSuffix(v, unit))
			break
		}
	}

	n, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%w: %q (use a number with mm, cm, in, pt or px)", ErrInvalidLength, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidLength, s)
	}
	return n * factor, nil
}

// lengthOrZero parses an optional length; empty means zero.
func lengthOrZero(s string) (float64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return ParseLength(s)
}

// ToOptions builds the immutable job options. Violations are returned as
// *ConfigurationError naming the field.
func (c *Config) ToOptions() (html2pptx.Options, error) {
	var opts html2pptx.Options

	size, err := c.pageSize()
	if err != nil {
		return opts, err
	}
	margins, err := c.margins()
	if err != nil {
		return opts, err
	}

	render := html2pptx.RenderOptions{
		PageSize:        size,
		Margins:         margins,
		PrintBackground: c.Page.PrintBackground,
		Headless:        c.Browser.Headless,
		Timeout:         time.Duration(c.Browser.Timeout) * time.Millisecond,
		WaitForImages:   c.Browser.WaitForImages,
		WaitForFonts:    c.Browser.WaitForFonts,
		SettleDelay:     time.Duration(c.Browser.ExtraWaitTime * float64(time.Second)),
		Snapshot:        c.Conversion.Engine != html2pptx.EngineCommand,
	}
	if err := render.Validate(); err != nil {
		return opts, renderError(err)
	}

	if _, err := dateutil.FileSuffix(c.Output.DateSuffix, time.Now()); err != nil {
		return opts, &ConfigurationError{Field: "output.date_suffix", Reason: err.Error()}
	}

	css, err := c.slideCSS()
	if err != nil {
		return opts, err
	}

	opts = html2pptx.Options{
		InputDir:        c.Slides.InputDirectory,
		OutputDir:       c.Slides.OutputDirectory,
		IndexFile:       c.Slides.IndexFile,
		Render:          render,
		Workers:         c.Browser.Workers,
		Merge:           c.Output.MergePDFs,
		Cleanup:         c.Output.CleanupTempFiles,
		KeepPDF:         c.Output.KeepPDF,
		MinSuccessRatio: c.Pipeline.MinSuccessRatio,
		OutputName:      c.Output.Name,
		DateSuffix:      c.Output.DateSuffix,
		SlideCSS:        css,
		License:         strings.TrimSpace(c.License.Key),
	}
	if c.Conversion.Engine == html2pptx.EngineCommand && !opts.Merge && len(c.Conversion.Args) == 0 {
		return opts, &ConfigurationError{Field: "conversion.args", Reason: "is required for the command engine"}
	}
	return opts, nil
}

func (c *Config) pageSize() (html2pptx.PageSize, error) {
	w, err := ParseLength(c.Page.Width)
	if err != nil {
		return html2pptx.PageSize{}, &ConfigurationError{Field: "page.width", Reason: err.Error()}
	}
	h, err := ParseLength(c.Page.Height)
	if err != nil {
		return html2pptx.PageSize{}, &ConfigurationError{Field: "page.height", Reason: err.Error()}
	}
	return html2pptx.PageSize{WidthMM: w, HeightMM: h}, nil
}

func (c *Config) margins() (html2pptx.Margins, error) {
	var m html2pptx.Margins
	fields := []struct {
		name  string
		value string
		dst   *float64
	}{
		{"page.margin.top", c.Page.Margin.Top, &m.TopMM},
		{"page.margin.right", c.Page.Margin.Right, &m.RightMM},
		{"page.margin.bottom", c.Page.Margin.Bottom, &m.BottomMM},
		{"page.margin.left", c.Page.Margin.Left, &m.LeftMM},
	}
	for _, f := range fields {
		v, err := lengthOrZero(f.value)
		if err != nil {
			return m, &ConfigurationError{Field: f.name, Reason: err.Error()}
		}
		*f.dst = v
	}
	return m, nil
}

// renderError maps render option errors to the configuration field.
func renderError(err error) error {
	field := "page"
	switch {
	case errors.Is(err, html2pptx.ErrInvalidPageSize):
		field = "page.width"
	case errors.Is(err, html2pptx.ErrInvalidMargin):
		field = "page.margin"
	case errors.Is(err, html2pptx.ErrInvalidTimeout):
		field = "browser.timeout"
	}
	return &ConfigurationError{Field: field, Reason: err.Error()}
}

// slideCSS loads the configured markdown slide style. Empty means the
// built-in style.
func (c *Config) slideCSS() (string, error) {
	if c.Slides.Style == "" && c.Slides.AssetsPath == "" {
		return "", nil
	}
	resolver, err := assets.NewAssetResolver(c.Slides.AssetsPath)
	if err != nil {
		return "", &ConfigurationError{Field: "slides.assets_path", Reason: err.Error()}
	}
	name := c.Slides.Style
	if name == "" {
		name = assets.DefaultStyle
	}
	css, err := resolver.LoadStyle(name)
	if err != nil {
		return "", &ConfigurationError{Field: "slides.style", Reason: err.Error()}
	}
	return css, nil
}

// EngineConfig returns the conversion engine settings.
func (c *Config) EngineConfig() html2pptx.EngineConfig {
	return html2pptx.EngineConfig{
		Name:                    c.Conversion.Engine,
		Command:                 c.Conversion.Command,
		Args:                    c.Conversion.Args,
		LicenseArgs:             c.Conversion.LicenseArgs,
		LicenseRejectedExitCode: c.Conversion.LicenseRejectedExitCode,
		Title:                   c.Output.Name,
	}
}

// LogConfig returns the run-log settings.
func (c *Config) LogConfig() logging.Config {
	return logging.Config{
		Level:  c.Logging.Level,
		Format: c.Logging.Format,
		File:   c.Logging.File,
	}
}
