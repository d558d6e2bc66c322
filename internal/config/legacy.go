package config

import "errors"

// LegacyFileName is the JSON configuration written by earlier converter
// versions. Resolve still loads it when no DefaultFileName exists.
const LegacyFileName = "converter_config.json"

// Search looks for DefaultFileName, then for LegacyFileName, in the
// directories Find searches.
func Search() (string, error) {
	found, err := Find(DefaultFileName)
	if errors.Is(err, ErrConfigNotFound) {
		if legacy, lerr := Find(LegacyFileName); lerr == nil {
			return legacy, nil
		}
	}
	return found, err
}

// legacySDK is the "apryse_sdk" section of the JSON layout.
type legacySDK struct {
	LicenseKey *string `yaml:"license_key"`
	Note       string  `yaml:"note"`
}

// legacyPDF is the "pdf_options" section of the JSON layout.
type legacyPDF struct {
	Width           *string       `yaml:"width"`
	Height          *string       `yaml:"height"`
	PrintBackground *bool         `yaml:"print_background"`
	Landscape       *bool         `yaml:"landscape"`
	Margin          *legacyMargin `yaml:"margin"`
}

type legacyMargin struct {
	Top    *string `yaml:"top"`
	Right  *string `yaml:"right"`
	Bottom *string `yaml:"bottom"`
	Left   *string `yaml:"left"`
}

// legacyBrowser is the "browser_options" section of the JSON layout.
type legacyBrowser struct {
	Headless      *bool    `yaml:"headless"`
	Timeout       *int     `yaml:"timeout"`
	WaitForImages *bool    `yaml:"wait_for_images"`
	WaitForFonts  *bool    `yaml:"wait_for_fonts"`
	ExtraWaitTime *float64 `yaml:"extra_wait_time"`
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// foldLegacy copies the sections of the JSON layout onto their current
// fields and clears them. Only keys present in the file are copied, so a
// current section wins over a missing legacy key.
func (c *Config) foldLegacy() {
	if s := c.LegacySDK; s != nil {
		set(&c.License.Key, s.LicenseKey)
	}

	if p := c.LegacyPDF; p != nil {
		set(&c.Page.Width, p.Width)
		set(&c.Page.Height, p.Height)
		set(&c.Page.PrintBackground, p.PrintBackground)
		if m := p.Margin; m != nil {
			set(&c.Page.Margin.Top, m.Top)
			set(&c.Page.Margin.Right, m.Right)
			set(&c.Page.Margin.Bottom, m.Bottom)
			set(&c.Page.Margin.Left, m.Left)
		}
		if p.Landscape != nil && *p.Landscape {
			c.landscape()
		}
	}

	if b := c.LegacyBrowser; b != nil {
		set(&c.Browser.Headless, b.Headless)
		set(&c.Browser.Timeout, b.Timeout)
		set(&c.Browser.WaitForImages, b.WaitForImages)
		set(&c.Browser.WaitForFonts, b.WaitForFonts)
		set(&c.Browser.ExtraWaitTime, b.ExtraWaitTime)
	}

	c.LegacySDK, c.LegacyPDF, c.LegacyBrowser = nil, nil, nil
}

// landscape puts the longer page side horizontally. Unparsable lengths are
// left for Validate to report.
func (c *Config) landscape() {
	w, werr := ParseLength(c.Page.Width)
	h, herr := ParseLength(c.Page.Height)
	if werr == nil && herr == nil && h > w {
		c.Page.Width, c.Page.Height = c.Page.Height, c.Page.Width
	}
}
