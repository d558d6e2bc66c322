package html2pptx

import (
	"fmt"
	"math"
	"time"
)

// Unit conversion factors.
const (
	mmPerInch   = 25.4
	pointsPerMM = 72 / mmPerInch
	cssPxPerMM  = 96 / mmPerInch
	emuPerMM    = 36000
)

// Default widescreen slide size: 13.333in x 7.5in (1280x720 CSS px).
const (
	DefaultPageWidthMM  = 338.67
	DefaultPageHeightMM = 190.5
)

// Page size bounds in millimeters.
const (
	MinPageDimensionMM = 10.0
	MaxPageDimensionMM = 5080.0 // 200in, Chrome's print limit
)

// Render timing defaults.
const (
	DefaultRenderTimeout = 30 * time.Second
	DefaultSettleDelay   = 500 * time.Millisecond
)

// pageSizeTolerancePt absorbs PDF rounding (Chrome rounds media boxes to
// whole points).
const pageSizeTolerancePt = 1.0

// PageSize is a physical page size in millimeters.
type PageSize struct {
	WidthMM  float64
	HeightMM float64
}

// DefaultPageSize returns the 16:9 widescreen slide size.
func DefaultPageSize() PageSize {
	return PageSize{WidthMM: DefaultPageWidthMM, HeightMM: DefaultPageHeightMM}
}

// Validate checks that both dimensions are within printable bounds.
func (s PageSize) Validate() error {
	for _, v := range []float64{s.WidthMM, s.HeightMM} {
		if math.IsNaN(v) || v < MinPageDimensionMM || v > MaxPageDimensionMM {
			return fmt.Errorf("%w: %.2fmm x %.2fmm (each side must be between %.0f and %.0f mm)",
				ErrInvalidPageSize, s.WidthMM, s.HeightMM, MinPageDimensionMM, MaxPageDimensionMM)
		}
	}
	return nil
}

// Inches returns width and height in inches, the unit Chrome prints in.
func (s PageSize) Inches() (w, h float64) {
	return s.WidthMM / mmPerInch, s.HeightMM / mmPerInch
}

// Points returns width and height in PDF points.
func (s PageSize) Points() (w, h float64) {
	return s.WidthMM * pointsPerMM, s.HeightMM * pointsPerMM
}

// Pixels returns the CSS pixel viewport matching the page at 96 dpi.
func (s PageSize) Pixels() (w, h int) {
	return int(math.Round(s.WidthMM * cssPxPerMM)), int(math.Round(s.HeightMM * cssPxPerMM))
}

// EMU returns width and height in English Metric Units (OOXML).
func (s PageSize) EMU() (w, h int64) {
	return int64(math.Round(s.WidthMM * emuPerMM)), int64(math.Round(s.HeightMM * emuPerMM))
}

// MatchesPoints reports whether a PDF page of w x h points has this size.
func (s PageSize) MatchesPoints(w, h float64) bool {
	pw, ph := s.Points()
	return math.Abs(pw-w) <= pageSizeTolerancePt && math.Abs(ph-h) <= pageSizeTolerancePt
}

func (s PageSize) String() string {
	return fmt.Sprintf("%.2fmm x %.2fmm", s.WidthMM, s.HeightMM)
}

// Margins are the four page margins in millimeters.
type Margins struct {
	TopMM    float64
	RightMM  float64
	BottomMM float64
	LeftMM   float64
}

// Validate checks that margins are non-negative and leave a printable area.
func (m Margins) Validate(size PageSize) error {
	for _, v := range []float64{m.TopMM, m.RightMM, m.BottomMM, m.LeftMM} {
		if math.IsNaN(v) || v < 0 {
			return fmt.Errorf("%w: margins must be non-negative", ErrInvalidMargin)
		}
	}
	if m.LeftMM+m.RightMM >= size.WidthMM || m.TopMM+m.BottomMM >= size.HeightMM {
		return fmt.Errorf("%w: margins leave no printable area on %s", ErrInvalidMargin, size)
	}
	return nil
}

// RenderOptions are the explicit parameters passed to the rendering engine
// for every slide. Nothing is left to engine defaults.
type RenderOptions struct {
	PageSize        PageSize
	Margins         Margins
	PrintBackground bool
	Headless        bool
	Timeout         time.Duration // per slide, covers load and settle
	WaitForImages   bool
	WaitForFonts    bool
	SettleDelay     time.Duration // extra wait after images and fonts
	Snapshot        bool          // also capture a PNG of the page
}

// DefaultRenderOptions returns render options matching the default config.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		PageSize:        DefaultPageSize(),
		PrintBackground: true,
		Headless:        true,
		Timeout:         DefaultRenderTimeout,
		WaitForImages:   true,
		WaitForFonts:    true,
		SettleDelay:     DefaultSettleDelay,
		Snapshot:        true,
	}
}

// Validate checks the render options.
func (o RenderOptions) Validate() error {
	if err := o.PageSize.Validate(); err != nil {
		return err
	}
	if err := o.Margins.Validate(o.PageSize); err != nil {
		return err
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("%w: %v (must be positive)", ErrInvalidTimeout, o.Timeout)
	}
	if o.SettleDelay < 0 || o.SettleDelay >= o.Timeout {
		return fmt.Errorf("%w: settle delay %v must be shorter than timeout %v", ErrInvalidTimeout, o.SettleDelay, o.Timeout)
	}
	return nil
}

// Options is the immutable configuration snapshot for one job.
// It is built once (usually from internal/config) and passed to every stage.
type Options struct {
	InputDir  string
	OutputDir string
	IndexFile string // designated index document name, "" disables

	Render  RenderOptions
	Workers int // renderer pool size, 0 = auto

	Merge           bool    // assemble one PDF before conversion
	Cleanup         bool    // remove intermediates on any terminal state
	KeepPDF         bool    // keep the assembled PDF next to the artifact
	MinSuccessRatio float64 // 0..1, job fails when below
	OutputName      string  // artifact base name, "" = derived from InputDir
	DateSuffix      string  // "auto", "auto:FORMAT" or literal, appended with "_"

	SlideCSS string // stylesheet for markdown slides, "" = built-in

	License string // conversion engine credential, "" = trial mode
	WorkDir string // intermediate directory, "" = temp dir
}

// Validate checks the job options.
func (o Options) Validate() error {
	if err := o.Render.Validate(); err != nil {
		return err
	}
	if o.InputDir == "" {
		return fmt.Errorf("%w: input directory is required", ErrNoSlidesFound)
	}
	if math.IsNaN(o.MinSuccessRatio) || o.MinSuccessRatio < 0 || o.MinSuccessRatio > 1 {
		return fmt.Errorf("%w: %.2f (must be between 0 and 1)", ErrInvalidSuccessRatio, o.MinSuccessRatio)
	}
	return nil
}
