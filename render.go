package html2pptx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/alnah/go-html2pptx/internal/process"
)

// snapshotScale is the device pixel ratio used for page snapshots.
// Print output is vector and does not depend on it.
const snapshotScale = 2

// pageCapture holds the output of one render.
type pageCapture struct {
	PDF      []byte
	Snapshot []byte // PNG, nil unless RenderOptions.Snapshot
}

// pageRenderer renders a local HTML file to one fixed-size page.
// Implementations are not safe for concurrent use; the pool hands each
// instance to one goroutine at a time.
type pageRenderer interface {
	// Start prepares the renderer, launching its browser on first use.
	// It runs before the per-slide timeout starts.
	Start(ctx context.Context) error
	Render(ctx context.Context, htmlPath string, opts RenderOptions) (*pageCapture, error)
	Close() error
}

var _ pageRenderer = (*rodRenderer)(nil)

// waitImagesJS resolves once every <img> has loaded or failed.
const waitImagesJS = `() => Promise.all(Array.from(document.images)
	.filter(img => !img.complete)
	.map(img => new Promise(resolve => { img.onload = img.onerror = resolve; })))`

// waitFontsJS resolves once web fonts are ready.
const waitFontsJS = `() => document.fonts.ready.then(() => true)`

// rodRenderer implements pageRenderer with a headless Chrome driven by go-rod.
// Rod downloads Chromium on first run if no browser is found.
type rodRenderer struct {
	headless bool
	browser  *rod.Browser
	pid      int
}

func newRodRenderer(headless bool) *rodRenderer {
	return &rodRenderer{headless: headless}
}

// newLauncher configures Chrome the same way for rendering and for doctor.
func newLauncher(headless bool) *launcher.Launcher {
	l := launcher.New().
		Headless(headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("hide-scrollbars")

	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// Sandboxing is unavailable in most containers and CI runners.
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}
	return l
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRenderer) ensureBrowser() error {
	if r.browser != nil {
		return nil
	}

	l := newLauncher(r.headless)
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.pid = l.PID()

	browser := rod.New().ControlURL(u)
	if err := browser.Connect(); err != nil {
		process.KillProcessGroup(r.pid)
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	r.browser = browser
	return nil
}

// Start launches the browser unless it is already running.
func (r *rodRenderer) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.ensureBrowser()
}

// Close shuts the browser down and kills any leftover Chrome helpers.
func (r *rodRenderer) Close() error {
	if r.browser == nil {
		return nil
	}
	err := r.browser.Close()
	r.browser = nil
	if r.pid > 0 {
		process.KillProcessGroup(r.pid)
		r.pid = 0
	}
	return err
}

// Render opens htmlPath with a viewport matching the page, waits for the
// page to settle and prints it with explicit paper size and margins.
// The caller bounds the whole call with the per-slide timeout through ctx.
func (r *rodRenderer) Render(ctx context.Context, htmlPath string, opts RenderOptions) (*pageCapture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := r.ensureBrowser(); err != nil {
		return nil, err
	}

	target, err := r.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	// Closed without ctx so a timed-out page is still released.
	defer func() { _ = target.Close() }()

	page := target.Context(ctx)

	w, h := opts.PageSize.Pixels()
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             w,
		Height:            h,
		DeviceScaleFactor: snapshotScale,
	}); err != nil {
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrPageCreate, err)
	}

	if err := page.Navigate(fileURL(htmlPath)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := settle(ctx, page, opts); err != nil {
		return nil, err
	}

	reader, err := page.PDF(buildPrintOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	pdf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}

	capture := &pageCapture{PDF: pdf}
	if opts.Snapshot {
		png, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
			Format: proto.PageCaptureScreenshotFormatPng,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: capturing snapshot: %v", ErrPDFGeneration, err)
		}
		capture.Snapshot = png
	}

	return capture, nil
}

// settle waits for images and fonts, then for the extra settle delay.
func settle(ctx context.Context, page *rod.Page, opts RenderOptions) error {
	if opts.WaitForImages {
		if _, err := page.Eval(waitImagesJS); err != nil {
			return fmt.Errorf("%w: waiting for images: %v", ErrPageLoad, err)
		}
	}
	if opts.WaitForFonts {
		if _, err := page.Eval(waitFontsJS); err != nil {
			return fmt.Errorf("%w: waiting for fonts: %v", ErrPageLoad, err)
		}
	}
	return sleepCtx(ctx, opts.SettleDelay)
}

// buildPrintOptions passes every sizing parameter explicitly so the page
// never depends on engine defaults or CSS @page rules.
func buildPrintOptions(opts RenderOptions) *proto.PagePrintToPDF {
	w, h := opts.PageSize.Inches()
	m := opts.Margins
	return &proto.PagePrintToPDF{
		Landscape:         false,
		PrintBackground:   opts.PrintBackground,
		Scale:             floatPtr(1),
		PaperWidth:        floatPtr(w),
		PaperHeight:       floatPtr(h),
		MarginTop:         floatPtr(m.TopMM / mmPerInch),
		MarginRight:       floatPtr(m.RightMM / mmPerInch),
		MarginBottom:      floatPtr(m.BottomMM / mmPerInch),
		MarginLeft:        floatPtr(m.LeftMM / mmPerInch),
		PageRanges:        "1",
		PreferCSSPageSize: false,
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

// fileURL converts an absolute path to a file:// URL.
func fileURL(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

// sleepCtx waits for d or until ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// classifyRenderError reports a per-slide deadline as ErrRenderTimeout.
// A cancelled job context is returned unchanged.
func classifyRenderError(jobCtx, docCtx context.Context, timeout time.Duration, err error) error {
	if err == nil {
		return nil
	}
	if jobCtx.Err() != nil {
		return jobCtx.Err()
	}
	if errors.Is(docCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %v: %v", ErrRenderTimeout, timeout, err)
	}
	return err
}
