package html2pptx

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// makePDF builds a valid PDF with pages of w x h points.
func makePDF(pages int, w, h float64) []byte {
	var buf bytes.Buffer
	var offsets []int

	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", 3+2*i)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))

	content := "0 0 m 10 10 l S"
	for i := 0; i < pages; i++ {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %.2f %.2f] /Resources << >> /Contents %d 0 R >>",
			w, h, 4+2*i))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

// pagePDF returns a one-page PDF of the given size.
func pagePDF(size PageSize) []byte {
	w, h := size.Points()
	return makePDF(1, w, h)
}

// makePNG returns a small opaque PNG.
func makePNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 32, 18))
	for y := 0; y < 18; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: 30, G: 60, B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// writeSlides creates files in dir with minimal HTML bodies.
func writeSlides(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	for _, name := range names {
		body := fmt.Sprintf("<html><head><title>%s</title></head><body><h1>%s</h1></body></html>", name, name)
		if strings.HasSuffix(name, ".md") {
			body = "# " + name + "\n\nText.\n"
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

// mockRenderer is a pageRenderer that never starts a browser. Slides listed
// in fail return an error, slides in hang block until the context ends and
// slides in wrongSize get a page of another size. The first Start call
// takes startDelay, like a browser launch, or fails with startErr.
type mockRenderer struct {
	pdf        []byte
	snapshot   []byte
	fail       map[string]bool
	hang       map[string]bool
	wrongSize  map[string]bool
	startDelay time.Duration
	startErr   error

	mu       sync.Mutex
	rendered []string
	active   atomic.Int32
	peak     atomic.Int32
	closed   atomic.Int32
	starts   atomic.Int32
}

func newMockRenderer(t *testing.T, size PageSize) *mockRenderer {
	t.Helper()
	return &mockRenderer{
		pdf:       pagePDF(size),
		snapshot:  makePNG(t),
		fail:      map[string]bool{},
		hang:      map[string]bool{},
		wrongSize: map[string]bool{},
	}
}

func (m *mockRenderer) Start(ctx context.Context) error {
	if m.starts.Add(1) > 1 {
		return nil
	}
	if m.startErr != nil {
		return m.startErr
	}
	select {
	case <-time.After(m.startDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *mockRenderer) Render(ctx context.Context, htmlPath string, opts RenderOptions) (*pageCapture, error) {
	n := m.active.Add(1)
	defer m.active.Add(-1)
	for {
		p := m.peak.Load()
		if n <= p || m.peak.CompareAndSwap(p, n) {
			break
		}
	}

	name := filepath.Base(htmlPath)
	m.mu.Lock()
	m.rendered = append(m.rendered, name)
	m.mu.Unlock()

	switch {
	case m.hang[name]:
		<-ctx.Done()
		return nil, ctx.Err()
	case m.fail[name]:
		return nil, fmt.Errorf("%w: broken slide", ErrPageLoad)
	case m.wrongSize[name]:
		return &pageCapture{PDF: makePDF(1, 595, 842), Snapshot: m.snapshot}, nil
	}

	// Give concurrent renders a chance to overlap.
	time.Sleep(time.Millisecond)

	capture := &pageCapture{PDF: m.pdf}
	if opts.Snapshot {
		capture.Snapshot = m.snapshot
	}
	return capture, nil
}

func (m *mockRenderer) Close() error {
	m.closed.Add(1)
	return nil
}

// factory returns a pool factory sharing this mock between instances.
func (m *mockRenderer) factory() func(bool) pageRenderer {
	return func(bool) pageRenderer { return m }
}

// mockEngine is an Engine writing a placeholder file.
type mockEngine struct {
	unavailable error
	err         error
	block       bool

	mu    sync.Mutex
	calls []*AssembledDocument
}

func (e *mockEngine) Name() string { return "mock" }

func (e *mockEngine) Available() error { return e.unavailable }

func (e *mockEngine) Convert(ctx context.Context, doc *AssembledDocument, outPath, license string) (*PresentationArtifact, error) {
	e.mu.Lock()
	e.calls = append(e.calls, doc)
	e.mu.Unlock()

	if err := os.WriteFile(outPath, []byte("pptx"), 0o600); err != nil {
		return nil, err
	}
	if e.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if e.err != nil {
		return nil, e.err
	}
	return &PresentationArtifact{
		Path:        outPath,
		SlideCount:  doc.PageCount(),
		Watermarked: license == "",
		Engine:      e.Name(),
	}, nil
}

// testOptions returns fast job options for a pipeline reading inputDir.
func testOptions(t *testing.T, inputDir string) Options {
	t.Helper()
	render := DefaultRenderOptions()
	render.Timeout = 2 * time.Second
	render.SettleDelay = 0
	return Options{
		InputDir:  inputDir,
		OutputDir: filepath.Join(t.TempDir(), "output"),
		IndexFile: "index.html",
		Render:    render,
		Workers:   2,
		Merge:     true,
		Cleanup:   true,
		WorkDir:   t.TempDir(),
	}
}

// listDir returns the names in dir, or nil if it does not exist.
func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatal(err)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}
