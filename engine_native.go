package html2pptx

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alnah/go-html2pptx/internal/pptx"
)

// creator is written to the document properties of native presentations.
const creator = "go-html2pptx"

// Compile-time interface check.
var _ Engine = (*NativeEngine)(nil)

// NativeEngine writes picture-only presentations in process: one slide per
// page, the page snapshot stretched over a slide of the page size.
type NativeEngine struct {
	title string
	now   func() time.Time
}

// NewNativeEngine returns a native engine. title is stored in the
// presentation properties; when empty the first slide title is used.
func NewNativeEngine(title string) *NativeEngine {
	return &NativeEngine{title: title, now: time.Now}
}

// Name implements Engine.
func (e *NativeEngine) Name() string { return EngineNative }

// Available implements Engine. The native engine has no external dependency.
func (e *NativeEngine) Available() error { return nil }

// Convert implements Engine.
func (e *NativeEngine) Convert(ctx context.Context, doc *AssembledDocument, outPath, license string) (*PresentationArtifact, error) {
	if doc == nil || doc.PageCount() == 0 {
		return nil, fmt.Errorf("%w: %v", ErrConversion, ErrEmptyAssembly)
	}

	title := e.title
	if title == "" {
		title = doc.Pages[0].Document.Title
	}

	w, h := doc.Size.EMU()
	pres := &pptx.Presentation{
		Title:   title,
		Creator: creator,
		Width:   w,
		Height:  h,
		Created: e.now(),
		Slides:  make([]pptx.Slide, 0, doc.PageCount()),
	}
	trial := license == ""

	for _, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if page.Snapshot == "" {
			return nil, fmt.Errorf("%w: %s has no page snapshot", ErrConversion, page.Document.Name)
		}
		img, err := os.ReadFile(page.Snapshot)
		if err != nil {
			return nil, fmt.Errorf("%w: reading snapshot of %s: %v", ErrConversion, page.Document.Name, err)
		}
		if trial {
			if img, err = pptx.Watermark(img, pptx.TrialWatermark); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrConversion, page.Document.Name, err)
			}
		}
		pres.Slides = append(pres.Slides, pptx.Slide{Name: page.Document.Title, Image: img})
	}

	if err := pres.WriteFile(outPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConversion, err)
	}

	return &PresentationArtifact{
		Path:        outPath,
		SlideCount:  len(pres.Slides),
		Watermarked: trial,
		Engine:      EngineNative,
	}, nil
}
