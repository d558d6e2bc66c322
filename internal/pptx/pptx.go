// Package pptx writes picture-only PowerPoint presentations (OOXML
// PresentationML): one slide per page, each slide a full-bleed image.
package pptx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/png" // PNG decoder for DecodeConfig
	"io"
	"os"
	"time"
)

// Slide size limits accepted by PowerPoint, in EMU (1in to 56in).
const (
	MinSlideEMU = 914400
	MaxSlideEMU = 51206400
)

// Sentinel errors.
var (
	ErrNoSlides     = errors.New("presentation has no slides")
	ErrInvalidSize  = errors.New("slide size out of range")
	ErrInvalidImage = errors.New("slide image is not a PNG")
)

// Slide is one presentation slide.
type Slide struct {
	Name  string // shown in the slide outline and as the picture description
	Image []byte // PNG stretched over the whole slide
}

// Presentation describes the file to write.
type Presentation struct {
	Title   string
	Creator string
	Width   int64 // EMU
	Height  int64 // EMU
	Created time.Time
	Slides  []Slide
}

// Validate checks the slide size and that every image is a PNG.
func (p *Presentation) Validate() error {
	if len(p.Slides) == 0 {
		return ErrNoSlides
	}
	for _, v := range []int64{p.Width, p.Height} {
		if v < MinSlideEMU || v > MaxSlideEMU {
			return fmt.Errorf("%w: %dx%d EMU (each side must be between %d and %d)",
				ErrInvalidSize, p.Width, p.Height, MinSlideEMU, MaxSlideEMU)
		}
	}
	for i, s := range p.Slides {
		if _, format, err := image.DecodeConfig(bytes.NewReader(s.Image)); err != nil || format != "png" {
			return fmt.Errorf("%w: slide %d", ErrInvalidImage, i+1)
		}
	}
	return nil
}

// Write encodes the presentation as a .pptx package.
func (p *Presentation) Write(w io.Writer) error {
	if err := p.Validate(); err != nil {
		return err
	}

	created := p.Created
	if created.IsZero() {
		created = time.Now()
	}
	created = created.UTC().Truncate(time.Second)

	zw := zip.NewWriter(w)
	for _, part := range p.parts(created) {
		hdr := &zip.FileHeader{
			Name:     part.name,
			Method:   zip.Deflate,
			Modified: created,
		}
		if part.stored {
			hdr.Method = zip.Store
		}
		fw, err := zw.CreateHeader(hdr)
		if err != nil {
			return fmt.Errorf("creating %s: %w", part.name, err)
		}
		if _, err := fw.Write(part.data); err != nil {
			return fmt.Errorf("writing %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing package: %w", err)
	}
	return nil
}

// WriteFile writes the presentation to path. The file is removed if
// encoding fails.
func (p *Presentation) WriteFile(path string) error {
	f, err := os.Create(path) // #nosec G304 -- caller-chosen output path
	if err != nil {
		return err
	}
	if err := p.Write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}
