package pptx

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// TrialWatermark is drawn on every slide written without a license.
const TrialWatermark = "TRIAL VERSION"

var watermarkColor = color.NRGBA{R: 220, G: 30, B: 30, A: 110}

// Watermark returns a copy of the PNG img with text drawn across its
// middle, scaled to about two thirds of the image width.
func Watermark(img []byte, text string) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(img))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	b := src.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)

	if text != "" {
		label := textImage(text)
		lb := label.Bounds()

		w := b.Dx() * 2 / 3
		h := w * lb.Dy() / lb.Dx()
		if h > b.Dy()/2 {
			h = b.Dy() / 2
			w = h * lb.Dx() / lb.Dy()
		}
		if w > 0 && h > 0 {
			x := b.Min.X + (b.Dx()-w)/2
			y := b.Min.Y + (b.Dy()-h)/2
			xdraw.BiLinear.Scale(dst, image.Rect(x, y, x+w, y+h), label, lb, draw.Over, nil)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encoding watermarked image: %w", err)
	}
	return buf.Bytes(), nil
}

// textImage renders text with the built-in bitmap face on a transparent
// canvas sized to the text.
func textImage(text string) *image.NRGBA {
	face := basicfont.Face7x13
	d := &font.Drawer{Face: face}
	width := d.MeasureString(text).Ceil()
	height := face.Metrics().Height.Ceil()

	canvas := image.NewNRGBA(image.Rect(0, 0, width, height))
	d.Dst = canvas
	d.Src = image.NewUniform(watermarkColor)
	d.Dot = fixed.P(0, face.Metrics().Ascent.Ceil())
	d.DrawString(text)
	return canvas
}
