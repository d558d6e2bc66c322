package html2pptx

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pdfConfig returns the pdfcpu configuration used for every read and merge.
// Chrome output passes strict validation, but third-party renderers may not.
func pdfConfig() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// verifyPageSize checks that pdf has exactly one page of the given size.
func verifyPageSize(pdf []byte, size PageSize) error {
	dims, err := api.PageDims(bytes.NewReader(pdf), pdfConfig())
	if err != nil {
		return fmt.Errorf("%w: reading page size: %v", ErrPDFGeneration, err)
	}
	if len(dims) != 1 {
		return fmt.Errorf("%w: slide produced %d pages, want 1", ErrPageSizeMismatch, len(dims))
	}
	if !size.MatchesPoints(dims[0].Width, dims[0].Height) {
		w, h := size.Points()
		return fmt.Errorf("%w: got %.1fx%.1fpt, want %.1fx%.1fpt",
			ErrPageSizeMismatch, dims[0].Width, dims[0].Height, w, h)
	}
	return nil
}

// Assemble builds the AssembledDocument from the successful pages, in
// ordinal order. With merge set, the pages are concatenated into one PDF at
// outPath; otherwise the document is a pass-through and PDFPath is empty.
// Returns ErrEmptyAssembly when no page succeeded.
func Assemble(pages []RenderedPage, size PageSize, merge bool, outPath string) (*AssembledDocument, error) {
	var ok []RenderedPage
	for _, p := range pages {
		if p.Succeeded() {
			ok = append(ok, p)
		}
	}
	if len(ok) == 0 {
		return nil, ErrEmptyAssembly
	}

	sort.SliceStable(ok, func(i, j int) bool {
		return ok[i].Document.Ordinal < ok[j].Document.Ordinal
	})

	for _, p := range ok {
		if p.Size != size {
			return nil, fmt.Errorf("%w: %s rendered at %s, job size is %s", ErrPageSizeMismatch, p.Document.Name, p.Size, size)
		}
	}

	doc := &AssembledDocument{Pages: ok, Size: size}
	if !merge {
		return doc, nil
	}

	if err := mergePDFs(ok, outPath); err != nil {
		return nil, err
	}
	if err := verifyAssembly(outPath, size, len(ok)); err != nil {
		_ = os.Remove(outPath)
		return nil, err
	}
	doc.PDFPath = outPath
	return doc, nil
}

func mergePDFs(pages []RenderedPage, outPath string) error {
	readers := make([]io.ReadSeeker, 0, len(pages))
	for _, p := range pages {
		data, err := os.ReadFile(p.PDFPath)
		if err != nil {
			return fmt.Errorf("%w: reading %s: %v", ErrAssembly, p.Document.Name, err)
		}
		readers = append(readers, bytes.NewReader(data))
	}

	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, pdfConfig()); err != nil {
		return fmt.Errorf("%w: %v", ErrAssembly, err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("%w: writing %s: %v", ErrAssembly, outPath, err)
	}
	return nil
}

// verifyAssembly checks the merged page count and that every page kept
// the job size.
func verifyAssembly(path string, size PageSize, want int) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAssembly, err)
	}
	dims, err := api.PageDims(bytes.NewReader(data), pdfConfig())
	if err != nil {
		return fmt.Errorf("%w: reading merged document: %v", ErrAssembly, err)
	}
	if len(dims) != want {
		return fmt.Errorf("%w: merged document has %d pages, want %d", ErrAssembly, len(dims), want)
	}
	for i, d := range dims {
		if !size.MatchesPoints(d.Width, d.Height) {
			return fmt.Errorf("%w: merged page %d is %.1fx%.1fpt", ErrPageSizeMismatch, i+1, d.Width, d.Height)
		}
	}
	return nil
}

// Single returns a one-page document for page i, used in no-merge mode.
func (d *AssembledDocument) Single(i int) *AssembledDocument {
	p := d.Pages[i]
	return &AssembledDocument{Pages: []RenderedPage{p}, Size: d.Size, PDFPath: p.PDFPath}
}
