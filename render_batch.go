package html2pptx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/alnah/go-html2pptx/internal/logging"
)

// renderBatch renders every document of a job, at most pool.Size() at a time.
// A failure is recorded on the page and never stops the batch.
type renderBatch struct {
	pool    *rendererPool
	prep    *sourcePreparer
	opts    RenderOptions
	workDir string
	log     logrus.FieldLogger
}

// Run renders docs and returns one RenderedPage per document, sorted by
// ordinal. The error is non-nil only when ctx is cancelled.
func (b *renderBatch) Run(ctx context.Context, docs []SourceDocument) ([]RenderedPage, error) {
	pages := make([]RenderedPage, len(docs))

	var g errgroup.Group
	g.SetLimit(b.pool.Size())

	for i, doc := range docs {
		g.Go(func() error {
			pages[i] = b.renderOne(ctx, doc)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].Document.Ordinal < pages[j].Document.Ordinal
	})
	return pages, nil
}

func (b *renderBatch) renderOne(ctx context.Context, doc SourceDocument) RenderedPage {
	start := time.Now()
	page := RenderedPage{Document: doc, Size: b.opts.PageSize}

	err := b.render(ctx, doc, &page)
	page.Duration = time.Since(start)

	entry := b.log.WithFields(logrus.Fields{
		logging.FieldSlide:      doc.Name,
		logging.FieldOrdinal:    doc.Ordinal,
		logging.FieldDurationMs: page.Duration.Milliseconds(),
	})

	if err != nil {
		page.Status = RenderFailed
		page.Err = &RenderFailure{Document: doc, Reason: err}
		entry.WithField(logging.FieldStatus, RenderFailed).WithError(err).Warn("slide failed to render")
		return page
	}

	page.Status = RenderSucceeded
	entry.WithField(logging.FieldStatus, RenderSucceeded).Info("slide rendered")
	return page
}

func (b *renderBatch) render(ctx context.Context, doc SourceDocument, page *RenderedPage) error {
	htmlPath, err := b.prep.Prepare(ctx, doc)
	if err != nil {
		return err
	}

	r, err := b.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer b.pool.Release(r)

	// A browser launch is not charged to the slide.
	if err := r.Start(ctx); err != nil {
		return err
	}

	docCtx, cancel := context.WithTimeout(ctx, b.opts.Timeout)
	defer cancel()

	capture, err := r.Render(docCtx, htmlPath, b.opts)
	if err = classifyRenderError(ctx, docCtx, b.opts.Timeout, err); err != nil {
		return err
	}

	if err := verifyPageSize(capture.PDF, b.opts.PageSize); err != nil {
		return err
	}

	stem := fmt.Sprintf("page_%03d", doc.Ordinal)
	page.PDFPath = filepath.Join(b.workDir, stem+".pdf")
	if err := os.WriteFile(page.PDFPath, capture.PDF, 0o600); err != nil {
		return fmt.Errorf("writing page PDF: %w", err)
	}

	if capture.Snapshot != nil {
		page.Snapshot = filepath.Join(b.workDir, stem+".png")
		if err := os.WriteFile(page.Snapshot, capture.Snapshot, 0o600); err != nil {
			return fmt.Errorf("writing page snapshot: %w", err)
		}
	}
	return nil
}
