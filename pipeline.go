package html2pptx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/alnah/go-html2pptx/internal/dateutil"
	"github.com/alnah/go-html2pptx/internal/fileutil"
	"github.com/alnah/go-html2pptx/internal/logging"
)

const (
	assembledPDFName = "assembled.pdf"
	artifactExt      = ".pptx"
)

// Pipeline runs conversion jobs. A Pipeline holds no per-job state and may
// run several jobs one after the other.
type Pipeline struct {
	opts        Options
	log         logrus.FieldLogger
	engine      Engine
	newRenderer func(headless bool) pageRenderer
	now         func() time.Time
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLogger sets the run log. The default discards everything.
func WithLogger(l logrus.FieldLogger) PipelineOption {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}

// WithEngine sets the conversion engine. The default is the native engine.
func WithEngine(e Engine) PipelineOption {
	return func(p *Pipeline) {
		if e != nil {
			p.engine = e
		}
	}
}

// withRenderer replaces the browser-backed renderer, for tests.
func withRenderer(factory func(headless bool) pageRenderer) PipelineOption {
	return func(p *Pipeline) {
		p.newRenderer = factory
	}
}

// NewPipeline creates a pipeline for opts.
func NewPipeline(opts Options, options ...PipelineOption) *Pipeline {
	p := &Pipeline{
		opts:        opts,
		log:         logging.Discard(),
		engine:      NewNativeEngine(""),
		newRenderer: func(headless bool) pageRenderer { return newRodRenderer(headless) },
		now:         time.Now,
	}
	for _, o := range options {
		o(p)
	}
	return p
}

// job is the state of one run, owned by Run.
type job struct {
	id      string
	state   JobState
	step    Step // in progress, reported if the job fails
	log     logrus.FieldLogger
	started time.Time
	result  *Result
	workDir string
	written []string // committed artifacts, removed if the job fails
}

func (j *job) transition(to JobState) {
	j.state = to
	j.result.State = to
	j.log.WithField(logging.FieldStage, to).Info("stage complete")
}

// Run executes one conversion job. The returned Result is never nil: on
// failure it holds the per-slide outcomes known so far and the error is a
// *JobError naming the step that failed.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	j := &job{
		id:      uuid.NewString(),
		state:   StateInit,
		started: p.now(),
	}
	j.log = p.log.WithField(logging.FieldJobID, j.id)
	j.result = &Result{JobID: j.id, State: StateInit}

	err := p.run(ctx, j)

	if cerr := p.cleanup(j); cerr != nil {
		j.log.WithError(cerr).Warn("cleanup incomplete")
	}
	j.result.Duration = time.Since(j.started)

	if err != nil {
		for _, path := range j.written {
			_ = os.Remove(path)
		}
		j.result.Artifacts = nil
		j.result.PDFPath = ""

		jobErr := &JobError{
			Step:      j.step,
			Stage:     j.state,
			Err:       err,
			Succeeded: j.result.Succeeded(),
			Failed:    j.result.Failed(),
		}
		j.state = StateFailed
		j.result.State = StateFailed
		j.log.WithFields(logrus.Fields{
			logging.FieldStage: StateFailed,
			"step":             jobErr.Step,
			"failed_after":     jobErr.Stage,
		}).WithError(err).Error("job failed")
		return j.result, jobErr
	}

	j.transition(StateCleanedUp)
	if j.result.Partial() {
		j.log.WithFields(logrus.Fields{
			"succeeded": len(j.result.Succeeded()),
			"failed":    len(j.result.Failed()),
		}).Warn("partial success: some slides were skipped")
	}
	return j.result, nil
}

func (p *Pipeline) run(ctx context.Context, j *job) error {
	j.step = StepConfigure
	if err := p.opts.Validate(); err != nil {
		return err
	}
	if err := p.engine.Available(); err != nil {
		return err
	}
	j.transition(StateConfigured)

	j.step = StepDiscover
	docs, err := Discover(p.opts.InputDir, p.opts.IndexFile)
	if err != nil {
		return err
	}
	j.result.Documents = docs
	j.log.WithField(logging.FieldCount, len(docs)).Info("slides discovered")
	j.transition(StateDiscovered)

	j.step = StepRender
	if err := ctx.Err(); err != nil {
		return err
	}

	j.workDir, err = os.MkdirTemp(p.opts.WorkDir, fileutil.TempPrefix+"*")
	if err != nil {
		return fmt.Errorf("creating work directory: %w", err)
	}

	pages, err := p.render(ctx, j, docs)
	if err != nil {
		return err
	}
	j.result.Pages = pages
	if err := p.checkThreshold(pages); err != nil {
		return err
	}
	j.transition(StateRendered)

	j.step = StepAssemble
	doc, err := Assemble(pages, p.opts.Render.PageSize, p.opts.Merge, filepath.Join(j.workDir, assembledPDFName))
	if err != nil {
		return err
	}
	j.log.WithField(logging.FieldCount, doc.PageCount()).Info("pages assembled")
	j.transition(StateAssembled)

	j.step = StepConvert
	if err := p.convert(ctx, j, doc); err != nil {
		return err
	}
	j.transition(StateConverted)
	return nil
}

func (p *Pipeline) render(ctx context.Context, j *job, docs []SourceDocument) ([]RenderedPage, error) {
	prep, err := newSourcePreparer(j.workDir, p.opts.SlideCSS, p.opts.Render)
	if err != nil {
		return nil, err
	}

	size := min(ResolvePoolSize(p.opts.Workers), len(docs))
	headless := p.opts.Render.Headless
	pool := newRendererPool(size, func() pageRenderer { return p.newRenderer(headless) })
	defer func() {
		if err := pool.Close(); err != nil {
			j.log.WithError(err).Warn("closing browsers")
		}
	}()

	batch := &renderBatch{
		pool:    pool,
		prep:    prep,
		opts:    p.opts.Render,
		workDir: j.workDir,
		log:     j.log,
	}
	return batch.Run(ctx, docs)
}

// checkThreshold fails the job when no page rendered or when the success
// ratio is below Options.MinSuccessRatio.
func (p *Pipeline) checkThreshold(pages []RenderedPage) error {
	var ok int
	var first error
	for _, pg := range pages {
		if pg.Succeeded() {
			ok++
		} else if first == nil {
			first = pg.Err
		}
	}

	if ok == 0 {
		if first != nil {
			return fmt.Errorf("%w (first failure: %w)", ErrEmptyAssembly, first)
		}
		return ErrEmptyAssembly
	}

	ratio := float64(ok) / float64(len(pages))
	if ratio < p.opts.MinSuccessRatio {
		return fmt.Errorf("%w: %d of %d rendered (%.0f%%, minimum %.0f%%)",
			ErrBelowSuccessThreshold, ok, len(pages), ratio*100, p.opts.MinSuccessRatio*100)
	}
	return nil
}

func (p *Pipeline) convert(ctx context.Context, j *job, doc *AssembledDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	outDir := p.opts.OutputDir
	if outDir == "" {
		outDir = "."
	}
	if err := fileutil.EnsureDir(outDir); err != nil {
		return err
	}

	base, err := p.outputBase()
	if err != nil {
		return err
	}

	log := j.log.WithField(logging.FieldEngine, p.engine.Name())

	if p.opts.Merge {
		final := filepath.Join(outDir, base+artifactExt)
		if err := p.convertOne(ctx, j, doc, final); err != nil {
			return err
		}
		if p.opts.KeepPDF {
			pdf := filepath.Join(outDir, base+".pdf")
			if err := copyFile(doc.PDFPath, pdf); err != nil {
				return err
			}
			j.written = append(j.written, pdf)
			j.result.PDFPath = pdf
		}
	} else {
		for i := range doc.Pages {
			final := filepath.Join(outDir, fmt.Sprintf("%s_%02d%s", base, i+1, artifactExt))
			if err := p.convertOne(ctx, j, doc.Single(i), final); err != nil {
				return err
			}
		}
	}

	log.WithFields(logrus.Fields{
		logging.FieldCount: len(j.result.Artifacts),
		"watermarked":      j.result.Watermarked(),
	}).Info("presentation written")
	return nil
}

// convertOne writes one artifact through a partial file and publishes it
// only when the engine succeeded.
func (p *Pipeline) convertOne(ctx context.Context, j *job, doc *AssembledDocument, final string) error {
	partial := fileutil.PartialPath(final)

	art, err := p.engine.Convert(ctx, doc, partial, p.opts.License)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		_ = os.Remove(partial)
		return err
	}

	if err := fileutil.Commit(partial, final); err != nil {
		return fmt.Errorf("%w: %v", ErrConversion, err)
	}
	j.written = append(j.written, final)

	art.Path = final
	j.result.Artifacts = append(j.result.Artifacts, *art)
	return nil
}

// outputBase returns the artifact base name: Options.OutputName or the
// input directory name, plus the date suffix.
func (p *Pipeline) outputBase() (string, error) {
	base := p.opts.OutputName
	if base == "" {
		abs, err := filepath.Abs(p.opts.InputDir)
		if err != nil {
			return "", fmt.Errorf("resolving input directory: %w", err)
		}
		base = filepath.Base(abs)
	}
	base = strings.TrimSuffix(base, artifactExt)

	suffix, err := dateutil.FileSuffix(p.opts.DateSuffix, p.now())
	if err != nil {
		return "", err
	}
	if suffix != "" {
		base += "_" + suffix
	}
	return base, nil
}

// cleanup removes the work directory when cleanup is enabled. It runs on
// every terminal state and is safe to repeat.
func (p *Pipeline) cleanup(j *job) error {
	if j.workDir == "" {
		return nil
	}
	if !p.opts.Cleanup {
		j.log.WithField("work_dir", j.workDir).Info("intermediate files kept")
		return nil
	}
	if err := fileutil.RemoveAll(j.workDir); err != nil {
		return fmt.Errorf("removing intermediate files: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src) // #nosec G304 -- job work file
	if err != nil {
		return fmt.Errorf("reading %s: %w", filepath.Base(src), err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil { // #nosec G306 -- user output
		return fmt.Errorf("writing %s: %w", filepath.Base(dst), err)
	}
	return nil
}

