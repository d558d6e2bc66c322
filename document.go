package html2pptx

import "time"

// SourceKind is the authoring format of a slide file.
type SourceKind string

// Source kinds.
const (
	SourceHTML     SourceKind = "html"
	SourceMarkdown SourceKind = "markdown"
)

// SourceDocument is one discovered slide. Immutable once discovered.
type SourceDocument struct {
	Path    string // absolute path
	Name    string // base name, e.g. "slide_2.html"
	Title   string // <title>, first heading, or file stem
	Ordinal int    // 0-based position in the deck
	IsIndex bool
	Kind    SourceKind
}

// RenderStatus is the outcome of rendering one slide.
type RenderStatus string

// Render statuses.
const (
	RenderSucceeded RenderStatus = "success"
	RenderFailed    RenderStatus = "failed"
)

// RenderedPage is the fixed-size paginated output for one slide.
type RenderedPage struct {
	Document SourceDocument
	Size     PageSize
	PDFPath  string // intermediate single-page PDF
	Snapshot string // intermediate PNG of the page, "" if not captured
	Status   RenderStatus
	Err      error // set when Status is RenderFailed
	Duration time.Duration
}

// Succeeded reports whether the page can be assembled.
func (p RenderedPage) Succeeded() bool {
	return p.Status == RenderSucceeded
}

// AssembledDocument is the ordered set of successfully rendered pages.
// In merge mode PDFPath points to the combined PDF; in no-merge mode it is
// empty and each page is converted on its own.
type AssembledDocument struct {
	Pages   []RenderedPage
	Size    PageSize
	PDFPath string
}

// PageCount returns the number of pages in the document.
func (d *AssembledDocument) PageCount() int {
	return len(d.Pages)
}

// PresentationArtifact is a written presentation file.
type PresentationArtifact struct {
	Path        string
	SlideCount  int
	Watermarked bool   // true when the engine ran without a valid license
	Engine      string // engine name that produced the file
}

// JobState is a position in the pipeline state machine.
type JobState string

// Job states, in pipeline order.
const (
	StateInit       JobState = "init"
	StateConfigured JobState = "configured"
	StateDiscovered JobState = "discovered"
	StateRendered   JobState = "rendered"
	StateAssembled  JobState = "assembled"
	StateConverted  JobState = "converted"
	StateCleanedUp  JobState = "cleaned-up"
	StateFailed     JobState = "failed"
)

// Terminal reports whether no further transition is possible.
func (s JobState) Terminal() bool {
	return s == StateCleanedUp || s == StateFailed
}

// Step is the work that moves a job into its next state.
type Step string

// Pipeline steps, in order.
const (
	StepConfigure Step = "configure"
	StepDiscover  Step = "discover"
	StepRender    Step = "render"
	StepAssemble  Step = "assemble"
	StepConvert   Step = "convert"
)

// Result summarizes a finished job.
type Result struct {
	JobID     string
	State     JobState
	Documents []SourceDocument
	Pages     []RenderedPage // every slide, in ordinal order
	Artifacts []PresentationArtifact
	PDFPath   string // kept assembled PDF, "" unless Options.KeepPDF
	Duration  time.Duration
}

// Succeeded returns the names of slides that rendered.
func (r *Result) Succeeded() []string {
	return r.namesWith(RenderSucceeded)
}

// Failed returns the names of slides that did not render.
func (r *Result) Failed() []string {
	return r.namesWith(RenderFailed)
}

// Partial reports whether some but not all slides made it into the output.
func (r *Result) Partial() bool {
	return len(r.Failed()) > 0 && len(r.Succeeded()) > 0
}

// Watermarked reports whether any artifact was produced in trial mode.
func (r *Result) Watermarked() bool {
	for _, a := range r.Artifacts {
		if a.Watermarked {
			return true
		}
	}
	return false
}

func (r *Result) namesWith(status RenderStatus) []string {
	var names []string
	for _, p := range r.Pages {
		if p.Status == status {
			names = append(names, p.Document.Name)
		}
	}
	return names
}
