package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	html2pptx "github.com/alnah/go-html2pptx"
)

// ---------------------------------------------------------------------------
// Test environment
// ---------------------------------------------------------------------------

// fakeJob records the options it was built with and returns a canned result.
type fakeJob struct {
	mu     sync.Mutex
	opts   html2pptx.Options
	built  int
	result *html2pptx.Result
	err    error
}

func (f *fakeJob) factory(opts html2pptx.Options, _ ...html2pptx.PipelineOption) JobRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opts = opts
	f.built++
	return f
}

func (f *fakeJob) Run(context.Context) (*html2pptx.Result, error) {
	if f.result == nil {
		return &html2pptx.Result{State: html2pptx.StateFailed}, f.err
	}
	return f.result, f.err
}

// testEnv is an Environment with captured output and a fixed process
// environment.
type testEnv struct {
	*Environment
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	job    *fakeJob
}

func newTestEnv(t *testing.T, vars map[string]string) *testEnv {
	t.Helper()
	te := &testEnv{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		job:    &fakeJob{},
	}
	te.Environment = &Environment{
		Stdout: te.stdout,
		Stderr: te.stderr,
		Getenv: func(k string) string { return vars[k] },
		Environ: func() []string {
			out := make([]string, 0, len(vars))
			for k, v := range vars {
				out = append(out, k+"="+v)
			}
			return out
		},
		NewPipeline: te.job.factory,
	}
	return te
}

// writeTestConfig writes a config file with the run log disabled and
// returns its path.
func writeTestConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "converter_config.yaml")
	content := "logging:\n  file: \"\"\n" + body
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// writeSlides creates empty slide files in dir.
func writeSlides(t *testing.T, dir string, names ...string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatal(err)
	}
	for _, n := range names {
		html := "<html><head><title>" + n + "</title></head><body></body></html>"
		if err := os.WriteFile(filepath.Join(dir, n), []byte(html), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

// page builds a RenderedPage for canned results.
func page(name string, ordinal int, ok bool) html2pptx.RenderedPage {
	p := html2pptx.RenderedPage{
		Document: html2pptx.SourceDocument{Name: name, Ordinal: ordinal},
		Status:   html2pptx.RenderSucceeded,
	}
	if !ok {
		p.Status = html2pptx.RenderFailed
		p.Err = html2pptx.ErrRenderTimeout
	}
	return p
}
