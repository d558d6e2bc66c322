package html2pptx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alnah/go-html2pptx/internal/assets"
	"github.com/alnah/go-html2pptx/internal/fileutil"
	"github.com/alnah/go-html2pptx/internal/pipeline"
)

// sourcePreparer turns a SourceDocument into a file the renderer can open.
// HTML slides are used as authored; markdown slides are converted to a
// standalone HTML page in the work directory.
type sourcePreparer struct {
	workDir      string
	css          string
	preprocessor pipeline.MarkdownPreprocessor
	converter    pipeline.HTMLConverter
	injector     pipeline.CSSInjector
}

func newSourcePreparer(workDir, slideCSS string, opts RenderOptions) (*sourcePreparer, error) {
	if slideCSS == "" {
		css, err := assets.LoadStyle(assets.DefaultStyle)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSourcePrepare, err)
		}
		slideCSS = css
	}

	// The slide box fills the printable area, not the whole page.
	m := opts.Margins
	areaW := opts.PageSize.WidthMM - m.LeftMM - m.RightMM
	areaH := opts.PageSize.HeightMM - m.TopMM - m.BottomMM

	return &sourcePreparer{
		workDir:      workDir,
		css:          pipeline.PageCSS(areaW, areaH) + slideCSS,
		preprocessor: &pipeline.SlidePreprocessor{},
		converter:    pipeline.NewGoldmarkConverter(),
		injector:     &pipeline.CSSInjection{},
	}, nil
}

// Prepare returns the path of the HTML file to render for doc.
func (p *sourcePreparer) Prepare(ctx context.Context, doc SourceDocument) (string, error) {
	if doc.Kind != SourceMarkdown {
		return doc.Path, nil
	}

	data, err := os.ReadFile(doc.Path) // #nosec G304 -- discovered path
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrSourcePrepare, doc.Name, err)
	}

	md := p.preprocessor.PreprocessMarkdown(ctx, string(data))
	html, err := p.converter.ToHTML(ctx, md, doc.Title)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrSourcePrepare, doc.Name, err)
	}
	html = pipeline.ConvertMarkPlaceholders(html)
	html = p.injector.InjectCSS(ctx, html, p.css)

	html, err = pipeline.RewriteRelativePaths(html, filepath.Dir(doc.Path))
	if err != nil {
		return "", fmt.Errorf("%w: %s: rewriting paths: %v", ErrSourcePrepare, doc.Name, err)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, _, err := fileutil.WriteTempFile(p.workDir, html, "html")
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrSourcePrepare, doc.Name, err)
	}
	return path, nil
}
