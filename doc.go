// Package html2pptx converts a directory of HTML slides into a PowerPoint
// presentation using headless Chrome.
//
// # Quick Start
//
// Build options, create a pipeline and run it:
//
//	opts := html2pptx.Options{
//	    InputDir:  "slides",
//	    OutputDir: "output",
//	    IndexFile: "index.html",
//	    Render:    html2pptx.DefaultRenderOptions(),
//	    Merge:     true,
//	    Cleanup:   true,
//	    License:   os.Getenv("HTML2PPTX_LICENSE_KEY"),
//	}
//
//	result, err := html2pptx.NewPipeline(opts).Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Artifacts[0].Path)
//
// # Conversion Pipeline
//
// A job moves through these states, and can fail from any of them:
//
//	init → configured → discovered → rendered → assembled → converted → cleaned-up
//
//  1. Discovery: the index slide first, then the others in natural order
//     (slide_2 before slide_10). Markdown slides are accepted too.
//  2. Rendering: each slide is printed by Chrome to one PDF page of the
//     configured size, plus a PNG snapshot. A slide that fails or times out
//     is skipped and the batch goes on.
//  3. Assembly: successful pages are merged in order with pdfcpu.
//  4. Conversion: an Engine turns the pages into a .pptx file.
//
// The job fails when no slide rendered, or when fewer than
// Options.MinSuccessRatio of them did. Otherwise a run with skipped slides
// succeeds and Result.Partial reports it.
//
// # Engines
//
// The native engine writes the presentation in process, one picture per
// slide. The command engine runs an external PDF to PPTX converter:
//
//	engine, err := html2pptx.NewEngine(html2pptx.EngineConfig{
//	    Name:    html2pptx.EngineCommand,
//	    Command: "pdf2pptx",
//	    Args:    []string{"{input}", "-o", "{output}"},
//	})
//	p := html2pptx.NewPipeline(opts, html2pptx.WithEngine(engine))
//
// Without a license both engines run in trial mode and mark the artifact
// as watermarked.
//
// # Logging
//
// The pipeline logs stage transitions and per-slide outcomes to any
// logrus.FieldLogger passed with WithLogger. Nothing is logged by default.
//
// # Browser Pool
//
// Slides render concurrently on a pool of browsers sized by
// Options.Workers, or from GOMAXPROCS when zero (see ResolvePoolSize). Each
// browser serves one slide at a time and all of them are closed when the
// render stage ends.
package html2pptx
