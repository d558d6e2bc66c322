// Package pipeline turns markdown slides into standalone HTML pages that the
// page renderer can print like any hand-written HTML slide.
//
// Stages, in order:
//   - preprocessing (line endings, front matter, ==highlight== syntax)
//   - Markdown to HTML conversion via Goldmark
//   - CSS injection (slide stylesheet sized to the page)
//   - relative path rewriting to file:// URLs
//
// Rendering to a fixed-size page is handled by the root html2pptx package.
package pipeline
