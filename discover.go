package html2pptx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/maruel/natural"
)

// maxTitleScanBytes bounds how much of a slide is read to find its title.
const maxTitleScanBytes = 1 << 20

// sourceExtensions maps eligible file extensions to their kind.
var sourceExtensions = map[string]SourceKind{
	".html":     SourceHTML,
	".htm":      SourceHTML,
	".md":       SourceMarkdown,
	".markdown": SourceMarkdown,
}

// Discover scans inputDir (non-recursively) and returns the eligible slides
// in deck order. The designated index document, when present, comes first.
// Returns ErrNoSlidesFound if the directory is missing or has no slides.
func Discover(inputDir, indexName string) ([]SourceDocument, error) {
	info, err := os.Stat(inputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: directory %s does not exist", ErrNoSlidesFound, inputDir)
		}
		return nil, fmt.Errorf("reading input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNoSlidesFound, inputDir)
	}

	absDir, err := filepath.Abs(inputDir)
	if err != nil {
		return nil, fmt.Errorf("resolving input directory: %w", err)
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, fmt.Errorf("reading input directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") || !isRegularFile(absDir, e) {
			continue
		}
		if _, ok := sourceKind(e.Name()); ok {
			names = append(names, e.Name())
		}
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no .html or .md files in %s", ErrNoSlidesFound, inputDir)
	}

	ordered, indexPos := OrderSlides(names, indexName)
	docs := make([]SourceDocument, len(ordered))
	for i, name := range ordered {
		kind, _ := sourceKind(name)
		path := filepath.Join(absDir, name)
		docs[i] = SourceDocument{
			Path:    path,
			Name:    name,
			Title:   readTitle(path, kind),
			Ordinal: i,
			IsIndex: i == indexPos,
			Kind:    kind,
		}
	}
	return docs, nil
}

// isRegularFile reports whether e is a regular file or a symlink to one.
// Broken links are skipped.
func isRegularFile(dir string, e os.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && info.Mode().IsRegular()
}

// OrderSlides returns names in deck order and the position of the index
// document (-1 if absent). The order depends only on the names: the index
// document first, then natural order ("slide_2" before "slide_10") with a
// byte-wise tie-break so that the key is total.
func OrderSlides(names []string, indexName string) ([]string, int) {
	ordered := make([]string, len(names))
	copy(ordered, names)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if natural.Less(a, b) {
			return true
		}
		if natural.Less(b, a) {
			return false
		}
		return a < b
	})

	idx := findIndex(ordered, indexName)
	if idx < 0 {
		return ordered, -1
	}
	index := ordered[idx]
	copy(ordered[1:idx+1], ordered[:idx])
	ordered[0] = index
	return ordered, 0
}

// findIndex locates the index document, preferring an exact name match
// over a case-insensitive one.
func findIndex(names []string, indexName string) int {
	if indexName == "" {
		return -1
	}
	for i, n := range names {
		if n == indexName {
			return i
		}
	}
	for i, n := range names {
		if strings.EqualFold(n, indexName) {
			return i
		}
	}
	return -1
}

func sourceKind(name string) (SourceKind, bool) {
	kind, ok := sourceExtensions[strings.ToLower(filepath.Ext(name))]
	return kind, ok
}

// firstHeadingPattern matches the first # heading in markdown content.
var firstHeadingPattern = regexp.MustCompile(`(?m)^#\s+(.+)$`)

// readTitle extracts a human title for the slide. Falls back to the file
// stem when the file has none or cannot be read.
func readTitle(path string, kind SourceKind) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	f, err := os.Open(path) // #nosec G304 -- discovered path
	if err != nil {
		return stem
	}
	defer f.Close()
	r := io.LimitReader(f, maxTitleScanBytes)

	var title string
	switch kind {
	case SourceMarkdown:
		data, err := io.ReadAll(r)
		if err != nil {
			return stem
		}
		if m := firstHeadingPattern.FindSubmatch(data); len(m) >= 2 {
			title = string(m[1])
		}
	default:
		doc, err := goquery.NewDocumentFromReader(r)
		if err != nil {
			return stem
		}
		title = doc.Find("title").First().Text()
		if strings.TrimSpace(title) == "" {
			title = doc.Find("h1").First().Text()
		}
	}

	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		return stem
	}
	return title
}
