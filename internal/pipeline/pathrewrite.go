package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// resourceAttrs lists, per element, the attributes that reference a file a
// slide needs at print time.
var resourceAttrs = map[string][]string{
	"img":    {"src"},
	"source": {"src"},
	"video":  {"src", "poster"},
	"audio":  {"src"},
	"link":   {"href"},
	"script": {"src"},
}

// RewriteRelativePaths resolves relative resource references in a slide
// page against slideDir and replaces them with file:// URLs. A prepared
// slide is printed from the job's work directory, where the original
// relative paths would no longer resolve.
//
// References that escape slideDir, URLs with a scheme and absolute paths are
// left as written. The result is always a complete document. An empty
// slideDir returns the page unchanged.
func RewriteRelativePaths(page, slideDir string) (string, error) {
	if slideDir == "" {
		return page, nil
	}
	root, err := filepath.Abs(slideDir)
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return "", err
	}
	walk(doc, func(n *html.Node) {
		for _, key := range resourceAttrs[n.Data] {
			for i := range n.Attr {
				if n.Attr[i].Key != key {
					continue
				}
				if resolved, ok := resolveLocal(n.Attr[i].Val, root); ok {
					n.Attr[i].Val = resolved
				}
			}
		}
	})

	var b strings.Builder
	if err := html.Render(&b, doc); err != nil {
		return "", err
	}
	return b.String(), nil
}

// walk calls fn for every element below n, depth first.
func walk(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// resolveLocal returns the file URL for ref when ref is a relative path
// inside root.
func resolveLocal(ref, root string) (string, bool) {
	if ref == "" || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "//") || filepath.IsAbs(ref) {
		return "", false
	}
	if u, err := url.Parse(ref); err != nil || u.Scheme != "" {
		return "", false
	}

	abs := filepath.Join(root, filepath.FromSlash(ref))
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), true
}
