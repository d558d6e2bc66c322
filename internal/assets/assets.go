package assets

import (
	"io/fs"
	"path"
	"sort"
	"strings"
)

// DefaultStyle is the built-in style used when none is configured.
const DefaultStyle = "slide"

var defaultLoader = NewEmbeddedLoader()

// LoadStyle loads a built-in CSS style by name (without .css extension).
// Returns ErrStyleNotFound if the style does not exist.
func LoadStyle(name string) (string, error) {
	return defaultLoader.LoadStyle(name)
}

// EmbeddedStyles returns the names of the built-in styles, sorted.
func EmbeddedStyles() []string {
	matches, _ := fs.Glob(styles, "styles/*.css")
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, strings.TrimSuffix(path.Base(m), ".css"))
	}
	sort.Strings(names)
	return names
}
