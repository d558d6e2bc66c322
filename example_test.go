package html2pptx_test

import (
	"fmt"
	"os"
	"path/filepath"

	html2pptx "github.com/alnah/go-html2pptx"
)

// ExampleOrderSlides shows the deck order: the index slide first, then
// natural order.
func ExampleOrderSlides() {
	names := []string{"slide_10.html", "slide_2.html", "index.html", "slide_1.html"}

	ordered, indexPos := html2pptx.OrderSlides(names, "index.html")

	fmt.Println(ordered, indexPos)
	// Output: [index.html slide_1.html slide_2.html slide_10.html] 0
}

// ExampleDiscover lists the slides a job would convert.
func ExampleDiscover() {
	dir, err := os.MkdirTemp("", "html2pptx-example")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer os.RemoveAll(dir)

	for _, name := range []string{"b.html", "a.md", "notes.txt"} {
		_ = os.WriteFile(filepath.Join(dir, name), []byte("<h1>x</h1>"), 0o600)
	}

	docs, err := html2pptx.Discover(dir, "")
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	for _, d := range docs {
		fmt.Println(d.Ordinal, d.Name, d.Kind == html2pptx.SourceMarkdown)
	}
	// Output:
	// 0 a.md true
	// 1 b.html false
}

// ExamplePageSize_Pixels shows the viewport used for the default slide size.
func ExamplePageSize_Pixels() {
	w, h := html2pptx.DefaultPageSize().Pixels()
	fmt.Printf("%dx%d\n", w, h)
	// Output: 1280x720
}
