package html2pptx

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestOrderSlides(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		names     []string
		index     string
		want      []string
		wantIndex int
	}{
		{
			name:      "index first then natural order",
			names:     []string{"slide_10.html", "slide_2.html", "index.html", "slide_1.html"},
			index:     "index.html",
			want:      []string{"index.html", "slide_1.html", "slide_2.html", "slide_10.html"},
			wantIndex: 0,
		},
		{
			name:      "no index configured",
			names:     []string{"b.html", "index.html", "a.html"},
			index:     "",
			want:      []string{"a.html", "b.html", "index.html"},
			wantIndex: -1,
		},
		{
			name:      "configured index absent",
			names:     []string{"slide2.html", "slide1.html"},
			index:     "index.html",
			want:      []string{"slide1.html", "slide2.html"},
			wantIndex: -1,
		},
		{
			name:      "index matched case-insensitively",
			names:     []string{"a.html", "INDEX.HTML"},
			index:     "index.html",
			want:      []string{"INDEX.HTML", "a.html"},
			wantIndex: 0,
		},
		{
			name:      "natural ties broken bytewise",
			names:     []string{"slide_01.html", "slide_1.html"},
			index:     "",
			want:      []string{"slide_01.html", "slide_1.html"},
			wantIndex: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, idx := OrderSlides(tt.names, tt.index)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("OrderSlides() = %v, want %v", got, tt.want)
			}
			if idx != tt.wantIndex {
				t.Errorf("index position = %d, want %d", idx, tt.wantIndex)
			}
		})
	}
}

func TestOrderSlides_DoesNotDependOnInputOrder(t *testing.T) {
	t.Parallel()

	a := []string{"slide_3.html", "index.html", "slide_12.html", "slide_1.html", "Slide_2.html"}
	b := []string{"slide_1.html", "Slide_2.html", "slide_12.html", "index.html", "slide_3.html"}

	gotA, _ := OrderSlides(a, "index.html")
	gotB, _ := OrderSlides(b, "index.html")
	if !reflect.DeepEqual(gotA, gotB) {
		t.Errorf("order depends on input order: %v vs %v", gotA, gotB)
	}
	if a[0] != "slide_3.html" {
		t.Error("OrderSlides modified its input")
	}
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeSlides(t, dir, "slide_10.html", "slide_2.html", "index.html", "notes.md", ".hidden.html", "readme.txt")
	if err := os.Mkdir(filepath.Join(dir, "sub.html"), 0o750); err != nil {
		t.Fatal(err)
	}

	docs, err := Discover(dir, "index.html")
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	var names []string
	for i, d := range docs {
		names = append(names, d.Name)
		if d.Ordinal != i {
			t.Errorf("%s ordinal = %d, want %d", d.Name, d.Ordinal, i)
		}
		if !filepath.IsAbs(d.Path) {
			t.Errorf("%s path %q is not absolute", d.Name, d.Path)
		}
	}
	want := []string{"index.html", "notes.md", "slide_2.html", "slide_10.html"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("names = %v, want %v", names, want)
	}

	if !docs[0].IsIndex || docs[1].IsIndex {
		t.Error("only the first document should be the index")
	}
	if docs[1].Kind != SourceMarkdown || docs[2].Kind != SourceHTML {
		t.Errorf("kinds = %s, %s", docs[1].Kind, docs[2].Kind)
	}
	if docs[1].Title != "notes.md" {
		t.Errorf("markdown title = %q, want heading text", docs[1].Title)
	}
	if docs[3].Title != "slide_10.html" {
		t.Errorf("html title = %q, want <title> text", docs[3].Title)
	}
}

func TestDiscover_Deterministic(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeSlides(t, dir, "c.html", "a.html", "b10.html", "b9.html")

	first, err := Discover(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := Discover(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("discovery not deterministic:\n%v\n%v", first, second)
	}
}

func TestDiscover_NoSlides(t *testing.T) {
	t.Parallel()

	empty := t.TempDir()
	writeSlides(t, empty, "notes.txt")

	file := filepath.Join(t.TempDir(), "deck.html")
	if err := os.WriteFile(file, []byte("<p>x</p>"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		dir  string
	}{
		{"missing directory", filepath.Join(t.TempDir(), "nope")},
		{"no eligible files", empty},
		{"path is a file", file},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Discover(tt.dir, "index.html")
			if !errors.Is(err, ErrNoSlidesFound) {
				t.Errorf("Discover() error = %v, want ErrNoSlidesFound", err)
			}
		})
	}
}

func TestDiscover_Symlinks(t *testing.T) {
	t.Parallel()

	shared := t.TempDir()
	writeSlides(t, shared, "intro.html")
	if err := os.Mkdir(filepath.Join(shared, "img"), 0o750); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	writeSlides(t, dir, "slide_1.html")
	links := map[string]string{
		"slide_2.html": filepath.Join(shared, "intro.html"),
		"slide_3.html": filepath.Join(shared, "missing.html"),
		"slide_4.html": filepath.Join(shared, "img"),
	}
	for name, target := range links {
		if err := os.Symlink(target, filepath.Join(dir, name)); err != nil {
			t.Skipf("symlinks unsupported: %v", err)
		}
	}

	docs, err := Discover(dir, "")
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	var got []string
	for _, d := range docs {
		got = append(got, d.Name)
	}
	if want := []string{"slide_1.html", "slide_2.html"}; !reflect.DeepEqual(got, want) {
		t.Errorf("names = %v, want %v", got, want)
	}
}

func TestReadTitle(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := map[string]string{
		"titled.html":  "<html><head><title>  Quarterly\n Review </title></head><body><h1>Ignored</h1></body></html>",
		"heading.html": "<html><body><h1>Roadmap</h1></body></html>",
		"bare.html":    "<html><body><p>text</p></body></html>",
		"deck.md":      "intro\n\n# Goals\n\n## Sub\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		file string
		kind SourceKind
		want string
	}{
		{"titled.html", SourceHTML, "Quarterly Review"},
		{"heading.html", SourceHTML, "Roadmap"},
		{"bare.html", SourceHTML, "bare"},
		{"deck.md", SourceMarkdown, "Goals"},
		{"missing.html", SourceHTML, "missing"},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			t.Parallel()

			if got := readTitle(filepath.Join(dir, tt.file), tt.kind); got != tt.want {
				t.Errorf("readTitle(%s) = %q, want %q", tt.file, got, tt.want)
			}
		})
	}
}
