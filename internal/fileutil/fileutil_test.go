package fileutil_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-html2pptx/internal/fileutil"
)

func TestValidateExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		extension string
		wantErr   error
	}{
		{name: "html", extension: "html"},
		{name: "pdf", extension: "pdf"},
		{name: "empty", extension: "", wantErr: fileutil.ErrExtensionEmpty},
		{name: "slash", extension: "a/b", wantErr: fileutil.ErrExtensionPathTraversal},
		{name: "backslash", extension: `a\b`, wantErr: fileutil.ErrExtensionPathTraversal},
		{name: "null byte", extension: "a\x00", wantErr: fileutil.ErrExtensionPathTraversal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := fileutil.ValidateExtension(tt.extension)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExtension(%q) = %v, want %v", tt.extension, err, tt.wantErr)
			}
		})
	}
}

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := "<html><body>slide</body></html>"

	path, cleanup, err := fileutil.WriteTempFile(dir, content, "html")
	if err != nil {
		t.Fatalf("WriteTempFile() error = %v", err)
	}

	if filepath.Dir(path) != dir {
		t.Errorf("path %q not in %q", path, dir)
	}
	if !strings.HasPrefix(filepath.Base(path), fileutil.TempPrefix) {
		t.Errorf("path %q missing prefix %q", path, fileutil.TempPrefix)
	}
	if !strings.HasSuffix(path, ".html") {
		t.Errorf("path %q missing .html extension", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read temp file: %v", err)
	}
	if string(data) != content {
		t.Errorf("file content = %q, want %q", data, content)
	}

	cleanup()
	if fileutil.FileExists(path) {
		t.Error("cleanup did not remove temp file")
	}
}

func TestWriteTempFile_Errors(t *testing.T) {
	t.Parallel()

	t.Run("invalid extension", func(t *testing.T) {
		t.Parallel()

		_, _, err := fileutil.WriteTempFile(t.TempDir(), "x", "../html")
		if !errors.Is(err, fileutil.ErrExtensionPathTraversal) {
			t.Errorf("WriteTempFile() error = %v, want ErrExtensionPathTraversal", err)
		}
	})

	t.Run("missing directory", func(t *testing.T) {
		t.Parallel()

		_, _, err := fileutil.WriteTempFile(filepath.Join(t.TempDir(), "missing"), "x", "html")
		if err == nil {
			t.Error("WriteTempFile() expected error for missing directory")
		}
	})
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "a.html")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "regular file", path: file, want: true},
		{name: "directory", path: dir, want: false},
		{name: "missing", path: filepath.Join(dir, "nope"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.FileExists(tt.path); got != tt.want {
				t.Errorf("FileExists(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestIsFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"dark", false},
		{"my-style", false},
		{"./brand.css", true},
		{"/abs/brand.css", true},
		{`C:\styles\brand.css`, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.IsFilePath(tt.input); got != tt.want {
				t.Errorf("IsFilePath(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestPartialPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		final string
		want  string
	}{
		{"out/deck.pptx", "out/deck.partial.pptx"},
		{"deck.v2.pptx", "deck.v2.partial.pptx"},
		{"deck", "deck.partial"},
	}

	for _, tt := range tests {
		t.Run(tt.final, func(t *testing.T) {
			t.Parallel()

			if got := fileutil.PartialPath(tt.final); got != tt.want {
				t.Errorf("PartialPath(%q) = %q, want %q", tt.final, got, tt.want)
			}
		})
	}
}

func TestCommit(t *testing.T) {
	t.Parallel()

	t.Run("renames partial to final", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		final := filepath.Join(dir, "deck.pptx")
		partial := fileutil.PartialPath(final)
		if err := os.WriteFile(partial, []byte("pk"), 0o644); err != nil {
			t.Fatal(err)
		}

		if err := fileutil.Commit(partial, final); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}
		if !fileutil.FileExists(final) {
			t.Error("final file missing after Commit")
		}
		if fileutil.FileExists(partial) {
			t.Error("partial file still present after Commit")
		}
	})

	t.Run("missing partial", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		final := filepath.Join(dir, "deck.pptx")
		if err := fileutil.Commit(fileutil.PartialPath(final), final); err == nil {
			t.Error("Commit() expected error for missing partial file")
		}
	})
}

func TestRemoveAll_Idempotent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	work := filepath.Join(dir, "work")
	if err := fileutil.EnsureDir(work); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(work, "page.pdf"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if err := fileutil.RemoveAll(work, "", filepath.Join(dir, "never-existed")); err != nil {
			t.Fatalf("RemoveAll() call %d error = %v", i+1, err)
		}
	}
	if _, err := os.Stat(work); !os.IsNotExist(err) {
		t.Errorf("work dir still exists: %v", err)
	}
}
