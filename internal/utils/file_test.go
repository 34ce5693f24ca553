package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/menta2k/image-selector/pkg/types"
)

func TestEnsureDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	if err := EnsureDir(dir); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("Expected %s to be a directory", dir)
	}
	if err := EnsureDir(""); err != nil {
		t.Errorf("Expected empty dir to be a no-op, got %v", err)
	}
}

func TestIsImageFile(t *testing.T) {
	tests := map[string]bool{
		"photo.JPG":  true,
		"photo.webp": true,
		"a/b.png":    true,
		"notes.txt":  false,
		"noext":      false,
	}
	for name, want := range tests {
		if got := IsImageFile(name); got != want {
			t.Errorf("IsImageFile(%q): expected %v, got %v", name, want, got)
		}
	}
}

func TestOutputPath(t *testing.T) {
	got := OutputPath("/tmp/in/photo.jpg", "out", "_crop", "webp")
	if got != filepath.Join("out", "photo_crop.webp") {
		t.Errorf("Unexpected output path %s", got)
	}

	got = OutputPath("https://example.com/img", "out", "", "")
	if got != filepath.Join("out", "remote.png") {
		t.Errorf("Unexpected output path for URL %s", got)
	}
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if !FileExists(file) {
		t.Error("Expected file to exist")
	}
	if FileExists(dir) {
		t.Error("Expected directory not to count as a file")
	}
	if FileExists(filepath.Join(dir, "missing")) {
		t.Error("Expected missing file not to exist")
	}
}

func TestSanitizeFilename(t *testing.T) {
	got := SanitizeFilename(` a/b:c*d?.png `)
	if got != "a_b_c_d_.png" {
		t.Errorf("Expected a_b_c_d_.png, got %q", got)
	}
}

func TestParseRect(t *testing.T) {
	r, err := ParseRect("50, 50,500,500")
	if err != nil {
		t.Fatalf("ParseRect failed: %v", err)
	}
	if r != (types.Rect{X: 50, Y: 50, Width: 500, Height: 500}) {
		t.Errorf("Unexpected rect %+v", r)
	}

	for _, bad := range []string{"1,2,3", "a,b,c,d", "0,0,-1,5"} {
		if _, err := ParseRect(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestParseFloats(t *testing.T) {
	v, err := ParseFloats("300,200,100,-5", 4)
	if err != nil {
		t.Fatalf("ParseFloats failed: %v", err)
	}
	if v[0] != 300 || v[3] != -5 {
		t.Errorf("Unexpected values %v", v)
	}
}
