package preview

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/menta2k/image-selector/pkg/imageio"
	"github.com/menta2k/image-selector/pkg/selection"
	"github.com/menta2k/image-selector/pkg/types"
)

// createTestRegion creates a solid region at the given rectangle
func createTestRegion(r types.Rect) selection.Region {
	img := image.NewNRGBA(image.Rect(0, 0, int(r.Width), int(r.Height)))
	for y := 0; y < img.Bounds().Dy(); y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			img.SetNRGBA(x, y, color.NRGBA{200, 100, 50, 255})
		}
	}
	return selection.Region{Rect: r, Image: img}
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	if _, ok := c.Last(); ok {
		t.Error("Expected no last region on an empty collector")
	}

	c.Preview(createTestRegion(types.Rect{X: 1, Y: 2, Width: 3, Height: 4}))
	c.Preview(createTestRegion(types.Rect{X: 5, Y: 6, Width: 7, Height: 8}))

	if len(c.Regions()) != 2 {
		t.Errorf("Expected 2 regions, got %d", len(c.Regions()))
	}
	last, ok := c.Last()
	if !ok || last.Rect.X != 5 {
		t.Errorf("Expected last region at x=5, got %+v", last.Rect)
	}
}

func TestFileSink(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "previews")
	sink := NewFileSink(imageio.NewCodec(), FileConfig{OutputDir: dir})

	var saved []string
	sink.OnSaved = func(path string) { saved = append(saved, path) }

	sink.Preview(createTestRegion(types.Rect{X: 100, Y: 100, Width: 20, Height: 10}))
	sink.Preview(createTestRegion(types.Rect{X: 50, Y: 60, Width: 8, Height: 8}))

	if err := sink.Err(); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	paths := sink.Paths()
	if len(paths) != 2 || len(saved) != 2 {
		t.Fatalf("Expected 2 files, got %v", paths)
	}

	expected := filepath.Join(dir, "selection_001_20x10@100,100.png")
	if paths[0] != expected {
		t.Errorf("Expected %s, got %s", expected, paths[0])
	}
	if !strings.HasPrefix(filepath.Base(paths[1]), "selection_002_") {
		t.Errorf("Expected numbered second file, got %s", paths[1])
	}

	img, err := imageio.NewCodec().LoadImage(paths[0])
	if err != nil {
		t.Fatalf("Failed to read preview back: %v", err)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 10 {
		t.Errorf("Expected 20x10 preview, got %v", img.Bounds())
	}
}

func TestFileSinkDefaults(t *testing.T) {
	sink := NewFileSink(imageio.NewCodec(), FileConfig{Quality: 500})

	if sink.config.Format != "png" {
		t.Errorf("Expected default format png, got %s", sink.config.Format)
	}
	if sink.config.Quality != 90 {
		t.Errorf("Expected default quality 90, got %d", sink.config.Quality)
	}
	if sink.config.Prefix != "selection" {
		t.Errorf("Expected default prefix selection, got %s", sink.config.Prefix)
	}
}

func TestFileSinkError(t *testing.T) {
	// A file where the output directory should be
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	sink := NewFileSink(imageio.NewCodec(), FileConfig{OutputDir: filepath.Join(blocker, "out")})
	var reported error
	sink.OnError = func(err error) { reported = err }

	sink.Preview(createTestRegion(types.Rect{Width: 4, Height: 4}))

	if sink.Err() == nil || reported == nil {
		t.Error("Expected the save error to be reported")
	}
	if len(sink.Paths()) != 0 {
		t.Errorf("Expected no files, got %v", sink.Paths())
	}
}

func TestDataURLSink(t *testing.T) {
	sink := NewDataURLSink(imageio.NewCodec(), "jpeg", 80)
	if sink.CSSBackground() != "" {
		t.Error("Expected no background before the first preview")
	}

	var updates int
	sink.OnUpdate = func(string) { updates++ }
	sink.Preview(createTestRegion(types.Rect{Width: 8, Height: 8}))

	if sink.Err() != nil {
		t.Fatalf("Unexpected error: %v", sink.Err())
	}
	if !strings.HasPrefix(sink.Last(), "data:image/jpeg;base64,") {
		t.Errorf("Expected JPEG data URL, got %.40s", sink.Last())
	}
	if !strings.HasPrefix(sink.CSSBackground(), `url("data:image/jpeg`) {
		t.Errorf("Expected CSS url(), got %.40s", sink.CSSBackground())
	}
	if updates != 1 {
		t.Errorf("Expected 1 update, got %d", updates)
	}
}
