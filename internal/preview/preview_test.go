package preview

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/springforge/mapforge/internal/heightmap"
)

func gradientGrid(size int) *heightmap.Grid {
	g := heightmap.NewGrid(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			g.Set(x, y, float64(x)/float64(size-1))
		}
	}
	return g
}

func TestRenderDimensions(t *testing.T) {
	g := gradientGrid(32)
	img := Render(g)

	b := img.Bounds()
	if b.Dx() != 32 || b.Dy() != 32 {
		t.Errorf("image is %dx%d, want 32x32", b.Dx(), b.Dy())
	}
}

func TestRenderRampLowIsWaterHighIsSnow(t *testing.T) {
	g := gradientGrid(32)
	img := Render(g)

	low := img.RGBAAt(0, 0)
	high := img.RGBAAt(31, 0)

	if low.B <= low.R || low.B <= low.G {
		t.Errorf("low elevation color %v is not water-blue", low)
	}
	if high.R < 200 || high.G < 200 || high.B < 200 {
		t.Errorf("high elevation color %v is not snow-white", high)
	}
}

func TestRenderDoesNotMutateGrid(t *testing.T) {
	g := gradientGrid(16)
	before := g.Clone()

	Render(g)

	for i := range g.Cells {
		if g.Cells[i] != before.Cells[i] {
			t.Fatal("Render modified the grid")
		}
	}
}

func TestTextureUsesTypeColors(t *testing.T) {
	g := heightmap.NewGrid(2, 1)
	g.Cells = []float64{0.1, 0.9}
	types := heightmap.Classify(g)

	img := Texture(g, types)

	water := img.RGBAAt(0, 0)
	mountain := img.RGBAAt(1, 0)
	if water.B <= water.G {
		t.Errorf("water texel %v is not blue", water)
	}
	if mountain.B > 200 {
		t.Errorf("mountain texel %v looks like water", mountain)
	}
}

func TestMinimapSize(t *testing.T) {
	img := Render(gradientGrid(64))
	mm := Minimap(img, 16)

	b := mm.Bounds()
	if b.Dx() != 16 || b.Dy() != 16 {
		t.Errorf("minimap is %dx%d, want 16x16", b.Dx(), b.Dy())
	}
}

func TestHeightImageRange(t *testing.T) {
	g := gradientGrid(16)
	img := HeightImage(g)

	if img.Gray16At(0, 0).Y != 0 {
		t.Errorf("lowest cell = %d, want 0", img.Gray16At(0, 0).Y)
	}
	if img.Gray16At(15, 0).Y != 65535 {
		t.Errorf("highest cell = %d, want 65535", img.Gray16At(15, 0).Y)
	}
}

func TestSavePNGRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "preview.png")

	if err := SavePNG(path, Render(gradientGrid(16))); err != nil {
		t.Fatalf("SavePNG() failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open saved png: %v", err)
	}
	defer f.Close()

	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode saved png: %v", err)
	}
	if decoded.Bounds().Dx() != 16 {
		t.Errorf("decoded width = %d, want 16", decoded.Bounds().Dx())
	}
}
