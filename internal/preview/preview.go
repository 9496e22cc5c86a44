// Package preview projects elevation grids onto raster images: an operator
// preview with a water-to-snow color ramp, the bundled terrain texture, a
// minimap, and the 16-bit grayscale height image. All projections are
// read-only; the grid is never modified.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"github.com/springforge/mapforge/internal/heightmap"
)

// ramp is the preview color ramp, low to high. Stops are interpolated so the
// operator sees smooth elevation shading rather than hard bands.
var ramp = []struct {
	at float64
	c  color.RGBA
}{
	{0.00, color.RGBA{12, 30, 110, 255}},   // deep water
	{0.25, color.RGBA{35, 80, 180, 255}},   // shallow water
	{0.30, color.RGBA{210, 200, 150, 255}}, // beach
	{0.40, color.RGBA{60, 130, 50, 255}},   // lowland grass
	{0.65, color.RGBA{110, 100, 60, 255}},  // highland
	{0.80, color.RGBA{130, 125, 120, 255}}, // rock
	{1.00, color.RGBA{245, 245, 250, 255}}, // snow
}

// Render maps normalized elevation to the preview color ramp.
func Render(grid *heightmap.Grid) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, grid.Width, grid.Height))
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			img.SetRGBA(x, y, rampColor(grid.At(x, y)))
		}
	}
	return img
}

func rampColor(v float64) color.RGBA {
	if v <= ramp[0].at {
		return ramp[0].c
	}
	for i := 1; i < len(ramp); i++ {
		if v <= ramp[i].at {
			lo, hi := ramp[i-1], ramp[i]
			t := (v - lo.at) / (hi.at - lo.at)
			return lerpRGBA(lo.c, hi.c, t)
		}
	}
	return ramp[len(ramp)-1].c
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: 255,
	}
}

// Terrain texture colors, flat per terrain type so the in-game texture keeps
// crisp type boundaries.
var typeColors = [heightmap.TerrainTypeCount]color.RGBA{
	heightmap.TerrainWater:    {0, 0, 150, 255},
	heightmap.TerrainShore:    {240, 240, 180, 255},
	heightmap.TerrainGrass:    {0, 140, 0, 255},
	heightmap.TerrainMountain: {130, 120, 110, 255},
}

// Texture renders the bundled terrain texture from the type grid, modulated
// slightly by elevation so slopes stay readable.
func Texture(grid *heightmap.Grid, types *heightmap.TypeGrid) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, grid.Width, grid.Height))
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			c := typeColors[types.At(x, y)]
			h := grid.At(x, y)
			// Brighten toward the peaks, darken toward the deeps.
			f := 0.75 + 0.5*h
			img.SetRGBA(x, y, color.RGBA{
				R: scale8(c.R, f),
				G: scale8(c.G, f),
				B: scale8(c.B, f),
				A: 255,
			})
		}
	}
	return img
}

func scale8(v uint8, f float64) uint8 {
	s := float64(v) * f
	if s > 255 {
		return 255
	}
	return uint8(s)
}

// Minimap downsamples an image to size x size using nearest sampling.
func Minimap(src *image.RGBA, size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	b := src.Bounds()
	for y := 0; y < size; y++ {
		sy := b.Min.Y + y*b.Dy()/size
		for x := 0; x < size; x++ {
			sx := b.Min.X + x*b.Dx()/size
			img.Set(x, y, src.At(sx, sy))
		}
	}
	return img
}

// HeightImage encodes the normalized grid as 16-bit grayscale, the precision
// the engine-facing height PNG is stored at.
func HeightImage(grid *heightmap.Grid) *image.Gray16 {
	img := image.NewGray16(image.Rect(0, 0, grid.Width, grid.Height))
	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			img.SetGray16(x, y, color.Gray16{Y: uint16(grid.At(x, y) * 65535)})
		}
	}
	return img
}

// WritePNG encodes img to w.
func WritePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// SavePNG writes img to a file at path.
func SavePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := WritePNG(f, img); err != nil {
		return err
	}
	return f.Close()
}
