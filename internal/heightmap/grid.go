// Package heightmap implements deterministic elevation grid synthesis for the
// six supported terrain archetypes, plus terrain-type classification of the
// finished grid.
package heightmap

import "math"

// Grid is a dense row-major elevation grid. Cells are normalized to [0, 1]
// once synthesis finishes; intermediate passes may push values outside that
// range before the final normalize.
type Grid struct {
	Width  int
	Height int
	Cells  []float64
}

// NewGrid allocates a zeroed grid.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Cells:  make([]float64, width*height),
	}
}

// At returns the cell value at (x, y).
func (g *Grid) At(x, y int) float64 {
	return g.Cells[y*g.Width+x]
}

// Set writes the cell value at (x, y).
func (g *Grid) Set(x, y int, v float64) {
	g.Cells[y*g.Width+x] = v
}

// Add adds v to the cell at (x, y).
func (g *Grid) Add(x, y int, v float64) {
	g.Cells[y*g.Width+x] += v
}

// InBounds reports whether (x, y) is a valid cell.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// Fill sets every cell to v.
func (g *Grid) Fill(v float64) {
	for i := range g.Cells {
		g.Cells[i] = v
	}
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	c := NewGrid(g.Width, g.Height)
	copy(c.Cells, g.Cells)
	return c
}

// MinMax returns the smallest and largest cell values.
func (g *Grid) MinMax() (min, max float64) {
	min = math.Inf(1)
	max = math.Inf(-1)
	for _, v := range g.Cells {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

// Normalize rescales all cells to [0, 1]. A flat grid becomes all zeros.
func (g *Grid) Normalize() {
	min, max := g.MinMax()
	span := max - min
	if span == 0 {
		g.Fill(0)
		return
	}
	for i, v := range g.Cells {
		g.Cells[i] = (v - min) / span
	}
}

// Clamp limits every cell to [lo, hi].
func (g *Grid) Clamp(lo, hi float64) {
	for i, v := range g.Cells {
		if v < lo {
			g.Cells[i] = lo
		} else if v > hi {
			g.Cells[i] = hi
		}
	}
}

// Smooth applies the given number of separable blur passes with a [1 2 1]/4
// kernel, clamping at the edges. Repeated passes approximate the gaussian
// smoothing used to soften stamped features.
func (g *Grid) Smooth(passes int) {
	if passes <= 0 {
		return
	}
	tmp := make([]float64, len(g.Cells))
	for p := 0; p < passes; p++ {
		// Horizontal pass.
		for y := 0; y < g.Height; y++ {
			row := y * g.Width
			for x := 0; x < g.Width; x++ {
				l, r := x-1, x+1
				if l < 0 {
					l = 0
				}
				if r >= g.Width {
					r = g.Width - 1
				}
				tmp[row+x] = (g.Cells[row+l] + 2*g.Cells[row+x] + g.Cells[row+r]) / 4
			}
		}
		// Vertical pass.
		for y := 0; y < g.Height; y++ {
			u, d := y-1, y+1
			if u < 0 {
				u = 0
			}
			if d >= g.Height {
				d = g.Height - 1
			}
			for x := 0; x < g.Width; x++ {
				g.Cells[y*g.Width+x] = (tmp[u*g.Width+x] + 2*tmp[y*g.Width+x] + tmp[d*g.Width+x]) / 4
			}
		}
	}
}
