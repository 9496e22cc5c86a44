package heightmap

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/springforge/mapforge/internal/noise"
)

// Synthesize builds a normalized elevation grid for the given parameters.
// The result is bit-identical for identical parameters. The context is
// checked between rows and between shaping passes; on cancellation the
// partially built grid is discarded and ctx.Err() is returned.
func Synthesize(ctx context.Context, p Params) (*Grid, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	grid := NewGrid(p.Width, p.Height)

	var err error
	switch p.Archetype {
	case MountainRange:
		err = shapeMountainRange(ctx, grid, p)
	case RiverValley:
		err = shapeRiverValley(ctx, grid, p)
	case Plateau:
		err = shapePlateau(ctx, grid, p)
	case CraterField:
		err = shapeCraterField(ctx, grid, p)
	case Hills:
		err = shapeHills(ctx, grid, p)
	case Archipelago:
		err = shapeArchipelago(ctx, grid, p)
	default:
		return nil, fmt.Errorf("%w: unknown archetype %d", ErrInvalidParameters, int(p.Archetype))
	}
	if err != nil {
		return nil, err
	}

	noiseLevel := clampFloat(p.NoiseLevel, 0, 0.5)
	if noiseLevel > 0 {
		jitter := noise.NewField(p.Seed, noise.ChannelJitter)
		scale := 16.0 / float64(minInt(p.Width, p.Height))
		for y := 0; y < p.Height; y++ {
			if err := checkCancel(ctx); err != nil {
				return nil, err
			}
			for x := 0; x < p.Width; x++ {
				grid.Add(x, y, jitter.Sample(float64(x)*scale, float64(y)*scale)*noiseLevel)
			}
		}
	}

	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	grid.Smooth(clampInt(p.SmoothPasses, 0, 10))

	if err := checkCancel(ctx); err != nil {
		return nil, err
	}
	grid.Normalize()
	return grid, nil
}

func checkCancel(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// shapeRand returns the deterministic value stream for shaping decisions
// (endpoints, radii, counts). Synthesis never shares this stream with spot
// placement, so placement stays independent of shaping internals.
func shapeRand(p Params) *rand.Rand {
	return rand.New(rand.NewSource(p.Seed))
}

// pickCount resolves a shape count parameter: zero draws from [lo, hi] using
// the request seed, anything else is clamped into [lo, hi].
func pickCount(rng *rand.Rand, n, lo, hi int) int {
	if n == 0 {
		return lo + rng.Intn(hi-lo+1)
	}
	return clampInt(n, lo, hi)
}

// baseRelief fills the grid with smooth low-frequency noise remapped to
// [0, amplitude] and offset by floor.
func baseRelief(ctx context.Context, g *Grid, p Params, floor, amplitude float64) error {
	field := noise.NewField(p.Seed, noise.ChannelBase)
	scale := 4.0 / float64(minInt(g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		if err := checkCancel(ctx); err != nil {
			return err
		}
		for x := 0; x < g.Width; x++ {
			g.Set(x, y, floor+field.SampleUnit(float64(x)*scale, float64(y)*scale)*amplitude)
		}
	}
	return nil
}

// shapeMountainRange raises elevation near randomized ridge segments with a
// gaussian falloff of perpendicular distance, then stamps a handful of peaks
// on top.
func shapeMountainRange(ctx context.Context, g *Grid, p Params) error {
	if err := baseRelief(ctx, g, p, 0, 0.25); err != nil {
		return err
	}

	rng := shapeRand(p)
	size := float64(minInt(g.Width, g.Height))
	ridges := pickCount(rng, p.RidgeCount, 1, 8)
	sigma := size / 5 / float64(ridges)

	type segment struct{ x1, y1, x2, y2 float64 }
	segs := make([]segment, ridges)
	for i := range segs {
		// Endpoints biased to opposite halves so ridges span the map.
		segs[i] = segment{
			x1: rng.Float64() * float64(g.Width) / 3,
			y1: rng.Float64() * float64(g.Height),
			x2: float64(g.Width) * (2.0/3.0 + rng.Float64()/3),
			y2: rng.Float64() * float64(g.Height),
		}
	}

	for y := 0; y < g.Height; y++ {
		if err := checkCancel(ctx); err != nil {
			return err
		}
		for x := 0; x < g.Width; x++ {
			for _, s := range segs {
				d := distToSegment(float64(x), float64(y), s.x1, s.y1, s.x2, s.y2)
				g.Add(x, y, math.Exp(-d*d/(2*sigma*sigma)))
			}
		}
	}

	peaks := p.PeakCount
	if peaks == 0 {
		peaks = 5
	}
	peaks = clampInt(peaks, 0, 12)
	for i := 0; i < peaks; i++ {
		if err := checkCancel(ctx); err != nil {
			return err
		}
		cx := rng.Intn(g.Width)
		cy := rng.Intn(g.Height)
		radius := int(size/10) + rng.Intn(int(size/10)+1)
		height := 0.5 + rng.Float64()*0.5
		stampCone(g, cx, cy, radius, height)
	}
	return nil
}

// stampCone adds a linear-falloff bump centered at (cx, cy).
func stampCone(g *Grid, cx, cy, radius int, height float64) {
	for y := maxInt(0, cy-radius); y < minInt(g.Height, cy+radius); y++ {
		for x := maxInt(0, cx-radius); x < minInt(g.Width, cx+radius); x++ {
			d := math.Hypot(float64(x-cx), float64(y-cy))
			if d < float64(radius) {
				g.Add(x, y, height*(1-d/float64(radius)))
			}
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// shapeRiverValley carves a meandering low path across the map with a smooth
// cross-valley rise toward the surrounding terrain level.
func shapeRiverValley(ctx context.Context, g *Grid, p Params) error {
	rng := shapeRand(p)
	size := minInt(g.Width, g.Height)

	// Meander points, west to east.
	type point struct{ x, y float64 }
	var points []point
	x := rng.Intn(g.Width/4 + 1)
	y := rng.Intn(g.Height)
	points = append(points, point{float64(x), float64(y)})
	for x < g.Width-1 {
		x += maxInt(size/20, 1) + rng.Intn(maxInt(size/20, 1))
		y += rng.Intn(size/5+1) - size/10
		if y < 0 {
			y = 0
		}
		if y >= g.Height {
			y = g.Height - 1
		}
		points = append(points, point{float64(x), float64(y)})
	}

	riverWidth := float64(size) / 20
	valleyWidth := float64(size) / 5
	const riverBed, plain = 0.1, 0.7

	for gy := 0; gy < g.Height; gy++ {
		if err := checkCancel(ctx); err != nil {
			return err
		}
		for gx := 0; gx < g.Width; gx++ {
			minDist := math.Inf(1)
			for i := 0; i+1 < len(points); i++ {
				d := distToSegment(float64(gx), float64(gy),
					points[i].x, points[i].y, points[i+1].x, points[i+1].y)
				if d < minDist {
					minDist = d
				}
			}
			switch {
			case minDist < riverWidth:
				g.Set(gx, gy, riverBed)
			case minDist < valleyWidth:
				t := (minDist - riverWidth) / (valleyWidth - riverWidth)
				g.Set(gx, gy, riverBed+(plain-riverBed)*t)
			default:
				g.Set(gx, gy, plain)
			}
		}
	}
	return nil
}

// shapePlateau raises flattened regions with a steep cliff falloff at their
// boundary, max-composed over noisy lowland.
func shapePlateau(ctx context.Context, g *Grid, p Params) error {
	if err := baseRelief(ctx, g, p, 0, 0.2); err != nil {
		return err
	}

	rng := shapeRand(p)
	size := minInt(g.Width, g.Height)
	count := pickCount(rng, p.PlateauCount, 2, 6)
	cliffWidth := float64(size) / 20

	for i := 0; i < count; i++ {
		cx := size/4 + rng.Intn(size/2)
		cy := size/4 + rng.Intn(size/2)
		radius := float64(size/8 + rng.Intn(size/8+1))
		top := 0.5 + rng.Float64()*0.3

		x0 := maxInt(0, cx-int(radius+cliffWidth)-1)
		x1 := minInt(g.Width, cx+int(radius+cliffWidth)+1)
		y0 := maxInt(0, cy-int(radius+cliffWidth)-1)
		y1 := minInt(g.Height, cy+int(radius+cliffWidth)+1)
		for y := y0; y < y1; y++ {
			if err := checkCancel(ctx); err != nil {
				return err
			}
			for x := x0; x < x1; x++ {
				d := math.Hypot(float64(x-cx), float64(y-cy))
				var h float64
				switch {
				case d < radius:
					h = top
				case d < radius+cliffWidth:
					h = top * (1 - (d-radius)/cliffWidth)
				default:
					continue
				}
				if h > g.At(x, y) {
					g.Set(x, y, h)
				}
			}
		}
	}
	return nil
}

// shapeCraterField stamps circular depressions with raised rims onto a gently
// noisy plain. Bowls compose with min and rims add, so overlapping craters
// blend instead of overwriting each other.
func shapeCraterField(ctx context.Context, g *Grid, p Params) error {
	if err := baseRelief(ctx, g, p, 0.55, 0.1); err != nil {
		return err
	}

	rng := shapeRand(p)
	size := minInt(g.Width, g.Height)
	count := pickCount(rng, p.CraterCount, 3, 24)

	for i := 0; i < count; i++ {
		cx := size/8 + rng.Intn(maxInt(6*size/8, 1))
		cy := size/8 + rng.Intn(maxInt(6*size/8, 1))
		radius := float64(size/16 + rng.Intn(size/16+1))
		rimHeight := 0.2 + rng.Float64()*0.2

		reach := int(radius * 1.2)
		y0, y1 := maxInt(0, cy-reach-1), minInt(g.Height, cy+reach+1)
		x0, x1 := maxInt(0, cx-reach-1), minInt(g.Width, cx+reach+1)
		for y := y0; y < y1; y++ {
			if err := checkCancel(ctx); err != nil {
				return err
			}
			for x := x0; x < x1; x++ {
				d := math.Hypot(float64(x-cx), float64(y-cy))
				switch {
				case d < radius:
					// Bowl rises from the center toward the rim.
					depth := 0.3 + 0.3*(d/radius)
					if depth < g.At(x, y) {
						g.Set(x, y, depth)
					}
				case d < radius*1.2:
					rim := 1 - (d-radius)/(0.2*radius)
					g.Add(x, y, rimHeight*rim)
				}
			}
		}
	}
	return nil
}

// shapeHills layers fractal noise octaves for rolling terrain.
func shapeHills(ctx context.Context, g *Grid, p Params) error {
	fractal := noise.NewFractal(p.Seed, noise.ChannelBase, 2, 2, 4)
	scale := 6.0 / float64(minInt(g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		if err := checkCancel(ctx); err != nil {
			return err
		}
		for x := 0; x < g.Width; x++ {
			g.Set(x, y, fractal.SampleUnit(float64(x)*scale, float64(y)*scale))
		}
	}
	return nil
}

// Water band constants for archipelago shaping. The floor sits safely below
// the water classification threshold and island tops well above it.
const (
	archipelagoFloor    = 0.1
	archipelagoLandBase = 0.35
	islandMaskThreshold = 0.5
	islandMaskSoftness  = 0.2
)

// shapeArchipelago multiplies island bumps by a low-frequency density mask
// over a flat water floor, producing land separated by water.
func shapeArchipelago(ctx context.Context, g *Grid, p Params) error {
	g.Fill(archipelagoFloor)

	rng := shapeRand(p)
	size := minInt(g.Width, g.Height)
	count := pickCount(rng, p.IslandCount, 5, 24)
	mask := noise.NewField(p.Seed, noise.ChannelMask)
	maskScale := 2.0 / float64(size)

	for i := 0; i < count; i++ {
		cx := size/8 + rng.Intn(maxInt(6*size/8, 1))
		cy := size/8 + rng.Intn(maxInt(6*size/8, 1))
		radius := float64(size/16 + rng.Intn(size/16+1))
		height := 0.4 + rng.Float64()*0.3

		reach := int(radius)
		y0, y1 := maxInt(0, cy-reach), minInt(g.Height, cy+reach)
		x0, x1 := maxInt(0, cx-reach), minInt(g.Width, cx+reach)
		for y := y0; y < y1; y++ {
			if err := checkCancel(ctx); err != nil {
				return err
			}
			for x := x0; x < x1; x++ {
				d := math.Hypot(float64(x-cx), float64(y-cy))
				if d >= radius {
					continue
				}
				falloff := 1 - (d/radius)*(d/radius)
				m := mask.SampleUnit(float64(x)*maskScale, float64(y)*maskScale)
				density := clampFloat((m-islandMaskThreshold)/islandMaskSoftness+0.5, 0.35, 1)
				h := archipelagoFloor + (archipelagoLandBase-archipelagoFloor+height*falloff)*density
				if h > g.At(x, y) {
					g.Set(x, y, h)
				}
			}
		}
	}
	return nil
}

// distToSegment returns the distance from (x, y) to the segment
// (x1, y1)-(x2, y2).
func distToSegment(x, y, x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(x-x1, y-y1)
	}
	t := ((x-x1)*dx + (y-y1)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return math.Hypot(x-(x1+t*dx), y-(y1+t*dy))
}
