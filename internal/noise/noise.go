// Package noise provides seeded coordinate noise fields for terrain synthesis.
// Fields are pure functions of (seed, x, y): the same seed always produces the
// same field, and independent channels are derived from one seed by fixed
// offsets so composited layers stay uncorrelated.
package noise

import (
	"github.com/aquilax/go-perlin"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Channel offsets applied to the base seed. Each layer of a composition gets
// its own channel so sampling one layer never shifts another.
const (
	ChannelBase = iota
	ChannelDetail
	ChannelMask
	ChannelJitter
)

// Field is a deterministic 2D scalar field.
type Field struct {
	noise opensimplex.Noise
}

// NewField creates a field for the given seed and channel.
func NewField(seed int64, channel int) *Field {
	return &Field{noise: opensimplex.New(seed + int64(channel))}
}

// Sample returns the field value at (x, y), in [-1, 1].
func (f *Field) Sample(x, y float64) float64 {
	v := f.noise.Eval2(x, y)
	if v < -1 {
		v = -1
	} else if v > 1 {
		v = 1
	}
	return v
}

// SampleUnit returns the field value remapped to [0, 1].
func (f *Field) SampleUnit(x, y float64) float64 {
	return (f.Sample(x, y) + 1) / 2
}

// Octaves sums layered samples at doubling frequency and halving amplitude,
// normalized back to [-1, 1].
func (f *Field) Octaves(x, y float64, count int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < count; i++ {
		total += f.Sample(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	if maxVal == 0 {
		return 0
	}
	return total / maxVal
}

// Fractal is a multi-octave perlin field. It carries its own octave stack, so
// a single sample already contains the layered detail used for rolling
// terrain.
type Fractal struct {
	p *perlin.Perlin
}

// NewFractal creates a fractal field for the given seed and channel.
// alpha controls octave weight decay, beta the frequency step.
func NewFractal(seed int64, channel int, alpha, beta float64, octaves int32) *Fractal {
	return &Fractal{p: perlin.NewPerlin(alpha, beta, octaves, seed+int64(channel))}
}

// Sample returns the fractal value at (x, y), clamped to [-1, 1].
func (f *Fractal) Sample(x, y float64) float64 {
	v := f.p.Noise2D(x, y)
	if v < -1 {
		v = -1
	} else if v > 1 {
		v = 1
	}
	return v
}

// SampleUnit returns the fractal value remapped to [0, 1].
func (f *Fractal) SampleUnit(x, y float64) float64 {
	return (f.Sample(x, y) + 1) / 2
}
