package noise

import (
	"math"
	"testing"
)

func TestFieldDeterministic(t *testing.T) {
	a := NewField(42, ChannelBase)
	b := NewField(42, ChannelBase)

	for i := 0; i < 100; i++ {
		x := float64(i) * 0.37
		y := float64(i) * 0.91
		if a.Sample(x, y) != b.Sample(x, y) {
			t.Fatalf("same seed diverged at (%f, %f)", x, y)
		}
	}
}

func TestFieldRange(t *testing.T) {
	f := NewField(7, ChannelBase)

	for i := 0; i < 1000; i++ {
		x := float64(i%37) * 0.13
		y := float64(i%53) * 0.29
		v := f.Sample(x, y)
		if math.IsNaN(v) || v < -1 || v > 1 {
			t.Fatalf("Sample(%f, %f) = %f, out of [-1, 1]", x, y, v)
		}
		u := f.SampleUnit(x, y)
		if u < 0 || u > 1 {
			t.Fatalf("SampleUnit(%f, %f) = %f, out of [0, 1]", x, y, u)
		}
	}
}

func TestChannelsIndependent(t *testing.T) {
	base := NewField(42, ChannelBase)
	detail := NewField(42, ChannelDetail)

	same := 0
	const n = 200
	for i := 0; i < n; i++ {
		x := float64(i) * 0.41
		y := float64(i) * 0.17
		if base.Sample(x, y) == detail.Sample(x, y) {
			same++
		}
	}

	if same > n/10 {
		t.Errorf("channels look correlated: %d/%d identical samples", same, n)
	}
}

func TestFieldContinuity(t *testing.T) {
	f := NewField(99, ChannelBase)

	// Small coordinate steps should produce small value steps.
	const step = 0.001
	prev := f.Sample(0, 0)
	for i := 1; i < 500; i++ {
		v := f.Sample(float64(i)*step, 0)
		if math.Abs(v-prev) > 0.05 {
			t.Fatalf("discontinuity at step %d: %f -> %f", i, prev, v)
		}
		prev = v
	}
}

func TestOctavesRange(t *testing.T) {
	f := NewField(13, ChannelDetail)

	for i := 0; i < 500; i++ {
		x := float64(i) * 0.07
		y := float64(i) * 0.03
		v := f.Octaves(x, y, 4, 1.0, 0.5)
		if math.IsNaN(v) || v < -1 || v > 1 {
			t.Fatalf("Octaves(%f, %f) = %f, out of [-1, 1]", x, y, v)
		}
	}
}

func TestFractalDeterministic(t *testing.T) {
	a := NewFractal(42, ChannelBase, 2, 2, 4)
	b := NewFractal(42, ChannelBase, 2, 2, 4)

	for i := 0; i < 100; i++ {
		x := float64(i) * 0.11
		y := float64(i) * 0.23
		if a.Sample(x, y) != b.Sample(x, y) {
			t.Fatalf("fractal diverged at (%f, %f)", x, y)
		}
	}
}

func TestFractalRange(t *testing.T) {
	f := NewFractal(31, ChannelBase, 2, 2, 4)

	for i := 0; i < 500; i++ {
		v := f.SampleUnit(float64(i)*0.19, float64(i)*0.05)
		if math.IsNaN(v) || v < 0 || v > 1 {
			t.Fatalf("SampleUnit out of range: %f", v)
		}
	}
}
