package heightmap

import "testing"

func TestClassifyCell(t *testing.T) {
	tests := []struct {
		elevation float64
		want      TerrainType
	}{
		{0.0, TerrainWater},
		{0.29, TerrainWater},
		{0.3, TerrainShore},
		{0.39, TerrainShore},
		{0.4, TerrainGrass},
		{0.69, TerrainGrass},
		{0.7, TerrainMountain},
		{1.0, TerrainMountain},
	}

	for _, tc := range tests {
		if got := ClassifyCell(tc.elevation); got != tc.want {
			t.Errorf("ClassifyCell(%v) = %v, want %v", tc.elevation, got, tc.want)
		}
	}
}

func TestClassifyGrid(t *testing.T) {
	g := NewGrid(2, 2)
	g.Cells = []float64{0.1, 0.35, 0.5, 0.9}

	types := Classify(g)

	want := []TerrainType{TerrainWater, TerrainShore, TerrainGrass, TerrainMountain}
	for i, tt := range types.Cells {
		if tt != want[i] {
			t.Errorf("cell %d = %v, want %v", i, tt, want[i])
		}
	}
}

func TestDownsampleNearest(t *testing.T) {
	// 4x4 grid with distinct quadrants downsampled to 2x2 must keep one
	// crisp type per quadrant.
	g := NewGrid(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			switch {
			case x < 2 && y < 2:
				g.Set(x, y, 0.1) // water
			case x >= 2 && y < 2:
				g.Set(x, y, 0.35) // shore
			case x < 2:
				g.Set(x, y, 0.5) // grass
			default:
				g.Set(x, y, 0.9) // mountain
			}
		}
	}

	small := Classify(g).Downsample(2, 2)

	want := []TerrainType{TerrainWater, TerrainShore, TerrainGrass, TerrainMountain}
	for i, tt := range small.Cells {
		if tt != want[i] {
			t.Errorf("downsampled cell %d = %v, want %v", i, tt, want[i])
		}
	}
}

func TestDownsampleDimensions(t *testing.T) {
	g := NewGrid(64, 32)
	small := Classify(g).Downsample(16, 8)

	if small.Width != 16 || small.Height != 8 {
		t.Errorf("downsampled grid is %dx%d, want 16x8", small.Width, small.Height)
	}
}
