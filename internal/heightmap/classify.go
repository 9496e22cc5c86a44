package heightmap

// TerrainType is a discrete surface classification used for texture and
// hardness lookups in the exported bundle.
type TerrainType uint8

const (
	TerrainWater TerrainType = iota
	TerrainShore
	TerrainGrass
	TerrainMountain
)

// Classification thresholds on the normalized elevation grid.
const (
	WaterLevel    = 0.3
	ShoreLevel    = 0.4
	MountainLevel = 0.7
)

var terrainTypeNames = [...]string{
	TerrainWater:    "water",
	TerrainShore:    "shore",
	TerrainGrass:    "grass",
	TerrainMountain: "mountain",
}

// String returns the terrain type name.
func (t TerrainType) String() string {
	if int(t) < len(terrainTypeNames) {
		return terrainTypeNames[t]
	}
	return "unknown"
}

// TerrainTypeCount is the number of distinct terrain types.
const TerrainTypeCount = len(terrainTypeNames)

// TypeGrid is a row-major terrain classification grid. It is derived from a
// finished elevation grid and read-only afterwards.
type TypeGrid struct {
	Width  int
	Height int
	Cells  []TerrainType
}

// At returns the type at (x, y).
func (t *TypeGrid) At(x, y int) TerrainType {
	return t.Cells[y*t.Width+x]
}

// ClassifyCell maps a normalized elevation to its terrain type.
func ClassifyCell(elevation float64) TerrainType {
	switch {
	case elevation < WaterLevel:
		return TerrainWater
	case elevation < ShoreLevel:
		return TerrainShore
	case elevation < MountainLevel:
		return TerrainGrass
	default:
		return TerrainMountain
	}
}

// Classify derives the terrain type grid from a normalized elevation grid.
func Classify(g *Grid) *TypeGrid {
	t := &TypeGrid{
		Width:  g.Width,
		Height: g.Height,
		Cells:  make([]TerrainType, len(g.Cells)),
	}
	for i, v := range g.Cells {
		t.Cells[i] = ClassifyCell(v)
	}
	return t
}

// Downsample returns a coarser copy using nearest-cell selection, which keeps
// type boundaries crisp where averaging would invent intermediate types.
func (t *TypeGrid) Downsample(width, height int) *TypeGrid {
	out := &TypeGrid{
		Width:  width,
		Height: height,
		Cells:  make([]TerrainType, width*height),
	}
	for y := 0; y < height; y++ {
		sy := y * t.Height / height
		for x := 0; x < width; x++ {
			sx := x * t.Width / width
			out.Cells[y*width+x] = t.At(sx, sy)
		}
	}
	return out
}
