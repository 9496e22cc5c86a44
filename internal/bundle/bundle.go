// Package bundle assembles and writes the exported map bundle: the binary
// heightfield payload, the mapinfo.lua descriptor, and the auxiliary raster
// assets. A bundle is written atomically; a failed export never leaves a
// partial bundle directory behind.
package bundle

import (
	"fmt"
	"strings"

	"github.com/springforge/mapforge/internal/heightmap"
	"github.com/springforge/mapforge/internal/spots"
)

// Atmosphere holds the sky and weather settings written to the descriptor.
type Atmosphere struct {
	MinWind      int        `yaml:"min_wind"`
	MaxWind      int        `yaml:"max_wind"`
	FogStart     float64    `yaml:"fog_start"`
	FogEnd       float64    `yaml:"fog_end"`
	FogColor     [3]float64 `yaml:"fog_color"`
	SkyColor     [3]float64 `yaml:"sky_color"`
	SunColor     [3]float64 `yaml:"sun_color"`
	CloudColor   [3]float64 `yaml:"cloud_color"`
	CloudDensity float64    `yaml:"cloud_density"`
}

// Metadata describes everything about a map that is not derived from the
// grids: display names, world dimensions, physics flags and atmosphere.
type Metadata struct {
	Name        string
	Shortname   string
	Description string
	Author      string
	Version     string

	// MapSizeKm is the world edge length in kilometres. World units per
	// grid cell follow from it: sizeKm * 512 / gridWidth.
	MapSizeKm int

	// MinHeight and MaxHeight are the world elevations the normalized grid
	// spans after export.
	MinHeight float64
	MaxHeight float64

	Hardness        float64
	NotDeformable   bool
	Gravity         int
	TidalStrength   int
	MaxMetal        float64
	ExtractorRadius float64

	Atmosphere Atmosphere

	// TerrainTextures maps terrain type indices to texture names in the
	// descriptor's terrainTypes list.
	TerrainTextures [heightmap.TerrainTypeCount]string
}

// DefaultMetadata returns the stock settings for a generated map.
func DefaultMetadata(name string) Metadata {
	return Metadata{
		Name:            name,
		Shortname:       Sanitize(name),
		Description:     "Procedurally generated terrain",
		Author:          "mapforge",
		Version:         "1",
		MapSizeKm:       8,
		MinHeight:       0,
		MaxHeight:       200,
		Hardness:        100,
		Gravity:         130,
		TidalStrength:   0,
		MaxMetal:        0.02,
		ExtractorRadius: 500,
		Atmosphere: Atmosphere{
			MinWind:      5,
			MaxWind:      25,
			FogStart:     0.1,
			FogEnd:       1.0,
			FogColor:     [3]float64{0.7, 0.7, 0.8},
			SkyColor:     [3]float64{0.1, 0.15, 0.7},
			SunColor:     [3]float64{1.0, 1.0, 0.9},
			CloudColor:   [3]float64{0.9, 0.9, 0.9},
			CloudDensity: 0.5,
		},
		TerrainTextures: [heightmap.TerrainTypeCount]string{
			"water.png", "shore.png", "grass.png", "mountain.png",
		},
	}
}

// Sanitize reduces a display name to a filesystem- and engine-safe token.
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "map"
	}
	return b.String()
}

// Bundle is a fully assembled map export, ready to be written to disk.
type Bundle struct {
	Meta  Metadata
	Grid  *heightmap.Grid
	Types *heightmap.TypeGrid
	Spots []spots.Spot
}

// Assemble validates the pieces and builds a bundle. The elevation grid must
// already be normalized.
func Assemble(meta Metadata, grid *heightmap.Grid, types *heightmap.TypeGrid, placed []spots.Spot) (*Bundle, error) {
	if grid == nil {
		return nil, fmt.Errorf("%w: missing elevation grid", heightmap.ErrInvalidParameters)
	}
	if types == nil {
		return nil, fmt.Errorf("%w: missing terrain type grid", heightmap.ErrInvalidParameters)
	}
	if types.Width != grid.Width || types.Height != grid.Height {
		return nil, fmt.Errorf("%w: type grid %dx%d does not match elevation grid %dx%d",
			heightmap.ErrInvalidParameters, types.Width, types.Height, grid.Width, grid.Height)
	}
	if meta.MinHeight >= meta.MaxHeight {
		return nil, fmt.Errorf("%w: min height %g must be below max height %g",
			heightmap.ErrInvalidParameters, meta.MinHeight, meta.MaxHeight)
	}
	if meta.Shortname == "" {
		meta.Shortname = Sanitize(meta.Name)
	}
	return &Bundle{Meta: meta, Grid: grid, Types: types, Spots: placed}, nil
}

// MapFileName is the name of the binary payload inside the bundle.
func (b *Bundle) MapFileName() string {
	return b.Meta.Shortname + ".smf"
}

// WorldScale returns world units per grid cell.
func (b *Bundle) WorldScale() float64 {
	return WorldScale(b.Meta.MapSizeKm, b.Grid.Width)
}

// WorldScale returns world units per cell for a map of the given size.
func WorldScale(mapSizeKm, gridWidth int) float64 {
	return float64(mapSizeKm) * 512 / float64(gridWidth)
}
