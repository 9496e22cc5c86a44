// Package config loads the generator's YAML configuration: output locations,
// engine integration paths, map defaults and logging.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/springforge/mapforge/internal/bundle"
	"github.com/springforge/mapforge/internal/logger"
)

// Config holds generator-wide configuration settings.
type Config struct {
	Output  OutputConfig  `yaml:"output"`
	Engine  EngineConfig  `yaml:"engine"`
	Map     MapConfig     `yaml:"map"`
	Logging logger.Config `yaml:"logging"`
}

// OutputConfig holds where generated artifacts land.
type OutputConfig struct {
	// Dir is the directory bundles and archives are written under.
	Dir string `yaml:"dir"`

	// LibraryPath is the catalog database file.
	LibraryPath string `yaml:"library_path"`
}

// EngineConfig holds paths into the game engine installation.
type EngineConfig struct {
	// MapsDir is the engine's maps directory, where installed archives go.
	MapsDir string `yaml:"maps_dir"`
}

// MapConfig holds the default map metadata applied to every generated map
// unless the request overrides it.
type MapConfig struct {
	Author          string  `yaml:"author"`
	SizeKm          int     `yaml:"size_km"`
	MinHeight       float64 `yaml:"min_height"`
	MaxHeight       float64 `yaml:"max_height"`
	Hardness        float64 `yaml:"hardness"`
	NotDeformable   bool    `yaml:"not_deformable"`
	Gravity         int     `yaml:"gravity"`
	TidalStrength   int     `yaml:"tidal_strength"`
	MaxMetal        float64 `yaml:"max_metal"`
	ExtractorRadius float64 `yaml:"extractor_radius"`

	Atmosphere bundle.Atmosphere `yaml:"atmosphere"`

	// TerrainTextures maps terrain type indices to texture names, in
	// water/shore/grass/mountain order.
	TerrainTextures []string `yaml:"terrain_textures"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() *Config {
	meta := bundle.DefaultMetadata("")
	return &Config{
		Output: OutputConfig{
			Dir:         "generated_maps",
			LibraryPath: "generated_maps/library.db",
		},
		Engine: EngineConfig{
			MapsDir: "",
		},
		Map: MapConfig{
			Author:          meta.Author,
			SizeKm:          meta.MapSizeKm,
			MinHeight:       meta.MinHeight,
			MaxHeight:       meta.MaxHeight,
			Hardness:        meta.Hardness,
			NotDeformable:   meta.NotDeformable,
			Gravity:         meta.Gravity,
			TidalStrength:   meta.TidalStrength,
			MaxMetal:        meta.MaxMetal,
			ExtractorRadius: meta.ExtractorRadius,
			Atmosphere:      meta.Atmosphere,
			TerrainTextures: meta.TerrainTextures[:],
		},
		Logging: logger.DefaultConfig(),
	}
}

// LoadConfig loads configuration from a YAML file. A missing file yields the
// defaults; a malformed file is an error. Environment overrides for logging
// are applied last.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			config.Logging.ApplyEnvOverrides()
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.Logging.ApplyEnvOverrides()
	return config, nil
}

// Metadata builds map metadata for the given display name from the
// configured defaults.
func (c *Config) Metadata(name string) bundle.Metadata {
	meta := bundle.DefaultMetadata(name)
	m := c.Map
	if m.Author != "" {
		meta.Author = m.Author
	}
	if m.SizeKm > 0 {
		meta.MapSizeKm = m.SizeKm
	}
	meta.MinHeight = m.MinHeight
	meta.MaxHeight = m.MaxHeight
	if m.Hardness > 0 {
		meta.Hardness = m.Hardness
	}
	meta.NotDeformable = m.NotDeformable
	if m.Gravity > 0 {
		meta.Gravity = m.Gravity
	}
	meta.TidalStrength = m.TidalStrength
	if m.MaxMetal > 0 {
		meta.MaxMetal = m.MaxMetal
	}
	if m.ExtractorRadius > 0 {
		meta.ExtractorRadius = m.ExtractorRadius
	}
	meta.Atmosphere = m.Atmosphere
	for i, tex := range m.TerrainTextures {
		if i >= len(meta.TerrainTextures) {
			break
		}
		if tex != "" {
			meta.TerrainTextures[i] = tex
		}
	}
	return meta
}
