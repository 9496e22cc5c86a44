package heightmap

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrInvalidParameters marks generation parameters that are rejected before
// any grid work begins. Callers can fix the inputs and retry.
var ErrInvalidParameters = errors.New("invalid generation parameters")

// Archetype selects one of the fixed terrain styles.
type Archetype int

const (
	MountainRange Archetype = iota
	RiverValley
	Plateau
	CraterField
	Hills
	Archipelago
)

var archetypeNames = map[Archetype]string{
	MountainRange: "mountain_range",
	RiverValley:   "river_valley",
	Plateau:       "plateau",
	CraterField:   "crater_field",
	Hills:         "hills",
	Archipelago:   "archipelago",
}

// String returns the canonical archetype name.
func (a Archetype) String() string {
	if name, ok := archetypeNames[a]; ok {
		return name
	}
	return fmt.Sprintf("archetype(%d)", int(a))
}

// ArchetypeNames returns the canonical names in stable order.
func ArchetypeNames() []string {
	names := make([]string, 0, len(archetypeNames))
	for _, name := range archetypeNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseArchetype resolves a name to an archetype. Unknown names produce an
// error that includes the closest known name when one is within a reasonable
// edit distance, so typos get a usable suggestion.
func ParseArchetype(name string) (Archetype, error) {
	cleaned := strings.ToLower(strings.TrimSpace(name))
	cleaned = strings.ReplaceAll(cleaned, "-", "_")
	cleaned = strings.ReplaceAll(cleaned, " ", "_")

	for a, n := range archetypeNames {
		if n == cleaned {
			return a, nil
		}
	}

	// Prefix match, then edit distance.
	best := ""
	bestDist := -1
	for _, n := range ArchetypeNames() {
		if cleaned != "" && strings.HasPrefix(n, cleaned) {
			return 0, fmt.Errorf("%w: unknown archetype %q (did you mean %q?)", ErrInvalidParameters, name, n)
		}
		dist := levenshtein.ComputeDistance(cleaned, n)
		if bestDist == -1 || dist < bestDist {
			best = n
			bestDist = dist
		}
	}
	if bestDist >= 0 && bestDist <= len(best)/2 {
		return 0, fmt.Errorf("%w: unknown archetype %q (did you mean %q?)", ErrInvalidParameters, name, best)
	}
	return 0, fmt.Errorf("%w: unknown archetype %q", ErrInvalidParameters, name)
}

// Grid dimension limits. The lower bound matches the smallest grid the
// shaping passes produce sensible features on; the upper bound keeps memory
// within reason for a desktop generation run.
const (
	MinGridSize = 16
	MaxGridSize = 4096
)

// Params describes one generation request. Build it once per request and
// treat it as read-only afterwards; regeneration uses a fresh value.
type Params struct {
	Width  int
	Height int

	Archetype Archetype

	// Seed drives every randomized decision. The same Params always produce
	// a bit-identical grid.
	Seed int64

	// MinElevation and MaxElevation are the world-space height bounds written
	// at export time. The grid itself stays normalized to [0, 1].
	MinElevation float64
	MaxElevation float64

	SpotCount         int
	SpotMinSeparation float64

	// Shape parameters. Zero means pick a value from the seed within the
	// documented range; out-of-range values are clamped, never rejected.
	RidgeCount   int     // mountain_range ridge lines, 1..8
	PeakCount    int     // mountain_range peak stamps, 0..12
	PlateauCount int     // plateau regions, 1..6
	CraterCount  int     // crater_field craters, 1..24
	IslandCount  int     // archipelago islands, 1..24
	NoiseLevel   float64 // post-shaping noise amplitude, 0..0.5
	SmoothPasses int     // blur passes after shaping, 0..10
}

// Validate rejects core parameter violations. Shape parameters are not
// checked here; they are clamped during synthesis.
func (p *Params) Validate() error {
	if p.Width < MinGridSize || p.Width > MaxGridSize {
		return fmt.Errorf("%w: width %d outside [%d, %d]", ErrInvalidParameters, p.Width, MinGridSize, MaxGridSize)
	}
	if p.Height < MinGridSize || p.Height > MaxGridSize {
		return fmt.Errorf("%w: height %d outside [%d, %d]", ErrInvalidParameters, p.Height, MinGridSize, MaxGridSize)
	}
	if p.MinElevation >= p.MaxElevation {
		return fmt.Errorf("%w: min elevation %g must be below max elevation %g",
			ErrInvalidParameters, p.MinElevation, p.MaxElevation)
	}
	if p.SpotCount < 0 {
		return fmt.Errorf("%w: spot count %d must not be negative", ErrInvalidParameters, p.SpotCount)
	}
	if p.SpotMinSeparation < 0 {
		return fmt.Errorf("%w: spot separation %g must not be negative", ErrInvalidParameters, p.SpotMinSeparation)
	}
	return nil
}

// DefaultParams returns parameters for a medium map of the given archetype.
func DefaultParams(archetype Archetype, seed int64) Params {
	return Params{
		Width:             512,
		Height:            512,
		Archetype:         archetype,
		Seed:              seed,
		MinElevation:      0,
		MaxElevation:      200,
		SpotCount:         16,
		SpotMinSeparation: 400,
		NoiseLevel:        0.05,
		SmoothPasses:      2,
	}
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
