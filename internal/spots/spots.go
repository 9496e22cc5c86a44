// Package spots places resource extraction spots on a finished elevation
// grid. Placement is rejection sampling under separation, margin and terrain
// validity constraints, seeded independently of terrain shaping so the same
// request always reproduces the same spot sequence.
package spots

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/springforge/mapforge/internal/heightmap"
)

// Spot is a placed resource location in world units.
type Spot struct {
	X float64
	Z float64
}

// Elevation band (on the normalized grid) where a spot may sit: not
// underwater, not on the highest peaks.
const (
	MinSpotElevation = 0.3
	MaxSpotElevation = 0.9
)

// attemptsPerSpot bounds rejection sampling. The budget is a policy, not a
// guarantee of success: a request that packs spots too densely gives up after
// attemptsPerSpot draws per requested spot and reports how many were placed.
const attemptsPerSpot = 200

// Params configures one placement run.
type Params struct {
	// Count is the number of spots to place.
	Count int

	// MinSeparation is the smallest allowed pairwise distance, in world
	// units.
	MinSeparation float64

	// Margin keeps spots away from the map edge, in cells.
	Margin int

	// Seed should be the generation seed; the placer derives its own stream
	// from it so placement never depends on how many random draws shaping
	// consumed.
	Seed int64

	// WorldScale converts cell coordinates to world units.
	WorldScale float64
}

// seedOffset separates the placement stream from every shaping stream.
const seedOffset = 7919

// UnderfilledError reports that the attempt budget ran out before Count spots
// satisfied the constraints. The partial placement is still valid and is
// returned alongside this error.
type UnderfilledError struct {
	Placed    int
	Requested int
}

func (e *UnderfilledError) Error() string {
	return fmt.Sprintf("placed %d of %d resource spots before exhausting the attempt budget", e.Placed, e.Requested)
}

// Place runs rejection sampling over the grid. The returned sequence is in
// placement order and every accepted pair is at least MinSeparation apart.
// When the attempt budget runs out first, the partial sequence is returned
// together with an *UnderfilledError.
func Place(ctx context.Context, grid *heightmap.Grid, p Params) ([]Spot, error) {
	if p.Count <= 0 {
		return nil, nil
	}
	if p.WorldScale <= 0 {
		return nil, fmt.Errorf("%w: world scale %g must be positive", heightmap.ErrInvalidParameters, p.WorldScale)
	}

	margin := p.Margin
	if margin < 0 {
		margin = 0
	}
	if 2*margin >= grid.Width || 2*margin >= grid.Height {
		return nil, fmt.Errorf("%w: margin %d leaves no placeable area on a %dx%d grid",
			heightmap.ErrInvalidParameters, margin, grid.Width, grid.Height)
	}

	rng := rand.New(rand.NewSource(p.Seed + seedOffset))
	placed := make([]Spot, 0, p.Count)

	budget := attemptsPerSpot * p.Count
	for attempt := 0; attempt < budget && len(placed) < p.Count; attempt++ {
		if attempt%64 == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		x := margin + rng.Intn(grid.Width-2*margin)
		y := margin + rng.Intn(grid.Height-2*margin)

		h := grid.At(x, y)
		if h < MinSpotElevation || h > MaxSpotElevation {
			continue
		}

		candidate := Spot{X: float64(x) * p.WorldScale, Z: float64(y) * p.WorldScale}
		ok := true
		for _, s := range placed {
			if math.Hypot(candidate.X-s.X, candidate.Z-s.Z) < p.MinSeparation {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}

		placed = append(placed, candidate)
	}

	if len(placed) < p.Count {
		return placed, &UnderfilledError{Placed: len(placed), Requested: p.Count}
	}
	return placed, nil
}
