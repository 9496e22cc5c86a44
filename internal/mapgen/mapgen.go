// Package mapgen runs the generation pipeline for one map request:
// synthesize the elevation grid, classify terrain, place resource spots and
// export the bundle. Each request owns its grids for the whole run; nothing
// is shared between concurrent requests.
package mapgen

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/springforge/mapforge/internal/bundle"
	"github.com/springforge/mapforge/internal/heightmap"
	"github.com/springforge/mapforge/internal/logger"
	"github.com/springforge/mapforge/internal/spots"
)

// DefaultSpotMargin keeps resource spots this many cells away from the map
// edge unless the request says otherwise.
const DefaultSpotMargin = 16

// Request describes one full generation run.
type Request struct {
	Params heightmap.Params
	Meta   bundle.Metadata

	// SpotMargin is the edge margin for resource spots, in cells. Zero
	// means DefaultSpotMargin, capped for small grids.
	SpotMargin int

	// OutputDir, when set, is the directory the bundle directory is created
	// under. When empty the bundle is assembled but not written.
	OutputDir string
}

// Result is the outcome of a completed pipeline run.
type Result struct {
	Grid  *heightmap.Grid
	Types *heightmap.TypeGrid
	Spots []spots.Spot

	Bundle *bundle.Bundle

	// BundleDir is where the bundle was written, empty if export was not
	// requested.
	BundleDir string

	// Underfilled is how many requested resource spots could not be placed
	// within the attempt budget. Zero means the placement fully succeeded.
	Underfilled int

	Elapsed time.Duration
}

// Run executes the pipeline. Stages run strictly in sequence; the context is
// checked between stages (and between grid rows inside synthesis), and a
// cancelled run leaves no bundle on disk.
func Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	p := req.Params
	if err := p.Validate(); err != nil {
		return nil, err
	}

	// The descriptor and payload header carry the same elevation bounds the
	// request was validated against.
	req.Meta.MinHeight = p.MinElevation
	req.Meta.MaxHeight = p.MaxElevation

	logger.Info("Starting map generation",
		"name", req.Meta.Name,
		"archetype", p.Archetype.String(),
		"size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"seed", p.Seed)

	grid, err := heightmap.Synthesize(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("synthesis stage: %w", err)
	}

	types := heightmap.Classify(grid)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	margin := req.SpotMargin
	if margin == 0 {
		margin = DefaultSpotMargin
	}
	if 2*margin >= p.Width || 2*margin >= p.Height {
		margin = minInt(p.Width, p.Height) / 4
	}

	worldScale := bundle.WorldScale(req.Meta.MapSizeKm, p.Width)
	placed, err := spots.Place(ctx, grid, spots.Params{
		Count:         p.SpotCount,
		MinSeparation: p.SpotMinSeparation,
		Margin:        margin,
		Seed:          p.Seed,
		WorldScale:    worldScale,
	})
	underfilled := 0
	if err != nil {
		var uf *spots.UnderfilledError
		if !errors.As(err, &uf) {
			return nil, fmt.Errorf("placement stage: %w", err)
		}
		// Placement shortfall is reported, not fatal: the partial spot set
		// is still a playable map.
		underfilled = uf.Requested - uf.Placed
		logger.Warning("Resource spot placement underfilled",
			"placed", uf.Placed, "requested", uf.Requested)
	}

	b, err := bundle.Assemble(req.Meta, grid, types, placed)
	if err != nil {
		return nil, fmt.Errorf("export stage: %w", err)
	}

	res := &Result{
		Grid:        grid,
		Types:       types,
		Spots:       placed,
		Bundle:      b,
		Underfilled: underfilled,
	}

	if req.OutputDir != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dir := filepath.Join(req.OutputDir, b.Meta.Shortname)
		if err := b.WriteTo(dir); err != nil {
			return nil, fmt.Errorf("export stage: %w", err)
		}
		res.BundleDir = dir
	}

	res.Elapsed = time.Since(start)
	logger.Info("Map generation finished",
		"name", req.Meta.Name,
		"spots", len(placed),
		"elapsed", res.Elapsed)
	return res, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
