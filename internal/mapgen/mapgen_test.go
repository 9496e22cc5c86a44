package mapgen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/springforge/mapforge/internal/bundle"
	"github.com/springforge/mapforge/internal/heightmap"
)

func testRequest(outputDir string) Request {
	p := heightmap.DefaultParams(heightmap.Hills, 42)
	p.Width = 128
	p.Height = 128
	p.SpotCount = 8
	p.SpotMinSeparation = 200
	return Request{
		Params:    p,
		Meta:      bundle.DefaultMetadata("Pipeline Test"),
		OutputDir: outputDir,
	}
}

func TestRunWritesBundle(t *testing.T) {
	dir := t.TempDir()
	res, err := Run(context.Background(), testRequest(dir))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Grid == nil || res.Types == nil {
		t.Fatal("expected grid and type grid in result")
	}
	if res.Grid.Width != 128 || res.Grid.Height != 128 {
		t.Errorf("grid size = %dx%d, want 128x128", res.Grid.Width, res.Grid.Height)
	}
	if res.Underfilled != 0 {
		t.Errorf("underfilled = %d, want 0", res.Underfilled)
	}

	want := filepath.Join(dir, res.Bundle.Meta.Shortname)
	if res.BundleDir != want {
		t.Errorf("BundleDir = %q, want %q", res.BundleDir, want)
	}
	for _, name := range []string{
		bundle.DescriptorFile,
		bundle.HeightPNGFile,
		bundle.TextureFile,
		bundle.MinimapFile,
		bundle.PreviewFile,
		res.Bundle.MapFileName(),
	} {
		if _, err := os.Stat(filepath.Join(res.BundleDir, name)); err != nil {
			t.Errorf("bundle file %s: %v", name, err)
		}
	}
}

func TestRunDeterministic(t *testing.T) {
	a, err := Run(context.Background(), testRequest(""))
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	b, err := Run(context.Background(), testRequest(""))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}

	if len(a.Spots) != len(b.Spots) {
		t.Fatalf("spot counts differ: %d vs %d", len(a.Spots), len(b.Spots))
	}
	for i := range a.Spots {
		if a.Spots[i] != b.Spots[i] {
			t.Fatalf("spot %d differs: %v vs %v", i, a.Spots[i], b.Spots[i])
		}
	}
	for i := range a.Grid.Cells {
		if a.Grid.Cells[i] != b.Grid.Cells[i] {
			t.Fatalf("cell %d differs: %v vs %v", i, a.Grid.Cells[i], b.Grid.Cells[i])
		}
	}
}

func TestRunWithoutOutputDir(t *testing.T) {
	res, err := Run(context.Background(), testRequest(""))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.BundleDir != "" {
		t.Errorf("BundleDir = %q, want empty", res.BundleDir)
	}
	if res.Bundle == nil {
		t.Error("expected assembled bundle even without export")
	}
}

func TestRunInvalidParams(t *testing.T) {
	req := testRequest("")
	req.Params.Width = 0
	if _, err := Run(context.Background(), req); !errors.Is(err, heightmap.ErrInvalidParameters) {
		t.Errorf("err = %v, want ErrInvalidParameters", err)
	}
}

func TestRunUnderfilledStillExports(t *testing.T) {
	dir := t.TempDir()
	req := testRequest(dir)
	// Far too many spots for the separation to admit on a 128 grid.
	req.Params.SpotCount = 64
	req.Params.SpotMinSeparation = 600

	res, err := Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Underfilled == 0 {
		t.Error("expected an underfilled placement")
	}
	if len(res.Spots)+res.Underfilled != req.Params.SpotCount {
		t.Errorf("placed %d + underfilled %d != requested %d",
			len(res.Spots), res.Underfilled, req.Params.SpotCount)
	}
	if _, statErr := os.Stat(filepath.Join(res.BundleDir, bundle.DescriptorFile)); statErr != nil {
		t.Errorf("underfilled run should still export a bundle: %v", statErr)
	}
}

func TestRunCancelledLeavesNoBundle(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Run(ctx, testRequest(dir)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("cancelled run left %d entries in output dir", len(entries))
	}
}

func TestRunSmallGridClampsMargin(t *testing.T) {
	req := testRequest("")
	req.Params.Width = 24
	req.Params.Height = 24
	req.Params.SpotCount = 2
	req.Params.SpotMinSeparation = 10

	res, err := Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run on small grid: %v", err)
	}
	if res.Grid.Width != 24 {
		t.Errorf("grid width = %d, want 24", res.Grid.Width)
	}
}
