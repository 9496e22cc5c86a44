package bundle

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/springforge/mapforge/internal/preview"
)

// File names inside a bundle directory. The height, texture and minimap
// images are auxiliary assets; the payload and descriptor are what the
// engine loads.
const (
	DescriptorFile = "mapinfo.lua"
	HeightPNGFile  = "height.png"
	TextureFile    = "texture.png"
	MinimapFile    = "minimap.png"
	PreviewFile    = "preview.png"
)

// minimapSize is the fixed edge length of the bundled minimap.
const minimapSize = 256

// WriteTo writes the complete bundle into targetDir. The write is staged in
// a temporary sibling directory and renamed into place only after every file
// has been written, so a failure part way through leaves no partial bundle.
// An existing bundle at targetDir is replaced wholesale.
func (b *Bundle) WriteTo(targetDir string) error {
	parent := filepath.Dir(targetDir)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	staging, err := os.MkdirTemp(parent, ".staging-"+filepath.Base(targetDir)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	cleanup := true
	defer func() {
		if cleanup {
			os.RemoveAll(staging)
		}
	}()

	if err := b.writeFiles(staging); err != nil {
		return err
	}

	// Replace any previous bundle, then move the staged one into place.
	if err := os.RemoveAll(targetDir); err != nil {
		return fmt.Errorf("failed to remove previous bundle: %w", err)
	}
	if err := os.Rename(staging, targetDir); err != nil {
		return fmt.Errorf("failed to move bundle into place: %w", err)
	}
	cleanup = false
	return nil
}

func (b *Bundle) writeFiles(dir string) error {
	payload, err := os.Create(filepath.Join(dir, b.MapFileName()))
	if err != nil {
		return fmt.Errorf("failed to create payload file: %w", err)
	}
	if err := b.WritePayload(payload); err != nil {
		payload.Close()
		return err
	}
	if err := payload.Close(); err != nil {
		return fmt.Errorf("failed to close payload file: %w", err)
	}

	descriptor, err := os.Create(filepath.Join(dir, DescriptorFile))
	if err != nil {
		return fmt.Errorf("failed to create descriptor file: %w", err)
	}
	if err := b.WriteDescriptor(descriptor); err != nil {
		descriptor.Close()
		return err
	}
	if err := descriptor.Close(); err != nil {
		return fmt.Errorf("failed to close descriptor file: %w", err)
	}

	if err := preview.SavePNG(filepath.Join(dir, HeightPNGFile), preview.HeightImage(b.Grid)); err != nil {
		return err
	}

	texture := preview.Texture(b.Grid, b.Types)
	if err := preview.SavePNG(filepath.Join(dir, TextureFile), texture); err != nil {
		return err
	}
	if err := preview.SavePNG(filepath.Join(dir, MinimapFile), preview.Minimap(texture, minimapSize)); err != nil {
		return err
	}
	return preview.SavePNG(filepath.Join(dir, PreviewFile), preview.Render(b.Grid))
}
