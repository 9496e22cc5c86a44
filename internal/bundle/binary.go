package bundle

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/springforge/mapforge/internal/heightmap"
)

// Binary payload layout, little-endian throughout:
//
//	magic        [4]byte  "SFMH"
//	version      uint16
//	_            uint16   reserved
//	width        uint32   elevation grid width
//	height       uint32   elevation grid height
//	minHeight    float32  world elevation of sample 0
//	maxHeight    float32  world elevation of sample 65535
//	samples      [width*height]uint16, row-major
//	typeWidth    uint32   terrain type block width
//	typeHeight   uint32   terrain type block height
//	types        [typeWidth*typeHeight]uint8, row-major
//
// Samples stay normalized; readers de-normalize with the header bounds, so
// the grid itself never needs rescaling before encode.
var payloadMagic = [4]byte{'S', 'F', 'M', 'H'}

// PayloadVersion is the current binary payload version.
const PayloadVersion uint16 = 1

// typeBlockDivisor is the resolution drop of the terrain type block relative
// to the elevation grid.
const typeBlockDivisor = 2

// Header is the parsed fixed-size prefix of a binary payload.
type Header struct {
	Version   uint16
	Width     uint32
	Height    uint32
	MinHeight float32
	MaxHeight float32
}

// WritePayload encodes the bundle's grids to w.
func (b *Bundle) WritePayload(w io.Writer) error {
	h := Header{
		Version:   PayloadVersion,
		Width:     uint32(b.Grid.Width),
		Height:    uint32(b.Grid.Height),
		MinHeight: float32(b.Meta.MinHeight),
		MaxHeight: float32(b.Meta.MaxHeight),
	}

	if _, err := w.Write(payloadMagic[:]); err != nil {
		return fmt.Errorf("failed to write payload magic: %w", err)
	}
	for _, v := range []any{h.Version, uint16(0), h.Width, h.Height, h.MinHeight, h.MaxHeight} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("failed to write payload header: %w", err)
		}
	}

	samples := make([]uint16, len(b.Grid.Cells))
	for i, v := range b.Grid.Cells {
		samples[i] = uint16(v * 65535)
	}
	if err := binary.Write(w, binary.LittleEndian, samples); err != nil {
		return fmt.Errorf("failed to write elevation samples: %w", err)
	}

	typeBlock := b.Types.Downsample(b.Grid.Width/typeBlockDivisor, b.Grid.Height/typeBlockDivisor)
	if err := binary.Write(w, binary.LittleEndian, uint32(typeBlock.Width)); err != nil {
		return fmt.Errorf("failed to write type block header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(typeBlock.Height)); err != nil {
		return fmt.Errorf("failed to write type block header: %w", err)
	}
	types := make([]uint8, len(typeBlock.Cells))
	for i, t := range typeBlock.Cells {
		types[i] = uint8(t)
	}
	if _, err := w.Write(types); err != nil {
		return fmt.Errorf("failed to write type block: %w", err)
	}
	return nil
}

// ReadHeader parses the fixed payload prefix, verifying magic and version.
func ReadHeader(r io.Reader) (Header, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return Header{}, fmt.Errorf("failed to read payload magic: %w", err)
	}
	if magic != payloadMagic {
		return Header{}, fmt.Errorf("bad payload magic %q", magic)
	}

	var h Header
	var reserved uint16
	for _, v := range []any{&h.Version, &reserved, &h.Width, &h.Height, &h.MinHeight, &h.MaxHeight} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return Header{}, fmt.Errorf("failed to read payload header: %w", err)
		}
	}
	if h.Version != PayloadVersion {
		return Header{}, fmt.Errorf("unsupported payload version %d", h.Version)
	}
	return h, nil
}

// ReadPayload parses a full payload back into grids. Samples re-normalize to
// [0, 1]; world bounds stay in the returned header.
func ReadPayload(r io.Reader) (Header, *heightmap.Grid, *heightmap.TypeGrid, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return Header{}, nil, nil, err
	}

	samples := make([]uint16, int(h.Width)*int(h.Height))
	if err := binary.Read(r, binary.LittleEndian, samples); err != nil {
		return Header{}, nil, nil, fmt.Errorf("failed to read elevation samples: %w", err)
	}
	grid := heightmap.NewGrid(int(h.Width), int(h.Height))
	for i, s := range samples {
		grid.Cells[i] = float64(s) / 65535
	}

	var tw, th uint32
	if err := binary.Read(r, binary.LittleEndian, &tw); err != nil {
		return Header{}, nil, nil, fmt.Errorf("failed to read type block header: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &th); err != nil {
		return Header{}, nil, nil, fmt.Errorf("failed to read type block header: %w", err)
	}
	raw := make([]uint8, int(tw)*int(th))
	if _, err := io.ReadFull(r, raw); err != nil {
		return Header{}, nil, nil, fmt.Errorf("failed to read type block: %w", err)
	}
	types := &heightmap.TypeGrid{
		Width:  int(tw),
		Height: int(th),
		Cells:  make([]heightmap.TerrainType, len(raw)),
	}
	for i, t := range raw {
		types.Cells[i] = heightmap.TerrainType(t)
	}
	return h, grid, types, nil
}
