package bundle

import (
	"fmt"
	"io"
	"strings"

	lua "github.com/Shopify/go-lua"

	"github.com/springforge/mapforge/internal/spots"
)

// WriteDescriptor emits the mapinfo.lua map descriptor. Metal spots are
// written verbatim in placement order so a re-export with the same seed
// produces an identical descriptor.
func (b *Bundle) WriteDescriptor(w io.Writer) error {
	m := b.Meta
	var s strings.Builder

	fmt.Fprintf(&s, "local mapinfo = {\n")
	fmt.Fprintf(&s, "    name        = %q,\n", m.Name)
	fmt.Fprintf(&s, "    shortname   = %q,\n", m.Shortname)
	fmt.Fprintf(&s, "    description = %q,\n", m.Description)
	fmt.Fprintf(&s, "    author      = %q,\n", m.Author)
	fmt.Fprintf(&s, "    version     = %q,\n", m.Version)
	fmt.Fprintf(&s, "    mapfile     = \"maps/%s\",\n", b.MapFileName())
	fmt.Fprintf(&s, "    modtype     = 3,\n\n")

	fmt.Fprintf(&s, "    maphardness     = %g,\n", m.Hardness)
	fmt.Fprintf(&s, "    notDeformable   = %v,\n", m.NotDeformable)
	fmt.Fprintf(&s, "    gravity         = %d,\n", m.Gravity)
	fmt.Fprintf(&s, "    tidalStrength   = %d,\n", m.TidalStrength)
	fmt.Fprintf(&s, "    maxMetal        = %g,\n", m.MaxMetal)
	fmt.Fprintf(&s, "    extractorRadius = %g,\n\n", m.ExtractorRadius)

	fmt.Fprintf(&s, "    smf = {\n")
	fmt.Fprintf(&s, "        minheight = %g,\n", m.MinHeight)
	fmt.Fprintf(&s, "        maxheight = %g,\n", m.MaxHeight)
	fmt.Fprintf(&s, "    },\n\n")

	a := m.Atmosphere
	fmt.Fprintf(&s, "    atmosphere = {\n")
	fmt.Fprintf(&s, "        minWind      = %d,\n", a.MinWind)
	fmt.Fprintf(&s, "        maxWind      = %d,\n", a.MaxWind)
	fmt.Fprintf(&s, "        fogStart     = %g,\n", a.FogStart)
	fmt.Fprintf(&s, "        fogEnd       = %g,\n", a.FogEnd)
	fmt.Fprintf(&s, "        fogColor     = {%g, %g, %g},\n", a.FogColor[0], a.FogColor[1], a.FogColor[2])
	fmt.Fprintf(&s, "        skyColor     = {%g, %g, %g},\n", a.SkyColor[0], a.SkyColor[1], a.SkyColor[2])
	fmt.Fprintf(&s, "        sunColor     = {%g, %g, %g},\n", a.SunColor[0], a.SunColor[1], a.SunColor[2])
	fmt.Fprintf(&s, "        cloudColor   = {%g, %g, %g},\n", a.CloudColor[0], a.CloudColor[1], a.CloudColor[2])
	fmt.Fprintf(&s, "        cloudDensity = %g,\n", a.CloudDensity)
	fmt.Fprintf(&s, "    },\n\n")

	fmt.Fprintf(&s, "    terrainTypes = {\n")
	for i, tex := range m.TerrainTextures {
		fmt.Fprintf(&s, "        [%d] = { name = %q, texture = %q },\n", i, terrainTypeName(i), tex)
	}
	fmt.Fprintf(&s, "    },\n")
	fmt.Fprintf(&s, "}\n\n")

	fmt.Fprintf(&s, "mapinfo.metalSpots = {\n")
	for _, spot := range b.Spots {
		fmt.Fprintf(&s, "    {x = %g, z = %g},\n", spot.X, spot.Z)
	}
	fmt.Fprintf(&s, "}\n\n")
	fmt.Fprintf(&s, "return mapinfo\n")

	if _, err := io.WriteString(w, s.String()); err != nil {
		return fmt.Errorf("failed to write descriptor: %w", err)
	}
	return nil
}

func terrainTypeName(i int) string {
	names := []string{"water", "shore", "grass", "mountain"}
	if i < len(names) {
		return names[i]
	}
	return fmt.Sprintf("type%d", i)
}

// Info is the subset of descriptor fields read back from mapinfo.lua.
type Info struct {
	Name        string
	Shortname   string
	Description string
	Author      string
	MapFile     string
	MinHeight   float64
	MaxHeight   float64
	MetalSpots  []spots.Spot
}

// ParseDescriptor executes a mapinfo.lua source and extracts its fields.
// Running the Lua instead of pattern-matching it keeps the parse honest: a
// descriptor the engine would reject fails here too.
func ParseDescriptor(src string) (*Info, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	if err := lua.DoString(state, src); err != nil {
		return nil, fmt.Errorf("failed to run descriptor: %w", err)
	}
	if state.TypeOf(-1) != lua.TypeTable {
		return nil, fmt.Errorf("descriptor did not return a table")
	}

	info := &Info{
		Name:        tableString(state, "name"),
		Shortname:   tableString(state, "shortname"),
		Description: tableString(state, "description"),
		Author:      tableString(state, "author"),
		MapFile:     tableString(state, "mapfile"),
	}

	state.Field(-1, "smf")
	if state.TypeOf(-1) == lua.TypeTable {
		info.MinHeight = tableNumber(state, "minheight")
		info.MaxHeight = tableNumber(state, "maxheight")
	}
	state.Pop(1)

	state.Field(-1, "metalSpots")
	if state.TypeOf(-1) == lua.TypeTable {
		n := state.RawLength(-1)
		for i := 1; i <= n; i++ {
			state.RawGetInt(-1, i)
			if state.TypeOf(-1) == lua.TypeTable {
				spot := spots.Spot{
					X: tableNumber(state, "x"),
					Z: tableNumber(state, "z"),
				}
				info.MetalSpots = append(info.MetalSpots, spot)
			}
			state.Pop(1)
		}
	}
	state.Pop(1)

	return info, nil
}

// tableString reads a string field from the table at the top of the stack.
func tableString(state *lua.State, field string) string {
	state.Field(-1, field)
	defer state.Pop(1)
	s, _ := state.ToString(-1)
	return s
}

// tableNumber reads a numeric field from the table at the top of the stack.
func tableNumber(state *lua.State, field string) float64 {
	state.Field(-1, field)
	defer state.Pop(1)
	n, _ := state.ToNumber(-1)
	return n
}

// ValidateDescriptor checks that a descriptor runs and carries the required
// fields.
func ValidateDescriptor(src string) error {
	info, err := ParseDescriptor(src)
	if err != nil {
		return err
	}
	if info.Name == "" {
		return fmt.Errorf("descriptor is missing a map name")
	}
	if info.MapFile == "" {
		return fmt.Errorf("descriptor is missing the mapfile reference")
	}
	if info.MinHeight >= info.MaxHeight {
		return fmt.Errorf("descriptor elevation bounds are inverted: [%g, %g]", info.MinHeight, info.MaxHeight)
	}
	return nil
}
