package heightmap

import (
	"errors"
	"strings"
	"testing"
)

func TestParseArchetype(t *testing.T) {
	tests := []struct {
		input string
		want  Archetype
	}{
		{"mountain_range", MountainRange},
		{"Mountain Range", MountainRange},
		{"river-valley", RiverValley},
		{"plateau", Plateau},
		{"crater_field", CraterField},
		{"HILLS", Hills},
		{"archipelago", Archipelago},
	}

	for _, tc := range tests {
		got, err := ParseArchetype(tc.input)
		if err != nil {
			t.Errorf("ParseArchetype(%q) failed: %v", tc.input, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseArchetype(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestParseArchetypeSuggestsOnTypo(t *testing.T) {
	tests := []struct {
		input      string
		suggestion string
	}{
		{"moutain_range", "mountain_range"},
		{"crater", "crater_field"},
		{"archipelgo", "archipelago"},
		{"hils", "hills"},
	}

	for _, tc := range tests {
		_, err := ParseArchetype(tc.input)
		if !errors.Is(err, ErrInvalidParameters) {
			t.Errorf("ParseArchetype(%q) err = %v, want ErrInvalidParameters", tc.input, err)
			continue
		}
		if !strings.Contains(err.Error(), tc.suggestion) {
			t.Errorf("ParseArchetype(%q) error %q does not suggest %q", tc.input, err, tc.suggestion)
		}
	}
}

func TestParseArchetypeGarbage(t *testing.T) {
	_, err := ParseArchetype("zzzzzzzzzzzz")
	if !errors.Is(err, ErrInvalidParameters) {
		t.Fatalf("err = %v, want ErrInvalidParameters", err)
	}
}

func TestArchetypeNamesComplete(t *testing.T) {
	names := ArchetypeNames()
	if len(names) != 6 {
		t.Fatalf("got %d archetype names, want 6", len(names))
	}
	for _, name := range names {
		if _, err := ParseArchetype(name); err != nil {
			t.Errorf("canonical name %q does not parse: %v", name, err)
		}
	}
}

func TestValidate(t *testing.T) {
	p := DefaultParams(Hills, 1)
	if err := p.Validate(); err != nil {
		t.Fatalf("default params invalid: %v", err)
	}

	p.Width = MinGridSize - 1
	if err := p.Validate(); !errors.Is(err, ErrInvalidParameters) {
		t.Errorf("undersized width: err = %v", err)
	}
}
