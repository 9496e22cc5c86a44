package library

import (
	"errors"
	"path/filepath"
	"testing"
)

func openTestLibrary(t *testing.T) *Library {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func testEntry(name string) Entry {
	return Entry{
		Name:      name,
		Archetype: "crater_field",
		Seed:      42,
		Width:     256,
		Height:    256,
		SpotCount: 12,
		BundleDir: "/tmp/maps/" + name,
		SD7Path:   "/tmp/maps/" + name + ".sd7",
		Checksum:  "abc123",
	}
}

func TestAddAndGet(t *testing.T) {
	l := openTestLibrary(t)

	if _, err := l.Add(testEntry("alpha")); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	e, err := l.Get("alpha")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if e.Archetype != "crater_field" || e.Seed != 42 || e.Width != 256 {
		t.Errorf("Get() = %+v", e)
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt not populated")
	}
}

func TestGetMissing(t *testing.T) {
	l := openTestLibrary(t)

	_, err := l.Get("nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAddReplacesSameName(t *testing.T) {
	l := openTestLibrary(t)

	if _, err := l.Add(testEntry("alpha")); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	updated := testEntry("alpha")
	updated.Seed = 99
	if _, err := l.Add(updated); err != nil {
		t.Fatalf("replacing Add() failed: %v", err)
	}

	e, err := l.Get("alpha")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if e.Seed != 99 {
		t.Errorf("seed = %d after replace, want 99", e.Seed)
	}

	entries, err := l.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("List() has %d entries after replace, want 1", len(entries))
	}
}

func TestList(t *testing.T) {
	l := openTestLibrary(t)

	for _, name := range []string{"alpha", "beta", "gamma"} {
		if _, err := l.Add(testEntry(name)); err != nil {
			t.Fatalf("Add(%s) failed: %v", name, err)
		}
	}

	entries, err := l.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("List() has %d entries, want 3", len(entries))
	}
	// Newest first.
	if entries[0].Name != "gamma" {
		t.Errorf("first entry = %s, want gamma", entries[0].Name)
	}
}

func TestRemove(t *testing.T) {
	l := openTestLibrary(t)

	if _, err := l.Add(testEntry("alpha")); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if err := l.Remove("alpha"); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	if _, err := l.Get("alpha"); !errors.Is(err, ErrNotFound) {
		t.Errorf("entry still present after Remove()")
	}

	// Removing an unknown name is fine.
	if err := l.Remove("alpha"); err != nil {
		t.Errorf("second Remove() failed: %v", err)
	}
}
