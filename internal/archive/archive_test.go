package archive

import (
	"os"
	"path/filepath"
	"testing"
)

// makeBundleDir creates a fake bundle directory with a few files.
func makeBundleDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"mapinfo.lua":  "return {}",
		"test_map.smf": "binary-ish payload",
		"minimap.png":  "not really a png",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestPackAndExtract(t *testing.T) {
	bundleDir := makeBundleDir(t)
	sd7 := filepath.Join(t.TempDir(), "test_map.sd7")

	if err := Pack(bundleDir, sd7); err != nil {
		t.Fatalf("Pack() failed: %v", err)
	}
	if _, err := os.Stat(sd7); err != nil {
		t.Fatalf("archive not written: %v", err)
	}
	if _, err := os.Stat(sd7 + ".md5.gz"); err != nil {
		t.Fatalf("checksum sidecar not written: %v", err)
	}

	extractDir := t.TempDir()
	if err := Extract(sd7, extractDir); err != nil {
		t.Fatalf("Extract() failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(extractDir, "mapinfo.lua"))
	if err != nil {
		t.Fatalf("extracted descriptor missing: %v", err)
	}
	if string(data) != "return {}" {
		t.Errorf("extracted descriptor = %q", data)
	}
}

func TestPackAddsExtension(t *testing.T) {
	bundleDir := makeBundleDir(t)
	base := filepath.Join(t.TempDir(), "test_map")

	if err := Pack(bundleDir, base); err != nil {
		t.Fatalf("Pack() failed: %v", err)
	}
	if _, err := os.Stat(base + ".sd7"); err != nil {
		t.Errorf("archive without extension was not normalized: %v", err)
	}
}

func TestVerify(t *testing.T) {
	bundleDir := makeBundleDir(t)
	sd7 := filepath.Join(t.TempDir(), "test_map.sd7")
	if err := Pack(bundleDir, sd7); err != nil {
		t.Fatalf("Pack() failed: %v", err)
	}

	ok, err := Verify(sd7)
	if err != nil {
		t.Fatalf("Verify() failed: %v", err)
	}
	if !ok {
		t.Error("freshly packed archive failed verification")
	}

	// Corrupt the archive, verification must fail.
	f, err := os.OpenFile(sd7, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if _, err := f.Write([]byte("tamper")); err != nil {
		t.Fatalf("tamper with archive: %v", err)
	}
	f.Close()

	ok, err = Verify(sd7)
	if err != nil {
		t.Fatalf("Verify() after tamper failed: %v", err)
	}
	if ok {
		t.Error("tampered archive passed verification")
	}
}

func TestInstall(t *testing.T) {
	bundleDir := makeBundleDir(t)
	sd7 := filepath.Join(t.TempDir(), "test_map.sd7")
	if err := Pack(bundleDir, sd7); err != nil {
		t.Fatalf("Pack() failed: %v", err)
	}

	mapsDir := filepath.Join(t.TempDir(), "maps")
	dest, err := Install(sd7, mapsDir)
	if err != nil {
		t.Fatalf("Install() failed: %v", err)
	}

	if _, err := os.Stat(dest); err != nil {
		t.Errorf("installed archive missing: %v", err)
	}
	if _, err := os.Stat(dest + ".md5.gz"); err != nil {
		t.Errorf("installed sidecar missing: %v", err)
	}

	ok, err := Verify(dest)
	if err != nil {
		t.Fatalf("Verify() of installed archive failed: %v", err)
	}
	if !ok {
		t.Error("installed archive failed verification")
	}
}

func TestListInstalled(t *testing.T) {
	mapsDir := t.TempDir()
	for _, name := range []string{"beta.sd7", "alpha.sd7", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(mapsDir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	names, err := ListInstalled(mapsDir)
	if err != nil {
		t.Fatalf("ListInstalled() failed: %v", err)
	}
	if len(names) != 2 || names[0] != "alpha" || names[1] != "beta" {
		t.Errorf("ListInstalled() = %v, want [alpha beta]", names)
	}
}

func TestListInstalledMissingDir(t *testing.T) {
	names, err := ListInstalled(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("ListInstalled() on missing dir failed: %v", err)
	}
	if names != nil {
		t.Errorf("ListInstalled() = %v, want nil", names)
	}
}
