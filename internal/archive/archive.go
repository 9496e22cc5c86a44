// Package archive packs finished map bundles into sd7 archives, generates
// and verifies their checksum sidecars, and installs them into the engine's
// maps directory.
package archive

import (
	"archive/zip"
	"compress/gzip"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// An sd7 archive is a zip of the bundle files. The engine also expects a
// gzip-compressed md5 checksum sidecar next to the archive, named
// <archive>.md5.gz.

// Pack zips every file under bundleDir into an sd7 archive at sd7Path and
// writes the checksum sidecar. The archive is staged with a temporary name
// and renamed into place once complete.
func Pack(bundleDir, sd7Path string) error {
	if !strings.HasSuffix(sd7Path, ".sd7") {
		sd7Path += ".sd7"
	}
	if err := os.MkdirAll(filepath.Dir(sd7Path), 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(sd7Path), ".packing-*")
	if err != nil {
		return fmt.Errorf("failed to create staging archive: %w", err)
	}
	cleanup := true
	defer func() {
		if cleanup {
			os.Remove(tmp.Name())
		}
	}()

	if err := writeZip(tmp, bundleDir); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close staging archive: %w", err)
	}
	if err := os.Rename(tmp.Name(), sd7Path); err != nil {
		return fmt.Errorf("failed to move archive into place: %w", err)
	}
	cleanup = false

	return WriteChecksum(sd7Path)
}

func writeZip(w io.Writer, dir string) error {
	zw := zip.NewWriter(w)

	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk bundle: %w", err)
	}
	// Stable entry order keeps repeated packs of the same bundle identical.
	sort.Strings(files)

	for _, path := range files {
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("failed to resolve archive path: %w", err)
		}
		entry, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return fmt.Errorf("failed to create archive entry: %w", err)
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		if _, err := io.Copy(entry, f); err != nil {
			f.Close()
			return fmt.Errorf("failed to write archive entry %s: %w", rel, err)
		}
		f.Close()
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}

// checksumPath returns the sidecar path for an archive.
func checksumPath(sd7Path string) string {
	return sd7Path + ".md5.gz"
}

// fileMD5 returns the hex md5 digest of the file at path.
func fileMD5(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	h := md5.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// WriteChecksum writes the gzipped md5 sidecar for an archive.
func WriteChecksum(sd7Path string) error {
	digest, err := fileMD5(sd7Path)
	if err != nil {
		return err
	}

	f, err := os.Create(checksumPath(sd7Path))
	if err != nil {
		return fmt.Errorf("failed to create checksum sidecar: %w", err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	if _, err := io.WriteString(gz, digest); err != nil {
		gz.Close()
		return fmt.Errorf("failed to write checksum: %w", err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to finalize checksum: %w", err)
	}
	return f.Close()
}

// ReadChecksum reads the digest stored in an archive's sidecar.
func ReadChecksum(sd7Path string) (string, error) {
	f, err := os.Open(checksumPath(sd7Path))
	if err != nil {
		return "", fmt.Errorf("failed to open checksum sidecar: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return "", fmt.Errorf("failed to read checksum sidecar: %w", err)
	}
	defer gz.Close()

	data, err := io.ReadAll(gz)
	if err != nil {
		return "", fmt.Errorf("failed to read checksum: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Verify recomputes an archive's digest and compares it with the sidecar.
func Verify(sd7Path string) (bool, error) {
	stored, err := ReadChecksum(sd7Path)
	if err != nil {
		return false, err
	}
	current, err := fileMD5(sd7Path)
	if err != nil {
		return false, err
	}
	return stored == current, nil
}

// Install copies an archive and its sidecar into the engine maps directory,
// generating the sidecar first if it is missing.
func Install(sd7Path, mapsDir string) (string, error) {
	if err := os.MkdirAll(mapsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create maps directory: %w", err)
	}

	if _, err := os.Stat(checksumPath(sd7Path)); os.IsNotExist(err) {
		if err := WriteChecksum(sd7Path); err != nil {
			return "", err
		}
	}

	dest := filepath.Join(mapsDir, filepath.Base(sd7Path))
	if err := copyFile(sd7Path, dest); err != nil {
		return "", err
	}
	if err := copyFile(checksumPath(sd7Path), checksumPath(dest)); err != nil {
		return "", err
	}
	return dest, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}

// ListInstalled returns the names (without extension) of sd7 archives in the
// maps directory, sorted.
func ListInstalled(mapsDir string) ([]string, error) {
	entries, err := os.ReadDir(mapsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read maps directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sd7") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".sd7"))
	}
	sort.Strings(names)
	return names, nil
}

// Extract unpacks an sd7 archive into destDir for inspection or editing.
func Extract(sd7Path, destDir string) error {
	r, err := zip.OpenReader(sd7Path)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer r.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create extraction directory: %w", err)
	}

	for _, f := range r.File {
		// Reject entries that would escape the destination.
		dest := filepath.Join(destDir, filepath.FromSlash(f.Name))
		rel, err := filepath.Rel(destDir, dest)
		if err != nil || strings.HasPrefix(rel, "..") {
			return fmt.Errorf("archive entry %q escapes the extraction directory", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0755); err != nil {
				return fmt.Errorf("failed to create %s: %w", dest, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(dest), err)
		}

		in, err := f.Open()
		if err != nil {
			return fmt.Errorf("failed to open archive entry %s: %w", f.Name, err)
		}
		out, err := os.Create(dest)
		if err != nil {
			in.Close()
			return fmt.Errorf("failed to create %s: %w", dest, err)
		}
		if _, err := io.Copy(out, in); err != nil {
			in.Close()
			out.Close()
			return fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
		in.Close()
		if err := out.Close(); err != nil {
			return fmt.Errorf("failed to close %s: %w", dest, err)
		}
	}
	return nil
}
