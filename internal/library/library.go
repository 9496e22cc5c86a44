// Package library provides a SQLite-backed catalog of generated maps so the
// CLI can list, look up and prune past generation runs without rescanning
// the output directory.
package library

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a map name is not in the catalog.
var ErrNotFound = errors.New("map not found in library")

// Entry is one cataloged map.
type Entry struct {
	ID        int64
	Name      string
	Archetype string
	Seed      int64
	Width     int
	Height    int
	SpotCount int
	BundleDir string
	SD7Path   string
	Checksum  string
	CreatedAt time.Time
}

// Library wraps the catalog database.
type Library struct {
	db *sql.DB
}

// Open opens or creates the catalog database at the given path.
func Open(path string) (*Library, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create library directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open library database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	l := &Library{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return l, nil
}

// Close closes the catalog database.
func (l *Library) Close() error {
	return l.db.Close()
}

func (l *Library) migrate() error {
	_, err := l.db.Exec(`CREATE TABLE IF NOT EXISTS maps (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL COLLATE NOCASE,
		archetype TEXT NOT NULL,
		seed INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		spot_count INTEGER NOT NULL DEFAULT 0,
		bundle_dir TEXT NOT NULL DEFAULT '',
		sd7_path TEXT NOT NULL DEFAULT '',
		checksum TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

// Add records a generated map, replacing any previous entry with the same
// name (regeneration replaces the whole bundle, so the catalog row follows).
func (l *Library) Add(e Entry) (int64, error) {
	res, err := l.db.Exec(`INSERT INTO maps
		(name, archetype, seed, width, height, spot_count, bundle_dir, sd7_path, checksum)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			archetype = excluded.archetype,
			seed = excluded.seed,
			width = excluded.width,
			height = excluded.height,
			spot_count = excluded.spot_count,
			bundle_dir = excluded.bundle_dir,
			sd7_path = excluded.sd7_path,
			checksum = excluded.checksum,
			created_at = CURRENT_TIMESTAMP`,
		e.Name, e.Archetype, e.Seed, e.Width, e.Height, e.SpotCount, e.BundleDir, e.SD7Path, e.Checksum)
	if err != nil {
		return 0, fmt.Errorf("failed to record map: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read map id: %w", err)
	}
	return id, nil
}

// Get looks up a map by name.
func (l *Library) Get(name string) (*Entry, error) {
	row := l.db.QueryRow(`SELECT id, name, archetype, seed, width, height,
		spot_count, bundle_dir, sd7_path, checksum, created_at
		FROM maps WHERE name = ?`, name)

	var e Entry
	err := row.Scan(&e.ID, &e.Name, &e.Archetype, &e.Seed, &e.Width, &e.Height,
		&e.SpotCount, &e.BundleDir, &e.SD7Path, &e.Checksum, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up map: %w", err)
	}
	return &e, nil
}

// List returns all cataloged maps, newest first.
func (l *Library) List() ([]Entry, error) {
	rows, err := l.db.Query(`SELECT id, name, archetype, seed, width, height,
		spot_count, bundle_dir, sd7_path, checksum, created_at
		FROM maps ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list maps: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Archetype, &e.Seed, &e.Width, &e.Height,
			&e.SpotCount, &e.BundleDir, &e.SD7Path, &e.Checksum, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan map row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Remove deletes a map from the catalog. Removing an unknown name is not an
// error.
func (l *Library) Remove(name string) error {
	_, err := l.db.Exec(`DELETE FROM maps WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to remove map: %w", err)
	}
	return nil
}
