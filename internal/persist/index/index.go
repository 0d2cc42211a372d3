// Package index maintains a small SQLite side-index of persisted log files,
// letting `tabd gc` enumerate tracked files and their latest
// save time without walking the filesystem tree on every query. It opens
// its connection with sql.Open("sqlite", ...) and applies its schema with a
// raw-SQL migration block run once at startup.
package index

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps the index's sqlite connection.
type DB struct {
	*sql.DB
}

// Open opens (creating if absent) the index database at path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening index db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	wrapped := &DB{db}
	if err := wrapped.migrate(); err != nil {
		return nil, err
	}
	return wrapped, nil
}

func (d *DB) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS tracked_files (
	relative_path TEXT PRIMARY KEY,
	layout        TEXT NOT NULL,
	last_saved_at INTEGER NOT NULL,
	save_count    INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_last_saved_at ON tracked_files(last_saved_at);
`
	_, err := d.Exec(schema)
	if err != nil {
		return fmt.Errorf("running index migrations: %w", err)
	}
	return nil
}

// RecordSave upserts one file's latest-save bookkeeping after a successful
// FileStore.Save, incrementing save_count.
func (d *DB) RecordSave(relativePath, layout string, savedAtMS int64) error {
	_, err := d.Exec(`
INSERT INTO tracked_files (relative_path, layout, last_saved_at, save_count)
VALUES (?, ?, ?, 1)
ON CONFLICT(relative_path) DO UPDATE SET
	layout = excluded.layout,
	last_saved_at = excluded.last_saved_at,
	save_count = tracked_files.save_count + 1
`, relativePath, layout, savedAtMS)
	return err
}

// TrackedFile is one row of the index, used by `tabd gc`.
type TrackedFile struct {
	RelativePath string
	Layout       string
	LastSavedAt  int64
	SaveCount    int
}

// ListStale returns tracked files whose last save predates cutoffMS,
// ordered oldest-first, for `tabd gc`.
func (d *DB) ListStale(cutoffMS int64) ([]TrackedFile, error) {
	rows, err := d.Query(`
SELECT relative_path, layout, last_saved_at, save_count
FROM tracked_files
WHERE last_saved_at < ?
ORDER BY last_saved_at ASC
`, cutoffMS)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TrackedFile
	for rows.Next() {
		var tf TrackedFile
		if err := rows.Scan(&tf.RelativePath, &tf.Layout, &tf.LastSavedAt, &tf.SaveCount); err != nil {
			return nil, err
		}
		out = append(out, tf)
	}
	return out, rows.Err()
}

// Forget removes relativePath's bookkeeping row, used by `tabd gc` once its
// log files have been deleted.
func (d *DB) Forget(relativePath string) error {
	_, err := d.Exec(`DELETE FROM tracked_files WHERE relative_path = ?`, relativePath)
	return err
}
