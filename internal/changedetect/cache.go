// Package changedetect implements incremental scan classification (spec
// §4.2): comparing the current walk against a persisted signature cache to
// tell new, modified, unchanged and deleted assets apart without
// re-parsing everything.
//
// The cache itself is grounded on theRebelliousNerd-codenerd's
// internal/northstar/store.go (sql.Open against a WAL-mode sqlite file,
// schema created with CREATE TABLE IF NOT EXISTS); swapped to the pure-Go
// modernc.org/sqlite driver so the scanner has no cgo dependency.
package changedetect

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Signature is the persisted fingerprint of one scanned file.
type Signature struct {
	Path         string
	ModTimeNanos int64
	SizeBytes    int64
	ContentHash  string // empty when deep_check was disabled for that scan
}

// Cache is a sqlite-backed store of the last-seen Signature per path.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (creating if needed) the signature cache at dbPath.
func OpenCache(dbPath string) (*Cache, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create signature cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open signature cache %s: %w", dbPath, err)
	}

	c := &Cache{db: db}
	if err := c.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize signature cache schema: %w", err)
	}
	return c, nil
}

func (c *Cache) initSchema() error {
	const schema = `
	CREATE TABLE IF NOT EXISTS signatures (
		path TEXT PRIMARY KEY,
		mod_time_nanos INTEGER NOT NULL,
		size_bytes INTEGER NOT NULL,
		content_hash TEXT NOT NULL DEFAULT '',
		last_seen_at DATETIME NOT NULL
	);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Close closes the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the last-persisted Signature for path, if any.
func (c *Cache) Get(ctx context.Context, path string) (Signature, bool, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT path, mod_time_nanos, size_bytes, content_hash FROM signatures WHERE path = ?`, path)

	var sig Signature
	if err := row.Scan(&sig.Path, &sig.ModTimeNanos, &sig.SizeBytes, &sig.ContentHash); err != nil {
		if err == sql.ErrNoRows {
			return Signature{}, false, nil
		}
		return Signature{}, false, fmt.Errorf("failed to read signature for %s: %w", path, err)
	}
	return sig, true, nil
}

// AllPaths returns every path currently tracked by the cache, used to
// detect deletions (paths present last scan but absent this scan).
func (c *Cache) AllPaths(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT path FROM signatures`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cached paths: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Upsert records sig, replacing whatever was stored for sig.Path.
func (c *Cache) Upsert(ctx context.Context, sig Signature) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO signatures (path, mod_time_nanos, size_bytes, content_hash, last_seen_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			mod_time_nanos = excluded.mod_time_nanos,
			size_bytes = excluded.size_bytes,
			content_hash = excluded.content_hash,
			last_seen_at = excluded.last_seen_at
	`, sig.Path, sig.ModTimeNanos, sig.SizeBytes, sig.ContentHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to persist signature for %s: %w", sig.Path, err)
	}
	return nil
}

// Delete removes a path's signature, used once its deletion has been
// reported to the graph.
func (c *Cache) Delete(ctx context.Context, path string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM signatures WHERE path = ?`, path)
	return err
}
