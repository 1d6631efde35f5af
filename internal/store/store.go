// Package store persists the attribution table: a durable, idempotent
// mapping from canonical path to the package and process that created
// it and the package and process that last touched it.
//
// Grounded on the teacher's persistence-adjacent packages for style
// (explicit context.Context on every call, one sql.Tx per mutation,
// errors wrapped with usefulerror only at boundaries the CLI surfaces
// to a user) but not on any single teacher file: the teacher's own
// persistence needs are transient (a JSON event log), so the schema,
// migration, and upsert-with-lazy-creator-promotion semantics here
// follow spec.md §4.F and the legacy-table migration in
// original_source/src/db.rs directly. modernc.org/sqlite is used
// instead of mattn/go-sqlite3 to keep the daemon cgo-free, matching
// why DataDog/datadog-agent vendors modernc.org/sqlite in the
// retrieved pack.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// UnknownPackage is the sentinel creator/accessor package name used in
// place of a nullable column, so indices and equality checks on
// created_by_package stay scalar.
const UnknownPackage = "unknown"

// FileRecord is one row of the attribution table.
type FileRecord struct {
	Path                  string
	CreatedByPackage      string
	CreatedByProcess      string
	CreatedAt             int64
	LastAccessedByPackage string
	LastAccessedByProcess string
	LastAccessedAt        int64
}

// Stats summarises the store for the `hdas stats` command.
type Stats struct {
	FileCount    int
	PackageCount int
	Location     string
}

// Store wraps a database/sql handle over an embedded sqlite file.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating and migrating if necessary) the attribution
// store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	db.SetMaxOpenConns(1) // single-writer file, per spec.md §5

	s := &Store{db: db, path: path}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// hasColumn reports whether table has the named column.
func hasColumn(ctx context.Context, db *sql.DB, table, column string) (bool, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			dfltValue  any
			pk         int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

func tableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var name string
	err := db.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// migrate brings the schema up to the current shape. If a legacy
// files(path, package, process, first_seen, last_seen) table is found,
// its rows are copied forward: package/process become both the
// created_by_* and last_accessed_by_* pair, first_seen becomes
// created_at, last_seen becomes last_accessed_at.
func (s *Store) migrate(ctx context.Context) error {
	current, err := tableExists(ctx, s.db, "files")
	if err != nil {
		return err
	}
	if current {
		hasNew, err := hasColumn(ctx, s.db, "files", "created_by_package")
		if err != nil {
			return err
		}
		if hasNew {
			return nil
		}

		hasLegacy, err := hasColumn(ctx, s.db, "files", "package")
		if err != nil {
			return err
		}
		if !hasLegacy {
			return fmt.Errorf("files table exists with unrecognised schema")
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx, `
			CREATE TABLE files_new (
				path TEXT PRIMARY KEY,
				created_by_package TEXT,
				created_by_process TEXT,
				created_at INTEGER,
				last_accessed_by_package TEXT,
				last_accessed_by_process TEXT,
				last_accessed_at INTEGER
			)`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO files_new (
				path,
				created_by_package, created_by_process, created_at,
				last_accessed_by_package, last_accessed_by_process, last_accessed_at
			)
			SELECT path, package, process, first_seen, package, process, last_seen
			FROM files`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DROP TABLE files`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `ALTER TABLE files_new RENAME TO files`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `CREATE INDEX idx_created_package ON files(created_by_package)`); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `CREATE INDEX idx_last_package ON files(last_accessed_by_package)`); err != nil {
			return err
		}
		return tx.Commit()
	}

	if _, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS files (
			path TEXT PRIMARY KEY,
			created_by_package TEXT,
			created_by_process TEXT,
			created_at INTEGER,
			last_accessed_by_package TEXT,
			last_accessed_by_process TEXT,
			last_accessed_at INTEGER
		)`); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_created_package ON files(created_by_package)`); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_last_package ON files(last_accessed_by_package)`); err != nil {
		return err
	}
	return nil
}

// RecordAccess upserts the attribution record for path. When ignored
// is true the event is never allowed to establish creatorship: a
// brand-new record is seeded with created_by_package=UnknownPackage,
// and an existing record's creator fields are left untouched. When
// ignored is false, a brand-new record is created by this event, and
// an existing record is promoted from UnknownPackage to package/process
// (with created_at reset to now) only if it hasn't already been
// promoted — satisfying property 6 (no further creator mutation once
// non-unknown).
func (s *Store) RecordAccess(ctx context.Context, path, pkg, process string, now time.Time, ignored bool) error {
	ts := now.Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if ignored {
		res, err := tx.ExecContext(ctx, `
			UPDATE files SET
				last_accessed_by_package = ?,
				last_accessed_by_process = ?,
				last_accessed_at = ?
			WHERE path = ?`, pkg, process, ts, path)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO files (
					path,
					created_by_package, created_by_process, created_at,
					last_accessed_by_package, last_accessed_by_process, last_accessed_at
				) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				path, UnknownPackage, process, ts, pkg, process, ts); err != nil {
				return err
			}
		}
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO files (
			path,
			created_by_package, created_by_process, created_at,
			last_accessed_by_package, last_accessed_by_process, last_accessed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			last_accessed_by_package = excluded.last_accessed_by_package,
			last_accessed_by_process = excluded.last_accessed_by_process,
			last_accessed_at = excluded.last_accessed_at,
			created_by_package = CASE WHEN files.created_by_package = ? THEN excluded.created_by_package ELSE files.created_by_package END,
			created_by_process = CASE WHEN files.created_by_package = ? THEN excluded.created_by_process ELSE files.created_by_process END,
			created_at = CASE WHEN files.created_by_package = ? THEN excluded.created_at ELSE files.created_at END
		`, path, pkg, process, ts, pkg, process, ts, UnknownPackage, UnknownPackage, UnknownPackage); err != nil {
		return err
	}
	return tx.Commit()
}

func scanRecord(scanner interface {
	Scan(dest ...any) error
}) (FileRecord, error) {
	var r FileRecord
	err := scanner.Scan(&r.Path, &r.CreatedByPackage, &r.CreatedByProcess, &r.CreatedAt,
		&r.LastAccessedByPackage, &r.LastAccessedByProcess, &r.LastAccessedAt)
	return r, err
}

const selectColumns = `path, created_by_package, created_by_process, created_at,
	last_accessed_by_package, last_accessed_by_process, last_accessed_at`

// QueryPackage returns all records created by pkg, most recently
// accessed first.
func (s *Store) QueryPackage(ctx context.Context, pkg string) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM files WHERE created_by_package = ? ORDER BY last_accessed_at DESC`, pkg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// QueryDirectory returns all records whose path is under prefix
// (trailing slash normalised away), ordered by path.
func (s *Store) QueryDirectory(ctx context.Context, prefix string) ([]FileRecord, error) {
	prefix = strings.TrimRight(prefix, "/")
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM files WHERE path = ? OR path LIKE ? ORDER BY path`,
		prefix, prefix+"/%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// QueryFile returns all records whose path contains substring.
func (s *Store) QueryFile(ctx context.Context, substring string) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM files WHERE path LIKE ?`, "%"+substring+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// ListAll returns every record, most recently accessed first.
func (s *Store) ListAll(ctx context.Context) ([]FileRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM files ORDER BY last_accessed_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func collectRecords(rows *sql.Rows) ([]FileRecord, error) {
	var records []FileRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// PathExists reports whether path has a record.
func (s *Store) PathExists(ctx context.Context, path string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM files WHERE path = ?`, path).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return err == nil, err
}

// PathHasKnownCreator reports whether path has a record whose creator
// is not the unknown sentinel.
func (s *Store) PathHasKnownCreator(ctx context.Context, path string) (bool, error) {
	var pkg string
	err := s.db.QueryRowContext(ctx, `SELECT created_by_package FROM files WHERE path = ?`, path).Scan(&pkg)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return pkg != UnknownPackage, nil
}

// GetOrphans returns the distinct created_by_package values that are
// not in installed and are not the unknown sentinel.
func (s *Store) GetOrphans(ctx context.Context, installed map[string]bool) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT created_by_package FROM files`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orphans []string
	for rows.Next() {
		var pkg string
		if err := rows.Scan(&pkg); err != nil {
			return nil, err
		}
		if pkg == UnknownPackage || installed[pkg] {
			continue
		}
		orphans = append(orphans, pkg)
	}
	return orphans, rows.Err()
}

// PruneDeleted removes records whose path no longer exists on disk,
// returning the number removed.
func (s *Store) PruneDeleted(ctx context.Context) (int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM files`)
	if err != nil {
		return 0, err
	}
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return 0, err
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	var gone []string
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			gone = append(gone, p)
		}
	}
	if len(gone) == 0 {
		return 0, nil
	}
	return s.DeleteFileRecords(ctx, gone)
}

// DeleteFileRecords deletes the named records, returning the count
// actually removed.
func (s *Store) DeleteFileRecords(ctx context.Context, paths []string) (int, error) {
	if len(paths) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	placeholders := strings.Repeat("?,", len(paths))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(paths))
	for i, p := range paths {
		args[i] = p
	}

	res, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM files WHERE path IN (%s)`, placeholders), args...)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(affected), nil
}

// GetStats returns the file count, distinct-package count, and
// on-disk location of the store.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	var fileCount, pkgCount int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files`).Scan(&fileCount); err != nil {
		return Stats{}, err
	}
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT created_by_package) FROM files`).Scan(&pkgCount); err != nil {
		return Stats{}, err
	}
	return Stats{FileCount: fileCount, PackageCount: pkgCount, Location: s.path}, nil
}

// GetLastEventTime returns the maximum last_accessed_at across all
// records, or ok=false if the store is empty.
func (s *Store) GetLastEventTime(ctx context.Context) (t time.Time, ok bool, err error) {
	var max sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(last_accessed_at) FROM files`).Scan(&max); err != nil {
		return time.Time{}, false, err
	}
	if !max.Valid {
		return time.Time{}, false, nil
	}
	return time.Unix(max.Int64, 0).UTC(), true, nil
}
