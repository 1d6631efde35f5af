package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "attributions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAccess_FirstWriteByPackage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Unix(1000, 0)

	require.NoError(t, s.RecordAccess(ctx, "/home/u/.cache/mozilla", "firefox", "firefox", now, false))

	records, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "firefox", records[0].CreatedByPackage)
	assert.Equal(t, "firefox", records[0].CreatedByProcess)
	assert.Equal(t, "firefox", records[0].LastAccessedByPackage)
	assert.Equal(t, now.Unix(), records[0].CreatedAt)
}

// S2: an ignored accessor on an existing record never mutates creator fields.
func TestRecordAccess_IgnoredAccessorLeavesCreatorUntouched(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordAccess(ctx, "/p", "firefox", "firefox", time.Unix(100, 0), false))
	require.NoError(t, s.RecordAccess(ctx, "/p", "unknown", "vim", time.Unix(200, 0), true))

	records, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "firefox", records[0].CreatedByPackage)
	assert.Equal(t, "vim", records[0].LastAccessedByProcess)
	assert.Equal(t, int64(200), records[0].LastAccessedAt)
}

// S4: an ignored process seeds an unknown-creator record; a later
// resolvable access promotes creatorship and resets created_at.
func TestRecordAccess_UnknownPromotion(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordAccess(ctx, "/p", "unknown", "vim", time.Unix(100, 0), true))
	require.NoError(t, s.RecordAccess(ctx, "/p", "chromium", "chromium", time.Unix(200, 0), false))

	records, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "chromium", records[0].CreatedByPackage)
	assert.Equal(t, "chromium", records[0].CreatedByProcess)
	assert.Equal(t, int64(200), records[0].CreatedAt)
}

// Property 6: once promoted away from unknown, further accesses never
// mutate creator fields again.
func TestRecordAccess_NoFurtherMutationOncePromoted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordAccess(ctx, "/p", "chromium", "chromium", time.Unix(100, 0), false))
	require.NoError(t, s.RecordAccess(ctx, "/p", "firefox", "firefox", time.Unix(200, 0), false))

	records, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "chromium", records[0].CreatedByPackage)
	assert.Equal(t, int64(100), records[0].CreatedAt)
	assert.Equal(t, "firefox", records[0].LastAccessedByPackage)
}

// Property 7: last_accessed_at is monotonic non-decreasing per path.
func TestRecordAccess_LastAccessedAtMonotonic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordAccess(ctx, "/p", "firefox", "firefox", time.Unix(500, 0), false))
	require.NoError(t, s.RecordAccess(ctx, "/p", "firefox", "firefox", time.Unix(600, 0), false))

	records, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(600), records[0].LastAccessedAt)
}

// Property 5: at most one record per path, regardless of event count.
func TestRecordAccess_AtMostOneRecordPerPath(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.RecordAccess(ctx, "/p", "firefox", "firefox", time.Unix(int64(100+i), 0), false))
	}

	records, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestQueryPackage_OrderedByLastAccessedDescending(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordAccess(ctx, "/a", "firefox", "firefox", time.Unix(100, 0), false))
	require.NoError(t, s.RecordAccess(ctx, "/b", "firefox", "firefox", time.Unix(200, 0), false))
	require.NoError(t, s.RecordAccess(ctx, "/c", "chromium", "chromium", time.Unix(300, 0), false))

	records, err := s.QueryPackage(ctx, "firefox")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "/b", records[0].Path)
	assert.Equal(t, "/a", records[1].Path)
}

func TestQueryDirectory_NormalisesTrailingSlash(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordAccess(ctx, "/home/u/.cache", "firefox", "firefox", time.Unix(100, 0), false))
	require.NoError(t, s.RecordAccess(ctx, "/home/u/.cache/mozilla", "firefox", "firefox", time.Unix(100, 0), false))
	require.NoError(t, s.RecordAccess(ctx, "/home/u/.config", "vim", "vim", time.Unix(100, 0), false))

	records, err := s.QueryDirectory(ctx, "/home/u/.cache/")
	require.NoError(t, err)
	require.Len(t, records, 2)
}

func TestQueryFile_SubstringMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.RecordAccess(ctx, "/home/u/.cache/mozilla/firefox", "firefox", "firefox", time.Unix(1, 0), false))

	records, err := s.QueryFile(ctx, "mozilla")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestPathExistsAndHasKnownCreator(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ok, err := s.PathExists(ctx, "/p")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.RecordAccess(ctx, "/p", "unknown", "vim", time.Unix(1, 0), true))

	ok, err = s.PathExists(ctx, "/p")
	require.NoError(t, err)
	assert.True(t, ok)

	known, err := s.PathHasKnownCreator(ctx, "/p")
	require.NoError(t, err)
	assert.False(t, known)
}

// S6: orphan detection.
func TestGetOrphans(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordAccess(ctx, "/a", "a", "proc", time.Unix(1, 0), false))
	require.NoError(t, s.RecordAccess(ctx, "/b", "b", "proc", time.Unix(1, 0), false))
	require.NoError(t, s.RecordAccess(ctx, "/c", "unknown", "proc", time.Unix(1, 0), true))

	orphans, err := s.GetOrphans(ctx, map[string]bool{"a": true, "c": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, orphans)
}

func TestPruneDeleted_RemovesRecordsForMissingPaths(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	dir := t.TempDir()
	present := filepath.Join(dir, "present")
	require.NoError(t, os.WriteFile(present, []byte("x"), 0o644))
	missing := filepath.Join(dir, "missing")

	require.NoError(t, s.RecordAccess(ctx, present, "firefox", "firefox", time.Unix(1, 0), false))
	require.NoError(t, s.RecordAccess(ctx, missing, "firefox", "firefox", time.Unix(1, 0), false))

	pruned, err := s.PruneDeleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pruned)

	records, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, present, records[0].Path)
}

func TestDeleteFileRecords_ReturnsRemovedCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordAccess(ctx, "/a", "firefox", "firefox", time.Unix(1, 0), false))
	require.NoError(t, s.RecordAccess(ctx, "/b", "firefox", "firefox", time.Unix(1, 0), false))

	n, err := s.DeleteFileRecords(ctx, []string{"/a", "/nonexistent"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGetStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.RecordAccess(ctx, "/a", "firefox", "firefox", time.Unix(1, 0), false))
	require.NoError(t, s.RecordAccess(ctx, "/b", "chromium", "chromium", time.Unix(1, 0), false))

	stats, err := s.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.FileCount)
	assert.Equal(t, 2, stats.PackageCount)
}

func TestGetLastEventTime(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, ok, err := s.GetLastEventTime(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.RecordAccess(ctx, "/a", "firefox", "firefox", time.Unix(100, 0), false))
	require.NoError(t, s.RecordAccess(ctx, "/b", "firefox", "firefox", time.Unix(500, 0), false))

	last, ok, err := s.GetLastEventTime(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(500), last.Unix())
}

// Legacy-schema migration: a files(path, package, process, first_seen,
// last_seen) table is copied forward into the new column layout.
func TestMigrate_LegacySchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "attributions.db")

	raw, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = raw.Exec(`CREATE TABLE files (
		path TEXT PRIMARY KEY,
		package TEXT,
		process TEXT,
		first_seen INTEGER,
		last_seen INTEGER
	)`)
	require.NoError(t, err)
	_, err = raw.Exec(`INSERT INTO files (path, package, process, first_seen, last_seen)
		VALUES ('/p', 'firefox', 'firefox', 100, 200)`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	records, err := s.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "firefox", records[0].CreatedByPackage)
	assert.Equal(t, int64(100), records[0].CreatedAt)
	assert.Equal(t, int64(200), records[0].LastAccessedAt)
}
