package daemon

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hdas-project/hdas/config"
	"github.com/hdas-project/hdas/internal/eventreader"
	"github.com/hdas-project/hdas/internal/store"
)

func newTestPipeline(t *testing.T, cfg config.Config) (*Pipeline, string) {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "attributions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	home := filepath.Join(dir, "home")
	return New(cfg, home, st, nil), home
}

func testConfig() config.Config {
	return config.Config{
		MonitoredDirs:    []config.MonitoredDir{{Path: ".cache"}},
		IgnoredProcesses: []string{"vim"},
		IgnoredPackages:  []string{"blocked-pkg"},
		TrackingDepth:    1,
	}
}

// An event whose path lies under no monitored dir is dropped before any
// ancestry walk or store write, and is not counted as a creation.
func TestProcess_UnmatchedPathIsDropped(t *testing.T) {
	p, home := newTestPipeline(t, testConfig())
	_ = home

	p.process(context.Background(), eventreader.RawEvent{PID: 1, Comm: "bash", Filename: "/etc/passwd"})

	assert.Equal(t, 1, p.report.Dropped)
	assert.Equal(t, 0, p.report.Created)
}

func TestProcess_FirstEventCreatesRecord(t *testing.T) {
	p, home := newTestPipeline(t, testConfig())

	filename := filepath.Join(home, ".cache/mozilla/firefox/Crash Reports/pending/foo")
	p.process(context.Background(), eventreader.RawEvent{PID: 100, Comm: "firefox", Filename: filename})

	assert.Equal(t, 1, p.report.Created)

	records, err := p.store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, filepath.Join(home, ".cache/mozilla"), records[0].Path)
}

// S2-style: once a canonical path has a known creator, a later ignored
// process touches it without re-walking ancestry.
func TestProcess_ShortCircuitsOnKnownCreator(t *testing.T) {
	p, home := newTestPipeline(t, testConfig())
	ctx := context.Background()

	canonical := filepath.Join(home, ".cache/mozilla")
	require.NoError(t, p.store.RecordAccess(ctx, canonical, "firefox", "firefox", time.Unix(100, 0), false))

	filename := filepath.Join(home, ".cache/mozilla/firefox/lock")
	p.process(ctx, eventreader.RawEvent{PID: 200, Comm: "vim", Filename: filename})

	assert.Equal(t, 1, p.report.Touched)

	records, err := p.store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "firefox", records[0].CreatedByPackage)
	assert.Equal(t, "vim", records[0].LastAccessedByProcess)
}

// Step 6 touch semantics: an ignored-process comm on a brand-new path
// still creates a record (seeded as unknown) and reports as touched,
// not created.
func TestProcess_IgnoredProcessOnNewPathIsTouchedNotCreated(t *testing.T) {
	cfg := testConfig()
	p, home := newTestPipeline(t, cfg)

	filename := filepath.Join(home, ".cache/app/data")
	p.process(context.Background(), eventreader.RawEvent{PID: 1, Comm: "vim", Filename: filename})

	assert.Equal(t, 1, p.report.Touched)
	assert.Equal(t, 0, p.report.Created)
}

type fakeManager struct{ owners map[string]string }

func (f *fakeManager) Name() string { return "fake" }
func (f *fakeManager) QueryOwner(ctx context.Context, path string) (string, bool) {
	pkg, ok := f.owners[path]
	return pkg, ok
}
func (f *fakeManager) ListInstalled(ctx context.Context) ([]string, error) { return nil, nil }
func (f *fakeManager) ManagerPackageNames() []string                      { return nil }

// Step 5: events whose resolved package is in the ignored-packages set
// are dropped entirely, even on a brand-new canonical path. Uses the
// test binary's own pid/exe so ancestry resolution's immediate-exe
// lookup (step 4.D.2) succeeds deterministically without a synthetic
// /proc tree.
func TestProcess_IgnoredPackageIsDropped(t *testing.T) {
	cfg := testConfig()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "attributions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	selfExe, err := os.Executable()
	require.NoError(t, err)

	home := filepath.Join(dir, "home")
	mgr := &fakeManager{owners: map[string]string{selfExe: "blocked-pkg"}}
	p := New(cfg, home, st, mgr)

	filename := filepath.Join(home, ".cache/app/data")
	p.process(context.Background(), eventreader.RawEvent{PID: pidToUint32(os.Getpid()), Comm: "app", Filename: filename})

	assert.Equal(t, 1, p.report.Dropped)

	records, err := st.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func pidToUint32(pid int) uint32 { return uint32(pid) }

func TestMightBeMonitored(t *testing.T) {
	cfg := config.Config{MonitoredDirs: []config.MonitoredDir{{Path: ".cache"}, {Path: "/etc"}}}
	p := &Pipeline{cfg: cfg}

	assert.True(t, p.mightBeMonitored("/home/u/.cache/foo"))
	assert.True(t, p.mightBeMonitored("/etc/nginx/nginx.conf"))
	assert.False(t, p.mightBeMonitored("/home/u/Documents/report.pdf"))
}

func TestRequireRoot(t *testing.T) {
	assert.NoError(t, RequireRoot(0))
	assert.Error(t, RequireRoot(1000))
}
