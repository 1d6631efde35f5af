// Package query is the out-of-scope read-only collaborator named in
// spec.md §6: it renders the attribution store's read-only interface
// ({list_all, query_file, query_package, query_directory, get_orphans,
// get_stats, get_last_event_time}) as tables, and touches the store
// through no other path.
package query

import (
	"context"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/hdas-project/hdas/internal/pkgmanager"
	"github.com/hdas-project/hdas/internal/store"
)

// RenderRecords prints a table of file records, the shape shared by
// `hdas list`, `hdas list --package`, and `hdas list --dir`.
func RenderRecords(records []store.FileRecord) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Path", "Created By", "Last Accessed By", "Last Accessed At"})

	for _, r := range records {
		t.AppendRow(table.Row{
			r.Path,
			r.CreatedByPackage,
			r.LastAccessedByPackage,
			time.Unix(r.LastAccessedAt, 0).Local().Format(time.RFC3339),
		})
	}

	t.Render()
}

// RenderOrphans prints the set of orphaned packages.
func RenderOrphans(orphans []string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Orphaned Package"})
	for _, o := range orphans {
		t.AppendRow(table.Row{o})
	}
	t.Render()
}

// RenderStats prints the store's summary statistics.
func RenderStats(stats store.Stats, lastEvent time.Time, hasLastEvent bool) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendRow(table.Row{"Tracked files", stats.FileCount})
	t.AppendRow(table.Row{"Distinct packages", stats.PackageCount})
	t.AppendRow(table.Row{"Store location", stats.Location})
	if hasLastEvent {
		t.AppendRow(table.Row{"Last event", lastEvent.Local().Format(time.RFC3339)})
	} else {
		t.AppendRow(table.Row{"Last event", "never"})
	}
	t.Render()
}

// InstalledSet queries mgr for the currently installed package set,
// for use with Store.GetOrphans. Returns an empty set (every creator
// looks orphaned) if mgr is nil or the listing fails.
func InstalledSet(ctx context.Context, mgr pkgmanager.Manager) map[string]bool {
	installed := map[string]bool{}
	if mgr == nil {
		return installed
	}

	names, err := mgr.ListInstalled(ctx)
	if err != nil {
		return installed
	}
	for _, n := range names {
		installed[n] = true
	}
	return installed
}
