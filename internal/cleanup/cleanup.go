// Package cleanup is the out-of-scope mutating collaborator named in
// spec.md §6: it drives the attribution store's mutating interface
// ({delete_file_records, prune_deleted}) for the `clean`,
// `clean-orphans`, and `prune` commands, and touches the store
// through no other path.
package cleanup

import (
	"context"

	"github.com/hdas-project/hdas/internal/pkgmanager"
	"github.com/hdas-project/hdas/internal/store"
)

// ByPaths deletes the named records, returning the count removed.
func ByPaths(ctx context.Context, st *store.Store, paths []string) (int, error) {
	return st.DeleteFileRecords(ctx, paths)
}

// ByPackage deletes every record created by pkg, returning the count
// removed.
func ByPackage(ctx context.Context, st *store.Store, pkg string) (int, error) {
	records, err := st.QueryPackage(ctx, pkg)
	if err != nil {
		return 0, err
	}

	paths := make([]string, len(records))
	for i, r := range records {
		paths[i] = r.Path
	}
	return st.DeleteFileRecords(ctx, paths)
}

// Orphans deletes every record whose creator package is an orphan
// (a creator package that is no longer installed), returning the count
// removed.
func Orphans(ctx context.Context, st *store.Store, mgr pkgmanager.Manager, installed map[string]bool) (int, error) {
	orphans, err := st.GetOrphans(ctx, installed)
	if err != nil {
		return 0, err
	}

	var removed int
	for _, pkg := range orphans {
		n, err := ByPackage(ctx, st, pkg)
		if err != nil {
			return removed, err
		}
		removed += n
	}
	return removed, nil
}

// Prune removes records whose file no longer exists on disk.
func Prune(ctx context.Context, st *store.Store) (int, error) {
	return st.PruneDeleted(ctx)
}
