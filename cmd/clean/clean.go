// Package clean implements `hdas clean`, `hdas clean-orphans`, and
// `hdas prune`: the three mutating housekeeping commands that drive
// internal/cleanup.
package clean

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hdas-project/hdas/internal/analytics"
	"github.com/hdas-project/hdas/internal/app"
	"github.com/hdas-project/hdas/internal/cleanup"
	"github.com/hdas-project/hdas/internal/daemon"
	"github.com/hdas-project/hdas/internal/query"
)

func NewCleanCommand() *cobra.Command {
	var pkg string

	cmd := &cobra.Command{
		Use:   "clean [paths...]",
		Short: "Delete attribution records by explicit path or --package",
		RunE: func(cmd *cobra.Command, args []string) error {
			analytics.TrackCommandClean()

			st, err := app.OpenStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()

			var removed int
			if pkg != "" {
				removed, err = cleanup.ByPackage(ctx, st, pkg)
			} else {
				removed, err = cleanup.ByPaths(ctx, st, args)
			}
			if err != nil {
				return fmt.Errorf("failed to delete records: %w", err)
			}

			fmt.Printf("hdas: removed %d record(s)\n", removed)
			return nil
		},
	}

	cmd.Flags().StringVar(&pkg, "package", "", "delete every record created by this package")
	return cmd
}

func NewCleanOrphansCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean-orphans",
		Short: "Delete every record whose creator package is no longer installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			analytics.TrackCommandCleanOrphans()

			st, err := app.OpenStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			mgr := daemon.DetectManager()
			installed := query.InstalledSet(ctx, mgr)

			removed, err := cleanup.Orphans(ctx, st, mgr, installed)
			if err != nil {
				return fmt.Errorf("failed to delete orphaned records: %w", err)
			}

			fmt.Printf("hdas: removed %d orphaned record(s)\n", removed)
			return nil
		},
	}
}

func NewPruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete records whose file no longer exists on disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			analytics.TrackCommandPrune()

			st, err := app.OpenStore()
			if err != nil {
				return err
			}
			defer st.Close()

			pruned, err := cleanup.Prune(cmd.Context(), st)
			if err != nil {
				return fmt.Errorf("failed to prune: %w", err)
			}

			fmt.Printf("hdas: pruned %d record(s)\n", pruned)
			return nil
		},
	}
}
