// Package orphans implements `hdas orphans`, listing packages that
// created attributed files but are no longer installed.
package orphans

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hdas-project/hdas/internal/analytics"
	"github.com/hdas-project/hdas/internal/app"
	"github.com/hdas-project/hdas/internal/daemon"
	"github.com/hdas-project/hdas/internal/query"
)

func NewOrphansCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "orphans",
		Short: "List packages that created files but are no longer installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			analytics.TrackCommandOrphans()

			st, err := app.OpenStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			mgr := daemon.DetectManager()
			installed := query.InstalledSet(ctx, mgr)

			orphans, err := st.GetOrphans(ctx, installed)
			if err != nil {
				return fmt.Errorf("failed to query orphans: %w", err)
			}

			query.RenderOrphans(orphans)
			return nil
		},
	}
}
