// Package stats implements `hdas stats`, summarising the attribution
// store's size and most recent activity.
package stats

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/hdas-project/hdas/internal/analytics"
	"github.com/hdas-project/hdas/internal/app"
	"github.com/hdas-project/hdas/internal/query"
)

func NewStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show attribution store statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			analytics.TrackCommandStats()

			st, err := app.OpenStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()

			s, err := st.GetStats(ctx)
			if err != nil {
				return fmt.Errorf("failed to read stats: %w", err)
			}

			last, ok, err := st.GetLastEventTime(ctx)
			if err != nil {
				return fmt.Errorf("failed to read last event time: %w", err)
			}
			if !ok {
				last = time.Time{}
			}

			query.RenderStats(s, last, ok)
			return nil
		},
	}
}
