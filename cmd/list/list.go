// Package list implements `hdas list`, rendering the attribution
// store's contents, optionally filtered by package or directory.
package list

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hdas-project/hdas/internal/analytics"
	"github.com/hdas-project/hdas/internal/app"
	"github.com/hdas-project/hdas/internal/query"
	"github.com/hdas-project/hdas/internal/store"
)

func NewListCommand() *cobra.Command {
	var pkg, dir, substring string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List attributed files, optionally filtered by package or directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			analytics.TrackCommandList()

			st, err := app.OpenStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()

			var records []store.FileRecord
			switch {
			case pkg != "":
				records, err = st.QueryPackage(ctx, pkg)
			case dir != "":
				records, err = st.QueryDirectory(ctx, dir)
			case substring != "":
				records, err = st.QueryFile(ctx, substring)
			default:
				records, err = st.ListAll(ctx)
			}
			if err != nil {
				return fmt.Errorf("failed to query store: %w", err)
			}

			query.RenderRecords(records)
			return nil
		},
	}

	cmd.Flags().StringVar(&pkg, "package", "", "only show files created by this package")
	cmd.Flags().StringVar(&dir, "dir", "", "only show files under this directory")
	cmd.Flags().StringVar(&substring, "file", "", "only show files whose path contains this substring")

	return cmd
}
