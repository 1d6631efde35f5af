package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hdas-project/hdas/cmd/clean"
	"github.com/hdas-project/hdas/cmd/configcmd"
	"github.com/hdas-project/hdas/cmd/list"
	"github.com/hdas-project/hdas/cmd/monitor"
	"github.com/hdas-project/hdas/cmd/orphans"
	"github.com/hdas-project/hdas/cmd/stats"
	"github.com/hdas-project/hdas/cmd/version"
	"github.com/hdas-project/hdas/internal/ui"
)

func main() {
	cmd := &cobra.Command{
		Use:              "hdas",
		Short:            "Attribute files under your home directory to the package that created them",
		TraverseChildren: true,
		SilenceErrors:    true,
		SilenceUsage:     true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return fmt.Errorf("hdas: %s is not a valid command", args[0])
		},
	}

	cmd.PersistentFlags().Bool("verbose", false, "show the detailed session report and error details")
	cmd.PersistentFlags().Bool("silent", false, "suppress all non-error output")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		silent, _ := cmd.Flags().GetBool("silent")
		switch {
		case silent:
			ui.SetVerbosityLevel(ui.VerbosityLevelSilent)
		case verbose:
			ui.SetVerbosityLevel(ui.VerbosityLevelVerbose)
		}
	}

	cmd.AddCommand(
		monitor.NewMonitorCommand(),
		list.NewListCommand(),
		orphans.NewOrphansCommand(),
		stats.NewStatsCommand(),
		clean.NewCleanCommand(),
		clean.NewCleanOrphansCommand(),
		clean.NewPruneCommand(),
		configcmd.NewConfigCommand(),
		version.NewVersionCommand(),
	)

	cmd.CompletionOptions.DisableDefaultCmd = false

	if err := cmd.Execute(); err != nil {
		ui.ErrorExit(err)
		os.Exit(1)
	}
}
