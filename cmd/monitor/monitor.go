// Package monitor implements `hdas monitor`, the privileged daemon
// command: it loads the kernel probe, drains its ring buffer through
// the attribution pipeline, and runs until SIGINT/SIGTERM.
package monitor

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hdas-project/hdas/config"
	"github.com/hdas-project/hdas/internal/analytics"
	"github.com/hdas-project/hdas/internal/app"
	"github.com/hdas-project/hdas/internal/bpfprobe"
	"github.com/hdas-project/hdas/internal/daemon"
	"github.com/hdas-project/hdas/internal/eventreader"
	"github.com/hdas-project/hdas/internal/store"
	"github.com/hdas-project/hdas/internal/ui"
	"github.com/hdas-project/hdas/internal/version"
)

func NewMonitorCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Watch configured directories and attribute file creation to packages",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd)
		},
	}

	cmd.Flags().Int("tracking-depth", 0, "override the default path-truncation depth")
	cmd.Flags().Bool("auto-prune", false, "prune deleted-file records before the session starts")

	return cmd
}

func run(cmd *cobra.Command) error {
	analytics.TrackCommandMonitor()
	defer analytics.Close()

	if err := daemon.RequireRoot(os.Geteuid()); err != nil {
		return err
	}

	cfg, err := app.LoadConfig(cmd.Flags())
	if err != nil {
		return err
	}

	home, err := config.ResolveHome()
	if err != nil {
		return fmt.Errorf("failed to resolve invoking user's home directory: %w", err)
	}

	storePath, err := config.StoreFilePath()
	if err != nil {
		return err
	}
	if _, err := config.CreateStoreDir(); err != nil {
		return err
	}

	unlock, err := store.LockExclusive(storePath)
	if err != nil {
		return fmt.Errorf("another hdas monitor may already be running: %w", err)
	}
	defer unlock()

	st, err := app.OpenStore()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AutoPrune {
		if _, err := st.PruneDeleted(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "hdas: warning: prune before monitor failed: %v\n", err)
		}
	}

	mgr := daemon.DetectManager()

	probe, err := bpfprobe.Load()
	if err != nil {
		return fmt.Errorf("failed to load kernel probe: %w", err)
	}
	defer probe.Close()

	reader, err := eventreader.Open(probe.EventsMap())
	if err != nil {
		return fmt.Errorf("failed to open event reader: %w", err)
	}
	defer reader.Close()

	dirNames := make([]string, len(cfg.MonitoredDirs))
	for i, d := range cfg.MonitoredDirs {
		dirNames[i] = d.Path
	}
	fmt.Print(ui.GenerateBanner(version.Version, version.Commit, dirNames))

	pipeline := daemon.New(cfg, home, st, mgr)
	pipeline.Run(ctx, reader)

	report := pipeline.Report()
	if ctx.Err() != nil {
		report.Outcome = ui.OutcomeUserCancelled
	}
	report.MonitoredDirs = dirNames
	ui.Report(report)

	return nil
}
