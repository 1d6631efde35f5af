// Package configcmd implements `hdas config edit`, opening the TOML
// config file in $EDITOR (falling back to vi), and `hdas config init`
// which writes the default config file.
package configcmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/hdas-project/hdas/config"
	"github.com/hdas-project/hdas/internal/analytics"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the hdas configuration file",
	}

	cmd.AddCommand(newEditCommand(), newInitCommand())
	return cmd
}

func newEditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open the hdas config file in $EDITOR",
		RunE: func(cmd *cobra.Command, args []string) error {
			analytics.TrackCommandConfigEdit()

			path, err := config.ConfigFilePath()
			if err != nil {
				return err
			}

			if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
				if _, err := config.CreateConfig(); err != nil {
					return fmt.Errorf("failed to create default config: %w", err)
				}
			}

			editor := os.Getenv("EDITOR")
			if editor == "" {
				editor = "vi"
			}

			edit := exec.CommandContext(cmd.Context(), editor, path)
			edit.Stdin = os.Stdin
			edit.Stdout = os.Stdout
			edit.Stderr = os.Stderr
			return edit.Run()
		},
	}
}

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the default hdas config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.CreateConfig()
			if err != nil {
				return err
			}
			fmt.Printf("hdas: wrote default config to %s\n", path)
			return nil
		},
	}
}
