// Package app holds the small amount of bootstrap logic shared by every
// cmd/* subcommand: loading configuration and opening the attribution
// store at its well-known location. Kept separate from internal/daemon
// so that read-only commands (list, orphans, stats) don't need to pull
// in the kernel-probe/event-reader dependency chain.
package app

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/hdas-project/hdas/config"
	"github.com/hdas-project/hdas/internal/store"
)

// LoadConfig loads the hdas configuration, binding any flags on fs.
func LoadConfig(fs *pflag.FlagSet) (config.Config, error) {
	cfg, err := config.Load(fs)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// OpenStore opens the attribution store at its default location,
// creating the containing directory (and chowning it to the invoking
// sudo user, if any) if it doesn't already exist.
func OpenStore() (*store.Store, error) {
	dir, err := config.CreateStoreDir()
	if err != nil {
		return nil, err
	}
	_ = config.ChownToInvokingUser(dir)

	path, err := config.StoreFilePath()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}

	_ = config.ChownToInvokingUser(path)
	return st, nil
}
