package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// This file centralizes all path-related helpers for the config package.
// hdas cannot rely on os.UserConfigDir()/os.UserHomeDir() directly because
// monitor runs as root via sudo: paths must resolve to the invoking user's
// home (see ResolveHome in sudo.go), not root's.

const (
	hdasConfigName = "config"
	hdasConfigType = "toml"
	hdasAppDirName = "hdas"

	HDAS_CONFIG_DIR_ENV = "HDAS_CONFIG_DIR"
	StoreFileName       = "attributions.db"
)

// ConfigDir returns the base hdas configuration directory: $HOME/.config/hdas,
// honoring HDAS_CONFIG_DIR as an override and SUDO_USER-aware home resolution.
func ConfigDir() (string, error) {
	if dir := os.Getenv(HDAS_CONFIG_DIR_ENV); dir != "" {
		return dir, nil
	}

	home, err := ResolveHome()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}

	return filepath.Join(home, ".config", hdasAppDirName), nil
}

// StoreDir returns the base hdas data directory: $HOME/.local/share/hdas.
func StoreDir() (string, error) {
	home, err := ResolveHome()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}

	return filepath.Join(home, ".local", "share", hdasAppDirName), nil
}

// StoreFilePath returns the absolute path to the attribution store database.
func StoreFilePath() (string, error) {
	dir, err := StoreDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, StoreFileName), nil
}

// createConfigDir ensures the application config directory exists, chowns it
// to the invoking sudo user (if any), and returns its path.
func createConfigDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}
	_ = ChownToInvokingUser(dir)
	return dir, nil
}

// CreateStoreDir ensures the application data directory exists and returns its path.
func CreateStoreDir() (string, error) {
	dir, err := StoreDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create store directory %s: %w", dir, err)
	}
	return dir, nil
}

// ConfigFilePath returns the absolute path to the main hdas config file
// (config.toml), without creating any directories.
func ConfigFilePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fmt.Sprintf("%s.%s", hdasConfigName, hdasConfigType)), nil
}
