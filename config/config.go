package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type configKey struct{}
type contextValue struct {
	Config Config
}

// MonitoredDir is a single directory hdas watches for creation events.
// Path may be absolute, or relative to the resolved home (a leading "."
// denotes a dotted home subdirectory, e.g. ".cache"). Depth is optional;
// when zero-valued (Depth == nil) the global TrackingDepth applies.
type MonitoredDir struct {
	Path  string `mapstructure:"path"`
	Depth *int   `mapstructure:"depth"`
}

// Config is the global hdas configuration, loaded from config.toml and
// overridable via HDAS_* environment variables and CLI flags.
type Config struct {
	MonitoredDirs    []MonitoredDir `mapstructure:"monitored_dirs"`
	IgnoredProcesses []string       `mapstructure:"ignored_processes"`
	IgnoredPackages  []string       `mapstructure:"ignored_packages"`

	// TrackingDepth is the default truncation depth applied to monitored
	// dirs that don't set their own Depth.
	TrackingDepth int `mapstructure:"tracking_depth"`

	// AutoPrune, when true, makes `hdas monitor` run prune_deleted()
	// once before it starts watching. The read-only query commands
	// (list, orphans, stats) do not read it and never prune.
	AutoPrune bool `mapstructure:"auto_prune"`
}

var (
	setupOnce sync.Once
	setupErr  error
)

// ErrConfigAlreadyExists is returned when creating the config without force and it already exists.
var ErrConfigAlreadyExists = errors.New("hdas config already exists")

// DefaultConfig returns the canonical default configuration used by hdas.
func DefaultConfig() Config {
	return Config{
		MonitoredDirs: []MonitoredDir{
			{Path: ".cache"},
			{Path: ".config"},
			{Path: ".local/share"},
			{Path: ".local/state"},
			{Path: ".local/lib"},
		},
		IgnoredProcesses: []string{"cat", "vim", "less", "grep"},
		IgnoredPackages:  []string{},
		TrackingDepth:    1,
		AutoPrune:        true,
	}
}

// Load reads the hdas configuration, layering (in increasing priority)
// defaults, the TOML config file, HDAS_* environment variables, and any
// bound CLI flags.
func Load(fs *pflag.FlagSet) (Config, error) {
	if err := ensureViperConfigured(); err != nil {
		return Config{}, err
	}

	bindFlags(fs)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// CreateConfig writes the hdas config file and returns its absolute path.
func CreateConfig() (string, error) {
	if _, err := createConfigDir(); err != nil {
		return "", err
	}

	cfgFile, err := ConfigFilePath()
	if err != nil {
		return "", err
	}

	writer := viper.New()
	writer.SetConfigType(hdasConfigType)

	defaults := DefaultConfig()
	if err := writer.MergeConfigMap(configAsMap(defaults)); err != nil {
		return "", fmt.Errorf("failed to prepare default config: %w", err)
	}

	writeErr := writer.WriteConfigAs(cfgFile)

	if writeErr != nil {
		var alreadyExistsErr viper.ConfigFileAlreadyExistsError
		if errors.As(writeErr, &alreadyExistsErr) {
			return cfgFile, ErrConfigAlreadyExists
		}
		return "", fmt.Errorf("error writing config file: %w", writeErr)
	}

	if err := ensureViperConfigured(); err == nil {
		for key, value := range configAsMap(defaults) {
			viper.Set(key, value)
		}
	}

	return cfgFile, nil
}

// RemoveConfig removes the hdas configuration directory and its contents.
func RemoveConfig() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove config directory %s: %w", dir, err)
	}
	return nil
}

// Inject config into context while protecting against context poisoning
func (c Config) Inject(ctx context.Context) context.Context {
	return context.WithValue(ctx, configKey{}, &contextValue{Config: c})
}

// FromContext extracts config from context
func FromContext(ctx context.Context) (Config, error) {
	c, ok := ctx.Value(configKey{}).(*contextValue)
	if !ok {
		return Config{}, fmt.Errorf("config not found in context")
	}

	return c.Config, nil
}

func ensureViperConfigured() error {
	setupOnce.Do(func() {
		dir, err := ConfigDir()
		if err != nil {
			setupErr = err
			return
		}

		v := viper.GetViper()
		v.SetConfigName(hdasConfigName)
		v.SetConfigType(hdasConfigType)
		v.AddConfigPath(dir)

		v.SetEnvPrefix("HDAS")
		v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		v.AutomaticEnv()

		for key, value := range configAsMap(DefaultConfig()) {
			v.SetDefault(key, value)
		}
	})

	return setupErr
}

func bindFlags(fs *pflag.FlagSet) {
	if fs == nil {
		return
	}

	bind := func(key, flag string) {
		if f := fs.Lookup(flag); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}

	bind("tracking_depth", "tracking-depth")
	bind("auto_prune", "auto-prune")
}

// configAsMap maps the provided config for setting key/values in viper.
func configAsMap(cfg Config) map[string]any {
	return map[string]any{
		"monitored_dirs":    cfg.MonitoredDirs,
		"ignored_processes": cfg.IgnoredProcesses,
		"ignored_packages":  cfg.IgnoredPackages,
		"tracking_depth":    cfg.TrackingDepth,
		"auto_prune":        cfg.AutoPrune,
	}
}
