package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ServerConfig holds settings for reaching the REST backend.
type ServerConfig struct {
	// BaseURL is the root URL of the backend, without a trailing slash.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// HealthOnStart controls whether the client pings /api/health
	// before entering the UI.
	HealthOnStart bool `mapstructure:"health_on_start" yaml:"health_on_start"`
}

// SyncConfig holds settings for the background snapshot reconciler.
type SyncConfig struct {
	// IntervalSec is how often (in seconds) to refresh the snapshot.
	IntervalSec int `mapstructure:"interval_sec" yaml:"interval_sec"`

	// PageSize is the page length used when fetching tasks and todos.
	PageSize int `mapstructure:"page_size" yaml:"page_size"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme    string `mapstructure:"theme" yaml:"theme"`
	PageSize int    `mapstructure:"page_size" yaml:"page_size"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Sync    SyncConfig    `mapstructure:"sync" yaml:"sync"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskdeck/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "taskdeck", "config.yaml")
}

// DefaultStateDir returns the directory for mutable state (snapshot
// database, log file), located at ~/.local/state/taskdeck.
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "state", "taskdeck")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			BaseURL:       "http://localhost:8000",
			HealthOnStart: true,
		},
		Sync: SyncConfig{
			IntervalSec: 120,
			PageSize:    100,
		},
		Display: DisplayConfig{
			Theme:    "default",
			PageSize: 50,
		},
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns a default configuration. The
// TASKDECK_BASE_URL environment variable overrides server.base_url.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Set defaults so missing keys resolve to sensible values.
	v.SetDefault("server.base_url", "http://localhost:8000")
	v.SetDefault("server.health_on_start", true)
	v.SetDefault("sync.interval_sec", 120)
	v.SetDefault("sync.page_size", 100)
	v.SetDefault("display.theme", "default")
	v.SetDefault("display.page_size", 50)

	v.SetEnvPrefix("taskdeck")
	if err := v.BindEnv("server.base_url", "TASKDECK_BASE_URL"); err != nil {
		return nil, fmt.Errorf("binding env override: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return applyEnvOverrides(v, defaultAppConfig()), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return applyEnvOverrides(v, defaultAppConfig()), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Sync.IntervalSec <= 0 {
		cfg.Sync.IntervalSec = 120
	}
	if cfg.Sync.PageSize <= 0 {
		cfg.Sync.PageSize = 100
	}
	if cfg.Display.PageSize <= 0 {
		cfg.Display.PageSize = 50
	}

	return cfg, nil
}

// applyEnvOverrides copies bound environment values onto a default config.
func applyEnvOverrides(v *viper.Viper, cfg *AppConfig) *AppConfig {
	if base := v.GetString("server.base_url"); base != "" {
		cfg.Server.BaseURL = base
	}
	return cfg
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("sync", cfg.Sync)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
