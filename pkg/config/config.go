// Package config handles loading and saving tg configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/tourguide/config.yaml
//   - State:   ~/.local/state/tourguide/ (tour progress)
//
// TG_STORE_BACKEND, TG_STORE_PATH and TG_TOURS override the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/tourguide/pkg/highlight"
	"github.com/vanderheijden86/tourguide/pkg/navigation"
	"github.com/vanderheijden86/tourguide/pkg/store"
)

const appName = "tourguide"

// StoreConfig selects where tour progress is persisted.
type StoreConfig struct {
	Backend string `yaml:"backend,omitempty"` // file, sqlite, memory
	Path    string `yaml:"path,omitempty"`    // directory (file) or database file (sqlite)
}

// ToursConfig lists tour definition files and directories.
type ToursConfig struct {
	Paths []string `yaml:"paths,omitempty"`
	Watch bool     `yaml:"watch,omitempty"` // reload on change
}

// TimingConfig holds the controller's timer durations.
type TimingConfig struct {
	SettleWindow time.Duration `yaml:"settle_window,omitempty"`
	ScrollDelay  time.Duration `yaml:"scroll_delay,omitempty"`
}

// BrowserConfig configures `tg browse`.
type BrowserConfig struct {
	BaseURL  string `yaml:"base_url,omitempty"`
	Headless bool   `yaml:"headless,omitempty"`
}

// UIConfig holds playground settings.
type UIConfig struct {
	StartPath string `yaml:"start_path,omitempty"`
}

// Config is the top-level configuration for tg.
type Config struct {
	Store   StoreConfig   `yaml:"store,omitempty"`
	Tours   ToursConfig   `yaml:"tours,omitempty"`
	Timing  TimingConfig  `yaml:"timing,omitempty"`
	Browser BrowserConfig `yaml:"browser,omitempty"`
	UI      UIConfig      `yaml:"ui,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Backend: store.BackendFile,
			Path:    StateDir(),
		},
		Timing: TimingConfig{
			SettleWindow: navigation.DefaultSettleWindow,
			ScrollDelay:  highlight.DefaultScrollDelay,
		},
		Browser: BrowserConfig{
			BaseURL:  "http://localhost:3000",
			Headless: true,
		},
		UI: UIConfig{
			StartPath: "/",
		},
	}
}

// ConfigDir returns the XDG config directory for tg.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// StateDir returns the XDG state directory for tg.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		cfg := DefaultConfig()
		cfg.applyEnv()
		return cfg, nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path, then applies environment
// overrides. Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	cfg.Store.Path = expandHome(cfg.Store.Path)
	for i := range cfg.Tours.Paths {
		cfg.Tours.Paths[i] = expandHome(cfg.Tours.Paths[i])
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TG_STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := os.Getenv("TG_STORE_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("TG_TOURS"); v != "" {
		c.Tours.Paths = filepath.SplitList(v)
	}
}

// Validate rejects settings the controller cannot run with.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case store.BackendFile, store.BackendSQLite, store.BackendMemory:
	default:
		return fmt.Errorf("config: unknown store backend %q", c.Store.Backend)
	}
	if c.Timing.SettleWindow < 0 || c.Timing.ScrollDelay < 0 {
		return fmt.Errorf("config: timings must not be negative")
	}
	return nil
}

// StorePath returns the progress location for the configured backend.
func (c Config) StorePath() string {
	if c.Store.Backend == store.BackendSQLite && filepath.Ext(c.Store.Path) == "" {
		return filepath.Join(c.Store.Path, "progress.db")
	}
	return c.Store.Path
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
