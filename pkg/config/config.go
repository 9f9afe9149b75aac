// Package config loads irview configuration from the XDG config directory.
//
// The file is TOML at $XDG_CONFIG_HOME/irview/config.toml (falling back to
// ~/.config). It carries the defaults for layout options, caching, and the
// serve mode; command-line flags override whatever the file says.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds irview configuration.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
	Serve  ServeConfig  `toml:"serve"`
}

// LayoutConfig carries the default layout options.
type LayoutConfig struct {
	NodeGap       float64 `toml:"node_gap"`
	LayerGap      float64 `toml:"layer_gap"`
	MaxLayerGap   float64 `toml:"max_layer_gap"`
	GroupPadding  float64 `toml:"group_padding"`
	Sweeps        int     `toml:"sweeps"`
	MaxEdgeSpan   int     `toml:"max_edge_span"`
	BackEdgeStyle string  `toml:"back_edge_style"` // "curved" or "stepped"
	Stabilize     bool    `toml:"stabilize"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"` // "file", "redis", "none"
	Dir           string `toml:"dir"`     // file backend; empty means XDG cache dir
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// ServeConfig controls the HTTP serve mode.
type ServeConfig struct {
	Addr    string `toml:"addr"`
	Metrics bool   `toml:"metrics"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			BackEdgeStyle: "curved",
			Stabilize:     true,
		},
		Cache: CacheConfig{
			Backend:   "file",
			RedisAddr: "localhost:6379",
		},
		Serve: ServeConfig{
			Addr:    ":8317",
			Metrics: true,
		},
	}
}

// ConfigDir returns the irview config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "irview")
}

// CacheDir returns the irview cache directory path.
func CacheDir() string {
	dir := os.Getenv("XDG_CACHE_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".cache")
	}
	return filepath.Join(dir, "irview")
}

func configPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file, falling back to defaults if it doesn't exist
// or fails to parse.
func Load() *Config {
	return LoadFrom(configPath())
}

// LoadFrom reads a specific config file, falling back to defaults.
func LoadFrom(path string) *Config {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = toml.Unmarshal(data, cfg)
	return cfg
}

// Save writes the config to disk.
func Save(cfg *Config) error {
	path := configPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
