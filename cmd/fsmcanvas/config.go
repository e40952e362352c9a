package main

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds persistent editor settings.
type Config struct {
	Theme   string `toml:"theme"`    // "light" or "dark"
	Format  string `toml:"format"`   // default render format
	LastDir string `toml:"last_dir"` // last save directory
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	cwd, _ := os.Getwd()
	return Config{
		Theme:   "light",
		Format:  "svg",
		LastDir: cwd,
	}
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "fsm-canvas", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fsmcanvas.toml"
	}
	return filepath.Join(home, ".config", "fsm-canvas", "config.toml")
}

// LoadConfig loads configuration, falling back to defaults on any error
// or bad value.
func LoadConfig() Config {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(ConfigPath(), &cfg); err != nil {
		return DefaultConfig()
	}
	if cfg.Theme != "light" && cfg.Theme != "dark" {
		cfg.Theme = "light"
	}
	switch cfg.Format {
	case "svg", "png", "dot":
	default:
		cfg.Format = "svg"
	}
	return cfg
}

// SaveConfig writes configuration, creating the directory if needed.
func SaveConfig(cfg Config) error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
